package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors shared by services and adapters.
var (
	ErrNotFound       = errors.New("not found")
	ErrForbidden      = errors.New("forbidden")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrSessionExpired = errors.New("session expired")
)

// ValidationKind classifies a ValidationError.
type ValidationKind int

const (
	MissingField ValidationKind = iota + 1
	InvalidDateTime
	InvalidInput
)

func (k ValidationKind) String() string {
	switch k {
	case MissingField:
		return "missing_field"
	case InvalidDateTime:
		return "invalid_datetime"
	case InvalidInput:
		return "invalid_input"
	default:
		return "unknown"
	}
}

// ValidationError is returned before any repository call when user input is rejected.
type ValidationError struct {
	Kind  ValidationKind
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	switch e.Kind {
	case MissingField:
		return fmt.Sprintf("%s is required", e.Field)
	case InvalidDateTime:
		if e.Err != nil {
			return fmt.Sprintf("invalid date or time: %v", e.Err)
		}
		return "invalid date or time"
	default:
		if e.Err != nil {
			return e.Err.Error()
		}
		return fmt.Sprintf("invalid %s", e.Field)
	}
}

func (e *ValidationError) Unwrap() error { return e.Err }

// RepositoryKind classifies a RepositoryError.
type RepositoryKind int

const (
	NotFound RepositoryKind = iota + 1
	WriteFailed
	Unreachable
)

func (k RepositoryKind) String() string {
	switch k {
	case NotFound:
		return "not_found"
	case WriteFailed:
		return "write_failed"
	case Unreachable:
		return "unreachable"
	default:
		return "unknown"
	}
}

// RepositoryError wraps a storage failure with the operation that caused it.
// A NotFound RepositoryError matches ErrNotFound with errors.Is.
type RepositoryError struct {
	Kind RepositoryKind
	Op   string
	Err  error
}

func (e *RepositoryError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Kind)
}

func (e *RepositoryError) Unwrap() error { return e.Err }

func (e *RepositoryError) Is(target error) bool {
	return target == ErrNotFound && e.Kind == NotFound
}

// NewNotFound returns a NotFound RepositoryError for op.
func NewNotFound(op string) error {
	return &RepositoryError{Kind: NotFound, Op: op}
}

// NewWriteFailed wraps err as a WriteFailed RepositoryError for op.
func NewWriteFailed(op string, err error) error {
	return &RepositoryError{Kind: WriteFailed, Op: op, Err: err}
}

// NewUnreachable wraps err as an Unreachable RepositoryError for op.
func NewUnreachable(op string, err error) error {
	return &RepositoryError{Kind: Unreachable, Op: op, Err: err}
}

// AuthKind classifies an AuthError.
type AuthKind int

const (
	InvalidCredentials AuthKind = iota + 1
	AlreadyRegistered
	AuthUnknown
)

func (k AuthKind) String() string {
	switch k {
	case InvalidCredentials:
		return "invalid_credentials"
	case AlreadyRegistered:
		return "already_registered"
	default:
		return "unknown"
	}
}

// AuthError is returned by the authentication service.
type AuthError struct {
	Kind AuthKind
	Err  error
}

func (e *AuthError) Error() string {
	switch e.Kind {
	case InvalidCredentials:
		return "invalid credentials"
	case AlreadyRegistered:
		return "email already registered"
	default:
		if e.Err != nil {
			return fmt.Sprintf("authentication failed: %v", e.Err)
		}
		return "authentication failed"
	}
}

func (e *AuthError) Unwrap() error { return e.Err }

// IsValidation reports whether err is a ValidationError of the given kind.
// A zero kind matches any ValidationError.
func IsValidation(err error, kind ValidationKind) bool {
	var ve *ValidationError
	if !errors.As(err, &ve) {
		return false
	}
	return kind == 0 || ve.Kind == kind
}

// IsRepository reports whether err is a RepositoryError of the given kind.
func IsRepository(err error, kind RepositoryKind) bool {
	var re *RepositoryError
	if !errors.As(err, &re) {
		return false
	}
	return re.Kind == kind
}

// IsAuth reports whether err is an AuthError of the given kind.
func IsAuth(err error, kind AuthKind) bool {
	var ae *AuthError
	if !errors.As(err, &ae) {
		return false
	}
	return ae.Kind == kind
}
