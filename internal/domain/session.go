package domain

// SessionState is the routing decision derived from the auth session and the profile lookup.
type SessionState int

const (
	Unresolved SessionState = iota
	Unauthenticated
	AuthenticatedUser
	AuthenticatedAdmin
)

func (s SessionState) String() string {
	switch s {
	case Unresolved:
		return "unresolved"
	case Unauthenticated:
		return "unauthenticated"
	case AuthenticatedUser:
		return "authenticated_user"
	case AuthenticatedAdmin:
		return "authenticated_admin"
	default:
		return "unknown"
	}
}

// MarshalText encodes the state by name so it reads well in JSON and logs.
func (s SessionState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Authenticated reports whether the state carries an identity.
func (s SessionState) Authenticated() bool {
	return s == AuthenticatedUser || s == AuthenticatedAdmin
}

// SessionView is a snapshot of the gate: the state and, when authenticated, who.
// swagger:model SessionView
type SessionView struct {
	State   SessionState `json:"state"`
	UID     string       `json:"uid,omitempty"`
	IsAdmin bool         `json:"isAdmin"`
}
