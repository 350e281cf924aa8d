package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"eventbuddy/internal/domain"
)

const minPasswordLen = 6

var emailRegexp = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

type authService struct {
	credentials    domain.CredentialRepository
	profiles       domain.UserProfileRepository
	sessions       domain.AuthSessionRepository
	hasher         domain.PasswordHasher
	issuer         domain.TokenIssuer
	verifier       domain.TokenVerifier
	emailService   domain.EmailService
	tokenExpiry    time.Duration
	contextTimeout time.Duration
	logger         *slog.Logger
	now            func() time.Time
}

// NewAuthService creates an AuthService with the given repositories and auth ports.
// emailService may be nil, in which case no welcome email is sent.
func NewAuthService(
	credentials domain.CredentialRepository,
	profiles domain.UserProfileRepository,
	sessions domain.AuthSessionRepository,
	hasher domain.PasswordHasher,
	issuer domain.TokenIssuer,
	verifier domain.TokenVerifier,
	emailService domain.EmailService,
	tokenExpiry time.Duration,
	timeout time.Duration,
	logger *slog.Logger,
) domain.AuthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &authService{
		credentials:    credentials,
		profiles:       profiles,
		sessions:       sessions,
		hasher:         hasher,
		issuer:         issuer,
		verifier:       verifier,
		emailService:   emailService,
		tokenExpiry:    tokenExpiry,
		contextTimeout: timeout,
		logger:         logger,
		now:            time.Now,
	}
}

func normalizeEmail(email string) string {
	return strings.TrimSpace(strings.ToLower(email))
}

func validateSignUp(in domain.SignUpInput) error {
	switch {
	case in.Email == "":
		return &domain.ValidationError{Kind: domain.MissingField, Field: "email"}
	case !emailRegexp.MatchString(in.Email):
		return &domain.ValidationError{Kind: domain.InvalidInput, Field: "email", Err: errors.New("invalid email format")}
	case in.Password == "":
		return &domain.ValidationError{Kind: domain.MissingField, Field: "password"}
	case len(in.Password) < minPasswordLen:
		return &domain.ValidationError{Kind: domain.InvalidInput, Field: "password", Err: fmt.Errorf("password must be at least %d characters", minPasswordLen)}
	case in.Password != in.ConfirmPassword:
		return &domain.ValidationError{Kind: domain.InvalidInput, Field: "confirmPassword", Err: errors.New("passwords do not match")}
	}
	return nil
}

func (s *authService) SignUp(ctx context.Context, in domain.SignUpInput) (*domain.UserProfile, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	in.Email = normalizeEmail(in.Email)
	in.Name = strings.TrimSpace(in.Name)
	if err := validateSignUp(in); err != nil {
		return nil, err
	}

	salt, err := s.hasher.GenerateSalt()
	if err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}
	hash, err := s.hasher.Hash(salt, in.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := s.now().UTC()
	creds := &domain.Credentials{
		Email:        in.Email,
		PasswordHash: hash,
		Salt:         salt,
		CreatedAt:    now,
	}
	if err := s.credentials.Create(ctx, creds); err != nil {
		if domain.IsAuth(err, domain.AlreadyRegistered) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create credentials: %w", err)
	}

	profile := domain.NewUserProfile(creds.UID, in.Email, in.Name, now, now)
	if err := s.profiles.Create(ctx, profile); err != nil {
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}

	if s.emailService != nil {
		data := &domain.WelcomeMessageEmailData{Email: profile.Email, Name: profile.Name}
		if err := s.emailService.SendWelcomeMessage(ctx, data); err != nil {
			s.logger.WarnContext(ctx, "welcome email failed", "uid", profile.UID, "error", err)
		}
	}
	return profile, nil
}

func (s *authService) SignIn(ctx context.Context, email, password string) (string, *domain.UserProfile, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	email = normalizeEmail(email)
	creds, err := s.credentials.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", nil, &domain.AuthError{Kind: domain.InvalidCredentials}
		}
		return "", nil, fmt.Errorf("failed to load credentials: %w", err)
	}
	if err := s.hasher.Compare(creds.PasswordHash, creds.Salt, password); err != nil {
		return "", nil, &domain.AuthError{Kind: domain.InvalidCredentials}
	}

	profile, err := s.profiles.GetByID(ctx, creds.UID)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			return "", nil, fmt.Errorf("failed to load profile: %w", err)
		}
		// A missing profile signs in as a plain user.
		profile = domain.NewUserProfile(creds.UID, creds.Email, "", creds.CreatedAt, creds.CreatedAt)
	}

	now := s.now().UTC()
	session := &domain.AuthSession{
		ID:        uuid.NewString(),
		UID:       creds.UID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.tokenExpiry),
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return "", nil, fmt.Errorf("failed to create session: %w", err)
	}

	identity := domain.Identity{UID: creds.UID, Email: creds.Email, SessionID: session.ID}
	token, err := s.issuer.Issue(identity, s.tokenExpiry)
	if err != nil {
		return "", nil, &domain.AuthError{Kind: domain.AuthUnknown, Err: err}
	}
	return token, profile, nil
}

func (s *authService) SignOut(ctx context.Context, identity domain.Identity) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := s.sessions.Delete(ctx, identity.SessionID); err != nil && !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("failed to revoke session: %w", err)
	}
	return nil
}

func (s *authService) Authenticate(ctx context.Context, token string) (domain.Identity, error) {
	identity, err := s.verifier.Verify(token)
	if err != nil {
		return domain.Identity{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	session, err := s.sessions.GetByID(ctx, identity.SessionID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Identity{}, fmt.Errorf("session revoked: %w", domain.ErrUnauthorized)
		}
		return domain.Identity{}, fmt.Errorf("failed to load session: %w", err)
	}
	if session.UID != identity.UID {
		return domain.Identity{}, fmt.Errorf("session mismatch: %w", domain.ErrUnauthorized)
	}
	if !s.now().Before(session.ExpiresAt) {
		return domain.Identity{}, domain.ErrSessionExpired
	}
	return identity, nil
}
