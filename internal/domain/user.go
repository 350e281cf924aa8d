package domain

import (
	"context"
	"encoding/json"
	"slices"
	"time"
)

// UserProfile is the per-user document holding display data, the admin flag and favorites.
// swagger:model UserProfile
type UserProfile struct {
	UID       string    `json:"uid"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	IsAdmin   bool      `json:"isAdmin"`
	Favorites []string  `json:"favorites"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewUserProfile returns a non-admin profile with no favorites.
func NewUserProfile(uid, email, name string, createdAt, updatedAt time.Time) *UserProfile {
	return &UserProfile{
		UID:       uid,
		Email:     email,
		Name:      name,
		IsAdmin:   false,
		Favorites: []string{},
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}
}

// HasFavorite reports whether eventID is bookmarked.
func (p *UserProfile) HasFavorite(eventID string) bool {
	return slices.Contains(p.Favorites, eventID)
}

// UnmarshalJSON accepts the legacy "favoritos" key written by older clients.
// "favorites" wins when both are present.
func (p *UserProfile) UnmarshalJSON(data []byte) error {
	type plain UserProfile
	aux := struct {
		*plain
		Legacy []string `json:"favoritos"`
	}{plain: (*plain)(p)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if p.Favorites == nil {
		p.Favorites = aux.Legacy
	}
	if p.Favorites == nil {
		p.Favorites = []string{}
	}
	return nil
}

// Credentials is the stored email/password pair for a user.
type Credentials struct {
	UID          string
	Email        string
	PasswordHash string
	Salt         string
	CreatedAt    time.Time
}

// Identity is an authenticated caller.
type Identity struct {
	UID       string
	Email     string
	SessionID string
}

// AuthSession is a signed-in session. It lives until sign-out or expiry.
type AuthSession struct {
	ID        string
	UID       string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// SignUpInput carries the signup form.
type SignUpInput struct {
	Email           string
	Password        string
	ConfirmPassword string
	Name            string
}

// PasswordHasher handles salt generation, hashing, and verification.
// Implementations may use bcrypt, argon2, etc.
type PasswordHasher interface {
	GenerateSalt() (string, error)
	Hash(salt, password string) (hash string, err error)
	Compare(hash, salt, password string) error
}

// TokenIssuer issues tokens (e.g. JWT) for an authenticated session.
type TokenIssuer interface {
	Issue(identity Identity, expiry time.Duration) (string, error)
}

// TokenVerifier verifies a token and returns the identity it was issued for.
type TokenVerifier interface {
	Verify(token string) (Identity, error)
}

// UserProfileRepository defines the interface for profile storage
type UserProfileRepository interface {
	Create(ctx context.Context, profile *UserProfile) error
	GetByID(ctx context.Context, uid string) (*UserProfile, error)
	GetByEmail(ctx context.Context, email string) (*UserProfile, error)
	UpdateFavorites(ctx context.Context, uid string, favorites []string) error
	SetAdmin(ctx context.Context, uid string, isAdmin bool) error
}

// CredentialRepository stores password credentials. Create assigns UID.
type CredentialRepository interface {
	Create(ctx context.Context, creds *Credentials) error
	GetByEmail(ctx context.Context, email string) (*Credentials, error)
}

// AuthSessionRepository stores signed-in sessions.
type AuthSessionRepository interface {
	Create(ctx context.Context, session *AuthSession) error
	GetByID(ctx context.Context, id string) (*AuthSession, error)
	Delete(ctx context.Context, id string) error
}

// AuthService defines signup, sign-in, sign-out and token authentication.
type AuthService interface {
	SignUp(ctx context.Context, in SignUpInput) (*UserProfile, error)
	SignIn(ctx context.Context, email, password string) (token string, profile *UserProfile, err error)
	SignOut(ctx context.Context, identity Identity) error
	Authenticate(ctx context.Context, token string) (Identity, error)
}

// ProfileService defines profile, favorites and participation listings for a user.
type ProfileService interface {
	GetProfile(ctx context.Context, uid string) (*UserProfile, error)
	// ToggleFavorite adds or removes eventID and reports whether it is now a favorite.
	ToggleFavorite(ctx context.Context, uid, eventID string) ([]string, bool, error)
	ListFavoriteEvents(ctx context.Context, uid string) ([]*Event, error)
	ListParticipatingEvents(ctx context.Context, uid string) ([]*Event, error)
	SetAdmin(ctx context.Context, email string, isAdmin bool) (*UserProfile, error)
}
