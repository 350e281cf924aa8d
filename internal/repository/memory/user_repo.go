package memory

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"eventbuddy/internal/domain"
)

// ProfileRepository keeps user profiles in a map keyed by uid.
type ProfileRepository struct {
	mu       sync.RWMutex
	profiles map[string]*domain.UserProfile
	now      func() time.Time
}

func NewProfileRepository() *ProfileRepository {
	return &ProfileRepository{profiles: make(map[string]*domain.UserProfile), now: time.Now}
}

func cloneProfile(p *domain.UserProfile) *domain.UserProfile {
	cp := *p
	cp.Favorites = slices.Clone(p.Favorites)
	if cp.Favorites == nil {
		cp.Favorites = []string{}
	}
	return &cp
}

func (r *ProfileRepository) Create(ctx context.Context, p *domain.UserProfile) error {
	if err := ctx.Err(); err != nil {
		return domain.NewUnreachable("create profile", err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.profiles[p.UID]; ok {
		return &domain.AuthError{Kind: domain.AlreadyRegistered}
	}
	r.profiles[p.UID] = cloneProfile(p)
	return nil
}

func (r *ProfileRepository) GetByID(ctx context.Context, uid string) (*domain.UserProfile, error) {
	if err := ctx.Err(); err != nil {
		return nil, domain.NewUnreachable("get profile", err)
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.profiles[uid]
	if !ok {
		return nil, domain.NewNotFound("get profile")
	}
	return cloneProfile(p), nil
}

func (r *ProfileRepository) GetByEmail(ctx context.Context, email string) (*domain.UserProfile, error) {
	if err := ctx.Err(); err != nil {
		return nil, domain.NewUnreachable("get profile by email", err)
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.profiles {
		if strings.EqualFold(p.Email, email) {
			return cloneProfile(p), nil
		}
	}
	return nil, domain.NewNotFound("get profile by email")
}

func (r *ProfileRepository) update(ctx context.Context, op, uid string, fn func(p *domain.UserProfile)) error {
	if err := ctx.Err(); err != nil {
		return domain.NewUnreachable(op, err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.profiles[uid]
	if !ok {
		return domain.NewNotFound(op)
	}
	fn(p)
	p.UpdatedAt = r.now().UTC()
	return nil
}

func (r *ProfileRepository) UpdateFavorites(ctx context.Context, uid string, favorites []string) error {
	cp := slices.Clone(favorites)
	if cp == nil {
		cp = []string{}
	}
	return r.update(ctx, "update favorites", uid, func(p *domain.UserProfile) {
		p.Favorites = cp
	})
}

func (r *ProfileRepository) SetAdmin(ctx context.Context, uid string, isAdmin bool) error {
	return r.update(ctx, "set admin", uid, func(p *domain.UserProfile) {
		p.IsAdmin = isAdmin
	})
}

// CredentialRepository keeps password credentials keyed by lower-cased email.
type CredentialRepository struct {
	mu    sync.RWMutex
	creds map[string]domain.Credentials
}

func NewCredentialRepository() *CredentialRepository {
	return &CredentialRepository{creds: make(map[string]domain.Credentials)}
}

func (r *CredentialRepository) Create(ctx context.Context, c *domain.Credentials) error {
	if err := ctx.Err(); err != nil {
		return domain.NewUnreachable("create credentials", err)
	}
	key := strings.ToLower(c.Email)
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.creds[key]; ok {
		return &domain.AuthError{Kind: domain.AlreadyRegistered}
	}
	c.UID = uuid.NewString()
	r.creds[key] = *c
	return nil
}

func (r *CredentialRepository) GetByEmail(ctx context.Context, email string) (*domain.Credentials, error) {
	if err := ctx.Err(); err != nil {
		return nil, domain.NewUnreachable("get credentials", err)
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.creds[strings.ToLower(email)]
	if !ok {
		return nil, domain.NewNotFound("get credentials")
	}
	return &c, nil
}

// AuthSessionRepository keeps signed-in sessions keyed by id.
type AuthSessionRepository struct {
	mu       sync.RWMutex
	sessions map[string]domain.AuthSession
}

func NewAuthSessionRepository() *AuthSessionRepository {
	return &AuthSessionRepository{sessions: make(map[string]domain.AuthSession)}
}

func (r *AuthSessionRepository) Create(ctx context.Context, s *domain.AuthSession) error {
	if err := ctx.Err(); err != nil {
		return domain.NewUnreachable("create session", err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.ID] = *s
	return nil
}

func (r *AuthSessionRepository) GetByID(ctx context.Context, id string) (*domain.AuthSession, error) {
	if err := ctx.Err(); err != nil {
		return nil, domain.NewUnreachable("get session", err)
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, domain.NewNotFound("get session")
	}
	return &s, nil
}

func (r *AuthSessionRepository) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return domain.NewUnreachable("delete session", err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[id]; !ok {
		return domain.NewNotFound("delete session")
	}
	delete(r.sessions, id)
	return nil
}
