// Package session maps the auth session and the caller's profile to a routing decision.
package session

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"

	"eventbuddy/internal/domain"
)

// ProfileLookup is the part of the profile repository the gate needs.
type ProfileLookup interface {
	GetByID(ctx context.Context, uid string) (*domain.UserProfile, error)
}

// LookupFailureFunc is told about profile lookups that failed for a reason other than
// a missing profile. The gate still resolves such callers as non-admin.
type LookupFailureFunc func(uid string, err error)

// Option configures a Gate.
type Option func(*Gate)

// WithLogger sets the logger used to report lookup failures.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Gate) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// WithLookupFailureHook registers fn for failed profile lookups.
func WithLookupFailureHook(fn LookupFailureFunc) Option {
	return func(g *Gate) { g.onFailure = fn }
}

// Gate is the session state machine. It starts Unresolved and re-evaluates only when
// told: on an auth change, on sign-out, or on Refresh. It never polls.
type Gate struct {
	profiles  ProfileLookup
	logger    *slog.Logger
	onFailure LookupFailureFunc

	mu       sync.Mutex
	state    domain.SessionState
	identity *domain.Identity
	// gen increments on every transition request so that a slow lookup cannot
	// overwrite a newer sign-out or auth change.
	gen      uint64
	watchers map[int]func(domain.SessionView)
	nextID   int
}

// NewGate returns a Gate in the Unresolved state.
func NewGate(profiles ProfileLookup, opts ...Option) *Gate {
	g := &Gate{
		profiles: profiles,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		state:    domain.Unresolved,
		watchers: make(map[int]func(domain.SessionView)),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// State returns the current state.
func (g *Gate) State() domain.SessionState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// View returns the current state and identity.
func (g *Gate) View() domain.SessionView {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.viewLocked()
}

func (g *Gate) viewLocked() domain.SessionView {
	v := domain.SessionView{State: g.state, IsAdmin: g.state == domain.AuthenticatedAdmin}
	if g.identity != nil {
		v.UID = g.identity.UID
	}
	return v
}

// OnAuthChange handles an auth status notification. A nil identity means no session.
func (g *Gate) OnAuthChange(ctx context.Context, identity *domain.Identity) domain.SessionState {
	g.mu.Lock()
	g.gen++
	gen := g.gen
	if identity == nil {
		g.identity = nil
		g.mu.Unlock()
		return g.transition(gen, nil, domain.Unauthenticated)
	}
	id := *identity
	g.identity = &id
	g.mu.Unlock()

	return g.transition(gen, &id, g.lookup(ctx, id.UID))
}

// SignOut moves to Unauthenticated regardless of the current state.
func (g *Gate) SignOut() {
	g.mu.Lock()
	g.gen++
	gen := g.gen
	g.identity = nil
	g.mu.Unlock()
	g.transition(gen, nil, domain.Unauthenticated)
}

// Refresh re-runs the profile lookup for the current identity, picking up role changes.
// Without an identity it leaves the state as is.
func (g *Gate) Refresh(ctx context.Context) domain.SessionState {
	g.mu.Lock()
	if g.identity == nil {
		s := g.state
		g.mu.Unlock()
		return s
	}
	g.gen++
	gen := g.gen
	id := *g.identity
	g.mu.Unlock()

	return g.transition(gen, &id, g.lookup(ctx, id.UID))
}

// Watch registers fn to be called after every transition. The returned func removes it.
func (g *Gate) Watch(fn func(domain.SessionView)) (unsubscribe func()) {
	g.mu.Lock()
	id := g.nextID
	g.nextID++
	g.watchers[id] = fn
	g.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			g.mu.Lock()
			delete(g.watchers, id)
			g.mu.Unlock()
		})
	}
}

func (g *Gate) transition(gen uint64, identity *domain.Identity, next domain.SessionState) domain.SessionState {
	g.mu.Lock()
	if gen != g.gen {
		// superseded by a later request
		s := g.state
		g.mu.Unlock()
		return s
	}
	g.state = next
	g.identity = identity
	view := g.viewLocked()
	watchers := make([]func(domain.SessionView), 0, len(g.watchers))
	for _, w := range g.watchers {
		watchers = append(watchers, w)
	}
	g.mu.Unlock()

	for _, w := range watchers {
		w(view)
	}
	return next
}

// lookup resolves the role for uid. Lookup failures fail closed on privilege and open
// on access: the caller becomes a plain user and the failure is reported.
func (g *Gate) lookup(ctx context.Context, uid string) domain.SessionState {
	profile, err := g.profiles.GetByID(ctx, uid)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			g.logger.WarnContext(ctx, "profile lookup failed, treating caller as non-admin", "uid", uid, "err", err)
			if g.onFailure != nil {
				g.onFailure(uid, err)
			}
		}
		return domain.AuthenticatedUser
	}
	return StateFor(profile)
}

// StateFor maps a found profile to its authenticated state.
func StateFor(profile *domain.UserProfile) domain.SessionState {
	if profile != nil && profile.IsAdmin {
		return domain.AuthenticatedAdmin
	}
	return domain.AuthenticatedUser
}

// Resolve runs a one-shot gate for identity and returns the resulting view.
func Resolve(ctx context.Context, profiles ProfileLookup, identity *domain.Identity, opts ...Option) domain.SessionView {
	g := NewGate(profiles, opts...)
	g.OnAuthChange(ctx, identity)
	return g.View()
}
