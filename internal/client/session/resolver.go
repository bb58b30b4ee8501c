// Package session decides who the current user is.
//
// The Resolver starts Unknown, reads the credential from local storage and
// asks the API for the profile behind it. A rejected or expired credential
// is purged from storage; any other failure leaves storage alone and
// reports the user as unauthenticated for this round.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/dmitrijs2005/hhblog/internal/client/client"
	"github.com/dmitrijs2005/hhblog/internal/client/events"
	"github.com/dmitrijs2005/hhblog/internal/client/models"
	"github.com/dmitrijs2005/hhblog/internal/common"
	"github.com/dmitrijs2005/hhblog/internal/logging"
	"github.com/golang-jwt/jwt/v5"
)

// GetUserTimeout bounds the profile lookup.
const GetUserTimeout = 5 * time.Second

type Status int

const (
	StatusUnknown Status = iota
	StatusAuthenticated
	StatusUnauthenticated
)

func (s Status) String() string {
	switch s {
	case StatusAuthenticated:
		return "authenticated"
	case StatusUnauthenticated:
		return "unauthenticated"
	default:
		return "unknown"
	}
}

type State struct {
	Status  Status
	Profile *models.User
}

func (s State) Authenticated() bool {
	return s.Status == StatusAuthenticated
}

func (s State) Role() string {
	if s.Profile == nil {
		return ""
	}
	return s.Profile.Role
}

func (s State) IsAdmin() bool {
	return s.Role() == common.RoleAdmin
}

type UserGetter interface {
	GetUser(ctx context.Context) (*models.User, error)
}

type Store interface {
	Session(ctx context.Context) (string, bool, error)
	ClearAuth(ctx context.Context) error
	SetProfile(ctx context.Context, u models.User) error
}

type Resolver struct {
	api   UserGetter
	store Store
	bus   *events.Bus
	log   logging.Logger
	now   func() time.Time

	mu      sync.Mutex
	state   State
	token   string // credential the state was derived from
	issued  uint64
	applied uint64
}

func NewResolver(api UserGetter, store Store, bus *events.Bus, log logging.Logger) *Resolver {
	return &Resolver{api: api, store: store, bus: bus, log: log, now: time.Now}
}

func (r *Resolver) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Reset returns the state to Unknown; the next Resolve starts over.
func (r *Resolver) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state = State{}
	r.token = ""
}

func (r *Resolver) begin() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.issued++
	return r.issued
}

// apply stores st unless a later resolution already landed, and returns
// the state in effect afterwards.
func (r *Resolver) apply(seq uint64, st State, token string) State {
	r.mu.Lock()
	defer r.mu.Unlock()
	if seq < r.applied {
		return r.state
	}
	r.applied = seq
	r.state = st
	r.token = token
	return st
}

// Resolve determines the current identity. The returned error is set for
// failures that did not purge the session (network, server); the state is
// then StatusUnauthenticated for this round only.
func (r *Resolver) Resolve(ctx context.Context) (State, error) {
	seq := r.begin()
	anon := State{Status: StatusUnauthenticated}

	token, ok, err := r.store.Session(ctx)
	if err != nil {
		return r.apply(seq, anon, ""), err
	}
	if !ok {
		return r.apply(seq, anon, ""), nil
	}

	if expired(token, r.now()) {
		r.log.Info(ctx, "stored token expired, purging session")
		return r.purge(ctx, seq), nil
	}

	callCtx, cancel := context.WithTimeout(ctx, GetUserTimeout)
	defer cancel()

	u, err := r.api.GetUser(callCtx)
	if err != nil {
		if client.IsUnauthorized(err) {
			r.log.Info(ctx, "token rejected, purging session")
			return r.purge(ctx, seq), nil
		}
		r.log.Warn(ctx, "could not resolve user", "error", err)
		return r.apply(seq, anon, token), err
	}

	if err := r.store.SetProfile(ctx, *u); err != nil {
		r.log.Warn(ctx, "failed to cache profile", "error", err)
	}

	profile := *u
	return r.apply(seq, State{Status: StatusAuthenticated, Profile: &profile}, token), nil
}

func (r *Resolver) purge(ctx context.Context, seq uint64) State {
	st := r.apply(seq, State{Status: StatusUnauthenticated}, "")
	if err := r.store.ClearAuth(ctx); err != nil {
		r.log.Error(ctx, "failed to purge session", "error", err)
		return st
	}
	r.bus.Publish(events.LoginChanged{})
	return st
}

// Attach re-resolves whenever the login state changes, here or in another
// process sharing the store. It returns the function that detaches the
// resolver.
func (r *Resolver) Attach(ctx context.Context) func() {
	offLogin := events.Subscribe(r.bus, func(events.LoginChanged) {
		r.reresolve(ctx)
	})
	offStorage := events.Subscribe(r.bus, func(events.StorageChanged) {
		if r.stale(ctx) {
			r.reresolve(ctx)
		}
	})
	return func() {
		offLogin()
		offStorage()
	}
}

func (r *Resolver) reresolve(ctx context.Context) {
	r.Reset()
	if _, err := r.Resolve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		r.log.Debug(ctx, "re-resolve failed", "error", err)
	}
}

// stale reports whether the stored credential differs from the one the
// current state was derived from.
func (r *Resolver) stale(ctx context.Context) bool {
	token, ok, err := r.store.Session(ctx)
	if err != nil {
		r.log.Warn(ctx, "failed to read session", "error", err)
		return false
	}
	if !ok {
		token = ""
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state.Status == StatusUnknown || r.token != token
}

// expired reports whether token is a JWT whose exp claim is in the past.
// Opaque tokens and tokens without exp are never expired here; the server
// has the final word.
func expired(token string, now time.Time) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return !exp.After(now)
}
