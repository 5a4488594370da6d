package auth

import (
	"context"
	"sync"
	"time"

	"github.com/rohits-web03/otadash/internal/apperr"
	"github.com/rohits-web03/otadash/internal/models"
)

// Phase is the lifecycle of a Session: init, then ready once the user is
// loaded, then disposed after sign-out. Disposed is final.
type Phase string

const (
	PhaseInit     Phase = "init"
	PhaseReady    Phase = "ready"
	PhaseDisposed Phase = "disposed"
)

// Change is delivered to subscribers whenever the session changes.
type Change struct {
	SessionID string
	Phase     Phase
	User      *models.User
}

// UserGetter loads the user behind a session.
type UserGetter interface {
	Get(ctx context.Context, uid string) (*models.User, error)
}

// Session holds the signed-in identity for one browser session. Handlers
// receive it through the request context instead of reaching for globals.
type Session struct {
	ID        string
	UserID    string
	ExpiresAt time.Time

	mu        sync.RWMutex
	phase     Phase
	user      *models.User
	listeners map[int]func(Change)
	nextID    int
}

func NewSession(id, userID string, expiresAt time.Time) *Session {
	return &Session{
		ID:        id,
		UserID:    userID,
		ExpiresAt: expiresAt,
		phase:     PhaseInit,
		listeners: map[int]func(Change){},
	}
}

func (s *Session) Phase() Phase {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.phase
}

// User returns a copy of the signed-in user, nil before ready or after disposal.
func (s *Session) User() *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// State is the gate state of the session.
func (s *Session) State() GateState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return StateOf(s.phase == PhaseInit, s.user)
}

// Can reports whether the session's role allows a.
func (s *Session) Can(a Action) bool {
	st := s.State()
	return st.Status == StatusAuthorized && Can(st.Role, a)
}

// Resolve loads the user from users and moves the session to ready. It is
// called on every request so role changes take effect immediately.
func (s *Session) Resolve(ctx context.Context, users UserGetter) error {
	if s.Phase() == PhaseDisposed {
		return apperr.NewAuthError("Session has ended", nil)
	}
	u, err := users.Get(ctx, s.UserID)
	if err != nil {
		if apperr.Is(err, apperr.ErrorTypeNotFound) {
			return apperr.NewAuthError("User no longer exists", err)
		}
		return err
	}
	s.Set(u)
	return nil
}

// Set replaces the session user and notifies subscribers if anything changed.
func (s *Session) Set(u *models.User) {
	s.mu.Lock()
	if s.phase == PhaseDisposed {
		s.mu.Unlock()
		return
	}
	changed := s.phase != PhaseReady || s.user == nil || !sameProfile(s.user, u)
	cp := *u
	s.user = &cp
	s.phase = PhaseReady
	s.mu.Unlock()
	if changed {
		s.notify()
	}
}

// SignOut clears the user and disposes the session. Later calls are no-ops.
func (s *Session) SignOut() {
	s.mu.Lock()
	if s.phase == PhaseDisposed {
		s.mu.Unlock()
		return
	}
	s.user = nil
	s.phase = PhaseDisposed
	s.mu.Unlock()
	s.notify()

	s.mu.Lock()
	s.listeners = map[int]func(Change){}
	s.mu.Unlock()
}

// OnChange subscribes fn to session changes and returns the unsubscribe func.
func (s *Session) OnChange(fn func(Change)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}

func (s *Session) notify() {
	s.mu.RLock()
	ch := Change{SessionID: s.ID, Phase: s.phase}
	if s.user != nil {
		u := *s.user
		ch.User = &u
	}
	fns := make([]func(Change), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.mu.RUnlock()

	for _, fn := range fns {
		fn(ch)
	}
}

func sameProfile(a, b *models.User) bool {
	return a.UID == b.UID && a.Role == b.Role && a.Name == b.Name && a.Email == b.Email &&
		a.Organization == b.Organization && a.Avatar == b.Avatar
}

type sessionKey struct{}

// WithSession stores s in ctx.
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

// FromContext returns the session stored by WithSession.
func FromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(sessionKey{}).(*Session)
	return s, ok && s != nil
}
