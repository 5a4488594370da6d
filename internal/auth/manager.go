package auth

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/rohits-web03/otadash/internal/apperr"
	"github.com/rohits-web03/otadash/internal/logs"
	"github.com/rohits-web03/otadash/internal/models"
)

const revokedPrefix = "session:revoked:"

// Revocations remembers signed-out session ids until their tokens expire.
type Revocations interface {
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Exists(ctx context.Context, key string) (bool, error)
}

// Manager owns the live sessions of the process.
type Manager struct {
	tokens  *Tokens
	users   UserGetter
	revoked Revocations
	log     *logrus.Entry

	mu       sync.Mutex
	sessions map[string]*Session
	onDone   []func(sid string)
}

func NewManager(tokens *Tokens, users UserGetter, revoked Revocations) *Manager {
	return &Manager{
		tokens:   tokens,
		users:    users,
		revoked:  revoked,
		log:      logs.WithComponent("sessions"),
		sessions: map[string]*Session{},
	}
}

// OnDispose registers fn to run after any session is disposed.
func (m *Manager) OnDispose(fn func(sid string)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onDone = append(m.onDone, fn)
}

// Start opens a session for a user who just signed in and returns its token.
func (m *Manager) Start(ctx context.Context, u *models.User) (string, time.Time, *Session, error) {
	sid := uuid.NewString()
	token, exp, err := m.tokens.Issue(u.UID, sid)
	if err != nil {
		return "", time.Time{}, nil, apperr.NewInternalError("Failed to create token", err)
	}
	s := m.register(sid, u.UID, exp)
	s.Set(u)
	m.log.WithFields(logrus.Fields{"sid": sid, "user": u.UID}).Debug("session started")
	return token, exp, s, nil
}

// Authenticate verifies a token and returns its session with a freshly loaded user.
func (m *Manager) Authenticate(ctx context.Context, token string) (*Session, error) {
	if token == "" {
		return nil, apperr.NewAuthError("Unauthorized", nil)
	}
	claims, err := m.tokens.Parse(token)
	if err != nil {
		return nil, apperr.NewAuthError("Unauthorized", err)
	}
	revoked, err := m.revoked.Exists(ctx, revokedPrefix+claims.SessionID)
	if err != nil {
		return nil, apperr.NewUnavailableError("Session store unavailable", err)
	}
	if revoked {
		return nil, apperr.NewAuthError("Session has ended", nil)
	}

	s := m.lookup(claims.SessionID)
	if s == nil {
		s = m.register(claims.SessionID, claims.UserID, claims.ExpiresAt.Time)
	}
	if s.UserID != claims.UserID {
		return nil, apperr.NewAuthError("Unauthorized", nil)
	}
	if err := s.Resolve(ctx, m.users); err != nil {
		return nil, err
	}
	return s, nil
}

// SignOut revokes the session token and disposes the session.
func (m *Manager) SignOut(ctx context.Context, s *Session) error {
	ttl := time.Until(s.ExpiresAt)
	if ttl < time.Second {
		ttl = time.Second
	}
	err := m.revoked.Set(ctx, revokedPrefix+s.ID, s.UserID, ttl)

	m.mu.Lock()
	delete(m.sessions, s.ID)
	m.mu.Unlock()
	s.SignOut()

	if err != nil {
		return apperr.NewUnavailableError("Failed to revoke session", err)
	}
	return nil
}

// Sweep disposes sessions whose tokens have expired.
func (m *Manager) Sweep(now time.Time) int {
	m.mu.Lock()
	var expired []*Session
	for id, s := range m.sessions {
		if !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt) {
			expired = append(expired, s)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	for _, s := range expired {
		s.SignOut()
	}
	return len(expired)
}

// Active is the number of live sessions.
func (m *Manager) Active() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// SessionsOf returns the live sessions of a user.
func (m *Manager) SessionsOf(uid string) []*Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*Session
	for _, s := range m.sessions {
		if s.UserID == uid {
			out = append(out, s)
		}
	}
	return out
}

func (m *Manager) lookup(sid string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessions[sid]
}

func (m *Manager) register(sid, uid string, exp time.Time) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[sid]; ok {
		return s
	}
	s := NewSession(sid, uid, exp)
	s.OnChange(func(c Change) {
		if c.Phase != PhaseDisposed {
			return
		}
		m.mu.Lock()
		hooks := append([]func(string){}, m.onDone...)
		m.mu.Unlock()
		for _, fn := range hooks {
			fn(c.SessionID)
		}
	})
	m.sessions[sid] = s
	return s
}
