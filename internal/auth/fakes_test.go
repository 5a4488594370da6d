package auth

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rohits-web03/otadash/internal/apperr"
	"github.com/rohits-web03/otadash/internal/models"
)

type memUsers struct {
	mu    sync.Mutex
	users map[string]models.User
}

func newMemUsers(users ...models.User) *memUsers {
	m := &memUsers{users: map[string]models.User{}}
	for _, u := range users {
		m.users[u.UID] = u
	}
	return m
}

func (m *memUsers) Get(_ context.Context, uid string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[uid]
	if !ok {
		return nil, apperr.NewNotFoundError("User not found", nil)
	}
	return &u, nil
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, apperr.NewNotFoundError("User not found", nil)
}

func (m *memUsers) Create(_ context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u.UID == "" {
		u.UID = uuid.NewString()
	}
	m.users[u.UID] = *u
	return nil
}

func (m *memUsers) Update(_ context.Context, uid string, p models.UserPatch) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[uid]
	if !ok {
		return nil, apperr.NewNotFoundError("User not found", nil)
	}
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Organization != nil {
		u.Organization = *p.Organization
	}
	if p.Avatar != nil {
		u.Avatar = *p.Avatar
	}
	if p.Role != nil {
		u.Role = *p.Role
	}
	if p.LastLogin != nil {
		u.LastLogin = p.LastLogin
	}
	m.users[uid] = u
	return &u, nil
}

type memRevocations struct {
	mu   sync.Mutex
	keys map[string]time.Duration
}

func (r *memRevocations) Set(_ context.Context, key, _ string, ttl time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.keys == nil {
		r.keys = map[string]time.Duration{}
	}
	r.keys[key] = ttl
	return nil
}

func (r *memRevocations) Exists(_ context.Context, key string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.keys[key]
	return ok, nil
}
