package auth

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// memoryStore is an in-process UserStore for tests. Uniqueness is enforced
// atomically under the mutex, mirroring the database constraint.
type memoryStore struct {
	mu     sync.Mutex
	byName map[string]User
	byID   map[string]User
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		byName: make(map[string]User),
		byID:   make(map[string]User),
	}
}

func (m *memoryStore) FindByUsername(_ context.Context, username string) (User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	user, ok := m.byName[username]
	if !ok {
		return User{}, ErrUserNotFound
	}
	return user, nil
}

func (m *memoryStore) FindByID(_ context.Context, id string) (User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	user, ok := m.byID[id]
	if !ok {
		return User{}, ErrUserNotFound
	}
	return user, nil
}

func (m *memoryStore) Create(_ context.Context, username, passwordHash, totpSecret string) (User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.byName[username]; exists {
		return User{}, ErrUsernameTaken
	}

	now := time.Now().UTC()
	user := User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: passwordHash,
		TOTPSecret:   totpSecret,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	m.byName[username] = user
	m.byID[user.ID] = user

	return user, nil
}

func (m *memoryStore) delete(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if user, ok := m.byID[id]; ok {
		delete(m.byName, user.Username)
		delete(m.byID, id)
	}
}

// unavailableStore fails every call the way the Postgres repository does
// when connectivity is lost.
type unavailableStore struct{}

func (unavailableStore) FindByUsername(context.Context, string) (User, error) {
	return User{}, errors.Join(ErrStoreUnavailable, errors.New("dial error"))
}

func (unavailableStore) FindByID(context.Context, string) (User, error) {
	return User{}, errors.Join(ErrStoreUnavailable, errors.New("dial error"))
}

func (unavailableStore) Create(context.Context, string, string, string) (User, error) {
	return User{}, errors.Join(ErrStoreUnavailable, errors.New("dial error"))
}
