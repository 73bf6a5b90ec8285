package app

import (
	"context"
	"fmt"
	"sync"

	"trivia-quiz-service/internal/domain"
)

// AuthStateKey is the storage key of the user directory and active session.
const AuthStateKey = "auth-storage"

type authState struct {
	User            *domain.Identity `json:"user"`
	IsAuthenticated bool             `json:"isAuthenticated"`
	Users           []domain.User    `json:"users"`
}

// AuthStore is the local user directory plus the single active session.
// Credentials are compared verbatim. Every mutation is written through to the StateStore
// and only takes effect in memory once the write succeeded.
type AuthStore struct {
	store StateStore

	mu    sync.RWMutex
	state authState
}

// NewAuthStore loads previously persisted state from store.
func NewAuthStore(ctx context.Context, store StateStore) (*AuthStore, error) {
	a := &AuthStore{store: store}
	if _, err := store.Load(ctx, AuthStateKey, &a.state); err != nil {
		return nil, fmt.Errorf("load auth state: %w", err)
	}
	if a.state.User == nil {
		a.state.IsAuthenticated = false
	}
	return a, nil
}

// Register adds a user. Usernames are unique and compared case-sensitively.
func (a *AuthStore) Register(ctx context.Context, username, password string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	for _, u := range a.state.Users {
		if u.Username == username {
			return domain.ErrDuplicateUsername
		}
	}

	next := a.cloneLocked()
	next.Users = append(next.Users, domain.User{Username: username, Password: password})
	return a.commitLocked(ctx, next)
}

// Login starts a session when both fields match a stored user exactly. On mismatch it
// returns false and leaves the current session alone.
func (a *AuthStore) Login(ctx context.Context, username, password string) (bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	for _, u := range a.state.Users {
		if u.Username != username || u.Password != password {
			continue
		}
		next := a.cloneLocked()
		next.User = &domain.Identity{Username: u.Username}
		next.IsAuthenticated = true
		if err := a.commitLocked(ctx, next); err != nil {
			return false, err
		}
		return true, nil
	}
	return false, nil
}

// Logout clears the active session.
func (a *AuthStore) Logout(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	next := a.cloneLocked()
	next.User = nil
	next.IsAuthenticated = false
	return a.commitLocked(ctx, next)
}

// Current returns the logged-in identity.
func (a *AuthStore) Current() (domain.Identity, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if !a.state.IsAuthenticated || a.state.User == nil {
		return domain.Identity{}, false
	}
	return *a.state.User, true
}

// Users returns a copy of the directory.
func (a *AuthStore) Users() []domain.User {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make([]domain.User, len(a.state.Users))
	copy(out, a.state.Users)
	return out
}

func (a *AuthStore) cloneLocked() authState {
	next := authState{
		IsAuthenticated: a.state.IsAuthenticated,
		Users:           make([]domain.User, len(a.state.Users)),
	}
	copy(next.Users, a.state.Users)
	if a.state.User != nil {
		user := *a.state.User
		next.User = &user
	}
	return next
}

func (a *AuthStore) commitLocked(ctx context.Context, next authState) error {
	if err := a.store.Save(ctx, AuthStateKey, next); err != nil {
		return fmt.Errorf("save auth state: %w", err)
	}
	a.state = next
	return nil
}
