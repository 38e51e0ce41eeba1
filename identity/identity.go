// Package identity exposes the current authenticated identity. Authentication
// itself lives outside this core.
package identity

import (
	"context"
	"errors"
	"sync"

	"goflare.io/catering/models"
)

type Provider interface {
	CurrentUser(ctx context.Context) (*models.User, error)
}

var ErrNotAuthenticated = errors.New("not authenticated")

var _ Provider = (*Static)(nil)

// Static holds a fixed current user, settable by the embedding application
// as its auth state changes.
type Static struct {
	mu   sync.RWMutex
	user *models.User
}

func NewStatic(user *models.User) *Static {
	return &Static{user: user}
}

func (s *Static) CurrentUser(_ context.Context) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.user == nil {
		return nil, ErrNotAuthenticated
	}
	user := *s.user
	return &user, nil
}

// SetUser replaces the current user; nil means logged out.
func (s *Static) SetUser(user *models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = user
}
