// Package repository provides access to the application's in-memory
// collections. Each repository guards its own collection with a single mutex;
// there is no durable storage behind them.
package repository

import (
	"context"
	"sync"

	"inkwell/internal/models"
)

// UserRepository defines user data access methods.
type UserRepository interface {
	// GetByUsername returns the user with the given username, or nil when no
	// such user exists.
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	// GetByID returns the user with the given ID, or nil when no such user
	// exists.
	GetByID(ctx context.Context, id uint) (*models.User, error)
	// List returns all users in provisioning order.
	List(ctx context.Context) ([]*models.User, error)
}

type memoryUserRepository struct {
	mu         sync.RWMutex
	users      []models.User
	byUsername map[string]int
	byID       map[uint]int
}

// NewMemoryUserRepository creates a UserRepository over the given fixed user
// set. The set is immutable for the lifetime of the process.
func NewMemoryUserRepository(users []models.User) UserRepository {
	r := &memoryUserRepository{
		users:      make([]models.User, len(users)),
		byUsername: make(map[string]int, len(users)),
		byID:       make(map[uint]int, len(users)),
	}
	copy(r.users, users)
	for i := range r.users {
		r.byUsername[r.users[i].Username] = i
		r.byID[r.users[i].ID] = i
	}
	return r
}

func (r *memoryUserRepository) GetByUsername(_ context.Context, username string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i, ok := r.byUsername[username]
	if !ok {
		return nil, nil
	}
	u := r.users[i]
	return &u, nil
}

func (r *memoryUserRepository) GetByID(_ context.Context, id uint) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i, ok := r.byID[id]
	if !ok {
		return nil, nil
	}
	u := r.users[i]
	return &u, nil
}

func (r *memoryUserRepository) List(_ context.Context) ([]*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*models.User, 0, len(r.users))
	for i := range r.users {
		u := r.users[i]
		out = append(out, &u)
	}
	return out, nil
}
