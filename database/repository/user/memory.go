package userRepo

import (
	"context"
	"fmt"
	"sync"
	"time"

	"timeswap/database"
	"timeswap/models"
)

type memoryUserRepo struct {
	mu    sync.Mutex
	users map[string]*models.User
}

func NewMemoryUserRepo() UserRepository {
	return &memoryUserRepo{users: make(map[string]*models.User)}
}

func (r *memoryUserRepo) Create(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.users[user.ID]; exists {
		return fmt.Errorf("failed to create user %s: %w", user.ID, database.ErrDuplicate)
	}
	for _, u := range r.users {
		if user.Username != "" && u.Username == user.Username {
			return fmt.Errorf("failed to create user %q: %w", user.Username, database.ErrDuplicate)
		}
	}
	r.users[user.ID] = user.Clone()
	return nil
}

func (r *memoryUserRepo) GetByID(_ context.Context, id string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	return u.Clone(), nil
}

func (r *memoryUserRepo) Deactivate(_ context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return database.ErrNotFound
	}
	u.IsActive = false
	u.UpdatedAt = at
	return nil
}

func (r *memoryUserRepo) Debit(_ context.Context, id string, amount int64, at time.Time) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok || u.Credits < amount {
		return nil, database.ErrConditionNotMet
	}
	u.Credits -= amount
	u.UpdatedAt = at
	return u.Clone(), nil
}

func (r *memoryUserRepo) Credit(_ context.Context, id string, amount int64, at time.Time) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return nil, database.ErrConditionNotMet
	}
	u.Credits += amount
	u.UpdatedAt = at
	return u.Clone(), nil
}

func (r *memoryUserRepo) CompareAndSetRating(_ context.Context, id string, expectedCount int, next models.Rating, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok || u.Rating.Count != expectedCount {
		return database.ErrConditionNotMet
	}
	u.Rating = next
	u.UpdatedAt = at
	return nil
}
