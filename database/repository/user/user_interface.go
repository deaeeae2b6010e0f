package userRepo

import (
	"context"
	"time"

	"timeswap/models"
)

// UserRepository defines methods for user data access. Balance and rating
// changes are conditional single-document updates.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	Deactivate(ctx context.Context, id string, at time.Time) error
	// Debit subtracts amount only if the balance covers it; otherwise
	// database.ErrConditionNotMet.
	Debit(ctx context.Context, id string, amount int64, at time.Time) (*models.User, error)
	Credit(ctx context.Context, id string, amount int64, at time.Time) (*models.User, error)
	// CompareAndSetRating stores next only if the stored rating count still
	// equals expectedCount.
	CompareAndSetRating(ctx context.Context, id string, expectedCount int, next models.Rating, at time.Time) error
}
