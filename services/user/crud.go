package user

import (
	"context"
	"errors"

	"timeswap/database"
	"timeswap/models"

	"go.uber.org/zap"
)

func (s *DefaultUserService) GetUserByID(ctx context.Context, userID string) (*models.User, error) {
	u, err := s.Repo.GetByID(ctx, userID)
	if errors.Is(err, database.ErrNotFound) {
		return nil, models.Reject(models.ReasonUserNotFound, "user %s not found", userID)
	}
	return u, err
}

func (s *DefaultUserService) RequireActive(ctx context.Context, userID string) (*models.User, error) {
	u, err := s.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !u.IsActive {
		return nil, models.Reject(models.ReasonUserInactive, "user %s is deactivated", userID)
	}
	return u, nil
}

// Deactivate soft-deletes the account. Balances and bookings are kept for
// audit; the user can no longer create slots or bookings.
func (s *DefaultUserService) Deactivate(ctx context.Context, userID string) error {
	err := s.Repo.Deactivate(ctx, userID, s.Now())
	if errors.Is(err, database.ErrNotFound) {
		return models.Reject(models.ReasonUserNotFound, "user %s not found", userID)
	}
	if err != nil {
		return err
	}
	s.Logger.Info("user deactivated", zap.String("userId", userID))
	return nil
}
