package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"timeswap/database"
	"timeswap/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	minUsernameLen = 3
	maxUsernameLen = 32
)

// Signup opens an account holding the configured starting credits.
func (s *DefaultUserService) Signup(ctx context.Context, username string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if len(username) < minUsernameLen || len(username) > maxUsernameLen {
		return nil, models.Reject(models.ReasonInvalidInput, "username must be between %d and %d characters", minUsernameLen, maxUsernameLen)
	}

	now := s.Now()
	u := &models.User{
		ID:        uuid.New().String(),
		Username:  username,
		Credits:   s.SignupCredits,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.Repo.Create(ctx, u); err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			return nil, models.Reject(models.ReasonUsernameTaken, "username %q is taken", username)
		}
		s.Logger.Error("Signup: failed to create user", zap.String("username", username), zap.Error(err))
		return nil, fmt.Errorf("registration failed: %w", err)
	}

	s.Logger.Info("user signed up", zap.String("userId", u.ID), zap.Int64("credits", u.Credits))
	return u, nil
}
