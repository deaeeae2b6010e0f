package user

import (
	"context"
	"time"

	"timeswap/database/repository"
	"timeswap/models"

	"go.uber.org/zap"
)

type UserService interface {
	Signup(ctx context.Context, username string) (*models.User, error)
	GetUserByID(ctx context.Context, userID string) (*models.User, error)
	// RequireActive returns the user or a UserNotFound/UserInactive rejection.
	RequireActive(ctx context.Context, userID string) (*models.User, error)
	Deactivate(ctx context.Context, userID string) error
}

// DefaultUserService is the production implementation.
type DefaultUserService struct {
	Repo          repository.UserRepository
	SignupCredits int64
	Logger        *zap.Logger
	Now           func() time.Time
}

func NewUserService(repo repository.UserRepository, signupCredits int64, logger *zap.Logger) *DefaultUserService {
	return &DefaultUserService{Repo: repo, SignupCredits: signupCredits, Logger: logger, Now: time.Now}
}
