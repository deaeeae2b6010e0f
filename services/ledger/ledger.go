package ledger

import (
	"context"
	"errors"
	"time"

	"timeswap/database"
	"timeswap/database/repository"
	"timeswap/metrics"
	"timeswap/models"

	"go.uber.org/zap"
)

// Ledger moves credits in and out of a single user's balance. Both operations
// are one conditional update on the user record.
type Ledger interface {
	Debit(ctx context.Context, userID string, amount int64) (*models.User, error)
	Credit(ctx context.Context, userID string, amount int64) (*models.User, error)
}

type DefaultLedger struct {
	Users  repository.UserRepository
	Logger *zap.Logger
	Now    func() time.Time
}

func NewLedger(users repository.UserRepository, logger *zap.Logger) *DefaultLedger {
	return &DefaultLedger{Users: users, Logger: logger, Now: time.Now}
}

// Debit removes amount from the balance, refusing with InsufficientFunds
// rather than letting it go negative.
func (l *DefaultLedger) Debit(ctx context.Context, userID string, amount int64) (*models.User, error) {
	if amount <= 0 {
		return nil, models.Reject(models.ReasonInvalidAmount, "debit amount must be positive, got %d", amount)
	}

	user, err := l.Users.Debit(ctx, userID, amount, l.Now())
	if err == nil {
		metrics.ObserveLedger("debit", amount)
		l.Logger.Debug("credits debited",
			zap.String("userId", userID), zap.Int64("amount", amount), zap.Int64("balance", user.Credits))
		return user, nil
	}
	if !errors.Is(err, database.ErrConditionNotMet) {
		return nil, err
	}

	// The guard failed; read back to report why.
	current, getErr := l.Users.GetByID(ctx, userID)
	if errors.Is(getErr, database.ErrNotFound) {
		return nil, models.Reject(models.ReasonUserNotFound, "user %s not found", userID)
	}
	if getErr != nil {
		return nil, getErr
	}
	return nil, models.Reject(models.ReasonInsufficientFunds,
		"balance %d is below required %d", current.Credits, amount)
}

func (l *DefaultLedger) Credit(ctx context.Context, userID string, amount int64) (*models.User, error) {
	if amount <= 0 {
		return nil, models.Reject(models.ReasonInvalidAmount, "credit amount must be positive, got %d", amount)
	}

	user, err := l.Users.Credit(ctx, userID, amount, l.Now())
	if errors.Is(err, database.ErrConditionNotMet) {
		return nil, models.Reject(models.ReasonUserNotFound, "user %s not found", userID)
	}
	if err != nil {
		return nil, err
	}
	metrics.ObserveLedger("credit", amount)
	l.Logger.Debug("credits credited",
		zap.String("userId", userID), zap.Int64("amount", amount), zap.Int64("balance", user.Credits))
	return user, nil
}
