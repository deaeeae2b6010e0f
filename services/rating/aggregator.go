package rating

import (
	"context"
	"errors"
	"math"
	"time"

	"timeswap/database"
	"timeswap/database/repository"
	"timeswap/models"

	"go.uber.org/zap"
)

var (
	DefaultMaxRetries = 5
	DefaultBaseDelay  = 10 * time.Millisecond
	MaxDelay          = time.Second
)

const (
	MinScore = 1
	MaxScore = 5
)

type Sleeper interface {
	Sleep(duration time.Duration)
}

type realSleeper struct{}

func (realSleeper) Sleep(d time.Duration) { time.Sleep(d) }

// Aggregator folds review scores into a user's running mean.
type Aggregator interface {
	FoldRating(ctx context.Context, userID string, score int) (models.Rating, error)
}

// OptimisticAggregator reads the rating and writes it back guarded by the
// count it read, retrying with exponential backoff when another review won.
type OptimisticAggregator struct {
	Users      repository.UserRepository
	Logger     *zap.Logger
	Sleeper    Sleeper
	Now        func() time.Time
	MaxRetries int
	BaseDelay  time.Duration
}

func NewAggregator(users repository.UserRepository, logger *zap.Logger, maxRetries int) *OptimisticAggregator {
	if maxRetries <= 0 {
		maxRetries = DefaultMaxRetries
	}
	return &OptimisticAggregator{
		Users:      users,
		Logger:     logger,
		Sleeper:    realSleeper{},
		Now:        time.Now,
		MaxRetries: maxRetries,
		BaseDelay:  DefaultBaseDelay,
	}
}

func ValidScore(score int) bool {
	return score >= MinScore && score <= MaxScore
}

func (a *OptimisticAggregator) FoldRating(ctx context.Context, userID string, score int) (models.Rating, error) {
	if !ValidScore(score) {
		return models.Rating{}, models.Reject(models.ReasonInvalidRating, "score must be between %d and %d, got %d", MinScore, MaxScore, score)
	}

	for i := 0; i < a.MaxRetries; i++ {
		user, err := a.Users.GetByID(ctx, userID)
		if errors.Is(err, database.ErrNotFound) {
			return models.Rating{}, models.Reject(models.ReasonUserNotFound, "user %s not found", userID)
		}
		if err != nil {
			return models.Rating{}, err
		}

		next := user.Rating.Fold(score)
		err = a.Users.CompareAndSetRating(ctx, userID, user.Rating.Count, next, a.Now())
		if err == nil {
			a.Logger.Debug("rating folded",
				zap.String("userId", userID),
				zap.Int("score", score),
				zap.Float64("average", next.Average),
				zap.Int("count", next.Count))
			return next, nil
		}
		if !errors.Is(err, database.ErrConditionNotMet) {
			return models.Rating{}, err
		}

		delay := time.Duration(math.Pow(2, float64(i))) * a.BaseDelay
		if delay > MaxDelay || delay <= 0 {
			delay = MaxDelay
		}
		a.Logger.Debug("rating fold conflicted, retrying",
			zap.String("userId", userID), zap.Int("attempt", i+1), zap.Duration("delay", delay))
		a.Sleeper.Sleep(delay)
	}
	return models.Rating{}, models.Reject(models.ReasonTransientConflict, "rating for user %s is under contention", userID)
}
