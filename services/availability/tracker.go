package availability

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

const DefaultMaxRetries = 5

// Tracker owns slot capacity. All writes go through conditional updates on
// the slot record so concurrent bookers cannot overbook.
type Tracker interface {
	Reserve(ctx context.Context, slotID, requesterID string) (*models.Reservation, error)
	// Release gives back participantID's seat. It is a no-op when that
	// participant holds nothing on the slot.
	Release(ctx context.Context, slotID, participantID string) error
	ExpireStale(ctx context.Context) (int64, error)
}

type SlotTracker struct {
	Slots      repository.SlotRepository
	Logger     *zap.Logger
	Now        func() time.Time
	MaxRetries int
}

func NewSlotTracker(slots repository.SlotRepository, logger *zap.Logger, maxRetries int) *SlotTracker {
	if maxRetries <= 0 {
		maxRetries = DefaultMaxRetries
	}
	return &SlotTracker{Slots: slots, Logger: logger, Now: time.Now, MaxRetries: maxRetries}
}

// Reserve claims one seat for requesterID. A lost race re-reads the slot and
// re-checks, so the loser sees Full or DuplicateBooking rather than a
// corrupted counter. The conditional update itself never retries blindly.
func (t *SlotTracker) Reserve(ctx context.Context, slotID, requesterID string) (*models.Reservation, error) {
	for attempt := 0; attempt < t.MaxRetries; attempt++ {
		now := t.Now()

		slot, err := t.Slots.GetByID(ctx, slotID)
		if errors.Is(err, database.ErrNotFound) {
			return nil, models.Reject(models.ReasonNotFound, "slot %s not found", slotID)
		}
		if err != nil {
			return nil, err
		}
		if reason := slot.ReservationBlocker(requesterID, now); reason != "" {
			return nil, models.Reject(reason, "slot %s cannot be reserved", slotID)
		}

		updated, err := t.Slots.Reserve(ctx, slotID, requesterID, now)
		if err == nil {
			t.Logger.Debug("slot reserved",
				zap.String("slotId", slotID),
				zap.String("requesterId", requesterID),
				zap.Int("current", updated.CurrentParticipants),
				zap.Int("max", updated.MaxParticipants))
			return &models.Reservation{
				SlotID:      updated.ID,
				RequesterID: requesterID,
				OwnerID:     updated.OwnerID,
				Cost:        updated.Cost,
				DateTime:    updated.DateTime,
				ReservedAt:  now,
			}, nil
		}
		if !errors.Is(err, database.ErrConditionNotMet) {
			return nil, err
		}
		t.Logger.Debug("slot reserve lost a race, re-checking",
			zap.String("slotId", slotID), zap.Int("attempt", attempt+1))
	}
	return nil, models.Reject(models.ReasonTransientConflict, "slot %s is under contention", slotID)
}

func (t *SlotTracker) Release(ctx context.Context, slotID, participantID string) error {
	updated, err := t.Slots.Release(ctx, slotID, participantID, t.Now())
	if errors.Is(err, database.ErrConditionNotMet) {
		t.Logger.Debug("release had nothing to give back",
			zap.String("slotId", slotID), zap.String("participantId", participantID))
		return nil
	}
	if err != nil {
		return err
	}
	t.Logger.Debug("slot released",
		zap.String("slotId", slotID),
		zap.String("participantId", participantID),
		zap.Int("current", updated.CurrentParticipants))
	return nil
}

// ExpireStale deactivates every active slot whose start time has passed.
// Bookings are left alone.
func (t *SlotTracker) ExpireStale(ctx context.Context) (int64, error) {
	n, err := t.Slots.ExpireStale(ctx, t.Now())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		metrics.SlotsExpired.Add(float64(n))
		t.Logger.Info("expired stale slots", zap.Int64("count", n))
	}
	return n, nil
}
