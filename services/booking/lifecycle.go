package booking

import (
	"context"
	"errors"
	"fmt"

	"timeswap/database"
	"timeswap/metrics"
	"timeswap/models"
	"timeswap/utils"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

type actorCheck func(b *models.Booking, actorID string) bool

func mentorOnly(b *models.Booking, actorID string) bool { return b.MentorID == actorID }

func eitherParty(b *models.Booking, actorID string) bool { return b.IsParticipant(actorID) }

// Confirm is the mentor accepting a pending booking. No credits move.
func (s *DefaultBookingService) Confirm(ctx context.Context, bookingID, actorID string) (b *models.Booking, err error) {
	ctx, span := utils.StartSpan(ctx, "booking.confirm", attribute.String("booking.id", bookingID))
	defer func() {
		observeRejection(err)
		utils.EndSpan(span, err)
	}()

	b, err = s.transition(ctx, bookingID, actorID, models.StatusConfirmed, mentorOnly, "")
	if err != nil {
		return nil, err
	}
	s.publish(ctx, models.EventBookingConfirmed, b, actorID, 0)
	s.scheduleReminder(ctx, b)
	return b, nil
}

// Complete is the mentor closing a confirmed booking; the escrowed cost is
// paid out to the mentor once the status change has landed.
func (s *DefaultBookingService) Complete(ctx context.Context, bookingID, actorID string) (b *models.Booking, err error) {
	ctx, span := utils.StartSpan(ctx, "booking.complete", attribute.String("booking.id", bookingID))
	defer func() {
		observeRejection(err)
		utils.EndSpan(span, err)
	}()

	b, err = s.transition(ctx, bookingID, actorID, models.StatusCompleted, mentorOnly, "")
	if err != nil {
		return nil, err
	}
	if _, err := s.Ledger.Credit(context.WithoutCancel(ctx), b.MentorID, b.Cost); err != nil {
		s.Logger.Error("booking completed but mentor payout failed",
			zap.String("bookingId", b.ID), zap.String("mentorId", b.MentorID),
			zap.Int64("cost", b.Cost), zap.Error(err))
		return b, fmt.Errorf("booking %s completed but mentor payout failed: %w", b.ID, err)
	}
	s.publish(ctx, models.EventBookingCompleted, b, actorID, 0)
	return b, nil
}

// Cancel lets either party call off a pending or confirmed booking. The
// student gets the full cost back and the seat is released.
func (s *DefaultBookingService) Cancel(ctx context.Context, bookingID, actorID, reason string) (b *models.Booking, err error) {
	ctx, span := utils.StartSpan(ctx, "booking.cancel", attribute.String("booking.id", bookingID))
	defer func() {
		observeRejection(err)
		utils.EndSpan(span, err)
	}()

	b, err = s.transition(ctx, bookingID, actorID, models.StatusCancelled, eitherParty, reason)
	if err != nil {
		return nil, err
	}

	detached := context.WithoutCancel(ctx)
	var refundErr error
	if _, refundErr = s.Ledger.Credit(detached, b.StudentID, b.Cost); refundErr != nil {
		s.Logger.Error("booking cancelled but refund failed",
			zap.String("bookingId", b.ID), zap.String("studentId", b.StudentID),
			zap.Int64("cost", b.Cost), zap.Error(refundErr))
	}
	releaseErr := s.Slots.Release(detached, b.SlotID, b.StudentID)
	if releaseErr != nil {
		s.Logger.Error("booking cancelled but seat release failed",
			zap.String("bookingId", b.ID), zap.String("slotId", b.SlotID), zap.Error(releaseErr))
	}
	if refundErr != nil {
		return b, fmt.Errorf("booking %s cancelled but refund failed: %w", b.ID, refundErr)
	}
	if releaseErr != nil {
		return b, fmt.Errorf("booking %s cancelled but seat release failed: %w", b.ID, releaseErr)
	}
	s.publish(ctx, models.EventBookingCancelled, b, actorID, 0)
	return b, nil
}

// transition re-reads the booking, checks the actor and the status graph,
// then moves it with a compare-and-set on the status it read.
func (s *DefaultBookingService) transition(
	ctx context.Context,
	bookingID, actorID string,
	to models.BookingStatus,
	allowed actorCheck,
	reason string,
) (*models.Booking, error) {
	for attempt := 0; attempt < maxTransitionAttempts; attempt++ {
		current, err := s.load(ctx, bookingID)
		if err != nil {
			return nil, err
		}
		if !allowed(current, actorID) {
			return nil, models.Reject(models.ReasonForbidden, "user %s may not move booking %s to %s", actorID, bookingID, to)
		}
		if !current.Status.CanTransitionTo(to) {
			return nil, models.Reject(models.ReasonInvalidTransition, "booking %s cannot move from %s to %s", bookingID, current.Status, to)
		}

		updated, err := s.Bookings.Transition(ctx, bookingID, models.Transition{
			From:    current.Status,
			To:      to,
			At:      s.Now(),
			Reason:  reason,
			ActorID: actorID,
		})
		if err == nil {
			metrics.ObserveTransition(string(to))
			s.Logger.Info("booking transitioned",
				zap.String("bookingId", bookingID),
				zap.String("from", string(current.Status)),
				zap.String("to", string(to)),
				zap.String("actorId", actorID))
			return updated, nil
		}
		if !errors.Is(err, database.ErrConditionNotMet) {
			return nil, err
		}
	}
	return nil, models.Reject(models.ReasonTransientConflict, "booking %s is being changed concurrently", bookingID)
}

func (s *DefaultBookingService) load(ctx context.Context, bookingID string) (*models.Booking, error) {
	b, err := s.Bookings.GetByID(ctx, bookingID)
	if errors.Is(err, database.ErrNotFound) {
		return nil, models.Reject(models.ReasonBookingNotFound, "booking %s not found", bookingID)
	}
	return b, err
}
