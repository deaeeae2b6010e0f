package booking

import (
	"context"
	"errors"
	"fmt"

	"timeswap/database"
	"timeswap/metrics"
	"timeswap/models"
	"timeswap/utils"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// Create books a slot for a student: reserve a seat, then debit the cost,
// then persist a pending booking. A failed debit gives the seat back.
func (s *DefaultBookingService) Create(ctx context.Context, in CreateInput) (booking *models.Booking, err error) {
	ctx, span := utils.StartSpan(ctx, "booking.create",
		attribute.String("slot.id", in.SlotID),
		attribute.String("student.id", in.StudentID))
	defer func() {
		observeRejection(err)
		utils.EndSpan(span, err)
	}()

	if in.IdempotencyKey == "" || s.Idempotency == nil {
		return s.createBooking(ctx, in)
	}

	key := in.StudentID + ":" + in.IdempotencyKey
	existingID, err := s.Idempotency.Reserve(ctx, key)
	if err != nil {
		return nil, err
	}
	if existingID != "" {
		s.Logger.Info("replaying booking for idempotency key",
			zap.String("bookingId", existingID), zap.String("studentId", in.StudentID))
		return s.load(ctx, existingID)
	}

	defer func() {
		markCtx := context.WithoutCancel(ctx)
		var markErr error
		if err == nil {
			markErr = s.Idempotency.MarkSuccess(markCtx, key, booking.ID)
		} else {
			markErr = s.Idempotency.MarkFailure(markCtx, key)
		}
		if markErr != nil {
			s.Logger.Warn("failed to settle idempotency key", zap.String("key", key), zap.Error(markErr))
		}
	}()

	return s.createBooking(ctx, in)
}

func (s *DefaultBookingService) createBooking(ctx context.Context, in CreateInput) (*models.Booking, error) {
	student, err := s.Users.GetByID(ctx, in.StudentID)
	if errors.Is(err, database.ErrNotFound) {
		return nil, models.Reject(models.ReasonUserNotFound, "user %s not found", in.StudentID)
	}
	if err != nil {
		return nil, err
	}
	if !student.IsActive {
		return nil, models.Reject(models.ReasonUserInactive, "user %s is deactivated", in.StudentID)
	}

	reservation, err := s.Slots.Reserve(ctx, in.SlotID, in.StudentID)
	if err != nil {
		return nil, err
	}

	if _, err := s.Ledger.Debit(ctx, in.StudentID, reservation.Cost); err != nil {
		s.releaseSeat(ctx, reservation, "debit failed")
		return nil, err
	}

	now := s.Now()
	booking := &models.Booking{
		ID:           uuid.New().String(),
		SlotID:       reservation.SlotID,
		StudentID:    in.StudentID,
		MentorID:     reservation.OwnerID,
		Status:       models.StatusPending,
		Cost:         reservation.Cost,
		Notes:        in.Notes,
		SlotDateTime: reservation.DateTime,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.Bookings.Create(ctx, booking); err != nil {
		// Nothing references the debit or the seat yet; undo both.
		detached := context.WithoutCancel(ctx)
		if _, refundErr := s.Ledger.Credit(detached, in.StudentID, reservation.Cost); refundErr != nil {
			s.Logger.Error("failed to refund after booking insert failed",
				zap.String("studentId", in.StudentID), zap.Int64("cost", reservation.Cost), zap.Error(refundErr))
		}
		s.releaseSeat(ctx, reservation, "booking insert failed")
		return nil, fmt.Errorf("failed to persist booking: %w", err)
	}

	metrics.ObserveTransition(string(models.StatusPending))
	s.Logger.Info("booking created",
		zap.String("bookingId", booking.ID),
		zap.String("slotId", booking.SlotID),
		zap.String("studentId", booking.StudentID),
		zap.Int64("cost", booking.Cost))
	s.publish(ctx, models.EventBookingCreated, booking, in.StudentID, 0)
	return booking, nil
}

// releaseSeat is the compensation for a reservation that will not become a
// booking. It runs detached from the request so a cancelled client cannot
// strand the seat.
func (s *DefaultBookingService) releaseSeat(ctx context.Context, r *models.Reservation, why string) {
	if err := s.Slots.Release(context.WithoutCancel(ctx), r.SlotID, r.RequesterID); err != nil {
		s.Logger.Error("failed to release reserved seat",
			zap.String("slotId", r.SlotID), zap.String("requesterId", r.RequesterID),
			zap.String("cause", why), zap.Error(err))
		return
	}
	s.Logger.Info("released reserved seat",
		zap.String("slotId", r.SlotID), zap.String("requesterId", r.RequesterID), zap.String("cause", why))
}
