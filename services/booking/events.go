package booking

import (
	"context"
	"time"

	"timeswap/models"

	"go.uber.org/zap"
)

// EventPublisher hands lifecycle events to whatever delivers notifications.
type EventPublisher interface {
	Publish(ctx context.Context, event models.BookingEvent) error
	ScheduleReminder(ctx context.Context, event models.BookingEvent, at time.Time) error
}

type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, models.BookingEvent) error { return nil }

func (NoopPublisher) ScheduleReminder(context.Context, models.BookingEvent, time.Time) error {
	return nil
}

// publish never fails the calling operation; delivery problems are logged.
func (s *DefaultBookingService) publish(ctx context.Context, t models.EventType, b *models.Booking, actorID string, rating int) {
	if s.Events == nil {
		return
	}
	event := models.NewBookingEvent(t, b, actorID, s.Now())
	event.Rating = rating
	if err := s.Events.Publish(ctx, event); err != nil {
		s.Logger.Warn("failed to publish booking event",
			zap.String("type", string(t)), zap.String("bookingId", b.ID), zap.Error(err))
	}
}

func (s *DefaultBookingService) scheduleReminder(ctx context.Context, b *models.Booking) {
	if s.Events == nil || s.ReminderLead <= 0 {
		return
	}
	at := b.SlotDateTime.Add(-s.ReminderLead)
	if !at.After(s.Now()) {
		return
	}
	event := models.NewBookingEvent(models.EventBookingReminder, b, "", s.Now())
	if err := s.Events.ScheduleReminder(ctx, event, at); err != nil {
		s.Logger.Warn("failed to schedule booking reminder",
			zap.String("bookingId", b.ID), zap.Time("at", at), zap.Error(err))
	}
}
