package notification

import (
	"context"
	"fmt"
	"time"

	"timeswap/models"

	"go.uber.org/zap"
)

// Notifier delivers a message to one user. Push, mail and the like live
// behind this interface outside the booking core.
type Notifier interface {
	Notify(ctx context.Context, n models.Notification) error
}

// LogNotifier writes notifications to the log; it is the default when no
// delivery channel is configured.
type LogNotifier struct {
	Logger *zap.Logger
}

func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{Logger: logger}
}

func (n *LogNotifier) Notify(_ context.Context, msg models.Notification) error {
	n.Logger.Info("notification",
		zap.String("userId", msg.UserID),
		zap.String("type", string(msg.Type)),
		zap.String("title", msg.Title),
		zap.String("body", msg.Body))
	return nil
}

// Dispatch fans an event out to every recipient and reports the first failure.
func Dispatch(ctx context.Context, notifier Notifier, event models.BookingEvent) error {
	var firstErr error
	for _, msg := range FromEvent(event) {
		if err := notifier.Notify(ctx, msg); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("notify %s: %w", msg.UserID, err)
		}
	}
	return firstErr
}

// InlinePublisher delivers booking events synchronously, for deployments
// without a task queue. Reminders are not scheduled.
type InlinePublisher struct {
	Notifier Notifier
	Logger   *zap.Logger
}

func (p *InlinePublisher) Publish(ctx context.Context, event models.BookingEvent) error {
	return Dispatch(ctx, p.Notifier, event)
}

func (p *InlinePublisher) ScheduleReminder(_ context.Context, event models.BookingEvent, at time.Time) error {
	p.Logger.Debug("reminder skipped; no task queue configured",
		zap.String("bookingId", event.BookingID), zap.Time("at", at))
	return nil
}
