package tasks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"timeswap/models"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// Enqueuer is the part of *asynq.Client the publisher needs.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// AsynqPublisher turns booking lifecycle events into queued tasks.
type AsynqPublisher struct {
	Client Enqueuer
	Logger *zap.Logger
}

func NewAsynqPublisher(client Enqueuer, logger *zap.Logger) *AsynqPublisher {
	return &AsynqPublisher{Client: client, Logger: logger}
}

func (p *AsynqPublisher) Publish(ctx context.Context, event models.BookingEvent) error {
	task, err := NewEventTask(event)
	if err != nil {
		return err
	}
	info, err := p.Client.EnqueueContext(ctx, task)
	if err != nil {
		return fmt.Errorf("enqueue %s: %w", event.Type, err)
	}
	p.Logger.Debug("booking event enqueued",
		zap.String("type", string(event.Type)), zap.String("bookingId", event.BookingID), zap.String("taskId", info.ID))
	return nil
}

func (p *AsynqPublisher) ScheduleReminder(ctx context.Context, event models.BookingEvent, at time.Time) error {
	task, opts, err := NewReminderTask(event, at)
	if err != nil {
		return err
	}
	if _, err := p.Client.EnqueueContext(ctx, task, opts...); err != nil {
		if errors.Is(err, asynq.ErrTaskIDConflict) {
			return nil
		}
		return fmt.Errorf("schedule reminder for %s: %w", event.BookingID, err)
	}
	p.Logger.Debug("booking reminder scheduled", zap.String("bookingId", event.BookingID), zap.Time("at", at))
	return nil
}
