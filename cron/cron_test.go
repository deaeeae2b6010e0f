package cron

import (
	"context"
	"errors"
	"testing"

	"timeswap/models"
	"timeswap/services/tasks"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

type countingTracker struct {
	sweeps int
}

func (c *countingTracker) Reserve(context.Context, string, string) (*models.Reservation, error) {
	return nil, nil
}
func (c *countingTracker) Release(context.Context, string, string) error { return nil }
func (c *countingTracker) ExpireStale(context.Context) (int64, error) {
	c.sweeps++
	return 2, nil
}

func TestStartExpirySweepRejectsBadSchedule(t *testing.T) {
	if _, err := StartExpirySweep(&countingTracker{}, "not a schedule", zap.NewNop()); err == nil {
		t.Fatal("expected schedule parse error")
	}
}

func TestRunExpirySweep(t *testing.T) {
	tr := &countingTracker{}
	RunExpirySweep(tr, zap.NewNop())
	if tr.sweeps != 1 {
		t.Fatalf("expected one sweep, got %d", tr.sweeps)
	}
}

type recordingNotifier struct {
	got []models.Notification
}

func (r *recordingNotifier) Notify(_ context.Context, n models.Notification) error {
	r.got = append(r.got, n)
	return nil
}

func TestEventHandlerDispatches(t *testing.T) {
	n := &recordingNotifier{}
	task, err := tasks.NewEventTask(models.BookingEvent{
		Type: models.EventBookingCreated, BookingID: "b1", StudentID: "s", MentorID: "m", ActorID: "s", Cost: 5,
	})
	if err != nil {
		t.Fatalf("task: %v", err)
	}
	if err := handleEventTask(n, zap.NewNop())(context.Background(), task); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if len(n.got) != 1 || n.got[0].UserID != "m" {
		t.Fatalf("expected mentor notification, got %+v", n.got)
	}
}

func TestEventHandlerSkipsRetryOnBadPayload(t *testing.T) {
	task := asynq.NewTask(tasks.TypeBookingCreated, []byte("{not json"))
	err := handleEventTask(&recordingNotifier{}, zap.NewNop())(context.Background(), task)
	if !errors.Is(err, asynq.SkipRetry) {
		t.Fatalf("expected SkipRetry, got %v", err)
	}
}
