package tasks

import (
	"encoding/json"
	"fmt"
	"time"

	"timeswap/models"

	"github.com/hibiken/asynq"
)

const (
	TypeBookingCreated   = string(models.EventBookingCreated)
	TypeBookingConfirmed = string(models.EventBookingConfirmed)
	TypeBookingCompleted = string(models.EventBookingCompleted)
	TypeBookingCancelled = string(models.EventBookingCancelled)
	TypeBookingReviewed  = string(models.EventBookingReviewed)
	TypeBookingReminder  = string(models.EventBookingReminder)
)

// EventTypes lists every task type the worker consumes.
var EventTypes = []string{
	TypeBookingCreated,
	TypeBookingConfirmed,
	TypeBookingCompleted,
	TypeBookingCancelled,
	TypeBookingReviewed,
	TypeBookingReminder,
}

func NewEventTask(event models.BookingEvent) (*asynq.Task, error) {
	b, err := json.Marshal(event)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(string(event.Type), b, asynq.MaxRetry(5)), nil
}

// NewReminderTask schedules the reminder for fireAt. The task id is derived
// from the booking so a booking never carries two pending reminders.
func NewReminderTask(event models.BookingEvent, fireAt time.Time) (*asynq.Task, []asynq.Option, error) {
	event.Type = models.EventBookingReminder
	b, err := json.Marshal(event)
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeBookingReminder, b)
	opts := []asynq.Option{
		asynq.ProcessAt(fireAt),
		asynq.TaskID(ReminderTaskID(event.BookingID)),
	}
	return task, opts, nil
}

func ReminderTaskID(bookingID string) string {
	return "reminder:" + bookingID
}

// ParseEvent decodes a task payload back into a booking event.
func ParseEvent(task *asynq.Task) (models.BookingEvent, error) {
	var event models.BookingEvent
	if err := json.Unmarshal(task.Payload(), &event); err != nil {
		return event, fmt.Errorf("invalid %s payload: %w", task.Type(), err)
	}
	if event.Type == "" {
		event.Type = models.EventType(task.Type())
	}
	return event, nil
}
