package models

import "time"

type EventType string

const (
	EventBookingCreated   EventType = "booking:created"
	EventBookingConfirmed EventType = "booking:confirmed"
	EventBookingCompleted EventType = "booking:completed"
	EventBookingCancelled EventType = "booking:cancelled"
	EventBookingReviewed  EventType = "booking:reviewed"
	EventBookingReminder  EventType = "booking:reminder"
)

// BookingEvent is the payload handed to the queue after a lifecycle change.
type BookingEvent struct {
	Type         EventType     `json:"type"`
	BookingID    string        `json:"bookingId"`
	SlotID       string        `json:"slotId"`
	StudentID    string        `json:"studentId"`
	MentorID     string        `json:"mentorId"`
	Status       BookingStatus `json:"status"`
	Cost         int64         `json:"cost"`
	SlotDateTime time.Time     `json:"slotDateTime"`
	ActorID      string        `json:"actorId,omitempty"`
	Rating       int           `json:"rating,omitempty"`
	OccurredAt   time.Time     `json:"occurredAt"`
}

// NewBookingEvent snapshots b for the given event type.
func NewBookingEvent(t EventType, b *Booking, actorID string, at time.Time) BookingEvent {
	return BookingEvent{
		Type:         t,
		BookingID:    b.ID,
		SlotID:       b.SlotID,
		StudentID:    b.StudentID,
		MentorID:     b.MentorID,
		Status:       b.Status,
		Cost:         b.Cost,
		SlotDateTime: b.SlotDateTime,
		ActorID:      actorID,
		OccurredAt:   at,
	}
}
