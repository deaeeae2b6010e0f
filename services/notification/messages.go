package notification

import (
	"fmt"

	"timeswap/models"
)

// FromEvent builds the messages a booking event produces. The actor is not
// told about their own action.
func FromEvent(e models.BookingEvent) []models.Notification {
	when := e.SlotDateTime.UTC().Format("Mon 2 Jan 15:04 MST")
	data := map[string]string{
		"bookingId": e.BookingID,
		"slotId":    e.SlotID,
		"status":    string(e.Status),
	}

	var out []models.Notification
	add := func(userID, title, body string) {
		if userID == "" || userID == e.ActorID {
			return
		}
		out = append(out, models.Notification{
			UserID: userID, Type: e.Type, Title: title, Body: body, Data: data, CreatedAt: e.OccurredAt,
		})
	}

	switch e.Type {
	case models.EventBookingCreated:
		add(e.MentorID, "New booking request", fmt.Sprintf("Your slot on %s was booked for %d credits.", when, e.Cost))
	case models.EventBookingConfirmed:
		add(e.StudentID, "Booking confirmed", fmt.Sprintf("Your session on %s is confirmed.", when))
	case models.EventBookingCompleted:
		add(e.StudentID, "Session completed", "Your session is complete. Leave a review for your mentor.")
		add(e.MentorID, "Credits received", fmt.Sprintf("%d credits were added to your balance.", e.Cost))
	case models.EventBookingCancelled:
		add(e.StudentID, "Booking cancelled", fmt.Sprintf("The session on %s was cancelled and %d credits refunded.", when, e.Cost))
		add(e.MentorID, "Booking cancelled", fmt.Sprintf("The session on %s was cancelled.", when))
	case models.EventBookingReviewed:
		target := e.MentorID
		if e.ActorID == e.MentorID {
			target = e.StudentID
		}
		add(target, "New review", fmt.Sprintf("You received a %d-star review.", e.Rating))
	case models.EventBookingReminder:
		add(e.StudentID, "Upcoming session", fmt.Sprintf("Your session starts at %s.", when))
		add(e.MentorID, "Upcoming session", fmt.Sprintf("You are hosting a session at %s.", when))
	}
	return out
}
