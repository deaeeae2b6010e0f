package models

import "time"

// Notification is one message for one user, derived from a booking event.
type Notification struct {
	UserID    string            `json:"userId"`
	Type      EventType         `json:"type"`
	Title     string            `json:"title"`
	Body      string            `json:"body"`
	Data      map[string]string `json:"data"`
	CreatedAt time.Time         `json:"createdAt"`
}
