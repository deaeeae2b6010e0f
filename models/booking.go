package models

import "time"

type BookingStatus string

const (
	StatusPending   BookingStatus = "pending"
	StatusConfirmed BookingStatus = "confirmed"
	StatusCompleted BookingStatus = "completed"
	StatusCancelled BookingStatus = "cancelled"
	StatusNoShow    BookingStatus = "no-show" // declared, no transition reaches it
)

// allowedTransitions is the booking lifecycle graph. Terminal states have no
// entry.
var allowedTransitions = map[BookingStatus][]BookingStatus{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusCompleted, StatusCancelled},
}

func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	for _, to := range allowedTransitions[s] {
		if to == next {
			return true
		}
	}
	return false
}

func (s BookingStatus) IsTerminal() bool {
	return len(allowedTransitions[s]) == 0
}

func (s BookingStatus) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled, StatusNoShow:
		return true
	}
	return false
}

// ReviewRole names which side of a booking is writing a review.
type ReviewRole string

const (
	RoleStudent ReviewRole = "student" // reviews the mentor
	RoleMentor  ReviewRole = "mentor"  // reviews the student
)

func (r ReviewRole) Valid() bool {
	return r == RoleStudent || r == RoleMentor
}

type Review struct {
	Rating     int       `bson:"rating" json:"rating"`
	Comment    string    `bson:"comment,omitempty" json:"comment,omitempty"`
	ReviewedAt time.Time `bson:"reviewedAt" json:"reviewedAt"`
}

// Booking is one student's claim on one slot owned by a mentor.
type Booking struct {
	ID           string        `bson:"id" json:"id"`
	SlotID       string        `bson:"slotId" json:"slotId"`
	StudentID    string        `bson:"studentId" json:"studentId"`
	MentorID     string        `bson:"mentorId" json:"mentorId"`
	Status       BookingStatus `bson:"status" json:"status"`
	Cost         int64         `bson:"cost" json:"cost"` // credits held in escrow, fixed at creation
	Notes        string        `bson:"notes,omitempty" json:"notes,omitempty"`
	SlotDateTime time.Time     `bson:"slotDateTime" json:"slotDateTime"`
	CancelReason string        `bson:"cancelReason,omitempty" json:"cancelReason,omitempty"`
	CancelledBy  string        `bson:"cancelledBy,omitempty" json:"cancelledBy,omitempty"`
	CreatedAt    time.Time     `bson:"createdAt" json:"createdAt"`
	ConfirmedAt  *time.Time    `bson:"confirmedAt,omitempty" json:"confirmedAt,omitempty"`
	CompletedAt  *time.Time    `bson:"completedAt,omitempty" json:"completedAt,omitempty"`
	CancelledAt  *time.Time    `bson:"cancelledAt,omitempty" json:"cancelledAt,omitempty"`
	Review       *Review       `bson:"review,omitempty" json:"review,omitempty"`             // written by the student
	MentorReview *Review       `bson:"mentorReview,omitempty" json:"mentorReview,omitempty"` // written by the mentor
	UpdatedAt    time.Time     `bson:"updatedAt" json:"updatedAt"`
}

// Transition describes a status change to be applied atomically, guarded by
// From.
type Transition struct {
	From    BookingStatus
	To      BookingStatus
	At      time.Time
	Reason  string
	ActorID string
}

// Apply mutates b as the transition would; used by in-memory stores and to
// build the returned booking.
func (t Transition) Apply(b *Booking) {
	at := t.At
	b.Status = t.To
	b.UpdatedAt = at
	switch t.To {
	case StatusConfirmed:
		b.ConfirmedAt = &at
	case StatusCompleted:
		b.CompletedAt = &at
	case StatusCancelled:
		b.CancelledAt = &at
		b.CancelReason = t.Reason
		b.CancelledBy = t.ActorID
	}
}

// RoleOf reports which side userID is on, if any.
func (b *Booking) RoleOf(userID string) (ReviewRole, bool) {
	switch userID {
	case b.StudentID:
		return RoleStudent, true
	case b.MentorID:
		return RoleMentor, true
	}
	return "", false
}

func (b *Booking) IsParticipant(userID string) bool {
	_, ok := b.RoleOf(userID)
	return ok
}

// ReviewFor returns the review already stored for role, or nil.
func (b *Booking) ReviewFor(role ReviewRole) *Review {
	if role == RoleMentor {
		return b.MentorReview
	}
	return b.Review
}

// Reviewee is the user whose rating a review by role affects.
func (b *Booking) Reviewee(role ReviewRole) string {
	if role == RoleMentor {
		return b.StudentID
	}
	return b.MentorID
}

func (b *Booking) Clone() *Booking {
	c := *b
	if b.Review != nil {
		r := *b.Review
		c.Review = &r
	}
	if b.MentorReview != nil {
		r := *b.MentorReview
		c.MentorReview = &r
	}
	return &c
}
