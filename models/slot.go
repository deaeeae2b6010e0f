package models

import "time"

// Slot is an offered block of time with a fixed cost and capacity.
type Slot struct {
	ID                  string    `bson:"id" json:"id"`
	OwnerID             string    `bson:"ownerId" json:"ownerId"`
	Title               string    `bson:"title,omitempty" json:"title,omitempty"`
	DateTime            time.Time `bson:"dateTime" json:"dateTime"`
	Duration            int       `bson:"duration" json:"duration"` // minutes
	Cost                int64     `bson:"cost" json:"cost"`
	MaxParticipants     int       `bson:"maxParticipants" json:"maxParticipants"`
	CurrentParticipants int       `bson:"currentParticipants" json:"currentParticipants"`
	Participants        []string  `bson:"participants" json:"participants,omitempty"` // holders of a live reservation
	IsBooked            bool      `bson:"isBooked" json:"isBooked"`
	IsActive            bool      `bson:"isActive" json:"isActive"`
	Locked              bool      `bson:"locked" json:"locked"` // set on first reservation; details are frozen from then on
	CreatedAt           time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt           time.Time `bson:"updatedAt" json:"updatedAt"`
}

// SlotPatch carries owner edits; nil fields are left untouched.
type SlotPatch struct {
	Title           *string
	DateTime        *time.Time
	Duration        *int
	Cost            *int64
	MaxParticipants *int
}

// Reservation is the proof of a successful capacity claim.
type Reservation struct {
	SlotID      string    `json:"slotId"`
	RequesterID string    `json:"requesterId"`
	OwnerID     string    `json:"ownerId"`
	Cost        int64     `json:"cost"`
	DateTime    time.Time `json:"dateTime"`
	ReservedAt  time.Time `json:"reservedAt"`
}

// ReservationBlocker returns the reason requesterID cannot reserve the slot at
// now, or an empty Reason when the reservation may proceed. Self-booking is
// reported ahead of every other state.
func (s *Slot) ReservationBlocker(requesterID string, now time.Time) Reason {
	switch {
	case s.OwnerID == requesterID:
		return ReasonSelfBooking
	case !s.IsActive:
		return ReasonInactive
	case !s.DateTime.After(now):
		return ReasonExpired
	case s.HasParticipant(requesterID):
		return ReasonDuplicateBooking
	case s.CurrentParticipants >= s.MaxParticipants:
		return ReasonFull
	}
	return ""
}

func (s *Slot) HasParticipant(userID string) bool {
	for _, p := range s.Participants {
		if p == userID {
			return true
		}
	}
	return false
}

// RefreshBooked recomputes the derived isBooked flag.
func (s *Slot) RefreshBooked() {
	s.IsBooked = s.MaxParticipants == 1 && s.CurrentParticipants >= s.MaxParticipants
}

func (s *Slot) RemainingCapacity() int {
	if s.CurrentParticipants >= s.MaxParticipants {
		return 0
	}
	return s.MaxParticipants - s.CurrentParticipants
}

func (s *Slot) EndTime() time.Time {
	return s.DateTime.Add(time.Duration(s.Duration) * time.Minute)
}

// Apply copies the non-nil patch fields onto the slot.
func (p SlotPatch) Apply(s *Slot) {
	if p.Title != nil {
		s.Title = *p.Title
	}
	if p.DateTime != nil {
		s.DateTime = *p.DateTime
	}
	if p.Duration != nil {
		s.Duration = *p.Duration
	}
	if p.Cost != nil {
		s.Cost = *p.Cost
	}
	if p.MaxParticipants != nil {
		s.MaxParticipants = *p.MaxParticipants
	}
}

func (p SlotPatch) IsEmpty() bool {
	return p.Title == nil && p.DateTime == nil && p.Duration == nil && p.Cost == nil && p.MaxParticipants == nil
}

// Clone returns a deep copy safe to hand out of a shared store.
func (s *Slot) Clone() *Slot {
	c := *s
	c.Participants = append([]string(nil), s.Participants...)
	return &c
}
