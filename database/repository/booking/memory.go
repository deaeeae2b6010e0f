package bookingRepo

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"timeswap/database"
	"timeswap/models"
)

type memoryBookingRepo struct {
	mu       sync.Mutex
	bookings map[string]*models.Booking
}

func NewMemoryBookingRepo() BookingRepository {
	return &memoryBookingRepo{bookings: make(map[string]*models.Booking)}
}

func (r *memoryBookingRepo) Create(_ context.Context, booking *models.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.bookings[booking.ID]; exists {
		return fmt.Errorf("failed to create booking: duplicate id %s", booking.ID)
	}
	r.bookings[booking.ID] = booking.Clone()
	return nil
}

func (r *memoryBookingRepo) GetByID(_ context.Context, id string) (*models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.bookings[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	return b.Clone(), nil
}

func (r *memoryBookingRepo) ListByStudent(_ context.Context, studentID string) ([]models.Booking, error) {
	return r.list(func(b *models.Booking) bool { return b.StudentID == studentID }), nil
}

func (r *memoryBookingRepo) ListByMentor(_ context.Context, mentorID string) ([]models.Booking, error) {
	return r.list(func(b *models.Booking) bool { return b.MentorID == mentorID }), nil
}

func (r *memoryBookingRepo) list(match func(*models.Booking) bool) []models.Booking {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := []models.Booking{}
	for _, b := range r.bookings {
		if match(b) {
			out = append(out, *b.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (r *memoryBookingRepo) Transition(_ context.Context, id string, t models.Transition) (*models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.bookings[id]
	if !ok || b.Status != t.From {
		return nil, database.ErrConditionNotMet
	}
	t.Apply(b)
	return b.Clone(), nil
}

func (r *memoryBookingRepo) SetReview(_ context.Context, id string, role models.ReviewRole, review models.Review) (*models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.bookings[id]
	if !ok || b.Status != models.StatusCompleted || b.ReviewFor(role) != nil {
		return nil, database.ErrConditionNotMet
	}
	rv := review
	if role == models.RoleMentor {
		b.MentorReview = &rv
	} else {
		b.Review = &rv
	}
	b.UpdatedAt = review.ReviewedAt
	return b.Clone(), nil
}

func (r *memoryBookingRepo) ClearReview(_ context.Context, id string, role models.ReviewRole, reviewedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.bookings[id]
	if !ok {
		return database.ErrConditionNotMet
	}
	current := b.ReviewFor(role)
	if current == nil || !current.ReviewedAt.Equal(reviewedAt) {
		return database.ErrConditionNotMet
	}
	if role == models.RoleMentor {
		b.MentorReview = nil
	} else {
		b.Review = nil
	}
	return nil
}
