package booking

import (
	"context"
	"sync"
	"testing"
	"time"

	"timeswap/database/repository"
	"timeswap/models"
	"timeswap/services/availability"
	"timeswap/services/ledger"
	"timeswap/services/rating"

	"go.uber.org/zap"
)

var clock = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

type recordingPublisher struct {
	mu        sync.Mutex
	events    []models.BookingEvent
	reminders []time.Time
}

func (p *recordingPublisher) Publish(_ context.Context, e models.BookingEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) ScheduleReminder(_ context.Context, _ models.BookingEvent, at time.Time) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.reminders = append(p.reminders, at)
	return nil
}

func (p *recordingPublisher) types() []models.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]models.EventType, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

type harness struct {
	svc    *DefaultBookingService
	repos  repository.Repositories
	events *recordingPublisher
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	repos := repository.NewMemoryRepositories()
	now := func() time.Time { return clock }

	tracker := availability.NewSlotTracker(repos.Slots, zap.NewNop(), 0)
	tracker.Now = now
	l := ledger.NewLedger(repos.Users, zap.NewNop())
	l.Now = now
	agg := rating.NewAggregator(repos.Users, zap.NewNop(), 0)
	agg.Now = now

	svc := NewBookingService(repos.Bookings, repos.Users, tracker, l, agg, zap.NewNop())
	svc.Now = now
	events := &recordingPublisher{}
	svc.Events = events
	svc.ReminderLead = time.Hour

	return &harness{svc: svc, repos: repos, events: events}
}

func (h *harness) user(t *testing.T, id string, credits int64) {
	t.Helper()
	u := &models.User{ID: id, Username: id, Credits: credits, IsActive: true, CreatedAt: clock}
	if err := h.repos.Users.Create(context.Background(), u); err != nil {
		t.Fatalf("seed user %s: %v", id, err)
	}
}

func (h *harness) slot(t *testing.T, id, owner string, cost int64, max int) {
	t.Helper()
	s := &models.Slot{
		ID: id, OwnerID: owner, DateTime: clock.Add(72 * time.Hour), Duration: 60,
		Cost: cost, MaxParticipants: max, IsActive: true, CreatedAt: clock,
	}
	if err := h.repos.Slots.Create(context.Background(), s); err != nil {
		t.Fatalf("seed slot %s: %v", id, err)
	}
}

func (h *harness) credits(t *testing.T, id string) int64 {
	t.Helper()
	u, err := h.repos.Users.GetByID(context.Background(), id)
	if err != nil {
		t.Fatalf("get user %s: %v", id, err)
	}
	return u.Credits
}

func (h *harness) getSlot(t *testing.T, id string) *models.Slot {
	t.Helper()
	s, err := h.repos.Slots.GetByID(context.Background(), id)
	if err != nil {
		t.Fatalf("get slot %s: %v", id, err)
	}
	return s
}

// standard seeds the single-seat, cost-5 scenario with a mentor and a student.
func (h *harness) standard(t *testing.T, studentCredits int64) {
	t.Helper()
	h.user(t, "mentor", 0)
	h.user(t, "student", studentCredits)
	h.slot(t, "slot-1", "mentor", 5, 1)
}

func (h *harness) book(t *testing.T) *models.Booking {
	t.Helper()
	b, err := h.svc.Create(context.Background(), CreateInput{StudentID: "student", SlotID: "slot-1"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	return b
}
