package booking

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"timeswap/database/repository"
	"timeswap/models"
)

func TestCreateRejectsSelfBooking(t *testing.T) {
	h := newHarness(t)
	h.standard(t, 10)
	h.user(t, "other", 10)
	ctx := context.Background()

	if _, err := h.svc.Create(ctx, CreateInput{StudentID: "mentor", SlotID: "slot-1"}); !errors.Is(err, models.ErrSelfBooking) {
		t.Fatalf("expected SelfBooking, got %v", err)
	}
	// still SelfBooking once the slot is full
	if _, err := h.svc.Create(ctx, CreateInput{StudentID: "other", SlotID: "slot-1"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := h.svc.Create(ctx, CreateInput{StudentID: "mentor", SlotID: "slot-1"}); !errors.Is(err, models.ErrSelfBooking) {
		t.Fatalf("expected SelfBooking on a full slot, got %v", err)
	}
}

func TestCreateRejectsDuplicateOnGroupSlot(t *testing.T) {
	h := newHarness(t)
	h.user(t, "mentor", 0)
	h.user(t, "student", 20)
	h.slot(t, "group", "mentor", 2, 5)
	ctx := context.Background()

	if _, err := h.svc.Create(ctx, CreateInput{StudentID: "student", SlotID: "group"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := h.svc.Create(ctx, CreateInput{StudentID: "student", SlotID: "group"}); !errors.Is(err, models.ErrDuplicateBooking) {
		t.Fatalf("expected DuplicateBooking, got %v", err)
	}
	if got := h.credits(t, "student"); got != 18 {
		t.Fatalf("duplicate attempt must not charge, balance %d", got)
	}
	s := h.getSlot(t, "group")
	if s.IsBooked {
		t.Fatal("group slots are never marked booked")
	}
}

func TestCreateRejectsUnknownOrInactiveStudent(t *testing.T) {
	h := newHarness(t)
	h.standard(t, 10)
	ctx := context.Background()

	if _, err := h.svc.Create(ctx, CreateInput{StudentID: "ghost", SlotID: "slot-1"}); !errors.Is(err, models.ErrUserNotFound) {
		t.Fatalf("expected UserNotFound, got %v", err)
	}
	_ = h.repos.Users.Deactivate(ctx, "student", clock)
	if _, err := h.svc.Create(ctx, CreateInput{StudentID: "student", SlotID: "slot-1"}); !errors.Is(err, models.ErrUserInactive) {
		t.Fatalf("expected UserInactive, got %v", err)
	}
	if _, err := h.svc.Create(ctx, CreateInput{StudentID: "mentor", SlotID: "nope"}); !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("expected NotFound, got %v", err)
	}
}

func TestConcurrentCreatesSingleSeat(t *testing.T) {
	h := newHarness(t)
	h.user(t, "mentor", 0)
	h.slot(t, "slot-1", "mentor", 5, 1)

	const n = 25
	for i := 0; i < n; i++ {
		h.user(t, fmt.Sprintf("student-%d", i), 10)
	}

	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = h.svc.Create(context.Background(), CreateInput{StudentID: fmt.Sprintf("student-%d", i), SlotID: "slot-1"})
		}(i)
	}
	wg.Wait()

	wins, full := 0, 0
	var spent int64
	for i, err := range errs {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, models.ErrFull):
			full++
		default:
			t.Fatalf("student-%d: unexpected error %v", i, err)
		}
		spent += 10 - h.credits(t, fmt.Sprintf("student-%d", i))
	}
	if wins != 1 || full != n-1 {
		t.Fatalf("expected 1 success and %d Full, got %d and %d", n-1, wins, full)
	}
	if spent != 5 {
		t.Fatalf("expected exactly one charge of 5, got %d", spent)
	}
	if s := h.getSlot(t, "slot-1"); s.CurrentParticipants != 1 {
		t.Fatalf("capacity invariant broken: %+v", s)
	}
}

// failingBookings refuses every insert.
type failingBookings struct {
	repository.BookingRepository
}

func (failingBookings) Create(context.Context, *models.Booking) error {
	return errors.New("disk full")
}

func TestPersistFailureRefundsAndReleases(t *testing.T) {
	h := newHarness(t)
	h.standard(t, 10)
	h.svc.Bookings = failingBookings{h.repos.Bookings}

	if _, err := h.svc.Create(context.Background(), CreateInput{StudentID: "student", SlotID: "slot-1"}); err == nil {
		t.Fatal("expected persist failure")
	}
	if got := h.credits(t, "student"); got != 10 {
		t.Fatalf("expected refund to 10, got %d", got)
	}
	if s := h.getSlot(t, "slot-1"); s.CurrentParticipants != 0 {
		t.Fatalf("expected seat released, got %+v", s)
	}
}

func TestIdempotentCreateReplaysOriginal(t *testing.T) {
	h := newHarness(t)
	h.standard(t, 10)
	h.svc.Idempotency = NewMemoryIdempotencyGateway()
	ctx := context.Background()
	in := CreateInput{StudentID: "student", SlotID: "slot-1", IdempotencyKey: "abc"}

	first, err := h.svc.Create(ctx, in)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	second, err := h.svc.Create(ctx, in)
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if first.ID != second.ID {
		t.Fatalf("replay returned a different booking: %s vs %s", first.ID, second.ID)
	}
	if got := h.credits(t, "student"); got != 5 {
		t.Fatalf("replay must not charge again, balance %d", got)
	}
}

func TestIdempotencyKeyFreedAfterFailure(t *testing.T) {
	h := newHarness(t)
	h.standard(t, 3)
	gw := NewMemoryIdempotencyGateway()
	h.svc.Idempotency = gw
	ctx := context.Background()
	in := CreateInput{StudentID: "student", SlotID: "slot-1", IdempotencyKey: "k1"}

	if _, err := h.svc.Create(ctx, in); !errors.Is(err, models.ErrInsufficientFunds) {
		t.Fatalf("expected InsufficientFunds, got %v", err)
	}
	if _, err := h.repos.Users.Credit(ctx, "student", 7, clock); err != nil {
		t.Fatalf("top up: %v", err)
	}
	if _, err := h.svc.Create(ctx, in); err != nil {
		t.Fatalf("retry with same key after failure: %v", err)
	}
}

func TestIdempotencyRejectsInFlightDuplicate(t *testing.T) {
	gw := NewMemoryIdempotencyGateway()
	ctx := context.Background()

	if id, err := gw.Reserve(ctx, "k"); err != nil || id != "" {
		t.Fatalf("first reserve: %q %v", id, err)
	}
	if _, err := gw.Reserve(ctx, "k"); !errors.Is(err, models.ErrDuplicateRequest) {
		t.Fatalf("expected DuplicateRequest, got %v", err)
	}
	_ = gw.MarkSuccess(ctx, "k", "b-1")
	if id, err := gw.Reserve(ctx, "k"); err != nil || id != "b-1" {
		t.Fatalf("expected replay of b-1, got %q %v", id, err)
	}
}

func TestListForUser(t *testing.T) {
	h := newHarness(t)
	h.standard(t, 10)
	ctx := context.Background()
	b := h.book(t)

	asStudent, err := h.svc.ListForUser(ctx, "student", models.RoleStudent)
	if err != nil || len(asStudent) != 1 || asStudent[0].ID != b.ID {
		t.Fatalf("student list: %+v %v", asStudent, err)
	}
	asMentor, _ := h.svc.ListForUser(ctx, "mentor", models.RoleMentor)
	if len(asMentor) != 1 {
		t.Fatalf("mentor list: %+v", asMentor)
	}
	both, _ := h.svc.ListForUser(ctx, "mentor", "")
	if len(both) != 1 {
		t.Fatalf("combined list: %+v", both)
	}
	if _, err := h.svc.ListForUser(ctx, "mentor", "admin"); !errors.Is(err, models.ErrInvalidRole) {
		t.Fatalf("expected InvalidRole, got %v", err)
	}
}
