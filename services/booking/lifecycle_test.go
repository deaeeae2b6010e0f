package booking

import (
	"context"
	"errors"
	"testing"
	"time"

	"timeswap/models"
	"timeswap/services/availability"
)

func TestFullLifecycleScenario(t *testing.T) {
	h := newHarness(t)
	h.standard(t, 10)
	ctx := context.Background()

	b := h.book(t)
	if b.Status != models.StatusPending || b.Cost != 5 || b.MentorID != "mentor" {
		t.Fatalf("unexpected booking: %+v", b)
	}
	if got := h.credits(t, "student"); got != 5 {
		t.Fatalf("student should have 5 credits after create, got %d", got)
	}
	if s := h.getSlot(t, "slot-1"); !s.IsBooked {
		t.Fatalf("slot should be booked: %+v", s)
	}

	b, err := h.svc.Confirm(ctx, b.ID, "mentor")
	if err != nil || b.Status != models.StatusConfirmed || b.ConfirmedAt == nil {
		t.Fatalf("confirm: %+v %v", b, err)
	}

	b, err = h.svc.Complete(ctx, b.ID, "mentor")
	if err != nil || b.Status != models.StatusCompleted || b.CompletedAt == nil {
		t.Fatalf("complete: %+v %v", b, err)
	}
	if got := h.credits(t, "mentor"); got != 5 {
		t.Fatalf("mentor should have been paid 5, got %d", got)
	}

	out, err := h.svc.SubmitReview(ctx, ReviewInput{BookingID: b.ID, ActorID: "student", Role: models.RoleStudent, Rating: 4, Comment: "great"})
	if err != nil {
		t.Fatalf("review: %v", err)
	}
	if out.RevieweeID != "mentor" || out.Rating.Average != 4.0 || out.Rating.Count != 1 {
		t.Fatalf("unexpected review outcome: %+v", out)
	}
	mentor, _ := h.repos.Users.GetByID(ctx, "mentor")
	if mentor.Rating.Average != 4.0 || mentor.Rating.Count != 1 {
		t.Fatalf("mentor rating not folded: %+v", mentor.Rating)
	}

	want := []models.EventType{
		models.EventBookingCreated, models.EventBookingConfirmed,
		models.EventBookingCompleted, models.EventBookingReviewed,
	}
	got := h.events.types()
	if len(got) != len(want) {
		t.Fatalf("expected events %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("event %d: expected %s, got %s", i, want[i], got[i])
		}
	}
	if len(h.events.reminders) != 1 || !h.events.reminders[0].Equal(b.SlotDateTime.Add(-time.Hour)) {
		t.Fatalf("expected one reminder an hour before the slot, got %v", h.events.reminders)
	}
}

func TestInsufficientFundsReleasesSeat(t *testing.T) {
	h := newHarness(t)
	h.standard(t, 3)

	_, err := h.svc.Create(context.Background(), CreateInput{StudentID: "student", SlotID: "slot-1"})
	if !errors.Is(err, models.ErrInsufficientFunds) {
		t.Fatalf("expected InsufficientFunds, got %v", err)
	}
	s := h.getSlot(t, "slot-1")
	if s.CurrentParticipants != 0 || s.IsBooked || len(s.Participants) != 0 {
		t.Fatalf("seat not released: %+v", s)
	}
	if got := h.credits(t, "student"); got != 3 {
		t.Fatalf("balance changed: %d", got)
	}
	if len(h.events.types()) != 0 {
		t.Fatalf("no events expected, got %v", h.events.types())
	}
}

func TestCancelConfirmedRefundsAndReleases(t *testing.T) {
	h := newHarness(t)
	h.standard(t, 10)
	ctx := context.Background()

	b := h.book(t)
	if _, err := h.svc.Confirm(ctx, b.ID, "mentor"); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	b, err := h.svc.Cancel(ctx, b.ID, "student", "schedule conflict")
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if b.Status != models.StatusCancelled || b.CancelReason != "schedule conflict" || b.CancelledBy != "student" || b.CancelledAt == nil {
		t.Fatalf("unexpected cancelled booking: %+v", b)
	}
	if got := h.credits(t, "student"); got != 10 {
		t.Fatalf("student should be refunded to 10, got %d", got)
	}
	s := h.getSlot(t, "slot-1")
	if s.IsBooked || s.CurrentParticipants != 0 {
		t.Fatalf("slot should be free again: %+v", s)
	}
	if got := h.credits(t, "mentor"); got != 0 {
		t.Fatalf("mentor must not be paid for a cancelled booking, got %d", got)
	}
}

func TestMentorCancelsPending(t *testing.T) {
	h := newHarness(t)
	h.standard(t, 10)

	b := h.book(t)
	if _, err := h.svc.Cancel(context.Background(), b.ID, "mentor", ""); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if got := h.credits(t, "student"); got != 10 {
		t.Fatalf("expected full refund, got %d", got)
	}
	// the freed seat can be booked again
	if _, err := h.svc.Create(context.Background(), CreateInput{StudentID: "student", SlotID: "slot-1"}); err != nil {
		t.Fatalf("rebook after cancel: %v", err)
	}
}

func TestStatusMonotonicity(t *testing.T) {
	h := newHarness(t)
	h.standard(t, 10)
	ctx := context.Background()
	b := h.book(t)

	if _, err := h.svc.Complete(ctx, b.ID, "mentor"); !errors.Is(err, models.ErrInvalidTransition) {
		t.Fatalf("pending -> completed must be refused, got %v", err)
	}
	if _, err := h.svc.Confirm(ctx, b.ID, "mentor"); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if _, err := h.svc.Confirm(ctx, b.ID, "mentor"); !errors.Is(err, models.ErrInvalidTransition) {
		t.Fatalf("second confirm must be refused, got %v", err)
	}
	if _, err := h.svc.Complete(ctx, b.ID, "mentor"); err != nil {
		t.Fatalf("complete: %v", err)
	}
	if _, err := h.svc.Complete(ctx, b.ID, "mentor"); !errors.Is(err, models.ErrInvalidTransition) {
		t.Fatalf("second complete must be refused, got %v", err)
	}
	if _, err := h.svc.Cancel(ctx, b.ID, "student", ""); !errors.Is(err, models.ErrInvalidTransition) {
		t.Fatalf("cancel after completion must be refused, got %v", err)
	}
	if got := h.credits(t, "mentor"); got != 5 {
		t.Fatalf("mentor paid more than once: %d", got)
	}
	if got := h.credits(t, "student"); got != 5 {
		t.Fatalf("student balance moved after completion: %d", got)
	}
}

func TestCancelTwiceRefundsOnce(t *testing.T) {
	h := newHarness(t)
	h.standard(t, 10)
	b := h.book(t)

	if _, err := h.svc.Cancel(context.Background(), b.ID, "student", ""); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if _, err := h.svc.Cancel(context.Background(), b.ID, "student", ""); !errors.Is(err, models.ErrInvalidTransition) {
		t.Fatalf("second cancel must be refused, got %v", err)
	}
	if got := h.credits(t, "student"); got != 10 {
		t.Fatalf("expected exactly one refund, balance %d", got)
	}
}

func TestTransitionActorChecks(t *testing.T) {
	h := newHarness(t)
	h.standard(t, 10)
	h.user(t, "stranger", 0)
	ctx := context.Background()
	b := h.book(t)

	if _, err := h.svc.Confirm(ctx, b.ID, "student"); !errors.Is(err, models.ErrForbidden) {
		t.Fatalf("student confirm must be Forbidden, got %v", err)
	}
	if _, err := h.svc.Cancel(ctx, b.ID, "stranger", ""); !errors.Is(err, models.ErrForbidden) {
		t.Fatalf("stranger cancel must be Forbidden, got %v", err)
	}
	if _, err := h.svc.Confirm(ctx, "missing", "mentor"); !errors.Is(err, models.ErrBookingNotFound) {
		t.Fatalf("expected BookingNotFound, got %v", err)
	}
	if _, err := h.svc.Get(ctx, b.ID, "stranger"); !errors.Is(err, models.ErrForbidden) {
		t.Fatalf("stranger read must be Forbidden, got %v", err)
	}
	if got, err := h.svc.Get(ctx, b.ID, "mentor"); err != nil || got.ID != b.ID {
		t.Fatalf("mentor read: %+v %v", got, err)
	}
}

func TestConcurrentCompleteAndCancelSettleOnce(t *testing.T) {
	h := newHarness(t)
	h.standard(t, 10)
	ctx := context.Background()
	b := h.book(t)
	if _, err := h.svc.Confirm(ctx, b.ID, "mentor"); err != nil {
		t.Fatalf("confirm: %v", err)
	}

	errs := make(chan error, 2)
	go func() { _, err := h.svc.Complete(ctx, b.ID, "mentor"); errs <- err }()
	go func() { _, err := h.svc.Cancel(ctx, b.ID, "student", ""); errs <- err }()
	e1, e2 := <-errs, <-errs

	if (e1 == nil) == (e2 == nil) {
		t.Fatalf("exactly one of complete/cancel should win: %v / %v", e1, e2)
	}
	// credits are conserved whichever side won
	total := h.credits(t, "student") + h.credits(t, "mentor")
	if total != 10 {
		t.Fatalf("credits not conserved: %d", total)
	}
}

type stuckReleaseTracker struct {
	availability.Tracker
}

func (stuckReleaseTracker) Release(context.Context, string, string) error {
	return errors.New("slot store unavailable")
}

func TestCancelReportsFailedRelease(t *testing.T) {
	h := newHarness(t)
	h.standard(t, 10)
	ctx := context.Background()

	b := h.book(t)
	h.svc.Slots = stuckReleaseTracker{Tracker: h.svc.Slots}

	got, err := h.svc.Cancel(ctx, b.ID, "student", "")
	if err == nil {
		t.Fatal("a failed seat release must be reported")
	}
	if _, isRejection := models.ReasonOf(err); isRejection {
		t.Fatalf("expected an infrastructure error, got rejection %v", err)
	}
	if got == nil || got.Status != models.StatusCancelled {
		t.Fatalf("booking should still be cancelled: %+v", got)
	}
	if c := h.credits(t, "student"); c != 10 {
		t.Fatalf("refund should still happen, got %d", c)
	}
}
