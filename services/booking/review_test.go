package booking

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"timeswap/models"
)

func completedBooking(t *testing.T, h *harness) *models.Booking {
	t.Helper()
	ctx := context.Background()
	b := h.book(t)
	if _, err := h.svc.Confirm(ctx, b.ID, "mentor"); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	b, err := h.svc.Complete(ctx, b.ID, "mentor")
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	return b
}

func TestReviewOncePerRole(t *testing.T) {
	h := newHarness(t)
	h.standard(t, 10)
	ctx := context.Background()
	b := completedBooking(t, h)

	in := ReviewInput{BookingID: b.ID, ActorID: "student", Role: models.RoleStudent, Rating: 5}
	if _, err := h.svc.SubmitReview(ctx, in); err != nil {
		t.Fatalf("first review: %v", err)
	}
	in.Rating = 1
	if _, err := h.svc.SubmitReview(ctx, in); !errors.Is(err, models.ErrAlreadyReviewed) {
		t.Fatalf("expected AlreadyReviewed, got %v", err)
	}

	mentor, _ := h.repos.Users.GetByID(ctx, "mentor")
	if mentor.Rating.Count != 1 || mentor.Rating.Average != 5.0 {
		t.Fatalf("rating folded more than once: %+v", mentor.Rating)
	}
	stored, _ := h.repos.Bookings.GetByID(ctx, b.ID)
	if stored.Review == nil || stored.Review.Rating != 5 {
		t.Fatalf("original review overwritten: %+v", stored.Review)
	}
}

func TestConcurrentReviewsSameRole(t *testing.T) {
	h := newHarness(t)
	h.standard(t, 10)
	b := completedBooking(t, h)

	var wg sync.WaitGroup
	var mu sync.Mutex
	ok, already := 0, 0
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := h.svc.SubmitReview(context.Background(), ReviewInput{BookingID: b.ID, ActorID: "student", Role: models.RoleStudent, Rating: 3})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case errors.Is(err, models.ErrAlreadyReviewed):
				already++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if ok != 1 || already != 9 {
		t.Fatalf("expected 1 review and 9 rejections, got %d and %d", ok, already)
	}
	mentor, _ := h.repos.Users.GetByID(context.Background(), "mentor")
	if mentor.Rating.Count != 1 {
		t.Fatalf("expected count 1, got %d", mentor.Rating.Count)
	}
}

func TestMentorReviewFeedsStudentRating(t *testing.T) {
	h := newHarness(t)
	h.standard(t, 10)
	b := completedBooking(t, h)

	out, err := h.svc.SubmitReview(context.Background(), ReviewInput{BookingID: b.ID, ActorID: "mentor", Role: models.RoleMentor, Rating: 2})
	if err != nil {
		t.Fatalf("mentor review: %v", err)
	}
	if out.RevieweeID != "student" || out.Booking.MentorReview == nil || out.Booking.Review != nil {
		t.Fatalf("unexpected outcome: %+v", out)
	}
	student, _ := h.repos.Users.GetByID(context.Background(), "student")
	if student.Rating.Average != 2.0 || student.Rating.Count != 1 {
		t.Fatalf("student rating not folded: %+v", student.Rating)
	}
}

func TestReviewPreconditions(t *testing.T) {
	h := newHarness(t)
	h.standard(t, 10)
	h.user(t, "stranger", 0)
	ctx := context.Background()
	b := h.book(t)

	cases := []struct {
		name string
		in   ReviewInput
		want error
	}{
		{"before completion", ReviewInput{BookingID: b.ID, ActorID: "student", Role: models.RoleStudent, Rating: 4}, models.ErrInvalidTransition},
		{"rating too high", ReviewInput{BookingID: b.ID, ActorID: "student", Role: models.RoleStudent, Rating: 6}, models.ErrInvalidRating},
		{"rating zero", ReviewInput{BookingID: b.ID, ActorID: "student", Role: models.RoleStudent, Rating: 0}, models.ErrInvalidRating},
		{"unknown role", ReviewInput{BookingID: b.ID, ActorID: "student", Role: "admin", Rating: 4}, models.ErrInvalidRole},
		{"role mismatch", ReviewInput{BookingID: b.ID, ActorID: "student", Role: models.RoleMentor, Rating: 4}, models.ErrInvalidRole},
		{"not a party", ReviewInput{BookingID: b.ID, ActorID: "stranger", Role: models.RoleStudent, Rating: 4}, models.ErrForbidden},
		{"missing booking", ReviewInput{BookingID: "nope", ActorID: "student", Role: models.RoleStudent, Rating: 4}, models.ErrBookingNotFound},
	}
	for _, tc := range cases {
		if _, err := h.svc.SubmitReview(ctx, tc.in); !errors.Is(err, tc.want) {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, err)
		}
	}
}

type failingAggregator struct{ calls int }

func (f *failingAggregator) FoldRating(context.Context, string, int) (models.Rating, error) {
	f.calls++
	return models.Rating{}, models.Reject(models.ReasonTransientConflict, "rating kept changing")
}

func TestFailedFoldWithdrawsReviewSoRetrySucceeds(t *testing.T) {
	h := newHarness(t)
	h.standard(t, 10)
	ctx := context.Background()
	b := completedBooking(t, h)

	realRatings := h.svc.Ratings
	failing := &failingAggregator{}
	h.svc.Ratings = failing

	in := ReviewInput{BookingID: b.ID, ActorID: "student", Role: models.RoleStudent, Rating: 4}
	if _, err := h.svc.SubmitReview(ctx, in); !errors.Is(err, models.ErrTransientConflict) {
		t.Fatalf("expected TransientConflict, got %v", err)
	}
	if failing.calls != 1 {
		t.Fatalf("expected one fold attempt, got %d", failing.calls)
	}
	stored, _ := h.repos.Bookings.GetByID(ctx, b.ID)
	if stored.Review != nil {
		t.Fatalf("review should be withdrawn after a failed fold: %+v", stored.Review)
	}

	h.svc.Ratings = realRatings
	out, err := h.svc.SubmitReview(ctx, in)
	if err != nil {
		t.Fatalf("retry: %v", err)
	}
	if out.Rating.Count != 1 || out.Rating.Average != 4.0 {
		t.Fatalf("unexpected rating after retry: %+v", out.Rating)
	}
	stored, _ = h.repos.Bookings.GetByID(ctx, b.ID)
	if stored.Review == nil || stored.Review.Rating != 4 {
		t.Fatalf("review missing after retry: %+v", stored.Review)
	}
}

func TestClearReviewOnlyMatchesItsOwnStamp(t *testing.T) {
	h := newHarness(t)
	h.standard(t, 10)
	ctx := context.Background()
	b := completedBooking(t, h)

	if _, err := h.svc.SubmitReview(ctx, ReviewInput{BookingID: b.ID, ActorID: "student", Role: models.RoleStudent, Rating: 5}); err != nil {
		t.Fatalf("review: %v", err)
	}
	if err := h.repos.Bookings.ClearReview(ctx, b.ID, models.RoleStudent, clock.Add(-time.Minute)); err == nil {
		t.Fatal("clearing with a stale stamp should fail")
	}
	stored, _ := h.repos.Bookings.GetByID(ctx, b.ID)
	if stored.Review == nil {
		t.Fatal("review removed by a stale clear")
	}
}
