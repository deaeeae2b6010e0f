package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"timeswap/database"
	"timeswap/models"
	"timeswap/services/rating"
	"timeswap/utils"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// SubmitReview stores one review per side of a completed booking and folds
// its score into the other party's rating.
func (s *DefaultBookingService) SubmitReview(ctx context.Context, in ReviewInput) (out *ReviewOutcome, err error) {
	ctx, span := utils.StartSpan(ctx, "booking.review",
		attribute.String("booking.id", in.BookingID),
		attribute.String("review.role", string(in.Role)))
	defer func() {
		observeRejection(err)
		utils.EndSpan(span, err)
	}()

	if !rating.ValidScore(in.Rating) {
		return nil, models.Reject(models.ReasonInvalidRating, "rating must be between %d and %d", rating.MinScore, rating.MaxScore)
	}
	if !in.Role.Valid() {
		return nil, models.Reject(models.ReasonInvalidRole, "unknown review role %q", in.Role)
	}

	b, err := s.load(ctx, in.BookingID)
	if err != nil {
		return nil, err
	}
	actorRole, ok := b.RoleOf(in.ActorID)
	if !ok {
		return nil, models.Reject(models.ReasonForbidden, "user %s is not part of booking %s", in.ActorID, b.ID)
	}
	if actorRole != in.Role {
		return nil, models.Reject(models.ReasonInvalidRole, "user %s is the %s on booking %s", in.ActorID, actorRole, b.ID)
	}
	if b.Status != models.StatusCompleted {
		return nil, models.Reject(models.ReasonInvalidTransition, "booking %s is %s; reviews open after completion", b.ID, b.Status)
	}
	if b.ReviewFor(in.Role) != nil {
		return nil, models.Reject(models.ReasonAlreadyReviewed, "%s review already submitted for booking %s", in.Role, b.ID)
	}

	// Mongo keeps milliseconds; the stamp must round-trip for ClearReview.
	reviewedAt := s.Now().UTC().Truncate(time.Millisecond)
	updated, err := s.Bookings.SetReview(ctx, b.ID, in.Role, models.Review{
		Rating:     in.Rating,
		Comment:    in.Comment,
		ReviewedAt: reviewedAt,
	})
	if errors.Is(err, database.ErrConditionNotMet) {
		// Lost to a concurrent submission for the same role.
		return nil, models.Reject(models.ReasonAlreadyReviewed, "%s review already submitted for booking %s", in.Role, b.ID)
	}
	if err != nil {
		return nil, err
	}

	revieweeID := updated.Reviewee(in.Role)
	detached := context.WithoutCancel(ctx)
	newRating, err := s.Ratings.FoldRating(detached, revieweeID, in.Rating)
	if err != nil {
		// Withdraw the review so the caller can retry the whole submission.
		if clearErr := s.Bookings.ClearReview(detached, b.ID, in.Role, reviewedAt); clearErr != nil {
			s.Logger.Error("rating fold failed and review could not be withdrawn",
				zap.String("bookingId", b.ID), zap.String("revieweeId", revieweeID),
				zap.Error(err), zap.NamedError("clearError", clearErr))
			return nil, fmt.Errorf("review stored but rating update for %s failed: %w", revieweeID, err)
		}
		s.Logger.Warn("rating fold failed; review withdrawn",
			zap.String("bookingId", b.ID), zap.String("revieweeId", revieweeID), zap.Error(err))
		return nil, err
	}

	s.Logger.Info("review submitted",
		zap.String("bookingId", b.ID),
		zap.String("role", string(in.Role)),
		zap.String("revieweeId", revieweeID),
		zap.Float64("average", newRating.Average))
	s.publish(ctx, models.EventBookingReviewed, updated, in.ActorID, in.Rating)

	return &ReviewOutcome{Booking: updated, RevieweeID: revieweeID, Rating: newRating}, nil
}
