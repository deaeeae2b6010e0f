package bookingRepo

import (
	"context"
	"time"

	"timeswap/database"
	"timeswap/models"

	"go.mongodb.org/mongo-driver/mongo"
)

// BookingRepository stores bookings. Transition and SetReview are conditional
// updates: when the stored document no longer satisfies the guard they return
// database.ErrConditionNotMet.
type BookingRepository interface {
	Create(ctx context.Context, booking *models.Booking) error
	GetByID(ctx context.Context, id string) (*models.Booking, error)
	ListByStudent(ctx context.Context, studentID string) ([]models.Booking, error)
	ListByMentor(ctx context.Context, mentorID string) ([]models.Booking, error)
	// Transition moves the booking from t.From to t.To and stamps the matching
	// timestamp, only if the stored status is still t.From.
	Transition(ctx context.Context, id string, t models.Transition) (*models.Booking, error)
	// SetReview stores the review for role only if the booking is completed
	// and no review for that role exists yet.
	SetReview(ctx context.Context, id string, role models.ReviewRole, review models.Review) (*models.Booking, error)
	// ClearReview removes the review for role only if it is still the one
	// stamped reviewedAt. It undoes a SetReview whose follow-up failed.
	ClearReview(ctx context.Context, id string, role models.ReviewRole, reviewedAt time.Time) error
}

type mongoBookingRepo struct {
	coll *mongo.Collection
}

func NewMongoBookingRepo() BookingRepository {
	return &mongoBookingRepo{coll: database.Collection("bookings")}
}

// reviewField maps a role to the document field holding its review.
func reviewField(role models.ReviewRole) string {
	if role == models.RoleMentor {
		return "mentorReview"
	}
	return "review"
}
