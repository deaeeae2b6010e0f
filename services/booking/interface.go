package booking

import (
	"context"
	"time"

	"timeswap/database/repository"
	"timeswap/models"
	"timeswap/services/availability"
	"timeswap/services/ledger"
	"timeswap/services/rating"

	"go.uber.org/zap"
)

// BookingService drives a booking through its lifecycle. It is the only
// caller of the tracker, ledger and rating aggregator.
type BookingService interface {
	Create(ctx context.Context, in CreateInput) (*models.Booking, error)
	Confirm(ctx context.Context, bookingID, actorID string) (*models.Booking, error)
	Complete(ctx context.Context, bookingID, actorID string) (*models.Booking, error)
	Cancel(ctx context.Context, bookingID, actorID, reason string) (*models.Booking, error)
	SubmitReview(ctx context.Context, in ReviewInput) (*ReviewOutcome, error)
	Get(ctx context.Context, bookingID, actorID string) (*models.Booking, error)
	// ListForUser returns the user's bookings on one side, or both sides when
	// role is empty, newest first.
	ListForUser(ctx context.Context, userID string, role models.ReviewRole) ([]models.Booking, error)
}

type CreateInput struct {
	StudentID      string
	SlotID         string
	Notes          string
	IdempotencyKey string // optional; scoped to the student
}

type ReviewInput struct {
	BookingID string
	ActorID   string
	Role      models.ReviewRole
	Rating    int
	Comment   string
}

type ReviewOutcome struct {
	Booking    *models.Booking `json:"booking"`
	RevieweeID string          `json:"revieweeId"`
	Rating     models.Rating   `json:"rating"`
}

// DefaultBookingService implements BookingService.
type DefaultBookingService struct {
	Bookings     repository.BookingRepository
	Users        repository.UserRepository
	Slots        availability.Tracker
	Ledger       ledger.Ledger
	Ratings      rating.Aggregator
	Idempotency  IdempotencyGateway // nil disables replay protection
	Events       EventPublisher
	Logger       *zap.Logger
	Now          func() time.Time
	ReminderLead time.Duration
}

func NewBookingService(
	bookings repository.BookingRepository,
	users repository.UserRepository,
	slots availability.Tracker,
	ledgerSvc ledger.Ledger,
	ratings rating.Aggregator,
	logger *zap.Logger,
) *DefaultBookingService {
	return &DefaultBookingService{
		Bookings: bookings,
		Users:    users,
		Slots:    slots,
		Ledger:   ledgerSvc,
		Ratings:  ratings,
		Events:   NoopPublisher{},
		Logger:   logger,
		Now:      time.Now,
	}
}
