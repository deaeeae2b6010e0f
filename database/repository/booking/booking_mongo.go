package bookingRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"timeswap/database"
	"timeswap/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the necessary indexes on the bookings collection.
func (r *mongoBookingRepo) EnsureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true).SetName("unique_id")},
		{Keys: bson.D{{Key: "studentId", Value: 1}, {Key: "createdAt", Value: -1}}, Options: options.Index().SetName("student_created_idx")},
		{Keys: bson.D{{Key: "mentorId", Value: 1}, {Key: "createdAt", Value: -1}}, Options: options.Index().SetName("mentor_created_idx")},
		{Keys: bson.D{{Key: "slotId", Value: 1}}, Options: options.Index().SetName("slot_idx")},
	}

	if _, err := r.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create booking indexes: %w", err)
	}
	return nil
}

func (r *mongoBookingRepo) Create(ctx context.Context, booking *models.Booking) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := r.coll.InsertOne(ctx, booking); err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}
	return nil
}

func (r *mongoBookingRepo) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var booking models.Booking
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&booking); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, database.ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch booking %s: %w", id, err)
	}
	return &booking, nil
}

func (r *mongoBookingRepo) ListByStudent(ctx context.Context, studentID string) ([]models.Booking, error) {
	return r.list(ctx, bson.M{"studentId": studentID})
}

func (r *mongoBookingRepo) ListByMentor(ctx context.Context, mentorID string) ([]models.Booking, error) {
	return r.list(ctx, bson.M{"mentorId": mentorID})
}

func (r *mongoBookingRepo) list(ctx context.Context, filter bson.M) ([]models.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query bookings: %w", err)
	}
	defer cursor.Close(ctx)

	bookings := []models.Booking{}
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("failed to decode bookings: %w", err)
	}
	return bookings, nil
}

func (r *mongoBookingRepo) Transition(ctx context.Context, id string, t models.Transition) (*models.Booking, error) {
	set := bson.M{"status": t.To, "updatedAt": t.At}
	switch t.To {
	case models.StatusConfirmed:
		set["confirmedAt"] = t.At
	case models.StatusCompleted:
		set["completedAt"] = t.At
	case models.StatusCancelled:
		set["cancelledAt"] = t.At
		set["cancelledBy"] = t.ActorID
		if t.Reason != "" {
			set["cancelReason"] = t.Reason
		}
	}
	filter := bson.M{"id": id, "status": t.From}
	return r.conditionalUpdate(ctx, id, filter, bson.M{"$set": set})
}

func (r *mongoBookingRepo) SetReview(ctx context.Context, id string, role models.ReviewRole, review models.Review) (*models.Booking, error) {
	field := reviewField(role)
	filter := bson.M{
		"id":     id,
		"status": models.StatusCompleted,
		field:    nil,
	}
	update := bson.M{"$set": bson.M{field: review, "updatedAt": review.ReviewedAt}}
	return r.conditionalUpdate(ctx, id, filter, update)
}

func (r *mongoBookingRepo) ClearReview(ctx context.Context, id string, role models.ReviewRole, reviewedAt time.Time) error {
	field := reviewField(role)
	filter := bson.M{
		"id":                  id,
		field + ".reviewedAt": reviewedAt,
	}
	update := bson.M{"$unset": bson.M{field: ""}}
	_, err := r.conditionalUpdate(ctx, id, filter, update)
	return err
}

func (r *mongoBookingRepo) conditionalUpdate(ctx context.Context, id string, filter, update bson.M) (*models.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var booking models.Booking
	if err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&booking); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, database.ErrConditionNotMet
		}
		return nil, fmt.Errorf("conditional update on booking %s failed: %w", id, err)
	}
	return &booking, nil
}
