package slotRepo

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

func (r *mongoSlotRepo) Create(ctx context.Context, slot *models.Slot) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if slot.Participants == nil {
		slot.Participants = []string{}
	}
	if _, err := r.coll.InsertOne(ctx, slot); err != nil {
		return fmt.Errorf("failed to create slot: %w", err)
	}
	return nil
}

func (r *mongoSlotRepo) GetByID(ctx context.Context, id string) (*models.Slot, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var slot models.Slot
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&slot); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, database.ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch slot %s: %w", id, err)
	}
	return &slot, nil
}

func (r *mongoSlotRepo) ListAvailable(ctx context.Context, now time.Time, limit int) ([]models.Slot, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"isActive": true,
		"dateTime": bson.M{"$gt": now},
		"$expr":    bson.M{"$lt": bson.A{"$currentParticipants", "$maxParticipants"}},
	}
	opts := options.Find().SetSort(bson.D{{Key: "dateTime", Value: 1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	return r.find(ctx, filter, opts)
}

func (r *mongoSlotRepo) ListByOwner(ctx context.Context, ownerID string) ([]models.Slot, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "dateTime", Value: 1}})
	return r.find(ctx, bson.M{"ownerId": ownerID}, opts)
}

func (r *mongoSlotRepo) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.Slot, error) {
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query slots: %w", err)
	}
	defer cursor.Close(ctx)

	slots := []models.Slot{}
	if err := cursor.All(ctx, &slots); err != nil {
		return nil, fmt.Errorf("failed to decode slots: %w", err)
	}
	return slots, nil
}

func (r *mongoSlotRepo) UpdateDetails(ctx context.Context, id, ownerID string, patch models.SlotPatch, at time.Time) (*models.Slot, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	set := bson.M{"updatedAt": at}
	if patch.Title != nil {
		set["title"] = *patch.Title
	}
	if patch.DateTime != nil {
		set["dateTime"] = *patch.DateTime
	}
	if patch.Duration != nil {
		set["duration"] = *patch.Duration
	}
	if patch.Cost != nil {
		set["cost"] = *patch.Cost
	}
	if patch.MaxParticipants != nil {
		set["maxParticipants"] = *patch.MaxParticipants
	}

	filter := bson.M{"id": id, "ownerId": ownerID, "isActive": true, "locked": false}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated models.Slot
	err := r.coll.FindOneAndUpdate(ctx, filter, bson.M{"$set": set}, opts).Decode(&updated)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, database.ErrConditionNotMet
		}
		return nil, fmt.Errorf("failed to update slot %s: %w", id, err)
	}
	return &updated, nil
}

func (r *mongoSlotRepo) Deactivate(ctx context.Context, id, ownerID string, at time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"id": id, "ownerId": ownerID}
	update := bson.M{"$set": bson.M{"isActive": false, "updatedAt": at}}

	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to deactivate slot %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return database.ErrConditionNotMet
	}
	return nil
}

func (r *mongoSlotRepo) ExpireStale(ctx context.Context, now time.Time) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	filter := bson.M{"isActive": true, "dateTime": bson.M{"$lte": now}}
	update := bson.M{"$set": bson.M{"isActive": false, "updatedAt": now}}

	res, err := r.coll.UpdateMany(ctx, filter, update)
	if err != nil {
		return 0, fmt.Errorf("failed to expire stale slots: %w", err)
	}
	return res.ModifiedCount, nil
}
