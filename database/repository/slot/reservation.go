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

// refreshBookedStage recomputes isBooked from the counters written by the
// preceding pipeline stage.
var refreshBookedStage = bson.D{{Key: "$set", Value: bson.D{
	{Key: "isBooked", Value: bson.D{{Key: "$and", Value: bson.A{
		bson.D{{Key: "$eq", Value: bson.A{"$maxParticipants", 1}}},
		bson.D{{Key: "$gte", Value: bson.A{"$currentParticipants", "$maxParticipants"}}},
	}}}},
}}}

func (r *mongoSlotRepo) Reserve(ctx context.Context, id, requesterID string, now time.Time) (*models.Slot, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"id":           id,
		"isActive":     true,
		"dateTime":     bson.M{"$gt": now},
		"ownerId":      bson.M{"$ne": requesterID},
		"participants": bson.M{"$ne": requesterID},
		"$expr":        bson.M{"$lt": bson.A{"$currentParticipants", "$maxParticipants"}},
	}

	pipeline := mongo.Pipeline{
		bson.D{{Key: "$set", Value: bson.D{
			{Key: "currentParticipants", Value: bson.D{{Key: "$add", Value: bson.A{"$currentParticipants", 1}}}},
			{Key: "participants", Value: bson.D{{Key: "$concatArrays", Value: bson.A{
				bson.D{{Key: "$ifNull", Value: bson.A{"$participants", bson.A{}}}},
				bson.A{bson.D{{Key: "$literal", Value: requesterID}}},
			}}}},
			{Key: "locked", Value: true},
			{Key: "updatedAt", Value: now},
		}}},
		refreshBookedStage,
	}

	return r.conditionalUpdate(ctx, id, filter, pipeline)
}

func (r *mongoSlotRepo) Release(ctx context.Context, id, participantID string, at time.Time) (*models.Slot, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"id":                  id,
		"participants":        participantID,
		"currentParticipants": bson.M{"$gt": 0},
	}

	pipeline := mongo.Pipeline{
		bson.D{{Key: "$set", Value: bson.D{
			{Key: "currentParticipants", Value: bson.D{{Key: "$max", Value: bson.A{
				0,
				bson.D{{Key: "$subtract", Value: bson.A{"$currentParticipants", 1}}},
			}}}},
			{Key: "participants", Value: bson.D{{Key: "$filter", Value: bson.D{
				{Key: "input", Value: "$participants"},
				{Key: "as", Value: "p"},
				{Key: "cond", Value: bson.D{{Key: "$ne", Value: bson.A{"$$p", bson.D{{Key: "$literal", Value: participantID}}}}}},
			}}}},
			{Key: "updatedAt", Value: at},
		}}},
		refreshBookedStage,
	}

	return r.conditionalUpdate(ctx, id, filter, pipeline)
}

func (r *mongoSlotRepo) conditionalUpdate(ctx context.Context, id string, filter bson.M, pipeline mongo.Pipeline) (*models.Slot, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated models.Slot
	if err := r.coll.FindOneAndUpdate(ctx, filter, pipeline, opts).Decode(&updated); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, database.ErrConditionNotMet
		}
		return nil, fmt.Errorf("conditional update on slot %s failed: %w", id, err)
	}
	return &updated, nil
}
