package userRepo

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

// Create inserts a new user document.
func (r *MongoUserRepo) Create(ctx context.Context, user *models.User) error {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	if _, err := r.coll.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("failed to create user %q: %w", user.Username, database.ErrDuplicate)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *MongoUserRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	var user models.User
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, database.ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch user with id %s: %w", id, err)
	}
	return &user, nil
}

func (r *MongoUserRepo) Deactivate(ctx context.Context, id string, at time.Time) error {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	update := bson.M{"$set": bson.M{"isActive": false, "updatedAt": at}}
	result, err := r.coll.UpdateOne(ctx, bson.M{"id": id}, update)
	if err != nil {
		return fmt.Errorf("failed to deactivate user with id %s: %w", id, err)
	}
	if result.MatchedCount == 0 {
		return database.ErrNotFound
	}
	return nil
}

// Debit decrements credits guarded by credits >= amount.
func (r *MongoUserRepo) Debit(ctx context.Context, id string, amount int64, at time.Time) (*models.User, error) {
	filter := bson.M{"id": id, "credits": bson.M{"$gte": amount}}
	return r.incCredits(ctx, filter, -amount, at)
}

func (r *MongoUserRepo) Credit(ctx context.Context, id string, amount int64, at time.Time) (*models.User, error) {
	return r.incCredits(ctx, bson.M{"id": id}, amount, at)
}

func (r *MongoUserRepo) incCredits(ctx context.Context, filter bson.M, delta int64, at time.Time) (*models.User, error) {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	update := bson.M{
		"$inc": bson.M{"credits": delta},
		"$set": bson.M{"updatedAt": at},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var user models.User
	if err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, database.ErrConditionNotMet
		}
		return nil, fmt.Errorf("failed to adjust credits: %w", err)
	}
	return &user, nil
}

func (r *MongoUserRepo) CompareAndSetRating(ctx context.Context, id string, expectedCount int, next models.Rating, at time.Time) error {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"id": id, "rating.count": expectedCount}
	update := bson.M{"$set": bson.M{"rating": next, "updatedAt": at}}

	result, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to update rating for user %s: %w", id, err)
	}
	if result.MatchedCount == 0 {
		return database.ErrConditionNotMet
	}
	return nil
}
