package slotRepo

import (
	"context"
	"time"

	"timeswap/database"
	"timeswap/models"

	"go.mongodb.org/mongo-driver/mongo"
)

// SlotRepository stores slots. Reserve and Release are single atomic
// conditional updates; when their guard does not hold they return
// database.ErrConditionNotMet and leave the document untouched.
type SlotRepository interface {
	Create(ctx context.Context, slot *models.Slot) error
	GetByID(ctx context.Context, id string) (*models.Slot, error)
	// ListAvailable returns active, future, non-full slots ordered by start time.
	ListAvailable(ctx context.Context, now time.Time, limit int) ([]models.Slot, error)
	ListByOwner(ctx context.Context, ownerID string) ([]models.Slot, error)
	// UpdateDetails applies patch only while the slot is active, owned by
	// ownerID and has never been reserved.
	UpdateDetails(ctx context.Context, id, ownerID string, patch models.SlotPatch, at time.Time) (*models.Slot, error)
	Deactivate(ctx context.Context, id, ownerID string, at time.Time) error
	// Reserve adds requesterID as a participant if the slot is active, in the
	// future, not owned by the requester, not already held by the requester and
	// below capacity.
	Reserve(ctx context.Context, id, requesterID string, now time.Time) (*models.Slot, error)
	// Release removes participantID's hold, if it has one.
	Release(ctx context.Context, id, participantID string, at time.Time) (*models.Slot, error)
	// ExpireStale deactivates every active slot whose start is at or before now.
	ExpireStale(ctx context.Context, now time.Time) (int64, error)
}

type mongoSlotRepo struct {
	coll *mongo.Collection
}

// NewMongoSlotRepo constructs a MongoDB-backed SlotRepository.
func NewMongoSlotRepo() SlotRepository {
	return NewMongoSlotRepoWithCollection(database.Collection("slots"))
}

func NewMongoSlotRepoWithCollection(coll *mongo.Collection) SlotRepository {
	return &mongoSlotRepo{coll: coll}
}
