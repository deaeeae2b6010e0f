package slot

import (
	"context"
	"time"

	"timeswap/database/repository"
	"timeswap/models"
	"timeswap/services/user"

	"go.uber.org/zap"
)

// SlotService is the owner-facing side of slots. Capacity is not touched here;
// that belongs to the availability tracker.
type SlotService interface {
	CreateSlot(ctx context.Context, ownerID string, in CreateSlotInput) (*models.Slot, error)
	GetSlot(ctx context.Context, slotID string) (*models.Slot, error)
	ListAvailable(ctx context.Context, limit int) ([]models.Slot, error)
	ListByOwner(ctx context.Context, ownerID string) ([]models.Slot, error)
	// UpdateSlot edits a slot that nobody has reserved yet.
	UpdateSlot(ctx context.Context, slotID, ownerID string, patch models.SlotPatch) (*models.Slot, error)
	DeactivateSlot(ctx context.Context, slotID, ownerID string) error
}

type CreateSlotInput struct {
	Title           string    `json:"title"`
	DateTime        time.Time `json:"dateTime" binding:"required"`
	Duration        int       `json:"duration" binding:"required"`
	Cost            int64     `json:"cost" binding:"required"`
	MaxParticipants int       `json:"maxParticipants"`
}

// Rules bounds what an owner may offer.
type Rules struct {
	MinCost          int64
	MaxCost          int64
	AllowedDurations []int
}

var DefaultRules = Rules{MinCost: 1, MaxCost: 10, AllowedDurations: []int{30, 60, 90, 120}}

type DefaultSlotService struct {
	Repo   repository.SlotRepository
	Users  user.UserService
	Rules  Rules
	Logger *zap.Logger
	Now    func() time.Time
}

func NewSlotService(repo repository.SlotRepository, users user.UserService, rules Rules, logger *zap.Logger) *DefaultSlotService {
	return &DefaultSlotService{Repo: repo, Users: users, Rules: rules, Logger: logger, Now: time.Now}
}
