package slot

import (
	"context"
	"errors"

	"timeswap/database"
	"timeswap/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

func (s *DefaultSlotService) CreateSlot(ctx context.Context, ownerID string, in CreateSlotInput) (*models.Slot, error) {
	if _, err := s.Users.RequireActive(ctx, ownerID); err != nil {
		return nil, err
	}
	if in.MaxParticipants == 0 {
		in.MaxParticipants = 1
	}

	now := s.Now()
	slot := &models.Slot{
		ID:              uuid.New().String(),
		OwnerID:         ownerID,
		Title:           in.Title,
		DateTime:        in.DateTime.UTC(),
		Duration:        in.Duration,
		Cost:            in.Cost,
		MaxParticipants: in.MaxParticipants,
		Participants:    []string{},
		IsActive:        true,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.Rules.validate(slot, now); err != nil {
		return nil, err
	}
	if err := s.Repo.Create(ctx, slot); err != nil {
		return nil, err
	}

	s.Logger.Info("slot created",
		zap.String("slotId", slot.ID), zap.String("ownerId", ownerID),
		zap.Time("dateTime", slot.DateTime), zap.Int64("cost", slot.Cost))
	return slot, nil
}

func (s *DefaultSlotService) GetSlot(ctx context.Context, slotID string) (*models.Slot, error) {
	slot, err := s.Repo.GetByID(ctx, slotID)
	if errors.Is(err, database.ErrNotFound) {
		return nil, models.Reject(models.ReasonNotFound, "slot %s not found", slotID)
	}
	return slot, err
}

func (s *DefaultSlotService) ListAvailable(ctx context.Context, limit int) ([]models.Slot, error) {
	return s.Repo.ListAvailable(ctx, s.Now(), limit)
}

func (s *DefaultSlotService) ListByOwner(ctx context.Context, ownerID string) ([]models.Slot, error) {
	return s.Repo.ListByOwner(ctx, ownerID)
}

func (s *DefaultSlotService) UpdateSlot(ctx context.Context, slotID, ownerID string, patch models.SlotPatch) (*models.Slot, error) {
	if patch.IsEmpty() {
		return nil, models.Reject(models.ReasonInvalidInput, "nothing to update")
	}
	current, err := s.ownedSlot(ctx, slotID, ownerID)
	if err != nil {
		return nil, err
	}
	if err := editable(current); err != nil {
		return nil, err
	}

	// Validate the slot as it would look after the edit.
	preview := current.Clone()
	patch.Apply(preview)
	if err := s.Rules.validate(preview, s.Now()); err != nil {
		return nil, err
	}

	updated, err := s.Repo.UpdateDetails(ctx, slotID, ownerID, patch, s.Now())
	if errors.Is(err, database.ErrConditionNotMet) {
		// A reservation or deactivation landed after our read.
		if latest, getErr := s.ownedSlot(ctx, slotID, ownerID); getErr == nil {
			if err := editable(latest); err != nil {
				return nil, err
			}
		}
		return nil, models.Reject(models.ReasonSlotLocked, "slot %s changed while editing", slotID)
	}
	if err != nil {
		return nil, err
	}
	s.Logger.Info("slot updated", zap.String("slotId", slotID))
	return updated, nil
}

func (s *DefaultSlotService) DeactivateSlot(ctx context.Context, slotID, ownerID string) error {
	if _, err := s.ownedSlot(ctx, slotID, ownerID); err != nil {
		return err
	}
	if err := s.Repo.Deactivate(ctx, slotID, ownerID, s.Now()); err != nil {
		return err
	}
	s.Logger.Info("slot deactivated", zap.String("slotId", slotID), zap.String("ownerId", ownerID))
	return nil
}

func (s *DefaultSlotService) ownedSlot(ctx context.Context, slotID, ownerID string) (*models.Slot, error) {
	slot, err := s.GetSlot(ctx, slotID)
	if err != nil {
		return nil, err
	}
	if slot.OwnerID != ownerID {
		return nil, models.Reject(models.ReasonForbidden, "slot %s belongs to another user", slotID)
	}
	return slot, nil
}

func editable(slot *models.Slot) error {
	if !slot.IsActive {
		return models.Reject(models.ReasonInactive, "slot %s is no longer active", slot.ID)
	}
	if slot.Locked {
		return models.Reject(models.ReasonSlotLocked, "slot %s has been booked and can no longer be edited", slot.ID)
	}
	return nil
}
