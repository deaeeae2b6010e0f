package slotRepo

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"timeswap/database"
	"timeswap/models"
)

// memorySlotRepo keeps slots in a map guarded by a single mutex, which gives
// every conditional update the same all-or-nothing behaviour as the Mongo
// implementation.
type memorySlotRepo struct {
	mu    sync.Mutex
	slots map[string]*models.Slot
}

func NewMemorySlotRepo() SlotRepository {
	return &memorySlotRepo{slots: make(map[string]*models.Slot)}
}

func (r *memorySlotRepo) Create(_ context.Context, slot *models.Slot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.slots[slot.ID]; exists {
		return fmt.Errorf("failed to create slot: duplicate id %s", slot.ID)
	}
	if slot.Participants == nil {
		slot.Participants = []string{}
	}
	r.slots[slot.ID] = slot.Clone()
	return nil
}

func (r *memorySlotRepo) GetByID(_ context.Context, id string) (*models.Slot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.slots[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	return s.Clone(), nil
}

func (r *memorySlotRepo) ListAvailable(_ context.Context, now time.Time, limit int) ([]models.Slot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := []models.Slot{}
	for _, s := range r.slots {
		if s.IsActive && s.DateTime.After(now) && s.CurrentParticipants < s.MaxParticipants {
			out = append(out, *s.Clone())
		}
	}
	sortByDateTime(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *memorySlotRepo) ListByOwner(_ context.Context, ownerID string) ([]models.Slot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := []models.Slot{}
	for _, s := range r.slots {
		if s.OwnerID == ownerID {
			out = append(out, *s.Clone())
		}
	}
	sortByDateTime(out)
	return out, nil
}

func (r *memorySlotRepo) UpdateDetails(_ context.Context, id, ownerID string, patch models.SlotPatch, at time.Time) (*models.Slot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.slots[id]
	if !ok || s.OwnerID != ownerID || !s.IsActive || s.Locked {
		return nil, database.ErrConditionNotMet
	}
	patch.Apply(s)
	s.RefreshBooked()
	s.UpdatedAt = at
	return s.Clone(), nil
}

func (r *memorySlotRepo) Deactivate(_ context.Context, id, ownerID string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.slots[id]
	if !ok || s.OwnerID != ownerID {
		return database.ErrConditionNotMet
	}
	s.IsActive = false
	s.UpdatedAt = at
	return nil
}

func (r *memorySlotRepo) Reserve(_ context.Context, id, requesterID string, now time.Time) (*models.Slot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.slots[id]
	if !ok || s.ReservationBlocker(requesterID, now) != "" {
		return nil, database.ErrConditionNotMet
	}
	s.CurrentParticipants++
	s.Participants = append(s.Participants, requesterID)
	s.Locked = true
	s.UpdatedAt = now
	s.RefreshBooked()
	return s.Clone(), nil
}

func (r *memorySlotRepo) Release(_ context.Context, id, participantID string, at time.Time) (*models.Slot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.slots[id]
	if !ok || !s.HasParticipant(participantID) || s.CurrentParticipants <= 0 {
		return nil, database.ErrConditionNotMet
	}
	kept := s.Participants[:0]
	for _, p := range s.Participants {
		if p != participantID {
			kept = append(kept, p)
		}
	}
	s.Participants = kept
	s.CurrentParticipants--
	s.UpdatedAt = at
	s.RefreshBooked()
	return s.Clone(), nil
}

func (r *memorySlotRepo) ExpireStale(_ context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for _, s := range r.slots {
		if s.IsActive && !s.DateTime.After(now) {
			s.IsActive = false
			s.UpdatedAt = now
			n++
		}
	}
	return n, nil
}

func sortByDateTime(slots []models.Slot) {
	sort.Slice(slots, func(i, j int) bool {
		return slots[i].DateTime.Before(slots[j].DateTime)
	})
}
