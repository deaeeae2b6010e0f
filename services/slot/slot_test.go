package slot

import (
	"context"
	"errors"
	"testing"
	"time"

	"timeswap/database/repository"
	"timeswap/models"
	"timeswap/services/user"

	"go.uber.org/zap"
)

var now = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func newService(t *testing.T) (*DefaultSlotService, repository.SlotRepository, string) {
	t.Helper()
	users := user.NewUserService(repository.NewMemoryUserRepo(), 5, zap.NewNop())
	owner, err := users.Signup(context.Background(), "mentor")
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	repo := repository.NewMemorySlotRepo()
	svc := NewSlotService(repo, users, DefaultRules, zap.NewNop())
	svc.Now = func() time.Time { return now }
	return svc, repo, owner.ID
}

func validInput() CreateSlotInput {
	return CreateSlotInput{Title: "Intro to Go", DateTime: now.Add(24 * time.Hour), Duration: 60, Cost: 3}
}

func TestCreateSlotDefaultsAndValidation(t *testing.T) {
	svc, _, owner := newService(t)
	ctx := context.Background()

	s, err := svc.CreateSlot(ctx, owner, validInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if s.MaxParticipants != 1 || !s.IsActive || s.CurrentParticipants != 0 {
		t.Fatalf("unexpected defaults: %+v", s)
	}

	bad := []func(*CreateSlotInput){
		func(in *CreateSlotInput) { in.DateTime = now },
		func(in *CreateSlotInput) { in.Duration = 45 },
		func(in *CreateSlotInput) { in.Cost = 0 },
		func(in *CreateSlotInput) { in.Cost = 11 },
		func(in *CreateSlotInput) { in.MaxParticipants = -1 },
	}
	for i, mutate := range bad {
		in := validInput()
		mutate(&in)
		if _, err := svc.CreateSlot(ctx, owner, in); !errors.Is(err, models.ErrInvalidSlot) {
			t.Fatalf("case %d: expected InvalidSlot, got %v", i, err)
		}
	}
	if _, err := svc.CreateSlot(ctx, "ghost", validInput()); !errors.Is(err, models.ErrUserNotFound) {
		t.Fatalf("expected UserNotFound, got %v", err)
	}
}

func TestUpdateSlotOnlyBeforeReservation(t *testing.T) {
	svc, repo, owner := newService(t)
	ctx := context.Background()
	s, _ := svc.CreateSlot(ctx, owner, validInput())

	cost := int64(4)
	updated, err := svc.UpdateSlot(ctx, s.ID, owner, models.SlotPatch{Cost: &cost})
	if err != nil || updated.Cost != 4 {
		t.Fatalf("update: %+v %v", updated, err)
	}
	if _, err := svc.UpdateSlot(ctx, s.ID, "someone-else", models.SlotPatch{Cost: &cost}); !errors.Is(err, models.ErrForbidden) {
		t.Fatalf("expected Forbidden, got %v", err)
	}
	tooHigh := int64(50)
	if _, err := svc.UpdateSlot(ctx, s.ID, owner, models.SlotPatch{Cost: &tooHigh}); !errors.Is(err, models.ErrInvalidSlot) {
		t.Fatalf("expected InvalidSlot, got %v", err)
	}

	if _, err := repo.Reserve(ctx, s.ID, "student", now); err != nil {
		t.Fatalf("reserve: %v", err)
	}
	if _, err := svc.UpdateSlot(ctx, s.ID, owner, models.SlotPatch{Cost: &cost}); !errors.Is(err, models.ErrSlotLocked) {
		t.Fatalf("expected SlotLocked, got %v", err)
	}
}

func TestDeactivateAndList(t *testing.T) {
	svc, _, owner := newService(t)
	ctx := context.Background()
	a, _ := svc.CreateSlot(ctx, owner, validInput())
	later := validInput()
	later.DateTime = now.Add(48 * time.Hour)
	b, _ := svc.CreateSlot(ctx, owner, later)

	if err := svc.DeactivateSlot(ctx, a.ID, owner); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	avail, _ := svc.ListAvailable(ctx, 0)
	if len(avail) != 1 || avail[0].ID != b.ID {
		t.Fatalf("expected only %s available, got %+v", b.ID, avail)
	}
	mine, _ := svc.ListByOwner(ctx, owner)
	if len(mine) != 2 {
		t.Fatalf("owner listing should include inactive slots, got %d", len(mine))
	}
	if _, err := svc.GetSlot(ctx, "nope"); !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("expected NotFound, got %v", err)
	}
}
