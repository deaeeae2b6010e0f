package booking

import (
	"context"
	"sort"

	"timeswap/models"
)

// Get returns a booking to one of its two parties.
func (s *DefaultBookingService) Get(ctx context.Context, bookingID, actorID string) (*models.Booking, error) {
	b, err := s.load(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !b.IsParticipant(actorID) {
		return nil, models.Reject(models.ReasonForbidden, "user %s is not part of booking %s", actorID, bookingID)
	}
	return b, nil
}

func (s *DefaultBookingService) ListForUser(ctx context.Context, userID string, role models.ReviewRole) ([]models.Booking, error) {
	switch role {
	case models.RoleStudent:
		return s.Bookings.ListByStudent(ctx, userID)
	case models.RoleMentor:
		return s.Bookings.ListByMentor(ctx, userID)
	case "":
		asStudent, err := s.Bookings.ListByStudent(ctx, userID)
		if err != nil {
			return nil, err
		}
		asMentor, err := s.Bookings.ListByMentor(ctx, userID)
		if err != nil {
			return nil, err
		}
		all := append(asStudent, asMentor...)
		sort.SliceStable(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
		return all, nil
	}
	return nil, models.Reject(models.ReasonInvalidRole, "unknown role %q", role)
}
