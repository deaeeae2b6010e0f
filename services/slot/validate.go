package slot

import (
	"time"

	"timeswap/models"
)

const maxTitleLen = 120

func (r Rules) durationAllowed(d int) bool {
	for _, a := range r.AllowedDurations {
		if a == d {
			return true
		}
	}
	return false
}

// validate checks the owner-controlled fields of s against the rules.
func (r Rules) validate(s *models.Slot, now time.Time) error {
	switch {
	case len(s.Title) > maxTitleLen:
		return models.Reject(models.ReasonInvalidSlot, "title longer than %d characters", maxTitleLen)
	case !s.DateTime.After(now):
		return models.Reject(models.ReasonInvalidSlot, "slot must start in the future")
	case !r.durationAllowed(s.Duration):
		return models.Reject(models.ReasonInvalidSlot, "duration %d is not one of %v", s.Duration, r.AllowedDurations)
	case s.Cost < r.MinCost || s.Cost > r.MaxCost:
		return models.Reject(models.ReasonInvalidSlot, "cost must be between %d and %d", r.MinCost, r.MaxCost)
	case s.MaxParticipants < 1:
		return models.Reject(models.ReasonInvalidSlot, "maxParticipants must be at least 1")
	}
	return nil
}
