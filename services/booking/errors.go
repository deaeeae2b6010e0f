package booking

import (
	"timeswap/metrics"
	"timeswap/models"
)

// maxTransitionAttempts bounds re-reads after a lost status compare-and-set.
// Statuses only move forward, so a second read almost always settles it.
const maxTransitionAttempts = 3

// observeRejection counts refused operations by reason.
func observeRejection(err error) {
	if reason, ok := models.ReasonOf(err); ok {
		metrics.ObserveRejection(string(reason))
	}
}
