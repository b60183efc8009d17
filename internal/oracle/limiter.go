package oracle

import (
	"golang.org/x/time/rate"
)

// newLimiter spaces requests ratePerSec apart. Zero means unlimited.
// Callers wait with Wait(ctx), so a queued request gives up as soon as
// the per-call timeout or a stop cancels its context.
func newLimiter(ratePerSec int) *rate.Limiter {
	if ratePerSec <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	return rate.NewLimiter(rate.Limit(ratePerSec), 1)
}
