package card

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Pacer spaces out calls to external services. The first Wait returns
// immediately; later ones wait until delay has passed since the previous.
type Pacer struct {
	limiter *rate.Limiter
}

// NewPacer allows one call per delay. A non-positive delay never waits.
func NewPacer(delay time.Duration) *Pacer {
	limit := rate.Inf
	if delay > 0 {
		limit = rate.Every(delay)
	}
	return &Pacer{limiter: rate.NewLimiter(limit, 1)}
}

// Wait blocks until the next call is allowed or ctx is done.
func (p *Pacer) Wait(ctx context.Context) error {
	if p == nil {
		return ctx.Err()
	}
	return p.limiter.Wait(ctx)
}
