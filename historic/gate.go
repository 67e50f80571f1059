package historic

import (
	"context"
	"time"
)

// Gate validates historic ranges and admits requests through the limiter.
type Gate struct {
	limiter *Limiter
	now     func() time.Time
}

// NewGate creates a gate with PRTG's default limits.
func NewGate(policy Policy) *Gate {
	return &Gate{
		limiter: NewLimiter(DefaultLimit, DefaultWindow, policy),
		now:     time.Now,
	}
}

// Prepare validates r. See Prepare.
func (g *Gate) Prepare(r Range) (WireParams, error) {
	return Prepare(r)
}

// Resolve parses start and end against the current time. It is called at
// request time so relative dates never use a stale clock.
func (g *Gate) Resolve(start, end string) (time.Time, time.Time, error) {
	now := g.now()
	s, err := ParseDate(start, now)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	e, err := ParseDate(end, now)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return s, e, nil
}

// Admit must be called before each historic data request.
func (g *Gate) Admit(ctx context.Context) error {
	return g.limiter.Acquire(ctx)
}

// Remaining reports how many requests may still be sent in this window.
func (g *Gate) Remaining() int {
	return g.limiter.Remaining()
}
