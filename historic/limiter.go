package historic

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/s0up4200/prtgctl/apierr"
)

// Policy decides what happens when the window is full.
type Policy int

const (
	// FailFast returns a RateLimited error stating the required wait.
	FailFast Policy = iota
	// Block waits for the window to clear or the context to end.
	Block
)

// Historic data limits documented by PRTG.
const (
	DefaultLimit  = 5
	DefaultWindow = time.Minute
)

// Limiter admits at most limit requests in any rolling window.
type Limiter struct {
	mu       sync.Mutex
	limit    int
	window   time.Duration
	policy   Policy
	admitted []time.Time
	now      func() time.Time
}

// NewLimiter creates a rolling-window limiter.
func NewLimiter(limit int, window time.Duration, policy Policy) *Limiter {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if window <= 0 {
		window = DefaultWindow
	}
	return &Limiter{
		limit:  limit,
		window: window,
		policy: policy,
		now:    time.Now,
	}
}

// Acquire records one request, or fails or waits according to the policy.
func (l *Limiter) Acquire(ctx context.Context) error {
	for {
		wait := l.tryAcquire()
		if wait == 0 {
			return nil
		}

		if l.policy == FailFast {
			return apierr.New(apierr.RateLimited,
				"historic data rate limit reached (%d requests per %ds); retry in %ds or pass --wait",
				l.limit, int(l.window.Seconds()), int(math.Ceil(wait.Seconds())))
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return apierr.Wrap(apierr.Transport, ctx.Err(), "waiting for historic data rate limit")
		case <-timer.C:
		}
	}
}

// tryAcquire records a request and returns 0, or returns the time until a
// slot frees up.
func (l *Limiter) tryAcquire() time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.evict(now)

	if len(l.admitted) < l.limit {
		l.admitted = append(l.admitted, now)
		return 0
	}

	wait := l.admitted[0].Add(l.window).Sub(now)
	if wait <= 0 {
		wait = time.Millisecond
	}
	return wait
}

// Remaining reports how many requests the window would admit right now.
func (l *Limiter) Remaining() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.evict(l.now())
	return l.limit - len(l.admitted)
}

func (l *Limiter) evict(now time.Time) {
	cutoff := now.Add(-l.window)
	i := 0
	for i < len(l.admitted) && !l.admitted[i].After(cutoff) {
		i++
	}
	l.admitted = l.admitted[i:]
}
