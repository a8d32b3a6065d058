package ratelimit

import (
	"context"
	"math/rand"
	"sync"
	"time"
)

// Pacer paces outgoing requests and provides the retry backoff curve.
type Pacer interface {
	Wait(ctx context.Context) error
	Backoff(attempt int) time.Duration
}

// RequestPacer enforces a jittered minimum gap between consecutive requests.
// The gap is drawn uniformly from [minDelay, maxDelay] and measured from the
// previous action, so time already spent working counts toward it.
type RequestPacer struct {
	minDelay   time.Duration
	maxDelay   time.Duration
	retryDelay time.Duration
	backoffMax time.Duration

	mu         sync.Mutex
	lastAction time.Time
	rnd        *rand.Rand
}

func NewRequestPacer(minDelay, maxDelay, retryDelay, backoffMax time.Duration) *RequestPacer {
	if maxDelay < minDelay {
		maxDelay = minDelay
	}
	return &RequestPacer{
		minDelay:   minDelay,
		maxDelay:   maxDelay,
		retryDelay: retryDelay,
		backoffMax: backoffMax,
		rnd:        rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Wait blocks until the jittered inter-request delay has elapsed since the
// previous action, or until ctx is cancelled.
func (p *RequestPacer) Wait(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	elapsed := time.Since(p.lastAction)
	delay := p.nextDelay()

	if elapsed < delay {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay - elapsed):
		}
	}

	p.lastAction = time.Now()
	return nil
}

// Backoff returns the delay to apply before retry number attempt. It grows
// linearly with the attempt count and is capped at the configured maximum.
func (p *RequestPacer) Backoff(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}

	delay := p.retryDelay * time.Duration(attempt)
	if p.backoffMax > 0 && delay > p.backoffMax {
		delay = p.backoffMax
	}
	return delay
}

func (p *RequestPacer) nextDelay() time.Duration {
	if p.maxDelay == p.minDelay {
		return p.minDelay
	}
	jitter := time.Duration(p.rnd.Int63n(int64(p.maxDelay - p.minDelay)))
	return p.minDelay + jitter
}
