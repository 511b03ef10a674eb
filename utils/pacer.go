package utils

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"ozon-extractor/internal/types"
)

// Pacer produces randomized pauses so page interaction does not run on a fixed clock
type Pacer struct {
	mu    sync.Mutex
	rnd   *rand.Rand
	sleep func(ctx context.Context, d time.Duration) error
}

// NewPacer creates a pacer seeded from the current time
func NewPacer() *Pacer {
	return NewPacerWithSeed(time.Now().UnixNano())
}

// NewPacerWithSeed creates a pacer with a fixed seed
func NewPacerWithSeed(seed int64) *Pacer {
	return &Pacer{
		rnd:   rand.New(rand.NewSource(seed)),
		sleep: sleepContext,
	}
}

// Between returns a uniformly distributed duration in [j.Min, j.Max]
func (p *Pacer) Between(j types.Jitter) time.Duration {
	if j.Max <= j.Min {
		return j.Min
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	return j.Min + time.Duration(p.rnd.Int63n(int64(j.Max-j.Min)+1))
}

// Pause sleeps for a random duration within j, returning early if ctx is done
func (p *Pacer) Pause(ctx context.Context, j types.Jitter) error {
	d := p.Between(j)
	if d <= 0 {
		return ctx.Err()
	}
	return p.sleep(ctx, d)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
