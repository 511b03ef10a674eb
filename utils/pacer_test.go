package utils

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"ozon-extractor/internal/types"
)

func TestPacer_BetweenStaysInRange(t *testing.T) {
	pacer := NewPacerWithSeed(42)
	jitter := types.Jitter{Min: 100 * time.Millisecond, Max: 300 * time.Millisecond}

	for i := 0; i < 1000; i++ {
		d := pacer.Between(jitter)
		assert.GreaterOrEqual(t, d, jitter.Min)
		assert.LessOrEqual(t, d, jitter.Max)
	}
}

func TestPacer_BetweenVaries(t *testing.T) {
	pacer := NewPacerWithSeed(7)
	jitter := types.Jitter{Min: 4 * time.Second, Max: 6 * time.Second}

	seen := make(map[time.Duration]bool)
	for i := 0; i < 20; i++ {
		seen[pacer.Between(jitter)] = true
	}

	assert.Greater(t, len(seen), 1)
}

func TestPacer_BetweenFixed(t *testing.T) {
	pacer := NewPacerWithSeed(1)

	assert.Equal(t, time.Second, pacer.Between(types.Jitter{Min: time.Second, Max: time.Second}))
	assert.Equal(t, time.Duration(0), pacer.Between(types.Jitter{}))
}

func TestPacer_PauseZeroReturnsImmediately(t *testing.T) {
	pacer := NewPacerWithSeed(1)

	start := time.Now()
	err := pacer.Pause(context.Background(), types.Jitter{})

	assert.NoError(t, err)
	assert.Less(t, time.Since(start), 50*time.Millisecond)
}

func TestPacer_PauseHonoursCancellation(t *testing.T) {
	pacer := NewPacerWithSeed(1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := pacer.Pause(ctx, types.Jitter{Min: time.Minute, Max: time.Minute})

	assert.Equal(t, context.Canceled, err)
}

func TestPacer_PauseSleeps(t *testing.T) {
	pacer := NewPacerWithSeed(1)

	start := time.Now()
	err := pacer.Pause(context.Background(), types.Jitter{Min: 20 * time.Millisecond, Max: 30 * time.Millisecond})

	assert.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
}
