package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWaitTurnUnlimited(t *testing.T) {
	initLimiter(0, 0)
	ctx := context.Background()
	start := time.Now()
	for i := 0; i < 100; i++ {
		require.NoError(t, WaitTurn(ctx))
	}
	assert.Less(t, time.Since(start), time.Second)
}

func TestWaitTurnThrottles(t *testing.T) {
	t.Cleanup(func() { initLimiter(0, 0) })
	initLimiter(20, 1)

	ctx := context.Background()
	start := time.Now()
	for i := 0; i < 3; i++ {
		require.NoError(t, WaitTurn(ctx))
	}
	// burst 1 at 20/s: the 2nd and 3rd requests wait ~50ms each
	assert.GreaterOrEqual(t, time.Since(start), 80*time.Millisecond)
}

func TestWaitTurnHonoursContext(t *testing.T) {
	t.Cleanup(func() { initLimiter(0, 0) })
	initLimiter(0.01, 1)
	require.NoError(t, WaitTurn(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.Error(t, WaitTurn(ctx))
}
