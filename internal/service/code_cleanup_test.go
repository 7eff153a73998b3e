package service

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingCodes struct {
	calls  atomic.Int32
	cutoff atomic.Int64
}

func (c *countingCodes) DeleteExpired(_ context.Context, cutoff time.Time) (int64, error) {
	c.calls.Add(1)
	c.cutoff.Store(cutoff.Unix())
	return 1, nil
}

func TestCodeCleanupRunsUntilCancelled(t *testing.T) {
	codes := &countingCodes{}
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		CodeCleanup(ctx, 5*time.Millisecond, time.Hour, codes)
		close(done)
	}()

	require.Eventually(t, func() bool { return codes.calls.Load() >= 2 }, time.Second, time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("cleanup did not stop after cancel")
	}

	assert.InDelta(t, time.Now().Add(-time.Hour).Unix(), codes.cutoff.Load(), 5)
}
