package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetachedRunner_SurvivesRequestCancellation(t *testing.T) {
	runner := NewDetachedRunner(time.Second)
	ctx, cancel := context.WithCancel(context.Background())

	started := make(chan struct{})
	var alive atomic.Bool
	runner.Run(ctx, "test", nil, func(ctx context.Context) error {
		close(started)
		time.Sleep(20 * time.Millisecond)
		alive.Store(ctx.Err() == nil)
		return nil
	})

	<-started
	cancel()
	runner.Wait()
	assert.True(t, alive.Load())
}

func TestDetachedRunner_AppliesTimeout(t *testing.T) {
	runner := NewDetachedRunner(20 * time.Millisecond)
	var deadline atomic.Bool
	runner.Run(context.Background(), "slow", nil, func(ctx context.Context) error {
		<-ctx.Done()
		deadline.Store(errors.Is(ctx.Err(), context.DeadlineExceeded))
		return ctx.Err()
	})
	runner.Wait()
	assert.True(t, deadline.Load())
}

func TestRunners_SwallowErrorsAndPanics(t *testing.T) {
	var calls atomic.Int32
	failing := func(context.Context) error {
		calls.Add(1)
		return errors.New("boom")
	}
	panicking := func(context.Context) error {
		calls.Add(1)
		panic("boom")
	}

	require.NotPanics(t, func() {
		InlineRunner{}.Run(context.Background(), "fail", nil, failing)
		InlineRunner{}.Run(context.Background(), "panic", nil, panicking)

		d := NewDetachedRunner(0)
		d.Run(context.Background(), "fail", nil, failing)
		d.Run(context.Background(), "panic", nil, panicking)
		d.Wait()
	})
	assert.Equal(t, int32(4), calls.Load())
}
