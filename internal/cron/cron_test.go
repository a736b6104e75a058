package cron

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/linskybing/grant-review/pkg/logger"
	"github.com/stretchr/testify/assert"
)

type countingCloser struct {
	calls atomic.Int32
	err   error
}

func (c *countingCloser) CloseDueCalls(context.Context) (int, error) {
	c.calls.Add(1)
	return 1, c.err
}

func TestStartAutoClose_RunsImmediatelyAndOnTick(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	closer := &countingCloser{}

	StartAutoClose(ctx, closer, 10*time.Millisecond, logger.NewNop())

	assert.Eventually(t, func() bool { return closer.calls.Load() >= 3 }, time.Second, 5*time.Millisecond)
}

func TestStartAutoClose_Disabled(t *testing.T) {
	closer := &countingCloser{}
	StartAutoClose(context.Background(), closer, 0, logger.NewNop())
	time.Sleep(20 * time.Millisecond)
	assert.Zero(t, closer.calls.Load())
}

func TestStartAutoClose_KeepsRunningAfterErrors(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	closer := &countingCloser{err: errors.New("db down")}

	StartAutoClose(ctx, closer, 5*time.Millisecond, logger.NewNop())

	assert.Eventually(t, func() bool { return closer.calls.Load() >= 2 }, time.Second, 5*time.Millisecond)
}
