package hook

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"uvsched/internal/sched"
)

func TestSimEnqueueReceive(t *testing.T) {
	s := NewSim(4)

	n := sched.Notification{ID: 3, SumExecRuntime: 100, Weight: 200}
	require.NoError(t, s.Enqueue(n))

	got, ok, err := s.Receive()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, n, got)

	_, ok, err = s.Receive()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSimBacklogFullCountsFailedEnqueue(t *testing.T) {
	s := NewSim(1)

	require.NoError(t, s.Enqueue(sched.Notification{ID: 0, Weight: 100}))
	err := s.Enqueue(sched.Notification{ID: 1, Weight: 100})
	assert.ErrorIs(t, err, ErrQueueFull)

	c := s.Counters()
	assert.Equal(t, uint64(1), c.UserEnqueues)
	assert.Equal(t, uint64(1), c.FailedEnqueues)
}

func TestSimWaitReadyWithPendingWork(t *testing.T) {
	s := NewSim(4)

	require.NoError(t, s.Enqueue(sched.Notification{ID: 0, Weight: 100}))
	require.NoError(t, s.WaitReady(context.Background()))
}

func TestSimWaitReadyBlocksUntilEnqueue(t *testing.T) {
	s := NewSim(4)

	done := make(chan error, 1)
	go func() { done <- s.WaitReady(context.Background()) }()
	time.Sleep(10 * time.Millisecond)
	require.NoError(t, s.Enqueue(sched.Notification{ID: 0, Weight: 100}))
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("WaitReady did not wake on enqueue")
	}
}

func TestSimWaitReadyHonorsContext(t *testing.T) {
	s := NewSim(4)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, s.WaitReady(ctx), context.Canceled)
}

func TestSimDispatch(t *testing.T) {
	s := NewSim(1)

	link, err := s.Attach(false)
	require.NoError(t, err)

	require.NoError(t, s.Dispatch(7))
	assert.Equal(t, sched.TaskID(7), <-s.Dispatched())

	// Full dispatch queue is a transient failure.
	require.NoError(t, s.Dispatch(8))
	assert.ErrorIs(t, s.Dispatch(9), ErrQueueFull)

	require.NoError(t, link.Release())
	assert.ErrorIs(t, s.Dispatch(7), ErrNotAttached)
}

func TestSimAttachIsExclusive(t *testing.T) {
	s := NewSim(4)

	link, err := s.Attach(true)
	require.NoError(t, err)

	_, err = s.Attach(true)
	assert.ErrorIs(t, err, ErrAlreadyAttached)

	require.NoError(t, link.Release())
	assert.ErrorIs(t, link.Release(), ErrNotAttached)

	_, err = s.Attach(true)
	assert.NoError(t, err)
}
