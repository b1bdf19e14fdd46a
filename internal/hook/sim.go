// Package hook provides an in-memory stand-in for the kernel-side
// scheduling hook. It implements the same pull/push/attach contract an
// eBPF-backed hook exposes, so the scheduler and a synthetic workload can
// run end to end in a single process.
package hook

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"uvsched/internal/sched"
)

var (
	ErrAlreadyAttached = errors.New("hook already attached")
	ErrNotAttached     = errors.New("hook not attached")
	ErrQueueFull       = errors.New("dispatch queue full")
)

// Sim is a channel-backed collaborator. Runnable-task notifications are
// produced with Enqueue (normally by RunWorkload) and consumed by the
// scheduler via Receive; dispatched identifiers flow out on Dispatched().
type Sim struct {
	mu      sync.Mutex
	pending []sched.Notification

	queueCap   int
	wake       chan struct{}
	dispatched chan sched.TaskID

	attached  atomic.Bool
	kernelEnq atomic.Uint64
	userEnq   atomic.Uint64
	failedEnq atomic.Uint64
}

// NewSim bounds both the notification backlog and the dispatch queue at
// queueCap, mirroring the fixed-size kernel maps the real hook uses.
func NewSim(queueCap int) *Sim {
	return &Sim{
		queueCap:   queueCap,
		wake:       make(chan struct{}, 1),
		dispatched: make(chan sched.TaskID, queueCap),
	}
}

type simLink struct{ s *Sim }

func (l simLink) Release() error {
	if !l.s.attached.CompareAndSwap(true, false) {
		return ErrNotAttached
	}
	return nil
}

// Attach installs the caller as the active scheduling policy. partial is
// recorded for contract fidelity; the sim has no other policy to share
// tasks with.
func (s *Sim) Attach(partial bool) (sched.Link, error) {
	if !s.attached.CompareAndSwap(false, true) {
		return nil, ErrAlreadyAttached
	}
	_ = partial
	return simLink{s: s}, nil
}

// Enqueue adds one runnable-task notification, waking a blocked WaitReady.
// A full backlog counts as a failed enqueue, like the kernel map filling up.
func (s *Sim) Enqueue(n sched.Notification) error {
	s.mu.Lock()
	if len(s.pending) >= s.queueCap {
		s.mu.Unlock()
		s.failedEnq.Add(1)
		return fmt.Errorf("%w: task %d", ErrQueueFull, n.ID)
	}
	s.pending = append(s.pending, n)
	s.mu.Unlock()

	s.userEnq.Add(1)
	select {
	case s.wake <- struct{}{}:
	default:
	}
	return nil
}

// Receive takes and removes one pending notification, ok=false when empty.
func (s *Sim) Receive() (sched.Notification, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.pending) == 0 {
		return sched.Notification{}, false, nil
	}
	n := s.pending[0]
	s.pending = s.pending[1:]
	return n, true, nil
}

// Dispatch hands a task identifier back for execution. A full dispatch
// queue is a transient failure, the caller retries on a later cycle.
func (s *Sim) Dispatch(id sched.TaskID) error {
	if !s.attached.Load() {
		return ErrNotAttached
	}
	select {
	case s.dispatched <- id:
		return nil
	default:
		return fmt.Errorf("%w: task %d", ErrQueueFull, id)
	}
}

// WaitReady blocks until at least one notification is pending or the
// context ends. This is the scheduler's cooperative yield point.
func (s *Sim) WaitReady(ctx context.Context) error {
	s.mu.Lock()
	ready := len(s.pending) > 0
	s.mu.Unlock()
	if ready {
		return nil
	}
	select {
	case <-s.wake:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Counters reports hook-side enqueue totals split by code path.
func (s *Sim) Counters() sched.KernelCounters {
	return sched.KernelCounters{
		KernelEnqueues: s.kernelEnq.Load(),
		UserEnqueues:   s.userEnq.Load(),
		FailedEnqueues: s.failedEnq.Load(),
	}
}

// Dispatched exposes the outbound queue to the workload side.
func (s *Sim) Dispatched() <-chan sched.TaskID { return s.dispatched }

// RunWorkload drives ntasks synthetic tasks against the hook: every task is
// enqueued once, then each time the scheduler dispatches it the task "runs"
// for a random slice of CPU time and goes runnable again. About one in
// eight wakeups also gets a kernel-side slice first, ticking the kernel
// enqueue counter the way affinity-pinned wakeups would.
func (s *Sim) RunWorkload(ctx context.Context, ntasks int) {
	weights := []uint64{50, 100, 200, 400}
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	sum := make([]uint64, ntasks)
	for i := 0; i < ntasks; i++ {
		_ = s.Enqueue(sched.Notification{
			ID:     sched.TaskID(i),
			Weight: weights[i%len(weights)],
		})
	}

	for {
		var id sched.TaskID
		select {
		case <-ctx.Done():
			return
		case id = <-s.dispatched:
		}

		// Simulated execution: accumulate up to 2ms of CPU time.
		sum[id] += uint64(rng.Int63n(2_000_000) + 1)

		// Occasionally the next wakeup is handled entirely
		// kernel-side before the task returns to user space.
		if rng.Intn(8) == 0 {
			s.kernelEnq.Add(1)
			sum[id] += uint64(rng.Int63n(2_000_000) + 1)
		}
		_ = s.Enqueue(sched.Notification{
			ID:             id,
			SumExecRuntime: sum[id],
			Weight:         weights[int(id)%len(weights)],
		})
	}
}
