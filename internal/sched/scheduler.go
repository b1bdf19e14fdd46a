// Package sched implements the user-space half of a cooperative task
// scheduler: tasks reported runnable by a kernel-side hook are ordered by
// virtual runtime, and batches of the lowest-vruntime tasks are handed back
// for execution.
package sched

import (
	"context"
	"errors"
	"sync/atomic"

	"go.uber.org/zap"
)

// Scheduler owns all mutable scheduling state. Only Run's goroutine touches
// task records, ready-set membership and minVruntime; the stats reporter
// reads nothing but the atomic counters.
type Scheduler struct {
	reg       *Registry
	ready     readySet
	hook      Hook
	log       *zap.Logger
	batchSize int

	// minVruntime is the process-wide vruntime floor. It only moves
	// forward: it tracks the vruntime of the most recently dispatched
	// task, and every (re)enqueued task is clamped up to it.
	minVruntime float64

	shutdown     atomic.Bool
	nrEnqueues   atomic.Uint64
	nrDispatches atomic.Uint64
}

// New builds a scheduler over a fully preallocated registry. Nothing on the
// drain/dispatch path allocates afterwards (with the default list ready
// set), since an enqueued task could hold a resource an allocation would
// need.
func New(cfg Config, hook Hook, log *zap.Logger) *Scheduler {
	reg := NewRegistry(cfg.MaxTasks)

	var ready readySet
	switch cfg.ReadySet {
	case "tree":
		ready = newTreeSet()
	default:
		ready = newOrderedList(reg)
	}

	return &Scheduler{
		reg:       reg,
		ready:     ready,
		hook:      hook,
		log:       log,
		batchSize: cfg.BatchSize,
	}
}

// Shutdown requests a cooperative stop. Safe to call from any goroutine
// (signal handlers); the loop observes the flag at the top of each
// iteration and at the blocking wait.
func (s *Scheduler) Shutdown() { s.shutdown.Store(true) }

// Run cycles drain -> dispatch -> wait until shutdown is requested, the
// context is cancelled, or a protocol fault occurs. Each iteration pulls
// every pending notification into the vruntime-ordered ready set and
// releases a batch of the most-deserving tasks back to the hook; once the
// ready set is empty it yields by blocking until the hook reports new work.
func (s *Scheduler) Run(ctx context.Context) {
	for !s.shutdown.Load() && ctx.Err() == nil {
		if err := s.drain(); err != nil {
			// The control channel contract is broken; retrying
			// could dispatch tasks against stale state.
			s.log.Error("drain failed, shutting down", zap.Error(err))
			s.shutdown.Store(true)
			return
		}

		s.dispatch()

		if s.shutdown.Load() {
			return
		}
		// Only yield once the backlog is gone: WaitReady wakes on a
		// new notification, not on tasks already in the ready set, so
		// blocking with leftover work would strand it.
		if s.ready.Len() > 0 {
			continue
		}
		if err := s.hook.WaitReady(ctx); err != nil {
			if !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
				s.log.Error("wait for work failed, shutting down", zap.Error(err))
			}
			s.shutdown.Store(true)
			return
		}
	}
}

// drain moves every pending runnable-task notification into the ready set,
// folding the newly observed CPU time into each task's vruntime first. Any
// fault here is fatal to the loop: an out-of-range identifier, a consumed
// time regression or a double enqueue all mean the shared contract with the
// hook no longer holds.
func (s *Scheduler) drain() error {
	for {
		n, ok, err := s.hook.Receive()
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}

		t, err := s.reg.Lookup(n.ID)
		if err != nil {
			return err
		}
		if err := t.account(n, s.minVruntime); err != nil {
			return err
		}
		if err := s.ready.Insert(t); err != nil {
			return err
		}
		s.nrEnqueues.Add(1)
	}
}

// dispatch releases up to batchSize tasks, lowest vruntime first, advancing
// the minVruntime floor to each dispatched task's vruntime. A failed
// hand-off is transient: the task goes back into the ready set, the floor
// stays put, and the rest of the batch waits for the next cycle.
func (s *Scheduler) dispatch() {
	for i := 0; i < s.batchSize; i++ {
		t, ok := s.ready.PopFront()
		if !ok {
			return
		}

		if err := s.hook.Dispatch(t.id); err != nil {
			s.log.Warn("dispatch failed, deferring task",
				zap.Int32("task", int32(t.id)),
				zap.Int("batch_index", i),
				zap.Error(err))
			// t was just popped, so re-inserting cannot fail.
			_ = s.ready.Insert(t)
			return
		}
		// Floor moves only for tasks actually handed off.
		s.minVruntime = t.vruntime
		s.nrDispatches.Add(1)
	}
}

// Stats is a point-in-time snapshot of the diagnostic counters.
type Stats struct {
	VruntimeEnqueues   uint64
	VruntimeDispatches uint64
	Kernel             KernelCounters
}

// Stats samples the counters. Best-effort: the loop keeps running while the
// snapshot is taken.
func (s *Scheduler) Stats() Stats {
	return Stats{
		VruntimeEnqueues:   s.nrEnqueues.Load(),
		VruntimeDispatches: s.nrDispatches.Load(),
		Kernel:             s.hook.Counters(),
	}
}
