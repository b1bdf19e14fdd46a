package sched

import "context"

// Notification is one "task became runnable" record pulled from the
// kernel-side hook: the task's identity, its cumulative consumed CPU time,
// and its fairness weight in percent-of-nominal units.
type Notification struct {
	ID             TaskID
	SumExecRuntime uint64
	Weight         uint64
}

// KernelCounters are the hook-side enqueue diagnostics, split by code path.
// They are read-only to this process and sampled best-effort by the stats
// reporter.
type KernelCounters struct {
	KernelEnqueues uint64
	UserEnqueues   uint64
	FailedEnqueues uint64
}

// Link is a live attachment of this process as the active scheduling
// policy. It must be released at shutdown.
type Link interface {
	Release() error
}

// Hook is the kernel-side scheduling collaborator. The scheduler pulls
// runnable-task notifications from it, hands dispatched task identifiers
// back, and blocks on WaitReady between cycles instead of busy-spinning.
//
// Receive returns ok=false once no notification is pending; a non-nil error
// means the control channel itself is broken (fatal). Dispatch may fail
// transiently, e.g. when the hand-off queue is momentarily full.
type Hook interface {
	Attach(partial bool) (Link, error)
	Receive() (Notification, bool, error)
	Dispatch(id TaskID) error
	WaitReady(ctx context.Context) error
	Counters() KernelCounters
}
