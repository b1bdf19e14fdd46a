package sched

import "fmt"

// vruntimeDelta converts an observed CPU time delta into a vruntime
// increment. Weight is in percent-of-nominal units: weight 100 scales 1:1,
// and a smaller weight yields a larger increment. That means low-weight
// tasks accumulate vruntime faster and are scheduled *less* favorably under
// ascending-vruntime dispatch; callers pick weight semantics accordingly.
func vruntimeDelta(weight, delta uint64) float64 {
	return float64(delta) / (float64(weight) / 100.0)
}

// account folds a fresh notification into the record: credits the CPU time
// consumed since the last observation as weighted vruntime, then clamps the
// result to the process-wide floor so a long-sleeping task cannot hoard an
// unbounded scheduling advantage.
//
// Consumed time is monotonic by contract; a regression means the control
// channel handed us inconsistent data and is reported, not ignored.
func (t *TaskRecord) account(n Notification, minVruntime float64) error {
	if n.Weight == 0 {
		return fmt.Errorf("%w: 0", ErrInvalidWeight)
	}
	if n.SumExecRuntime < t.sumExecRuntime {
		return fmt.Errorf("%w: %d < %d", ErrTimeRegression, n.SumExecRuntime, t.sumExecRuntime)
	}
	delta := n.SumExecRuntime - t.sumExecRuntime

	t.vruntime += vruntimeDelta(n.Weight, delta)
	if t.vruntime < minVruntime {
		t.vruntime = minVruntime
	}
	t.sumExecRuntime = n.SumExecRuntime
	return nil
}
