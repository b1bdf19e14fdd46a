package sched

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// ReportStats logs a counter snapshot every interval until the context is
// cancelled or shutdown is requested. It only reads atomic counters, so it
// needs no coordination with the running loop; successive snapshots may
// straddle a cycle boundary, which is fine for diagnostics.
func (s *Scheduler) ReportStats(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		if s.shutdown.Load() {
			return
		}

		st := s.Stats()
		total := st.Kernel.KernelEnqueues + st.Kernel.UserEnqueues + st.Kernel.FailedEnqueues
		s.log.Info("enqueue stats",
			zap.Uint64("kern", st.Kernel.KernelEnqueues),
			zap.Uint64("user", st.Kernel.UserEnqueues),
			zap.Uint64("failed", st.Kernel.FailedEnqueues),
			zap.Uint64("total", total),
			zap.Uint64("vruntime_enq", st.VruntimeEnqueues),
			zap.Uint64("vruntime_disp", st.VruntimeDispatches),
		)
	}
}
