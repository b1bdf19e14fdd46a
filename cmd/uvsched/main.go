package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sys/unix"

	"uvsched/internal/hook"
	"uvsched/internal/observability"
	"uvsched/internal/sched"
)

// SCHED_EXT scheduling policy class (UAPI).
const schedExt = 7

func init() {
	// The drain/dispatch loop is a single logical control thread.
	runtime.GOMAXPROCS(1)
}

func main() {
	batch := flag.Int("b", 0, "number of tasks to batch when dispatching (default from config: 8)")
	partial := flag.Bool("p", false, "don't switch all, switch only tasks already on the ext policy")
	cfgPath := flag.String("c", "", "path to YAML config file")
	ntasks := flag.Int("n", 16, "synthetic workload size for the simulated hook")
	flag.Parse()

	cfg := sched.Load(*cfgPath)
	if *batch > 0 {
		cfg.BatchSize = *batch
	}
	if *partial {
		cfg.Partial = true
	}

	logger, err := observability.SetupLogger(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to set up logging: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(cfg, logger, *ntasks); err != nil {
		logger.Error("failed to bootstrap scheduler", zap.Error(err))
		os.Exit(1)
	}
}

func run(cfg sched.Config, logger *zap.Logger, ntasks int) error {
	if cfg.SchedClass {
		// The control loop itself must live on the ext class so the
		// kernel side only wakes it when user-space work is pending.
		attr := unix.SchedAttr{Size: unix.SizeofSchedAttr, Policy: schedExt}
		if err := unix.SchedSetAttr(0, &attr, 0); err != nil {
			return fmt.Errorf("set scheduling class: %w", err)
		}
	}
	if cfg.LockMemory {
		// It's not always safe to page-fault in a user-space
		// scheduler: a suspended task could hold a resource the
		// fault path needs.
		if err := unix.Mlockall(unix.MCL_CURRENT | unix.MCL_FUTURE); err != nil {
			return fmt.Errorf("prefault and lock address space: %w", err)
		}
	}

	h := hook.NewSim(cfg.MaxTasks)
	s := sched.New(cfg, h, logger)

	link, err := h.Attach(cfg.Partial)
	if err != nil {
		return fmt.Errorf("attach scheduling hook: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("shutdown signal received")
		s.Shutdown()
		cancel()
	}()

	go h.RunWorkload(ctx, ntasks)
	go s.ReportStats(ctx, time.Duration(cfg.StatsIntervalMS)*time.Millisecond)

	logger.Info("scheduler running",
		zap.Int("batch_size", cfg.BatchSize),
		zap.Int("max_tasks", cfg.MaxTasks),
		zap.String("ready_set", cfg.ReadySet),
		zap.Bool("partial", cfg.Partial),
	)
	s.Run(ctx)

	if err := link.Release(); err != nil {
		return fmt.Errorf("release scheduling hook: %w", err)
	}
	logger.Info("scheduler exited")
	return nil
}
