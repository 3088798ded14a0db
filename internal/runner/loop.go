package runner

import (
	"context"
	"log/slog"
	"time"

	"github.com/bebsworthy/periodic/internal/config"
	"github.com/bebsworthy/periodic/internal/errors"
	"github.com/bebsworthy/periodic/internal/logging"
	"github.com/bebsworthy/periodic/internal/metrics"
	"github.com/bebsworthy/periodic/internal/timer"
)

// LoopConfig contains the run plan and collaborators of a Loop
type LoopConfig struct {
	Schedule     config.Schedule
	InitialDelay time.Duration
	Logger       *logging.Logger
	Monitor      *metrics.Monitor
}

// Loop owns the iteration counter. It waits for a timer wake-up, runs one
// cycle, and counts, until the scheduled count is reached. Cycles never
// overlap: the next Wait only starts after the child of the current cycle
// has been reaped.
type Loop struct {
	trigger  timer.Trigger
	spawner  Spawner
	reporter *Reporter
	logger   *logging.Logger
	monitor  *metrics.Monitor

	schedule     config.Schedule
	initialDelay time.Duration

	iterations int
	now        func() time.Time
}

// NewLoop creates a loop. The trigger must not be armed yet.
func NewLoop(trigger timer.Trigger, spawner Spawner, reporter *Reporter, cfg LoopConfig) *Loop {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	monitor := cfg.Monitor
	if monitor == nil {
		monitor = metrics.NewMonitor()
	}

	initialDelay := cfg.InitialDelay
	if initialDelay <= 0 {
		initialDelay = config.DefaultInitialDelay
	}

	return &Loop{
		trigger:      trigger,
		spawner:      spawner,
		reporter:     reporter,
		logger:       logger.Component("loop"),
		monitor:      monitor,
		schedule:     cfg.Schedule,
		initialDelay: initialDelay,
		now:          time.Now,
	}
}

// Iterations returns the number of completed cycles
func (l *Loop) Iterations() int {
	return l.iterations
}

// Run arms the trigger and runs the scheduled number of cycles. The first
// error ends the run; nothing is retried.
func (l *Loop) Run(ctx context.Context) error {
	if l.schedule.Period == 0 {
		l.logger.WarnContext(ctx, "Zero period arms a one-shot timer; only the first cycle will ever run",
			slog.Int("count", l.schedule.Count))
	}

	if err := l.trigger.Arm(l.initialDelay, l.schedule.Period); err != nil {
		return err
	}
	defer func() {
		if err := l.trigger.Stop(); err != nil {
			l.logger.LogError(ctx, "Failed to disarm timer", err)
		}
	}()

	l.logger.InfoContext(ctx, "Timer armed",
		slog.Duration("initial_delay", l.initialDelay),
		slog.Duration("period", l.schedule.Period),
		slog.Int("count", l.schedule.Count))

	for l.iterations = 0; l.iterations < l.schedule.Count; l.iterations++ {
		if err := l.trigger.Wait(ctx); err != nil {
			if interrupted := errors.FromContext(ctx); interrupted != nil {
				l.logger.WarnContext(ctx, "Run interrupted while waiting for the timer",
					slog.Int("iterations", l.iterations))
				return interrupted
			}
			return err
		}

		if err := l.cycle(logging.WithCycle(ctx, l.iterations)); err != nil {
			return err
		}
	}

	l.reporter.RunFinished(l.now())
	return nil
}

// cycle spawns one child, waits for it and reports.
func (l *Loop) cycle(ctx context.Context) error {
	start := time.Now()
	l.reporter.CycleStarted(l.iterations)

	var result ChildResult
	err := l.monitor.TrackOperation(ctx, "spawn", func() error {
		var err error
		result, err = l.spawner.Spawn(ctx)
		return err
	})
	if err != nil {
		l.monitor.TrackError(ctx, string(errors.ErrorTypeSpawn), errors.GetCode(err), err.Error())
		return err
	}

	l.reporter.CycleFinished(l.now())

	elapsed := time.Since(start)
	l.monitor.RecordOperation("cycle", elapsed, true)
	l.logger.InfoContext(ctx, "Cycle completed",
		slog.Int("pid", result.PID),
		slog.Int("exit_code", result.ExitCode),
		slog.Duration("elapsed", elapsed))

	if period := l.schedule.Period; period > 0 && elapsed >= period {
		l.monitor.TrackOverrun()
		l.logger.WarnContext(ctx, "Cycle outlasted the timer period; missed expiries were coalesced",
			slog.Duration("elapsed", elapsed),
			slog.Duration("period", period))
	}

	return nil
}
