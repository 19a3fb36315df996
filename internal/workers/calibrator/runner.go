// Package calibrator runs calibration proposals on a cron schedule. It only
// ever proposes; applying a batch stays a manual step.
package calibrator

import (
    "context"
    "fmt"
    "sync/atomic"

    "github.com/robfig/cron/v3"

    "github.com/wukjhc-create/elta-crm-sub010/internal/domain"
    "github.com/wukjhc-create/elta-crm-sub010/internal/platform/logger"
)

// Proposer produces a calibration batch from the feedback recorded so far.
type Proposer interface {
    ProposeCalibration(ctx context.Context) (domain.CalibrationBatch, error)
}

type Runner struct {
    proposer Proposer
    log      *logger.Logger
    running  atomic.Bool
}

func New(proposer Proposer, log *logger.Logger) *Runner {
    if log == nil {
        log = logger.Nop()
    }
    return &Runner{proposer: proposer, log: log}
}

// RunOnce proposes a batch unless a previous run is still in flight, in which
// case it reports skipped.
func (r *Runner) RunOnce(ctx context.Context) (batch domain.CalibrationBatch, skipped bool, err error) {
    if !r.running.CompareAndSwap(false, true) {
        r.log.Warn("calibration run skipped, previous run still active")
        return batch, true, nil
    }
    defer r.running.Store(false)

    batch, err = r.proposer.ProposeCalibration(ctx)
    if err != nil {
        r.log.Error("calibration proposal failed", "error", err)
        return batch, false, err
    }
    if len(batch.Adjustments) == 0 {
        r.log.Info("calibration run found nothing to adjust")
        return batch, false, nil
    }
    r.log.Info("calibration proposed", "batch_id", batch.ID, "adjustments", len(batch.Adjustments))
    return batch, false, nil
}

// Start schedules RunOnce with a standard five-field cron spec and returns a
// stop func that waits for an in-flight run. ctx is passed to every run.
func (r *Runner) Start(ctx context.Context, spec string) (stop func(), err error) {
    cl := cronLogger{r.log}
    c := cron.New(cron.WithLogger(cl), cron.WithChain(cron.Recover(cl)))
    if _, err := c.AddFunc(spec, func() { _, _, _ = r.RunOnce(ctx) }); err != nil {
        return nil, fmt.Errorf("calibration schedule %q: %w", spec, err)
    }
    c.Start()
    r.log.Info("calibration worker started", "schedule", spec)
    return func() { <-c.Stop().Done() }, nil
}

// cronLogger adapts the zap wrapper to cron.Logger.
type cronLogger struct{ l *logger.Logger }

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
    c.l.Debug("cron: "+msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
    c.l.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
