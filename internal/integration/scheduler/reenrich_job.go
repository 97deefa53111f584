// Package scheduler runs periodic maintenance jobs.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/finance-tracker/categorizer/internal/application/usecase/loader"
)

// Reenricher reclassifies stored facts.
type Reenricher interface {
	Execute(ctx context.Context, input loader.ReenrichInput) (*loader.ReenrichOutput, error)
}

// ReenrichJobConfig holds configuration for the re-enrichment job.
type ReenrichJobConfig struct {
	Schedule  string // Standard 5-field cron spec
	TimeZone  string
	BatchSize int
	Timeout   time.Duration
}

// DefaultReenrichJobConfig returns the default job configuration.
func DefaultReenrichJobConfig() ReenrichJobConfig {
	return ReenrichJobConfig{
		Schedule:  "0 3 * * *",
		TimeZone:  "UTC",
		BatchSize: loader.DefaultReenrichBatchSize,
		Timeout:   time.Hour,
	}
}

// ReenrichJob re-enriches every user's facts on a cron schedule.
type ReenrichJob struct {
	cron       *cron.Cron
	reenricher Reenricher
	cfg        ReenrichJobConfig
	ctx        context.Context
}

// NewReenrichJob creates the job. The schedule is validated here.
func NewReenrichJob(reenricher Reenricher, cfg ReenrichJobConfig) (*ReenrichJob, error) {
	loc := time.UTC
	if cfg.TimeZone != "" {
		l, err := time.LoadLocation(cfg.TimeZone)
		if err != nil {
			slog.Warn("Invalid re-enrichment timezone, falling back to UTC", "timezone", cfg.TimeZone, "error", err)
		} else {
			loc = l
		}
	}

	job := &ReenrichJob{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
		),
		reenricher: reenricher,
		cfg:        cfg,
		ctx:        context.Background(),
	}
	if _, err := job.cron.AddFunc(cfg.Schedule, job.run); err != nil {
		return nil, fmt.Errorf("invalid re-enrichment schedule %q: %w", cfg.Schedule, err)
	}
	return job, nil
}

// Start runs the scheduler until ctx is cancelled, then waits for a running pass to finish.
func (j *ReenrichJob) Start(ctx context.Context) {
	j.ctx = ctx
	j.cron.Start()
	slog.Info("Re-enrichment scheduler started",
		"schedule", j.cfg.Schedule,
		"timezone", j.cron.Location().String(),
	)

	<-ctx.Done()
	<-j.cron.Stop().Done()
	slog.Info("Re-enrichment scheduler stopped")
}

// RunOnce performs one pass immediately.
func (j *ReenrichJob) RunOnce(ctx context.Context) (*loader.ReenrichOutput, error) {
	if j.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, j.cfg.Timeout)
		defer cancel()
	}
	return j.reenricher.Execute(ctx, loader.ReenrichInput{BatchSize: j.cfg.BatchSize})
}

func (j *ReenrichJob) run() {
	started := time.Now()
	slog.Info("Starting scheduled re-enrichment")

	output, err := j.RunOnce(j.ctx)
	if err != nil {
		slog.Error("Scheduled re-enrichment failed", "error", err, "duration", time.Since(started))
		return
	}
	slog.Info("Scheduled re-enrichment completed",
		"scanned", output.Scanned,
		"updated", output.Updated,
		"duration", time.Since(started),
	)
}
