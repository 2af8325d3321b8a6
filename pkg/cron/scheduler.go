// Package cron provides scheduled background jobs using robfig/cron.
package cron

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Reloader re-reads a data source.
type Reloader interface {
	Reload(ctx context.Context) error
}

type job struct {
	name   string
	source Reloader
}

// Scheduler reloads the registered sources on a fixed schedule.
type Scheduler struct {
	cron    *cron.Cron
	spec    string
	timeout time.Duration
	jobs    []job
	logger  *slog.Logger
}

// NewScheduler creates a scheduler for the given cron spec (standard 5-field format).
func NewScheduler(spec string, logger *slog.Logger) *Scheduler {
	c := cron.New(cron.WithLogger(cron.VerbosePrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelDebug))))

	return &Scheduler{
		cron:    c,
		spec:    spec,
		timeout: 5 * time.Minute,
		logger:  logger,
	}
}

// Add registers a source to reload.
func (s *Scheduler) Add(name string, source Reloader) {
	s.jobs = append(s.jobs, job{name: name, source: source})
}

// Start begins scheduled jobs.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.spec, s.reloadAll); err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info("cron scheduler started",
		slog.String("spec", s.spec),
		slog.Int("sources", len(s.jobs)),
	)
	return nil
}

// Stop gracefully stops all scheduled jobs.
func (s *Scheduler) Stop() context.Context {
	s.logger.Info("cron scheduler stopping")
	return s.cron.Stop()
}

// RunNow triggers a reload outside the schedule and waits for it.
func (s *Scheduler) RunNow() {
	s.reloadAll()
}

// reloadAll reloads every source. One failure does not stop the rest.
func (s *Scheduler) reloadAll() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	s.logger.Info("starting scheduled reload")

	reloaded, failed := 0, 0
	for _, j := range s.jobs {
		if err := j.source.Reload(ctx); err != nil {
			s.logger.Warn("failed to reload source",
				slog.String("source", j.name),
				slog.Any("error", err),
			)
			failed++
			continue
		}
		reloaded++
	}

	s.logger.Info("scheduled reload completed",
		slog.Int("reloaded", reloaded),
		slog.Int("failed", failed),
	)
}
