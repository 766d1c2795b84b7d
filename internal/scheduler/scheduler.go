// Package scheduler runs the periodic maintenance jobs: the knowledge-base
// reindex and the daily stats report.
package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

type Scheduler struct {
	cron        *cron.Cron
	ctx         context.Context
	cancel      context.CancelFunc
	rebuildFunc func(ctx context.Context) error
	reportFunc  func(ctx context.Context) error
}

func New() *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron:   cron.New(cron.WithLocation(time.UTC)),
		ctx:    ctx,
		cancel: cancel,
	}
}

// SetRebuildFunction registers the corpus reload + index rebuild job.
func (s *Scheduler) SetRebuildFunction(f func(ctx context.Context) error) {
	s.rebuildFunc = f
}

// SetReportFunction registers the daily stats report job.
func (s *Scheduler) SetReportFunction(f func(ctx context.Context) error) {
	s.reportFunc = f
}

// Start schedules the registered jobs. rebuildSpec is a cron expression for
// the reindex job; the report job runs daily at 21:00 UTC.
func (s *Scheduler) Start(rebuildSpec string) error {
	if s.rebuildFunc != nil {
		_, err := s.cron.AddFunc(rebuildSpec, func() {
			log.Printf("triggered scheduled knowledge-base reindex")
			if err := s.rebuildFunc(s.ctx); err != nil {
				log.Printf("scheduled reindex failed: %v", err)
			}
		})
		if err != nil {
			return err
		}
	}

	if s.reportFunc != nil {
		_, err := s.cron.AddFunc("0 21 * * *", func() {
			log.Printf("triggered daily support stats report")
			if err := s.reportFunc(s.ctx); err != nil {
				log.Printf("daily report generation failed: %v", err)
			}
		})
		if err != nil {
			return err
		}
	}

	if len(s.cron.Entries()) == 0 {
		log.Printf("no scheduled jobs registered, scheduler idle")
		return nil
	}

	s.cron.Start()
	log.Printf("scheduler started with %d job(s)", len(s.cron.Entries()))
	return nil
}

func (s *Scheduler) Stop() {
	if s.cron != nil {
		ctx := s.cron.Stop()
		<-ctx.Done()
	}
	if s.cancel != nil {
		s.cancel()
	}
	log.Printf("scheduler stopped")
}

func (s *Scheduler) IsRunning() bool {
	return s.cron != nil && len(s.cron.Entries()) > 0
}
