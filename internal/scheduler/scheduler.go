package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

// Scheduler runs the periodic memory-consolidation job.
type Scheduler struct {
	cron   *cron.Cron
	ctx    context.Context
	cancel context.CancelFunc
}

func New() *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron:   cron.New(cron.WithLocation(time.UTC)),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Start registers job under the given cron spec and starts the scheduler.
func (s *Scheduler) Start(spec string, job func(ctx context.Context) error) error {
	_, err := s.cron.AddFunc(spec, func() {
		if err := job(s.ctx); err != nil {
			log.Printf("scheduled consolidation failed: %v", err)
		}
	})
	if err != nil {
		return err
	}
	s.cron.Start()
	log.Printf("scheduler started (spec=%q)", spec)
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
