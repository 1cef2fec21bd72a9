// Package scheduler runs periodic latest-window ingestion for the
// configured symbols.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/robfig/cron/v3"

	"TickerVault/internal/fetcher"
	"TickerVault/internal/ingest"
)

// Scheduler manages the cron-driven update task.
type Scheduler struct {
	Cron     *cron.Cron
	Orch     *ingest.Orchestrator
	Symbols  []string
	Interval string
	Ctx      context.Context
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, orch *ingest.Orchestrator, symbols []string, interval string) *Scheduler {
	return &Scheduler{
		Cron:     cron.New(cron.WithSeconds()),
		Orch:     orch,
		Symbols:  symbols,
		Interval: interval,
		Ctx:      ctx,
	}
}

// Register registers the periodic update task.
func (s *Scheduler) Register(updateCron string) error {
	if _, err := s.Cron.AddFunc(updateCron, s.updateTask); err != nil {
		return fmt.Errorf("register update task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler gracefully.
func (s *Scheduler) Stop() {
	s.Cron.Stop()
	log.Println("[INFO] scheduler stopped")
}

// RunNow executes the update task immediately (manual trigger).
func (s *Scheduler) RunNow() {
	s.updateTask()
}

// updateTask ingests the latest window for every configured symbol. In
// daemon mode an unavailable provider skips the symbol instead of killing
// the process; the next tick tries again.
func (s *Scheduler) updateTask() {
	log.Println("[INFO] running scheduled update")
	for _, symbol := range s.Symbols {
		err := s.Orch.Run(s.Ctx, symbol, nil, s.Interval)
		if errors.Is(err, fetcher.ErrUnavailable) {
			log.Printf("[ERROR] scheduled update %s: provider unavailable, will retry next tick: %v", symbol, err)
			continue
		}
		if err != nil {
			log.Printf("[ERROR] scheduled update %s: %v", symbol, err)
		}
	}
}
