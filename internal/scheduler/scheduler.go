package scheduler

import (
	"fmt"
	"log"

	"github.com/robfig/cron/v3"

	"PricePulse/internal/store"
)

// Scheduler manages background cron jobs.
type Scheduler struct {
	Cron *cron.Cron
	Raw  store.RawStore
}

// NewScheduler creates a new Scheduler.
func NewScheduler(raw store.RawStore) *Scheduler {
	return &Scheduler{
		Cron: cron.New(cron.WithSeconds()),
		Raw:  raw,
	}
}

// RegisterAll registers the daily raw-data purge task.
func (s *Scheduler) RegisterAll(purgeCron string) error {
	if _, err := s.Cron.AddFunc(purgeCron, s.purgeTask); err != nil {
		return fmt.Errorf("register purge task: %w", err)
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

func (s *Scheduler) purgeTask() {
	log.Println("[INFO] running raw data purge")
	if err := s.Raw.Purge(); err != nil {
		log.Printf("[ERROR] purge raw data: %v", err)
	}
}
