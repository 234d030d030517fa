package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// Refresher runs a metadata fetch pass and reports how many lookups it started.
type Refresher interface {
	Refresh(ctx context.Context) int
}

// MetadataRefreshScheduler periodically re-fetches catalog metadata so that
// books whose lookup failed eventually get their title and authors.
type MetadataRefreshScheduler struct {
	refresher Refresher
	schedule  string

	cron       *cron.Cron
	entryID    cron.EntryID
	mu         sync.RWMutex
	isRunning  bool
	cancelFunc context.CancelFunc
}

// NewMetadataRefreshScheduler creates a new scheduler instance
func NewMetadataRefreshScheduler(refresher Refresher, schedule string) *MetadataRefreshScheduler {
	return &MetadataRefreshScheduler{
		refresher: refresher,
		schedule:  schedule,
		cron:      cron.New(cron.WithParser(cronParser)),
	}
}

// ValidateCronSchedule checks a five-field cron expression.
func ValidateCronSchedule(schedule string) error {
	_, err := cronParser.Parse(schedule)
	return err
}

// Start begins the scheduler if a schedule is configured
func (s *MetadataRefreshScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	if s.schedule == "" {
		log.Printf("[SCHEDULER] Metadata refresh: disabled")
		return nil
	}

	if err := ValidateCronSchedule(s.schedule); err != nil {
		return fmt.Errorf("invalid cron schedule '%s': %w", s.schedule, err)
	}

	var cancelCtx context.Context
	cancelCtx, s.cancelFunc = context.WithCancel(ctx)

	entryID, err := s.cron.AddFunc(s.schedule, func() {
		s.runRefresh(cancelCtx)
	})
	if err != nil {
		s.cancelFunc()
		return fmt.Errorf("failed to schedule refresh job: %w", err)
	}
	s.entryID = entryID

	s.cron.Start()
	s.isRunning = true

	log.Printf("[SCHEDULER] Metadata refresh: started with schedule '%s'. Next run: %v",
		s.schedule, s.nextRunLocked())

	// Monitor for context cancellation
	go func() {
		<-cancelCtx.Done()
		s.Stop()
	}()

	return nil
}

// Stop gracefully stops the scheduler
func (s *MetadataRefreshScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	// Stop accepting new jobs and wait for running jobs to complete
	ctx := s.cron.Stop()
	<-ctx.Done()

	s.cron.Remove(s.entryID)
	s.isRunning = false
	if s.cancelFunc != nil {
		s.cancelFunc()
		s.cancelFunc = nil
	}

	log.Printf("[SCHEDULER] Metadata refresh: stopped")
}

// RunNow triggers an immediate refresh
func (s *MetadataRefreshScheduler) RunNow(ctx context.Context) int {
	return s.runRefresh(ctx)
}

// IsRunning returns whether the scheduler is active
func (s *MetadataRefreshScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// GetNextRunTime returns when the next refresh will occur
func (s *MetadataRefreshScheduler) GetNextRunTime() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return nil
	}
	next := s.nextRunLocked()
	if next.IsZero() {
		return nil
	}
	return &next
}

func (s *MetadataRefreshScheduler) nextRunLocked() time.Time {
	for _, entry := range s.cron.Entries() {
		if entry.ID == s.entryID {
			return entry.Next
		}
	}
	return time.Time{}
}

func (s *MetadataRefreshScheduler) runRefresh(ctx context.Context) int {
	started := s.refresher.Refresh(ctx)
	log.Printf("[SCHEDULER] Metadata refresh: started %d lookups", started)
	return started
}
