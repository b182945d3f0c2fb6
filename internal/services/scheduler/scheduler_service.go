// Package scheduler warms the Pokémon cache on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/pokedex/internal/common"
	"github.com/ternarybob/pokedex/internal/interfaces"
)

// Prefetcher fetches and caches a list of Pokémon
type Prefetcher interface {
	Prefetch(ctx context.Context, names []string) interfaces.PrefetchResult
}

// Status describes the scheduler for the API
type Status struct {
	Running    bool                       `json:"running"`
	Schedule   string                     `json:"schedule"`
	Names      []string                   `json:"names"`
	LastRun    *time.Time                 `json:"last_run,omitempty"`
	LastResult *interfaces.PrefetchResult `json:"last_result,omitempty"`
	NextRun    *time.Time                 `json:"next_run,omitempty"`
}

// Service runs prefetches on a schedule and on demand
type Service struct {
	prefetcher Prefetcher
	names      []string
	timeout    time.Duration
	cron       *cron.Cron
	logger     arbor.ILogger

	mu           sync.Mutex // Protects fields below
	schedule     string
	entryID      cron.EntryID
	running      bool
	isProcessing bool
	lastRun      *time.Time
	lastResult   *interfaces.PrefetchResult
}

// NewService creates a new scheduler service
func NewService(prefetcher Prefetcher, names []string, logger arbor.ILogger) *Service {
	return &Service{
		prefetcher: prefetcher,
		names:      names,
		timeout:    10 * time.Minute,
		cron:       cron.New(cron.WithSeconds()),
		logger:     logger,
	}
}

// Start registers the schedule and starts the cron runner
func (s *Service) Start(schedule string) error {
	if schedule == "" {
		schedule = "0 0 */6 * * *"
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("scheduler already running")
	}

	entryID, err := s.cron.AddFunc(schedule, func() {
		s.run()
	})
	if err != nil {
		return fmt.Errorf("invalid prefetch schedule %q: %w", schedule, err)
	}

	s.schedule = schedule
	s.entryID = entryID
	s.running = true
	s.cron.Start()

	s.logger.Info().
		Str("schedule", schedule).
		Strs("names", s.names).
		Msg("Prefetch scheduler started")

	return nil
}

// Stop stops the cron runner and waits for an in-flight scheduled run
func (s *Service) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.cron.Remove(s.entryID)
	s.entryID = 0
	s.mu.Unlock()

	<-s.cron.Stop().Done()
	s.logger.Info().Msg("Prefetch scheduler stopped")
}

// RunNow triggers an immediate prefetch in the background
func (s *Service) RunNow() *sync.WaitGroup {
	s.logger.Info().Msg("Triggering immediate prefetch")
	return common.SafeGo(s.logger, "prefetch", s.run)
}

// Status returns a snapshot of the scheduler state
func (s *Service) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	status := Status{
		Running:    s.running,
		Schedule:   s.schedule,
		Names:      s.names,
		LastRun:    s.lastRun,
		LastResult: s.lastResult,
	}

	if s.running {
		if next := s.cron.Entry(s.entryID).Next; !next.IsZero() {
			status.NextRun = &next
		}
	}

	return status
}

func (s *Service) run() {
	s.mu.Lock()
	if s.isProcessing {
		s.mu.Unlock()
		s.logger.Debug().Msg("Prefetch already in progress, skipping")
		return
	}
	s.isProcessing = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.isProcessing = false
		s.mu.Unlock()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	started := time.Now()
	result := s.prefetcher.Prefetch(ctx, s.names)

	s.mu.Lock()
	s.lastRun = &started
	s.lastResult = &result
	s.mu.Unlock()

	s.logger.Info().
		Int("fetched", result.Fetched).
		Int("failed", result.Failed).
		Dur("duration", time.Since(started)).
		Msg("Scheduled prefetch finished")
}
