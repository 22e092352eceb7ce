package scheduler

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"

	"leituras-platform/internal/cache"
	"leituras-platform/pkg/logging"
	"leituras-platform/pkg/metrics"
)

// Scheduler periodically sweeps expired entries out of the query cache.
type Scheduler struct {
	scheduler *gocron.Scheduler
	cache     *cache.QueryCache
	interval  time.Duration
	logger    *logging.StructuredLogger
	metrics   *metrics.Collector
}

// New creates a new Scheduler.
func New(queryCache *cache.QueryCache, interval time.Duration, logger *logging.StructuredLogger, metricsCollector *metrics.Collector) *Scheduler {
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		cache:     queryCache,
		interval:  interval,
		logger:    logger,
		metrics:   metricsCollector,
	}
}

// Start schedules the sweep job and starts the underlying scheduler.
func (s *Scheduler) Start() error {
	interval := s.interval
	if interval <= 0 {
		interval = 5 * time.Minute
	}

	_, err := s.scheduler.Every(interval).Do(func() {
		swept := s.cache.Sweep()
		if swept > 0 {
			s.metrics.CacheEntriesSwept.Add(float64(swept))
		}
		s.logger.Debug(context.Background(), "[CACHE_SWEEP] Query cache sweep completed", logging.Fields{
			"entries_swept":     swept,
			"entries_remaining": s.cache.Len(),
		})
	})
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
