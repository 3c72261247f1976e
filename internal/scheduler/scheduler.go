package scheduler

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/i474232898/modis-temperature/internal/temperature"
)

// Estimator is the part of temperature.Service the scheduler drives.
type Estimator interface {
	FetchAndStore(ctx context.Context, wp temperature.WatchPoint) error
}

// Scheduler periodically re-estimates the configured watch points.
type Scheduler struct {
	scheduler   *gocron.Scheduler
	service     Estimator
	watchPoints []temperature.WatchPoint
	interval    time.Duration
	timeout     time.Duration
}

// New creates a new Scheduler.
func New(watchPoints []temperature.WatchPoint, interval time.Duration, service Estimator) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	return &Scheduler{
		scheduler:   s,
		service:     service,
		watchPoints: watchPoints,
		interval:    interval,
		timeout:     30 * time.Second,
	}
}

// Start schedules the periodic job and starts the underlying scheduler.
// The first run happens immediately.
func (s *Scheduler) Start() error {
	if len(s.watchPoints) == 0 {
		log.Println("INFO: scheduler: no watch points configured; nothing to schedule")
		return nil
	}

	minutes := int(s.interval.Minutes())
	if minutes <= 0 {
		minutes = 15
	}

	_, err := s.scheduler.Every(minutes).Minutes().Do(s.RunOnce)
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// RunOnce estimates every watch point concurrently and waits for all of them.
// It returns the number of watch points that failed.
func (s *Scheduler) RunOnce() int {
	log.Println("INFO: scheduler: running estimate job")

	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		failed int
	)
	for _, wp := range s.watchPoints {
		wg.Add(1)
		go func() {
			defer wg.Done()

			ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
			defer cancel()

			if err := s.service.FetchAndStore(ctx, wp); err != nil {
				log.Printf("ERROR: scheduler: estimate failed for %s: %v", wp.Name, err)
				mu.Lock()
				failed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	log.Printf("INFO: scheduler: completed estimate job (%d/%d failed)", failed, len(s.watchPoints))
	return failed
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
