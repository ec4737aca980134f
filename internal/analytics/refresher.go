package analytics

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
)

// Refresher recomputes a dashboard on a fixed interval and keeps the most
// recent result.
type Refresher struct {
	agg      *Aggregator
	query    Query
	every    time.Duration
	timeout  time.Duration
	onUpdate func(Dashboard)

	scheduler *gocron.Scheduler

	mu     sync.RWMutex
	latest Dashboard
	runs   int
}

// NewRefresher returns a refresher for q. onUpdate, if set, runs after
// every refresh on the scheduler's goroutine.
func NewRefresher(agg *Aggregator, q Query, every time.Duration, onUpdate func(Dashboard)) *Refresher {
	return &Refresher{
		agg:       agg,
		query:     q,
		every:     every,
		timeout:   30 * time.Second,
		onUpdate:  onUpdate,
		scheduler: gocron.NewScheduler(time.UTC),
	}
}

// Start schedules the refresh job. The first run happens immediately.
func (r *Refresher) Start() error {
	if r.every <= 0 {
		return fmt.Errorf("refresh interval must be positive, got %s", r.every)
	}
	r.scheduler.SingletonModeAll()
	if _, err := r.scheduler.Every(r.every).Do(r.Refresh); err != nil {
		return fmt.Errorf("schedule refresh: %w", err)
	}
	r.scheduler.StartAsync()
	return nil
}

// Stop terminates the schedule.
func (r *Refresher) Stop() {
	r.scheduler.Stop()
}

// Refresh recomputes the dashboard now.
func (r *Refresher) Refresh() {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	d := r.agg.Dashboard(ctx, r.query)

	r.mu.Lock()
	r.latest = d
	r.runs++
	r.mu.Unlock()

	if r.onUpdate != nil {
		r.onUpdate(d)
	}
}

// Latest returns the most recent dashboard and how many refreshes ran.
func (r *Refresher) Latest() (Dashboard, int) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.latest, r.runs
}
