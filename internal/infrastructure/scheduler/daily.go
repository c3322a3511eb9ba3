package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"AutoPublisher/internal/ports"
)

// DailyScheduler fires the job once per day at a configured local time.
// Start and Stop are safe to call from different goroutines.
type DailyScheduler struct {
	hour   int
	minute int
	loc    *time.Location

	mu   sync.Mutex
	stop chan struct{}
}

var _ ports.Scheduler = (*DailyScheduler)(nil)

// NewDailyScheduler parses an "HH:MM" trigger time in the given location.
func NewDailyScheduler(at string, loc *time.Location) (*DailyScheduler, error) {
	var hour, minute int
	if _, err := fmt.Sscanf(at, "%d:%d", &hour, &minute); err != nil {
		return nil, fmt.Errorf("invalid schedule time %q: %w", at, err)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return nil, fmt.Errorf("schedule time %q out of range", at)
	}
	if loc == nil {
		loc = time.UTC
	}

	return &DailyScheduler{hour: hour, minute: minute, loc: loc}, nil
}

// Start waits for the next trigger time, then ticks every 24 hours.
func (d *DailyScheduler) Start(ctx context.Context, job func(time.Time)) error {
	if job == nil {
		return nil
	}

	d.mu.Lock()
	if d.stop != nil {
		d.mu.Unlock()
		return nil
	}
	stop := make(chan struct{})
	d.stop = stop
	d.mu.Unlock()

	go func() {
		timer := time.NewTimer(time.Until(d.nextRun(time.Now().In(d.loc))))
		defer timer.Stop()

		for {
			select {
			case t := <-timer.C:
				job(t.In(d.loc))
				timer.Reset(time.Until(d.nextRun(time.Now().In(d.loc))))
			case <-ctx.Done():
				return
			case <-stop:
				return
			}
		}
	}()

	return nil
}

// Stop halts the scheduler goroutine.
func (d *DailyScheduler) Stop(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stop == nil {
		return nil
	}
	close(d.stop)
	d.stop = nil
	return nil
}

func (d *DailyScheduler) nextRun(now time.Time) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), d.hour, d.minute, 0, 0, d.loc)
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}
