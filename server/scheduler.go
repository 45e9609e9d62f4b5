package server

import (
	"context"
	"time"
)

// Scheduler calls step at a fixed rate with the wall time actually elapsed
// since the previous call. Time spent inside step is taken out of the next
// sleep; an overrun runs the next tick immediately without catching up.
type Scheduler struct {
	interval time.Duration
	now      func() time.Time
	sleep    func(context.Context, time.Duration) error
}

func NewScheduler(hz int) *Scheduler {
	return &Scheduler{
		interval: time.Second / time.Duration(hz),
		now:      time.Now,
		sleep:    sleepContext,
	}
}

func (s *Scheduler) Interval() time.Duration {
	return s.interval
}

// Run blocks until ctx is done.
func (s *Scheduler) Run(ctx context.Context, step func(dt float64)) error {
	previous := s.now()
	for {
		start := s.now()
		dt := start.Sub(previous).Seconds()
		previous = start

		step(dt)

		if err := s.sleep(ctx, nextSleep(s.interval, s.now().Sub(start))); err != nil {
			return err
		}
	}
}

func nextSleep(interval, spent time.Duration) time.Duration {
	if spent >= interval {
		return 0
	}
	return interval - spent
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
