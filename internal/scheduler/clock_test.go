package scheduler

import (
	"context"
	"time"
)

// fakeClock advances instantly on Sleep and records every slice.
type fakeClock struct {
	now    time.Time
	slices []time.Duration
}

func newFakeClock(now time.Time) *fakeClock { return &fakeClock{now: now} }

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.slices = append(c.slices, d)
	if d > 0 {
		c.now = c.now.Add(d)
	}
	return nil
}
