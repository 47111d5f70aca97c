package scheduler

import (
	"context"
	"fmt"
	"sort"
	"time"
)

// Polling slices used while waiting for a task.
const (
	coarseSlice     = time.Minute
	fineSlice       = time.Second
	coarseThreshold = 2 * time.Minute
)

// Task is a deferred action fired once its wake time is reached.
type Task struct {
	At    time.Time
	Label string
	Run   func(ctx context.Context) error
}

// Planner supplies the next task once the queue runs dry.
// A nil task with a nil error means there is nothing left to do.
type Planner interface {
	Plan(ctx context.Context) (*Task, error)
}

// Countdown observes a pending wait. It is called once per polling slice and
// once more with remaining == 0 right before the task fires.
type Countdown func(remaining, total time.Duration, label string)

// Queue is a wake-time ordered list of tasks. Tasks with equal wake times fire
// in insertion order.
type Queue struct {
	tasks     []Task
	clock     Clock
	countdown Countdown
}

// NewQueue creates an empty queue driven by clock.
func NewQueue(clock Clock) *Queue {
	if clock == nil {
		clock = RealClock{}
	}
	return &Queue{clock: clock}
}

// SetCountdown installs an observer for pending waits.
func (q *Queue) SetCountdown(fn Countdown) {
	q.countdown = fn
}

// Add inserts a task after every task with a wake time not later than at.
func (q *Queue) Add(at time.Time, label string, run func(ctx context.Context) error) {
	i := sort.Search(len(q.tasks), func(i int) bool { return q.tasks[i].At.After(at) })
	q.tasks = append(q.tasks, Task{})
	copy(q.tasks[i+1:], q.tasks[i:])
	q.tasks[i] = Task{At: at, Label: label, Run: run}
}

// Len returns the number of pending tasks.
func (q *Queue) Len() int { return len(q.tasks) }

// Run fires tasks in wake-time order until the queue is empty. Whenever the
// queue runs dry, planner (if non-nil) is asked for the next task, so a planner
// that always answers keeps the loop alive indefinitely. A failing task stops
// the loop and its error is returned wrapped with the task label.
func (q *Queue) Run(ctx context.Context, planner Planner) error {
	for {
		if len(q.tasks) == 0 {
			if planner == nil {
				return nil
			}
			next, err := planner.Plan(ctx)
			if err != nil {
				return fmt.Errorf("plan: %w", err)
			}
			if next == nil {
				return nil
			}
			q.Add(next.At, next.Label, next.Run)
		}

		t := q.tasks[0]
		q.tasks = q.tasks[1:]

		if err := q.wait(ctx, t); err != nil {
			return err
		}
		if err := t.Run(ctx); err != nil {
			return fmt.Errorf("%s: %w", t.Label, err)
		}
	}
}

// wait polls until t is due: one-minute slices while more than two minutes
// remain, one-second slices after that, and the exact remainder last.
func (q *Queue) wait(ctx context.Context, t Task) error {
	total := clampZero(t.At.Sub(q.clock.Now()))
	for {
		remaining := clampZero(t.At.Sub(q.clock.Now()))
		if q.countdown != nil {
			q.countdown(remaining, total, t.Label)
		}
		slice := fineSlice
		if remaining > coarseThreshold {
			slice = coarseSlice
		}
		if remaining <= slice {
			if err := q.clock.Sleep(ctx, remaining); err != nil {
				return err
			}
			if q.countdown != nil {
				q.countdown(0, total, t.Label)
			}
			return nil
		}
		if err := q.clock.Sleep(ctx, slice); err != nil {
			return err
		}
	}
}

func clampZero(d time.Duration) time.Duration {
	if d < 0 {
		return 0
	}
	return d
}
