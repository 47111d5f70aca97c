package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"
)

var start = time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

func TestQueue_EqualWakeTimesFireInInsertionOrder(t *testing.T) {
	clock := newFakeClock(start)
	q := NewQueue(clock)
	var fired []string
	record := func(name string) func(context.Context) error {
		return func(context.Context) error {
			fired = append(fired, name)
			return nil
		}
	}
	at := start.Add(time.Minute)
	q.Add(at, "first", record("first"))
	q.Add(start.Add(2*time.Minute), "late", record("late"))
	q.Add(at, "second", record("second"))
	q.Add(start, "early", record("early"))
	q.Add(at, "third", record("third"))

	if err := q.Run(context.Background(), nil); err != nil {
		t.Fatalf("run: %v", err)
	}
	want := []string{"early", "first", "second", "third", "late"}
	if len(fired) != len(want) {
		t.Fatalf("expected %v, got %v", want, fired)
	}
	for i := range want {
		if fired[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, fired)
		}
	}
	if q.Len() != 0 {
		t.Errorf("queue should be drained, has %d", q.Len())
	}
	if !clock.Now().Equal(start.Add(2 * time.Minute)) {
		t.Errorf("clock should stop at the last wake time, got %v", clock.Now())
	}
}

func TestQueue_ContinuationReschedules(t *testing.T) {
	clock := newFakeClock(start)
	q := NewQueue(clock)
	count := 0
	var tick func(context.Context) error
	tick = func(context.Context) error {
		count++
		if count < 3 {
			q.Add(clock.Now().Add(time.Second), "tick", tick)
		}
		return nil
	}
	q.Add(start, "tick", tick)
	if err := q.Run(context.Background(), nil); err != nil {
		t.Fatalf("run: %v", err)
	}
	if count != 3 {
		t.Errorf("expected 3 firings, got %d", count)
	}
}

type countingPlanner struct {
	clock *fakeClock
	left  int
	plans int
	fired int
}

func (p *countingPlanner) Plan(context.Context) (*Task, error) {
	p.plans++
	if p.left == 0 {
		return nil, nil
	}
	p.left--
	return &Task{
		At:    p.clock.Now().Add(10 * time.Minute),
		Label: "planned",
		Run: func(context.Context) error {
			p.fired++
			return nil
		},
	}, nil
}

func TestQueue_PlannerKeepsLoopAlive(t *testing.T) {
	clock := newFakeClock(start)
	p := &countingPlanner{clock: clock, left: 4}
	if err := NewQueue(clock).Run(context.Background(), p); err != nil {
		t.Fatalf("run: %v", err)
	}
	if p.fired != 4 {
		t.Errorf("expected 4 firings, got %d", p.fired)
	}
	if p.plans != 5 {
		t.Errorf("expected 5 planning passes, got %d", p.plans)
	}
	if !clock.Now().Equal(start.Add(40 * time.Minute)) {
		t.Errorf("unexpected end time %v", clock.Now())
	}
}

func TestQueue_AdaptiveWait(t *testing.T) {
	clock := newFakeClock(start)
	q := NewQueue(clock)
	var observed []time.Duration
	q.SetCountdown(func(remaining, total time.Duration, label string) {
		if total != 5*time.Minute || label != "buy" {
			t.Errorf("unexpected countdown args total=%v label=%q", total, label)
		}
		observed = append(observed, remaining)
	})
	q.Add(start.Add(5*time.Minute), "buy", func(context.Context) error { return nil })
	if err := q.Run(context.Background(), nil); err != nil {
		t.Fatalf("run: %v", err)
	}

	var coarse, fine int
	var slept time.Duration
	for _, s := range clock.slices {
		switch {
		case s == time.Minute:
			coarse++
		case s <= time.Second:
			fine++
		default:
			t.Errorf("unexpected slice %v", s)
		}
		slept += s
	}
	if coarse != 3 {
		t.Errorf("expected 3 one-minute slices, got %d", coarse)
	}
	if fine != 120 {
		t.Errorf("expected 120 fine slices, got %d", fine)
	}
	if slept != 5*time.Minute {
		t.Errorf("expected to sleep 5m, slept %v", slept)
	}
	if observed[0] != 5*time.Minute || observed[len(observed)-1] != 0 {
		t.Errorf("countdown should run from 5m to 0, got %v..%v", observed[0], observed[len(observed)-1])
	}
}

func TestQueue_PastWakeTimeFiresImmediately(t *testing.T) {
	clock := newFakeClock(start)
	q := NewQueue(clock)
	fired := false
	q.Add(start.Add(-time.Hour), "overdue", func(context.Context) error { fired = true; return nil })
	if err := q.Run(context.Background(), nil); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !fired {
		t.Error("overdue task should fire")
	}
	if !clock.Now().Equal(start) {
		t.Errorf("clock should not move, got %v", clock.Now())
	}
}

func TestQueue_TaskErrorStopsLoop(t *testing.T) {
	clock := newFakeClock(start)
	q := NewQueue(clock)
	boom := errors.New("boom")
	secondFired := false
	q.Add(start, "buy", func(context.Context) error { return boom })
	q.Add(start.Add(time.Second), "after", func(context.Context) error { secondFired = true; return nil })

	err := q.Run(context.Background(), nil)
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if secondFired {
		t.Error("loop should stop after a failing task")
	}
	if q.Len() != 1 {
		t.Errorf("remaining task should stay queued, got %d", q.Len())
	}
}

func TestQueue_ContextCancelled(t *testing.T) {
	clock := newFakeClock(start)
	q := NewQueue(clock)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	fired := false
	q.Add(start.Add(time.Hour), "later", func(context.Context) error { fired = true; return nil })
	if err := q.Run(ctx, nil); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if fired {
		t.Error("task must not fire after cancellation")
	}
}
