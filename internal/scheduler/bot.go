package scheduler

import (
	"context"
	"fmt"
	"html"
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"ClickerPilot/internal/collector"
	"ClickerPilot/internal/model"
	"ClickerPilot/internal/notifier"
	"ClickerPilot/internal/recorder"
	"ClickerPilot/internal/strategy"
)

// Bot plans purchases and keep-alive syncs and drives them through a Queue.
type Bot struct {
	Collector *collector.Collector
	Selector  *strategy.Selector
	Recorder  recorder.Recorder
	Notifier  notifier.Notifier
	Queue     *Queue
	Clock     Clock
	// KeepAlive yields the next forced sync after the last one.
	KeepAlive cron.Schedule
	JitterMin time.Duration
	JitterMax time.Duration
	// Rand returns a value in [0, 1) for the wake-time jitter.
	Rand func() float64
	TopN int

	mu   sync.Mutex
	plan *model.Plan
}

// NewBot creates a Bot. A nil clock means the system clock.
func NewBot(col *collector.Collector, sel *strategy.Selector, rec recorder.Recorder, n notifier.Notifier, keepAlive cron.Schedule, clock Clock) *Bot {
	if clock == nil {
		clock = RealClock{}
	}
	return &Bot{
		Collector: col,
		Selector:  sel,
		Recorder:  rec,
		Notifier:  n,
		Queue:     NewQueue(clock),
		Clock:     clock,
		KeepAlive: keepAlive,
		JitterMin: 5 * time.Second,
		JitterMax: 60 * time.Second,
		Rand:      rand.Float64,
		TopN:      20,
	}
}

// Run bootstraps missing state and runs the scheduling loop until ctx is
// cancelled or a purchase or sync fails.
func (b *Bot) Run(ctx context.Context) error {
	if err := b.Collector.Bootstrap(ctx); err != nil {
		return fmt.Errorf("bootstrap: %w", err)
	}
	b.reportState()
	return b.Queue.Run(ctx, b)
}

// Plan chooses the next action and returns the task that performs it.
func (b *Bot) Plan(_ context.Context) (*Task, error) {
	st, cat, err := b.Collector.Snapshot()
	if err != nil {
		return nil, err
	}
	now := b.Clock.Now()
	decision := b.Selector.ChooseNext(cat, st, now)

	keepAliveAt := b.KeepAlive.Next(st.LastSync())
	if keepAliveAt.Before(now) {
		keepAliveAt = now
	}

	plan := &model.Plan{ID: uuid.NewString(), CreatedAt: now}
	var run func(ctx context.Context) error
	switch {
	case !decision.Found():
		plan.Action = model.ActionIdle
		plan.WakeAt = keepAliveAt.Add(b.jitter())
		run = b.syncTask(model.ActionIdle)
	case keepAliveAt.Before(decision.At):
		plan.Action = model.ActionKeepAlive
		plan.Upgrade = decision.Upgrade
		plan.BuyAt = decision.At
		plan.WakeAt = keepAliveAt.Add(b.jitter())
		run = b.syncTask(model.ActionKeepAlive)
	default:
		plan.Action = model.ActionBuy
		plan.Upgrade = decision.Upgrade
		plan.BuyAt = decision.At
		plan.WakeAt = decision.At.Add(b.jitter())
		run = b.buyTask(decision.Upgrade)
	}

	log.Printf("[INFO] %s", notifier.FormatPlan(plan))
	b.recordPlan(plan)

	b.mu.Lock()
	b.plan = plan
	b.mu.Unlock()

	return &Task{At: plan.WakeAt, Label: string(plan.Action), Run: run}, nil
}

// Pending returns the last plan, or nil before the first one.
func (b *Bot) Pending() *model.Plan {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.plan
}

func (b *Bot) buyTask(u *model.Upgrade) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		log.Printf("[INFO] Buy %s", u.Name)
		if err := b.Collector.Buy(ctx, u); err != nil {
			return err
		}
		st := b.reportState()
		if st == nil {
			return nil
		}
		if err := b.Recorder.RecordPurchase(&recorder.PurchaseEvent{
			UpgradeID:          u.ID,
			Name:               u.Name,
			Section:            u.Section,
			Price:              u.Price,
			ProfitPerHourDelta: u.ProfitPerHourDelta,
			PaybackHours:       u.PaybackHours,
			BalanceAfter:       st.BalanceCoins,
			EarnPassivePerHour: st.EarnPassivePerHour,
		}); err != nil {
			log.Printf("[ERROR] record purchase: %v", err)
		}
		b.trySend(ctx, notifier.FormatPurchaseReport(u, st))
		return nil
	}
}

func (b *Bot) syncTask(reason model.ActionType) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		log.Printf("[INFO] Sync (%s)", reason)
		if err := b.Collector.Refresh(ctx); err != nil {
			return err
		}
		st := b.reportState()
		if st == nil {
			return nil
		}
		if err := b.Recorder.RecordSync(&recorder.SyncEvent{
			Reason:             string(reason),
			BalanceCoins:       st.BalanceCoins,
			EarnPassivePerHour: st.EarnPassivePerHour,
			LastSyncUpdate:     st.LastSync(),
		}); err != nil {
			log.Printf("[ERROR] record sync: %v", err)
		}
		return nil
	}
}

// HandleCommand processes a chat command and returns a reply.
func (b *Bot) HandleCommand(command string) string {
	switch command {
	case "/status":
		st, err := b.Collector.Store.Economic()
		if err != nil {
			return fmt.Sprintf("state unavailable: %v", err)
		}
		return notifier.FormatStatus(st, b.Pending(), b.Clock.Now())
	case "/next":
		p := b.Pending()
		if p == nil {
			return "nothing planned yet"
		}
		return html.EscapeString(notifier.FormatPlan(p))
	case "/top":
		st, cat, err := b.Collector.Snapshot()
		if err != nil {
			return fmt.Sprintf("state unavailable: %v", err)
		}
		now := b.Clock.Now()
		return notifier.FormatRanking(b.Selector.Rank(cat, st, now), b.TopN, now)
	default:
		return "Commands:\n• /status\n• /next\n• /top"
	}
}

func (b *Bot) jitter() time.Duration {
	span := b.JitterMax - b.JitterMin
	if span <= 0 || b.Rand == nil {
		return b.JitterMin
	}
	return b.JitterMin + time.Duration(b.Rand()*float64(span))
}

func (b *Bot) reportState() *model.EconomicState {
	st, err := b.Collector.Store.Economic()
	if err != nil {
		log.Printf("[WARN] read state: %v", err)
		return nil
	}
	log.Printf("[INFO] %s", notifier.FormatState(st))
	return st
}

func (b *Bot) recordPlan(p *model.Plan) {
	evt := &recorder.PlanEvent{
		PlanID: p.ID,
		Action: string(p.Action),
		WakeAt: p.WakeAt,
		BuyAt:  p.BuyAt,
	}
	if p.Upgrade != nil {
		evt.UpgradeID = p.Upgrade.ID
	}
	if err := b.Recorder.RecordPlan(evt); err != nil {
		log.Printf("[ERROR] record plan: %v", err)
	}
}

func (b *Bot) trySend(ctx context.Context, text string) {
	if err := b.Notifier.SendWithRetry(ctx, text, 3); err != nil {
		log.Printf("[ERROR] send notification: %v", err)
	}
}
