package scheduler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/robfig/cron/v3"

	"ClickerPilot/internal/calculator"
	"ClickerPilot/internal/collector"
	"ClickerPilot/internal/model"
	"ClickerPilot/internal/notifier"
	"ClickerPilot/internal/recorder"
	"ClickerPilot/internal/state"
	"ClickerPilot/internal/strategy"
)

func clickerUser(balance, perSec float64, lastSync time.Time) json.RawMessage {
	return json.RawMessage(fmt.Sprintf(
		`{"balanceCoins":%g,"lastSyncUpdate":%d,"earnPassivePerHour":%g,"earnPassivePerSec":%g}`,
		balance, lastSync.Unix(), perSec*3600, perSec))
}

func upgradesJSON(price, pph float64) json.RawMessage {
	return json.RawMessage(fmt.Sprintf(
		`[{"id":"a","name":"A","section":"Markets","price":%g,"profitPerHourDelta":%g,"isAvailable":true,"isExpired":false}]`,
		price, pph))
}

type fixture struct {
	bot    *Bot
	client *collector.MockClient
	clock  *fakeClock
}

func newFixture(t *testing.T, client *collector.MockClient) *fixture {
	t.Helper()
	store, err := state.Open(filepath.Join(t.TempDir(), "state.json"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	clock := newFakeClock(start)
	col := collector.NewCollector(client, store)
	col.Now = clock.Now
	sel := strategy.NewSelector(calculator.NewProjector(2000, 50_000_000, 1))
	bot := NewBot(col, sel, recorder.NewNoopRecorder(), notifier.NoopNotifier{}, cron.Every(3*time.Hour), clock)
	bot.JitterMin, bot.JitterMax = 0, 0
	if err := col.Bootstrap(context.Background()); err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	return &fixture{bot: bot, client: client, clock: clock}
}

func TestBot_PlanBuyWhenAffordable(t *testing.T) {
	m := &collector.MockClient{
		SyncResponse:     collector.Response{state.KeyClickerUser: clickerUser(1000, 1, start)},
		UpgradesResponse: collector.Response{state.KeyUpgradesForBuy: upgradesJSON(500, 100)},
		BuyResponses: map[string]collector.Response{
			"a": {state.KeyClickerUser: clickerUser(500, 1.03, start)},
		},
	}
	f := newFixture(t, m)

	task, err := f.bot.Plan(context.Background())
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	if task.Label != string(model.ActionBuy) || !task.At.Equal(start) {
		t.Fatalf("expected immediate buy, got %q at %v", task.Label, task.At)
	}
	if p := f.bot.Pending(); p == nil || p.Upgrade == nil || p.Upgrade.ID != "a" {
		t.Fatalf("unexpected pending plan %+v", p)
	}

	if err := task.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(m.Bought) != 1 || m.Bought[0] != "a" {
		t.Errorf("expected purchase of a, got %v", m.Bought)
	}
	st, err := f.bot.Collector.Store.Economic()
	if err != nil {
		t.Fatal(err)
	}
	if st.BalanceCoins != 500 {
		t.Errorf("purchase snapshot not persisted: %+v", st)
	}
}

func TestBot_KeepAliveBeforeDistantPurchase(t *testing.T) {
	m := &collector.MockClient{
		SyncResponse:     collector.Response{state.KeyClickerUser: clickerUser(0, 1, start)},
		UpgradesResponse: collector.Response{state.KeyUpgradesForBuy: upgradesJSON(4*3600, 100)},
	}
	f := newFixture(t, m)

	task, err := f.bot.Plan(context.Background())
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	if task.Label != string(model.ActionKeepAlive) {
		t.Fatalf("expected keep alive, got %q", task.Label)
	}
	if !task.At.Equal(start.Add(3 * time.Hour)) {
		t.Errorf("expected keep alive at +3h, got %v", task.At)
	}
	p := f.bot.Pending()
	if !p.BuyAt.Equal(start.Add(4 * time.Hour)) {
		t.Errorf("expected projected purchase at +4h, got %v", p.BuyAt)
	}

	if err := task.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if m.SyncCalls != 2 || m.UpgradesCalls != 2 {
		t.Errorf("keep alive should refresh state, got sync=%d upgrades=%d", m.SyncCalls, m.UpgradesCalls)
	}
	if len(m.Bought) != 0 {
		t.Errorf("keep alive must not buy, got %v", m.Bought)
	}
}

func TestBot_IdleWhenNothingEligible(t *testing.T) {
	m := &collector.MockClient{
		SyncResponse:     collector.Response{state.KeyClickerUser: clickerUser(0, 1, start.Add(-time.Hour))},
		UpgradesResponse: collector.Response{state.KeyUpgradesForBuy: json.RawMessage(`[]`)},
	}
	f := newFixture(t, m)
	f.bot.JitterMin, f.bot.JitterMax = 5*time.Second, 60*time.Second
	f.bot.Rand = func() float64 { return 0.5 }

	task, err := f.bot.Plan(context.Background())
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	if task.Label != string(model.ActionIdle) {
		t.Fatalf("expected idle, got %q", task.Label)
	}
	want := start.Add(2*time.Hour + 32500*time.Millisecond)
	if !task.At.Equal(want) {
		t.Errorf("expected %v, got %v", want, task.At)
	}
}

func TestBot_RejectedPurchaseStopsLoop(t *testing.T) {
	m := &collector.MockClient{
		SyncResponse:     collector.Response{state.KeyClickerUser: clickerUser(1000, 1, start)},
		UpgradesResponse: collector.Response{state.KeyUpgradesForBuy: upgradesJSON(500, 100)},
	}
	f := newFixture(t, m)
	m.Err = fmt.Errorf("buy-upgrade: %w: status 400", collector.ErrUpstreamRejected)

	err := f.bot.Queue.Run(context.Background(), f.bot)
	if !errors.Is(err, collector.ErrUpstreamRejected) {
		t.Fatalf("expected ErrUpstreamRejected, got %v", err)
	}
	if !strings.HasPrefix(err.Error(), "buy:") {
		t.Errorf("error should carry the task label, got %v", err)
	}
}

type limitedPlanner struct {
	Planner
	left int
}

func (l *limitedPlanner) Plan(ctx context.Context) (*Task, error) {
	if l.left == 0 {
		return nil, nil
	}
	l.left--
	return l.Planner.Plan(ctx)
}

func TestBot_LoopReplansAfterPurchase(t *testing.T) {
	m := &collector.MockClient{
		SyncResponse:     collector.Response{state.KeyClickerUser: clickerUser(1000, 1, start)},
		UpgradesResponse: collector.Response{state.KeyUpgradesForBuy: upgradesJSON(500, 100)},
		BuyResponses: map[string]collector.Response{
			"a": {state.KeyClickerUser: clickerUser(0, 1, start)},
		},
	}
	f := newFixture(t, m)

	if err := f.bot.Queue.Run(context.Background(), &limitedPlanner{Planner: f.bot, left: 2}); err != nil {
		t.Fatalf("run: %v", err)
	}
	// First purchase is immediate; the second waits 500s for income.
	if len(m.Bought) != 2 {
		t.Fatalf("expected two purchases, got %v", m.Bought)
	}
	if !f.clock.Now().Equal(start.Add(500 * time.Second)) {
		t.Errorf("expected second purchase at +500s, clock at %v", f.clock.Now())
	}
}

func TestBot_HandleCommand(t *testing.T) {
	m := &collector.MockClient{
		SyncResponse:     collector.Response{state.KeyClickerUser: clickerUser(1000, 1, start)},
		UpgradesResponse: collector.Response{state.KeyUpgradesForBuy: upgradesJSON(500, 100)},
	}
	f := newFixture(t, m)

	if got := f.bot.HandleCommand("/next"); got != "nothing planned yet" {
		t.Errorf("unexpected /next before planning: %q", got)
	}
	if _, err := f.bot.Plan(context.Background()); err != nil {
		t.Fatal(err)
	}
	if got := f.bot.HandleCommand("/next"); !strings.HasPrefix(got, "Prepare to buy Markets / A") {
		t.Errorf("unexpected /next: %q", got)
	}
	if got := f.bot.HandleCommand("/status"); !strings.Contains(got, "Balance: 1.00k") {
		t.Errorf("unexpected /status: %q", got)
	}
	if got := f.bot.HandleCommand("/top"); !strings.Contains(got, "Markets / A : 5.00h") {
		t.Errorf("unexpected /top: %q", got)
	}
	if got := f.bot.HandleCommand("hello"); !strings.Contains(got, "/status") {
		t.Errorf("unexpected help: %q", got)
	}
}
