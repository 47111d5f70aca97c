package recorder

import "time"

// SyncEvent records a balance refresh.
type SyncEvent struct {
	Reason             string // "bootstrap", "keep alive", "idle"
	BalanceCoins       float64
	EarnPassivePerHour float64
	LastSyncUpdate     time.Time
}

// PurchaseEvent records a completed upgrade purchase.
type PurchaseEvent struct {
	UpgradeID          string
	Name               string
	Section            string
	Price              float64
	ProfitPerHourDelta float64
	PaybackHours       float64
	BalanceAfter       float64
	EarnPassivePerHour float64 // after the purchase
}

// PlanEvent records a scheduling decision.
type PlanEvent struct {
	PlanID    string
	Action    string // "buy", "keep alive", "idle"
	UpgradeID string
	WakeAt    time.Time
	BuyAt     time.Time
}

// Recorder persists bot history for analysis.
type Recorder interface {
	RecordSync(evt *SyncEvent) error
	RecordPurchase(evt *PurchaseEvent) error
	RecordPlan(evt *PlanEvent) error
	Close() error
}
