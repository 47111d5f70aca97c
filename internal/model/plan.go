package model

import "time"

// ActionType indicates what a scheduled wake-up will do.
type ActionType string

const (
	ActionBuy       ActionType = "buy"
	ActionKeepAlive ActionType = "keep alive"
	ActionIdle      ActionType = "idle"
)

// Plan is the bot's next intended action.
type Plan struct {
	ID      string
	Action  ActionType
	Upgrade *Upgrade // nil unless Action is ActionBuy
	WakeAt  time.Time
	// BuyAt is the projected purchase time, zero when nothing is eligible.
	BuyAt     time.Time
	CreatedAt time.Time
}
