package model

import (
	"math"
	"time"
)

// Condition kinds reported by the game API.
const (
	ConditionByUpgrade          = "ByUpgrade"
	ConditionReferralCount      = "ReferralCount"
	ConditionMoreReferralsCount = "MoreReferralsCount"
)

// UpgradeCondition is the prerequisite descriptor attached to an upgrade.
type UpgradeCondition struct {
	Type          string `json:"_type"`
	UpgradeID     string `json:"upgradeId,omitempty"`
	Level         int    `json:"level,omitempty"`
	ReferralCount int    `json:"referralCount,omitempty"`
}

// UpgradeRecord is a raw entry of the upgrades-for-buy list.
// Required fields are pointers so a missing value can be told apart from zero.
type UpgradeRecord struct {
	ID                 string            `json:"id"`
	Name               string            `json:"name"`
	Section            string            `json:"section"`
	CooldownSeconds    *float64          `json:"cooldownSeconds,omitempty"`
	Price              *float64          `json:"price"`
	ProfitPerHourDelta *float64          `json:"profitPerHourDelta"`
	IsAvailable        *bool             `json:"isAvailable"`
	IsExpired          bool              `json:"isExpired"`
	ExpiresAt          *time.Time        `json:"expiresAt,omitempty"`
	Condition          *UpgradeCondition `json:"condition,omitempty"`
	Level              int               `json:"level"`
	MaxLevel           int               `json:"maxLevel,omitempty"`
}

// Upgrade is a normalized catalog entry.
type Upgrade struct {
	ID                 string
	Name               string
	Section            string
	Cooldown           time.Duration
	Price              float64
	ProfitPerHourDelta float64
	PaybackHours       float64 // +Inf when the upgrade adds no income
	Available          bool
	ConditionUpgradeID string
	ExpiresAt          time.Time
}

// PaybackPeriod returns price/delta in hours, or +Inf for a zero delta.
func PaybackPeriod(price, profitPerHourDelta float64) float64 {
	if profitPerHourDelta == 0 {
		return math.Inf(1)
	}
	return price / profitPerHourDelta
}

// SecondOrder reports whether the payback exceeds the ceiling.
// A non-positive ceiling disables the check.
func (u *Upgrade) SecondOrder(maxPaybackHours float64) bool {
	return maxPaybackHours > 0 && u.PaybackHours > maxPaybackHours
}

// Expires reports whether the upgrade carries a deadline.
func (u *Upgrade) Expires() bool {
	return !u.ExpiresAt.IsZero()
}
