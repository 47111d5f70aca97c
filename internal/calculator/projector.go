package calculator

import (
	"math"
	"time"

	"ClickerPilot/internal/model"
)

// Projector computes the earliest wall-clock time an upgrade can be bought.
type Projector struct {
	// MaxPaybackHours is the ceiling above which an upgrade is second-order.
	MaxPaybackHours float64
	// SecondOrderBuffer is the extra balance a second-order upgrade must leave behind.
	SecondOrderBuffer float64
	// SafetyFactor scales a positive balance deficit. Values below 1 are treated as 1.
	SafetyFactor float64
}

// NewProjector creates a Projector.
func NewProjector(maxPaybackHours, secondOrderBuffer, safetyFactor float64) *Projector {
	return &Projector{
		MaxPaybackHours:   maxPaybackHours,
		SecondOrderBuffer: secondOrderBuffer,
		SafetyFactor:      safetyFactor,
	}
}

// RequiredBalance returns the balance needed before u may be bought.
func (p *Projector) RequiredBalance(u *model.Upgrade) float64 {
	if u.SecondOrder(p.MaxPaybackHours) {
		return u.Price + p.SecondOrderBuffer
	}
	return u.Price
}

// AffordableAt returns when the balance, reduced by committed, reaches target.
// ok is false when the target can never be reached.
func (p *Projector) AffordableAt(state *model.EconomicState, target, committed float64) (time.Time, bool) {
	deficit := target - (state.BalanceCoins - committed)
	if deficit <= 0 {
		return state.LastSync(), true
	}
	if state.EarnPassivePerSec <= 0 {
		return time.Time{}, false
	}
	factor := p.SafetyFactor
	if factor < 1 {
		factor = 1
	}
	seconds := deficit * factor / state.EarnPassivePerSec
	if math.IsInf(seconds, 0) || math.IsNaN(seconds) || seconds > maxSeconds {
		return time.Time{}, false
	}
	return state.LastSync().Add(time.Duration(seconds * float64(time.Second))), true
}

// maxSeconds keeps durations inside time.Duration's range (about 292 years).
const maxSeconds = float64(math.MaxInt64/int64(time.Second)) / 2

// PurchaseTime returns the earliest time at which u is affordable, off cooldown,
// and not in the past. committed is the balance already spent on better-ranked
// upgrades in the current planning pass. ok is false when u cannot be bought:
// the balance never gets there or the time falls after u's deadline.
func (p *Projector) PurchaseTime(u *model.Upgrade, state *model.EconomicState, committed float64, now time.Time) (time.Time, bool) {
	at, ok := p.AffordableAt(state, p.RequiredBalance(u), committed)
	if !ok {
		return time.Time{}, false
	}
	if ready := state.LastSync().Add(u.Cooldown); ready.After(at) {
		at = ready
	}
	if now.After(at) {
		at = now
	}
	if u.Expires() && at.After(u.ExpiresAt) {
		return time.Time{}, false
	}
	return at, true
}

// Until returns the duration from now to t, clamped at zero.
func Until(now, t time.Time) time.Duration {
	d := t.Sub(now)
	if d < 0 {
		return 0
	}
	return d
}
