package strategy

import (
	"math"
	"time"

	"ClickerPilot/internal/calculator"
	"ClickerPilot/internal/catalog"
	"ClickerPilot/internal/model"
)

var never = time.Unix(math.MaxInt64/int64(time.Second)/2, 0)

// Never returns the projected time of a decision with nothing to buy.
func Never() time.Time { return never }

// Decision is the Selector's pick for the next purchase.
type Decision struct {
	Upgrade *model.Upgrade // nil when nothing is eligible
	At      time.Time
	// Evaluated counts the candidates projected before the scan stopped.
	Evaluated int
}

// Found reports whether the decision names an upgrade.
func (d Decision) Found() bool { return d.Upgrade != nil }

// Candidate is one row of the ranked diagnostic listing.
type Candidate struct {
	Upgrade     *model.Upgrade
	At          time.Time // zero unless Feasible
	Feasible    bool
	SecondOrder bool
	// Committed is the running commitment the candidate was projected against.
	Committed float64
}

// Selector greedily picks the next upgrade across the ranked catalog.
type Selector struct {
	Projector *calculator.Projector
}

// NewSelector creates a Selector.
func NewSelector(p *calculator.Projector) *Selector {
	return &Selector{Projector: p}
}

// ChooseNext walks the payback-ranked eligible upgrades once. Each available,
// feasible candidate is projected against a running balance that assumes every
// better-ranked candidate has been bought first; the earliest projected time
// wins, ties going to the better-ranked upgrade. The scan stops as soon as the
// best time is not after now.
func (s *Selector) ChooseNext(cat *catalog.Catalog, state *model.EconomicState, now time.Time) Decision {
	best := Decision{At: never}
	var committed float64
	for _, u := range cat.Ranked() {
		if !u.Available {
			continue
		}
		at, ok := s.Projector.PurchaseTime(u, state, committed, now)
		if !ok {
			continue
		}
		best.Evaluated++
		if best.Upgrade == nil || at.Before(best.At) {
			best.Upgrade = u
			best.At = at
		}
		committed += u.Price
		if !best.At.After(now) {
			break
		}
	}
	return best
}

// Rank projects every eligible upgrade the same way ChooseNext does, without
// stopping early. Unavailable and infeasible upgrades are included but do not
// consume running balance.
func (s *Selector) Rank(cat *catalog.Catalog, state *model.EconomicState, now time.Time) []Candidate {
	ranked := cat.Ranked()
	out := make([]Candidate, 0, len(ranked))
	var committed float64
	for _, u := range ranked {
		c := Candidate{
			Upgrade:     u,
			SecondOrder: u.SecondOrder(s.Projector.MaxPaybackHours),
			Committed:   committed,
		}
		if u.Available {
			c.At, c.Feasible = s.Projector.PurchaseTime(u, state, committed, now)
			if c.Feasible {
				committed += u.Price
			}
		}
		out = append(out, c)
	}
	return out
}
