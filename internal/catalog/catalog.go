package catalog

import (
	"errors"
	"fmt"
	"math"
	"time"

	"ClickerPilot/internal/model"
)

// ErrMalformedRecord marks an upgrade record that cannot be decoded or lacks a required field.
var ErrMalformedRecord = errors.New("malformed upgrade record")

// Catalog maps upgrade ids to normalized upgrades, remembering first-seen order.
type Catalog struct {
	order []string
	byID  map[string]*model.Upgrade
}

// New returns an empty catalog.
func New() *Catalog {
	return &Catalog{byID: make(map[string]*model.Upgrade)}
}

// Put inserts or replaces an upgrade. A replaced id keeps its original position.
func (c *Catalog) Put(u *model.Upgrade) {
	if _, ok := c.byID[u.ID]; !ok {
		c.order = append(c.order, u.ID)
	}
	c.byID[u.ID] = u
}

// Get looks up an upgrade by id.
func (c *Catalog) Get(id string) (*model.Upgrade, bool) {
	u, ok := c.byID[id]
	return u, ok
}

// Len returns the number of upgrades in the catalog.
func (c *Catalog) Len() int { return len(c.order) }

// All returns every upgrade in catalog order.
func (c *Catalog) All() []*model.Upgrade {
	out := make([]*model.Upgrade, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.byID[id])
	}
	return out
}

// Normalize builds a catalog from raw records. Expired records and records gated
// on referral counts are dropped. Malformed records are skipped and reported
// through the returned errors; the rest of the input is still processed.
func Normalize(records []model.UpgradeRecord) (*Catalog, []error) {
	c := New()
	var skipped []error
	for i := range records {
		r := &records[i]
		if r.IsExpired {
			continue
		}
		if err := validate(r); err != nil {
			skipped = append(skipped, fmt.Errorf("record %d (%q): %w", i, r.ID, err))
			continue
		}

		var conditionID string
		if cond := r.Condition; cond != nil {
			switch cond.Type {
			case model.ConditionByUpgrade:
				conditionID = cond.UpgradeID
			case model.ConditionReferralCount, model.ConditionMoreReferralsCount:
				continue
			}
		}

		var cooldown time.Duration
		if r.CooldownSeconds != nil && *r.CooldownSeconds > 0 {
			cooldown = time.Duration(math.Trunc(*r.CooldownSeconds)) * time.Second
		}

		available := *r.IsAvailable
		// Maxed upgrades stay in the catalog so dependants can still resolve.
		if r.MaxLevel > 0 && r.Level >= r.MaxLevel {
			available = false
		}

		u := &model.Upgrade{
			ID:                 r.ID,
			Name:               r.Name,
			Section:            r.Section,
			Cooldown:           cooldown,
			Price:              *r.Price,
			ProfitPerHourDelta: *r.ProfitPerHourDelta,
			PaybackHours:       model.PaybackPeriod(*r.Price, *r.ProfitPerHourDelta),
			Available:          available,
			ConditionUpgradeID: conditionID,
		}
		if r.ExpiresAt != nil {
			u.ExpiresAt = *r.ExpiresAt
		}
		c.Put(u)
	}
	return c, skipped
}

func validate(r *model.UpgradeRecord) error {
	switch {
	case r.ID == "":
		return fmt.Errorf("%w: missing id", ErrMalformedRecord)
	case r.Price == nil:
		return fmt.Errorf("%w: missing price", ErrMalformedRecord)
	case r.ProfitPerHourDelta == nil:
		return fmt.Errorf("%w: missing profitPerHourDelta", ErrMalformedRecord)
	case r.IsAvailable == nil:
		return fmt.Errorf("%w: missing isAvailable", ErrMalformedRecord)
	}
	return nil
}
