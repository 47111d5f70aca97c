package catalog

import (
	"sort"

	"ClickerPilot/internal/model"
)

// IsEligible walks the prerequisite chain starting at id. It returns true once a
// node without a condition is reached, and false for a missing link or a cycle.
func (c *Catalog) IsEligible(id string) bool {
	visited := make(map[string]bool)
	for {
		u, ok := c.byID[id]
		if !ok || visited[id] {
			return false
		}
		if u.ConditionUpgradeID == "" {
			return true
		}
		visited[id] = true
		id = u.ConditionUpgradeID
	}
}

// Ranked returns eligible upgrades sorted by ascending payback period.
// Equal payback keeps catalog order.
func (c *Catalog) Ranked() []*model.Upgrade {
	var out []*model.Upgrade
	for _, id := range c.order {
		if c.IsEligible(id) {
			out = append(out, c.byID[id])
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].PaybackHours < out[j].PaybackHours
	})
	return out
}
