package collector

import (
	"context"
	"fmt"
	"log"
	"time"

	"ClickerPilot/internal/catalog"
	"ClickerPilot/internal/model"
	"ClickerPilot/internal/state"
)

// Collector moves API responses into the state store.
type Collector struct {
	Client Client
	Store  *state.Store
	Now    func() time.Time
}

// NewCollector creates a new Collector.
func NewCollector(client Client, store *state.Store) *Collector {
	return &Collector{Client: client, Store: store, Now: time.Now}
}

// Bootstrap fetches whatever the store is missing.
func (c *Collector) Bootstrap(ctx context.Context) error {
	if !c.Store.Has(state.KeyClickerUser) {
		if err := c.merge(c.Client.Sync(ctx)); err != nil {
			return fmt.Errorf("sync: %w", err)
		}
	}
	if !c.Store.Has(state.KeyUpgradesForBuy) {
		if err := c.merge(c.Client.UpgradesForBuy(ctx)); err != nil {
			return fmt.Errorf("upgrades for buy: %w", err)
		}
	}
	return nil
}

// Refresh syncs the balance and reloads the upgrade list.
func (c *Collector) Refresh(ctx context.Context) error {
	if err := c.merge(c.Client.Sync(ctx)); err != nil {
		return fmt.Errorf("sync: %w", err)
	}
	if err := c.merge(c.Client.UpgradesForBuy(ctx)); err != nil {
		return fmt.Errorf("upgrades for buy: %w", err)
	}
	return nil
}

// Buy purchases u and stores the returned snapshot.
func (c *Collector) Buy(ctx context.Context, u *model.Upgrade) error {
	if err := c.merge(c.Client.BuyUpgrade(ctx, u.ID, c.Now())); err != nil {
		return fmt.Errorf("buy %s: %w", u.ID, err)
	}
	return nil
}

// Snapshot decodes the current state and normalizes the upgrade catalog.
// Malformed upgrade records are logged and skipped.
func (c *Collector) Snapshot() (*model.EconomicState, *catalog.Catalog, error) {
	st, err := c.Store.Economic()
	if err != nil {
		return nil, nil, err
	}
	records, err := c.Store.Upgrades()
	if err != nil {
		return nil, nil, err
	}
	cat, skipped := catalog.Parse(records)
	for _, e := range skipped {
		log.Printf("[WARN] skip upgrade: %v", e)
	}
	return st, cat, nil
}

func (c *Collector) merge(resp Response, err error) error {
	if err != nil {
		return err
	}
	if err := c.Store.Merge(resp); err != nil {
		return fmt.Errorf("persist response: %w", err)
	}
	return nil
}
