package collector

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// ErrUpstreamRejected marks a non-success response from the game API.
var ErrUpstreamRejected = errors.New("upstream rejected request")

// Response is a decoded top-level JSON object from the game API.
type Response map[string]json.RawMessage

// Client defines the game API operations the bot depends on.
type Client interface {
	Sync(ctx context.Context) (Response, error)
	UpgradesForBuy(ctx context.Context) (Response, error)
	BuyUpgrade(ctx context.Context, upgradeID string, ts time.Time) (Response, error)
	Name() string
}
