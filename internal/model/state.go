package model

import "time"

// EconomicState is the clickerUser snapshot returned by sync and buy-upgrade.
// BalanceCoins is exact as of LastSyncUpdate.
type EconomicState struct {
	ID                 string  `json:"id,omitempty"`
	TotalCoins         float64 `json:"totalCoins"`
	BalanceCoins       float64 `json:"balanceCoins"`
	Level              int     `json:"level"`
	LastSyncUpdate     int64   `json:"lastSyncUpdate"`
	EarnPassivePerHour float64 `json:"earnPassivePerHour"`
	EarnPassivePerSec  float64 `json:"earnPassivePerSec"`
}

// LastSync returns LastSyncUpdate as a time.
func (s *EconomicState) LastSync() time.Time {
	return time.Unix(s.LastSyncUpdate, 0)
}

// BalanceAt projects the balance forward from the last sync.
func (s *EconomicState) BalanceAt(t time.Time) float64 {
	elapsed := t.Sub(s.LastSync()).Seconds()
	if elapsed < 0 {
		elapsed = 0
	}
	return s.BalanceCoins + elapsed*s.EarnPassivePerSec
}
