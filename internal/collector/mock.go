package collector

import (
	"context"
	"time"
)

// MockClient returns controllable canned responses for development and testing.
type MockClient struct {
	SyncResponse     Response
	UpgradesResponse Response
	// BuyResponses maps upgrade ids to the response of buying them.
	BuyResponses map[string]Response
	Err          error

	SyncCalls     int
	UpgradesCalls int
	Bought        []string
}

func (m *MockClient) Name() string { return "mock" }

func (m *MockClient) Sync(_ context.Context) (Response, error) {
	m.SyncCalls++
	if m.Err != nil {
		return nil, m.Err
	}
	return m.SyncResponse, nil
}

func (m *MockClient) UpgradesForBuy(_ context.Context) (Response, error) {
	m.UpgradesCalls++
	if m.Err != nil {
		return nil, m.Err
	}
	return m.UpgradesResponse, nil
}

func (m *MockClient) BuyUpgrade(_ context.Context, upgradeID string, _ time.Time) (Response, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.Bought = append(m.Bought, upgradeID)
	return m.BuyResponses[upgradeID], nil
}
