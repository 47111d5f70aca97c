package collector

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/127.0.0.0 Safari/537.36"

// ClickerClient implements Client over the clicker REST API.
type ClickerClient struct {
	BaseURL   string
	AuthToken string
	UserAgent string
	Client    *http.Client
}

// NewClickerClient creates a client with optional proxy support.
func NewClickerClient(baseURL, authToken, userAgent, proxyURL string, timeout time.Duration) *ClickerClient {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &ClickerClient{
		BaseURL:   strings.TrimRight(baseURL, "/"),
		AuthToken: authToken,
		UserAgent: userAgent,
		Client: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
	}
}

func (c *ClickerClient) Name() string { return "clicker" }

func (c *ClickerClient) Sync(ctx context.Context) (Response, error) {
	return c.post(ctx, "sync", nil)
}

func (c *ClickerClient) UpgradesForBuy(ctx context.Context) (Response, error) {
	return c.post(ctx, "upgrades-for-buy", nil)
}

func (c *ClickerClient) BuyUpgrade(ctx context.Context, upgradeID string, ts time.Time) (Response, error) {
	return c.post(ctx, "buy-upgrade", map[string]any{
		"upgradeId": upgradeID,
		"timestamp": ts.UnixMilli(),
	})
}

func (c *ClickerClient) post(ctx context.Context, request string, payload any) (Response, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshal %s payload: %w", request, err)
		}
		body = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/"+request, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", c.AuthToken)
	req.Header.Set("User-Agent", c.UserAgent)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", request, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s read body: %w", request, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s: %w: status %d, body: %s", request, ErrUpstreamRejected, resp.StatusCode, string(respBody))
	}

	var result Response
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("%s decode: %w", request, err)
	}
	return result, nil
}
