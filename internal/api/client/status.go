package client

import (
	"context"
	"time"
)

// Quota is the eBay API quota status.
type Quota struct {
	DailyLimit int64     `json:"daily_limit"`
	DailyUsed  int64     `json:"daily_used"`
	Remaining  int64     `json:"remaining"`
	ResetAt    time.Time `json:"reset_at"`
}

// GetQuota returns the server's eBay API quota status.
func (c *Client) GetQuota(ctx context.Context) (*Quota, error) {
	var resp Quota
	if err := c.get(ctx, "/api/v1/quota", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Baselines is the market-average table in use by the server.
type Baselines struct {
	Averages map[string]float64 `json:"averages"`
}

// GetBaselines returns the current market-average table.
func (c *Client) GetBaselines(ctx context.Context) (*Baselines, error) {
	var resp Baselines
	if err := c.get(ctx, "/api/v1/baselines", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// RefreshBaselines triggers an immediate market-average reload.
func (c *Client) RefreshBaselines(ctx context.Context) error {
	return c.post(ctx, "/api/v1/baselines/refresh", nil, nil)
}

// Health checks the server's liveness endpoint.
func (c *Client) Health(ctx context.Context) error {
	return c.get(ctx, "/healthz", nil)
}
