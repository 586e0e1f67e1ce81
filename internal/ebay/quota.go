package ebay

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const (
	defaultAnalyticsURL = "https://api.ebay.com/developer/analytics/v1_beta/rate_limit/"

	// browseResourceName is the Analytics API resource name for Browse API
	// search calls (item_summary/search).
	browseResourceName = "buy.browse"
)

type rateLimitResponse struct {
	RateLimits []rateLimitEntry `json:"rateLimits"`
}

type rateLimitEntry struct {
	APIContext string     `json:"apiContext"`
	APIName    string     `json:"apiName"`
	Resources  []resource `json:"resources"`
}

type resource struct {
	Name  string      `json:"name"`
	Rates []quotaRate `json:"rates"`
}

type quotaRate struct {
	Count      int64  `json:"count"`
	Limit      int64  `json:"limit"`
	Remaining  int64  `json:"remaining"`
	Reset      string `json:"reset"`
	TimeWindow int64  `json:"timeWindow"`
}

// QuotaState holds the parsed rate limit state for the Browse API as
// reported by eBay. It feeds RateLimiter.Sync and the quota endpoint.
type QuotaState struct {
	Count      int64
	Limit      int64
	Remaining  int64
	ResetAt    time.Time
	TimeWindow time.Duration
}

// QuotaClient queries the eBay Developer Analytics API for the
// authoritative Browse API quota state.
type QuotaClient struct {
	tokens       TokenProvider
	analyticsURL string
	client       *http.Client
}

// QuotaOption configures the QuotaClient.
type QuotaOption func(*QuotaClient)

// WithQuotaURL overrides the default Analytics API endpoint.
func WithQuotaURL(u string) QuotaOption {
	return func(c *QuotaClient) {
		c.analyticsURL = u
	}
}

// WithQuotaHTTPClient overrides the default HTTP client.
func WithQuotaHTTPClient(hc *http.Client) QuotaOption {
	return func(c *QuotaClient) {
		c.client = hc
	}
}

// NewQuotaClient creates a new Analytics API quota client.
func NewQuotaClient(tokens TokenProvider, opts ...QuotaOption) *QuotaClient {
	c := &QuotaClient{
		tokens:       tokens,
		analyticsURL: defaultAnalyticsURL,
		client:       &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BrowseQuota returns the current rate limit state for the Browse API
// search resource (buy.browse).
func (c *QuotaClient) BrowseQuota(ctx context.Context) (*QuotaState, error) {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, fmt.Errorf("getting auth token: %w", err)
	}

	u, err := url.Parse(c.analyticsURL)
	if err != nil {
		return nil, fmt.Errorf("parsing analytics URL: %w", err)
	}

	q := u.Query()
	q.Set("api_context", "buy")
	q.Set("api_name", "browse")
	u.RawQuery = q.Encode()

	httpReq, err := http.NewRequestWithContext(
		ctx, http.MethodGet, u.String(), http.NoBody,
	)
	if err != nil {
		return nil, fmt.Errorf("creating analytics request: %w", err)
	}

	httpReq.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("executing analytics request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading analytics response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf(
			"analytics API error (status %d): %s",
			resp.StatusCode,
			string(body),
		)
	}

	var apiResp rateLimitResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return nil, fmt.Errorf("parsing analytics response: %w", err)
	}

	return extractBrowseQuota(apiResp)
}

func extractBrowseQuota(resp rateLimitResponse) (*QuotaState, error) {
	for _, entry := range resp.RateLimits {
		for _, res := range entry.Resources {
			if res.Name != browseResourceName {
				continue
			}
			if len(res.Rates) == 0 {
				return nil, fmt.Errorf(
					"no rates found for resource %q", browseResourceName,
				)
			}

			r := res.Rates[0]

			resetAt, err := time.Parse(time.RFC3339, r.Reset)
			if err != nil {
				return nil, fmt.Errorf(
					"parsing reset time %q: %w", r.Reset, err,
				)
			}

			return &QuotaState{
				Count:      r.Count,
				Limit:      r.Limit,
				Remaining:  r.Remaining,
				ResetAt:    resetAt,
				TimeWindow: time.Duration(r.TimeWindow) * time.Second,
			}, nil
		}
	}

	return nil, fmt.Errorf("resource %q not found in analytics response", browseResourceName)
}
