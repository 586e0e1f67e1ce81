// Package embed provides the semantic similarity signal: a client for
// an OpenAI-compatible text-embedding service with batching, typed
// transport errors, retry with backoff, and graceful degradation.
//
// Embedding failures never surface to callers as errors; a failed or
// skipped item simply has no vector. Only CosineSimilarity can fail,
// and only on a dimension mismatch.
package embed

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/mkessler/deal-ranker/internal/metrics"
)

// Defaults for the embedding client.
const (
	defaultBatchSize  = 16 // the service's per-call input cap
	defaultMaxRetries = 3
	defaultBatchDelay = 100 * time.Millisecond
	defaultTimeout    = 30 * time.Second
)

// Embedder turns text into embedding vectors. A nil vector means the
// embedding is unavailable for that text.
type Embedder interface {
	Available() bool
	Embed(ctx context.Context, text string) []float64
	EmbedBatch(ctx context.Context, texts []string) [][]float64
}

// Client is an Embedder backed by an OpenAI-compatible /v1/embeddings
// endpoint. Compatible with OpenAI, vLLM, text-embeddings-inference,
// LM Studio, etc.
type Client struct {
	endpoint    string
	model       string
	apiKey      string
	client      *http.Client
	log         *slog.Logger
	maxRetries  int
	batchSize   int
	batchDelay  time.Duration
	backoffUnit time.Duration
}

// ClientOption configures the Client.
type ClientOption func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.client = hc
	}
}

// WithLogger sets the logger for degradation reporting.
func WithLogger(log *slog.Logger) ClientOption {
	return func(c *Client) {
		c.log = log
	}
}

// WithMaxRetries overrides the retry budget for transient failures.
func WithMaxRetries(n int) ClientOption {
	return func(c *Client) {
		c.maxRetries = n
	}
}

// WithBatchSize overrides the per-call input cap.
func WithBatchSize(n int) ClientOption {
	return func(c *Client) {
		if n > 0 {
			c.batchSize = n
		}
	}
}

// WithBatchDelay overrides the pause between successive group calls.
func WithBatchDelay(d time.Duration) ClientOption {
	return func(c *Client) {
		c.batchDelay = d
	}
}

// WithBackoffUnit overrides the backoff time base for testing. The
// retry delay is 2^attempt units.
func WithBackoffUnit(d time.Duration) ClientOption {
	return func(c *Client) {
		c.backoffUnit = d
	}
}

// NewClient creates an embedding client. Availability is fixed at
// construction: without both an endpoint and an API key the client is
// permanently unavailable and never contacts the network.
func NewClient(endpoint, model, apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		endpoint:    endpoint,
		model:       model,
		apiKey:      apiKey,
		client:      &http.Client{Timeout: defaultTimeout},
		log:         slog.Default(),
		maxRetries:  defaultMaxRetries,
		batchSize:   defaultBatchSize,
		batchDelay:  defaultBatchDelay,
		backoffUnit: time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Available reports whether the client is configured to reach the
// embedding service.
func (c *Client) Available() bool {
	return c.endpoint != "" && c.apiKey != ""
}

// Embed returns the embedding vector for one text, or nil when the
// text is empty after preprocessing, the client is unavailable, or the
// call failed after retries.
func (c *Client) Embed(ctx context.Context, text string) []float64 {
	if !c.Available() {
		return nil
	}

	cleaned := Preprocess(text)
	if cleaned == "" {
		return nil
	}

	vectors, err := c.embedWithRetry(ctx, []string{cleaned})
	if err != nil {
		c.log.Warn("embedding unavailable", "error", err)
		return nil
	}
	if len(vectors) != 1 {
		return nil
	}
	return vectors[0]
}

// EmbedBatch embeds many texts in sequential groups of the service's
// per-call cap. The result always has one entry per input, in input
// order; entries are nil where the text was empty or the group call
// failed. A failed group never aborts the remaining groups.
func (c *Client) EmbedBatch(ctx context.Context, texts []string) [][]float64 {
	results := make([][]float64, len(texts))
	if !c.Available() {
		return results
	}

	for start := 0; start < len(texts); start += c.batchSize {
		end := min(start+c.batchSize, len(texts))

		// Pause between groups to respect the service rate limit.
		if start > 0 {
			if err := sleepCtx(ctx, c.batchDelay); err != nil {
				return results
			}
		}

		c.embedGroup(ctx, texts, start, end, results)
	}

	return results
}

// embedGroup embeds texts[start:end] into results, skipping empty
// texts and degrading the whole group on failure.
func (c *Client) embedGroup(
	ctx context.Context,
	texts []string,
	start, end int,
	results [][]float64,
) {
	indices := make([]int, 0, end-start)
	inputs := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		cleaned := Preprocess(texts[i])
		if cleaned == "" {
			continue
		}
		indices = append(indices, i)
		inputs = append(inputs, cleaned)
	}

	if len(inputs) == 0 {
		return
	}

	vectors, err := c.embedWithRetry(ctx, inputs)
	if err != nil {
		metrics.EmbeddingGroupFailuresTotal.Inc()
		c.log.Warn("embedding group degraded",
			"group_start", start,
			"group_size", len(inputs),
			"error", err,
		)
		return
	}

	for j, idx := range indices {
		if j < len(vectors) {
			results[idx] = vectors[j]
		}
	}
}

// embedWithRetry calls the service, retrying transient failures with
// exponential backoff (2^attempt backoff units).
func (c *Client) embedWithRetry(ctx context.Context, inputs []string) ([][]float64, error) {
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			metrics.EmbeddingRetriesTotal.Inc()
			delay := c.backoffUnit * (1 << attempt)
			if err := sleepCtx(ctx, delay); err != nil {
				return nil, err
			}
		}

		vectors, err := c.call(ctx, inputs)
		if err == nil {
			return vectors, nil
		}
		lastErr = err

		var apiErr *APIError
		if !errors.As(err, &apiErr) || !apiErr.Retryable() {
			return nil, err
		}
	}

	return nil, lastErr
}

type embeddingRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embeddingResponse struct {
	Data []embeddingDatum `json:"data"`
}

type embeddingDatum struct {
	Index     int       `json:"index"`
	Embedding []float64 `json:"embedding"`
}

// call performs one POST to the embeddings endpoint and classifies
// every failure into the closed error taxonomy.
func (c *Client) call(ctx context.Context, inputs []string) ([][]float64, error) {
	body, err := json.Marshal(embeddingRequest{Model: c.model, Input: inputs})
	if err != nil {
		return nil, &APIError{Kind: KindInvalid, Message: "marshaling request: " + err.Error()}
	}

	url := c.endpoint + "/v1/embeddings"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, &APIError{Kind: KindInvalid, Message: "creating HTTP request: " + err.Error()}
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	metrics.EmbeddingCallsTotal.Inc()
	start := time.Now()
	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, &APIError{Kind: KindNetwork, Message: err.Error()}
	}
	defer resp.Body.Close()
	metrics.EmbeddingCallDuration.Observe(time.Since(start).Seconds())

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &APIError{Kind: KindNetwork, Message: "reading response: " + err.Error()}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{
			Kind:    classifyStatus(resp.StatusCode),
			Status:  resp.StatusCode,
			Message: string(respBody),
		}
	}

	var apiResp embeddingResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return nil, &APIError{Kind: KindInvalid, Message: "parsing response: " + err.Error()}
	}

	vectors := make([][]float64, len(inputs))
	for _, d := range apiResp.Data {
		if d.Index >= 0 && d.Index < len(vectors) {
			vectors[d.Index] = d.Embedding
		}
	}

	return vectors, nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
