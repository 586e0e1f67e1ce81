package embed

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// echoLenServer returns, for each input text, a one-dimensional vector
// holding the text's length, so tests can verify ordering.
func echoLenServer(t *testing.T, calls *atomic.Int64) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls != nil {
			calls.Add(1)
		}

		var req embeddingRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		resp := embeddingResponse{Data: make([]embeddingDatum, len(req.Input))}
		for i, text := range req.Input {
			resp.Data[i] = embeddingDatum{
				Index:     i,
				Embedding: []float64{float64(len(text))},
			}
		}
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
}

func fastClient(endpoint string, opts ...ClientOption) *Client {
	base := []ClientOption{
		WithBackoffUnit(time.Millisecond),
		WithBatchDelay(time.Millisecond),
	}
	return NewClient(endpoint, "test-embed-model", "test-key", append(base, opts...)...)
}

func TestAvailable(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		endpoint string
		apiKey   string
		want     bool
	}{
		{"configured", "http://localhost:9999", "key", true},
		{"missing key", "http://localhost:9999", "", false},
		{"missing endpoint", "", "key", false},
		{"unconfigured", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c := NewClient(tt.endpoint, "m", tt.apiKey)
			assert.Equal(t, tt.want, c.Available())
		})
	}
}

func TestEmbed_Success(t *testing.T) {
	t.Parallel()

	srv := echoLenServer(t, nil)
	defer srv.Close()

	c := fastClient(srv.URL)
	vec := c.Embed(context.Background(), "hello world")

	require.Len(t, vec, 1)
	assert.Equal(t, float64(len("hello world")), vec[0])
}

func TestEmbed_EmptyTextSkipsNetwork(t *testing.T) {
	t.Parallel()

	var calls atomic.Int64
	srv := echoLenServer(t, &calls)
	defer srv.Close()

	c := fastClient(srv.URL)
	assert.Nil(t, c.Embed(context.Background(), "   \n\t "))
	assert.Equal(t, int64(0), calls.Load())
}

func TestEmbed_UnavailableClient(t *testing.T) {
	t.Parallel()

	c := NewClient("", "m", "")
	assert.Nil(t, c.Embed(context.Background(), "text"))
	assert.Nil(t, c.EmbedBatch(context.Background(), []string{"a", "b"})[0])
}

func TestEmbed_RetriesTransientThenSucceeds(t *testing.T) {
	t.Parallel()

	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) <= 2 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		var req embeddingRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		resp := embeddingResponse{
			Data: []embeddingDatum{{Index: 0, Embedding: []float64{1, 2, 3}}},
		}
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	defer srv.Close()

	c := fastClient(srv.URL)
	vec := c.Embed(context.Background(), "retry me")

	assert.Equal(t, []float64{1, 2, 3}, vec)
	assert.Equal(t, int64(3), calls.Load())
}

func TestEmbed_NonRetryableFailsImmediately(t *testing.T) {
	t.Parallel()

	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	c := fastClient(srv.URL)
	assert.Nil(t, c.Embed(context.Background(), "bad request"))
	assert.Equal(t, int64(1), calls.Load())
}

func TestEmbed_RateLimitedExhaustsRetryBudget(t *testing.T) {
	t.Parallel()

	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := fastClient(srv.URL, WithMaxRetries(3))
	assert.Nil(t, c.Embed(context.Background(), "rate limited"))
	assert.Equal(t, int64(4), calls.Load(), "initial call plus three retries")
}

func TestEmbedBatch_LengthAndOrderPreserved(t *testing.T) {
	t.Parallel()

	srv := echoLenServer(t, nil)
	defer srv.Close()

	texts := make([]string, 40)
	for i := range texts {
		texts[i] = strings.Repeat("x", i+1)
	}

	c := fastClient(srv.URL)
	results := c.EmbedBatch(context.Background(), texts)

	require.Len(t, results, len(texts))
	for i, vec := range results {
		require.Len(t, vec, 1, "item %d", i)
		assert.Equal(t, float64(i+1), vec[0], "item %d out of order", i)
	}
}

func TestEmbedBatch_EmptyTextsStayUnavailable(t *testing.T) {
	t.Parallel()

	srv := echoLenServer(t, nil)
	defer srv.Close()

	c := fastClient(srv.URL)
	results := c.EmbedBatch(context.Background(), []string{"one", "", "three", "  "})

	require.Len(t, results, 4)
	assert.NotNil(t, results[0])
	assert.Nil(t, results[1])
	assert.NotNil(t, results[2])
	assert.Nil(t, results[3])
}

func TestEmbedBatch_OneGroupFailureDegradesOnlyThatGroup(t *testing.T) {
	t.Parallel()

	// Fail any group containing the poison text; serve the rest.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req embeddingRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		for _, text := range req.Input {
			if text == "poison" {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
		}

		resp := embeddingResponse{Data: make([]embeddingDatum, len(req.Input))}
		for i := range req.Input {
			resp.Data[i] = embeddingDatum{Index: i, Embedding: []float64{1}}
		}
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	defer srv.Close()

	texts := make([]string, 48)
	for i := range texts {
		texts[i] = "ok"
	}
	texts[20] = "poison" // second group of 16

	c := fastClient(srv.URL, WithMaxRetries(0))
	results := c.EmbedBatch(context.Background(), texts)

	require.Len(t, results, len(texts))
	for i, vec := range results {
		if i >= 16 && i < 32 {
			assert.Nil(t, vec, "item %d in the failed group should be unavailable", i)
		} else {
			assert.NotNil(t, vec, "item %d outside the failed group should succeed", i)
		}
	}
}

func TestEmbedBatch_RespectsGroupSize(t *testing.T) {
	t.Parallel()

	var maxGroup atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req embeddingRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		if n := int64(len(req.Input)); n > maxGroup.Load() {
			maxGroup.Store(n)
		}

		resp := embeddingResponse{Data: make([]embeddingDatum, len(req.Input))}
		for i := range req.Input {
			resp.Data[i] = embeddingDatum{Index: i, Embedding: []float64{1}}
		}
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	defer srv.Close()

	texts := make([]string, 50)
	for i := range texts {
		texts[i] = "t"
	}

	c := fastClient(srv.URL)
	c.EmbedBatch(context.Background(), texts)

	assert.LessOrEqual(t, maxGroup.Load(), int64(16))
}

func TestAPIError_Retryable(t *testing.T) {
	t.Parallel()

	tests := []struct {
		kind ErrorKind
		want bool
	}{
		{KindRateLimited, true},
		{KindServer, true},
		{KindNetwork, true},
		{KindInvalid, false},
	}

	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			t.Parallel()

			e := &APIError{Kind: tt.kind}
			assert.Equal(t, tt.want, e.Retryable())
		})
	}
}
