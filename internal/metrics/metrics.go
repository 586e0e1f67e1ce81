// Package metrics defines Prometheus metrics for deal-ranker.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "dealranker"

// HTTP metrics.
var (
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "Duration of HTTP requests in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests.",
	}, []string{"method", "path", "status"})

	HealthzUp = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "healthz_up",
		Help:      "1 when the liveness endpoint last answered successfully.",
	})

	ReadyzUp = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "readyz_up",
		Help:      "1 when the readiness endpoint last answered successfully.",
	})
)

// Ranking metrics.
var (
	RankingRequestsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "ranking_requests_total",
		Help:      "Total number of ranking requests processed.",
	})

	RankingDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "ranking_duration_seconds",
		Help:      "Duration of full ranking passes in seconds.",
		Buckets:   prometheus.DefBuckets,
	})

	RankingScoreDistribution = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "ranking_score_distribution",
		Help:      "Distribution of fused final scores.",
		Buckets:   prometheus.LinearBuckets(0, 10, 11), // 0, 10, ..., 100
	})

	RankingSemanticDegradedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "ranking_semantic_degraded_total",
		Help:      "Total ranking requests whose semantic phase degraded to neutral.",
	})
)

// Embedding service metrics.
var (
	EmbeddingCallsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "embedding_calls_total",
		Help:      "Total embedding API calls issued.",
	})

	EmbeddingCallDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "embedding_call_duration_seconds",
		Help:      "Duration of embedding API calls in seconds.",
		Buckets:   prometheus.DefBuckets,
	})

	EmbeddingRetriesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "embedding_retries_total",
		Help:      "Total embedding call retries after transient failures.",
	})

	EmbeddingGroupFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "embedding_group_failures_total",
		Help:      "Total embedding batch groups degraded to unavailable.",
	})
)

// eBay API metrics.
var (
	EbayAPICallsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "ebay_api_calls_total",
		Help:      "Total cumulative eBay API calls.",
	})

	EbayDailyUsage = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "ebay_daily_usage",
		Help:      "Current daily eBay API call count within the rolling 24-hour window.",
	})

	EbayDailyLimitHits = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "ebay_daily_limit_hits_total",
		Help:      "Total number of times the daily eBay API limit was reached.",
	})
)

// Baseline refresh metrics.
var (
	BaselineRefreshesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "baseline_refreshes_total",
		Help:      "Total market-average table refreshes applied.",
	})

	BaselineRefreshFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "baseline_refresh_failures_total",
		Help:      "Total market-average refresh attempts that failed.",
	})
)
