package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humaecho"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/mkessler/deal-ranker/internal/api/handlers"
	"github.com/mkessler/deal-ranker/internal/api/middleware"
	"github.com/mkessler/deal-ranker/internal/baseline"
	"github.com/mkessler/deal-ranker/internal/config"
	"github.com/mkessler/deal-ranker/internal/ebay"
	"github.com/mkessler/deal-ranker/internal/embed"
	"github.com/mkessler/deal-ranker/internal/engine"
	"github.com/mkessler/deal-ranker/pkg/dealscore"
	"github.com/mkessler/deal-ranker/pkg/logger"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the ranking API server",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	log := logger.New(cfg.Logging.Level, cfg.Logging.Format)

	model := dealscore.NewModel(dealscore.WithLogger(log))

	var embedder embed.Embedder
	if cfg.Embedding.Endpoint != "" {
		embedder = embed.NewClient(
			cfg.Embedding.Endpoint,
			cfg.Embedding.Model,
			cfg.Embedding.APIKey,
			embed.WithBatchSize(cfg.Embedding.BatchSize),
			embed.WithBatchDelay(cfg.Embedding.BatchDelay),
			embed.WithMaxRetries(cfg.Embedding.MaxRetries),
			embed.WithHTTPClient(&http.Client{Timeout: cfg.Embedding.Timeout}),
			embed.WithLogger(log),
		)
		log.Info("semantic ranking enabled",
			"endpoint", cfg.Embedding.Endpoint,
			"model", cfg.Embedding.Model,
		)
	} else {
		log.Info("semantic ranking disabled, no embedding endpoint configured")
	}

	ranker := engine.NewRanker(embedder, model,
		engine.WithFusionWeights(engine.FusionWeights{
			Semantic:   cfg.Ranking.Weights.Semantic,
			Deal:       cfg.Ranking.Weights.Deal,
			Preference: cfg.Ranking.Weights.Preference,
		}),
		engine.WithLogger(log),
	)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	var (
		pinger    handlers.Pinger
		refresher handlers.BaselineRefresher
		sched     *engine.Scheduler
	)

	switch cfg.Baselines.Source {
	case "postgres":
		src, err := baseline.NewPostgresSource(ctx, cfg.Baselines.Database.DSN())
		if err != nil {
			return fmt.Errorf("connecting to baseline database: %w", err)
		}
		defer src.Close()

		if err := src.Migrate(ctx); err != nil {
			return fmt.Errorf("migrating baseline database: %w", err)
		}

		sched, err = engine.NewScheduler(src, model, cfg.Baselines.RefreshInterval, log)
		if err != nil {
			return fmt.Errorf("creating baseline scheduler: %w", err)
		}
		if err := sched.RefreshNow(ctx); err != nil {
			log.Warn("initial baseline load failed, using built-in averages", "err", err)
		}
		sched.Start()
		defer sched.Stop()

		pinger = src
		refresher = sched
	case "static":
		if len(cfg.Baselines.Static) > 0 {
			model.SetMarketAverages(cfg.Baselines.Static)
		}
	}

	var collector handlers.ListingCollector
	var limiter *ebay.RateLimiter
	if cfg.Ebay.Enabled() {
		tokens := ebay.NewOAuthTokenProvider(cfg.Ebay.AppID, cfg.Ebay.CertID,
			ebay.WithTokenURL(cfg.Ebay.TokenURL),
		)

		limiter = ebay.NewRateLimiter(
			cfg.Ebay.RateLimit.PerSecond,
			cfg.Ebay.RateLimit.Burst,
			cfg.Ebay.RateLimit.DailyLimit,
		)
		syncQuota(ctx, tokens, limiter, cfg.Ebay.AnalyticsURL, log)

		browse := ebay.NewBrowseClient(tokens,
			ebay.WithBrowseURL(cfg.Ebay.BrowseURL),
			ebay.WithMarketplace(cfg.Ebay.Marketplace),
			ebay.WithRateLimiter(limiter),
		)
		collector = ebay.NewCollector(browse,
			ebay.WithPageSize(cfg.Ebay.PageSize),
			ebay.WithMaxPages(cfg.Ebay.MaxPages),
			ebay.WithCollectorLogger(log),
		)
		log.Info("eBay search enabled", "marketplace", cfg.Ebay.Marketplace)
	} else {
		log.Info("eBay search disabled, no credentials configured")
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Server.ReadTimeout = cfg.Server.ReadTimeout
	e.Server.WriteTimeout = cfg.Server.WriteTimeout

	e.Use(middleware.Recovery(log))
	e.Use(middleware.RequestLog(log))
	e.Use(middleware.Metrics())

	health := handlers.NewHealthHandler(pinger)
	e.GET("/healthz", health.Healthz)
	e.GET("/readyz", health.Readyz)

	// Prometheus metrics.
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := humaecho.New(e, huma.DefaultConfig("Deal Ranker API", Version))
	handlers.RegisterRankRoutes(api, handlers.NewRankHandler(ranker))
	handlers.RegisterSearchRoutes(api, handlers.NewSearchHandler(collector, ranker))
	handlers.RegisterQuotaRoutes(api, handlers.NewQuotaHandler(limiter))
	handlers.RegisterBaselineRoutes(api, handlers.NewBaselinesHandler(model, refresher))

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	log.Info("starting server", "addr", addr)

	go func() {
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "err", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}

	log.Info("server stopped")
	return nil
}

// syncQuota reconciles the local daily counter with eBay's reported
// usage so restarts do not reset the quota tracking.
func syncQuota(
	ctx context.Context,
	tokens ebay.TokenProvider,
	limiter *ebay.RateLimiter,
	analyticsURL string,
	log *slog.Logger,
) {
	qc := ebay.NewQuotaClient(tokens, ebay.WithQuotaURL(analyticsURL))

	q, err := qc.BrowseQuota(ctx)
	if err != nil {
		log.Warn("quota sync failed, starting from zero", "err", err)
		return
	}

	limiter.Sync(q)
	log.Info("quota synced", "used", q.Count, "limit", q.Limit)
}
