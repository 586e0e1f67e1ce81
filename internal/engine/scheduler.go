package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/mkessler/deal-ranker/internal/baseline"
	"github.com/mkessler/deal-ranker/internal/metrics"
	"github.com/mkessler/deal-ranker/pkg/dealscore"
)

// Scheduler periodically reloads the market-average table from its
// source and swaps it into the deal quality model.
type Scheduler struct {
	cron   *cron.Cron
	source baseline.Source
	model  *dealscore.Model
	log    *slog.Logger
}

// NewScheduler creates a Scheduler that refreshes the model's market
// averages from src at the given interval.
func NewScheduler(
	src baseline.Source,
	model *dealscore.Model,
	refreshInterval time.Duration,
	log *slog.Logger,
) (*Scheduler, error) {
	c := cron.New()

	s := &Scheduler{
		cron:   c,
		source: src,
		model:  model,
		log:    log,
	}

	if _, err := c.AddFunc(
		"@every "+refreshInterval.String(),
		s.runRefresh,
	); err != nil {
		return nil, err
	}

	return s, nil
}

// Start begins running scheduled refreshes.
func (s *Scheduler) Start() {
	s.log.Info("baseline refresh scheduler started")
	s.cron.Start()
}

// Stop gracefully stops the scheduler, waiting for a running refresh
// to finish.
func (s *Scheduler) Stop() context.Context {
	s.log.Info("baseline refresh scheduler stopping")
	return s.cron.Stop()
}

// Entries returns the registered cron entries for inspection.
func (s *Scheduler) Entries() []cron.Entry {
	return s.cron.Entries()
}

// RefreshNow loads the baseline table and applies it immediately. On
// failure the model keeps its previous table.
func (s *Scheduler) RefreshNow(ctx context.Context) error {
	averages, err := s.source.Averages(ctx)
	if err != nil {
		metrics.BaselineRefreshFailuresTotal.Inc()
		return fmt.Errorf("loading market baselines: %w", err)
	}
	if len(averages) == 0 {
		metrics.BaselineRefreshFailuresTotal.Inc()
		return fmt.Errorf("market baseline source returned no categories")
	}

	s.model.SetMarketAverages(averages)
	metrics.BaselineRefreshesTotal.Inc()
	s.log.Info("market baselines refreshed", "categories", len(averages))
	return nil
}

func (s *Scheduler) runRefresh() {
	ctx := context.Background()
	s.log.Info("scheduled baseline refresh starting")
	if err := s.RefreshNow(ctx); err != nil {
		s.log.Error("scheduled baseline refresh failed", "error", err)
	}
}
