// Package baseline provides market-average price tables for deal
// quality scoring, loadable from static configuration or Postgres.
package baseline

import "context"

// Source loads a category-to-average-price table. Implementations
// must return a fresh map each call so the caller can swap it into the
// scoring model without synchronization concerns.
type Source interface {
	// Averages returns the current market-average table keyed by
	// normalized category name.
	Averages(ctx context.Context) (map[string]float64, error)
}
