package baseline

import "context"

// StaticSource serves a fixed market-average table, typically loaded
// from configuration. It never fails.
type StaticSource struct {
	averages map[string]float64
}

// NewStaticSource creates a StaticSource from the given table. The
// table is copied so later mutation of the argument has no effect.
func NewStaticSource(averages map[string]float64) *StaticSource {
	copied := make(map[string]float64, len(averages))
	for k, v := range averages {
		copied[k] = v
	}
	return &StaticSource{averages: copied}
}

// Averages returns a copy of the configured table.
func (s *StaticSource) Averages(_ context.Context) (map[string]float64, error) {
	out := make(map[string]float64, len(s.averages))
	for k, v := range s.averages {
		out[k] = v
	}
	return out, nil
}
