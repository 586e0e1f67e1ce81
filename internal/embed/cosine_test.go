package embed

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCosineSimilarity(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		a, b []float64
		want float64
	}{
		{"identical", []float64{1, 2, 3}, []float64{1, 2, 3}, 1},
		{"opposite", []float64{1, 0}, []float64{-1, 0}, -1},
		{"orthogonal", []float64{1, 0}, []float64{0, 1}, 0},
		{"zero norm a", []float64{0, 0}, []float64{1, 2}, 0},
		{"zero norm b", []float64{1, 2}, []float64{0, 0}, 0},
		{"scaled copies", []float64{1, 2, 3}, []float64{2, 4, 6}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := CosineSimilarity(tt.a, tt.b)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestCosineSimilarity_DimensionMismatch(t *testing.T) {
	t.Parallel()

	_, err := CosineSimilarity([]float64{1, 2}, []float64{1, 2, 3})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestSimilarityScore(t *testing.T) {
	t.Parallel()

	tests := []struct {
		similarity float64
		want       float64
	}{
		{-1, 0},
		{0, 50},
		{1, 100},
		{0.5, 75},
		{-1.5, 0},  // clamped
		{1.5, 100}, // clamped
	}

	for _, tt := range tests {
		assert.InDelta(t, tt.want, SimilarityScore(tt.similarity), 1e-9)
	}
}

func TestPreprocess(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"collapse whitespace", "a  b\t\nc", "a b c"},
		{"trim", "  hello  ", "hello"},
		{"empty", "   \n\t ", ""},
		{"unchanged", "already clean", "already clean"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Preprocess(tt.in))
		})
	}
}

func TestPreprocess_Truncates(t *testing.T) {
	t.Parallel()

	long := make([]byte, 10000)
	for i := range long {
		long[i] = 'x'
	}

	got := Preprocess(string(long))
	assert.Len(t, got, maxTextLen)
}
