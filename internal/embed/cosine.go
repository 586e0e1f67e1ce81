package embed

import (
	"fmt"
	"math"
)

// CosineSimilarity returns the cosine of the angle between a and b in
// [-1,1]. Vectors of different lengths are a contract violation and
// return ErrDimensionMismatch. A zero-norm vector yields 0.
func CosineSimilarity(a, b []float64) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d vs %d", ErrDimensionMismatch, len(a), len(b))
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	if normA == 0 || normB == 0 {
		return 0, nil
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB)), nil
}

// SimilarityScore rescales a cosine similarity from [-1,1] to the
// 0-100 scoring scale used everywhere else.
func SimilarityScore(similarity float64) float64 {
	score := (similarity + 1) * 50
	return math.Max(0, math.Min(100, score))
}
