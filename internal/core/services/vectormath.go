package services

import (
	"math"
	"sort"
)

// VectorMatch is a candidate index paired with its cosine similarity.
type VectorMatch struct {
	Index int
	Score float64
}

// CosineSimilarity returns dot(a,b)/(|a|*|b|). It returns 0 when the
// vectors differ in length, are empty, or either has zero magnitude.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}
	if normA == 0 || normB == 0 {
		return 0
	}

	sim := dot / (math.Sqrt(normA) * math.Sqrt(normB))

	// Rounding can push identical vectors a hair past 1.
	switch {
	case sim > 1:
		return 1
	case sim < -1:
		return -1
	}
	return sim
}

// NormalizeVector returns a unit-length copy of v.
// A zero vector is returned unchanged (as a copy).
func NormalizeVector(v []float32) []float32 {
	out := make([]float32, len(v))
	copy(out, v)

	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return out
	}

	norm := math.Sqrt(sum)
	for i, x := range v {
		out[i] = float32(float64(x) / norm)
	}
	return out
}

// FindTopKSimilar scores every candidate against query and returns at most
// k matches sorted by descending similarity. Ties keep candidate order.
func FindTopKSimilar(query []float32, candidates [][]float32, k int) []VectorMatch {
	if k <= 0 || len(candidates) == 0 {
		return []VectorMatch{}
	}

	matches := make([]VectorMatch, len(candidates))
	for i, c := range candidates {
		matches[i] = VectorMatch{Index: i, Score: CosineSimilarity(query, c)}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	if len(matches) > k {
		matches = matches[:k]
	}
	return matches
}

// isUsableVector reports whether v can be compared against a query of
// the given dimension.
func isUsableVector(v []float32, dims int) bool {
	if len(v) == 0 || len(v) != dims {
		return false
	}
	for _, x := range v {
		f := float64(x)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return false
		}
	}
	return true
}
