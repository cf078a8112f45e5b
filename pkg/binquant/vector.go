package binquant

import (
	"fmt"
	"math"

	"github.com/therealutkarshpriyadarshi/vector/internal/quantization"
)

// l2Norm returns the Euclidean norm of v.
func l2Norm(v []float32) float32 {
	return quantization.NormL2(v)
}

// normalize returns v/‖v‖₂, or a freshly allocated zero vector if ‖v‖₂ is 0.
func normalize(v []float32) []float32 {
	out := quantization.Normalize(v)
	if l2Norm(v) == 0 {
		// quantization.Normalize aliases its input in the zero-norm case; return a fresh copy
		// so callers never observe an output that shares storage with the input.
		fresh := make([]float32, len(v))
		copy(fresh, out)
		return fresh
	}
	return out
}

// dot returns the raw dot product of a and b.
func dot(a, b []float32) float32 {
	return quantization.DotProductFloat32(a, b)
}

// euclideanDistance returns the L2 distance between a and b.
func euclideanDistance(a, b []float32) float32 {
	return quantization.EuclideanDistanceFloat32(a, b)
}

// cosineSimilarity returns the cosine similarity between a and b, or 0 if either is the zero vector.
func cosineSimilarity(a, b []float32) float32 {
	na, nb := l2Norm(a), l2Norm(b)
	if na == 0 || nb == 0 {
		return 0
	}
	return dot(a, b) / (na * nb)
}

// maximumInnerProduct returns the raw dot product, used for MIPS scoring.
func maximumInnerProduct(a, b []float32) float32 {
	return dot(a, b)
}

// clamp restricts x to [lo, hi].
func clamp(x, lo, hi float32) float32 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

// clampF64 is clamp's float64 counterpart, used by the interval optimizer's wider accumulators.
func clampF64(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

// mean returns the arithmetic mean of v's components, using a float64 accumulator.
func mean(v []float32) float64 {
	if len(v) == 0 {
		return 0
	}
	var sum float64
	for _, x := range v {
		sum += float64(x)
	}
	return sum / float64(len(v))
}

// stdev returns the population standard deviation of v's components.
func stdev(v []float32) float64 {
	if len(v) == 0 {
		return 0
	}
	m := mean(v)
	var sumSq float64
	for _, x := range v {
		d := float64(x) - m
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(len(v)))
}

// computeCentroid returns the elementwise mean of vs. Fails on an empty set or mismatched dimensions.
func computeCentroid(vs [][]float32) ([]float32, error) {
	if len(vs) == 0 {
		return nil, fmt.Errorf("computeCentroid: no vectors: %w", ErrEmptyCorpus)
	}
	dim := len(vs[0])
	acc := make([]float64, dim)
	for i, v := range vs {
		if len(v) != dim {
			return nil, fmt.Errorf("computeCentroid: vector %d has length %d, want %d: %w", i, len(v), dim, ErrDimensionMismatch)
		}
		for d, x := range v {
			acc[d] += float64(x)
		}
	}
	n := float64(len(vs))
	centroid := make([]float32, dim)
	for d := range centroid {
		centroid[d] = float32(acc[d] / n)
	}
	return centroid, nil
}

// isFinite reports whether x is neither NaN nor infinite.
func isFinite(x float32) bool {
	f := float64(x)
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// isFiniteF64 is isFinite's float64 counterpart.
func isFiniteF64(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}
