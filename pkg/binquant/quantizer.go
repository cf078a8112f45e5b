package binquant

import (
	"fmt"
	"math"

	"github.com/therealutkarshpriyadarshi/vector/pkg/observability"
)

// QuantizationResult carries the four corrective scalars produced by scalarQuantize for one
// vector: the chosen quantization interval, the metric-dependent additional correction, and
// the integer sum of emitted codes.
type QuantizationResult struct {
	LowerInterval         float32
	UpperInterval         float32
	AdditionalCorrection  float32
	QuantizedComponentSum int
}

// QuantizerConfig holds the anisotropic-loss weight and the coordinate-descent iteration cap.
type QuantizerConfig struct {
	Lambda float64
	Iters  int
}

// DefaultQuantizerConfig returns the spec's defaults: lambda=0.1, iters=5.
func DefaultQuantizerConfig() QuantizerConfig {
	return QuantizerConfig{Lambda: 0.1, Iters: 5}
}

// convergenceEpsilon bounds how close successive (a,b) estimates must be before coordinate
// descent is considered converged.
const convergenceEpsilon = 1e-6

// gridPairs holds the precomputed minimum-MSE initial interval (in units of sigma around mu)
// for bits 1..8. Index 0 is unused (bits is always >= 1).
var gridPairs = [9][2]float64{
	{},
	{-0.798, 0.798},
	{-1.493, 1.493},
	{-2.051, 2.051},
	{-2.514, 2.514},
	{-2.916, 2.916},
	{-3.276, 3.276},
	{-3.606, 3.606},
	{-3.913, 3.913},
}

func gridPair(bitsParam int) (float64, float64) {
	return gridPairs[bitsParam][0], gridPairs[bitsParam][1]
}

// scalarQuantize quantizes vector into destination (length D, one emitted code per dimension,
// in [0, 2^bits-1]) relative to centroid, and returns the corrective scalars needed to score
// it later. bits must be in [1,8]; vector, destination and centroid must all have length D.
func scalarQuantize(vector []float32, destination []byte, bitsParam int, centroid []float32, cfg QuantizerConfig, metric Metric) (QuantizationResult, error) {
	d := len(vector)
	if len(centroid) != d {
		return QuantizationResult{}, fmt.Errorf("scalarQuantize: centroid length %d, want %d: %w", len(centroid), d, ErrDimensionMismatch)
	}
	if len(destination) != d {
		return QuantizationResult{}, fmt.Errorf("scalarQuantize: destination length %d, want %d: %w", len(destination), d, ErrDimensionMismatch)
	}
	if bitsParam < 1 || bitsParam > 8 {
		return QuantizationResult{}, fmt.Errorf("scalarQuantize: bits=%d out of [1,8]: %w", bitsParam, ErrInvalidConfig)
	}
	for i, x := range vector {
		if !isFinite(x) {
			return QuantizationResult{}, fmt.Errorf("scalarQuantize: vector[%d] not finite: %w", i, ErrInvalidComponent)
		}
	}
	for i, x := range centroid {
		if !isFinite(x) {
			return QuantizationResult{}, fmt.Errorf("scalarQuantize: centroid[%d] not finite: %w", i, ErrInvalidComponent)
		}
	}

	// Step 1: pre-centering centroid dot, using the ORIGINAL vector. Must happen before
	// centering below — computing it from the centered vector yields the wrong scalar and
	// silently corrupts non-Euclidean recall.
	var centroidDot float64
	if metric != MetricEuclidean {
		for i := range vector {
			centroidDot += float64(vector[i]) * float64(centroid[i])
		}
	}

	// Step 2: center, tracking min/max.
	w := make([]float64, d)
	minW, maxW := math.Inf(1), math.Inf(-1)
	for i := range vector {
		wi := float64(vector[i]) - float64(centroid[i])
		w[i] = wi
		if wi < minW {
			minW = wi
		}
		if wi > maxW {
			maxW = wi
		}
	}

	// Step 3: stats.
	var sumSq float64
	for _, x := range w {
		sumSq += x * x
	}
	mu := mean64(w)
	sigma := stdev64(w, mu)
	nSq := sumSq

	// Step 4: initial interval from the precomputed min-MSE grid.
	g0, g1 := gridPair(bitsParam)
	a := clampF64(g0*sigma+mu, minW, maxW)
	b := clampF64(g1*sigma+mu, minW, maxW)

	points := 1 << uint(bitsParam)
	nSteps := points - 1

	// Step 5: coordinate-descent interval refinement.
	lambda := cfg.Lambda
	iters := cfg.Iters
	scale := (1 - lambda) / nSq
	if isFiniteF64(scale) && nSteps > 0 && b > a {
		curLoss := quantizationLoss(w, a, b, nSteps, lambda, nSq)
		for iter := 0; iter < iters; iter++ {
			step := (b - a) / float64(nSteps)
			var daa, dab, dbb, dax, dbx float64
			for _, wi := range w {
				clamped := clampF64(wi, a, b)
				k := math.Round((clamped - a) / step)
				s := k / float64(nSteps)
				daa += (1 - s) * (1 - s)
				dab += (1 - s) * s
				dbb += s * s
				dax += (1 - s) * wi
				dbx += s * wi
			}
			m00 := scale*dax*dax + lambda*daa
			m01 := scale*dax*dbx + lambda*dab
			m11 := scale*dbx*dbx + lambda*dbb
			det := m00*m11 - m01*m01
			if math.Abs(det) < 1e-12 {
				observability.Debugf("scalarQuantize: DegenerateOptimization at iter %d, singular determinant %v, keeping last valid interval", iter, det)
				break // DegenerateOptimization: skip refinement, keep last valid interval
			}
			newA := (m11*dax - m01*dbx) / det
			newB := (m00*dbx - m01*dax) / det

			if math.Abs(newA-a) < convergenceEpsilon && math.Abs(newB-b) < convergenceEpsilon {
				break
			}
			newLoss := quantizationLoss(w, newA, newB, nSteps, lambda, nSq)
			if newLoss > curLoss {
				break
			}
			a, b, curLoss = newA, newB, newLoss
			if !(b > a) {
				break
			}
		}
	} else {
		observability.Debugf("scalarQuantize: DegenerateOptimization, skipping interval refinement (scale=%v nSteps=%d a=%v b=%v)", scale, nSteps, a, b)
	}
	if b < a {
		a, b = b, a
	}

	// Step 6: emit codes and running sum.
	var step float64
	if nSteps > 0 && b > a {
		step = (b - a) / float64(nSteps)
	}
	sum := 0
	threshold := (a + b) / 2
	for i, wi := range w {
		var code int
		clamped := clampF64(wi, a, b)
		if bitsParam == 1 {
			if clamped >= threshold {
				code = 1
			}
		} else if step == 0 {
			code = 0
		} else {
			k := int(math.Round((clamped - a) / step))
			if k > nSteps {
				k = nSteps
			}
			if k < 0 {
				k = 0
			}
			code = k
		}
		destination[i] = byte(code)
		sum += code
	}

	var additionalCorrection float64
	if metric == MetricEuclidean {
		additionalCorrection = nSq
	} else {
		additionalCorrection = centroidDot
	}

	return QuantizationResult{
		LowerInterval:         float32(a),
		UpperInterval:         float32(b),
		AdditionalCorrection:  float32(additionalCorrection),
		QuantizedComponentSum: sum,
	}, nil
}

// multiScalarQuantize runs scalarQuantize once per (destination, bits) pair against the same
// vector and centroid.
func multiScalarQuantize(vector []float32, destinations [][]byte, bitsList []int, centroid []float32, cfg QuantizerConfig, metric Metric) ([]QuantizationResult, error) {
	if len(destinations) != len(bitsList) {
		return nil, fmt.Errorf("multiScalarQuantize: %d destinations, %d bit widths: %w", len(destinations), len(bitsList), ErrDimensionMismatch)
	}
	results := make([]QuantizationResult, len(destinations))
	for i := range destinations {
		r, err := scalarQuantize(vector, destinations[i], bitsList[i], centroid, cfg, metric)
		if err != nil {
			return nil, fmt.Errorf("multiScalarQuantize: destination %d: %w", i, err)
		}
		results[i] = r
	}
	return results, nil
}

// quantizationLoss computes the anisotropic loss of the interval [a,b] against the centered
// vector w: (1-λ)·(Σ w·(w-ŵ))²/n² + λ·Σ(w-ŵ)², where ŵ[d] is w[d] rounded to the nearest of
// `nSteps+1` evenly spaced levels in [a,b].
func quantizationLoss(w []float64, a, b float64, nSteps int, lambda, nSq float64) float64 {
	var step float64
	if nSteps > 0 && b > a {
		step = (b - a) / float64(nSteps)
	}
	var sumWErr, sumErrSq float64
	for _, wi := range w {
		var what float64
		if step == 0 {
			what = a
		} else {
			clamped := clampF64(wi, a, b)
			k := math.Round((clamped - a) / step)
			what = a + step*k
		}
		errv := wi - what
		sumWErr += wi * errv
		sumErrSq += errv * errv
	}
	if nSq == 0 {
		return lambda * sumErrSq
	}
	return (1-lambda)*sumWErr*sumWErr/nSq + lambda*sumErrSq
}

func mean64(w []float64) float64 {
	if len(w) == 0 {
		return 0
	}
	var sum float64
	for _, x := range w {
		sum += x
	}
	return sum / float64(len(w))
}

func stdev64(w []float64, mu float64) float64 {
	if len(w) == 0 {
		return 0
	}
	var sumSq float64
	for _, x := range w {
		d := x - mu
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(len(w)))
}
