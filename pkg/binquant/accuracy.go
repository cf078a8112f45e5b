package binquant

import (
	"fmt"
	"math"
)

// AccuracyStats summarizes per-component quantization error between an original vector and
// its dequantized reconstruction.
type AccuracyStats struct {
	MeanError   float64
	MaxError    float64
	MinError    float64
	StdError    float64
	Correlation float64
}

// ComputeAccuracy compares original against reconstructed component-by-component and reports
// error statistics plus the Pearson correlation between the two arrays.
func ComputeAccuracy(original, reconstructed []float32) (AccuracyStats, error) {
	if len(original) != len(reconstructed) {
		return AccuracyStats{}, fmt.Errorf("ComputeAccuracy: length %d vs %d: %w", len(original), len(reconstructed), ErrDimensionMismatch)
	}
	if len(original) == 0 {
		return AccuracyStats{}, fmt.Errorf("ComputeAccuracy: empty vectors: %w", ErrDimensionMismatch)
	}

	n := len(original)
	errs := make([]float64, n)
	minErr := math.MaxFloat64
	maxErr := -math.MaxFloat64
	var sumErr float64
	for i := range original {
		e := math.Abs(float64(original[i]) - float64(reconstructed[i]))
		errs[i] = e
		sumErr += e
		if e < minErr {
			minErr = e
		}
		if e > maxErr {
			maxErr = e
		}
	}
	meanErr := sumErr / float64(n)

	var sumSq float64
	for _, e := range errs {
		d := e - meanErr
		sumSq += d * d
	}
	stdErr := math.Sqrt(sumSq / float64(n))

	corr, err := pearsonCorrelation(original, reconstructed)
	if err != nil {
		return AccuracyStats{}, fmt.Errorf("ComputeAccuracy: %w", err)
	}

	return AccuracyStats{
		MeanError:   meanErr,
		MaxError:    maxErr,
		MinError:    minErr,
		StdError:    stdErr,
		Correlation: corr,
	}, nil
}

// pearsonCorrelation computes the Pearson correlation coefficient between two equal-length
// arrays. Returns 0 if either array has zero variance.
func pearsonCorrelation(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("pearsonCorrelation: length %d vs %d: %w", len(a), len(b), ErrDimensionMismatch)
	}
	n := len(a)
	if n == 0 {
		return 0, fmt.Errorf("pearsonCorrelation: empty arrays: %w", ErrDimensionMismatch)
	}

	var sumA, sumB float64
	for i := range a {
		sumA += float64(a[i])
		sumB += float64(b[i])
	}
	meanA, meanB := sumA/float64(n), sumB/float64(n)

	var cov, varA, varB float64
	for i := range a {
		da := float64(a[i]) - meanA
		db := float64(b[i]) - meanB
		cov += da * db
		varA += da * da
		varB += db * db
	}
	if varA == 0 || varB == 0 {
		return 0, nil
	}
	return cov / math.Sqrt(varA*varB), nil
}
