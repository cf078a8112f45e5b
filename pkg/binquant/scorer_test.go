package binquant

import (
	"math"
	"math/rand"
	"testing"
)

func TestBatchScoreMatchesSingle(t *testing.T) {
	// Scenario F.
	rng := rand.New(rand.NewSource(20))
	dim := 32
	centroid := make([]float32, dim)

	q := randomVector(rng, dim)
	qCode := make([]byte, dim)
	qRes, err := scalarQuantize(q, qCode, 4, centroid, DefaultQuantizerConfig(), MetricCosine)
	if err != nil {
		t.Fatalf("scalarQuantize query: %v", err)
	}

	n := 5
	targets := make([]QuantizationResult, n)
	qcDist := make([]int, n)
	for i := 0; i < n; i++ {
		v := randomVector(rng, dim)
		code := make([]byte, dim)
		res, err := scalarQuantize(v, code, 1, centroid, DefaultQuantizerConfig(), MetricCosine)
		if err != nil {
			t.Fatalf("scalarQuantize target %d: %v", i, err)
		}
		targets[i] = res
		qT := make([]byte, 4*dim)
		if err := transposeHalfByte(qCode, qT); err != nil {
			t.Fatalf("transposeHalfByte: %v", err)
		}
		dp, err := int4Bit(qT, code)
		if err != nil {
			t.Fatalf("int4Bit: %v", err)
		}
		qcDist[i] = dp
	}

	centroidDP := 0.0
	batch, err := batchScore(MetricCosine, 4, qRes, targets, qcDist, dim, centroidDP)
	if err != nil {
		t.Fatalf("batchScore: %v", err)
	}
	for i := range targets {
		single, err := score(MetricCosine, 4, qRes, targets[i], qcDist[i], dim, centroidDP)
		if err != nil {
			t.Fatalf("score: %v", err)
		}
		if batch[i] != single {
			t.Errorf("target %d: batch=%f single=%f", i, batch[i], single)
		}
	}
}

func TestScoreRejectsInvalidMetric(t *testing.T) {
	q := QuantizationResult{}
	idx := QuantizationResult{}
	if _, err := score(Metric(99), 4, q, idx, 0, 8, 0); err == nil {
		t.Error("expected error for invalid metric")
	}
}

func TestScoreRejectsInvalidQueryBits(t *testing.T) {
	q := QuantizationResult{}
	idx := QuantizationResult{}
	if _, err := score(MetricCosine, 3, q, idx, 0, 8, 0); err == nil {
		t.Error("expected error for queryBits not in {1,4}")
	}
}

func TestOriginalScoreEuclideanIsDistance(t *testing.T) {
	a := []float32{0, 0}
	b := []float32{3, 4}
	got, err := originalScore(MetricEuclidean, a, b)
	if err != nil {
		t.Fatalf("originalScore: %v", err)
	}
	if math.Abs(float64(got)-5) > 1e-5 {
		t.Errorf("got %f, want 5", got)
	}
}

func TestOriginalScoreDimensionMismatch(t *testing.T) {
	if _, err := originalScore(MetricCosine, []float32{1}, []float32{1, 2}); err == nil {
		t.Error("expected error for mismatched lengths")
	}
}
