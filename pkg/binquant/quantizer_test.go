package binquant

import (
	"math"
	"math/rand"
	"testing"
)

func randomVector(rng *rand.Rand, d int) []float32 {
	v := make([]float32, d)
	for i := range v {
		v[i] = float32(rng.NormFloat64())
	}
	return v
}

func TestScalarQuantizeCodesInRange(t *testing.T) {
	rng := rand.New(rand.NewSource(10))
	for _, bits := range []int{1, 2, 4, 8} {
		v := randomVector(rng, 32)
		centroid := make([]float32, 32)
		dst := make([]byte, 32)
		_, err := scalarQuantize(v, dst, bits, centroid, DefaultQuantizerConfig(), MetricCosine)
		if err != nil {
			t.Fatalf("bits=%d: %v", bits, err)
		}
		maxCode := byte(1<<uint(bits) - 1)
		for i, c := range dst {
			if c > maxCode {
				t.Errorf("bits=%d dim %d: code %d exceeds max %d", bits, i, c, maxCode)
			}
		}
	}
}

func TestScalarQuantizeSumInvariant(t *testing.T) {
	// Scenario C.
	rng := rand.New(rand.NewSource(11))
	v := randomVector(rng, 128)
	centroid := make([]float32, 128)
	dst := make([]byte, 128)
	res, err := scalarQuantize(v, dst, 4, centroid, DefaultQuantizerConfig(), MetricCosine)
	if err != nil {
		t.Fatalf("scalarQuantize: %v", err)
	}
	want := 0
	for _, c := range dst {
		want += int(c)
	}
	if res.QuantizedComponentSum != want {
		t.Errorf("got sum %d, want %d", res.QuantizedComponentSum, want)
	}
}

func TestScalarQuantizeIntervalOrdering(t *testing.T) {
	rng := rand.New(rand.NewSource(12))
	v := randomVector(rng, 64)
	centroid := make([]float32, 64)
	dst := make([]byte, 64)
	res, err := scalarQuantize(v, dst, 4, centroid, DefaultQuantizerConfig(), MetricCosine)
	if err != nil {
		t.Fatalf("scalarQuantize: %v", err)
	}
	if res.LowerInterval > res.UpperInterval {
		t.Errorf("a=%f > b=%f", res.LowerInterval, res.UpperInterval)
	}
}

func TestScalarQuantizeAdditionalCorrectionEuclidean(t *testing.T) {
	v := []float32{3, 4}
	centroid := []float32{0, 0}
	dst := make([]byte, 2)
	res, err := scalarQuantize(v, dst, 8, centroid, DefaultQuantizerConfig(), MetricEuclidean)
	if err != nil {
		t.Fatalf("scalarQuantize: %v", err)
	}
	want := float32(3*3 + 4*4)
	if math.Abs(float64(res.AdditionalCorrection-want)) > 1e-3 {
		t.Errorf("got %f, want %f", res.AdditionalCorrection, want)
	}
}

func TestScalarQuantizeAdditionalCorrectionCosine(t *testing.T) {
	v := []float32{1, 2}
	centroid := []float32{3, 4}
	dst := make([]byte, 2)
	res, err := scalarQuantize(v, dst, 8, centroid, DefaultQuantizerConfig(), MetricCosine)
	if err != nil {
		t.Fatalf("scalarQuantize: %v", err)
	}
	want := float32(1*3 + 2*4)
	if math.Abs(float64(res.AdditionalCorrection-want)) > 1e-3 {
		t.Errorf("got %f, want %f", res.AdditionalCorrection, want)
	}
}

func TestScalarQuantizeDimensionMismatch(t *testing.T) {
	v := []float32{1, 2, 3}
	centroid := []float32{1, 2}
	dst := make([]byte, 3)
	if _, err := scalarQuantize(v, dst, 4, centroid, DefaultQuantizerConfig(), MetricCosine); err == nil {
		t.Error("expected error for centroid dimension mismatch")
	}
}

func TestScalarQuantizeRejectsNonFinite(t *testing.T) {
	v := []float32{1, float32(math.NaN())}
	centroid := []float32{0, 0}
	dst := make([]byte, 2)
	if _, err := scalarQuantize(v, dst, 4, centroid, DefaultQuantizerConfig(), MetricCosine); err == nil {
		t.Error("expected error for NaN component")
	}
}

func TestScalarQuantizeRejectsInvalidBits(t *testing.T) {
	v := []float32{1, 2}
	centroid := []float32{0, 0}
	dst := make([]byte, 2)
	if _, err := scalarQuantize(v, dst, 0, centroid, DefaultQuantizerConfig(), MetricCosine); err == nil {
		t.Error("expected error for bits=0")
	}
	if _, err := scalarQuantize(v, dst, 9, centroid, DefaultQuantizerConfig(), MetricCosine); err == nil {
		t.Error("expected error for bits=9")
	}
}

func TestScalarQuantizeDegenerateConstantVector(t *testing.T) {
	// minW == maxW: the optimizer must not blow up, and every code should be 0.
	v := []float32{5, 5, 5, 5}
	centroid := []float32{5, 5, 5, 5}
	dst := make([]byte, 4)
	res, err := scalarQuantize(v, dst, 4, centroid, DefaultQuantizerConfig(), MetricCosine)
	if err != nil {
		t.Fatalf("scalarQuantize: %v", err)
	}
	for i, c := range dst {
		if c != 0 {
			t.Errorf("dim %d: got code %d, want 0", i, c)
		}
	}
	if res.QuantizedComponentSum != 0 {
		t.Errorf("sum: got %d, want 0", res.QuantizedComponentSum)
	}
}

func TestMultiScalarQuantize(t *testing.T) {
	rng := rand.New(rand.NewSource(13))
	v := randomVector(rng, 16)
	centroid := make([]float32, 16)
	destinations := [][]byte{make([]byte, 16), make([]byte, 16)}
	bitsList := []int{1, 4}
	results, err := multiScalarQuantize(v, destinations, bitsList, centroid, DefaultQuantizerConfig(), MetricCosine)
	if err != nil {
		t.Fatalf("multiScalarQuantize: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
}

func TestMultiScalarQuantizeLengthMismatch(t *testing.T) {
	v := []float32{1, 2}
	centroid := []float32{0, 0}
	destinations := [][]byte{make([]byte, 2)}
	bitsList := []int{1, 4}
	if _, err := multiScalarQuantize(v, destinations, bitsList, centroid, DefaultQuantizerConfig(), MetricCosine); err == nil {
		t.Error("expected error for mismatched lengths")
	}
}
