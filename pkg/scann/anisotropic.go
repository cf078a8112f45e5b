package scann

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/therealutkarshpriyadarshi/vector/internal/quantization"
	"github.com/therealutkarshpriyadarshi/vector/pkg/binquant"
)

// AnisotropicQuantizer implements anisotropic vector quantization.
//
// Unlike Product Quantization, which divides dimensions into independent fixed-size
// subvectors and quantizes each with its own codebook, this quantizer fits a single
// coordinate-descent interval search jointly over all dimensions of the residual vector,
// minimizing an anisotropic loss that penalizes error along the vector's own direction more
// than error orthogonal to it. There is no codebook: every vector is quantized against the
// shared residual centroid with per-vector corrective scalars.
//
// Paper: "Accelerating Large-Scale Inference with Anisotropic Vector Quantization"
// https://arxiv.org/abs/1908.10396
type AnisotropicQuantizer struct {
	dim    int
	bits   int
	metric binquant.Metric

	format   *binquant.Format
	centroid []float32
}

// NewAnisotropicQuantizer creates a new anisotropic quantizer. numSubvectors is kept for
// call-site compatibility but no longer partitions dimensions: the optimized scalar
// quantizer fits the full residual vector jointly.
func NewAnisotropicQuantizer(dim, numSubvectors, bitsPerCode int) *AnisotropicQuantizer {
	_ = numSubvectors
	return &AnisotropicQuantizer{
		dim:    dim,
		bits:   bitsPerCode,
		metric: binquant.MetricMaxInnerProduct,
	}
}

// Train fits the quantizer's residual centroid and quantization format over the training
// residuals. config is accepted for call-site compatibility with the product-quantization
// path but is unused: there is no per-subvector codebook to train with k-means here.
func (aq *AnisotropicQuantizer) Train(vectors [][]float32, config *quantization.QuantizationConfig) error {
	if len(vectors) == 0 {
		return fmt.Errorf("no training data provided")
	}
	if len(vectors[0]) != aq.dim {
		return fmt.Errorf("dimension mismatch")
	}

	fmt.Printf("  Anisotropic Quantizer training:\n")
	fmt.Printf("    Dimensions: %d\n", aq.dim)
	fmt.Printf("    Bits per code: %d\n", aq.bits)

	format, err := binquant.NewFormat(binquant.Config{
		QueryBits: 4,
		IndexBits: aq.bits,
		Metric:    aq.metric,
		Quantizer: binquant.DefaultQuantizerConfig(),
	})
	if err != nil {
		return fmt.Errorf("anisotropic quantizer: %w", err)
	}

	corpus, err := format.QuantizeVectors(vectors)
	if err != nil {
		return fmt.Errorf("anisotropic quantizer training: %w", err)
	}

	aq.format = format
	aq.centroid = corpus.GetCentroid()

	fmt.Printf("  Anisotropic Quantizer training complete\n")
	return nil
}

// recordLen returns the byte length of one Encode output: dim raw code bytes (one per
// dimension, valued in [0, 15] since Encode quantizes at the format's 4-bit query width)
// followed by four float32 corrective scalars.
func (aq *AnisotropicQuantizer) recordLen() int {
	return aq.dim + 4*4
}

// Encode quantizes vec against the trained centroid, returning its code bytes plus the
// corrective scalars needed to score it later.
func (aq *AnisotropicQuantizer) Encode(vec []float32) []byte {
	if aq.format == nil || len(vec) != aq.dim {
		return nil
	}
	code, res, err := aq.format.QuantizeQueryVector(vec, aq.centroid)
	if err != nil {
		return nil
	}

	out := make([]byte, aq.recordLen())
	copy(out, code)
	offset := aq.dim
	binary.LittleEndian.PutUint32(out[offset:], math.Float32bits(res.LowerInterval))
	offset += 4
	binary.LittleEndian.PutUint32(out[offset:], math.Float32bits(res.UpperInterval))
	offset += 4
	binary.LittleEndian.PutUint32(out[offset:], math.Float32bits(res.AdditionalCorrection))
	offset += 4
	binary.LittleEndian.PutUint32(out[offset:], math.Float32bits(float32(res.QuantizedComponentSum)))
	return out
}

// decodeEntry splits an Encode output back into its unpacked code and corrective scalars.
func (aq *AnisotropicQuantizer) decodeEntry(codes []byte) ([]byte, binquant.QuantizationResult, error) {
	if len(codes) != aq.recordLen() {
		return nil, binquant.QuantizationResult{}, fmt.Errorf("anisotropic quantizer: code length %d, want %d", len(codes), aq.recordLen())
	}
	code := codes[:aq.dim]
	offset := aq.dim
	lower := math.Float32frombits(binary.LittleEndian.Uint32(codes[offset:]))
	offset += 4
	upper := math.Float32frombits(binary.LittleEndian.Uint32(codes[offset:]))
	offset += 4
	additional := math.Float32frombits(binary.LittleEndian.Uint32(codes[offset:]))
	offset += 4
	sum := math.Float32frombits(binary.LittleEndian.Uint32(codes[offset:]))
	return code, binquant.QuantizationResult{
		LowerInterval:         lower,
		UpperInterval:         upper,
		AdditionalCorrection:  additional,
		QuantizedComponentSum: int(sum),
	}, nil
}

// Decode reconstructs an approximate vector from its code: each dimension's emitted level is
// mapped back to its evenly spaced position in [lowerInterval, upperInterval], then offset by
// the trained centroid.
func (aq *AnisotropicQuantizer) Decode(codes []byte) []float32 {
	code, res, err := aq.decodeEntry(codes)
	if err != nil {
		return nil
	}

	// Encode emits 4-bit query-width levels, whatever aq.bits is.
	nSteps := (1 << 4) - 1
	var step float32
	if nSteps > 0 {
		step = (res.UpperInterval - res.LowerInterval) / float32(nSteps)
	}

	vec := make([]float32, aq.dim)
	for d, c := range code {
		w := res.LowerInterval + step*float32(c)
		vec[d] = w + aq.centroid[d]
	}
	return vec
}

// distanceTable holds a quantized query, ready to be scored against any encoded residual.
type distanceTable struct {
	queryCode  []byte
	queryRes   binquant.QuantizationResult
	centroidDP float64
}

// ComputeDistanceTable quantizes query once, to be reused across AsymmetricDistance calls
// against every entry in a partition.
func (aq *AnisotropicQuantizer) ComputeDistanceTable(query []float32) interface{} {
	if aq.format == nil || len(query) != aq.dim {
		return nil
	}
	code, res, err := aq.format.QuantizeQueryVector(query, aq.centroid)
	if err != nil {
		return nil
	}
	var centroidDP float64
	for d := range aq.centroid {
		centroidDP += float64(query[d]) * float64(aq.centroid[d])
	}
	return &distanceTable{queryCode: code, queryRes: res, centroidDP: centroidDP}
}

// AsymmetricDistance scores codes against the query captured in distTableInterface. Lower is
// closer: the underlying similarity is negated so callers can keep sorting ascending.
func (aq *AnisotropicQuantizer) AsymmetricDistance(distTableInterface interface{}, codes []byte) float32 {
	dt, ok := distTableInterface.(*distanceTable)
	if !ok || dt == nil || aq.format == nil {
		return float32(math.MaxFloat32)
	}
	idxCode, idxRes, err := aq.decodeEntry(codes)
	if err != nil {
		return float32(math.MaxFloat32)
	}
	s, err := aq.format.ScorePair(dt.queryCode, dt.queryRes, idxCode, idxRes, dt.centroidDP)
	if err != nil {
		return float32(math.MaxFloat32)
	}
	return -s
}

// GetCompressionRatio returns the ratio of original float32 storage to encoded storage.
func (aq *AnisotropicQuantizer) GetCompressionRatio() float32 {
	originalBytes := float32(aq.dim * 4)
	return originalBytes / float32(aq.recordLen())
}

// GetBytesPerVector returns bytes per compressed vector.
func (aq *AnisotropicQuantizer) GetBytesPerVector() int {
	return aq.recordLen()
}

// Serialize serializes the quantizer's trained state: dimension, bits, and centroid.
func (aq *AnisotropicQuantizer) Serialize() ([]byte, error) {
	data := make([]byte, 8+4*aq.dim)
	offset := 0
	binary.LittleEndian.PutUint32(data[offset:], uint32(aq.dim))
	offset += 4
	binary.LittleEndian.PutUint32(data[offset:], uint32(aq.bits))
	offset += 4
	for _, c := range aq.centroid {
		binary.LittleEndian.PutUint32(data[offset:], math.Float32bits(c))
		offset += 4
	}
	return data, nil
}

// Deserialize restores the quantizer's trained state and rebuilds its format.
func (aq *AnisotropicQuantizer) Deserialize(data []byte) error {
	if len(data) < 8 {
		return fmt.Errorf("data too short")
	}
	offset := 0
	aq.dim = int(binary.LittleEndian.Uint32(data[offset:]))
	offset += 4
	aq.bits = int(binary.LittleEndian.Uint32(data[offset:]))
	offset += 4

	if len(data) < offset+4*aq.dim {
		return fmt.Errorf("unexpected end of data")
	}
	aq.centroid = make([]float32, aq.dim)
	for d := range aq.centroid {
		aq.centroid[d] = math.Float32frombits(binary.LittleEndian.Uint32(data[offset:]))
		offset += 4
	}

	format, err := binquant.NewFormat(binquant.Config{
		QueryBits: 4,
		IndexBits: aq.bits,
		Metric:    aq.metric,
		Quantizer: binquant.DefaultQuantizerConfig(),
	})
	if err != nil {
		return fmt.Errorf("anisotropic quantizer: %w", err)
	}
	aq.format = format
	return nil
}

// SymmetricDistance computes distance between two encoded vectors without access to either
// original. Lower is closer.
func (aq *AnisotropicQuantizer) SymmetricDistance(codes1, codes2 []byte) float32 {
	if aq.format == nil {
		return float32(math.MaxFloat32)
	}
	code1, res1, err := aq.decodeEntry(codes1)
	if err != nil {
		return float32(math.MaxFloat32)
	}
	code2, res2, err := aq.decodeEntry(codes2)
	if err != nil {
		return float32(math.MaxFloat32)
	}
	var centroidDP float64
	for _, c := range aq.centroid {
		centroidDP += float64(c) * float64(c)
	}
	s, err := aq.format.ScorePair(code1, res1, code2, res2, centroidDP)
	if err != nil {
		return float32(math.MaxFloat32)
	}
	return -s
}
