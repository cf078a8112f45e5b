package binquant

import (
	"encoding/binary"
	"fmt"
	"math"
)

// headerSize is the fixed byte length of the format's metadata header, ahead of the
// centroid and per-vector records.
const headerSize = 4 + 4 + 4 + 4 + 8 + 8 + 4 // fieldNumber, encodingOrdinal, similarityOrdinal, dim, offset, length, count

// recordLen returns the byte length of one packed vector record: packedLen code bytes
// followed by four float32 corrective scalars.
func recordLen(packedLen int) int {
	return packedLen + 4*4
}

// Serialize encodes the corpus into the flat on-disk layout: [header][centroid][centroidSelfDot]
// [record]*n, where each record is the vector's packed code followed by
// (lowerInterval, upperInterval, additionalCorrection, quantizedComponentSum).
// fieldNumber identifies which indexed field this corpus belongs to, for corpora storing more
// than one field's vectors in the same file set.
func (b *BinarizedValues) Serialize(fieldNumber uint32, metric Metric) ([]byte, error) {
	if !validMetric(metric) {
		return nil, fmt.Errorf("Serialize: metric %d: %w", metric, ErrInvalidConfig)
	}
	if b.packedArena == nil {
		return nil, fmt.Errorf("Serialize: corpus has no packed codes (IndexBits != 1 is not serializable): %w", ErrInvalidConfig)
	}

	centroidBytes := 4 * b.dim
	preambleLen := headerSize + centroidBytes + 4
	recLen := recordLen(b.packedLen)
	total := preambleLen + recLen*b.n

	data := make([]byte, total)
	offset := 0

	binary.LittleEndian.PutUint32(data[offset:], fieldNumber)
	offset += 4
	binary.LittleEndian.PutUint32(data[offset:], uint32(b.packedLen*8)) // vector encoding ordinal: bits per code
	offset += 4
	binary.LittleEndian.PutUint32(data[offset:], uint32(metric))
	offset += 4
	binary.LittleEndian.PutUint32(data[offset:], uint32(b.dim))
	offset += 4
	vectorDataOffset := uint64(preambleLen)
	binary.LittleEndian.PutUint64(data[offset:], vectorDataOffset)
	offset += 8
	vectorDataLength := uint64(recLen * b.n)
	binary.LittleEndian.PutUint64(data[offset:], vectorDataLength)
	offset += 8
	binary.LittleEndian.PutUint32(data[offset:], uint32(b.n))
	offset += 4

	for _, c := range b.centroid {
		binary.LittleEndian.PutUint32(data[offset:], math.Float32bits(c))
		offset += 4
	}
	centroidSelfDot := dot(b.centroid, b.centroid)
	binary.LittleEndian.PutUint32(data[offset:], math.Float32bits(centroidSelfDot))
	offset += 4

	if offset != preambleLen {
		return nil, fmt.Errorf("Serialize: internal offset mismatch %d != %d", offset, preambleLen)
	}

	for ord := 0; ord < b.n; ord++ {
		packed := b.packedArena[ord*b.packedLen : (ord+1)*b.packedLen]
		copy(data[offset:], packed)
		offset += b.packedLen

		c := b.corrections[ord]
		binary.LittleEndian.PutUint32(data[offset:], math.Float32bits(c.LowerInterval))
		offset += 4
		binary.LittleEndian.PutUint32(data[offset:], math.Float32bits(c.UpperInterval))
		offset += 4
		binary.LittleEndian.PutUint32(data[offset:], math.Float32bits(c.AdditionalCorrection))
		offset += 4
		binary.LittleEndian.PutUint32(data[offset:], math.Float32bits(float32(c.QuantizedComponentSum)))
		offset += 4
	}

	return data, nil
}

// SerializedHeader is the parsed form of a serialized corpus's metadata, returned by
// Deserialize alongside the reconstructed BinarizedValues.
type SerializedHeader struct {
	FieldNumber           uint32
	VectorEncodingOrdinal uint32
	SimilarityOrdinal     uint32
	Dimension             uint32
	VectorDataOffset      uint64
	VectorDataLength      uint64
	VectorCount           uint32
}

// Deserialize reconstructs a BinarizedValues from the layout written by Serialize. The
// returned corpus holds no in-process unpacked arena; GetUnpackedVector reconstructs codes
// lazily from the packed arena.
func Deserialize(data []byte) (*BinarizedValues, SerializedHeader, error) {
	if len(data) < headerSize {
		return nil, SerializedHeader{}, fmt.Errorf("Deserialize: data too short: %w", ErrInvalidConfig)
	}

	offset := 0
	var h SerializedHeader
	h.FieldNumber = binary.LittleEndian.Uint32(data[offset:])
	offset += 4
	h.VectorEncodingOrdinal = binary.LittleEndian.Uint32(data[offset:])
	offset += 4
	h.SimilarityOrdinal = binary.LittleEndian.Uint32(data[offset:])
	offset += 4
	h.Dimension = binary.LittleEndian.Uint32(data[offset:])
	offset += 4
	h.VectorDataOffset = binary.LittleEndian.Uint64(data[offset:])
	offset += 8
	h.VectorDataLength = binary.LittleEndian.Uint64(data[offset:])
	offset += 8
	h.VectorCount = binary.LittleEndian.Uint32(data[offset:])
	offset += 4

	dim := int(h.Dimension)
	if offset+4*dim+4 > len(data) {
		return nil, SerializedHeader{}, fmt.Errorf("Deserialize: truncated centroid: %w", ErrInvalidConfig)
	}
	centroid := make([]float32, dim)
	for i := range centroid {
		centroid[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[offset:]))
		offset += 4
	}
	offset += 4 // centroidSelfDot, recomputed on demand rather than trusted from disk

	if int(h.VectorDataOffset) != offset {
		return nil, SerializedHeader{}, fmt.Errorf("Deserialize: vector data offset %d != expected %d: %w", h.VectorDataOffset, offset, ErrInvalidConfig)
	}

	packedLen := (dim + 7) / 8
	n := int(h.VectorCount)
	recLen := recordLen(packedLen)
	if uint64(recLen*n) != h.VectorDataLength {
		return nil, SerializedHeader{}, fmt.Errorf("Deserialize: vector data length %d != expected %d: %w", h.VectorDataLength, recLen*n, ErrInvalidConfig)
	}
	if offset+recLen*n > len(data) {
		return nil, SerializedHeader{}, fmt.Errorf("Deserialize: truncated vector records: %w", ErrInvalidConfig)
	}

	packedArena := make([]byte, n*packedLen)
	corrections := make([]QuantizationResult, n)
	for ord := 0; ord < n; ord++ {
		copy(packedArena[ord*packedLen:(ord+1)*packedLen], data[offset:offset+packedLen])
		offset += packedLen

		a := math.Float32frombits(binary.LittleEndian.Uint32(data[offset:]))
		offset += 4
		bnd := math.Float32frombits(binary.LittleEndian.Uint32(data[offset:]))
		offset += 4
		ac := math.Float32frombits(binary.LittleEndian.Uint32(data[offset:]))
		offset += 4
		sum := math.Float32frombits(binary.LittleEndian.Uint32(data[offset:]))
		offset += 4

		corrections[ord] = QuantizationResult{
			LowerInterval:         a,
			UpperInterval:         bnd,
			AdditionalCorrection:  ac,
			QuantizedComponentSum: int(sum),
		}
	}

	return newBinarizedValues(dim, n, packedArena, nil, corrections, centroid), h, nil
}
