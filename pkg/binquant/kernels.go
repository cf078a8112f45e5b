package binquant

import "fmt"

// int1Bit computes the dot product of two unpacked {0,1} code vectors of equal length.
func int1Bit(q, d []byte) (int, error) {
	if len(q) != len(d) {
		return 0, fmt.Errorf("int1Bit: length %d vs %d: %w", len(q), len(d), ErrDimensionMismatch)
	}
	sum := 0
	for i := range q {
		sum += int(q[i]) * int(d[i])
	}
	return sum, nil
}

// int4Bit computes the dot product of a 4-bit query against a single unpacked {0,1} index
// vector, using the query's bit-plane transposition qT (length 4*len(d)): plane p contributes
// 2^p times the 1-bit dot product of that plane against d.
func int4Bit(qT, d []byte) (int, error) {
	dim := len(d)
	if len(qT) != 4*dim {
		return 0, fmt.Errorf("int4Bit: qT length %d, want %d: %w", len(qT), 4*dim, ErrDimensionMismatch)
	}
	sum := 0
	for p := 0; p < 4; p++ {
		plane, err := int1Bit(qT[p*dim:(p+1)*dim], d)
		if err != nil {
			return 0, fmt.Errorf("int4Bit: plane %d: %w", p, err)
		}
		sum += plane << uint(p)
	}
	return sum, nil
}

// batchInt1Bit computes the 1-bit dot product of q against each of n unpacked {0,1} index
// vectors packed contiguously in concatenated (n*d bytes).
func batchInt1Bit(q, concatenated []byte, n, d int) ([]int, error) {
	if len(q) != d {
		return nil, fmt.Errorf("batchInt1Bit: q length %d, want %d: %w", len(q), d, ErrDimensionMismatch)
	}
	if len(concatenated) != n*d {
		return nil, fmt.Errorf("batchInt1Bit: concatenated length %d, want %d: %w", len(concatenated), n*d, ErrDimensionMismatch)
	}
	out := make([]int, n)
	for i := 0; i < n; i++ {
		row := concatenated[i*d : i*d+d]
		sum := 0
		j := 0
		for ; j+8 <= d; j += 8 {
			sum += int(q[j])*int(row[j]) +
				int(q[j+1])*int(row[j+1]) +
				int(q[j+2])*int(row[j+2]) +
				int(q[j+3])*int(row[j+3]) +
				int(q[j+4])*int(row[j+4]) +
				int(q[j+5])*int(row[j+5]) +
				int(q[j+6])*int(row[j+6]) +
				int(q[j+7])*int(row[j+7])
		}
		for ; j < d; j++ {
			sum += int(q[j]) * int(row[j])
		}
		out[i] = sum
	}
	return out, nil
}

// batchInt4BitPacked computes, for each of n targets whose codes are stored 1-bit-packed
// (⌈d/8⌉ bytes each, concatenated in concatenatedPacked), the dot product against the
// unpacked 4-bit query qUnpacked (length d). Since a packed target bit is 1 exactly where the
// original {0,1} code was 1, and Σ_p 2^p·bit_p(q[i]) == q[i] for a 4-bit value, this sums
// qUnpacked[i] over the dimensions where the target's packed bit is set — equivalent to
// int4Bit per target without needing the target side transposed.
func batchInt4BitPacked(qUnpacked, concatenatedPacked []byte, n, d int) ([]int, error) {
	if len(qUnpacked) != d {
		return nil, fmt.Errorf("batchInt4BitPacked: qUnpacked length %d, want %d: %w", len(qUnpacked), d, ErrDimensionMismatch)
	}
	packedLen := (d + 7) / 8
	if len(concatenatedPacked) != n*packedLen {
		return nil, fmt.Errorf("batchInt4BitPacked: concatenatedPacked length %d, want %d: %w", len(concatenatedPacked), n*packedLen, ErrDimensionMismatch)
	}
	out := make([]int, n)
	for i := 0; i < n; i++ {
		row := concatenatedPacked[i*packedLen : (i+1)*packedLen]
		sum := 0
		for byteIdx, b := range row {
			if b == 0 {
				continue
			}
			base := byteIdx * 8
			for bitPos := 0; bitPos < 8; bitPos++ {
				dimIdx := base + bitPos
				if dimIdx >= d {
					break
				}
				if (b>>uint(7-bitPos))&1 == 1 {
					sum += int(qUnpacked[dimIdx])
				}
			}
		}
		out[i] = sum
	}
	return out, nil
}
