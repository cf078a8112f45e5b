package binquant

import (
	"math/rand"
	"testing"
)

func TestInt1BitMatchesDirectSum(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	d := 64
	q := make([]byte, d)
	target := make([]byte, d)
	for i := 0; i < d; i++ {
		q[i] = byte(rng.Intn(2))
		target[i] = byte(rng.Intn(2))
	}
	got, err := int1Bit(q, target)
	if err != nil {
		t.Fatalf("int1Bit: %v", err)
	}
	want := 0
	for i := range q {
		want += int(q[i]) * int(target[i])
	}
	if got != want {
		t.Errorf("got %d, want %d", got, want)
	}
}

func TestInt4BitMatchesOriginalCodeDot(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	d := 32
	qCode := make([]byte, d)
	target := make([]byte, d)
	for i := 0; i < d; i++ {
		qCode[i] = byte(rng.Intn(16))
		target[i] = byte(rng.Intn(2))
	}
	qT := make([]byte, 4*d)
	if err := transposeHalfByte(qCode, qT); err != nil {
		t.Fatalf("transposeHalfByte: %v", err)
	}
	got, err := int4Bit(qT, target)
	if err != nil {
		t.Fatalf("int4Bit: %v", err)
	}
	want := 0
	for i := range qCode {
		want += int(qCode[i]) * int(target[i])
	}
	if got != want {
		t.Errorf("got %d, want %d", got, want)
	}
}

func TestBatchInt1BitMatchesSingle(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	d, n := 17, 5
	q := make([]byte, d)
	for i := range q {
		q[i] = byte(rng.Intn(2))
	}
	concat := make([]byte, n*d)
	for i := range concat {
		concat[i] = byte(rng.Intn(2))
	}
	got, err := batchInt1Bit(q, concat, n, d)
	if err != nil {
		t.Fatalf("batchInt1Bit: %v", err)
	}
	for i := 0; i < n; i++ {
		want, err := int1Bit(q, concat[i*d:(i+1)*d])
		if err != nil {
			t.Fatalf("int1Bit: %v", err)
		}
		if got[i] != want {
			t.Errorf("target %d: got %d, want %d", i, got[i], want)
		}
	}
}

func TestBatchInt4BitPackedMatchesInt4Bit(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	d, n := 20, 4
	qCode := make([]byte, d)
	for i := range qCode {
		qCode[i] = byte(rng.Intn(16))
	}
	qT := make([]byte, 4*d)
	if err := transposeHalfByte(qCode, qT); err != nil {
		t.Fatalf("transposeHalfByte: %v", err)
	}

	packedLen := (d + 7) / 8
	concatenatedPacked := make([]byte, n*packedLen)
	targets := make([][]byte, n)
	for i := 0; i < n; i++ {
		targets[i] = make([]byte, d)
		for j := range targets[i] {
			targets[i][j] = byte(rng.Intn(2))
		}
		if err := packAsBinary(targets[i], concatenatedPacked[i*packedLen:(i+1)*packedLen]); err != nil {
			t.Fatalf("packAsBinary: %v", err)
		}
	}

	got, err := batchInt4BitPacked(qCode, concatenatedPacked, n, d)
	if err != nil {
		t.Fatalf("batchInt4BitPacked: %v", err)
	}
	for i := 0; i < n; i++ {
		want, err := int4Bit(qT, targets[i])
		if err != nil {
			t.Fatalf("int4Bit: %v", err)
		}
		if got[i] != want {
			t.Errorf("target %d: got %d, want %d", i, got[i], want)
		}
	}
}
