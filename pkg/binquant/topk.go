package binquant

import (
	"container/heap"
	"fmt"
	"sort"
)

// SearchResult is one ranked hit: Ordinal indexes into the corpus that produced it, Score is
// higher-is-better similarity (callers that need a distance must negate or invert it). The
// one exception is SearchWithOversample under MetricEuclidean, whose Score is the exact L2
// distance (lower is better).
type SearchResult struct {
	Ordinal int
	Score   float32
}

// scoredItem is one entry in the bounded top-k heap.
type scoredItem struct {
	ordinal int
	score   float32
}

// scoreMinHeap is a min-heap of scoredItem (smallest score at the root), so the weakest
// admitted candidate is always the cheapest one to evict.
type scoreMinHeap []scoredItem

func (h scoreMinHeap) Len() int            { return len(h) }
func (h scoreMinHeap) Less(i, j int) bool  { return h[i].score < h[j].score }
func (h scoreMinHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *scoreMinHeap) Push(x interface{}) { *h = append(*h, x.(scoredItem)) }
func (h *scoreMinHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// topK bounds a running set of the k best-scoring candidates seen so far.
type topK struct {
	k int
	h scoreMinHeap
}

func newTopK(k int) *topK {
	return &topK{k: k, h: make(scoreMinHeap, 0, k)}
}

// offer admits (ordinal, score) if the set has fewer than k members, or if score beats the
// current weakest member.
func (t *topK) offer(ordinal int, score float32) {
	if t.k <= 0 {
		return
	}
	if len(t.h) < t.k {
		heap.Push(&t.h, scoredItem{ordinal: ordinal, score: score})
		return
	}
	if score > t.h[0].score {
		t.h[0] = scoredItem{ordinal: ordinal, score: score}
		heap.Fix(&t.h, 0)
	}
}

// drainDescending returns the admitted candidates sorted by score descending, breaking ties
// by ordinal ascending for a deterministic order independent of heap internals.
func (t *topK) drainDescending() []SearchResult {
	out := make([]SearchResult, len(t.h))
	for i, it := range t.h {
		out[i] = SearchResult{Ordinal: it.ordinal, Score: it.score}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Ordinal < out[j].Ordinal
	})
	return out
}

// SearchWithOversample retrieves k*factor candidates using the quantized corpus, then
// re-scores each against its exact float vector in originals and truncates back to k. For
// MetricEuclidean, originalScore returns a distance, so the re-ranked order is ascending;
// the other metrics return similarities and are re-ranked descending.
func SearchWithOversample(f *Format, query []float32, corpus *BinarizedValues, originals [][]float32, k, factor int) ([]SearchResult, error) {
	if factor < 1 {
		factor = 1
	}
	candidates, err := f.SearchNearestNeighbors(query, corpus, k*factor)
	if err != nil {
		return nil, fmt.Errorf("SearchWithOversample: %w", err)
	}
	rescored := make([]SearchResult, 0, len(candidates))
	for _, c := range candidates {
		if c.Ordinal < 0 || c.Ordinal >= len(originals) {
			return nil, fmt.Errorf("SearchWithOversample: ordinal %d out of range: %w", c.Ordinal, ErrInvalidOrdinal)
		}
		s, err := originalScore(f.cfg.Metric, query, originals[c.Ordinal])
		if err != nil {
			return nil, fmt.Errorf("SearchWithOversample: %w", err)
		}
		rescored = append(rescored, SearchResult{Ordinal: c.Ordinal, Score: s})
	}
	if f.cfg.Metric == MetricEuclidean {
		sort.Slice(rescored, func(i, j int) bool { return rescored[i].Score < rescored[j].Score })
	} else {
		sort.Slice(rescored, func(i, j int) bool { return rescored[i].Score > rescored[j].Score })
	}
	if len(rescored) > k {
		rescored = rescored[:k]
	}
	return rescored, nil
}
