package binquant

import "fmt"

// searchBatchSize bounds how many corpus vectors are scored per batch kernel call during a
// full scan, keeping the per-call allocation small and predictable.
const searchBatchSize = 1000

// Config configures a Format: the query/index bit widths, similarity metric, and quantizer
// tuning.
type Config struct {
	QueryBits int
	IndexBits int
	Metric    Metric
	Quantizer QuantizerConfig
}

// DefaultConfig returns the recommended asymmetric configuration: 4-bit queries against
// 1-bit index codes, cosine similarity.
func DefaultConfig() Config {
	return Config{
		QueryBits: 4,
		IndexBits: 1,
		Metric:    MetricCosine,
		Quantizer: DefaultQuantizerConfig(),
	}
}

func (c Config) validate() error {
	if c.QueryBits != 1 && c.QueryBits != 4 {
		return fmt.Errorf("Config: QueryBits=%d, want 1 or 4: %w", c.QueryBits, ErrInvalidConfig)
	}
	if c.IndexBits < 1 || c.IndexBits > 8 {
		return fmt.Errorf("Config: IndexBits=%d out of [1,8]: %w", c.IndexBits, ErrInvalidConfig)
	}
	if !validMetric(c.Metric) {
		return fmt.Errorf("Config: metric %d: %w", c.Metric, ErrInvalidConfig)
	}
	return nil
}

// Format is the facade over quantization, scoring and search for one configuration.
type Format struct {
	cfg Config
	dim int
}

// NewFormat validates cfg and returns a ready-to-use Format.
func NewFormat(cfg Config) (*Format, error) {
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("NewFormat: %w", err)
	}
	return &Format{cfg: cfg}, nil
}

// QuantizeVectors builds a BinarizedValues corpus from vectors, computing a shared centroid
// and quantizing each vector relative to it. vectors must be non-empty, uniform in dimension,
// and free of non-finite components.
func (f *Format) QuantizeVectors(vectors [][]float32) (*BinarizedValues, error) {
	if len(vectors) == 0 {
		return nil, fmt.Errorf("QuantizeVectors: %w", ErrEmptyCorpus)
	}
	dim := len(vectors[0])
	prepared := make([][]float32, len(vectors))
	for i, v := range vectors {
		if len(v) != dim {
			return nil, fmt.Errorf("QuantizeVectors: vector %d has length %d, want %d: %w", i, len(v), dim, ErrDimensionMismatch)
		}
		for j, x := range v {
			if !isFinite(x) {
				return nil, fmt.Errorf("QuantizeVectors: vector %d component %d not finite: %w", i, j, ErrInvalidComponent)
			}
		}
		if f.cfg.Metric == MetricCosine {
			prepared[i] = normalize(v)
		} else {
			prepared[i] = v
		}
	}

	centroid, err := computeCentroid(prepared)
	if err != nil {
		return nil, fmt.Errorf("QuantizeVectors: %w", err)
	}

	n := len(prepared)
	packedLen := (dim + 7) / 8
	canonical := f.cfg.IndexBits == 1
	packedArena := make([]byte, n*packedLen)
	unpackedArena := make([]byte, n*dim)
	corrections := make([]QuantizationResult, n)

	for i, v := range prepared {
		code := unpackedArena[i*dim : (i+1)*dim]
		res, err := scalarQuantize(v, code, f.cfg.IndexBits, centroid, f.cfg.Quantizer, f.cfg.Metric)
		if err != nil {
			return nil, fmt.Errorf("QuantizeVectors: vector %d: %w", i, err)
		}
		corrections[i] = res
		if canonical {
			if err := packAsBinary(code, packedArena[i*packedLen:(i+1)*packedLen]); err != nil {
				return nil, fmt.Errorf("QuantizeVectors: vector %d: %w", i, err)
			}
		}
	}

	if !canonical {
		// IndexBits != 1 is a non-canonical extension: packedArena stays empty, raw codes in
		// unpackedArena are the arena of record.
		packedArena = nil
	}
	return newBinarizedValues(dim, n, packedArena, unpackedArena, corrections, centroid), nil
}

// QuantizeQueryVector quantizes a query vector to the format's QueryBits relative to centroid.
func (f *Format) QuantizeQueryVector(q, centroid []float32) ([]byte, QuantizationResult, error) {
	dim := len(q)
	if len(centroid) != dim {
		return nil, QuantizationResult{}, fmt.Errorf("QuantizeQueryVector: %w", ErrDimensionMismatch)
	}
	prepared := q
	if f.cfg.Metric == MetricCosine {
		prepared = normalize(q)
	}
	code := make([]byte, dim)
	res, err := scalarQuantize(prepared, code, f.cfg.QueryBits, centroid, f.cfg.Quantizer, f.cfg.Metric)
	if err != nil {
		return nil, QuantizationResult{}, fmt.Errorf("QuantizeQueryVector: %w", err)
	}
	return code, res, nil
}

// ScorePair computes the asymmetric similarity between an already-quantized query and an
// already-quantized index vector, given their unpacked ({0, 2^bits-1}) codes and corrective
// terms. Used by callers that maintain their own code storage instead of a BinarizedValues
// corpus (e.g. an inverted-list index keyed by partition).
func (f *Format) ScorePair(queryCode []byte, queryRes QuantizationResult, indexCode []byte, indexRes QuantizationResult, centroidDP float64) (float32, error) {
	dim := len(queryCode)
	if len(indexCode) != dim {
		return 0, fmt.Errorf("ScorePair: query code length %d, index code length %d: %w", dim, len(indexCode), ErrDimensionMismatch)
	}
	var qcDist int
	var err error
	if f.cfg.QueryBits == 4 {
		qT := make([]byte, 4*dim)
		if err := transposeHalfByte(queryCode, qT); err != nil {
			return 0, fmt.Errorf("ScorePair: %w", err)
		}
		qcDist, err = int4Bit(qT, indexCode)
	} else {
		qcDist, err = int1Bit(queryCode, indexCode)
	}
	if err != nil {
		return 0, fmt.Errorf("ScorePair: %w", err)
	}
	return score(f.cfg.Metric, f.cfg.QueryBits, queryRes, indexRes, qcDist, dim, centroidDP)
}

func (f *Format) computeBatchDot(queryCode []byte, corpus *BinarizedValues, start, end int) ([]int, error) {
	n := end - start
	dim := corpus.dim
	if f.cfg.QueryBits == 4 && corpus.packedArena != nil {
		return batchInt4BitPacked(queryCode, corpus.packedArena[start*corpus.packedLen:end*corpus.packedLen], n, dim)
	}
	if f.cfg.QueryBits == 1 && corpus.unpackedArena != nil {
		return batchInt1Bit(queryCode, corpus.unpackedArena[start*dim:end*dim], n, dim)
	}
	out := make([]int, n)
	for i := 0; i < n; i++ {
		target, err := corpus.GetUnpackedVector(start + i)
		if err != nil {
			return nil, fmt.Errorf("computeBatchDot: %w", err)
		}
		var v int
		var err2 error
		if f.cfg.QueryBits == 4 {
			qT := make([]byte, 4*dim)
			if err := transposeHalfByte(queryCode, qT); err != nil {
				return nil, fmt.Errorf("computeBatchDot: %w", err)
			}
			v, err2 = int4Bit(qT, target)
		} else {
			v, err2 = int1Bit(queryCode, target)
		}
		if err2 != nil {
			return nil, fmt.Errorf("computeBatchDot: %w", err2)
		}
		out[i] = v
	}
	return out, nil
}

// SearchNearestNeighbors quantizes query and scores it against every vector in corpus,
// returning the k best matches under the format's configured metric. k<=0 returns no results.
func (f *Format) SearchNearestNeighbors(query []float32, corpus *BinarizedValues, k int) ([]SearchResult, error) {
	if len(query) != corpus.dim {
		return nil, fmt.Errorf("SearchNearestNeighbors: query length %d, corpus dimension %d: %w", len(query), corpus.dim, ErrDimensionMismatch)
	}
	if k <= 0 {
		return nil, nil
	}

	preparedQuery := query
	if f.cfg.Metric == MetricCosine {
		preparedQuery = normalize(query)
	}
	queryCode, queryRes, err := f.QuantizeQueryVector(query, corpus.centroid)
	if err != nil {
		return nil, fmt.Errorf("SearchNearestNeighbors: %w", err)
	}
	centroidDP := corpus.GetCentroidDP(preparedQuery)

	tk := newTopK(k)
	n := corpus.Size()
	for start := 0; start < n; start += searchBatchSize {
		end := start + searchBatchSize
		if end > n {
			end = n
		}
		qcDist, err := f.computeBatchDot(queryCode, corpus, start, end)
		if err != nil {
			return nil, fmt.Errorf("SearchNearestNeighbors: batch [%d,%d): %w", start, end, err)
		}
		for i, ord := 0, start; ord < end; i, ord = i+1, ord+1 {
			idxRes, err := corpus.GetCorrectiveTerms(ord)
			if err != nil {
				return nil, fmt.Errorf("SearchNearestNeighbors: %w", err)
			}
			s, err := score(f.cfg.Metric, f.cfg.QueryBits, queryRes, idxRes, qcDist[i], corpus.dim, centroidDP)
			if err != nil {
				return nil, fmt.Errorf("SearchNearestNeighbors: %w", err)
			}
			tk.offer(ord, s)
		}
	}
	return tk.drainDescending(), nil
}
