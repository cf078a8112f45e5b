package binquant

import "errors"

// Sentinel errors for the binary quantization engine. Wrap with fmt.Errorf("...: %w", ErrX)
// so callers can errors.Is against a stable kind instead of matching message strings.
var (
	// ErrDimensionMismatch signals vector lengths that disagree with each other or the corpus.
	ErrDimensionMismatch = errors.New("binquant: dimension mismatch")

	// ErrInvalidConfig signals bits outside [1,8], queryBits outside {1,4}, or an unknown metric.
	ErrInvalidConfig = errors.New("binquant: invalid configuration")

	// ErrInvalidComponent signals a NaN or infinite vector component.
	ErrInvalidComponent = errors.New("binquant: invalid (non-finite) component")

	// ErrEmptyCorpus signals zero input vectors where at least one is required.
	ErrEmptyCorpus = errors.New("binquant: empty corpus")

	// ErrInvalidOrdinal signals an out-of-range ordinal passed to a corpus accessor.
	ErrInvalidOrdinal = errors.New("binquant: invalid ordinal")

	// ErrInvalidCode signals a packed-binary input outside {0,1} or a 4-bit value outside {0,15}.
	ErrInvalidCode = errors.New("binquant: invalid code value")
)
