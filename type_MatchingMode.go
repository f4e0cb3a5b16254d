package capgains

import "fmt"

// MatchingMode defines how a disposal picks the lot it consumes.
type MatchingMode int

const (
	// FIFO (First-In, First-Out) always consumes the oldest open lot first.
	FIFO MatchingMode = iota
	// TaxOptimized realizes the largest loss first, and otherwise the smallest gain.
	TaxOptimized
)

func (m MatchingMode) String() string {
	switch m {
	case FIFO:
		return "fifo"
	case TaxOptimized:
		return "tax-optimized"
	default:
		return "unknown"
	}
}

// ParseMatchingMode parses a string into a MatchingMode.
func ParseMatchingMode(s string) (MatchingMode, error) {
	switch s {
	case "fifo":
		return FIFO, nil
	case "tax-optimized", "optimized":
		return TaxOptimized, nil
	default:
		return 0, fmt.Errorf("unknown matching mode: %q", s)
	}
}
