package classifier

import "fmt"

// Side selects where padding or truncation is applied.
type Side string

const (
	// Pre applies at the start of the sequence.
	Pre Side = "pre"
	// Post applies at the end of the sequence.
	Post Side = "post"
)

// Pad returns seq fitted to exactly maxLen entries, filling with zeros.
func Pad(seq []int, maxLen int, padding, truncating Side) ([]int, error) {
	if maxLen <= 0 {
		return nil, fmt.Errorf("maxLen must be positive, got %d", maxLen)
	}
	if padding != Pre && padding != Post {
		return nil, fmt.Errorf("invalid padding %q", padding)
	}
	if truncating != Pre && truncating != Post {
		return nil, fmt.Errorf("invalid truncating %q", truncating)
	}

	trunc := seq
	if len(seq) > maxLen {
		if truncating == Pre {
			trunc = seq[len(seq)-maxLen:]
		} else {
			trunc = seq[:maxLen]
		}
	}

	out := make([]int, maxLen)
	if padding == Post {
		copy(out, trunc)
	} else {
		copy(out[maxLen-len(trunc):], trunc)
	}
	return out, nil
}
