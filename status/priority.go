package status

import (
	"strconv"
	"strings"

	"github.com/s0up4200/prtgctl/apierr"
)

// Priority is an object priority from 1 (lowest) to 5 (highest).
type Priority int

const (
	MinPriority Priority = 1
	MaxPriority Priority = 5
)

// ParsePriority validates a user-supplied priority.
func ParsePriority(value string) (Priority, error) {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || n < int(MinPriority) || n > int(MaxPriority) {
		return 0, apierr.New(apierr.Validation, "invalid priority %q (must be an integer from 1 to 5)", value)
	}
	return Priority(n), nil
}

// DecodePriority reads a priority from the server, clamping out-of-range
// values. PRTG renders priority as stars in the non-raw column, so star
// strings are counted. Unparseable values yield 0.
func DecodePriority(raw any) Priority {
	if s, ok := raw.(string); ok {
		s = strings.TrimSpace(s)
		if s != "" && strings.Trim(s, "*") == "" {
			return clamp(len(s))
		}
	}
	n, ok := rawInt(raw)
	if !ok {
		return 0
	}
	return clamp(n)
}

func clamp(n int) Priority {
	switch {
	case n < int(MinPriority):
		return MinPriority
	case n > int(MaxPriority):
		return MaxPriority
	}
	return Priority(n)
}

// String returns the wire form of the priority
func (p Priority) String() string {
	return strconv.Itoa(int(p))
}
