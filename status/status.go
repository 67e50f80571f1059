// Package status maps PRTG's raw status and priority codes to stable
// semantic values and back.
package status

import (
	"fmt"
	"strings"

	"github.com/s0up4200/prtgctl/apierr"
)

// Status is the semantic state of a monitored object.
type Status int

const (
	Unknown Status = iota
	Up
	Warning
	Down
	Paused
	Unusual
)

// All lists every status in display order.
var All = []Status{Up, Warning, Down, Paused, Unusual, Unknown}

var rawCodes = map[Status]int{
	Unknown: 1,
	Up:      3,
	Warning: 4,
	Down:    5,
	Paused:  7,
	Unusual: 10,
}

var byRaw = func() map[int]Status {
	m := make(map[int]Status, len(rawCodes))
	for s, code := range rawCodes {
		m[code] = s
	}
	return m
}()

// String returns the display name of the status
func (s Status) String() string {
	switch s {
	case Up:
		return "Up"
	case Warning:
		return "Warning"
	case Down:
		return "Down"
	case Paused:
		return "Paused"
	case Unusual:
		return "Unusual"
	default:
		return "Unknown"
	}
}

// MarshalText encodes the status as its lowercase name.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(strings.ToLower(s.String())), nil
}

// UnmarshalText parses a status name.
func (s *Status) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Parse converts a user-supplied status name into a Status.
func Parse(name string) (Status, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "up":
		return Up, nil
	case "warning", "warn":
		return Warning, nil
	case "down":
		return Down, nil
	case "paused":
		return Paused, nil
	case "unusual":
		return Unusual, nil
	case "unknown":
		return Unknown, nil
	}
	return Unknown, apierr.New(apierr.Validation, "invalid status %q (must be one of %s)", name, names())
}

func names() string {
	parts := make([]string, 0, len(All))
	for _, s := range All {
		parts = append(parts, strings.ToLower(s.String()))
	}
	return strings.Join(parts, ", ")
}

// ParseList parses every name in order, failing on the first invalid one.
func ParseList(values []string) ([]Status, error) {
	out := make([]Status, 0, len(values))
	for _, v := range values {
		s, err := Parse(v)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// RawCode returns the wire code of the status.
func (s Status) RawCode() int {
	if code, ok := rawCodes[s]; ok {
		return code
	}
	return rawCodes[Unknown]
}

// GoString helps test failure output
func (s Status) GoString() string {
	return fmt.Sprintf("status.%s", s)
}
