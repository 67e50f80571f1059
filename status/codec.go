package status

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
)

// Codec converts between semantic statuses and wire codes. Unmapped codes
// decode to Unknown and are logged at debug level.
type Codec struct {
	logger zerolog.Logger
}

// NewCodec creates a codec that reports unmapped codes to logger.
func NewCodec(logger zerolog.Logger) *Codec {
	return &Codec{logger: logger}
}

// Encode returns the raw code for s.
func (c *Codec) Encode(s Status) int {
	return s.RawCode()
}

// EncodeString returns the raw code for s as sent in query parameters.
func (c *Codec) EncodeString(s Status) string {
	return strconv.Itoa(c.Encode(s))
}

// Decode maps a raw code, numeric or string, to a Status. It never fails.
func (c *Codec) Decode(raw any) Status {
	s, ok := Lookup(raw)
	if !ok {
		c.logger.Debug().Interface("raw", raw).Msg("Unrecognized status code, using Unknown")
	}
	return s
}

// Lookup maps a raw code to a Status and reports whether it was recognized.
func Lookup(raw any) (Status, bool) {
	code, ok := rawInt(raw)
	if !ok {
		return Unknown, false
	}
	s, ok := byRaw[code]
	if !ok {
		return Unknown, false
	}
	return s, true
}

// rawInt extracts an integer from the wire representations PRTG uses.
func rawInt(raw any) (int, bool) {
	switch v := raw.(type) {
	case int:
		return v, true
	case int32:
		return int(v), true
	case int64:
		return int(v), true
	case float32:
		return floatInt(float64(v))
	case float64:
		return floatInt(v)
	case json.Number:
		return rawInt(string(v))
	case string:
		s := strings.TrimSpace(v)
		if n, err := strconv.Atoi(s); err == nil {
			return n, true
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return floatInt(f)
		}
	}
	return 0, false
}

func floatInt(f float64) (int, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	return int(f), true
}
