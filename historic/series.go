package historic

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"time"
)

// Sample is one row of historic data.
type Sample struct {
	Timestamp time.Time      `json:"timestamp"`
	DateTime  string         `json:"datetime,omitempty"`
	Value     any            `json:"value"`
	Coverage  string         `json:"coverage,omitempty"`
	Channels  map[string]any `json:"channels,omitempty"`
}

var metaKeys = map[string]bool{
	"datetime":     true,
	"datetime_raw": true,
	"coverage":     true,
	"coverage_raw": true,
}

// PRTG's datetime_raw is an OLE automation date: days since 1899-12-30.
var oleEpoch = time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)

type historicResponse struct {
	Version  string            `json:"prtg-version"`
	TreeSize int               `json:"treesize"`
	HistData []json.RawMessage `json:"histdata"`
}

// ParseSeries parses a historicdata.json body. Value holds the first
// channel in document order and Channels holds all of them.
func ParseSeries(body []byte) ([]Sample, error) {
	var resp historicResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse historic data: %w", err)
	}

	samples := make([]Sample, 0, len(resp.HistData))
	for i, raw := range resp.HistData {
		s, err := parseSample(raw)
		if err != nil {
			return nil, fmt.Errorf("failed to parse historic data row %d: %w", i, err)
		}
		samples = append(samples, s)
	}
	return samples, nil
}

func parseSample(raw json.RawMessage) (Sample, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	if tok, err := dec.Token(); err != nil || tok != json.Delim('{') {
		return Sample{}, fmt.Errorf("expected object")
	}

	s := Sample{Channels: map[string]any{}}
	first := true
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return Sample{}, err
		}
		key, _ := tok.(string)

		var value any
		if err := dec.Decode(&value); err != nil {
			return Sample{}, err
		}

		switch key {
		case "datetime":
			s.DateTime, _ = value.(string)
		case "datetime_raw":
			if n, ok := value.(json.Number); ok {
				if f, err := n.Float64(); err == nil {
					s.Timestamp = fromOLE(f)
				}
			}
		case "coverage":
			s.Coverage = fmt.Sprint(value)
		}
		if metaKeys[key] {
			continue
		}

		s.Channels[key] = value
		if first {
			s.Value = value
			first = false
		}
	}
	return s, nil
}

func fromOLE(days float64) time.Time {
	whole, frac := math.Modf(days)
	return oleEpoch.AddDate(0, 0, int(whole)).Add(time.Duration(frac * float64(24*time.Hour))).Round(time.Second)
}
