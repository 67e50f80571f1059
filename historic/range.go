package historic

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/s0up4200/prtgctl/apierr"
)

// DateLayout is the date format used on the wire.
const DateLayout = "2006-01-02-15-04-05"

const day = 24 * time.Hour

// Span ceilings enforced before a request is sent.
const (
	MaxRawSpan      = 40 * day
	MaxAveragedSpan = 500 * day
)

// Interval is the server-side averaging interval in seconds.
type Interval int

const (
	IntervalRaw    Interval = 0
	IntervalMinute Interval = 60
	IntervalHour   Interval = 3600
	IntervalDay    Interval = 86400
)

// ParseInterval accepts raw, 1m, 1h and 1d.
func ParseInterval(value string) (Interval, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "raw", "0":
		return IntervalRaw, nil
	case "1m", "60":
		return IntervalMinute, nil
	case "1h", "3600":
		return IntervalHour, nil
	case "1d", "86400":
		return IntervalDay, nil
	}
	return 0, apierr.New(apierr.Validation, "invalid interval %q (must be raw, 1m, 1h or 1d)", value)
}

// String returns the flag form of the interval
func (i Interval) String() string {
	switch i {
	case IntervalRaw:
		return "raw"
	case IntervalMinute:
		return "1m"
	case IntervalHour:
		return "1h"
	case IntervalDay:
		return "1d"
	}
	return strconv.Itoa(int(i))
}

// MaxSpan returns the longest range allowed for the interval.
func (i Interval) MaxSpan() time.Duration {
	if i == IntervalRaw {
		return MaxRawSpan
	}
	return MaxAveragedSpan
}

// Format selects the historic data endpoint.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// ParseFormat accepts csv and json.
func ParseFormat(value string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(value))); f {
	case FormatCSV, FormatJSON:
		return f, nil
	}
	return "", apierr.New(apierr.Validation, "invalid historic data format %q (must be csv or json)", value)
}

// Range describes a historic data request before validation.
type Range struct {
	SensorID string
	Start    time.Time
	End      time.Time
	Interval Interval
	Format   Format
}

// WireParams are validated request parameters ready to send.
type WireParams struct {
	SensorID string
	SDate    string
	EDate    string
	Avg      int
	Format   Format
}

// Endpoint returns the API path relative to the server root.
func (p WireParams) Endpoint() string {
	return "api/historicdata." + string(p.Format)
}

// Values returns the query parameters.
func (p WireParams) Values() url.Values {
	v := url.Values{}
	v.Set("id", p.SensorID)
	v.Set("sdate", p.SDate)
	v.Set("edate", p.EDate)
	v.Set("avg", strconv.Itoa(p.Avg))
	return v
}

// Prepare validates r and converts it to wire parameters. Nothing is sent.
func Prepare(r Range) (WireParams, error) {
	id := strings.TrimSpace(r.SensorID)
	if id == "" {
		return WireParams{}, apierr.New(apierr.Validation, "sensor id is required")
	}
	if r.Format == "" {
		r.Format = FormatCSV
	}
	if _, err := ParseFormat(string(r.Format)); err != nil {
		return WireParams{}, err
	}
	if _, err := ParseInterval(strconv.Itoa(int(r.Interval))); err != nil {
		return WireParams{}, err
	}
	if !r.Start.Before(r.End) {
		return WireParams{}, apierr.New(apierr.Validation,
			"start date %s must be before end date %s", r.Start.Format(DateLayout), r.End.Format(DateLayout))
	}

	// calendar span, so a daylight saving change does not add or remove an hour
	span := wallClock(r.End).Sub(wallClock(r.Start))
	if limit := r.Interval.MaxSpan(); span > limit {
		return WireParams{}, apierr.New(apierr.Validation,
			"date range of %s exceeds the %d-day maximum for interval %s",
			formatSpan(span), int(limit/day), r.Interval)
	}

	return WireParams{
		SensorID: id,
		SDate:    r.Start.Format(DateLayout),
		EDate:    r.End.Format(DateLayout),
		Avg:      int(r.Interval),
		Format:   r.Format,
	}, nil
}

func wallClock(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
}

func formatSpan(d time.Duration) string {
	days := d / day
	hours := (d % day) / time.Hour
	if hours == 0 {
		return fmt.Sprintf("%d days", days)
	}
	return fmt.Sprintf("%d days %d hours", days, hours)
}
