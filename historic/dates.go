package historic

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/s0up4200/prtgctl/apierr"
)

var relativeDate = regexp.MustCompile(`^-(\d+)([dh])$`)

// ParseDate accepts an absolute date (yyyy-MM-dd-HH-mm-ss or yyyy-MM-dd),
// "now", or a relative offset such as -7d or -12h resolved against now.
// Absolute dates are interpreted in now's location.
func ParseDate(value string, now time.Time) (time.Time, error) {
	v := strings.TrimSpace(value)
	if strings.EqualFold(v, "now") {
		return now, nil
	}

	if m := relativeDate.FindStringSubmatch(v); m != nil {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			return time.Time{}, apierr.Wrap(apierr.Validation, err, "invalid relative date %q", value)
		}
		unit := time.Hour
		if m[2] == "d" {
			unit = day
		}
		return now.Add(-time.Duration(n) * unit), nil
	}

	for _, layout := range []string{DateLayout, "2006-01-02"} {
		if t, err := time.ParseInLocation(layout, v, now.Location()); err == nil {
			return t, nil
		}
	}

	return time.Time{}, apierr.New(apierr.Validation,
		"invalid date %q (use yyyy-MM-dd-HH-mm-ss, yyyy-MM-dd, now, -Nd or -Nh)", value)
}
