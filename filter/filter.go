package filter

import (
	"regexp"
	"strings"

	"github.com/s0up4200/prtgctl/models"
)

// NameFilter matches object names against a regular expression.
type NameFilter struct {
	re *regexp.Regexp
}

// NewNameFilter compiles pattern. Matching is case-insensitive unless the
// pattern sets its own flags.
func NewNameFilter(pattern string) (*NameFilter, error) {
	if !strings.HasPrefix(pattern, "(?") {
		pattern = "(?i)" + pattern
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, compilationError(pattern, "invalid regular expression", err)
	}
	return &NameFilter{re: re}, nil
}

func (f *NameFilter) Evaluate(e models.Entity) bool {
	return f.re.MatchString(e.Object().Name)
}

// TagFilter requires every tag to be present.
type TagFilter struct {
	Tags []string
}

func (f TagFilter) Evaluate(e models.Entity) bool {
	have := e.Object().Tags
	for _, want := range f.Tags {
		found := false
		for _, t := range have {
			if strings.EqualFold(t, want) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// All is the conjunction of its filters. An empty All matches everything.
type All []Filter

func (a All) Evaluate(e models.Entity) bool {
	for _, f := range a {
		if !f.Evaluate(e) {
			return false
		}
	}
	return true
}
