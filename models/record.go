package models

import (
	"fmt"
	"strings"
)

// Record is one raw row of a table response, keyed by column name.
type Record map[string]any

// String returns the column value as text, or "" when absent.
func (r Record) String(key string) string {
	v, ok := r[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// ID returns the objid column.
func (r Record) ID() string {
	return r.String("objid")
}

// Tags splits the space separated tags column.
func (r Record) Tags() []string {
	switch v := r["tags"].(type) {
	case []string:
		return v
	case []any:
		tags := make([]string, 0, len(v))
		for _, t := range v {
			tags = append(tags, fmt.Sprint(t))
		}
		return tags
	}
	return strings.Fields(r.String("tags"))
}

// HasAllTags reports whether every tag is present, ignoring case.
func (r Record) HasAllTags(want []string) bool {
	have := r.Tags()
	for _, w := range want {
		found := false
		for _, h := range have {
			if strings.EqualFold(h, w) {
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
