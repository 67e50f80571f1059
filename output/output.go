// Package output renders command results as json, yaml, table or csv, and
// trims long line-oriented output for the terminal.
package output

import (
	"io"
	"sort"
	"strings"

	"github.com/s0up4200/prtgctl/apierr"
	"github.com/s0up4200/prtgctl/models"
)

// Format names known to the default registry.
const (
	FormatJSON  = "json"
	FormatYAML  = "yaml"
	FormatTable = "table"
	FormatCSV   = "csv"
)

// Options configures formatter behaviour.
type Options struct {
	Pretty bool // Indent structured output, draw table separators
	Color  bool // Colour status cells
}

// Dataset is what a command hands to a formatter.
type Dataset struct {
	// Columns fixes the order of tabular output. Records may carry more keys.
	Columns []string
	Records []models.Record
	// Single renders one object instead of a list in structured formats.
	Single bool
}

// Formatter writes datasets and errors in one output format.
type Formatter interface {
	Name() string
	// Structured reports whether the format is a document format that must
	// never be truncated.
	Structured() bool
	Format(w io.Writer, ds Dataset) error
	FormatError(w io.Writer, err error) error
}

// Constructor builds a formatter.
type Constructor func(opts Options) Formatter

// Registry maps format names to constructors.
type Registry struct {
	ctors map[string]Constructor
}

// NewRegistry returns a registry with every built-in format.
func NewRegistry() *Registry {
	r := &Registry{ctors: make(map[string]Constructor)}
	r.Register(FormatJSON, newJSONFormatter)
	r.Register(FormatYAML, newYAMLFormatter)
	r.Register(FormatTable, newTableFormatter)
	r.Register(FormatCSV, newCSVFormatter)
	return r
}

// Register adds or replaces a format.
func (r *Registry) Register(name string, ctor Constructor) {
	r.ctors[strings.ToLower(name)] = ctor
}

// New builds the formatter registered under name.
func (r *Registry) New(name string, opts Options) (Formatter, error) {
	ctor, ok := r.ctors[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, apierr.New(apierr.Validation, "unknown output format %q (available: %s)",
			name, strings.Join(r.Names(), ", "))
	}
	return ctor(opts), nil
}

// Names lists the registered formats in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.ctors))
	for name := range r.ctors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Structured reports whether format is a document format.
func Structured(format string) bool {
	switch strings.ToLower(format) {
	case FormatJSON, FormatYAML:
		return true
	}
	return false
}

// errorDocument is the structured error body.
type errorDocument struct {
	Error errorBody `json:"error" yaml:"error"`
}

type errorBody struct {
	Type    string `json:"type" yaml:"type"`
	Message string `json:"message" yaml:"message"`
}

func newErrorDocument(err error) errorDocument {
	return errorDocument{Error: errorBody{
		Type:    apierr.KindOf(err).String(),
		Message: err.Error(),
	}}
}

// columnsOf returns ds.Columns, or the sorted union of record keys.
func columnsOf(ds Dataset) []string {
	if len(ds.Columns) > 0 {
		return ds.Columns
	}
	seen := make(map[string]struct{})
	var cols []string
	for _, rec := range ds.Records {
		for k := range rec {
			if _, ok := seen[k]; ok {
				continue
			}
			seen[k] = struct{}{}
			cols = append(cols, k)
		}
	}
	sort.Strings(cols)
	return cols
}

// cell renders one record value as text.
func cell(rec models.Record, col string) string {
	if col == "tags" {
		return strings.Join(rec.Tags(), " ")
	}
	return rec.String(col)
}
