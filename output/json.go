package output

import (
	"encoding/json"
	"io"

	"github.com/s0up4200/prtgctl/models"
)

// JSONFormatter writes records as a JSON array, or one object when the
// dataset is single.
type JSONFormatter struct {
	options Options
}

func newJSONFormatter(opts Options) Formatter {
	return &JSONFormatter{options: opts}
}

func (f *JSONFormatter) Name() string     { return FormatJSON }
func (f *JSONFormatter) Structured() bool { return true }

func (f *JSONFormatter) Format(w io.Writer, ds Dataset) error {
	return f.encode(w, document(ds))
}

func (f *JSONFormatter) FormatError(w io.Writer, err error) error {
	return f.encode(w, newErrorDocument(err))
}

func (f *JSONFormatter) encode(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if f.options.Pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}

// document picks the value structured formats serialize.
func document(ds Dataset) any {
	if ds.Single {
		if len(ds.Records) == 0 {
			return map[string]any{}
		}
		return ds.Records[0]
	}
	if ds.Records == nil {
		return []models.Record{}
	}
	return ds.Records
}
