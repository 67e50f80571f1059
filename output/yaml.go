package output

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// YAMLFormatter writes the same document as the JSON formatter in YAML.
type YAMLFormatter struct {
	options Options
}

func newYAMLFormatter(opts Options) Formatter {
	return &YAMLFormatter{options: opts}
}

func (f *YAMLFormatter) Name() string     { return FormatYAML }
func (f *YAMLFormatter) Structured() bool { return true }

func (f *YAMLFormatter) Format(w io.Writer, ds Dataset) error {
	// Records hold json.Number values; a JSON round trip turns them into
	// plain numbers yaml can emit unquoted.
	raw, err := json.Marshal(document(ds))
	if err != nil {
		return fmt.Errorf("failed to marshal records: %w", err)
	}
	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return fmt.Errorf("failed to convert records: %w", err)
	}
	return f.encode(w, generic)
}

func (f *YAMLFormatter) FormatError(w io.Writer, err error) error {
	return f.encode(w, newErrorDocument(err))
}

func (f *YAMLFormatter) encode(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode yaml: %w", err)
	}
	return enc.Close()
}
