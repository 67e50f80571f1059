package output

import (
	"encoding/csv"
	"fmt"
	"io"
)

// CSVFormatter writes a header row followed by one row per record.
type CSVFormatter struct {
	options Options
}

func newCSVFormatter(opts Options) Formatter {
	return &CSVFormatter{options: opts}
}

func (f *CSVFormatter) Name() string     { return FormatCSV }
func (f *CSVFormatter) Structured() bool { return false }

func (f *CSVFormatter) Format(w io.Writer, ds Dataset) error {
	cols := columnsOf(ds)
	cw := csv.NewWriter(w)
	if err := cw.Write(cols); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	row := make([]string, len(cols))
	for _, rec := range ds.Records {
		for i, col := range cols {
			row[i] = cell(rec, col)
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func (f *CSVFormatter) FormatError(w io.Writer, err error) error {
	return plainError(w, err)
}

func plainError(w io.Writer, err error) error {
	_, werr := fmt.Fprintf(w, "Error: %s\n", err)
	return werr
}
