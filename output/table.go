package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/s0up4200/prtgctl/models"
	"github.com/s0up4200/prtgctl/status"
)

// TableFormatter renders records as an aligned table. Without Pretty it is a
// borderless kubectl-style layout that pipes cleanly into grep and awk.
type TableFormatter struct {
	options Options
}

func newTableFormatter(opts Options) Formatter {
	return &TableFormatter{options: opts}
}

func (f *TableFormatter) Name() string     { return FormatTable }
func (f *TableFormatter) Structured() bool { return false }

func (f *TableFormatter) Format(w io.Writer, ds Dataset) error {
	if len(ds.Records) == 0 {
		_, err := fmt.Fprintln(w, "No objects found")
		return err
	}
	if ds.Single {
		return f.formatObject(w, ds.Records[0], columnsOf(ds))
	}

	cols := columnsOf(ds)
	t := f.createTable(w)

	header := make(table.Row, len(cols))
	for i, col := range cols {
		header[i] = col
	}
	t.AppendHeader(header)

	for _, rec := range ds.Records {
		row := make(table.Row, len(cols))
		for i, col := range cols {
			row[i] = f.value(rec, col)
		}
		t.AppendRow(row)
	}

	t.Render()
	return nil
}

func (f *TableFormatter) FormatError(w io.Writer, err error) error {
	return plainError(w, err)
}

// formatObject prints one record as key/value pairs.
func (f *TableFormatter) formatObject(w io.Writer, rec models.Record, cols []string) error {
	t := f.createTable(w)
	t.AppendHeader(table.Row{"key", "value"})
	for _, col := range cols {
		t.AppendRow(table.Row{col, f.value(rec, col)})
	}
	t.Render()
	return nil
}

func (f *TableFormatter) createTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	if f.options.Pretty {
		t.SetStyle(table.StyleLight)
		return t
	}
	t.SetStyle(plainStyle())
	return t
}

func (f *TableFormatter) value(rec models.Record, col string) string {
	v := cell(rec, col)
	if col != "status" || !f.options.Color {
		return v
	}
	return statusColor(rec).Sprint(v)
}

// plainStyle has no borders or separators and at least three spaces between
// columns.
func plainStyle() table.Style {
	style := table.StyleDefault
	style.Name = "plain"
	style.Box.PaddingLeft = ""
	style.Box.PaddingRight = "   "
	style.Options.DrawBorder = false
	style.Options.SeparateColumns = false
	style.Options.SeparateHeader = false
	style.Options.SeparateRows = false
	style.Format.Header = text.FormatUpper
	return style
}

func statusColor(rec models.Record) text.Colors {
	s, ok := status.Lookup(rec["status_raw"])
	if !ok {
		// "Down (simulated error)" and similar carry the name first.
		fields := strings.Fields(rec.String("status"))
		if len(fields) == 0 {
			return text.Colors{}
		}
		parsed, err := status.Parse(fields[0])
		if err != nil {
			return text.Colors{}
		}
		s = parsed
	}

	switch s {
	case status.Up:
		return text.Colors{text.FgGreen}
	case status.Warning, status.Unusual:
		return text.Colors{text.FgYellow}
	case status.Down:
		return text.Colors{text.FgRed, text.Bold}
	case status.Paused:
		return text.Colors{text.FgHiBlack}
	}
	return text.Colors{}
}
