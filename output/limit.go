package output

import (
	"fmt"
	"strings"
)

// DefaultHead is the number of rows shown on a terminal when no head is given.
const DefaultHead = 50

// Limited is the outcome of Limit.
type Limited struct {
	Rows    []string
	Shown   int
	Total   int
	Message string // empty unless rows were dropped
}

// Truncated reports whether rows were dropped.
func (l Limited) Truncated() bool {
	return l.Shown < l.Total
}

// Limit keeps the header row and the last head data rows of line-oriented
// output bound for a terminal. Output written to a file and structured
// formats pass through unchanged. A negative head selects DefaultHead and
// zero disables the limit.
func Limit(rows []string, format string, toFile bool, head int) Limited {
	total := len(rows) - 1
	if total < 0 {
		total = 0
	}
	out := Limited{Rows: rows, Shown: total, Total: total}

	if toFile || Structured(format) || head == 0 {
		return out
	}
	if head < 0 {
		head = DefaultHead
	}
	if total <= head {
		return out
	}

	kept := make([]string, 0, head+1)
	kept = append(kept, rows[0])
	kept = append(kept, rows[len(rows)-head:]...)

	out.Rows = kept
	out.Shown = head
	out.Message = fmt.Sprintf("Showing last %d of %d rows (use --head N or --output to change)", head, total)
	return out
}

// LimitText applies Limit to newline separated text, keeping a trailing
// newline if the input had one.
func LimitText(text, format string, toFile bool, head int) (string, string) {
	if toFile || Structured(format) || head == 0 || text == "" {
		return text, ""
	}
	trailing := strings.HasSuffix(text, "\n")
	body := strings.TrimRight(text, "\r\n")
	lines := strings.Split(body, "\n")

	res := Limit(lines, format, toFile, head)
	if !res.Truncated() {
		return text, ""
	}
	out := strings.Join(res.Rows, "\n")
	if trailing {
		out += "\n"
	}
	return out, res.Message
}
