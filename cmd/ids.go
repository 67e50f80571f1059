package cmd

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/s0up4200/prtgctl/apierr"
)

// readIDs collects object ids from args, or one per line from r when
// fromStdin is set. Blank lines are skipped and order is kept.
func readIDs(args []string, fromStdin bool, r io.Reader) ([]string, error) {
	var ids []string
	for _, arg := range args {
		// "2460,2461" is accepted as well as separate arguments
		for _, id := range strings.Split(arg, ",") {
			if id = strings.TrimSpace(id); id != "" {
				ids = append(ids, id)
			}
		}
	}

	if fromStdin {
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			if id := strings.TrimSpace(scanner.Text()); id != "" {
				ids = append(ids, id)
			}
		}
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("failed to read ids from stdin: %w", err)
		}
	}

	if len(ids) == 0 {
		return nil, apierr.New(apierr.Validation, "no object ids given (pass them as arguments or use --stdin)")
	}
	return ids, nil
}
