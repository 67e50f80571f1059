package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/s0up4200/prtgctl/apierr"
	"github.com/s0up4200/prtgctl/historic"
	"github.com/s0up4200/prtgctl/output"
	"github.com/s0up4200/prtgctl/prtg"
)

func newSensorCmd(opts *rootOptions) *cobra.Command {
	cmd := newObjectCmd(opts, sensorKind)
	cmd.AddCommand(newSensorDataCmd(opts))
	return cmd
}

type dataOptions struct {
	days     int
	hours    int
	start    string
	end      string
	interval string
	format   string
	output   string
	head     int
	wait     bool
	stdin    bool
}

func newSensorDataCmd(opts *rootOptions) *cobra.Command {
	dopts := &dataOptions{}

	cmd := &cobra.Command{
		Use:   "data ID...",
		Short: "Fetch historic data of sensors",
		Long: `Fetch time series values of one or more sensors.

Raw data covers at most 40 days and averaged data at most 500 days. The
server accepts 5 historic data requests per minute; this command counts its
own requests and fails early, or waits with --wait. The count is kept per
process only, so separate invocations can still hit the server's limit.

CSV written to a terminal shows the header and the last 50 rows. Use --head
to change that, --head 0 to show everything, or --output to save all rows.

Here --output names a file, so the global -o/--output format flag does not
apply to this command. Choose csv or json with --format.`,
		Example: `  prtg sensor data 2460
  prtg sensor data 2460 --hours 24 --format json
  prtg sensor data 2460 --start 2024-01-01 --end 2024-01-31 --interval 1h --output data.csv
  prtg sensor data 2460 2461 --days 2 --output 'sensor-{id}.csv' --wait`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := readIDs(args, dopts.stdin, cmd.InOrStdin())
			if err != nil {
				return err
			}

			policy := historic.FailFast
			if dopts.wait {
				policy = historic.Block
			}
			gate := historic.NewGate(policy)

			requests, err := dopts.prepare(cmd, gate, ids)
			if err != nil {
				return err
			}

			a, err := newApp(cmd, opts, prtg.WithHistoricGate(gate))
			if err != nil {
				return err
			}

			for _, p := range requests {
				a.logger.Info().
					Str("sensor", p.SensorID).
					Str("sdate", p.SDate).
					Str("edate", p.EDate).
					Str("interval", historic.Interval(p.Avg).String()).
					Msg("Fetching historic data")

				res, err := a.client.HistoricData(cmd.Context(), p)
				if err != nil {
					return err
				}
				if err := dopts.write(a, res); err != nil {
					return err
				}
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.IntVar(&dopts.days, "days", 0, "last N days (default 7)")
	f.IntVar(&dopts.hours, "hours", 0, "last N hours")
	f.StringVar(&dopts.start, "start", "", "start: yyyy-MM-dd-HH-mm-ss, yyyy-MM-dd, now, -Nd or -Nh")
	f.StringVar(&dopts.end, "end", "", "end, same forms as --start (default now)")
	f.StringVar(&dopts.interval, "interval", "raw", "averaging interval: raw, 1m, 1h or 1d")
	f.StringVar(&dopts.format, "format", "csv", "data format: csv or json")
	f.StringVar(&dopts.output, "output", "", "write to this file instead of stdout; {id} is replaced by the sensor id (not the -o format flag)")
	f.IntVar(&dopts.head, "head", -1, "rows shown on a terminal (default 50, 0 for all)")
	f.BoolVar(&dopts.wait, "wait", false, "wait for the rate limit window instead of failing")
	f.BoolVar(&dopts.stdin, "stdin", false, "read sensor ids from stdin, one per line")
	return cmd
}

// prepare validates every request before anything is sent.
func (dopts *dataOptions) prepare(cmd *cobra.Command, gate *historic.Gate, ids []string) ([]historic.WireParams, error) {
	format, err := historic.ParseFormat(dopts.format)
	if err != nil {
		return nil, err
	}
	interval, err := historic.ParseInterval(dopts.interval)
	if err != nil {
		return nil, err
	}
	if len(ids) > 1 && dopts.output != "" && !strings.Contains(dopts.output, "{id}") {
		return nil, apierr.New(apierr.Validation, "--output must contain {id} when fetching several sensors")
	}

	startExpr, endExpr, err := dopts.window(cmd)
	if err != nil {
		return nil, err
	}
	start, end, err := gate.Resolve(startExpr, endExpr)
	if err != nil {
		return nil, err
	}

	requests := make([]historic.WireParams, 0, len(ids))
	for _, id := range ids {
		p, err := gate.Prepare(historic.Range{
			SensorID: id,
			Start:    start,
			End:      end,
			Interval: interval,
			Format:   format,
		})
		if err != nil {
			return nil, err
		}
		requests = append(requests, p)
	}
	return requests, nil
}

// window turns the range flags into start and end expressions.
func (dopts *dataOptions) window(cmd *cobra.Command) (string, string, error) {
	flags := cmd.Flags()
	relative := 0
	for _, name := range []string{"days", "hours"} {
		if flags.Changed(name) {
			relative++
		}
	}
	if relative > 1 {
		return "", "", apierr.New(apierr.Validation, "--days and --hours cannot be combined")
	}
	if relative > 0 && dopts.start != "" {
		return "", "", apierr.New(apierr.Validation, "--start cannot be combined with --days or --hours")
	}

	end := dopts.end
	if end == "" {
		end = "now"
	}

	switch {
	case dopts.start != "":
		return dopts.start, end, nil
	case flags.Changed("hours"):
		if dopts.hours <= 0 {
			return "", "", apierr.New(apierr.Validation, "--hours must be positive")
		}
		return "-" + strconv.Itoa(dopts.hours) + "h", end, nil
	case flags.Changed("days"):
		if dopts.days <= 0 {
			return "", "", apierr.New(apierr.Validation, "--days must be positive")
		}
		return "-" + strconv.Itoa(dopts.days) + "d", end, nil
	}
	return "-7d", end, nil
}

// write sends one result to its file or to stdout. Files always receive
// every row.
func (dopts *dataOptions) write(a *app, res *prtg.HistoricResult) error {
	body := res.Raw
	if res.Format == historic.FormatJSON && a.settings.Pretty {
		var buf bytes.Buffer
		if err := json.Indent(&buf, body, "", "  "); err == nil {
			body = buf.Bytes()
		}
	}

	if dopts.output != "" {
		path := strings.ReplaceAll(dopts.output, "{id}", res.SensorID)
		if err := os.WriteFile(path, ensureNewline(body), 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
		a.logger.Info().Str("sensor", res.SensorID).Str("path", path).Msg("Data saved")
		return nil
	}

	text, notice := output.LimitText(string(ensureNewline(body)), string(res.Format), !isTerminal(a.out), dopts.head)
	if _, err := io.WriteString(a.out, text); err != nil {
		return err
	}
	if notice != "" {
		a.warnf("%s", notice)
	}
	if len(res.Series) > 0 {
		a.logger.Debug().Str("sensor", res.SensorID).Int("samples", len(res.Series)).Msg("Decoded series")
	}
	return nil
}

func ensureNewline(b []byte) []byte {
	if len(b) == 0 || b[len(b)-1] == '\n' {
		return b
	}
	return append(b, '\n')
}
