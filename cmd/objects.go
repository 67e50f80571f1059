package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/s0up4200/prtgctl/models"
	"github.com/s0up4200/prtgctl/output"
	"github.com/s0up4200/prtgctl/prtg"
	"github.com/s0up4200/prtgctl/status"
)

// objectKind describes one object command group.
type objectKind struct {
	content models.ContentType
	aliases []string
	short   string
}

var (
	deviceKind = objectKind{content: models.Devices, aliases: []string{"devices"}, short: "List, inspect and move devices"}
	sensorKind = objectKind{content: models.Sensors, aliases: []string{"sensors"}, short: "List and inspect sensors and fetch historic data"}
	groupKind  = objectKind{content: models.Groups, aliases: []string{"groups"}, short: "List and inspect groups"}
	probeKind  = objectKind{content: models.Probes, aliases: []string{"probes"}, short: "List and inspect probes"}
)

func newObjectCmd(opts *rootOptions, kind objectKind) *cobra.Command {
	cmd := &cobra.Command{
		Use:     kind.content.Singular(),
		Aliases: kind.aliases,
		Short:   kind.short,
	}
	cmd.AddCommand(newListCmd(opts, kind), newGetCmd(opts, kind))
	return cmd
}

// listOptions are the filters of a list command.
type listOptions struct {
	statuses []string
	tags     []string
	parent   string
	priority string
	filter   string
	where    string
	fields   map[string]string
	columns  []string
	count    int
	start    int
}

func newListCmd(opts *rootOptions, kind objectKind) *cobra.Command {
	lo := &listOptions{}
	noun := kind.content.Singular()

	cmd := &cobra.Command{
		Use:   "list",
		Short: fmt.Sprintf("List %s", kind.content),
		Long: fmt.Sprintf(`List %[1]s, filtered on the server by status, tag, parent and
priority and on the client by name pattern and expression.

Several --tag values must all be present on a %[2]s.`, kind.content, noun),
		Example: fmt.Sprintf(`  prtg %[1]s list --status down --status warning
  prtg %[1]s list --tag linux --tag production -o table
  prtg %[1]s list --filter '^core-' --where 'Priority >= 4'`, noun),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := lo.query(cmd, kind.content)
			if err != nil {
				return err
			}

			a, err := newApp(cmd, opts)
			if err != nil {
				return err
			}

			recs, err := a.client.List(cmd.Context(), q)
			if err != nil {
				return err
			}
			a.logger.Info().Int("count", len(recs)).Msgf("Found %s", kind.content)

			return a.render(output.Dataset{Columns: displayColumns(q.Columns, kind.content), Records: recs})
		},
	}

	f := cmd.Flags()
	f.StringArrayVar(&lo.statuses, "status", nil, "status to include: up, warning, down, paused, unusual, unknown (repeatable)")
	f.StringArrayVar(&lo.tags, "tag", nil, "tag that must be present (repeatable, all must match)")
	f.StringVar(&lo.parent, "parent", "", "parent object id")
	f.StringVar(&lo.priority, "priority", "", "priority from 1 to 5")
	f.StringVar(&lo.filter, "filter", "", "regular expression matched against names (case-insensitive)")
	f.StringVar(&lo.where, "where", "", "expression each object must satisfy, e.g. 'Status == \"down\" && Priority > 3'")
	f.StringToStringVar(&lo.fields, "field", nil, "extra server-side filter as column=value (repeatable)")
	f.StringSliceVar(&lo.columns, "columns", nil, "columns to request (comma separated)")
	f.IntVar(&lo.count, "count", 0, "maximum number of rows")
	f.IntVar(&lo.start, "start", 0, "row offset")
	return cmd
}

// query validates the flags and builds the table query.
func (lo *listOptions) query(cmd *cobra.Command, content models.ContentType) (prtg.Query, error) {
	q := prtg.Query{
		Content:    content,
		Columns:    splitColumns(lo.columns),
		Tags:       lo.tags,
		ParentID:   strings.TrimSpace(lo.parent),
		NameFilter: lo.filter,
		Where:      lo.where,
		Filters:    lo.fields,
	}

	statuses, err := status.ParseList(lo.statuses)
	if err != nil {
		return q, err
	}
	q.Statuses = statuses

	if lo.priority != "" {
		if q.Priority, err = status.ParsePriority(lo.priority); err != nil {
			return q, err
		}
	}

	if cmd.Flags().Changed("count") {
		count := lo.count
		q.Count = &count
	}
	if cmd.Flags().Changed("start") {
		start := lo.start
		q.Start = &start
	}
	return q, nil
}

type getOptions struct {
	stdin   bool
	columns []string
}

func newGetCmd(opts *rootOptions, kind objectKind) *cobra.Command {
	gopts := &getOptions{}
	noun := kind.content.Singular()

	cmd := &cobra.Command{
		Use:   "get ID...",
		Short: fmt.Sprintf("Show %s by id", kind.content),
		Long: fmt.Sprintf(`Show one or more %[1]ss by id.

Ids are processed in order. A missing id is reported on stderr and the
others are still shown; the command fails only when none is found.`, noun),
		Example: fmt.Sprintf(`  prtg %[1]s get 2460
  prtg %[1]s get 2460 2461 -o table
  prtg %[1]s list --status down -o csv --columns objid | tail -n +2 | prtg %[1]s get --stdin`, noun),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := readIDs(args, gopts.stdin, cmd.InOrStdin())
			if err != nil {
				return err
			}

			a, err := newApp(cmd, opts)
			if err != nil {
				return err
			}

			columns := splitColumns(gopts.columns)
			stop := a.progress(fmt.Sprintf("Fetching %d %s(s)...", len(ids), noun))
			res, err := a.client.GetByIDs(cmd.Context(), kind.content, ids, columns)
			stop()
			if err != nil {
				return err
			}
			a.reportBatch(res, noun)

			return a.render(output.Dataset{
				Columns: displayColumns(columns, kind.content),
				Records: res.Records(),
				Single:  len(ids) == 1,
			})
		},
	}

	cmd.Flags().BoolVar(&gopts.stdin, "stdin", false, "read ids from stdin, one per line")
	cmd.Flags().StringSliceVar(&gopts.columns, "columns", nil, "columns to request (comma separated)")
	return cmd
}

// splitColumns trims column names and drops empty ones.
func splitColumns(cols []string) []string {
	var out []string
	for _, c := range cols {
		if c = strings.TrimSpace(c); c != "" {
			out = append(out, c)
		}
	}
	return out
}

func displayColumns(cols []string, content models.ContentType) []string {
	if len(cols) > 0 {
		return cols
	}
	return content.DefaultColumns()
}
