package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/s0up4200/prtgctl/apierr"
	"github.com/s0up4200/prtgctl/models"
	"github.com/s0up4200/prtgctl/output"
	"github.com/s0up4200/prtgctl/prtg"
)

var moveColumns = []string{"objid", "targetid", "moved", "error"}

func newDeviceCmd(opts *rootOptions) *cobra.Command {
	cmd := newObjectCmd(opts, deviceKind)
	cmd.AddCommand(newMoveCmd(opts))
	return cmd
}

type moveOptions struct {
	target string
	stdin  bool
	dryRun bool
}

func newMoveCmd(opts *rootOptions) *cobra.Command {
	mo := &moveOptions{}

	cmd := &cobra.Command{
		Use:   "move ID... --target GROUP",
		Short: "Move devices to another group",
		Long: `Move one or more devices under another group or probe.

Devices are moved one at a time in the given order. Every device gets a
result row; the command exits non-zero if any move failed.`,
		Example: `  prtg device move 2001 --target 5666
  prtg device move 2001 2002 2003 --target 5666 --dry-run
  prtg device list --filter '^test-' -o csv --columns objid | tail -n +2 | prtg device move --stdin --target 5666`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := readIDs(args, mo.stdin, cmd.InOrStdin())
			if err != nil {
				return err
			}
			target := strings.TrimSpace(mo.target)
			if target == "" {
				return apierr.New(apierr.Validation, "--target is required")
			}

			a, err := newApp(cmd, opts)
			if err != nil {
				return err
			}

			if mo.dryRun {
				a.warnf("Dry run: no changes will be made")
				recs := make([]models.Record, 0, len(ids))
				for _, id := range ids {
					a.warnf("Would move device %s to group %s", id, target)
					recs = append(recs, models.Record{"objid": id, "targetid": target, "moved": false})
				}
				return a.render(output.Dataset{Columns: moveColumns[:3], Records: recs})
			}

			stop := a.progress(fmt.Sprintf("Moving %d device(s) to %s...", len(ids), target))
			res, err := a.client.MoveDevices(cmd.Context(), ids, target)
			stop()
			if res == nil {
				return err
			}

			if rerr := a.render(output.Dataset{Columns: moveColumns, Records: moveRecords(res, target)}); rerr != nil {
				return rerr
			}
			if res.Canceled {
				a.warnf("Canceled: processed %d of %d devices", len(res.Items), res.Requested)
			}
			a.logger.Info().
				Int("moved", res.Successful()).
				Int("failed", len(res.Failed())).
				Msg("Move finished")

			if err != nil {
				return err
			}
			return moveError(res)
		},
	}

	f := cmd.Flags()
	f.StringVar(&mo.target, "target", "", "id of the group or probe to move the devices to")
	f.BoolVar(&mo.stdin, "stdin", false, "read device ids from stdin, one per line")
	f.BoolVar(&mo.dryRun, "dry-run", false, "show what would be moved without changing anything")
	f.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		if name == "target-group" {
			name = "target"
		}
		return pflag.NormalizedName(name)
	})
	return cmd
}

// moveRecords has one row per processed id, failures included.
func moveRecords(res *prtg.BatchResult, target string) []models.Record {
	recs := make([]models.Record, 0, len(res.Items))
	for _, it := range res.Items {
		if it.Err == nil {
			recs = append(recs, it.Record)
			continue
		}
		recs = append(recs, models.Record{
			"objid":    it.ID,
			"targetid": target,
			"moved":    false,
			"error":    it.Err.Error(),
		})
	}
	return recs
}

// moveError reports partial failures so scripts see a non-zero exit.
func moveError(res *prtg.BatchResult) error {
	failed := res.Failed()
	if len(failed) == 0 {
		return nil
	}
	first := failed[0].Err
	if len(failed) == 1 {
		return first
	}
	var apiErr *apierr.Error
	kind := apierr.ServerError
	if errors.As(first, &apiErr) {
		kind = apiErr.Kind
	}
	return apierr.Wrap(kind, first, "%d of %d devices could not be moved", len(failed), res.Requested)
}
