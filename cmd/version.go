package cmd

import (
	"fmt"
	"runtime"

	"github.com/blang/semver"
	"github.com/creativeprojects/go-selfupdate"
	"github.com/spf13/cobra"

	"github.com/s0up4200/prtgctl/apierr"
)

const githubRepoSlug = "s0up4200/prtgctl"

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version of prtg",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "prtg version %s (built %s, %s/%s)\n",
				version, buildTime, runtime.GOOS, runtime.GOARCH)
		},
	}
}

// currentVersion parses the build version. Development builds cannot be
// updated.
func currentVersion() (semver.Version, error) {
	if version == "" || version == "dev" {
		return semver.Version{}, apierr.New(apierr.Validation, "cannot update a development build")
	}
	v, err := semver.ParseTolerant(version)
	if err != nil {
		return semver.Version{}, apierr.Wrap(apierr.Validation, err, "build version %q is not a release version", version)
	}
	return v, nil
}

func newUpdateCmd(opts *rootOptions) *cobra.Command {
	var checkOnly bool

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Update prtg to the latest release",
		Long: `Check the latest release on GitHub and replace the running binary if it
is newer.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			current, err := currentVersion()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Current version: %s\n", current)

			updater, err := selfupdate.NewUpdater(selfupdate.Config{})
			if err != nil {
				return fmt.Errorf("failed to create updater: %w", err)
			}

			latest, found, err := updater.DetectLatest(cmd.Context(), selfupdate.ParseSlug(githubRepoSlug))
			if err != nil {
				return apierr.Wrap(apierr.Transport, err, "error detecting latest version")
			}
			if !found {
				return apierr.New(apierr.NotFound, "no release found for %s", githubRepoSlug)
			}

			if !latest.GreaterThan(current.String()) {
				fmt.Fprintln(out, "Current version is the latest.")
				return nil
			}

			fmt.Fprintf(out, "Found newer version: %s (published %s)\n", latest.Version(), latest.PublishedAt.Format("2006-01-02"))
			if checkOnly {
				return nil
			}

			exe, err := selfupdate.ExecutablePath()
			if err != nil {
				return fmt.Errorf("could not locate executable path: %w", err)
			}

			opts.logger.Info().Str("path", exe).Str("version", latest.Version()).Msg("Updating binary")
			if err := updater.UpdateTo(cmd.Context(), latest, exe); err != nil {
				return fmt.Errorf("update failed: %w", err)
			}

			fmt.Fprintf(out, "Updated to version %s\n", latest.Version())
			return nil
		},
	}
	cmd.Flags().BoolVar(&checkOnly, "check", false, "only report whether a newer version exists")
	return cmd
}
