package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/s0up4200/prtgctl/apierr"
	"github.com/s0up4200/prtgctl/config"
	"github.com/s0up4200/prtgctl/models"
	"github.com/s0up4200/prtgctl/output"
	"github.com/s0up4200/prtgctl/prtg"
)

// checkConcurrency bounds the profiles pinged at once by config check.
const checkConcurrency = 4

func newConfigCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage connection profiles",
		Long: `Manage the profile file (default ~/.config/prtg/config).

Each profile is an INI section with url, api_token (or api_token_rw and
api_token_ro, or username and passhash) and verify_ssl.`,
	}
	cmd.AddCommand(
		newConfigInitCmd(opts),
		newConfigListCmd(opts),
		newConfigShowCmd(opts),
		newConfigTestCmd(opts),
		newConfigCheckCmd(opts),
	)
	return cmd
}

// profilePath is the file named by --config, or the default.
func (o *rootOptions) profilePath() string {
	if o.configPath != "" {
		return o.configPath
	}
	return config.DefaultPath()
}

// localFormatter builds the formatter for commands that run without a
// resolved server configuration.
func (o *rootOptions) localFormatter(cmd *cobra.Command) (output.Formatter, error) {
	name := o.output
	if name == "" {
		name = output.FormatTable
	}
	o.format = name
	return output.NewRegistry().New(name, output.Options{Pretty: !o.noPretty, Color: isTerminal(cmd.OutOrStdout())})
}

func newConfigInitCmd(opts *rootOptions) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create or replace a profile",
		Example: `  prtg config init --url https://prtg.example.com --api-token XXXX
  prtg config init --profile lab --url https://lab.example.com --no-verify-ssl`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := opts.profilePath()
			name := opts.profile
			if name == "" {
				name = config.DefaultProfile
			}

			err := config.InitProfile(path, config.ProfileValues{
				Name:      name,
				URL:       opts.url,
				APIToken:  opts.apiToken,
				VerifySSL: !opts.noVerifySSL,
			}, force)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Wrote profile %q to %s\n", name, path)
			if opts.apiToken == "" {
				fmt.Fprintln(cmd.OutOrStdout(), "Edit the file and set api_token before use.")
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "replace an existing profile")
	return cmd
}

func newConfigListCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List profiles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter, err := opts.localFormatter(cmd)
			if err != nil {
				return err
			}
			profiles, err := config.ListProfiles(opts.profilePath())
			if err != nil {
				return err
			}

			recs := make([]models.Record, 0, len(profiles))
			for _, p := range profiles {
				recs = append(recs, models.Record{
					"name":       p.Name,
					"url":        p.URL,
					"token":      strconv.FormatBool(p.HasToken),
					"verify_ssl": p.VerifySSL,
				})
			}
			return formatter.Format(cmd.OutOrStdout(), output.Dataset{
				Columns: []string{"name", "url", "token", "verify_ssl"},
				Records: recs,
			})
		},
	}
}

func newConfigShowCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the effective settings and where they came from",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter, err := opts.localFormatter(cmd)
			if err != nil {
				return err
			}
			settings, err := opts.resolveSettings(cmd)
			if err != nil {
				return err
			}

			rec := settingsRecord(settings)
			return formatter.Format(cmd.OutOrStdout(), output.Dataset{
				Columns: settingsColumns,
				Records: []models.Record{rec},
				Single:  true,
			})
		},
	}
}

var settingsColumns = []string{
	"url", "profile", "config_path", "credential", "credential_source", "token",
	"read_only", "verify_ssl", "output", "pretty", "timeout", "retries", "log_level",
}

// settingsRecord describes settings with the secret masked.
func settingsRecord(s config.Settings) models.Record {
	return models.Record{
		"url":               s.URL,
		"profile":           s.Profile,
		"config_path":       s.ConfigPath,
		"credential":        s.Credential.Kind.String(),
		"credential_source": s.Credential.Source,
		"token":             s.Credential.Masked(),
		"read_only":         s.Credential.IsReadOnly(),
		"verify_ssl":        s.VerifyTLS,
		"output":            s.Output,
		"pretty":            s.Pretty,
		"timeout":           s.Timeout.String(),
		"retries":           s.Retries,
		"log_level":         s.Logging.Level,
	}
}

func newConfigTestCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "test",
		Short: "Check that the server is reachable and the credentials work",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, opts)
			if err != nil {
				return err
			}

			stop := a.progress("Connecting to " + a.settings.URL + "...")
			serverVersion, err := a.client.Ping(cmd.Context())
			stop()
			if err != nil {
				return err
			}

			return a.render(output.Dataset{
				Columns: []string{"url", "version", "credential", "read_only"},
				Records: []models.Record{{
					"url":        a.client.BaseURL(),
					"version":    serverVersion,
					"credential": a.settings.Credential.Kind.String(),
					"read_only":  a.client.ReadOnly(),
				}},
				Single: true,
			})
		},
	}
}

// profileCheck is the outcome of pinging one profile.
type profileCheck struct {
	name    string
	url     string
	version string
	err     error
}

func newConfigCheckCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Test every profile in the profile file",
		Long: `Resolve and ping every profile in the profile file, a few at a time.

--url and --api-token are ignored so each profile is tested with its own
values. PRTG_* environment variables still apply.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter, err := opts.localFormatter(cmd)
			if err != nil {
				return err
			}
			path := opts.profilePath()
			names, err := config.ProfileNames(path)
			if err != nil {
				return err
			}

			base := opts.overrides(cmd)
			base.URL = ""
			base.APIToken = ""
			base.ConfigPath = path

			results := make([]profileCheck, len(names))

			g, ctx := errgroup.WithContext(cmd.Context())
			g.SetLimit(checkConcurrency)
			for i, name := range names {
				g.Go(func() error {
					ov := base
					ov.Profile = name
					res := profileCheck{name: name}

					settings, err := config.NewResolver(ov).Resolve()
					if err == nil {
						res.url = settings.URL
						var client *prtg.Client
						client, err = prtg.NewClient(settings, opts.logger.With().Str("profile", name).Logger())
						if err == nil {
							res.version, err = client.Ping(ctx)
						}
					}
					res.err = err
					results[i] = res
					// one failing profile must not cancel the others
					return nil
				})
			}
			if err := g.Wait(); err != nil {
				return err
			}

			recs := make([]models.Record, 0, len(results))
			var failed []profileCheck
			for _, r := range results {
				rec := models.Record{"profile": r.name, "url": r.url, "ok": r.err == nil, "version": r.version}
				if r.err != nil {
					rec["error"] = r.err.Error()
					failed = append(failed, r)
				}
				recs = append(recs, rec)
			}
			if err := formatter.Format(cmd.OutOrStdout(), output.Dataset{
				Columns: []string{"profile", "url", "ok", "version", "error"},
				Records: recs,
			}); err != nil {
				return err
			}

			if len(failed) == 0 {
				return nil
			}
			return apierr.Wrap(apierr.KindOf(failed[0].err), failed[0].err,
				"%d of %d profiles failed (first: %s)", len(failed), len(results), failed[0].name)
		},
	}
}
