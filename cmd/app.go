package cmd

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/s0up4200/prtgctl/config"
	"github.com/s0up4200/prtgctl/output"
	"github.com/s0up4200/prtgctl/prtg"
)

// app is everything a command needs once settings are resolved. It is built
// by the command that needs it, never shared between invocations.
type app struct {
	settings  config.Settings
	client    *prtg.Client
	formatter output.Formatter
	logger    zerolog.Logger
	out       io.Writer
	errOut    io.Writer
}

// resolveSettings applies flags, environment, dotenv and the profile file.
func (o *rootOptions) resolveSettings(cmd *cobra.Command) (config.Settings, error) {
	settings, err := config.NewResolver(o.overrides(cmd)).Resolve()
	if err != nil {
		return config.Settings{}, err
	}
	o.format = settings.Output

	settings.Logging.Color = isTerminal(os.Stderr)
	o.logger = setupLogger(settings.Logging, o.invocation)
	o.logger.Debug().
		Str("url", settings.URL).
		Str("credential", settings.Credential.Kind.String()).
		Str("source", settings.Credential.Source).
		Str("profile", settings.Profile).
		Msg("Resolved settings")
	return settings, nil
}

// newApp resolves settings and builds the client and formatter.
func newApp(cmd *cobra.Command, opts *rootOptions, clientOpts ...prtg.Option) (*app, error) {
	settings, err := opts.resolveSettings(cmd)
	if err != nil {
		return nil, err
	}

	out := cmd.OutOrStdout()
	formatter, err := output.NewRegistry().New(settings.Output, output.Options{
		Pretty: settings.Pretty,
		Color:  isTerminal(out),
	})
	if err != nil {
		return nil, err
	}

	clientOpts = append([]prtg.Option{prtg.WithUserAgent("prtgctl/" + version)}, clientOpts...)
	client, err := prtg.NewClient(settings, opts.logger, clientOpts...)
	if err != nil {
		return nil, err
	}

	return &app{
		settings:  settings,
		client:    client,
		formatter: formatter,
		logger:    opts.logger,
		out:       out,
		errOut:    cmd.ErrOrStderr(),
	}, nil
}

func (a *app) render(ds output.Dataset) error {
	return a.formatter.Format(a.out, ds)
}

// warnf writes an advisory line to stderr.
func (a *app) warnf(format string, args ...any) {
	fmt.Fprintf(a.errOut, format+"\n", args...)
}

// reportBatch prints failed items and the cancellation marker on stderr.
func (a *app) reportBatch(res *prtg.BatchResult, noun string) {
	if res == nil {
		return
	}
	for _, it := range res.Failed() {
		a.warnf("Warning: %s", it.Err)
	}
	if res.Canceled {
		a.warnf("Canceled: processed %d of %d %ss", len(res.Items), res.Requested, noun)
	}
}

// progress starts a spinner on stderr when it is a terminal. The returned
// function stops it.
func (a *app) progress(message string) func() {
	if !isTerminal(a.errOut) {
		return func() {}
	}
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	s.Writer = a.errOut
	s.Suffix = " " + message
	s.Start()
	return s.Stop
}
