package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/s0up4200/prtgctl/apierr"
	"github.com/s0up4200/prtgctl/config"
	"github.com/s0up4200/prtgctl/output"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

// SetVersion records the build version and time.
func SetVersion(v, bt string) {
	version = v
	buildTime = bt
}

// rootOptions holds the global flags and the per-invocation logger.
type rootOptions struct {
	url         string
	apiToken    string
	configPath  string
	profile     string
	noVerifySSL bool
	output      string
	noPretty    bool
	timeout     time.Duration
	retries     int
	verbose     bool
	debug       bool
	logFormat   string

	logger     zerolog.Logger
	invocation string
	// format is the resolved output format, used to report errors.
	format string
}

func newRootCmd() (*cobra.Command, *rootOptions) {
	opts := &rootOptions{logger: zerolog.Nop()}

	cmd := &cobra.Command{
		Use:   "prtg",
		Short: "Query and manage a PRTG Network Monitor server",
		Long: `prtg is a command line client for the PRTG Network Monitor HTTP API.

It lists and inspects devices, sensors, groups and probes, downloads historic
sensor data and moves devices between groups. Connection settings come from
flags, PRTG_* environment variables, a .env file or a profile in
~/.config/prtg/config, in that order.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			opts.invocation = uuid.NewString()
			opts.logger = setupLogger(opts.bootstrapLogging(), opts.invocation)
			return nil
		},
	}
	cmd.SetVersionTemplate(`{{printf "prtg version %s\n" .Version}}`)

	pf := cmd.PersistentFlags()
	pf.StringVar(&opts.url, "url", "", "PRTG server URL (env PRTG_URL)")
	pf.StringVar(&opts.apiToken, "api-token", "", "API token (env PRTG_API_TOKEN)")
	pf.StringVar(&opts.configPath, "config", "", "profile file (default ~/.config/prtg/config)")
	pf.StringVar(&opts.profile, "profile", "", "profile name (default \"default\")")
	pf.BoolVar(&opts.noVerifySSL, "no-verify-ssl", false, "skip TLS certificate verification")
	pf.StringVarP(&opts.output, "output", "o", "", "output format: json, yaml, table or csv (default json)")
	pf.BoolVar(&opts.noPretty, "no-pretty", false, "compact output")
	pf.DurationVar(&opts.timeout, "timeout", 0, "request timeout (default 30s)")
	pf.IntVar(&opts.retries, "retries", 0, "retry transport and server errors this many times")
	pf.BoolVarP(&opts.verbose, "verbose", "v", false, "log informational messages")
	pf.BoolVar(&opts.debug, "debug", false, "log requests and responses")
	pf.StringVar(&opts.logFormat, "log-format", "", "log format: console or json")

	cmd.AddCommand(
		newDeviceCmd(opts),
		newSensorCmd(opts),
		newObjectCmd(opts, groupKind),
		newObjectCmd(opts, probeKind),
		newConfigCmd(opts),
		newVersionCmd(),
		newUpdateCmd(opts),
	)
	return cmd, opts
}

// Execute runs the command line and exits with the code for the error kind.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	root, opts := newRootCmd()
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return apierr.ExitOK
	}
	opts.reportError(stderr, err)
	return apierr.ExitCode(err)
}

// reportError prints err in the structured form for json and yaml output and
// as "Error: message" otherwise.
func (o *rootOptions) reportError(w io.Writer, err error) {
	format := o.format
	if format == "" {
		format = o.output
	}
	if !output.Structured(format) {
		fmt.Fprintf(w, "Error: %s\n", err)
		return
	}
	f, ferr := output.NewRegistry().New(format, output.Options{Pretty: !o.noPretty})
	if ferr != nil {
		fmt.Fprintf(w, "Error: %s\n", err)
		return
	}
	if werr := f.FormatError(w, err); werr != nil {
		fmt.Fprintf(w, "Error: %s\n", err)
	}
}

// overrides maps the flags the user actually set onto config overrides.
func (o *rootOptions) overrides(cmd *cobra.Command) config.Overrides {
	flags := cmd.Flags()
	ov := config.Overrides{
		URL:        o.url,
		APIToken:   o.apiToken,
		ConfigPath: o.configPath,
		Profile:    o.profile,
		Output:     o.output,
		Timeout:    o.timeout,
		LogFormat:  o.logFormat,
		LogLevel:   o.flagLevel(),
	}
	if flags.Changed("no-verify-ssl") {
		v := o.noVerifySSL
		ov.NoVerifySSL = &v
	}
	if flags.Changed("no-pretty") {
		v := !o.noPretty
		ov.Pretty = &v
	}
	if flags.Changed("retries") {
		v := o.retries
		ov.Retries = &v
	}
	return ov
}

func (o *rootOptions) flagLevel() string {
	switch {
	case o.debug:
		return "debug"
	case o.verbose:
		return "info"
	}
	return ""
}

// bootstrapLogging is the logging setup used before settings are resolved.
func (o *rootOptions) bootstrapLogging() config.LoggingConfig {
	level := o.flagLevel()
	if level == "" {
		level = "warn"
		if v := strings.ToLower(os.Getenv("PRTG_DEBUG")); v == "1" || v == "true" || v == "yes" {
			level = "debug"
		}
	}
	return config.LoggingConfig{
		Level:  level,
		Format: o.logFormat,
		Color:  isatty.IsTerminal(os.Stderr.Fd()),
	}
}

// setupLogger configures the zerolog logger
func setupLogger(cfg config.LoggingConfig, invocation string) zerolog.Logger {
	level := zerolog.WarnLevel
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = zerolog.DebugLevel
	case "info":
		level = zerolog.InfoLevel
	case "error":
		level = zerolog.ErrorLevel
	}

	if cfg.Format == "json" {
		return zerolog.New(os.Stderr).Level(level).With().Timestamp().Str("invocation", invocation).Logger()
	}

	output := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
		NoColor:    !cfg.Color,
	}

	return zerolog.New(output).Level(level).With().Timestamp().Str("invocation", invocation).Logger()
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
