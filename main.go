package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/bonial-oss/change-monitor/pkg/config"
	"github.com/bonial-oss/change-monitor/pkg/logging"
	"github.com/bonial-oss/change-monitor/pkg/monitor"
	"github.com/bonial-oss/change-monitor/pkg/monitor/metrics"
	"github.com/go-logr/logr"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var errInvalidConfig = errors.New("invalid configuration")

// NewRootCommand creates a new *cobra.Command that is used as the root command
// for change-monitor. lookup resolves configuration variables.
func NewRootCommand(lookup config.LookupFunc) *cobra.Command {
	var debug bool

	cmd := &cobra.Command{
		Use:   "change-monitor",
		Short: "Notify when a value on a web page changes",
		Long: `change-monitor fetches a web page once, extracts a value using the
configured strategy and compares it against the value stored by the previous
run. A notification is sent if the value changed or if the run failed.

All settings are read from MONITOR_* environment variables or the YAML file
named by MONITOR_CONFIG_FILE.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			logger := logging.New(logging.Options{Debug: debug, Output: cmd.ErrOrStderr()})
			cmd.SetContext(logr.NewContext(cmd.Context(), logger.WithName("main")))
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			options, err := loadOptions(cmd.Context(), lookup)
			if err != nil {
				return err
			}

			return Run(cmd.Context(), options)
		},
	}

	cmd.PersistentFlags().BoolVar(&debug, "debug", debug, "Enable debug logging.")

	cmd.AddCommand(newValidateCommand(lookup))

	return cmd
}

func newValidateCommand(lookup config.LookupFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate the configuration without running the monitor",
		Long: `Resolve and validate the configuration and print the resolved settings.

Exit codes:
  0 - Configuration is valid
  1 - Configuration is invalid (violations are logged to stderr)`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			options, err := loadOptions(cmd.Context(), lookup)
			if err != nil {
				return err
			}

			printSettings(cmd.OutOrStdout(), options)

			return nil
		},
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := NewRootCommand(os.LookupEnv).ExecuteContext(ctx)
	stop()

	os.Exit(exitCode(err, os.Stderr))
}

// exitCode returns the process exit code for err. Errors are logged to w
// unless their details were logged before.
func exitCode(err error, w io.Writer) int {
	if err == nil {
		return 0
	}

	if !errors.Is(err, errInvalidConfig) {
		logging.New(logging.Options{Output: w}).WithName("main").Error(err, "command failed")
	}

	return 1
}

// loadOptions resolves and validates the configuration. Every violation is
// logged separately.
func loadOptions(ctx context.Context, lookup config.LookupFunc) (*config.Options, error) {
	log := logr.FromContextOrDiscard(ctx)

	options, err := config.Load(lookup)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load configuration")
	}

	err = options.Validate()

	var verr *config.ValidationError
	if errors.As(err, &verr) {
		for _, violation := range verr.Violations {
			log.Error(nil, violation)
		}

		return nil, errInvalidConfig
	} else if err != nil {
		return nil, err
	}

	log.Info("configuration resolved", options.KeysAndValues()...)

	return options, nil
}

// Run executes a single monitor run. Runtime failures are reported through
// the notifier and do not cause an error.
func Run(ctx context.Context, options *config.Options) error {
	log := logr.FromContextOrDiscard(ctx)

	svc, err := monitor.NewService(options)
	if err != nil {
		return errors.Wrapf(err, "failed to initialize monitor service")
	}

	result := svc.Run(ctx)
	if result.Err == nil {
		log.Info("monitor run completed", "changed", result.Changed, "notified", result.Notified)
	}

	if options.PushgatewayURL != "" {
		err = metrics.Push(options.PushgatewayURL, options.Name)
		if err != nil {
			log.Error(err, "failed to push metrics", "url", options.PushgatewayURL)
		}
	}

	return nil
}

func printSettings(w io.Writer, options *config.Options) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Setting", "Value"})

	for _, s := range options.Settings() {
		t.AppendRow(table.Row{s.Key, s.Value})
	}

	t.SetStyle(table.StyleRounded)
	t.Render()
}
