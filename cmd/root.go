package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"personal-data-assistant/config"
	"personal-data-assistant/pipeline"
	"personal-data-assistant/utils"
)

var (
	cfg    *config.Config
	logger *utils.Logger
	runner *pipeline.Runner

	logFile string
	debug   bool
)

// RootCmd represents the base command when called without any subcommands.
var RootCmd = &cobra.Command{
	Use:           "pda",
	Short:         "Personal Data Assistant",
	Long:          `Validate expense CSVs and notes, compute spending statistics, optionally enrich them with an exchange rate, and render a Markdown report.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().Changed("log-file") {
			cfg.LogFile = logFile
		}
		if cmd.Flags().Changed("debug") {
			cfg.Debug = debug
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		l, err := utils.NewLoggerWithOptions(utils.LoggerOptions{FilePath: cfg.LogFile, Debug: cfg.Debug})
		if err != nil {
			return err
		}
		logger = l
		runner = pipeline.New(cfg, logger)
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if logger != nil {
			return logger.Close()
		}
		return nil
	},
}

// Execute loads configuration and runs the selected subcommand.
func Execute() error {
	cfg = config.Load()
	applyDefaults()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return RootCmd.ExecuteContext(ctx)
}

func init() {
	RootCmd.PersistentFlags().StringVar(&logFile, "log-file", "logs/app.log", "Log file path")
	RootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")

	RootCmd.AddCommand(ingestCmd, analyzeCmd, enrichCmd, reportCmd, runCmd)
}

// applyDefaults points flag defaults at the loaded configuration so that
// env values show up in --help and are used when a flag is not given.
func applyDefaults() {
	for _, c := range []*cobra.Command{ingestCmd, runCmd} {
		c.Flags().Lookup("out").DefValue = cfg.OutDir
	}
	for _, c := range []*cobra.Command{enrichCmd, runCmd} {
		c.Flags().Lookup("cache").DefValue = cfg.CacheDir
	}
	for _, c := range []*cobra.Command{reportCmd, runCmd} {
		c.Flags().Lookup("report").DefValue = cfg.ReportPath
	}
}

// flagOr returns the flag value if it was set, otherwise fallback.
func flagOr(cmd *cobra.Command, name, fallback string) string {
	if cmd.Flags().Changed(name) {
		v, _ := cmd.Flags().GetString(name)
		return v
	}
	return fallback
}

func requireAPI(api string) error {
	if api != "" && api != pipeline.APIExchangeRate {
		return fmt.Errorf("unsupported --api %q (supported: %s)", api, pipeline.APIExchangeRate)
	}
	return nil
}
