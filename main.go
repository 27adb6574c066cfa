package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/XiaoConstantine/dspy-go/pkg/logging"
	"github.com/spf13/cobra"
	"skyscope/entrepreneur/config"
)

type rootOptions struct {
	configPath string
	debug      bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}
	runOpts := &runOptions{}

	root := &cobra.Command{
		Use:           "skyscope",
		Short:         "Skyscope Sentinel multi-agent AI entrepreneur",
		Long:          "Researches a topic with a Researcher agent and turns the findings into an implementation plan with a Writer agent.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogging(opts.debug)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCrew(cmd, opts, runOpts)
		},
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to a YAML configuration file (default ./"+config.DefaultFile+" when present)")
	root.PersistentFlags().BoolVar(&opts.debug, "debug", false, "enable debug logging")
	bindRunFlags(root, runOpts)

	root.AddCommand(newRunCommand(opts), newServeCommand(opts))
	return root
}

func setupLogging(debug bool) {
	logLevel := logging.INFO
	if debug {
		logLevel = logging.DEBUG
	}
	output := logging.NewConsoleOutput(true, logging.WithColor(true))
	logger := logging.NewLogger(logging.Config{
		Severity: logLevel,
		Outputs:  []logging.Output{output},
	})
	logging.SetLogger(logger)
}

func loadConfig(ctx context.Context, opts *rootOptions) (*config.Config, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		logging.GetLogger().Error(ctx, "Failed to load configuration: %v", err)
		return nil, err
	}
	return cfg, nil
}
