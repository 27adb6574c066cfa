package main

import (
	"os"

	"github.com/XiaoConstantine/dspy-go/pkg/logging"
	"github.com/spf13/cobra"
	"skyscope/entrepreneur/console"
	"skyscope/entrepreneur/ollama"
	"skyscope/entrepreneur/services/crew_service"
)

type runOptions struct {
	topic     string
	save      bool
	outputDir string
}

func bindRunFlags(cmd *cobra.Command, runOpts *runOptions) {
	cmd.Flags().StringVar(&runOpts.topic, "topic", "", "research topic (prompted for when omitted)")
	cmd.Flags().BoolVar(&runOpts.save, "save", true, "save both outputs to text files")
	cmd.Flags().StringVar(&runOpts.outputDir, "output-dir", "", "directory for the output files")
}

func newRunCommand(opts *rootOptions) *cobra.Command {
	runOpts := &runOptions{}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Research a topic and write an implementation plan",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCrew(cmd, opts, runOpts)
		},
	}
	bindRunFlags(cmd, runOpts)
	return cmd
}

func runCrew(cmd *cobra.Command, opts *rootOptions, runOpts *runOptions) error {
	ctx := cmd.Context()
	logger := logging.GetLogger()
	out := console.New(os.Stdout)

	cfg, err := loadConfig(ctx, opts)
	if err != nil {
		out.Error(err)
		return err
	}
	if cmd.Flags().Changed("save") {
		cfg.Output.Save = runOpts.save
	}
	if runOpts.outputDir != "" {
		cfg.Output.Dir = runOpts.outputDir
	}

	out.Banner(cfg.App)

	if err := crew_service.EnsureRuntime(ctx, cfg.LLM, ollama.NewRuntime()); err != nil {
		out.Error(err)
		return err
	}

	topic := runOpts.topic
	if !cmd.Flags().Changed("topic") {
		topic, err = out.AskTopic(cfg.DefaultTopic)
		if err != nil {
			out.Error(err)
			return err
		}
	}

	pipeline, err := crew_service.Build(ctx, cfg,
		crew_service.WithStageObserver(out.Progress),
		crew_service.WithEventObserver(out.Event),
	)
	if err != nil {
		out.Error(err)
		return err
	}

	result, err := pipeline.Run(ctx, topic)
	if err != nil {
		out.Stop()
		logger.Error(ctx, "Failed to generate solution: %v", err)
		out.Error(err)
		return err
	}
	out.PrintResult(cfg.App, result)

	if cfg.Output.Save {
		paths, err := crew_service.SaveResult(result, cfg.Output)
		if err != nil {
			out.Error(err)
			return err
		}
		out.Saved(paths)
	}
	return nil
}
