package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/XiaoConstantine/dspy-go/pkg/logging"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"skyscope/entrepreneur/ollama"
	"skyscope/entrepreneur/services/crew_service"
	"skyscope/entrepreneur/web"
)

func newServeCommand(opts *rootOptions) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the web form",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := logging.GetLogger()

			cfg, err := loadConfig(ctx, opts)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}
			if !opts.debug {
				gin.SetMode(gin.ReleaseMode)
			}

			pipeline, err := crew_service.Build(ctx, cfg, crew_service.WithStageObserver(func(stage crew_service.Stage) {
				logger.Info(ctx, "Pipeline stage: %s", stage)
			}))
			if err != nil {
				logger.Error(ctx, "Failed to build pipeline: %v", err)
				return err
			}

			server := web.NewServer(cfg, pipeline)
			runtime := ollama.NewRuntime()
			server.Preflight = func(ctx context.Context) error {
				return crew_service.EnsureRuntime(ctx, cfg.LLM, runtime)
			}

			httpServer := &http.Server{Addr: cfg.Server.Addr, Handler: server.Handler()}
			go func() {
				<-ctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				_ = httpServer.Shutdown(shutdownCtx)
			}()

			logger.Info(ctx, "Serving %s on %s", cfg.App.Title, cfg.Server.Addr)
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error(ctx, "Server stopped: %v", err)
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from configuration)")
	return cmd
}
