package crew_service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/XiaoConstantine/dspy-go/pkg/logging"
	"skyscope/entrepreneur/config"
	"skyscope/entrepreneur/core"
	"skyscope/entrepreneur/gemini"
	"skyscope/entrepreneur/ollama"
	"skyscope/entrepreneur/tools"
)

// NewLLM returns the model client selected by cfg.
func NewLLM(ctx context.Context, cfg config.LLMConfig) (core.LLM, error) {
	switch cfg.Provider {
	case "", "ollama":
		llm, err := ollama.NewOllama(cfg.Host, cfg.Model)
		if err != nil {
			return nil, err
		}
		llm.Temperature = cfg.Temperature
		return llm, nil
	case "gemini":
		llm, err := gemini.NewGemini(ctx, cfg.APIKey, cfg.Model)
		if err != nil {
			return nil, err
		}
		llm.Temperature = float32(cfg.Temperature)
		return llm, nil
	}
	return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
}

// NewSearcher returns the search backend of the web search tool.
func NewSearcher(cfg config.SearchConfig) (tools.Searcher, error) {
	switch cfg.Provider {
	case "", "duckduckgo":
		ddg := tools.NewDuckDuckGoWithClient(&http.Client{Timeout: 15 * time.Second})
		if cfg.MaxResults > 0 {
			ddg.MaxResults = cfg.MaxResults
		}
		return ddg, nil
	case "tavily":
		tavily := tools.NewTavily(cfg.TavilyAPIKey, cfg.TavilyDepth)
		if cfg.MaxResults > 0 {
			tavily.MaxResults = cfg.MaxResults
		}
		return tavily, nil
	}
	return nil, fmt.Errorf("unknown search provider %q", cfg.Provider)
}

// NewToolRegistry builds the tool registry for cfg.
func NewToolRegistry(cfg config.SearchConfig) (*core.ToolRegistry, error) {
	searcher, err := NewSearcher(cfg)
	if err != nil {
		return nil, err
	}
	return core.NewInbuiltToolRegistry(searcher, tools.NewPageReader())
}

// EnsureRuntime checks the local ollama installation and pulls the model.
// A missing installation is an error; a failed pull is only logged.
func EnsureRuntime(ctx context.Context, cfg config.LLMConfig, runtime *ollama.Runtime) error {
	if cfg.Provider != "ollama" || !cfg.CheckRuntime {
		return nil
	}
	logger := logging.GetLogger()
	if err := runtime.CheckInstalled(ctx); err != nil {
		return err
	}
	if !cfg.PullModel {
		return nil
	}
	if err := runtime.PullModel(ctx, cfg.Model); err != nil {
		logger.Warn(ctx, "%v. Please check your Ollama installation.", err)
		return nil
	}
	logger.Info(ctx, "Model %s is ready for use.", ollama.ModelRef(cfg.Model))
	return nil
}

// Build wires a ready-to-run pipeline from cfg.
func Build(ctx context.Context, cfg *config.Config, opts ...Option) (*Pipeline, error) {
	if cfg == nil {
		return nil, errors.New("no configuration")
	}
	llm, err := NewLLM(ctx, cfg.LLM)
	if err != nil {
		return nil, err
	}
	registry, err := NewToolRegistry(cfg.Search)
	if err != nil {
		return nil, err
	}
	return NewPipeline(cfg, llm, registry, opts...)
}
