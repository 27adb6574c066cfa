// Package config loads the crew configuration from built-in defaults, an
// optional YAML file and environment variables, in that order.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// DefaultFile is read when no explicit path is given and it exists.
const DefaultFile = "skyscope.yaml"

type Config struct {
	App          AppConfig    `yaml:"app"`
	DefaultTopic string       `yaml:"default_topic"`
	Verbose      bool         `yaml:"verbose"`
	LLM          LLMConfig    `yaml:"llm"`
	Search       SearchConfig `yaml:"search"`
	Researcher   AgentConfig  `yaml:"researcher"`
	Writer       AgentConfig  `yaml:"writer"`
	ResearchTask TaskConfig   `yaml:"research_task"`
	WriteTask    TaskConfig   `yaml:"write_task"`
	Output       OutputConfig `yaml:"output"`
	Server       ServerConfig `yaml:"server"`
}

type AppConfig struct {
	Title    string `yaml:"title" validate:"required"`
	Subtitle string `yaml:"subtitle"`
	Author   string `yaml:"author"`
	License  string `yaml:"license"`
}

type LLMConfig struct {
	Provider      string  `yaml:"provider" validate:"oneof=ollama gemini"`
	Model         string  `yaml:"model" validate:"required"`
	Host          string  `yaml:"host"`
	APIKey        string  `yaml:"api_key" validate:"required_if=Provider gemini"`
	Temperature   float64 `yaml:"temperature" validate:"gte=0,lte=2"`
	MaxIterations int     `yaml:"max_iterations" validate:"gte=0"`
	// CheckRuntime verifies that the ollama command is installed before a run.
	CheckRuntime bool `yaml:"check_runtime"`
	PullModel    bool `yaml:"pull_model"`
}

type SearchConfig struct {
	Provider     string `yaml:"provider" validate:"oneof=duckduckgo tavily"`
	TavilyAPIKey string `yaml:"tavily_api_key" validate:"required_if=Provider tavily"`
	TavilyDepth  string `yaml:"tavily_depth" validate:"omitempty,oneof=basic advanced"`
	MaxResults   int    `yaml:"max_results" validate:"gte=1,lte=20"`
}

type AgentConfig struct {
	Role            string   `yaml:"role" validate:"required"`
	Goal            string   `yaml:"goal" validate:"required"`
	Backstory       string   `yaml:"backstory"`
	AllowDelegation bool     `yaml:"allow_delegation"`
	Tools           []string `yaml:"tools"`
}

type TaskConfig struct {
	Description    string `yaml:"description"`
	ExpectedOutput string `yaml:"expected_output" validate:"required"`
}

type OutputConfig struct {
	Save         bool   `yaml:"save"`
	Dir          string `yaml:"dir"`
	ResearchFile string `yaml:"research_file" validate:"required"`
	PlanFile     string `yaml:"plan_file" validate:"required,nefield=ResearchFile"`
}

type ServerConfig struct {
	Addr string `yaml:"addr" validate:"required"`
}

// Load builds the configuration. path may be empty.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	case explicit || !errors.Is(err, os.ErrNotExist):
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			var msgs []string
			for _, fe := range validationErrors {
				msgs = append(msgs, fmt.Sprintf("%s failed on %s", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

func applyEnv(cfg *Config) {
	setString(&cfg.LLM.Provider, "SKYSCOPE_PROVIDER")
	setString(&cfg.LLM.Model, "SKYSCOPE_MODEL")
	setString(&cfg.LLM.Host, "OLLAMA_HOST")
	setString(&cfg.LLM.APIKey, "GEMINI_API_KEY")
	setString(&cfg.Search.Provider, "SKYSCOPE_SEARCH_PROVIDER")
	setString(&cfg.Search.TavilyAPIKey, "TAVILY_API_KEY")
	setString(&cfg.Output.Dir, "SKYSCOPE_OUTPUT_DIR")
	setString(&cfg.Server.Addr, "SKYSCOPE_ADDR")
}

func setString(target *string, key string) {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		*target = val
	}
}
