package ollama

import (
	"context"
	"fmt"
	"strings"

	dspycore "github.com/XiaoConstantine/dspy-go/pkg/core"
	"github.com/XiaoConstantine/dspy-go/pkg/llms"

	"skyscope/entrepreneur/core"
)

const (
	DefaultHost = "http://localhost:11434"

	// requestTimeout is in seconds; local models can take minutes per turn.
	requestTimeout = 600
)

// Ollama is a core.LLM served by a local or remote Ollama daemon through its
// OpenAI compatible chat endpoint.
type Ollama struct {
	Host        string
	ModelName   string
	Temperature float64
	llm         *llms.OllamaLLM
}

func NewOllama(host string, modelName string) (*Ollama, error) {
	host = normalizeHost(host)
	llm, err := llms.NewOllamaLLM(dspycore.ModelID(modelName), llms.WithBaseURL(host), llms.WithTimeout(requestTimeout))
	if err != nil {
		return nil, fmt.Errorf("failed to create ollama client: %w", err)
	}
	return &Ollama{
		Host:        host,
		ModelName:   modelName,
		Temperature: 0.7,
		llm:         llm,
	}, nil
}

// Generate sends the system context, the history and the new input as one
// prompt. Missing usage in the reply leaves the stats at zero.
func (o *Ollama) Generate(ctx context.Context, systemContext string, history []core.ChatContent, input core.LLMInput) (core.LLMOutput, error) {
	resp, err := o.llm.Generate(ctx, renderPrompt(systemContext, history, input.Text), dspycore.WithTemperature(o.Temperature))
	if err != nil {
		return core.LLMOutput{}, fmt.Errorf("ollama generate with %s: %w", o.ModelName, err)
	}

	out := core.LLMOutput{Text: resp.Content}
	if resp.Usage != nil {
		out.Stats = core.Stats{
			InputTokenCount:  int32(resp.Usage.PromptTokens),
			OutputTokenCount: int32(resp.Usage.CompletionTokens),
			TotalTokenCount:  int32(resp.Usage.TotalTokens),
		}
	}
	return out, nil
}

// renderPrompt flattens a chat into role headed sections, oldest first.
func renderPrompt(systemContext string, history []core.ChatContent, input string) string {
	var sections []string
	if systemContext != "" {
		sections = append(sections, "### System\n"+systemContext)
	}
	for _, content := range history {
		sections = append(sections, "### "+roleTitle(content.Role)+"\n"+content.Content)
	}
	if input != "" {
		sections = append(sections, "### User\n"+input)
	}
	sections = append(sections, "### Assistant\n")
	return strings.Join(sections, "\n\n")
}

func roleTitle(role string) string {
	switch role {
	case "assistant", "model":
		return "Assistant"
	case "system":
		return "System"
	default:
		return "User"
	}
}

func normalizeHost(host string) string {
	host = strings.TrimSpace(host)
	if host == "" {
		host = DefaultHost
	}
	if !strings.HasPrefix(host, "http://") && !strings.HasPrefix(host, "https://") {
		host = "http://" + host
	}
	return strings.TrimRight(host, "/")
}
