package core

import "context"

type LLMInput struct {
	Text string
}

type LLMOutput struct {
	Text  string
	Stats Stats
}

type Stats struct {
	InputTokenCount  int32 `json:"input_token_count,omitempty"`
	OutputTokenCount int32 `json:"output_token_count,omitempty"`
	TotalTokenCount  int32 `json:"total_token_count,omitempty"`
}

// Add returns the sum of both counters.
func (s Stats) Add(other Stats) Stats {
	return Stats{
		InputTokenCount:  s.InputTokenCount + other.InputTokenCount,
		OutputTokenCount: s.OutputTokenCount + other.OutputTokenCount,
		TotalTokenCount:  s.TotalTokenCount + other.TotalTokenCount,
	}
}

// Sub returns s minus other.
func (s Stats) Sub(other Stats) Stats {
	return Stats{
		InputTokenCount:  s.InputTokenCount - other.InputTokenCount,
		OutputTokenCount: s.OutputTokenCount - other.OutputTokenCount,
		TotalTokenCount:  s.TotalTokenCount - other.TotalTokenCount,
	}
}

type ChatContent struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

func NewContent(role string, content string) ChatContent {
	return ChatContent{
		Role:    role,
		Content: content,
	}
}

// LLM is the model binding of an agent. history holds earlier turns of the
// current task, oldest first; input.Text is the new user turn and may be empty.
type LLM interface {
	Generate(ctx context.Context, systemContext string, history []ChatContent, input LLMInput) (LLMOutput, error)
}
