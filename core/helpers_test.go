package core

import (
	"context"
	"errors"
	"sync"
)

type llmCall struct {
	systemContext string
	history       []ChatContent
	input         LLMInput
}

// scriptedLLM replays canned replies and records every call.
type scriptedLLM struct {
	mu      sync.Mutex
	replies []string
	err     error
	calls   []llmCall
}

func newScriptedLLM(replies ...string) *scriptedLLM {
	return &scriptedLLM{replies: replies}
}

func (s *scriptedLLM) Generate(_ context.Context, systemContext string, history []ChatContent, input LLMInput) (LLMOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls = append(s.calls, llmCall{
		systemContext: systemContext,
		history:       append([]ChatContent(nil), history...),
		input:         input,
	})
	if s.err != nil {
		return LLMOutput{}, s.err
	}
	if len(s.replies) == 0 {
		return LLMOutput{}, errors.New("no scripted reply left")
	}
	reply := s.replies[0]
	s.replies = s.replies[1:]
	return LLMOutput{Text: reply, Stats: Stats{InputTokenCount: 10, OutputTokenCount: 5, TotalTokenCount: 15}}, nil
}

type echoInput struct {
	Text string `json:"text" jsonschema:"required"`
}

func newTestRegistry() *ToolRegistry {
	registry := NewToolRegistry()
	_ = registry.RegisterInbuilt("Echo", "Echoes its input.", func(ctx context.Context, in echoInput) (string, error) {
		return "echo: " + in.Text, nil
	})
	_ = registry.RegisterInbuilt("Broken", "Always fails.", func(ctx context.Context, in echoInput) (string, error) {
		return "", errors.New("boom")
	})
	return registry
}
