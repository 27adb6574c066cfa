package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeOllama serves the chat completions endpoint and answers by persona.
type fakeOllama struct {
	mu              sync.Mutex
	researchPrompts []string
}

func (f *fakeOllama) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Messages []struct {
			Content string `json:"content"`
		} `json:"messages"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Messages) == 0 {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	prompt := req.Messages[0].Content

	answer := "Plan: stake and compound."
	if !strings.Contains(prompt, "You are Tech Content Strategist.") {
		answer = "Research: staking yields 5%."
		f.mu.Lock()
		f.researchPrompts = append(f.researchPrompts, prompt)
		f.mu.Unlock()
	}
	reply, _ := json.Marshal(map[string]any{
		"model":   "internlm2",
		"choices": []map[string]any{{"index": 0, "message": map[string]string{"role": "assistant", "content": "<response>" + answer + "</response>"}}},
		"usage":   map[string]int{"prompt_tokens": 3, "completion_tokens": 2, "total_tokens": 5},
	})
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(reply)
}

func setupRun(t *testing.T, save bool) (*fakeOllama, string, string) {
	t.Helper()
	for _, key := range []string{"SKYSCOPE_PROVIDER", "SKYSCOPE_MODEL", "OLLAMA_HOST", "GEMINI_API_KEY", "SKYSCOPE_SEARCH_PROVIDER", "TAVILY_API_KEY", "SKYSCOPE_OUTPUT_DIR", "SKYSCOPE_ADDR"} {
		t.Setenv(key, "")
	}

	fake := &fakeOllama{}
	server := httptest.NewServer(fake)
	t.Cleanup(server.Close)

	dir := t.TempDir()
	configDir := filepath.Join(dir, "config-out")
	path := filepath.Join(dir, "skyscope.yaml")
	content := fmt.Sprintf(`default_topic: topic from config
llm:
  host: %s
  check_runtime: false
  pull_model: false
output:
  save: %t
  dir: %s
`, server.URL, save, configDir)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return fake, path, configDir
}

func execute(t *testing.T, args ...string) error {
	t.Helper()
	root := newRootCommand()
	root.SetArgs(args)
	return root.ExecuteContext(context.Background())
}

func TestRunSavesToConfiguredDir(t *testing.T) {
	fake, path, configDir := setupRun(t, true)

	require.NoError(t, execute(t, "run", "--config", path, "--topic", "crypto staking"))

	plan, err := os.ReadFile(filepath.Join(configDir, "implementation_plan.txt"))
	require.NoError(t, err)
	assert.Equal(t, "Plan: stake and compound.", string(plan))
	research, err := os.ReadFile(filepath.Join(configDir, "research_report.txt"))
	require.NoError(t, err)
	assert.Equal(t, "Research: staking yields 5%.", string(research))

	require.Len(t, fake.researchPrompts, 1)
	assert.Contains(t, fake.researchPrompts[0], "<task>\ncrypto staking\n</task>")
}

func TestRunSaveFlagOverridesConfig(t *testing.T) {
	_, path, configDir := setupRun(t, true)

	require.NoError(t, execute(t, "run", "--config", path, "--topic", "x", "--save=false"))

	_, err := os.Stat(configDir)
	assert.True(t, os.IsNotExist(err))
}

func TestRunKeepsConfigSaveWhenFlagUnset(t *testing.T) {
	_, path, configDir := setupRun(t, false)

	require.NoError(t, execute(t, "run", "--config", path, "--topic", "x"))

	_, err := os.Stat(configDir)
	assert.True(t, os.IsNotExist(err))
}

func TestRunOutputDirFlag(t *testing.T) {
	_, path, configDir := setupRun(t, false)
	outDir := filepath.Join(t.TempDir(), "flag-out")

	require.NoError(t, execute(t, "--config", path, "--topic", "x", "--save", "--output-dir", outDir))

	assert.FileExists(t, filepath.Join(outDir, "research_report.txt"))
	assert.FileExists(t, filepath.Join(outDir, "implementation_plan.txt"))
	_, err := os.Stat(configDir)
	assert.True(t, os.IsNotExist(err))
}

func TestRunExplicitEmptyTopic(t *testing.T) {
	fake, path, _ := setupRun(t, false)

	require.NoError(t, execute(t, "run", "--config", path, "--topic", ""))

	require.Len(t, fake.researchPrompts, 1)
	assert.Contains(t, fake.researchPrompts[0], "<task>\n\n</task>")
	assert.NotContains(t, fake.researchPrompts[0], "topic from config")
}

func TestRunWithoutTopicUsesConfigDefault(t *testing.T) {
	fake, path, _ := setupRun(t, false)

	// Test stdin is not a terminal, so no prompt is shown.
	require.NoError(t, execute(t, "run", "--config", path))

	require.Len(t, fake.researchPrompts, 1)
	assert.Contains(t, fake.researchPrompts[0], "<task>\ntopic from config\n</task>")
}

func TestRunFailsOnBadConfig(t *testing.T) {
	err := execute(t, "run", "--config", filepath.Join(t.TempDir(), "missing.yaml"), "--topic", "x")
	assert.Error(t, err)
}
