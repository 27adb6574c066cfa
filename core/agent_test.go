package core

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAgent(t *testing.T, llm LLM, mutate func(*AgentConfig)) *Agent {
	t.Helper()
	config := AgentConfig{
		Role:      "Researcher",
		Goal:      "Find facts",
		Backstory: "You dig up information.",
		LLM:       llm,
	}
	if mutate != nil {
		mutate(&config)
	}
	agent, err := NewAgent(config, newTestRegistry())
	require.NoError(t, err)
	return agent
}

var testTask = &Task{Description: "Research {{topic}}", ExpectedOutput: "A report"}

func TestNewAgentValidation(t *testing.T) {
	_, err := NewAgent(AgentConfig{Role: "Researcher"}, newTestRegistry())
	assert.Error(t, err)

	_, err = NewAgent(AgentConfig{Role: "Researcher", LLM: newScriptedLLM(), Tools: []string{"Missing"}}, newTestRegistry())
	assert.ErrorIs(t, err, ErrToolNotFound)

	agent, err := NewAgent(AgentConfig{Role: "Researcher", LLM: newScriptedLLM(), Tools: []string{"Echo"}}, newTestRegistry())
	require.NoError(t, err)
	assert.Equal(t, defaultMaxIterations, agent.MaxIterations)
	assert.Equal(t, []string{"Echo"}, agent.Tools())
}

func TestAgentExecuteReturnsResponse(t *testing.T) {
	llm := newScriptedLLM("<thinking>easy</thinking>\n<response>\nStaking pays yield.\n</response>")
	agent := newTestAgent(t, llm, nil)

	out, err := agent.Execute(context.Background(), testTask, map[string]string{"topic": "staking"}, "")
	require.NoError(t, err)

	assert.Equal(t, "Staking pays yield.", out.Raw)
	assert.Equal(t, "Researcher", out.Agent)
	assert.Equal(t, "Research staking", out.Description)
	assert.Equal(t, int32(15), out.Stats.TotalTokenCount)

	require.Len(t, llm.calls, 1)
	assert.Contains(t, llm.calls[0].systemContext, "You are Researcher.")
	assert.Contains(t, llm.calls[0].systemContext, "Your personal goal is: Find facts")
	assert.Contains(t, llm.calls[0].input.Text, "<task>\nResearch staking\n</task>")
	assert.NotContains(t, llm.calls[0].input.Text, "<context>")
	assert.Empty(t, llm.calls[0].history)
}

func TestAgentExecuteIncludesContext(t *testing.T) {
	llm := newScriptedLLM("<response>plan</response>")
	agent := newTestAgent(t, llm, nil)

	_, err := agent.Execute(context.Background(), testTask, nil, "earlier findings")
	require.NoError(t, err)
	assert.Contains(t, llm.calls[0].input.Text, "<context>\nThis is the context you're working with:\nearlier findings\n</context>")
}

func TestAgentRunsToolCalls(t *testing.T) {
	llm := newScriptedLLM(
		`<thinking>search first</thinking><tool_call><tool_name>Echo</tool_name><parameters>{"text":"staking"}</parameters></tool_call>`,
		"<response>done</response>",
	)
	agent := newTestAgent(t, llm, func(c *AgentConfig) { c.Tools = []string{"Echo"} })

	var events []Event
	exec := &execution{runId: "run", observer: func(e Event) { events = append(events, e) }}
	out, err := agent.execute(context.Background(), testTask, nil, "", exec)
	require.NoError(t, err)

	assert.Equal(t, "done", out.Raw)
	assert.Equal(t, int32(30), out.Stats.TotalTokenCount)
	require.Len(t, llm.calls, 2)
	assert.Contains(t, llm.calls[0].systemContext, `"name":"Echo"`)
	assert.Contains(t, llm.calls[1].input.Text, "<tool_result>")
	assert.Contains(t, llm.calls[1].input.Text, "echo: staking")
	assert.Len(t, llm.calls[1].history, 2)

	require.Len(t, events, 1)
	assert.Equal(t, EventToolUsed, events[0].Kind)
	assert.Equal(t, "Echo", events[0].Tool)
	assert.Equal(t, "run", events[0].RunId)
}

func TestAgentReportsToolFailures(t *testing.T) {
	llm := newScriptedLLM(
		`<tool_call><tool_name>Broken</tool_name><parameters>{"text":"x"}</parameters></tool_call>`,
		`<tool_call><tool_name>Missing</tool_name><parameters>{}</parameters></tool_call>`,
		`<tool_call><tool_name>Echo</tool_name><parameters>{oops}</parameters></tool_call>`,
		"<response>recovered</response>",
	)
	agent := newTestAgent(t, llm, func(c *AgentConfig) { c.Tools = []string{"Echo", "Broken"} })

	out, err := agent.Execute(context.Background(), testTask, nil, "")
	require.NoError(t, err)
	assert.Equal(t, "recovered", out.Raw)

	require.Len(t, llm.calls, 4)
	assert.Contains(t, llm.calls[1].input.Text, "error: boom")
	assert.Contains(t, llm.calls[2].input.Text, "error: tool not found: Missing")
	assert.Contains(t, llm.calls[3].input.Text, "<tool_result>error: failed to parse parameters")
}

func TestAgentAsksOnceForMissingResponseTag(t *testing.T) {
	llm := newScriptedLLM("I forgot the tags", "<response>fixed</response>")
	agent := newTestAgent(t, llm, nil)

	out, err := agent.Execute(context.Background(), testTask, nil, "")
	require.NoError(t, err)
	assert.Equal(t, "fixed", out.Raw)
	require.Len(t, llm.calls, 2)
	assert.Equal(t, formatCorrectionPrompt, llm.calls[1].input.Text)
}

func TestAgentFallsBackToRawText(t *testing.T) {
	llm := newScriptedLLM("no tags", "<thinking>hmm</thinking>still no tags")
	agent := newTestAgent(t, llm, nil)

	out, err := agent.Execute(context.Background(), testTask, nil, "")
	require.NoError(t, err)
	assert.Equal(t, "still no tags", out.Raw)
	assert.Len(t, llm.calls, 2)
}

func TestAgentForcesAnswerAfterMaxIterations(t *testing.T) {
	toolCall := `<tool_call><tool_name>Echo</tool_name><parameters>{"text":"again"}</parameters></tool_call>`
	llm := newScriptedLLM(toolCall, toolCall, toolCall+"<response>best effort</response>")
	agent := newTestAgent(t, llm, func(c *AgentConfig) {
		c.Tools = []string{"Echo"}
		c.MaxIterations = 2
	})

	out, err := agent.Execute(context.Background(), testTask, nil, "")
	require.NoError(t, err)
	assert.Equal(t, "best effort", out.Raw)
	require.Len(t, llm.calls, 3)
	assert.NotContains(t, llm.calls[1].input.Text, forceAnswerPrompt)
	assert.Contains(t, llm.calls[2].input.Text, forceAnswerPrompt)
}

func TestAgentModelErrorAborts(t *testing.T) {
	llm := newScriptedLLM()
	llm.err = errors.New("model offline")
	agent := newTestAgent(t, llm, nil)

	_, err := agent.Execute(context.Background(), testTask, nil, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model offline")
	assert.Contains(t, err.Error(), "Researcher")
}

func TestAgentDelegatesToCoworker(t *testing.T) {
	researcherLLM := newScriptedLLM("<response>Exchanges offer 5% staking.</response>")
	writerLLM := newScriptedLLM(
		"<agent_call><agent_name>Researcher</agent_name><input>What yields are common?</input></agent_call>",
		"<response>Plan built on 5% staking.</response>",
	)
	researcher := newTestAgent(t, researcherLLM, nil)
	writer := newTestAgent(t, writerLLM, func(c *AgentConfig) {
		c.Role = "Writer"
		c.AllowDelegation = true
	})
	var events []Event
	exec := &execution{runId: "run", taskIndex: 1, observer: func(e Event) { events = append(events, e) }, coworkers: []*Agent{researcher}}
	out, err := writer.execute(context.Background(), testTask, nil, "", exec)
	require.NoError(t, err)

	assert.Equal(t, "Plan built on 5% staking.", out.Raw)
	assert.Equal(t, int32(45), out.Stats.TotalTokenCount)

	assert.Contains(t, writerLLM.calls[0].systemContext, "<agents>")
	assert.Contains(t, writerLLM.calls[1].input.Text, "<agent_result>")
	assert.Contains(t, writerLLM.calls[1].input.Text, "Exchanges offer 5% staking.")

	require.Len(t, researcherLLM.calls, 1)
	assert.NotContains(t, researcherLLM.calls[0].systemContext, "<agents>")
	assert.Contains(t, researcherLLM.calls[0].input.Text, "What yields are common?")
	assert.Contains(t, researcherLLM.calls[0].input.Text, coworkerExpectedOutput)

	require.Len(t, events, 1)
	assert.Equal(t, EventDelegated, events[0].Kind)
	assert.Equal(t, "Researcher", events[0].Agent)
	assert.Equal(t, 1, events[0].TaskIndex)

	assert.Empty(t, writer.toolRepo.ListAgentDescriptors())
}

func TestAgentExecuteWithCoworkers(t *testing.T) {
	researcherLLM := newScriptedLLM("<response>fact</response>")
	writerLLM := newScriptedLLM(
		"<agent_call><agent_name>Researcher</agent_name><input>help</input></agent_call>",
		"<response>done</response>",
	)
	researcher := newTestAgent(t, researcherLLM, nil)
	writer := newTestAgent(t, writerLLM, func(c *AgentConfig) {
		c.Role = "Writer"
		c.AllowDelegation = true
	})

	out, err := writer.Execute(context.Background(), testTask, nil, "", researcher)
	require.NoError(t, err)
	assert.Equal(t, "done", out.Raw)
	assert.Len(t, researcherLLM.calls, 1)
}

func TestAgentWithoutDelegationIgnoresCoworkers(t *testing.T) {
	llm := newScriptedLLM("<response>alone</response>")
	agent := newTestAgent(t, llm, func(c *AgentConfig) { c.Role = "Writer" })
	other := newTestAgent(t, newScriptedLLM(), nil)

	_, err := agent.Execute(context.Background(), testTask, nil, "", other)
	require.NoError(t, err)
	assert.NotContains(t, llm.calls[0].systemContext, "<agents>")
}

func TestAgentIgnoresAgentCallsWithoutDelegation(t *testing.T) {
	llm := newScriptedLLM("<agent_call><agent_name>Researcher</agent_name><input>help</input></agent_call><response>alone</response>")
	agent := newTestAgent(t, llm, func(c *AgentConfig) { c.Role = "Writer" })

	out, err := agent.Execute(context.Background(), testTask, nil, "")
	require.NoError(t, err)
	assert.Equal(t, "alone", out.Raw)
	assert.Len(t, llm.calls, 1)
}

func TestExtractTagContent(t *testing.T) {
	got, ok := extractTagContent("<response>a</response> and <response>b</response>", "response")
	assert.True(t, ok)
	assert.Equal(t, "a\nb", got)

	_, ok = extractTagContent("<response>unterminated", "response")
	assert.False(t, ok)

	assert.Equal(t, "kept", stripTagContent("<thinking>drop</thinking> kept", "thinking"))
}
