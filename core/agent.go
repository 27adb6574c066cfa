package core

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/XiaoConstantine/dspy-go/pkg/logging"
	"github.com/google/uuid"
)

var systemAgentContext = `
You are {{role}}.
{{backstory}}

Your personal goal is: {{goal}}

You will receive a task between <task></task> tags, the criteria for your final answer between <expected_output></expected_output> tags and, when available, the work of your teammates between <context></context> tags.

Follow these steps to complete the task:

1. Read and understand the task, the expected output and the context.

2. Think step by step and put your thinking between the <thinking></thinking> tag.

3. Use the tools and coworkers listed below when you need information you do not have.

4. When you know the final answer, format your output as follows:
   <response>
   [Your complete final answer goes here]
   </response>

Remember to always include the <response> tag in your final output. Everything outside of it is discarded.
`

const (
	defaultMaxIterations = 15

	formatCorrectionPrompt = "It looks like the <response> tag was not properly completed. Reply again with your complete final answer between <response></response> tags."
	forceAnswerPrompt      = "You have used all the tool calls allowed for this task. Do not call any more tools or coworkers. Give your best complete final answer now between <response></response> tags."
	coworkerExpectedOutput = "Your best answer to your coworker asking you this, accounting for the context shared."
)

// AgentConfig describes an agent persona and its capabilities.
type AgentConfig struct {
	Role            string
	Goal            string
	Backstory       string
	AllowDelegation bool
	Verbose         bool
	Tools           []string
	MaxIterations   int
	LLM             LLM
}

func NewAgent(config AgentConfig, registry *ToolRegistry) (*Agent, error) {
	if config.LLM == nil {
		return nil, fmt.Errorf("agent %s: no model configured", config.Role)
	}
	agent := &Agent{
		Role:            config.Role,
		Goal:            config.Goal,
		Backstory:       strings.TrimSpace(config.Backstory),
		AllowDelegation: config.AllowDelegation,
		Verbose:         config.Verbose,
		MaxIterations:   config.MaxIterations,
		LLM:             config.LLM,
		toolRepo:        NewToolRepo(registry),
	}
	if agent.MaxIterations <= 0 {
		agent.MaxIterations = defaultMaxIterations
	}
	for _, tool := range config.Tools {
		if err := agent.RegisterTool(tool); err != nil {
			return nil, fmt.Errorf("agent %s: %w", config.Role, err)
		}
	}
	return agent, nil
}

func NewTaskHistory() *TaskHistory {
	return &TaskHistory{
		Id:            uuid.NewString(),
		Status:        StatusInProgress,
		AgentsHistory: make(map[string]*TaskHistory),
	}
}

// TaskHistory is the transcript of one agent working on one task. Coworker
// conversations are kept per coworker role in AgentsHistory.
type TaskHistory struct {
	Id            string                  `json:"id"`
	Contents      []ChatContent           `json:"contents"`
	Status        string                  `json:"status"`
	Stats         Stats                   `json:"stats"`
	AgentsHistory map[string]*TaskHistory `json:"agentsHistory"`
}

type Agent struct {
	Role            string
	Goal            string
	Backstory       string
	AllowDelegation bool
	Verbose         bool
	MaxIterations   int
	LLM             LLM
	toolRepo        *ToolRepo
}

// execution carries the per-kickoff values of a task: where to report and
// which crew members the agent may delegate to.
type execution struct {
	runId     string
	taskIndex int
	observer  Observer
	coworkers []*Agent
}

func (e *execution) emit(event Event) {
	if e == nil || e.observer == nil {
		return
	}
	event.RunId = e.runId
	event.TaskIndex = e.taskIndex
	e.observer(event)
}

type runState struct {
	systemContext  string
	repo           *ToolRepo
	history        *TaskHistory
	iterations     int
	corrected      bool
	allowCoworkers bool
	exec           *execution
}

func (agent *Agent) GetName() string {
	return agent.Role
}

func (agent *Agent) GetDescription() string {
	return agent.Goal
}

func (agent *Agent) RegisterTool(name string) error {
	return agent.toolRepo.RegisterTool(name)
}

// Tools lists the names of the tools the agent may call.
func (agent *Agent) Tools() []string {
	var names []string
	for _, desc := range agent.toolRepo.ListToolDescriptors() {
		names = append(names, desc.Name)
	}
	return names
}

// Execute runs task to completion and returns the final answer. When the
// agent allows delegation it may hand questions to coworkers; they answer
// without coworkers of their own, so delegation never nests.
func (agent *Agent) Execute(ctx context.Context, task *Task, inputs map[string]string, taskContext string, coworkers ...*Agent) (TaskOutput, error) {
	return agent.execute(ctx, task, inputs, taskContext, &execution{coworkers: coworkers})
}

func (agent *Agent) execute(ctx context.Context, task *Task, inputs map[string]string, taskContext string, exec *execution) (TaskOutput, error) {
	repo := agent.toolRepo
	if agent.AllowDelegation && exec != nil && len(exec.coworkers) > 0 {
		repo = agent.toolRepo.withCoworkers(exec.coworkers)
	}
	allowCoworkers := len(repo.ListAgentDescriptors()) > 0

	systemContext, err := agent.systemContext(repo, allowCoworkers)
	if err != nil {
		return TaskOutput{}, err
	}
	history := NewTaskHistory()
	st := &runState{
		systemContext:  systemContext,
		repo:           repo,
		history:        history,
		allowCoworkers: allowCoworkers,
		exec:           exec,
	}

	prompt := task.Prompt(inputs, taskContext)
	agent.logf(ctx, "[%s] starting task: %s", agent.Role, prompt)

	out, err := agent.run(ctx, st, LLMInput{Text: prompt})
	if err != nil {
		return TaskOutput{}, fmt.Errorf("agent %s: %w", agent.Role, err)
	}
	agent.logf(ctx, "[%s] final answer: %s", agent.Role, out.Text)

	return TaskOutput{
		Description:    task.Interpolate(inputs),
		ExpectedOutput: task.ExpectedOutput,
		Agent:          agent.Role,
		Raw:            out.Text,
		Stats:          history.Stats,
	}, nil
}

// answerCoworker is the AgentHandler behind a coworker registration.
func (agent *Agent) answerCoworker(ctx context.Context, name string, taskHistory *TaskHistory, input LLMInput) (LLMOutput, error) {
	systemContext, err := agent.systemContext(agent.toolRepo, false)
	if err != nil {
		return LLMOutput{}, err
	}
	st := &runState{
		systemContext: systemContext,
		repo:          agent.toolRepo,
		history:       taskHistory,
		exec:          executionFrom(ctx),
	}
	text := input.Text
	if len(taskHistory.Contents) == 0 {
		text = buildPrompt(input.Text, coworkerExpectedOutput, "")
	}
	taskHistory.Status = StatusInProgress
	before := taskHistory.Stats
	out, err := agent.run(ctx, st, LLMInput{Text: text})
	if err != nil {
		return LLMOutput{}, err
	}
	out.Stats = taskHistory.Stats.Sub(before)
	return out, nil
}

func (agent *Agent) systemContext(repo *ToolRepo, withCoworkers bool) (string, error) {
	systemContext := ReplaceLabels(systemAgentContext, map[string]string{
		"role":      agent.Role,
		"goal":      agent.Goal,
		"backstory": agent.Backstory,
	})
	var agents []AgentDescriptor
	if withCoworkers {
		agents = repo.ListAgentDescriptors()
	}
	toolsContext, err := GetToolPrompt(repo.ListToolDescriptors(), agents)
	if err != nil {
		return "", err
	}
	if toolsContext != "" {
		systemContext = systemContext + "\n" + toolsContext
	}
	return systemContext, nil
}

func (agent *Agent) run(ctx context.Context, st *runState, input LLMInput) (LLMOutput, error) {
	forceAnswer := st.iterations >= agent.MaxIterations
	if forceAnswer && !strings.Contains(input.Text, forceAnswerPrompt) {
		input.Text = strings.TrimSpace(input.Text + "\n\n" + forceAnswerPrompt)
	}
	st.iterations++

	output, err := agent.LLM.Generate(ctx, st.systemContext, st.history.Contents, input)
	if err != nil {
		return LLMOutput{}, err
	}
	st.history.Stats = st.history.Stats.Add(output.Stats)
	if input.Text != "" {
		st.history.Contents = append(st.history.Contents, NewContent("user", input.Text))
	}
	st.history.Contents = append(st.history.Contents, NewContent("assistant", output.Text))

	if !forceAnswer {
		toolCalls, err := ExtractToolCalls(output.Text)
		if err != nil {
			return agent.run(ctx, st, LLMInput{Text: "<tool_result>error: " + err.Error() + "</tool_result>"})
		}
		if len(toolCalls) > 0 {
			var results []ToolResult
			for _, toolCall := range toolCalls {
				agent.logf(ctx, "[%s] tool call %s %v", agent.Role, toolCall.ToolName, toolCall.Parameters)
				ret, err := agent.executeTool(ctx, st.repo, toolCall.ToolName, toolCall.Parameters)
				out := ret
				if err != nil {
					out = "error: " + err.Error()
				}
				st.exec.emit(Event{Kind: EventToolUsed, Agent: agent.Role, Tool: toolCall.ToolName, Output: out})
				results = append(results, ToolResult{ToolName: toolCall.ToolName, Output: out})
			}
			resultsStr, err := json.Marshal(results)
			if err != nil {
				return LLMOutput{}, err
			}
			return agent.run(ctx, st, LLMInput{Text: "<tool_result>" + string(resultsStr) + "</tool_result>"})
		}

		if st.allowCoworkers {
			if agentCalls := ExtractAgentCalls(output.Text); len(agentCalls) > 0 {
				var agentResults []AgentResult
				for _, agentCall := range agentCalls {
					agentHistory := st.history.AgentsHistory[agentCall.AgentName]
					if agentHistory == nil {
						agentHistory = NewTaskHistory()
						st.history.AgentsHistory[agentCall.AgentName] = agentHistory
					}
					agent.logf(ctx, "[%s] delegating to %s: %s", agent.Role, agentCall.AgentName, agentCall.Input)
					ret, err := agent.executeAgent(withExecution(ctx, st.exec), st.repo, agentCall.AgentName, agentHistory, LLMInput{Text: agentCall.Input})
					out := ret.Text
					if err != nil {
						out = "error: " + err.Error()
					}
					st.history.Stats = st.history.Stats.Add(ret.Stats)
					st.exec.emit(Event{Kind: EventDelegated, Agent: agentCall.AgentName, Output: out})
					agentResults = append(agentResults, AgentResult{AgentName: agentCall.AgentName, Output: out})
				}
				resultsStr, err := json.Marshal(agentResults)
				if err != nil {
					return LLMOutput{}, err
				}
				return agent.run(ctx, st, LLMInput{Text: "<agent_result>" + string(resultsStr) + "</agent_result>"})
			}
		}
	}

	response, found := extractTagContent(output.Text, "response")
	if !found {
		if !st.corrected {
			st.corrected = true
			agent.logf(ctx, "[%s] response tag missing, asking for a corrected answer", agent.Role)
			return agent.run(ctx, st, LLMInput{Text: formatCorrectionPrompt})
		}
		response = stripTagContent(output.Text, "thinking")
	}
	st.history.Status = StatusCompleted

	return LLMOutput{Text: strings.TrimSpace(response), Stats: st.history.Stats}, nil
}

func (agent *Agent) executeTool(ctx context.Context, repo *ToolRepo, name string, input map[string]any) (string, error) {
	executor := repo.GetTool(name)
	if executor == nil {
		return "", fmt.Errorf("%w: %s", ErrToolNotFound, name)
	}
	b, err := json.Marshal(input)
	if err != nil {
		return "", err
	}
	return executor.Execute(ctx, string(b))
}

func (agent *Agent) executeAgent(ctx context.Context, repo *ToolRepo, name string, taskHistory *TaskHistory, input LLMInput) (LLMOutput, error) {
	executor := repo.GetAgent(name)
	if executor == nil {
		return LLMOutput{}, fmt.Errorf("%w: %s", ErrAgentNotFound, name)
	}
	return executor.Execute(ctx, name, taskHistory, input)
}

func (agent *Agent) logf(ctx context.Context, format string, args ...interface{}) {
	logger := logging.GetLogger()
	if agent.Verbose {
		logger.Info(ctx, format, args...)
		return
	}
	logger.Debug(ctx, format, args...)
}

// extractTagContent returns the inner text of every <tag>...</tag> pair of
// xmlStr joined by newlines, and whether at least one pair was found.
func extractTagContent(xmlStr, tag string) (string, bool) {
	var results []string
	openTag := fmt.Sprintf("<%s>", tag)
	closeTag := fmt.Sprintf("</%s>", tag)

	for {
		start := strings.Index(xmlStr, openTag)
		if start == -1 {
			break
		}
		end := strings.Index(xmlStr[start:], closeTag)
		if end == -1 {
			break
		}
		results = append(results, xmlStr[start+len(openTag):start+end])
		xmlStr = xmlStr[start+end+len(closeTag):]
	}

	return strings.Join(results, "\n"), len(results) > 0
}

// stripTagContent removes every <tag>...</tag> block from s.
func stripTagContent(s, tag string) string {
	openTag := fmt.Sprintf("<%s>", tag)
	closeTag := fmt.Sprintf("</%s>", tag)
	for {
		start := strings.Index(s, openTag)
		if start == -1 {
			break
		}
		end := strings.Index(s[start:], closeTag)
		if end == -1 {
			break
		}
		s = s[:start] + s[start+end+len(closeTag):]
	}
	return strings.TrimSpace(s)
}

type executionKey struct{}

func withExecution(ctx context.Context, exec *execution) context.Context {
	if exec == nil {
		return ctx
	}
	return context.WithValue(ctx, executionKey{}, exec)
}

func executionFrom(ctx context.Context) *execution {
	exec, _ := ctx.Value(executionKey{}).(*execution)
	return exec
}
