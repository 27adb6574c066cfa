package core

import "errors"

var (
	ErrToolNotFound   = errors.New("tool not found")
	ErrAgentNotFound  = errors.New("agent not found")
	ErrNoTasks        = errors.New("crew has no tasks")
	ErrAgentNotInCrew = errors.New("task agent is not a crew member")
)

const (
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
)

type ToolResult struct {
	ToolName string `json:"tool_name"`
	Output   string `json:"output"`
}

type AgentResult struct {
	AgentName string `json:"agent_name"`
	Output    string `json:"output"`
}

// TaskOutput is what one task produced.
type TaskOutput struct {
	Description    string `json:"description"`
	ExpectedOutput string `json:"expected_output"`
	Agent          string `json:"agent"`
	Raw            string `json:"raw"`
	Stats          Stats  `json:"stats"`
}

// CrewOutput holds the outputs of every task of one kickoff, in execution order.
type CrewOutput struct {
	RunId       string       `json:"run_id"`
	TasksOutput []TaskOutput `json:"tasks_output"`
	Stats       Stats        `json:"stats"`
}

// Raw returns the output of the last task.
func (c CrewOutput) Raw() string {
	if len(c.TasksOutput) == 0 {
		return ""
	}
	return c.TasksOutput[len(c.TasksOutput)-1].Raw
}

type EventKind string

const (
	EventTaskStarted   EventKind = "task_started"
	EventTaskCompleted EventKind = "task_completed"
	EventToolUsed      EventKind = "tool_used"
	EventDelegated     EventKind = "delegated"
)

// Event reports crew progress to an Observer.
type Event struct {
	Kind      EventKind
	RunId     string
	TaskIndex int
	Agent     string
	Tool      string
	Output    string
}

type Observer func(event Event)
