package core

import (
	"context"
	"fmt"
	"strings"

	"github.com/XiaoConstantine/dspy-go/pkg/logging"
	"github.com/google/uuid"
)

type CrewOption func(*Crew)

// WithObserver receives the events of every kickoff.
func WithObserver(observer Observer) CrewOption {
	return func(c *Crew) { c.observer = observer }
}

// Crew runs its tasks one after the other, feeding earlier outputs into later
// tasks as context.
type Crew struct {
	Agents   []*Agent
	Tasks    []*Task
	observer Observer

	coworkers map[*Agent][]*Agent
}

// NewCrew checks that every task is owned by a crew member. Agents allowed to
// delegate get the other members as coworkers for the runs of this crew only;
// the agents themselves are not modified.
func NewCrew(agents []*Agent, tasks []*Task, opts ...CrewOption) (*Crew, error) {
	if len(tasks) == 0 {
		return nil, ErrNoTasks
	}
	members := make(map[*Agent]bool, len(agents))
	for _, agent := range agents {
		members[agent] = true
	}
	for i, task := range tasks {
		if task.Agent == nil || !members[task.Agent] {
			return nil, fmt.Errorf("task %d: %w", i, ErrAgentNotInCrew)
		}
	}

	coworkers := make(map[*Agent][]*Agent)
	for _, agent := range agents {
		if !agent.AllowDelegation {
			continue
		}
		for _, other := range agents {
			if other != agent {
				coworkers[agent] = append(coworkers[agent], other)
			}
		}
	}

	crew := &Crew{Agents: agents, Tasks: tasks, coworkers: coworkers}
	for _, opt := range opts {
		opt(crew)
	}
	return crew, nil
}

// Kickoff executes every task in order. The first task error aborts the run.
func (c *Crew) Kickoff(ctx context.Context, inputs map[string]string) (CrewOutput, error) {
	logger := logging.GetLogger()
	result := CrewOutput{RunId: uuid.NewString()}
	outputs := make(map[*Task]TaskOutput, len(c.Tasks))

	for i, task := range c.Tasks {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		exec := &execution{runId: result.RunId, taskIndex: i, observer: c.observer, coworkers: c.coworkers[task.Agent]}
		taskContext := c.contextFor(i, outputs)

		logger.Info(ctx, "Run %s: task %d/%d started by %s", result.RunId, i+1, len(c.Tasks), task.Agent.Role)
		exec.emit(Event{Kind: EventTaskStarted, Agent: task.Agent.Role})

		out, err := task.Agent.execute(ctx, task, inputs, taskContext, exec)
		if err != nil {
			logger.Error(ctx, "Run %s: task %d failed: %v", result.RunId, i+1, err)
			return result, fmt.Errorf("task %d: %w", i+1, err)
		}

		outputs[task] = out
		result.TasksOutput = append(result.TasksOutput, out)
		result.Stats = result.Stats.Add(out.Stats)

		logger.Info(ctx, "Run %s: task %d/%d completed (%d tokens)", result.RunId, i+1, len(c.Tasks), out.Stats.TotalTokenCount)
		exec.emit(Event{Kind: EventTaskCompleted, Agent: task.Agent.Role, Output: out.Raw})
	}
	return result, nil
}

func (c *Crew) contextFor(index int, outputs map[*Task]TaskOutput) string {
	task := c.Tasks[index]
	if len(task.Context) == 0 {
		if index == 0 {
			return ""
		}
		return outputs[c.Tasks[index-1]].Raw
	}
	var parts []string
	for _, dep := range task.Context {
		if out, ok := outputs[dep]; ok {
			parts = append(parts, out.Raw)
		}
	}
	return strings.Join(parts, "\n\n----------\n\n")
}
