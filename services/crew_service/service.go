package crew_service

import (
	"context"
	"fmt"
	"time"

	"github.com/XiaoConstantine/dspy-go/pkg/logging"
	"skyscope/entrepreneur/config"
	"skyscope/entrepreneur/core"
)

type Stage string

const (
	StageNotStarted  Stage = "not_started"
	StageResearching Stage = "researching"
	StageWriting     Stage = "writing"
	StageDone        Stage = "done"
)

// Result is the pair of texts produced by one pipeline run.
type Result struct {
	RunId      string     `json:"run_id"`
	Topic      string     `json:"topic"`
	Research   string     `json:"research"`
	Plan       string     `json:"plan"`
	Stats      core.Stats `json:"stats"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt time.Time  `json:"finished_at"`
}

type Option func(*Pipeline)

// WithStageObserver is told about every stage transition of a run.
func WithStageObserver(observer func(Stage)) Option {
	return func(p *Pipeline) { p.stageObserver = observer }
}

// WithEventObserver receives the raw crew events, tool usage included.
func WithEventObserver(observer core.Observer) Option {
	return func(p *Pipeline) { p.eventObserver = observer }
}

// Pipeline is the research-then-write crew. Its agents and tasks are built
// once and shared by every run.
type Pipeline struct {
	Researcher   *core.Agent
	Writer       *core.Agent
	ResearchTask *core.Task
	WriteTask    *core.Task

	crew          *core.Crew
	stageObserver func(Stage)
	eventObserver core.Observer
}

func NewPipeline(cfg *config.Config, llm core.LLM, registry *core.ToolRegistry, opts ...Option) (*Pipeline, error) {
	p := &Pipeline{}
	for _, opt := range opts {
		opt(p)
	}

	researcher, err := core.NewAgent(agentConfig(cfg.Researcher, cfg, llm), registry)
	if err != nil {
		return nil, err
	}
	writer, err := core.NewAgent(agentConfig(cfg.Writer, cfg, llm), registry)
	if err != nil {
		return nil, err
	}

	p.Researcher = researcher
	p.Writer = writer
	p.ResearchTask = &core.Task{
		Description:    cfg.ResearchTask.Description,
		ExpectedOutput: cfg.ResearchTask.ExpectedOutput,
		Agent:          researcher,
	}
	p.WriteTask = &core.Task{
		Description:    cfg.WriteTask.Description,
		ExpectedOutput: cfg.WriteTask.ExpectedOutput,
		Agent:          writer,
		Context:        []*core.Task{p.ResearchTask},
	}

	p.crew, err = core.NewCrew(
		[]*core.Agent{researcher, writer},
		[]*core.Task{p.ResearchTask, p.WriteTask},
		core.WithObserver(p.onEvent),
	)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func agentConfig(a config.AgentConfig, cfg *config.Config, llm core.LLM) core.AgentConfig {
	return core.AgentConfig{
		Role:            a.Role,
		Goal:            a.Goal,
		Backstory:       a.Backstory,
		AllowDelegation: a.AllowDelegation,
		Verbose:         cfg.Verbose,
		Tools:           a.Tools,
		MaxIterations:   cfg.LLM.MaxIterations,
		LLM:             llm,
	}
}

// Run researches topic and writes the plan. The topic is passed through as
// is; an empty topic still runs both stages.
func (p *Pipeline) Run(ctx context.Context, topic string) (Result, error) {
	logger := logging.GetLogger()
	result := Result{Topic: topic, StartedAt: time.Now()}

	p.setStage(StageNotStarted)
	logger.Info(ctx, "Generating solution for topic: %q", topic)

	out, err := p.crew.Kickoff(ctx, map[string]string{"topic": topic})
	result.RunId = out.RunId
	if err != nil {
		return result, fmt.Errorf("run %s: %w", out.RunId, err)
	}
	if len(out.TasksOutput) != 2 {
		return result, fmt.Errorf("run %s: expected 2 task outputs, got %d", out.RunId, len(out.TasksOutput))
	}

	result.Research = out.TasksOutput[0].Raw
	result.Plan = out.TasksOutput[1].Raw
	result.Stats = out.Stats
	result.FinishedAt = time.Now()

	p.setStage(StageDone)
	logger.Info(ctx, "Run %s finished in %s", out.RunId, result.FinishedAt.Sub(result.StartedAt).Round(time.Millisecond))
	return result, nil
}

func (p *Pipeline) onEvent(event core.Event) {
	if event.Kind == core.EventTaskStarted {
		switch event.TaskIndex {
		case 0:
			p.setStage(StageResearching)
		case 1:
			p.setStage(StageWriting)
		}
	}
	if p.eventObserver != nil {
		p.eventObserver(event)
	}
}

func (p *Pipeline) setStage(stage Stage) {
	if p.stageObserver != nil {
		p.stageObserver(stage)
	}
}
