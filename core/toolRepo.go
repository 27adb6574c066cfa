package core

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
)

type ToolExecutor interface {
	GetName() string
	GetDescription() string
	Execute(ctx context.Context, input string) (string, error)
	GetToolDescriptor() ToolDescriptor
}

type AgentExecutor interface {
	GetName() string
	GetDescription() string
	GetAgentDescriptor() AgentDescriptor
	Execute(ctx context.Context, name string, taskHistory *TaskHistory, input LLMInput) (LLMOutput, error)
}

type AgentHandler func(ctx context.Context, name string, taskHistory *TaskHistory, input LLMInput) (LLMOutput, error)

func NewToolRepo(registry *ToolRegistry) *ToolRepo {
	return &ToolRepo{
		registry: registry,
		tools:    make(map[string]ToolExecutor),
		agents:   make(map[string]AgentExecutor),
	}
}

// ToolRepo is the set of tools and coworkers one agent may call.
type ToolRepo struct {
	registry *ToolRegistry
	tools    map[string]ToolExecutor
	agents   map[string]AgentExecutor
}

func (repo *ToolRepo) RegisterAgent(desc AgentDescriptor, handler AgentHandler) {
	repo.agents[desc.Name] = &AgentExecutorImpl{
		Desc:    desc,
		Handler: handler,
	}
}

// withCoworkers returns a copy of the repo that also offers agents as
// coworkers. The receiver is left untouched.
func (repo *ToolRepo) withCoworkers(agents []*Agent) *ToolRepo {
	clone := NewToolRepo(repo.registry)
	for name, tool := range repo.tools {
		clone.tools[name] = tool
	}
	for name, agent := range repo.agents {
		clone.agents[name] = agent
	}
	for _, other := range agents {
		clone.RegisterAgent(AgentDescriptor{
			Name:        other.Role,
			Description: other.Goal,
		}, other.answerCoworker)
	}
	return clone
}

func (repo *ToolRepo) RegisterTool(name string) error {
	if repo.registry == nil {
		return fmt.Errorf("%w: %s", ErrToolNotFound, name)
	}
	tool := repo.registry.GetTool(name)
	if tool == nil {
		return fmt.Errorf("%w: %s", ErrToolNotFound, name)
	}
	repo.tools[tool.GetName()] = tool
	return nil
}

func (repo *ToolRepo) ListToolDescriptors() []ToolDescriptor {
	var list []ToolDescriptor
	for _, item := range repo.tools {
		list = append(list, item.GetToolDescriptor())
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list
}

func (repo *ToolRepo) ListAgentDescriptors() []AgentDescriptor {
	var list []AgentDescriptor
	for _, item := range repo.agents {
		list = append(list, item.GetAgentDescriptor())
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list
}

func (repo *ToolRepo) GetTool(name string) ToolExecutor {
	return repo.tools[name]
}

func (repo *ToolRepo) GetAgent(name string) AgentExecutor {
	return repo.agents[name]
}

// NewInbuiltToolExecutor wraps handler, a func(context.Context, In) (Out, error),
// as a tool whose parameters are the JSON schema of In.
func NewInbuiltToolExecutor(name string, description string, handler any) (ToolExecutor, error) {
	handlerValue := reflect.ValueOf(handler)
	handlerType := handlerValue.Type()

	if handlerType.Kind() != reflect.Func {
		return nil, fmt.Errorf("handler is not a function")
	}
	if handlerType.NumIn() != 2 {
		return nil, fmt.Errorf("handler function must have two parameters")
	}
	if handlerType.NumOut() != 2 {
		return nil, fmt.Errorf("handler function must have two return values")
	}
	if !handlerType.Out(1).Implements(reflect.TypeOf((*error)(nil)).Elem()) {
		return nil, fmt.Errorf("handler function's second return value must be an error")
	}

	inputType := handlerType.In(1)
	schema, err := GetSchema(reflect.New(inputType).Interface())
	if err != nil {
		return nil, err
	}
	b, err := json.Marshal(schema)
	if err != nil {
		return nil, err
	}

	return &InbuiltToolExecutor{
		toolDescriptor: ToolDescriptor{
			Name:        name,
			Description: description,
			Parameters:  json.RawMessage(b),
		},
		inputType: inputType,
		handler:   handlerValue,
	}, nil
}

type InbuiltToolExecutor struct {
	toolDescriptor ToolDescriptor
	inputType      reflect.Type
	handler        reflect.Value
}

func (i *InbuiltToolExecutor) GetName() string {
	return i.toolDescriptor.Name
}

func (i *InbuiltToolExecutor) GetDescription() string {
	return i.toolDescriptor.Description
}

func (i *InbuiltToolExecutor) GetToolDescriptor() ToolDescriptor {
	return i.toolDescriptor
}

// Execute decodes input into the handler's input type and calls it. A handler
// error is reported as "error: ..." output so the model can react to it.
func (i *InbuiltToolExecutor) Execute(ctx context.Context, input string) (string, error) {
	inputPtr := reflect.New(i.inputType)
	if input != "" {
		if err := json.Unmarshal([]byte(input), inputPtr.Interface()); err != nil {
			return "", fmt.Errorf("failed to unmarshal JSON input: %w", err)
		}
	}

	results := i.handler.Call([]reflect.Value{reflect.ValueOf(ctx), inputPtr.Elem()})

	if errInterface := results[1].Interface(); errInterface != nil {
		return "error: " + errInterface.(error).Error(), nil
	}

	result := results[0].Interface()
	switch v := result.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	}
	b, err := json.Marshal(result)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

type AgentExecutorImpl struct {
	Desc    AgentDescriptor
	Handler AgentHandler
}

func (a *AgentExecutorImpl) GetAgentDescriptor() AgentDescriptor {
	return a.Desc
}

func (a *AgentExecutorImpl) GetName() string {
	return a.Desc.Name
}

func (a *AgentExecutorImpl) GetDescription() string {
	return a.Desc.Description
}

func (a *AgentExecutorImpl) Execute(ctx context.Context, name string, taskHistory *TaskHistory, input LLMInput) (LLMOutput, error) {
	return a.Handler(ctx, name, taskHistory, input)
}
