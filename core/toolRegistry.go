package core

import (
	"fmt"

	tools2 "skyscope/entrepreneur/tools"
)

const (
	ToolWebSearch   = "Duck_Duck_Go_Search"
	ToolReadWebsite = "Read_Website_Content"
	ToolCurrentDate = "Get_Current_Date"
)

// ToolRegistry holds every tool an agent may be configured with, by name.
type ToolRegistry struct {
	tools map[string]ToolExecutor
}

func NewToolRegistry() *ToolRegistry {
	return &ToolRegistry{tools: make(map[string]ToolExecutor)}
}

// NewInbuiltToolRegistry registers the web search tool backed by searcher,
// the website reader backed by reader and the date tool.
func NewInbuiltToolRegistry(searcher tools2.Searcher, reader *tools2.PageReader) (*ToolRegistry, error) {
	registry := NewToolRegistry()

	search := tools2.NewWebSearch(searcher)
	if err := registry.RegisterInbuilt(ToolWebSearch, search.Description(), search.Run); err != nil {
		return nil, err
	}
	if reader != nil {
		if err := registry.RegisterInbuilt(ToolReadWebsite, "Reads the text content of a web page given its URL.", reader.Read); err != nil {
			return nil, err
		}
	}
	if err := registry.RegisterInbuilt(ToolCurrentDate, "Returns today's date, useful to judge how recent information is.", tools2.GetCurrentDate); err != nil {
		return nil, err
	}
	return registry, nil
}

func (tr *ToolRegistry) RegisterInbuilt(name string, description string, handler any) error {
	executor, err := NewInbuiltToolExecutor(name, description, handler)
	if err != nil {
		return fmt.Errorf("register tool %s: %w", name, err)
	}
	tr.RegisterTool(name, executor)
	return nil
}

func (tr *ToolRegistry) RegisterTool(name string, executor ToolExecutor) {
	tr.tools[name] = executor
}

func (tr *ToolRegistry) GetTool(name string) ToolExecutor {
	return tr.tools[name]
}
