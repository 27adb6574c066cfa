package console

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"skyscope/entrepreneur/config"
	"skyscope/entrepreneur/core"
	"skyscope/entrepreneur/services/crew_service"
)

func TestPrintResultPlain(t *testing.T) {
	var buf bytes.Buffer
	c := New(&buf)
	app := config.Default().App

	c.PrintResult(app, crew_service.Result{Research: "the research", Plan: "the plan"})

	out := buf.String()
	assert.Contains(t, out, app.Title)
	assert.Contains(t, out, "\n"+ResearchLabel+"\nthe research\n")
	assert.Contains(t, out, "\n"+PlanLabel+"\nthe plan\n")
	assert.Less(t, bytes.Index(buf.Bytes(), []byte(ResearchLabel)), bytes.Index(buf.Bytes(), []byte(PlanLabel)))
}

func TestBannerPlain(t *testing.T) {
	var buf bytes.Buffer
	New(&buf).Banner(config.Default().App)

	assert.Equal(t, "Skyscope Sentinel Multi-Agent AI Entrepreneur\nDeveloped by: Casey J. Topojani\nLicense: MIT\n", buf.String())
}

func TestSavedAndError(t *testing.T) {
	var buf bytes.Buffer
	c := NewWithColor(&buf, false)

	c.Saved(nil)
	assert.Empty(t, buf.String())

	c.Saved([]string{"research_report.txt", "implementation_plan.txt"})
	assert.Contains(t, buf.String(), "Saved: research_report.txt, implementation_plan.txt")

	c.Error(errors.New("ollama is not installed"))
	assert.Contains(t, buf.String(), "ollama is not installed")
}

func TestProgressWithoutTerminalIsSilent(t *testing.T) {
	var buf bytes.Buffer
	c := NewWithColor(&buf, false)

	c.Progress(crew_service.StageResearching)
	c.Event(core.Event{Kind: core.EventToolUsed, Agent: "Researcher", Tool: core.ToolWebSearch})
	c.Progress(crew_service.StageDone)
	c.Stop()
	assert.Empty(t, buf.String())
}
