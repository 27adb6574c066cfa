package console

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
	"github.com/XiaoConstantine/dspy-go/pkg/logging"
	"github.com/briandowns/spinner"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/logrusorgru/aurora"
	"github.com/mattn/go-isatty"
	"skyscope/entrepreneur/config"
	"skyscope/entrepreneur/core"
	"skyscope/entrepreneur/services/crew_service"
)

const (
	ResearchLabel = "Research Report:"
	PlanLabel     = "Implementation Plan:"
	separator     = "****************************************"
)

// Console handles user-facing output separate from logging.
type Console struct {
	w       io.Writer
	spinner *spinner.Spinner
	color   bool

	mu sync.Mutex
}

// New returns a console writing to w. Colors, markdown rendering and the
// spinner are enabled only when w is a terminal.
func New(w io.Writer) *Console {
	color := false
	if f, ok := w.(*os.File); ok {
		color = isatty.IsTerminal(f.Fd())
	}
	return NewWithColor(w, color)
}

func NewWithColor(w io.Writer, color bool) *Console {
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(w))
	if err := s.Color("cyan"); err != nil {
		logging.GetLogger().Warn(context.Background(), "Failed to set spinner color: %v", err)
	}
	return &Console{w: w, spinner: s, color: color}
}

func (c *Console) println(a ...interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintln(c.w, a...)
}

// Banner prints the application header.
func (c *Console) Banner(app config.AppConfig) {
	title := app.Title
	if c.color {
		title = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#42a5f5")).Render(title)
	}
	c.println(title)
	if app.Author != "" {
		c.println("Developed by: " + app.Author)
	}
	if app.License != "" {
		c.println("License: " + app.License)
	}
}

// AskTopic prompts for the research topic, defaulting to def. Without a
// terminal on stdin the default is returned as is.
func (c *Console) AskTopic(def string) (string, error) {
	if !isatty.IsTerminal(os.Stdin.Fd()) {
		return def, nil
	}
	prompt := &survey.Input{
		Message: "Enter your research topic",
		Default: def,
	}
	var topic string
	err := survey.AskOne(prompt, &topic, survey.WithIcons(func(icons *survey.IconSet) {
		icons.Question.Text = "?"
		icons.Question.Format = "cyan+b"
	}))
	if err == terminal.InterruptErr {
		return "", fmt.Errorf("operation cancelled")
	}
	return topic, err
}

// Progress drives the spinner from pipeline stages.
func (c *Console) Progress(stage crew_service.Stage) {
	if !c.color {
		return
	}
	switch stage {
	case crew_service.StageResearching:
		c.spinner.Prefix = "Skyscope Sentinel: researching "
		c.spinner.Start()
	case crew_service.StageWriting:
		c.spinner.Prefix = "Skyscope Sentinel: writing the plan "
	case crew_service.StageDone:
		c.spinner.Stop()
	}
}

// Event shows tool usage next to the spinner.
func (c *Console) Event(event core.Event) {
	if !c.color || event.Kind != core.EventToolUsed {
		return
	}
	c.spinner.Suffix = " (" + event.Agent + " used " + event.Tool + ")"
}

// Stop halts the spinner, for example after a failed run.
func (c *Console) Stop() {
	c.spinner.Stop()
}

// PrintResult prints both stage outputs under their labels.
func (c *Console) PrintResult(app config.AppConfig, result crew_service.Result) {
	c.println("\n" + separator)
	c.println(app.Title)
	c.println(separator)

	c.section(ResearchLabel, result.Research)
	c.section(PlanLabel, result.Plan)
}

// Saved lists the files a run was written to.
func (c *Console) Saved(paths []string) {
	if len(paths) == 0 {
		return
	}
	msg := "Saved: " + strings.Join(paths, ", ")
	if c.color {
		msg = aurora.Green(msg).String()
	}
	c.println("\n" + msg)
}

func (c *Console) Error(err error) {
	msg := "✖ " + err.Error()
	if c.color {
		msg = aurora.Red(msg).String()
	}
	c.println(msg)
}

func (c *Console) section(label, body string) {
	if c.color {
		c.println("\n" + aurora.Bold(aurora.Cyan(label)).String())
		c.println(c.render(body))
		return
	}
	c.println("\n" + label)
	c.println(body)
}

func (c *Console) render(markdown string) string {
	renderer, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(100))
	if err != nil {
		return markdown
	}
	out, err := renderer.Render(markdown)
	if err != nil {
		return markdown
	}
	return out
}
