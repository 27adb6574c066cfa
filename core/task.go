package core

import "strings"

// Task is an instruction for one agent. Context lists the tasks whose output
// the agent receives; when empty, a crew hands over the previous task's output.
type Task struct {
	Description    string
	ExpectedOutput string
	Agent          *Agent
	Context        []*Task
}

// Interpolate returns the description with every {{key}} of inputs replaced.
func (t *Task) Interpolate(inputs map[string]string) string {
	return strings.TrimSpace(ReplaceLabels(t.Description, inputs))
}

// Prompt renders the user turn that starts the task.
func (t *Task) Prompt(inputs map[string]string, taskContext string) string {
	return buildPrompt(t.Interpolate(inputs), strings.TrimSpace(ReplaceLabels(t.ExpectedOutput, inputs)), taskContext)
}

func buildPrompt(description, expectedOutput, taskContext string) string {
	var sb strings.Builder
	sb.WriteString("<task>\n")
	sb.WriteString(description)
	sb.WriteString("\n</task>\n\n<expected_output>\n")
	sb.WriteString(expectedOutput)
	sb.WriteString("\n</expected_output>\n")
	sb.WriteString("You MUST return the actual complete content as the final answer, not a summary.")
	if strings.TrimSpace(taskContext) != "" {
		sb.WriteString("\n\n<context>\nThis is the context you're working with:\n")
		sb.WriteString(taskContext)
		sb.WriteString("\n</context>")
	}
	return sb.String()
}
