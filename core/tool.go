package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/invopop/jsonschema"
)

var systemToolPrompt = `
You have access to the following tools that you can use to complete your task. Each tool has specific capabilities and parameters that you must understand to use them correctly.
<tools>
{{tools}}
</tools>
Tools Usage Instructions
When using tools, follow these guidelines:

1.Tool Selection: Choose the most appropriate tool for the information you still need.
2.Parameter Formatting: When calling a tool, ensure all required parameters are provided in the correct format.
3.Tool Invocation Format: Use the following format to invoke a tool:

<tool_call>
  <tool_name>name_of_the_tool</tool_name>
  <parameters>
    {"param1": "value1", "param2": "value2"}
  </parameters>
</tool_call>
4.Do not write a <response> in the same message as a tool call. Wait for the <tool_result>.
5.Error Handling: If a tool call fails, try a different input or continue with what you already know.
6.Multiple Tool Calls: You can make multiple tool calls in sequence when necessary.
`

var systemCoworkerPrompt = `
You can delegate work or ask questions to the following coworkers:
<agents>
{{agents}}
</agents>
Coworker Usage Instructions
1. Determine if a part of the task needs a coworker or if you can handle it directly.
2. Coworkers know nothing about your task. Share all the context they need in the input.
3. Coworker Invocation Format:

<agent_call>
  <agent_name>role_of_the_coworker</agent_name>
  <input>
    natural text input
  </input>
</agent_call>
4. Wait for the <agent_result> before writing your <response>.
`

type AgentDescriptor struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type AgentCall struct {
	AgentName string
	Input     string
}

type ToolDescriptor struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Parameters  json.RawMessage `json:"parameters"`
}

// ToolCall represents a parsed tool call from the content
type ToolCall struct {
	ToolName   string
	Parameters map[string]interface{}
}

func GetToolPrompt(tools []ToolDescriptor, agents []AgentDescriptor) (string, error) {
	var prompt string
	if len(tools) > 0 {
		toolsStr, err := json.Marshal(tools)
		if err != nil {
			return "", err
		}
		prompt += ReplaceLabels(systemToolPrompt, map[string]string{"tools": string(toolsStr)})
	}
	if len(agents) > 0 {
		agentsStr, err := json.Marshal(agents)
		if err != nil {
			return "", err
		}
		prompt += ReplaceLabels(systemCoworkerPrompt, map[string]string{"agents": string(agentsStr)})
	}
	return prompt, nil
}

// ReplaceLabels substitutes every {{key}} placeholder of template.
func ReplaceLabels(template string, replacements map[string]string) string {
	for key, value := range replacements {
		placeholder := "{{" + key + "}}"
		template = strings.ReplaceAll(template, placeholder, value)
	}
	return template
}

var toolPattern = `(?s)<tool_call>\s*<tool_name>(.*?)</tool_name>\s*<parameters>\s*(.*?)\s*</parameters>\s*</tool_call>`
var toolRegEx = regexp.MustCompile(toolPattern)

var agentPattern = `(?s)<agent_call>\s*<agent_name>(.*?)</agent_name>\s*<input>\s*(.*?)\s*</input>\s*</agent_call>`
var agentRegEx = regexp.MustCompile(agentPattern)

// ExtractToolCalls extracts tool calls from the given content
func ExtractToolCalls(content string) ([]ToolCall, error) {
	var toolCalls []ToolCall

	for _, match := range toolRegEx.FindAllStringSubmatch(content, -1) {
		if len(match) != 3 {
			continue
		}

		toolName := strings.TrimSpace(match[1])
		paramsJSON := strings.TrimSpace(match[2])

		var params map[string]interface{}
		if paramsJSON != "" {
			if err := json.Unmarshal([]byte(paramsJSON), &params); err != nil {
				return nil, fmt.Errorf("failed to parse parameters for tool %s: %w", toolName, err)
			}
		}

		toolCalls = append(toolCalls, ToolCall{
			ToolName:   toolName,
			Parameters: params,
		})
	}

	return toolCalls, nil
}

// ExtractAgentCalls extracts coworker calls from the given content
func ExtractAgentCalls(content string) []AgentCall {
	var agentCalls []AgentCall

	for _, match := range agentRegEx.FindAllStringSubmatch(content, -1) {
		if len(match) != 3 {
			continue
		}
		agentCalls = append(agentCalls, AgentCall{
			AgentName: strings.TrimSpace(match[1]),
			Input:     strings.TrimSpace(match[2]),
		})
	}

	return agentCalls
}

// GetSchema reflects the JSON schema of the struct obj points to.
func GetSchema(obj interface{}) (interface{}, error) {
	if reflect.ValueOf(obj).Kind() != reflect.Ptr {
		return nil, errors.New("object must be a pointer")
	}

	pointsToValue := reflect.Indirect(reflect.ValueOf(obj))
	if pointsToValue.Kind() == reflect.Slice {
		return nil, errors.New("slice not supported as an input")
	}

	reflector := jsonschema.Reflector{DoNotReference: true}
	return reflector.Reflect(obj), nil
}
