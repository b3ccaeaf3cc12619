package agent

import "context"

// Input is the single field an agent invocation accepts.
type Input struct {
	Input string `json:"input"`
}

// Output carries the final answer text.
type Output struct {
	Output string `json:"output"`
}

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

type ToolCall struct {
	ID   string
	Name string
	Args map[string]any
	// Signature is opaque provider state that must be echoed back with the call.
	Signature []byte
}

type ToolResult struct {
	CallID  string
	Name    string
	Content string
}

// Message is one turn of the conversation. Assistant turns may carry tool
// calls; tool turns carry the results for the preceding calls.
type Message struct {
	Role      Role
	Content   string
	ToolCalls []ToolCall
	Results   []ToolResult
}

type Param struct {
	Name        string
	Description string
	Required    bool
}

// ToolSpec describes a tool to the model. All parameters are strings.
type ToolSpec struct {
	Name        string
	Description string
	Params      []Param
}

type Request struct {
	System   string
	Messages []Message
	Tools    []ToolSpec
}

// Model produces the next assistant turn.
type Model interface {
	Generate(ctx context.Context, req Request) (Message, error)
}

type Tool interface {
	Spec() ToolSpec
	Run(ctx context.Context, args map[string]any) (string, error)
}

// StringArg returns args[name] when it is a string.
func StringArg(args map[string]any, name string) (string, bool) {
	raw, ok := args[name]
	if !ok {
		return "", false
	}
	value, ok := raw.(string)
	return value, ok
}
