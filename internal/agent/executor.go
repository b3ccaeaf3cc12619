package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/askdb/askdb/internal/observability"
)

var ErrIterationLimit = errors.New("agent stopped due to iteration limit")

type ExecutorConfig struct {
	// Dialect names the SQL flavour in the system prompt, e.g. "PostgreSQL".
	Dialect       string
	TopK          int
	MaxIterations int
	Logger        *slog.Logger
}

// Executor runs the tool-calling loop: ask the model, run the tools it
// requests, feed the results back, and stop at the first turn without calls.
type Executor struct {
	model         Model
	tools         map[string]Tool
	specs         []ToolSpec
	system        string
	maxIterations int
	logger        *slog.Logger
}

func NewExecutor(model Model, tools []Tool, cfg ExecutorConfig) (*Executor, error) {
	if model == nil {
		return nil, fmt.Errorf("model is required")
	}
	if len(tools) == 0 {
		return nil, fmt.Errorf("at least one tool is required")
	}
	maxIterations := cfg.MaxIterations
	if maxIterations <= 0 {
		maxIterations = 15
	}
	topK := cfg.TopK
	if topK <= 0 {
		topK = 10
	}
	dialect := strings.TrimSpace(cfg.Dialect)
	if dialect == "" {
		dialect = "SQL"
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	byName := make(map[string]Tool, len(tools))
	specs := make([]ToolSpec, 0, len(tools))
	for _, tool := range tools {
		spec := tool.Spec()
		if _, dup := byName[spec.Name]; dup {
			return nil, fmt.Errorf("duplicate tool %q", spec.Name)
		}
		byName[spec.Name] = tool
		specs = append(specs, spec)
	}

	return &Executor{
		model:         model,
		tools:         byName,
		specs:         specs,
		system:        SystemPrompt(dialect, topK),
		maxIterations: maxIterations,
		logger:        logger,
	}, nil
}

func (e *Executor) Invoke(ctx context.Context, in Input) (Output, error) {
	messages := []Message{{Role: RoleUser, Content: in.Input}}

	for step := 1; step <= e.maxIterations; step++ {
		reply, err := e.model.Generate(ctx, Request{System: e.system, Messages: messages, Tools: e.specs})
		if err != nil {
			return Output{}, err
		}
		reply.Role = RoleAssistant
		messages = append(messages, reply)

		if len(reply.ToolCalls) == 0 {
			return Output{Output: reply.Content}, nil
		}

		results := make([]ToolResult, 0, len(reply.ToolCalls))
		for _, call := range reply.ToolCalls {
			results = append(results, e.runTool(ctx, step, call))
		}
		messages = append(messages, Message{Role: RoleTool, Results: results})
	}
	return Output{}, ErrIterationLimit
}

func (e *Executor) runTool(ctx context.Context, step int, call ToolCall) ToolResult {
	result := ToolResult{CallID: call.ID, Name: call.Name}
	tool, ok := e.tools[call.Name]
	if !ok {
		observability.ObserveToolCall(call.Name, "unknown")
		result.Content = fmt.Sprintf("Error: %s is not a valid tool, try one of [%s].", call.Name, strings.Join(e.toolNames(), ", "))
		return result
	}

	start := time.Now()
	content, err := tool.Run(ctx, call.Args)
	status := "ok"
	if err != nil {
		status = "error"
		content = "Error: " + err.Error()
	}
	observability.ObserveToolCall(call.Name, status)
	e.logger.DebugContext(ctx, "agent tool call",
		slog.Int("step", step),
		slog.String("tool", call.Name),
		slog.String("status", status),
		slog.String("duration", time.Since(start).String()),
	)
	result.Content = content
	return result
}

func (e *Executor) toolNames() []string {
	names := make([]string, 0, len(e.tools))
	for name := range e.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SystemPrompt is the instruction block sent with every model turn.
func SystemPrompt(dialect string, topK int) string {
	return fmt.Sprintf(`You are an agent that answers questions by querying a %[1]s database.
Given a question, write a syntactically correct %[1]s query, run it, look at the result and answer.
Unless the question asks for a specific number of results, limit your query to at most %[2]d rows.
You can order the results by a relevant column to return the most interesting examples.
Never select every column from a table; only ask for the columns relevant to the question.
Only use the tools below. Only use the information they return to build your final answer.
Check your query with sql_db_query_checker before running it with sql_db_query.
If a query fails, rewrite it and try again.
Do not make any DML statements (INSERT, UPDATE, DELETE, DROP etc.) to the database.
Always start by listing the tables with sql_db_list_tables, then read the schema of the most relevant tables with sql_db_schema.
If the question does not seem related to the database, answer "I don't know".
When you have the answer, reply with it directly and do not call any more tools.`, dialect, topK)
}
