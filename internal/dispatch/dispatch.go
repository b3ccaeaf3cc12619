// Package dispatch forwards questions to the agent and turns every agent
// failure into user-facing text.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/askdb/askdb/internal/agent"
	"github.com/askdb/askdb/internal/answer"
	"github.com/askdb/askdb/internal/observability"
)

var ErrEmptyQuestion = errors.New("please enter a question")

// Agent is the externally built question answerer.
type Agent interface {
	Invoke(ctx context.Context, in agent.Input) (agent.Output, error)
}

type Reply struct {
	Question string      `json:"question"`
	Answer   string      `json:"answer"`
	Display  answer.Hint `json:"display"`
}

type Dispatcher struct {
	agent   Agent
	logger  *slog.Logger
	timeout time.Duration
}

// New returns a dispatcher. A zero timeout lets the agent run until it returns.
func New(a Agent, logger *slog.Logger, timeout time.Duration) *Dispatcher {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Dispatcher{agent: a, logger: logger, timeout: timeout}
}

// Ask never returns an error: failures come back as "Error: <message>".
func (d *Dispatcher) Ask(ctx context.Context, question string) string {
	start := time.Now()
	output, err := d.invoke(ctx, question)
	elapsed := time.Since(start)
	if err != nil {
		observability.ObserveQuestion("error", elapsed)
		d.logger.WarnContext(ctx, "question failed",
			slog.String("duration", elapsed.String()),
			slog.Any("error", err),
		)
		return "Error: " + err.Error()
	}
	observability.ObserveQuestion("ok", elapsed)
	d.logger.InfoContext(ctx, "question answered",
		slog.String("duration", elapsed.String()),
		slog.Int("answer_bytes", len(output)),
	)
	return output
}

// Answer validates the question, asks it and classifies the result.
func (d *Dispatcher) Answer(ctx context.Context, question string) (Reply, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return Reply{}, ErrEmptyQuestion
	}
	raw := d.Ask(ctx, question)
	hint := answer.Normalize(raw)
	return Reply{Question: question, Answer: hint.Text, Display: hint}, nil
}

func (d *Dispatcher) invoke(ctx context.Context, question string) (output string, err error) {
	if d.agent == nil {
		return "", errors.New("agent is not configured")
	}
	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}
	defer func() {
		if r := recover(); r != nil {
			output, err = "", fmt.Errorf("%v", r)
		}
	}()

	out, err := d.agent.Invoke(ctx, agent.Input{Input: question})
	if err != nil {
		return "", err
	}
	return out.Output, nil
}
