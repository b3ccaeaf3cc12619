// Package repl runs the interactive question loop.
package repl

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/askdb/askdb/internal/cli/render"
	"github.com/askdb/askdb/internal/dispatch"
	"github.com/askdb/askdb/internal/observability"
)

const (
	Prompt    = "Your question: "
	Separator = "--------------------------------------------------"
)

type Asker interface {
	Answer(ctx context.Context, question string) (dispatch.Reply, error)
}

type Options struct {
	Database  string
	Questions []string
}

// Run reads questions from in until a quit word, EOF or ctx cancellation.
// Cancellation also ends a read that is still waiting for input.
func Run(ctx context.Context, in io.Reader, out io.Writer, asker Asker, opts Options) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	writeBanner(out, opts)

	lines, readErr := readLines(ctx, in)
	for {
		if err := ctx.Err(); err != nil {
			return nil
		}
		_, _ = fmt.Fprint(out, Prompt)
		var (
			raw string
			ok  bool
		)
		select {
		case <-ctx.Done():
			_, _ = fmt.Fprintln(out)
			return nil
		case raw, ok = <-lines:
		}
		if !ok {
			_, _ = fmt.Fprintln(out)
			select {
			case err := <-readErr:
				return err
			default:
				return nil
			}
		}
		question := strings.TrimSpace(raw)
		if isQuit(question) {
			_, _ = fmt.Fprintln(out, "Goodbye!")
			return nil
		}
		if question == "" {
			render.Warning(out, "Please enter a question.")
			continue
		}

		_, _ = fmt.Fprintln(out, "Processing...")
		reply, err := asker.Answer(observability.EnsureTraceID(ctx), question)
		switch {
		case errors.Is(err, dispatch.ErrEmptyQuestion):
			render.Warning(out, "Please enter a question.")
			continue
		case err != nil:
			render.Warning(out, "Error: "+err.Error())
		default:
			render.Answer(out, reply.Display)
		}
		_, _ = fmt.Fprintln(out, Separator)
	}
}

// readLines scans in on its own goroutine so the loop can stop while a read
// is blocked. The scanner error, if any, is sent before lines is closed.
func readLines(ctx context.Context, in io.Reader) (<-chan string, <-chan error) {
	lines := make(chan string)
	readErr := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		if err := scanner.Err(); err != nil {
			readErr <- err
		}
	}()
	return lines, readErr
}

func isQuit(input string) bool {
	switch strings.ToLower(input) {
	case "quit", "exit", "q":
		return true
	}
	return false
}

func writeBanner(out io.Writer, opts Options) {
	_, _ = fmt.Fprintln(out, "askdb: ask questions about your database in plain English.")
	if opts.Database != "" {
		_, _ = fmt.Fprintf(out, "Connected to %s\n", opts.Database)
	}
	if len(opts.Questions) > 0 {
		render.Questions(out, opts.Questions)
	}
	_, _ = fmt.Fprintln(out, "Type 'quit', 'exit' or 'q' to leave.")
	_, _ = fmt.Fprintln(out)
}
