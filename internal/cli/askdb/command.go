// Package askdb wires the terminal front end onto the question pipeline.
package askdb

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/askdb/askdb/internal/app"
	"github.com/askdb/askdb/internal/cli/render"
	"github.com/askdb/askdb/internal/cli/repl"
	"github.com/askdb/askdb/internal/config"
	"github.com/askdb/askdb/internal/dispatch"
	"github.com/askdb/askdb/internal/observability"
	"github.com/askdb/askdb/internal/samples"
	"github.com/askdb/askdb/internal/schema"
)

// Backend is what the question commands need from a running pipeline.
type Backend interface {
	Answer(ctx context.Context, question string) (dispatch.Reply, error)
	Questions() []string
	Database() string
	Close() error
}

// SchemaReader produces a fresh schema snapshot on every call.
type SchemaReader interface {
	Fetch(ctx context.Context) (schema.Snapshot, error)
}

type OpenFunc func(ctx context.Context, envFiles []string, stderr io.Writer) (Backend, error)

type OpenSchemaFunc func(ctx context.Context, envFiles []string, stderr io.Writer) (SchemaReader, error)

type QuestionsFunc func(envFiles []string) ([]string, error)

// Options replaces the process streams and the open paths. The schema and
// questions commands never build the model, so they run without credentials.
type Options struct {
	Stdin         io.Reader
	Stdout        io.Writer
	Stderr        io.Writer
	Open          OpenFunc
	OpenSchema    OpenSchemaFunc
	LoadQuestions QuestionsFunc
}

func NewCommand(opts Options) *cobra.Command {
	if opts.Stdin == nil {
		opts.Stdin = os.Stdin
	}
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	if opts.Open == nil {
		opts.Open = OpenApp
	}
	if opts.OpenSchema == nil {
		opts.OpenSchema = OpenIntrospector
	}
	if opts.LoadQuestions == nil {
		opts.LoadQuestions = LoadQuestions
	}

	var envFiles []string
	open := func(cmd *cobra.Command) (Backend, error) {
		return opts.Open(cmd.Context(), envFiles, opts.Stderr)
	}

	root := &cobra.Command{
		Use:           "askdb",
		Short:         "Ask questions about a SQL database in plain English",
		Long:          "askdb answers natural-language questions by letting a language model explore and query a PostgreSQL or MySQL database.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			backend, err := open(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = backend.Close() }()
			return repl.Run(cmd.Context(), opts.Stdin, opts.Stdout, backend, repl.Options{
				Database:  backend.Database(),
				Questions: backend.Questions(),
			})
		},
	}
	root.SetIn(opts.Stdin)
	root.SetOut(opts.Stdout)
	root.SetErr(opts.Stderr)
	root.PersistentFlags().StringSliceVar(&envFiles, "env-file", []string{".env"}, "dotenv files loaded before reading the environment")

	askCmd := &cobra.Command{
		Use:   "ask <question...>",
		Short: "Answer a single question and exit",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			question := strings.TrimSpace(strings.Join(args, " "))
			if question == "" {
				return dispatch.ErrEmptyQuestion
			}
			backend, err := open(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = backend.Close() }()
			reply, err := backend.Answer(observability.EnsureTraceID(cmd.Context()), question)
			if err != nil {
				return err
			}
			render.Answer(opts.Stdout, reply.Display)
			return nil
		},
	}

	var search string
	schemaCmd := &cobra.Command{
		Use:   "schema",
		Short: "Show the tables and columns of the connected database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			reader, err := opts.OpenSchema(cmd.Context(), envFiles, opts.Stderr)
			if err != nil {
				return err
			}
			snapshot, err := reader.Fetch(cmd.Context())
			if err != nil {
				render.SchemaUnavailable(opts.Stdout)
				return err
			}
			render.Schema(opts.Stdout, snapshot.Filter(search))
			return nil
		},
	}
	schemaCmd.Flags().StringVar(&search, "search", "", "only show tables whose name contains this text")

	questionsCmd := &cobra.Command{
		Use:   "questions",
		Short: "List sample questions",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			questions, err := opts.LoadQuestions(envFiles)
			if err != nil {
				return err
			}
			render.Questions(opts.Stdout, questions)
			return nil
		},
	}

	root.AddCommand(askCmd, schemaCmd, questionsCmd)
	return root
}

// Execute runs the command line and returns the process exit code.
func Execute(ctx context.Context, args []string, opts Options) int {
	if args == nil {
		args = []string{}
	}
	cmd := NewCommand(opts)
	cmd.SetArgs(args)
	if err := cmd.ExecuteContext(ctx); err != nil {
		stderr := opts.Stderr
		if stderr == nil {
			stderr = os.Stderr
		}
		_, _ = fmt.Fprintf(stderr, "askdb: %v\n", err)
		if errors.Is(err, config.ErrInvalid) {
			return 2
		}
		return 1
	}
	return 0
}

func loadConfig(envFiles []string) (config.Config, error) {
	if err := config.LoadDotEnv(envFiles...); err != nil {
		return config.Config{}, err
	}
	return config.LoadFromEnv("askdb")
}

// OpenApp loads dotenv files and the environment, then builds the pipeline.
// Logs go to stderr so they never mix with answers.
func OpenApp(ctx context.Context, envFiles []string, stderr io.Writer) (Backend, error) {
	cfg, err := loadConfig(envFiles)
	if err != nil {
		return nil, err
	}
	logger := observability.NewLogger(cfg, stderr)
	a, err := app.New(ctx, cfg, logger, app.Options{})
	if err != nil {
		return nil, err
	}
	return appBackend{a}, nil
}

type appBackend struct {
	*app.App
}

func (b appBackend) Answer(ctx context.Context, question string) (dispatch.Reply, error) {
	return b.Dispatcher.Answer(ctx, question)
}

func (b appBackend) Questions() []string {
	return b.App.Questions
}

func (b appBackend) Database() string {
	return b.Params.Redacted()
}

// OpenIntrospector needs only DATABASE_URL.
func OpenIntrospector(_ context.Context, envFiles []string, stderr io.Writer) (SchemaReader, error) {
	cfg, err := loadConfig(envFiles)
	if err != nil {
		return nil, err
	}
	introspector, err := app.NewIntrospector(cfg, observability.NewLogger(cfg, stderr), app.Options{})
	if err != nil {
		return nil, err
	}
	return introspector, nil
}

// LoadQuestions reads the sample questions without touching the database.
func LoadQuestions(envFiles []string) ([]string, error) {
	cfg, err := loadConfig(envFiles)
	if err != nil {
		return nil, err
	}
	questions, err := samples.Load(cfg.Samples.File)
	if err != nil {
		return nil, fmt.Errorf("%w: ASKDB_SAMPLES_FILE: %w", config.ErrInvalid, err)
	}
	return questions, nil
}
