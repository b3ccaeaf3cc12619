// Package app builds the long-lived pieces of the question pipeline once
// and hands them to the terminal and HTTP surfaces.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/askdb/askdb/internal/agent"
	"github.com/askdb/askdb/internal/config"
	"github.com/askdb/askdb/internal/database"
	"github.com/askdb/askdb/internal/dispatch"
	"github.com/askdb/askdb/internal/query/sqldb"
	"github.com/askdb/askdb/internal/samples"
	"github.com/askdb/askdb/internal/schema"
	"github.com/askdb/askdb/internal/sqltool"
)

// Options replaces external collaborators, mainly in tests.
type Options struct {
	Open  database.Opener
	Model agent.Model
}

type App struct {
	Config     config.Config
	Logger     *slog.Logger
	Params     database.Params
	Schema     *schema.Cache
	Dispatcher *dispatch.Dispatcher
	Questions  []string

	db *sql.DB
}

// New fails with an error wrapping config.ErrInvalid when required settings
// are missing or malformed.
func New(ctx context.Context, cfg config.Config, logger *slog.Logger, opts Options) (*App, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if err := cfg.RequireAgent(); err != nil {
		return nil, err
	}
	params, err := database.ParseURL(cfg.Database.URL)
	if err != nil {
		return nil, fmt.Errorf("%w: DATABASE_URL: %w", config.ErrInvalid, err)
	}
	questions, err := samples.Load(cfg.Samples.File)
	if err != nil {
		return nil, fmt.Errorf("%w: ASKDB_SAMPLES_FILE: %w", config.ErrInvalid, err)
	}

	introspectOpener := introspectionOpener(cfg, opts)
	agentOpener := opts.Open
	if agentOpener == nil {
		agentOpener = database.NewOpener(database.PoolConfig{
			MaxOpenConns:    cfg.Database.MaxOpenConns,
			MaxIdleConns:    cfg.Database.MaxIdleConns,
			ConnMaxIdleTime: cfg.Database.ConnMaxIdleTime,
			ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
			ConnectTimeout:  cfg.Database.ConnectTimeout,
		})
	}

	model := opts.Model
	if model == nil {
		model, err = NewModel(ctx, cfg.AI)
		if err != nil {
			return nil, fmt.Errorf("create %s model: %w", cfg.AI.Provider, err)
		}
	}

	db, err := agentOpener(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("connect agent to %s: %w", params.Redacted(), err)
	}

	toolbox := sqltool.New(db, sqldb.NewEngine(db, params.Dialect), sqltool.Config{
		Dialect:    params.Dialect,
		TopK:       cfg.Agent.TopK,
		SampleRows: cfg.Agent.SampleRows,
	})
	executor, err := agent.NewExecutor(model, toolbox.Tools(), agent.ExecutorConfig{
		Dialect:       params.Dialect.DisplayName(),
		TopK:          cfg.Agent.TopK,
		MaxIterations: cfg.Agent.MaxIterations,
		Logger:        logger,
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create agent: %w", err)
	}

	introspector := schema.NewIntrospector(cfg.Database.URL, introspectOpener, logger)
	logger.Info("question pipeline ready",
		slog.String("database", params.Redacted()),
		slog.String("provider", string(cfg.AI.Provider)),
		slog.String("model", cfg.AI.Model),
	)

	return &App{
		Config:     cfg,
		Logger:     logger,
		Params:     params,
		Schema:     schema.NewCache(introspector, cfg.Schema.CacheTTL),
		Dispatcher: dispatch.New(executor, logger, cfg.Agent.QuestionTimeout),
		Questions:  questions,
		db:         db,
	}, nil
}

// NewIntrospector builds only the schema reader. It needs DATABASE_URL but
// no model credentials.
func NewIntrospector(cfg config.Config, logger *slog.Logger, opts Options) (*schema.Introspector, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if err := cfg.RequireDatabase(); err != nil {
		return nil, err
	}
	if _, err := database.ParseURL(cfg.Database.URL); err != nil {
		return nil, fmt.Errorf("%w: DATABASE_URL: %w", config.ErrInvalid, err)
	}
	return schema.NewIntrospector(cfg.Database.URL, introspectionOpener(cfg, opts), logger), nil
}

func introspectionOpener(cfg config.Config, opts Options) database.Opener {
	if opts.Open != nil {
		return opts.Open
	}
	return database.NewOpener(database.PoolConfig{
		MaxOpenConns:   1,
		ConnectTimeout: cfg.Database.ConnectTimeout,
	})
}

// NewModel picks the model backend named by the provider setting.
func NewModel(ctx context.Context, cfg config.AIConfig) (agent.Model, error) {
	switch cfg.Provider {
	case config.ProviderOpenAI:
		return agent.NewOpenAIModel(agent.OpenAIConfig{
			BaseURL:     cfg.BaseURL,
			APIKey:      cfg.APIKey,
			Model:       cfg.Model,
			Temperature: cfg.Temperature,
			Timeout:     cfg.Timeout,
		})
	case config.ProviderGemini, "":
		return agent.NewGeminiModel(ctx, agent.GeminiConfig{
			APIKey:      cfg.APIKey,
			BaseURL:     cfg.BaseURL,
			Model:       cfg.Model,
			Temperature: cfg.Temperature,
			Timeout:     cfg.Timeout,
		})
	default:
		return nil, fmt.Errorf("%w: unknown provider %q", config.ErrInvalid, cfg.Provider)
	}
}

// Ready pings the agent's pool.
func (a *App) Ready(ctx context.Context) error {
	if a.db == nil {
		return fmt.Errorf("database is not connected")
	}
	return a.db.PingContext(ctx)
}

func (a *App) Close() error {
	if a.db == nil {
		return nil
	}
	return a.db.Close()
}
