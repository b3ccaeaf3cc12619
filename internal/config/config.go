package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type LookupFunc func(string) (string, bool)

type Profile string

const (
	ProfileDev  Profile = "dev"
	ProfileTest Profile = "test"
	ProfileProd Profile = "prod"
)

type Provider string

const (
	ProviderGemini Provider = "gemini"
	ProviderOpenAI Provider = "openai"
)

type Config struct {
	Profile       Profile
	Service       ServiceConfig
	HTTP          HTTPConfig
	Database      DatabaseConfig
	Schema        SchemaConfig
	AI            AIConfig
	Agent         AgentConfig
	Samples       SamplesConfig
	Observability ObservabilityConfig
}

type ServiceConfig struct {
	Name string
}

type HTTPConfig struct {
	Address      string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxIdleTime time.Duration
	ConnMaxLifetime time.Duration
	ConnectTimeout  time.Duration
}

type SchemaConfig struct {
	// CacheTTL of zero keeps the snapshot until it is refreshed.
	CacheTTL time.Duration
}

type AIConfig struct {
	Provider    Provider
	BaseURL     string
	APIKey      string
	Model       string
	Temperature float64
	Timeout     time.Duration
}

type AgentConfig struct {
	MaxIterations   int
	TopK            int
	SampleRows      int
	QuestionTimeout time.Duration
}

type SamplesConfig struct {
	File string
}

type ObservabilityConfig struct {
	LogLevel slog.Level
	LogJSON  bool
}

// ErrInvalid marks configuration that cannot start the service.
var ErrInvalid = errors.New("invalid configuration")

// LoadDotEnv reads KEY=VALUE pairs from the given files into the process
// environment. Variables that are already set win. Missing files are ignored.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, path := range paths {
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
	}
	return nil
}

func LoadFromEnv(serviceName string) (Config, error) {
	return Load(serviceName, os.LookupEnv)
}

func Load(serviceName string, lookup LookupFunc) (Config, error) {
	if lookup == nil {
		return Config{}, fmt.Errorf("lookup function is required")
	}

	profile := ProfileDev
	if raw, ok := lookupValue(lookup, "ASKDB_PROFILE"); ok {
		profile = Profile(strings.ToLower(raw))
	}
	if !isValidProfile(profile) {
		return Config{}, fmt.Errorf("%w: ASKDB_PROFILE %q", ErrInvalid, profile)
	}

	cfg := defaultsForProfile(profile)
	if serviceName != "" {
		cfg.Service.Name = serviceName
	}

	appliers := []func() error{
		func() error { return applyString(lookup, "ASKDB_SERVICE_NAME", &cfg.Service.Name) },
		func() error { return applyString(lookup, "ASKDB_HTTP_ADDR", &cfg.HTTP.Address) },
		func() error { return applyDuration(lookup, "ASKDB_HTTP_READ_TIMEOUT", &cfg.HTTP.ReadTimeout) },
		func() error { return applyDuration(lookup, "ASKDB_HTTP_WRITE_TIMEOUT", &cfg.HTTP.WriteTimeout) },
		func() error { return applyDuration(lookup, "ASKDB_HTTP_IDLE_TIMEOUT", &cfg.HTTP.IdleTimeout) },
		func() error { return applyString(lookup, "DATABASE_URL", &cfg.Database.URL) },
		func() error { return applyInt(lookup, "ASKDB_DB_MAX_OPEN_CONNS", &cfg.Database.MaxOpenConns) },
		func() error { return applyInt(lookup, "ASKDB_DB_MAX_IDLE_CONNS", &cfg.Database.MaxIdleConns) },
		func() error { return applyDuration(lookup, "ASKDB_DB_CONN_MAX_IDLE_TIME", &cfg.Database.ConnMaxIdleTime) },
		func() error { return applyDuration(lookup, "ASKDB_DB_CONN_MAX_LIFETIME", &cfg.Database.ConnMaxLifetime) },
		func() error { return applyDuration(lookup, "ASKDB_DB_CONNECT_TIMEOUT", &cfg.Database.ConnectTimeout) },
		func() error { return applyDuration(lookup, "ASKDB_SCHEMA_CACHE_TTL", &cfg.Schema.CacheTTL) },
		func() error { return applyProvider(lookup, "ASKDB_AI_PROVIDER", &cfg.AI.Provider) },
		func() error { return applyString(lookup, "GOOGLE_API_KEY", &cfg.AI.APIKey) },
		func() error { return applyString(lookup, "ASKDB_AI_API_KEY", &cfg.AI.APIKey) },
		func() error { return applyString(lookup, "ASKDB_AI_BASE_URL", &cfg.AI.BaseURL) },
		func() error { return applyString(lookup, "ASKDB_AI_MODEL", &cfg.AI.Model) },
		func() error { return applyFloat(lookup, "ASKDB_AI_TEMPERATURE", &cfg.AI.Temperature) },
		func() error { return applyDuration(lookup, "ASKDB_AI_TIMEOUT", &cfg.AI.Timeout) },
		func() error { return applyInt(lookup, "ASKDB_AGENT_MAX_ITERATIONS", &cfg.Agent.MaxIterations) },
		func() error { return applyInt(lookup, "ASKDB_AGENT_TOP_K", &cfg.Agent.TopK) },
		func() error { return applyInt(lookup, "ASKDB_AGENT_SAMPLE_ROWS", &cfg.Agent.SampleRows) },
		func() error { return applyDuration(lookup, "ASKDB_AGENT_QUESTION_TIMEOUT", &cfg.Agent.QuestionTimeout) },
		func() error { return applyString(lookup, "ASKDB_SAMPLES_FILE", &cfg.Samples.File) },
		func() error { return applyBool(lookup, "ASKDB_LOG_JSON", &cfg.Observability.LogJSON) },
		func() error { return applyLogLevel(lookup, "ASKDB_LOG_LEVEL", &cfg.Observability.LogLevel) },
	}
	for _, apply := range appliers {
		if err := apply(); err != nil {
			return Config{}, err
		}
	}

	if cfg.AI.Model == "" {
		cfg.AI.Model = defaultModel(cfg.AI.Provider)
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func defaultModel(provider Provider) string {
	if provider == ProviderOpenAI {
		return "gpt-4o-mini"
	}
	return "gemini-2.0-flash"
}

func (c Config) validate() error {
	if c.Service.Name == "" {
		return fmt.Errorf("%w: service name is required", ErrInvalid)
	}
	if c.HTTP.Address == "" {
		return fmt.Errorf("%w: http address is required", ErrInvalid)
	}
	if c.Agent.MaxIterations <= 0 {
		return fmt.Errorf("%w: ASKDB_AGENT_MAX_ITERATIONS must be positive", ErrInvalid)
	}
	if c.Agent.TopK <= 0 {
		return fmt.Errorf("%w: ASKDB_AGENT_TOP_K must be positive", ErrInvalid)
	}
	if c.Agent.SampleRows < 0 {
		return fmt.Errorf("%w: ASKDB_AGENT_SAMPLE_ROWS must not be negative", ErrInvalid)
	}
	if c.Schema.CacheTTL < 0 {
		return fmt.Errorf("%w: ASKDB_SCHEMA_CACHE_TTL must not be negative", ErrInvalid)
	}
	return nil
}

// RequireDatabase reports a missing DATABASE_URL.
func (c Config) RequireDatabase() error {
	if strings.TrimSpace(c.Database.URL) == "" {
		return fmt.Errorf("%w: DATABASE_URL is required", ErrInvalid)
	}
	return nil
}

// RequireAgent reports the settings that must be present before the
// question pipeline can be built.
func (c Config) RequireAgent() error {
	if err := c.RequireDatabase(); err != nil {
		return err
	}
	if strings.TrimSpace(c.AI.APIKey) == "" {
		if c.AI.Provider == ProviderGemini {
			return fmt.Errorf("%w: GOOGLE_API_KEY is required", ErrInvalid)
		}
		return fmt.Errorf("%w: ASKDB_AI_API_KEY is required", ErrInvalid)
	}
	return nil
}

func defaultsForProfile(profile Profile) Config {
	cfg := Config{
		Profile: profile,
		Service: ServiceConfig{Name: "askdb"},
		HTTP: HTTPConfig{
			Address:      ":8080",
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 120 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		Database: DatabaseConfig{
			MaxOpenConns:    5,
			MaxIdleConns:    5,
			ConnMaxIdleTime: 5 * time.Minute,
			ConnMaxLifetime: 30 * time.Minute,
			ConnectTimeout:  5 * time.Second,
		},
		AI: AIConfig{
			Provider:    ProviderGemini,
			Temperature: 0,
			Timeout:     60 * time.Second,
		},
		Agent: AgentConfig{
			MaxIterations: 15,
			TopK:          10,
			SampleRows:    3,
		},
		Observability: ObservabilityConfig{
			LogLevel: slog.LevelDebug,
			LogJSON:  false,
		},
	}

	switch profile {
	case ProfileTest:
		cfg.HTTP.Address = ":18080"
		cfg.Observability.LogLevel = slog.LevelWarn
	case ProfileProd:
		cfg.Observability.LogLevel = slog.LevelInfo
		cfg.Observability.LogJSON = true
		cfg.Agent.QuestionTimeout = 2 * time.Minute
	}

	return cfg
}

func isValidProfile(profile Profile) bool {
	switch profile {
	case ProfileDev, ProfileTest, ProfileProd:
		return true
	default:
		return false
	}
}

// lookupValue treats a blank value the same as an unset key.
func lookupValue(lookup LookupFunc, key string) (string, bool) {
	raw, ok := lookup(key)
	if !ok {
		return "", false
	}
	raw = strings.TrimSpace(raw)
	return raw, raw != ""
}

func applyString(lookup LookupFunc, key string, dst *string) error {
	if value, ok := lookupValue(lookup, key); ok {
		*dst = value
	}
	return nil
}

func applyProvider(lookup LookupFunc, key string, dst *Provider) error {
	raw, ok := lookupValue(lookup, key)
	if !ok {
		return nil
	}
	provider := Provider(strings.ToLower(raw))
	switch provider {
	case ProviderGemini, ProviderOpenAI:
		*dst = provider
		return nil
	default:
		return fmt.Errorf("%w: %s %q", ErrInvalid, key, raw)
	}
}

func applyDuration(lookup LookupFunc, key string, dst *time.Duration) error {
	raw, ok := lookupValue(lookup, key)
	if !ok {
		return nil
	}
	value, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrInvalid, key, err)
	}
	*dst = value
	return nil
}

func applyBool(lookup LookupFunc, key string, dst *bool) error {
	raw, ok := lookupValue(lookup, key)
	if !ok {
		return nil
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrInvalid, key, err)
	}
	*dst = value
	return nil
}

func applyInt(lookup LookupFunc, key string, dst *int) error {
	raw, ok := lookupValue(lookup, key)
	if !ok {
		return nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrInvalid, key, err)
	}
	*dst = value
	return nil
}

func applyFloat(lookup LookupFunc, key string, dst *float64) error {
	raw, ok := lookupValue(lookup, key)
	if !ok {
		return nil
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrInvalid, key, err)
	}
	*dst = value
	return nil
}

func applyLogLevel(lookup LookupFunc, key string, dst *slog.Level) error {
	raw, ok := lookupValue(lookup, key)
	if !ok {
		return nil
	}
	level := strings.ToLower(raw)
	switch level {
	case "debug":
		*dst = slog.LevelDebug
	case "info":
		*dst = slog.LevelInfo
	case "warn", "warning":
		*dst = slog.LevelWarn
	case "error":
		*dst = slog.LevelError
	default:
		return fmt.Errorf("%w: %s %q", ErrInvalid, key, raw)
	}
	return nil
}
