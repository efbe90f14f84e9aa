package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BhavyaPagadala/urbix/internal/analysis"
	"github.com/BhavyaPagadala/urbix/internal/audit"
	"github.com/BhavyaPagadala/urbix/internal/config"
	"github.com/BhavyaPagadala/urbix/internal/db"
	"github.com/BhavyaPagadala/urbix/internal/embeddings"
	"github.com/BhavyaPagadala/urbix/internal/lifecycle"
	"github.com/BhavyaPagadala/urbix/internal/llm"
	"github.com/BhavyaPagadala/urbix/internal/notifications"
	"github.com/BhavyaPagadala/urbix/internal/report"
	"github.com/BhavyaPagadala/urbix/internal/similar"
	"github.com/BhavyaPagadala/urbix/internal/users"
)

// app holds the components every command works with.
type app struct {
	cfg      *config.Config
	loc      *time.Location
	database *db.DB // nil with file storage
	store    *report.Store
	analyzer *analysis.Client
	engine   *lifecycle.Engine
	pulse    *analysis.PulseTracker
	users    *users.Directory
	audit    *audit.Store         // nil with file storage
	notify   *notifications.Store // nil with file storage
	dispatch *notifications.Dispatcher
}

// openApp loads the config and wires storage, analysis and the lifecycle
// engine. Callers must Close the result.
func openApp(ctx context.Context) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, loc: loc}

	var reportRepo report.Repository
	var userRepo users.Repository
	switch cfg.Storage {
	case config.StorageFile:
		if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
			return nil, fmt.Errorf("creating data dir: %w", err)
		}
		reportRepo = report.NewFileRepository(cfg.ReportsFile())
		userRepo = users.NewFileRepository(cfg.UsersFile())
	default:
		database, err := db.Open(cfg.DatabasePath())
		if err != nil {
			return nil, fmt.Errorf("opening database: %w", err)
		}
		a.database = database
		reportRepo = report.NewSQLiteRepository(database)
		userRepo = users.NewSQLiteRepository(database)
		a.audit = audit.NewStore(database)
		a.notify = notifications.NewStore(database)
		a.dispatch = notifications.NewDispatcher(a.notify)
	}

	a.store = report.NewStore(reportRepo)
	if err := a.store.Load(ctx); err != nil {
		a.Close()
		return nil, err
	}

	provider, err := createLLMProviderFromConfig(cfg)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("creating LLM provider: %w", err)
	}
	a.analyzer = analysis.NewClient(provider, analysis.Options{
		Model:      cfg.Model,
		PulseModel: cfg.PulseModel,
		Timeout:    cfg.AnalysisTimeout(),
	})
	a.pulse = analysis.NewPulseTracker(a.analyzer)

	a.engine = lifecycle.NewEngine(a.store, a.analyzer, lifecycle.Options{Timeout: cfg.AnalysisTimeout()})
	if a.audit != nil {
		a.engine.AddObserver(audit.NewRecorder(a.audit))
	}
	if a.dispatch != nil {
		a.engine.AddObserver(a.dispatch)
	}
	a.users = users.NewDirectory(userRepo)

	if verbose {
		fmt.Fprintf(os.Stderr, "urbix: storage=%s provider=%s model=%s reports=%d\n",
			cfg.Storage, cfg.Provider, cfg.Model, len(a.store.List(report.Filter{})))
	}
	return a, nil
}

// Close waits for scheduled enrichments and notification deliveries, then
// releases the database.
func (a *app) Close() {
	if a.engine != nil {
		a.engine.Wait()
	}
	if a.dispatch != nil {
		a.dispatch.Wait()
	}
	if a.database != nil {
		a.database.Close()
	}
}

// similarIndexPath is where the similar-report vectors are persisted.
func (a *app) similarIndexPath() string {
	return filepath.Join(a.cfg.DataDir, "similar.gob.gz")
}

// openSimilarIndex builds the similar-report index and subscribes it to the
// engine. It returns nil when no embedding provider is configured.
func (a *app) openSimilarIndex(ctx context.Context) (*similar.Index, error) {
	embedder, err := createEmbedderFromConfig(a.cfg)
	if err != nil || embedder == nil {
		return nil, err
	}

	idx, err := similar.New(embeddings.ToChromemFunc(embedder))
	if err != nil {
		return nil, err
	}
	path := a.similarIndexPath()
	if _, err := os.Stat(path); err == nil {
		if err := idx.Load(path); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: could not load similar-report index from %s: %v\n", path, err)
		}
	}
	if err := idx.Sync(ctx, a.store.List(report.Filter{})); err != nil {
		return nil, err
	}
	a.engine.AddObserver(idx)
	return idx, nil
}

// createEmbedderFromConfig creates an embeddings.Embedder based on config.
// It returns nil when embeddings are disabled.
func createEmbedderFromConfig(cfg *config.Config) (embeddings.Embedder, error) {
	provider := cfg.EmbeddingProvider
	if provider == "" || provider == config.ProviderNone {
		return nil, nil
	}
	model := cfg.EmbeddingModel
	if model == "" {
		preset := config.GetPreset(provider, cfg.Quality)
		model = preset.EmbeddingModel
	}

	switch provider {
	case config.ProviderOpenAI:
		apiKey := os.Getenv(config.APIKeyEnvVar(config.ProviderOpenAI))
		if apiKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY environment variable is required for OpenAI embeddings")
		}
		return embeddings.NewOpenAIEmbedder(apiKey, embeddings.OpenAIModel(model), ""), nil
	case config.ProviderOllama:
		return embeddings.NewOllamaEmbedder(model, 768, os.Getenv("OLLAMA_HOST")), nil
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", provider)
	}
}

// createLLMProviderFromConfig creates an LLM provider based on config
// settings. It returns nil for provider "none", which makes every
// analysis fall back.
func createLLMProviderFromConfig(cfg *config.Config) (llm.Provider, error) {
	if cfg.Provider == config.ProviderNone {
		return nil, nil
	}
	model := cfg.Model
	if model == "" {
		model = config.GetPreset(cfg.Provider, cfg.Quality).Model
	}
	provider, err := llm.NewProvider(string(cfg.Provider), model)
	if err != nil {
		return nil, err
	}
	return llm.NewRateLimitedProvider(provider, cfg.RateLimitRPM), nil
}

// loadConfig loads the config, providing a user-friendly error.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w\nRun `urbix init` to create a config file", err)
	}
	return cfg, nil
}

// requireNotifications fails for storage backends without notifications.
func (a *app) requireNotifications() error {
	if a.notify == nil {
		return errors.New("department notifications require storage: sqlite")
	}
	return nil
}

// requireAudit fails for storage backends without an audit trail.
func (a *app) requireAudit() error {
	if a.audit == nil {
		return errors.New("the audit trail requires storage: sqlite")
	}
	return nil
}
