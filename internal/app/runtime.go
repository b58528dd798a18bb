package app

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"lunch-menu-planner/internal/config"
	"lunch-menu-planner/internal/database"
	"lunch-menu-planner/internal/ghost"
	"lunch-menu-planner/internal/llm"
	"lunch-menu-planner/internal/metrics"
	"lunch-menu-planner/internal/planner"
	"lunch-menu-planner/internal/recipe"
	"lunch-menu-planner/internal/storage"
	"lunch-menu-planner/internal/weather"
)

// Runtime is an App wired from configuration, plus the resources it owns.
type Runtime struct {
	App     *App
	DB      *database.DB
	Metrics *metrics.Store
	Recipes *recipe.Repository

	closers []io.Closer
}

// NewRuntime opens the database and builds every collaborator named by cfg.
// Planning attempts are counted on reg.
func NewRuntime(ctx context.Context, cfg *config.Config, reg prometheus.Registerer, logger *zap.Logger) (*Runtime, error) {
	db, err := database.NewDB(cfg.DatabasePath, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	rt := &Runtime{
		DB:      db,
		Metrics: metrics.NewStore(db.SQL),
		Recipes: recipe.NewRepository(db.SQL),
		closers: []io.Closer{db},
	}

	proposer, closer, err := newProposer(ctx, cfg)
	if err != nil {
		rt.Close()
		return nil, err
	}
	if closer != nil {
		rt.closers = append(rt.closers, closer)
	}

	snapshot, err := storage.NewCatalogFile(cfg.CatalogSnapshotPath)
	if err != nil {
		rt.Close()
		return nil, err
	}

	forecast, err := weather.NewClient(weather.ClientConfig{
		Latitude:  cfg.WeatherLatitude,
		Longitude: cfg.WeatherLongitude,
		Timezone:  cfg.WeatherTimezone,
	})
	if err != nil {
		rt.Close()
		return nil, fmt.Errorf("failed to initialize weather client: %w", err)
	}

	var publisher ghost.Publisher
	if cfg.GhostEnabled() {
		publisher = ghost.NewClient(cfg.GhostURL, cfg.GhostAdminKey)
	}

	recorder := metrics.NewRecorder(reg, rt.Metrics, logger)
	engine := planner.NewEngine(proposer,
		planner.WithMaxAttempts(cfg.MaxAttempts),
		planner.WithLogger(logger),
		planner.WithObserver(recorder),
	)

	rt.App = NewApp(Deps{
		Recipes:   rt.Recipes,
		Menus:     planner.NewMenuRepository(db.SQL),
		Engine:    engine,
		Snapshot:  snapshot,
		Weather:   forecast,
		Publisher: publisher,
		Logger:    logger,
	})
	return rt, nil
}

// newProposer returns the configured proposer and, for language model
// proposers that hold a connection, the resource to close.
func newProposer(ctx context.Context, cfg *config.Config) (planner.Proposer, io.Closer, error) {
	switch cfg.Proposer {
	case config.ProposerGemini:
		client, err := llm.NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize Gemini client: %w", err)
		}
		return planner.NewGenerativeProposer(client, config.ProposerGemini), client, nil
	case config.ProposerGroq:
		client := llm.NewGroqClient(cfg.GroqAPIKey, cfg.GroqModel)
		return planner.NewGenerativeProposer(client, config.ProposerGroq), nil, nil
	default:
		return planner.NewSearchProposer(planner.WithSeed(cfg.Seed)), nil, nil
	}
}

// Close releases the database and model clients.
func (r *Runtime) Close() error {
	var errs []error
	for i := len(r.closers) - 1; i >= 0; i-- {
		if err := r.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
