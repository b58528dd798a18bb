package app

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"lunch-menu-planner/internal/ghost"
	"lunch-menu-planner/internal/history"
	"lunch-menu-planner/internal/menu"
	"lunch-menu-planner/internal/planner"
	"lunch-menu-planner/internal/recipe"
	"lunch-menu-planner/internal/storage"
	"lunch-menu-planner/internal/weather"
)

var (
	// ErrNoCatalog is returned when neither the database nor the snapshot
	// holds any dishes.
	ErrNoCatalog = errors.New("no catalog imported yet")
	// ErrPublishingDisabled is returned by PublishMenu without a Ghost client.
	ErrPublishingDisabled = errors.New("publishing is not configured")
	// ErrUnknownDish is returned when a swap names an id the catalog lacks.
	ErrUnknownDish = errors.New("dish not in catalog")
)

// Deps are the collaborators of an App. Weather, Snapshot and Publisher are
// optional.
type Deps struct {
	Recipes   *recipe.Repository
	Menus     *planner.MenuRepository
	Engine    *planner.Engine
	Snapshot  *storage.CatalogFile
	Weather   weather.Source
	Publisher ghost.Publisher
	Logger    *zap.Logger
}

// App holds the application's dependencies.
type App struct {
	recipes   *recipe.Repository
	menus     *planner.MenuRepository
	engine    *planner.Engine
	snapshot  *storage.CatalogFile
	weather   weather.Source
	publisher ghost.Publisher
	logger    *zap.Logger
}

// NewApp creates and initializes a new App instance.
func NewApp(d Deps) *App {
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &App{
		recipes:   d.Recipes,
		menus:     d.Menus,
		engine:    d.Engine,
		snapshot:  d.Snapshot,
		weather:   d.Weather,
		publisher: d.Publisher,
		logger:    logger,
	}
}

// ImportCatalog replaces the stored catalog with the active lunch dishes of a
// POS calculation export. sales may be nil; otherwise its counts are merged in.
func (a *App) ImportCatalog(ctx context.Context, calculations, sales io.Reader) (*recipe.Catalog, error) {
	records, err := recipe.ParseCalculationExport(calculations)
	if err != nil {
		return nil, fmt.Errorf("failed to parse calculation export: %w", err)
	}
	if sales != nil {
		counts, err := recipe.ParseSalesExport(sales)
		if err != nil {
			return nil, fmt.Errorf("failed to parse sales export: %w", err)
		}
		records = recipe.MergeSales(records, counts)
	}

	c, err := recipe.NewCatalog(records)
	if err != nil {
		return nil, fmt.Errorf("failed to build catalog: %w", err)
	}
	if err := a.recipes.Replace(ctx, records); err != nil {
		return nil, fmt.Errorf("failed to store catalog: %w", err)
	}
	if a.snapshot != nil {
		if err := a.snapshot.Save(c); err != nil {
			a.logger.Warn("failed to write catalog snapshot", zap.String("path", a.snapshot.Path()), zap.Error(err))
		}
	}

	nRecipes, nSoups := c.Len()
	a.logger.Info("catalog imported", zap.Int("recipes", nRecipes), zap.Int("soups", nSoups))
	return c, nil
}

// LoadCatalog reads the catalog from the database, falling back to the JSON
// snapshot when the database is empty or unreadable.
func (a *App) LoadCatalog(ctx context.Context) (*recipe.Catalog, error) {
	records, err := a.recipes.List(ctx)
	if err != nil {
		a.logger.Warn("failed to read catalog from database", zap.Error(err))
	}
	if len(records) > 0 {
		c, err := recipe.NewCatalog(records)
		if err != nil {
			return nil, fmt.Errorf("failed to build catalog: %w", err)
		}
		return c, nil
	}

	if a.snapshot == nil || !a.snapshot.Exists() {
		return nil, ErrNoCatalog
	}
	a.logger.Info("loading catalog from snapshot", zap.String("path", a.snapshot.Path()))
	return a.snapshot.Load()
}

// GenerateMenu plans the week starting at monday. The result is not stored.
func (a *App) GenerateMenu(ctx context.Context, monday menu.Date) (*planner.Result, error) {
	c, err := a.LoadCatalog(ctx)
	if err != nil {
		return nil, err
	}

	days := weather.ForWeek(ctx, a.weather, monday.Time, a.logger)
	h := history.Load(ctx, a.menus, a.logger)

	res, err := a.engine.Plan(ctx, planner.Request{
		Catalog:   c,
		History:   h,
		Weather:   days,
		WeekStart: monday,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to plan week of %s: %w", monday, err)
	}
	return res, nil
}

// SaveMenu stores a menu so later runs treat its dishes as recent.
func (a *App) SaveMenu(ctx context.Context, m *menu.WeeklyMenu) error {
	if err := a.menus.Save(ctx, m); err != nil {
		return fmt.Errorf("failed to save menu: %w", err)
	}
	a.logger.Info("menu saved", zap.String("id", m.ID), zap.Stringer("week", m.WeekStart))
	return nil
}

// SwapDish replaces one main dish of a stored menu with a catalog recipe.
// The edited menu is checked against every hard rule, using a history that
// leaves the menu itself out, and only stored when it passes.
func (a *App) SwapDish(ctx context.Context, menuID string, day, slot int, dishID string) (*menu.WeeklyMenu, error) {
	return a.edit(ctx, menuID, func(m *menu.WeeklyMenu, c *recipe.Catalog) error {
		r, ok := c.Recipe(dishID)
		if !ok {
			return fmt.Errorf("%w: %s", ErrUnknownDish, dishID)
		}
		return m.ReplaceDish(day, slot, menu.DishRef{
			ID:        r.ID,
			Name:      r.Name,
			Protein:   r.Protein,
			Heaviness: r.Heaviness,
		})
	})
}

// SwapSoup replaces the soup of one day of a stored menu.
func (a *App) SwapSoup(ctx context.Context, menuID string, day int, soupID string) (*menu.WeeklyMenu, error) {
	return a.edit(ctx, menuID, func(m *menu.WeeklyMenu, c *recipe.Catalog) error {
		s, ok := c.Soup(soupID)
		if !ok {
			return fmt.Errorf("%w: %s", ErrUnknownDish, soupID)
		}
		return m.ReplaceSoup(day, menu.SoupRef{ID: s.ID, Name: s.Name, Heaviness: s.Heaviness})
	})
}

func (a *App) edit(ctx context.Context, menuID string, change func(*menu.WeeklyMenu, *recipe.Catalog) error) (*menu.WeeklyMenu, error) {
	m, err := a.menus.Get(ctx, menuID)
	if err != nil {
		return nil, err
	}
	c, err := a.LoadCatalog(ctx)
	if err != nil {
		return nil, err
	}
	if err := change(&m, c); err != nil {
		return nil, err
	}

	h := history.LoadExcluding(ctx, a.menus, menuID, a.logger)
	if v := planner.Validate(m, c, h); v != nil {
		return nil, fmt.Errorf("edited menu rejected: %w", v)
	}
	if err := a.menus.Update(ctx, m); err != nil {
		return nil, fmt.Errorf("failed to update menu: %w", err)
	}
	return &m, nil
}

// DeleteMenu removes a stored menu; its dishes stop counting as recent.
func (a *App) DeleteMenu(ctx context.Context, menuID string) error {
	return a.menus.Delete(ctx, menuID)
}

// History returns up to limit stored menus, newest first.
func (a *App) History(ctx context.Context, limit int) ([]menu.WeeklyMenu, error) {
	return a.menus.ListRecent(ctx, limit)
}

// PublishMenu renders a stored menu as HTML and posts it to Ghost, as a
// draft unless publish is set.
func (a *App) PublishMenu(ctx context.Context, menuID string, publish bool) (*ghost.Post, error) {
	if a.publisher == nil {
		return nil, ErrPublishingDisabled
	}
	m, err := a.menus.Get(ctx, menuID)
	if err != nil {
		return nil, err
	}
	html, err := menu.RenderHTML(m)
	if err != nil {
		return nil, fmt.Errorf("failed to render menu: %w", err)
	}
	post, err := a.publisher.CreatePost(ctx, menu.Title(m), html, publish)
	if err != nil {
		return nil, fmt.Errorf("failed to publish menu: %w", err)
	}
	a.logger.Info("menu published", zap.String("id", menuID), zap.String("post", post.ID))
	return post, nil
}
