package app

import (
	"context"
	"errors"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lunch-menu-planner/internal/database"
	"lunch-menu-planner/internal/dish"
	"lunch-menu-planner/internal/ghost"
	"lunch-menu-planner/internal/menu"
	"lunch-menu-planner/internal/planner"
	"lunch-menu-planner/internal/recipe"
	"lunch-menu-planner/internal/storage"
	"lunch-menu-planner/internal/weather"
)

var monday = menu.NewDate(2025, time.March, 10)

type offlineWeather struct{}

func (offlineWeather) Fetch(context.Context, time.Time) ([]weather.Day, error) {
	return nil, errors.New("network unreachable")
}

type fakePublisher struct {
	title, html string
	publish     bool
}

func (f *fakePublisher) CreatePost(_ context.Context, title, html string, publish bool) (*ghost.Post, error) {
	f.title, f.html, f.publish = title, html, publish
	return &ghost.Post{ID: "post-1", Title: title}, nil
}

func testCatalog(t *testing.T) *recipe.Catalog {
	t.Helper()
	const (
		v, c, p, b, f, m = dish.ProteinVege, dish.ProteinChicken, dish.ProteinPork, dish.ProteinBeef, dish.ProteinFish, dish.ProteinMixed
		L, M, H          = dish.HeavinessLight, dish.HeavinessMedium, dish.HeavinessHeavy
	)
	rows := []struct {
		id, name  string
		protein   dish.Protein
		heaviness dish.Heaviness
	}{
		{"v1", "Smažený sýr s hranolky", v, H}, {"v2", "Houbové rizoto", v, M},
		{"v3", "Čočka na kyselo", v, M}, {"v4", "Zeleninové kari s rýží", v, L},
		{"v5", "Tvarohové knedlíky", v, M}, {"v6", "Špenátové palačinky", v, L},
		{"c1", "Kuřecí plátek na grilu", c, L}, {"c2", "Pečené kuřecí stehno", c, M},
		{"c3", "Kuřecí nudličky se zeleninou", c, L}, {"c4", "Krůtí prsa s bylinkami", c, L},
		{"c5", "Kuře na paprice", c, M}, {"p1", "Vepřový guláš", p, H},
		{"p2", "Vepřová krkovice", p, H}, {"p3", "Smažený vepřový řízek", p, H},
		{"p4", "Pečený bůček", p, H}, {"p5", "Klobása s hořčicí", p, M},
		{"b1", "Svíčková na smetaně", b, H}, {"b2", "Hovězí guláš", b, H},
		{"b3", "Hovězí steak", b, M}, {"b4", "Roštěná na cibulce", b, M},
		{"b5", "Hovězí líčka na víně", b, H}, {"f1", "Pečený losos", f, L},
		{"f2", "Treska na másle", f, L}, {"f3", "Smažený kapr", f, M},
		{"f4", "Pstruh na grilu", f, L}, {"f5", "Tuňákový salát", f, L},
		{"m1", "Masová směs", m, M}, {"m2", "Bramborák", m, H},
		{"m3", "Plněné papriky", m, H}, {"m4", "Sekaná pečeně", m, H},
	}
	var recipes []recipe.Recipe
	for _, r := range rows {
		cost, price := 56.0, 105.0
		if r.id == "b3" || r.id == "f1" {
			cost, price = 112, 250
		}
		recipes = append(recipes, recipe.Recipe{
			ID: r.id, Name: r.name, Category: "Obědové menu",
			Protein: r.protein, Heaviness: r.heaviness, Season: dish.SeasonAllYear,
			Cost: recipe.Float(cost), Price: recipe.Float(price), SalesCount: 20,
		})
	}
	var soups []recipe.Soup
	for i, name := range []string{"Hrachová polévka", "Kulajda", "Gulášová polévka", "Česnečka", "Zeleninový vývar", "Bramboračka"} {
		soups = append(soups, recipe.Soup{
			ID: "s" + string(rune('1'+i)), Name: name, Category: "Polévky",
			Heaviness: dish.HeavinessMedium, Season: dish.SeasonAllYear, SalesCount: 30,
		})
	}
	cat, err := recipe.NewCatalogFrom(recipes, soups)
	require.NoError(t, err)
	return cat
}

type testEnv struct {
	app       *App
	recipes   *recipe.Repository
	snapshot  *storage.CatalogFile
	publisher *fakePublisher
}

// newTestEnv wires an App over a fresh database. When withCatalog is set the
// snapshot holds the test catalog and the database is left empty.
func newTestEnv(t *testing.T, withCatalog bool) testEnv {
	t.Helper()
	dir := t.TempDir()
	db, err := database.NewDB(filepath.Join(dir, "menu.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	snapshot, err := storage.NewCatalogFile(filepath.Join(dir, "catalog.json"))
	require.NoError(t, err)
	if withCatalog {
		require.NoError(t, snapshot.Save(testCatalog(t)))
	}

	env := testEnv{
		recipes:   recipe.NewRepository(db.SQL),
		snapshot:  snapshot,
		publisher: &fakePublisher{},
	}
	env.app = NewApp(Deps{
		Recipes:   env.recipes,
		Menus:     planner.NewMenuRepository(db.SQL),
		Engine:    planner.NewEngine(planner.NewSearchProposer(planner.WithSeed(1))),
		Snapshot:  snapshot,
		Weather:   offlineWeather{},
		Publisher: env.publisher,
	})
	return env
}

const calculationExport = `<table>
  <tr><th>ID</th><th>Název</th><th>Kategorie</th><th>Náklad porce bez DPH</th><th>Prodej porce s DPH</th><th>Aktivní</th></tr>
  <tr><td>101</td><td>Kuřecí řízek s bramborovou kaší-s</td><td>Obědové menu</td><td>48,456</td><td>169</td><td>X</td></tr>
  <tr><td>102</td><td>Hrachová polévka</td><td>Polévky</td><td>9,5</td><td>39</td><td>X</td></tr>
  <tr><td>104</td><td>Tiramisu</td><td>Dezerty</td><td>30</td><td>95</td><td>X</td></tr>
</table>`

const salesExport = `<table>
  <tr><th>ID</th><th>Počet</th></tr>
  <tr><td>101</td><td>42</td></tr>
</table>`

func TestImportCatalog(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, false)

	_, err := env.app.LoadCatalog(ctx)
	assert.ErrorIs(t, err, ErrNoCatalog)

	c, err := env.app.ImportCatalog(ctx, strings.NewReader(calculationExport), strings.NewReader(salesExport))
	require.NoError(t, err)
	recipes, soups := c.Len()
	assert.Equal(t, 1, recipes)
	assert.Equal(t, 1, soups)
	assert.True(t, env.snapshot.Exists())

	loaded, err := env.app.LoadCatalog(ctx)
	require.NoError(t, err)
	r, ok := loaded.Recipe("101")
	require.True(t, ok)
	assert.Equal(t, "Kuřecí řízek s bramborovou kaší", r.Name)
	assert.Equal(t, dish.ProteinChicken, r.Protein)
	assert.Equal(t, 42, r.SalesCount)

	_, err = env.app.ImportCatalog(ctx, strings.NewReader(`<p>nothing</p>`), nil)
	assert.ErrorIs(t, err, recipe.ErrMissingColumn)
}

func TestLoadCatalogFallsBackToSnapshot(t *testing.T) {
	env := newTestEnv(t, true)

	n, err := env.recipes.Count(context.Background())
	require.NoError(t, err)
	require.Zero(t, n)

	c, err := env.app.LoadCatalog(context.Background())
	require.NoError(t, err)
	recipes, soups := c.Len()
	assert.Equal(t, 30, recipes)
	assert.Equal(t, 6, soups)
}

func TestGenerateSaveAndHistory(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, true)

	res, err := env.app.GenerateMenu(ctx, monday)
	require.NoError(t, err)
	require.Len(t, res.Menu.Days, menu.WorkdaysPerWeek)
	for _, d := range res.Menu.Days {
		// The forecast is unreachable, so every day carries the neutral default.
		require.NotNil(t, d.Weather)
	}

	m := res.Menu
	require.NoError(t, env.app.SaveMenu(ctx, &m))
	require.NotEmpty(t, m.ID)

	recent, err := env.app.History(ctx, 10)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, m.SlotIDs(), recent[0].SlotIDs())

	// The stored week uses 25 of 30 recipes, so the next week cannot be
	// planned without repeating.
	_, err = env.app.GenerateMenu(ctx, monday.AddDays(7))
	assert.ErrorIs(t, err, planner.ErrProposalExhausted)

	require.NoError(t, env.app.DeleteMenu(ctx, m.ID))
	recent, err = env.app.History(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, recent)
}

func savedMenu(t *testing.T, env testEnv) menu.WeeklyMenu {
	t.Helper()
	res, err := env.app.GenerateMenu(context.Background(), monday)
	require.NoError(t, err)
	m := res.Menu
	require.NoError(t, env.app.SaveMenu(context.Background(), &m))
	return m
}

func isVege(d menu.DishRef) bool {
	return d.Protein == dish.ProteinVege
}

func TestSwap(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, true)
	m := savedMenu(t, env)

	t.Run("SameDishIgnoresOwnHistory", func(t *testing.T) {
		got, err := env.app.SwapDish(ctx, m.ID, 0, 0, m.Days[0].Dishes[0].ID)
		require.NoError(t, err)
		assert.Equal(t, m.SlotIDs(), got.SlotIDs())
	})

	t.Run("RepeatedDishRejected", func(t *testing.T) {
		// Move a vegetarian dish of Tuesday onto a vegetarian slot of Monday so
		// only the repetition rule can object.
		slot := slices.IndexFunc(m.Days[0].Dishes, isVege)
		other := slices.IndexFunc(m.Days[1].Dishes, isVege)
		require.True(t, slot >= 0 && other >= 0)

		_, err := env.app.SwapDish(ctx, m.ID, 0, slot, m.Days[1].Dishes[other].ID)
		var v *planner.Violation
		require.ErrorAs(t, err, &v)
		assert.Equal(t, planner.RuleNoRepetition, v.Rule)

		stored, err := env.app.History(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, m.SlotIDs(), stored[0].SlotIDs())
	})

	t.Run("UnknownDish", func(t *testing.T) {
		_, err := env.app.SwapDish(ctx, m.ID, 0, 0, "nope")
		assert.ErrorIs(t, err, ErrUnknownDish)
	})

	t.Run("SlotOutOfRange", func(t *testing.T) {
		_, err := env.app.SwapDish(ctx, m.ID, 7, 0, m.Days[0].Dishes[0].ID)
		assert.ErrorIs(t, err, menu.ErrSlotOutOfRange)
	})

	t.Run("UnusedSoup", func(t *testing.T) {
		used := m.SlotIDs()
		var spare string
		for _, id := range []string{"s1", "s2", "s3", "s4", "s5", "s6"} {
			if !slices.Contains(used, id) {
				spare = id
			}
		}
		require.NotEmpty(t, spare)

		got, err := env.app.SwapSoup(ctx, m.ID, 2, spare)
		require.NoError(t, err)
		assert.Equal(t, spare, got.Days[2].Soup.ID)

		stored, err := env.app.History(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, spare, stored[0].Days[2].Soup.ID)
	})

	t.Run("MissingMenu", func(t *testing.T) {
		_, err := env.app.SwapDish(ctx, "missing", 0, 0, "v1")
		assert.ErrorIs(t, err, planner.ErrMenuNotFound)
	})
}

func TestPublishMenu(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, true)
	m := savedMenu(t, env)

	post, err := env.app.PublishMenu(ctx, m.ID, true)
	require.NoError(t, err)
	assert.Equal(t, "post-1", post.ID)
	assert.Equal(t, menu.Title(m), env.publisher.title)
	assert.True(t, env.publisher.publish)
	assert.Contains(t, env.publisher.html, m.Days[0].Dishes[0].Name)

	noGhost := NewApp(Deps{Menus: planner.NewMenuRepository(nil)})
	_, err = noGhost.PublishMenu(ctx, m.ID, false)
	assert.ErrorIs(t, err, ErrPublishingDisabled)
}
