package planner

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"lunch-menu-planner/internal/dish"
	"lunch-menu-planner/internal/menu"
	"lunch-menu-planner/internal/recipe"
)

var testMonday = menu.NewDate(2025, time.March, 10)

func rec(id, name string, p dish.Protein, h dish.Heaviness) recipe.Recipe {
	return recipe.Recipe{
		ID:         id,
		Name:       name,
		Category:   "Obědové menu",
		Protein:    p,
		Heaviness:  h,
		Season:     dish.SeasonAllYear,
		Cost:       recipe.Float(56),
		Price:      recipe.Float(105),
		SalesCount: 20,
	}
}

// premium marks a recipe as specialty material (margin 150).
func premium(r recipe.Recipe) recipe.Recipe {
	r.Cost, r.Price = recipe.Float(112), recipe.Float(250)
	return r
}

func scenarioRecipes() []recipe.Recipe {
	const (
		v, c, p, b, f, m = dish.ProteinVege, dish.ProteinChicken, dish.ProteinPork, dish.ProteinBeef, dish.ProteinFish, dish.ProteinMixed
		L, M, H          = dish.HeavinessLight, dish.HeavinessMedium, dish.HeavinessHeavy
	)
	return []recipe.Recipe{
		rec("v1", "Smažený sýr s hranolky", v, H),
		rec("v2", "Houbové rizoto", v, M),
		rec("v3", "Čočka na kyselo", v, M),
		rec("v4", "Zeleninové kari s rýží", v, L),
		rec("v5", "Tvarohové knedlíky", v, M),
		rec("v6", "Špenátové palačinky", v, L),
		rec("c1", "Kuřecí plátek na grilu", c, L),
		rec("c2", "Pečené kuřecí stehno", c, M),
		rec("c3", "Kuřecí nudličky se zeleninou", c, L),
		rec("c4", "Krůtí prsa s bylinkami", c, L),
		rec("c5", "Kuře na paprice", c, M),
		rec("p1", "Vepřový guláš", p, H),
		rec("p2", "Vepřová krkovice", p, H),
		rec("p3", "Smažený vepřový řízek", p, H),
		rec("p4", "Pečený bůček", p, H),
		rec("p5", "Klobása s hořčicí", p, M),
		rec("b1", "Svíčková na smetaně", b, H),
		rec("b2", "Hovězí guláš", b, H),
		premium(rec("b3", "Hovězí steak", b, M)),
		rec("b4", "Roštěná na cibulce", b, M),
		premium(rec("b5", "Hovězí líčka na víně", b, H)),
		premium(rec("f1", "Pečený losos", f, L)),
		rec("f2", "Treska na másle", f, L),
		rec("f3", "Smažený kapr", f, M),
		rec("f4", "Pstruh na grilu", f, L),
		rec("f5", "Tuňákový salát", f, L),
		rec("m1", "Masová směs", m, M),
		rec("m2", "Bramborák", m, H),
		rec("m3", "Plněné papriky", m, H),
		rec("m4", "Sekaná pečeně", m, H),
	}
}

func scenarioSoups() []recipe.Soup {
	soup := func(id, name string, h dish.Heaviness) recipe.Soup {
		return recipe.Soup{ID: id, Name: name, Category: "Polévky", Heaviness: h, Season: dish.SeasonAllYear, SalesCount: 30}
	}
	return []recipe.Soup{
		soup("s1", "Hrachová polévka", dish.HeavinessMedium),
		soup("s2", "Kulajda", dish.HeavinessMedium),
		soup("s3", "Gulášová polévka", dish.HeavinessHeavy),
		soup("s4", "Česnečka", dish.HeavinessLight),
		soup("s5", "Zeleninový vývar", dish.HeavinessLight),
		soup("s6", "Bramboračka", dish.HeavinessMedium),
	}
}

// scenarioCatalog has 30 recipes over all six proteins (6 vegetarian) and
// six soups. Only b3, b5 and f1 qualify as specialty.
func scenarioCatalog(t *testing.T, extra ...recipe.Recipe) *recipe.Catalog {
	t.Helper()
	c, err := recipe.NewCatalogFrom(append(scenarioRecipes(), extra...), scenarioSoups())
	require.NoError(t, err)
	return c
}

// validLayout is a hand-made menu over scenarioCatalog that passes every
// hard constraint.
var validLayout = [menu.WorkdaysPerWeek][menu.DishesPerDay]string{
	{"v1", "c1", "p1", "b1", "f2"},
	{"v2", "c2", "p2", "b2", "f3"},
	{"v3", "c3", "p3", "b4", "f4"},
	{"v4", "c4", "p4", "m1", "f5"},
	{"v5", "c5", "p5", "m2", "v6"},
}

func menuFrom(layout [menu.WorkdaysPerWeek][menu.DishesPerDay]string, specialty string) menu.WeeklyMenu {
	m := menu.New(testMonday)
	for i := range m.Days {
		m.Days[i].Soup = menu.SoupRef{ID: scenarioSoups()[i].ID}
		for _, id := range layout[i] {
			m.Days[i].Dishes = append(m.Days[i].Dishes, menu.DishRef{ID: id})
		}
	}
	m.Specialty = menu.Specialty{ID: specialty}
	return m
}

func validMenu() menu.WeeklyMenu {
	return menuFrom(validLayout, "b3")
}

func menuDishIDs(m menu.WeeklyMenu) []string {
	var ids []string
	for _, d := range m.Days {
		for _, dr := range d.Dishes {
			ids = append(ids, dr.ID)
		}
	}
	return ids
}
