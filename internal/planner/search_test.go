package planner

import (
	"context"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lunch-menu-planner/internal/dish"
	"lunch-menu-planner/internal/history"
	"lunch-menu-planner/internal/menu"
	"lunch-menu-planner/internal/recipe"
	"lunch-menu-planner/internal/weather"
)

func planWithSearch(t *testing.T, c *recipe.Catalog, h *history.Tracker, seed uint64) (*Result, error) {
	t.Helper()
	engine := NewEngine(NewSearchProposer(WithSeed(seed)))
	return engine.Plan(context.Background(), Request{
		Catalog:   c,
		History:   h,
		Weather:   weather.Default(testMonday.Time),
		WeekStart: testMonday,
	})
}

func TestSearchProposerBuildsValidWeek(t *testing.T) {
	c := scenarioCatalog(t)

	for _, seed := range []uint64{1, 7, 42, 2025} {
		res, err := planWithSearch(t, c, history.Empty(), seed)
		require.NoError(t, err, "seed %d", seed)

		m := res.Menu
		require.Len(t, m.Days, menu.WorkdaysPerWeek)
		for i, d := range m.Days {
			require.Len(t, d.Dishes, menu.DishesPerDay, "day %d", i)

			counts := make(map[dish.Protein]int)
			for _, dr := range d.Dishes {
				counts[dr.Protein]++
			}
			assert.GreaterOrEqual(t, counts[dish.ProteinVege], 1, "day %d", i)
			for p, n := range counts {
				if p != dish.ProteinMixed {
					assert.LessOrEqual(t, n, 2, "day %d protein %s", i, p)
				}
			}
		}

		sp, ok := c.Recipe(m.Specialty.ID)
		require.True(t, ok)
		assert.True(t, sp.SpecialtyEligible())
		assert.NotContains(t, menuDishIDs(m), sp.ID)

		// The standalone validator agrees with the engine.
		assert.Nil(t, Validate(m, c, history.Empty()), "seed %d", seed)
	}
}

func TestSearchProposerIsDeterministicForSeed(t *testing.T) {
	c := scenarioCatalog(t)

	a, err := planWithSearch(t, c, nil, 99)
	require.NoError(t, err)
	b, err := planWithSearch(t, c, nil, 99)
	require.NoError(t, err)

	assert.Equal(t, a.Menu.SlotIDs(), b.Menu.SlotIDs())
	assert.Equal(t, a.Menu.Specialty.ID, b.Menu.Specialty.ID)
}

func TestSearchProposerRespectsHistory(t *testing.T) {
	c := scenarioCatalog(t)

	prev := menu.New(testMonday.AddDays(-7))
	prev.Days[0].Soup = menu.SoupRef{ID: "s1"}
	prev.Days[0].Dishes = []menu.DishRef{{ID: "c1"}, {ID: "f2"}}
	prev.Specialty = menu.Specialty{ID: "b3", Name: "Hovězí steak"}
	h := history.Build([]menu.WeeklyMenu{prev})

	res, err := planWithSearch(t, c, h, 5)
	require.NoError(t, err)

	used := res.Menu.SlotIDs()
	for _, id := range []string{"s1", "c1", "f2"} {
		assert.NotContains(t, used, id)
	}
	assert.NotEqual(t, "b3", res.Menu.Specialty.ID)
	assert.Nil(t, Validate(res.Menu, c, h))
}

func TestSearchProposerInfeasibleHistory(t *testing.T) {
	c := scenarioCatalog(t)

	// Exclude 20 of the 30 recipes: 10 remain for 25 slots.
	prev := menu.New(testMonday.AddDays(-7))
	excluded := []string{
		"v1", "v2", "v3", "c1", "c2", "c3", "c4", "p1", "p2", "p3",
		"p4", "b1", "b2", "b4", "f2", "f3", "f4", "m1", "m2", "m3",
	}
	for i, id := range excluded {
		prev.Days[i%5].Dishes = append(prev.Days[i%5].Dishes, menu.DishRef{ID: id})
	}
	h := history.Build([]menu.WeeklyMenu{prev})

	res, err := planWithSearch(t, c, h, 3)
	assert.Nil(t, res)
	require.ErrorIs(t, err, ErrProposalExhausted)

	var ex *ExhaustedError
	require.ErrorAs(t, err, &ex)
	require.NotNil(t, ex.Last)
	assert.NotEmpty(t, ex.Last.Rule)
}

func TestSearchProposerPrefersWeatherFit(t *testing.T) {
	c := scenarioCatalog(t)
	hot := weather.Default(testMonday.Time)
	for i := range hot {
		hot[i].TempMax = 30
	}

	res, err := NewEngine(NewSearchProposer(WithSeed(11))).Plan(context.Background(), Request{
		Catalog:   c,
		Weather:   hot,
		WeekStart: testMonday,
	})
	require.NoError(t, err)

	light := 0
	for _, d := range res.Menu.Days {
		for _, dr := range d.Dishes {
			if dr.Heaviness == dish.HeavinessLight {
				light++
			}
		}
	}
	// Nine light recipes exist; a hot week should use most of them.
	assert.GreaterOrEqual(t, light, 5)
}

func TestSearchProposerDropsAvoidedIDs(t *testing.T) {
	c := scenarioCatalog(t)
	avoid := map[string]struct{}{"m4": {}, "b3": {}, "s2": {}}

	for _, seed := range []uint64{1, 8, 77} {
		p, err := NewSearchProposer(WithSeed(seed)).Propose(context.Background(), ProposalRequest{
			Catalog:   c,
			Weather:   weather.Default(testMonday.Time),
			WeekStart: testMonday,
			Avoid:     avoid,
		})
		require.NoError(t, err)

		used := p.Menu.SlotIDs()
		for id := range avoid {
			assert.NotContains(t, used, id, "seed %d", seed)
		}
		assert.NotEqual(t, "b3", p.Menu.Specialty.ID)
		assert.Nil(t, Validate(p.Menu, c, nil), "seed %d", seed)
	}
}

func TestSearchProposerKeepsAvoidedIDsWhenPoolIsShort(t *testing.T) {
	c := scenarioCatalog(t)
	// Only four vegetarian recipes would remain for five days.
	avoid := map[string]struct{}{"v1": {}, "v2": {}}

	p, err := NewSearchProposer(WithSeed(4)).Propose(context.Background(), ProposalRequest{
		Catalog:   c,
		Weather:   weather.Default(testMonday.Time),
		WeekStart: testMonday,
		Avoid:     avoid,
	})
	require.NoError(t, err)

	used := p.Menu.SlotIDs()
	assert.True(t, slices.Contains(used, "v1") || slices.Contains(used, "v2"))
	assert.Nil(t, Validate(p.Menu, c, nil))
}

func TestSearchProposerNeedsCatalog(t *testing.T) {
	_, err := NewSearchProposer().Propose(context.Background(), ProposalRequest{WeekStart: testMonday})
	assert.Error(t, err)
}
