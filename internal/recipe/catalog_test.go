package recipe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lunch-menu-planner/internal/dish"
)

func sampleRecords() []RawRecord {
	return []RawRecord{
		{ID: "r1", Name: "Gnocchi with spinach", Category: "Obědové menu", SalesCount: 40},
		{ID: "r2", Name: "Potato dumplings with bacon", Category: "Obědové menu", SalesCount: 5},
		{ID: "r3", Name: "Hovězí steak s pepřovou omáčkou", Category: "Obědové menu", Cost: Float(100), Price: Float(250)},
		{ID: "s1", Name: "Hrachová polévka", Category: "Polévky", SalesCount: 90},
		{ID: "s2", Name: "Kulajda", Soup: true},
	}
}

func TestNewCatalog(t *testing.T) {
	c, err := NewCatalog(sampleRecords())
	require.NoError(t, err)

	recipes, soups := c.Len()
	assert.Equal(t, 3, recipes)
	assert.Equal(t, 2, soups)

	r, ok := c.Recipe("r2")
	require.True(t, ok)
	assert.Equal(t, dish.ProteinPork, r.Protein)

	_, ok = c.Recipe("s1")
	assert.False(t, ok)

	s, ok := c.Soup("s1")
	require.True(t, ok)
	assert.Equal(t, dish.HeavinessLight, s.Heaviness)

	assert.True(t, c.Contains("s2"))
	assert.False(t, c.Contains("nope"))

	assert.Equal(t, "noky", c.Base("r1"))
	assert.Equal(t, "noky", c.Base("r2"))
	assert.Empty(t, c.Base("r3"))

	assert.Equal(t, 90, c.MaxSales())
	assert.True(t, c.HasSales())
	assert.Equal(t, 40, c.SalesCount("r1"))
	assert.Equal(t, 90, c.SalesCount("s1"))
	assert.Zero(t, c.SalesCount("nope"))

	r3, _ := c.Recipe("r3")
	assert.True(t, r3.SpecialtyEligible())
}

func TestNewCatalogRejectsBadRecords(t *testing.T) {
	cases := map[string][]RawRecord{
		"EmptyID":       {{ID: " ", Name: "Řízek"}},
		"EmptyName":     {{ID: "1", Name: ""}},
		"DuplicateID":   {{ID: "1", Name: "Řízek"}, {ID: "1", Name: "Guláš"}},
		"SoupCollides":  {{ID: "1", Name: "Řízek"}, {ID: "1", Name: "Česnečka", Soup: true}},
		"NegativeSales": {{ID: "1", Name: "Řízek", SalesCount: -3}},
	}

	for name, records := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := NewCatalog(records)
			assert.ErrorIs(t, err, ErrInvalidRecord)
		})
	}
}

func TestNewCatalogFromRejectsNegativeSales(t *testing.T) {
	_, err := NewCatalogFrom([]Recipe{{ID: "1", Name: "Řízek", SalesCount: -1}}, nil)
	assert.ErrorIs(t, err, ErrInvalidRecord)

	_, err = NewCatalogFrom(nil, []Soup{{ID: "2", Name: "Česnečka", SalesCount: -5}})
	assert.ErrorIs(t, err, ErrInvalidRecord)

	c, err := NewCatalogFrom([]Recipe{{ID: "1", Name: "Řízek"}}, []Soup{{ID: "2", Name: "Česnečka"}})
	require.NoError(t, err)
	assert.False(t, c.HasSales())
}

func TestCatalogIsImmutable(t *testing.T) {
	c, err := NewCatalog(sampleRecords())
	require.NoError(t, err)

	recipes := c.Recipes()
	recipes[0].Name = "changed"

	r, _ := c.Recipe("r1")
	assert.Equal(t, "Gnocchi with spinach", r.Name)
}

func TestNewCatalogFromKeepsStoredAttributes(t *testing.T) {
	c, err := NewCatalogFrom(
		[]Recipe{
			{ID: "1", Name: "Bramborák", Protein: dish.ProteinVege, Heaviness: dish.HeavinessHeavy},
			{ID: "2", Name: "Kuřecí plátek"},
		},
		[]Soup{{ID: "3", Name: "Zelňačka"}},
	)
	require.NoError(t, err)

	r1, _ := c.Recipe("1")
	assert.Equal(t, dish.ProteinVege, r1.Protein)
	assert.Equal(t, dish.HeavinessHeavy, r1.Heaviness)
	assert.Equal(t, dish.SeasonAllYear, r1.Season)

	r2, _ := c.Recipe("2")
	assert.Equal(t, dish.ProteinChicken, r2.Protein)
	assert.Equal(t, dish.HeavinessMedium, r2.Heaviness)

	s, _ := c.Soup("3")
	assert.Equal(t, dish.HeavinessLight, s.Heaviness)
}

func TestCatalogRecordsRoundTrip(t *testing.T) {
	c, err := NewCatalog(sampleRecords())
	require.NoError(t, err)

	again, err := NewCatalog(c.Records())
	require.NoError(t, err)
	assert.Equal(t, c.Recipes(), again.Recipes())
	assert.Equal(t, c.Soups(), again.Soups())
}
