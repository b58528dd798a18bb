package recipe

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"lunch-menu-planner/internal/dish"
)

func TestMargin(t *testing.T) {
	t.Run("BothKnown", func(t *testing.T) {
		assert.InDelta(t, 155.0-44.8/1.12, Margin(Float(44.8), Float(155)), 1e-9)
	})

	t.Run("MissingCost", func(t *testing.T) {
		assert.Zero(t, Margin(nil, Float(155)))
	})

	t.Run("MissingPrice", func(t *testing.T) {
		assert.Zero(t, Margin(Float(40), nil))
	})
}

func TestSpecialtyEligible(t *testing.T) {
	high := Recipe{ID: "1", Name: "Hovězí steak", Cost: Float(112), Price: Float(290)}
	low := Recipe{ID: "2", Name: "Kuřecí plátek", Cost: Float(112), Price: Float(175)}

	assert.True(t, high.SpecialtyEligible())
	assert.InDelta(t, 75.0, low.Margin(), 1e-9)
	assert.False(t, low.SpecialtyEligible())
	assert.False(t, Recipe{ID: "3", Name: "Bez ceny"}.SpecialtyEligible())
}

func TestClassify(t *testing.T) {
	t.Run("Recipe", func(t *testing.T) {
		r, s := Classify(RawRecord{ID: "10", Name: "Vepřový guláš s knedlíkem", Category: "Obědové menu", SalesCount: 12})
		assert.Nil(t, s)
		if assert.NotNil(t, r) {
			assert.Equal(t, dish.ProteinPork, r.Protein)
			assert.Equal(t, dish.HeavinessHeavy, r.Heaviness)
			assert.Equal(t, dish.SeasonWinter, r.Season)
			assert.Equal(t, 12, r.SalesCount)
		}
	})

	t.Run("SoupByCategory", func(t *testing.T) {
		r, s := Classify(RawRecord{ID: "20", Name: "Česnečka", Category: "Polévky"})
		assert.Nil(t, r)
		if assert.NotNil(t, s) {
			assert.Equal(t, dish.HeavinessLight, s.Heaviness)
		}
	})

	t.Run("SoupByFlag", func(t *testing.T) {
		_, s := Classify(RawRecord{ID: "21", Name: "Kulajda", Soup: true})
		assert.NotNil(t, s)
	})
}
