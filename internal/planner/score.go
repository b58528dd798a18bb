package planner

import (
	"math"

	"lunch-menu-planner/internal/dish"
	"lunch-menu-planner/internal/menu"
	"lunch-menu-planner/internal/recipe"
	"lunch-menu-planner/internal/weather"
)

// Soft score weights.
const (
	heavinessWeight   = 1.0
	salesWeight       = 0.5
	extraMixedPenalty = 0.3
	baseRepeatPenalty = 0.2
	lowSalesPenalty   = 0.1
	lowSalesThreshold = 10
)

// Score rates a menu that already passes the hard constraints; higher is
// better. Each day earns
//
//	1.0*heavinessFit + 0.5*salesScore - 0.3*extraMixed
//
// and the week loses 0.2 per repeated dish base. heavinessFit is
// 1 - ½Σ|realized-target| over the three heaviness shares, with the target
// taken from the day's forecast.
func Score(m menu.WeeklyMenu, c *recipe.Catalog) float64 {
	total := 0.0
	bases := make(map[string]int)
	for _, d := range m.Days {
		target := weather.TargetWeights(weather.DefaultTempMax)
		if d.Weather != nil {
			target = weather.TargetWeights(d.Weather.TempMax)
		}

		total += heavinessWeight*heavinessFit(c, d, target) +
			salesWeight*salesScore(c, d) -
			extraMixedPenalty*float64(extraMixed(c, d))

		for _, dr := range d.Dishes {
			if b := baseOf(c, dr); b != "" {
				bases[b]++
			}
		}
	}
	for _, n := range bases {
		if n > 1 {
			total -= baseRepeatPenalty * float64(n-1)
		}
	}
	return total
}

func heavinessFit(c *recipe.Catalog, d menu.DayPlan, target weather.Weights) float64 {
	if len(d.Dishes) == 0 {
		return 0
	}
	counts := make(map[dish.Heaviness]float64)
	for _, dr := range d.Dishes {
		counts[heavinessOf(c, dr)]++
	}
	n := float64(len(d.Dishes))
	diff := 0.0
	for _, h := range []dish.Heaviness{dish.HeavinessLight, dish.HeavinessMedium, dish.HeavinessHeavy} {
		diff += math.Abs(counts[h]/n - target.For(h))
	}
	return 1 - diff/2
}

func salesScore(c *recipe.Catalog, d menu.DayPlan) float64 {
	if !c.HasSales() {
		return 0
	}
	norm := math.Log1p(float64(c.MaxSales()))
	sum, n := 0.0, 0
	add := func(id string) {
		sum += math.Log1p(float64(c.SalesCount(id))) / norm
		n++
	}

	if d.Soup.ID != "" {
		add(d.Soup.ID)
	}
	penalty := 0.0
	for _, dr := range d.Dishes {
		add(dr.ID)
		if c.SalesCount(dr.ID) < lowSalesThreshold {
			penalty += lowSalesPenalty
		}
	}
	if n == 0 {
		return 0
	}
	return sum/float64(n) - penalty
}

func extraMixed(c *recipe.Catalog, d menu.DayPlan) int {
	mixed := 0
	for _, dr := range d.Dishes {
		if proteinOf(c, dr) == dish.ProteinMixed {
			mixed++
		}
	}
	return max(0, mixed-1)
}
