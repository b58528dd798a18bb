package planner

import (
	"fmt"
	"strings"

	"lunch-menu-planner/internal/dish"
	"lunch-menu-planner/internal/history"
	"lunch-menu-planner/internal/menu"
	"lunch-menu-planner/internal/recipe"
	"lunch-menu-planner/internal/textnorm"
)

type check func(m menu.WeeklyMenu, c *recipe.Catalog, h *history.Tracker) []*Violation

// checks run in the order of Rules.
var checks = []check{
	checkCoverage,
	checkVegetarianFloor,
	checkProteinDiversity,
	checkNoRepetition,
	checkSameDayBase,
	checkHistory,
	checkSpecialty,
}

// Validate returns the first broken hard constraint of m, or nil when the
// menu is acceptable. A nil history excludes nothing; a nil catalog resolves
// no slot and fails coverage.
func Validate(m menu.WeeklyMenu, c *recipe.Catalog, h *history.Tracker) *Violation {
	if c == nil {
		return noCatalog()
	}
	for _, chk := range checks {
		if vs := chk(m, c, h); len(vs) > 0 {
			return vs[0]
		}
	}
	return nil
}

// ValidateAll returns every broken hard constraint of m.
func ValidateAll(m menu.WeeklyMenu, c *recipe.Catalog, h *history.Tracker) []*Violation {
	if c == nil {
		return []*Violation{noCatalog()}
	}
	var out []*Violation
	for _, chk := range checks {
		out = append(out, chk(m, c, h)...)
	}
	return out
}

func noCatalog() *Violation {
	return &Violation{Rule: RuleCoverage, Day: WholeWeek, Detail: "no catalog to resolve dishes against"}
}

func isCustom(src menu.Source) bool {
	return src == menu.SourceCustom
}

// refID is the identity of a slot: its id, or its folded name for custom
// entries typed without one.
func refID(id, name string) string {
	if id != "" {
		return id
	}
	return "custom:" + textnorm.Fold(strings.TrimSpace(name))
}

func dishRecipe(c *recipe.Catalog, d menu.DishRef) (recipe.Recipe, bool) {
	if isCustom(d.Source) {
		return recipe.Recipe{}, false
	}
	return c.Recipe(d.ID)
}

func proteinOf(c *recipe.Catalog, d menu.DishRef) dish.Protein {
	if r, ok := dishRecipe(c, d); ok {
		return r.Protein
	}
	if d.Protein.Valid() {
		return d.Protein
	}
	return dish.InferProtein(d.Name)
}

func heavinessOf(c *recipe.Catalog, d menu.DishRef) dish.Heaviness {
	if r, ok := dishRecipe(c, d); ok {
		return r.Heaviness
	}
	if d.Heaviness.Valid() {
		return d.Heaviness
	}
	return dish.InferHeaviness(d.Name, false)
}

func nameOf(c *recipe.Catalog, d menu.DishRef) string {
	if r, ok := dishRecipe(c, d); ok {
		return r.Name
	}
	return d.Name
}

func baseOf(c *recipe.Catalog, d menu.DishRef) string {
	if _, ok := dishRecipe(c, d); ok {
		return c.Base(d.ID)
	}
	return dish.Base(d.Name)
}

func checkCoverage(m menu.WeeklyMenu, c *recipe.Catalog, _ *history.Tracker) []*Violation {
	var out []*Violation
	add := func(day int, detail string, ids ...string) {
		out = append(out, &Violation{Rule: RuleCoverage, Day: day, DishIDs: ids, Detail: detail})
	}

	if len(m.Days) != menu.WorkdaysPerWeek {
		add(WholeWeek, fmt.Sprintf("expected %d days, got %d", menu.WorkdaysPerWeek, len(m.Days)))
	}
	if m.WeekStart.IsZero() {
		add(WholeWeek, "week start is missing")
	} else if want := menu.WeekEnd(m.WeekStart); !m.WeekEnd.Equal(want.Time) {
		add(WholeWeek, fmt.Sprintf("week ends %s, expected %s", m.WeekEnd, want))
	}

	for i, d := range m.Days {
		if want := m.WeekStart.AddDays(i); !d.Date.Equal(want.Time) {
			add(i, fmt.Sprintf("dated %s, expected %s", d.Date, want))
		}

		switch {
		case d.Soup.ID == "" && d.Soup.Name == "":
			add(i, "soup is missing")
		case isCustom(d.Soup.Source):
			if strings.TrimSpace(d.Soup.Name) == "" {
				add(i, "custom soup has no name")
			}
		default:
			if _, ok := c.Soup(d.Soup.ID); !ok {
				add(i, fmt.Sprintf("unknown soup %q", d.Soup.ID), d.Soup.ID)
			}
		}

		if len(d.Dishes) != menu.DishesPerDay {
			add(i, fmt.Sprintf("expected %d dishes, got %d", menu.DishesPerDay, len(d.Dishes)))
		}
		for _, dr := range d.Dishes {
			if isCustom(dr.Source) {
				if strings.TrimSpace(dr.Name) == "" {
					add(i, "custom dish has no name")
				}
				continue
			}
			if _, ok := c.Recipe(dr.ID); !ok {
				add(i, fmt.Sprintf("unknown dish %q", dr.ID), dr.ID)
			}
		}
	}

	if m.Specialty.ID == "" && strings.TrimSpace(m.Specialty.Name) == "" {
		add(WholeWeek, "specialty is missing")
	}
	return out
}

func checkVegetarianFloor(m menu.WeeklyMenu, c *recipe.Catalog, _ *history.Tracker) []*Violation {
	var out []*Violation
	for i, d := range m.Days {
		vege := 0
		for _, dr := range d.Dishes {
			if proteinOf(c, dr) == dish.ProteinVege {
				vege++
			}
		}
		if vege == 0 {
			out = append(out, &Violation{Rule: RuleVegetarianFloor, Day: i, Detail: "no vegetarian dish"})
		}
	}
	return out
}

// maxPerProtein caps every protein but mixed within a day.
const maxPerProtein = 2

func checkProteinDiversity(m menu.WeeklyMenu, c *recipe.Catalog, _ *history.Tracker) []*Violation {
	var out []*Violation
	for i, d := range m.Days {
		counts := make(map[dish.Protein]int)
		extra := make(map[dish.Protein][]string)
		for _, dr := range d.Dishes {
			p := proteinOf(c, dr)
			counts[p]++
			if p != dish.ProteinMixed && counts[p] > maxPerProtein {
				extra[p] = append(extra[p], refID(dr.ID, dr.Name))
			}
		}
		for _, p := range dish.Proteins {
			if ids := extra[p]; len(ids) > 0 {
				out = append(out, &Violation{
					Rule:    RuleProteinDiversity,
					Day:     i,
					DishIDs: ids,
					Detail:  fmt.Sprintf("%s served %d times", p, counts[p]),
				})
			}
		}
	}
	return out
}

func checkNoRepetition(m menu.WeeklyMenu, _ *recipe.Catalog, _ *history.Tracker) []*Violation {
	seen := make(map[string]int)
	var repeated []string
	note := func(id, name string) {
		if id == "" && strings.TrimSpace(name) == "" {
			return
		}
		key := refID(id, name)
		seen[key]++
		if seen[key] == 2 {
			repeated = append(repeated, key)
		}
	}

	for _, d := range m.Days {
		note(d.Soup.ID, d.Soup.Name)
		for _, dr := range d.Dishes {
			note(dr.ID, dr.Name)
		}
	}
	note(m.Specialty.ID, m.Specialty.Name)

	if len(repeated) == 0 {
		return nil
	}
	return []*Violation{{
		Rule:    RuleNoRepetition,
		Day:     WholeWeek,
		DishIDs: repeated,
		Detail:  fmt.Sprintf("%d dishes appear more than once", len(repeated)),
	}}
}

func checkSameDayBase(m menu.WeeklyMenu, c *recipe.Catalog, _ *history.Tracker) []*Violation {
	var out []*Violation
	for i, d := range m.Days {
		for a := 0; a < len(d.Dishes); a++ {
			for b := a + 1; b < len(d.Dishes); b++ {
				da, db := d.Dishes[a], d.Dishes[b]
				if refID(da.ID, da.Name) == refID(db.ID, db.Name) {
					continue // reported as a repetition
				}
				nameA, nameB := nameOf(c, da), nameOf(c, db)
				var detail string
				if base := baseOf(c, da); base != "" && base == baseOf(c, db) {
					detail = fmt.Sprintf("%q and %q share base %q", nameA, nameB, base)
				} else if dish.SimilarNames(nameA, nameB) {
					detail = fmt.Sprintf("%q and %q are variants of one dish", nameA, nameB)
				} else {
					continue
				}
				out = append(out, &Violation{
					Rule:    RuleSameDayBase,
					Day:     i,
					DishIDs: []string{refID(db.ID, db.Name)},
					Detail:  detail,
				})
			}
		}
	}
	return out
}

func checkHistory(m menu.WeeklyMenu, c *recipe.Catalog, h *history.Tracker) []*Violation {
	var out []*Violation
	var ids []string
	for _, d := range m.Days {
		if d.Soup.ID != "" && h.IsDishExcluded(d.Soup.ID) {
			ids = append(ids, d.Soup.ID)
		}
		for _, dr := range d.Dishes {
			if dr.ID != "" && h.IsDishExcluded(dr.ID) {
				ids = append(ids, dr.ID)
			}
		}
	}
	if len(ids) > 0 {
		out = append(out, &Violation{
			Rule:    RuleHistoryExclusion,
			Day:     WholeWeek,
			DishIDs: ids,
			Detail:  fmt.Sprintf("%d dishes were served in recent weeks", len(ids)),
		})
	}

	name := m.Specialty.Name
	if r, ok := c.Recipe(m.Specialty.ID); ok && !isCustom(m.Specialty.Source) {
		name = r.Name
	}
	if name != "" && h.IsSpecialtyExcluded(name) {
		out = append(out, &Violation{
			Rule:    RuleHistoryExclusion,
			Day:     WholeWeek,
			DishIDs: []string{refID(m.Specialty.ID, name)},
			Detail:  fmt.Sprintf("specialty %q was featured recently", name),
		})
	}
	return out
}

func checkSpecialty(m menu.WeeklyMenu, c *recipe.Catalog, _ *history.Tracker) []*Violation {
	sp := m.Specialty
	if sp.ID == "" && strings.TrimSpace(sp.Name) == "" {
		return nil
	}
	fail := func(detail string) []*Violation {
		return []*Violation{{
			Rule:    RuleSpecialtyEligibility,
			Day:     WholeWeek,
			DishIDs: []string{refID(sp.ID, sp.Name)},
			Detail:  detail,
		}}
	}

	if isCustom(sp.Source) {
		return fail("a custom dish cannot be the specialty")
	}
	r, ok := c.Recipe(sp.ID)
	if !ok {
		return fail(fmt.Sprintf("specialty %q is not a catalog recipe", sp.ID))
	}
	if !r.SpecialtyEligible() {
		return fail(fmt.Sprintf("margin %.2f does not exceed %.0f", r.Margin(), recipe.SpecialtyMinMargin))
	}

	key := textnorm.Fold(strings.TrimSpace(r.Name))
	for _, d := range m.Days {
		for _, dr := range d.Dishes {
			if dr.ID == sp.ID || textnorm.Fold(strings.TrimSpace(nameOf(c, dr))) == key {
				return fail(fmt.Sprintf("specialty %q is also a regular dish", r.Name))
			}
		}
	}
	return nil
}
