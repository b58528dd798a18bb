package recipe

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"lunch-menu-planner/internal/dish"
)

// ErrInvalidRecord is returned when catalog input is missing an id or name,
// or repeats an id.
var ErrInvalidRecord = errors.New("invalid catalog record")

// Catalog is the immutable set of recipes and soups a planning run draws
// from. It is safe for concurrent reads.
type Catalog struct {
	recipes  []Recipe
	soups    []Soup
	recipeAt map[string]int
	soupAt   map[string]int
	bases    map[string]string
	maxSales int
}

// NewCatalog classifies raw records and indexes them.
func NewCatalog(records []RawRecord) (*Catalog, error) {
	var recipes []Recipe
	var soups []Soup
	for i, rec := range records {
		if err := checkRecord(i, rec.ID, rec.Name, rec.SalesCount); err != nil {
			return nil, err
		}
		r, s := Classify(rec)
		if s != nil {
			soups = append(soups, *s)
			continue
		}
		recipes = append(recipes, *r)
	}
	return NewCatalogFrom(recipes, soups)
}

// NewCatalogFrom indexes already classified dishes, e.g. a loaded snapshot.
// Stored attributes are kept as they are; empty ones are filled in from the
// name.
func NewCatalogFrom(recipes []Recipe, soups []Soup) (*Catalog, error) {
	c := &Catalog{
		recipes:  make([]Recipe, 0, len(recipes)),
		soups:    make([]Soup, 0, len(soups)),
		recipeAt: make(map[string]int, len(recipes)),
		soupAt:   make(map[string]int, len(soups)),
		bases:    make(map[string]string, len(recipes)+len(soups)),
	}

	seen := make(map[string]struct{}, len(recipes)+len(soups))
	claim := func(i int, id, name string, sales int) error {
		if err := checkRecord(i, id, name, sales); err != nil {
			return err
		}
		if _, dup := seen[id]; dup {
			return fmt.Errorf("%w: duplicate id %q", ErrInvalidRecord, id)
		}
		seen[id] = struct{}{}
		return nil
	}

	for i, r := range recipes {
		if err := claim(i, r.ID, r.Name, r.SalesCount); err != nil {
			return nil, err
		}
		attrs := dish.Classify(r.Name, r.Category, false)
		if !r.Protein.Valid() {
			r.Protein = attrs.Protein
		}
		if !r.Heaviness.Valid() {
			r.Heaviness = attrs.Heaviness
		}
		if r.Season == "" {
			r.Season = attrs.Season
		}
		c.recipeAt[r.ID] = len(c.recipes)
		c.recipes = append(c.recipes, r)
		c.bases[r.ID] = attrs.Base
		c.maxSales = max(c.maxSales, r.SalesCount)
	}
	for i, s := range soups {
		if err := claim(len(recipes)+i, s.ID, s.Name, s.SalesCount); err != nil {
			return nil, err
		}
		attrs := dish.Classify(s.Name, s.Category, true)
		if !s.Heaviness.Valid() {
			s.Heaviness = attrs.Heaviness
		}
		if s.Season == "" {
			s.Season = attrs.Season
		}
		c.soupAt[s.ID] = len(c.soups)
		c.soups = append(c.soups, s)
		c.bases[s.ID] = attrs.Base
		c.maxSales = max(c.maxSales, s.SalesCount)
	}
	return c, nil
}

func checkRecord(i int, id, name string, sales int) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("%w: record %d has an empty id", ErrInvalidRecord, i)
	}
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: record %q has an empty name", ErrInvalidRecord, id)
	}
	if sales < 0 {
		return fmt.Errorf("%w: record %q has a negative sales count %d", ErrInvalidRecord, id, sales)
	}
	return nil
}

// Recipes returns a copy of all recipes in input order.
func (c *Catalog) Recipes() []Recipe {
	return slices.Clone(c.recipes)
}

// Soups returns a copy of all soups in input order.
func (c *Catalog) Soups() []Soup {
	return slices.Clone(c.soups)
}

// Recipe looks up a recipe by id.
func (c *Catalog) Recipe(id string) (Recipe, bool) {
	i, ok := c.recipeAt[id]
	if !ok {
		return Recipe{}, false
	}
	return c.recipes[i], true
}

// Soup looks up a soup by id.
func (c *Catalog) Soup(id string) (Soup, bool) {
	i, ok := c.soupAt[id]
	if !ok {
		return Soup{}, false
	}
	return c.soups[i], true
}

// Contains reports whether id names any catalog dish.
func (c *Catalog) Contains(id string) bool {
	_, ok := c.bases[id]
	return ok
}

// Base returns the dish base of a catalog dish, "" when it has none or the
// id is unknown.
func (c *Catalog) Base(id string) string {
	return c.bases[id]
}

// SalesCount returns the sold portions of any catalog dish.
func (c *Catalog) SalesCount(id string) int {
	if r, ok := c.Recipe(id); ok {
		return r.SalesCount
	}
	if s, ok := c.Soup(id); ok {
		return s.SalesCount
	}
	return 0
}

// MaxSales is the highest sales count in the catalog.
func (c *Catalog) MaxSales() int {
	return c.maxSales
}

// HasSales reports whether any dish carries sales data.
func (c *Catalog) HasSales() bool {
	return c.maxSales > 0
}

// Len returns the number of recipes and soups.
func (c *Catalog) Len() (recipes, soups int) {
	return len(c.recipes), len(c.soups)
}

// Records converts the catalog back to raw records for persistence.
func (c *Catalog) Records() []RawRecord {
	out := make([]RawRecord, 0, len(c.recipes)+len(c.soups))
	for _, r := range c.recipes {
		out = append(out, RawRecord{
			ID:         r.ID,
			Name:       r.Name,
			Category:   r.Category,
			Cost:       r.Cost,
			Price:      r.Price,
			SalesCount: r.SalesCount,
		})
	}
	for _, s := range c.soups {
		out = append(out, RawRecord{
			ID:         s.ID,
			Name:       s.Name,
			Category:   s.Category,
			SalesCount: s.SalesCount,
			Soup:       true,
		})
	}
	return out
}
