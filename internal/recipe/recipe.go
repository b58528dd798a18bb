package recipe

import "lunch-menu-planner/internal/dish"

// VATRate converts a gross selling price to its net value.
const VATRate = 1.12

// SpecialtyMinMargin is the net margin (CZK) a recipe must exceed to be
// offered as the weekly specialty.
const SpecialtyMinMargin = 80.0

// RawRecord is a dish as it arrives from the POS export or the database,
// before classification.
type RawRecord struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Category   string   `json:"category"`
	Cost       *float64 `json:"cost,omitempty"`
	Price      *float64 `json:"price,omitempty"`
	SalesCount int      `json:"sales_count,omitempty"`
	Soup       bool     `json:"soup,omitempty"`
}

// Recipe is a classified main dish.
type Recipe struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	Category   string         `json:"category"`
	Heaviness  dish.Heaviness `json:"heaviness"`
	Protein    dish.Protein   `json:"protein"`
	Season     dish.Season    `json:"season"`
	Cost       *float64       `json:"cost,omitempty"`
	Price      *float64       `json:"price,omitempty"`
	SalesCount int            `json:"sales_count,omitempty"`
}

// Margin returns price - cost/VAT, or 0 when either is unknown.
func (r Recipe) Margin() float64 {
	return Margin(r.Cost, r.Price)
}

// SpecialtyEligible reports whether the recipe earns enough to be the
// weekly specialty.
func (r Recipe) SpecialtyEligible() bool {
	return r.Margin() > SpecialtyMinMargin
}

// Soup is a classified soup. Soups carry no protein.
type Soup struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	Category   string         `json:"category,omitempty"`
	Heaviness  dish.Heaviness `json:"heaviness"`
	Season     dish.Season    `json:"season"`
	SalesCount int            `json:"sales_count,omitempty"`
}

// Margin computes the net margin of a dish.
func Margin(cost, price *float64) float64 {
	if cost == nil || price == nil {
		return 0
	}
	return *price - *cost/VATRate
}

// Float returns a pointer to v, for optional cost and price fields.
func Float(v float64) *float64 {
	return &v
}

// Classify turns a raw record into a recipe or a soup.
func Classify(rec RawRecord) (*Recipe, *Soup) {
	attrs := dish.Classify(rec.Name, rec.Category, rec.Soup)
	if rec.Soup || dish.IsSoupCategory(rec.Category) {
		return nil, &Soup{
			ID:         rec.ID,
			Name:       rec.Name,
			Category:   rec.Category,
			Heaviness:  attrs.Heaviness,
			Season:     attrs.Season,
			SalesCount: rec.SalesCount,
		}
	}
	return &Recipe{
		ID:         rec.ID,
		Name:       rec.Name,
		Category:   rec.Category,
		Heaviness:  attrs.Heaviness,
		Protein:    attrs.Protein,
		Season:     attrs.Season,
		Cost:       rec.Cost,
		Price:      rec.Price,
		SalesCount: rec.SalesCount,
	}, nil
}
