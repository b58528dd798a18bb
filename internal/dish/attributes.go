package dish

import "time"

// Protein is the main protein source of a recipe. Soups carry no protein.
type Protein string

const (
	ProteinVege    Protein = "vege"
	ProteinChicken Protein = "chicken"
	ProteinPork    Protein = "pork"
	ProteinBeef    Protein = "beef"
	ProteinFish    Protein = "fish"
	ProteinMixed   Protein = "mixed"
)

// Proteins lists every protein value in display order.
var Proteins = []Protein{ProteinVege, ProteinChicken, ProteinPork, ProteinBeef, ProteinFish, ProteinMixed}

// Valid reports whether p is one of the known protein values.
func (p Protein) Valid() bool {
	switch p {
	case ProteinVege, ProteinChicken, ProteinPork, ProteinBeef, ProteinFish, ProteinMixed:
		return true
	}
	return false
}

// Label returns the Czech display label.
func (p Protein) Label() string {
	switch p {
	case ProteinVege:
		return "Vegetariánské"
	case ProteinChicken:
		return "Drůbež"
	case ProteinPork:
		return "Vepřové"
	case ProteinBeef:
		return "Hovězí"
	case ProteinFish:
		return "Ryby"
	case ProteinMixed:
		return "Smíšené"
	}
	return string(p)
}

// Heaviness is a coarse digestive-weight class.
type Heaviness string

const (
	HeavinessLight  Heaviness = "light"
	HeavinessMedium Heaviness = "medium"
	HeavinessHeavy  Heaviness = "heavy"
)

// Valid reports whether h is one of the known heaviness values.
func (h Heaviness) Valid() bool {
	return h == HeavinessLight || h == HeavinessMedium || h == HeavinessHeavy
}

// Label returns the Czech display label.
func (h Heaviness) Label() string {
	switch h {
	case HeavinessLight:
		return "Lehké"
	case HeavinessMedium:
		return "Střední"
	case HeavinessHeavy:
		return "Těžké"
	}
	return string(h)
}

// Season is the part of the year a dish fits best.
type Season string

const (
	SeasonSummer  Season = "summer"
	SeasonWinter  Season = "winter"
	SeasonAllYear Season = "all-year"
)

// SeasonForMonth maps a calendar month to the menu season: June through
// September is summer, December through March is winter.
func SeasonForMonth(m time.Month) Season {
	switch {
	case m >= time.June && m <= time.September:
		return SeasonSummer
	case m >= time.December || m <= time.March:
		return SeasonWinter
	}
	return SeasonAllYear
}

// Attributes is the structured view of a free-text dish name.
type Attributes struct {
	Heaviness Heaviness
	// Protein is empty for soups.
	Protein Protein
	Season  Season
	// Base is the structural category ("noky", "risotto", ...) or "".
	Base string
}
