// Package menu holds the weekly menu value types shared by the planner, the
// history store and the renderers.
package menu

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"lunch-menu-planner/internal/dish"
)

// Shape of a weekly menu.
const (
	WorkdaysPerWeek = 5
	DishesPerDay    = 5
)

// ErrSlotOutOfRange is returned when a replacement targets a missing slot.
var ErrSlotOutOfRange = errors.New("menu slot out of range")

// Source tells where a menu entry comes from.
type Source string

const (
	// SourceCatalog entries reference the dish catalog.
	SourceCatalog Source = ""
	// SourceCustom entries were typed in by hand and have no catalog id.
	SourceCustom Source = "custom"
)

// DishRef is a main dish placed in a day slot.
type DishRef struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Protein   dish.Protein   `json:"protein"`
	Heaviness dish.Heaviness `json:"heaviness"`
	Source    Source         `json:"source,omitempty"`
}

// SoupRef is the soup of a day.
type SoupRef struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Heaviness dish.Heaviness `json:"heaviness,omitempty"`
	Source    Source         `json:"source,omitempty"`
}

// Specialty is the weekly featured dish.
type Specialty struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Reason string `json:"reason,omitempty"`
	Source Source `json:"source,omitempty"`
}

// Weather is the forecast summary shown with a day.
type Weather struct {
	TempMin   float64 `json:"temp_min"`
	TempMax   float64 `json:"temp_max"`
	Condition string  `json:"condition"`
}

// DayPlan is one workday of the menu.
type DayPlan struct {
	Date      Date      `json:"date"`
	DayName   string    `json:"day_name"`
	Soup      SoupRef   `json:"soup"`
	Dishes    []DishRef `json:"dishes"`
	Weather   *Weather  `json:"weather,omitempty"`
	Reasoning string    `json:"reasoning,omitempty"`
}

// WeeklyMenu is a complete Monday to Friday lunch menu.
type WeeklyMenu struct {
	ID        string    `json:"id,omitempty"`
	WeekStart Date      `json:"week_start"`
	WeekEnd   Date      `json:"week_end"`
	CreatedAt time.Time `json:"created_at,omitzero"`
	Specialty Specialty `json:"specialty"`
	Days      []DayPlan `json:"days"`
}

// New returns an empty menu skeleton for the week starting at monday, with
// dates and Czech day names filled in.
func New(monday Date) WeeklyMenu {
	m := WeeklyMenu{
		WeekStart: monday,
		WeekEnd:   WeekEnd(monday),
		Days:      make([]DayPlan, WorkdaysPerWeek),
	}
	for i, d := range Workdays(monday) {
		m.Days[i] = DayPlan{Date: d, DayName: DayName(d)}
	}
	return m
}

// Clone returns a deep copy.
func (m WeeklyMenu) Clone() WeeklyMenu {
	out := m
	out.Days = make([]DayPlan, len(m.Days))
	for i, d := range m.Days {
		d.Dishes = slices.Clone(d.Dishes)
		if d.Weather != nil {
			w := *d.Weather
			d.Weather = &w
		}
		out.Days[i] = d
	}
	return out
}

// SlotIDs returns the ids of every soup and dish slot in day order. The
// specialty is not included.
func (m WeeklyMenu) SlotIDs() []string {
	var ids []string
	for _, d := range m.Days {
		ids = append(ids, d.Soup.ID)
		for _, dr := range d.Dishes {
			ids = append(ids, dr.ID)
		}
	}
	return ids
}

// ReplaceDish swaps the dish in the given slot.
func (m *WeeklyMenu) ReplaceDish(day, slot int, d DishRef) error {
	if day < 0 || day >= len(m.Days) {
		return fmt.Errorf("%w: day %d", ErrSlotOutOfRange, day)
	}
	if slot < 0 || slot >= len(m.Days[day].Dishes) {
		return fmt.Errorf("%w: day %d dish %d", ErrSlotOutOfRange, day, slot)
	}
	m.Days[day].Dishes[slot] = d
	return nil
}

// ReplaceSoup swaps the soup of a day.
func (m *WeeklyMenu) ReplaceSoup(day int, s SoupRef) error {
	if day < 0 || day >= len(m.Days) {
		return fmt.Errorf("%w: day %d", ErrSlotOutOfRange, day)
	}
	m.Days[day].Soup = s
	return nil
}

// ReplaceSpecialty swaps the weekly specialty.
func (m *WeeklyMenu) ReplaceSpecialty(s Specialty) {
	m.Specialty = s
}
