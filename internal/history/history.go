// Package history tracks which dishes and specialties recent menus used, so
// a new menu does not repeat them.
package history

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"lunch-menu-planner/internal/menu"
	"lunch-menu-planner/internal/textnorm"
)

// Rolling windows, counted in stored menus.
const (
	DishWindow      = 6
	SpecialtyWindow = 8
)

// Source lists stored menus, newest first.
type Source interface {
	ListRecent(ctx context.Context, limit int) ([]menu.WeeklyMenu, error)
}

// Tracker answers exclusion queries. A nil *Tracker excludes nothing.
type Tracker struct {
	dishIDs        map[string]struct{}
	specialtyNames map[string]string
}

// Empty returns a tracker that excludes nothing.
func Empty() *Tracker {
	return &Tracker{
		dishIDs:        map[string]struct{}{},
		specialtyNames: map[string]string{},
	}
}

// Build folds the given menus, newest first, into a tracker. Soup and dish
// ids come from the first DishWindow menus, specialty names from the first
// SpecialtyWindow.
func Build(recent []menu.WeeklyMenu) *Tracker {
	t := Empty()
	for i, m := range recent {
		if i < DishWindow {
			for _, id := range m.SlotIDs() {
				if id != "" {
					t.dishIDs[id] = struct{}{}
				}
			}
		}
		if i < SpecialtyWindow && m.Specialty.Name != "" {
			t.specialtyNames[specialtyKey(m.Specialty.Name)] = strings.TrimSpace(m.Specialty.Name)
		}
	}
	return t
}

// Load reads the recent menus from src and builds a tracker. When the store
// fails the tracker is empty and the failure is logged.
func Load(ctx context.Context, src Source, logger *zap.Logger) *Tracker {
	return LoadExcluding(ctx, src, "", logger)
}

// LoadExcluding is Load with one stored menu left out, so an edited menu is
// not checked against itself.
func LoadExcluding(ctx context.Context, src Source, menuID string, logger *zap.Logger) *Tracker {
	if logger == nil {
		logger = zap.NewNop()
	}
	if src == nil {
		return Empty()
	}

	limit := max(DishWindow, SpecialtyWindow)
	if menuID != "" {
		limit++
	}
	recent, err := src.ListRecent(ctx, limit)
	if err != nil {
		logger.Warn("menu history unavailable, planning without exclusions", zap.Error(err))
		return Empty()
	}

	if menuID != "" {
		kept := recent[:0:0]
		for _, m := range recent {
			if m.ID != menuID {
				kept = append(kept, m)
			}
		}
		recent = kept
	}
	return Build(recent)
}

func specialtyKey(name string) string {
	return textnorm.Fold(strings.TrimSpace(name))
}

// IsDishExcluded reports whether a soup or dish id was used within the
// dish window.
func (t *Tracker) IsDishExcluded(id string) bool {
	if t == nil {
		return false
	}
	_, ok := t.dishIDs[id]
	return ok
}

// IsSpecialtyExcluded reports whether a specialty name was used within the
// specialty window. Names compare without case or diacritics.
func (t *Tracker) IsSpecialtyExcluded(name string) bool {
	if t == nil {
		return false
	}
	_, ok := t.specialtyNames[specialtyKey(name)]
	return ok
}

// IsExcluded reports whether idOrName is an excluded dish id or specialty
// name.
func (t *Tracker) IsExcluded(idOrName string) bool {
	return t.IsDishExcluded(idOrName) || t.IsSpecialtyExcluded(idOrName)
}

// DishIDs returns the excluded ids in no particular order.
func (t *Tracker) DishIDs() []string {
	if t == nil {
		return nil
	}
	out := make([]string, 0, len(t.dishIDs))
	for id := range t.dishIDs {
		out = append(out, id)
	}
	return out
}

// SpecialtyNames returns the excluded specialty names as stored.
func (t *Tracker) SpecialtyNames() []string {
	if t == nil {
		return nil
	}
	out := make([]string, 0, len(t.specialtyNames))
	for _, n := range t.specialtyNames {
		out = append(out, n)
	}
	return out
}

// Len returns the number of excluded dish ids and specialty names.
func (t *Tracker) Len() (dishes, specialties int) {
	if t == nil {
		return 0, 0
	}
	return len(t.dishIDs), len(t.specialtyNames)
}
