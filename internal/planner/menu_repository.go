package planner

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"lunch-menu-planner/internal/menu"
)

// ErrMenuNotFound is returned when no stored menu has the requested id.
var ErrMenuNotFound = errors.New("menu not found")

// MenuRepository is a database-backed store of generated menus. It is the
// history source for later planning runs.
type MenuRepository struct {
	db *sql.DB
}

// NewMenuRepository creates a new MenuRepository.
func NewMenuRepository(d *sql.DB) *MenuRepository {
	return &MenuRepository{db: d}
}

// Save stores a new menu. A missing id or creation time is filled in on m.
func (r *MenuRepository) Save(ctx context.Context, m *menu.WeeklyMenu) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("failed to encode menu %s: %w", m.ID, err)
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO menu_history (id, week_start, data, created_at) VALUES (?, ?, ?, ?)`,
		m.ID, m.WeekStart.String(), string(data), m.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("failed to save menu %s: %w", m.ID, err)
	}
	return nil
}

// Update overwrites a stored menu, keeping its creation time.
func (r *MenuRepository) Update(ctx context.Context, m menu.WeeklyMenu) error {
	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("failed to encode menu %s: %w", m.ID, err)
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE menu_history SET week_start = ?, data = ? WHERE id = ?`,
		m.WeekStart.String(), string(data), m.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update menu %s: %w", m.ID, err)
	}
	return expectOne(res, m.ID)
}

// Delete removes a stored menu.
func (r *MenuRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM menu_history WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete menu %s: %w", id, err)
	}
	return expectOne(res, id)
}

func expectOne(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrMenuNotFound, id)
	}
	return nil
}

// Get loads one menu by id.
func (r *MenuRepository) Get(ctx context.Context, id string) (menu.WeeklyMenu, error) {
	var data string
	err := r.db.QueryRowContext(ctx, `SELECT data FROM menu_history WHERE id = ?`, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return menu.WeeklyMenu{}, fmt.Errorf("%w: %s", ErrMenuNotFound, id)
	}
	if err != nil {
		return menu.WeeklyMenu{}, fmt.Errorf("failed to load menu %s: %w", id, err)
	}
	return decodeMenu(id, data)
}

// ListRecent returns up to limit menus, newest first.
func (r *MenuRepository) ListRecent(ctx context.Context, limit int) ([]menu.WeeklyMenu, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, data FROM menu_history ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent menus: %w", err)
	}
	defer rows.Close()

	var menus []menu.WeeklyMenu
	for rows.Next() {
		var id, data string
		if err := rows.Scan(&id, &data); err != nil {
			return nil, fmt.Errorf("failed to scan menu: %w", err)
		}
		m, err := decodeMenu(id, data)
		if err != nil {
			return nil, err
		}
		menus = append(menus, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list recent menus: %w", err)
	}
	return menus, nil
}

func decodeMenu(id, data string) (menu.WeeklyMenu, error) {
	var m menu.WeeklyMenu
	if err := json.Unmarshal([]byte(data), &m); err != nil {
		return menu.WeeklyMenu{}, fmt.Errorf("failed to decode menu %s: %w", id, err)
	}
	m.ID = id
	return m, nil
}
