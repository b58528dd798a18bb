package recipe

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Repository is a database-backed repository for raw catalog records.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new Repository.
func NewRepository(d *sql.DB) *Repository {
	return &Repository{db: d}
}

const upsertDish = `
INSERT INTO dishes (id, name, category, cost, price, sales_count, is_soup, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	name = excluded.name,
	category = excluded.category,
	cost = excluded.cost,
	price = excluded.price,
	sales_count = excluded.sales_count,
	is_soup = excluded.is_soup,
	updated_at = excluded.updated_at`

// Upsert inserts or updates records in a single transaction.
func (r *Repository) Upsert(ctx context.Context, records []RawRecord) error {
	return r.inTx(ctx, func(tx *sql.Tx) error {
		return upsertAll(ctx, tx, records)
	})
}

// Replace swaps the whole catalog for records. Dishes missing from records
// are removed.
func (r *Repository) Replace(ctx context.Context, records []RawRecord) error {
	return r.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM dishes`); err != nil {
			return fmt.Errorf("failed to clear dishes: %w", err)
		}
		return upsertAll(ctx, tx, records)
	})
}

func upsertAll(ctx context.Context, tx *sql.Tx, records []RawRecord) error {
	stmt, err := tx.PrepareContext(ctx, upsertDish)
	if err != nil {
		return fmt.Errorf("failed to prepare dish upsert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for _, rec := range records {
		_, err := stmt.ExecContext(ctx,
			rec.ID, rec.Name, rec.Category,
			nullFloat(rec.Cost), nullFloat(rec.Price),
			rec.SalesCount, rec.Soup, now,
		)
		if err != nil {
			return fmt.Errorf("failed to upsert dish %s: %w", rec.ID, err)
		}
	}
	return nil
}

// List returns every stored record, recipes first, in insertion order.
func (r *Repository) List(ctx context.Context) ([]RawRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, category, cost, price, sales_count, is_soup
		FROM dishes
		ORDER BY is_soup, rowid`)
	if err != nil {
		return nil, fmt.Errorf("failed to list dishes: %w", err)
	}
	defer rows.Close()

	var records []RawRecord
	for rows.Next() {
		var rec RawRecord
		var cost, price sql.NullFloat64
		if err := rows.Scan(&rec.ID, &rec.Name, &rec.Category, &cost, &price, &rec.SalesCount, &rec.Soup); err != nil {
			return nil, fmt.Errorf("failed to scan dish: %w", err)
		}
		if cost.Valid {
			rec.Cost = Float(cost.Float64)
		}
		if price.Valid {
			rec.Price = Float(price.Float64)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate dishes: %w", err)
	}
	return records, nil
}

// UpdateSales sets sales counts by id and returns how many dishes changed.
// Unknown ids are ignored.
func (r *Repository) UpdateSales(ctx context.Context, sales map[string]int) (int, error) {
	var updated int64
	err := r.inTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `UPDATE dishes SET sales_count = ?, updated_at = ? WHERE id = ?`)
		if err != nil {
			return fmt.Errorf("failed to prepare sales update: %w", err)
		}
		defer stmt.Close()

		now := time.Now().UTC()
		for id, n := range sales {
			res, err := stmt.ExecContext(ctx, n, now, id)
			if err != nil {
				return fmt.Errorf("failed to update sales for %s: %w", id, err)
			}
			if affected, err := res.RowsAffected(); err == nil {
				updated += affected
			}
		}
		return nil
	})
	return int(updated), err
}

// Count returns the number of stored dishes.
func (r *Repository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM dishes`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count dishes: %w", err)
	}
	return n, nil
}

func (r *Repository) inTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}
