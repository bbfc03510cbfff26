package equipment

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/verificacao-programa/controle-epi/internal/platform/db"
)

const itemColumns = "id, name, COALESCE(description, ''), expiration_date, quantity"

type Store struct{}

func NewStore() *Store { return &Store{} }

func scanItem(row interface{ Scan(...any) error }) (Item, error) {
	var it Item
	err := row.Scan(&it.ID, &it.Name, &it.Description, &it.ExpirationDate, &it.Quantity)
	return it, err
}

func (s *Store) queryItems(ctx context.Context, q db.DBTX, query string, args ...any) ([]Item, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Item
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

// Upsert inserts a new item or, when the name already exists, adds qty to its stock.
// LAST_INSERT_ID(id) makes LastInsertId report the existing row on merge.
// Affected rows is 1 for a fresh insert; 2 (or 0 when qty is 0) for a merge.
func (s *Store) Upsert(ctx context.Context, q db.DBTX, name, description string, exp time.Time, qty int) (int64, bool, error) {
	res, err := q.ExecContext(ctx, `
		INSERT INTO equipment (name, description, expiration_date, quantity)
		VALUES (?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE quantity = quantity + ?, id = LAST_INSERT_ID(id)`,
		name, description, exp, qty, qty)
	if err != nil {
		return 0, false, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, false, err
	}
	aff, err := res.RowsAffected()
	if err != nil {
		return 0, false, err
	}
	return id, aff != 1, nil
}

func (s *Store) GetByID(ctx context.Context, q db.DBTX, id int64) (Item, error) {
	return scanItem(q.QueryRowContext(ctx,
		`SELECT `+itemColumns+` FROM equipment WHERE id = ?`, id))
}

// LockByID reads the row with an exclusive lock held until the surrounding tx ends.
func (s *Store) LockByID(ctx context.Context, q db.DBTX, id int64) (Item, error) {
	return scanItem(q.QueryRowContext(ctx,
		`SELECT `+itemColumns+` FROM equipment WHERE id = ? FOR UPDATE`, id))
}

func (s *Store) GetByName(ctx context.Context, q db.DBTX, name string) (Item, error) {
	return scanItem(q.QueryRowContext(ctx,
		`SELECT `+itemColumns+` FROM equipment WHERE name = ?`, name))
}

func (s *Store) ListAll(ctx context.Context, q db.DBTX) ([]Item, error) {
	return s.queryItems(ctx, q, `SELECT `+itemColumns+` FROM equipment ORDER BY name`)
}

func (s *Store) ListExpired(ctx context.Context, q db.DBTX, today time.Time) ([]Item, error) {
	return s.queryItems(ctx, q,
		`SELECT `+itemColumns+` FROM equipment WHERE expiration_date < ? ORDER BY expiration_date, name`, today)
}

func (s *Store) ListAvailable(ctx context.Context, q db.DBTX) ([]Item, error) {
	return s.queryItems(ctx, q,
		`SELECT `+itemColumns+` FROM equipment WHERE quantity > 0 ORDER BY name`)
}

// ApplyPatch writes the non-nil fields of p. NULL parameters keep the current value.
func (s *Store) ApplyPatch(ctx context.Context, q db.DBTX, id int64, p patch) error {
	_, err := q.ExecContext(ctx, `
		UPDATE equipment SET
			name            = COALESCE(?, name),
			description     = COALESCE(?, description),
			expiration_date = COALESCE(?, expiration_date),
			quantity        = COALESCE(?, quantity)
		WHERE id = ?`,
		nullString(p.Name), nullString(p.Description), nullTime(p.ExpirationDate), nullInt(p.Quantity), id)
	return err
}

// HasActiveLoans reports whether any Active loan still references the item.
func (s *Store) HasActiveLoans(ctx context.Context, q db.DBTX, id int64) (bool, error) {
	var exists bool
	err := q.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM loan WHERE equipment_id = ? AND status = 'Active')`, id).Scan(&exists)
	return exists, err
}

func (s *Store) Delete(ctx context.Context, q db.DBTX, id int64) error {
	res, err := q.ExecContext(ctx, `DELETE FROM equipment WHERE id = ?`, id)
	if err != nil {
		return err
	}
	aff, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if aff != 1 {
		return fmt.Errorf("delete equipment %d: %w", id, sql.ErrNoRows)
	}
	return nil
}

func nullString(p *string) sql.NullString {
	if p == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *p, Valid: true}
}

func nullTime(p *time.Time) sql.NullTime {
	if p == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *p, Valid: true}
}

func nullInt(p *int) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*p), Valid: true}
}

func isNoRows(err error) bool { return errors.Is(err, sql.ErrNoRows) }
