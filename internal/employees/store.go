package employees

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/verificacao-programa/controle-epi/internal/platform/db"
)

const employeeColumns = "id, name, national_id, role, department"

type Store struct{}

func NewStore() *Store { return &Store{} }

func scanEmployee(row interface{ Scan(...any) error }) (Employee, error) {
	var e Employee
	err := row.Scan(&e.ID, &e.Name, &e.NationalID, &e.Role, &e.Department)
	return e, err
}

func (s *Store) Insert(ctx context.Context, q db.DBTX, in RegisterRequest) (int64, error) {
	res, err := q.ExecContext(ctx,
		`INSERT INTO employee (name, national_id, role, department) VALUES (?, ?, ?, ?)`,
		in.Name, in.NationalID, in.Role, in.Department)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (s *Store) GetByID(ctx context.Context, q db.DBTX, id int64) (Employee, error) {
	return scanEmployee(q.QueryRowContext(ctx,
		`SELECT `+employeeColumns+` FROM employee WHERE id = ?`, id))
}

func (s *Store) LockByID(ctx context.Context, q db.DBTX, id int64) (Employee, error) {
	return scanEmployee(q.QueryRowContext(ctx,
		`SELECT `+employeeColumns+` FROM employee WHERE id = ? FOR UPDATE`, id))
}

func (s *Store) GetByNationalID(ctx context.Context, q db.DBTX, nid string) (Employee, error) {
	return scanEmployee(q.QueryRowContext(ctx,
		`SELECT `+employeeColumns+` FROM employee WHERE national_id = ?`, nid))
}

func (s *Store) ListAll(ctx context.Context, q db.DBTX) ([]Employee, error) {
	rows, err := q.QueryContext(ctx, `SELECT `+employeeColumns+` FROM employee ORDER BY name, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Employee
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// ApplyPatch writes the non-nil fields of in. NULL parameters keep the current value.
func (s *Store) ApplyPatch(ctx context.Context, q db.DBTX, id int64, in UpdateRequest) error {
	_, err := q.ExecContext(ctx, `
		UPDATE employee SET
			name        = COALESCE(?, name),
			national_id = COALESCE(?, national_id),
			role        = COALESCE(?, role),
			department  = COALESCE(?, department)
		WHERE id = ?`,
		nullString(in.Name), nullString(in.NationalID), nullString(in.Role), nullString(in.Department), id)
	return err
}

func (s *Store) HasActiveLoans(ctx context.Context, q db.DBTX, id int64) (bool, error) {
	var exists bool
	err := q.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM loan WHERE employee_id = ? AND status = 'Active')`, id).Scan(&exists)
	return exists, err
}

func (s *Store) Delete(ctx context.Context, q db.DBTX, id int64) error {
	res, err := q.ExecContext(ctx, `DELETE FROM employee WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if aff, err := res.RowsAffected(); err != nil {
		return err
	} else if aff != 1 {
		return fmt.Errorf("delete employee %d: %w", id, sql.ErrNoRows)
	}
	return nil
}

func nullString(p *string) sql.NullString {
	if p == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *p, Valid: true}
}

func isNoRows(err error) bool { return errors.Is(err, sql.ErrNoRows) }
