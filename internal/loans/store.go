package loans

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/verificacao-programa/controle-epi/internal/platform/db"
)

const loanColumns = `id, loan_ulid, employee_id, equipment_id, quantity, loan_date, due_date, return_date, status`

var errNotApplied = errors.New("row not updated")

type Store struct{}

func NewStore() *Store { return &Store{} }

func scanLoan(row interface{ Scan(...any) error }) (Loan, error) {
	var (
		l   Loan
		ret sql.NullTime
	)
	err := row.Scan(&l.ID, &l.ULID, &l.EmployeeID, &l.EquipmentID, &l.Quantity,
		&l.LoanDate, &l.DueDate, &ret, &l.Status)
	if err != nil {
		return Loan{}, err
	}
	if ret.Valid {
		t := ret.Time
		l.ReturnDate = &t
	}
	return l, nil
}

// lockEmployee takes a shared lock so the employee cannot be deleted before the loan commits.
func (s *Store) lockEmployee(ctx context.Context, tx db.DBTX, id int64) error {
	var got int64
	return tx.QueryRowContext(ctx,
		`SELECT id FROM employee WHERE id = ? LOCK IN SHARE MODE`, id).Scan(&got)
}

// lockEquipment takes the exclusive row lock that serializes every stock change on the item.
func (s *Store) lockEquipment(ctx context.Context, tx db.DBTX, id int64) (quantity int, expiration time.Time, err error) {
	err = tx.QueryRowContext(ctx,
		`SELECT quantity, expiration_date FROM equipment WHERE id = ? FOR UPDATE`, id).Scan(&quantity, &expiration)
	return quantity, expiration, err
}

// adjustStock adds delta to the item's quantity. The guard keeps the row from going negative
// even if the caller skipped the lock.
func (s *Store) adjustStock(ctx context.Context, tx db.DBTX, equipmentID int64, delta int) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE equipment SET quantity = quantity + ? WHERE id = ? AND quantity + ? >= 0`,
		delta, equipmentID, delta)
	if err != nil {
		return err
	}
	aff, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if aff != 1 {
		return fmt.Errorf("adjust stock of equipment %d by %d: %w", equipmentID, delta, errNotApplied)
	}
	return nil
}

func (s *Store) insertLoan(ctx context.Context, tx db.DBTX, l Loan) (int64, error) {
	res, err := tx.ExecContext(ctx, `
		INSERT INTO loan (loan_ulid, employee_id, equipment_id, quantity, loan_date, due_date, status)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		l.ULID, l.EmployeeID, l.EquipmentID, l.Quantity, l.LoanDate, l.DueDate, string(StatusActive))
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (s *Store) lockLoan(ctx context.Context, tx db.DBTX, id int64) (Loan, error) {
	return scanLoan(tx.QueryRowContext(ctx,
		`SELECT `+loanColumns+` FROM loan WHERE id = ? FOR UPDATE`, id))
}

// markReturned moves an Active loan to Returned. The status guard makes a second call a no-op.
func (s *Store) markReturned(ctx context.Context, tx db.DBTX, id int64, on time.Time) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE loan SET status = ?, return_date = ? WHERE id = ? AND status = ?`,
		string(StatusReturned), on, id, string(StatusActive))
	if err != nil {
		return err
	}
	aff, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if aff != 1 {
		return fmt.Errorf("mark loan %d returned: %w", id, errNotApplied)
	}
	return nil
}

func (s *Store) GetByID(ctx context.Context, q db.DBTX, id int64) (Loan, error) {
	return scanLoan(q.QueryRowContext(ctx, `SELECT `+loanColumns+` FROM loan WHERE id = ?`, id))
}

func (s *Store) GetByULID(ctx context.Context, q db.DBTX, key string) (Loan, error) {
	return scanLoan(q.QueryRowContext(ctx, `SELECT `+loanColumns+` FROM loan WHERE loan_ulid = ?`, key))
}
