package reports

import (
	"context"
	"database/sql"

	"github.com/verificacao-programa/controle-epi/internal/equipment"
	"github.com/verificacao-programa/controle-epi/internal/loans"
	"github.com/verificacao-programa/controle-epi/internal/platform/db"
)

const (
	stockSelect = `SELECT id, name, COALESCE(description, ''), expiration_date, quantity FROM equipment`

	// employee and equipment are LEFT JOINed: loan references are weak.
	loanSelect = `
		SELECT l.id, l.loan_ulid, l.employee_id, l.equipment_id, l.quantity,
		       l.loan_date, l.due_date, l.return_date, l.status,
		       COALESCE(emp.name, ''), COALESCE(eq.name, '')
		FROM loan l
		LEFT JOIN employee emp ON emp.id = l.employee_id
		LEFT JOIN equipment eq ON eq.id = l.equipment_id`
)

func queryItems(ctx context.Context, q db.DBTX, query string, args ...any) ([]equipment.Item, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []equipment.Item
	for rows.Next() {
		var it equipment.Item
		if err := rows.Scan(&it.ID, &it.Name, &it.Description, &it.ExpirationDate, &it.Quantity); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

func queryLoans(ctx context.Context, q db.DBTX, query string, args ...any) ([]LoanLine, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []LoanLine
	for rows.Next() {
		var (
			ln  LoanLine
			ret sql.NullTime
		)
		if err := rows.Scan(&ln.ID, &ln.ULID, &ln.EmployeeID, &ln.EquipmentID, &ln.Quantity,
			&ln.LoanDate, &ln.DueDate, &ret, &ln.Status, &ln.EmployeeName, &ln.EquipmentName); err != nil {
			return nil, err
		}
		if ret.Valid {
			t := ret.Time
			ln.ReturnDate = &t
		}
		out = append(out, ln)
	}
	return out, rows.Err()
}

func queryOnLoan(ctx context.Context, q db.DBTX) ([]OnLoanLine, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT l.equipment_id, COALESCE(eq.name, ''), SUM(l.quantity), COUNT(*)
		FROM loan l
		LEFT JOIN equipment eq ON eq.id = l.equipment_id
		WHERE l.status = ?
		GROUP BY l.equipment_id, eq.name
		ORDER BY eq.name, l.equipment_id`, string(loans.StatusActive))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []OnLoanLine
	for rows.Next() {
		var ln OnLoanLine
		if err := rows.Scan(&ln.EquipmentID, &ln.Name, &ln.Quantity, &ln.Loans); err != nil {
			return nil, err
		}
		out = append(out, ln)
	}
	return out, rows.Err()
}

func exists(ctx context.Context, q db.DBTX, table string, id int64) (bool, error) {
	var ok bool
	err := q.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM `+table+` WHERE id = ?)`, id).Scan(&ok)
	return ok, err
}

