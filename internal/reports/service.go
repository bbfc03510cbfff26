package reports

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/verificacao-programa/controle-epi/internal/equipment"
	"github.com/verificacao-programa/controle-epi/internal/loans"
	"github.com/verificacao-programa/controle-epi/internal/platform/apperr"
	"github.com/verificacao-programa/controle-epi/internal/platform/config"
	"github.com/verificacao-programa/controle-epi/internal/platform/dates"
	"github.com/verificacao-programa/controle-epi/internal/platform/db"
)

// Service answers read-only questions over the catalog and the ledger.
// Every view runs in its own read-only transaction.
type Service struct {
	db           *sql.DB
	expiringDays int
	dueDays      int
}

func NewService(conn *sql.DB, cfg config.LoanConfig) *Service {
	return &Service{db: conn, expiringDays: cfg.ExpiringSoonDays, dueDays: cfg.DueSoonDays}
}

func annotate(lines []LoanLine, today time.Time) []LoanLine {
	for i := range lines {
		lines[i].Standing = lines[i].Loan.Standing(today)
	}
	return lines
}

func (s *Service) itemsView(ctx context.Context, op string, today time.Time, query string, args ...any) ([]StockLine, error) {
	today = dates.Day(today)
	var items []equipment.Item
	err := db.ReadOnly(ctx, s.db, func(ctx context.Context, tx db.DBTX) error {
		var err error
		items, err = queryItems(ctx, tx, query, args...)
		return err
	})
	if err != nil {
		return nil, apperr.Wrap(op, err)
	}
	return StockLines(items, today, s.expiringDays), nil
}

func (s *Service) loansView(ctx context.Context, op string, today time.Time, query string, args ...any) ([]LoanLine, error) {
	today = dates.Day(today)
	var lines []LoanLine
	err := db.ReadOnly(ctx, s.db, func(ctx context.Context, tx db.DBTX) error {
		var err error
		lines, err = queryLoans(ctx, tx, query, args...)
		return err
	})
	if err != nil {
		return nil, apperr.Wrap(op, err)
	}
	return annotate(lines, today), nil
}

// AvailableStock lists items with stock on hand, by name.
func (s *Service) AvailableStock(ctx context.Context, today time.Time) ([]StockLine, error) {
	return s.itemsView(ctx, "reports.AvailableStock", today,
		stockSelect+` WHERE quantity > 0 ORDER BY name`)
}

func (s *Service) ExpiredItems(ctx context.Context, today time.Time) ([]StockLine, error) {
	return s.itemsView(ctx, "reports.ExpiredItems", today,
		stockSelect+` WHERE expiration_date < ? ORDER BY expiration_date, name`, dates.Day(today))
}

// ExpiringSoon lists items expiring between today and today+window, both ends included.
func (s *Service) ExpiringSoon(ctx context.Context, today time.Time) ([]StockLine, error) {
	from := dates.Day(today)
	return s.itemsView(ctx, "reports.ExpiringSoon", today,
		stockSelect+` WHERE expiration_date BETWEEN ? AND ? ORDER BY expiration_date, name`,
		from, dates.AddDays(from, s.expiringDays))
}

// OnLoan sums the units held by Active loans, per item.
func (s *Service) OnLoan(ctx context.Context) ([]OnLoanLine, error) {
	var out []OnLoanLine
	err := db.ReadOnly(ctx, s.db, func(ctx context.Context, tx db.DBTX) error {
		var err error
		out, err = queryOnLoan(ctx, tx)
		return err
	})
	return out, apperr.Wrap("reports.OnLoan", err)
}

// Loans lists every loan, newest first.
func (s *Service) Loans(ctx context.Context, today time.Time) ([]LoanLine, error) {
	return s.loansView(ctx, "reports.Loans", today,
		loanSelect+` ORDER BY l.loan_date DESC, l.id DESC`)
}

// ActiveLoans lists outstanding loans, soonest due first.
func (s *Service) ActiveLoans(ctx context.Context, today time.Time) ([]LoanLine, error) {
	return s.loansView(ctx, "reports.ActiveLoans", today,
		loanSelect+` WHERE l.status = ? ORDER BY l.due_date, l.id`, string(loans.StatusActive))
}

// DueSoon lists Active loans due between today and today+window. Overdue loans are not included.
func (s *Service) DueSoon(ctx context.Context, today time.Time) ([]LoanLine, error) {
	from := dates.Day(today)
	return s.loansView(ctx, "reports.DueSoon", today,
		loanSelect+` WHERE l.status = ? AND l.due_date BETWEEN ? AND ? ORDER BY l.due_date, l.id`,
		string(loans.StatusActive), from, dates.AddDays(from, s.dueDays))
}

func (s *Service) EmployeeHistory(ctx context.Context, employeeID int64, today time.Time) ([]LoanLine, error) {
	return s.history(ctx, "reports.EmployeeHistory", "employee", "l.employee_id", employeeID, today)
}

func (s *Service) EquipmentHistory(ctx context.Context, equipmentID int64, today time.Time) ([]LoanLine, error) {
	return s.history(ctx, "reports.EquipmentHistory", "equipment", "l.equipment_id", equipmentID, today)
}

// history lists every loan of one employee or item, newest first.
// Loans outlive a deleted owner; NotFound only when there are no loans and no owner.
func (s *Service) history(ctx context.Context, op, table, column string, id int64, today time.Time) ([]LoanLine, error) {
	today = dates.Day(today)
	var lines []LoanLine
	err := db.ReadOnly(ctx, s.db, func(ctx context.Context, tx db.DBTX) error {
		var err error
		lines, err = queryLoans(ctx, tx,
			loanSelect+` WHERE `+column+` = ? ORDER BY l.loan_date DESC, l.id DESC`, id)
		if err != nil || len(lines) > 0 {
			return err
		}
		ok, err := exists(ctx, tx, table, id)
		if err != nil {
			return err
		}
		if !ok {
			return apperr.NotFound(fmt.Sprintf("%s %d not found", table, id))
		}
		return nil
	})
	if err != nil {
		return nil, apperr.Wrap(op, err)
	}
	return annotate(lines, today), nil
}
