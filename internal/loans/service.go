package loans

import (
	"context"
	"crypto/rand"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	ulid "github.com/oklog/ulid/v2"

	"github.com/verificacao-programa/controle-epi/internal/platform/apperr"
	"github.com/verificacao-programa/controle-epi/internal/platform/dates"
	"github.com/verificacao-programa/controle-epi/internal/platform/db"
)

const DefaultPeriodDays = 30

type IDGen interface{ NewULID(t time.Time) string }
type ulidGen struct{}

func (ulidGen) NewULID(t time.Time) string {
	entropy := ulid.Monotonic(rand.Reader, 0)
	return ulid.MustNew(ulid.Timestamp(t), entropy).String()
}

// Service is the loan ledger. It owns loan rows and is the only writer of
// equipment stock once an item is registered.
type Service struct {
	db         *sql.DB
	store      *Store
	id         IDGen
	periodDays int
}

func NewService(conn *sql.DB, periodDays int) *Service {
	if periodDays <= 0 {
		periodDays = DefaultPeriodDays
	}
	return &Service{db: conn, store: NewStore(), id: ulidGen{}, periodDays: periodDays}
}

// CreateLoan lends in.Quantity units of an item to an employee.
// The item row stays locked from the stock check to the commit, so concurrent
// loans on one item are serialized and can never oversell.
func (s *Service) CreateLoan(ctx context.Context, in CreateLoanRequest) (LoanReceipt, error) {
	if in.Today.IsZero() {
		return LoanReceipt{}, apperr.Invalid("loan date is required")
	}
	today := dates.Day(in.Today)
	l := Loan{
		ULID:        s.id.NewULID(time.Now()),
		EmployeeID:  in.EmployeeID,
		EquipmentID: in.EquipmentID,
		Quantity:    in.Quantity,
		LoanDate:    today,
		DueDate:     dates.AddDays(today, s.periodDays),
		Status:      StatusActive,
	}

	err := db.RunInTx(ctx, s.db, nil, func(ctx context.Context, tx db.DBTX) error {
		if err := s.store.lockEmployee(ctx, tx, in.EmployeeID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return apperr.NotFound(fmt.Sprintf("employee %d not found", in.EmployeeID))
			}
			return err
		}
		stock, exp, err := s.store.lockEquipment(ctx, tx, in.EquipmentID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return apperr.NotFound(fmt.Sprintf("equipment %d not found", in.EquipmentID))
			}
			return err
		}
		if err := admit(in.Quantity, stock, exp, today); err != nil {
			return err
		}
		if err := s.store.adjustStock(ctx, tx, in.EquipmentID, -in.Quantity); err != nil {
			if errors.Is(err, errNotApplied) {
				return apperr.Conflict("insufficient stock")
			}
			return err
		}
		l.ID, err = s.store.insertLoan(ctx, tx, l)
		return err
	})
	if err != nil {
		if apperr.CodeOf(err) != apperr.CodeInternal {
			log.Printf("[WARN] loans.CreateLoan employee=%d equipment=%d qty=%d: %v",
				in.EmployeeID, in.EquipmentID, in.Quantity, err)
		}
		return LoanReceipt{}, apperr.Wrap("loans.CreateLoan", err)
	}

	log.Printf("[INFO] loans.CreateLoan id=%d ulid=%s employee=%d equipment=%d qty=%d due=%s",
		l.ID, l.ULID, l.EmployeeID, l.EquipmentID, l.Quantity, dates.Format(l.DueDate))
	return LoanReceipt{ID: l.ID, ULID: l.ULID, LoanDate: l.LoanDate, DueDate: l.DueDate}, nil
}

// ReturnLoan closes an Active loan and puts its units back in stock.
// A loan that is already Returned fails with ALREADY_RETURNED and nothing changes.
func (s *Service) ReturnLoan(ctx context.Context, loanID int64, today time.Time) (ReturnReceipt, error) {
	if today.IsZero() {
		return ReturnReceipt{}, apperr.Invalid("return date is required")
	}
	today = dates.Day(today)

	var out ReturnReceipt
	err := db.RunInTx(ctx, s.db, nil, func(ctx context.Context, tx db.DBTX) error {
		l, err := s.store.lockLoan(ctx, tx, loanID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return apperr.NotFound(fmt.Sprintf("loan %d not found", loanID))
			}
			return err
		}
		if l.Status == StatusReturned {
			return apperr.AlreadyReturned(fmt.Sprintf("loan %d was returned on %s", loanID, formatPtr(l.ReturnDate)))
		}
		if today.Before(l.LoanDate) {
			return apperr.Invalid(fmt.Sprintf("return date %s precedes loan date %s",
				dates.Format(today), dates.Format(l.LoanDate)))
		}
		if err := s.store.markReturned(ctx, tx, loanID, today); err != nil {
			if errors.Is(err, errNotApplied) {
				return apperr.AlreadyReturned(fmt.Sprintf("loan %d already returned", loanID))
			}
			return err
		}
		if err := s.store.adjustStock(ctx, tx, l.EquipmentID, l.Quantity); err != nil {
			if errors.Is(err, errNotApplied) {
				// item row vanished; refuse rather than lose the units
				return apperr.Conflict(fmt.Sprintf("equipment %d no longer exists", l.EquipmentID))
			}
			return err
		}

		overdue := dates.DaysBetween(l.DueDate, today)
		out = ReturnReceipt{
			LoanID:      l.ID,
			EquipmentID: l.EquipmentID,
			Quantity:    l.Quantity,
			DueDate:     l.DueDate,
			ReturnDate:  today,
			OverdueDays: overdue,
			Overdue:     overdue > 0,
		}
		return nil
	})
	if err != nil {
		return ReturnReceipt{}, apperr.Wrap("loans.ReturnLoan", err)
	}

	if out.Overdue {
		log.Printf("[WARN] loans.ReturnLoan id=%d returned %d day(s) late", loanID, out.OverdueDays)
	} else {
		log.Printf("[INFO] loans.ReturnLoan id=%d", loanID)
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, id int64) (Loan, error) {
	l, err := s.store.GetByID(ctx, s.db, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Loan{}, apperr.NotFound(fmt.Sprintf("loan %d not found", id))
		}
		return Loan{}, apperr.Wrap("loans.Get", err)
	}
	return l, nil
}

// GetByKey accepts either the numeric loan id or its ULID.
func (s *Service) GetByKey(ctx context.Context, key string) (Loan, error) {
	key = strings.TrimSpace(key)
	if id, err := strconv.ParseInt(key, 10, 64); err == nil {
		return s.Get(ctx, id)
	}
	if _, err := ulid.ParseStrict(key); err != nil {
		return Loan{}, apperr.Invalid(fmt.Sprintf("%q is neither a loan id nor a ULID", key))
	}
	l, err := s.store.GetByULID(ctx, s.db, strings.ToUpper(key))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Loan{}, apperr.NotFound(fmt.Sprintf("loan %s not found", key))
		}
		return Loan{}, apperr.Wrap("loans.GetByKey", err)
	}
	return l, nil
}

func formatPtr(t *time.Time) string {
	if t == nil {
		return "?"
	}
	return dates.Format(*t)
}
