package loans

import (
	"time"

	"github.com/verificacao-programa/controle-epi/internal/platform/dates"
)

type Status string

const (
	StatusActive   Status = "Active"
	StatusReturned Status = "Returned"
)

type Loan struct {
	ID          int64      `json:"id"`
	ULID        string     `json:"ulid"`
	EmployeeID  int64      `json:"employee_id"`
	EquipmentID int64      `json:"equipment_id"`
	Quantity    int        `json:"quantity"`
	LoanDate    time.Time  `json:"loan_date"`
	DueDate     time.Time  `json:"due_date"`
	ReturnDate  *time.Time `json:"return_date,omitempty"`
	Status      Status     `json:"status"`
}

// Standing is the overdue/late state of a loan on a given day. It is computed
// on read and never stored. Exactly one of DaysRemaining and DaysLate is set.
type Standing struct {
	Status Status `json:"status"`
	// Active only: due date minus today, negative once overdue.
	DaysRemaining *int `json:"days_remaining,omitempty"`
	// Returned only: return date minus due date, <= 0 means on time.
	DaysLate *int `json:"days_late,omitempty"`
	Overdue  bool `json:"overdue"`
}

func (l Loan) Standing(today time.Time) Standing {
	if l.Status == StatusReturned && l.ReturnDate != nil {
		late := dates.DaysBetween(l.DueDate, *l.ReturnDate)
		return Standing{Status: l.Status, DaysLate: &late, Overdue: late > 0}
	}
	rem := dates.DaysBetween(today, l.DueDate)
	return Standing{Status: l.Status, DaysRemaining: &rem, Overdue: rem < 0}
}

type CreateLoanRequest struct {
	EmployeeID  int64     `json:"employee_id"`
	EquipmentID int64     `json:"equipment_id"`
	Quantity    int       `json:"quantity"`
	Today       time.Time `json:"today"`
}

type LoanReceipt struct {
	ID       int64     `json:"id"`
	ULID     string    `json:"ulid"`
	LoanDate time.Time `json:"loan_date"`
	DueDate  time.Time `json:"due_date"`
}

type ReturnReceipt struct {
	LoanID      int64     `json:"loan_id"`
	EquipmentID int64     `json:"equipment_id"`
	Quantity    int       `json:"quantity"`
	DueDate     time.Time `json:"due_date"`
	ReturnDate  time.Time `json:"return_date"`
	// return date minus due date; > 0 means returned late
	OverdueDays int  `json:"overdue_days"`
	Overdue     bool `json:"overdue"`
}
