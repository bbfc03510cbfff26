package reports

import (
	"io"
	"strconv"

	"github.com/verificacao-programa/controle-epi/internal/platform/csvenc"
	"github.com/verificacao-programa/controle-epi/internal/platform/dates"
)

// Table is a rendered view: the console prints it, export writes it as CSV.
type Table struct {
	Header []string
	Rows   [][]string
}

func (t Table) WriteCSV(w io.Writer, enc csvenc.Encoding) error {
	return csvenc.Write(w, enc, t.Header, t.Rows)
}

func StockTable(lines []StockLine) Table {
	t := Table{Header: []string{"id", "name", "description", "expiration_date", "days_to_expiry", "band", "quantity"}}
	for _, ln := range lines {
		t.Rows = append(t.Rows, []string{
			itoa64(ln.ID),
			ln.Name,
			ln.Description,
			dates.Format(ln.ExpirationDate),
			strconv.Itoa(ln.DaysUntilExpiration),
			string(ln.Band),
			strconv.Itoa(ln.Quantity),
		})
	}
	return t
}

func OnLoanTable(lines []OnLoanLine) Table {
	t := Table{Header: []string{"equipment_id", "name", "quantity_on_loan", "active_loans"}}
	for _, ln := range lines {
		t.Rows = append(t.Rows, []string{itoa64(ln.EquipmentID), ln.Name, strconv.Itoa(ln.Quantity), strconv.Itoa(ln.Loans)})
	}
	return t
}

func LoanTable(lines []LoanLine) Table {
	t := Table{Header: []string{
		"id", "ulid", "employee", "equipment", "quantity",
		"loan_date", "due_date", "return_date", "status", "days_remaining", "days_late", "overdue",
	}}
	for _, ln := range lines {
		var ret string
		if ln.ReturnDate != nil {
			ret = dates.Format(*ln.ReturnDate)
		}
		t.Rows = append(t.Rows, []string{
			itoa64(ln.ID),
			ln.ULID,
			nameOr(ln.EmployeeName, ln.EmployeeID),
			nameOr(ln.EquipmentName, ln.EquipmentID),
			strconv.Itoa(ln.Quantity),
			dates.Format(ln.LoanDate),
			dates.Format(ln.DueDate),
			ret,
			string(ln.Status),
			optInt(ln.Standing.DaysRemaining),
			optInt(ln.Standing.DaysLate),
			strconv.FormatBool(ln.Standing.Overdue),
		})
	}
	return t
}

func itoa64(v int64) string { return strconv.FormatInt(v, 10) }

func optInt(p *int) string {
	if p == nil {
		return ""
	}
	return strconv.Itoa(*p)
}

// nameOr falls back to "#id" when the referenced row is gone.
func nameOr(name string, id int64) string {
	if name == "" {
		return "#" + itoa64(id)
	}
	return name
}
