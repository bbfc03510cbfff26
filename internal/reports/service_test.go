package reports

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verificacao-programa/controle-epi/internal/loans"
	"github.com/verificacao-programa/controle-epi/internal/platform/apperr"
	"github.com/verificacao-programa/controle-epi/internal/platform/config"
	"github.com/verificacao-programa/controle-epi/internal/platform/csvenc"
)

var (
	itemCols = []string{"id", "name", "description", "expiration_date", "quantity"}
	loanCols = []string{"id", "loan_ulid", "employee_id", "equipment_id", "quantity",
		"loan_date", "due_date", "return_date", "status", "employee_name", "equipment_name"}
)

func day(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }

func newMock(t *testing.T) (*Service, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		conn.Close()
	})
	return NewService(conn, config.Default().Loan), mock
}

func TestBandOf(t *testing.T) {
	today := day(2024, 6, 1)
	assert.Equal(t, BandExpired, BandOf(today.AddDate(0, 0, -1), today, 30))
	assert.Equal(t, BandExpiringSoon, BandOf(today, today, 30))
	assert.Equal(t, BandExpiringSoon, BandOf(today.AddDate(0, 0, 29), today, 30))
	assert.Equal(t, BandValid, BandOf(today.AddDate(0, 0, 30), today, 30))
	assert.Equal(t, BandValid, BandOf(today.AddDate(0, 0, 400), today, 30))
}

func TestAvailableStockBands(t *testing.T) {
	svc, mock := newMock(t)
	today := day(2024, 6, 1)

	mock.ExpectBegin()
	mock.ExpectQuery("WHERE quantity > 0 ORDER BY name").
		WillReturnRows(sqlmock.NewRows(itemCols).
			AddRow(1, "Boot", "", day(2024, 5, 20), 4).
			AddRow(2, "Glove", "", day(2024, 6, 11), 9).
			AddRow(3, "Helmet", "", day(2025, 7, 6), 7))
	mock.ExpectCommit()

	lines, err := svc.AvailableStock(context.Background(), today)
	require.NoError(t, err)
	require.Len(t, lines, 3)
	assert.Equal(t, BandExpired, lines[0].Band)
	assert.Equal(t, -12, lines[0].DaysUntilExpiration)
	assert.Equal(t, BandExpiringSoon, lines[1].Band)
	assert.Equal(t, 10, lines[1].DaysUntilExpiration)
	assert.Equal(t, BandValid, lines[2].Band)
}

func TestExpiringSoonWindowIsInclusive(t *testing.T) {
	svc, mock := newMock(t)
	today := day(2024, 6, 1)

	mock.ExpectBegin()
	mock.ExpectQuery("WHERE expiration_date BETWEEN \\? AND \\?").WithArgs(today, day(2024, 7, 1)).
		WillReturnRows(sqlmock.NewRows(itemCols).AddRow(2, "Glove", "", day(2024, 7, 1), 9))
	mock.ExpectCommit()

	lines, err := svc.ExpiringSoon(context.Background(), today.Add(20*time.Hour))
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, 30, lines[0].DaysUntilExpiration)
}

func TestDueSoon(t *testing.T) {
	svc, mock := newMock(t)
	today := day(2024, 6, 1)

	mock.ExpectBegin()
	mock.ExpectQuery("WHERE l.status = \\? AND l.due_date BETWEEN \\? AND \\?").
		WithArgs("Active", today, day(2024, 6, 8)).
		WillReturnRows(sqlmock.NewRows(loanCols).
			AddRow(5, "01HZY3K6S0D9W9Q4X1B7N5M2TA", 1, 2, 1, day(2024, 5, 3), day(2024, 6, 2), nil, "Active", "Ana", "Glove"))
	mock.ExpectCommit()

	lines, err := svc.DueSoon(context.Background(), today)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	require.NotNil(t, lines[0].Standing.DaysRemaining)
	assert.Equal(t, 1, *lines[0].Standing.DaysRemaining)
	assert.Equal(t, "Ana", lines[0].EmployeeName)
}

func TestActiveLoansOrderedByDueDate(t *testing.T) {
	svc, mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectQuery("WHERE l.status = \\? ORDER BY l.due_date").WithArgs("Active").
		WillReturnRows(sqlmock.NewRows(loanCols))
	mock.ExpectCommit()

	lines, err := svc.ActiveLoans(context.Background(), day(2024, 6, 1))
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func TestEmployeeHistoryAnnotatesLateReturn(t *testing.T) {
	svc, mock := newMock(t)
	today := day(2024, 3, 1)

	mock.ExpectBegin()
	mock.ExpectQuery("WHERE l.employee_id = \\? ORDER BY l.loan_date DESC").WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows(loanCols).
			AddRow(9, "01HZY3K6S0D9W9Q4X1B7N5M2TB", 1, 2, 1, day(2024, 2, 20), day(2024, 3, 21), nil, "Active", "Ana", "").
			AddRow(4, "01HZY3K6S0D9W9Q4X1B7N5M2TA", 1, 2, 3, day(2024, 1, 1), day(2024, 1, 31), day(2024, 2, 5), "Returned", "Ana", ""))
	mock.ExpectCommit()

	lines, err := svc.EmployeeHistory(context.Background(), 1, today)
	require.NoError(t, err)
	require.Len(t, lines, 2)

	assert.Equal(t, loans.StatusActive, lines[0].Status)
	assert.Equal(t, 20, *lines[0].Standing.DaysRemaining)
	assert.Equal(t, 5, *lines[1].Standing.DaysLate)
	assert.True(t, lines[1].Standing.Overdue)

	tbl := LoanTable(lines)
	assert.Equal(t, "#2", tbl.Rows[1][3])
	assert.Equal(t, "2024-02-05", tbl.Rows[1][7])
	assert.Equal(t, "5", tbl.Rows[1][10])
}

func TestEquipmentHistoryUnknownItem(t *testing.T) {
	svc, mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectQuery("WHERE l.equipment_id = \\?").WithArgs(int64(77)).
		WillReturnRows(sqlmock.NewRows(loanCols))
	mock.ExpectQuery("SELECT EXISTS\\(SELECT 1 FROM equipment").WithArgs(int64(77)).
		WillReturnRows(sqlmock.NewRows([]string{"ok"}).AddRow(false))
	mock.ExpectRollback()

	_, err := svc.EquipmentHistory(context.Background(), 77, day(2024, 3, 1))
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestEquipmentHistoryWithoutLoans(t *testing.T) {
	svc, mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectQuery("WHERE l.equipment_id = \\?").WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows(loanCols))
	mock.ExpectQuery("SELECT EXISTS\\(SELECT 1 FROM equipment").WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"ok"}).AddRow(true))
	mock.ExpectCommit()

	lines, err := svc.EquipmentHistory(context.Background(), 3, day(2024, 3, 1))
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func TestEmployeeHistoryAfterEmployeeRemoved(t *testing.T) {
	svc, mock := newMock(t)
	today := day(2024, 3, 1)

	mock.ExpectBegin()
	mock.ExpectQuery("WHERE l.employee_id = \\? ORDER BY l.loan_date DESC").WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows(loanCols).
			AddRow(4, "01HZY3K6S0D9W9Q4X1B7N5M2TA", 5, 2, 1, day(2024, 1, 1), day(2024, 1, 31), day(2024, 1, 20), "Returned", "", "Glove"))
	mock.ExpectCommit()

	lines, err := svc.EmployeeHistory(context.Background(), 5, today)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, loans.StatusReturned, lines[0].Status)
	assert.Equal(t, -11, *lines[0].Standing.DaysLate)
	assert.False(t, lines[0].Standing.Overdue)
	assert.Equal(t, "#5", LoanTable(lines).Rows[0][2])
}

func TestLoansNewestFirst(t *testing.T) {
	svc, mock := newMock(t)
	today := day(2024, 6, 1)

	mock.ExpectBegin()
	mock.ExpectQuery("ORDER BY l.loan_date DESC, l.id DESC").
		WillReturnRows(sqlmock.NewRows(loanCols).
			AddRow(8, "01HZY3K6S0D9W9Q4X1B7N5M2TC", 1, 2, 2, day(2024, 5, 1), day(2024, 5, 31), nil, "Active", "Ana", "Glove").
			AddRow(3, "01HZY3K6S0D9W9Q4X1B7N5M2TA", 1, 3, 1, day(2024, 4, 1), day(2024, 5, 1), day(2024, 5, 3), "Returned", "Ana", "Helmet"))
	mock.ExpectCommit()

	lines, err := svc.Loans(context.Background(), today)
	require.NoError(t, err)
	require.Len(t, lines, 2)

	assert.Equal(t, int64(8), lines[0].ID)
	require.NotNil(t, lines[0].Standing.DaysRemaining)
	assert.Equal(t, -1, *lines[0].Standing.DaysRemaining)
	assert.True(t, lines[0].Standing.Overdue)
	assert.Nil(t, lines[0].Standing.DaysLate)

	require.NotNil(t, lines[1].Standing.DaysLate)
	assert.Equal(t, 2, *lines[1].Standing.DaysLate)
	assert.True(t, lines[1].Standing.Overdue)
	assert.Nil(t, lines[1].Standing.DaysRemaining)
}

func TestOnLoanAndExport(t *testing.T) {
	svc, mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectQuery("SUM\\(l.quantity\\)").WithArgs("Active").
		WillReturnRows(sqlmock.NewRows([]string{"equipment_id", "name", "sum", "count"}).
			AddRow(2, "Óculos de proteção", 5, 2))
	mock.ExpectCommit()

	lines, err := svc.OnLoan(context.Background())
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, 5, lines[0].Quantity)

	var b bytes.Buffer
	require.NoError(t, OnLoanTable(lines).WriteCSV(&b, csvenc.Windows1252))
	assert.Equal(t, "equipment_id,name,quantity_on_loan,active_loans\n2,\xd3culos de prote\xe7\xe3o,5,2\n", b.String())
}
