package employees

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verificacao-programa/controle-epi/internal/platform/apperr"
)

var cols = []string{"id", "name", "national_id", "role", "department"}

func newMock(t *testing.T) (*Service, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		conn.Close()
	})
	return NewService(conn), mock
}

func TestRegister(t *testing.T) {
	svc, mock := newMock(t)
	mock.ExpectQuery("WHERE national_id = \\?").WithArgs("12345678901").WillReturnError(sql.ErrNoRows)
	mock.ExpectExec("INSERT INTO employee").
		WithArgs("Maria Souza", "12345678901", "Welder", "Plant 2").
		WillReturnResult(sqlmock.NewResult(11, 1))

	id, err := svc.Register(context.Background(), RegisterRequest{
		Name: "Maria Souza", NationalID: " 12345678901 ", Role: "Welder", Department: "Plant 2",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(11), id)
}

func TestRegisterRejectsMalformedNationalID(t *testing.T) {
	svc, _ := newMock(t)
	for _, nid := range []string{"", "1234567890", "123.456.789-01", "abcdefghijk"} {
		_, err := svc.Register(context.Background(), RegisterRequest{Name: "Ana", NationalID: nid})
		assert.ErrorIs(t, err, apperr.ErrInvalid, "nid=%q", nid)
	}
}

func TestRegisterDuplicateNationalID(t *testing.T) {
	svc, mock := newMock(t)
	mock.ExpectQuery("WHERE national_id = \\?").WithArgs("12345678901").
		WillReturnRows(sqlmock.NewRows(cols).AddRow(2, "Ana", "12345678901", "", ""))

	_, err := svc.Register(context.Background(), RegisterRequest{Name: "Other", NationalID: "12345678901"})
	assert.ErrorIs(t, err, apperr.ErrConflict)
}

func TestRegisterDuplicateRaceHitsUniqueIndex(t *testing.T) {
	svc, mock := newMock(t)
	mock.ExpectQuery("WHERE national_id = \\?").WillReturnError(sql.ErrNoRows)
	mock.ExpectExec("INSERT INTO employee").
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})

	_, err := svc.Register(context.Background(), RegisterRequest{Name: "Ana", NationalID: "12345678901"})
	assert.ErrorIs(t, err, apperr.ErrConflict)
}

func TestUpdatePartial(t *testing.T) {
	svc, mock := newMock(t)
	dept := "Warehouse"

	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows(cols).AddRow(5, "Ana", "12345678901", "Operator", "Plant 1"))
	mock.ExpectExec("UPDATE employee SET").WithArgs(nil, nil, nil, "Warehouse", int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("FROM employee WHERE id = \\?").WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows(cols).AddRow(5, "Ana", "12345678901", "Operator", "Warehouse"))
	mock.ExpectCommit()

	e, err := svc.Update(context.Background(), 5, UpdateRequest{Department: &dept})
	require.NoError(t, err)
	assert.Equal(t, "Warehouse", e.Department)
	assert.Equal(t, "Operator", e.Role)
}

func TestUpdateNotFound(t *testing.T) {
	svc, mock := newMock(t)
	role := "Lead"
	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").WithArgs(int64(8)).WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	_, err := svc.Update(context.Background(), 8, UpdateRequest{Role: &role})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestRemove(t *testing.T) {
	cases := []struct {
		name   string
		active bool
		want   error
	}{
		{"blocked by active loan", true, apperr.ErrConflict},
		{"all loans returned", false, nil},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			svc, mock := newMock(t)
			mock.ExpectBegin()
			mock.ExpectQuery("FOR UPDATE").WithArgs(int64(5)).
				WillReturnRows(sqlmock.NewRows(cols).AddRow(5, "Ana", "12345678901", "", ""))
			mock.ExpectQuery("SELECT EXISTS").WithArgs(int64(5)).
				WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(c.active))
			if c.active {
				mock.ExpectRollback()
			} else {
				mock.ExpectExec("DELETE FROM employee").WithArgs(int64(5)).
					WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectCommit()
			}

			err := svc.Remove(context.Background(), 5)
			if c.want == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, c.want)
			}
		})
	}
}

func TestFindByNationalID(t *testing.T) {
	svc, mock := newMock(t)
	mock.ExpectQuery("WHERE national_id = \\?").WithArgs("98765432100").WillReturnError(sql.ErrNoRows)

	_, err := svc.FindByNationalID(context.Background(), "98765432100")
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = svc.FindByNationalID(context.Background(), "987")
	assert.ErrorIs(t, err, apperr.ErrInvalid)
}

func TestListAllStoreFailure(t *testing.T) {
	svc, mock := newMock(t)
	mock.ExpectQuery("ORDER BY name").WillReturnError(errors.New("connection refused"))

	_, err := svc.ListAll(context.Background())
	assert.ErrorIs(t, err, apperr.ErrInternal)
}
