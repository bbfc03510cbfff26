package db

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

const erDupEntry = 1062

// IsDuplicateKey reports whether err is a UNIQUE index violation.
func IsDuplicateKey(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == erDupEntry
}
