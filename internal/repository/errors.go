// Package repository defines error types that are reused across multiple
// repositories.  These sentinel values allow higher layers to tell
// failure scenarios apart without inspecting driver errors.
package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

// ErrEntryNotFound is returned when no entry matches the owner and key.
var ErrEntryNotFound = errors.New("entry not found")

// ErrUserNotFound is returned when no user matches the lookup.
var ErrUserNotFound = errors.New("user not found")

// ErrConflict is returned when a write violates a unique key, such as a
// second entry for the same owner and day.  Handlers translate this into
// an HTTP 409 response.
var ErrConflict = errors.New("conflict")

// ErrUsernameExists is returned when registering a taken username.
var ErrUsernameExists = errors.New("username already exists")

// mysqlDuplicateKey is ER_DUP_ENTRY.
const mysqlDuplicateKey = 1062

func isDuplicateKey(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == mysqlDuplicateKey
}
