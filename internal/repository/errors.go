// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios. For
// example, ErrForbidden indicates that the current user is not
// authorized to perform an operation on a resource owned by
// someone else. Not-found conditions are reported as sql.ErrNoRows
// so callers can tell "no record" apart from a record that merely
// carries a false flag.
package repository

import (
	"errors"
	"strings"
)

// ErrForbidden is returned when the caller attempts an operation
// on a resource they do not own. Handlers should translate this
// into an HTTP 403 response.
var ErrForbidden = errors.New("forbidden")

// ErrNameExists is returned when creating or renaming a medication
// would collide with another medication of the same user. Handlers
// should translate this into an HTTP 409 response.
var ErrNameExists = errors.New("medication name already exists")

// isDuplicateKey reports whether the driver error is a MySQL 1062
// duplicate-entry violation. The go-sql-driver error text always
// carries the numeric code.
func isDuplicateKey(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "1062")
}
