package repository

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"

	"github.com/yasinhessnawi1/Forum_Backend/internal/constants"
)

// uniqueViolation reports whether err is a unique constraint violation and
// returns the constraint (postgres) or key description (mysql) it names.
func uniqueViolation(err error) (string, bool) {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && string(pqErr.Code) == constants.PGErrorDuplicateConstraint {
		return pqErr.Constraint, true
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) && myErr.Number == constants.MySQLErrorDuplicateEntry {
		// "Duplicate entry 'x' for key 'users.idx_users_email'"
		return myErr.Message, true
	}

	return "", false
}

func violates(constraint, column string) bool {
	return strings.Contains(strings.ToLower(constraint), column)
}
