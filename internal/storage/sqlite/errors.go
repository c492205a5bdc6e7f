package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/planvote/planvote/internal/storage"
)

// wrapDBError wraps a database error with operation context. It
// converts sql.ErrNoRows to storage.ErrNotFound and unique-constraint
// violations to storage.ErrDuplicate for consistent error handling.
func wrapDBError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}
	if isUniqueViolation(err) {
		return fmt.Errorf("%s: %w", op, storage.ErrDuplicate)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// isUniqueViolation detects SQLite unique/primary-key constraint
// failures. The driver reports them as text, not typed errors.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "constraint failed: UNIQUE")
}
