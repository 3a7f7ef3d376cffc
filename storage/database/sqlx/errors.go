package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/jackc/pgerrcode"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
)

// pgCode returns the SQLSTATE code of a postgres error, or "".
func pgCode(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code)
	}
	return ""
}

func isUniqueViolation(err error) bool {
	return pgCode(err) == pgerrcode.UniqueViolation
}

func isForeignKeyViolation(err error) bool {
	return pgCode(err) == pgerrcode.ForeignKeyViolation
}

// isBadInput reports malformed input rejected by postgres, e.g. an invalid uuid.
func isBadInput(err error) bool {
	return pgCode(err) == pgerrcode.InvalidTextRepresentation
}

// trapNoRowsErr maps psql "no rows" (and malformed keys) to notFound.
func trapNoRowsErr(err error, notFound error, msg string) error {
	if errors.Cause(err) == sql.ErrNoRows || isBadInput(err) {
		return notFound
	}
	return errors.Wrap(err, msg)
}

// transact runs fn inside a transaction, committed when fn succeeds.
func transact(ctx context.Context, db *sqlx.DB, fn func(tx *sqlx.Tx) error) (err error) {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "beginning transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}
	return errors.Wrap(tx.Commit(), "committing transaction")
}
