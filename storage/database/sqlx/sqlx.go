// Package sqlxrepos implements the core repositories with jmoiron/sqlx.
// Queries are written with "?" bindvars and rebound for the driver in use (postgres or sqlite).
package sqlxrepos

import (
	"context"
	"database/sql"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/trezcool/chikoro/core"
)

var (
	// errors
	ErrUnknownReference = errors.New("referenced record does not exist")
	ErrDuplicate        = errors.New("record already exists")
)

func get(ctx context.Context, q sqlx.ExtContext, dest interface{}, query string, args ...interface{}) error {
	return sqlx.GetContext(ctx, q, dest, q.Rebind(query), args...)
}

func selectAll(ctx context.Context, q sqlx.ExtContext, dest interface{}, query string, args ...interface{}) error {
	return sqlx.SelectContext(ctx, q, dest, q.Rebind(query), args...)
}

func exec(ctx context.Context, q sqlx.ExtContext, query string, args ...interface{}) (sql.Result, error) {
	return q.ExecContext(ctx, q.Rebind(query), args...)
}

// selectIn expands slice arguments (IN (?)) before running the query.
func selectIn(ctx context.Context, q sqlx.ExtContext, dest interface{}, query string, args ...interface{}) error {
	query, args, err := sqlx.In(query, args...)
	if err != nil {
		return err
	}
	return selectAll(ctx, q, dest, query, args...)
}

// inTx runs fn in a transaction, committed when fn returns nil.
func inTx(ctx context.Context, db *sqlx.DB, fn func(tx *sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "starting transaction")
	}
	if err = fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return errors.Wrap(tx.Commit(), "committing transaction")
}

// trap maps "no rows" to notFound and constraint violations to validation errors.
func trap(err error, notFound error, msg string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sql.ErrNoRows):
		return notFound
	case isViolation(err, "23503", "FOREIGN KEY constraint failed"):
		return core.NewValidationError(ErrUnknownReference)
	case isViolation(err, "23505", "UNIQUE constraint failed"):
		return core.NewValidationError(ErrDuplicate)
	}
	return errors.Wrap(err, msg)
}

// isViolation matches a postgres error code or a sqlite error message.
func isViolation(err error, pgCode, sqliteMsg string) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == pgCode
	}
	return strings.Contains(err.Error(), sqliteMsg)
}

// conditions accumulates the clauses of a WHERE.
type conditions struct {
	clauses []string
	args    []interface{}
}

func (c *conditions) add(clause string, args ...interface{}) {
	c.clauses = append(c.clauses, clause)
	c.args = append(c.args, args...)
}

func (c conditions) where() string {
	if len(c.clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(c.clauses, " AND ")
}

func paginate(query string, page core.Page, args []interface{}) (string, []interface{}) {
	if page.Limit <= 0 {
		return query, args
	}
	return query + " LIMIT ? OFFSET ?", append(args, page.Limit, page.Skip)
}
