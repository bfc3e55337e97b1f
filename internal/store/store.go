// Package store contains the persistence layer. All mutations are atomic
// create-or-transition operations keyed by a stable id; stage transitions use
// compare-and-swap predicates so concurrent writers cannot both succeed.
package store

import (
	"context"
	"database/sql"
	"errors"
)

// ErrConflict is returned when a compare-and-swap transition lost to a
// concurrent writer. The caller must re-fetch state and retry.
var ErrConflict = errors.New("conflicting concurrent update")

// ErrAlreadyActioned is returned when a scan event's action is already set.
var ErrAlreadyActioned = errors.New("scan event already actioned")

// querier is satisfied by both *sql.DB and *sql.Tx, so single-row operations
// can participate in larger transactions.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}
