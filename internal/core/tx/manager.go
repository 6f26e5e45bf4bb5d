// Package tx provides transaction management abstractions.
// Domain services depend on these interfaces; the implementation lives in
// infrastructure/storage/postgres.
package tx

import (
	"context"
)

// Manager runs fn inside a database transaction.
// fn's error rolls the transaction back; nested calls reuse the transaction in ctx.
type Manager interface {
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// ReadOnlyManager extends Manager with read-only transaction support.
type ReadOnlyManager interface {
	Manager

	// ReadOnly executes fn in a read-only transaction.
	ReadOnly(ctx context.Context, fn func(ctx context.Context) error) error

	// Snapshot executes fn in a read-only REPEATABLE READ transaction so every
	// statement fn issues sees the same committed state.
	Snapshot(ctx context.Context, fn func(ctx context.Context) error) error
}
