package repositories

import (
	"context"
)

// UnitOfWork defines the interface for atomic operations
type UnitOfWork interface {
	// Do executes the given function within a transaction scope
	Do(ctx context.Context, fn func(ctx context.Context) error) error
	// WithLock marks ctx so that repository reads inside the transaction
	// take row locks (SELECT ... FOR UPDATE)
	WithLock(ctx context.Context) context.Context
}

// TeamLocker serializes mutations on one key (a team or participant) across
// processes. The returned func releases the lock.
type TeamLocker interface {
	Lock(ctx context.Context, key string) (func(), error)
}
