package model

import "context"

// Transactor runs fn in a single unit of work. Stores called with the
// context passed to fn take part in the same transaction.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}
