package ownership

import "context"

// Repository exposes the read-only trade log and roster snapshot.
type Repository interface {
	ListTransactions(ctx context.Context) ([]Transaction, error)
	ListRoster(ctx context.Context) ([]RosterRow, error)
}
