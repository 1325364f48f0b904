package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/riskibarqy/fantasy-hoops/internal/domain/ownership"
)

type OwnershipRepository struct {
	mu           sync.RWMutex
	transactions []ownership.Transaction
	roster       []ownership.RosterRow
}

func NewOwnershipRepository(transactions []ownership.Transaction, roster []ownership.RosterRow) *OwnershipRepository {
	return &OwnershipRepository{
		transactions: append([]ownership.Transaction(nil), transactions...),
		roster:       append([]ownership.RosterRow(nil), roster...),
	}
}

func (r *OwnershipRepository) ListTransactions(_ context.Context) ([]ownership.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := append([]ownership.Transaction(nil), r.transactions...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r *OwnershipRepository) ListRoster(_ context.Context) ([]ownership.RosterRow, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]ownership.RosterRow(nil), r.roster...), nil
}
