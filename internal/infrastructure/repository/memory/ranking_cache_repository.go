package memory

import (
	"context"
	"sync"

	"github.com/riskibarqy/fantasy-hoops/internal/domain/ranking"
)

type RankingCacheRepository struct {
	mu      sync.RWMutex
	entries []ranking.CacheEntry
}

func NewRankingCacheRepository() *RankingCacheRepository {
	return &RankingCacheRepository{}
}

func (r *RankingCacheRepository) ListEntries(_ context.Context) ([]ranking.CacheEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]ranking.CacheEntry, 0, len(r.entries))
	for _, entry := range r.entries {
		out = append(out, entry.Clone())
	}
	return out, nil
}

// SaveEntries keeps one entry per (user, team), the last one wins.
func (r *RankingCacheRepository) SaveEntries(_ context.Context, entries []ranking.CacheEntry) error {
	type key struct{ userID, teamID string }

	index := make(map[key]int, len(entries))
	next := make([]ranking.CacheEntry, 0, len(entries))
	for _, entry := range entries {
		stored := entry.Clone()
		k := key{userID: entry.Ranking.UserID, teamID: entry.Ranking.TeamID}
		if i, ok := index[k]; ok {
			next[i] = stored
			continue
		}
		index[k] = len(next)
		next = append(next, stored)
	}

	r.mu.Lock()
	r.entries = next
	r.mu.Unlock()
	return nil
}
