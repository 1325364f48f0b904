package ranking

import "context"

// CacheRepository stores the last computed ranking. Saving replaces the
// previous snapshot: entries for keys absent from the new set are removed.
type CacheRepository interface {
	ListEntries(ctx context.Context) ([]CacheEntry, error)
	SaveEntries(ctx context.Context, entries []CacheEntry) error
}
