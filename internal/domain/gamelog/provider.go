package gamelog

import "context"

// Provider fetches a player's per-game scoring rows for one season.
type Provider interface {
	Name() string
	FetchGameLog(ctx context.Context, playerID, season string) ([]RawEntry, error)
}

// Loader resolves normalized logs for a set of players. Failed players come
// back with an empty log and are listed in the returned failures.
type Loader interface {
	LoadMany(ctx context.Context, playerIDs []string) (map[string]Log, []Failure)
}

// Failure records why a player's log could not be loaded.
type Failure struct {
	PlayerID string
	Reason   string
}
