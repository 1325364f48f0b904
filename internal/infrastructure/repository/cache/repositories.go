package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/riskibarqy/fantasy-hoops/internal/domain/team"
	basecache "github.com/riskibarqy/fantasy-hoops/internal/platform/cache"
	"github.com/riskibarqy/fantasy-hoops/internal/platform/resilience"
	"github.com/vmihailenco/msgpack/v5"
)

const teamListKey = "team:list"

// TeamRepository serves team reads from a KV store in front of next.
type TeamRepository struct {
	next   team.Repository
	kv     basecache.KV
	ttl    time.Duration
	flight *resilience.SingleFlight[[]byte]
}

func NewTeamRepository(next team.Repository, kv basecache.KV, ttl time.Duration) *TeamRepository {
	return &TeamRepository{
		next:   next,
		kv:     kv,
		ttl:    ttl,
		flight: &resilience.SingleFlight[[]byte]{},
	}
}

type cachedTeam struct {
	ID          string `msgpack:"id"`
	OwnerUserID string `msgpack:"owner"`
	Name        string `msgpack:"name"`
	Budget      int64  `msgpack:"budget"`
}

type cachedTeamByID struct {
	Exists bool       `msgpack:"exists"`
	Team   cachedTeam `msgpack:"team"`
}

func (r *TeamRepository) List(ctx context.Context) ([]team.Team, error) {
	payload, err := basecache.GetOrLoad(ctx, r.kv, r.flight, teamListKey, r.ttl, func(ctx context.Context) ([]byte, error) {
		items, err := r.next.List(ctx)
		if err != nil {
			return nil, err
		}
		rows := make([]cachedTeam, 0, len(items))
		for _, item := range items {
			rows = append(rows, toCachedTeam(item))
		}
		return msgpack.Marshal(rows)
	})
	if err != nil {
		return nil, err
	}

	var rows []cachedTeam
	if err := msgpack.Unmarshal(payload, &rows); err != nil {
		if r.kv != nil {
			_ = r.kv.Delete(ctx, teamListKey)
		}
		return r.next.List(ctx)
	}

	out := make([]team.Team, 0, len(rows))
	for _, row := range rows {
		out = append(out, fromCachedTeam(row))
	}
	return out, nil
}

func (r *TeamRepository) GetByID(ctx context.Context, teamID string) (team.Team, bool, error) {
	key := "team:id:" + teamID
	payload, err := basecache.GetOrLoad(ctx, r.kv, r.flight, key, r.ttl, func(ctx context.Context) ([]byte, error) {
		item, exists, err := r.next.GetByID(ctx, teamID)
		if err != nil {
			return nil, err
		}
		return msgpack.Marshal(cachedTeamByID{Exists: exists, Team: toCachedTeam(item)})
	})
	if err != nil {
		return team.Team{}, false, err
	}

	var cached cachedTeamByID
	if err := msgpack.Unmarshal(payload, &cached); err != nil {
		if r.kv != nil {
			_ = r.kv.Delete(ctx, key)
		}
		return r.next.GetByID(ctx, teamID)
	}
	return fromCachedTeam(cached.Team), cached.Exists, nil
}

// Invalidate drops the cached list and the given team ids.
func (r *TeamRepository) Invalidate(ctx context.Context, teamIDs ...string) error {
	if r.kv == nil {
		return nil
	}
	if err := r.kv.Delete(ctx, teamListKey); err != nil {
		return fmt.Errorf("invalidate team list: %w", err)
	}
	for _, teamID := range teamIDs {
		if err := r.kv.Delete(ctx, "team:id:"+teamID); err != nil {
			return fmt.Errorf("invalidate team %s: %w", teamID, err)
		}
	}
	return nil
}

func toCachedTeam(item team.Team) cachedTeam {
	return cachedTeam{
		ID:          item.ID,
		OwnerUserID: item.OwnerUserID,
		Name:        item.Name,
		Budget:      item.Budget,
	}
}

func fromCachedTeam(row cachedTeam) team.Team {
	return team.Team{
		ID:          row.ID,
		OwnerUserID: row.OwnerUserID,
		Name:        row.Name,
		Budget:      row.Budget,
	}
}
