package memory

import (
	"context"
	"sync"

	"github.com/riskibarqy/fantasy-hoops/internal/domain/team"
)

// TeamRepository keeps teams in insertion order, which is also the order
// List returns them in.
type TeamRepository struct {
	mu    sync.RWMutex
	teams []team.Team
	index map[string]int
}

func NewTeamRepository(teams []team.Team) *TeamRepository {
	r := &TeamRepository{index: make(map[string]int, len(teams))}
	for _, item := range teams {
		if pos, ok := r.index[item.ID]; ok {
			r.teams[pos] = item
			continue
		}
		r.index[item.ID] = len(r.teams)
		r.teams = append(r.teams, item)
	}
	return r
}

func (r *TeamRepository) List(_ context.Context) ([]team.Team, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]team.Team(nil), r.teams...), nil
}

func (r *TeamRepository) GetByID(_ context.Context, teamID string) (team.Team, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	pos, ok := r.index[teamID]
	if !ok {
		return team.Team{}, false, nil
	}
	return r.teams[pos], true, nil
}
