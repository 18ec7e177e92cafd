package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/scorelinehq/scoreline/internal/domain/team"
)

type TeamRepository struct {
	mu    sync.RWMutex
	teams map[string]team.Team
}

func NewTeamRepository() *TeamRepository {
	return &TeamRepository{teams: make(map[string]team.Team)}
}

func (r *TeamRepository) List(_ context.Context) ([]team.Team, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]team.Team, 0, len(r.teams))
	for _, item := range r.teams {
		out = append(out, item)
	}
	sortTeams(out)

	return out, nil
}

func (r *TeamRepository) ListByLeague(_ context.Context, leagueAbbr string) ([]team.Team, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]team.Team, 0, len(r.teams))
	for _, item := range r.teams {
		if item.LeagueAbbr == leagueAbbr {
			out = append(out, item)
		}
	}
	sortTeams(out)

	return out, nil
}

func (r *TeamRepository) GetByExternalID(_ context.Context, leagueAbbr, externalID string) (team.Team, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.teams[teamKey(leagueAbbr, externalID)]
	return item, ok, nil
}

func (r *TeamRepository) GetOrCreate(_ context.Context, t team.Team) (team.Team, bool, error) {
	if err := t.Validate(); err != nil {
		return team.Team{}, false, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	key := teamKey(t.LeagueAbbr, t.ExternalID)
	if existing, ok := r.teams[key]; ok {
		return existing, false, nil
	}
	r.teams[key] = t

	return t, true, nil
}

func (r *TeamRepository) Upsert(_ context.Context, t team.Team) (bool, error) {
	if err := t.Validate(); err != nil {
		return false, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	key := teamKey(t.LeagueAbbr, t.ExternalID)
	_, exists := r.teams[key]
	r.teams[key] = t

	return !exists, nil
}

func teamKey(leagueAbbr, externalID string) string {
	return leagueAbbr + ":" + externalID
}

func sortTeams(teams []team.Team) {
	sort.Slice(teams, func(i, j int) bool {
		if teams[i].LeagueAbbr != teams[j].LeagueAbbr {
			return teams[i].LeagueAbbr < teams[j].LeagueAbbr
		}
		return teams[i].ExternalID < teams[j].ExternalID
	})
}
