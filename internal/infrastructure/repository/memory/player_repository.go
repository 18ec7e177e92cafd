package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/scorelinehq/scoreline/internal/domain/player"
)

type PlayerRepository struct {
	mu      sync.RWMutex
	players map[string]player.Player
}

func NewPlayerRepository() *PlayerRepository {
	return &PlayerRepository{players: make(map[string]player.Player)}
}

func (r *PlayerRepository) GetByExternalID(_ context.Context, leagueAbbr, externalID string) (player.Player, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.players[playerKey(leagueAbbr, externalID)]
	return item, ok, nil
}

func (r *PlayerRepository) Upsert(_ context.Context, p player.Player) (bool, error) {
	if err := p.Validate(); err != nil {
		return false, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	key := playerKey(p.LeagueAbbr, p.ExternalID)
	_, exists := r.players[key]
	r.players[key] = p

	return !exists, nil
}

func (r *PlayerRepository) ListByTeam(_ context.Context, leagueAbbr, teamExternalID string) ([]player.Player, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []player.Player
	for _, item := range r.players {
		if item.LeagueAbbr == leagueAbbr && item.TeamExternalID == teamExternalID {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ExternalID < out[j].ExternalID })

	return out, nil
}

func playerKey(leagueAbbr, externalID string) string {
	return leagueAbbr + ":" + externalID
}
