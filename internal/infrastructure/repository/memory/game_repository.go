package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/scorelinehq/scoreline/internal/domain/game"
)

type GameRepository struct {
	mu           sync.RWMutex
	games        map[string]game.Game
	periodScores map[string][]game.PeriodScore
}

func NewGameRepository() *GameRepository {
	return &GameRepository{
		games:        make(map[string]game.Game),
		periodScores: make(map[string][]game.PeriodScore),
	}
}

func (r *GameRepository) GetByExternalID(_ context.Context, externalID string) (game.Game, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.games[externalID]
	return item, ok, nil
}

func (r *GameRepository) Upsert(_ context.Context, g game.Game, periodScores []game.PeriodScore) (bool, error) {
	if err := g.Validate(); err != nil {
		return false, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	_, exists := r.games[g.ExternalID]
	r.games[g.ExternalID] = g
	if len(periodScores) > 0 {
		out := make([]game.PeriodScore, len(periodScores))
		copy(out, periodScores)
		sort.Slice(out, func(i, j int) bool { return out[i].Period < out[j].Period })
		r.periodScores[g.ExternalID] = out
	}

	return !exists, nil
}

func (r *GameRepository) ListPeriodScores(_ context.Context, gameExternalID string) ([]game.PeriodScore, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	scores := r.periodScores[gameExternalID]
	out := make([]game.PeriodScore, len(scores))
	copy(out, scores)

	return out, nil
}

func (r *GameRepository) ListByLeagueAndDate(_ context.Context, leagueAbbr string, date time.Time) ([]game.Game, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	date = date.UTC()
	var out []game.Game
	for _, item := range r.games {
		if item.LeagueAbbr != leagueAbbr {
			continue
		}
		if item.GameDate.Year() == date.Year() && item.GameDate.YearDay() == date.YearDay() {
			out = append(out, item)
		}
	}
	sortGames(out)

	return out, nil
}

func (r *GameRepository) ListByStatus(_ context.Context, status game.Status) ([]game.Game, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []game.Game
	for _, item := range r.games {
		if item.Status == status {
			out = append(out, item)
		}
	}
	sortGames(out)

	return out, nil
}

func sortGames(games []game.Game) {
	sort.Slice(games, func(i, j int) bool { return games[i].ExternalID < games[j].ExternalID })
}
