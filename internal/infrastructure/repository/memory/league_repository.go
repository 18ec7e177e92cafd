package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/scorelinehq/scoreline/internal/domain/league"
)

type LeagueRepository struct {
	mu      sync.RWMutex
	leagues map[string]league.League
}

func NewLeagueRepository() *LeagueRepository {
	return &LeagueRepository{leagues: make(map[string]league.League)}
}

func (r *LeagueRepository) List(_ context.Context) ([]league.League, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]league.League, 0, len(r.leagues))
	for _, item := range r.leagues {
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Abbreviation < out[j].Abbreviation })

	return out, nil
}

func (r *LeagueRepository) GetByAbbreviation(_ context.Context, abbreviation string) (league.League, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.leagues[abbreviation]
	return item, ok, nil
}

func (r *LeagueRepository) GetOrCreate(_ context.Context, lg league.League) (league.League, bool, error) {
	if err := lg.Validate(); err != nil {
		return league.League{}, false, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.leagues[lg.Abbreviation]; ok {
		return existing, false, nil
	}
	r.leagues[lg.Abbreviation] = lg

	return lg, true, nil
}

func (r *LeagueRepository) Update(_ context.Context, lg league.League) error {
	if err := lg.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.leagues[lg.Abbreviation] = lg
	return nil
}
