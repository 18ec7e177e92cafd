package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/scorelinehq/scoreline/internal/domain/game"
	"github.com/scorelinehq/scoreline/internal/domain/league"
	"github.com/scorelinehq/scoreline/internal/domain/player"
	"github.com/scorelinehq/scoreline/internal/domain/team"
	"github.com/scorelinehq/scoreline/internal/platform/logging"
)

// GameDatePolicy decides the calendar date stored for a game whose
// scheduled time was parsed from the feed.
type GameDatePolicy int

const (
	// GameDatePreferScheduled stores the parsed scheduled time's own date
	// and falls back to the sync-requested date only when the time is
	// absent or unparseable.
	GameDatePreferScheduled GameDatePolicy = iota
	// GameDateAlwaysRequested always stores the sync-requested date,
	// even when a scheduled time parsed cleanly.
	GameDateAlwaysRequested
)

type SyncConfig struct {
	// RosterWorkers bounds the fan-out of SyncAllRosters. <=0 means 4.
	RosterWorkers  int
	GameDatePolicy GameDatePolicy
}

// SyncCounts is the per-scope reconciliation tally.
type SyncCounts struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
}

func (c *SyncCounts) add(other SyncCounts) {
	c.Created += other.Created
	c.Updated += other.Updated
	c.Skipped += other.Skipped
	c.Failed += other.Failed
}

// UnitError is one failed unit inside a multi-unit sync. The remaining
// units keep processing; callers inspect the aggregated list.
type UnitError struct {
	Stage string `json:"stage"`
	Unit  string `json:"unit"`
	Err   error  `json:"-"`
}

func (e UnitError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Stage, e.Unit, e.Err)
}

func (e UnitError) Unwrap() error { return e.Err }

// MultiSyncResult aggregates a multi-unit sync: per-unit counts keyed
// by unit name, plus the failed units.
type MultiSyncResult struct {
	Units  map[string]SyncCounts `json:"units"`
	Errors []UnitError           `json:"errors,omitempty"`
}

func newMultiSyncResult() MultiSyncResult {
	return MultiSyncResult{Units: map[string]SyncCounts{}}
}

// Total folds every unit's counts into one tally.
func (r MultiSyncResult) Total() SyncCounts {
	var total SyncCounts
	for _, c := range r.Units {
		total.add(c)
	}
	return total
}

// SyncService reconciles upstream snapshots into local storage. Every
// operation is idempotent: re-running against the same snapshot
// converges to the same stored state.
type SyncService struct {
	provider   SportsDataProvider
	leagueRepo league.Repository
	teamRepo   team.Repository
	gameRepo   game.Repository
	playerRepo player.Repository
	cfg        SyncConfig
	logger     *logging.Logger
	now        func() time.Time
}

func NewSyncService(
	provider SportsDataProvider,
	leagueRepo league.Repository,
	teamRepo team.Repository,
	gameRepo game.Repository,
	playerRepo player.Repository,
	cfg SyncConfig,
	logger *logging.Logger,
) *SyncService {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.RosterWorkers <= 0 {
		cfg.RosterWorkers = 4
	}

	return &SyncService{
		provider:   provider,
		leagueRepo: leagueRepo,
		teamRepo:   teamRepo,
		gameRepo:   gameRepo,
		playerRepo: playerRepo,
		cfg:        cfg,
		logger:     logger,
		now:        time.Now,
	}
}

// SyncLeagues bootstraps the static league list. Safe to run on every
// startup.
func (s *SyncService) SyncLeagues(ctx context.Context) (SyncCounts, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SyncService.SyncLeagues")
	defer span.End()

	var counts SyncCounts
	for _, lg := range league.Known() {
		existing, created, err := s.leagueRepo.GetOrCreate(ctx, lg)
		if err != nil {
			return counts, fmt.Errorf("get or create league %s: %w", lg.Abbreviation, err)
		}
		if created {
			counts.Created++
			continue
		}
		if existing.Name != lg.Name || existing.SportType != lg.SportType {
			if err := s.leagueRepo.Update(ctx, lg); err != nil {
				return counts, fmt.Errorf("update league %s: %w", lg.Abbreviation, err)
			}
			counts.Updated++
			continue
		}
		counts.Skipped++
	}

	s.logger.InfoContext(ctx, "league sync complete",
		"created", counts.Created, "updated", counts.Updated)
	return counts, nil
}

// SyncTeams fully refreshes one league's team list, record stats
// included. Last write wins per team.
func (s *SyncService) SyncTeams(ctx context.Context, leagueAbbr string) (SyncCounts, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SyncService.SyncTeams")
	defer span.End()

	var counts SyncCounts
	lg, err := s.requireLeague(ctx, leagueAbbr)
	if err != nil {
		return counts, err
	}

	teams, err := s.provider.FetchTeams(ctx, lg.Abbreviation)
	if err != nil {
		return counts, fmt.Errorf("fetch teams league=%s: %w", lg.Abbreviation, err)
	}

	for _, ext := range teams {
		created, err := s.teamRepo.Upsert(ctx, buildTeam(lg.Abbreviation, ext))
		if err != nil {
			counts.Failed++
			s.logger.ErrorContext(ctx, "upsert team failed",
				"league", lg.Abbreviation, "team_external_id", ext.ExternalID, "error", err)
			continue
		}
		if created {
			counts.Created++
		} else {
			counts.Updated++
		}
	}

	s.logger.InfoContext(ctx, "team sync complete",
		"league", lg.Abbreviation,
		"created", counts.Created, "updated", counts.Updated, "failed", counts.Failed)
	return counts, nil
}

// SyncGames reconciles one league's scoreboard for one date. Teams
// referenced by a game that are not yet stored are created as
// placeholders; an existing team row is never downgraded by one.
func (s *SyncService) SyncGames(ctx context.Context, leagueAbbr string, date time.Time) (SyncCounts, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SyncService.SyncGames")
	defer span.End()

	var counts SyncCounts
	lg, err := s.requireLeague(ctx, leagueAbbr)
	if err != nil {
		return counts, err
	}

	games, skips, err := s.provider.FetchScoreboard(ctx, lg.Abbreviation, date)
	if err != nil {
		return counts, fmt.Errorf("fetch scoreboard league=%s date=%s: %w",
			lg.Abbreviation, date.Format("2006-01-02"), err)
	}
	for _, skip := range skips {
		counts.Skipped++
		s.logger.WarnContext(ctx, "scoreboard event skipped",
			"league", lg.Abbreviation, "event_id", skip.EventID, "reason", skip.Reason)
	}

	for _, ext := range games {
		created, err := s.applyGame(ctx, lg.Abbreviation, date, ext)
		if err != nil {
			counts.Failed++
			s.logger.ErrorContext(ctx, "apply game failed",
				"league", lg.Abbreviation, "game_external_id", ext.ExternalID, "error", err)
			continue
		}
		if created {
			counts.Created++
		} else {
			counts.Updated++
		}
	}

	s.logger.InfoContext(ctx, "game sync complete",
		"league", lg.Abbreviation, "date", date.Format("2006-01-02"),
		"created", counts.Created, "updated", counts.Updated,
		"skipped", counts.Skipped, "failed", counts.Failed)
	return counts, nil
}

// SyncTeamSchedule reconciles one team's full schedule. Season <= 0
// means the provider's current season. Schedule events carry their own
// dates, so the fallback date only matters for events with no parseable
// time.
func (s *SyncService) SyncTeamSchedule(ctx context.Context, leagueAbbr, teamExternalID string, season int) (SyncCounts, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SyncService.SyncTeamSchedule")
	defer span.End()

	var counts SyncCounts
	lg, err := s.requireLeague(ctx, leagueAbbr)
	if err != nil {
		return counts, err
	}

	games, skips, err := s.provider.FetchTeamSchedule(ctx, lg.Abbreviation, teamExternalID, season)
	if err != nil {
		return counts, fmt.Errorf("fetch schedule league=%s team=%s: %w", lg.Abbreviation, teamExternalID, err)
	}
	for _, skip := range skips {
		counts.Skipped++
		s.logger.WarnContext(ctx, "schedule event skipped",
			"league", lg.Abbreviation, "team_external_id", teamExternalID,
			"event_id", skip.EventID, "reason", skip.Reason)
	}

	fallback := midnightUTC(s.now())
	for _, ext := range games {
		created, err := s.applyGame(ctx, lg.Abbreviation, fallback, ext)
		if err != nil {
			counts.Failed++
			s.logger.ErrorContext(ctx, "apply scheduled game failed",
				"league", lg.Abbreviation, "game_external_id", ext.ExternalID, "error", err)
			continue
		}
		if created {
			counts.Created++
		} else {
			counts.Updated++
		}
	}

	s.logger.InfoContext(ctx, "team schedule sync complete",
		"league", lg.Abbreviation, "team_external_id", teamExternalID,
		"created", counts.Created, "updated", counts.Updated,
		"skipped", counts.Skipped, "failed", counts.Failed)
	return counts, nil
}

func (s *SyncService) applyGame(ctx context.Context, leagueAbbr string, requested time.Time, ext ExternalGame) (bool, error) {
	homeID, err := s.ensureTeam(ctx, leagueAbbr, ext.HomeTeam)
	if err != nil {
		return false, fmt.Errorf("ensure home team: %w", err)
	}
	awayID, err := s.ensureTeam(ctx, leagueAbbr, ext.AwayTeam)
	if err != nil {
		return false, fmt.Errorf("ensure away team: %w", err)
	}

	g := game.Game{
		ExternalID:         ext.ExternalID,
		LeagueAbbr:         leagueAbbr,
		HomeTeamExternalID: homeID,
		AwayTeamExternalID: awayID,
		GameDate:           s.resolveGameDate(requested, ext.ScheduledTime),
		ScheduledTime:      ext.ScheduledTime,
		Status:             ext.Status,
		HomeScore:          ext.HomeScore,
		AwayScore:          ext.AwayScore,
		Period:             ext.Period,
		TimeRemaining:      ext.TimeRemaining,
		Situation:          ext.Situation,
		BoxScore:           ext.BoxScore,
		VenueName:          ext.VenueName,
		VenueCity:          ext.VenueCity,
		VenueState:         ext.VenueState,
		VenueCapacity:      ext.VenueCapacity,
		Attendance:         ext.Attendance,
		BroadcastNetwork:   ext.BroadcastNetwork,
		Broadcasts:         ext.Broadcasts,
		HomePitcherName:    ext.HomePitcherName,
		AwayPitcherName:    ext.AwayPitcherName,
		HomePitcherStats:   ext.HomePitcherStats,
		AwayPitcherStats:   ext.AwayPitcherStats,
	}
	if err := g.Validate(); err != nil {
		return false, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	periodScores := make([]game.PeriodScore, 0, len(ext.PeriodScores))
	for _, ps := range ext.PeriodScores {
		periodScores = append(periodScores, game.PeriodScore{
			GameExternalID: ext.ExternalID,
			Period:         ps.Period,
			HomeScore:      ps.HomeScore,
			AwayScore:      ps.AwayScore,
		})
	}

	return s.gameRepo.Upsert(ctx, g, periodScores)
}

// ensureTeam creates a placeholder row for a scoreboard team stub when
// none exists. Returns the team external id, empty when the stub has
// none.
func (s *SyncService) ensureTeam(ctx context.Context, leagueAbbr string, stub ExternalTeamStub) (string, error) {
	if stub.ExternalID == "" {
		return "", nil
	}
	_, _, err := s.teamRepo.GetOrCreate(ctx, team.Team{
		ExternalID:   stub.ExternalID,
		LeagueAbbr:   leagueAbbr,
		Name:         stub.Name,
		Abbreviation: stub.Abbreviation,
		LogoURL:      stub.LogoURL,
	})
	if err != nil {
		return "", err
	}
	return stub.ExternalID, nil
}

func (s *SyncService) resolveGameDate(requested time.Time, scheduled *time.Time) time.Time {
	if s.cfg.GameDatePolicy == GameDatePreferScheduled && scheduled != nil {
		return midnightUTC(*scheduled)
	}
	return midnightUTC(requested)
}

func midnightUTC(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// SyncLiveGames refreshes today's scoreboard for every known league.
// One league's failure never stops the rest.
func (s *SyncService) SyncLiveGames(ctx context.Context) (MultiSyncResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SyncService.SyncLiveGames")
	defer span.End()

	today := midnightUTC(s.now())
	return s.syncLeagueDates(ctx, "live", league.Known(), []time.Time{today}), nil
}

// SyncDailySchedule refreshes today's and tomorrow's scoreboards for
// every known league.
func (s *SyncService) SyncDailySchedule(ctx context.Context) (MultiSyncResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SyncService.SyncDailySchedule")
	defer span.End()

	today := midnightUTC(s.now())
	dates := []time.Time{today, today.AddDate(0, 0, 1)}
	return s.syncLeagueDates(ctx, "daily", league.Known(), dates), nil
}

// SyncDateRange backfills one league over an inclusive date span.
func (s *SyncService) SyncDateRange(ctx context.Context, leagueAbbr string, from, to time.Time) (MultiSyncResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SyncService.SyncDateRange")
	defer span.End()

	result := newMultiSyncResult()
	lg, err := s.requireLeague(ctx, leagueAbbr)
	if err != nil {
		return result, err
	}

	from = midnightUTC(from)
	to = midnightUTC(to)
	if to.Before(from) {
		return result, fmt.Errorf("%w: date range end %s before start %s",
			ErrInvalidInput, to.Format("2006-01-02"), from.Format("2006-01-02"))
	}

	var dates []time.Time
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d)
	}
	return s.syncLeagueDates(ctx, "backfill", []league.League{lg}, dates), nil
}

func (s *SyncService) syncLeagueDates(ctx context.Context, stage string, leagues []league.League, dates []time.Time) MultiSyncResult {
	result := newMultiSyncResult()
	for _, lg := range leagues {
		for _, date := range dates {
			unit := fmt.Sprintf("%s:%s", lg.Abbreviation, date.Format("2006-01-02"))
			counts, err := s.SyncGames(ctx, lg.Abbreviation, date)
			result.Units[unit] = counts
			if err != nil {
				result.Errors = append(result.Errors, UnitError{Stage: stage, Unit: unit, Err: err})
			}
		}
	}
	return result
}

// SyncStandings applies one league's standings rows to the teams that
// already exist locally. Unknown teams are counted as skipped, never
// created, because standings carry no placeholder identity beyond the
// external id.
func (s *SyncService) SyncStandings(ctx context.Context, leagueAbbr string) (SyncCounts, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SyncService.SyncStandings")
	defer span.End()

	var counts SyncCounts
	lg, err := s.requireLeague(ctx, leagueAbbr)
	if err != nil {
		return counts, err
	}

	rows, err := s.provider.FetchStandings(ctx, lg.Abbreviation)
	if err != nil {
		return counts, fmt.Errorf("fetch standings league=%s: %w", lg.Abbreviation, err)
	}

	for _, row := range rows {
		existing, found, err := s.teamRepo.GetByExternalID(ctx, lg.Abbreviation, row.TeamExternalID)
		if err != nil {
			counts.Failed++
			s.logger.ErrorContext(ctx, "lookup standings team failed",
				"league", lg.Abbreviation, "team_external_id", row.TeamExternalID, "error", err)
			continue
		}
		if !found {
			counts.Skipped++
			s.logger.WarnContext(ctx, "standings row for unknown team",
				"league", lg.Abbreviation, "team_external_id", row.TeamExternalID, "team_name", row.TeamName)
			continue
		}

		applyRecord(&existing, row.Record)
		if _, err := s.teamRepo.Upsert(ctx, existing); err != nil {
			counts.Failed++
			s.logger.ErrorContext(ctx, "upsert standings team failed",
				"league", lg.Abbreviation, "team_external_id", row.TeamExternalID, "error", err)
			continue
		}
		counts.Updated++
	}

	s.logger.InfoContext(ctx, "standings sync complete",
		"league", lg.Abbreviation,
		"updated", counts.Updated, "skipped", counts.Skipped, "failed", counts.Failed)
	return counts, nil
}

// SyncTeamRoster refreshes one team's record stats and full roster.
// Players reappearing on a different team are reassigned, not
// duplicated.
func (s *SyncService) SyncTeamRoster(ctx context.Context, leagueAbbr, teamExternalID string) (SyncCounts, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SyncService.SyncTeamRoster")
	defer span.End()

	var counts SyncCounts
	lg, err := s.requireLeague(ctx, leagueAbbr)
	if err != nil {
		return counts, err
	}
	if teamExternalID == "" {
		return counts, fmt.Errorf("%w: team external id is required", ErrInvalidInput)
	}

	details, err := s.provider.FetchTeamDetails(ctx, lg.Abbreviation, teamExternalID)
	if err != nil {
		return counts, fmt.Errorf("fetch team details league=%s team=%s: %w",
			lg.Abbreviation, teamExternalID, err)
	}
	existing, found, err := s.teamRepo.GetByExternalID(ctx, lg.Abbreviation, teamExternalID)
	if err != nil {
		return counts, fmt.Errorf("lookup team league=%s team=%s: %w",
			lg.Abbreviation, teamExternalID, err)
	}
	if !found {
		existing = team.Team{ExternalID: teamExternalID, LeagueAbbr: lg.Abbreviation}
	}
	if details.Name != "" {
		existing.Name = details.Name
	}
	if details.Abbreviation != "" {
		existing.Abbreviation = details.Abbreviation
	}
	if details.LogoURL != "" {
		existing.LogoURL = details.LogoURL
	}
	applyRecord(&existing, details.Record)
	if _, err := s.teamRepo.Upsert(ctx, existing); err != nil {
		return counts, fmt.Errorf("upsert team league=%s team=%s: %w",
			lg.Abbreviation, teamExternalID, err)
	}

	players, err := s.provider.FetchTeamRoster(ctx, lg.Abbreviation, teamExternalID)
	if err != nil {
		return counts, fmt.Errorf("fetch roster league=%s team=%s: %w",
			lg.Abbreviation, teamExternalID, err)
	}
	for _, ext := range players {
		created, err := s.playerRepo.Upsert(ctx, buildPlayer(lg.Abbreviation, teamExternalID, ext))
		if err != nil {
			counts.Failed++
			s.logger.ErrorContext(ctx, "upsert player failed",
				"league", lg.Abbreviation, "team_external_id", teamExternalID,
				"player_external_id", ext.ExternalID, "error", err)
			continue
		}
		if created {
			counts.Created++
		} else {
			counts.Updated++
		}
	}

	s.logger.InfoContext(ctx, "roster sync complete",
		"league", lg.Abbreviation, "team_external_id", teamExternalID,
		"created", counts.Created, "updated", counts.Updated, "failed", counts.Failed)
	return counts, nil
}

// SyncAllRosters fans roster syncs for every stored team in the league
// out over a bounded worker pool. Per-team failures are aggregated.
func (s *SyncService) SyncAllRosters(ctx context.Context, leagueAbbr string) (MultiSyncResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SyncService.SyncAllRosters")
	defer span.End()

	result := newMultiSyncResult()
	lg, err := s.requireLeague(ctx, leagueAbbr)
	if err != nil {
		return result, err
	}

	teams, err := s.teamRepo.ListByLeague(ctx, lg.Abbreviation)
	if err != nil {
		return result, fmt.Errorf("list teams league=%s: %w", lg.Abbreviation, err)
	}
	if len(teams) == 0 {
		s.logger.WarnContext(ctx, "no teams stored for roster sync", "league", lg.Abbreviation)
		return result, nil
	}

	type unitOutcome struct {
		unit   string
		counts SyncCounts
		err    error
	}
	outcomes := make(chan unitOutcome, len(teams))

	pool, err := ants.NewPool(s.cfg.RosterWorkers)
	if err != nil {
		return result, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	var workers sync.WaitGroup
	for _, tm := range teams {
		tm := tm
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()
			counts, err := s.SyncTeamRoster(ctx, lg.Abbreviation, tm.ExternalID)
			outcomes <- unitOutcome{
				unit:   fmt.Sprintf("%s:team:%s", lg.Abbreviation, tm.ExternalID),
				counts: counts,
				err:    err,
			}
		}); err != nil {
			workers.Done()
			return result, fmt.Errorf("submit roster task to worker pool: %w", err)
		}
	}

	workers.Wait()
	close(outcomes)

	for out := range outcomes {
		result.Units[out.unit] = out.counts
		if out.err != nil {
			result.Errors = append(result.Errors, UnitError{Stage: "roster", Unit: out.unit, Err: out.err})
		}
	}
	sort.Slice(result.Errors, func(i, j int) bool {
		return result.Errors[i].Unit < result.Errors[j].Unit
	})

	s.logger.InfoContext(ctx, "all rosters sync complete",
		"league", lg.Abbreviation, "teams", len(teams), "failed_units", len(result.Errors))
	return result, nil
}

// requireLeague validates the abbreviation against the supported set
// and makes sure the league row exists.
func (s *SyncService) requireLeague(ctx context.Context, leagueAbbr string) (league.League, error) {
	for _, lg := range league.Known() {
		if lg.Abbreviation == leagueAbbr {
			stored, _, err := s.leagueRepo.GetOrCreate(ctx, lg)
			if err != nil {
				return league.League{}, fmt.Errorf("get or create league %s: %w", leagueAbbr, err)
			}
			return stored, nil
		}
	}
	return league.League{}, fmt.Errorf("%w: %s", ErrUnsupportedLeague, leagueAbbr)
}

func buildTeam(leagueAbbr string, ext ExternalTeam) team.Team {
	t := team.Team{
		ExternalID:   ext.ExternalID,
		LeagueAbbr:   leagueAbbr,
		Name:         ext.Name,
		Abbreviation: ext.Abbreviation,
		LogoURL:      ext.LogoURL,
	}
	applyRecord(&t, ext.Record)
	return t
}

func applyRecord(t *team.Team, rec ExternalRecordStats) {
	t.Wins = rec.Wins
	t.Losses = rec.Losses
	t.Ties = rec.Ties
	t.GamesPlayed = rec.GamesPlayed
	t.PointsFor = rec.PointsFor
	t.PointsAgainst = rec.PointsAgainst
	t.Differential = rec.Differential
	t.DivisionWinPercent = rec.DivisionWinPercent
	t.GamesBehind = rec.GamesBehind
}

func buildPlayer(leagueAbbr, teamExternalID string, ext ExternalPlayer) player.Player {
	return player.Player{
		ExternalID:     ext.ExternalID,
		TeamExternalID: teamExternalID,
		LeagueAbbr:     leagueAbbr,
		FirstName:      ext.FirstName,
		LastName:       ext.LastName,
		FullName:       ext.FullName,
		DisplayName:    ext.DisplayName,
		JerseyNumber:   ext.JerseyNumber,
		Position:       ext.Position,
		PositionAbbr:   ext.PositionAbbr,
		Height:         ext.Height,
		Weight:         ext.Weight,
		Age:            ext.Age,
		HeadshotURL:    ext.HeadshotURL,
		Status:         ext.Status,
	}
}
