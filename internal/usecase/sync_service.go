package usecase

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"

	"github.com/matchpulse/sportsync/external/sportmonks"
	"github.com/matchpulse/sportsync/internal/domain/fixture"
	"github.com/matchpulse/sportsync/internal/domain/odds"
	"github.com/matchpulse/sportsync/internal/domain/reference"
	"github.com/matchpulse/sportsync/internal/domain/statline"
	"github.com/matchpulse/sportsync/internal/domain/syncstate"
	"github.com/matchpulse/sportsync/internal/platform/logging"
)

// Provider is the upstream API surface the sync service consumes.
// *sportmonks.Client satisfies it.
type Provider interface {
	ForEachPage(ctx context.Context, path string, opts sportmonks.PageOptions, fn sportmonks.PageFunc) error
	ForEach(ctx context.Context, path string, opts sportmonks.PageOptions, fn func(record sportmonks.Raw) error) error
	FetchSingle(ctx context.Context, path string, opts sportmonks.PageOptions) (sportmonks.Raw, error)
}

// circuitGuard marks failures caused by an open breaker with
// ErrDependencyUnavailable so callers can tell an unavailable upstream
// from a data error.
type circuitGuard struct {
	Provider
}

func (g circuitGuard) ForEachPage(ctx context.Context, path string, opts sportmonks.PageOptions, fn sportmonks.PageFunc) error {
	return markUnavailable(g.Provider.ForEachPage(ctx, path, opts, fn))
}

func (g circuitGuard) ForEach(ctx context.Context, path string, opts sportmonks.PageOptions, fn func(record sportmonks.Raw) error) error {
	return markUnavailable(g.Provider.ForEach(ctx, path, opts, fn))
}

func (g circuitGuard) FetchSingle(ctx context.Context, path string, opts sportmonks.PageOptions) (sportmonks.Raw, error) {
	record, err := g.Provider.FetchSingle(ctx, path, opts)
	return record, markUnavailable(err)
}

func markUnavailable(err error) error {
	if err != nil && crerr.Is(err, sportmonks.ErrCircuitOpen) {
		return crerr.Mark(err, ErrDependencyUnavailable)
	}
	return err
}

const (
	cursorTeams        = "teams_id_after"
	cursorPlayerSeason = "players_id_after_season_%d"

	includeFixtureBase    = "participants;scores"
	includeFixtureDetails = "participants;scores;statistics.type;lineups.player;lineups.details;lineups.details.type"
)

// SyncConfig carries the per-run knobs shared by every stream kind.
type SyncConfig struct {
	LeagueIDs       []int64
	BookmakerID     int64
	MaxDateSpanDays int
}

// KindReport is the per-stream outcome summary. Errored counts records
// or chunks that failed without aborting the run; a fatal stream error
// is returned separately by the sync method.
type KindReport struct {
	Kind     string
	Fetched  int
	Upserted int
	Skipped  int
	Errored  int
	Errors   []string
}

func (r *KindReport) recordError(err error) {
	r.Errored++
	r.Errors = append(r.Errors, err.Error())
}

func (r *KindReport) merge(other KindReport) {
	r.Fetched += other.Fetched
	r.Upserted += other.Upserted
	r.Skipped += other.Skipped
	r.Errored += other.Errored
	r.Errors = append(r.Errors, other.Errors...)
}

// Clean reports a run with no recorded failures. Zero progress with
// zero errors is still clean.
func (r KindReport) Clean() bool { return r.Errored == 0 }

// SyncService ingests provider streams into the store, one page per
// transaction so an interrupted stream resumes at the last committed
// page boundary.
type SyncService struct {
	provider Provider
	refs     reference.Repository
	fixtures fixture.Repository
	stats    statline.Repository
	odds     odds.Repository
	state    syncstate.Repository
	logger   *logging.Logger
	cfg      SyncConfig
}

func NewSyncService(
	provider Provider,
	refs reference.Repository,
	fixtures fixture.Repository,
	stats statline.Repository,
	oddsRepo odds.Repository,
	state syncstate.Repository,
	logger *logging.Logger,
	cfg SyncConfig,
) *SyncService {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.MaxDateSpanDays <= 0 {
		cfg.MaxDateSpanDays = 95
	}
	return &SyncService{
		provider: circuitGuard{provider},
		refs:     refs,
		fixtures: fixtures,
		stats:    stats,
		odds:     oddsRepo,
		state:    state,
		logger:   logger,
		cfg:      cfg,
	}
}

// ---- reference data ----

func (s *SyncService) SyncCountries(ctx context.Context) (KindReport, error) {
	report := KindReport{Kind: "countries"}
	err := s.provider.ForEachPage(ctx, "/countries", sportmonks.PageOptions{}, func(page sportmonks.Page) error {
		batch := make([]reference.Country, 0, len(page.Records))
		for _, record := range page.Records {
			report.Fetched++
			item, err := sportmonks.MapCountry(record)
			if err != nil {
				report.recordError(err)
				continue
			}
			batch = append(batch, item)
		}
		if err := s.refs.UpsertCountries(ctx, batch); err != nil {
			return err
		}
		report.Upserted += len(batch)
		return nil
	})
	s.logStream(ctx, report, err)
	return report, err
}

func (s *SyncService) SyncLeagues(ctx context.Context) (KindReport, error) {
	report := KindReport{Kind: "leagues"}
	err := s.provider.ForEachPage(ctx, "/leagues", sportmonks.PageOptions{Includes: "country"}, func(page sportmonks.Page) error {
		batch := make([]reference.League, 0, len(page.Records))
		for _, record := range page.Records {
			report.Fetched++
			item, err := sportmonks.MapLeague(record)
			if err != nil {
				report.recordError(err)
				continue
			}
			batch = append(batch, item)
		}
		if err := s.refs.UpsertLeagues(ctx, batch); err != nil {
			return err
		}
		report.Upserted += len(batch)
		return nil
	})
	s.logStream(ctx, report, err)
	return report, err
}

func (s *SyncService) SyncSeasons(ctx context.Context) (KindReport, error) {
	report := KindReport{Kind: "seasons"}
	err := s.provider.ForEachPage(ctx, "/seasons", sportmonks.PageOptions{Includes: "league"}, func(page sportmonks.Page) error {
		batch := make([]reference.Season, 0, len(page.Records))
		for _, record := range page.Records {
			report.Fetched++
			item, err := sportmonks.MapSeason(record)
			if err != nil {
				report.recordError(err)
				continue
			}
			batch = append(batch, item)
		}
		if err := s.refs.UpsertSeasons(ctx, batch); err != nil {
			return err
		}
		report.Upserted += len(batch)
		return nil
	})
	s.logStream(ctx, report, err)
	return report, err
}

// SyncStatTypes is fail-soft: some provider plans lack the endpoint,
// so a provider failure is recorded in the report but never returned.
func (s *SyncService) SyncStatTypes(ctx context.Context) (KindReport, error) {
	report := KindReport{Kind: "types"}
	err := s.provider.ForEachPage(ctx, "/types", sportmonks.PageOptions{PerPage: 500}, func(page sportmonks.Page) error {
		batch := make([]reference.StatType, 0, len(page.Records))
		for _, record := range page.Records {
			report.Fetched++
			item, err := sportmonks.MapStatType(record)
			if err != nil {
				report.recordError(err)
				continue
			}
			batch = append(batch, item)
		}
		if err := s.refs.UpsertStatTypes(ctx, batch); err != nil {
			return err
		}
		report.Upserted += len(batch)
		return nil
	})
	if err != nil {
		report.recordError(err)
		s.logger.WarnContext(ctx, "stat types sync failed, ignoring", "error", err.Error())
	}
	s.logStream(ctx, report, nil)
	return report, nil
}

func (s *SyncService) SyncVenues(ctx context.Context) (KindReport, error) {
	report := KindReport{Kind: "venues"}
	err := s.provider.ForEachPage(ctx, "/venues", sportmonks.PageOptions{}, func(page sportmonks.Page) error {
		batch := make([]reference.Venue, 0, len(page.Records))
		for _, record := range page.Records {
			report.Fetched++
			item, err := sportmonks.MapVenue(record)
			if err != nil {
				report.recordError(err)
				continue
			}
			batch = append(batch, item)
		}
		if err := s.refs.UpsertVenues(ctx, batch); err != nil {
			return err
		}
		report.Upserted += len(batch)
		return nil
	})
	s.logStream(ctx, report, err)
	return report, err
}

// SyncTeams walks the global team stream, resuming past already-seen
// ids via the stored cursor. The cursor advances once per committed
// page, so an interrupted run never re-ingests finished pages.
func (s *SyncService) SyncTeams(ctx context.Context) (KindReport, error) {
	report := KindReport{Kind: "teams"}
	idAfter, err := s.cursorValue(ctx, cursorTeams)
	if err != nil {
		return report, err
	}

	opts := sportmonks.PageOptions{Includes: "venue", IDAfter: idAfter}
	err = s.provider.ForEachPage(ctx, "/teams", opts, func(page sportmonks.Page) error {
		batch := make([]reference.Team, 0, len(page.Records))
		var maxID int64
		for _, record := range page.Records {
			report.Fetched++
			item, err := sportmonks.MapTeam(record)
			if err != nil {
				report.recordError(err)
				continue
			}
			batch = append(batch, item)
			if item.ID > maxID {
				maxID = item.ID
			}
		}
		if err := s.refs.UpsertTeams(ctx, batch); err != nil {
			return err
		}
		report.Upserted += len(batch)
		if maxID > 0 {
			if err := s.state.Set(ctx, cursorTeams, strconv.FormatInt(maxID, 10)); err != nil {
				return err
			}
		}
		return nil
	})
	s.logStream(ctx, report, err)
	return report, err
}

// SyncPlayers walks one season's player stream with a per-season
// resume cursor.
func (s *SyncService) SyncPlayers(ctx context.Context, seasonID int64) (KindReport, error) {
	report := KindReport{Kind: fmt.Sprintf("players_season_%d", seasonID)}
	if seasonID <= 0 {
		return report, fmt.Errorf("season id %d: %w", seasonID, ErrInvalidInput)
	}

	cursorKey := fmt.Sprintf(cursorPlayerSeason, seasonID)
	idAfter, err := s.cursorValue(ctx, cursorKey)
	if err != nil {
		return report, err
	}

	path := fmt.Sprintf("/players/seasons/%d", seasonID)
	opts := sportmonks.PageOptions{Includes: "team;position", IDAfter: idAfter}
	err = s.provider.ForEachPage(ctx, path, opts, func(page sportmonks.Page) error {
		batch := make([]reference.Player, 0, len(page.Records))
		var maxID int64
		for _, record := range page.Records {
			report.Fetched++
			item, err := sportmonks.MapPlayer(record)
			if err != nil {
				report.recordError(err)
				continue
			}
			batch = append(batch, item)
			if item.ID > maxID {
				maxID = item.ID
			}
		}
		if err := s.refs.UpsertPlayers(ctx, batch); err != nil {
			return err
		}
		report.Upserted += len(batch)
		if maxID > 0 {
			if err := s.state.Set(ctx, cursorKey, strconv.FormatInt(maxID, 10)); err != nil {
				return err
			}
		}
		return nil
	})
	s.logStream(ctx, report, err)
	return report, err
}

// SyncAllPlayers runs the player stream for every known season,
// narrowed to the configured leagues when set. A failed season is
// recorded and the remaining seasons still run.
func (s *SyncService) SyncAllPlayers(ctx context.Context) (KindReport, error) {
	report := KindReport{Kind: "players"}
	seasons, err := s.listSeasons(ctx)
	if err != nil {
		return report, err
	}
	for _, season := range seasons {
		sub, err := s.SyncPlayers(ctx, season.ID)
		report.merge(sub)
		if err != nil {
			report.recordError(fmt.Errorf("season %d: %w", season.ID, err))
		}
	}
	return report, nil
}

// ---- fixtures ----

// SyncFixtures ingests the fixture stream, optionally narrowed to one
// season, with participants and scores.
func (s *SyncService) SyncFixtures(ctx context.Context, seasonID int64) (KindReport, error) {
	report := KindReport{Kind: "fixtures"}
	path := "/fixtures"
	if seasonID > 0 {
		path = fmt.Sprintf("/fixtures/seasons/%d", seasonID)
		report.Kind = fmt.Sprintf("fixtures_season_%d", seasonID)
	}
	opts := sportmonks.PageOptions{Includes: includeFixtureBase, Filters: s.leagueFilter()}
	err := s.provider.ForEachPage(ctx, path, opts, func(page sportmonks.Page) error {
		return s.storeFixturePage(ctx, page, false, &report)
	})
	s.logStream(ctx, report, err)
	return report, err
}

// SyncFixturesBetween ingests fixtures inside one inclusive date
// window. withDetails adds statistics and lineups, which also yields
// team and player stat lines.
func (s *SyncService) SyncFixturesBetween(ctx context.Context, from, to time.Time, withDetails bool) (KindReport, error) {
	report := KindReport{Kind: "fixtures_between"}
	if to.Before(from) {
		return report, fmt.Errorf("window end before start: %w", ErrInvalidInput)
	}
	path := fmt.Sprintf("/fixtures/between/%s/%s", from.Format("2006-01-02"), to.Format("2006-01-02"))
	includes := includeFixtureBase
	if withDetails {
		includes = includeFixtureDetails
	}
	opts := sportmonks.PageOptions{Includes: includes, Filters: s.leagueFilter()}
	err := s.provider.ForEachPage(ctx, path, opts, func(page sportmonks.Page) error {
		return s.storeFixturePage(ctx, page, withDetails, &report)
	})
	s.logStream(ctx, report, err)
	return report, err
}

// SyncHistory backfills a relative window around today in sub-windows
// no wider than the provider's date-span ceiling, iterated newest
// first so partial runs cover recent data before old data. A failed
// chunk is recorded and the remaining chunks still run.
func (s *SyncService) SyncHistory(ctx context.Context, daysBack, daysForward int, withDetails bool) (KindReport, error) {
	report := KindReport{Kind: "history"}
	if daysBack < 0 || daysForward < 0 {
		return report, fmt.Errorf("negative window: %w", ErrInvalidInput)
	}
	today := time.Now().UTC().Truncate(24 * time.Hour)
	from := today.AddDate(0, 0, -daysBack)
	to := today.AddDate(0, 0, daysForward)

	for _, chunk := range dateChunks(from, to, s.cfg.MaxDateSpanDays) {
		sub, err := s.SyncFixturesBetween(ctx, chunk.from, chunk.to, withDetails)
		report.merge(sub)
		if err != nil {
			report.recordError(fmt.Errorf("chunk %s..%s: %w",
				chunk.from.Format("2006-01-02"), chunk.to.Format("2006-01-02"), err))
		}
	}
	return report, nil
}

// SyncLivescores refreshes in-play fixtures and their scores.
func (s *SyncService) SyncLivescores(ctx context.Context) (KindReport, error) {
	report := KindReport{Kind: "livescores"}
	opts := sportmonks.PageOptions{Includes: includeFixtureBase}
	err := s.provider.ForEachPage(ctx, "/livescores", opts, func(page sportmonks.Page) error {
		return s.storeFixturePage(ctx, page, false, &report)
	})
	s.logStream(ctx, report, err)
	return report, err
}

// storeFixturePage maps and persists one fixture page, with stat lines
// when details were requested. Mapping failures skip the record.
func (s *SyncService) storeFixturePage(ctx context.Context, page sportmonks.Page, withDetails bool, report *KindReport) error {
	fixtures := make([]fixture.Fixture, 0, len(page.Records))
	participants := make([]fixture.Participant, 0, 2*len(page.Records))
	var teamStats []statline.TeamStat
	var playerStats []statline.PlayerStat
	var appearances []statline.Appearance

	for _, record := range page.Records {
		report.Fetched++
		fx, parts, err := sportmonks.MapFixture(record)
		if err != nil {
			report.recordError(err)
			continue
		}
		fixtures = append(fixtures, fx)
		participants = append(participants, parts...)

		if !withDetails {
			continue
		}
		ts, err := sportmonks.MapTeamStats(record)
		if err != nil {
			report.recordError(err)
		} else {
			teamStats = append(teamStats, ts...)
		}
		apps, ps, err := sportmonks.MapLineups(record)
		if err != nil {
			report.recordError(err)
		} else {
			appearances = append(appearances, apps...)
			playerStats = append(playerStats, ps...)
		}
	}

	if err := s.fixtures.UpsertFixtures(ctx, fixtures); err != nil {
		return err
	}
	if err := s.fixtures.UpsertParticipants(ctx, participants); err != nil {
		return err
	}
	if withDetails {
		if err := s.stats.UpsertTeamStats(ctx, teamStats); err != nil {
			return err
		}
		if err := s.stats.UpsertAppearances(ctx, appearances); err != nil {
			return err
		}
		if err := s.stats.UpsertPlayerStats(ctx, playerStats); err != nil {
			return err
		}
	}
	report.Upserted += len(fixtures)
	return nil
}

// ---- odds ----

func (s *SyncService) SyncBookmakers(ctx context.Context) (KindReport, error) {
	report := KindReport{Kind: "bookmakers"}
	err := s.provider.ForEachPage(ctx, "/odds/bookmakers", sportmonks.PageOptions{PerPage: 1000}, func(page sportmonks.Page) error {
		batch := make([]reference.Bookmaker, 0, len(page.Records))
		for _, record := range page.Records {
			report.Fetched++
			item, err := sportmonks.MapBookmaker(record)
			if err != nil {
				report.recordError(err)
				continue
			}
			batch = append(batch, item)
		}
		if err := s.refs.UpsertBookmakers(ctx, batch); err != nil {
			return err
		}
		report.Upserted += len(batch)
		return nil
	})
	s.logStream(ctx, report, err)
	return report, err
}

func (s *SyncService) SyncMarkets(ctx context.Context) (KindReport, error) {
	report := KindReport{Kind: "markets"}
	err := s.provider.ForEachPage(ctx, "/odds/markets", sportmonks.PageOptions{PerPage: 1000}, func(page sportmonks.Page) error {
		batch := make([]reference.Market, 0, len(page.Records))
		for _, record := range page.Records {
			report.Fetched++
			item, err := sportmonks.MapMarket(record)
			if err != nil {
				report.recordError(err)
				continue
			}
			batch = append(batch, item)
		}
		if err := s.refs.UpsertMarkets(ctx, batch); err != nil {
			return err
		}
		report.Upserted += len(batch)
		return nil
	})
	s.logStream(ctx, report, err)
	return report, err
}

// SyncFixtureOdds ingests pre-match odds for the given fixtures,
// filtered to the configured bookmaker. With no explicit ids it covers
// fixtures starting within the next week. A failed fixture is recorded
// and the remaining fixtures still run.
func (s *SyncService) SyncFixtureOdds(ctx context.Context, fixtureIDs []int64) (KindReport, error) {
	report := KindReport{Kind: "odds"}
	ids, err := s.resolveFixtureIDs(ctx, fixtureIDs, 7)
	if err != nil {
		return report, err
	}
	if len(ids) == 0 {
		s.logger.InfoContext(ctx, "no fixtures to fetch odds for")
		return report, nil
	}

	for _, fid := range ids {
		if err := s.syncOddsForFixture(ctx, fid, &report); err != nil {
			report.recordError(fmt.Errorf("fixture %d: %w", fid, err))
		}
	}
	s.logStream(ctx, report, nil)
	return report, nil
}

func (s *SyncService) syncOddsForFixture(ctx context.Context, fixtureID int64, report *KindReport) error {
	path := fmt.Sprintf("/odds/pre-match/fixtures/%d", fixtureID)
	opts := sportmonks.PageOptions{Filters: s.bookmakerFilter()}
	var batch []odds.Outcome
	err := s.provider.ForEach(ctx, path, opts, func(record sportmonks.Raw) error {
		report.Fetched++
		item, err := sportmonks.MapOddsOutcome(record)
		if err != nil {
			report.recordError(err)
			return nil
		}
		batch = append(batch, item)
		return nil
	})
	if err != nil {
		return err
	}
	result, err := s.odds.UpsertOutcomes(ctx, batch)
	if err != nil {
		return err
	}
	report.Upserted += result.Upserted
	report.Skipped += result.Skipped
	return nil
}

// SyncPlayerPropOdds ingests player prop markets for fixtures starting
// within daysForward, matching provider labels to known players by
// normalized name. Unmatched rows are skipped, not errored.
func (s *SyncService) SyncPlayerPropOdds(ctx context.Context, daysForward int) (KindReport, error) {
	report := KindReport{Kind: "player_odds"}
	if daysForward <= 0 {
		daysForward = 7
	}
	ids, err := s.resolveFixtureIDs(ctx, nil, daysForward)
	if err != nil {
		return report, err
	}
	if len(ids) == 0 {
		s.logger.InfoContext(ctx, "no upcoming fixtures for player odds")
		return report, nil
	}

	for _, fid := range ids {
		if err := s.syncPlayerOddsForFixture(ctx, fid, &report); err != nil {
			report.recordError(fmt.Errorf("fixture %d: %w", fid, err))
		}
	}
	s.logStream(ctx, report, nil)
	return report, nil
}

func (s *SyncService) syncPlayerOddsForFixture(ctx context.Context, fixtureID int64, report *KindReport) error {
	path := fmt.Sprintf("/odds/pre-match/fixtures/%d", fixtureID)
	opts := sportmonks.PageOptions{Filters: s.bookmakerFilter()}
	var batch []odds.PlayerOdds
	err := s.provider.ForEach(ctx, path, opts, func(record sportmonks.Raw) error {
		if !isPlayerPropMarket(record) {
			return nil
		}
		report.Fetched++
		prop, err := sportmonks.MapPlayerProp(record)
		if err != nil {
			report.recordError(err)
			return nil
		}
		player, err := s.refs.FindPlayerByName(ctx, prop.PlayerName)
		if err != nil {
			return err
		}
		if player == nil {
			report.Skipped++
			return nil
		}
		batch = append(batch, odds.PlayerOdds{
			FixtureID: fixtureID,
			PlayerID:  player.ID,
			MarketID:  prop.MarketID,
			Line:      prop.Line,
			Selection: prop.Selection,
			Price:     prop.Price,
			RawHash:   prop.RawHash,
			Raw:       prop.Raw,
		})
		return nil
	})
	if err != nil {
		return err
	}
	result, err := s.odds.UpsertPlayerOdds(ctx, batch)
	if err != nil {
		return err
	}
	report.Upserted += result.Upserted
	report.Skipped += result.Skipped
	return nil
}

// SyncInplayOdds takes one snapshot of the in-play odds feed for the
// configured bookmaker.
func (s *SyncService) SyncInplayOdds(ctx context.Context) (KindReport, error) {
	report := KindReport{Kind: "inplay_odds"}
	opts := sportmonks.PageOptions{Filters: s.bookmakerFilter(), PerPage: 200}
	var batch []odds.Outcome
	err := s.provider.ForEach(ctx, "/odds/inplay/latest", opts, func(record sportmonks.Raw) error {
		report.Fetched++
		item, err := sportmonks.MapOddsOutcome(record)
		if err != nil {
			report.recordError(err)
			return nil
		}
		batch = append(batch, item)
		return nil
	})
	if err != nil {
		s.logStream(ctx, report, err)
		return report, err
	}
	result, err := s.odds.UpsertOutcomes(ctx, batch)
	if err != nil {
		return report, err
	}
	report.Upserted += result.Upserted
	report.Skipped += result.Skipped
	s.logStream(ctx, report, nil)
	return report, nil
}

// ---- head to head ----

// SyncHeadToHead fetches the meeting history of one team pair, stores
// the raw fixture list keyed by the ordered pair, and upserts the
// fixtures themselves.
func (s *SyncService) SyncHeadToHead(ctx context.Context, teamAID, teamBID int64) (KindReport, error) {
	report := KindReport{Kind: "head_to_head"}
	if teamAID <= 0 || teamBID <= 0 || teamAID == teamBID {
		return report, fmt.Errorf("team pair (%d, %d): %w", teamAID, teamBID, ErrInvalidInput)
	}
	if teamAID > teamBID {
		teamAID, teamBID = teamBID, teamAID
	}

	path := fmt.Sprintf("/fixtures/head-to-head/%d/%d", teamAID, teamBID)
	var records []sportmonks.Raw
	err := s.provider.ForEachPage(ctx, path, sportmonks.PageOptions{Includes: includeFixtureBase}, func(page sportmonks.Page) error {
		records = append(records, page.Records...)
		return s.storeFixturePage(ctx, page, false, &report)
	})
	if err != nil {
		s.logStream(ctx, report, err)
		return report, err
	}

	encoded, err := sonic.ConfigStd.Marshal(records)
	if err != nil {
		return report, fmt.Errorf("encode head-to-head fixtures: %w", err)
	}
	if err := s.fixtures.UpsertHeadToHead(ctx, fixture.HeadToHead{
		TeamAID:  teamAID,
		TeamBID:  teamBID,
		Fixtures: string(encoded),
	}); err != nil {
		return report, err
	}
	s.logStream(ctx, report, nil)
	return report, nil
}

// ---- helpers ----

func (s *SyncService) cursorValue(ctx context.Context, key string) (int64, error) {
	value, err := s.state.Get(ctx, key)
	if err != nil {
		return 0, err
	}
	if value == "" {
		return 0, nil
	}
	id, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		// A corrupt cursor restarts the stream instead of failing it.
		s.logger.WarnContext(ctx, "ignoring corrupt sync cursor", "key", key, "value", value)
		return 0, nil
	}
	return id, nil
}

func (s *SyncService) listSeasons(ctx context.Context) ([]reference.Season, error) {
	if len(s.cfg.LeagueIDs) > 0 {
		return s.refs.ListSeasonsByLeagues(ctx, s.cfg.LeagueIDs)
	}
	return s.refs.ListSeasons(ctx)
}

func (s *SyncService) resolveFixtureIDs(ctx context.Context, explicit []int64, daysForward int) ([]int64, error) {
	if len(explicit) > 0 {
		return explicit, nil
	}
	now := time.Now().UTC()
	return s.fixtures.ListIDsBetween(ctx, now, now.AddDate(0, 0, daysForward))
}

func (s *SyncService) leagueFilter() string {
	if len(s.cfg.LeagueIDs) == 0 {
		return ""
	}
	parts := make([]string, 0, len(s.cfg.LeagueIDs))
	for _, id := range s.cfg.LeagueIDs {
		parts = append(parts, strconv.FormatInt(id, 10))
	}
	return "fixtureLeagues:" + strings.Join(parts, ",")
}

func (s *SyncService) bookmakerFilter() string {
	if s.cfg.BookmakerID <= 0 {
		return ""
	}
	return "bookmakers:" + strconv.FormatInt(s.cfg.BookmakerID, 10)
}

func (s *SyncService) logStream(ctx context.Context, report KindReport, err error) {
	args := []any{
		"kind", report.Kind,
		"fetched", report.Fetched,
		"upserted", report.Upserted,
		"skipped", report.Skipped,
		"errored", report.Errored,
	}
	if err != nil {
		args = append(args, "error", err.Error())
		s.logger.ErrorContext(ctx, "sync stream failed", args...)
		return
	}
	s.logger.InfoContext(ctx, "sync stream finished", args...)
}

// isPlayerPropMarket keeps only player shot markets from a mixed
// pre-match odds feed.
func isPlayerPropMarket(record sportmonks.Raw) bool {
	name := record.String("market_name")
	if name == "" {
		name = record.String("market_description")
	}
	name = strings.ToLower(name)
	return strings.Contains(name, "player") || strings.Contains(name, "shot")
}

type dateRange struct {
	from time.Time
	to   time.Time
}

// dateChunks splits [from, to] into inclusive sub-windows of at most
// spanDays days each, ordered newest first.
func dateChunks(from, to time.Time, spanDays int) []dateRange {
	if spanDays <= 0 {
		spanDays = 95
	}
	var chunks []dateRange
	end := to
	for !end.Before(from) {
		start := end.AddDate(0, 0, -(spanDays - 1))
		if start.Before(from) {
			start = from
		}
		chunks = append(chunks, dateRange{from: start, to: end})
		end = start.AddDate(0, 0, -1)
	}
	return chunks
}
