package usecase

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/sourcegraph/conc/pool"

	"github.com/matchpulse/sportsync/internal/domain/form"
	"github.com/matchpulse/sportsync/internal/domain/odds"
	"github.com/matchpulse/sportsync/internal/domain/reference"
	"github.com/matchpulse/sportsync/internal/domain/statline"
	"github.com/matchpulse/sportsync/internal/platform/logging"
)

// marketKeys maps provider market ids to canonical names used by the
// latest-odds snapshot and the candidate filter.
var marketKeys = map[int64]string{
	1:   "match_result",
	2:   "double_chance",
	6:   "asian_handicap",
	7:   "goal_line",
	10:  "draw_no_bet",
	14:  "btts",
	268: "player_shots",
	285: "team_shots",
	292: "match_shots",
}

// AggregationConfig carries the rolling-window knobs.
type AggregationConfig struct {
	SampleSizes        []int
	MinSamples         int
	AvailabilitySample int
	Workers            int
}

func (c *AggregationConfig) normalize() {
	if len(c.SampleSizes) == 0 {
		c.SampleSizes = []int{5, 10, 20}
	}
	if c.MinSamples <= 0 {
		c.MinSamples = 8
	}
	if c.AvailabilitySample <= 0 {
		c.AvailabilitySample = 2
	}
	if c.Workers <= 0 {
		c.Workers = 4
	}
}

// AggregationService derives rolling-window form rows and the
// latest-odds snapshot from ingested data.
type AggregationService struct {
	refs   reference.Repository
	stats  statline.Repository
	odds   odds.Repository
	forms  form.Repository
	logger *logging.Logger
	cfg    AggregationConfig
	now    func() time.Time
}

func NewAggregationService(
	refs reference.Repository,
	stats statline.Repository,
	oddsRepo odds.Repository,
	forms form.Repository,
	logger *logging.Logger,
	cfg AggregationConfig,
) *AggregationService {
	if logger == nil {
		logger = logging.Default()
	}
	cfg.normalize()
	return &AggregationService{
		refs:   refs,
		stats:  stats,
		odds:   oddsRepo,
		forms:  forms,
		logger: logger,
		cfg:    cfg,
		now:    time.Now,
	}
}

// ComputeTeamForm summarizes the team's last sampleSize scored
// fixtures. Returns nil with no error when the team has no scored
// fixtures, leaving any existing row untouched.
func (s *AggregationService) ComputeTeamForm(ctx context.Context, teamID int64, sampleSize int) (*form.TeamForm, error) {
	if teamID <= 0 || sampleSize <= 0 {
		return nil, fmt.Errorf("team %d sample %d: %w", teamID, sampleSize, ErrInvalidInput)
	}
	lines, err := s.stats.ListTeamLines(ctx, teamID, sampleSize)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, nil
	}

	played := len(lines)
	var goalsFor, goalsAgainst, over25, wins, draws, losses int
	var shotsForSum, shotsAgainstSum float64
	var shotsForN, shotsAgainstN int
	samples := make([]form.FixtureSample, 0, played)

	for _, line := range lines {
		goalsFor += line.GoalsFor
		goalsAgainst += line.GoalsAgainst
		if line.GoalsFor+line.GoalsAgainst >= 3 {
			over25++
		}
		switch {
		case line.GoalsFor > line.GoalsAgainst:
			wins++
		case line.GoalsFor == line.GoalsAgainst:
			draws++
		default:
			losses++
		}
		if line.ShotsFor != nil {
			shotsForSum += *line.ShotsFor
			shotsForN++
		}
		if line.ShotsAgainst != nil {
			shotsAgainstSum += *line.ShotsAgainst
			shotsAgainstN++
		}

		gf := float64(line.GoalsFor)
		ga := float64(line.GoalsAgainst)
		values := map[string]*float64{
			"gf":            &gf,
			"ga":            &ga,
			"shots_for":     line.ShotsFor,
			"shots_against": line.ShotsAgainst,
			"match_shots":   sumFloats(line.ShotsFor, line.ShotsAgainst),
		}
		samples = append(samples, form.FixtureSample{
			FixtureID:  line.FixtureID,
			StartingAt: line.StartingAt,
			Location:   line.Location,
			Values:     values,
		})
	}

	raw, err := sonic.ConfigStd.Marshal(samples)
	if err != nil {
		return nil, fmt.Errorf("encode team form samples: %w", err)
	}

	n := float64(played)
	over25Pct := float64(over25) / n
	result := &form.TeamForm{
		TeamID:          teamID,
		SampleSize:      sampleSize,
		Played:          played,
		GoalsForAvg:     float64(goalsFor) / n,
		GoalsAgainstAvg: float64(goalsAgainst) / n,
		Over25Pct:       over25Pct,
		Under25Pct:      1 - over25Pct,
		WinPct:          float64(wins) / n,
		DrawPct:         float64(draws) / n,
		LossPct:         float64(losses) / n,
		ShotsForAvg:     avgOrNil(shotsForSum, shotsForN),
		ShotsAgainstAvg: avgOrNil(shotsAgainstSum, shotsAgainstN),
		RawFixtures:     string(raw),
		ComputedAt:      s.now().UTC(),
	}
	return result, nil
}

// ComputePlayerForm summarizes the player's last sampleSize
// appearances in scored fixtures. A stat the provider never reported
// counts as zero, matching how the lines are read back for hit rates.
func (s *AggregationService) ComputePlayerForm(ctx context.Context, playerID int64, sampleSize int) (*form.PlayerForm, error) {
	if playerID <= 0 || sampleSize <= 0 {
		return nil, fmt.Errorf("player %d sample %d: %w", playerID, sampleSize, ErrInvalidInput)
	}
	lines, err := s.stats.ListPlayerLines(ctx, playerID, sampleSize)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, nil
	}

	played := len(lines)
	var shotsSum, sotSum, goalsSum, assistsSum, minutesSum float64
	var shots1, shots2, shots3, sot1, sot2, goals1, goals2, assists1 int
	samples := make([]form.FixtureSample, 0, played)

	for _, line := range lines {
		shots := zeroIfNil(line.Shots)
		sot := zeroIfNil(line.ShotsOnTarget)
		goals := zeroIfNil(line.Goals)
		assists := zeroIfNil(line.Assists)
		minutes := zeroIfNil(line.Minutes)

		shotsSum += shots
		sotSum += sot
		goalsSum += goals
		assistsSum += assists
		minutesSum += minutes

		if shots >= 1 {
			shots1++
		}
		if shots >= 2 {
			shots2++
		}
		if shots >= 3 {
			shots3++
		}
		if sot >= 1 {
			sot1++
		}
		if sot >= 2 {
			sot2++
		}
		if goals >= 1 {
			goals1++
		}
		if goals >= 2 {
			goals2++
		}
		if assists >= 1 {
			assists1++
		}

		samples = append(samples, form.FixtureSample{
			FixtureID:  line.FixtureID,
			StartingAt: line.StartingAt,
			Values: map[string]*float64{
				"shots":    floatPtr(shots),
				"shots_on": floatPtr(sot),
				"goals":    floatPtr(goals),
				"assists":  floatPtr(assists),
				"minutes":  floatPtr(minutes),
			},
		})
	}

	raw, err := sonic.ConfigStd.Marshal(samples)
	if err != nil {
		return nil, fmt.Errorf("encode player form samples: %w", err)
	}

	n := float64(played)
	result := &form.PlayerForm{
		PlayerID:        playerID,
		SampleSize:      sampleSize,
		Played:          played,
		ShotsAvg:        floatPtr(shotsSum / n),
		SotAvg:          floatPtr(sotSum / n),
		GoalsAvg:        floatPtr(goalsSum / n),
		AssistsAvg:      floatPtr(assistsSum / n),
		MinutesAvg:      floatPtr(minutesSum / n),
		Shots1PlusPct:   floatPtr(float64(shots1) / n),
		Shots2PlusPct:   floatPtr(float64(shots2) / n),
		Shots3PlusPct:   floatPtr(float64(shots3) / n),
		Sot1PlusPct:     floatPtr(float64(sot1) / n),
		Sot2PlusPct:     floatPtr(float64(sot2) / n),
		Goals1PlusPct:   floatPtr(float64(goals1) / n),
		Goals2PlusPct:   floatPtr(float64(goals2) / n),
		Assists1PlusPct: floatPtr(float64(assists1) / n),
		RawFixtures:     string(raw),
		ComputedAt:      s.now().UTC(),
	}
	return result, nil
}

// ComputeAvailability marks a player a likely starter when they
// started at least half of the last sampleSize fixtures. The divisor
// is the requested sample, so two starts in a two-game sample counts
// and one start does too.
func (s *AggregationService) ComputeAvailability(ctx context.Context, playerID int64, sampleSize int) (*form.Availability, error) {
	if playerID <= 0 || sampleSize <= 0 {
		return nil, fmt.Errorf("player %d sample %d: %w", playerID, sampleSize, ErrInvalidInput)
	}
	flags, err := s.stats.ListRecentStarts(ctx, playerID, sampleSize)
	if err != nil {
		return nil, err
	}
	if len(flags) == 0 {
		return nil, nil
	}

	starts := 0
	for _, started := range flags {
		if started {
			starts++
		}
	}
	return &form.Availability{
		PlayerID:      playerID,
		SampleSize:    sampleSize,
		Appearances:   len(flags),
		Starts:        starts,
		LikelyStarter: float64(starts)/float64(sampleSize) >= 0.5,
		ComputedAt:    s.now().UTC(),
	}, nil
}

// BulkReport summarizes one full recomputation pass.
type BulkReport struct {
	TeamForms    int
	PlayerForms  int
	Availability int
	Errored      int
	Errors       []string
}

// BulkComputeForms recomputes every known team and player form per
// configured sample size on a bounded worker pool, committing once per
// sample size, then refreshes availability. A failed entity is
// recorded and the pass continues.
func (s *AggregationService) BulkComputeForms(ctx context.Context) (BulkReport, error) {
	var report BulkReport
	teamIDs, err := s.refs.ListTeamIDs(ctx)
	if err != nil {
		return report, err
	}
	playerIDs, err := s.refs.ListPlayerIDs(ctx)
	if err != nil {
		return report, err
	}

	var mu sync.Mutex
	recordError := func(err error) {
		mu.Lock()
		report.Errored++
		report.Errors = append(report.Errors, err.Error())
		mu.Unlock()
	}

	for _, sampleSize := range s.cfg.SampleSizes {
		var teamForms []form.TeamForm
		var playerForms []form.PlayerForm

		workers := pool.New().WithMaxGoroutines(s.cfg.Workers)
		for _, teamID := range teamIDs {
			teamID := teamID
			workers.Go(func() {
				computed, err := s.ComputeTeamForm(ctx, teamID, sampleSize)
				if err != nil {
					recordError(fmt.Errorf("team %d sample %d: %w", teamID, sampleSize, err))
					return
				}
				if computed == nil {
					return
				}
				mu.Lock()
				teamForms = append(teamForms, *computed)
				mu.Unlock()
			})
		}
		for _, playerID := range playerIDs {
			playerID := playerID
			workers.Go(func() {
				computed, err := s.ComputePlayerForm(ctx, playerID, sampleSize)
				if err != nil {
					recordError(fmt.Errorf("player %d sample %d: %w", playerID, sampleSize, err))
					return
				}
				if computed == nil {
					return
				}
				mu.Lock()
				playerForms = append(playerForms, *computed)
				mu.Unlock()
			})
		}
		workers.Wait()

		if err := s.forms.UpsertTeamForms(ctx, teamForms); err != nil {
			return report, err
		}
		if err := s.forms.UpsertPlayerForms(ctx, playerForms); err != nil {
			return report, err
		}
		report.TeamForms += len(teamForms)
		report.PlayerForms += len(playerForms)
		s.logger.InfoContext(ctx, "computed forms",
			"sample_size", sampleSize, "teams", len(teamForms), "players", len(playerForms))
	}

	var availability []form.Availability
	for _, playerID := range playerIDs {
		computed, err := s.ComputeAvailability(ctx, playerID, s.cfg.AvailabilitySample)
		if err != nil {
			recordError(fmt.Errorf("availability player %d: %w", playerID, err))
			continue
		}
		if computed != nil {
			availability = append(availability, *computed)
		}
	}
	if err := s.forms.UpsertAvailability(ctx, availability); err != nil {
		return report, err
	}
	report.Availability = len(availability)

	if err := s.forms.PruneSampleSizes(ctx, s.cfg.SampleSizes, s.cfg.AvailabilitySample); err != nil {
		recordError(fmt.Errorf("prune sample sizes: %w", err))
	}
	return report, nil
}

// NormalizeOdds snapshots the stored outcomes for the given fixtures
// into one latest row per (fixture, bookmaker, market, selection,
// line), translating market ids to canonical names.
func (s *AggregationService) NormalizeOdds(ctx context.Context, fixtureIDs []int64) (int, error) {
	outcomes, err := s.odds.ListOutcomesForFixtures(ctx, fixtureIDs)
	if err != nil {
		return 0, err
	}
	if len(outcomes) == 0 {
		return 0, nil
	}

	seenAt := s.now().UTC()
	latest := make([]odds.Latest, 0, len(outcomes))
	for _, outcome := range outcomes {
		if outcome.Price == nil {
			continue
		}
		selection := outcome.Label
		if outcome.Participant != nil && *outcome.Participant != "" {
			selection = *outcome.Participant
		}
		marketKey := marketKeys[outcome.MarketID]
		if marketKey == "" {
			marketKey = strconv.FormatInt(outcome.MarketID, 10)
		}
		latest = append(latest, odds.Latest{
			FixtureID:   outcome.FixtureID,
			BookmakerID: outcome.BookmakerID,
			MarketID:    outcome.MarketID,
			MarketKey:   marketKey,
			Selection:   selection,
			Line:        outcomeLine(outcome),
			Price:       *outcome.Price,
			SeenAt:      seenAt,
		})
	}
	if err := s.odds.ReplaceLatest(ctx, latest); err != nil {
		return 0, err
	}
	s.logger.InfoContext(ctx, "normalized odds", "rows", len(latest))
	return len(latest), nil
}

// outcomeLine parses the numeric line from the handicap or total part
// of the outcome, whichever is present.
func outcomeLine(outcome odds.Outcome) *float64 {
	for _, part := range []*string{outcome.Handicap, outcome.Total} {
		if part == nil || *part == "" {
			continue
		}
		if v, err := strconv.ParseFloat(*part, 64); err == nil {
			return &v
		}
	}
	return nil
}

func sumFloats(a, b *float64) *float64 {
	if a == nil || b == nil {
		return nil
	}
	v := *a + *b
	return &v
}

func avgOrNil(sum float64, n int) *float64 {
	if n == 0 {
		return nil
	}
	v := sum / float64(n)
	return &v
}

func zeroIfNil(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

func floatPtr(v float64) *float64 { return &v }
