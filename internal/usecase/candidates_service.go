package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/bytedance/sonic"

	"github.com/matchpulse/sportsync/internal/domain/fixture"
	"github.com/matchpulse/sportsync/internal/domain/form"
	"github.com/matchpulse/sportsync/internal/domain/odds"
	"github.com/matchpulse/sportsync/internal/domain/statline"
	"github.com/matchpulse/sportsync/internal/platform/logging"
)

const (
	marketKeyTeamShots  = "team_shots"
	marketKeyMatchShots = "match_shots"
)

// oneShotFloors maps a sample size to the minimum number of games with
// at least one shot a player must show at that size.
var oneShotFloors = map[int]int{11: 9, 14: 12, 15: 13, 20: 16}

// CandidatesConfig carries the filter thresholds.
type CandidatesConfig struct {
	SampleSizes   []int
	MinSamples    int
	MinPct        float64
	BookmakerID   int64
	LookbackDays  int
	LookaheadDays int
}

func (c *CandidatesConfig) normalize() {
	if len(c.SampleSizes) == 0 {
		c.SampleSizes = []int{5, 10, 20}
	}
	if c.MinSamples <= 0 {
		c.MinSamples = 8
	}
	if c.MinPct <= 0 {
		c.MinPct = 0.7
	}
	if c.BookmakerID <= 0 {
		c.BookmakerID = 2
	}
	if c.LookbackDays < 0 {
		c.LookbackDays = 0
	}
	if c.LookaheadDays <= 0 {
		c.LookaheadDays = 14
	}
}

// CandidatesService joins rolling-window form against priced shot
// markets to surface value candidates.
type CandidatesService struct {
	fixtures fixture.Repository
	stats    statline.Repository
	odds     odds.Repository
	forms    form.Repository
	logger   *logging.Logger
	cfg      CandidatesConfig
	now      func() time.Time
}

func NewCandidatesService(
	fixtures fixture.Repository,
	stats statline.Repository,
	oddsRepo odds.Repository,
	forms form.Repository,
	logger *logging.Logger,
	cfg CandidatesConfig,
) *CandidatesService {
	if logger == nil {
		logger = logging.Default()
	}
	cfg.normalize()
	return &CandidatesService{
		fixtures: fixtures,
		stats:    stats,
		odds:     oddsRepo,
		forms:    forms,
		logger:   logger,
		cfg:      cfg,
		now:      time.Now,
	}
}

// TeamShotCandidate is one fixture-side-line row where both the team's
// attacking rate and the opponent's concede rate clear the threshold.
type TeamShotCandidate struct {
	FixtureID          int64
	Market             string
	Side               string
	TeamID             int64
	OpponentID         int64
	StartingAt         *time.Time
	Line               float64
	TeamPct            float64
	OpponentPct        float64
	TeamAvg            float64
	OpponentAvg        float64
	TeamSamples        int
	OpponentSamples    int
	TeamSampleSize     int
	OpponentSampleSize int
	Price              *float64
}

// TeamShotCandidates evaluates upcoming fixtures against team-shots
// and match-shots lines priced by the configured bookmaker. A row
// qualifies when the weaker of the two sides still clears MinPct;
// results sort weakest-side pct first, then price, then line.
func (s *CandidatesService) TeamShotCandidates(ctx context.Context) ([]TeamShotCandidate, error) {
	now := s.now().UTC()
	fixtures, err := s.fixtures.ListBetween(ctx,
		now.AddDate(0, 0, -s.cfg.LookbackDays),
		now.AddDate(0, 0, s.cfg.LookaheadDays))
	if err != nil {
		return nil, err
	}
	if len(fixtures) == 0 {
		return nil, nil
	}

	fixtureIDs := make([]int64, 0, len(fixtures))
	for _, fx := range fixtures {
		fixtureIDs = append(fixtureIDs, fx.ID)
	}
	teamLines, err := s.odds.ListLatestByMarket(ctx, fixtureIDs, s.cfg.BookmakerID, marketKeyTeamShots)
	if err != nil {
		return nil, err
	}
	matchLines, err := s.odds.ListLatestByMarket(ctx, fixtureIDs, s.cfg.BookmakerID, marketKeyMatchShots)
	if err != nil {
		return nil, err
	}

	sequences := newTeamSequenceCache(s.stats, maxSampleSize(s.cfg.SampleSizes))
	var rows []TeamShotCandidate

	teamOdds := groupTeamShotOdds(teamLines)
	matchOdds := groupMatchShotOdds(matchLines)

	for _, fx := range fixtures {
		if fx.HomeTeamID == nil || fx.AwayTeamID == nil {
			continue
		}
		homeID, awayID := *fx.HomeTeamID, *fx.AwayTeamID

		for _, side := range []string{fixture.LocationHome, fixture.LocationAway} {
			teamID, oppID := homeID, awayID
			if side == fixture.LocationAway {
				teamID, oppID = awayID, homeID
			}
			for line, price := range teamOdds[oddsSideKey{fx.ID, side}] {
				teamSeq, err := sequences.load(ctx, teamID)
				if err != nil {
					return nil, err
				}
				oppSeq, err := sequences.load(ctx, oppID)
				if err != nil {
					return nil, err
				}
				teamRate := SelectBestRate(teamSeq.shotsFor, s.cfg.SampleSizes, line, s.cfg.MinSamples)
				oppRate := SelectBestRate(oppSeq.shotsAgainst, s.cfg.SampleSizes, line, s.cfg.MinSamples)
				if teamRate == nil || oppRate == nil {
					continue
				}
				if teamRate.Pct < s.cfg.MinPct || oppRate.Pct < s.cfg.MinPct {
					continue
				}
				price := price
				rows = append(rows, TeamShotCandidate{
					FixtureID:          fx.ID,
					Market:             marketKeyTeamShots,
					Side:               side,
					TeamID:             teamID,
					OpponentID:         oppID,
					StartingAt:         fx.StartingAt,
					Line:               line,
					TeamPct:            teamRate.Pct,
					OpponentPct:        oppRate.Pct,
					TeamAvg:            teamRate.Avg,
					OpponentAvg:        oppRate.Avg,
					TeamSamples:        teamRate.Samples,
					OpponentSamples:    oppRate.Samples,
					TeamSampleSize:     teamRate.SampleSize,
					OpponentSampleSize: oppRate.SampleSize,
					Price:              &price,
				})
			}
		}

		for line, price := range matchOdds[fx.ID] {
			homeSeq, err := sequences.load(ctx, homeID)
			if err != nil {
				return nil, err
			}
			awaySeq, err := sequences.load(ctx, awayID)
			if err != nil {
				return nil, err
			}
			homeRate := SelectBestRate(homeSeq.matchShots, s.cfg.SampleSizes, line, s.cfg.MinSamples)
			awayRate := SelectBestRate(awaySeq.matchShots, s.cfg.SampleSizes, line, s.cfg.MinSamples)
			if homeRate == nil || awayRate == nil {
				continue
			}
			if minFloat(homeRate.Pct, awayRate.Pct) < s.cfg.MinPct {
				continue
			}
			price := price
			rows = append(rows, TeamShotCandidate{
				FixtureID:          fx.ID,
				Market:             marketKeyMatchShots,
				TeamID:             homeID,
				OpponentID:         awayID,
				StartingAt:         fx.StartingAt,
				Line:               line,
				TeamPct:            homeRate.Pct,
				OpponentPct:        awayRate.Pct,
				TeamAvg:            homeRate.Avg,
				OpponentAvg:        awayRate.Avg,
				TeamSamples:        homeRate.Samples,
				OpponentSamples:    awayRate.Samples,
				TeamSampleSize:     homeRate.SampleSize,
				OpponentSampleSize: awayRate.SampleSize,
				Price:              &price,
			})
		}
	}

	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		aMin := minFloat(a.TeamPct, a.OpponentPct)
		bMin := minFloat(b.TeamPct, b.OpponentPct)
		if aMin != bMin {
			return aMin > bMin
		}
		aPrice, bPrice := zeroIfNil(a.Price), zeroIfNil(b.Price)
		if aPrice != bPrice {
			return aPrice > bPrice
		}
		return a.Line < b.Line
	})
	s.logger.InfoContext(ctx, "team shot candidates", "fixtures", len(fixtures), "rows", len(rows))
	return rows, nil
}

// PlayerOneShotCandidate is one player whose 1+ shot hit count clears
// the per-sample-size floor.
type PlayerOneShotCandidate struct {
	PlayerID   int64
	SampleSize int
	Hits       int
	Shots      []float64
}

// PlayerOneShotCandidates evaluates the raw sequences of stored player
// form rows at the given sample size against the one-shot floors,
// without re-querying stat lines.
func (s *CandidatesService) PlayerOneShotCandidates(ctx context.Context, storedSampleSize int) ([]PlayerOneShotCandidate, error) {
	if storedSampleSize <= 0 {
		return nil, fmt.Errorf("sample size %d: %w", storedSampleSize, ErrInvalidInput)
	}
	forms, err := s.forms.ListPlayerForms(ctx, storedSampleSize)
	if err != nil {
		return nil, err
	}
	if len(forms) == 0 {
		return nil, fmt.Errorf("no stored player forms for sample size %d: %w", storedSampleSize, ErrNotFound)
	}

	var rows []PlayerOneShotCandidate
	for _, f := range forms {
		if strings.TrimSpace(f.RawFixtures) == "" {
			continue
		}
		var samples []form.FixtureSample
		if err := sonic.Unmarshal([]byte(f.RawFixtures), &samples); err != nil {
			s.logger.WarnContext(ctx, "skipping unreadable form sequence", "player_id", f.PlayerID)
			continue
		}
		for sampleSize, required := range oneShotFloors {
			if len(samples) < sampleSize {
				continue
			}
			shots := make([]float64, 0, sampleSize)
			hits := 0
			for _, sample := range samples[:sampleSize] {
				v := zeroIfNil(sample.Values["shots"])
				shots = append(shots, v)
				if v >= 1 {
					hits++
				}
			}
			if hits >= required {
				rows = append(rows, PlayerOneShotCandidate{
					PlayerID:   f.PlayerID,
					SampleSize: sampleSize,
					Hits:       hits,
					Shots:      shots,
				})
			}
		}
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].PlayerID != rows[j].PlayerID {
			return rows[i].PlayerID < rows[j].PlayerID
		}
		return rows[i].SampleSize < rows[j].SampleSize
	})
	s.logger.InfoContext(ctx, "player one-shot candidates", "rows", len(rows))
	return rows, nil
}

// ---- helpers ----

type oddsSideKey struct {
	fixtureID int64
	side      string
}

// groupTeamShotOdds indexes team-shots prices by fixture side and
// line. The selection names the side for this market.
func groupTeamShotOdds(latest []odds.Latest) map[oddsSideKey]map[float64]float64 {
	out := make(map[oddsSideKey]map[float64]float64)
	for _, row := range latest {
		if row.Line == nil {
			continue
		}
		side := strings.ToLower(strings.TrimSpace(row.Selection))
		if side != fixture.LocationHome && side != fixture.LocationAway {
			continue
		}
		key := oddsSideKey{row.FixtureID, side}
		if out[key] == nil {
			out[key] = make(map[float64]float64)
		}
		out[key][*row.Line] = row.Price
	}
	return out
}

// groupMatchShotOdds indexes match-shots over prices by fixture and
// line, ignoring under selections.
func groupMatchShotOdds(latest []odds.Latest) map[int64]map[float64]float64 {
	out := make(map[int64]map[float64]float64)
	for _, row := range latest {
		if row.Line == nil {
			continue
		}
		if strings.Contains(strings.ToLower(row.Selection), "under") {
			continue
		}
		if out[row.FixtureID] == nil {
			out[row.FixtureID] = make(map[float64]float64)
		}
		out[row.FixtureID][*row.Line] = row.Price
	}
	return out
}

// teamSequences holds newest-first shot sequences for one team.
type teamSequences struct {
	shotsFor     []*float64
	shotsAgainst []*float64
	matchShots   []*float64
}

// teamSequenceCache loads each team's recent lines once per run.
type teamSequenceCache struct {
	stats statline.Repository
	limit int
	byID  map[int64]*teamSequences
}

func newTeamSequenceCache(stats statline.Repository, limit int) *teamSequenceCache {
	return &teamSequenceCache{stats: stats, limit: limit, byID: make(map[int64]*teamSequences)}
}

func (c *teamSequenceCache) load(ctx context.Context, teamID int64) (*teamSequences, error) {
	if cached, ok := c.byID[teamID]; ok {
		return cached, nil
	}
	lines, err := c.stats.ListTeamLines(ctx, teamID, c.limit)
	if err != nil {
		return nil, err
	}
	seq := &teamSequences{
		shotsFor:     make([]*float64, 0, len(lines)),
		shotsAgainst: make([]*float64, 0, len(lines)),
		matchShots:   make([]*float64, 0, len(lines)),
	}
	for _, line := range lines {
		seq.shotsFor = append(seq.shotsFor, line.ShotsFor)
		seq.shotsAgainst = append(seq.shotsAgainst, line.ShotsAgainst)
		seq.matchShots = append(seq.matchShots, sumFloats(line.ShotsFor, line.ShotsAgainst))
	}
	c.byID[teamID] = seq
	return seq, nil
}

func maxSampleSize(sizes []int) int {
	max := 0
	for _, size := range sizes {
		if size > max {
			max = size
		}
	}
	if max == 0 {
		max = 20
	}
	return max
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
