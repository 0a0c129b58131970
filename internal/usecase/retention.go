package usecase

import (
	"context"
	"sort"
	"time"

	"github.com/matchpulse/sportsync/internal/domain/fixture"
	"github.com/matchpulse/sportsync/internal/domain/reference"
	"github.com/matchpulse/sportsync/internal/platform/logging"
)

// RetentionConfig controls the prune-candidate scan. KeepDays is a
// recency floor on top of the season keep window: a fixture newer than
// now minus KeepDays is never reported, whatever its season.
type RetentionConfig struct {
	Enabled  bool
	KeepDays int
}

func (c *RetentionConfig) normalize() {
	if c.KeepDays <= 0 {
		c.KeepDays = 400
	}
}

// RetentionService identifies data outside the keep window. It never
// deletes anything itself; callers decide what to do with the
// candidates.
type RetentionService struct {
	refs     reference.Repository
	fixtures fixture.Repository
	logger   *logging.Logger
	cfg      RetentionConfig
	now      func() time.Time
}

func NewRetentionService(refs reference.Repository, fixtures fixture.Repository, logger *logging.Logger, cfg RetentionConfig) *RetentionService {
	if logger == nil {
		logger = logging.Default()
	}
	cfg.normalize()
	return &RetentionService{refs: refs, fixtures: fixtures, logger: logger, cfg: cfg, now: time.Now}
}

// RetainedSeasonIDs picks, per league, the season flagged current plus
// the most recently ended other season, so one finished campaign of
// history always survives a prune.
func RetainedSeasonIDs(seasons []reference.Season) map[int64]struct{} {
	byLeague := make(map[int64][]reference.Season)
	for _, season := range seasons {
		byLeague[season.LeagueID] = append(byLeague[season.LeagueID], season)
	}

	keep := make(map[int64]struct{})
	for _, group := range byLeague {
		var ended []reference.Season
		for _, season := range group {
			if season.IsCurrent {
				keep[season.ID] = struct{}{}
				continue
			}
			ended = append(ended, season)
		}
		if len(ended) == 0 {
			continue
		}
		sort.Slice(ended, func(i, j int) bool {
			a, b := ended[i].EndDate, ended[j].EndDate
			switch {
			case a == nil:
				return false
			case b == nil:
				return true
			case !a.Equal(*b):
				return a.After(*b)
			}
			return ended[i].ID > ended[j].ID
		})
		keep[ended[0].ID] = struct{}{}
	}
	return keep
}

// FixturesOutsideKeepWindow lists fixtures whose season falls outside
// the retained set and whose kickoff is older than the KeepDays floor,
// for export or manual pruning. Returns nothing when retention is
// disabled.
func (s *RetentionService) FixturesOutsideKeepWindow(ctx context.Context) ([]fixture.Fixture, error) {
	if !s.cfg.Enabled {
		s.logger.InfoContext(ctx, "retention disabled, skipping scan")
		return nil, nil
	}

	seasons, err := s.refs.ListSeasons(ctx)
	if err != nil {
		return nil, err
	}
	keep := RetainedSeasonIDs(seasons)
	ids := make([]int64, 0, len(keep))
	for id := range keep {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	listed, err := s.fixtures.ListOutsideSeasons(ctx, ids)
	if err != nil {
		return nil, err
	}

	cutoff := s.now().AddDate(0, 0, -s.cfg.KeepDays)
	candidates := make([]fixture.Fixture, 0, len(listed))
	for _, fx := range listed {
		if fx.StartingAt != nil && !fx.StartingAt.Before(cutoff) {
			continue
		}
		candidates = append(candidates, fx)
	}
	s.logger.InfoContext(ctx, "retention scan",
		"kept_seasons", len(ids), "prune_candidates", len(candidates))
	return candidates, nil
}
