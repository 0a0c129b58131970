package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/matchpulse/sportsync/internal/domain/fixture"
	qb "github.com/matchpulse/sportsync/internal/platform/querybuilder"
)

type FixtureRepository struct {
	db *sqlx.DB
}

func NewFixtureRepository(db *sqlx.DB) *FixtureRepository {
	return &FixtureRepository{db: db}
}

// UpsertFixtures writes a batch in one transaction. Nullable fields
// COALESCE against the stored row so a lighter payload (no scores
// include, no venue) never clears values a richer sync already wrote.
func (r *FixtureRepository) UpsertFixtures(ctx context.Context, items []fixture.Fixture) error {
	if len(items) == 0 {
		return nil
	}
	return withTx(ctx, r.db, "upsert fixtures", func(tx *sqlx.Tx) error {
		for _, item := range items {
			model := fixtureInsertModel{
				ID:         item.ID,
				LeagueID:   item.LeagueID,
				SeasonID:   item.SeasonID,
				VenueID:    item.VenueID,
				Status:     nullableString(item.Status),
				StartingAt: item.StartingAt,
				HomeTeamID: item.HomeTeamID,
				AwayTeamID: item.AwayTeamID,
				HomeScore:  item.HomeScore,
				AwayScore:  item.AwayScore,
				Extra:      nullableString(item.Extra),
			}
			if err := execUpsert(ctx, tx, "fixtures", model, `ON CONFLICT (id) DO UPDATE SET
    league_id = COALESCE(EXCLUDED.league_id, fixtures.league_id),
    season_id = COALESCE(EXCLUDED.season_id, fixtures.season_id),
    venue_id = COALESCE(EXCLUDED.venue_id, fixtures.venue_id),
    status = COALESCE(EXCLUDED.status, fixtures.status),
    starting_at = COALESCE(EXCLUDED.starting_at, fixtures.starting_at),
    home_team_id = COALESCE(EXCLUDED.home_team_id, fixtures.home_team_id),
    away_team_id = COALESCE(EXCLUDED.away_team_id, fixtures.away_team_id),
    home_score = COALESCE(EXCLUDED.home_score, fixtures.home_score),
    away_score = COALESCE(EXCLUDED.away_score, fixtures.away_score),
    extra = COALESCE(EXCLUDED.extra, fixtures.extra),
    updated_at = NOW()`); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *FixtureRepository) UpsertParticipants(ctx context.Context, items []fixture.Participant) error {
	if len(items) == 0 {
		return nil
	}
	return withTx(ctx, r.db, "upsert participants", func(tx *sqlx.Tx) error {
		for _, item := range items {
			model := participantInsertModel{
				FixtureID: item.FixtureID,
				TeamID:    item.TeamID,
				Location:  nullableString(item.Location),
				Score:     item.Score,
				Extra:     nullableString(item.Extra),
			}
			if err := execUpsert(ctx, tx, "fixture_participants", model, `ON CONFLICT (fixture_id, team_id) DO UPDATE SET
    location = COALESCE(EXCLUDED.location, fixture_participants.location),
    score = COALESCE(EXCLUDED.score, fixture_participants.score),
    extra = COALESCE(EXCLUDED.extra, fixture_participants.extra),
    updated_at = NOW()`); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *FixtureRepository) UpsertHeadToHead(ctx context.Context, item fixture.HeadToHead) error {
	return withTx(ctx, r.db, "upsert head to head", func(tx *sqlx.Tx) error {
		model := headToHeadInsertModel{TeamAID: item.TeamAID, TeamBID: item.TeamBID, Fixtures: item.Fixtures}
		return execUpsert(ctx, tx, "head_to_head", model, `ON CONFLICT (team_a_id, team_b_id) DO UPDATE SET
    fixtures = EXCLUDED.fixtures,
    updated_at = NOW()`)
	})
}

func (r *FixtureRepository) ListBetween(ctx context.Context, from, to time.Time) ([]fixture.Fixture, error) {
	query, args, err := qb.Select(fixtureColumns()...).
		From("fixtures").
		Where(qb.Gte("starting_at", from), qb.Lte("starting_at", to)).
		OrderBy("starting_at").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list fixtures between query: %w", err)
	}
	return r.selectFixtures(ctx, query, args)
}

func (r *FixtureRepository) ListIDsBetween(ctx context.Context, from, to time.Time) ([]int64, error) {
	query, args, err := qb.Select("id").
		From("fixtures").
		Where(qb.Gte("starting_at", from), qb.Lte("starting_at", to)).
		OrderBy("starting_at").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list fixture ids between query: %w", err)
	}
	var ids []int64
	if err := r.db.SelectContext(ctx, &ids, query, args...); err != nil {
		return nil, fmt.Errorf("list fixture ids between: %w", err)
	}
	return ids, nil
}

// ListOutsideSeasons lists fixtures whose season is not in the keep
// window; prune candidates for exports, never deleted here.
func (r *FixtureRepository) ListOutsideSeasons(ctx context.Context, keepSeasonIDs []int64) ([]fixture.Fixture, error) {
	builder := qb.Select(fixtureColumns()...).From("fixtures").OrderBy("starting_at")
	if len(keepSeasonIDs) > 0 {
		builder = builder.Where(qb.Expr("(season_id IS NULL OR season_id NOT IN (SELECT UNNEST(?::bigint[])))", int64ArrayLiteral(keepSeasonIDs)))
	}
	query, args, err := builder.ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list fixtures outside seasons query: %w", err)
	}
	return r.selectFixtures(ctx, query, args)
}

func (r *FixtureRepository) selectFixtures(ctx context.Context, query string, args []any) ([]fixture.Fixture, error) {
	var rows []fixtureRowModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list fixtures: %w", err)
	}

	out := make([]fixture.Fixture, 0, len(rows))
	for _, row := range rows {
		item := fixture.Fixture{
			ID:         row.ID,
			LeagueID:   row.LeagueID,
			SeasonID:   row.SeasonID,
			VenueID:    row.VenueID,
			StartingAt: row.StartingAt,
			HomeTeamID: row.HomeTeamID,
			AwayTeamID: row.AwayTeamID,
			HomeScore:  row.HomeScore,
			AwayScore:  row.AwayScore,
		}
		if row.Status != nil {
			item.Status = *row.Status
		}
		out = append(out, item)
	}
	return out, nil
}

func fixtureColumns() []string {
	return []string{
		"id", "league_id", "season_id", "venue_id", "status", "starting_at",
		"home_team_id", "away_team_id", "home_score", "away_score",
	}
}

func int64ArrayLiteral(ids []int64) string {
	out := "{"
	for i, id := range ids {
		if i > 0 {
			out += ","
		}
		out += fmt.Sprintf("%d", id)
	}
	return out + "}"
}
