package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/matchpulse/sportsync/internal/domain/statline"
)

type StatLineRepository struct {
	db *sqlx.DB
}

func NewStatLineRepository(db *sqlx.DB) *StatLineRepository {
	return &StatLineRepository{db: db}
}

type teamStatInsertModel struct {
	FixtureID int64    `db:"fixture_id"`
	TeamID    int64    `db:"team_id"`
	TypeID    int64    `db:"type_id"`
	Value     *float64 `db:"value"`
	Raw       *string  `db:"raw"`
}

type playerStatInsertModel struct {
	FixtureID int64    `db:"fixture_id"`
	PlayerID  int64    `db:"player_id"`
	TeamID    *int64   `db:"team_id"`
	TypeID    int64    `db:"type_id"`
	Value     *float64 `db:"value"`
	Raw       *string  `db:"raw"`
}

type appearanceInsertModel struct {
	FixtureID int64    `db:"fixture_id"`
	PlayerID  int64    `db:"player_id"`
	TeamID    *int64   `db:"team_id"`
	Started   bool     `db:"started"`
	Minutes   *float64 `db:"minutes"`
	Raw       *string  `db:"raw"`
}

func (r *StatLineRepository) UpsertTeamStats(ctx context.Context, items []statline.TeamStat) error {
	if len(items) == 0 {
		return nil
	}
	return withTx(ctx, r.db, "upsert team stats", func(tx *sqlx.Tx) error {
		for _, item := range items {
			model := teamStatInsertModel{
				FixtureID: item.FixtureID,
				TeamID:    item.TeamID,
				TypeID:    item.TypeID,
				Value:     item.Value,
				Raw:       nullableString(item.Raw),
			}
			if err := execUpsert(ctx, tx, "team_stats", model, `ON CONFLICT (fixture_id, team_id, type_id) DO UPDATE SET
    value = EXCLUDED.value,
    raw = EXCLUDED.raw,
    updated_at = NOW()`); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *StatLineRepository) UpsertPlayerStats(ctx context.Context, items []statline.PlayerStat) error {
	if len(items) == 0 {
		return nil
	}
	return withTx(ctx, r.db, "upsert player stats", func(tx *sqlx.Tx) error {
		for _, item := range items {
			model := playerStatInsertModel{
				FixtureID: item.FixtureID,
				PlayerID:  item.PlayerID,
				TeamID:    item.TeamID,
				TypeID:    item.TypeID,
				Value:     item.Value,
				Raw:       nullableString(item.Raw),
			}
			if err := execUpsert(ctx, tx, "player_stats", model, `ON CONFLICT (fixture_id, player_id, type_id) DO UPDATE SET
    team_id = COALESCE(EXCLUDED.team_id, player_stats.team_id),
    value = EXCLUDED.value,
    raw = EXCLUDED.raw,
    updated_at = NOW()`); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *StatLineRepository) UpsertAppearances(ctx context.Context, items []statline.Appearance) error {
	if len(items) == 0 {
		return nil
	}
	return withTx(ctx, r.db, "upsert appearances", func(tx *sqlx.Tx) error {
		for _, item := range items {
			model := appearanceInsertModel{
				FixtureID: item.FixtureID,
				PlayerID:  item.PlayerID,
				TeamID:    item.TeamID,
				Started:   item.Started,
				Minutes:   item.Minutes,
				Raw:       nullableString(item.Raw),
			}
			if err := execUpsert(ctx, tx, "player_appearances", model, `ON CONFLICT (fixture_id, player_id) DO UPDATE SET
    team_id = COALESCE(EXCLUDED.team_id, player_appearances.team_id),
    started = EXCLUDED.started,
    minutes = COALESCE(EXCLUDED.minutes, player_appearances.minutes),
    raw = EXCLUDED.raw,
    updated_at = NOW()`); err != nil {
				return err
			}
		}
		return nil
	})
}

// Only scored fixtures qualify for aggregation, newest first. Shots
// against come from the opposing participant's stat row in the same
// fixture.
const teamLinesQuery = `
SELECT f.id AS fixture_id,
       f.starting_at,
       p.location,
       CASE WHEN p.location = 'home' THEN f.home_score ELSE f.away_score END AS goals_for,
       CASE WHEN p.location = 'home' THEN f.away_score ELSE f.home_score END AS goals_against,
       sf.value AS shots_for,
       sa.value AS shots_against
FROM fixtures f
JOIN fixture_participants p ON p.fixture_id = f.id AND p.team_id = $1
LEFT JOIN types ts ON ts.developer_name = 'SHOTS_TOTAL'
LEFT JOIN team_stats sf ON sf.fixture_id = f.id AND sf.team_id = $1 AND sf.type_id = ts.id
LEFT JOIN team_stats sa ON sa.fixture_id = f.id AND sa.team_id <> $1 AND sa.type_id = ts.id
WHERE f.home_score IS NOT NULL AND f.away_score IS NOT NULL
ORDER BY f.starting_at DESC NULLS LAST, f.id DESC
LIMIT $2`

func (r *StatLineRepository) ListTeamLines(ctx context.Context, teamID int64, limit int) ([]statline.TeamLine, error) {
	var rows []struct {
		FixtureID    int64      `db:"fixture_id"`
		StartingAt   *time.Time `db:"starting_at"`
		Location     *string    `db:"location"`
		GoalsFor     int        `db:"goals_for"`
		GoalsAgainst int        `db:"goals_against"`
		ShotsFor     *float64   `db:"shots_for"`
		ShotsAgainst *float64   `db:"shots_against"`
	}
	if err := r.db.SelectContext(ctx, &rows, teamLinesQuery, teamID, limit); err != nil {
		return nil, fmt.Errorf("list team lines team_id=%d: %w", teamID, err)
	}

	out := make([]statline.TeamLine, 0, len(rows))
	for _, row := range rows {
		line := statline.TeamLine{
			FixtureID:    row.FixtureID,
			StartingAt:   row.StartingAt,
			GoalsFor:     row.GoalsFor,
			GoalsAgainst: row.GoalsAgainst,
			ShotsFor:     row.ShotsFor,
			ShotsAgainst: row.ShotsAgainst,
		}
		if row.Location != nil {
			line.Location = *row.Location
		}
		out = append(out, line)
	}
	return out, nil
}

const playerLinesQuery = `
SELECT f.id AS fixture_id,
       f.starting_at,
       MAX(ps.value) FILTER (WHERE t.developer_name = 'SHOTS_TOTAL') AS shots,
       MAX(ps.value) FILTER (WHERE t.developer_name = 'SHOTS_ON_TARGET') AS shots_on_target,
       MAX(ps.value) FILTER (WHERE t.developer_name = 'GOALS') AS goals,
       MAX(ps.value) FILTER (WHERE t.developer_name = 'ASSISTS') AS assists,
       a.minutes
FROM fixtures f
JOIN player_appearances a ON a.fixture_id = f.id AND a.player_id = $1
LEFT JOIN player_stats ps ON ps.fixture_id = f.id AND ps.player_id = $1
LEFT JOIN types t ON t.id = ps.type_id
WHERE f.home_score IS NOT NULL AND f.away_score IS NOT NULL
GROUP BY f.id, f.starting_at, a.minutes
ORDER BY f.starting_at DESC NULLS LAST, f.id DESC
LIMIT $2`

func (r *StatLineRepository) ListPlayerLines(ctx context.Context, playerID int64, limit int) ([]statline.PlayerLine, error) {
	var rows []struct {
		FixtureID     int64      `db:"fixture_id"`
		StartingAt    *time.Time `db:"starting_at"`
		Shots         *float64   `db:"shots"`
		ShotsOnTarget *float64   `db:"shots_on_target"`
		Goals         *float64   `db:"goals"`
		Assists       *float64   `db:"assists"`
		Minutes       *float64   `db:"minutes"`
	}
	if err := r.db.SelectContext(ctx, &rows, playerLinesQuery, playerID, limit); err != nil {
		return nil, fmt.Errorf("list player lines player_id=%d: %w", playerID, err)
	}

	out := make([]statline.PlayerLine, 0, len(rows))
	for _, row := range rows {
		out = append(out, statline.PlayerLine{
			FixtureID:     row.FixtureID,
			StartingAt:    row.StartingAt,
			Shots:         row.Shots,
			ShotsOnTarget: row.ShotsOnTarget,
			Goals:         row.Goals,
			Assists:       row.Assists,
			Minutes:       row.Minutes,
		})
	}
	return out, nil
}

const recentStartsQuery = `
SELECT a.started
FROM player_appearances a
JOIN fixtures f ON f.id = a.fixture_id
WHERE a.player_id = $1
ORDER BY f.starting_at DESC NULLS LAST, f.id DESC
LIMIT $2`

func (r *StatLineRepository) ListRecentStarts(ctx context.Context, playerID int64, limit int) ([]bool, error) {
	var starts []bool
	if err := r.db.SelectContext(ctx, &starts, recentStartsQuery, playerID, limit); err != nil {
		return nil, fmt.Errorf("list recent starts player_id=%d: %w", playerID, err)
	}
	return starts, nil
}
