package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/matchpulse/sportsync/internal/domain/form"
	qb "github.com/matchpulse/sportsync/internal/platform/querybuilder"
)

type FormRepository struct {
	db *sqlx.DB
}

func NewFormRepository(db *sqlx.DB) *FormRepository {
	return &FormRepository{db: db}
}

type teamFormModel struct {
	TeamID          int64     `db:"team_id"`
	SampleSize      int       `db:"sample_size"`
	Played          int       `db:"played"`
	GoalsForAvg     float64   `db:"goals_for_avg"`
	GoalsAgainstAvg float64   `db:"goals_against_avg"`
	Over25Pct       float64   `db:"over25_pct"`
	Under25Pct      float64   `db:"under25_pct"`
	WinPct          float64   `db:"win_pct"`
	DrawPct         float64   `db:"draw_pct"`
	LossPct         float64   `db:"loss_pct"`
	ShotsForAvg     *float64  `db:"shots_for_avg"`
	ShotsAgainstAvg *float64  `db:"shots_against_avg"`
	RawFixtures     string    `db:"raw_fixtures"`
	ComputedAt      time.Time `db:"computed_at"`
}

type playerFormModel struct {
	PlayerID        int64     `db:"player_id"`
	SampleSize      int       `db:"sample_size"`
	Played          int       `db:"played"`
	ShotsAvg        *float64  `db:"shots_avg"`
	SotAvg          *float64  `db:"sot_avg"`
	GoalsAvg        *float64  `db:"goals_avg"`
	AssistsAvg      *float64  `db:"assists_avg"`
	MinutesAvg      *float64  `db:"minutes_avg"`
	Shots1PlusPct   *float64  `db:"shots1_plus_pct"`
	Shots2PlusPct   *float64  `db:"shots2_plus_pct"`
	Shots3PlusPct   *float64  `db:"shots3_plus_pct"`
	Sot1PlusPct     *float64  `db:"sot1_plus_pct"`
	Sot2PlusPct     *float64  `db:"sot2_plus_pct"`
	Goals1PlusPct   *float64  `db:"goals1_plus_pct"`
	Goals2PlusPct   *float64  `db:"goals2_plus_pct"`
	Assists1PlusPct *float64  `db:"assists1_plus_pct"`
	RawFixtures     string    `db:"raw_fixtures"`
	ComputedAt      time.Time `db:"computed_at"`
}

type availabilityModel struct {
	PlayerID      int64     `db:"player_id"`
	SampleSize    int       `db:"sample_size"`
	Appearances   int       `db:"appearances"`
	Starts        int       `db:"starts"`
	LikelyStarter bool      `db:"likely_starter"`
	ComputedAt    time.Time `db:"computed_at"`
}

// Form rows are derived data, so conflicts always replace every column
// with the freshly computed values.
func (r *FormRepository) UpsertTeamForms(ctx context.Context, items []form.TeamForm) error {
	if len(items) == 0 {
		return nil
	}
	return withTx(ctx, r.db, "upsert team forms", func(tx *sqlx.Tx) error {
		for _, item := range items {
			model := teamFormModel(item)
			if err := execUpsert(ctx, tx, "team_forms", model, `ON CONFLICT (team_id, sample_size) DO UPDATE SET
    played = EXCLUDED.played,
    goals_for_avg = EXCLUDED.goals_for_avg,
    goals_against_avg = EXCLUDED.goals_against_avg,
    over25_pct = EXCLUDED.over25_pct,
    under25_pct = EXCLUDED.under25_pct,
    win_pct = EXCLUDED.win_pct,
    draw_pct = EXCLUDED.draw_pct,
    loss_pct = EXCLUDED.loss_pct,
    shots_for_avg = EXCLUDED.shots_for_avg,
    shots_against_avg = EXCLUDED.shots_against_avg,
    raw_fixtures = EXCLUDED.raw_fixtures,
    computed_at = EXCLUDED.computed_at,
    updated_at = NOW()`); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *FormRepository) UpsertPlayerForms(ctx context.Context, items []form.PlayerForm) error {
	if len(items) == 0 {
		return nil
	}
	return withTx(ctx, r.db, "upsert player forms", func(tx *sqlx.Tx) error {
		for _, item := range items {
			model := playerFormModel(item)
			if err := execUpsert(ctx, tx, "player_forms", model, `ON CONFLICT (player_id, sample_size) DO UPDATE SET
    played = EXCLUDED.played,
    shots_avg = EXCLUDED.shots_avg,
    sot_avg = EXCLUDED.sot_avg,
    goals_avg = EXCLUDED.goals_avg,
    assists_avg = EXCLUDED.assists_avg,
    minutes_avg = EXCLUDED.minutes_avg,
    shots1_plus_pct = EXCLUDED.shots1_plus_pct,
    shots2_plus_pct = EXCLUDED.shots2_plus_pct,
    shots3_plus_pct = EXCLUDED.shots3_plus_pct,
    sot1_plus_pct = EXCLUDED.sot1_plus_pct,
    sot2_plus_pct = EXCLUDED.sot2_plus_pct,
    goals1_plus_pct = EXCLUDED.goals1_plus_pct,
    goals2_plus_pct = EXCLUDED.goals2_plus_pct,
    assists1_plus_pct = EXCLUDED.assists1_plus_pct,
    raw_fixtures = EXCLUDED.raw_fixtures,
    computed_at = EXCLUDED.computed_at,
    updated_at = NOW()`); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *FormRepository) UpsertAvailability(ctx context.Context, items []form.Availability) error {
	if len(items) == 0 {
		return nil
	}
	return withTx(ctx, r.db, "upsert availability", func(tx *sqlx.Tx) error {
		for _, item := range items {
			model := availabilityModel(item)
			if err := execUpsert(ctx, tx, "player_availability", model, `ON CONFLICT (player_id, sample_size) DO UPDATE SET
    appearances = EXCLUDED.appearances,
    starts = EXCLUDED.starts,
    likely_starter = EXCLUDED.likely_starter,
    computed_at = EXCLUDED.computed_at,
    updated_at = NOW()`); err != nil {
				return err
			}
		}
		return nil
	})
}

var teamFormColumns = []string{
	"team_id", "sample_size", "played", "goals_for_avg", "goals_against_avg",
	"over25_pct", "under25_pct", "win_pct", "draw_pct", "loss_pct",
	"shots_for_avg", "shots_against_avg", "raw_fixtures", "computed_at",
}

var playerFormColumns = []string{
	"player_id", "sample_size", "played", "shots_avg", "sot_avg", "goals_avg",
	"assists_avg", "minutes_avg", "shots1_plus_pct", "shots2_plus_pct",
	"shots3_plus_pct", "sot1_plus_pct", "sot2_plus_pct", "goals1_plus_pct",
	"goals2_plus_pct", "assists1_plus_pct", "raw_fixtures", "computed_at",
}

func (r *FormRepository) GetTeamForm(ctx context.Context, teamID int64, sampleSize int) (*form.TeamForm, error) {
	query, args, err := qb.Select(teamFormColumns...).
		From("team_forms").
		Where(qb.Eq("team_id", teamID), qb.Eq("sample_size", sampleSize)).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build get team form query: %w", err)
	}

	var row teamFormModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get team form: %w", err)
	}
	out := form.TeamForm(row)
	return &out, nil
}

func (r *FormRepository) GetPlayerForm(ctx context.Context, playerID int64, sampleSize int) (*form.PlayerForm, error) {
	query, args, err := qb.Select(playerFormColumns...).
		From("player_forms").
		Where(qb.Eq("player_id", playerID), qb.Eq("sample_size", sampleSize)).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build get player form query: %w", err)
	}

	var row playerFormModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get player form: %w", err)
	}
	out := form.PlayerForm(row)
	return &out, nil
}

func (r *FormRepository) ListTeamForms(ctx context.Context, sampleSize int) ([]form.TeamForm, error) {
	query, args, err := qb.Select(teamFormColumns...).
		From("team_forms").
		Where(qb.Eq("sample_size", sampleSize)).
		OrderBy("team_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list team forms query: %w", err)
	}

	var rows []teamFormModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list team forms: %w", err)
	}
	out := make([]form.TeamForm, 0, len(rows))
	for _, row := range rows {
		out = append(out, form.TeamForm(row))
	}
	return out, nil
}

func (r *FormRepository) ListPlayerForms(ctx context.Context, sampleSize int) ([]form.PlayerForm, error) {
	query, args, err := qb.Select(playerFormColumns...).
		From("player_forms").
		Where(qb.Eq("sample_size", sampleSize)).
		OrderBy("player_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list player forms query: %w", err)
	}

	var rows []playerFormModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list player forms: %w", err)
	}
	out := make([]form.PlayerForm, 0, len(rows))
	for _, row := range rows {
		out = append(out, form.PlayerForm(row))
	}
	return out, nil
}

// PruneSampleSizes deletes form rows left behind when the configured
// window set shrinks. An empty size list prunes nothing.
func (r *FormRepository) PruneSampleSizes(ctx context.Context, formSizes []int, availabilitySize int) error {
	if len(formSizes) == 0 {
		return nil
	}
	return withTx(ctx, r.db, "prune form sample sizes", func(tx *sqlx.Tx) error {
		for _, table := range []string{"team_forms", "player_forms"} {
			query, args, err := qb.DeleteFrom(table).
				Where(qb.NotIn("sample_size", intArgs(formSizes))).
				ToSQL()
			if err != nil {
				return fmt.Errorf("build prune %s query: %w", table, err)
			}
			if _, err := tx.ExecContext(ctx, query, args...); err != nil {
				return fmt.Errorf("prune %s: %w", table, err)
			}
		}

		query, args, err := qb.DeleteFrom("player_availability").
			Where(qb.NotIn("sample_size", intArgs([]int{availabilitySize}))).
			ToSQL()
		if err != nil {
			return fmt.Errorf("build prune player_availability query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("prune player_availability: %w", err)
		}
		return nil
	})
}

func intArgs(values []int) []any {
	out := make([]any, 0, len(values))
	for _, v := range values {
		out = append(out, v)
	}
	return out
}
