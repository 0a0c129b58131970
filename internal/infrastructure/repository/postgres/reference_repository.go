package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/matchpulse/sportsync/internal/domain/reference"
	qb "github.com/matchpulse/sportsync/internal/platform/querybuilder"
)

type ReferenceRepository struct {
	db *sqlx.DB
}

func NewReferenceRepository(db *sqlx.DB) *ReferenceRepository {
	return &ReferenceRepository{db: db}
}

func (r *ReferenceRepository) UpsertCountries(ctx context.Context, items []reference.Country) error {
	if len(items) == 0 {
		return nil
	}
	return withTx(ctx, r.db, "upsert countries", func(tx *sqlx.Tx) error {
		for _, item := range items {
			model := countryInsertModel{ID: item.ID, Name: item.Name, Extra: nullableString(item.Extra)}
			if err := execUpsert(ctx, tx, "countries", model, `ON CONFLICT (id) DO UPDATE SET
    name = EXCLUDED.name,
    extra = EXCLUDED.extra,
    updated_at = NOW()`); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *ReferenceRepository) UpsertLeagues(ctx context.Context, items []reference.League) error {
	if len(items) == 0 {
		return nil
	}
	return withTx(ctx, r.db, "upsert leagues", func(tx *sqlx.Tx) error {
		for _, item := range items {
			model := leagueInsertModel{
				ID:        item.ID,
				CountryID: item.CountryID,
				Name:      item.Name,
				Short:     nullableString(item.Short),
				Extra:     nullableString(item.Extra),
			}
			if err := execUpsert(ctx, tx, "leagues", model, `ON CONFLICT (id) DO UPDATE SET
    country_id = EXCLUDED.country_id,
    name = EXCLUDED.name,
    short_code = EXCLUDED.short_code,
    extra = EXCLUDED.extra,
    updated_at = NOW()`); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *ReferenceRepository) UpsertSeasons(ctx context.Context, items []reference.Season) error {
	if len(items) == 0 {
		return nil
	}
	return withTx(ctx, r.db, "upsert seasons", func(tx *sqlx.Tx) error {
		for _, item := range items {
			model := seasonInsertModel{
				ID:        item.ID,
				LeagueID:  item.LeagueID,
				Name:      item.Name,
				IsCurrent: item.IsCurrent,
				StartDate: item.StartDate,
				EndDate:   item.EndDate,
				Extra:     nullableString(item.Extra),
			}
			if err := execUpsert(ctx, tx, "seasons", model, `ON CONFLICT (id) DO UPDATE SET
    league_id = EXCLUDED.league_id,
    name = EXCLUDED.name,
    is_current = EXCLUDED.is_current,
    start_date = EXCLUDED.start_date,
    end_date = EXCLUDED.end_date,
    extra = EXCLUDED.extra,
    updated_at = NOW()`); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *ReferenceRepository) UpsertVenues(ctx context.Context, items []reference.Venue) error {
	if len(items) == 0 {
		return nil
	}
	return withTx(ctx, r.db, "upsert venues", func(tx *sqlx.Tx) error {
		for _, item := range items {
			model := venueInsertModel{ID: item.ID, Name: item.Name, City: nullableString(item.City), Extra: nullableString(item.Extra)}
			if err := execUpsert(ctx, tx, "venues", model, `ON CONFLICT (id) DO UPDATE SET
    name = EXCLUDED.name,
    city = EXCLUDED.city,
    extra = EXCLUDED.extra,
    updated_at = NOW()`); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *ReferenceRepository) UpsertStatTypes(ctx context.Context, items []reference.StatType) error {
	if len(items) == 0 {
		return nil
	}
	return withTx(ctx, r.db, "upsert stat types", func(tx *sqlx.Tx) error {
		for _, item := range items {
			model := statTypeInsertModel{
				ID:            item.ID,
				Name:          item.Name,
				Code:          nullableString(item.Code),
				DeveloperName: nullableString(item.DeveloperName),
				Extra:         nullableString(item.Extra),
			}
			if err := execUpsert(ctx, tx, "types", model, `ON CONFLICT (id) DO UPDATE SET
    name = EXCLUDED.name,
    code = EXCLUDED.code,
    developer_name = EXCLUDED.developer_name,
    extra = EXCLUDED.extra,
    updated_at = NOW()`); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *ReferenceRepository) UpsertTeams(ctx context.Context, items []reference.Team) error {
	if len(items) == 0 {
		return nil
	}
	return withTx(ctx, r.db, "upsert teams", func(tx *sqlx.Tx) error {
		for _, item := range items {
			model := teamInsertModel{
				ID:        item.ID,
				Name:      item.Name,
				Short:     nullableString(item.Short),
				CountryID: item.CountryID,
				VenueID:   item.VenueID,
				Extra:     nullableString(item.Extra),
			}
			if err := execUpsert(ctx, tx, "teams", model, `ON CONFLICT (id) DO UPDATE SET
    name = EXCLUDED.name,
    short_code = EXCLUDED.short_code,
    country_id = EXCLUDED.country_id,
    venue_id = EXCLUDED.venue_id,
    extra = EXCLUDED.extra,
    updated_at = NOW()`); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *ReferenceRepository) UpsertPlayers(ctx context.Context, items []reference.Player) error {
	if len(items) == 0 {
		return nil
	}
	return withTx(ctx, r.db, "upsert players", func(tx *sqlx.Tx) error {
		for _, item := range items {
			model := playerInsertModel{
				ID:         item.ID,
				Name:       item.Name,
				CommonName: nullableString(item.CommonName),
				TeamID:     item.TeamID,
				CountryID:  item.CountryID,
				PositionID: item.PositionID,
				Extra:      nullableString(item.Extra),
			}
			if err := execUpsert(ctx, tx, "players", model, `ON CONFLICT (id) DO UPDATE SET
    name = EXCLUDED.name,
    common_name = EXCLUDED.common_name,
    team_id = EXCLUDED.team_id,
    country_id = EXCLUDED.country_id,
    position_id = EXCLUDED.position_id,
    extra = EXCLUDED.extra,
    updated_at = NOW()`); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *ReferenceRepository) UpsertBookmakers(ctx context.Context, items []reference.Bookmaker) error {
	if len(items) == 0 {
		return nil
	}
	return withTx(ctx, r.db, "upsert bookmakers", func(tx *sqlx.Tx) error {
		for _, item := range items {
			model := bookmakerInsertModel{ID: item.ID, Name: item.Name, Extra: nullableString(item.Extra)}
			if err := execUpsert(ctx, tx, "bookmakers", model, `ON CONFLICT (id) DO UPDATE SET
    name = EXCLUDED.name,
    extra = EXCLUDED.extra,
    updated_at = NOW()`); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *ReferenceRepository) UpsertMarkets(ctx context.Context, items []reference.Market) error {
	if len(items) == 0 {
		return nil
	}
	return withTx(ctx, r.db, "upsert markets", func(tx *sqlx.Tx) error {
		for _, item := range items {
			model := marketInsertModel{
				ID:            item.ID,
				Name:          item.Name,
				DeveloperName: nullableString(item.DeveloperName),
				Extra:         nullableString(item.Extra),
			}
			if err := execUpsert(ctx, tx, "markets", model, `ON CONFLICT (id) DO UPDATE SET
    name = EXCLUDED.name,
    developer_name = EXCLUDED.developer_name,
    extra = EXCLUDED.extra,
    updated_at = NOW()`); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *ReferenceRepository) ListSeasons(ctx context.Context) ([]reference.Season, error) {
	query, args, err := qb.Select("id", "league_id", "name", "is_current", "start_date", "end_date").
		From("seasons").
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list seasons query: %w", err)
	}
	return r.selectSeasons(ctx, query, args)
}

func (r *ReferenceRepository) ListSeasonsByLeagues(ctx context.Context, leagueIDs []int64) ([]reference.Season, error) {
	if len(leagueIDs) == 0 {
		return r.ListSeasons(ctx)
	}
	query, args, err := qb.Select("id", "league_id", "name", "is_current", "start_date", "end_date").
		From("seasons").
		Where(qb.In("league_id", int64Args(leagueIDs))).
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list seasons by leagues query: %w", err)
	}
	return r.selectSeasons(ctx, query, args)
}

func (r *ReferenceRepository) selectSeasons(ctx context.Context, query string, args []any) ([]reference.Season, error) {
	var rows []seasonRowModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list seasons: %w", err)
	}

	out := make([]reference.Season, 0, len(rows))
	for _, row := range rows {
		out = append(out, reference.Season{
			ID:        row.ID,
			LeagueID:  row.LeagueID,
			Name:      row.Name,
			IsCurrent: row.IsCurrent,
			StartDate: row.StartDate,
			EndDate:   row.EndDate,
		})
	}
	return out, nil
}

func (r *ReferenceRepository) ListTeamIDs(ctx context.Context) ([]int64, error) {
	return r.listIDs(ctx, "teams")
}

func (r *ReferenceRepository) ListPlayerIDs(ctx context.Context) ([]int64, error) {
	return r.listIDs(ctx, "players")
}

func (r *ReferenceRepository) listIDs(ctx context.Context, table string) ([]int64, error) {
	query, args, err := qb.Select("id").From(table).OrderBy("id").ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list %s ids query: %w", table, err)
	}
	var ids []int64
	if err := r.db.SelectContext(ctx, &ids, query, args...); err != nil {
		return nil, fmt.Errorf("list %s ids: %w", table, err)
	}
	return ids, nil
}

// FindPlayerByName matches a player by display or common name, case
// insensitively. Odds feeds key player props by name, not id.
func (r *ReferenceRepository) FindPlayerByName(ctx context.Context, name string) (*reference.Player, error) {
	normalized := strings.TrimSpace(name)
	if normalized == "" {
		return nil, nil
	}

	query, args, err := qb.Select("id", "name", "common_name", "team_id", "country_id", "position_id").
		From("players").
		Where(qb.Expr("(LOWER(name) = LOWER(?) OR LOWER(common_name) = LOWER(?))", normalized, normalized)).
		OrderBy("id").
		Limit(1).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build find player by name query: %w", err)
	}

	var row playerRowModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("find player by name: %w", err)
	}

	out := reference.Player{
		ID:         row.ID,
		Name:       row.Name,
		TeamID:     row.TeamID,
		CountryID:  row.CountryID,
		PositionID: row.PositionID,
	}
	if row.CommonName != nil {
		out.CommonName = *row.CommonName
	}
	return &out, nil
}

func (r *ReferenceRepository) StatTypeIDsByDeveloperName(ctx context.Context) (map[string]int64, error) {
	query, args, err := qb.Select("id", "developer_name").
		From("types").
		Where(qb.Expr("developer_name IS NOT NULL")).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build stat type lookup query: %w", err)
	}

	var rows []struct {
		ID            int64  `db:"id"`
		DeveloperName string `db:"developer_name"`
	}
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list stat types: %w", err)
	}

	out := make(map[string]int64, len(rows))
	for _, row := range rows {
		out[row.DeveloperName] = row.ID
	}
	return out, nil
}
