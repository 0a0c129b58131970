package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/matchpulse/sportsync/internal/domain/odds"
	qb "github.com/matchpulse/sportsync/internal/platform/querybuilder"
)

type OddsRepository struct {
	db *sqlx.DB
}

func NewOddsRepository(db *sqlx.DB) *OddsRepository {
	return &OddsRepository{db: db}
}

const outcomeHashByProviderIDQuery = `
SELECT raw_hash FROM odds_outcomes WHERE provider_outcome_id = $1`

const outcomeHashByNaturalKeyQuery = `
SELECT raw_hash FROM odds_outcomes
WHERE fixture_id = $1 AND bookmaker_id = $2 AND market_id = $3
  AND label = $4 AND participant = $5 AND handicap = $6 AND total = $7`

// UpsertOutcomes writes a batch in one transaction. A row whose stored
// raw_hash matches the incoming payload is skipped entirely, so
// re-ingesting an unchanged feed performs zero writes.
func (r *OddsRepository) UpsertOutcomes(ctx context.Context, items []odds.Outcome) (odds.WriteResult, error) {
	var result odds.WriteResult
	if len(items) == 0 {
		return result, nil
	}

	err := withTx(ctx, r.db, "upsert odds outcomes", func(tx *sqlx.Tx) error {
		for _, item := range items {
			existingHash, found, err := lookupOutcomeHash(ctx, tx, item)
			if err != nil {
				return err
			}
			if found && existingHash == item.RawHash {
				result.Skipped++
				continue
			}

			key := item.Key()
			model := oddsOutcomeInsertModel{
				ProviderOutcomeID: item.ProviderOutcomeID,
				FixtureID:         item.FixtureID,
				BookmakerID:       item.BookmakerID,
				MarketID:          item.MarketID,
				Label:             item.Label,
				Participant:       key.Participant,
				Handicap:          key.Handicap,
				Total:             key.Total,
				Price:             item.Price,
				Probability:       item.Probability,
				Stopped:           item.Stopped,
				RawHash:           item.RawHash,
				Raw:               nullableString(item.Raw),
			}
			if err := execUpsert(ctx, tx, "odds_outcomes", model, `ON CONFLICT (fixture_id, bookmaker_id, market_id, label, participant, handicap, total) DO UPDATE SET
    provider_outcome_id = COALESCE(EXCLUDED.provider_outcome_id, odds_outcomes.provider_outcome_id),
    price = EXCLUDED.price,
    probability = EXCLUDED.probability,
    stopped = EXCLUDED.stopped,
    raw_hash = EXCLUDED.raw_hash,
    raw = EXCLUDED.raw,
    updated_at = NOW()`); err != nil {
				return err
			}
			result.Upserted++
		}
		return nil
	})
	if err != nil {
		return odds.WriteResult{}, err
	}
	return result, nil
}

// lookupOutcomeHash finds the stored hash by provider outcome id
// first, then by the composite natural key.
func lookupOutcomeHash(ctx context.Context, tx *sqlx.Tx, item odds.Outcome) (string, bool, error) {
	var hash string
	if item.ProviderOutcomeID != nil {
		err := tx.GetContext(ctx, &hash, outcomeHashByProviderIDQuery, *item.ProviderOutcomeID)
		if err == nil {
			return hash, true, nil
		}
		if !isNotFound(err) {
			return "", false, fmt.Errorf("lookup outcome by provider id: %w", err)
		}
	}

	key := item.Key()
	err := tx.GetContext(ctx, &hash, outcomeHashByNaturalKeyQuery,
		key.FixtureID, key.BookmakerID, key.MarketID, key.Label, key.Participant, key.Handicap, key.Total)
	if err == nil {
		return hash, true, nil
	}
	if isNotFound(err) {
		return "", false, nil
	}
	return "", false, fmt.Errorf("lookup outcome by natural key: %w", err)
}

const playerOddsHashQuery = `
SELECT raw_hash FROM player_odds
WHERE fixture_id = $1 AND player_id = $2 AND market_id = $3 AND line = $4 AND selection = $5`

func (r *OddsRepository) UpsertPlayerOdds(ctx context.Context, items []odds.PlayerOdds) (odds.WriteResult, error) {
	var result odds.WriteResult
	if len(items) == 0 {
		return result, nil
	}

	err := withTx(ctx, r.db, "upsert player odds", func(tx *sqlx.Tx) error {
		for _, item := range items {
			var existingHash string
			err := tx.GetContext(ctx, &existingHash, playerOddsHashQuery,
				item.FixtureID, item.PlayerID, item.MarketID, item.Line, item.Selection)
			if err == nil && existingHash == item.RawHash {
				result.Skipped++
				continue
			}
			if err != nil && !isNotFound(err) {
				return fmt.Errorf("lookup player odds: %w", err)
			}

			model := playerOddsInsertModel{
				FixtureID: item.FixtureID,
				PlayerID:  item.PlayerID,
				MarketID:  item.MarketID,
				Line:      item.Line,
				Selection: item.Selection,
				Price:     item.Price,
				RawHash:   item.RawHash,
				Raw:       nullableString(item.Raw),
			}
			if err := execUpsert(ctx, tx, "player_odds", model, `ON CONFLICT (fixture_id, player_id, market_id, line, selection) DO UPDATE SET
    price = EXCLUDED.price,
    raw_hash = EXCLUDED.raw_hash,
    raw = EXCLUDED.raw,
    updated_at = NOW()`); err != nil {
				return err
			}
			result.Upserted++
		}
		return nil
	})
	if err != nil {
		return odds.WriteResult{}, err
	}
	return result, nil
}

// ReplaceLatest rewrites the snapshot for every fixture in the batch:
// rows for those fixtures are deleted first so selections the
// bookmaker no longer quotes do not linger, then the current set is
// inserted.
func (r *OddsRepository) ReplaceLatest(ctx context.Context, items []odds.Latest) error {
	if len(items) == 0 {
		return nil
	}
	fixtureIDs := make([]int64, 0, len(items))
	seen := make(map[int64]struct{}, len(items))
	for _, item := range items {
		if _, ok := seen[item.FixtureID]; ok {
			continue
		}
		seen[item.FixtureID] = struct{}{}
		fixtureIDs = append(fixtureIDs, item.FixtureID)
	}

	return withTx(ctx, r.db, "replace latest odds", func(tx *sqlx.Tx) error {
		query, args, err := qb.DeleteFrom("odds_latest").
			Where(qb.In("fixture_id", int64Args(fixtureIDs))).
			ToSQL()
		if err != nil {
			return fmt.Errorf("build prune latest odds query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("prune latest odds: %w", err)
		}

		for _, item := range items {
			model := latestOddsInsertModel{
				FixtureID:   item.FixtureID,
				BookmakerID: item.BookmakerID,
				MarketID:    item.MarketID,
				MarketKey:   item.MarketKey,
				Selection:   item.Selection,
				Line:        item.Line,
				Price:       item.Price,
				SeenAt:      item.SeenAt,
			}
			if err := execUpsert(ctx, tx, "odds_latest", model, `ON CONFLICT (fixture_id, bookmaker_id, market_key, selection, COALESCE(line, '-999999'::numeric)) DO UPDATE SET
    market_id = EXCLUDED.market_id,
    line = EXCLUDED.line,
    price = EXCLUDED.price,
    seen_at = EXCLUDED.seen_at,
    updated_at = NOW()`); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *OddsRepository) ListOutcomesForFixtures(ctx context.Context, fixtureIDs []int64) ([]odds.Outcome, error) {
	if len(fixtureIDs) == 0 {
		return nil, nil
	}

	query, args, err := qb.Select("provider_outcome_id", "fixture_id", "bookmaker_id", "market_id",
		"label", "participant", "handicap", "total", "price", "probability", "stopped", "raw_hash").
		From("odds_outcomes").
		Where(qb.In("fixture_id", int64Args(fixtureIDs))).
		OrderBy("fixture_id", "market_id", "label").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list outcomes query: %w", err)
	}

	var rows []oddsOutcomeRowModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list outcomes: %w", err)
	}

	out := make([]odds.Outcome, 0, len(rows))
	for _, row := range rows {
		out = append(out, odds.Outcome{
			ProviderOutcomeID: row.ProviderOutcomeID,
			FixtureID:         row.FixtureID,
			BookmakerID:       row.BookmakerID,
			MarketID:          row.MarketID,
			Label:             row.Label,
			Participant:       nullableString(row.Participant),
			Handicap:          nullableString(row.Handicap),
			Total:             nullableString(row.Total),
			Price:             row.Price,
			Probability:       row.Probability,
			Stopped:           row.Stopped,
			RawHash:           row.RawHash,
		})
	}
	return out, nil
}

func (r *OddsRepository) ListLatestByMarket(ctx context.Context, fixtureIDs []int64, bookmakerID int64, marketKey string) ([]odds.Latest, error) {
	if len(fixtureIDs) == 0 {
		return nil, nil
	}

	query, args, err := qb.Select("fixture_id", "bookmaker_id", "market_id", "market_key", "selection", "line", "price", "seen_at").
		From("odds_latest").
		Where(
			qb.In("fixture_id", int64Args(fixtureIDs)),
			qb.Eq("bookmaker_id", bookmakerID),
			qb.Eq("market_key", marketKey),
		).
		OrderBy("fixture_id", "selection", "line").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list latest odds query: %w", err)
	}

	var rows []latestOddsRowModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list latest odds: %w", err)
	}

	out := make([]odds.Latest, 0, len(rows))
	for _, row := range rows {
		out = append(out, odds.Latest{
			FixtureID:   row.FixtureID,
			BookmakerID: row.BookmakerID,
			MarketID:    row.MarketID,
			MarketKey:   row.MarketKey,
			Selection:   row.Selection,
			Line:        row.Line,
			Price:       row.Price,
			SeenAt:      row.SeenAt,
		})
	}
	return out, nil
}
