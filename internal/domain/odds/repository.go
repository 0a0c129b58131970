package odds

import "context"

// WriteResult reports what an outcome batch actually did, since
// hash-identical rows are skipped rather than rewritten.
type WriteResult struct {
	Upserted int
	Skipped  int
}

// Repository describes odds persistence needs from use cases.
type Repository interface {
	// UpsertOutcomes writes a batch, skipping rows whose stored
	// raw_hash already matches.
	UpsertOutcomes(ctx context.Context, items []Outcome) (WriteResult, error)
	UpsertPlayerOdds(ctx context.Context, items []PlayerOdds) (WriteResult, error)

	// ReplaceLatest overwrites the snapshot rows for the given
	// (fixture, bookmaker, market, selection, line) keys.
	ReplaceLatest(ctx context.Context, items []Latest) error
	// ListOutcomesForFixtures returns stored outcomes for the given
	// fixtures, every bookmaker and market.
	ListOutcomesForFixtures(ctx context.Context, fixtureIDs []int64) ([]Outcome, error)
	// ListLatestByMarket returns snapshot rows for one bookmaker and
	// market key across the given fixtures.
	ListLatestByMarket(ctx context.Context, fixtureIDs []int64, bookmakerID int64, marketKey string) ([]Latest, error)
}
