package postgres

import "time"

// Natural-key parts are stored as empty strings rather than NULLs so
// the unique constraint behaves as one composite key.
type oddsOutcomeInsertModel struct {
	ProviderOutcomeID *int64   `db:"provider_outcome_id"`
	FixtureID         int64    `db:"fixture_id"`
	BookmakerID       int64    `db:"bookmaker_id"`
	MarketID          int64    `db:"market_id"`
	Label             string   `db:"label"`
	Participant       string   `db:"participant"`
	Handicap          string   `db:"handicap"`
	Total             string   `db:"total"`
	Price             *float64 `db:"price"`
	Probability       *string  `db:"probability"`
	Stopped           bool     `db:"stopped"`
	RawHash           string   `db:"raw_hash"`
	Raw               *string  `db:"raw"`
}

type oddsOutcomeRowModel struct {
	ProviderOutcomeID *int64   `db:"provider_outcome_id"`
	FixtureID         int64    `db:"fixture_id"`
	BookmakerID       int64    `db:"bookmaker_id"`
	MarketID          int64    `db:"market_id"`
	Label             string   `db:"label"`
	Participant       string   `db:"participant"`
	Handicap          string   `db:"handicap"`
	Total             string   `db:"total"`
	Price             *float64 `db:"price"`
	Probability       *string  `db:"probability"`
	Stopped           bool     `db:"stopped"`
	RawHash           string   `db:"raw_hash"`
}

type playerOddsInsertModel struct {
	FixtureID int64    `db:"fixture_id"`
	PlayerID  int64    `db:"player_id"`
	MarketID  int64    `db:"market_id"`
	Line      float64  `db:"line"`
	Selection string   `db:"selection"`
	Price     *float64 `db:"price"`
	RawHash   string   `db:"raw_hash"`
	Raw       *string  `db:"raw"`
}

type latestOddsInsertModel struct {
	FixtureID   int64     `db:"fixture_id"`
	BookmakerID int64     `db:"bookmaker_id"`
	MarketID    int64     `db:"market_id"`
	MarketKey   string    `db:"market_key"`
	Selection   string    `db:"selection"`
	Line        *float64  `db:"line"`
	Price       float64   `db:"price"`
	SeenAt      time.Time `db:"seen_at"`
}

type latestOddsRowModel struct {
	FixtureID   int64     `db:"fixture_id"`
	BookmakerID int64     `db:"bookmaker_id"`
	MarketID    int64     `db:"market_id"`
	MarketKey   string    `db:"market_key"`
	Selection   string    `db:"selection"`
	Line        *float64  `db:"line"`
	Price       float64   `db:"price"`
	SeenAt      time.Time `db:"seen_at"`
}
