package odds

import "time"

// Outcome is one priced selection for one (fixture, bookmaker, market).
// RawHash fingerprints the source payload so unchanged re-ingestion
// skips the write.
type Outcome struct {
	ProviderOutcomeID *int64
	FixtureID         int64
	BookmakerID       int64
	MarketID          int64
	Label             string
	Participant       *string
	Handicap          *string
	Total             *string
	Price             *float64
	Probability       *string
	Stopped           bool
	RawHash           string
	Raw               string
}

// NaturalKey identifies an outcome when the provider outcome id is
// absent or unstable.
type NaturalKey struct {
	FixtureID   int64
	BookmakerID int64
	MarketID    int64
	Label       string
	Participant string
	Handicap    string
	Total       string
}

// Key returns the composite identity of the outcome.
func (o Outcome) Key() NaturalKey {
	k := NaturalKey{
		FixtureID:   o.FixtureID,
		BookmakerID: o.BookmakerID,
		MarketID:    o.MarketID,
		Label:       o.Label,
	}
	if o.Participant != nil {
		k.Participant = *o.Participant
	}
	if o.Handicap != nil {
		k.Handicap = *o.Handicap
	}
	if o.Total != nil {
		k.Total = *o.Total
	}
	return k
}

// PlayerOdds is one priced player-prop selection.
type PlayerOdds struct {
	FixtureID int64
	PlayerID  int64
	MarketID  int64
	Line      float64
	Selection string
	Price     *float64
	RawHash   string
	Raw       string
}

// Latest is the normalized latest-odds snapshot consumed by the
// candidate filter. MarketKey is the canonical market name.
type Latest struct {
	FixtureID   int64
	BookmakerID int64
	MarketID    int64
	MarketKey   string
	Selection   string
	Line        *float64
	Price       float64
	SeenAt      time.Time
}
