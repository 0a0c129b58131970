package form

import "time"

// FixtureSample is one contributing fixture inside a form row's raw
// sequence, newest first. Downstream consumers re-derive hit rates
// over alternate windows from these without re-querying stat lines.
type FixtureSample struct {
	FixtureID  int64               `json:"fixture_id"`
	StartingAt *time.Time          `json:"starting_at,omitempty"`
	Location   string              `json:"location,omitempty"`
	Values     map[string]*float64 `json:"values"`
}

// TeamForm is a recomputed rolling-window summary for one team and one
// sample size. Percentages are fractions in [0, 1].
type TeamForm struct {
	TeamID          int64
	SampleSize      int
	Played          int
	GoalsForAvg     float64
	GoalsAgainstAvg float64
	Over25Pct       float64
	Under25Pct      float64
	WinPct          float64
	DrawPct         float64
	LossPct         float64
	ShotsForAvg     *float64
	ShotsAgainstAvg *float64
	RawFixtures     string
	ComputedAt      time.Time
}

// PlayerForm mirrors TeamForm for one player.
type PlayerForm struct {
	PlayerID        int64
	SampleSize      int
	Played          int
	ShotsAvg        *float64
	SotAvg          *float64
	GoalsAvg        *float64
	AssistsAvg      *float64
	MinutesAvg      *float64
	Shots1PlusPct   *float64
	Shots2PlusPct   *float64
	Shots3PlusPct   *float64
	Sot1PlusPct     *float64
	Sot2PlusPct     *float64
	Goals1PlusPct   *float64
	Goals2PlusPct   *float64
	Assists1PlusPct *float64
	RawFixtures     string
	ComputedAt      time.Time
}

// Availability marks whether a player is a likely starter based on
// recent lineups.
type Availability struct {
	PlayerID      int64
	SampleSize    int
	Appearances   int
	Starts        int
	LikelyStarter bool
	ComputedAt    time.Time
}
