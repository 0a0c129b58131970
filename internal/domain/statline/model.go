package statline

import "time"

// TeamStat is one typed statistic row for a (fixture, team) side.
// Value is nil when the provider payload carried no extractable number.
type TeamStat struct {
	FixtureID int64
	TeamID    int64
	TypeID    int64
	Value     *float64
	Raw       string
}

// PlayerStat is one typed statistic row for a (fixture, player) pair.
type PlayerStat struct {
	FixtureID int64
	PlayerID  int64
	TeamID    *int64
	TypeID    int64
	Value     *float64
	Raw       string
}

// Appearance records that a player was in a fixture squad. Started
// distinguishes the starting eleven from bench entries.
type Appearance struct {
	FixtureID int64
	PlayerID  int64
	TeamID    *int64
	Started   bool
	Minutes   *float64
	Raw       string
}

// TeamLine is a pivoted per-fixture view the aggregation engine reads:
// one scored fixture from one team's perspective, newest first.
type TeamLine struct {
	FixtureID    int64
	StartingAt   *time.Time
	Location     string
	GoalsFor     int
	GoalsAgainst int
	ShotsFor     *float64
	ShotsAgainst *float64
}

// PlayerLine is the per-fixture pivot for one player.
type PlayerLine struct {
	FixtureID     int64
	StartingAt    *time.Time
	Shots         *float64
	ShotsOnTarget *float64
	Goals         *float64
	Assists       *float64
	Minutes       *float64
}
