package fixture

import "time"

const (
	LocationHome = "home"
	LocationAway = "away"
)

// Fixture is a scheduled match. Scores stay nil until the provider
// reports them; once both are set the row is treated as final by the
// aggregation side.
type Fixture struct {
	ID         int64
	LeagueID   *int64
	SeasonID   *int64
	VenueID    *int64
	Status     string
	StartingAt *time.Time
	HomeTeamID *int64
	AwayTeamID *int64
	HomeScore  *int
	AwayScore  *int
	Extra      string
}

// Scored reports whether both final scores are known.
func (f Fixture) Scored() bool {
	return f.HomeScore != nil && f.AwayScore != nil
}

// Participant is one (fixture, team) side.
type Participant struct {
	FixtureID int64
	TeamID    int64
	Location  string
	Score     *int
	Extra     string
}

// HeadToHead is a cached summary of past meetings between two teams.
// TeamAID is always the smaller id so pairs are stored once.
type HeadToHead struct {
	TeamAID  int64
	TeamBID  int64
	Fixtures string
}
