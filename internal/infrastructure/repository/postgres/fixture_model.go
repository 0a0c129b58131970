package postgres

import "time"

type fixtureInsertModel struct {
	ID         int64      `db:"id"`
	LeagueID   *int64     `db:"league_id"`
	SeasonID   *int64     `db:"season_id"`
	VenueID    *int64     `db:"venue_id"`
	Status     *string    `db:"status"`
	StartingAt *time.Time `db:"starting_at"`
	HomeTeamID *int64     `db:"home_team_id"`
	AwayTeamID *int64     `db:"away_team_id"`
	HomeScore  *int       `db:"home_score"`
	AwayScore  *int       `db:"away_score"`
	Extra      *string    `db:"extra"`
}

type fixtureRowModel struct {
	ID         int64      `db:"id"`
	LeagueID   *int64     `db:"league_id"`
	SeasonID   *int64     `db:"season_id"`
	VenueID    *int64     `db:"venue_id"`
	Status     *string    `db:"status"`
	StartingAt *time.Time `db:"starting_at"`
	HomeTeamID *int64     `db:"home_team_id"`
	AwayTeamID *int64     `db:"away_team_id"`
	HomeScore  *int       `db:"home_score"`
	AwayScore  *int       `db:"away_score"`
}

type participantInsertModel struct {
	FixtureID int64   `db:"fixture_id"`
	TeamID    int64   `db:"team_id"`
	Location  *string `db:"location"`
	Score     *int    `db:"score"`
	Extra     *string `db:"extra"`
}

type headToHeadInsertModel struct {
	TeamAID  int64  `db:"team_a_id"`
	TeamBID  int64  `db:"team_b_id"`
	Fixtures string `db:"fixtures"`
}
