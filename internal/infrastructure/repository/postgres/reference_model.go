package postgres

import "time"

type countryInsertModel struct {
	ID    int64   `db:"id"`
	Name  string  `db:"name"`
	Extra *string `db:"extra"`
}

type leagueInsertModel struct {
	ID        int64   `db:"id"`
	CountryID *int64  `db:"country_id"`
	Name      string  `db:"name"`
	Short     *string `db:"short_code"`
	Extra     *string `db:"extra"`
}

type seasonInsertModel struct {
	ID        int64      `db:"id"`
	LeagueID  int64      `db:"league_id"`
	Name      string     `db:"name"`
	IsCurrent bool       `db:"is_current"`
	StartDate *time.Time `db:"start_date"`
	EndDate   *time.Time `db:"end_date"`
	Extra     *string    `db:"extra"`
}

type seasonRowModel struct {
	ID        int64      `db:"id"`
	LeagueID  int64      `db:"league_id"`
	Name      string     `db:"name"`
	IsCurrent bool       `db:"is_current"`
	StartDate *time.Time `db:"start_date"`
	EndDate   *time.Time `db:"end_date"`
}

type venueInsertModel struct {
	ID    int64   `db:"id"`
	Name  string  `db:"name"`
	City  *string `db:"city"`
	Extra *string `db:"extra"`
}

type statTypeInsertModel struct {
	ID            int64   `db:"id"`
	Name          string  `db:"name"`
	Code          *string `db:"code"`
	DeveloperName *string `db:"developer_name"`
	Extra         *string `db:"extra"`
}

type teamInsertModel struct {
	ID        int64   `db:"id"`
	Name      string  `db:"name"`
	Short     *string `db:"short_code"`
	CountryID *int64  `db:"country_id"`
	VenueID   *int64  `db:"venue_id"`
	Extra     *string `db:"extra"`
}

type playerInsertModel struct {
	ID         int64   `db:"id"`
	Name       string  `db:"name"`
	CommonName *string `db:"common_name"`
	TeamID     *int64  `db:"team_id"`
	CountryID  *int64  `db:"country_id"`
	PositionID *int64  `db:"position_id"`
	Extra      *string `db:"extra"`
}

type playerRowModel struct {
	ID         int64   `db:"id"`
	Name       string  `db:"name"`
	CommonName *string `db:"common_name"`
	TeamID     *int64  `db:"team_id"`
	CountryID  *int64  `db:"country_id"`
	PositionID *int64  `db:"position_id"`
}

type bookmakerInsertModel struct {
	ID    int64   `db:"id"`
	Name  string  `db:"name"`
	Extra *string `db:"extra"`
}

type marketInsertModel struct {
	ID            int64   `db:"id"`
	Name          string  `db:"name"`
	DeveloperName *string `db:"developer_name"`
	Extra         *string `db:"extra"`
}
