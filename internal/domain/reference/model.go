package reference

import "time"

// Country is a provider-keyed country row.
type Country struct {
	ID    int64
	Name  string
	Extra string
}

// League is a competition within a country.
type League struct {
	ID        int64
	CountryID *int64
	Name      string
	Short     string
	Extra     string
}

// Season is one edition of a league. IsCurrent marks the provider's
// active season; EndDate drives the keep-window policy.
type Season struct {
	ID        int64
	LeagueID  int64
	Name      string
	IsCurrent bool
	StartDate *time.Time
	EndDate   *time.Time
	Extra     string
}

type Venue struct {
	ID    int64
	Name  string
	City  string
	Extra string
}

// StatType is a provider stat definition; DeveloperName is the stable
// machine key (e.g. SHOTS_TOTAL) used when pivoting stat lines.
type StatType struct {
	ID            int64
	Name          string
	Code          string
	DeveloperName string
	Extra         string
}

type Team struct {
	ID        int64
	Name      string
	Short     string
	CountryID *int64
	VenueID   *int64
	Extra     string
}

type Player struct {
	ID         int64
	Name       string
	CommonName string
	TeamID     *int64
	CountryID  *int64
	PositionID *int64
	Extra      string
}

type Bookmaker struct {
	ID    int64
	Name  string
	Extra string
}

type Market struct {
	ID            int64
	Name          string
	DeveloperName string
	Extra         string
}
