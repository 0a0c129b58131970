package reference

import "context"

// Repository describes reference-entity persistence needs from use cases.
// All writes are idempotent upserts keyed by the provider id.
type Repository interface {
	UpsertCountries(ctx context.Context, items []Country) error
	UpsertLeagues(ctx context.Context, items []League) error
	UpsertSeasons(ctx context.Context, items []Season) error
	UpsertVenues(ctx context.Context, items []Venue) error
	UpsertStatTypes(ctx context.Context, items []StatType) error
	UpsertTeams(ctx context.Context, items []Team) error
	UpsertPlayers(ctx context.Context, items []Player) error
	UpsertBookmakers(ctx context.Context, items []Bookmaker) error
	UpsertMarkets(ctx context.Context, items []Market) error

	ListSeasons(ctx context.Context) ([]Season, error)
	ListSeasonsByLeagues(ctx context.Context, leagueIDs []int64) ([]Season, error)
	ListTeamIDs(ctx context.Context) ([]int64, error)
	ListPlayerIDs(ctx context.Context) ([]int64, error)
	FindPlayerByName(ctx context.Context, name string) (*Player, error)
	StatTypeIDsByDeveloperName(ctx context.Context) (map[string]int64, error)
}
