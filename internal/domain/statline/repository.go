package statline

import "context"

// Repository describes statistic-line persistence needs from use cases.
type Repository interface {
	UpsertTeamStats(ctx context.Context, items []TeamStat) error
	UpsertPlayerStats(ctx context.Context, items []PlayerStat) error
	UpsertAppearances(ctx context.Context, items []Appearance) error

	// ListTeamLines returns the team's most recent scored fixtures,
	// newest first, at most limit rows.
	ListTeamLines(ctx context.Context, teamID int64, limit int) ([]TeamLine, error)
	// ListPlayerLines returns the player's most recent appearances in
	// scored fixtures, newest first, at most limit rows.
	ListPlayerLines(ctx context.Context, playerID int64, limit int) ([]PlayerLine, error)
	// ListRecentStarts returns started flags for the player's most
	// recent appearances, newest first, at most limit rows.
	ListRecentStarts(ctx context.Context, playerID int64, limit int) ([]bool, error)
}
