package form

import "context"

// Repository describes derived-row persistence needs from use cases.
// Form rows are fully replaced on every recomputation, never merged.
type Repository interface {
	UpsertTeamForms(ctx context.Context, items []TeamForm) error
	UpsertPlayerForms(ctx context.Context, items []PlayerForm) error
	UpsertAvailability(ctx context.Context, items []Availability) error

	GetTeamForm(ctx context.Context, teamID int64, sampleSize int) (*TeamForm, error)
	GetPlayerForm(ctx context.Context, playerID int64, sampleSize int) (*PlayerForm, error)
	ListTeamForms(ctx context.Context, sampleSize int) ([]TeamForm, error)
	ListPlayerForms(ctx context.Context, sampleSize int) ([]PlayerForm, error)

	// PruneSampleSizes drops form rows computed under sample sizes no
	// longer configured, so a narrowed window set leaves no stale rows.
	PruneSampleSizes(ctx context.Context, formSizes []int, availabilitySize int) error
}
