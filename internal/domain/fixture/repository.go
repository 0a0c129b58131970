package fixture

import (
	"context"
	"time"
)

// Repository describes fixture persistence needs from use cases.
type Repository interface {
	UpsertFixtures(ctx context.Context, items []Fixture) error
	UpsertParticipants(ctx context.Context, items []Participant) error
	UpsertHeadToHead(ctx context.Context, item HeadToHead) error

	ListBetween(ctx context.Context, from, to time.Time) ([]Fixture, error)
	ListIDsBetween(ctx context.Context, from, to time.Time) ([]int64, error)
	ListOutsideSeasons(ctx context.Context, keepSeasonIDs []int64) ([]Fixture, error)
}
