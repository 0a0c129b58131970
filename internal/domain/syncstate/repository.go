package syncstate

import "context"

// Repository is the key/value cursor store. Writes are last-write-wins;
// Get returns an empty string for an unknown key.
type Repository interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
}
