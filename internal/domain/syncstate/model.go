package syncstate

import "time"

// Cursor is one resumable stream marker, e.g. key "teams_id_after"
// with the last ingested provider id as its value.
type Cursor struct {
	Key       string
	Value     string
	UpdatedAt time.Time
}
