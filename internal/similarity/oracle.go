package similarity

import "context"

// Match is the single nearest reference entry for a queried unit.
// Score is cosine similarity in [0,1]; 1.0 means identical.
type Match struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// Oracle resolves a text unit to its nearest known reference entry.
// A nil Match with a nil error means the index holds no entry for the
// unit. Callers must tolerate per-call failure without aborting the
// surrounding request.
type Oracle interface {
	Query(ctx context.Context, unit string) (*Match, error)
}
