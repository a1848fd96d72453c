package refindex

import (
	"context"

	"github.com/google/uuid"
)

// Entry is one labeled reference phrase held in the similarity index.
type Entry struct {
	ID        uuid.UUID
	Label     string
	Content   string
	Embedding []float32
}

// Neighbor is the nearest entry for a query vector. Score is cosine
// similarity in [0,1].
type Neighbor struct {
	Label   string  `json:"label"`
	Content string  `json:"content"`
	Score   float64 `json:"score"`
}

type Store interface {
	Upsert(ctx context.Context, entries []Entry) error
	// Nearest returns the single closest entry, or nil when the index is
	// empty.
	Nearest(ctx context.Context, query []float32) (*Neighbor, error)
	Count(ctx context.Context) (int, error)
	DeleteLabel(ctx context.Context, label string) error
}
