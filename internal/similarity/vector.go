package similarity

import (
	"context"
	"fmt"

	"github.com/modguard/modguard/internal/embedding"
	"github.com/modguard/modguard/internal/refindex"
)

// VectorOracle answers queries by embedding the unit and running a
// nearest-neighbor search over the reference index.
type VectorOracle struct {
	store refindex.Store
	embed *embedding.Service
}

func NewVectorOracle(store refindex.Store, embed *embedding.Service) *VectorOracle {
	return &VectorOracle{store: store, embed: embed}
}

func (o *VectorOracle) Query(ctx context.Context, unit string) (*Match, error) {
	vec, err := o.embed.EmbedOne(ctx, unit)
	if err != nil {
		return nil, fmt.Errorf("embed unit: %w", err)
	}

	n, err := o.store.Nearest(ctx, vec)
	if err != nil {
		return nil, fmt.Errorf("nearest lookup: %w", err)
	}
	if n == nil {
		return nil, nil
	}

	return &Match{Label: n.Label, Score: n.Score}, nil
}
