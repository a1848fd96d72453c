package refindex

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

// PgStore keeps reference entries in Postgres with pgvector embeddings.
type PgStore struct {
	db *pgxpool.Pool
}

func NewPgStore(db *pgxpool.Pool) *PgStore {
	return &PgStore{db: db}
}

func (s *PgStore) Upsert(ctx context.Context, entries []Entry) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	for i, e := range entries {
		id := e.ID
		if id == uuid.Nil {
			id = uuid.New()
		}

		embedding := pgvector.NewVector(e.Embedding)

		_, err := tx.Exec(ctx,
			`INSERT INTO reference_entries (id, label, content, embedding)
			 VALUES ($1, $2, $3, $4)
			 ON CONFLICT (id) DO UPDATE SET label = $2, content = $3, embedding = $4`,
			id, e.Label, e.Content, embedding,
		)
		if err != nil {
			return fmt.Errorf("upsert entry %d: %w", i, err)
		}
	}

	return tx.Commit(ctx)
}

func (s *PgStore) Nearest(ctx context.Context, query []float32) (*Neighbor, error) {
	embedding := pgvector.NewVector(query)

	var n Neighbor
	err := s.db.QueryRow(ctx,
		`SELECT label, content, 1 - (embedding <=> $1) AS score
		 FROM reference_entries
		 ORDER BY embedding <=> $1
		 LIMIT 1`,
		embedding,
	).Scan(&n.Label, &n.Content, &n.Score)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("nearest neighbor: %w", err)
	}

	return &n, nil
}

func (s *PgStore) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRow(ctx, "SELECT count(*) FROM reference_entries").Scan(&count); err != nil {
		return 0, fmt.Errorf("count entries: %w", err)
	}
	return count, nil
}

func (s *PgStore) DeleteLabel(ctx context.Context, label string) error {
	_, err := s.db.Exec(ctx, "DELETE FROM reference_entries WHERE label = $1", label)
	if err != nil {
		return fmt.Errorf("delete label %q: %w", label, err)
	}
	return nil
}
