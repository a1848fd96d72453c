package refindex

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"
)

// Embedder produces one embedding per input text. Satisfied by
// *embedding.Service.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// DatasetEntry is one labeled group of reference phrases in a seed
// dataset file.
type DatasetEntry struct {
	Label   string   `json:"label"`
	Phrases []string `json:"phrases"`
}

// Loader populates the reference index from labeled phrase datasets.
type Loader struct {
	store Store
	embed Embedder
}

func NewLoader(store Store, embed Embedder) *Loader {
	return &Loader{store: store, embed: embed}
}

// LoadFile reads a JSON dataset ([{"label": ..., "phrases": [...]}]),
// embeds every phrase, and upserts the results. Returns the number of
// entries written.
func (l *Loader) LoadFile(ctx context.Context, path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read dataset: %w", err)
	}

	var dataset []DatasetEntry
	if err := json.Unmarshal(data, &dataset); err != nil {
		return 0, fmt.Errorf("parse dataset: %w", err)
	}

	total := 0
	for _, d := range dataset {
		n, err := l.LoadEntries(ctx, d.Label, d.Phrases)
		if err != nil {
			return total, fmt.Errorf("load label %q: %w", d.Label, err)
		}
		total += n
	}
	return total, nil
}

// LoadEntries embeds and upserts one label's phrases.
func (l *Loader) LoadEntries(ctx context.Context, label string, phrases []string) (int, error) {
	if label == "" {
		return 0, fmt.Errorf("label required")
	}
	if len(phrases) == 0 {
		return 0, nil
	}

	vectors, err := l.embed.Embed(ctx, phrases)
	if err != nil {
		return 0, fmt.Errorf("embed phrases: %w", err)
	}
	if len(vectors) != len(phrases) {
		return 0, fmt.Errorf("embedding count mismatch: %d texts, %d vectors", len(phrases), len(vectors))
	}

	entries := make([]Entry, len(phrases))
	for i, p := range phrases {
		entries[i] = Entry{
			ID:        uuid.New(),
			Label:     label,
			Content:   p,
			Embedding: vectors[i],
		}
	}

	if err := l.store.Upsert(ctx, entries); err != nil {
		return 0, fmt.Errorf("store entries: %w", err)
	}
	return len(entries), nil
}
