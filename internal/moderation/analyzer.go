package moderation

import (
	"context"
	"log/slog"
	"sync"

	"github.com/modguard/modguard/internal/similarity"
	"github.com/modguard/modguard/pkg/chunker"
)

// Config carries the scoring knobs. Built once from process configuration
// and passed by value; never mutated afterwards.
type Config struct {
	// WordThreshold is the strict lower bound a single-token match must
	// exceed. Single tokens need near-literal similarity.
	WordThreshold float64
	// SemanticThreshold is the strict lower bound a chunk match must
	// exceed. Slightly higher than WordThreshold to offset spurious
	// phrase overlap at chunk boundaries.
	SemanticThreshold float64
	ChunkSize         int
	ChunkOverlap      int
	// KeepHighestPerLabel keeps the best score per label instead of the
	// last completed lookup's score. Off by default: with concurrent
	// lookups the final score recorded for a label is whichever matching
	// unit finished last, and that behavior is preserved as-is.
	KeepHighestPerLabel bool
}

func DefaultConfig() Config {
	return Config{
		WordThreshold:     0.95,
		SemanticThreshold: 0.96,
		ChunkSize:         25,
		ChunkOverlap:      8,
	}
}

// Result is the terminal verdict for one message.
type Result struct {
	IsFlagged bool    `json:"isFlagged"`
	Score     float64 `json:"score"`
	Label     string  `json:"label,omitempty"`
	Context   string  `json:"context,omitempty"`
}

// Candidate is one unit match that cleared its threshold and survived
// allowlist filtering.
type Candidate struct {
	Label   string
	Score   float64
	Context string // the originating unit's text
}

// Analyzer scores messages by fanning out similarity lookups for every
// word and chunk unit and reducing the surviving matches to the single
// highest-confidence one.
type Analyzer struct {
	oracle similarity.Oracle
	allow  *Allowlist
	cfg    Config
}

func NewAnalyzer(oracle similarity.Oracle, allow *Allowlist, cfg Config) *Analyzer {
	def := DefaultConfig()
	if cfg.WordThreshold <= 0 {
		cfg.WordThreshold = def.WordThreshold
	}
	if cfg.SemanticThreshold <= 0 {
		cfg.SemanticThreshold = def.SemanticThreshold
	}
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = def.ChunkSize
	}
	if cfg.ChunkOverlap <= 0 {
		cfg.ChunkOverlap = def.ChunkOverlap
	}
	if allow == nil {
		allow = DefaultAllowlist()
	}
	return &Analyzer{oracle: oracle, allow: allow, cfg: cfg}
}

// Analyze sanitizes and segments the message, queries the similarity
// index for every unit concurrently, and returns the highest-scoring
// surviving match. A lookup failure degrades to "no match" for that one
// unit; it never fails the request.
func (a *Analyzer) Analyze(ctx context.Context, message string) (*Result, error) {
	sanitized := Sanitize(message)
	if sanitized == "" {
		return &Result{}, nil
	}

	segs := Segment(sanitized, chunker.Options{
		Size:    a.cfg.ChunkSize,
		Overlap: a.cfg.ChunkOverlap,
	})

	set := newFlaggedSet(a.cfg.KeepHighestPerLabel)
	var wg sync.WaitGroup

	for _, word := range segs.Words {
		if a.allow.IsAllowedToken(word) {
			continue
		}
		wg.Add(1)
		go func(unit string) {
			defer wg.Done()
			m := a.lookup(ctx, unit)
			if m == nil || m.Score <= a.cfg.WordThreshold {
				return
			}
			if a.allow.IsExempt(m.Label, sanitized) {
				return
			}
			set.record(Candidate{Label: m.Label, Score: m.Score, Context: unit})
		}(word)
	}

	// Chunk matches skip allowlist exemption: the chunk itself already
	// carries the disambiguating context.
	for _, chunk := range segs.Chunks {
		wg.Add(1)
		go func(unit string) {
			defer wg.Done()
			m := a.lookup(ctx, unit)
			if m == nil || m.Score <= a.cfg.SemanticThreshold {
				return
			}
			set.record(Candidate{Label: m.Label, Score: m.Score, Context: unit})
		}(chunk)
	}

	wg.Wait()

	best, ok := set.best()
	if !ok {
		return &Result{}, nil
	}
	return &Result{
		IsFlagged: true,
		Score:     best.Score,
		Label:     best.Label,
		Context:   best.Context,
	}, nil
}

func (a *Analyzer) lookup(ctx context.Context, unit string) *similarity.Match {
	m, err := a.oracle.Query(ctx, unit)
	if err != nil {
		slog.Warn("similarity lookup failed", "error", err)
		return nil
	}
	return m
}

// flaggedSet accumulates candidates keyed by label across concurrent
// lookups. Writes to the same label overwrite each other unless
// keepHighest is set.
type flaggedSet struct {
	mu          sync.Mutex
	keepHighest bool
	matches     map[string]Candidate
}

func newFlaggedSet(keepHighest bool) *flaggedSet {
	return &flaggedSet{
		keepHighest: keepHighest,
		matches:     make(map[string]Candidate),
	}
}

func (s *flaggedSet) record(c Candidate) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.keepHighest {
		if prev, ok := s.matches[c.Label]; ok && prev.Score >= c.Score {
			return
		}
	}
	s.matches[c.Label] = c
}

// best returns the candidate with the strictly greatest score.
func (s *flaggedSet) best() (Candidate, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var top Candidate
	found := false
	for _, c := range s.matches {
		if !found || c.Score > top.Score {
			top = c
			found = true
		}
	}
	return top, found
}
