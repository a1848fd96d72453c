package moderation

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/modguard/modguard/internal/similarity"
)

// fakeOracle returns canned matches per unit and records every query.
type fakeOracle struct {
	mu      sync.Mutex
	matches map[string]*similarity.Match
	fail    map[string]bool
	queried []string
}

func (f *fakeOracle) Query(_ context.Context, unit string) (*similarity.Match, error) {
	f.mu.Lock()
	f.queried = append(f.queried, unit)
	f.mu.Unlock()

	if f.fail[unit] {
		return nil, errors.New("oracle down")
	}
	return f.matches[unit], nil
}

func (f *fakeOracle) wasQueried(unit string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, q := range f.queried {
		if q == unit {
			return true
		}
	}
	return false
}

func newTestAnalyzer(oracle similarity.Oracle) *Analyzer {
	return NewAnalyzer(oracle, DefaultAllowlist(), DefaultConfig())
}

func TestAnalyzeClean(t *testing.T) {
	oracle := &fakeOracle{}
	a := newTestAnalyzer(oracle)

	res, err := a.Analyze(context.Background(), "nothing wrong with this message")
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if res.IsFlagged || res.Score != 0 || res.Label != "" || res.Context != "" {
		t.Fatalf("expected clean result, got %+v", res)
	}
}

func TestAnalyzeEmptyAfterSanitize(t *testing.T) {
	oracle := &fakeOracle{}
	a := newTestAnalyzer(oracle)

	res, err := a.Analyze(context.Background(), "?!... !!!")
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if res.IsFlagged {
		t.Fatalf("expected clean result, got %+v", res)
	}
	if len(oracle.queried) != 0 {
		t.Fatalf("expected no lookups for empty sanitized text, got %v", oracle.queried)
	}
}

func TestAnalyzeSingleWordMatch(t *testing.T) {
	oracle := &fakeOracle{matches: map[string]*similarity.Match{
		"grenade": {Label: "weapons", Score: 0.99},
	}}
	a := newTestAnalyzer(oracle)

	res, err := a.Analyze(context.Background(), "grenade")
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if !res.IsFlagged || res.Score != 0.99 || res.Label != "weapons" || res.Context != "grenade" {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestAnalyzeWordThresholdStrict(t *testing.T) {
	// Score equal to the threshold must not flag.
	oracle := &fakeOracle{matches: map[string]*similarity.Match{
		"grenade": {Label: "weapons", Score: 0.95},
	}}
	a := newTestAnalyzer(oracle)

	res, err := a.Analyze(context.Background(), "grenade")
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if res.IsFlagged {
		t.Fatalf("score at threshold should not flag, got %+v", res)
	}
}

func TestAnalyzeAllowedTokenNeverQueried(t *testing.T) {
	oracle := &fakeOracle{matches: map[string]*similarity.Match{
		"hello": {Label: "greeting", Score: 0.99},
	}}
	a := newTestAnalyzer(oracle)

	res, err := a.Analyze(context.Background(), "hello world")
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if res.IsFlagged {
		t.Fatalf("allowlisted token flagged: %+v", res)
	}
	if oracle.wasQueried("hello") {
		t.Fatalf("allowlisted token was sent to the oracle")
	}
	if !oracle.wasQueried("world") {
		t.Fatalf("non-allowlisted token should still be queried")
	}
}

func TestAnalyzeContextExemption(t *testing.T) {
	oracle := &fakeOracle{matches: map[string]*similarity.Match{
		"black": {Label: "black", Score: 0.97},
	}}
	a := newTestAnalyzer(oracle)

	res, err := a.Analyze(context.Background(), "this is a black belt competition")
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if res.IsFlagged || res.Score != 0 {
		t.Fatalf("expected exempted clean result, got %+v", res)
	}
}

func TestAnalyzeHighestScoreWins(t *testing.T) {
	oracle := &fakeOracle{matches: map[string]*similarity.Match{
		"alpha": {Label: "first", Score: 0.97},
		"omega": {Label: "second", Score: 0.98},
	}}
	a := newTestAnalyzer(oracle)

	res, err := a.Analyze(context.Background(), "alpha omega")
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if !res.IsFlagged || res.Label != "second" || res.Score != 0.98 || res.Context != "omega" {
		t.Fatalf("expected second/0.98 to win, got %+v", res)
	}
}

func TestAnalyzeOracleFailureDegrades(t *testing.T) {
	oracle := &fakeOracle{
		matches: map[string]*similarity.Match{
			"omega": {Label: "second", Score: 0.99},
		},
		fail: map[string]bool{"alpha": true},
	}
	a := newTestAnalyzer(oracle)

	res, err := a.Analyze(context.Background(), "alpha omega")
	if err != nil {
		t.Fatalf("analyze should not fail on per-unit errors: %v", err)
	}
	if !res.IsFlagged || res.Label != "second" || res.Score != 0.99 {
		t.Fatalf("expected surviving match, got %+v", res)
	}
}

func TestAnalyzeChunkMatch(t *testing.T) {
	oracle := &fakeOracle{matches: map[string]*similarity.Match{
		"free money now": {Label: "scam", Score: 0.97},
	}}
	a := newTestAnalyzer(oracle)

	res, err := a.Analyze(context.Background(), "free money now")
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if !res.IsFlagged || res.Label != "scam" || res.Context != "free money now" {
		t.Fatalf("expected chunk match, got %+v", res)
	}
}

func TestAnalyzeChunkThresholdStrict(t *testing.T) {
	oracle := &fakeOracle{matches: map[string]*similarity.Match{
		"free money now": {Label: "scam", Score: 0.96},
	}}
	a := newTestAnalyzer(oracle)

	res, err := a.Analyze(context.Background(), "free money now")
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if res.IsFlagged {
		t.Fatalf("chunk score at threshold should not flag, got %+v", res)
	}
}

func TestAnalyzeChunkMatchSkipsExemption(t *testing.T) {
	// The label would be exempt for a word match in this context, but
	// chunk matches bypass the allowlist.
	oracle := &fakeOracle{matches: map[string]*similarity.Match{
		"black belt now": {Label: "black", Score: 0.97},
	}}
	a := newTestAnalyzer(oracle)

	res, err := a.Analyze(context.Background(), "black belt now")
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if !res.IsFlagged || res.Label != "black" {
		t.Fatalf("expected chunk match despite exemptable label, got %+v", res)
	}
}

func TestFlaggedSetOverwrite(t *testing.T) {
	s := newFlaggedSet(false)
	s.record(Candidate{Label: "x", Score: 0.99, Context: "first"})
	s.record(Candidate{Label: "x", Score: 0.97, Context: "second"})

	best, ok := s.best()
	if !ok || best.Score != 0.97 || best.Context != "second" {
		t.Fatalf("expected last write to win, got %+v", best)
	}
}

func TestFlaggedSetKeepHighest(t *testing.T) {
	s := newFlaggedSet(true)
	s.record(Candidate{Label: "x", Score: 0.99, Context: "first"})
	s.record(Candidate{Label: "x", Score: 0.97, Context: "second"})

	best, ok := s.best()
	if !ok || best.Score != 0.99 || best.Context != "first" {
		t.Fatalf("expected highest score to be kept, got %+v", best)
	}
}
