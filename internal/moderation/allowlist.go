package moderation

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Allowlist is the read-only exemption table consulted during scoring.
// Tokens in the general set are universally safe and are never sent to
// the similarity index. Label contexts exempt a matched label only when
// the full message contains one of the label's known-safe phrasings.
// Built once at startup and never mutated.
type Allowlist struct {
	tokens        map[string]struct{}
	labelContexts map[string][]string
}

func NewAllowlist(tokens []string, labelContexts map[string][]string) *Allowlist {
	a := &Allowlist{
		tokens:        make(map[string]struct{}, len(tokens)),
		labelContexts: make(map[string][]string, len(labelContexts)),
	}
	for _, t := range tokens {
		a.tokens[Sanitize(t)] = struct{}{}
	}
	for label, contexts := range labelContexts {
		a.labelContexts[Sanitize(label)] = contexts
	}
	return a
}

// DefaultAllowlist covers the lexical collisions seen most often in
// practice: harmless everyday tokens, and labels that are safe inside
// specific phrases.
func DefaultAllowlist() *Allowlist {
	return NewAllowlist(
		[]string{"hi", "hello", "hey", "thanks", "please", "ok"},
		map[string][]string{
			"black": {"black belt", "black coffee", "black tie", "black friday"},
			"shoot": {"photo shoot", "shoot me a message"},
			"kill":  {"kill the lights", "kill some time"},
		},
	)
}

type allowlistFile struct {
	Tokens []string            `json:"tokens"`
	Labels map[string][]string `json:"labels"`
}

// LoadAllowlist reads an allowlist table from a JSON file of the form
// {"tokens": [...], "labels": {"label": ["allowed context", ...]}}.
func LoadAllowlist(path string) (*Allowlist, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read allowlist: %w", err)
	}

	var f allowlistFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse allowlist: %w", err)
	}

	return NewAllowlist(f.Tokens, f.Labels), nil
}

// IsAllowedToken reports whether tok is universally safe regardless of
// context. Applies to word units only; chunk matches never short-circuit.
func (a *Allowlist) IsAllowedToken(tok string) bool {
	_, ok := a.tokens[tok]
	return ok
}

// IsExempt reports whether a matched label is permitted given the full
// sanitized message. A label with no context entries is never exempt.
func (a *Allowlist) IsExempt(label, fullContext string) bool {
	contexts, ok := a.labelContexts[label]
	if !ok {
		return false
	}
	for _, c := range contexts {
		if strings.Contains(fullContext, Sanitize(c)) {
			return true
		}
	}
	return false
}
