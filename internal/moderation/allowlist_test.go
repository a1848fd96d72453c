package moderation

import (
	"os"
	"path/filepath"
	"testing"
)

func TestAllowlistTokens(t *testing.T) {
	a := NewAllowlist([]string{"Hello", "ok"}, nil)

	if !a.IsAllowedToken("hello") {
		t.Fatalf("expected sanitized token to be allowed")
	}
	if !a.IsAllowedToken("ok") {
		t.Fatalf("expected ok to be allowed")
	}
	if a.IsAllowedToken("bomb") {
		t.Fatalf("unexpected token allowed")
	}
}

func TestAllowlistExemption(t *testing.T) {
	a := NewAllowlist(nil, map[string][]string{
		"black": {"black belt", "black coffee"},
	})

	tests := []struct {
		name    string
		label   string
		context string
		want    bool
	}{
		{"context present", "black", "this is a black belt competition", true},
		{"other context present", "black", "i drink black coffee daily", true},
		{"context absent", "black", "the black car", false},
		{"unknown label never exempt", "scam", "black belt", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := a.IsExempt(tt.label, tt.context); got != tt.want {
				t.Fatalf("IsExempt(%q, %q) = %v, want %v", tt.label, tt.context, got, tt.want)
			}
		})
	}
}

func TestLoadAllowlist(t *testing.T) {
	path := filepath.Join(t.TempDir(), "allowlist.json")
	data := `{"tokens": ["hi"], "labels": {"shoot": ["photo shoot"]}}`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	a, err := LoadAllowlist(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !a.IsAllowedToken("hi") {
		t.Fatalf("expected token from file")
	}
	if !a.IsExempt("shoot", "at the photo shoot yesterday") {
		t.Fatalf("expected label context from file")
	}
}

func TestLoadAllowlistErrors(t *testing.T) {
	if _, err := LoadAllowlist(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatalf("expected error for missing file")
	}

	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	if _, err := LoadAllowlist(path); err == nil {
		t.Fatalf("expected error for malformed file")
	}
}
