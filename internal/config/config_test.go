package config

import (
	"strings"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"WORD_THRESHOLD", "SEMANTIC_THRESHOLD", "CHUNK_SIZE", "CHUNK_OVERLAP",
		"MAX_WORDS", "MAX_CHARS", "SERVER_PORT",
	} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	m := cfg.Moderation
	if m.WordThreshold != 0.95 {
		t.Errorf("WordThreshold = %v, want 0.95", m.WordThreshold)
	}
	if m.SemanticThreshold != 0.96 {
		t.Errorf("SemanticThreshold = %v, want 0.96", m.SemanticThreshold)
	}
	if m.ChunkSize != 25 || m.ChunkOverlap != 8 {
		t.Errorf("chunking = %d/%d, want 25/8", m.ChunkSize, m.ChunkOverlap)
	}
	if m.MaxWords != 35 || m.MaxChars != 1000 {
		t.Errorf("limits = %d/%d, want 35/1000", m.MaxWords, m.MaxChars)
	}
	if m.KeepHighestPerLabel {
		t.Errorf("KeepHighestPerLabel should default to false")
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Port = %d, want 8080", cfg.Server.Port)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("WORD_THRESHOLD", "0.9")
	t.Setenv("SEMANTIC_THRESHOLD", "0.92")
	t.Setenv("MAX_WORDS", "50")
	t.Setenv("KEEP_HIGHEST_PER_LABEL", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	m := cfg.Moderation
	if m.WordThreshold != 0.9 || m.SemanticThreshold != 0.92 || m.MaxWords != 50 {
		t.Fatalf("overrides not applied: %+v", m)
	}
	if !m.KeepHighestPerLabel {
		t.Fatalf("KEEP_HIGHEST_PER_LABEL override not applied")
	}
}

func TestLoadInvalidValues(t *testing.T) {
	t.Setenv("WORD_THRESHOLD", "not-a-float")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for invalid WORD_THRESHOLD")
	}
}

func TestValidateMissing(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("OPENAI_API_KEY", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	err = cfg.Validate()
	if err == nil {
		t.Fatalf("expected validation error")
	}
	if !strings.Contains(err.Error(), "DATABASE_URL") || !strings.Contains(err.Error(), "OPENAI_API_KEY") {
		t.Fatalf("expected missing vars named, got %v", err)
	}
}
