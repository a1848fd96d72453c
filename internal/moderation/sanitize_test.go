package moderation

import "testing"

func TestSanitize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain text unchanged", "this is a black belt competition", "this is a black belt competition"},
		{"lowercases", "Hello World", "hello world"},
		{"strips punctuation", "what?! really...", "what really"},
		{"keeps underscores and digits", "user_42 said no", "user_42 said no"},
		{"trims whitespace", "  padded  ", "padded"},
		{"punctuation only", "?!.,;:", ""},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Sanitize(tt.in); got != tt.want {
				t.Fatalf("Sanitize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestSanitizeIdempotent(t *testing.T) {
	inputs := []string{
		"Mixed CASE with... Punctuation!!",
		"already clean text",
		"",
		"  \t spaces \n everywhere  ",
	}
	for _, in := range inputs {
		once := Sanitize(in)
		if twice := Sanitize(once); twice != once {
			t.Fatalf("not idempotent for %q: first %q, second %q", in, once, twice)
		}
	}
}
