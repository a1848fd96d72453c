package moderation

import (
	"strings"

	"github.com/modguard/modguard/pkg/chunker"
)

// Segments holds the two unit views of a sanitized message: individual
// tokens and overlapping multi-word chunks.
type Segments struct {
	Words  []string
	Chunks []string
}

// Segment splits sanitized text into whitespace-delimited words and
// sliding-window chunks. Texts of one word or fewer produce no chunks;
// phrase-level analysis is meaningless below two words.
func Segment(text string, opts chunker.Options) Segments {
	words := strings.Fields(text)

	segs := Segments{Words: words}
	if len(words) > 1 {
		segs.Chunks = chunker.Chunk(text, opts)
	}
	return segs
}
