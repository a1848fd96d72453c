package chunker

import (
	"strings"
	"unicode/utf8"
)

type Options struct {
	Size    int // target chunk size in characters
	Overlap int // characters of trailing context carried into the next chunk
}

func DefaultOptions() Options {
	return Options{
		Size:    25,
		Overlap: 8,
	}
}

// separators are tried in order; whitespace splits are preferred so that
// tokens stay whole.
var separators = []string{"\n\n", "\n", " "}

// Chunk splits text into overlapping windows of at most opts.Size
// characters. The text is first broken into fragments on whitespace (a
// fragment longer than opts.Size is kept whole rather than split
// mid-word), then fragments are accumulated left to right into windows.
// When a window fills up, up to opts.Overlap characters of its trailing
// fragments are repeated at the start of the next window so that phrase
// context spanning a boundary is still captured by a neighbor.
//
// Every fragment of the input appears in at least one chunk, chunks come
// out in left-to-right order, and no chunk exceeds opts.Size unless it
// consists of a single oversized token.
func Chunk(text string, opts Options) []string {
	if opts.Size <= 0 {
		opts.Size = DefaultOptions().Size
	}
	if opts.Overlap < 0 {
		opts.Overlap = 0
	}
	if opts.Overlap >= opts.Size {
		opts.Overlap = opts.Size - 1
	}

	frags := splitRecursive(text, separators, opts.Size)

	var chunks []string
	var window []string // pending fragments, possibly led by carried overlap
	winLen := 0
	fresh := false // window holds at least one fragment not yet emitted

	for _, frag := range frags {
		fragLen := utf8.RuneCountInString(frag)

		if fragLen > opts.Size {
			// Token longer than the window: keep it whole in its own chunk.
			if fresh {
				chunks = append(chunks, strings.Join(window, " "))
			}
			chunks = append(chunks, frag)
			window, winLen, fresh = nil, 0, false
			continue
		}

		if winLen > 0 && winLen+1+fragLen > opts.Size {
			if fresh {
				chunks = append(chunks, strings.Join(window, " "))
			}
			// Shrink the carried tail so the next window stays within Size
			// once frag is added.
			budget := opts.Overlap
			if rem := opts.Size - 1 - fragLen; rem < budget {
				budget = rem
			}
			window, winLen = overlapTail(window, budget)
			fresh = false
		}

		window = append(window, frag)
		if winLen > 0 {
			winLen++
		}
		winLen += fragLen
		fresh = true
	}

	if fresh {
		chunks = append(chunks, strings.Join(window, " "))
	}

	return chunks
}

// splitRecursive breaks text into fragments no longer than size where
// possible, trying each separator in turn. A fragment that still exceeds
// size once all separators are exhausted is returned whole.
func splitRecursive(text string, seps []string, size int) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if utf8.RuneCountInString(text) <= size || len(seps) == 0 {
		return []string{text}
	}

	sep := seps[0]
	if !strings.Contains(text, sep) {
		return splitRecursive(text, seps[1:], size)
	}

	var frags []string
	for _, part := range strings.Split(text, sep) {
		frags = append(frags, splitRecursive(part, seps[1:], size)...)
	}
	return frags
}

// overlapTail returns the longest run of trailing fragments whose joined
// length stays within budget, together with that length.
func overlapTail(frags []string, budget int) ([]string, int) {
	var tail []string
	tailLen := 0

	for i := len(frags) - 1; i >= 0; i-- {
		cost := utf8.RuneCountInString(frags[i])
		if tailLen > 0 {
			cost++
		}
		if tailLen+cost > budget {
			break
		}
		tail = append([]string{frags[i]}, tail...)
		tailLen += cost
	}

	return tail, tailLen
}
