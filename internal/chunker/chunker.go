// Package chunker splits raw document text into bounded-size, sentence-aligned
// segments. Chunks are the unit of indexing and retrieval.
package chunker

import (
	"errors"
	"strings"
	"unicode"
)

// ErrEmptyInput is returned when the input contains no chunkable text.
// Callers must not attempt to index zero chunks.
var ErrEmptyInput = errors.New("no chunkable text")

// DefaultTargetSize is the soft chunk size used when callers pass zero.
const DefaultTargetSize = 500

// Chunk splits text into sentence-aligned segments of roughly targetSize
// characters.
//
// Sentences are accumulated greedily: when appending the next sentence would
// exceed targetSize the buffer is flushed as a completed chunk and the
// sentence starts a new one. A single sentence longer than targetSize becomes
// its own chunk rather than being split mid-sentence. The final non-empty
// buffer is always flushed, so concatenating the chunks reproduces the
// sentence content of the input.
func Chunk(text string, targetSize int) ([]string, error) {
	if targetSize <= 0 {
		targetSize = DefaultTargetSize
	}

	sentences := SplitSentences(text)
	if len(sentences) == 0 {
		return nil, ErrEmptyInput
	}

	var chunks []string
	var buf strings.Builder
	for _, sentence := range sentences {
		if buf.Len() > 0 && buf.Len()+1+len(sentence) > targetSize {
			chunks = append(chunks, buf.String())
			buf.Reset()
		}
		if buf.Len() > 0 {
			buf.WriteByte(' ')
		}
		buf.WriteString(sentence)
	}
	if buf.Len() > 0 {
		chunks = append(chunks, buf.String())
	}

	if len(chunks) == 0 {
		return nil, ErrEmptyInput
	}
	return chunks, nil
}

// abbreviations that do not terminate a sentence even though they end in a
// period.
var abbreviations = map[string]bool{
	"mr": true, "mrs": true, "ms": true, "dr": true, "prof": true,
	"sr": true, "jr": true, "st": true, "vs": true, "etc": true,
	"e.g": true, "i.e": true, "inc": true, "ltd": true, "no": true,
	"approx": true,
}

// SplitSentences splits text at sentence boundaries (., !, ?), skipping
// boundaries inside decimal numbers and after common abbreviations.
// Whitespace-only sentences are dropped.
func SplitSentences(text string) []string {
	var sentences []string
	runes := []rune(text)
	var current strings.Builder

	flush := func() {
		s := strings.TrimSpace(current.String())
		current.Reset()
		if s != "" {
			sentences = append(sentences, s)
		}
	}

	for i, r := range runes {
		current.WriteRune(r)
		if r != '.' && r != '!' && r != '?' {
			continue
		}
		if r == '.' {
			// 2.5, 3.14 - a digit on both sides is not a boundary.
			if i > 0 && i+1 < len(runes) && unicode.IsDigit(runes[i-1]) && unicode.IsDigit(runes[i+1]) {
				continue
			}
			if abbreviations[lastWord(current.String())] {
				continue
			}
		}
		// A boundary needs trailing whitespace or end of input; "example.com"
		// stays intact.
		if i+1 < len(runes) && !unicode.IsSpace(runes[i+1]) {
			continue
		}
		flush()
	}
	flush()

	return sentences
}

// lastWord returns the lowercased word preceding the final rune of s,
// excluding that final rune (the period under inspection).
func lastWord(s string) string {
	s = s[:len(s)-1]
	idx := strings.LastIndexFunc(s, unicode.IsSpace)
	return strings.ToLower(s[idx+1:])
}
