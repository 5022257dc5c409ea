package cascade

import (
	"strings"

	"github.com/fyrsmithlabs/answerd/internal/index"
)

// answerMarkers are the conventions under which a chunk carries an explicit
// trailing answer segment. Matched case-insensitively, last occurrence wins
// so a question containing "A:" does not truncate the real answer.
var answerMarkers = []string{"a:", "answer:", "response:"}

// extractAnswer pulls the displayable answer text out of a retrieved chunk.
//
// Priority: an explicit Response field from a Q&A source, then a trailing
// "...A: <answer>" segment, then the raw chunk text when it is at least
// minLength characters. Shorter fragments are noise and yield "".
func extractAnswer(c index.Chunk, minLength int) string {
	if strings.TrimSpace(c.Response) != "" {
		return strings.TrimSpace(c.Response)
	}

	lower := asciiLower(c.Text)
	bestIdx := -1
	markerLen := 0
	for _, marker := range answerMarkers {
		if idx := strings.LastIndex(lower, marker); idx > bestIdx {
			bestIdx = idx
			markerLen = len(marker)
		}
	}
	if bestIdx >= 0 {
		if answer := strings.TrimSpace(c.Text[bestIdx+markerLen:]); answer != "" {
			return answer
		}
	}

	text := strings.TrimSpace(c.Text)
	if len(text) >= minLength {
		return text
	}
	return ""
}

// asciiLower folds ASCII letters only, byte by byte. The markers are ASCII,
// and unlike strings.ToLower this keeps every byte offset valid in the
// original text: full Unicode lowercasing can change a rune's encoded
// length and shift the marker index.
func asciiLower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if 'A' <= c && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}

// joinAnswers concatenates up to two extracted answers, normalizing the
// sentence boundary between them.
func joinAnswers(answers []string) string {
	if len(answers) == 0 {
		return ""
	}
	first := ensureTerminated(answers[0])
	if len(answers) == 1 {
		return first
	}
	return first + " " + ensureTerminated(answers[1])
}

func ensureTerminated(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return s
	}
	switch s[len(s)-1] {
	case '.', '!', '?':
		return s
	}
	return s + "."
}
