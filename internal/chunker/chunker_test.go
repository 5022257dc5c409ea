package chunker_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/answerd/internal/chunker"
)

func TestChunk_SentenceAccumulation(t *testing.T) {
	text := "Order tracking: ship within 2 days. Returns: 30 day window."

	chunks, err := chunker.Chunk(text, 40)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(chunks), 2)

	for _, c := range chunks {
		// A single sentence may overflow the target, but accumulated chunks
		// stay near it.
		assert.LessOrEqual(t, len(c), 40+20)
		assert.NotEmpty(t, strings.TrimSpace(c))
	}

	// Concatenating the chunks reproduces the sentence content.
	joined := strings.Join(chunks, " ")
	assert.Contains(t, joined, "Order tracking: ship within 2 days.")
	assert.Contains(t, joined, "Returns: 30 day window.")
}

func TestChunk_EmptyInput(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{name: "empty string", text: ""},
		{name: "whitespace only", text: "   \n\t  "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := chunker.Chunk(tt.text, 100)
			assert.ErrorIs(t, err, chunker.ErrEmptyInput)
		})
	}
}

func TestChunk_SingleLongSentence(t *testing.T) {
	// A sentence longer than the target becomes its own chunk, never split
	// mid-sentence.
	text := "This is one very long sentence that exceeds the configured target size by a wide margin."

	chunks, err := chunker.Chunk(text, 20)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, text, chunks[0])
}

func TestChunk_ZeroTargetUsesDefault(t *testing.T) {
	chunks, err := chunker.Chunk("Short text.", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"Short text."}, chunks)
}

func TestSplitSentences(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "basic boundaries",
			text: "First sentence. Second one! Third?",
			want: []string{"First sentence.", "Second one!", "Third?"},
		},
		{
			name: "decimal numbers are not boundaries",
			text: "The fee is 2.5 percent. That is all.",
			want: []string{"The fee is 2.5 percent.", "That is all."},
		},
		{
			name: "abbreviations are not boundaries",
			text: "Contact Dr. Smith today. He can help.",
			want: []string{"Contact Dr. Smith today.", "He can help."},
		},
		{
			name: "domains stay intact",
			text: "Visit example.com for details.",
			want: []string{"Visit example.com for details."},
		},
		{
			name: "trailing text without terminator",
			text: "Complete sentence. trailing fragment",
			want: []string{"Complete sentence.", "trailing fragment"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, chunker.SplitSentences(tt.text))
		})
	}
}
