package embeddings

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Run("defaults to tei", func(t *testing.T) {
		embedder, err := New(Config{BaseURL: "http://localhost:8080", Model: "m"})
		require.NoError(t, err)
		assert.IsType(t, (*TEI)(nil), embedder)
	})

	t.Run("explicit tei", func(t *testing.T) {
		embedder, err := New(Config{Provider: "tei", BaseURL: "http://localhost:8080", Model: "m"})
		require.NoError(t, err)
		assert.IsType(t, (*TEI)(nil), embedder)
	})

	t.Run("unknown provider", func(t *testing.T) {
		_, err := New(Config{Provider: "cohere", BaseURL: "http://localhost:8080", Model: "m"})
		assert.ErrorIs(t, err, ErrInvalidConfig)
	})
}

func TestValidateDimensions(t *testing.T) {
	vectors := [][]float32{{1, 2, 3}, {4, 5, 6}}

	assert.NoError(t, ValidateDimensions(vectors, 3))
	assert.NoError(t, ValidateDimensions(vectors, 0)) // disabled
	assert.ErrorIs(t, ValidateDimensions(vectors, 4), ErrDimensionMismatch)
	assert.ErrorIs(t, ValidateDimensions([][]float32{{1, 2, 3}, {4, 5}}, 3), ErrDimensionMismatch)
	assert.NoError(t, ValidateDimensions(nil, 3))
}
