package index_test

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/answerd/internal/embeddings"
	"github.com/fyrsmithlabs/answerd/internal/index"
)

// fakeEmbedder maps each text to a deterministic pseudo-random vector, so the
// same text always lands on the same point and distinct texts almost surely
// do not collide. Querying with a chunk's exact text therefore retrieves that
// chunk at distance zero.
type fakeEmbedder struct {
	dim int
}

func (f *fakeEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vectors[i] = f.embed(text)
	}
	return vectors, nil
}

func (f *fakeEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	return f.embed(text), nil
}

func (f *fakeEmbedder) embed(text string) []float32 {
	v := make([]float32, f.dim)
	for i := range v {
		h := fnv.New64a()
		fmt.Fprintf(h, "%s|%d", text, i)
		v[i] = float32(h.Sum64()%1000) / 1000
	}
	return v
}

var _ embeddings.Embedder = (*fakeEmbedder)(nil)

// failingEmbedder fails every call.
type failingEmbedder struct{}

func (failingEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	return nil, errors.New("provider unavailable")
}

func (failingEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	return nil, errors.New("provider unavailable")
}

func testChunks(docID string, texts ...string) []index.Chunk {
	chunks := make([]index.Chunk, len(texts))
	for i, text := range texts {
		chunks[i] = index.Chunk{DocID: docID, Seq: i, Text: text}
	}
	return chunks
}

func TestBuild(t *testing.T) {
	embedder := &fakeEmbedder{dim: 8}

	t.Run("builds over all chunks", func(t *testing.T) {
		chunks := testChunks("doc",
			"Orders ship within two business days.",
			"Returns are accepted for thirty days.",
			"Support is available around the clock.",
		)
		ix, err := index.Build(context.Background(), "acme", "doc", chunks, embedder, 8)
		require.NoError(t, err)
		assert.Equal(t, 3, ix.Len())
		assert.Equal(t, "acme", ix.TenantID)
		assert.Equal(t, "doc", ix.DocID)
		assert.Equal(t, 8, ix.Dim)
		assert.False(t, ix.BuiltAt.IsZero())
	})

	t.Run("empty chunk list", func(t *testing.T) {
		_, err := index.Build(context.Background(), "acme", "doc", nil, embedder, 8)
		assert.ErrorIs(t, err, index.ErrEmptyChunks)
	})

	t.Run("dimension mismatch", func(t *testing.T) {
		_, err := index.Build(context.Background(), "acme", "doc",
			testChunks("doc", "some text"), embedder, 16)
		assert.ErrorIs(t, err, embeddings.ErrDimensionMismatch)
	})

	t.Run("embedder failure", func(t *testing.T) {
		_, err := index.Build(context.Background(), "acme", "doc",
			testChunks("doc", "some text"), failingEmbedder{}, 8)
		assert.ErrorIs(t, err, embeddings.ErrEmbeddingFailed)
	})

	t.Run("more chunks than one embedding batch", func(t *testing.T) {
		texts := make([]string, 80)
		for i := range texts {
			texts[i] = fmt.Sprintf("chunk body number %d with its own content", i)
		}
		ix, err := index.Build(context.Background(), "acme", "big", testChunks("big", texts...), embedder, 8)
		require.NoError(t, err)
		require.Equal(t, 80, ix.Len())

		// Batch results must land at the right offsets: querying with any
		// chunk's exact text retrieves that chunk first.
		for _, seq := range []int{0, 31, 32, 63, 79} {
			results, err := ix.Query(context.Background(), texts[seq], embedder, 1)
			require.NoError(t, err)
			require.Len(t, results, 1)
			assert.Equal(t, seq, results[0].Chunk.Seq)
			assert.Zero(t, results[0].Distance)
		}
	})
}

func TestQuery(t *testing.T) {
	embedder := &fakeEmbedder{dim: 8}
	chunks := testChunks("doc",
		"Orders ship within two business days.",
		"Returns are accepted for thirty days.",
		"Support is available around the clock.",
		"Gift cards never expire.",
	)
	ix, err := index.Build(context.Background(), "acme", "doc", chunks, embedder, 8)
	require.NoError(t, err)

	t.Run("exact text is the nearest neighbor", func(t *testing.T) {
		results, err := ix.Query(context.Background(), "Returns are accepted for thirty days.", embedder, 3)
		require.NoError(t, err)
		require.Len(t, results, 3)
		assert.Equal(t, 1, results[0].Chunk.Seq)
		assert.Zero(t, results[0].Distance)
	})

	t.Run("distances are non-decreasing", func(t *testing.T) {
		results, err := ix.Query(context.Background(), "when do orders arrive", embedder, 4)
		require.NoError(t, err)
		require.Len(t, results, 4)
		for i := 1; i < len(results); i++ {
			assert.GreaterOrEqual(t, results[i].Distance, results[i-1].Distance)
		}
	})

	t.Run("k clamps to chunk count", func(t *testing.T) {
		results, err := ix.Query(context.Background(), "anything", embedder, 50)
		require.NoError(t, err)
		assert.Len(t, results, 4)
	})

	t.Run("non-positive k rejected", func(t *testing.T) {
		_, err := ix.Query(context.Background(), "anything", embedder, 0)
		assert.Error(t, err)
	})

	t.Run("query embedding failure", func(t *testing.T) {
		_, err := ix.Query(context.Background(), "anything", failingEmbedder{}, 1)
		assert.ErrorIs(t, err, embeddings.ErrEmbeddingFailed)
	})

	t.Run("query dimension mismatch", func(t *testing.T) {
		_, err := ix.Query(context.Background(), "anything", &fakeEmbedder{dim: 4}, 1)
		assert.ErrorIs(t, err, embeddings.ErrDimensionMismatch)
	})
}
