// Package index builds, persists, loads and queries the per-document
// nearest-neighbor indices backing the vector retrieval tier.
//
// An Index binds a flat nearest-neighbor structure to the ordered chunk list
// it was built from: chunk i always corresponds to the i-th inserted vector.
// Indices are immutable once built and replaced wholesale on re-ingestion,
// which keeps that correspondence trivially correct without tombstone
// bookkeeping. Acceptable because ingestion is rare relative to querying.
package index

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/fyrsmithlabs/answerd/internal/embeddings"
)

// Sentinel errors for index operations.
var (
	// ErrEmptyChunks is returned when building from an empty chunk list.
	ErrEmptyChunks = errors.New("empty chunk list")

	// ErrIndexNotFound is returned when no index exists for a tenant/doc.
	ErrIndexNotFound = errors.New("index not found")

	// ErrCorruptIndex indicates a missing, partial or misaligned artifact
	// pair on disk.
	ErrCorruptIndex = errors.New("corrupt index artifacts")
)

// embedBatchSize is the number of chunks embedded per provider call.
const embedBatchSize = 32

// Chunk is an ordered segment of a document's text, the unit of indexing and
// retrieval. Prompt and Response are set when the source was already a Q&A
// pair.
type Chunk struct {
	DocID    string `json:"doc_id"`
	Seq      int    `json:"seq"`
	Text     string `json:"text"`
	Prompt   string `json:"prompt,omitempty"`
	Response string `json:"response,omitempty"`
}

// Result is a retrieved chunk with its Euclidean distance to the query
// vector. Smaller is more similar.
type Result struct {
	Chunk    Chunk
	Distance float32
}

// Index is a nearest-neighbor structure over one document's chunk vectors,
// paired with the chunk list it was built from. Read-only after Build, so
// concurrent queries need no locking.
type Index struct {
	TenantID string
	DocID    string
	Dim      int
	BuiltAt  time.Time

	vectors [][]float32
	chunks  []Chunk
}

// Len returns the number of indexed chunks.
func (ix *Index) Len() int {
	return len(ix.chunks)
}

// Chunks returns the ordered chunk list.
func (ix *Index) Chunks() []Chunk {
	return ix.chunks
}

// Build embeds chunks in bounded-concurrency batches and constructs the
// nearest-neighbor structure over the resulting vectors.
//
// expectedDim guards against a provider returning vectors of the wrong
// dimension; zero disables the check and the first batch fixes the dimension.
func Build(ctx context.Context, tenantID, docID string, chunks []Chunk, embedder embeddings.Embedder, expectedDim int) (*Index, error) {
	if len(chunks) == 0 {
		return nil, ErrEmptyChunks
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}

	vectors := make([][]float32, len(texts))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for start := 0; start < len(texts); start += embedBatchSize {
		start := start
		end := start + embedBatchSize
		if end > len(texts) {
			end = len(texts)
		}
		g.Go(func() error {
			batch, err := embedder.EmbedDocuments(gctx, texts[start:end])
			if err != nil {
				return fmt.Errorf("%w: embedding chunks %d-%d: %v", embeddings.ErrEmbeddingFailed, start, end-1, err)
			}
			if len(batch) != end-start {
				return fmt.Errorf("%w: got %d vectors for %d chunks", embeddings.ErrEmbeddingFailed, len(batch), end-start)
			}
			copy(vectors[start:end], batch)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	dim := expectedDim
	if dim <= 0 {
		dim = len(vectors[0])
	}
	if err := embeddings.ValidateDimensions(vectors, dim); err != nil {
		return nil, err
	}

	return &Index{
		TenantID: tenantID,
		DocID:    docID,
		Dim:      dim,
		BuiltAt:  time.Now().UTC(),
		vectors:  vectors,
		chunks:   chunks,
	}, nil
}

// Query embeds queryText and returns the k nearest chunks ordered ascending
// by Euclidean distance. k is clamped to the number of indexed chunks; ties
// keep insertion order.
func (ix *Index) Query(ctx context.Context, queryText string, embedder embeddings.Embedder, k int) ([]Result, error) {
	if k <= 0 {
		return nil, fmt.Errorf("k must be positive, got %d", k)
	}
	if k > len(ix.chunks) {
		k = len(ix.chunks)
	}

	qv, err := embedder.EmbedQuery(ctx, queryText)
	if err != nil {
		return nil, fmt.Errorf("%w: embedding query: %v", embeddings.ErrEmbeddingFailed, err)
	}
	if len(qv) != ix.Dim {
		return nil, fmt.Errorf("%w: query vector has dimension %d, index has %d",
			embeddings.ErrDimensionMismatch, len(qv), ix.Dim)
	}

	results := make([]Result, len(ix.chunks))
	for i := range ix.vectors {
		results[i] = Result{
			Chunk:    ix.chunks[i],
			Distance: euclidean(qv, ix.vectors[i]),
		}
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Distance < results[j].Distance
	})

	return results[:k], nil
}

// euclidean computes the L2 distance between two vectors of equal length.
func euclidean(a, b []float32) float32 {
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return float32(math.Sqrt(sum))
}
