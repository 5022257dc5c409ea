// Package engine ties the chunker, index store, catalog and cascade into the
// two collaborator-facing operations: Ingest and Answer.
package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/answerd/internal/cascade"
	"github.com/fyrsmithlabs/answerd/internal/catalog"
	"github.com/fyrsmithlabs/answerd/internal/chunker"
	"github.com/fyrsmithlabs/answerd/internal/index"
)

// ErrEmptyQuestion is returned by Answer for blank questions.
var ErrEmptyQuestion = errors.New("empty question")

// defaultIngestWorkers bounds concurrent ingestions. Chunk embedding is
// CPU-bound on the model side and can take seconds per document, so it must
// never run unbounded on a request path.
const defaultIngestWorkers = 4

// Config holds engine configuration.
type Config struct {
	// ChunkTargetSize is the soft chunk size in characters.
	ChunkTargetSize int

	// IngestWorkers bounds concurrent ingestions.
	IngestWorkers int
}

// ApplyDefaults sets default values for unset fields.
func (c *Config) ApplyDefaults() {
	if c.ChunkTargetSize == 0 {
		c.ChunkTargetSize = chunker.DefaultTargetSize
	}
	if c.IngestWorkers == 0 {
		c.IngestWorkers = defaultIngestWorkers
	}
}

// Engine is the retrieval engine facade. Safe for concurrent use.
type Engine struct {
	config  Config
	store   *index.Store
	catalog *catalog.Catalog
	cascade *cascade.Cascade
	logger  *zap.Logger

	// ingestSem bounds concurrent chunk-and-build work.
	ingestSem chan struct{}
}

// New creates an engine over an already-constructed store, catalog and
// cascade.
func New(config Config, store *index.Store, cat *catalog.Catalog, casc *cascade.Cascade, logger *zap.Logger) *Engine {
	config.ApplyDefaults()
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		config:    config,
		store:     store,
		catalog:   cat,
		cascade:   casc,
		logger:    logger,
		ingestSem: make(chan struct{}, config.IngestWorkers),
	}
}

// Ingest chunks rawText, builds and persists a fresh index under
// (tenantID, docID), and registers the document with the catalog.
// Re-ingesting an existing docID replaces its index wholesale; a blank docID
// gets a generated one. Errors surface to the caller so the upload flow can
// retry with a different file.
func (e *Engine) Ingest(ctx context.Context, tenantID, docID, rawText string) (*index.Index, error) {
	if docID == "" {
		docID = uuid.NewString()
	}

	select {
	case e.ingestSem <- struct{}{}:
		defer func() { <-e.ingestSem }()
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	start := time.Now()
	texts, err := chunker.Chunk(rawText, e.config.ChunkTargetSize)
	if err != nil {
		return nil, fmt.Errorf("chunking document %s: %w", docID, err)
	}

	chunks := make([]index.Chunk, len(texts))
	for i, text := range texts {
		chunks[i] = index.Chunk{DocID: docID, Seq: i, Text: text}
		if prompt, response, ok := splitQA(text); ok {
			chunks[i].Prompt = prompt
			chunks[i].Response = response
		}
	}

	ix, err := e.store.Build(ctx, tenantID, docID, chunks)
	if err != nil {
		return nil, fmt.Errorf("building index %s/%s: %w", tenantID, docID, err)
	}
	e.catalog.RegisterDocument(tenantID, docID)

	e.logger.Info("document ingested",
		zap.String("tenant_id", tenantID),
		zap.String("doc_id", docID),
		zap.Int("chunks", ix.Len()),
		zap.Duration("elapsed", time.Since(start)),
	)
	return ix, nil
}

// IngestJSON flattens a structured payload (JSON records, Q&A lists, plain
// text) and ingests the result.
func (e *Engine) IngestJSON(ctx context.Context, tenantID, docID string, raw []byte) (*index.Index, error) {
	return e.Ingest(ctx, tenantID, docID, chunker.FlattenJSON(raw))
}

// Answer resolves a question for a tenant through the match cascade.
func (e *Engine) Answer(ctx context.Context, tenantID, question string) (cascade.Answer, error) {
	if strings.TrimSpace(question) == "" {
		return cascade.Answer{}, ErrEmptyQuestion
	}
	if err := index.ValidateID(tenantID); err != nil {
		return cascade.Answer{}, err
	}
	return e.cascade.Answer(ctx, tenantID, question), nil
}

// Catalog exposes the tenant catalog for knowledge-base management.
func (e *Engine) Catalog() *catalog.Catalog {
	return e.catalog
}

// splitQA recognizes the "Q: <prompt> A: <response>" rendering produced by
// the ingestion normalizer for curated pairs.
func splitQA(text string) (prompt, response string, ok bool) {
	if !strings.HasPrefix(text, "Q: ") {
		return "", "", false
	}
	idx := strings.LastIndex(text, " A: ")
	if idx < 0 {
		return "", "", false
	}
	prompt = strings.TrimSpace(text[len("Q: "):idx])
	response = strings.TrimSpace(text[idx+len(" A: "):])
	if prompt == "" || response == "" {
		return "", "", false
	}
	return prompt, response, true
}
