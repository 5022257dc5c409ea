package index

import (
	"context"
	"encoding/gob"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/answerd/internal/embeddings"
)

var storeTracer = otel.Tracer("answerd.index.store")

const (
	vectorsSuffix = ".vectors.gob"
	chunksSuffix  = ".chunks.json"
)

// ErrInvalidID indicates a tenant or document identifier unsafe to use as a
// path element.
var ErrInvalidID = errors.New("invalid identifier")

var idPattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._-]{0,127}$`)

// ValidateID checks that an identifier is safe to embed in artifact paths.
func ValidateID(id string) error {
	if !idPattern.MatchString(id) || strings.Contains(id, "..") {
		return fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return nil
}

// StoreConfig holds configuration for the on-disk index store.
type StoreConfig struct {
	// Path is the root directory for persisted artifacts, one subdirectory
	// per tenant. A leading ~ is expanded to the home directory.
	Path string

	// VectorSize is the expected embedding dimension.
	VectorSize int
}

// ApplyDefaults sets default values for unset fields.
func (c *StoreConfig) ApplyDefaults() {
	if c.Path == "" {
		c.Path = "~/.config/answerd/indices"
	}
	if c.VectorSize == 0 {
		c.VectorSize = 384
	}
}

// Store builds, persists, loads and queries per-(tenant, document) indices.
//
// Each index is stored as a pair of artifacts that are only ever read or
// written together: a gob-encoded vector file and a JSON chunk list. A build
// for a given (tenant, doc) takes that pair's writer lock, so concurrent
// rebuilds of the same document serialize (last writer wins). Writes go to a
// temp file and are renamed into place, so readers observe either the old
// pair or the new one, never a torn file.
type Store struct {
	root     string
	embedder embeddings.Embedder
	dim      int
	logger   *zap.Logger

	mu    sync.RWMutex
	cache map[string]*Index

	// locks holds one *sync.Mutex per (tenant, doc) writer.
	locks sync.Map
}

// NewStore creates a Store rooted at config.Path, creating the directory if
// needed.
func NewStore(config StoreConfig, embedder embeddings.Embedder, logger *zap.Logger) (*Store, error) {
	if embedder == nil {
		return nil, errors.New("embedder is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	config.ApplyDefaults()

	root, err := expandPath(config.Path)
	if err != nil {
		return nil, fmt.Errorf("expanding path: %w", err)
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("creating index directory %s: %w", root, err)
	}

	logger.Info("index store initialized",
		zap.String("path", root),
		zap.Int("vector_size", config.VectorSize),
	)

	return &Store{
		root:     root,
		embedder: embedder,
		dim:      config.VectorSize,
		logger:   logger,
		cache:    make(map[string]*Index),
	}, nil
}

func expandPath(path string) (string, error) {
	if strings.HasPrefix(path, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, path[1:]), nil
	}
	return path, nil
}

func cacheKey(tenantID, docID string) string {
	return tenantID + "/" + docID
}

func (s *Store) writerLock(tenantID, docID string) *sync.Mutex {
	v, _ := s.locks.LoadOrStore(cacheKey(tenantID, docID), &sync.Mutex{})
	return v.(*sync.Mutex)
}

// Build embeds chunks, constructs the index, persists the artifact pair and
// replaces any previous index for the same (tenant, doc) wholesale.
func (s *Store) Build(ctx context.Context, tenantID, docID string, chunks []Chunk) (*Index, error) {
	ctx, span := storeTracer.Start(ctx, "index.Store.Build")
	defer span.End()
	span.SetAttributes(
		attribute.String("tenant_id", tenantID),
		attribute.String("doc_id", docID),
		attribute.Int("chunk_count", len(chunks)),
	)

	if err := ValidateID(tenantID); err != nil {
		return nil, err
	}
	if err := ValidateID(docID); err != nil {
		return nil, err
	}

	lock := s.writerLock(tenantID, docID)
	lock.Lock()
	defer lock.Unlock()

	ix, err := Build(ctx, tenantID, docID, chunks, s.embedder, s.dim)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if err := s.persist(ix); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	s.mu.Lock()
	s.cache[cacheKey(tenantID, docID)] = ix
	s.mu.Unlock()

	span.SetStatus(codes.Ok, "success")
	s.logger.Info("index built",
		zap.String("tenant_id", tenantID),
		zap.String("doc_id", docID),
		zap.Int("chunks", ix.Len()),
		zap.Int("dim", ix.Dim),
	)
	return ix, nil
}

// Get returns the index for (tenant, doc), loading it from disk on first use.
// Returns ErrIndexNotFound when neither artifact exists.
func (s *Store) Get(ctx context.Context, tenantID, docID string) (*Index, error) {
	if err := ValidateID(tenantID); err != nil {
		return nil, err
	}
	if err := ValidateID(docID); err != nil {
		return nil, err
	}

	s.mu.RLock()
	ix, ok := s.cache[cacheKey(tenantID, docID)]
	s.mu.RUnlock()
	if ok {
		return ix, nil
	}

	ix, err := s.load(tenantID, docID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.cache[cacheKey(tenantID, docID)] = ix
	s.mu.Unlock()
	return ix, nil
}

// Query runs a k-nearest-neighbor search against the (tenant, doc) index.
func (s *Store) Query(ctx context.Context, tenantID, docID, queryText string, k int) ([]Result, error) {
	ctx, span := storeTracer.Start(ctx, "index.Store.Query")
	defer span.End()
	span.SetAttributes(
		attribute.String("tenant_id", tenantID),
		attribute.String("doc_id", docID),
		attribute.Int("k", k),
	)

	ix, err := s.Get(ctx, tenantID, docID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	results, err := ix.Query(ctx, queryText, s.embedder, k)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.Int("results", len(results)))
	span.SetStatus(codes.Ok, "success")
	return results, nil
}

// Latest returns the most recently built index belonging to tenantID, for
// queries that do not name a document. The scan never leaves the tenant's
// own directory, so one tenant can never fall back onto another's index.
func (s *Store) Latest(ctx context.Context, tenantID string) (*Index, error) {
	if err := ValidateID(tenantID); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(filepath.Join(s.root, tenantID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrIndexNotFound
		}
		return nil, fmt.Errorf("reading tenant directory: %w", err)
	}

	var latest *Index
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasSuffix(name, vectorsSuffix) {
			continue
		}
		docID := strings.TrimSuffix(name, vectorsSuffix)
		ix, err := s.Get(ctx, tenantID, docID)
		if err != nil {
			s.logger.Warn("skipping unloadable index",
				zap.String("tenant_id", tenantID),
				zap.String("doc_id", docID),
				zap.Error(err),
			)
			continue
		}
		if latest == nil || ix.BuiltAt.After(latest.BuiltAt) {
			latest = ix
		}
	}
	if latest == nil {
		return nil, ErrIndexNotFound
	}
	return latest, nil
}

// vectorsArtifact is the gob-encoded half of the pair.
type vectorsArtifact struct {
	TenantID string
	DocID    string
	Dim      int
	BuiltAt  int64 // unix nanoseconds
	Vectors  [][]float32
}

// chunksArtifact is the JSON half of the pair.
type chunksArtifact struct {
	TenantID string  `json:"tenant_id"`
	DocID    string  `json:"doc_id"`
	Count    int     `json:"count"`
	Chunks   []Chunk `json:"chunks"`
}

func (s *Store) artifactPaths(tenantID, docID string) (vectorsPath, chunksPath string) {
	dir := filepath.Join(s.root, tenantID)
	return filepath.Join(dir, docID+vectorsSuffix), filepath.Join(dir, docID+chunksSuffix)
}

// persist writes both halves of the artifact pair atomically (temp + rename).
// Caller holds the writer lock.
func (s *Store) persist(ix *Index) error {
	vectorsPath, chunksPath := s.artifactPaths(ix.TenantID, ix.DocID)
	if err := os.MkdirAll(filepath.Dir(vectorsPath), 0o755); err != nil {
		return fmt.Errorf("creating tenant directory: %w", err)
	}

	chunksData, err := json.Marshal(chunksArtifact{
		TenantID: ix.TenantID,
		DocID:    ix.DocID,
		Count:    len(ix.chunks),
		Chunks:   ix.chunks,
	})
	if err != nil {
		return fmt.Errorf("marshaling chunk list: %w", err)
	}
	if err := writeAtomic(chunksPath, func(f *os.File) error {
		_, werr := f.Write(chunksData)
		return werr
	}); err != nil {
		return fmt.Errorf("writing chunk list: %w", err)
	}

	if err := writeAtomic(vectorsPath, func(f *os.File) error {
		return gob.NewEncoder(f).Encode(vectorsArtifact{
			TenantID: ix.TenantID,
			DocID:    ix.DocID,
			Dim:      ix.Dim,
			BuiltAt:  ix.BuiltAt.UnixNano(),
			Vectors:  ix.vectors,
		})
	}); err != nil {
		return fmt.Errorf("writing vectors: %w", err)
	}

	return nil
}

// load reads and cross-checks the artifact pair. A missing pair is
// ErrIndexNotFound; a half-missing or misaligned pair is ErrCorruptIndex,
// never silently misaligned chunks.
func (s *Store) load(tenantID, docID string) (*Index, error) {
	vectorsPath, chunksPath := s.artifactPaths(tenantID, docID)

	vf, verr := os.Open(vectorsPath)
	cf, cerr := os.Open(chunksPath)
	if verr != nil && cerr != nil {
		return nil, ErrIndexNotFound
	}
	if verr != nil || cerr != nil {
		closeAll(vf, cf)
		return nil, fmt.Errorf("%w: artifact pair incomplete for %s/%s", ErrCorruptIndex, tenantID, docID)
	}
	defer closeAll(vf, cf)

	var va vectorsArtifact
	if err := gob.NewDecoder(vf).Decode(&va); err != nil {
		return nil, fmt.Errorf("%w: decoding vectors: %v", ErrCorruptIndex, err)
	}
	var ca chunksArtifact
	if err := json.NewDecoder(cf).Decode(&ca); err != nil {
		return nil, fmt.Errorf("%w: decoding chunk list: %v", ErrCorruptIndex, err)
	}

	if va.TenantID != tenantID || va.DocID != docID || ca.TenantID != tenantID || ca.DocID != docID {
		return nil, fmt.Errorf("%w: artifact identity mismatch for %s/%s", ErrCorruptIndex, tenantID, docID)
	}
	if len(va.Vectors) != len(ca.Chunks) || ca.Count != len(ca.Chunks) {
		return nil, fmt.Errorf("%w: %d vectors vs %d chunks", ErrCorruptIndex, len(va.Vectors), len(ca.Chunks))
	}
	if len(va.Vectors) == 0 {
		return nil, fmt.Errorf("%w: empty artifact pair", ErrCorruptIndex)
	}
	if err := embeddings.ValidateDimensions(va.Vectors, va.Dim); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptIndex, err)
	}

	return &Index{
		TenantID: tenantID,
		DocID:    docID,
		Dim:      va.Dim,
		BuiltAt:  timeFromUnixNano(va.BuiltAt),
		vectors:  va.Vectors,
		chunks:   ca.Chunks,
	}, nil
}

func timeFromUnixNano(n int64) time.Time {
	return time.Unix(0, n).UTC()
}

func writeAtomic(path string, write func(*os.File) error) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := write(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func closeAll(files ...*os.File) {
	for _, f := range files {
		if f != nil {
			f.Close()
		}
	}
}
