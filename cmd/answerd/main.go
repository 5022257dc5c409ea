// Package main implements the answerd CLI: document ingestion, knowledge-base
// management and question answering against the local retrieval engine.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/answerd/internal/cascade"
	"github.com/fyrsmithlabs/answerd/internal/catalog"
	"github.com/fyrsmithlabs/answerd/internal/config"
	"github.com/fyrsmithlabs/answerd/internal/embeddings"
	"github.com/fyrsmithlabs/answerd/internal/engine"
	"github.com/fyrsmithlabs/answerd/internal/genai"
	"github.com/fyrsmithlabs/answerd/internal/index"
	"github.com/fyrsmithlabs/answerd/internal/logging"
	"github.com/fyrsmithlabs/answerd/internal/patterns"
)

var (
	configPath string
	tenantID   string
	docID      string

	version = "dev"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "answerd",
	Short: "Multi-tenant document retrieval engine with cascading answer resolution",
	Long: `answerd chunks, embeds and indexes support documents per tenant, and
answers questions through a tiered cascade: small talk, exact knowledge-base
lookup, vector similarity search, pattern matching, keyword heuristics and a
generative fallback.`,
	Version: version,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file path (default ~/.config/answerd/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&tenantID, "tenant", "", "tenant identifier")
	ingestCmd.Flags().StringVar(&docID, "doc", "", "document identifier (generated when empty)")
	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(kbCmd)
}

var ingestCmd = &cobra.Command{
	Use:   "ingest <file>",
	Short: "Chunk, embed and index a document for a tenant",
	Long: `Ingest a text or JSON document into a tenant's index.

JSON payloads (lists of records, Q&A pairs, flat objects) are flattened to
text before chunking. Re-ingesting the same document id replaces its index.

Examples:
  answerd ingest --tenant acme docs/faq.json
  answerd ingest --tenant acme --doc handbook docs/handbook.txt`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Answer a question for a tenant",
	Long: `Run a question through the answer cascade and print the resolved
answer, the tier that produced it and its confidence.

Example:
  answerd ask --tenant acme "what is your return policy?"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

var kbCmd = &cobra.Command{
	Use:   "kb <entries.json>",
	Short: "Load curated knowledge-base entries for a tenant",
	Long: `Load a JSON list of {question, answer, category} records as the
tenant's curated knowledge base. These entries are checked before vector
search and are authoritative over retrieved or generated text.`,
	Args: cobra.ExactArgs(1),
	RunE: runKB,
}

func runIngest(cmd *cobra.Command, args []string) error {
	app, err := buildApp()
	if err != nil {
		return err
	}
	defer app.Close()

	raw, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading %s: %w", args[0], err)
	}

	ctx := cmd.Context()
	var ix *index.Index
	if strings.EqualFold(filepath.Ext(args[0]), ".json") {
		ix, err = app.engine.IngestJSON(ctx, tenantID, docID, raw)
	} else {
		ix, err = app.engine.Ingest(ctx, tenantID, docID, string(raw))
	}
	if err != nil {
		return err
	}

	fmt.Printf("indexed %d chunks as %s/%s\n", ix.Len(), ix.TenantID, ix.DocID)
	return nil
}

func runAsk(cmd *cobra.Command, args []string) error {
	app, err := buildApp()
	if err != nil {
		return err
	}
	defer app.Close()

	answer, err := app.engine.Answer(cmd.Context(), tenantID, strings.Join(args, " "))
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(answer, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func runKB(cmd *cobra.Command, args []string) error {
	app, err := buildApp()
	if err != nil {
		return err
	}
	defer app.Close()

	if tenantID == "" {
		return fmt.Errorf("--tenant is required")
	}
	if err := app.engine.Catalog().LoadFile(args[0]); err != nil {
		return err
	}
	// LoadFile keys entries by file name; re-key under the requested tenant
	// when the file name differs.
	fileTenant := strings.TrimSuffix(filepath.Base(args[0]), ".json")
	if fileTenant != tenantID {
		app.engine.Catalog().ReplaceEntries(tenantID, app.engine.Catalog().Entries(fileTenant))
		app.engine.Catalog().ReplaceEntries(fileTenant, nil)
	}

	fmt.Printf("loaded %d entries for tenant %s\n", len(app.engine.Catalog().Entries(tenantID)), tenantID)
	return nil
}

// app bundles the wired process-lifetime services: one embedder, one
// generator, one store, shared across everything.
type app struct {
	engine *engine.Engine
	logger *zap.Logger
	cancel context.CancelFunc
}

func (a *app) Close() {
	if a.cancel != nil {
		a.cancel()
	}
	_ = a.logger.Sync()
}

func buildApp() (*app, error) {
	// A local .env is a convenience in development; absence is fine.
	_ = godotenv.Load()

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		return nil, err
	}

	embedder, err := embeddings.New(embeddings.Config{
		Provider: cfg.Embeddings.Provider,
		BaseURL:  cfg.Embeddings.BaseURL,
		Model:    cfg.Embeddings.Model,
		APIKey:   os.Getenv("OPENAI_API_KEY"),
	})
	if err != nil {
		return nil, fmt.Errorf("creating embedder: %w", err)
	}

	var generator genai.Generator
	if cfg.Generator.Provider != "" {
		inner, err := genai.New(genai.Config{
			Provider: cfg.Generator.Provider,
			Model:    cfg.Generator.Model,
			BaseURL:  cfg.Generator.BaseURL,
			APIKey:   os.Getenv("OPENAI_API_KEY"),
		})
		if err != nil {
			return nil, fmt.Errorf("creating generator: %w", err)
		}
		generator = genai.NewBounded(inner, cfg.Generator.Timeout, cfg.Generator.RatePerSecond, logger)
	}

	store, err := index.NewStore(index.StoreConfig{
		Path:       cfg.Index.Path,
		VectorSize: cfg.Embeddings.VectorSize,
	}, embedder, logger)
	if err != nil {
		return nil, fmt.Errorf("creating index store: %w", err)
	}

	cat := catalog.New(logger)
	ctx, cancel := context.WithCancel(context.Background())
	if cfg.Catalog.EntriesPath != "" {
		if err := cat.LoadDir(cfg.Catalog.EntriesPath); err != nil {
			logger.Warn("loading knowledge-base entries failed", zap.Error(err))
		}
		if cfg.Catalog.Watch {
			if err := cat.Watch(ctx, cfg.Catalog.EntriesPath); err != nil {
				logger.Warn("watching knowledge-base entries failed", zap.Error(err))
			}
		}
	}

	casc := cascade.New(cascade.Config{
		GreetingThreshold:     cfg.Cascade.GreetingThreshold,
		ConversationThreshold: cfg.Cascade.ConversationThreshold,
		KBThreshold:           cfg.Cascade.KBThreshold,
		SubstringScore:        cfg.Cascade.SubstringScore,
		TopK:                  cfg.Index.TopK,
		MinChunkLength:        cfg.Cascade.MinChunkLength,
	}, patterns.NewBank(), cat, store, generator, logger)

	eng := engine.New(engine.Config{
		ChunkTargetSize: cfg.Chunker.TargetSize,
	}, store, cat, casc, logger)

	return &app{engine: eng, logger: logger, cancel: cancel}, nil
}
