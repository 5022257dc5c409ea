// Package cascade implements the tiered answer-resolution policy.
//
// A question runs through six tiers in fixed priority order, each terminal on
// success: small talk, exact knowledge-base match, vector similarity search,
// general pattern matching, keyword heuristics, and a generative fallback.
// Errors inside tiers 1-5 fall through to the next tier; the final tier never
// fails outward. No state is carried between tiers or requests beyond what
// the catalog and index store persist.
package cascade

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/answerd/internal/catalog"
	"github.com/fyrsmithlabs/answerd/internal/genai"
	"github.com/fyrsmithlabs/answerd/internal/index"
	"github.com/fyrsmithlabs/answerd/internal/patterns"
)

var cascadeTracer = otel.Tracer("answerd.cascade")

// Tier identifies the cascade stage that resolved a question.
type Tier string

// Tiers in priority order.
const (
	TierGreeting     Tier = "greeting"
	TierExactKB      Tier = "exact_kb"
	TierVector       Tier = "vector"
	TierConversation Tier = "conversation"
	TierKeyword      Tier = "keyword"
	TierGenerative   Tier = "generative"
)

// Apology is returned by the generative tier when the generator is absent,
// errors, or times out. The cascade never propagates a tier-6 error.
const Apology = "I'm sorry, I couldn't find an answer to that right now. Could you try rephrasing your question?"

// Answer is a resolved question.
type Answer struct {
	Text       string  `json:"text"`
	Tier       Tier    `json:"tier_used"`
	Confidence float64 `json:"confidence"`
}

// Config holds the per-tier acceptance parameters. Thresholds are tuned
// values, not contracts: only the tier ordering is structural.
type Config struct {
	// GreetingThreshold gates the small-talk tier.
	GreetingThreshold float64

	// ConversationThreshold gates the general pattern tier.
	ConversationThreshold float64

	// KBThreshold gates the exact knowledge-base tier.
	KBThreshold float64

	// SubstringScore is the pattern score for substring containment.
	SubstringScore float64

	// TopK is the neighbor count for the vector tier.
	TopK int

	// MinChunkLength rejects shorter retrieved chunks as fragment noise.
	MinChunkLength int
}

// ApplyDefaults sets default values for unset fields.
func (c *Config) ApplyDefaults() {
	if c.GreetingThreshold == 0 {
		c.GreetingThreshold = 0.7
	}
	if c.ConversationThreshold == 0 {
		c.ConversationThreshold = 0.5
	}
	if c.KBThreshold == 0 {
		c.KBThreshold = catalog.DefaultKBThreshold
	}
	if c.SubstringScore == 0 {
		c.SubstringScore = patterns.DefaultSubstringScore
	}
	if c.TopK == 0 {
		c.TopK = 3
	}
	if c.MinChunkLength == 0 {
		c.MinChunkLength = 20
	}
}

// Cascade resolves questions for a tenant. Safe for concurrent use; the
// embedder and generator behind it are shared singletons.
type Cascade struct {
	config    Config
	bank      *patterns.Bank
	catalog   *catalog.Catalog
	store     *index.Store
	generator genai.Generator
	logger    *zap.Logger
	metrics   *Metrics
}

// New creates a cascade. generator may be nil, in which case the final tier
// answers with the fixed apology.
func New(config Config, bank *patterns.Bank, cat *catalog.Catalog, store *index.Store, generator genai.Generator, logger *zap.Logger) *Cascade {
	config.ApplyDefaults()
	if bank == nil {
		bank = patterns.NewBank()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cascade{
		config:    config,
		bank:      bank,
		catalog:   cat,
		store:     store,
		generator: generator,
		logger:    logger,
		metrics:   NewMetrics(),
	}
}

// Answer resolves question for tenantID. It always returns an answer: tier 6
// is a catch-all and converts its own failures into the fixed apology.
func (c *Cascade) Answer(ctx context.Context, tenantID, question string) Answer {
	ctx, span := cascadeTracer.Start(ctx, "cascade.Answer")
	defer span.End()
	span.SetAttributes(attribute.String("tenant_id", tenantID))

	start := time.Now()
	answer := c.resolve(ctx, tenantID, question)
	c.metrics.AnswersTotal.WithLabelValues(string(answer.Tier)).Inc()
	c.metrics.AnswerDuration.Observe(time.Since(start).Seconds())

	span.SetAttributes(
		attribute.String("tier", string(answer.Tier)),
		attribute.Float64("confidence", answer.Confidence),
	)
	c.logger.Debug("question resolved",
		zap.String("tenant_id", tenantID),
		zap.String("tier", string(answer.Tier)),
		zap.Float64("confidence", answer.Confidence),
		zap.Duration("elapsed", time.Since(start)),
	)
	return answer
}

func (c *Cascade) resolve(ctx context.Context, tenantID, question string) Answer {
	// Tier 1: purely conversational intents. The bar is high so a business
	// answer is never shadowed by a coincidentally similar greeting.
	if match, ok := c.bank.BestMatch(question, true, c.config.SubstringScore); ok && match.Score >= c.config.GreetingThreshold {
		if text := c.bank.Response(match.Category); text != "" {
			return Answer{Text: text, Tier: TierGreeting, Confidence: match.Score}
		}
	}

	// Tier 2: curated Q&A pairs are authoritative over anything retrieved
	// or generated.
	entry, score, err := c.catalog.FindExact(tenantID, question, c.config.KBThreshold)
	if err != nil {
		c.tierError(TierExactKB, tenantID, err)
	} else if entry != nil {
		return Answer{Text: entry.Answer, Tier: TierExactKB, Confidence: score}
	}

	// Tier 3: vector similarity over the tenant's indexed documents.
	if answer, ok := c.vectorTier(ctx, tenantID, question); ok {
		return answer
	}

	// Tier 4: pattern matching again, all categories, lower bar.
	if match, ok := c.bank.BestMatch(question, false, c.config.SubstringScore); ok && match.Score >= c.config.ConversationThreshold {
		if text := c.bank.Response(match.Category); text != "" {
			return Answer{Text: text, Tier: TierConversation, Confidence: match.Score}
		}
	}

	// Tier 5: cheap keyword heuristics, no external calls.
	if text, ok := keywordResponse(question); ok {
		return Answer{Text: text, Tier: TierKeyword, Confidence: 0.3}
	}

	// Tier 6: generative fallback. Never fails outward.
	return c.generativeTier(ctx, question)
}

// vectorTier queries the tenant's document indices and assembles an answer
// from the nearest chunks. Any error falls through to the next tier.
func (c *Cascade) vectorTier(ctx context.Context, tenantID, question string) (Answer, bool) {
	results, err := c.searchTenant(ctx, tenantID, question)
	if err != nil {
		if !errors.Is(err, index.ErrIndexNotFound) {
			c.tierError(TierVector, tenantID, err)
		}
		return Answer{}, false
	}
	if len(results) == 0 {
		return Answer{}, false
	}

	var answers []string
	for _, r := range results {
		if text := extractAnswer(r.Chunk, c.config.MinChunkLength); text != "" {
			answers = append(answers, text)
		}
		if len(answers) == 2 {
			break
		}
	}
	if len(answers) == 0 {
		return Answer{}, false
	}

	// Nearest distance drives confidence: 0 distance maps to 1.0.
	confidence := 1.0 / (1.0 + float64(results[0].Distance))
	return Answer{Text: joinAnswers(answers), Tier: TierVector, Confidence: confidence}, true
}

// searchTenant queries every document registered for the tenant and merges
// the results by ascending distance. When the catalog knows no documents it
// falls back to the tenant's most recently built index on disk - never to
// another tenant's.
func (c *Cascade) searchTenant(ctx context.Context, tenantID, question string) ([]index.Result, error) {
	docs := c.catalog.ListDocuments(tenantID)
	if len(docs) == 0 {
		latest, err := c.store.Latest(ctx, tenantID)
		if err != nil {
			return nil, err
		}
		docs = []string{latest.DocID}
	}

	var merged []index.Result
	var lastErr error
	for _, docID := range docs {
		results, err := c.store.Query(ctx, tenantID, docID, question, c.config.TopK)
		if err != nil {
			lastErr = err
			continue
		}
		merged = append(merged, results...)
	}
	if len(merged) == 0 {
		if lastErr != nil {
			return nil, lastErr
		}
		return nil, index.ErrIndexNotFound
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Distance < merged[j].Distance
	})
	if len(merged) > c.config.TopK {
		merged = merged[:c.config.TopK]
	}
	return merged, nil
}

// generativeTier invokes the external generator. Any failure, including a
// missing generator, becomes the fixed apology rather than an error.
func (c *Cascade) generativeTier(ctx context.Context, question string) Answer {
	if c.generator == nil {
		return Answer{Text: Apology, Tier: TierGenerative, Confidence: 0}
	}

	prompt := fmt.Sprintf(
		"You are a friendly customer support assistant. Answer the question below concisely and helpfully. If you don't know, say so politely.\n\nQuestion: %s",
		question,
	)
	text, err := c.generator.Generate(ctx, prompt)
	if err != nil || strings.TrimSpace(text) == "" {
		if err != nil {
			c.tierError(TierGenerative, "", err)
		}
		return Answer{Text: Apology, Tier: TierGenerative, Confidence: 0}
	}
	return Answer{Text: strings.TrimSpace(text), Tier: TierGenerative, Confidence: 0.5}
}

func (c *Cascade) tierError(tier Tier, tenantID string, err error) {
	c.metrics.TierErrorsTotal.WithLabelValues(string(tier)).Inc()
	c.logger.Warn("tier failed, falling through",
		zap.String("tier", string(tier)),
		zap.String("tenant_id", tenantID),
		zap.Error(err),
	)
}
