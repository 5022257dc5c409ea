// Package catalog maps tenants to their documents and curated knowledge-base
// entries, and enforces tenant isolation for both.
package catalog

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/answerd/internal/textmatch"
)

// ErrTenantIsolation indicates an internal isolation invariant was violated.
// It should never surface to a caller; seeing it means a catalog bug.
var ErrTenantIsolation = errors.New("tenant isolation violation")

// Entry is a curated question/answer pair. Entries are authoritative over
// retrieved or generated text, so the cascade checks them before vector
// search.
type Entry struct {
	TenantID string `json:"-"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Category string `json:"category,omitempty"`
}

// DefaultKBThreshold is the acceptance score for FindExact when the caller
// passes zero.
const DefaultKBThreshold = 0.4

// answerWeight discounts the answer-text similarity relative to the question
// similarity when scoring an entry.
const answerWeight = 0.25

// domainKeywords earn a small boost when they appear in both the incoming
// question and a stored entry. They mark intents (pricing, duration,
// offerings) where a shared keyword is a stronger signal than edit distance.
var domainKeywords = []string{
	"price", "pricing", "cost", "how long", "services", "service",
	"refund", "return", "shipping", "delivery", "warranty", "support",
}

// keywordBoost is added per shared domain keyword, up to maxKeywordBoost.
const (
	keywordBoost    = 0.05
	maxKeywordBoost = 0.15
)

// Catalog groups each tenant's registered documents and knowledge-base
// entries. A tenant absent from the catalog yields empty results, never
// another tenant's data. Safe for concurrent use.
type Catalog struct {
	logger *zap.Logger

	mu      sync.RWMutex
	docs    map[string][]string
	entries map[string][]Entry
}

// New creates an empty catalog.
func New(logger *zap.Logger) *Catalog {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Catalog{
		logger:  logger,
		docs:    make(map[string][]string),
		entries: make(map[string][]Entry),
	}
}

// RegisterDocument records that docID is indexed under tenantID.
// Registration is idempotent; order of first registration is preserved.
func (c *Catalog) RegisterDocument(tenantID, docID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, d := range c.docs[tenantID] {
		if d == docID {
			return
		}
	}
	c.docs[tenantID] = append(c.docs[tenantID], docID)
}

// ListDocuments returns the document ids registered under tenantID, in
// registration order. Unknown tenants get an empty list.
func (c *Catalog) ListDocuments(tenantID string) []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, len(c.docs[tenantID]))
	copy(out, c.docs[tenantID])
	return out
}

// AddEntry adds a knowledge-base entry under tenantID.
func (c *Catalog) AddEntry(tenantID, question, answer, category string) error {
	if strings.TrimSpace(question) == "" || strings.TrimSpace(answer) == "" {
		return fmt.Errorf("entry requires non-empty question and answer")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[tenantID] = append(c.entries[tenantID], Entry{
		TenantID: tenantID,
		Question: question,
		Answer:   answer,
		Category: category,
	})
	return nil
}

// ReplaceEntries swaps tenantID's entry list wholesale. Used by the loader
// and watcher when an entry file is (re)read.
func (c *Catalog) ReplaceEntries(tenantID string, entries []Entry) {
	for i := range entries {
		entries[i].TenantID = tenantID
	}
	c.mu.Lock()
	c.entries[tenantID] = entries
	c.mu.Unlock()
	c.logger.Info("knowledge-base entries replaced",
		zap.String("tenant_id", tenantID),
		zap.Int("count", len(entries)),
	)
}

// Entries returns a copy of tenantID's entries.
func (c *Catalog) Entries(tenantID string) []Entry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Entry, len(c.entries[tenantID]))
	copy(out, c.entries[tenantID])
	return out
}

// FindExact scores every entry stored under tenantID against question and
// returns the best one when its score reaches threshold (DefaultKBThreshold
// when threshold is zero).
//
// Scoring: normalized edit-distance ratio against the entry's question, the
// same ratio against its answer at lower weight, plus a capped boost per
// domain keyword the question shares with the entry.
func (c *Catalog) FindExact(tenantID, question string, threshold float64) (*Entry, float64, error) {
	if threshold <= 0 {
		threshold = DefaultKBThreshold
	}

	c.mu.RLock()
	entries := c.entries[tenantID]
	c.mu.RUnlock()

	var (
		best      *Entry
		bestScore float64
	)
	for i := range entries {
		e := entries[i]
		score := scoreEntry(question, e)
		if best == nil || score > bestScore {
			best = &e
			bestScore = score
		}
	}

	if best == nil || bestScore < threshold {
		return nil, 0, nil
	}
	// Invariant check: an entry stored under one tenant must never be
	// returned for another. Failing here means a catalog bug, not bad input.
	if best.TenantID != tenantID {
		return nil, 0, fmt.Errorf("%w: entry for %q surfaced under %q",
			ErrTenantIsolation, best.TenantID, tenantID)
	}
	return best, bestScore, nil
}

func scoreEntry(question string, e Entry) float64 {
	score := textmatch.Ratio(question, e.Question)
	score += answerWeight * textmatch.Ratio(question, e.Answer)

	nq := textmatch.Normalize(question)
	ne := textmatch.Normalize(e.Question + " " + e.Answer)
	var boost float64
	for _, kw := range domainKeywords {
		if strings.Contains(nq, kw) && strings.Contains(ne, kw) {
			boost += keywordBoost
			if boost >= maxKeywordBoost {
				break
			}
		}
	}
	score += boost

	if score > 1 {
		score = 1
	}
	return score
}

// Tenants returns all tenant ids with documents or entries, sorted.
func (c *Catalog) Tenants() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	seen := make(map[string]bool, len(c.docs)+len(c.entries))
	for t := range c.docs {
		seen[t] = true
	}
	for t := range c.entries {
		seen[t] = true
	}
	out := make([]string, 0, len(seen))
	for t := range seen {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}
