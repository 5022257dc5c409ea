package catalog_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/answerd/internal/catalog"
)

func TestRegisterDocument(t *testing.T) {
	c := catalog.New(zap.NewNop())

	c.RegisterDocument("acme", "faq")
	c.RegisterDocument("acme", "handbook")
	c.RegisterDocument("acme", "faq") // idempotent

	assert.Equal(t, []string{"faq", "handbook"}, c.ListDocuments("acme"))
	assert.Empty(t, c.ListDocuments("globex"))
}

func TestAddEntry(t *testing.T) {
	c := catalog.New(zap.NewNop())

	require.NoError(t, c.AddEntry("acme", "What is the return policy?", "Thirty days, full refund.", "returns"))
	assert.Error(t, c.AddEntry("acme", "  ", "answer without a question", ""))
	assert.Error(t, c.AddEntry("acme", "question without an answer", "", ""))

	entries := c.Entries("acme")
	require.Len(t, entries, 1)
	assert.Equal(t, "acme", entries[0].TenantID)
	assert.Equal(t, "returns", entries[0].Category)
}

func TestFindExact(t *testing.T) {
	c := catalog.New(zap.NewNop())
	require.NoError(t, c.AddEntry("acme", "What is your return policy?", "Items can be returned within 30 days for a full refund.", "returns"))
	require.NoError(t, c.AddEntry("acme", "How long does shipping take?", "Standard shipping takes 3 to 5 business days.", "shipping"))

	t.Run("near-verbatim question matches its entry", func(t *testing.T) {
		entry, score, err := c.FindExact("acme", "what is your return policy", 0)
		require.NoError(t, err)
		require.NotNil(t, entry)
		assert.Equal(t, "Items can be returned within 30 days for a full refund.", entry.Answer)
		assert.GreaterOrEqual(t, score, catalog.DefaultKBThreshold)
	})

	t.Run("best entry wins over the others", func(t *testing.T) {
		entry, _, err := c.FindExact("acme", "how long is shipping", 0)
		require.NoError(t, err)
		require.NotNil(t, entry)
		assert.Equal(t, "shipping", entry.Category)
	})

	t.Run("unrelated question stays below threshold", func(t *testing.T) {
		entry, score, err := c.FindExact("acme",
			"could you maybe recommend me a really good pizza place somewhere around downtown where my friends and i can celebrate a birthday this weekend", 0)
		require.NoError(t, err)
		assert.Nil(t, entry)
		assert.Zero(t, score)
	})

	t.Run("unknown tenant has no entries", func(t *testing.T) {
		entry, _, err := c.FindExact("globex", "what is your return policy", 0)
		require.NoError(t, err)
		assert.Nil(t, entry)
	})

	t.Run("score exactly at threshold is accepted", func(t *testing.T) {
		// Probe the score once, then ask again with that exact value as the
		// threshold. The boundary counts as a hit.
		_, score, err := c.FindExact("acme", "return policy?", 0.01)
		require.NoError(t, err)
		require.Greater(t, score, 0.0)

		entry, _, err := c.FindExact("acme", "return policy?", score)
		require.NoError(t, err)
		assert.NotNil(t, entry)

		entry, _, err = c.FindExact("acme", "return policy?", score+1e-9)
		require.NoError(t, err)
		assert.Nil(t, entry)
	})
}

func TestFindExactTenantIsolation(t *testing.T) {
	c := catalog.New(zap.NewNop())
	require.NoError(t, c.AddEntry("acme", "What is your return policy?", "Thirty days.", ""))
	require.NoError(t, c.AddEntry("globex", "What is your return policy?", "Ten days, store credit only.", ""))

	entry, _, err := c.FindExact("globex", "what is your return policy", 0)
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, "globex", entry.TenantID)
	assert.Equal(t, "Ten days, store credit only.", entry.Answer)
}

func TestReplaceEntries(t *testing.T) {
	c := catalog.New(zap.NewNop())
	require.NoError(t, c.AddEntry("acme", "old question", "old answer", ""))

	c.ReplaceEntries("acme", []catalog.Entry{
		{Question: "new question", Answer: "new answer"},
	})

	entries := c.Entries("acme")
	require.Len(t, entries, 1)
	assert.Equal(t, "new question", entries[0].Question)
	assert.Equal(t, "acme", entries[0].TenantID)
}

func TestTenants(t *testing.T) {
	c := catalog.New(zap.NewNop())
	c.RegisterDocument("globex", "doc")
	require.NoError(t, c.AddEntry("acme", "q", "a", ""))

	assert.Equal(t, []string{"acme", "globex"}, c.Tenants())
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "acme.json")
	data := `[
		{"question": "What is your return policy?", "answer": "Thirty days.", "category": "returns"},
		{"question": "", "answer": "dropped, no question"},
		{"question": "How do I reach support?", "answer": "Email support@example.com."}
	]`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	c := catalog.New(zap.NewNop())
	require.NoError(t, c.LoadFile(path))

	entries := c.Entries("acme")
	require.Len(t, entries, 2)
	assert.Equal(t, "returns", entries[0].Category)
	assert.Equal(t, "acme", entries[1].TenantID)
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "acme.json"),
		[]byte(`[{"question": "q1", "answer": "a1"}]`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "globex.json"),
		[]byte(`[{"question": "q2", "answer": "a2"}]`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.json"),
		[]byte(`{not json`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"),
		[]byte(`ignored`), 0o644))

	c := catalog.New(zap.NewNop())
	require.NoError(t, c.LoadDir(dir))

	assert.Len(t, c.Entries("acme"), 1)
	assert.Len(t, c.Entries("globex"), 1)
	assert.Empty(t, c.Entries("broken"))
	assert.Equal(t, []string{"acme", "globex"}, c.Tenants())
}
