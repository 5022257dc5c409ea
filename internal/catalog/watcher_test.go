package catalog_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/answerd/internal/catalog"
)

func TestWatchReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c := catalog.New(zap.NewNop())
	require.NoError(t, c.Watch(ctx, dir))

	path := filepath.Join(dir, "acme.json")
	require.NoError(t, os.WriteFile(path,
		[]byte(`[{"question": "What is your return policy?", "answer": "Thirty days."}]`), 0o644))

	assert.Eventually(t, func() bool {
		return len(c.Entries("acme")) == 1
	}, 3*time.Second, 10*time.Millisecond)

	// A rewrite replaces the tenant's entries wholesale.
	require.NoError(t, os.WriteFile(path,
		[]byte(`[{"question": "q1", "answer": "a1"}, {"question": "q2", "answer": "a2"}]`), 0o644))

	assert.Eventually(t, func() bool {
		return len(c.Entries("acme")) == 2
	}, 3*time.Second, 10*time.Millisecond)
}

func TestWatchMissingDirectory(t *testing.T) {
	c := catalog.New(zap.NewNop())
	err := c.Watch(context.Background(), filepath.Join(t.TempDir(), "does-not-exist"))
	assert.Error(t, err)
}
