package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// LoadDir loads knowledge-base entry files from dir into the catalog.
//
// Each file is named <tenant_id>.json and holds a JSON list of
// {question, answer, category} objects - the shape uploaded structured files
// arrive in. Unreadable files are logged and skipped so one bad upload does
// not block the rest.
func (c *Catalog) LoadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("reading entries directory: %w", err)
	}

	for _, de := range entries {
		if de.IsDir() || !strings.HasSuffix(de.Name(), ".json") {
			continue
		}
		path := filepath.Join(dir, de.Name())
		if err := c.LoadFile(path); err != nil {
			c.logger.Warn("skipping knowledge-base file",
				zap.String("path", path),
				zap.Error(err),
			)
		}
	}
	return nil
}

// LoadFile loads one tenant's entry file, replacing that tenant's entries.
// The tenant id is the file name without its .json extension.
func (c *Catalog) LoadFile(path string) error {
	tenantID := strings.TrimSuffix(filepath.Base(path), ".json")
	if tenantID == "" {
		return fmt.Errorf("cannot derive tenant id from %q", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}

	valid := entries[:0]
	for _, e := range entries {
		if strings.TrimSpace(e.Question) == "" || strings.TrimSpace(e.Answer) == "" {
			c.logger.Warn("dropping entry without question or answer",
				zap.String("tenant_id", tenantID),
			)
			continue
		}
		valid = append(valid, e)
	}

	c.ReplaceEntries(tenantID, valid)
	return nil
}
