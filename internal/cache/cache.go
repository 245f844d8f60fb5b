// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package cache implements the on-disk PDF cache, keyed by paper ID.
// A present, non-empty file is the proof of a completed download.
package cache

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Cache stores PDF blobs under a base directory as <paperID>.pdf.
type Cache struct {
	dir string
}

// New creates the cache directory if needed and returns a Cache.
func New(dir string) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating cache directory %s: %w", dir, err)
	}
	return &Cache{dir: dir}, nil
}

// Dir returns the cache base directory.
func (c *Cache) Dir() string { return c.dir }

// PathFor returns the cache location for a paper ID, whether or not a
// blob exists there.
func (c *Cache) PathFor(paperID string) string {
	return filepath.Join(c.dir, sanitize(paperID)+".pdf")
}

// MetaPathFor returns the location of the metadata sidecar written next
// to the cached PDF.
func (c *Cache) MetaPathFor(paperID string) string {
	return filepath.Join(c.dir, sanitize(paperID)+".yaml")
}

// Has reports whether a non-empty blob exists for the paper ID. An empty
// file does not count as cached: it is a leftover from an interrupted
// write and will be re-downloaded.
func (c *Cache) Has(paperID string) bool {
	info, err := os.Stat(c.PathFor(paperID))
	return err == nil && info.Size() > 0
}

// Write streams r to the cache entry for paperID via a temp file, renaming
// into place on success so readers never observe a partial blob.
func (c *Cache) Write(paperID string, r io.Reader) (string, error) {
	dest := c.PathFor(paperID)

	tmp, err := os.CreateTemp(c.dir, ".download-*.tmp")
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	_, copyErr := io.Copy(tmp, r)
	closeErr := tmp.Close()
	if copyErr != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("writing download: %w", copyErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("closing temp file: %w", closeErr)
	}

	if err := os.Rename(tmpPath, dest); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("renaming temp file: %w", err)
	}
	return dest, nil
}

// Delete removes the blob and its metadata sidecar for paperID. Missing
// entries are not an error.
func (c *Cache) Delete(paperID string) error {
	err := os.Remove(c.PathFor(paperID))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("deleting cache entry for %s: %w", paperID, err)
	}
	if err := os.Remove(c.MetaPathFor(paperID)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("deleting metadata for %s: %w", paperID, err)
	}
	return nil
}

// sanitize makes a paper ID safe as a filename (old-style arXiv IDs
// contain slashes, e.g. "math/0211159").
func sanitize(paperID string) string {
	return strings.ReplaceAll(paperID, "/", "-")
}
