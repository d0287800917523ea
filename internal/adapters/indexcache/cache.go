// Package indexcache stores per-file override relations, validated against
// file modification times and invalidated along recorded dependencies.
package indexcache

import (
	"os"
	"slices"
	"sync"
	"time"

	"go.trai.ch/overlens/internal/core/domain"
	"go.trai.ch/overlens/internal/core/ports"
	"go.trai.ch/zerr"
)

// Cache implements ports.IndexCache. Every mutation is written through to
// the snapshot file before the call returns.
type Cache struct {
	path   string
	logger ports.Logger
	now    func() time.Time

	mu    sync.Mutex
	index *domain.ProjectIndex
}

var _ ports.IndexCache = (*Cache)(nil)

// New loads the snapshot at path. An unreadable or corrupt snapshot is
// logged and replaced by an empty index.
func New(path string, logger ports.Logger) *Cache {
	idx, err := readSnapshot(path)
	if err != nil {
		logger.Warn("starting with an empty index")
		logger.Error(err)
		idx = domain.NewProjectIndex()
	}
	return &Cache{
		path:   path,
		logger: logger,
		now:    time.Now,
		index:  idx,
	}
}

// Get returns the relations of filePath when the file has not been modified
// after they were computed.
func (c *Cache) Get(filePath string) ([]domain.OverrideRelation, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.index.Files[filePath]
	if !ok {
		return nil, false
	}

	info, err := os.Stat(filePath)
	if err != nil || info.ModTime().After(entry.LastModified) {
		delete(c.index.Files, filePath)
		c.persistLocked()
		return nil, false
	}
	return slices.Clone(entry.Relations), true
}

// Set stores relations for filePath. The entry is stamped with the file's
// modification time, or with observed when that is older.
func (c *Cache) Set(filePath string, relations []domain.OverrideRelation, observed time.Time) error {
	info, err := os.Stat(filePath)
	if err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrFileNotFound.Error()), "file", filePath)
	}

	stamp := info.ModTime()
	if !observed.IsZero() && observed.Before(stamp) {
		stamp = observed
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.index.Files[filePath] = &domain.FileIndexEntry{
		Relations:    slices.Clone(relations),
		LastModified: stamp,
	}
	c.index.LastScan = c.now()
	c.persistLocked()
	return nil
}

// SetDependencies records the peer files of filePath. An empty set removes the row.
func (c *Cache) SetDependencies(filePath string, peers []string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if set := peerSet(peers); len(set) > 0 {
		c.index.Dependencies[filePath] = set
	} else {
		delete(c.index.Dependencies, filePath)
	}
	c.persistLocked()
}

// Invalidate evicts filePath and every entry whose dependency set contains it.
// Dependents of dependents are left alone. Dependency rows survive so a
// later edit still fans out.
func (c *Cache) Invalidate(filePath string) []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	var evicted []string
	evict := func(path string) {
		if _, ok := c.index.Files[path]; ok {
			delete(c.index.Files, path)
			evicted = append(evicted, path)
		}
	}

	evict(filePath)
	for _, dependent := range c.index.Dependents(filePath) {
		evict(dependent)
	}

	if len(evicted) > 0 {
		c.persistLocked()
	}
	return evicted
}

// Remove drops the entry and dependency row of a deleted file.
func (c *Cache) Remove(filePath string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.index.Files, filePath)
	delete(c.index.Dependencies, filePath)
	c.persistLocked()
}

// Clear drops the whole index.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.index = domain.NewProjectIndex()
	c.persistLocked()
}

// Dependents returns the files whose cached relations reference filePath.
func (c *Cache) Dependents(filePath string) []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.index.Dependents(filePath)
}

// Stats summarizes the index.
func (c *Cache) Stats() domain.IndexStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	st := domain.IndexStats{
		Files:        len(c.index.Files),
		Dependencies: len(c.index.Dependencies),
		LastScan:     c.index.LastScan,
	}
	for _, entry := range c.index.Files {
		st.Relations += len(entry.Relations)
	}
	return st
}

// persistLocked writes the snapshot. Failures are logged, never returned.
func (c *Cache) persistLocked() {
	if err := writeSnapshot(c.path, c.index); err != nil {
		c.logger.Error(err)
	}
}
