package ports

import (
	"time"

	"go.trai.ch/overlens/internal/core/domain"
)

// IndexCache stores per-file analysis results with dependency-aware invalidation.
// It is the only owner of the project index; every mutation is persisted.
//
//go:generate go run go.uber.org/mock/mockgen -source=cache.go -destination=mocks/mock_cache.go -package=mocks
type IndexCache interface {
	// Get returns the cached relations of filePath if the file has not changed
	// since they were computed. Stale or missing files are evicted and reported as a miss.
	Get(filePath string) ([]domain.OverrideRelation, bool)
	// Set stores relations for filePath stamped with the file's modification time.
	// observed is the modification time seen before analysis started, or zero.
	Set(filePath string, relations []domain.OverrideRelation, observed time.Time) error
	// SetDependencies records the peer files referenced by filePath's relations.
	SetDependencies(filePath string, peers []string)
	// Invalidate evicts filePath and every file that directly depends on it.
	// It returns the evicted paths.
	Invalidate(filePath string) []string
	// Remove drops the entry and dependency row of a deleted file.
	Remove(filePath string)
	// Clear drops the whole index.
	Clear()
	// Stats summarizes the index.
	Stats() domain.IndexStats
}
