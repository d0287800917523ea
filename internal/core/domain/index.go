package domain

import (
	"slices"
	"time"
)

// FileIndexEntry is the cached analysis result for one file.
// It is replaced wholesale on re-analysis, never merged.
type FileIndexEntry struct {
	Relations []OverrideRelation
	// LastModified is the file's modification time when Relations were computed.
	LastModified time.Time
}

// ProjectIndex is the state owned by the index cache.
type ProjectIndex struct {
	Files map[string]*FileIndexEntry
	// Dependencies maps a file to the peer files its cached relations reference.
	Dependencies map[string]map[string]struct{}
	LastScan     time.Time
}

// NewProjectIndex returns an empty index.
func NewProjectIndex() *ProjectIndex {
	return &ProjectIndex{
		Files:        make(map[string]*FileIndexEntry),
		Dependencies: make(map[string]map[string]struct{}),
	}
}

// DependenciesOf returns the sorted dependency set of path.
func (p *ProjectIndex) DependenciesOf(path string) []string {
	deps := make([]string, 0, len(p.Dependencies[path]))
	for dep := range p.Dependencies[path] {
		deps = append(deps, dep)
	}
	slices.Sort(deps)
	return deps
}

// Dependents returns the sorted files whose dependency set contains path.
func (p *ProjectIndex) Dependents(path string) []string {
	var dependents []string
	for file, deps := range p.Dependencies {
		if _, ok := deps[path]; ok {
			dependents = append(dependents, file)
		}
	}
	slices.Sort(dependents)
	return dependents
}

// IndexStats summarizes the index for status reporting.
type IndexStats struct {
	Files        int       `json:"files"`
	Dependencies int       `json:"dependencies"`
	Relations    int       `json:"relations"`
	LastScan     time.Time `json:"lastScan"`
}
