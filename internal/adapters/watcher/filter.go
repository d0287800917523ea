package watcher

import (
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Filter selects project files by doublestar include and exclude patterns
// matched against the slash-separated path relative to the root.
type Filter struct {
	root    string
	include []string
	exclude []string
}

// NewFilter creates a Filter. An empty include list matches every file.
func NewFilter(root string, include, exclude []string) *Filter {
	return &Filter{root: root, include: include, exclude: exclude}
}

// Match reports whether path is inside the root, matched by an include
// pattern and not matched by any exclude pattern.
func (f *Filter) Match(path string) bool {
	rel, err := filepath.Rel(f.root, path)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return false
	}
	rel = filepath.ToSlash(rel)

	for _, pattern := range f.exclude {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return false
		}
	}
	if len(f.include) == 0 {
		return true
	}
	for _, pattern := range f.include {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}
