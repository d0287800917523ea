package watcher_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.trai.ch/overlens/internal/adapters/watcher"
)

func TestFilter_Match(t *testing.T) {
	f := watcher.NewFilter("/project",
		[]string{"**/*.py"},
		[]string{"**/.venv/**", "**/__pycache__/**", "build/**"},
	)

	tests := []struct {
		path string
		want bool
	}{
		{"/project/a.py", true},
		{"/project/pkg/models/base.py", true},
		{"/project/README.md", false},
		{"/project/.venv/lib/site.py", false},
		{"/project/pkg/__pycache__/base.py", false},
		{"/project/build/gen.py", false},
		{"/project", false},
		{"/other/a.py", false},
		{"/projectx/a.py", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, f.Match(tt.path))
		})
	}
}

func TestFilter_EmptyIncludeMatchesAll(t *testing.T) {
	f := watcher.NewFilter("/project", nil, []string{"*.log"})

	assert.True(t, f.Match("/project/notes.txt"))
	assert.False(t, f.Match("/project/debug.log"))
}
