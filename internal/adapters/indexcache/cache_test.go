package indexcache_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/overlens/internal/adapters/indexcache"
	"go.trai.ch/overlens/internal/core/domain"
	"go.trai.ch/overlens/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

type fixture struct {
	dir      string
	snapshot string
	cache    *indexcache.Cache
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()
	snapshot := filepath.Join(dir, domain.DefaultSnapshotPath())
	return &fixture{
		dir:      dir,
		snapshot: snapshot,
		cache:    indexcache.New(snapshot, quietLogger(gomock.NewController(t))),
	}
}

// file writes a source file with the given modification time.
func (f *fixture) file(t *testing.T, name string, mtime time.Time) string {
	t.Helper()
	path := filepath.Join(f.dir, name)
	require.NoError(t, os.WriteFile(path, []byte("class A:\n    pass\n"), domain.FilePerm))
	require.NoError(t, os.Chtimes(path, mtime, mtime))
	return path
}

func quietLogger(ctrl *gomock.Controller) *mocks.MockLogger {
	log := mocks.NewMockLogger(ctrl)
	log.EXPECT().Debug(gomock.Any()).AnyTimes()
	log.EXPECT().Info(gomock.Any()).AnyTimes()
	log.EXPECT().Warn(gomock.Any()).AnyTimes()
	log.EXPECT().Error(gomock.Any()).AnyTimes()
	return log
}

func relationTo(peer string) []domain.OverrideRelation {
	return []domain.OverrideRelation{{
		OwningClass:   "Child",
		Method:        "run",
		Line:          1,
		Kind:          domain.KindChildOverride,
		PeerClassName: "Base",
		PeerFilePath:  peer,
		PeerLine:      1,
	}}
}

var t0 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func TestCache_GetMiss(t *testing.T) {
	f := newFixture(t)
	rels, ok := f.cache.Get(filepath.Join(f.dir, "unknown.py"))
	assert.False(t, ok)
	assert.Nil(t, rels)
}

func TestCache_SetThenGet(t *testing.T) {
	f := newFixture(t)
	child := f.file(t, "child.py", t0)
	base := f.file(t, "base.py", t0)

	require.NoError(t, f.cache.Set(child, relationTo(base), time.Time{}))

	rels, ok := f.cache.Get(child)
	require.True(t, ok)
	assert.Equal(t, relationTo(base), rels)
}

func TestCache_Get_StaleEntryEvicted(t *testing.T) {
	f := newFixture(t)
	child := f.file(t, "child.py", t0)
	require.NoError(t, f.cache.Set(child, relationTo("/base.py"), time.Time{}))

	later := t0.Add(time.Second)
	require.NoError(t, os.Chtimes(child, later, later))

	_, ok := f.cache.Get(child)
	assert.False(t, ok)
	assert.Equal(t, 0, f.cache.Stats().Files, "stale entry is evicted")
}

func TestCache_Get_MissingFileEvicted(t *testing.T) {
	f := newFixture(t)
	child := f.file(t, "child.py", t0)
	require.NoError(t, f.cache.Set(child, relationTo("/base.py"), time.Time{}))
	require.NoError(t, os.Remove(child))

	_, ok := f.cache.Get(child)
	assert.False(t, ok)
	assert.Equal(t, 0, f.cache.Stats().Files)
}

func TestCache_Set_EditDuringAnalysisStaysStale(t *testing.T) {
	f := newFixture(t)
	child := f.file(t, "child.py", t0.Add(time.Second))

	// Analysis started while the file still had mtime t0.
	require.NoError(t, f.cache.Set(child, relationTo("/base.py"), t0))

	_, ok := f.cache.Get(child)
	assert.False(t, ok)
}

func TestCache_Set_MissingFile(t *testing.T) {
	f := newFixture(t)
	err := f.cache.Set(filepath.Join(f.dir, "gone.py"), nil, time.Time{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), domain.ErrFileNotFound.Error())
}

func TestCache_SetDependencies(t *testing.T) {
	f := newFixture(t)

	f.cache.SetDependencies("/a.py", []string{"/b.py", "", "/b.py", "/c.py"})
	assert.Equal(t, 1, f.cache.Stats().Dependencies)
	assert.Equal(t, []string{"/a.py"}, f.cache.Dependents("/b.py"))
	assert.Equal(t, []string{"/a.py"}, f.cache.Dependents("/c.py"))

	f.cache.SetDependencies("/a.py", []string{""})
	assert.Equal(t, 0, f.cache.Stats().Dependencies, "an empty set removes the row")
	assert.Empty(t, f.cache.Dependents("/b.py"))
}

func TestCache_Invalidate_SingleHop(t *testing.T) {
	f := newFixture(t)
	base := f.file(t, "base.py", t0)
	child := f.file(t, "child.py", t0)
	grandchild := f.file(t, "grandchild.py", t0)

	require.NoError(t, f.cache.Set(base, nil, time.Time{}))
	require.NoError(t, f.cache.Set(child, relationTo(base), time.Time{}))
	require.NoError(t, f.cache.Set(grandchild, relationTo(child), time.Time{}))
	f.cache.SetDependencies(child, []string{base})
	f.cache.SetDependencies(grandchild, []string{child})

	evicted := f.cache.Invalidate(base)
	assert.Equal(t, []string{base, child}, evicted)

	_, ok := f.cache.Get(child)
	assert.False(t, ok)
	_, ok = f.cache.Get(grandchild)
	assert.True(t, ok, "dependents of dependents are not chased")

	assert.Equal(t, []string{child}, f.cache.Dependents(base), "dependency rows survive invalidation")
}

func TestCache_Invalidate_NothingCached(t *testing.T) {
	f := newFixture(t)
	assert.Empty(t, f.cache.Invalidate("/nowhere.py"))
	assert.NoFileExists(t, f.snapshot)
}

func TestCache_Remove(t *testing.T) {
	f := newFixture(t)
	base := f.file(t, "base.py", t0)
	child := f.file(t, "child.py", t0)
	require.NoError(t, f.cache.Set(base, nil, time.Time{}))
	require.NoError(t, f.cache.Set(child, relationTo(base), time.Time{}))
	f.cache.SetDependencies(base, []string{child})
	f.cache.SetDependencies(child, []string{base})

	f.cache.Remove(base)

	st := f.cache.Stats()
	assert.Equal(t, 1, st.Files)
	assert.Equal(t, 1, st.Dependencies)
	assert.Equal(t, []string{child}, f.cache.Dependents(base), "other rows are untouched")
}

func TestCache_Clear(t *testing.T) {
	f := newFixture(t)
	child := f.file(t, "child.py", t0)
	require.NoError(t, f.cache.Set(child, relationTo("/base.py"), time.Time{}))
	f.cache.SetDependencies(child, []string{"/base.py"})

	f.cache.Clear()

	assert.Equal(t, domain.IndexStats{}, f.cache.Stats())
	reloaded := indexcache.New(f.snapshot, quietLogger(gomock.NewController(t)))
	assert.Equal(t, 0, reloaded.Stats().Files)
}

func TestCache_Persistence_RoundTrip(t *testing.T) {
	f := newFixture(t)
	child := f.file(t, "child.py", t0)
	base := f.file(t, "base.py", t0)
	require.NoError(t, f.cache.Set(child, relationTo(base), time.Time{}))
	f.cache.SetDependencies(child, []string{base})

	reloaded := indexcache.New(f.snapshot, quietLogger(gomock.NewController(t)))

	rels, ok := reloaded.Get(child)
	require.True(t, ok)
	assert.Equal(t, relationTo(base), rels)
	assert.Equal(t, []string{child}, reloaded.Dependents(base))
	assert.False(t, reloaded.Stats().LastScan.IsZero())
}

func TestCache_CorruptSnapshot_ColdStart(t *testing.T) {
	dir := t.TempDir()
	snapshot := filepath.Join(dir, "index.json")
	require.NoError(t, os.WriteFile(snapshot, []byte(`{"files": [[`), domain.FilePerm))

	ctrl := gomock.NewController(t)
	log := mocks.NewMockLogger(ctrl)
	log.EXPECT().Warn(gomock.Any()).Times(1)
	log.EXPECT().Error(gomock.Any()).Times(1)

	cache := indexcache.New(snapshot, log)
	assert.Equal(t, domain.IndexStats{}, cache.Stats())
}

func TestCache_WriteFailureIsSwallowed(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, nil, domain.FilePerm))
	child := filepath.Join(dir, "child.py")
	require.NoError(t, os.WriteFile(child, nil, domain.FilePerm))

	ctrl := gomock.NewController(t)
	log := mocks.NewMockLogger(ctrl)
	log.EXPECT().Warn(gomock.Any()).AnyTimes()
	log.EXPECT().Error(gomock.Any()).MinTimes(1)

	cache := indexcache.New(filepath.Join(blocker, "index.json"), log)
	require.NoError(t, cache.Set(child, nil, time.Time{}))

	_, ok := cache.Get(child)
	assert.True(t, ok, "the in-memory index keeps working")
}
