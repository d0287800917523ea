package indexcache

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/overlens/internal/core/domain"
	"go.trai.ch/zerr"
)

// snapshot is the persisted form of a ProjectIndex. Maps are written as
// sorted [key, value] pairs so the file is stable across runs.
type snapshot struct {
	Files        []fileRecord       `json:"files"`
	Dependencies []dependencyRecord `json:"dependencies"`
	LastScan     time.Time          `json:"lastScan"`
}

type entryRecord struct {
	Overrides    []domain.OverrideRelation `json:"overrides"`
	LastModified time.Time                 `json:"lastModified"`
}

type fileRecord struct {
	Path  string
	Entry entryRecord
}

func (r fileRecord) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]any{r.Path, r.Entry})
}

func (r *fileRecord) UnmarshalJSON(data []byte) error {
	return unmarshalPair(data, &r.Path, &r.Entry)
}

type dependencyRecord struct {
	Path  string
	Peers []string
}

func (r dependencyRecord) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]any{r.Path, r.Peers})
}

func (r *dependencyRecord) UnmarshalJSON(data []byte) error {
	return unmarshalPair(data, &r.Path, &r.Peers)
}

func unmarshalPair(data []byte, key *string, value any) error {
	var pair []json.RawMessage
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	if len(pair) != 2 {
		return fmt.Errorf("expected a [key, value] pair, got %d elements", len(pair))
	}
	if err := json.Unmarshal(pair[0], key); err != nil {
		return err
	}
	return json.Unmarshal(pair[1], value)
}

func encodeSnapshot(idx *domain.ProjectIndex) ([]byte, error) {
	snap := snapshot{
		Files:        make([]fileRecord, 0, len(idx.Files)),
		Dependencies: make([]dependencyRecord, 0, len(idx.Dependencies)),
		LastScan:     idx.LastScan.UTC(),
	}

	for path, entry := range idx.Files {
		overrides := entry.Relations
		if overrides == nil {
			overrides = []domain.OverrideRelation{}
		}
		snap.Files = append(snap.Files, fileRecord{
			Path:  path,
			Entry: entryRecord{Overrides: overrides, LastModified: entry.LastModified.UTC()},
		})
	}
	slices.SortFunc(snap.Files, func(a, b fileRecord) int { return strings.Compare(a.Path, b.Path) })

	for path := range idx.Dependencies {
		snap.Dependencies = append(snap.Dependencies, dependencyRecord{
			Path:  path,
			Peers: idx.DependenciesOf(path),
		})
	}
	slices.SortFunc(snap.Dependencies, func(a, b dependencyRecord) int { return strings.Compare(a.Path, b.Path) })

	return json.MarshalIndent(snap, "", "  ")
}

func decodeSnapshot(data []byte) (*domain.ProjectIndex, error) {
	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, err
	}

	idx := domain.NewProjectIndex()
	idx.LastScan = snap.LastScan
	for _, rec := range snap.Files {
		if rec.Path == "" || rec.Entry.LastModified.IsZero() {
			continue
		}
		idx.Files[rec.Path] = &domain.FileIndexEntry{
			Relations:    rec.Entry.Overrides,
			LastModified: rec.Entry.LastModified,
		}
	}
	for _, rec := range snap.Dependencies {
		if set := peerSet(rec.Peers); rec.Path != "" && len(set) > 0 {
			idx.Dependencies[rec.Path] = set
		}
	}
	return idx, nil
}

// readSnapshot loads the index at path. A missing file yields an empty index.
func readSnapshot(path string) (*domain.ProjectIndex, error) {
	//nolint:gosec // G304: the snapshot path comes from the project config
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return domain.NewProjectIndex(), nil
		}
		return nil, zerr.With(zerr.Wrap(err, domain.ErrSnapshotLoadFailed.Error()), "path", path)
	}

	idx, err := decodeSnapshot(data)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrSnapshotLoadFailed.Error()), "path", path)
	}
	return idx, nil
}

// writeSnapshot replaces the file at path atomically. The temp file name is
// derived from the payload hash so concurrent writers never share one.
func writeSnapshot(path string, idx *domain.ProjectIndex) error {
	data, err := encodeSnapshot(idx)
	if err != nil {
		return zerr.Wrap(err, domain.ErrSnapshotWriteFailed.Error())
	}

	if err := os.MkdirAll(filepath.Dir(path), domain.DirPerm); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrSnapshotWriteFailed.Error()), "path", path)
	}

	tmp := fmt.Sprintf("%s.%016x.tmp", path, xxhash.Sum64(data))
	if err := os.WriteFile(tmp, data, domain.FilePerm); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrSnapshotWriteFailed.Error()), "path", path)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return zerr.With(zerr.Wrap(err, domain.ErrSnapshotWriteFailed.Error()), "path", path)
	}
	return nil
}

func peerSet(peers []string) map[string]struct{} {
	set := make(map[string]struct{}, len(peers))
	for _, p := range peers {
		if p != "" {
			set[p] = struct{}{}
		}
	}
	return set
}
