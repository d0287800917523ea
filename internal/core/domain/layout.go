package domain

import "path/filepath"

const (
	// DirName is the name of the per-project metadata directory.
	DirName = ".overlens"

	// SnapshotFileName is the name of the persisted index snapshot.
	SnapshotFileName = "index.json"

	// ConfigFileName is the name of the project configuration file.
	ConfigFileName = "overlens.yaml"

	// DirPerm is the default permission for directories (rwxr-x---).
	DirPerm = 0o750

	// FilePerm is the default permission for files (rw-r--r--).
	FilePerm = 0o644
)

// DefaultSnapshotPath returns the snapshot path relative to the project root.
func DefaultSnapshotPath() string {
	return filepath.Join(DirName, SnapshotFileName)
}
