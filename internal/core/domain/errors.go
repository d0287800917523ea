package domain

import "go.trai.ch/zerr"

var (
	// ErrProtocolDecode is returned when a line from the worker cannot be decoded.
	ErrProtocolDecode = zerr.New("failed to decode worker message")

	// ErrAnalysisTimeout is returned when the worker does not answer a request within its budget.
	ErrAnalysisTimeout = zerr.New("analysis request timed out")

	// ErrWorkerTerminated is returned to every pending request when the worker process exits.
	ErrWorkerTerminated = zerr.New("analysis worker terminated")

	// ErrWorkerBackoff is returned while a crashed worker waits out its restart delay.
	ErrWorkerBackoff = zerr.New("analysis worker is waiting to restart")

	// ErrWorkerSpawnFailed is returned when the worker process cannot be started.
	ErrWorkerSpawnFailed = zerr.New("failed to start analysis worker")

	// ErrWorkerNotRunning is returned when a request is written while no worker is running.
	ErrWorkerNotRunning = zerr.New("analysis worker is not running")

	// ErrWorkerRequestFailed is returned when the worker answers a request with an error.
	ErrWorkerRequestFailed = zerr.New("analysis worker reported an error")

	// ErrWorkerWriteFailed is returned when a request cannot be written to the worker.
	ErrWorkerWriteFailed = zerr.New("failed to write request to analysis worker")

	// ErrWorkerCommandEmpty is returned when no worker command is configured.
	ErrWorkerCommandEmpty = zerr.New("worker command is empty")

	// ErrSnapshotLoadFailed is returned when the persisted index cannot be read or parsed.
	ErrSnapshotLoadFailed = zerr.New("failed to load index snapshot")

	// ErrSnapshotWriteFailed is returned when the index snapshot cannot be persisted.
	ErrSnapshotWriteFailed = zerr.New("failed to write index snapshot")

	// ErrFileNotFound is returned when an indexed file no longer exists.
	ErrFileNotFound = zerr.New("file not found")

	// ErrConfigReadFailed is returned when the config file cannot be read.
	ErrConfigReadFailed = zerr.New("failed to read config file")

	// ErrConfigParseFailed is returned when the config file cannot be parsed.
	ErrConfigParseFailed = zerr.New("failed to parse config file")

	// ErrInvalidPattern is returned when a watch include or exclude glob is malformed.
	ErrInvalidPattern = zerr.New("invalid watch pattern")

	// ErrInvalidLine is returned when a line argument is not a positive integer.
	ErrInvalidLine = zerr.New("line must be a positive integer")

	// ErrNoFilesSpecified is returned when a command needs at least one file.
	ErrNoFilesSpecified = zerr.New("no files specified")
)
