// Package ports declares the interfaces between the engine and its adapters.
package ports

import (
	"context"

	"go.trai.ch/overlens/internal/core/domain"
)

// WorkerStatus is a point-in-time view of the analysis worker.
type WorkerStatus struct {
	// Running is true while a worker process exists.
	Running  bool `json:"running"`
	// Ready is true once the worker has announced readiness.
	Ready    bool `json:"ready"`
	// PID is the worker process id, or 0 when not running.
	PID      int  `json:"pid"`
	// Pending is the number of requests awaiting a response.
	Pending  int  `json:"pending"`
	// Restarts counts explicit restarts since construction.
	Restarts int  `json:"restarts"`
}

// AnalysisWorker owns one long-lived analysis process and multiplexes requests over it.
//
//go:generate go run go.uber.org/mock/mockgen -source=worker.go -destination=mocks/mock_worker.go -package=mocks
type AnalysisWorker interface {
	// Start spawns the worker if needed and blocks until it is ready.
	// Concurrent callers share a single startup attempt.
	Start(ctx context.Context) error
	// Analyze requests the override relations of filePath.
	// Responses are matched by correlation id; calls may overlap freely.
	Analyze(ctx context.Context, filePath string) ([]domain.OverrideRelation, error)
	// Restart terminates the current process, waits the grace delay and starts again.
	Restart(ctx context.Context) error
	// Stop terminates the worker and fails every pending request.
	Stop() error
	// Status reports the worker state.
	Status() WorkerStatus
}
