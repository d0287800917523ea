package domain

import "time"

// Defaults applied when the config file leaves a value unset.
const (
	DefaultAnalyzeTimeout = 10 * time.Second
	DefaultRestartDelay   = time.Second
	DefaultOpenDelay      = 0
	DefaultChangeDelay    = 800 * time.Millisecond
	DefaultSaveDelay      = 150 * time.Millisecond
	DefaultConcurrency    = 4
)

// Config is the resolved project configuration.
type Config struct {
	// Root is the absolute project root the worker is launched for.
	Root   string
	Worker WorkerConfig
	// Delays maps each trigger kind to its debounce delay.
	Delays  map[TriggerKind]time.Duration
	Include []string
	Exclude []string
	// SnapshotPath is the absolute path of the persisted index.
	SnapshotPath string
	// Concurrency bounds batch resolves.
	Concurrency int
}

// WorkerConfig describes how to launch and talk to the analysis worker.
type WorkerConfig struct {
	// Command is the worker executable and its leading arguments.
	// The server flag and the project root are appended at launch.
	Command      []string
	Timeout      time.Duration
	RestartDelay time.Duration
}

// Delay returns the debounce delay configured for kind.
func (c *Config) Delay(kind TriggerKind) time.Duration {
	if d, ok := c.Delays[kind]; ok {
		return d
	}
	switch kind {
	case TriggerSave:
		return DefaultSaveDelay
	case TriggerChange:
		return DefaultChangeDelay
	default:
		return DefaultOpenDelay
	}
}
