package config

// Configfile represents the structure of the overlens.yaml configuration file.
type Configfile struct {
	Version     string      `yaml:"version"`
	Root        string      `yaml:"root"`
	Worker      WorkerDTO   `yaml:"worker"`
	Debounce    DebounceDTO `yaml:"debounce"`
	Watch       WatchDTO    `yaml:"watch"`
	Cache       CacheDTO    `yaml:"cache"`
	Concurrency int         `yaml:"concurrency"`
}

// WorkerDTO configures the analysis worker process.
type WorkerDTO struct {
	Command      []string `yaml:"command"`
	Timeout      string   `yaml:"timeout"`
	RestartDelay string   `yaml:"restart_delay"`
}

// DebounceDTO holds the per-trigger debounce delays as Go duration strings.
type DebounceDTO struct {
	Open   string `yaml:"open"`
	Change string `yaml:"change"`
	Save   string `yaml:"save"`
}

// WatchDTO selects the files the watch command reacts to.
type WatchDTO struct {
	Include []string `yaml:"include"`
	Exclude []string `yaml:"exclude"`
}

// CacheDTO configures the persisted index.
type CacheDTO struct {
	Path string `yaml:"path"`
}
