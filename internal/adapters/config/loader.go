// Package config provides the configuration loader for overlens.
package config

import (
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"go.trai.ch/overlens/internal/core/domain"
	"go.trai.ch/overlens/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// DefaultWorkerCommand launches the bundled analysis script.
var DefaultWorkerCommand = []string{"python3", "analyze_override.py"}

// DefaultInclude and DefaultExclude filter the files the watcher reports.
var (
	DefaultInclude = []string{"**/*.py"}
	DefaultExclude = []string{
		"**/.git/**",
		"**/.venv/**",
		"**/__pycache__/**",
		"**/" + domain.DirName + "/**",
	}
)

// Loader implements ports.ConfigLoader using a YAML file.
type Loader struct {
	Logger ports.Logger
}

var _ ports.ConfigLoader = (*Loader)(nil)

// NewLoader creates a new Loader with the given logger.
func NewLoader(logger ports.Logger) *Loader {
	return &Loader{Logger: logger}
}

// Load discovers overlens.yaml from cwd upwards. Without a config file the
// defaults apply and cwd is the project root.
func (l *Loader) Load(cwd string) (*domain.Config, error) {
	abs, err := filepath.Abs(cwd)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrConfigReadFailed.Error()), "cwd", cwd)
	}

	configPath, found := findConfiguration(abs)
	if !found {
		l.Logger.Debug("no " + domain.ConfigFileName + " found, using defaults")
		return build(&Configfile{}, abs)
	}

	var file Configfile
	if err := readAndUnmarshalYAML(configPath, &file); err != nil {
		return nil, zerr.With(err, "path", configPath)
	}

	cfg, err := build(&file, resolveRoot(configPath, file.Root))
	if err != nil {
		return nil, zerr.With(err, "path", configPath)
	}
	l.Logger.Debug("loaded configuration from " + configPath)
	return cfg, nil
}

func findConfiguration(cwd string) (string, bool) {
	currentDir := cwd
	for {
		candidate := filepath.Join(currentDir, domain.ConfigFileName)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, true
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			// Reached root
			return "", false
		}
		currentDir = parentDir
	}
}

func build(file *Configfile, root string) (*domain.Config, error) {
	cfg := &domain.Config{
		Root: root,
		Worker: domain.WorkerConfig{
			Command: slices.Clone(DefaultWorkerCommand),
		},
		Delays:      make(map[domain.TriggerKind]time.Duration, 3),
		Include:     slices.Clone(DefaultInclude),
		Exclude:     slices.Clone(DefaultExclude),
		Concurrency: domain.DefaultConcurrency,
	}

	if len(file.Worker.Command) > 0 {
		cfg.Worker.Command = slices.Clone(file.Worker.Command)
	}

	var err error
	if cfg.Worker.Timeout, err = parseDuration("worker.timeout", file.Worker.Timeout, domain.DefaultAnalyzeTimeout); err != nil {
		return nil, err
	}
	if cfg.Worker.Timeout <= 0 {
		return nil, zerr.With(zerr.Wrap(domain.ErrConfigParseFailed, "worker.timeout must be positive"),
			"value", file.Worker.Timeout)
	}
	if cfg.Worker.RestartDelay, err = parseDuration(
		"worker.restart_delay", file.Worker.RestartDelay, domain.DefaultRestartDelay,
	); err != nil {
		return nil, err
	}

	delays := []struct {
		kind  domain.TriggerKind
		field string
		value string
		def   time.Duration
	}{
		{domain.TriggerOpen, "debounce.open", file.Debounce.Open, domain.DefaultOpenDelay},
		{domain.TriggerChange, "debounce.change", file.Debounce.Change, domain.DefaultChangeDelay},
		{domain.TriggerSave, "debounce.save", file.Debounce.Save, domain.DefaultSaveDelay},
	}
	for _, d := range delays {
		if cfg.Delays[d.kind], err = parseDuration(d.field, d.value, d.def); err != nil {
			return nil, err
		}
	}

	if len(file.Watch.Include) > 0 {
		cfg.Include = slices.Clone(file.Watch.Include)
	}
	if file.Watch.Exclude != nil {
		cfg.Exclude = slices.Clone(file.Watch.Exclude)
	}
	for _, pattern := range slices.Concat(cfg.Include, cfg.Exclude) {
		if !doublestar.ValidatePattern(pattern) {
			return nil, zerr.Wrap(domain.ErrInvalidPattern, pattern)
		}
	}

	cfg.SnapshotPath = resolvePath(root, file.Cache.Path, domain.DefaultSnapshotPath())

	if file.Concurrency > 0 {
		cfg.Concurrency = file.Concurrency
	}

	return cfg, nil
}

// parseDuration returns def for an unset value. Negative durations are rejected.
func parseDuration(field, value string, def time.Duration) (time.Duration, error) {
	if value == "" {
		return def, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, zerr.With(zerr.Wrap(err, domain.ErrConfigParseFailed.Error()), "field", field)
	}
	if d < 0 {
		return 0, zerr.With(zerr.Wrap(domain.ErrConfigParseFailed, field+" must not be negative"), "value", value)
	}
	return d, nil
}

func resolveRoot(configPath, configuredRoot string) string {
	return resolvePath(filepath.Dir(configPath), configuredRoot, "")
}

// resolvePath anchors a configured path at base, falling back to def when unset.
func resolvePath(base, configured, def string) string {
	if configured == "" {
		configured = def
	}
	if filepath.IsAbs(configured) {
		return filepath.Clean(configured)
	}
	return filepath.Clean(filepath.Join(base, configured))
}

// readAndUnmarshalYAML reads a YAML file and unmarshals it into the target struct.
func readAndUnmarshalYAML[T any](configPath string, target *T) error {
	// #nosec G304 -- configPath is discovered by findConfiguration
	configFile, err := os.ReadFile(configPath)
	if err != nil {
		return zerr.Wrap(err, domain.ErrConfigReadFailed.Error())
	}

	if parseErr := yaml.Unmarshal(configFile, target); parseErr != nil {
		return zerr.Wrap(parseErr, domain.ErrConfigParseFailed.Error())
	}

	return nil
}
