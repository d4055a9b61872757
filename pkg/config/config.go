// Package config loads the pagesmith configuration file. Every setting has
// a working default; a missing file or missing section is not an error, so a
// bare install behaves exactly like the documented defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/pagesmith/pagesmith/pkg/dispatch"
	"github.com/pagesmith/pagesmith/pkg/snapshot"
)

// Duration wraps time.Duration with YAML support for values like "5s".
type Duration time.Duration

// UnmarshalYAML parses a duration string.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML renders the duration as a string.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// TimeoutEntry is one dispatcher timeout rule as written in the file.
type TimeoutEntry struct {
	Pattern string   `yaml:"pattern"`
	Timeout Duration `yaml:"timeout"`
}

// SnapshotSection carries the compaction tunables.
type SnapshotSection struct {
	Sectioner snapshot.SectionerConfig `yaml:"sectioner"`
	Delta     snapshot.DeltaConfig     `yaml:"delta"`
}

// BrowserSection carries browser backend settings.
type BrowserSection struct {
	Headless       bool    `yaml:"headless"`
	ViewportWidth  int     `yaml:"viewport_width"`
	ViewportHeight int     `yaml:"viewport_height"`
	TimeoutMillis  float64 `yaml:"timeout_ms"`
}

// SessionsSection carries executor session limits.
type SessionsSection struct {
	MaxSessions int      `yaml:"max_sessions"`
	IdleTimeout Duration `yaml:"idle_timeout"`
}

// Config is the full configuration tree.
type Config struct {
	Snapshot SnapshotSection `yaml:"snapshot"`
	Timeouts []TimeoutEntry  `yaml:"timeouts"`
	Browser  BrowserSection  `yaml:"browser"`
	Sessions SessionsSection `yaml:"sessions"`
}

// Default returns the stock configuration.
func Default() Config {
	rules := dispatch.DefaultTimeoutRules()
	timeouts := make([]TimeoutEntry, 0, len(rules))
	for _, r := range rules {
		timeouts = append(timeouts, TimeoutEntry{Pattern: r.Pattern, Timeout: Duration(r.Timeout)})
	}
	return Config{
		Snapshot: SnapshotSection{
			Sectioner: snapshot.DefaultSectionerConfig(),
			Delta:     snapshot.DefaultDeltaConfig(),
		},
		Timeouts: timeouts,
		Browser: BrowserSection{
			Headless:       true,
			ViewportWidth:  1280,
			ViewportHeight: 720,
			TimeoutMillis:  30000,
		},
		Sessions: SessionsSection{
			MaxSessions: 5,
			IdleTimeout: Duration(5 * time.Minute),
		},
	}
}

// DefaultPath returns ~/.pagesmith/config.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".pagesmith", "config.yaml"), nil
}

// Load reads the file at path over the defaults. A missing file yields the
// defaults; a malformed file is an error, not a silent fallback.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// SnapshotConfig maps the snapshot section onto the pipeline configuration.
// The keyword vocabulary is code-defined; the file only tunes thresholds.
func (c Config) SnapshotConfig() snapshot.Config {
	return snapshot.Config{
		Vocabulary: snapshot.DefaultVocabulary(),
		Sectioner:  c.Snapshot.Sectioner,
		Delta:      c.Snapshot.Delta,
	}
}

// TimeoutRules maps the timeouts section onto dispatcher rules.
func (c Config) TimeoutRules() []dispatch.TimeoutRule {
	rules := make([]dispatch.TimeoutRule, 0, len(c.Timeouts))
	for _, e := range c.Timeouts {
		rules = append(rules, dispatch.TimeoutRule{Pattern: e.Pattern, Timeout: time.Duration(e.Timeout)})
	}
	return rules
}
