// Package config loads redseed settings from a TOML file and REDSEED_*
// environment variables. Command-line flags are applied on top by the cmd
// package.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// DefaultFile is loaded from the working directory when no --config is given.
const DefaultFile = "redseed.toml"

// Config holds everything a run needs besides the command itself.
type Config struct {
	Redmine RedmineConfig `toml:"redmine"`
	Project ProjectConfig `toml:"project"`
	Concept ConceptConfig `toml:"concept"`
	Tickets TicketsConfig `toml:"tickets"`
}

// RedmineConfig locates the Redmine instance.
type RedmineConfig struct {
	URL    string `toml:"url"`
	APIKey string `toml:"api_key"`

	// Timeout is a Go duration string. Empty or "0" keeps the transport default.
	Timeout string `toml:"timeout,omitempty"`
}

// ProjectConfig names the projects that categories and sub-projects go into.
type ProjectConfig struct {
	// Identifier is the project that receives issue categories.
	Identifier string `toml:"identifier"`

	// Parent is the project new sub-projects are created under.
	// Falls back to Identifier when empty.
	Parent string `toml:"parent,omitempty"`
}

// ConceptConfig locates the concept document.
type ConceptConfig struct {
	File string `toml:"file"`
}

// TicketsConfig holds issue defaults.
type TicketsConfig struct {
	// ProjectID is the numeric id or identifier of the project that receives
	// tickets. Falls back to Project.Identifier when empty.
	ProjectID string `toml:"project_id,omitempty"`

	// TrackerID is the Redmine tracker for new issues.
	// nil/absent = default (1).
	TrackerID *int `toml:"tracker_id,omitempty"`

	// StatusID is the Redmine status for new issues.
	// nil/absent = default (1, "Neu").
	StatusID *int `toml:"status_id,omitempty"`
}

// Default returns an empty configuration with defaults applied.
func Default() *Config {
	tracker := 1
	status := 1
	return &Config{
		Tickets: TicketsConfig{
			TrackerID: &tracker,
			StatusID:  &status,
		},
	}
}

// Load builds a Config from defaults, the config file and the environment.
// An explicit path must exist; otherwise DefaultFile is read if present.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}
	if err := loadFromFile(path, cfg); err != nil {
		if explicit || !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadFromFile(path string, cfg *Config) error {
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		sort.Strings(keys)
		return fmt.Errorf("config file %s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	return nil
}

func applyEnv(cfg *Config) error {
	strs := []struct {
		env string
		dst *string
	}{
		{"REDSEED_URL", &cfg.Redmine.URL},
		{"REDSEED_API_KEY", &cfg.Redmine.APIKey},
		{"REDSEED_TIMEOUT", &cfg.Redmine.Timeout},
		{"REDSEED_PROJECT", &cfg.Project.Identifier},
		{"REDSEED_PARENT", &cfg.Project.Parent},
		{"REDSEED_PROJECT_ID", &cfg.Tickets.ProjectID},
		{"REDSEED_CONCEPT_FILE", &cfg.Concept.File},
	}
	for _, s := range strs {
		if v := os.Getenv(s.env); v != "" {
			*s.dst = v
		}
	}

	ints := []struct {
		env string
		dst **int
	}{
		{"REDSEED_TRACKER_ID", &cfg.Tickets.TrackerID},
		{"REDSEED_STATUS_ID", &cfg.Tickets.StatusID},
	}
	for _, i := range ints {
		v := os.Getenv(i.env)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", i.env, err)
		}
		*i.dst = &n
	}

	if cfg.Redmine.Timeout != "" {
		if _, err := time.ParseDuration(cfg.Redmine.Timeout); err != nil {
			return fmt.Errorf("invalid redmine timeout %q: %w", cfg.Redmine.Timeout, err)
		}
	}
	return nil
}

// GetParent returns Project.Parent, or Project.Identifier if unset.
func (c *Config) GetParent() string {
	if c.Project.Parent != "" {
		return c.Project.Parent
	}
	return c.Project.Identifier
}

// GetTicketProject returns Tickets.ProjectID, or Project.Identifier if unset.
func (c *Config) GetTicketProject() string {
	if c.Tickets.ProjectID != "" {
		return c.Tickets.ProjectID
	}
	return c.Project.Identifier
}

// GetTrackerID returns TrackerID or the default (1) if unset.
func (c *Config) GetTrackerID() int {
	if c == nil || c.Tickets.TrackerID == nil {
		return 1
	}
	return *c.Tickets.TrackerID
}

// GetStatusID returns StatusID or the default (1) if unset.
func (c *Config) GetStatusID() int {
	if c == nil || c.Tickets.StatusID == nil {
		return 1
	}
	return *c.Tickets.StatusID
}

// GetTimeout returns the HTTP timeout, or 0 when unset or invalid.
func (c *Config) GetTimeout() time.Duration {
	if c == nil {
		return 0
	}
	return ParseDurationOrDefault(c.Redmine.Timeout, 0)
}

// ParseDurationOrDefault parses a Go duration string, returning fallback on error or empty input.
func ParseDurationOrDefault(s string, fallback time.Duration) time.Duration {
	if s == "" {
		return fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}
