package model

import (
	"os"
	"path/filepath"
	"time"
)

// Config holds the complete dupereview configuration
type Config struct {
	Paths  PathsConfig  `yaml:"paths" mapstructure:"paths"`
	Review ReviewConfig `yaml:"review" mapstructure:"review"`
	Server ServerConfig `yaml:"server" mapstructure:"server"`
	Limits LimitsConfig `yaml:"limits" mapstructure:"limits"`
	Cache  CacheConfig  `yaml:"cache" mapstructure:"cache"`
	Output OutputConfig `yaml:"output" mapstructure:"output"`
}

// PathsConfig locates the record trees and durable state directories
type PathsConfig struct {
	DataDir       string `yaml:"data_dir" mapstructure:"data_dir"`             // project root holding the trees below
	ClassifiedDir string `yaml:"classified_dir" mapstructure:"classified_dir"` // working copy (status "unknown")
	FinalDir      string `yaml:"final_dir" mapstructure:"final_dir"`           // kept records (status "saved")
	RemovedDir    string `yaml:"removed_dir" mapstructure:"removed_dir"`       // discarded records (status "removed")
	OriginalDir   string `yaml:"original_dir" mapstructure:"original_dir"`     // pristine master copy
	SessionDir    string `yaml:"session_dir" mapstructure:"session_dir"`
	GroupsDir     string `yaml:"groups_dir" mapstructure:"groups_dir"`
}

// ReviewConfig tunes the reconciliation engine
type ReviewConfig struct {
	TargetGroupsPerPage int  `yaml:"target_groups_per_page" mapstructure:"target_groups_per_page"`
	HeadsUp             bool `yaml:"heads_up" mapstructure:"heads_up"` // default check-all mode
	SubmitConcurrency   int  `yaml:"submit_concurrency" mapstructure:"submit_concurrency"`
	StatusConcurrency   int  `yaml:"status_concurrency" mapstructure:"status_concurrency"`
}

// ServerConfig configures the HTTP API
type ServerConfig struct {
	Addr string `yaml:"addr" mapstructure:"addr"`
}

// LimitsConfig paces calls against the backing store
type LimitsConfig struct {
	OpsPerSecond float64 `yaml:"ops_per_second" mapstructure:"ops_per_second"`
	Burst        int     `yaml:"burst" mapstructure:"burst"`
}

// CacheConfig controls the record snapshot cache
type CacheConfig struct {
	Enabled bool          `yaml:"enabled" mapstructure:"enabled"`
	TTL     time.Duration `yaml:"ttl" mapstructure:"ttl"`
}

// OutputConfig controls CLI output behavior
type OutputConfig struct {
	Verbose bool `yaml:"verbose" mapstructure:"verbose"`
}

// DefaultConfig returns the configuration defaults
func DefaultConfig() *Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	dataDir := filepath.Join(home, "dupereview-data")

	return &Config{
		Paths: PathsConfig{
			DataDir:       dataDir,
			ClassifiedDir: "classified_all_db",
			FinalDir:      "final_db",
			RemovedDir:    "removed_duplicates_db",
			OriginalDir:   "classified_all_db-original",
			SessionDir:    ".sessions",
			GroupsDir:     ".groups",
		},
		Review: ReviewConfig{
			TargetGroupsPerPage: 100,
			HeadsUp:             false,
			SubmitConcurrency:   4,
			StatusConcurrency:   8,
		},
		Server: ServerConfig{
			Addr: ":8000",
		},
		Limits: LimitsConfig{
			OpsPerSecond: 50,
			Burst:        10,
		},
		Cache: CacheConfig{
			Enabled: true,
			TTL:     30 * time.Minute,
		},
		Output: OutputConfig{
			Verbose: false,
		},
	}
}
