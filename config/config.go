// Package config loads and validates the engage configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spiffcs/engage/internal/model"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration.
type Config struct {
	Owner string `yaml:"owner" json:"owner"`
	Repo  string `yaml:"repo" json:"repo"`

	// Exactly one of ProjectNumber or IssueNumber must be positive.
	// ProjectNumber wins when both are set.
	ProjectNumber int `yaml:"project_number,omitempty" json:"projectNumber,omitempty"`
	IssueNumber   int `yaml:"issue_number,omitempty" json:"issueNumber,omitempty"`

	// ProjectColumn is the human-readable name of the project field that
	// receives computed scores.
	ProjectColumn string `yaml:"project_column,omitempty" json:"projectColumn,omitempty"`

	ApplyScores bool   `yaml:"apply_scores,omitempty" json:"applyScores,omitempty"`
	DryRun      bool   `yaml:"dry_run,omitempty" json:"dryRun,omitempty"`
	TempDir     string `yaml:"temp_dir,omitempty" json:"tempDir,omitempty"`

	// Workers bounds project-mode scoring concurrency. Zero means sequential.
	Workers int `yaml:"workers,omitempty" json:"workers,omitempty"`

	Weights Weights          `yaml:"weights" json:"weights"`
	Groups  model.UserGroups `yaml:"groups,omitempty" json:"groups,omitempty"`
}

// DefaultConfigDir returns the default config directory
func DefaultConfigDir() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return ".engage"
	}
	return filepath.Join(configDir, "engage")
}

// ConfigPath returns the path to the global config file
func ConfigPath() string {
	return filepath.Join(DefaultConfigDir(), "config.yaml")
}

// LocalConfigPath returns the path to the local config file in the current directory
func LocalConfigPath() string {
	return ".engage.yaml"
}

// DefaultConfig returns a fully populated config with default values.
func DefaultConfig() *Config {
	return &Config{
		ProjectColumn: "Engagement Score",
		Workers:       1,
		Weights:       DefaultWeights(),
	}
}

// Load loads the configuration from disk. With an explicit path, only that
// file is read. Otherwise the global config is loaded first and any local
// .engage.yaml is unmarshalled on top, so local values take precedence while
// absent keys keep their global (or default) values.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		if err := loadInto(path, cfg); err != nil {
			return nil, err
		}
		return cfg, cfg.Validate()
	}

	for _, p := range []string{ConfigPath(), LocalConfigPath()} {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := loadInto(p, cfg); err != nil {
			return nil, err
		}
	}

	return cfg, cfg.Validate()
}

func loadInto(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

// Validate checks weight shapes and numeric ranges. Mode selection (project
// vs issue) is validated by the engine so flag overrides applied after Load
// are taken into account.
func (c *Config) Validate() error {
	if c.ProjectNumber < 0 {
		return fmt.Errorf("project_number must not be negative")
	}
	if c.IssueNumber < 0 {
		return fmt.Errorf("issue_number must not be negative")
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must not be negative")
	}
	return c.Weights.Validate()
}

// Save writes the config to the global config path.
func (c *Config) Save() error {
	configDir := DefaultConfigDir()
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(ConfigPath(), data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// ToYAML renders the config as yaml.
func (c *Config) ToYAML() (string, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("failed to marshal config: %w", err)
	}
	return string(data), nil
}

// GetGitHubToken returns the GitHub token from the GITHUB_TOKEN environment
// variable. Tokens are only ever read from the environment, never from disk.
func (c *Config) GetGitHubToken() string {
	return os.Getenv("GITHUB_TOKEN")
}

// MinimalConfig returns a starter config file body for `engage config init`.
func MinimalConfig() string {
	return `# engage configuration
# See 'engage config defaults' for all available settings.

owner: my-org
repo: my-repo
project_number: 1
project_column: Engagement Score

weights:
  comments: 3
  reactions: 1
  contributors: 2
  last_activity: 1
  issue_age: 1
  linked_pull_requests: 2

# Role-based weights are also supported per factor:
# weights:
#   comments:
#     base: 3
#     maintainer: 1
#     partner: 4
#     firstTime: 5

# groups:
#   partner:
#     - some-partner-login
#   internal:
#     - some-team-login
`
}

// SaveTo writes content to the given path, creating parent directories.
func SaveTo(path string, content string) error {
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
