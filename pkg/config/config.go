// Package config loads cratebump configuration from .cratebump.yaml,
// environment variables, and built-in defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fulmenhq/cratebump/pkg/schema"
	"github.com/spf13/viper"
)

// Config holds all configuration for cratebump.
type Config struct {
	Editor   string       `mapstructure:"editor"`
	Excludes []string     `mapstructure:"excludes"`
	Checks   []CheckSpec  `mapstructure:"checks"`
	Commit   CommitConfig `mapstructure:"commit"`
	Guards   GuardsConfig `mapstructure:"guards"`
}

// CheckSpec describes one validation command.
type CheckSpec struct {
	Name    string   `mapstructure:"name"`
	Command string   `mapstructure:"command"`
	Args    []string `mapstructure:"args"`
}

// CommitConfig holds release commit and tag settings.
type CommitConfig struct {
	Template  string `mapstructure:"template"`
	TagPrefix string `mapstructure:"tag_prefix"`
}

// GuardsConfig holds preconditions checked before git mutations.
type GuardsConfig struct {
	RequiredBranches []string `mapstructure:"required_branches"`
	DisallowDirty    bool     `mapstructure:"disallow_dirty"`
}

var defaultConfig = Config{
	Editor: "structured",
	Commit: CommitConfig{
		Template:  "chore(release): v{{version}}",
		TagPrefix: "v",
	},
	Guards: GuardsConfig{
		DisallowDirty: true,
	},
}

// DefaultChecks returns the built-in validation pipeline, in run order.
func DefaultChecks() []CheckSpec {
	return []CheckSpec{
		{Name: "fmt", Command: "cargo", Args: []string{"fmt", "--all", "--", "--check"}},
		{Name: "clippy", Command: "cargo", Args: []string{"clippy", "--all", "--", "-D", "warnings"}},
		{Name: "test", Command: "cargo", Args: []string{"test", "--all", "--workspace"}},
		{Name: "audit", Command: "cargo", Args: []string{"audit"}},
	}
}

// Load reads configuration for the workspace rooted at dir. A missing
// config file is fine; a present but invalid one is an error.
func Load(dir string) (*Config, error) {
	v := viper.New()

	v.SetDefault("editor", defaultConfig.Editor)
	v.SetDefault("commit.template", defaultConfig.Commit.Template)
	v.SetDefault("commit.tag_prefix", defaultConfig.Commit.TagPrefix)
	v.SetDefault("guards.disallow_dirty", defaultConfig.Guards.DisallowDirty)

	v.SetConfigName(".cratebump")
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)
	if home, err := GetCratebumpHome(); err == nil {
		v.AddConfigPath(home)
	}

	v.SetEnvPrefix("CRATEBUMP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	if used := v.ConfigFileUsed(); used != "" {
		if err := validateConfigFile(used); err != nil {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if cfg.Checks == nil {
		cfg.Checks = DefaultChecks()
	}
	return &cfg, nil
}

// validateConfigFile checks a discovered config file against the embedded
// cratebump-config schema so typos fail loudly instead of being ignored.
func validateConfigFile(path string) error {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	validator, err := schema.GetEmbeddedValidator("cratebump-config-v1.0.0")
	if err != nil {
		return fmt.Errorf("load config schema: %w", err)
	}
	res, err := validator.ValidateBytes(data)
	if err != nil {
		return fmt.Errorf("validate config %s: %w", path, err)
	}
	if !res.Valid {
		var issues []string
		for _, verr := range res.Errors {
			issues = append(issues, fmt.Sprintf("%s: %s", verr.Path, verr.Message))
		}
		return fmt.Errorf("config %s failed validation:\n%s", path, strings.Join(issues, "\n"))
	}
	return nil
}

// GetCratebumpHome returns the cratebump home directory.
func GetCratebumpHome() (string, error) {
	if home := os.Getenv("CRATEBUMP_HOME"); home != "" {
		return home, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %v", err)
	}

	return filepath.Join(homeDir, ".cratebump"), nil
}
