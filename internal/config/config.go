// Package config provides layered configuration for stackwrap.
// Configuration is loaded from multiple sources with the following precedence:
// embedded defaults → global file → env vars → local file.
// Command line flags are applied later by the flag parser.
package config

import (
	"embed"
	"fmt"
	"maps"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"gopkg.in/yaml.v3"

	"github.com/alexander-akhmetov/stackwrap/internal/dirs"
	"github.com/alexander-akhmetov/stackwrap/internal/git"
)

//go:embed defaults/config.yaml
var defaultsFS embed.FS

// LogsConfig holds logging defaults.
type LogsConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// TerraformConfig tells the terraform commands what to run and where.
type TerraformConfig struct {
	Command  string `yaml:"command"`   // executable, e.g. terraform or tofu
	BasePath string `yaml:"base_path"` // components directory, relative to the project root
}

// ComponentsConfig groups settings per wrapped tool.
type ComponentsConfig struct {
	Terraform TerraformConfig `yaml:"terraform"`
}

// Config holds all configuration settings for stackwrap.
type Config struct {
	Logs LogsConfig `yaml:"logs"`
	// Flags holds defaults keyed by flag name.
	Flags map[string]any `yaml:"flags"`
	// Commands holds defaults keyed by command path ("terraform plan"), then
	// by flag name.
	Commands   map[string]map[string]any `yaml:"commands"`
	Components ComponentsConfig          `yaml:"components"`

	configDir string
	localDir  string
	rootDir   string
	sources   []string // ordered list of sources that contributed to this config
}

// Sources returns where the config was loaded from, in load order.
func (c *Config) Sources() []string {
	return c.sources
}

// LocalDir returns the project config directory if one was detected.
func (c *Config) LocalDir() string {
	return c.localDir
}

// ConfigDir returns the global config directory.
func (c *Config) ConfigDir() string {
	return c.configDir
}

// RootDir returns the project root: the git worktree root around the working
// directory, or the working directory itself.
func (c *Config) RootDir() string {
	return c.rootDir
}

// FlagDefaults returns persisted flag values for a command path. Per-command
// values win over shared ones; logs settings feed the global logs flags.
func (c *Config) FlagDefaults(path string) map[string]any {
	out := make(map[string]any)
	if c.Logs.Level != "" {
		out["logs-level"] = c.Logs.Level
	}
	if c.Logs.File != "" {
		out["logs-file"] = c.Logs.File
	}
	maps.Copy(out, c.Flags)
	maps.Copy(out, c.Commands[path])
	return out
}

// Load loads configuration for workDir from the default locations. The
// local layer is .stackwrap/ at the project root.
func Load(workDir string) (*Config, error) {
	root := git.RootOr(workDir)
	cfg, err := LoadWithDirs(dirs.ConfigDir(), dirs.LocalDir(root))
	if err != nil {
		return nil, err
	}
	cfg.rootDir = root
	return cfg, nil
}

// LoadWithDirs loads configuration with explicit global and local
// directories. If localDir is empty, only the global config is used.
func LoadWithDirs(globalDir, localDir string) (*Config, error) {
	if err := InstallDefaults(globalDir); err != nil {
		return nil, fmt.Errorf("install defaults: %w", err)
	}

	cfg, err := loadEmbedded()
	if err != nil {
		return nil, fmt.Errorf("load embedded defaults: %w", err)
	}
	cfg.sources = append(cfg.sources, "embedded")

	if globalCfg, path, err := loadDir(globalDir); err != nil {
		return nil, fmt.Errorf("load global config: %w", err)
	} else if globalCfg != nil {
		cfg.mergeFrom(globalCfg)
		cfg.sources = append(cfg.sources, path)
	}

	cfg.applyEnv()

	if localDir != "" {
		if localCfg, path, err := loadDir(localDir); err != nil {
			return nil, fmt.Errorf("load local config: %w", err)
		} else if localCfg != nil {
			cfg.mergeFrom(localCfg)
			cfg.sources = append(cfg.sources, path)
		}
	}

	cfg.configDir = globalDir
	cfg.localDir = localDir
	cfg.rootDir = "."
	return cfg, nil
}

// InstallDefaults creates the config directory and writes the default
// config file if no config file exists. Concurrent first runs are
// serialized with a file lock.
func InstallDefaults(configDir string) error {
	if err := os.MkdirAll(configDir, 0o700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	lock := flock.New(filepath.Join(configDir, ".install.lock"))
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("lock config dir: %w", err)
	}
	defer func() { _ = lock.Unlock() }()

	if path, _ := findConfigFile(configDir); path != "" {
		return nil
	}

	data, err := defaultsFS.ReadFile("defaults/config.yaml")
	if err != nil {
		return fmt.Errorf("read embedded config: %w", err)
	}
	if err := os.WriteFile(filepath.Join(configDir, "config.yaml"), data, 0o600); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

func loadEmbedded() (*Config, error) {
	data, err := defaultsFS.ReadFile("defaults/config.yaml")
	if err != nil {
		return nil, fmt.Errorf("read embedded defaults: %w", err)
	}
	return parseConfig(data)
}

// loadDir loads the config file in dir. It returns a nil config when the
// directory holds none.
func loadDir(dir string) (*Config, string, error) {
	path, format := findConfigFile(dir)
	if path == "" {
		return nil, "", nil
	}
	cfg, err := loadFile(path, format)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func loadFile(path string, format Format) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // user's config file
	if err != nil {
		return nil, err
	}
	raw, err := decode(data, path, format)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	normalized, err := yaml.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("normalize %s: %w", path, err)
	}
	return parseConfig(normalized)
}

func parseConfig(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return &cfg, nil
}

// applyEnv applies environment variables to the config. Env vars sit
// between the global and local files in precedence.
func (c *Config) applyEnv() {
	if v := os.Getenv("STACKWRAP_TERRAFORM_COMMAND"); v != "" {
		c.Components.Terraform.Command = v
		c.sources = append(c.sources, "env:STACKWRAP_TERRAFORM_COMMAND")
	}
	if v := os.Getenv("STACKWRAP_TERRAFORM_BASE_PATH"); v != "" {
		c.Components.Terraform.BasePath = v
		c.sources = append(c.sources, "env:STACKWRAP_TERRAFORM_BASE_PATH")
	}
}

// mergeFrom merges non-empty values from src into c. Flag maps merge per
// key.
func (c *Config) mergeFrom(src *Config) {
	if src.Logs.Level != "" {
		c.Logs.Level = src.Logs.Level
	}
	if src.Logs.File != "" {
		c.Logs.File = src.Logs.File
	}
	if src.Components.Terraform.Command != "" {
		c.Components.Terraform.Command = src.Components.Terraform.Command
	}
	if src.Components.Terraform.BasePath != "" {
		c.Components.Terraform.BasePath = src.Components.Terraform.BasePath
	}

	if len(src.Flags) > 0 {
		if c.Flags == nil {
			c.Flags = make(map[string]any)
		}
		maps.Copy(c.Flags, src.Flags)
	}
	for path, values := range src.Commands {
		if c.Commands == nil {
			c.Commands = make(map[string]map[string]any)
		}
		if c.Commands[path] == nil {
			c.Commands[path] = make(map[string]any)
		}
		maps.Copy(c.Commands[path], values)
	}
}
