package config

import (
	"fmt"
	"os"
	"time"

	"github.com/cuemby/rolecfg/pkg/configure"
	"github.com/cuemby/rolecfg/pkg/kerberos"
	"github.com/cuemby/rolecfg/pkg/log"
	"github.com/cuemby/rolecfg/pkg/types"
	"gopkg.in/yaml.v3"
)

// Config is the agent configuration file
type Config struct {
	InstallRoot   string        `yaml:"installRoot"`
	TemplateDir   string        `yaml:"templateDir"`
	KeytabDir     string        `yaml:"keytabDir"`
	MasterURL     string        `yaml:"masterURL"`
	ScriptTimeout time.Duration `yaml:"scriptTimeout"`
	StateDB       string        `yaml:"stateDB,omitempty"` // bbolt node cache; empty keeps it in memory
	Log           LogConfig     `yaml:"log"`
	Start         StartConfig   `yaml:"start"`
}

// LogConfig selects the log level and output format
type LogConfig struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

// StartConfig controls status polling after a role is started. Zero
// attempts skips polling.
type StartConfig struct {
	StatusAttempts int           `yaml:"statusAttempts"`
	StatusInterval time.Duration `yaml:"statusInterval"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		InstallRoot:   configure.DefaultInstallRoot,
		TemplateDir:   "/opt/datasophon/templates",
		KeytabDir:     kerberos.DefaultKeytabDir,
		MasterURL:     "http://localhost:8081/ddh",
		ScriptTimeout: configure.DefaultScriptTimeout,
		Log: LogConfig{
			Level: string(log.InfoLevel),
		},
		Start: StartConfig{
			StatusAttempts: 10,
			StatusInterval: 3 * time.Second,
		},
	}
}

// Load reads path over the defaults. An empty path returns the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for values the agent cannot run with
func (c *Config) Validate() error {
	if c.InstallRoot == "" {
		return fmt.Errorf("installRoot is required")
	}
	if c.KeytabDir == "" {
		return fmt.Errorf("keytabDir is required")
	}
	if c.ScriptTimeout < 0 {
		return fmt.Errorf("scriptTimeout must not be negative")
	}
	if c.Start.StatusAttempts < 0 {
		return fmt.Errorf("start.statusAttempts must not be negative")
	}
	switch log.Level(c.Log.Level) {
	case log.DebugLevel, log.InfoLevel, log.WarnLevel, log.ErrorLevel:
	default:
		return fmt.Errorf("unknown log level %q", c.Log.Level)
	}
	return nil
}

// LoadPipelineRequest reads a configuration request file
func LoadPipelineRequest(path string) (*types.PipelineRequest, error) {
	var req types.PipelineRequest
	if err := decodeFile(path, &req); err != nil {
		return nil, err
	}
	if req.ServiceRoleName == "" {
		return nil, fmt.Errorf("%s: serviceRoleName is required", path)
	}
	if req.DecompressPackageName == "" {
		return nil, fmt.Errorf("%s: decompressPackageName is required", path)
	}
	return &req, nil
}

// LoadCommand reads a service role command file
func LoadCommand(path string) (*types.ServiceRoleCommand, error) {
	var cmd types.ServiceRoleCommand
	if err := decodeFile(path, &cmd); err != nil {
		return nil, err
	}
	if cmd.ServiceRoleName == "" {
		return nil, fmt.Errorf("%s: serviceRoleName is required", path)
	}
	return &cmd, nil
}

func decodeFile(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to parse YAML %s: %w", path, err)
	}
	return nil
}
