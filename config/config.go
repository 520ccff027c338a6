package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"

	ierrors "github.com/hannajonsd/ts-introspect/errors"
)

// FileName is the base name searched for in the project root; viper tries
// every supported extension (json, toml, yaml, yml).
const FileName = ".introspect"

// EnvPrefix prefixes every environment override, e.g. INTROSPECT_STRICT=true
const EnvPrefix = "INTROSPECT"

// Config is the project configuration shared by the analyzer, the rule engine and the CLI
type Config struct {
	Root           string            `json:"root" mapstructure:"root" toml:"-" yaml:"root"`
	Include        []string          `json:"include" mapstructure:"include" toml:"include" yaml:"include"`
	Exclude        []string          `json:"exclude" mapstructure:"exclude" toml:"exclude" yaml:"exclude"`
	EntryPoints    []string          `json:"entryPoints" mapstructure:"entryPoints" toml:"entryPoints" yaml:"entryPoints"`
	RequiredFields []string          `json:"requiredFields" mapstructure:"requiredFields" toml:"requiredFields" yaml:"requiredFields"`
	StaleDays      int               `json:"staleDays" mapstructure:"staleDays" toml:"staleDays" yaml:"staleDays"`
	Strict         bool              `json:"strict" mapstructure:"strict" toml:"strict" yaml:"strict"`
	Rules          map[string]string `json:"rules" mapstructure:"rules" toml:"rules" yaml:"rules"`
	Plugins        []string          `json:"plugins" mapstructure:"plugins" toml:"plugins" yaml:"plugins"`
	CacheSize      int               `json:"cacheSize" mapstructure:"cacheSize" toml:"cacheSize" yaml:"cacheSize"`
	Logging        LoggingConfig     `json:"logging" mapstructure:"logging" toml:"logging" yaml:"logging"`
}

// LoggingConfig contains logger settings
type LoggingConfig struct {
	Level  string `json:"level" mapstructure:"level" toml:"level" yaml:"level"`
	Format string `json:"format" mapstructure:"format" toml:"format" yaml:"format"`
}

// DefaultRequiredFields are the top-level metadata keys every module must carry
var DefaultRequiredFields = []string{
	"module",
	"filename",
	"description",
	"dependencies",
	"status",
	"updatedAt",
	"changelog",
}

// Default returns the configuration used when no file is present
func Default() *Config {
	return &Config{
		Root:           ".",
		Include:        []string{"**/*"},
		Exclude:        []string{},
		EntryPoints:    []string{},
		RequiredFields: append([]string(nil), DefaultRequiredFields...),
		StaleDays:      90,
		Rules:          map[string]string{},
		Plugins:        []string{},
		CacheSize:      512,
		Logging: LoggingConfig{
			Level:  "warn",
			Format: "human",
		},
	}
}

func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("include", d.Include)
	v.SetDefault("exclude", d.Exclude)
	v.SetDefault("entryPoints", d.EntryPoints)
	v.SetDefault("requiredFields", d.RequiredFields)
	v.SetDefault("staleDays", d.StaleDays)
	v.SetDefault("strict", d.Strict)
	v.SetDefault("rules", d.Rules)
	v.SetDefault("plugins", d.Plugins)
	v.SetDefault("cacheSize", d.CacheSize)
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
}

// Load reads configuration for the project at root. file, when non-empty,
// names an explicit config file; otherwise .introspect.* in root is used if
// present. A .env file in root is loaded first without overriding the
// existing environment, then INTROSPECT_* variables override file values.
func Load(root, file string) (*Config, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, ierrors.Wrap(ierrors.InvalidPath, "cannot resolve project root", err).WithPath(root)
	}

	if err := godotenv.Load(filepath.Join(absRoot, ".env")); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName(FileName)
		v.AddConfigPath(absRoot)
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, ierrors.Wrap(ierrors.ConfigInvalid, "cannot read configuration", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, ierrors.Wrap(ierrors.ConfigInvalid, "cannot decode configuration", err)
	}

	switch {
	case cfg.Root == "":
		cfg.Root = absRoot
	case !filepath.IsAbs(cfg.Root):
		cfg.Root = filepath.Join(absRoot, cfg.Root)
	}
	if cfg.Rules == nil {
		cfg.Rules = map[string]string{}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save writes the configuration as TOML to path
func (c *Config) Save(path string) error {
	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to encode configuration: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

var validSeverities = map[string]bool{
	"error":   true,
	"warn":    true,
	"warning": true,
	"off":     true,
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.StaleDays < 0 {
		return ierrors.New(ierrors.ConfigInvalid, fmt.Sprintf("staleDays must not be negative, got %d", c.StaleDays))
	}
	if c.CacheSize < 0 {
		return ierrors.New(ierrors.ConfigInvalid, fmt.Sprintf("cacheSize must not be negative, got %d", c.CacheSize))
	}
	for name, sev := range c.Rules {
		if !validSeverities[strings.ToLower(sev)] {
			return ierrors.New(ierrors.ConfigInvalid, fmt.Sprintf("rule %q has unknown severity %q", name, sev))
		}
	}
	return nil
}

// RuleSeverity returns the configured severity override for a rule
func (c *Config) RuleSeverity(name string) (string, bool) {
	if c == nil || c.Rules == nil {
		return "", false
	}
	sev, ok := c.Rules[name]
	return strings.ToLower(sev), ok
}
