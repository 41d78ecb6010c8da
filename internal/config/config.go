package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the vfsearch service configuration.
type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Database DatabaseConfig `yaml:"database"`
	Index    IndexConfig    `yaml:"index"`
	Locales  LocalesConfig  `yaml:"locales"`
	Fields   []FieldConfig  `yaml:"fields"`
	Auth     AuthConfig     `yaml:"auth"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// IndexConfig holds FT index, storage and pagination settings.
type IndexConfig struct {
	Name           string `yaml:"name"`
	KeyPrefix      string `yaml:"key_prefix"`
	BackupPrefix   string `yaml:"backup_prefix"`
	Backup         bool   `yaml:"backup"`
	ResourcePrefix string `yaml:"resource_prefix"`
	MaxRows        int    `yaml:"max_rows"`
}

// LocalesConfig holds the locales the index serves. Entries use
// underscore form, e.g. "en", "de_DE".
type LocalesConfig struct {
	Available []string `yaml:"available"`
	Default   string   `yaml:"default"`
}

// FieldConfig declares one configured index field and its mappings.
type FieldConfig struct {
	Name     string          `yaml:"name"`
	Locale   string          `yaml:"locale"`
	Default  string          `yaml:"default"`
	Weight   float64         `yaml:"weight"`
	Mappings []MappingConfig `yaml:"mappings"`
}

// MappingConfig declares one field mapping source.
type MappingConfig struct {
	Type    string `yaml:"type"` // content, property, item, attribute
	Param   string `yaml:"param"`
	Default string `yaml:"default"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 10
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Index.Name == "" {
		c.Index.Name = "vfsearch"
	}
	if c.Index.KeyPrefix == "" {
		c.Index.KeyPrefix = "vfsearch:doc:"
	}
	if c.Index.BackupPrefix == "" {
		c.Index.BackupPrefix = "vfsearch:backup:"
	}
	if c.Index.ResourcePrefix == "" {
		c.Index.ResourcePrefix = "vfsearch:res:"
	}
	if c.Index.MaxRows <= 0 {
		c.Index.MaxRows = 50
	}
	if len(c.Locales.Available) == 0 {
		c.Locales.Available = []string{"en"}
	}
	if c.Locales.Default == "" {
		c.Locales.Default = c.Locales.Available[0]
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if len(c.Database.Addrs) == 0 {
		return fmt.Errorf("database.addrs is required")
	}
	if c.Index.KeyPrefix == c.Index.BackupPrefix {
		return fmt.Errorf("index.key_prefix and index.backup_prefix must differ")
	}
	if !contains(c.Locales.Available, c.Locales.Default) {
		return fmt.Errorf("locales.default %q is not in locales.available", c.Locales.Default)
	}
	for i, f := range c.Fields {
		if f.Name == "" {
			return fmt.Errorf("fields[%d].name is required", i)
		}
		for j, m := range f.Mappings {
			switch m.Type {
			case "content", "property", "item", "attribute":
				// ok
			default:
				return fmt.Errorf(
					"fields[%d].mappings[%d].type must be content, property, item or attribute, got %q",
					i, j, m.Type,
				)
			}
		}
	}
	return nil
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
