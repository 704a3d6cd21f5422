package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"
	"strings"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/dshills/revio/internal/providers"
	"github.com/dshills/revio/internal/scan"
)

// EnvPrefix prefixes every environment override, e.g. REVIO_PROVIDER or
// REVIO_LOG_LEVEL.
const EnvPrefix = "REVIO"

// Config represents the revio configuration. MaxFileBytes of zero uses the
// review default; a negative value disables the size limit.
type Config struct {
	Provider     string      `mapstructure:"provider" yaml:"provider"`
	Model        string      `mapstructure:"model" yaml:"model,omitempty"`
	Format       string      `mapstructure:"format" yaml:"format"`
	Extensions   []string    `mapstructure:"extensions" yaml:"extensions"`
	ExcludeDirs  []string    `mapstructure:"excludeDirs" yaml:"excludeDirs"`
	Exclude      []string    `mapstructure:"exclude" yaml:"exclude,omitempty"`
	MaxFileBytes int64       `mapstructure:"maxFileBytes" yaml:"maxFileBytes"`
	RequireClean bool        `mapstructure:"requireClean" yaml:"requireClean"`
	RateLimit    int         `mapstructure:"rateLimit" yaml:"rateLimit"`
	OllamaHost   string      `mapstructure:"ollamaHost" yaml:"ollamaHost,omitempty"`
	Cache        CacheConfig `mapstructure:"cache" yaml:"cache"`
	Log          LogConfig   `mapstructure:"log" yaml:"log"`
}

// CacheConfig controls caching of backend answers.
type CacheConfig struct {
	Enabled    bool   `mapstructure:"enabled" yaml:"enabled"`
	Dir        string `mapstructure:"dir" yaml:"dir,omitempty"`
	TTLSeconds int    `mapstructure:"ttlSeconds" yaml:"ttlSeconds"`
}

// LogConfig controls the structured logger. File output is rotated.
type LogConfig struct {
	Level      string `mapstructure:"level" yaml:"level"`
	Format     string `mapstructure:"format" yaml:"format"`
	File       string `mapstructure:"file" yaml:"file,omitempty"`
	MaxSize    int    `mapstructure:"maxSize" yaml:"maxSize"`
	MaxBackups int    `mapstructure:"maxBackups" yaml:"maxBackups"`
	MaxAge     int    `mapstructure:"maxAge" yaml:"maxAge"`
	Compress   bool   `mapstructure:"compress" yaml:"compress"`
}

// Default returns a Config with all defaults applied.
func Default() Config {
	return Config{
		Provider:     "ollama",
		Format:       "text",
		Extensions:   append([]string(nil), scan.DefaultExtensions...),
		ExcludeDirs:  append([]string(nil), scan.DefaultExcludeDirs...),
		MaxFileBytes: 1 << 20,
		Cache: CacheConfig{
			Enabled:    false,
			TTLSeconds: 86400,
		},
		Log: LogConfig{
			Level:      "warn",
			Format:     "console",
			MaxSize:    10,
			MaxBackups: 3,
			MaxAge:     28,
		},
	}
}

// ConfigDir returns the platform-appropriate config directory for revio.
func ConfigDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "revio"), nil
	}
	home, err := homedir.Dir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "revio"), nil
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "revio"), nil
		}
		return filepath.Join(home, "AppData", "Roaming", "revio"), nil
	default:
		return filepath.Join(home, ".config", "revio"), nil
	}
}

// ConfigPath returns the full path to the default config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

func resolvePath(path string) (string, error) {
	if path == "" {
		return ConfigPath()
	}
	return homedir.Expand(path)
}

// newViper returns a viper instance with every key registered, so that
// environment variables apply to keys absent from the file.
func newViper() *viper.Viper {
	v := viper.New()
	d := Default()
	v.SetDefault("provider", d.Provider)
	v.SetDefault("model", d.Model)
	v.SetDefault("format", d.Format)
	v.SetDefault("extensions", d.Extensions)
	v.SetDefault("excludeDirs", d.ExcludeDirs)
	v.SetDefault("exclude", []string{})
	v.SetDefault("maxFileBytes", d.MaxFileBytes)
	v.SetDefault("requireClean", d.RequireClean)
	v.SetDefault("rateLimit", d.RateLimit)
	v.SetDefault("ollamaHost", d.OllamaHost)
	v.SetDefault("cache.enabled", d.Cache.Enabled)
	v.SetDefault("cache.dir", d.Cache.Dir)
	v.SetDefault("cache.ttlSeconds", d.Cache.TTLSeconds)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("log.file", d.Log.File)
	v.SetDefault("log.maxSize", d.Log.MaxSize)
	v.SetDefault("log.maxBackups", d.Log.MaxBackups)
	v.SetDefault("log.maxAge", d.Log.MaxAge)
	v.SetDefault("log.compress", d.Log.Compress)

	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load builds the effective config by merging: defaults <- file <- env <- overrides.
// An empty path means ConfigPath(); a missing file is not an error. The
// overrides map comes from CLI flags and uses SetField keys.
func Load(path string, overrides map[string]string) (Config, error) {
	path, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	v := newViper()
	if _, statErr := os.Stat(path); statErr == nil {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("reading config file: %w", err)
		}
	} else if !errors.Is(statErr, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("reading config file: %w", statErr)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config: %w", err)
	}
	if err := mergeOverrides(&cfg, overrides); err != nil {
		return Config{}, err
	}
	if err := expandPaths(&cfg); err != nil {
		return Config{}, err
	}
	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadFile reads only the config file at path, on top of the defaults.
// Environment variables are ignored. A missing file yields Default().
func LoadFile(path string) (Config, error) {
	path, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config file: %w", err)
	}
	return cfg, nil
}

// Save writes cfg as YAML to path, or to ConfigPath() when path is empty.
func Save(path string, cfg Config) error {
	path, err := resolvePath(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Marshal renders cfg as YAML.
func Marshal(cfg Config) ([]byte, error) {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("marshaling config: %w", err)
	}
	return data, nil
}

func mergeOverrides(cfg *Config, overrides map[string]string) error {
	keys := make([]string, 0, len(overrides))
	for k, v := range overrides {
		if v != "" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := SetField(cfg, k, overrides[k]); err != nil {
			return err
		}
	}
	return nil
}

func expandPaths(cfg *Config) error {
	var err error
	if cfg.Cache.Dir, err = homedir.Expand(cfg.Cache.Dir); err != nil {
		return fmt.Errorf("expanding cache.dir: %w", err)
	}
	if cfg.Log.File, err = homedir.Expand(cfg.Log.File); err != nil {
		return fmt.Errorf("expanding log.file: %w", err)
	}
	return nil
}

// Keys lists the keys accepted by SetField.
func Keys() []string {
	return []string{
		"provider", "model", "format", "extensions", "excludeDirs", "exclude",
		"maxFileBytes", "requireClean", "rateLimit", "ollamaHost",
		"cache.enabled", "cache.dir", "cache.ttlSeconds",
		"log.level", "log.format", "log.file", "log.maxSize", "log.maxBackups", "log.maxAge", "log.compress",
	}
}

// SetField sets a single config field by key name. Returns error if key is unknown.
// List values are comma-separated.
func SetField(cfg *Config, key, value string) error {
	switch key {
	case "provider":
		cfg.Provider = value
	case "model":
		cfg.Model = value
	case "format":
		cfg.Format = value
	case "extensions":
		cfg.Extensions = splitList(value)
	case "excludeDirs":
		cfg.ExcludeDirs = splitList(value)
	case "exclude":
		cfg.Exclude = splitList(value)
	case "maxFileBytes":
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return fmt.Errorf("maxFileBytes must be an integer: %w", err)
		}
		cfg.MaxFileBytes = n
	case "requireClean":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("requireClean must be true or false: %w", err)
		}
		cfg.RequireClean = b
	case "rateLimit":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("rateLimit must be an integer: %w", err)
		}
		cfg.RateLimit = n
	case "ollamaHost":
		cfg.OllamaHost = value
	case "cache.enabled":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("cache.enabled must be true or false: %w", err)
		}
		cfg.Cache.Enabled = b
	case "cache.dir":
		cfg.Cache.Dir = value
	case "cache.ttlSeconds":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("cache.ttlSeconds must be an integer: %w", err)
		}
		cfg.Cache.TTLSeconds = n
	case "log.level":
		cfg.Log.Level = value
	case "log.format":
		cfg.Log.Format = value
	case "log.file":
		cfg.Log.File = value
	case "log.maxSize", "log.maxBackups", "log.maxAge":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%s must be an integer: %w", key, err)
		}
		switch key {
		case "log.maxSize":
			cfg.Log.MaxSize = n
		case "log.maxBackups":
			cfg.Log.MaxBackups = n
		default:
			cfg.Log.MaxAge = n
		}
	case "log.compress":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("log.compress must be true or false: %w", err)
		}
		cfg.Log.Compress = b
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}
	return nil
}

func splitList(value string) []string {
	var out []string
	for _, p := range strings.Split(value, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Validate checks enumerated values and ranges.
func Validate(cfg Config) error {
	if _, err := providers.ParseKind(cfg.Provider); err != nil {
		return err
	}
	switch cfg.Format {
	case "text", "json", "markdown":
	default:
		return fmt.Errorf("invalid format %q: must be text, json or markdown", cfg.Format)
	}
	switch cfg.Log.Format {
	case "console", "json":
	default:
		return fmt.Errorf("invalid log.format %q: must be console or json", cfg.Log.Format)
	}
	if cfg.RateLimit < 0 {
		return fmt.Errorf("rateLimit must not be negative")
	}
	return nil
}
