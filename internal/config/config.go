package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// LocalFile is the per-repository config file looked up in the scanned directory.
const LocalFile = ".akscan.yaml"

// Accepted values for the enumerated keys.
var (
	Backends  = []string{"auto", "git", "go-git"}
	Formats   = []string{"text", "json", "sarif"}
	LogLevels = []string{"debug", "info", "warn", "error"}
)

// Config represents the akscan configuration.
type Config struct {
	Backend        string   `mapstructure:"backend" yaml:"backend"`
	Allowlist      []string `mapstructure:"allowlist" yaml:"allowlist,omitempty"`
	Exclude        []string `mapstructure:"exclude" yaml:"exclude,omitempty"`
	SkipBinary     bool     `mapstructure:"skipBinary" yaml:"skipBinary"`
	SkipUnreadable bool     `mapstructure:"skipUnreadable" yaml:"skipUnreadable"`
	RestoreHead    bool     `mapstructure:"restoreHead" yaml:"restoreHead"`
	Redact         bool     `mapstructure:"redact" yaml:"redact"`
	Format         string   `mapstructure:"format" yaml:"format"`
	Out            string   `mapstructure:"out" yaml:"out,omitempty"`
	LogLevel       string   `mapstructure:"logLevel" yaml:"logLevel"`
}

// Default returns a Config with all defaults applied.
func Default() Config {
	return Config{
		Backend:  "auto",
		Format:   "text",
		LogLevel: "info",
	}
}

// binding ties a config key to its environment variable and command flag.
type binding struct {
	key  string
	env  string
	flag string
}

var bindings = []binding{
	{"backend", "AKSCAN_BACKEND", "backend"},
	{"allowlist", "AKSCAN_ALLOWLIST", "allow"},
	{"exclude", "AKSCAN_EXCLUDE", "exclude"},
	{"skipBinary", "AKSCAN_SKIP_BINARY", "skip-binary"},
	{"skipUnreadable", "AKSCAN_SKIP_UNREADABLE", "skip-unreadable"},
	{"restoreHead", "AKSCAN_RESTORE_HEAD", "restore-head"},
	{"redact", "AKSCAN_REDACT", "redact"},
	{"format", "AKSCAN_FORMAT", "format"},
	{"out", "AKSCAN_OUT", "out"},
	{"logLevel", "AKSCAN_LOG_LEVEL", "log-level"},
}

// Keys returns the config keys accepted by SetField, in file order.
func Keys() []string {
	keys := make([]string, len(bindings))
	for i, b := range bindings {
		keys[i] = b.key
	}
	return keys
}

// ConfigDir returns the platform-appropriate config directory for akscan.
func ConfigDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "akscan"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "akscan"), nil
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "akscan"), nil
		}
		return filepath.Join(home, "AppData", "Roaming", "akscan"), nil
	default:
		return filepath.Join(home, ".config", "akscan"), nil
	}
}

// ConfigPath returns the full path to the user config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Options selects the sources Load merges.
type Options struct {
	// File is an explicit config file. It must exist when set.
	File string
	// Dir is the scanned directory, searched for LocalFile.
	Dir string
	// Flags are the command flags; only flags the user changed override.
	Flags *pflag.FlagSet
}

// Load builds the effective config by merging: defaults <- file <- env <- flags.
// It returns the merged config and the config file used, if any.
func Load(opts Options) (Config, string, error) {
	v := viper.New()
	def := Default()
	v.SetDefault("backend", def.Backend)
	v.SetDefault("allowlist", []string{})
	v.SetDefault("exclude", []string{})
	v.SetDefault("skipBinary", def.SkipBinary)
	v.SetDefault("skipUnreadable", def.SkipUnreadable)
	v.SetDefault("restoreHead", def.RestoreHead)
	v.SetDefault("redact", def.Redact)
	v.SetDefault("format", def.Format)
	v.SetDefault("out", def.Out)
	v.SetDefault("logLevel", def.LogLevel)

	path, err := findFile(opts.File, opts.Dir)
	if err != nil {
		return Config{}, "", err
	}
	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return Config{}, "", fmt.Errorf("reading config file %s: %w", path, err)
		}
	}

	for _, b := range bindings {
		if err := v.BindEnv(b.key, b.env); err != nil {
			return Config{}, "", err
		}
		if opts.Flags == nil {
			continue
		}
		if f := opts.Flags.Lookup(b.flag); f != nil {
			if err := v.BindPFlag(b.key, f); err != nil {
				return Config{}, "", err
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, "", fmt.Errorf("decoding config: %w", err)
	}
	cfg.Allowlist = compact(cfg.Allowlist)
	cfg.Exclude = compact(cfg.Exclude)
	return cfg, path, nil
}

// findFile resolves the config file to read, or "" when there is none.
func findFile(explicit, dir string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file: %w", err)
		}
		return explicit, nil
	}
	if dir == "" {
		dir = "."
	}
	candidates := []string{filepath.Join(dir, LocalFile)}
	if user, err := ConfigPath(); err == nil {
		candidates = append(candidates, user)
	}
	for _, c := range candidates {
		if _, err := os.Stat(c); err == nil {
			return c, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("config file: %w", err)
		}
	}
	return "", nil
}

// LoadFile reads a single config file on top of the defaults. A missing
// file yields the defaults.
func LoadFile(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config file: %w", err)
	}
	return cfg, nil
}

// Save writes the config to path as YAML, creating parent directories.
func Save(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// Validate rejects unknown enumerated values.
func (c Config) Validate() error {
	if !slices.Contains(Backends, c.Backend) {
		return fmt.Errorf("invalid backend %q (want one of %s)", c.Backend, strings.Join(Backends, ", "))
	}
	if !slices.Contains(Formats, c.Format) {
		return fmt.Errorf("invalid format %q (want one of %s)", c.Format, strings.Join(Formats, ", "))
	}
	if !slices.Contains(LogLevels, c.LogLevel) {
		return fmt.Errorf("invalid log level %q (want one of %s)", c.LogLevel, strings.Join(LogLevels, ", "))
	}
	return nil
}

// SetField sets a single config field by key name. Returns error if key is unknown.
// List keys take a comma-separated value.
func SetField(cfg *Config, key, value string) error {
	switch key {
	case "backend":
		cfg.Backend = value
	case "allowlist":
		cfg.Allowlist = SplitList(value)
	case "exclude":
		cfg.Exclude = SplitList(value)
	case "skipBinary", "skipUnreadable", "restoreHead", "redact":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%s must be a boolean: %w", key, err)
		}
		switch key {
		case "skipBinary":
			cfg.SkipBinary = b
		case "skipUnreadable":
			cfg.SkipUnreadable = b
		case "restoreHead":
			cfg.RestoreHead = b
		default:
			cfg.Redact = b
		}
	case "format":
		cfg.Format = value
	case "out":
		cfg.Out = value
	case "logLevel":
		cfg.LogLevel = value
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}
	return nil
}

// SplitList splits a comma-separated value, dropping blank entries.
func SplitList(s string) []string {
	return compact(strings.Split(s, ","))
}

func compact(items []string) []string {
	var out []string
	for _, s := range items {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
