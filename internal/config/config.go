// Package config loads sclc settings from TOML or YAML files.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// EnvVar names the environment variable holding an explicit config path.
const EnvVar = "SCL_CONFIG"

// Config is the complete sclc configuration.
type Config struct {
	Log    LogConfig    `toml:"log" yaml:"log"`
	Parser ParserConfig `toml:"parser" yaml:"parser"`
	Exec   ExecConfig   `toml:"exec" yaml:"exec"`
	Store  StoreConfig  `toml:"store" yaml:"store"`
	Server ServerConfig `toml:"server" yaml:"server"`
	Output OutputConfig `toml:"output" yaml:"output"`
	Watch  WatchConfig  `toml:"watch" yaml:"watch"`
}

// LogConfig controls diagnostics logging of the tools themselves.
type LogConfig struct {
	Level  string `toml:"level" yaml:"level"`   // debug, info, warn, error
	Format string `toml:"format" yaml:"format"` // text or json
}

// ParserConfig holds front-end limits.
type ParserConfig struct {
	MaxDepth  int  `toml:"max_depth" yaml:"max_depth"`
	KeepGoing bool `toml:"keep_going" yaml:"keep_going"` // parse despite lexical errors
}

// ExecConfig bounds program execution.
type ExecConfig struct {
	MaxSteps int      `toml:"max_steps" yaml:"max_steps"`
	Timeout  Duration `toml:"timeout" yaml:"timeout"`
}

// StoreConfig locates the run history database.
type StoreConfig struct {
	Path      string   `toml:"path" yaml:"path"`
	Retention Duration `toml:"retention" yaml:"retention"` // 0 keeps everything
}

// ServerConfig configures the network front end.
type ServerConfig struct {
	Addr            string   `toml:"addr" yaml:"addr"`
	MaxRecvMsgSize  int      `toml:"max_recv_msg_size" yaml:"max_recv_msg_size"`
	ShutdownTimeout Duration `toml:"shutdown_timeout" yaml:"shutdown_timeout"`
}

// OutputConfig selects default output formats.
type OutputConfig struct {
	TreeFormat  string `toml:"tree_format" yaml:"tree_format"`   // text, json, yaml, list
	TokenFormat string `toml:"token_format" yaml:"token_format"` // table, json, yaml
	NoColor     bool   `toml:"no_color" yaml:"no_color"`
}

// WatchConfig tunes the file watcher.
type WatchConfig struct {
	Debounce Duration `toml:"debounce" yaml:"debounce"`
}

// Duration wraps time.Duration for text-based config files.
type Duration struct {
	time.Duration
}

// UnmarshalText parses a duration like "1m30s".
func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText formats the duration.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// UnmarshalYAML parses a duration scalar.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: duration must be a string", value.Line)
	}
	return d.UnmarshalText([]byte(value.Value))
}

// MarshalYAML formats the duration as a string scalar.
func (d Duration) MarshalYAML() (interface{}, error) {
	return d.Duration.String(), nil
}

// Default returns the built-in configuration.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads the config file at path. The format follows the extension:
// .toml, or .yaml/.yml. Environment variables in path are expanded.
func Load(path string) (*Config, error) {
	path = os.ExpandEnv(path)

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s", path)
	}

	var cfg Config
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		md, err := toml.DecodeFile(path, &cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, fmt.Errorf("unknown config key %q in %s", undecoded[0].String(), path)
		}
	case ".yaml", ".yml":
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		defer f.Close()
		dec := yaml.NewDecoder(f)
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config format %q (want .toml, .yaml or .yml)", ext)
	}

	cfg.applyDefaults()
	cfg.Store.Path = os.ExpandEnv(cfg.Store.Path)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &cfg, nil
}

// LoadFromEnv loads the file named by SCL_CONFIG, or the first of
// ./sclc.toml, ./sclc.yaml and ~/.config/scl/sclc.toml that exists.
// Without any file it returns the defaults.
func LoadFromEnv() (*Config, error) {
	if path := os.Getenv(EnvVar); path != "" {
		return Load(path)
	}
	for _, p := range searchPaths() {
		if _, err := os.Stat(p); err == nil {
			return Load(p)
		}
	}
	return Default(), nil
}

func searchPaths() []string {
	paths := []string{"./sclc.toml", "./sclc.yaml"}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "scl", "sclc.toml"))
	}
	return paths
}

func (c *Config) applyDefaults() {
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}

	if c.Parser.MaxDepth == 0 {
		c.Parser.MaxDepth = 200
	}

	if c.Exec.MaxSteps == 0 {
		c.Exec.MaxSteps = 1_000_000
	}
	if c.Exec.Timeout.Duration == 0 {
		c.Exec.Timeout.Duration = 10 * time.Second
	}

	if c.Store.Path == "" {
		c.Store.Path = defaultStorePath()
	}

	if c.Server.Addr == "" {
		c.Server.Addr = "127.0.0.1:9470"
	}
	if c.Server.MaxRecvMsgSize == 0 {
		c.Server.MaxRecvMsgSize = 4 << 20
	}
	if c.Server.ShutdownTimeout.Duration == 0 {
		c.Server.ShutdownTimeout.Duration = 5 * time.Second
	}

	if c.Output.TreeFormat == "" {
		c.Output.TreeFormat = "text"
	}
	if c.Output.TokenFormat == "" {
		c.Output.TokenFormat = "table"
	}

	if c.Watch.Debounce.Duration == 0 {
		c.Watch.Debounce.Duration = 200 * time.Millisecond
	}
}

func defaultStorePath() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, "scl", "runs.db")
	}
	return filepath.Join(".scl", "runs.db")
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level: unknown level %q", c.Log.Level)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("log.format: unknown format %q", c.Log.Format)
	}
	if c.Parser.MaxDepth < 1 {
		return fmt.Errorf("parser.max_depth must be positive, got %d", c.Parser.MaxDepth)
	}
	if c.Exec.MaxSteps < 1 {
		return fmt.Errorf("exec.max_steps must be positive, got %d", c.Exec.MaxSteps)
	}
	if c.Exec.Timeout.Duration < 0 {
		return fmt.Errorf("exec.timeout must not be negative")
	}
	if c.Store.Retention.Duration < 0 {
		return fmt.Errorf("store.retention must not be negative")
	}
	if c.Server.MaxRecvMsgSize < 1 {
		return fmt.Errorf("server.max_recv_msg_size must be positive")
	}
	switch c.Output.TreeFormat {
	case "text", "json", "yaml", "list":
	default:
		return fmt.Errorf("output.tree_format: unknown format %q", c.Output.TreeFormat)
	}
	switch c.Output.TokenFormat {
	case "table", "json", "yaml":
	default:
		return fmt.Errorf("output.token_format: unknown format %q", c.Output.TokenFormat)
	}
	if c.Watch.Debounce.Duration < 0 {
		return fmt.Errorf("watch.debounce must not be negative")
	}
	return nil
}
