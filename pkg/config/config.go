package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// Output formats for non-web runs.
const (
	FormatReport = "report"
	FormatJSON   = "json"
)

// FileName is the optional configuration file read from the working directory.
const FileName = "dgml-visualizer.toml"

// EnvPrefix prefixes environment overrides, e.g. DGML_VISUALIZER_PORT=9090.
const EnvPrefix = "DGML_VISUALIZER_"

// Config holds all configuration for the application
type Config struct {
	Document    string `koanf:"document"`
	WebMode     bool   `koanf:"web"`
	Port        int    `koanf:"port"`
	Watch       bool   `koanf:"watch"`
	OpenBrowser bool   `koanf:"open"`
	Format      string `koanf:"format"`
	Check       bool   `koanf:"check"`
	Strict      bool   `koanf:"strict"`
	Verbosity   string `koanf:"verbosity"`
	VerboseCnt  int    `koanf:"verbose"`
}

// Options tunes where Load looks. Zero values select the defaults above.
type Options struct {
	ConfigFile string
	EnvPrefix  string
}

// Load loads configuration from defaults, config file, environment variables, and flags.
// Priority: Flags > Env > Config File > Defaults
func Load(f *pflag.FlagSet) (*Config, error) {
	return LoadWith(f, Options{})
}

// LoadWith is Load with explicit file and environment settings.
func LoadWith(f *pflag.FlagSet, opts Options) (*Config, error) {
	if opts.ConfigFile == "" {
		opts.ConfigFile = FileName
	}
	if opts.EnvPrefix == "" {
		opts.EnvPrefix = EnvPrefix
	}

	k := koanf.New(".")

	// 1. Defaults
	defaults := map[string]any{
		"document":  "",
		"web":       false,
		"port":      8080,
		"watch":     false,
		"open":      true,
		"format":    FormatReport,
		"check":     false,
		"strict":    false,
		"verbosity": "",
		"verbose":   0,
	}
	if err := k.Load(makeMapProvider(defaults), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Config File (optional); a missing file is not an error, a broken one is
	if _, err := os.Stat(opts.ConfigFile); err == nil {
		if err := k.Load(file.Provider(opts.ConfigFile), toml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", opts.ConfigFile, err)
		}
	}

	// 3. Environment Variables
	prefix := opts.EnvPrefix
	if err := k.Load(env.Provider(prefix, ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(
			strings.TrimPrefix(s, prefix)), "_", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Flags
	if f != nil {
		if err := k.Load(posflag.Provider(f, ".", k), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks option combinations that cannot work together.
func (c *Config) Validate() error {
	switch c.Format {
	case FormatReport, FormatJSON:
	default:
		return fmt.Errorf("unknown format %q (want %s or %s)", c.Format, FormatReport, FormatJSON)
	}
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Port)
	}
	if c.Watch && !c.WebMode {
		return fmt.Errorf("--watch requires --web")
	}
	return nil
}

// Helper to use map as a provider
type mapProvider struct {
	m map[string]any
}

func makeMapProvider(m map[string]any) *mapProvider {
	return &mapProvider{m: m}
}

func (p *mapProvider) Read() (map[string]any, error) {
	return p.m, nil
}

func (p *mapProvider) ReadBytes() ([]byte, error) {
	return nil, fmt.Errorf("not implemented")
}
