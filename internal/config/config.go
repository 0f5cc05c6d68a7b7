// Package config handles TOML configuration loading with environment variable substitution.
package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Config is the root configuration structure.
type Config struct {
	Database DatabaseConfig `toml:"database"`
	Assets   AssetsConfig   `toml:"assets"`
	TMDB     TMDBConfig     `toml:"tmdb"`
	Log      LogConfig      `toml:"log"`
	User     UserConfig     `toml:"user"`
}

// DatabaseConfig locates the catalog. ":memory:" keeps it in memory for one run.
type DatabaseConfig struct {
	Path string `toml:"path"`
}

// AssetsConfig controls where provider images are stored and fetched from.
type AssetsConfig struct {
	Root         string `toml:"root"`
	Concurrency  int    `toml:"concurrency"`
	ImageBaseURL string `toml:"image_base_url"`
}

// TMDBConfig configures the metadata provider. An empty APIKey disables scraping.
type TMDBConfig struct {
	APIKey   string   `toml:"api_key"`
	Language string   `toml:"language"`
	CacheTTL Duration `toml:"cache_ttl"`
}

// LogConfig sets the log level and an optional rotated log file.
type LogConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"` // empty logs to stderr
}

// UserConfig names the user whose watch state commands read and write.
type UserConfig struct {
	Default string `toml:"default"`
}

// Duration is a time.Duration written as a string like "24h" in TOML.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Load reads, parses and validates the configuration file.
// Every unset variable and invalid setting is reported in one *ConfigError.
func Load(path string) (*Config, error) {
	cfg, unset, err := load(path)
	if err != nil {
		return nil, err
	}

	cfgErr := &ConfigError{Path: path, Unset: unset, Issues: cfg.Validate()}
	if cfgErr.HasErrors() {
		return nil, cfgErr
	}
	return cfg, nil
}

// LoadWithoutValidation reads and parses the configuration file, ignoring
// unset variables and validation errors.
func LoadWithoutValidation(path string) (*Config, error) {
	cfg, _, err := load(path)
	return cfg, err
}

func load(path string) (*Config, []UnsetVar, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("reading config: %w", err)
	}

	content, unset := substituteEnvVars(string(data))

	var cfg Config
	if _, err := toml.Decode(content, &cfg); err != nil {
		return nil, nil, fmt.Errorf("parsing config: %w", err)
	}
	unset = cfg.clearOptionalAPIKey(unset)
	cfg.applyDefaults()
	return &cfg, unset, nil
}

// clearOptionalAPIKey empties tmdb.api_key when it names an unset ${VAR}.
// Only scraping needs the key; a ${VAR:?hint} reference still fails the load.
func (c *Config) clearOptionalAPIKey(unset []UnsetVar) []UnsetVar {
	var kept []UnsetVar
	for _, v := range unset {
		if v.Key == "tmdb.api_key" && !v.Required {
			c.TMDB.APIKey = ""
			continue
		}
		kept = append(kept, v)
	}
	return kept
}

// Default returns a configuration with every default applied.
func Default() *Config {
	var cfg Config
	cfg.applyDefaults()
	return &cfg
}

func (c *Config) applyDefaults() {
	if c.Database.Path == "" {
		c.Database.Path = "./data/mediacat.db"
	}
	if c.Assets.Root == "" {
		c.Assets.Root = "./data/rsc"
	}
	if c.Assets.Concurrency == 0 {
		c.Assets.Concurrency = 4
	}
	if c.Assets.ImageBaseURL == "" {
		c.Assets.ImageBaseURL = "https://image.tmdb.org/t/p/original"
	}
	if c.TMDB.Language == "" {
		c.TMDB.Language = "en-US"
	}
	if c.TMDB.CacheTTL.Duration == 0 {
		c.TMDB.CacheTTL.Duration = 24 * time.Hour
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.User.Default == "" {
		c.User.Default = "default"
	}
}

// envVarPattern matches ${VAR}, ${VAR:-default} and ${VAR:?message}.
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(?:(:-|:\?)([^}]*))?\}`)

// substituteEnvVars replaces variable references with environment values.
// Unresolved references are left in place and reported with the key of the
// line they appear on. Comment lines are not substituted.
func substituteEnvVars(content string) (string, []UnsetVar) {
	var unset []UnsetVar
	var section string
	lines := strings.Split(content, "\n")
	for n, line := range lines {
		trimmed := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(trimmed, "#"):
			continue
		case strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]"):
			section = strings.TrimSpace(strings.Trim(trimmed, "[]"))
			continue
		}

		var key string
		if k, _, ok := strings.Cut(trimmed, "="); ok {
			key = strings.TrimSpace(k)
			if section != "" {
				key = section + "." + key
			}
		}

		lines[n] = envVarPattern.ReplaceAllStringFunc(line, func(match string) string {
			m := envVarPattern.FindStringSubmatch(match)
			name, op, arg := m[1], m[2], m[3]
			value, ok := os.LookupEnv(name)
			switch op {
			case ":-":
				if value == "" {
					return arg
				}
				return value
			case ":?":
				if value == "" {
					unset = append(unset, UnsetVar{Name: name, Key: key, Hint: strings.TrimSpace(arg), Required: true})
					return match
				}
				return value
			}
			if !ok {
				unset = append(unset, UnsetVar{Name: name, Key: key})
				return match
			}
			return value
		})
	}
	return strings.Join(lines, "\n"), unset
}
