package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	env "github.com/netflix/go-env"
	"gopkg.in/yaml.v3"
)

// DefaultUsername is the account the launcher logs in as unless overridden.
const DefaultUsername = "ljos"

// Config is the in-memory representation of ~/.budzilla/budzilla.yaml,
// overlaid with BUDZILLA_* variables from the environment and ~/.budzilla/.env.
type Config struct {
	AuthURL     string `yaml:"auth_url" env:"BUDZILLA_AUTH_URL"`
	EntryURL    string `yaml:"entry_url" env:"BUDZILLA_ENTRY_URL"`
	Username    string `yaml:"username,omitempty" env:"BUDZILLA_USERNAME"`
	Password    string `yaml:"password,omitempty" env:"BUDZILLA_PASSWORD"`
	Threshold   int    `yaml:"threshold"`
	MaxResults  int    `yaml:"max_results,omitempty"`
	Timeout     string `yaml:"timeout,omitempty" env:"BUDZILLA_TIMEOUT"`
	SessionTTL  string `yaml:"session_ttl,omitempty"`
	ResponseTTL string `yaml:"response_ttl,omitempty"`
	LogLevel    string `yaml:"log_level,omitempty" env:"BUDZILLA_LOG_LEVEL"`
}

// HomeDir returns the directory holding config, caches and logs.
// BUDZILLA_HOME overrides the default ~/.budzilla.
func HomeDir() (string, error) {
	if dir := os.Getenv("BUDZILLA_HOME"); dir != "" {
		return ExpandPath(dir)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".budzilla"), nil
}

// ConfigPath returns the absolute path to budzilla.yaml.
func ConfigPath() (string, error) {
	return homeFile("budzilla.yaml")
}

// SessionPath returns the path of the cached login session.
func SessionPath() (string, error) {
	return homeFile("session.json")
}

// ResponseCachePath returns the path of the HTTP response cache database.
func ResponseCachePath() (string, error) {
	return homeFile("http-cache.db")
}

// LogPath returns the path of the rotating log file.
func LogPath() (string, error) {
	return homeFile("budzilla.log")
}

func homeFile(name string) (string, error) {
	dir, err := HomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, name), nil
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(p string) (string, error) {
	if !strings.HasPrefix(p, "~") {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot expand ~: %w", err)
	}
	return filepath.Join(home, p[1:]), nil
}

// DefaultConfig returns the Config written on first budzilla init.
func DefaultConfig() *Config {
	return &Config{
		AuthURL:     "https://budzilla.example.com/api/auth/login",
		EntryURL:    "https://budzilla.example.com/api/entries",
		Username:    DefaultUsername,
		Threshold:   60,
		Timeout:     "15s",
		SessionTTL:  "2h",
		ResponseTTL: "1h",
		LogLevel:    "info",
	}
}

// Load reads the config file at path (or the default location when path is
// empty) and applies environment overrides. A missing file is not an error:
// the defaults are used and the environment may supply everything.
func Load(path string) (*Config, error) {
	if path == "" {
		p, err := ConfigPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("invalid YAML in %s: %w", path, err)
		}
	case os.IsNotExist(err):
	default:
		return nil, fmt.Errorf("cannot read config %s: %w", path, err)
	}

	es, err := Environ()
	if err != nil {
		return nil, err
	}
	if err := env.Unmarshal(es, cfg); err != nil {
		return nil, fmt.Errorf("cannot apply environment overrides: %w", err)
	}

	if cfg.Username == "" {
		cfg.Username = DefaultUsername
	}
	return cfg, nil
}

// Save marshals cfg and writes it to path with owner-only permissions, since
// it may carry the password.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("cannot marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("cannot create %s: %w", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("cannot write config %s: %w", path, err)
	}
	return nil
}

// Validate checks the settings a query needs. It does not touch the network.
func (c *Config) Validate() error {
	urls := []struct{ name, raw string }{
		{"auth_url", c.AuthURL},
		{"entry_url", c.EntryURL},
	}
	for _, f := range urls {
		name, raw := f.name, f.raw
		if raw == "" {
			return fmt.Errorf("%s is required", name)
		}
		u, err := url.Parse(raw)
		if err != nil {
			return fmt.Errorf("%s: invalid url: %w", name, err)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return fmt.Errorf("%s: url scheme must be http or https, got %q", name, u.Scheme)
		}
	}
	if c.Password == "" {
		return fmt.Errorf("password is required (set BUDZILLA_PASSWORD or password in budzilla.yaml)")
	}
	if c.Threshold < 0 || c.Threshold > 100 {
		return fmt.Errorf("threshold must be within 0..100, got %d", c.Threshold)
	}
	return nil
}

// TimeoutDuration is the per-request HTTP timeout. Zero disables it.
func (c *Config) TimeoutDuration() time.Duration {
	return parseDurationOr(c.Timeout, 15*time.Second)
}

// SessionTTLDuration is how long a login token stays cached.
func (c *Config) SessionTTLDuration() time.Duration {
	return parseDurationOr(c.SessionTTL, 2*time.Hour)
}

// ResponseTTLDuration is how long a successful entry listing stays cached.
func (c *Config) ResponseTTLDuration() time.Duration {
	return parseDurationOr(c.ResponseTTL, time.Hour)
}

// ParseDuration accepts Go durations plus an "Nd" day suffix.
func ParseDuration(s string) (time.Duration, error) {
	if len(s) > 1 && s[len(s)-1] == 'd' {
		var days int
		if _, err := fmt.Sscanf(s, "%dd", &days); err == nil {
			return time.Duration(days) * 24 * time.Hour, nil
		}
	}
	return time.ParseDuration(s)
}

func parseDurationOr(s string, def time.Duration) time.Duration {
	if s == "" {
		return def
	}
	d, err := ParseDuration(s)
	if err != nil || d < 0 {
		return def
	}
	return d
}
