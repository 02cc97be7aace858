package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	home := setHome(t)

	cfg, err := Load(filepath.Join(home, "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultUsername, cfg.Username)
	assert.Equal(t, 60, cfg.Threshold)
	assert.Equal(t, 2*time.Hour, cfg.SessionTTLDuration())
	assert.Equal(t, time.Hour, cfg.ResponseTTLDuration())
}

func TestLoad_FileThenEnvironment(t *testing.T) {
	home := setHome(t)
	path := filepath.Join(home, "budzilla.yaml")
	yml := "auth_url: https://b.example/auth\nentry_url: https://b.example/entries\npassword: fromfile\nthreshold: 70\n"
	require.NoError(t, os.WriteFile(path, []byte(yml), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(home, ".env"), []byte("BUDZILLA_PASSWORD=fromdotenv\n"), 0o600))
	t.Setenv("BUDZILLA_ENTRY_URL", "https://other.example/entries")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://b.example/auth", cfg.AuthURL)
	assert.Equal(t, "https://other.example/entries", cfg.EntryURL)
	assert.Equal(t, "fromdotenv", cfg.Password)
	assert.Equal(t, 70, cfg.Threshold)
	require.NoError(t, cfg.Validate())
}

func TestLoad_BlankDotEnvKeepsFileValue(t *testing.T) {
	home := setHome(t)
	path := filepath.Join(home, "budzilla.yaml")
	require.NoError(t, os.WriteFile(path, []byte("password: fromfile\n"), 0o600))
	require.NoError(t, EnsureDotEnvTemplate())

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "fromfile", cfg.Password)
}

func TestLoad_InvalidYAML(t *testing.T) {
	home := setHome(t)
	path := filepath.Join(home, "budzilla.yaml")
	require.NoError(t, os.WriteFile(path, []byte("threshold: [\n"), 0o600))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		c := DefaultConfig()
		c.Password = "secret"
		return c
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		err    bool
	}{
		{"defaults with password", func(*Config) {}, false},
		{"missing password", func(c *Config) { c.Password = "" }, true},
		{"missing auth url", func(c *Config) { c.AuthURL = "" }, true},
		{"bad entry scheme", func(c *Config) { c.EntryURL = "ftp://x/entries" }, true},
		{"threshold too high", func(c *Config) { c.Threshold = 101 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			err := c.Validate()
			if tt.err {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestParseDuration(t *testing.T) {
	tests := []struct {
		input string
		want  time.Duration
		err   bool
	}{
		{"1d", 24 * time.Hour, false},
		{"2h", 2 * time.Hour, false},
		{"90m", 90 * time.Minute, false},
		{"d", 0, true},
		{"soon", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseDuration(tt.input)
		if tt.err {
			assert.Error(t, err, tt.input)
			continue
		}
		require.NoError(t, err, tt.input)
		assert.Equal(t, tt.want, got, tt.input)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	home := setHome(t)
	path := filepath.Join(home, "sub", "budzilla.yaml")

	cfg := DefaultConfig()
	cfg.MaxResults = 5
	require.NoError(t, Save(path, cfg))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 5, got.MaxResults)
}

func TestValidate_ReportsAuthURLFirst(t *testing.T) {
	c := DefaultConfig()
	c.Password = "secret"
	c.AuthURL = "ftp://x/auth"
	c.EntryURL = ""

	for range 20 {
		err := c.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "auth_url")
	}
}
