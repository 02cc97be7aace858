package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	env "github.com/netflix/go-env"
)

// DotEnvPath returns the absolute path to the dotenv file (~/.budzilla/.env).
func DotEnvPath() (string, error) {
	return homeFile(".env")
}

// LoadDotEnv reads ~/.budzilla/.env and returns key/value pairs.
// A missing file yields an empty map.
func LoadDotEnv() (map[string]string, error) {
	p, err := DotEnvPath()
	if err != nil {
		return nil, err
	}
	m, err := godotenv.Read(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("cannot read dotenv file %s: %w", p, err)
	}
	return m, nil
}

// Environ merges ~/.budzilla/.env with the process environment. Process
// variables take precedence. Empty values are dropped so that a blank
// template line never overrides a value from budzilla.yaml.
func Environ() (env.EnvSet, error) {
	dotenv, err := LoadDotEnv()
	if err != nil {
		return nil, err
	}
	es, err := env.EnvironToEnvSet(os.Environ())
	if err != nil {
		return nil, fmt.Errorf("cannot parse environment: %w", err)
	}
	for k, v := range es {
		if v == "" {
			delete(es, k)
		}
	}
	for k, v := range dotenv {
		if _, ok := es[k]; !ok && v != "" {
			es[k] = v
		}
	}
	return es, nil
}

// GetConfigValue returns the effective value for key, using process environment variables
// first and falling back to ~/.budzilla/.env.
func GetConfigValue(key string) (string, error) {
	if v := os.Getenv(key); v != "" {
		return v, nil
	}
	dotenv, err := LoadDotEnv()
	if err != nil {
		return "", err
	}
	return dotenv[key], nil
}

// Where the effective password was found.
const (
	SourceEnvironment = "environment"
	SourceDotEnv      = ".env"
	SourceFile        = "budzilla.yaml"
)

const passwordKey = "BUDZILLA_PASSWORD"

// PasswordSource reports which layer supplies cfg's password, in the
// precedence Load applies. It returns "" when no layer sets one.
func PasswordSource(cfg *Config) (string, error) {
	if os.Getenv(passwordKey) != "" {
		return SourceEnvironment, nil
	}
	v, err := GetConfigValue(passwordKey)
	if err != nil {
		return "", err
	}
	if v != "" {
		return SourceDotEnv, nil
	}
	if cfg != nil && cfg.Password != "" {
		return SourceFile, nil
	}
	return "", nil
}

// EnsureDotEnvTemplate creates ~/.budzilla/.env if it does not already exist.
//
// The template lists the secret-bearing keys with empty values so the password
// never has to live in budzilla.yaml.
func EnsureDotEnvTemplate() error {
	p, err := DotEnvPath()
	if err != nil {
		return err
	}

	if _, err := os.Stat(p); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("cannot stat dotenv file %s: %w", p, err)
	}

	if err := os.MkdirAll(filepath.Dir(p), 0o700); err != nil {
		return fmt.Errorf("cannot create %s: %w", filepath.Dir(p), err)
	}
	body, err := godotenv.Marshal(map[string]string{
		passwordKey: "",
	})
	if err != nil {
		return err
	}
	if err := os.WriteFile(p, []byte(body+"\n"), 0o600); err != nil {
		return fmt.Errorf("cannot write dotenv template %s: %w", p, err)
	}
	return nil
}
