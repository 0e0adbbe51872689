package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Environment variable names consulted by Load.
const (
	EnvPrefix  = "MONTPELLIER_"
	EnvConfig  = "MONTPELLIER_CONFIG"
	EnvEnvFile = "MONTPELLIER_ENV_FILE"

	defaultEnvFile = ".env"
)

// legacyEnv lists the relay's original variables and the keys they map to.
var legacyEnv = map[string]string{ //nolint:gochecknoglobals // read-only lookup table
	"SMTP_HOST":     "smtp_host",
	"SMTP_PORT":     "smtp_port",
	"SMTP_USER":     "smtp_user",
	"SMTP_PASS":     "smtp_pass",
	"CONTACT_EMAIL": "contact_email",
}

// Load builds a Config by layering defaults, optional files, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New(ctx))
//  2. file (YAML) if MONTPELLIER_CONFIG is set
//  3. .env file (MONTPELLIER_ENV_FILE, default .env); never overrides the real environment
//  4. env (prefix MONTPELLIER_)
//  5. legacy relay env: SMTP_HOST, SMTP_PORT, SMTP_USER, SMTP_PASS, CONTACT_EMAIL
func Load(ctx context.Context) (*Config, error) {
	base := New(ctx)

	k := koanf.New(".")

	if path := os.Getenv(EnvConfig); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
		}
	}

	envFile := os.Getenv(EnvEnvFile)
	if envFile == "" {
		envFile = defaultEnvFile
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, envFile, err)
	}

	// MONTPELLIER_PROBE_CONCURRENCY -> probe_concurrency (flat keys).
	envProvider := env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.TrimPrefix(strings.ToLower(s), strings.ToLower(EnvPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	for name, key := range legacyEnv {
		if v, ok := os.LookupEnv(name); ok && v != "" {
			if err := k.Set(key, v); err != nil {
				return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, name, err)
			}
		}
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
