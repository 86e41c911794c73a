// Package config loads autofill settings from .env files and the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/grez-lucas/form-autofill/internal/autofill/filler"
)

// Environment variables read by Load.
const (
	EnvUsername  = "AUTOFILL_USERNAME"
	EnvEmail     = "AUTOFILL_EMAIL"
	EnvDomain    = "AUTOFILL_DOMAIN"
	EnvPassword  = "AUTOFILL_PASSWORD"
	EnvStepDelay = "AUTOFILL_STEP_DELAY"
	EnvSeed      = "AUTOFILL_SEED"
	EnvChromeBin = "AUTOFILL_CHROME_BIN"
	EnvHeadless  = "AUTOFILL_HEADLESS"
	EnvStealth   = "AUTOFILL_STEALTH"
	EnvHumanize  = "AUTOFILL_HUMANIZE"

	// EnvUsernameFields is a comma-separated list of field names.
	EnvUsernameFields = "AUTOFILL_USERNAME_FIELDS"
)

// DefaultEnvFile is read when Load is called without files.
const DefaultEnvFile = ".env"

type Config struct {
	Username string
	Email    string
	Domain   string
	Password string
	// UsernameFields receive Username. Empty leaves them to the text rule.
	UsernameFields []string

	StepDelay time.Duration
	// Seed makes runs reproducible when non-zero.
	Seed uint64

	ChromeBin string
	Headless  bool
	Stealth   bool
	Humanize  bool
}

func Default() *Config {
	return &Config{
		Password:  filler.DefaultPassword,
		StepDelay: filler.DefaultStepDelay,
		Headless:  true,
		Stealth:   true,
	}
}

// Load reads the given .env files (missing files are ignored) and then the
// process environment. Variables already set in the environment win over
// .env entries.
func Load(files ...string) (*Config, error) {
	if len(files) == 0 {
		files = []string{DefaultEnvFile}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", f, err)
		}
	}

	cfg := Default()
	cfg.Username = os.Getenv(EnvUsername)
	cfg.Email = os.Getenv(EnvEmail)
	cfg.Domain = os.Getenv(EnvDomain)
	cfg.ChromeBin = os.Getenv(EnvChromeBin)

	if v := os.Getenv(EnvPassword); v != "" {
		cfg.Password = v
	}
	cfg.UsernameFields = splitList(os.Getenv(EnvUsernameFields))

	var err error
	if cfg.StepDelay, err = durationEnv(EnvStepDelay, cfg.StepDelay); err != nil {
		return nil, err
	}
	if cfg.Headless, err = boolEnv(EnvHeadless, cfg.Headless); err != nil {
		return nil, err
	}
	if cfg.Stealth, err = boolEnv(EnvStealth, cfg.Stealth); err != nil {
		return nil, err
	}
	if cfg.Humanize, err = boolEnv(EnvHumanize, cfg.Humanize); err != nil {
		return nil, err
	}
	if v := os.Getenv(EnvSeed); v != "" {
		if cfg.Seed, err = strconv.ParseUint(v, 10, 64); err != nil {
			return nil, fmt.Errorf("%s: %w", EnvSeed, err)
		}
	}

	return cfg, nil
}

// FillerOptions translates the settings into engine options.
func (c *Config) FillerOptions() []filler.Option {
	opts := []filler.Option{
		filler.WithDelay(c.StepDelay),
		filler.WithPassword(c.Password),
	}
	if c.Seed != 0 {
		opts = append(opts, filler.WithSeed(c.Seed))
	}
	if len(c.UsernameFields) > 0 {
		opts = append(opts, filler.WithUsernameFields(c.UsernameFields...))
	}
	return opts
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func boolEnv(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}
