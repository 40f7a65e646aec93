// Package config holds the tunables of the synthesis pipeline.
//
// Values are layered: defaults, then an optional YAML file, then NLSQL_*
// environment variables. Command-line flags are applied last by the CLI.
//
// Environment variables:
//
//	NLSQL_MIN_SCORE        aligner best-score floor before the fuzzy fallback
//	NLSQL_FUZZY_CUTOFF     minimum difflib ratio accepted by the fallback
//	NLSQL_AMBIGUITY_SCORE  score a shared column name must reach
//	NLSQL_MAX_STEPS        decoder step bound
//	NLSQL_VALIDATE         validate rendered SQL (true/false)
//	NLSQL_HISTORY          path of the SQLite synthesis history
//	NLSQL_CONFIG           configuration file used when --config is empty
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/nlsql/internal/align"
	"github.com/roach88/nlsql/internal/grammar"
)

// Environment variable names.
const (
	EnvMinScore       = "NLSQL_MIN_SCORE"
	EnvFuzzyCutoff    = "NLSQL_FUZZY_CUTOFF"
	EnvAmbiguityScore = "NLSQL_AMBIGUITY_SCORE"
	EnvMaxSteps       = "NLSQL_MAX_STEPS"
	EnvValidate       = "NLSQL_VALIDATE"
	EnvHistory        = "NLSQL_HISTORY"
	EnvConfigFile     = "NLSQL_CONFIG"
)

// Decoder configures token-driven generation.
type Decoder struct {
	MaxSteps int `yaml:"max_steps"`
}

// Config is the full set of pipeline tunables.
type Config struct {
	Aligner     align.Thresholds `yaml:"aligner"`
	Decoder     Decoder          `yaml:"decoder"`
	ValidateSQL bool             `yaml:"validate_sql"`

	// History is the SQLite file synthesis attempts are appended to.
	// Empty disables recording.
	History string `yaml:"history"`

	// File is the path the configuration was read from, if any.
	File string `yaml:"-"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Aligner: align.DefaultThresholds(),
		Decoder: Decoder{MaxSteps: grammar.DefaultMaxSteps},
	}
}

// Load builds a Config from defaults, the YAML file at path (skipped when
// path is empty) and the environment.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		path = os.Getenv(EnvConfigFile)
	}
	if path != "" {
		if err := cfg.LoadFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile merges the YAML document at path over c. Keys absent from the
// file keep their current values; unknown keys are rejected.
func (c *Config) LoadFile(path string) error {
	path = os.ExpandEnv(path)
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	c.File = path
	return nil
}

// ApplyEnv overrides c with any NLSQL_* variables that are set.
func (c *Config) ApplyEnv() error {
	var err error
	if c.Aligner.MinScore, err = envFloat(EnvMinScore, c.Aligner.MinScore); err != nil {
		return err
	}
	if c.Aligner.FuzzyCutoff, err = envFloat(EnvFuzzyCutoff, c.Aligner.FuzzyCutoff); err != nil {
		return err
	}
	if c.Aligner.AmbiguityScore, err = envFloat(EnvAmbiguityScore, c.Aligner.AmbiguityScore); err != nil {
		return err
	}
	if c.Decoder.MaxSteps, err = envInt(EnvMaxSteps, c.Decoder.MaxSteps); err != nil {
		return err
	}
	if c.ValidateSQL, err = envBool(EnvValidate, c.ValidateSQL); err != nil {
		return err
	}
	c.History = envStr(EnvHistory, c.History)
	return nil
}

// Validate checks every value is in range.
func (c *Config) Validate() error {
	var problems []string

	unit := func(name string, v float64) {
		if v < 0 || v > 1 {
			problems = append(problems, fmt.Sprintf("%s: %g (must be within [0, 1])", name, v))
		}
	}
	unit("aligner.min_score", c.Aligner.MinScore)
	unit("aligner.fuzzy_cutoff", c.Aligner.FuzzyCutoff)
	unit("aligner.ambiguity_score", c.Aligner.AmbiguityScore)

	if c.Decoder.MaxSteps < 1 {
		problems = append(problems, fmt.Sprintf("decoder.max_steps: %d (must be positive)", c.Decoder.MaxSteps))
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration:\n  - %s", strings.Join(problems, "\n  - "))
	}
	return nil
}

func envStr(key, def string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return def
}

func envInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func envFloat(key string, def float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def, fmt.Errorf("%s: %w", key, err)
	}
	return f, nil
}

func envBool(key string, def bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}
