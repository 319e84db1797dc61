// Package config is for app wide settings that are unmarshalled
// from Viper (see: /cmd)
package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/HarrisKClark/Genesim-sub001/internal/solver"
	"github.com/HarrisKClark/Genesim-sub001/internal/transcript"
)

// EnvPrefix prefixes environment overrides, ex: GENESIM_SOLVER_PORT
const EnvPrefix = "GENESIM"

// FileName is the settings file looked up in the working and user config directories
const FileName = "genesim"

var stderr = log.New(os.Stderr, "", 0)

// SolverConfig is where the simulation service lives
type SolverConfig struct {
	// the dev proxy base URL, tried first
	Proxy string `mapstructure:"proxy"`

	// the direct backend host and port
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`

	// bound on health probes
	Timeout time.Duration `mapstructure:"timeout"`
}

// StoreConfig is for local persistence
type StoreConfig struct {
	// path to the SQLite database
	Path string `mapstructure:"path"`
}

// ExportConfig is for sequence exports
type ExportConfig struct {
	// residues per line in FASTA and GFF output
	LineWidth int `mapstructure:"line-width"`
}

// AutosaveConfig is for the draft autosaver
type AutosaveConfig struct {
	// how long edits must pause before the draft is written
	Quiet time.Duration `mapstructure:"quiet"`

	// the least time between two draft writes
	MinInterval time.Duration `mapstructure:"min-interval"`
}

// Config is the root-level settings struct and is a mix
// of settings available in genesim.yaml, the environment
// and those available from the command line
type Config struct {
	Solver SolverConfig `mapstructure:"solver"`

	// default simulation params, overridden per run by flags
	Simulation transcript.Params `mapstructure:"simulation"`

	Store    StoreConfig    `mapstructure:"store"`
	Export   ExportConfig   `mapstructure:"export"`
	Autosave AutosaveConfig `mapstructure:"autosave"`

	// log at debug level
	Verbose bool `mapstructure:"verbose"`
}

// SetDefaults registers every setting's default on v. Keys must be known to viper
// for environment overrides to reach Unmarshal.
func SetDefaults(v *viper.Viper) {
	params := transcript.DefaultParams()

	v.SetDefault("solver.proxy", solver.DefaultProxy)
	v.SetDefault("solver.host", "localhost")
	v.SetDefault("solver.port", 8000)
	v.SetDefault("solver.timeout", 3*time.Second)

	v.SetDefault("simulation.method", string(params.Method))
	v.SetDefault("simulation.runs", params.Runs)
	v.SetDefault("simulation.t", params.T)
	v.SetDefault("simulation.dt", params.Dt)
	v.SetDefault("simulation.alpha-m-base", params.AlphaMBase)
	v.SetDefault("simulation.alpha-p-base", params.AlphaPBase)
	v.SetDefault("simulation.delta-m", params.DeltaM)
	v.SetDefault("simulation.delta-p", params.DeltaP)

	v.SetDefault("store.path", defaultStorePath())
	v.SetDefault("export.line-width", 60)
	v.SetDefault("autosave.quiet", 500*time.Millisecond)
	v.SetDefault("autosave.min-interval", 2*time.Second)
	v.SetDefault("verbose", false)
}

func defaultStorePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(".genesim", "genesim.db")
	}
	return filepath.Join(dir, "genesim", "genesim.db")
}

// Load reads settings into a Config. Precedence, highest first: values already set
// on v (bound flags), the environment, a .env file in the working directory, the
// settings file, then defaults. An empty file means look for genesim.yaml in the
// working directory and the user config directory; a missing one is not an error.
func Load(v *viper.Viper, file string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read settings file %s: %w", file, err)
		}
	} else {
		v.SetConfigName(FileName)
		v.AddConfigPath(".")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, "genesim"))
		}
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read settings file: %w", err)
			}
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("failed to decode settings: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate returns the first unusable setting
func (c *Config) Validate() error {
	if c.Solver.Port < 0 || c.Solver.Port > 65535 {
		return fmt.Errorf("solver.port must be in [0, 65535], got %d", c.Solver.Port)
	}
	if c.Solver.Timeout <= 0 {
		return fmt.Errorf("solver.timeout must be positive, got %s", c.Solver.Timeout)
	}
	if c.Export.LineWidth <= 0 {
		return fmt.Errorf("export.line-width must be positive, got %d", c.Export.LineWidth)
	}
	if c.Autosave.Quiet < 0 || c.Autosave.MinInterval < 0 {
		return fmt.Errorf("autosave durations must not be negative")
	}
	if strings.TrimSpace(c.Store.Path) == "" {
		return fmt.Errorf("store.path is required")
	}
	if err := c.Simulation.Validate(); err != nil {
		return fmt.Errorf("simulation: %w", err)
	}
	return nil
}

// New returns a new Config populated by the global Viper instance
// (the local genesim.yaml, env and command line arguments)
func New(file string) *Config {
	c, err := Load(viper.GetViper(), file)
	if err != nil {
		stderr.Fatalf("unable to load settings, %v", err)
	}
	return c
}
