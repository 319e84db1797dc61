package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"

	"github.com/HarrisKClark/Genesim-sub001/internal/solver"
	"github.com/HarrisKClark/Genesim-sub001/internal/transcript"
)

// inTempDir runs the test from an empty directory so no stray genesim.yaml or .env is read
func inTempDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chdir(wd) })
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	return dir
}

func TestLoad_defaults(t *testing.T) {
	inTempDir(t)

	c, err := Load(viper.New(), "")
	if err != nil {
		t.Fatal(err)
	}

	if c.Solver.Proxy != solver.DefaultProxy || c.Solver.Port != 8000 || c.Solver.Timeout != 3*time.Second {
		t.Errorf("solver = %+v", c.Solver)
	}
	if c.Simulation.Method != transcript.Deterministic || c.Simulation.T != 1000 || c.Simulation.DeltaP != 0.01 {
		t.Errorf("simulation = %+v", c.Simulation)
	}
	if c.Export.LineWidth != 60 || c.Autosave.Quiet != 500*time.Millisecond {
		t.Errorf("export = %+v, autosave = %+v", c.Export, c.Autosave)
	}
	if !strings.HasSuffix(c.Store.Path, "genesim.db") {
		t.Errorf("store path = %s", c.Store.Path)
	}
}

func TestLoad_sources(t *testing.T) {
	dir := inTempDir(t)

	settings := filepath.Join(dir, "settings.yaml")
	yaml := `solver:
  port: 9000
  host: solver.lab
simulation:
  method: stochastic
  runs: 50
export:
  line-width: 70
`
	if err := os.WriteFile(settings, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("GENESIM_AUTOSAVE_QUIET=2s\nGENESIM_SOLVER_PORT=9100\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("GENESIM_SOLVER_PORT", "9200")
	// restored after the test, so the value the .env loads does not leak
	t.Setenv("GENESIM_AUTOSAVE_QUIET", "")
	os.Unsetenv("GENESIM_AUTOSAVE_QUIET")

	c, err := Load(viper.New(), settings)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		got  interface{}
		want interface{}
	}{
		{"file value", c.Solver.Host, "solver.lab"},
		{"env beats file", c.Solver.Port, 9200},
		{"dotenv fills unset env", c.Autosave.Quiet, 2 * time.Second},
		{"file method", c.Simulation.Method, transcript.Stochastic},
		{"file runs", c.Simulation.Runs, 50},
		{"dashed key", c.Export.LineWidth, 70},
		{"default kept", c.Simulation.Dt, 1.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %v, want %v", tt.got, tt.want)
			}
		})
	}
}

func TestLoad_missingFile(t *testing.T) {
	dir := inTempDir(t)

	if _, err := Load(viper.New(), filepath.Join(dir, "nope.yaml")); err == nil {
		t.Error("Load() with a missing settings file should fail")
	}
}

func TestConfig_Validate(t *testing.T) {
	valid := func() Config {
		return Config{
			Solver:     SolverConfig{Port: 8000, Timeout: time.Second},
			Simulation: transcript.DefaultParams(),
			Store:      StoreConfig{Path: "genesim.db"},
			Export:     ExportConfig{LineWidth: 60},
		}
	}

	tests := []struct {
		name    string
		edit    func(*Config)
		wantErr bool
	}{
		{"valid", func(*Config) {}, false},
		{"port", func(c *Config) { c.Solver.Port = 70000 }, true},
		{"timeout", func(c *Config) { c.Solver.Timeout = 0 }, true},
		{"line width", func(c *Config) { c.Export.LineWidth = 0 }, true},
		{"store path", func(c *Config) { c.Store.Path = " " }, true},
		{"negative quiet", func(c *Config) { c.Autosave.Quiet = -time.Second }, true},
		{"bad method", func(c *Config) { c.Simulation.Method = "euler" }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.edit(&c)
			if err := c.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
