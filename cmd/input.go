package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/HarrisKClark/Genesim-sub001/internal/circuit"
	"github.com/HarrisKClark/Genesim-sub001/internal/store"
	"github.com/HarrisKClark/Genesim-sub001/internal/transcript"
)

// DraftKey refers to the working draft wherever a circuit is expected
const DraftKey = "@draft"

const circuitHelp = `a circuit file path, "-" for stdin, @draft for the working draft,
or the id or name of a saved circuit`

// loadCircuit reads a circuit from a file, stdin, the draft or the store
func loadCircuit(cmd *cobra.Command, key string) (*circuit.File, error) {
	switch {
	case key == "-":
		return circuit.Decode(cmd.InOrStdin())
	case key == DraftKey:
		return withStore(cmd.Context(), func(s store.Store) (*circuit.File, error) {
			return s.LoadDraft(cmd.Context())
		})
	}

	if f, err := os.Open(key); err == nil {
		defer f.Close()
		file, err := circuit.Decode(f)
		if err != nil {
			return nil, fmt.Errorf("failed to read circuit %s: %w", key, err)
		}
		return file, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to open %s: %w", key, err)
	}

	return withStore(cmd.Context(), func(s store.Store) (*circuit.File, error) {
		return s.GetCircuit(cmd.Context(), key)
	})
}

func withStore(ctx context.Context, fn func(store.Store) (*circuit.File, error)) (*circuit.File, error) {
	s, err := openStore()
	if err != nil {
		return nil, err
	}
	defer s.Close()
	return fn(s)
}

// output opens the path for writing, stdout for "" or "-"
func output(cmd *cobra.Command, path string) (io.WriteCloser, error) {
	if path == "" || path == "-" {
		return nopCloser{cmd.OutOrStdout()}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", path, err)
	}
	return f, nil
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }

// addParamFlags registers the simulation parameter overrides
func addParamFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("method", "m", "", "deterministic, stochastic or flow")
	cmd.Flags().IntP("runs", "r", 0, "trajectories for stochastic and flow simulations")
	cmd.Flags().Float64("time", 0, "simulated time")
	cmd.Flags().Float64("dt", 0, "time step")
	cmd.Flags().Int64("seed", 0, "random seed for reproducible stochastic runs")
	cmd.Flags().String("inducers", "", "JSON file with a list of inducer profiles")
}

// parseParams starts from the configured defaults and applies the flags that were set
func parseParams(cmd *cobra.Command) (transcript.Params, error) {
	p := conf.Simulation
	flags := cmd.Flags()

	if flags.Changed("method") {
		s, _ := flags.GetString("method")
		m, err := transcript.ParseMethod(s)
		if err != nil {
			return p, err
		}
		p.Method = m
	}
	if flags.Changed("runs") {
		p.Runs, _ = flags.GetInt("runs")
	}
	if flags.Changed("time") {
		p.T, _ = flags.GetFloat64("time")
	}
	if flags.Changed("dt") {
		p.Dt, _ = flags.GetFloat64("dt")
	}
	if flags.Changed("seed") {
		seed, _ := flags.GetInt64("seed")
		p.Seed = &seed
	}
	if path, _ := flags.GetString("inducers"); strings.TrimSpace(path) != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return p, fmt.Errorf("failed to read inducers %s: %w", path, err)
		}
		p.Inducers = nil
		if err := json.Unmarshal(data, &p.Inducers); err != nil {
			return p, fmt.Errorf("failed to parse inducers %s: %w", path, err)
		}
	}

	return p, p.Validate()
}
