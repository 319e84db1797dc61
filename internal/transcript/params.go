package transcript

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

// Method is the solver's integration method
type Method string

const (
	// Deterministic integrates the ODE model
	Deterministic Method = "deterministic"

	// Stochastic runs Gillespie trajectories
	Stochastic Method = "stochastic"

	// Flow samples a per-cell protein distribution, like a flow cytometer
	Flow Method = "flow"
)

// ParseMethod maps a method name, case-insensitive, to a Method
func ParseMethod(s string) (Method, error) {
	switch m := Method(strings.ToLower(strings.TrimSpace(s))); m {
	case Deterministic, Stochastic, Flow:
		return m, nil
	case "":
		return Deterministic, nil
	default:
		return "", fmt.Errorf("failed to parse method %q: must be deterministic, stochastic or flow", s)
	}
}

// Repeated is whether the method runs many trajectories and so takes a run count
func (m Method) Repeated() bool {
	return m == Stochastic || m == Flow
}

// MaxRuns is the most runs the solver accepts
const MaxRuns = 100000

// Params are the simulation settings sent with the transcripts
type Params struct {
	Method Method `json:"method" mapstructure:"method"`

	// Runs is only sent for stochastic and flow simulations
	Runs int `json:"runs,omitempty" mapstructure:"runs"`

	// T is the simulated time, dt the step
	T  float64 `json:"T" mapstructure:"t"`
	Dt float64 `json:"dt" mapstructure:"dt"`

	AlphaMBase float64 `json:"alpha_m_base" mapstructure:"alpha-m-base"`
	AlphaPBase float64 `json:"alpha_p_base" mapstructure:"alpha-p-base"`
	DeltaM     float64 `json:"delta_m" mapstructure:"delta-m"`
	DeltaP     float64 `json:"delta_p" mapstructure:"delta-p"`

	// Seed makes stochastic runs reproducible, nil for a random seed
	Seed *int64 `json:"seed,omitempty" mapstructure:"seed"`

	// Inducers are the external small molecule profiles
	Inducers []InducerConfig `json:"inducers,omitempty" mapstructure:"inducers"`
}

// DefaultParams are the solver's own defaults
func DefaultParams() Params {
	return Params{
		Method:     Deterministic,
		Runs:       200,
		T:          1000,
		Dt:         1,
		AlphaMBase: 1,
		AlphaPBase: 1,
		DeltaM:     0.1,
		DeltaP:     0.01,
	}
}

// Validate returns the first problem with the params
func (p Params) Validate() error {
	if _, err := ParseMethod(string(p.Method)); err != nil {
		return err
	}
	if !(p.T > 0) {
		return fmt.Errorf("T must be positive, got %v", p.T)
	}
	if !(p.Dt > 0) || p.Dt > p.T {
		return fmt.Errorf("dt must be in (0, T], got %v", p.Dt)
	}
	if p.Method.Repeated() && (p.Runs < 1 || p.Runs > MaxRuns) {
		return fmt.Errorf("runs must be in [1, %d], got %d", MaxRuns, p.Runs)
	}

	rates := []struct {
		name  string
		value float64
	}{
		{"alpha_m_base", p.AlphaMBase},
		{"alpha_p_base", p.AlphaPBase},
		{"delta_m", p.DeltaM},
		{"delta_p", p.DeltaP},
	}
	for _, r := range rates {
		if math.IsNaN(r.value) || r.value < 0 {
			return fmt.Errorf("%s must not be negative, got %v", r.name, r.value)
		}
	}

	for i, ind := range p.Inducers {
		if err := ind.Validate(); err != nil {
			return fmt.Errorf("inducer %d: %w", i+1, err)
		}
	}
	return nil
}

// MarshalJSON writes the params in the solver's shape: initial conditions pinned to
// zero and runs only for repeated methods.
func (p Params) MarshalJSON() ([]byte, error) {
	type plain Params
	out := struct {
		plain
		Runs *int    `json:"runs,omitempty"`
		M0   float64 `json:"m0"`
		P0   float64 `json:"p0"`
	}{plain: plain(p)}

	if out.Method == "" {
		out.Method = Deterministic
	}
	if out.Method.Repeated() {
		runs := p.Runs
		out.Runs = &runs
	}
	return json.Marshal(out)
}
