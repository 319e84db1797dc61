package transcript

import (
	"fmt"
	"math"
)

// Inducer profile functions
const (
	InducerConstant = "constant"
	InducerRamp     = "ramp"
	InducerSin      = "sin"
	InducerSquare   = "square"
	InducerPulse    = "pulse"
)

// InducerConfig is the concentration profile of an inducer over simulated time
type InducerConfig struct {
	Name     string  `json:"name" mapstructure:"name"`
	Function string  `json:"function" mapstructure:"function"`
	Value    float64 `json:"value" mapstructure:"value"`

	// Delay before the profile starts, in simulated time
	Delay    float64 `json:"delay" mapstructure:"delay"`
	Baseline float64 `json:"baseline" mapstructure:"baseline"`

	// Slope of a ramp
	Slope float64 `json:"slope" mapstructure:"slope"`

	// Amplitude, Period and DutyCycle shape sin, square and pulse profiles
	Amplitude float64 `json:"amplitude" mapstructure:"amplitude"`
	Period    float64 `json:"period" mapstructure:"period"`
	DutyCycle float64 `json:"duty_cycle" mapstructure:"duty-cycle"`
}

// Validate checks the function name and the shape of periodic profiles
func (c InducerConfig) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("inducer has no name")
	}
	switch c.Function {
	case InducerConstant, InducerRamp:
	case InducerSin, InducerSquare, InducerPulse:
		if !(c.Period > 0) {
			return fmt.Errorf("%s inducer %q needs a positive period", c.Function, c.Name)
		}
		if c.DutyCycle < 0 || c.DutyCycle > 1 {
			return fmt.Errorf("%s inducer %q: duty cycle must be in [0, 1]", c.Function, c.Name)
		}
	default:
		return fmt.Errorf("inducer %q: unknown function %q", c.Name, c.Function)
	}
	return nil
}

// Concentration is the inducer level at time t, as the solver computes it
func (c InducerConfig) Concentration(t float64) float64 {
	if t < c.Delay {
		if c.Function == InducerConstant {
			return 0
		}
		return c.Baseline
	}
	eff := t - c.Delay

	switch c.Function {
	case InducerConstant:
		return c.Value
	case InducerRamp:
		return math.Max(0, c.Baseline+c.Slope*eff)
	case InducerSin, InducerSquare, InducerPulse:
		if !(c.Period > 0) {
			return c.Baseline
		}
	default:
		return c.Value
	}

	phase := math.Mod(eff, c.Period) / c.Period
	switch c.Function {
	case InducerSin:
		return c.Baseline + c.Amplitude*(0.5+0.5*math.Sin(2*math.Pi*phase))
	case InducerSquare:
		if phase < c.DutyCycle {
			return c.Baseline + c.Amplitude
		}
		return c.Baseline
	default:
		if eff < c.DutyCycle*c.Period {
			return c.Baseline + c.Amplitude
		}
		return c.Baseline
	}
}

// Series is the concentration at each time point
func (c InducerConfig) Series(times []float64) []float64 {
	values := make([]float64, len(times))
	for i, t := range times {
		values[i] = c.Concentration(t)
	}
	return values
}
