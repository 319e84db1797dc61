package circuit

import (
	"fmt"
	"math"
	"strings"
)

// MaxResistances is the most resistance markers a backbone can carry
const MaxResistances = 5

// Resistance is an antibiotic resistance marker, ex: {"Amp", "Ampicillin"}
type Resistance struct {
	// Code is a 2-3 character abbreviation
	Code string `json:"code"`

	// Name of the antibiotic
	Name string `json:"name"`
}

// BackboneSpec is the plasmid chassis a circuit is carried on. It is replaced as a
// whole, never edited in place: callers Clamp and then swap the whole value.
type BackboneSpec struct {
	// CopyNumber is the plasmid copies per cell, a positive whole number after Clamp
	CopyNumber float64 `json:"copyNumber"`

	// OriginName is the origin of replication, ex: "pUC" or "p15A"
	OriginName string `json:"originName"`

	// Resistances are the selection markers, at most MaxResistances
	Resistances []Resistance `json:"resistances"`
}

// Clamp returns a copy with a rounded copy number of at least one, a
// trimmed origin, trimmed resistance fields and the first MaxResistances markers.
func (b BackboneSpec) Clamp() BackboneSpec {
	copies := math.Round(b.CopyNumber)
	if math.IsNaN(copies) || copies < 1 {
		copies = 1
	}

	resistances := b.Resistances
	if len(resistances) > MaxResistances {
		resistances = resistances[:MaxResistances]
	}

	clamped := BackboneSpec{
		CopyNumber:  copies,
		OriginName:  strings.TrimSpace(b.OriginName),
		Resistances: make([]Resistance, 0, len(resistances)),
	}
	for _, r := range resistances {
		clamped.Resistances = append(clamped.Resistances, Resistance{
			Code: strings.TrimSpace(r.Code),
			Name: strings.TrimSpace(r.Name),
		})
	}

	return clamped
}

// Validate returns every problem as it is, without clamping
func (b BackboneSpec) Validate() (errs []string) {
	if math.IsNaN(b.CopyNumber) || b.CopyNumber <= 0 {
		errs = append(errs, "copy number must be positive")
	}
	if strings.TrimSpace(b.OriginName) == "" {
		errs = append(errs, "origin name is required")
	}
	if len(b.Resistances) > MaxResistances {
		errs = append(errs, fmt.Sprintf("at most %d resistances, got %d", MaxResistances, len(b.Resistances)))
	}

	seen := make(map[string]bool)
	for i, r := range b.Resistances {
		code := strings.TrimSpace(r.Code)
		if n := len(code); n < 2 || n > 3 {
			errs = append(errs, fmt.Sprintf("resistance %d: code %q must be 2-3 characters", i+1, code))
		}
		if strings.TrimSpace(r.Name) == "" {
			errs = append(errs, fmt.Sprintf("resistance %d: name is required", i+1))
		}

		key := strings.ToLower(code)
		if seen[key] {
			errs = append(errs, fmt.Sprintf("resistance %d: duplicate code %q", i+1, code))
		}
		seen[key] = true
	}

	return
}

// Label formats the backbone as BB_{copies}C_{origin}_{codes}, ex: "BB_500C_pUC_Amp+Kan".
// A spec with no resistances ends in "_None".
func (b BackboneSpec) Label() string {
	codes := make([]string, 0, len(b.Resistances))
	for _, r := range b.Resistances {
		codes = append(codes, r.Code)
	}

	markers := "None"
	if len(codes) > 0 {
		markers = strings.Join(codes, "+")
	}

	return fmt.Sprintf("BB_%dC_%s_%s", int64(math.Round(b.CopyNumber)), b.OriginName, markers)
}

// FormatBackboneLabel clamps the backbone and formats its label
func FormatBackboneLabel(b BackboneSpec) string {
	return b.Clamp().Label()
}

// BackboneError lists the problems of a rejected backbone spec
type BackboneError struct {
	Errors []string
}

func (e *BackboneError) Error() string {
	return "invalid backbone: " + strings.Join(e.Errors, "; ")
}

// Err returns a *BackboneError if the backbone has problems, nil otherwise
func (b BackboneSpec) Err() error {
	if errs := b.Validate(); len(errs) > 0 {
		return &BackboneError{Errors: errs}
	}
	return nil
}
