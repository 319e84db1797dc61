// Package circuit is the in-memory model of a genetic circuit: positioned parts on
// a DNA strand, the operons derived from them, validation and the persisted file.
package circuit

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Kind is the closed set of part types that can be placed on a strand
type Kind int

const (
	// Promoter starts transcription
	Promoter Kind = iota

	// RBS is a ribosome binding site, paired with the gene that follows it
	RBS

	// Gene is a coding sequence
	Gene

	// Terminator ends transcription
	Terminator

	// Operator is a regulator binding site, attached to the nearest upstream promoter
	Operator

	// Other is anything else: spacers, scars, origins, markers
	Other
)

var kindNames = [...]string{"promoter", "rbs", "gene", "terminator", "operator", "other"}

func (k Kind) String() string {
	if k < Promoter || k > Other {
		return fmt.Sprintf("kind(%d)", int(k))
	}
	return kindNames[k]
}

// ParseKind maps a part type name (case-insensitive) to its Kind
func ParseKind(s string) (Kind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, n := range kindNames {
		if n == s {
			return Kind(i), nil
		}
	}
	if s == "cds" {
		return Gene, nil
	}
	return Other, fmt.Errorf("failed to parse part type %q", s)
}

// MarshalJSON writes the kind by name
func (k Kind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

// UnmarshalJSON reads a kind by name
func (k *Kind) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseKind(s)
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// rank orders kinds that share a start position: promoter, rbs, gene, terminator
func (k Kind) rank() int {
	return int(k)
}

// PromoterKinetics are the transcription parameters of a promoter
type PromoterKinetics struct {
	// Strength is the promoter's relative transcription rate
	Strength float64 `json:"strength,omitempty"`

	// Activity is an older name for Strength, read when Strength is unset
	Activity float64 `json:"activity,omitempty"`

	// Leak is the basal fraction of transcription when not activated
	Leak *float64 `json:"leak,omitempty"`

	// Activator names a protein that activates this promoter
	Activator string `json:"activatorName,omitempty"`
	ActK      *float64 `json:"actK,omitempty"`
	ActN      *float64 `json:"actN,omitempty"`

	// Inhibitor names a protein that represses this promoter
	Inhibitor string `json:"inhibitorName,omitempty"`
	RepK      *float64 `json:"repK,omitempty"`
	RepN      *float64 `json:"repN,omitempty"`

	// Inducer names an external small molecule (IPTG, aTc) gating the promoter
	Inducer string `json:"inducerName,omitempty"`
	IndK    *float64 `json:"indK,omitempty"`
	IndN    *float64 `json:"indN,omitempty"`
}

// Rate is Strength, falling back to Activity
func (p PromoterKinetics) Rate() float64 {
	if p.Strength == 0 && p.Activity != 0 {
		return p.Activity
	}
	return p.Strength
}

// TranslationKinetics are carried by RBSs and genes
type TranslationKinetics struct {
	// RBSStrength is the relative translation initiation rate
	RBSStrength *float64 `json:"rbsStrength,omitempty"`

	// Product is the protein a gene encodes
	Product string `json:"product,omitempty"`
}

// Component is a single genetic part, optionally placed on the strand
type Component struct {
	// ID is a stable identifier within a circuit file
	ID string `json:"id,omitempty"`

	// Kind of part
	Kind Kind `json:"type"`

	// Name of the part, ex: "pLac" or "GFP"
	Name string `json:"name"`

	// Position is the 0-based start on the strand. nil means unplaced
	Position *int `json:"position,omitempty"`

	// Length is the declared length in bp, used when there is no Sequence
	Length int `json:"length,omitempty"`

	// Sequence of the part, 5' to 3' on its own strand
	Sequence string `json:"sequence,omitempty"`

	// Strand is 1 (forward, the default) or -1 (reverse)
	Strand int `json:"strand,omitempty"`

	// Backbone is set on chassis parts (origin, resistance markers)
	Backbone bool `json:"backbone,omitempty"`

	// AllowOverlap permits this part to share bases with others
	AllowOverlap bool `json:"allowOverlap,omitempty"`

	// Notes is free text carried into exported annotations
	Notes string `json:"notes,omitempty"`

	*PromoterKinetics
	*TranslationKinetics
}

// Span is the number of bases the part covers. A sequence wins over a declared length
func (c Component) Span() int {
	if c.Sequence != "" {
		return len(c.Sequence)
	}
	return c.Length
}

// Placed is whether the component has a position on the strand
func (c Component) Placed() bool {
	return c.Position != nil
}

// Start is the 0-based start, or -1 when unplaced
func (c Component) Start() int {
	if c.Position == nil {
		return -1
	}
	return *c.Position
}

// End is the exclusive 0-based end, or -1 when unplaced
func (c Component) End() int {
	if c.Position == nil {
		return -1
	}
	return *c.Position + c.Span()
}

// Reverse is whether the part sits on the bottom strand
func (c Component) Reverse() bool {
	return c.Strand < 0
}

// ProteinLabel is the name the solver gives this gene's protein
func (c Component) ProteinLabel() string {
	if c.TranslationKinetics != nil && c.Product != "" {
		return c.Product
	}
	return c.Name
}

// RBSRate is the part's RBS strength and whether it was set
func (c Component) RBSRate() (float64, bool) {
	if c.TranslationKinetics == nil || c.RBSStrength == nil {
		return 0, false
	}
	return *c.RBSStrength, true
}

// Promoter returns the promoter kinetics, never nil
func (c Component) Promoter() PromoterKinetics {
	if c.PromoterKinetics == nil {
		return PromoterKinetics{}
	}
	return *c.PromoterKinetics
}

// At returns a copy of the component placed at pos
func (c Component) At(pos int) Component {
	c.Position = &pos
	return c
}

func (c Component) String() string {
	if c.Position == nil {
		return fmt.Sprintf("%s %q (unplaced)", c.Kind, c.Name)
	}
	return fmt.Sprintf("%s %q [%d..%d)", c.Kind, c.Name, c.Start(), c.End())
}
