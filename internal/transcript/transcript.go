// Package transcript maps detected operons to the transcript records a kinetic
// solver simulates.
package transcript

import (
	"errors"
	"fmt"

	"github.com/HarrisKClark/Genesim-sub001/internal/circuit"
)

const (
	// DefaultHillK is the Hill constant assumed by the solver for a named regulator
	DefaultHillK = 10.0

	// DefaultHillN is the Hill coefficient assumed by the solver for a named regulator
	DefaultHillN = 2.0

	// DefaultRBSStrength is used for RBSs and genes without a translation rate
	DefaultRBSStrength = 1.0

	// DefaultPromoterStrength is used for promoters with neither strength nor activity
	DefaultPromoterStrength = 1.0
)

// ErrNoTranscripts is returned when no operon is complete enough to simulate
var ErrNoTranscripts = errors.New("no complete transcriptional units: every operon needs a promoter, at least one RBS+gene pair and a terminator")

// Cistron is one translated gene of a transcript
type Cistron struct {
	// ID is "{operonId}:cistron-{index}", 1-based
	ID          string  `json:"id"`
	GeneName    string  `json:"geneName"`
	RBSName     string  `json:"rbsName,omitempty"`
	RBSStrength float64 `json:"rbsStrength"`
}

// Transcript is the solver's view of a valid, terminated, non-empty operon
type Transcript struct {
	ID               string  `json:"id"`
	PromoterName     string  `json:"promoterName"`
	PromoterStrength float64 `json:"promoterStrength"`
	Leak             float64 `json:"leak"`

	ActivatorName string   `json:"activatorName,omitempty"`
	ActK          *float64 `json:"actK,omitempty"`
	ActN          *float64 `json:"actN,omitempty"`

	InhibitorName string   `json:"inhibitorName,omitempty"`
	RepK          *float64 `json:"repK,omitempty"`
	RepN          *float64 `json:"repN,omitempty"`

	InducerName string   `json:"inducerName,omitempty"`
	IndK        *float64 `json:"indK,omitempty"`
	IndN        *float64 `json:"indN,omitempty"`

	TerminatorName string    `json:"terminatorName,omitempty"`
	Cistrons       []Cistron `json:"cistrons"`
}

// Simulable is whether an operon becomes a transcript: valid, terminated and with a cistron
func Simulable(op circuit.Operon) bool {
	return op.IsValid && op.Terminated() && len(op.Cistrons) > 0
}

// Build maps every simulable operon to a transcript, in operon order. Other operons
// are skipped without comment; they still show up in the validation report.
func Build(operons []circuit.Operon) []Transcript {
	transcripts := []Transcript{}
	for _, op := range operons {
		if !Simulable(op) {
			continue
		}
		transcripts = append(transcripts, fromOperon(op))
	}
	return transcripts
}

func fromOperon(op circuit.Operon) Transcript {
	kin := op.Promoter.Promoter()

	t := Transcript{
		ID:               op.ID,
		PromoterName:     op.Promoter.Name,
		PromoterStrength: kin.Rate(),
		Cistrons:         make([]Cistron, 0, len(op.Cistrons)),
	}
	if t.PromoterStrength <= 0 {
		t.PromoterStrength = DefaultPromoterStrength
	}
	if kin.Leak != nil {
		t.Leak = *kin.Leak
	}

	if kin.Activator != "" {
		t.ActivatorName = kin.Activator
		t.ActK, t.ActN = hill(kin.ActK, kin.ActN)
	}
	if kin.Inhibitor != "" {
		t.InhibitorName = kin.Inhibitor
		t.RepK, t.RepN = hill(kin.RepK, kin.RepN)
	}
	if kin.Inducer != "" {
		t.InducerName = kin.Inducer
		t.IndK, t.IndN = hill(kin.IndK, kin.IndN)
	}

	if op.Terminator != nil {
		t.TerminatorName = op.Terminator.Name
	}

	for i, c := range op.Cistrons {
		t.Cistrons = append(t.Cistrons, Cistron{
			ID:          fmt.Sprintf("%s:cistron-%d", op.ID, i+1),
			GeneName:    c.Gene.ProteinLabel(),
			RBSName:     c.RBS.Name,
			RBSStrength: rbsStrength(c),
		})
	}

	return t
}

// hill fills unset Hill parameters with the solver's defaults
func hill(k, n *float64) (*float64, *float64) {
	kv, nv := DefaultHillK, DefaultHillN
	if k != nil {
		kv = *k
	}
	if n != nil {
		nv = *n
	}
	return &kv, &nv
}

// rbsStrength is the RBS's rate, then the gene's, then DefaultRBSStrength
func rbsStrength(c circuit.Cistron) float64 {
	if v, ok := c.RBS.RBSRate(); ok {
		return v
	}
	if v, ok := c.Gene.RBSRate(); ok {
		return v
	}
	return DefaultRBSStrength
}
