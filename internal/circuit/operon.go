package circuit

import (
	"fmt"
)

// Cistron is an RBS and the gene it translates
type Cistron struct {
	RBS  Component `json:"rbs"`
	Gene Component `json:"gene"`
}

// Operon is a transcriptional unit derived from the placed parts: a promoter, its
// cistrons, and an optional terminator. It is never edited, only recomputed.
type Operon struct {
	// ID is derived from the operon's index, ex: "operon-1"
	ID string `json:"id"`

	// Promoter that starts the unit
	Promoter Component `json:"promoter"`

	// Cistrons in strand order
	Cistrons []Cistron `json:"rbsGenePairs"`

	// Terminator that closed the unit, nil if it was closed by another promoter or the strand end
	Terminator *Component `json:"terminator,omitempty"`

	// Modifiers are operators and other parts attached to this operon's promoter
	Modifiers []Component `json:"modifiers,omitempty"`

	// StartBP is the promoter start, 0-based
	StartBP int `json:"startBp"`

	// EndBP is the exclusive end of the terminator, or of the last gene if unterminated
	EndBP int `json:"endBp"`

	// IsValid is true for an operon with at least one cistron, all inside the strand
	IsValid bool `json:"isValid"`

	// Warnings from detection, in the order they were found
	Warnings []string `json:"warnings"`
}

// Terminated is whether a terminator closed the operon
func (o Operon) Terminated() bool {
	return o.Terminator != nil
}

// Operons recomputes the circuit's operons
func (c *Circuit) Operons() []Operon {
	return DetectOperons(c.Components, c.Length)
}

// detector is the sweep state while building operons
type detector struct {
	length  int
	operons []Operon

	// open is the operon being built, nil between a terminator and the next promoter
	open *Operon

	// rbs waiting for its gene
	rbs *Component
}

// DetectOperons sweeps the placed parts left to right and groups them into operons.
//
// A promoter opens an operon. Each RBS pairs with the next gene. A terminator closes
// the operon. A promoter reached while an operon is open closes the previous one as
// incomplete. Operators and other parts attach to the nearest upstream promoter and
// never open or close an operon. Unplaced parts are skipped.
func DetectOperons(components []Component, length int) []Operon {
	d := detector{length: length}

	for _, p := range sweepOrder(components) {
		comp := p.comp

		switch comp.Kind {
		case Promoter:
			if d.open != nil {
				d.warn(fmt.Sprintf("incomplete: no terminator before the next promoter %q", comp.Name))
				d.close()
			}
			d.open = &Operon{Promoter: comp}
		case RBS:
			if d.open == nil {
				continue
			}
			if d.rbs != nil {
				d.unpaired()
			}
			rbs := comp
			d.rbs = &rbs
		case Gene:
			if d.open == nil {
				continue
			}
			if d.rbs == nil {
				d.warn(fmt.Sprintf("gene %q has no upstream RBS", comp.Name))
				continue
			}
			d.open.Cistrons = append(d.open.Cistrons, Cistron{RBS: *d.rbs, Gene: comp})
			d.rbs = nil
		case Terminator:
			if d.open == nil {
				continue
			}
			term := comp
			d.open.Terminator = &term
			d.close()
		default:
			if d.open != nil {
				d.open.Modifiers = append(d.open.Modifiers, comp)
			} else if n := len(d.operons); n > 0 {
				d.operons[n-1].Modifiers = append(d.operons[n-1].Modifiers, comp)
			}
		}
	}

	if d.open != nil {
		d.close()
	}

	for i := range d.operons {
		d.operons[i].ID = fmt.Sprintf("operon-%d", i+1)
	}
	return d.operons
}

// warn adds a warning to the open operon
func (d *detector) warn(msg string) {
	d.open.Warnings = append(d.open.Warnings, msg)
}

// unpaired records the waiting RBS as a pairing failure
func (d *detector) unpaired() {
	d.warn(fmt.Sprintf("RBS %q has no downstream gene", d.rbs.Name))
	d.rbs = nil
}

// close finishes the open operon: span, validity, and any RBS left without a gene
func (d *detector) close() {
	if d.rbs != nil {
		d.unpaired()
	}

	op := d.open
	op.StartBP = op.Promoter.Start()
	op.EndBP = op.Promoter.End()
	if n := len(op.Cistrons); n > 0 {
		op.EndBP = op.Cistrons[n-1].Gene.End()
	}
	if op.Terminator != nil {
		op.EndBP = op.Terminator.End()
	}

	inBounds := op.StartBP >= 0 && op.EndBP <= d.length
	op.IsValid = len(op.Cistrons) > 0 && inBounds
	if op.Warnings == nil {
		op.Warnings = []string{}
	}

	d.operons = append(d.operons, *op)
	d.open = nil
}
