package circuit

import (
	"fmt"
	"sort"
	"strings"
)

// Report is the result of validating a circuit. Errors block saving and simulation,
// warnings do not.
type Report struct {
	// IsValid is true iff there are no errors
	IsValid bool `json:"isValid"`

	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`

	// Operons the report was built from
	Operons []Operon `json:"operons"`
}

// ValidationError is returned by actions that refuse an invalid circuit
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return "invalid circuit: " + e.Errors[0]
	}
	return fmt.Sprintf("invalid circuit, %d errors:\n  %s", len(e.Errors), strings.Join(e.Errors, "\n  "))
}

// Err returns a *ValidationError if the report has errors, nil otherwise
func (r Report) Err() error {
	if r.IsValid {
		return nil
	}
	return &ValidationError{Errors: r.Errors}
}

// Validate detects the circuit's operons and validates them with its parts
func (c *Circuit) Validate() Report {
	return ValidateOperons(c.Operons(), c)
}

// Validate validates every plasmid of the file, or its main strand when it has no
// plasmids. Plasmid messages are prefixed with the plasmid's name and its operon ids
// become "{plasmid}/operon-N".
func (f *File) Validate() Report {
	if len(f.Plasmids) == 0 {
		return f.Circuit().Validate()
	}

	r := Report{Errors: []string{}, Warnings: []string{}, Operons: []Operon{}}
	for _, p := range f.Plasmids {
		name := p.Name
		if name == "" {
			name = p.ID
		}

		pr := p.Circuit().Validate()
		for _, e := range pr.Errors {
			r.Errors = append(r.Errors, fmt.Sprintf("%s: %s", name, e))
		}
		for _, w := range pr.Warnings {
			r.Warnings = append(r.Warnings, fmt.Sprintf("%s: %s", name, w))
		}
		for _, op := range pr.Operons {
			op.ID = name + "/" + op.ID
			r.Operons = append(r.Operons, op)
		}
	}

	r.IsValid = len(r.Errors) == 0
	return r
}

// ValidateOperons checks the operons and the raw placements for structural problems.
//
// Errors: an operon without exactly one promoter, overlapping parts without an
// allowance, parts past the strand end, a non-positive strand or part length.
// Warnings: detection warnings, operons with no cistrons or no terminator, duplicate
// part names, parts upstream of every promoter, and regulators no gene produces.
func ValidateOperons(operons []Operon, c *Circuit) Report {
	r := Report{Errors: []string{}, Warnings: []string{}, Operons: operons}

	if c.Length <= 0 {
		r.Errors = append(r.Errors, fmt.Sprintf("strand length must be positive, got %d", c.Length))
	}

	for _, op := range operons {
		if op.Promoter.Kind != Promoter || !op.Promoter.Placed() {
			r.Errors = append(r.Errors, fmt.Sprintf("%s: must have exactly one promoter", op.ID))
		}
		for _, w := range op.Warnings {
			r.Warnings = append(r.Warnings, fmt.Sprintf("%s: %s", op.ID, w))
		}
		if len(op.Cistrons) == 0 {
			r.Warnings = append(r.Warnings, fmt.Sprintf("%s: promoter %q with no downstream gene", op.ID, op.Promoter.Name))
		}
		if !op.Terminated() {
			r.Warnings = append(r.Warnings, fmt.Sprintf("%s: no terminator, transcription reads through", op.ID))
		}
	}

	for i, comp := range c.Components {
		if comp.Placed() && comp.Span() <= 0 {
			r.Errors = append(r.Errors, fmt.Sprintf("part %d (%s) has no length", i+1, comp.Name))
		}
	}

	for _, col := range c.Collisions() {
		a, b := c.Components[col.A], c.Components[col.B]
		r.Errors = append(r.Errors, fmt.Sprintf("%s and %s overlap by %d bp", a, b, col.Overlap))
	}

	for _, i := range c.OutOfBounds() {
		r.Errors = append(r.Errors, fmt.Sprintf("%s extends past the %d bp strand", c.Components[i], c.Length))
	}

	r.Warnings = append(r.Warnings, duplicateNames(c.Components)...)
	r.Warnings = append(r.Warnings, untranscribed(c.Components)...)
	r.Warnings = append(r.Warnings, unknownRegulators(c.Components)...)

	r.IsValid = len(r.Errors) == 0
	return r
}

// duplicateNames warns once per name used by more than one part
func duplicateNames(components []Component) (warnings []string) {
	counts := make(map[string]int)
	var order []string
	for _, comp := range components {
		name := strings.TrimSpace(comp.Name)
		if name == "" {
			continue
		}
		if counts[name] == 0 {
			order = append(order, name)
		}
		counts[name]++
	}

	for _, name := range order {
		if counts[name] > 1 {
			warnings = append(warnings, fmt.Sprintf("name %q is used by %d parts", name, counts[name]))
		}
	}
	return
}

// untranscribed warns about RBSs, genes and terminators outside every operon: upstream
// of the first promoter or between a terminator and the next promoter
func untranscribed(components []Component) (warnings []string) {
	seenPromoter, open := false, false
	for _, p := range sweepOrder(components) {
		switch p.comp.Kind {
		case Promoter:
			seenPromoter, open = true, true
		case Terminator:
			if open {
				open = false
				continue
			}
			fallthrough
		case RBS, Gene:
			if open {
				continue
			}
			if seenPromoter {
				warnings = append(warnings, fmt.Sprintf("%s follows a terminator with no promoter in between and is not transcribed", p.comp))
			} else {
				warnings = append(warnings, fmt.Sprintf("%s is upstream of every promoter and is not transcribed", p.comp))
			}
		}
	}
	return
}

// unknownRegulators warns about promoters regulated by proteins no gene produces
func unknownRegulators(components []Component) (warnings []string) {
	produced := make(map[string]bool)
	for _, comp := range components {
		if comp.Kind == Gene {
			produced[RegulatorKey(comp.ProteinLabel())] = true
		}
	}

	var missing []string
	for _, comp := range components {
		if comp.Kind != Promoter || comp.PromoterKinetics == nil {
			continue
		}
		for role, name := range map[string]string{"activator": comp.Activator, "inhibitor": comp.Inhibitor} {
			if name != "" && !produced[RegulatorKey(name)] {
				missing = append(missing, fmt.Sprintf("promoter %q: %s %q is not produced by any gene", comp.Name, role, name))
			}
		}
	}

	sort.Strings(missing)
	return append(warnings, missing...)
}
