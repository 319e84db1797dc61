// Package export assembles a circuit's sequence and features and renders them as
// FASTA, GenBank and GFF files, alone or bundled in a zip.
package export

import (
	"fmt"
	"sort"
	"strings"

	"github.com/biogo/biogo/alphabet"
	"github.com/biogo/biogo/seq/linear"

	"github.com/HarrisKClark/Genesim-sub001/internal/circuit"
)

// Filler is the base written wherever no part declares a sequence
const Filler = 'N'

// Qualifier is a /key="value" pair on a feature
type Qualifier struct {
	Key   string
	Value string
}

// Feature is an annotated span of the record
type Feature struct {
	// Name is the part name, or the label for the source feature
	Name string

	// Key is the GenBank feature key, ex: "CDS"
	Key string

	// Start and End are 1-based and inclusive
	Start int
	End   int

	// Reverse is true for bottom strand parts
	Reverse bool

	Qualifiers []Qualifier
}

// Record is a concrete sequence and its features, the input to every renderer
type Record struct {
	Name       string
	Definition string
	Circular   bool
	Sequence   string
	Features   []Feature
}

// featureKeys maps part kinds to GenBank feature keys
var featureKeys = map[circuit.Kind]string{
	circuit.Promoter:   "promoter",
	circuit.RBS:        "RBS",
	circuit.Gene:       "CDS",
	circuit.Terminator: "terminator",
	circuit.Operator:   "protein_bind",
	circuit.Other:      "misc_feature",
}

// FeatureKey is the GenBank feature key for a part kind
func FeatureKey(k circuit.Kind) string {
	if key, ok := featureKeys[k]; ok {
		return key
	}
	return "misc_feature"
}

// Assemble lays the circuit's placed parts onto a strand of its length. Backbone
// parts are written first and inserts after, so inserts win where they overlap.
// Unspecified bases are Filler. Parts past the strand end are clipped.
func Assemble(name string, c *circuit.Circuit, backbone *circuit.BackboneSpec) Record {
	length := c.Length
	if length < 0 {
		length = 0
	}

	bases := []byte(strings.Repeat(string(Filler), length))
	for _, backbonePass := range []bool{true, false} {
		for _, comp := range c.Components {
			if !comp.Placed() || comp.Backbone != backbonePass || comp.Sequence == "" {
				continue
			}
			write(bases, comp)
		}
	}

	rec := Record{
		Name:       name,
		Definition: name,
		Circular:   c.Circular,
		Sequence:   string(bases),
	}

	if length > 0 {
		source := Feature{Name: name, Key: "source", Start: 1, End: length}
		source.Qualifiers = append(source.Qualifiers, Qualifier{"mol_type", "other DNA"})
		if backbone != nil {
			label := circuit.FormatBackboneLabel(*backbone)
			source.Qualifiers = append(source.Qualifiers, Qualifier{"label", label})
			rec.Definition = fmt.Sprintf("%s on %s", name, label)
		}
		rec.Features = append(rec.Features, source)
	}

	var parts []Feature
	for _, comp := range c.Components {
		if f, ok := feature(comp, length); ok {
			parts = append(parts, f)
		}
	}
	sort.SliceStable(parts, func(i, j int) bool { return parts[i].Start < parts[j].Start })
	rec.Features = append(rec.Features, parts...)

	return rec
}

// write copies the part's sequence into bases at its position, reverse complemented
// for bottom strand parts
func write(bases []byte, comp circuit.Component) {
	s := normalize(comp.Sequence)
	if comp.Reverse() {
		s = revComp(s)
	}

	for i := 0; i < len(s); i++ {
		at := comp.Start() + i
		if at < 0 {
			continue
		}
		if at >= len(bases) {
			break
		}
		bases[at] = s[i]
	}
}

// normalize upper-cases a sequence and maps anything outside the IUPAC DNA
// alphabet to the filler
func normalize(s string) []byte {
	out := []byte(strings.ToUpper(s))
	for i, b := range out {
		switch b {
		case 'A', 'C', 'G', 'T', 'R', 'Y', 'S', 'W', 'K', 'M', 'B', 'D', 'H', 'V', 'N':
		case 'U':
			out[i] = 'T'
		default:
			out[i] = Filler
		}
	}
	return out
}

// revComp reverse complements a normalized sequence
func revComp(s []byte) []byte {
	sq := linear.NewSeq("", alphabet.BytesToLetters(s), alphabet.DNAredundant)
	sq.RevComp()

	out := make([]byte, len(sq.Seq))
	for i, l := range sq.Seq {
		out[i] = byte(l)
	}
	return out
}

// feature annotates a placed part, clipped to the strand. Parts with no bases on
// the strand have no feature.
func feature(comp circuit.Component, length int) (Feature, bool) {
	if !comp.Placed() {
		return Feature{}, false
	}
	start, end := comp.Start(), comp.End()
	if start < 0 {
		start = 0
	}
	if end > length {
		end = length
	}
	if end <= start {
		return Feature{}, false
	}

	f := Feature{
		Name:    comp.Name,
		Key:     FeatureKey(comp.Kind),
		Start:   start + 1,
		End:     end,
		Reverse: comp.Reverse(),
	}
	f.Qualifiers = append(f.Qualifiers, Qualifier{"label", comp.Name})
	if comp.Kind == circuit.Gene {
		f.Qualifiers = append(f.Qualifiers, Qualifier{"product", comp.ProteinLabel()})
	}
	f.Qualifiers = append(f.Qualifiers, Qualifier{"note", note(comp)})
	if comp.Notes != "" {
		f.Qualifiers = append(f.Qualifiers, Qualifier{"note", comp.Notes})
	}
	return f, true
}

// note describes the part's kind and kinetics, ex: "promoter; strength=2; inhibitor=TetR"
func note(comp circuit.Component) string {
	fields := []string{comp.Kind.String()}
	if comp.Backbone {
		fields = append(fields, "backbone")
	}

	if comp.Kind == circuit.Promoter {
		kin := comp.Promoter()
		if rate := kin.Rate(); rate != 0 {
			fields = append(fields, fmt.Sprintf("strength=%g", rate))
		}
		if kin.Leak != nil {
			fields = append(fields, fmt.Sprintf("leak=%g", *kin.Leak))
		}
		if kin.Activator != "" {
			fields = append(fields, "activator="+kin.Activator)
		}
		if kin.Inhibitor != "" {
			fields = append(fields, "inhibitor="+kin.Inhibitor)
		}
		if kin.Inducer != "" {
			fields = append(fields, "inducer="+kin.Inducer)
		}
	}
	if rate, ok := comp.RBSRate(); ok {
		fields = append(fields, fmt.Sprintf("rbs_strength=%g", rate))
	}

	return strings.Join(fields, "; ")
}

// FromPlasmid assembles one plasmid of a circuit file
func FromPlasmid(p circuit.Plasmid) Record {
	return Assemble(p.Name, p.Circuit(), p.Backbone)
}
