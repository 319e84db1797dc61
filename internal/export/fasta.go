package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/biogo/biogo/alphabet"
	"github.com/biogo/biogo/io/seqio"
	"github.com/biogo/biogo/io/seqio/fasta"
	"github.com/biogo/biogo/seq/linear"
	"github.com/google/uuid"

	"github.com/HarrisKClark/Genesim-sub001/internal/circuit"
)

// LineWidth is the default sequence line width of FASTA output
const LineWidth = 60

// WriteFASTA writes the record as a single FASTA entry: ">name length bp" and the
// sequence wrapped at width bases (LineWidth if width < 1)
func WriteFASTA(w io.Writer, rec Record, width int) error {
	if width < 1 {
		width = LineWidth
	}

	s := linear.NewSeq(seqID(rec.Name), alphabet.BytesToLetters([]byte(rec.Sequence)), alphabet.DNAredundant)
	s.Desc = fmt.Sprintf("%d bp", len(rec.Sequence))

	if _, err := fasta.NewWriter(w, width).Write(s); err != nil {
		return fmt.Errorf("failed to write fasta for %s: %w", rec.Name, err)
	}
	return nil
}

// seqID is a header-safe version of a name: whitespace runs become underscores
func seqID(name string) string {
	id := strings.Join(strings.Fields(name), "_")
	if id == "" {
		return "untitled"
	}
	return id
}

// ReadFASTAParts reads a multi-FASTA file into custom parts. A "type=<kind>" token in
// the header description sets the part's kind, otherwise kind is used.
func ReadFASTAParts(r io.Reader, kind circuit.Kind) (parts []circuit.CustomPart, err error) {
	template := linear.NewSeq("", nil, alphabet.DNAredundant)
	sc := seqio.NewScanner(fasta.NewReader(r, template))

	for sc.Next() {
		s, ok := sc.Seq().(*linear.Seq)
		if !ok {
			return nil, fmt.Errorf("failed to read fasta: unexpected sequence type %T", sc.Seq())
		}

		part := circuit.CustomPart{
			ID:   uuid.NewString(),
			Kind: kind,
			Name: s.Name(),
		}

		var desc []string
		for _, field := range strings.Fields(s.Description()) {
			if v, found := strings.CutPrefix(field, "type="); found {
				k, err := circuit.ParseKind(v)
				if err != nil {
					return nil, fmt.Errorf("failed to read part %s: %w", part.Name, err)
				}
				part.Kind = k
				continue
			}
			desc = append(desc, field)
		}
		part.Description = strings.Join(desc, " ")

		bases := make([]byte, len(s.Seq))
		for i, l := range s.Seq {
			bases[i] = byte(l)
		}
		part.Sequence = string(normalize(string(bases)))
		part.Length = len(part.Sequence)

		parts = append(parts, part)
	}
	if err := sc.Error(); err != nil {
		return nil, fmt.Errorf("failed to read fasta: %w", err)
	}

	if len(parts) < 1 {
		return nil, fmt.Errorf("failed to parse any parts from fasta")
	}
	return
}
