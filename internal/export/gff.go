package export

import (
	"fmt"
	"io"

	"github.com/biogo/biogo/io/featio/gff"
	"github.com/biogo/biogo/seq"
)

// gffSource is the source column of every GFF line written
const gffSource = "genesim"

// WriteGFF writes the record's part features as GFF lines, one per feature. The
// source feature spanning the whole record is skipped.
func WriteGFF(w io.Writer, rec Record) error {
	gw := gff.NewWriter(w, LineWidth, true)

	for _, f := range rec.Features {
		if f.Key == "source" {
			continue
		}

		strand := seq.Plus
		if f.Reverse {
			strand = seq.Minus
		}

		var attrs gff.Attributes
		for _, q := range f.Qualifiers {
			attrs = append(attrs, gff.Attribute{Tag: q.Key, Value: fmt.Sprintf("%q", q.Value)})
		}

		line := &gff.Feature{
			SeqName:        seqID(rec.Name),
			Source:         gffSource,
			Feature:        f.Key,
			FeatStart:      f.Start - 1,
			FeatEnd:        f.End,
			FeatStrand:     strand,
			FeatFrame:      gff.NoFrame,
			FeatAttributes: attrs,
		}
		if _, err := gw.Write(line); err != nil {
			return fmt.Errorf("failed to write gff feature %s: %w", f.Name, err)
		}
	}

	return nil
}
