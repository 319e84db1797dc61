package export

import (
	"fmt"
	"io"
	"strings"
	"time"
)

// Format is an output file format
type Format string

const (
	// FASTA is a header line and the wrapped sequence
	FASTA Format = "fasta"

	// GenBank is a flat file with a features table
	GenBank Format = "genbank"

	// GFF is a tab separated feature table without the sequence
	GFF Format = "gff"
)

// ParseFormat maps a format name or file extension to a Format
func ParseFormat(s string) (Format, error) {
	switch strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), ".") {
	case "fasta", "fa", "fna":
		return FASTA, nil
	case "genbank", "gb", "gbk":
		return GenBank, nil
	case "gff", "gff2", "gff3":
		return GFF, nil
	default:
		return "", fmt.Errorf("failed to parse format %q: must be fasta, genbank or gff", s)
	}
}

// Ext is the file extension for the format, with its dot
func (f Format) Ext() string {
	switch f {
	case FASTA:
		return ".fasta"
	case GFF:
		return ".gff"
	default:
		return ".gb"
	}
}

// Options tune the renderers
type Options struct {
	// Width of FASTA sequence lines
	Width int

	// Date stamped on GenBank LOCUS lines and zip entries, now if zero
	Date time.Time
}

func (o Options) date() time.Time {
	if o.Date.IsZero() {
		return time.Now()
	}
	return o.Date
}

// Write renders the record in the format
func Write(w io.Writer, rec Record, f Format, opts Options) error {
	switch f {
	case FASTA:
		return WriteFASTA(w, rec, opts.Width)
	case GenBank:
		return WriteGenBank(w, rec, opts.date())
	case GFF:
		return WriteGFF(w, rec)
	default:
		return fmt.Errorf("failed to write %s: unknown format %q", rec.Name, f)
	}
}
