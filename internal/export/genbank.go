package export

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/HarrisKClark/Genesim-sub001/internal/circuit"
)

// WriteGenBank writes the record as a GenBank flat file dated d
func WriteGenBank(w io.Writer, rec Record, d time.Time) error {
	seq := rec.Sequence

	// header row
	topology := "linear  "
	if rec.Circular {
		topology = "circular"
	}
	h1 := fmt.Sprintf("LOCUS       %s", locusName(rec.Name))
	h2 := fmt.Sprintf("%d bp DNA      %s    %s\n", len(seq), topology, strings.ToUpper(d.Format("02-Jan-2006")))
	space := " "
	if pad := 81 - len(h1+h2); pad > 0 {
		space = strings.Repeat(" ", pad)
	}

	definition := rec.Definition
	if definition == "" {
		definition = "."
	}

	// feature rows
	var fsb strings.Builder
	fsb.WriteString(h1 + space + h2)
	fmt.Fprintf(&fsb, "DEFINITION  %s\nACCESSION   .\nFEATURES             Location/Qualifiers\n", definition)
	for _, f := range rec.Features {
		cS := ""
		cE := ""
		if f.Reverse {
			cS = "complement("
			cE = ")"
		}

		fmt.Fprintf(&fsb, "     %-16s%s%d..%d%s\n", f.Key, cS, f.Start, f.End, cE)
		for _, q := range f.Qualifiers {
			fmt.Fprintf(&fsb, "                     /%s=\"%s\"\n", q.Key, strings.ReplaceAll(q.Value, `"`, `'`))
		}
	}

	// origin row
	fsb.WriteString("ORIGIN\n")
	for i := 0; i < len(seq); i += 60 {
		n := strconv.Itoa(i + 1)
		fsb.WriteString(strings.Repeat(" ", 9-len(n)) + n)
		for s := i; s < i+60 && s < len(seq); s += 10 {
			e := s + 10
			if e > len(seq) {
				e = len(seq)
			}
			fsb.WriteString(" " + strings.ToLower(seq[s:e]))
		}
		fsb.WriteString("\n")
	}
	fsb.WriteString("//\n")

	if _, err := io.WriteString(w, fsb.String()); err != nil {
		return fmt.Errorf("failed to write genbank for %s: %w", rec.Name, err)
	}
	return nil
}

// locusName is the name without whitespace, bounded to fit the LOCUS line
func locusName(name string) string {
	n := seqID(name)
	if len(n) > 40 {
		n = n[:40]
	}
	return n
}

var (
	featureLine = regexp.MustCompile(`^ {5}(\S+)\s+(\S+)`)
	rangeRegex  = regexp.MustCompile(`(\d+)\.\.(\d+)`)
	labelRegex  = regexp.MustCompile(`^\s+/(label|gene|product|note)="?([^"]*)"?`)
	nonBpRegex  = regexp.MustCompile(`[^ACGTRYSWKMBDHVN]`)
)

// kindsByKey maps GenBank feature keys back to part kinds
var kindsByKey = map[string]circuit.Kind{
	"promoter":     circuit.Promoter,
	"rbs":          circuit.RBS,
	"cds":          circuit.Gene,
	"gene":         circuit.Gene,
	"terminator":   circuit.Terminator,
	"protein_bind": circuit.Operator,
}

// ReadGenBankParts parses each feature of a GenBank file, other than source, into a
// custom part carrying the feature's bases
func ReadGenBankParts(r io.Reader) ([]circuit.CustomPart, error) {
	type pending struct {
		part       circuit.CustomPart
		start, end int
		reverse    bool
		named      bool
	}

	var (
		features []*pending
		current  *pending
		origin   strings.Builder
		section  string
	)

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := sc.Text()

		switch {
		case strings.HasPrefix(line, "FEATURES"):
			section = "features"
			continue
		case strings.HasPrefix(line, "ORIGIN"):
			section = "origin"
			continue
		case strings.HasPrefix(line, "//"):
			section = ""
			continue
		case len(line) > 0 && line[0] != ' ':
			section = ""
			continue
		}

		switch section {
		case "features":
			if m := featureLine.FindStringSubmatch(line); m != nil {
				current = nil
				rng := rangeRegex.FindStringSubmatch(m[2])
				if m[1] == "source" || rng == nil {
					continue
				}
				start, _ := strconv.Atoi(rng[1])
				end, _ := strconv.Atoi(rng[2])

				kind, ok := kindsByKey[strings.ToLower(m[1])]
				if !ok {
					kind = circuit.Other
				}
				current = &pending{
					part:    circuit.CustomPart{ID: uuid.NewString(), Kind: kind, Name: strconv.Itoa(len(features) + 1)},
					start:   start,
					end:     end,
					reverse: strings.HasPrefix(m[2], "complement("),
				}
				features = append(features, current)
				continue
			}

			if current == nil {
				continue
			}
			if m := labelRegex.FindStringSubmatch(line); m != nil {
				switch {
				case m[1] == "note":
					if current.part.Description == "" {
						current.part.Description = m[2]
					}
				case !current.named || m[1] == "label":
					current.part.Name = m[2]
					current.named = true
				}
			}
		case "origin":
			origin.WriteString(nonBpRegex.ReplaceAllString(strings.ToUpper(line), ""))
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read genbank: %w", err)
	}

	seq := origin.String()
	if seq == "" {
		return nil, fmt.Errorf("failed to parse genbank: no ORIGIN sequence")
	}

	parts := make([]circuit.CustomPart, 0, len(features))
	for _, f := range features {
		if f.start < 1 || f.end > len(seq) || f.end < f.start {
			return nil, fmt.Errorf("failed to parse feature %s: %d..%d is outside the %d bp sequence", f.part.Name, f.start, f.end, len(seq))
		}

		bases := []byte(seq[f.start-1 : f.end])
		if f.reverse {
			bases = revComp(bases)
		}
		f.part.Sequence = string(bases)
		f.part.Length = len(bases)
		parts = append(parts, f.part)
	}

	return parts, nil
}
