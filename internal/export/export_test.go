package export

import (
	"archive/zip"
	"bytes"
	"errors"
	"io"
	"regexp"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/HarrisKClark/Genesim-sub001/internal/circuit"
)

var date = time.Date(2024, 5, 17, 0, 0, 0, 0, time.UTC)

func reporter() *circuit.Circuit {
	return &circuit.Circuit{
		Length:   120,
		Circular: true,
		Components: []circuit.Component{
			circuit.Component{Kind: circuit.Other, Name: "ori", Sequence: strings.Repeat("G", 40), Backbone: true}.At(0),
			circuit.Component{Kind: circuit.Promoter, Name: "pLac", Sequence: "TTTACA"}.At(10),
			circuit.Component{Kind: circuit.RBS, Name: "B0034", Length: 4}.At(16),
			circuit.Component{Kind: circuit.Gene, Name: "gfp", Sequence: "ATGCCC", Strand: -1}.At(20),
			circuit.Component{Kind: circuit.Terminator, Name: "B0015", Sequence: "aaaa"}.At(100),
			circuit.Component{Kind: circuit.Other, Name: "loose", Sequence: "CCCC"},
		},
	}
}

func TestAssemble(t *testing.T) {
	rec := Assemble("reporter", reporter(), &circuit.BackboneSpec{CopyNumber: 20, OriginName: "pUC"})

	if len(rec.Sequence) != 120 {
		t.Fatalf("sequence length = %d, want 120", len(rec.Sequence))
	}

	wantSeq := strings.Repeat("G", 10) + "TTTACA" + "GGGG" + "GGGCAT" + strings.Repeat("G", 14) +
		strings.Repeat("N", 60) + "AAAA" + strings.Repeat("N", 16)
	if rec.Sequence != wantSeq {
		t.Errorf("Assemble() sequence =\n%s\nwant\n%s", rec.Sequence, wantSeq)
	}

	if rec.Features[0].Key != "source" || rec.Features[0].End != 120 {
		t.Errorf("first feature = %+v, want the source", rec.Features[0])
	}
	if !hasQualifier(rec.Features[0], "label", "BB_20C_pUC_None") {
		t.Errorf("source qualifiers = %+v, want the backbone label", rec.Features[0].Qualifiers)
	}

	var keys []string
	for _, f := range rec.Features[1:] {
		keys = append(keys, f.Key)
	}
	want := []string{"misc_feature", "promoter", "RBS", "CDS", "terminator"}
	if strings.Join(keys, ",") != strings.Join(want, ",") {
		t.Errorf("feature keys = %v, want %v", keys, want)
	}

	gene := rec.Features[4]
	if gene.Start != 21 || gene.End != 26 || !gene.Reverse {
		t.Errorf("gene feature = %+v, want complement 21..26", gene)
	}
	if !hasQualifier(gene, "product", "gfp") {
		t.Errorf("gene qualifiers = %+v, want a product", gene.Qualifiers)
	}
}

func TestAssemble_clipsAndEmpty(t *testing.T) {
	c := &circuit.Circuit{
		Length: 10,
		Components: []circuit.Component{
			circuit.Component{Kind: circuit.Gene, Name: "long", Sequence: "ACGTACGTACGTACGT"}.At(6),
		},
	}
	rec := Assemble("clip", c, nil)
	if rec.Sequence != "NNNNNNACGT" {
		t.Errorf("clipped sequence = %s", rec.Sequence)
	}
	if f := rec.Features[1]; f.Start != 7 || f.End != 10 {
		t.Errorf("clipped feature = %d..%d, want 7..10", f.Start, f.End)
	}

	empty := Assemble("empty", &circuit.Circuit{Length: 0}, nil)
	if empty.Sequence != "" || len(empty.Features) != 0 {
		t.Errorf("empty record = %+v", empty)
	}
}

func hasQualifier(f Feature, key, value string) bool {
	for _, q := range f.Qualifiers {
		if q.Key == key && q.Value == value {
			return true
		}
	}
	return false
}

func TestWriteFASTA(t *testing.T) {
	rec := Record{Name: "my circuit", Sequence: strings.Repeat("ACGT", 40)}

	var buf bytes.Buffer
	if err := WriteFASTA(&buf, rec, 60); err != nil {
		t.Fatal(err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if lines[0] != ">my_circuit 160 bp" {
		t.Errorf("header = %q", lines[0])
	}
	if len(lines) != 4 || len(lines[1]) != 60 || len(lines[3]) != 40 {
		t.Errorf("sequence lines = %q, want 60/60/40", lines[1:])
	}
	if got := strings.Join(lines[1:], ""); got != rec.Sequence {
		t.Errorf("sequence = %s, want %s", got, rec.Sequence)
	}
}

func TestReadFASTAParts(t *testing.T) {
	in := ">pBAD type=promoter arabinose inducible\nACGTACGTAC\nGTAC\n>B0034\naaagaggaga\n"

	parts, err := ReadFASTAParts(strings.NewReader(in), circuit.RBS)
	if err != nil {
		t.Fatal(err)
	}
	if len(parts) != 2 {
		t.Fatalf("read %d parts, want 2", len(parts))
	}
	if parts[0].Name != "pBAD" || parts[0].Kind != circuit.Promoter || parts[0].Length != 14 {
		t.Errorf("first part = %+v", parts[0])
	}
	if parts[0].Description != "arabinose inducible" {
		t.Errorf("description = %q", parts[0].Description)
	}
	if parts[1].Kind != circuit.RBS || parts[1].Sequence != "AAAGAGGAGA" {
		t.Errorf("second part = %+v", parts[1])
	}

	if _, err := ReadFASTAParts(strings.NewReader(""), circuit.Gene); err == nil {
		t.Error("ReadFASTAParts() accepted an empty file")
	}
}

func TestWriteGenBank(t *testing.T) {
	rec := Assemble("reporter", reporter(), &circuit.BackboneSpec{CopyNumber: 20, OriginName: "pUC", Resistances: []circuit.Resistance{{Code: "Amp", Name: "Ampicillin"}}})

	var buf bytes.Buffer
	if err := WriteGenBank(&buf, rec, date); err != nil {
		t.Fatal(err)
	}
	gb := buf.String()
	lines := strings.Split(gb, "\n")

	if len(lines[0]) != 80 {
		t.Errorf("LOCUS line is %d characters, want 80: %q", len(lines[0]), lines[0])
	}
	for _, want := range []string{"LOCUS       reporter", "120 bp DNA", "circular", "17-MAY-2024"} {
		if !strings.Contains(lines[0], want) {
			t.Errorf("LOCUS line %q is missing %q", lines[0], want)
		}
	}

	for _, want := range []string{
		"DEFINITION  reporter on BB_20C_pUC_Amp",
		"     source          1..120\n",
		"     promoter        11..16\n",
		"     CDS             complement(21..26)\n",
		"                     /label=\"pLac\"\n",
		"ORIGIN\n        1 gggggggggg tttacagggg gggcatgggg gggggggggg nnnnnnnnnn nnnnnnnnnn\n       61 ",
	} {
		if !strings.Contains(gb, want) {
			t.Errorf("genbank is missing %q:\n%s", want, gb)
		}
	}
	if !strings.HasSuffix(gb, "//\n") {
		t.Errorf("genbank does not end with //")
	}

	// ORIGIN holds exactly the sequence
	origin := gb[strings.Index(gb, "ORIGIN"):]
	bases := regexp.MustCompile(`[^a-z]`).ReplaceAllString(origin[len("ORIGIN"):], "")
	if len(bases) != 120 {
		t.Errorf("ORIGIN has %d bases, want 120", len(bases))
	}
}

func TestReadGenBankParts(t *testing.T) {
	rec := Assemble("reporter", reporter(), nil)
	var buf bytes.Buffer
	if err := WriteGenBank(&buf, rec, date); err != nil {
		t.Fatal(err)
	}

	parts, err := ReadGenBankParts(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if len(parts) != 5 {
		t.Fatalf("read %d parts, want 5: %+v", len(parts), parts)
	}

	byName := map[string]circuit.CustomPart{}
	for _, p := range parts {
		byName[p.Name] = p
	}
	if p := byName["pLac"]; p.Kind != circuit.Promoter || p.Sequence != "TTTACA" {
		t.Errorf("pLac = %+v", p)
	}
	if p := byName["gfp"]; p.Kind != circuit.Gene || p.Sequence != "ATGCCC" {
		t.Errorf("gfp = %+v, want the reverse strand read back", p)
	}

	if _, err := ReadGenBankParts(strings.NewReader("LOCUS x\nFEATURES\n")); err == nil {
		t.Error("ReadGenBankParts() accepted a file without ORIGIN")
	}
}

func TestWriteGFF(t *testing.T) {
	rec := Assemble("reporter", reporter(), nil)

	var buf bytes.Buffer
	if err := WriteGFF(&buf, rec); err != nil {
		t.Fatal(err)
	}

	var features []string
	for _, line := range strings.Split(buf.String(), "\n") {
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		cols := strings.Split(line, "\t")
		if len(cols) < 8 {
			t.Fatalf("short gff line %q", line)
		}
		if cols[0] != "reporter" || cols[1] != "genesim" {
			t.Errorf("gff line %q", line)
		}
		features = append(features, cols[2])
	}
	if len(features) != 5 {
		t.Errorf("wrote %d gff features, want 5: %v", len(features), features)
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "toggle", "toggle"},
		{"spaces", "my  toggle switch", "my_toggle_switch"},
		{"unsafe", `a<b>c:d"e/f\g|h?i*j`, "a_b_c_d_e_f_g_h_i_j"},
		{"control", "tab\there\x01", "tab_here"},
		{"trimmed", "  .hidden. ", "hidden"},
		{"empty", "", "untitled"},
		{"only unsafe", "<>?", "untitled"},
		{"bounded", strings.Repeat("x", 100), strings.Repeat("x", MaxFilenameLength)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeFilename(tt.in); got != tt.want {
				t.Errorf("SanitizeFilename(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"fa": FASTA, ".gbk": GenBank, "GenBank": GenBank, "gff3": GFF} {
		if got, err := ParseFormat(in); err != nil || got != want {
			t.Errorf("ParseFormat(%q) = %v, %v, want %v", in, got, err, want)
		}
	}
	if _, err := ParseFormat("sbol"); err == nil {
		t.Error("ParseFormat(sbol) succeeded")
	}
}

func multiCell() *circuit.File {
	f := circuit.NewFile("project", 100, date)
	f.Plasmids = []circuit.Plasmid{
		{ID: "p1", Name: "sensor", DNALength: 50},
		{ID: "p2", Name: "reporter", DNALength: 80},
		{ID: "p3", Name: "sensor", DNALength: 60},
	}
	f.Cells = []circuit.Cell{
		{ID: "c1", Name: "cell/A", PlasmidIDs: []string{"p1", "p2", "p3"}},
		{ID: "c2", Name: "cell:A", PlasmidIDs: []string{"p2"}},
		{ID: "c3", Name: "empty"},
	}
	return f
}

func zipNames(t *testing.T, b []byte) []string {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(b), int64(len(b)))
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	sort.Strings(names)
	return names
}

func TestWriteZip(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteZip(&buf, multiCell(), Selection{}, GenBank, Options{Date: date}); err != nil {
		t.Fatal(err)
	}

	want := []string{
		"cell_A/reporter.gb",
		"cell_A/sensor.gb",
		"cell_A/sensor_2.gb",
		"cell_A_2/reporter.gb",
	}
	if got := zipNames(t, buf.Bytes()); strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("zip entries = %v, want %v", got, want)
	}
}

func TestWriteZip_selection(t *testing.T) {
	var buf bytes.Buffer
	sel := Selection{Cells: []string{"c2"}}
	if err := WriteZip(&buf, multiCell(), sel, FASTA, Options{Date: date}); err != nil {
		t.Fatal(err)
	}

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatal(err)
	}
	if len(zr.File) != 1 || zr.File[0].Name != "cell_A/reporter.fasta" {
		t.Fatalf("zip entries = %v", zipNames(t, buf.Bytes()))
	}

	rc, err := zr.File[0].Open()
	if err != nil {
		t.Fatal(err)
	}
	defer rc.Close()
	body, _ := io.ReadAll(rc)
	if !strings.HasPrefix(string(body), ">reporter 80 bp\n") {
		t.Errorf("fasta entry = %q", body)
	}

	err = WriteZip(io.Discard, multiCell(), Selection{Plasmids: []string{"missing"}}, FASTA, Options{})
	if !errors.Is(err, ErrNothingSelected) {
		t.Errorf("WriteZip() error = %v, want %v", err, ErrNothingSelected)
	}
}

func TestWriteZip_singlePlasmid(t *testing.T) {
	f := circuit.NewFile("my toggle", 50, date)

	var buf bytes.Buffer
	if err := WriteZip(&buf, f, Selection{}, GFF, Options{Date: date}); err != nil {
		t.Fatal(err)
	}
	if got := zipNames(t, buf.Bytes()); len(got) != 1 || got[0] != "my_toggle/my_toggle.gff" {
		t.Errorf("zip entries = %v", got)
	}
}
