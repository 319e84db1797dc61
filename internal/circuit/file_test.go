package circuit

import (
	"bytes"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"
)

func TestFile_roundTrip(t *testing.T) {
	created := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	strength := 0.8

	f := NewFile("toggle", 2000, created)
	f.Components = []Component{
		Component{ID: "c1", Kind: Promoter, Name: "pLac", Length: 50, PromoterKinetics: &PromoterKinetics{Strength: 2, Inhibitor: "TetR"}}.At(0),
		Component{ID: "c2", Kind: RBS, Name: "B0034", Length: 12, TranslationKinetics: &TranslationKinetics{RBSStrength: &strength}}.At(50),
		Component{ID: "c3", Kind: Gene, Name: "GFP", Sequence: "ATGCGTAAAGGAGAAGAA"}.At(62),
		Component{ID: "c4", Kind: Terminator, Name: "B0015", Length: 80, Strand: -1}.At(80),
		Component{ID: "c5", Kind: Other, Name: "spare", Length: 30},
	}
	f.Backbone = &BackboneSpec{CopyNumber: 20, OriginName: "pUC", Resistances: []Resistance{{"Amp", "Ampicillin"}}}

	var buf bytes.Buffer
	if err := f.Encode(&buf); err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	got, err := Decode(&buf)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if !reflect.DeepEqual(got.Components, f.Components) {
		t.Errorf("components changed in a round trip:\n got %+v\nwant %+v", got.Components, f.Components)
	}
	if !reflect.DeepEqual(got.Backbone, f.Backbone) {
		t.Errorf("Backbone = %+v, want %+v", got.Backbone, f.Backbone)
	}
	if got.ID != f.ID || !got.CreatedAt.Equal(created) {
		t.Errorf("Decode() changed id or timestamps: %s %v", got.ID, got.CreatedAt)
	}
}

func TestImport(t *testing.T) {
	doc := `{
		"version": 1,
		"id": "old-id",
		"name": "imported",
		"dnaLength": 500,
		"components": [
			{"type": "promoter", "name": "pTet", "position": 0, "length": 50, "inhibitorName": "TetR"},
			{"type": "CDS", "name": "mCherry", "position": 60, "length": 100}
		]
	}`
	now := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

	got, err := Import(strings.NewReader(doc), now)
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if got.ID == "old-id" || got.ID == "" {
		t.Errorf("Import() kept id %q", got.ID)
	}
	if !got.CreatedAt.Equal(now) || !got.UpdatedAt.Equal(now) {
		t.Errorf("Import() timestamps = %v %v, want %v", got.CreatedAt, got.UpdatedAt, now)
	}
	if len(got.Components) != 2 || got.Components[1].Kind != Gene || got.Components[0].Inhibitor != "TetR" {
		t.Errorf("Import() components = %+v", got.Components)
	}
}

func TestDecode_rejects(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantErr error
	}{
		{"no version", `{"components": []}`, ErrVersion},
		{"wrong version", `{"version": 2, "components": []}`, ErrVersion},
		{"no components", `{"version": 1, "name": "x"}`, ErrNoComponents},
		{"null components", `{"version": 1, "components": null}`, ErrNoComponents},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(tt.doc))
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Decode() error = %v, want %v", err, tt.wantErr)
			}
		})
	}

	if _, err := Decode(strings.NewReader("not json")); err == nil {
		t.Error("Decode() accepted malformed json")
	}
}

func TestFile_AllPlasmids(t *testing.T) {
	f := NewFile("single", 100, time.Now())
	if ps := f.AllPlasmids(); len(ps) != 1 || ps[0].DNALength != 100 {
		t.Errorf("AllPlasmids() = %+v, want the main strand", ps)
	}

	f.Plasmids = []Plasmid{{ID: "a", Name: "reporter", DNALength: 300}, {ID: "b", Name: "sensor", DNALength: 400}}
	if p, ok := f.Plasmid("sensor"); !ok || p.ID != "b" {
		t.Errorf("Plasmid(sensor) = %+v, %v", p, ok)
	}
	if _, ok := f.Plasmid("missing"); ok {
		t.Error("Plasmid(missing) found a plasmid")
	}
}
