package circuit

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
)

// FileVersion is the only circuit file version this package reads or writes
const FileVersion = 1

// ErrVersion is returned for circuit files with a missing or unknown version
var ErrVersion = errors.New("unsupported circuit file version")

// ErrNoComponents is returned for circuit files without a component list
var ErrNoComponents = errors.New("circuit file has no component list")

// Plasmid is one construct in a multi-plasmid project
type Plasmid struct {
	ID         string        `json:"id"`
	Name       string        `json:"name"`
	DNALength  int           `json:"dnaLength"`
	Circular   bool          `json:"circular,omitempty"`
	Components []Component   `json:"components"`
	Backbone   *BackboneSpec `json:"backbone,omitempty"`
}

// Circuit is the plasmid's strand
func (p Plasmid) Circuit() *Circuit {
	return &Circuit{Length: p.DNALength, Circular: p.Circular, Components: p.Components}
}

// Cell groups the plasmids carried by one cell
type Cell struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	PlasmidIDs []string `json:"plasmidIds"`
}

// CustomPart is a user defined part kept with the circuit so it can be placed again
type CustomPart struct {
	ID          string `json:"id"`
	Kind        Kind   `json:"type"`
	Name        string `json:"name"`
	Sequence    string `json:"sequence,omitempty"`
	Length      int    `json:"length,omitempty"`
	Description string `json:"description,omitempty"`
}

// Component turns the custom part into an unplaced component
func (p CustomPart) Component() Component {
	return Component{Kind: p.Kind, Name: p.Name, Sequence: p.Sequence, Length: p.Length, Notes: p.Description}
}

// File is the persisted, versioned circuit document
type File struct {
	Version   int       `json:"version"`
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	// DNALength of the main strand in bp
	DNALength int  `json:"dnaLength"`
	Circular  bool `json:"circular,omitempty"`

	// Components on the main strand, in declaration order
	Components []Component `json:"components"`

	Plasmids    []Plasmid     `json:"plasmids,omitempty"`
	Cells       []Cell        `json:"cells,omitempty"`
	Backbone    *BackboneSpec `json:"backbone,omitempty"`
	CustomParts []CustomPart  `json:"customParts,omitempty"`
}

// Circuit is the file's main strand
func (f *File) Circuit() *Circuit {
	return &Circuit{Length: f.DNALength, Circular: f.Circular, Components: f.Components}
}

// AllPlasmids is the file's plasmids, or the main strand as a single plasmid
func (f *File) AllPlasmids() []Plasmid {
	if len(f.Plasmids) > 0 {
		return f.Plasmids
	}
	return []Plasmid{{
		ID:         f.ID,
		Name:       f.Name,
		DNALength:  f.DNALength,
		Circular:   f.Circular,
		Components: f.Components,
		Backbone:   f.Backbone,
	}}
}

// Plasmid finds a plasmid by id or name
func (f *File) Plasmid(key string) (Plasmid, bool) {
	for _, p := range f.AllPlasmids() {
		if p.ID == key || p.Name == key {
			return p, true
		}
	}
	return Plasmid{}, false
}

// header is the part of a document checked before it is decoded in full
type header struct {
	Version    *int            `json:"version"`
	Components json.RawMessage `json:"components"`
}

// Decode reads a circuit file, rejecting a missing or mismatched version and a
// missing component list. Ids and timestamps are kept as they are.
func Decode(r io.Reader) (*File, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read circuit file: %w", err)
	}

	var h header
	if err := json.Unmarshal(data, &h); err != nil {
		return nil, fmt.Errorf("failed to parse circuit file: %w", err)
	}
	if h.Version == nil {
		return nil, fmt.Errorf("%w: no version", ErrVersion)
	}
	if *h.Version != FileVersion {
		return nil, fmt.Errorf("%w: %d", ErrVersion, *h.Version)
	}
	if len(h.Components) == 0 || bytes.Equal(bytes.TrimSpace(h.Components), []byte("null")) {
		return nil, ErrNoComponents
	}

	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse circuit file: %w", err)
	}
	return &f, nil
}

// Import decodes a circuit file and gives it a new id and timestamps
func Import(r io.Reader, now time.Time) (*File, error) {
	f, err := Decode(r)
	if err != nil {
		return nil, err
	}

	f.ID = uuid.NewString()
	f.CreatedAt = now.UTC()
	f.UpdatedAt = now.UTC()
	return f, nil
}

// Encode writes the file as indented JSON, stamping the current version
func (f *File) Encode(w io.Writer) error {
	f.Version = FileVersion
	if f.Components == nil {
		f.Components = []Component{}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(f); err != nil {
		return fmt.Errorf("failed to serialize circuit file: %w", err)
	}
	return nil
}

// NewFile starts an empty circuit on a strand of the given length
func NewFile(name string, length int, now time.Time) *File {
	return &File{
		Version:    FileVersion,
		ID:         uuid.NewString(),
		Name:       name,
		CreatedAt:  now.UTC(),
		UpdatedAt:  now.UTC(),
		DNALength:  length,
		Components: []Component{},
	}
}
