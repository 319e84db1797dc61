// Package store persists circuits, backbones and the working draft.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/HarrisKClark/Genesim-sub001/internal/circuit"
)

var (
	// ErrNotFound is returned for ids and names with no record
	ErrNotFound = errors.New("not found")

	// ErrPresetReadOnly is returned when deleting or overwriting a built-in backbone
	ErrPresetReadOnly = errors.New("built-in backbone presets are read-only")
)

// DraftID is the id of the working draft row. It never shows up in listings.
const DraftID = "__draft__"

// CircuitSummary is a listing row
type CircuitSummary struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	DNALength  int       `json:"dnaLength"`
	Components int       `json:"components"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Backbone is a named, saved backbone spec
type Backbone struct {
	ID        string               `json:"id"`
	Name      string               `json:"name"`
	Spec      circuit.BackboneSpec `json:"spec"`
	Preset    bool                 `json:"preset,omitempty"`
	CreatedAt time.Time            `json:"createdAt"`
	UpdatedAt time.Time            `json:"updatedAt"`
}

// Label is the formatted backbone label
func (b Backbone) Label() string {
	return circuit.FormatBackboneLabel(b.Spec)
}

// Store defines circuit and backbone persistence.
type Store interface {
	// SaveCircuit creates or replaces a circuit. Invalid circuits are refused.
	SaveCircuit(ctx context.Context, f *circuit.File) (*circuit.File, error)

	// GetCircuit loads a circuit by id, or by name for the most recently updated match.
	GetCircuit(ctx context.Context, key string) (*circuit.File, error)

	// ListCircuits lists saved circuits, most recently updated first.
	ListCircuits(ctx context.Context) ([]CircuitSummary, error)

	// DeleteCircuit removes a circuit by id.
	DeleteCircuit(ctx context.Context, id string) error

	// SaveDraft replaces the working draft, valid or not.
	SaveDraft(ctx context.Context, f *circuit.File) error

	// LoadDraft returns the working draft, ErrNotFound if there is none.
	LoadDraft(ctx context.Context) (*circuit.File, error)

	// ClearDraft removes the working draft.
	ClearDraft(ctx context.Context) error

	// SaveBackbone clamps, validates and saves a backbone.
	SaveBackbone(ctx context.Context, b Backbone) (*Backbone, error)

	// GetBackbone finds a preset or saved backbone by id or name.
	GetBackbone(ctx context.Context, key string) (*Backbone, error)

	// ListBackbones lists the presets, then saved backbones most recently updated first.
	ListBackbones(ctx context.Context) ([]Backbone, error)

	// DeleteBackbone removes a saved backbone. Presets are refused.
	DeleteBackbone(ctx context.Context, id string) error

	// Close releases the underlying database.
	Close() error
}

// Presets are the built-in backbones
var Presets = []Backbone{
	{
		ID:     "preset-puc",
		Name:   "pUC high copy",
		Spec:   circuit.BackboneSpec{CopyNumber: 500, OriginName: "pUC", Resistances: []circuit.Resistance{{Code: "Amp", Name: "Ampicillin"}}},
		Preset: true,
	},
	{
		ID:     "preset-cole1",
		Name:   "ColE1 medium copy",
		Spec:   circuit.BackboneSpec{CopyNumber: 20, OriginName: "ColE1", Resistances: []circuit.Resistance{{Code: "Amp", Name: "Ampicillin"}}},
		Preset: true,
	},
	{
		ID:     "preset-p15a",
		Name:   "p15A low copy",
		Spec:   circuit.BackboneSpec{CopyNumber: 15, OriginName: "p15A", Resistances: []circuit.Resistance{{Code: "Cm", Name: "Chloramphenicol"}}},
		Preset: true,
	},
	{
		ID:     "preset-psc101",
		Name:   "pSC101 single copy",
		Spec:   circuit.BackboneSpec{CopyNumber: 5, OriginName: "pSC101", Resistances: []circuit.Resistance{{Code: "Kan", Name: "Kanamycin"}}},
		Preset: true,
	},
}

func preset(key string) (Backbone, bool) {
	for _, p := range Presets {
		if p.ID == key || p.Name == key {
			return p, true
		}
	}
	return Backbone{}, false
}
