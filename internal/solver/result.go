package solver

import (
	"encoding/json"
	"fmt"
)

// TimeSeries is one trajectory sampled at the result's Time points
type TimeSeries struct {
	ID     string    `json:"id"`
	Label  string    `json:"label"`
	Values []float64 `json:"values"`
}

// Last is the final value, 0 for an empty series
func (s TimeSeries) Last() float64 {
	if len(s.Values) == 0 {
		return 0
	}
	return s.Values[len(s.Values)-1]
}

// TranscriptResult holds the trajectories of one transcript
type TranscriptResult struct {
	ID             string       `json:"id"`
	PromoterName   string       `json:"promoterName"`
	TerminatorName string       `json:"terminatorName,omitempty"`
	MRNA           TimeSeries   `json:"mRNA"`
	MRNAs          []TimeSeries `json:"mRNAs,omitempty"`
	Proteins       []TimeSeries `json:"proteins"`
}

// SummaryRow is the final state of one transcript
type SummaryRow struct {
	TranscriptID  string    `json:"transcriptId"`
	PromoterName  string    `json:"promoterName"`
	CistronCount  int       `json:"cistronCount"`
	FinalMRNA     float64   `json:"final_mRNA"`
	FinalProteins []float64 `json:"final_proteins"`
}

// FlowProtein is the per-cell distribution of one protein
type FlowProtein struct {
	Label  string    `json:"label"`
	Values []float64 `json:"values"`
}

// FlowCytometry is the output of a flow simulation
type FlowCytometry struct {
	Runs     int           `json:"runs"`
	Proteins []FlowProtein `json:"proteins"`
}

// InducerSeries is an inducer's concentration at the result's Time points
type InducerSeries struct {
	Name   string    `json:"name"`
	Values []float64 `json:"values"`
}

// Result is a finished simulation
type Result struct {
	Time          []float64          `json:"time"`
	Transcripts   []TranscriptResult `json:"transcripts"`
	Summary       []SummaryRow       `json:"summary"`
	FlowCytometry *FlowCytometry     `json:"flowCytometry,omitempty"`
	Inducers      []InducerSeries    `json:"inducers,omitempty"`
}

// DecodeResult decodes a result payload
func DecodeResult(raw json.RawMessage) (*Result, error) {
	var r Result
	if err := json.Unmarshal(raw, &r); err != nil {
		return nil, &ProtocolError{Reason: "failed to decode result", Err: err}
	}
	if r.FlowCytometry == nil && len(r.Time) == 0 && len(r.Transcripts) > 0 {
		return nil, &ProtocolError{Reason: fmt.Sprintf("result has %d transcripts and no time points", len(r.Transcripts))}
	}
	return &r, nil
}

// Proteins lists every protein trajectory across transcripts, in transcript order
func (r *Result) Proteins() []TimeSeries {
	var out []TimeSeries
	for _, t := range r.Transcripts {
		out = append(out, t.Proteins...)
	}
	return out
}

// Flow is whether the result is a flow cytometry distribution
func (r *Result) Flow() bool {
	return r.FlowCytometry != nil
}
