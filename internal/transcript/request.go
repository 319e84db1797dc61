package transcript

import (
	"github.com/HarrisKClark/Genesim-sub001/internal/circuit"
)

// Request is the body of a transcript simulation
type Request struct {
	Transcripts []Transcript `json:"transcripts"`
	Params      Params       `json:"params"`
}

// NewRequest builds a solver request from a validation report. It refuses invalid
// circuits, bad params and circuits with nothing to simulate, so nothing is sent
// to the solver that it would reject.
func NewRequest(report circuit.Report, params Params) (*Request, error) {
	if err := report.Err(); err != nil {
		return nil, err
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}

	transcripts := Build(report.Operons)
	if len(transcripts) == 0 {
		return nil, ErrNoTranscripts
	}

	return &Request{Transcripts: transcripts, Params: params}, nil
}
