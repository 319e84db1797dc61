package solver

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrStreamEnded is the protocol failure of a stream that closed without a result
	ErrStreamEnded = errors.New("stream ended before result")

	// ErrUnreachable is wrapped by a TransportError once every endpoint has failed
	ErrUnreachable = errors.New("solver unreachable")
)

// Hint is the remediation shown with transport errors
const Hint = "start the solver backend on port 8000, or point GENESIM_SOLVER_PROXY / GENESIM_SOLVER_HOST at a running one"

// TransportError is returned when no endpoint could be reached. It lists what was tried.
type TransportError struct {
	// Attempts are the endpoints tried, in order, with the reason each was abandoned
	Attempts []Attempt
	Hint     string
}

// Attempt is one abandoned endpoint
type Attempt struct {
	Endpoint string
	Err      error
}

func (e *TransportError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s after %d endpoints", ErrUnreachable, len(e.Attempts))
	for _, a := range e.Attempts {
		fmt.Fprintf(&b, "\n  %s: %v", a.Endpoint, a.Err)
	}
	if e.Hint != "" {
		b.WriteString("\n" + e.Hint)
	}
	return b.String()
}

func (e *TransportError) Unwrap() error {
	return ErrUnreachable
}

// ProtocolError ends a simulation attempt that reached the solver: a malformed event,
// an early end of stream or an error event from the solver
type ProtocolError struct {
	// Reason is shown to the user, for error events it is the solver's message
	Reason string
	Err    error
}

func (e *ProtocolError) Error() string {
	if e.Err != nil && e.Reason == "" {
		return "solver protocol error: " + e.Err.Error()
	}
	if e.Err != nil {
		return fmt.Sprintf("solver protocol error: %s: %v", e.Reason, e.Err)
	}
	return "simulation failed: " + e.Reason
}

func (e *ProtocolError) Unwrap() error {
	return e.Err
}

// ServerError is a non-2xx answer from a reachable solver
type ServerError struct {
	Endpoint string
	Status   int
	Body     string
}

func (e *ServerError) Error() string {
	body := strings.TrimSpace(e.Body)
	if body == "" {
		return fmt.Sprintf("solver at %s answered %d", e.Endpoint, e.Status)
	}
	return fmt.Sprintf("solver at %s answered %d: %s", e.Endpoint, e.Status, body)
}
