// Package solver talks to the remote kinetic solver: it posts transcripts, falls
// back across candidate endpoints and consumes the newline delimited event stream.
package solver

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// EventType tags a stream event
type EventType string

const (
	// Progress is advisory, 0 to 1
	Progress EventType = "progress"

	// ResultEvent is terminal and carries the output
	ResultEvent EventType = "result"

	// ErrorEvent is terminal and carries the failure reason
	ErrorEvent EventType = "error"
)

// Event is one decoded line of the stream
type Event struct {
	Type     EventType
	Progress float64
	Result   json.RawMessage
	Message  string
}

// Terminal is whether the event ends the stream
func (e Event) Terminal() bool {
	return e.Type == ResultEvent || e.Type == ErrorEvent
}

// wireEvent accepts both payload spellings: "value" and "data" for results,
// "value", "message" and "error" for errors
type wireEvent struct {
	Type    EventType       `json:"type"`
	Value   json.RawMessage `json:"value"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
}

// present is whether a raw field was sent with a non-null value
func present(raw json.RawMessage) bool {
	return len(raw) > 0 && !bytes.Equal(raw, []byte("null"))
}

// ParseEvent decodes one line. A "data:" prefix, as server-sent events carry, is
// stripped. Unknown event types decode without error and are not terminal.
func ParseEvent(line []byte) (Event, error) {
	line = bytes.TrimSpace(line)
	line = bytes.TrimSpace(bytes.TrimPrefix(line, []byte("data:")))

	var w wireEvent
	if err := json.Unmarshal(line, &w); err != nil {
		return Event{}, fmt.Errorf("failed to parse event %q: %w", truncate(line, 80), err)
	}

	e := Event{Type: w.Type}
	switch w.Type {
	case Progress:
		if present(w.Value) {
			if err := json.Unmarshal(w.Value, &e.Progress); err != nil {
				return Event{}, fmt.Errorf("failed to parse progress value: %w", err)
			}
		}
	case ResultEvent:
		switch {
		case present(w.Value):
			e.Result = w.Value
		case present(w.Data):
			e.Result = w.Data
		default:
			return Event{}, fmt.Errorf("failed to parse result event: no payload")
		}
	case ErrorEvent:
		e.Message = errorText(w)
	}

	return e, nil
}

// errorText is the first message the solver sent, or a generic one
func errorText(w wireEvent) string {
	if present(w.Value) {
		var s string
		if err := json.Unmarshal(w.Value, &s); err == nil && s != "" {
			return s
		}
		return string(w.Value)
	}
	if w.Message != "" {
		return w.Message
	}
	if w.Error != "" {
		return w.Error
	}
	return "the solver reported an error without a message"
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
