package solver

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
)

// ProgressFunc receives advisory progress, 0 to 1
type ProgressFunc func(value float64)

// Consume reads newline delimited events from body until a terminal event. Lines
// are buffered across reads and each is parsed once. On a result or error event
// the body is closed without reading further. Cancelling ctx closes the body.
func Consume(ctx context.Context, body io.ReadCloser, onProgress ProgressFunc, log *slog.Logger) (json.RawMessage, error) {
	if log == nil {
		log = slog.Default()
	}
	defer body.Close()

	stop := context.AfterFunc(ctx, func() { body.Close() })
	defer stop()

	r := bufio.NewReader(body)
	for {
		line, err := r.ReadBytes('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			return nil, &ProtocolError{Reason: "failed to read stream", Err: err}
		}
		eof := err != nil

		if len(bytes.TrimSpace(line)) > 0 {
			e, perr := ParseEvent(line)
			if perr != nil {
				return nil, &ProtocolError{Err: perr}
			}

			switch e.Type {
			case Progress:
				if onProgress != nil {
					onProgress(e.Progress)
				}
			case ResultEvent:
				log.Debug("solver stream finished", "bytes", len(e.Result))
				return e.Result, nil
			case ErrorEvent:
				return nil, &ProtocolError{Reason: e.Message}
			default:
				log.Debug("skipping unknown solver event", "type", e.Type)
			}
		}

		if eof {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			return nil, &ProtocolError{Err: ErrStreamEnded}
		}
	}
}
