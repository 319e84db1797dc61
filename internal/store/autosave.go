package store

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/HarrisKClark/Genesim-sub001/internal/circuit"
)

// DraftSaver writes the working draft
type DraftSaver interface {
	SaveDraft(ctx context.Context, f *circuit.File) error
}

// Autosaver debounces draft writes: each Schedule restarts a quiet period and only
// the latest file is written when it ends. Writes are also capped to one per
// minInterval. Close cancels a pending write.
type Autosaver struct {
	saver   DraftSaver
	quiet   time.Duration
	limiter *rate.Limiter
	log     *slog.Logger

	mu      sync.Mutex
	timer   *time.Timer
	pending *circuit.File
	closed  bool
	lastErr error
	saves   int
}

// NewAutosaver creates an autosaver writing to saver
func NewAutosaver(saver DraftSaver, quiet, minInterval time.Duration, log *slog.Logger) *Autosaver {
	limit := rate.Inf
	if minInterval > 0 {
		limit = rate.Every(minInterval)
	}
	if log == nil {
		log = slog.Default()
	}
	return &Autosaver{
		saver:   saver,
		quiet:   quiet,
		limiter: rate.NewLimiter(limit, 1),
		log:     log,
	}
}

// Schedule queues f as the latest draft and restarts the quiet period. The
// autosaver keeps its own copy of the file and component list.
func (a *Autosaver) Schedule(f *circuit.File) {
	snapshot := *f
	snapshot.Components = append([]circuit.Component(nil), f.Components...)

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return
	}

	a.pending = &snapshot
	a.arm(a.quiet)
}

// arm restarts the timer, a.mu must be held
func (a *Autosaver) arm(d time.Duration) {
	if a.timer != nil {
		a.timer.Stop()
	}
	a.timer = time.AfterFunc(d, a.fire)
}

func (a *Autosaver) fire() {
	a.mu.Lock()
	if a.closed || a.pending == nil {
		a.mu.Unlock()
		return
	}

	res := a.limiter.Reserve()
	if d := res.Delay(); d > 0 {
		res.Cancel()
		a.arm(d)
		a.mu.Unlock()
		return
	}

	f := a.pending
	a.pending = nil
	a.mu.Unlock()

	a.write(context.Background(), f)
}

func (a *Autosaver) write(ctx context.Context, f *circuit.File) error {
	err := a.saver.SaveDraft(ctx, f)

	a.mu.Lock()
	a.lastErr = err
	if err == nil {
		a.saves++
	}
	a.mu.Unlock()

	if err != nil {
		a.log.Error("failed to autosave draft", "error", err)
		return err
	}
	a.log.Debug("autosaved draft", "name", f.Name, "components", len(f.Components))
	return nil
}

// Flush writes the pending draft now, if there is one
func (a *Autosaver) Flush(ctx context.Context) error {
	a.mu.Lock()
	if a.timer != nil {
		a.timer.Stop()
	}
	f := a.pending
	a.pending = nil
	a.mu.Unlock()

	if f == nil {
		return nil
	}
	return a.write(ctx, f)
}

// Close cancels any pending write. Later calls to Schedule are ignored.
func (a *Autosaver) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.closed = true
	a.pending = nil
	if a.timer != nil {
		a.timer.Stop()
	}
}

// Err is the result of the last write
func (a *Autosaver) Err() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.lastErr
}

// Saves counts successful writes
func (a *Autosaver) Saves() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.saves
}
