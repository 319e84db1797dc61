package store

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/HarrisKClark/Genesim-sub001/internal/circuit"
)

// recorder is a DraftSaver that keeps every write
type recorder struct {
	mu     sync.Mutex
	names  []string
	failed bool
}

func (r *recorder) SaveDraft(_ context.Context, f *circuit.File) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failed {
		return errors.New("disk full")
	}
	r.names = append(r.names, f.Name)
	return nil
}

func (r *recorder) written() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.names...)
}

func named(name string) *circuit.File {
	return &circuit.File{Name: name}
}

func TestAutosaver_coalesces(t *testing.T) {
	rec := &recorder{}
	a := NewAutosaver(rec, 30*time.Millisecond, 0, nil)
	defer a.Close()

	for _, name := range []string{"a", "b", "c", "d"} {
		a.Schedule(named(name))
		time.Sleep(5 * time.Millisecond)
	}

	deadline := time.Now().Add(2 * time.Second)
	for len(rec.written()) == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	time.Sleep(60 * time.Millisecond)

	if got := rec.written(); len(got) != 1 || got[0] != "d" {
		t.Errorf("writes = %v, want only the latest state [d]", got)
	}
}

func TestAutosaver_closeCancels(t *testing.T) {
	rec := &recorder{}
	a := NewAutosaver(rec, 20*time.Millisecond, 0, nil)

	a.Schedule(named("pending"))
	a.Close()
	a.Schedule(named("after close"))

	time.Sleep(80 * time.Millisecond)
	if got := rec.written(); len(got) != 0 {
		t.Errorf("writes after Close = %v, want none", got)
	}
}

func TestAutosaver_flush(t *testing.T) {
	rec := &recorder{}
	a := NewAutosaver(rec, time.Hour, 0, nil)
	defer a.Close()

	a.Schedule(named("now"))
	if err := a.Flush(context.Background()); err != nil {
		t.Fatal(err)
	}
	if got := rec.written(); len(got) != 1 || got[0] != "now" {
		t.Errorf("writes = %v, want [now]", got)
	}
	if err := a.Flush(context.Background()); err != nil || len(rec.written()) != 1 {
		t.Errorf("second flush wrote again")
	}

	rec.failed = true
	a.Schedule(named("lost"))
	if err := a.Flush(context.Background()); err == nil || a.Err() == nil {
		t.Errorf("Flush() error = %v, want the save failure", err)
	}
}

func TestAutosaver_rateCap(t *testing.T) {
	rec := &recorder{}
	a := NewAutosaver(rec, time.Millisecond, 200*time.Millisecond, nil)
	defer a.Close()

	a.Schedule(named("one"))
	time.Sleep(30 * time.Millisecond)
	a.Schedule(named("two"))
	time.Sleep(30 * time.Millisecond)

	if got := rec.written(); len(got) != 1 {
		t.Errorf("writes inside the interval = %v, want one", got)
	}

	deadline := time.Now().Add(2 * time.Second)
	for len(rec.written()) < 2 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if got := rec.written(); len(got) != 2 || got[1] != "two" {
		t.Errorf("writes = %v, want [one two]", got)
	}
}

func TestAutosaver_withStore(t *testing.T) {
	s := newTestStore(t)
	a := NewAutosaver(s, time.Hour, 0, nil)
	defer a.Close()

	a.Schedule(validFile("session"))
	if err := a.Flush(context.Background()); err != nil {
		t.Fatal(err)
	}
	draft, err := s.LoadDraft(context.Background())
	if err != nil || draft.Name != "session" {
		t.Errorf("draft = %+v, %v", draft, err)
	}
	if a.Saves() != 1 {
		t.Errorf("Saves() = %d, want 1", a.Saves())
	}
}
