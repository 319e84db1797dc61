package solver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"sync/atomic"
	"testing"

	"github.com/HarrisKClark/Genesim-sub001/internal/transcript"
)

const okStream = `{"type":"progress","value":0.5}` + "\n" +
	`{"type":"result","value":{"time":[0,1],"transcripts":[{"id":"operon-1","promoterName":"p","mRNA":{"id":"operon-1:mRNA","label":"p total mRNA","values":[0,1]},"proteins":[{"id":"operon-1:cistron-1","label":"GFP","values":[0,2]}]}],"summary":[]}}` + "\n"

func request() *transcript.Request {
	return &transcript.Request{
		Transcripts: []transcript.Transcript{{ID: "operon-1", PromoterName: "p", Cistrons: []transcript.Cistron{{ID: "operon-1:cistron-1", GeneName: "GFP"}}}},
		Params:      transcript.DefaultParams(),
	}
}

// hostPort splits a test server URL for Config.Host and Config.Port
func hostPort(t *testing.T, raw string) (string, int) {
	t.Helper()
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatal(err)
	}
	host, port, err := net.SplitHostPort(u.Host)
	if err != nil {
		t.Fatal(err)
	}
	p, _ := strconv.Atoi(port)
	return host, p
}

// deadURL is the address of a server that has been shut down
func deadURL() string {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	return srv.URL
}

// noFallbacks keeps tests off anything listening on port 8000
func noFallbacks(t *testing.T) {
	saved := Fallbacks
	Fallbacks = []string{deadURL() + "/api"}
	t.Cleanup(func() { Fallbacks = saved })
}

func streamServer(t *testing.T, hits *int32, status int, body string) *httptest.Server {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(hits, 1)
		if r.URL.Path != "/api/simulate/transcripts/stream" || r.Method != http.MethodPost {
			http.NotFound(w, r)
			return
		}
		if r.Header.Get(RequestIDHeader) == "" {
			t.Errorf("request has no %s", RequestIDHeader)
		}
		io.Copy(io.Discard, r.Body)
		w.WriteHeader(status)
		io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestCandidates(t *testing.T) {
	got := Candidates("http://localhost:5173/api/", "localhost", 8000)
	want := []string{"http://localhost:5173/api", "http://localhost:8000/api", "http://127.0.0.1:8000/api"}
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Errorf("Candidates() = %v, want %v", got, want)
	}

	got = Candidates("", "", 0)
	if fmt.Sprint(got) != fmt.Sprint(Fallbacks) {
		t.Errorf("Candidates() = %v, want the fallbacks", got)
	}
}

func TestClient_Simulate(t *testing.T) {
	noFallbacks(t)
	var hits int32
	srv := streamServer(t, &hits, http.StatusOK, okStream)

	c := New(Config{Proxy: srv.URL + "/api"})
	var progress []float64
	res, err := c.Simulate(context.Background(), request(), func(v float64) { progress = append(progress, v) })
	if err != nil {
		t.Fatalf("Simulate() error = %v", err)
	}
	if len(res.Time) != 2 || len(res.Proteins()) != 1 || res.Proteins()[0].Last() != 2 {
		t.Errorf("Simulate() = %+v", res)
	}
	if len(progress) != 1 {
		t.Errorf("progress = %v", progress)
	}
}

func TestClient_fallbackOnTransportFailure(t *testing.T) {
	noFallbacks(t)
	var hits int32
	srv := streamServer(t, &hits, http.StatusOK, okStream)
	host, port := hostPort(t, srv.URL)

	c := New(Config{Proxy: deadURL() + "/api", Host: host, Port: port})
	if _, err := c.Stream(context.Background(), request(), nil); err != nil {
		t.Fatalf("Stream() error = %v", err)
	}
	if atomic.LoadInt32(&hits) != 1 {
		t.Errorf("live endpoint hit %d times, want 1", hits)
	}
}

func TestClient_blank500(t *testing.T) {
	noFallbacks(t)

	tests := []struct {
		name         string
		proxyBody    string
		viaProxy     bool
		wantFallback bool
	}{
		{"blank 500 from the proxy falls back", "", true, true},
		{"500 with a body is a server error", "Internal Server Error", true, false},
		{"blank 500 from a non-proxy endpoint is a server error", "", false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var failing, live int32
			bad := streamServer(t, &failing, http.StatusInternalServerError, tt.proxyBody)
			good := streamServer(t, &live, http.StatusOK, okStream)

			var c *Client
			if tt.viaProxy {
				host, port := hostPort(t, good.URL)
				c = New(Config{Proxy: bad.URL + "/api", Host: host, Port: port})
			} else {
				host, port := hostPort(t, bad.URL)
				Fallbacks = []string{good.URL + "/api"}
				c = New(Config{Host: host, Port: port})
			}

			_, err := c.Stream(context.Background(), request(), nil)
			if tt.wantFallback {
				if err != nil || atomic.LoadInt32(&live) != 1 {
					t.Errorf("Stream() error = %v, live hits %d, want a fallback", err, live)
				}
				return
			}

			var serr *ServerError
			if !errors.As(err, &serr) || serr.Status != http.StatusInternalServerError {
				t.Errorf("Stream() error = %v, want a 500 ServerError", err)
			}
			if atomic.LoadInt32(&live) != 0 {
				t.Errorf("fell back to the next endpoint on a real server error")
			}
		})
	}
}

func TestClient_serverErrorNoFallback(t *testing.T) {
	noFallbacks(t)
	var bad, good int32
	badSrv := streamServer(t, &bad, http.StatusUnprocessableEntity, `{"detail":"runs must be >= 1"}`)
	goodSrv := streamServer(t, &good, http.StatusOK, okStream)
	host, port := hostPort(t, goodSrv.URL)

	c := New(Config{Proxy: badSrv.URL + "/api", Host: host, Port: port})
	_, err := c.Stream(context.Background(), request(), nil)

	var serr *ServerError
	if !errors.As(err, &serr) || serr.Status != http.StatusUnprocessableEntity {
		t.Errorf("Stream() error = %v, want a 422 ServerError", err)
	}
	if atomic.LoadInt32(&good) != 0 {
		t.Error("fell back after a 422")
	}
}

func TestClient_unreachable(t *testing.T) {
	noFallbacks(t)
	c := New(Config{Proxy: deadURL() + "/api", Host: "127.0.0.1", Port: 1})

	_, err := c.Stream(context.Background(), request(), nil)
	if !errors.Is(err, ErrUnreachable) {
		t.Fatalf("Stream() error = %v, want %v", err, ErrUnreachable)
	}
	var terr *TransportError
	if !errors.As(err, &terr) || len(terr.Attempts) != len(c.Endpoints()) || terr.Hint == "" {
		t.Errorf("TransportError = %+v", terr)
	}
}

func TestClient_Health(t *testing.T) {
	noFallbacks(t)
	healthy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/health" {
			http.NotFound(w, r)
			return
		}
		io.WriteString(w, `{"ok":true}`)
	}))
	defer healthy.Close()
	empty := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer empty.Close()

	host, port := hostPort(t, healthy.URL)
	c := New(Config{Proxy: empty.URL + "/api", Host: host, Port: port})

	got, err := c.Health(context.Background())
	if err != nil {
		t.Fatalf("Health() error = %v", err)
	}
	if got != healthy.URL+"/api" {
		t.Errorf("Health() = %s, want %s/api", got, healthy.URL)
	}
}
