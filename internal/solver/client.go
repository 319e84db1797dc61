package solver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/HarrisKClark/Genesim-sub001/internal/transcript"
)

// Fallbacks are tried after the configured endpoints
var Fallbacks = []string{"http://localhost:8000/api", "http://127.0.0.1:8000/api"}

// DefaultProxy is the proxy path of a local development setup
const DefaultProxy = "http://localhost:5173/api"

// RequestIDHeader carries a per-request id the solver can log
const RequestIDHeader = "X-Request-Id"

const (
	streamPath = "/simulate/transcripts/stream"
	healthPath = "/health"

	// maxErrorBody bounds how much of a failed response is kept
	maxErrorBody = 4096
)

// Config locates the solver
type Config struct {
	// Proxy is the primary endpoint, a base URL ending in /api
	Proxy string

	// Host and Port build the second endpoint, http://{Host}:{Port}/api
	Host string
	Port int

	// Timeout bounds each health probe. Simulations are bounded by their context
	Timeout time.Duration

	HTTPClient *http.Client
	Logger     *slog.Logger
}

// Candidates lists the base URLs to try, in order and without repeats: the proxy,
// the configured host and port, then the Fallbacks
func Candidates(proxy, host string, port int) []string {
	var all []string
	if proxy != "" {
		all = append(all, proxy)
	}
	if host != "" {
		if port > 0 {
			all = append(all, fmt.Sprintf("http://%s:%d/api", host, port))
		} else {
			all = append(all, fmt.Sprintf("http://%s/api", host))
		}
	}
	all = append(all, Fallbacks...)

	seen := make(map[string]bool)
	var out []string
	for _, c := range all {
		c = strings.TrimRight(c, "/")
		if !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	return out
}

// Client posts simulations to the first reachable solver endpoint
type Client struct {
	endpoints []string

	// proxy is the primary proxy path, "" if none is configured
	proxy   string
	timeout time.Duration
	http    *http.Client
	log     *slog.Logger
}

// New creates a client for the configured candidates
func New(cfg Config) *Client {
	c := &Client{
		endpoints: Candidates(cfg.Proxy, cfg.Host, cfg.Port),
		proxy:     strings.TrimRight(cfg.Proxy, "/"),
		timeout:   cfg.Timeout,
		http:      cfg.HTTPClient,
		log:       cfg.Logger,
	}
	if c.http == nil {
		c.http = http.DefaultClient
	}
	if c.log == nil {
		c.log = slog.Default()
	}
	if c.timeout <= 0 {
		c.timeout = 5 * time.Second
	}
	return c
}

// Endpoints are the candidates in the order they are tried
func (c *Client) Endpoints() []string {
	return append([]string(nil), c.endpoints...)
}

// proxyUnreachable is the blank 500 a dev proxy answers with when the solver
// behind it is down. Only the primary proxy path gets this reading.
func (c *Client) proxyUnreachable(i int, endpoint string, resp *http.Response, body []byte) bool {
	return resp.StatusCode == http.StatusInternalServerError &&
		len(body) == 0 &&
		i == 0 &&
		c.proxy != "" &&
		endpoint == c.proxy
}

// Stream posts the request and consumes the event stream of the first endpoint
// that answers, returning the raw result payload. Endpoints are abandoned only
// on transport failure or a blank 500 from the primary proxy.
func (c *Client) Stream(ctx context.Context, req *transcript.Request, onProgress ProgressFunc) (json.RawMessage, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize simulation request: %w", err)
	}

	requestID := uuid.NewString()
	terr := &TransportError{Hint: Hint}
	for i, endpoint := range c.endpoints {
		log := c.log.With("endpoint", endpoint, "request_id", requestID)

		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint+streamPath, bytes.NewReader(payload))
		if err != nil {
			return nil, fmt.Errorf("failed to create request for %s: %w", endpoint, err)
		}
		httpReq.Header.Set("Content-Type", "application/json")
		httpReq.Header.Set("Accept", "application/x-ndjson")
		httpReq.Header.Set(RequestIDHeader, requestID)

		resp, err := c.http.Do(httpReq)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			log.Debug("solver endpoint unreachable", "error", err)
			terr.Attempts = append(terr.Attempts, Attempt{Endpoint: endpoint, Err: err})
			continue
		}

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
			resp.Body.Close()

			if c.proxyUnreachable(i, endpoint, resp, body) {
				log.Debug("blank 500 from proxy, trying the next endpoint")
				terr.Attempts = append(terr.Attempts, Attempt{Endpoint: endpoint, Err: fmt.Errorf("proxy answered 500 with an empty body")})
				continue
			}
			return nil, &ServerError{Endpoint: endpoint, Status: resp.StatusCode, Body: string(body)}
		}

		log.Info("streaming simulation", "transcripts", len(req.Transcripts), "method", req.Params.Method)
		return Consume(ctx, resp.Body, onProgress, log)
	}

	return nil, terr
}

// Simulate streams the request and decodes the result
func (c *Client) Simulate(ctx context.Context, req *transcript.Request, onProgress ProgressFunc) (*Result, error) {
	raw, err := c.Stream(ctx, req, onProgress)
	if err != nil {
		return nil, err
	}
	return DecodeResult(raw)
}

// Health returns the first endpoint whose health check answers 2xx with a body
func (c *Client) Health(ctx context.Context) (string, error) {
	terr := &TransportError{Hint: Hint}
	for _, endpoint := range c.endpoints {
		err := c.probe(ctx, endpoint)
		if err == nil {
			return endpoint, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		terr.Attempts = append(terr.Attempts, Attempt{Endpoint: endpoint, Err: err})
	}
	return "", terr
}

func (c *Client) probe(ctx context.Context, endpoint string) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+healthPath, nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("health check answered %d", resp.StatusCode)
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return fmt.Errorf("health check answered with an empty body")
	}
	return nil
}
