package fetch

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

const defaultUserAgent = "Mozilla/5.0 (compatible; faculty-tracker/1.0)"

type Config struct {
	UserAgent          string        // fixed identifying User-Agent
	Timeout            time.Duration // default per-request timeout, 10s if zero
	Delay              time.Duration // politeness delay between request starts; 0 = none
	InsecureSkipVerify bool          // only when explicitly requested
	MaxBodyBytes       int64         // 0 = 4MiB
}

// Response is a successful (2xx) HTTP response with its body fully read.
type Response struct {
	URL        string
	StatusCode int
	Body       []byte
}

// Client performs single-attempt GETs. It is read-only after construction and
// safe for concurrent use; the limiter is shared by every caller.
type Client struct {
	cfg     Config
	http    *http.Client
	limiter *rate.Limiter
	logger  *slog.Logger
}

func NewClient(cfg Config, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = 4 << 20
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	if cfg.InsecureSkipVerify {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
		logger.Warn("fetch.tls.verification_disabled")
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if cfg.Delay > 0 {
		limiter = rate.NewLimiter(rate.Every(cfg.Delay), 1)
	}

	return &Client{
		cfg:     cfg,
		http:    &http.Client{Transport: transport},
		limiter: limiter,
		logger:  logger,
	}
}

// Timeout is the default per-request timeout.
func (c *Client) Timeout() time.Duration { return c.cfg.Timeout }

// Fetch GETs url once. timeout <= 0 uses the configured default.
func (c *Client) Fetch(ctx context.Context, url string, timeout time.Duration) (Response, error) {
	if timeout <= 0 {
		timeout = c.cfg.Timeout
	}
	reqID := uuid.New().String()

	if err := c.limiter.Wait(ctx); err != nil {
		return Response{}, &NetworkError{URL: url, Err: err}
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Response{}, &NetworkError{URL: url, Err: fmt.Errorf("build request: %w", err)}
	}
	req.Header.Set("User-Agent", c.cfg.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,image/*;q=0.8,*/*;q=0.5")

	start := time.Now()
	c.logger.Debug("fetch.request", "req_id", reqID, "url", url)

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug("fetch.error", "req_id", reqID, "url", url, "error", err, "elapsed_ms", time.Since(start).Milliseconds())
		return Response{}, &NetworkError{URL: url, Err: err}
	}
	defer func(Body io.ReadCloser) {
		if err := Body.Close(); err != nil {
			c.logger.Debug("fetch.response_body_close_error", "req_id", reqID, "error", err)
		}
	}(resp.Body)

	raw, err := io.ReadAll(io.LimitReader(resp.Body, c.cfg.MaxBodyBytes))
	if err != nil {
		return Response{}, &NetworkError{URL: url, Err: fmt.Errorf("read body: %w", err)}
	}

	c.logger.Debug("fetch.response",
		"req_id", reqID,
		"url", url,
		"status", resp.StatusCode,
		"bytes", len(raw),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode/100 != 2 {
		return Response{}, &NetworkError{URL: url, StatusCode: resp.StatusCode, Err: errors.New(http.StatusText(resp.StatusCode))}
	}
	return Response{URL: url, StatusCode: resp.StatusCode, Body: raw}, nil
}

// FetchBytes is Fetch for callers that only need the body.
func (c *Client) FetchBytes(ctx context.Context, url string, timeout time.Duration) ([]byte, error) {
	resp, err := c.Fetch(ctx, url, timeout)
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}
