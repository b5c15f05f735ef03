package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/avast/retry-go/v4"
	"golang.org/x/text/language"

	"reelify/config"
	"reelify/internal/metrics"
)

const (
	defaultLanguage = "en-US"
	maxBodyBytes    = 8 << 20
	redacted        = "REDACTED"
)

// statusError is a non-2xx answer from the catalog API.
type statusError struct {
	code   int
	status string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("catalog api responded %s", e.status)
}

// upstreamClient is the only place the credential is ever attached to a request.
type upstreamClient struct {
	mu       sync.RWMutex
	apiKey   string
	baseURL  string
	language string
	attempts uint
	backoff  time.Duration

	httpc *http.Client
}

func newUpstreamClient(cfg config.UpstreamSettings, httpc *http.Client) *upstreamClient {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if httpc == nil {
		httpc = &http.Client{Timeout: timeout}
	}
	c := &upstreamClient{httpc: httpc, backoff: 300 * time.Millisecond}
	c.configure(cfg)
	return c
}

// configure swaps credential and request defaults; safe while requests are in flight.
func (c *upstreamClient) configure(cfg config.UpstreamSettings) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.apiKey = strings.TrimSpace(cfg.APIKey)
	c.baseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if c.baseURL == "" {
		c.baseURL = config.DefaultSettings().Upstream.BaseURL
	}
	c.language = normalizeLanguage(cfg.Language)
	c.attempts = 3
	if cfg.MaxAttempts > 0 {
		c.attempts = uint(cfg.MaxAttempts)
	}
}

func (c *upstreamClient) isConfigured() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.apiKey != ""
}

func (c *upstreamClient) snapshot() (apiKey, baseURL, lang string, attempts uint) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.apiKey, c.baseURL, c.language, c.attempts
}

// get fetches one upstream resource and returns the raw JSON body.
// resource names the call for logs and metrics; segments form the path below the base URL.
func (c *upstreamClient) get(ctx context.Context, resource string, params url.Values, segments ...string) ([]byte, error) {
	started := time.Now()
	apiKey, baseURL, lang, attempts := c.snapshot()
	if apiKey == "" {
		metrics.ObserveUpstream(resource, metrics.OutcomeError, started)
		return nil, &UpstreamError{Message: "Catalog API is not configured", Err: ErrNotConfigured}
	}

	endpoint, err := url.JoinPath(baseURL, segments...)
	if err != nil {
		return nil, &UpstreamError{Message: "Invalid catalog endpoint", Err: err}
	}
	q := url.Values{}
	for k, vs := range params {
		for _, v := range vs {
			if v != "" {
				q.Add(k, v)
			}
		}
	}
	if q.Get("language") == "" {
		q.Set("language", lang)
	}
	logURL := endpoint + "?" + q.Encode()
	q.Set("api_key", apiKey)
	fullURL := endpoint + "?" + q.Encode()

	var body []byte
	err = retry.Do(
		func() error {
			b, err := c.do(ctx, fullURL)
			if err != nil {
				return err
			}
			body = b
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(attempts),
		retry.Delay(c.backoff),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			return ctx.Err() == nil && isRetryable(err)
		}),
		retry.OnRetry(func(n uint, err error) {
			log.Printf("[catalog] %s failed (attempt %d/%d): %v", resource, n+1, attempts, scrub(err, apiKey))
		}),
	)
	if err != nil {
		var se *statusError
		status := 0
		outcome := metrics.OutcomeError
		if errors.As(err, &se) {
			status = se.code
			switch {
			case se.code == http.StatusNotFound:
				outcome = metrics.OutcomeNotFound
			case se.code < 500 && se.code != http.StatusTooManyRequests:
				outcome = metrics.OutcomeClientError
			}
		}
		metrics.ObserveUpstream(resource, outcome, started)
		log.Printf("[catalog] %s GET %s failed: %v", resource, logURL, scrub(err, apiKey))
		return nil, &UpstreamError{
			Message: "Error fetching " + resource,
			Status:  status,
			Err:     scrub(err, apiKey),
		}
	}

	metrics.ObserveUpstream(resource, metrics.OutcomeOK, started)
	return body, nil
}

func (c *upstreamClient) do(ctx context.Context, fullURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, retry.Unrecoverable(err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		return nil, &statusError{code: resp.StatusCode, status: resp.Status}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, err
	}
	if !json.Valid(body) {
		return nil, retry.Unrecoverable(errors.New("catalog api returned invalid JSON"))
	}
	return body, nil
}

// isRetryable accepts network failures, per-attempt timeouts, 429 and 5xx.
// Other 4xx answers are final. Caller cancellation is checked by get.
func isRetryable(err error) bool {
	var se *statusError
	if errors.As(err, &se) {
		return se.code == http.StatusTooManyRequests || se.code >= 500
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var urlErr *url.Error
	return errors.As(err, &urlErr)
}

// scrub flattens err into a message with the credential removed. url.Error
// embeds the full request URL, which carries api_key.
func scrub(err error, apiKey string) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	if apiKey != "" {
		msg = strings.ReplaceAll(msg, apiKey, redacted)
		msg = strings.ReplaceAll(msg, url.QueryEscape(apiKey), redacted)
	}
	var se *statusError
	if errors.As(err, &se) {
		return &scrubbedError{msg: msg, status: se}
	}
	return errors.New(msg)
}

// scrubbedError keeps the status for errors.As while hiding the original text.
type scrubbedError struct {
	msg    string
	status *statusError
}

func (e *scrubbedError) Error() string { return e.msg }
func (e *scrubbedError) Unwrap() error { return e.status }

func normalizeLanguage(lang string) string {
	lang = strings.TrimSpace(strings.ReplaceAll(lang, "_", "-"))
	if lang == "" {
		return defaultLanguage
	}
	tag, err := language.Parse(lang)
	if err != nil {
		return defaultLanguage
	}
	return tag.String()
}
