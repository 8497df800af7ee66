package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
	"unicode/utf8"

	"webcrawler/internal/domain/crawlerr"
	"webcrawler/internal/resilience/circuitbreaker"
	"webcrawler/internal/resilience/retry"

	"github.com/gogs/chardet"
)

// retryableStatus is the set of response codes the fetcher retries.
var retryableStatus = map[int]bool{
	http.StatusTooManyRequests:     true,
	http.StatusInternalServerError: true,
	http.StatusBadGateway:          true,
	http.StatusServiceUnavailable:  true,
	http.StatusGatewayTimeout:      true,
}

// FetchResult is the outcome of a successful (network-wise) HTTP GET. The
// fetcher does not raise for ordinary 4xx/5xx — those are surfaced here with
// their StatusCode so the blocking detector can classify them.
type FetchResult struct {
	URL        string
	StatusCode int
	Body       []byte
	Text       string // Body decoded to UTF-8 via charset sniffing, §4.3 "Encoding detection"
}

// Fetcher is the Polite Fetcher: robots.txt gating, per-host
// pacing, and bounded retries with exponential backoff wrap a plain
// *http.Client.
type Fetcher struct {
	cfg    Config
	client *http.Client
	robots *robotsCache
	pacer  *hostPacer
	cb     *circuitbreaker.CircuitBreaker
	detect *chardet.Detector
}

// New builds a Fetcher from cfg. A single *http.Client is created and reused
// for the Fetcher's lifetime; Close should be called on shutdown to release
// idle connections.
func New(cfg Config) (*Fetcher, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("fetcher.New: %w", err)
	}

	client := &http.Client{
		Timeout: cfg.RequestTimeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= cfg.MaxRedirects {
				return fmt.Errorf("stopped after %d redirects", cfg.MaxRedirects)
			}
			return nil
		},
	}

	return &Fetcher{
		cfg:    cfg,
		client: client,
		robots: newRobotsCache(client, cfg.UserAgent),
		pacer:  newHostPacer(),
		cb:     circuitbreaker.New(circuitbreaker.WebScraperConfig()),
		detect: chardet.NewTextDetector(),
	}, nil
}

// Close releases idle connections held by the underlying HTTP client.
func (f *Fetcher) Close() {
	f.client.CloseIdleConnections()
}

// CanFetch reports whether the configured user agent is allowed by the
// target's robots.txt.
func (f *Fetcher) CanFetch(ctx context.Context, rawURL string) (bool, error) {
	o, err := origin(rawURL)
	if err != nil {
		return false, fmt.Errorf("fetcher.CanFetch: %w", err)
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return false, fmt.Errorf("fetcher.CanFetch: %w", err)
	}
	return f.robots.allowed(ctx, o, u.RequestURI())
}

// FetchOptions lets the caller override the process-wide retry policy and
// pacing delay with a Source's own CrawlConfig.RetryPolicy /
// rate_limit_per_minute derived delay.
type FetchOptions struct {
	MaxRetries    int
	BackoffFactor float64
	Timeout       time.Duration
	Delay         time.Duration
}

func (f *Fetcher) optionsOrDefault(opts *FetchOptions) (retry.Config, time.Duration, time.Duration) {
	maxRetries := f.cfg.MaxRetries
	backoff := f.cfg.BackoffFactor
	timeout := f.cfg.RequestTimeout
	delay := f.cfg.CrawlDelay

	if opts != nil {
		if opts.MaxRetries > 0 {
			maxRetries = opts.MaxRetries
		}
		if opts.BackoffFactor > 0 {
			backoff = opts.BackoffFactor
		}
		if opts.Timeout > 0 {
			timeout = opts.Timeout
		}
		if opts.Delay > 0 {
			delay = opts.Delay
		}
	}

	return retry.Config{
		MaxAttempts:    maxRetries + 1,
		InitialDelay:   time.Duration(backoff * float64(time.Second)),
		MaxDelay:       30 * time.Second,
		Multiplier:     2.0,
		JitterFraction: 0.1,
	}, timeout, delay
}

// Fetch performs a polite GET of rawURL: it checks robots.txt, waits for the
// per-host pacing gap, then issues the request with retry/backoff on
// connection errors and retryable status codes. It returns
// crawlerr.ErrRobotsDisallowed if robots.txt forbids the URL; it does NOT
// return an error for ordinary 4xx/5xx responses (those come back in
// FetchResult.StatusCode for the blocking detector to classify).
func (f *Fetcher) Fetch(ctx context.Context, rawURL string, opts *FetchOptions) (*FetchResult, error) {
	if err := validateURL(rawURL, f.cfg.DenyPrivateIPs); err != nil {
		return nil, fmt.Errorf("fetcher.Fetch: %w", err)
	}

	allowed, err := f.CanFetch(ctx, rawURL)
	if err != nil {
		return nil, fmt.Errorf("fetcher.Fetch: %w", err)
	}
	if !allowed {
		return nil, crawlerr.ErrRobotsDisallowed
	}

	retryCfg, timeout, delay := f.optionsOrDefault(opts)

	if err := f.pacer.wait(ctx, rawURL, delay); err != nil {
		return nil, fmt.Errorf("fetcher.Fetch: %w", err)
	}

	var result *FetchResult
	attemptErr := retry.WithBackoff(ctx, retryCfg, func() error {
		res, doErr := f.doOnce(ctx, rawURL, timeout)
		if doErr != nil {
			result = nil
			return doErr
		}
		result = res
		if retryableStatus[res.StatusCode] {
			return &retry.HTTPError{StatusCode: res.StatusCode, Message: http.StatusText(res.StatusCode)}
		}
		return nil
	})

	if attemptErr != nil {
		// Retries exhausted. A retryable *status* (429/5xx) still leaves a
		// populated FetchResult behind: spec §4.1 only calls for a
		// null/empty result on connection-error exhaustion, and §4.2 needs
		// the last response's status/body to classify a block, so hand it
		// back uninterpreted instead of discarding it.
		var httpErr *retry.HTTPError
		if errors.As(attemptErr, &httpErr) && result != nil {
			return result, nil
		}
		return nil, fmt.Errorf("fetcher.Fetch: %w", attemptErr)
	}

	return result, nil
}

func (f *Fetcher) doOnce(ctx context.Context, rawURL string, timeout time.Duration) (*FetchResult, error) {
	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", f.cfg.UserAgent)

	raw, cbErr := f.cb.Execute(func() (interface{}, error) {
		resp, doErr := f.client.Do(req)
		if doErr != nil {
			return nil, doErr
		}
		defer func() { _ = resp.Body.Close() }()

		body, readErr := io.ReadAll(io.LimitReader(resp.Body, 50<<20))
		if readErr != nil {
			return nil, readErr
		}
		return &FetchResult{URL: rawURL, StatusCode: resp.StatusCode, Body: body}, nil
	})
	if cbErr != nil {
		return nil, cbErr
	}

	res := raw.(*FetchResult)
	res.Text = f.decodeText(res.Body)
	return res, nil
}

// decodeText implements the three-tier fallback from spec §4.3: charset
// sniffed with a confidence threshold, otherwise UTF-8 validated as-is,
// latin-1 as ultimate fallback for bytes that are not valid UTF-8.
func (f *Fetcher) decodeText(body []byte) string {
	if result, err := f.detect.DetectBest(body); err == nil && result != nil && result.Confidence >= 50 {
		if decoded, ok := decodeCharset(body, result.Charset); ok {
			return decoded
		}
	}
	if utf8.Valid(body) {
		return string(body)
	}
	return decodeLatin1(body)
}
