package sources

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/job-digest/internal/serrors"
	"github.com/spigell/job-digest/internal/utils"
)

const (
	contentType    = "application/json"
	acceptEncoding = "gzip"
	// One initial attempt plus a single retry.
	maxAttempts = 2
)

// Options configures the HTTP client used for every source.
type Options struct {
	Timeout           time.Duration
	RetryDelay        time.Duration
	RequestsPerSecond float64
	UserAgent         string
}

// Client fetches raw listing payloads from job boards one request at a time.
type Client struct {
	logger     *zap.Logger
	limiter    *HostLimiter
	HTTPClient *http.Client
	UserAgent  string
	RetryDelay time.Duration
}

// StatusError is returned for a non-2xx response.
type StatusError struct {
	Code   int
	Status string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("bad status: %s", e.Status)
}

func (e *StatusError) retryable() bool {
	return e.Code == http.StatusTooManyRequests || e.Code >= http.StatusInternalServerError
}

func New(logger *zap.Logger, opts Options) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}

	var limiter *HostLimiter
	if opts.RequestsPerSecond > 0 {
		limiter = NewHostLimiter(opts.RequestsPerSecond, 1)
	}

	return &Client{
		logger:  logger,
		limiter: limiter,
		HTTPClient: &http.Client{
			Timeout: opts.Timeout,
		},
		UserAgent:  opts.UserAgent,
		RetryDelay: opts.RetryDelay,
	}
}

// FetchListings downloads the listing payload of one source and splits it
// into raw records. Any failure is an ErrTransport for the whole source.
func (c *Client) FetchListings(ctx context.Context, adapter Adapter, src Source) ([]RawListing, error) {
	endpoint := adapter.Endpoint(src)

	data, err := c.getWithRetry(ctx, endpoint)
	if err != nil {
		return nil, serrors.Wrap(serrors.ErrTransport, err, "fetch %s", src.ID())
	}

	var payload any
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, serrors.Wrap(serrors.ErrTransport, err, "decode %s payload", src.ID())
	}

	listings, err := adapter.Listings(payload)
	if err != nil {
		return nil, serrors.Wrap(serrors.ErrTransport, err, "read %s listings", src.ID())
	}

	return listings, nil
}

func (c *Client) getWithRetry(ctx context.Context, url string) ([]byte, error) {
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 {
			c.logger.Warn("request failed, retrying once",
				zap.String("url", url),
				zap.Duration("delay", c.RetryDelay),
				zap.Error(lastErr),
			)
			if err := utils.WaitFor(ctx, c.RetryDelay); err != nil {
				return nil, err
			}
		}

		data, err := c.get(ctx, url)
		if err == nil {
			return data, nil
		}
		lastErr = err

		var statusErr *StatusError
		if errors.As(err, &statusErr) && !statusErr.retryable() {
			return nil, err
		}
		if ctx.Err() != nil {
			return nil, err
		}
	}

	return nil, lastErr
}

func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.WaitURL(ctx, url); err != nil {
			return nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	req = c.setHeaders(req)

	resp, err := c.request(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// drain so the connection can be reused
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &StatusError{Code: resp.StatusCode, Status: resp.Status}
	}

	var reader io.Reader = resp.Body
	if resp.Header.Get("Content-Encoding") == "gzip" {
		gzipReader, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, err
		}
		defer gzipReader.Close()
		reader = gzipReader
	}

	return io.ReadAll(reader)
}

func (c *Client) request(req *http.Request) (*http.Response, error) {
	c.logger.Debug("make request", zap.String("url", req.URL.String()))
	return c.HTTPClient.Do(req)
}

func (c *Client) setHeaders(req *http.Request) *http.Request {
	req.Header.Set("User-Agent", c.UserAgent)
	req.Header.Set("Accept", contentType)
	req.Header.Set("Accept-Encoding", acceptEncoding)

	return req
}
