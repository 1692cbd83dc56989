package netutil

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"time"

	"golang.org/x/net/publicsuffix"
)

// HTTPStatusError indicates the server responded, but with an unexpected
// HTTP status code. This is a remote rejection, not a network failure.
type HTTPStatusError struct {
	StatusCode int
	URL        string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("fetcher: unexpected status %d from %s", e.StatusCode, e.URL)
}

// NonRetryableError indicates request setup failed before any transport
// attempt was made (for example, malformed URL).
type NonRetryableError struct {
	Err error
}

func (e *NonRetryableError) Error() string {
	return fmt.Sprintf("fetcher: %v", e.Err)
}

func (e *NonRetryableError) Unwrap() error {
	return e.Err
}

// IsConnectivityError reports whether err is a transport failure where no
// HTTP status was ever received (the request could not complete).
// Caller cancellation is not a connectivity failure.
func IsConnectivityError(err error) bool {
	if err == nil {
		return false
	}
	var statusErr *HTTPStatusError
	if errors.As(err, &statusErr) {
		return false
	}
	var setupErr *NonRetryableError
	if errors.As(err, &setupErr) {
		return false
	}
	return !errors.Is(err, context.Canceled)
}

// StatusCode returns the HTTP status carried by err, or 0 when the request
// never produced a response.
func StatusCode(err error) int {
	var statusErr *HTTPStatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode
	}
	return 0
}

// Request describes one outbound call. A nil Body sends no payload.
type Request struct {
	Method string
	URL    string
	Body   []byte
}

// Fetcher executes outbound requests and returns the raw response body.
type Fetcher interface {
	Fetch(ctx context.Context, req Request) ([]byte, error)
}

// DirectFetcher fetches via a standard HTTP client.
type DirectFetcher struct {
	Client      *http.Client
	TimeoutFn   func() time.Duration
	UserAgentFn func() string
}

// NewDirectFetcher creates a fetcher that pulls timeout/user-agent from
// callbacks on each request. The client keeps cookies per registrable domain.
func NewDirectFetcher(timeoutFn func() time.Duration, userAgentFn func() string) *DirectFetcher {
	if timeoutFn == nil {
		panic("netutil: NewDirectFetcher requires non-nil timeoutFn")
	}
	if userAgentFn == nil {
		panic("netutil: NewDirectFetcher requires non-nil userAgentFn")
	}
	client := &http.Client{}
	if jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List}); err == nil {
		client.Jar = jar
	}
	return &DirectFetcher{
		Client:      client,
		TimeoutFn:   timeoutFn,
		UserAgentFn: userAgentFn,
	}
}

// Fetch performs req and returns the body of a 2xx response.
func (f *DirectFetcher) Fetch(ctx context.Context, req Request) ([]byte, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := f.withTimeout(ctx)
	defer cancel()

	method := req.Method
	if method == "" {
		method = http.MethodGet
	}
	var body io.Reader
	if req.Body != nil {
		body = bytes.NewReader(req.Body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, req.URL, body)
	if err != nil {
		return nil, &NonRetryableError{Err: err}
	}
	httpReq.Header.Set("Accept", "application/json")
	if req.Body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if userAgent := f.UserAgentFn(); userAgent != "" {
		httpReq.Header.Set("User-Agent", userAgent)
	}

	resp, err := f.client().Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("fetcher: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		return nil, &HTTPStatusError{StatusCode: resp.StatusCode, URL: req.URL}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("fetcher: %w", err)
	}
	return data, nil
}

// Reachable issues a HEAD request to url. Any HTTP response, whatever its
// status, means the network path works.
func (f *DirectFetcher) Reachable(ctx context.Context, url string) error {
	ctx, cancel := f.withTimeout(ctx)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return &NonRetryableError{Err: err}
	}
	if userAgent := f.UserAgentFn(); userAgent != "" {
		httpReq.Header.Set("User-Agent", userAgent)
	}
	resp, err := f.client().Do(httpReq)
	if err != nil {
		return fmt.Errorf("fetcher: %w", err)
	}
	resp.Body.Close()
	return nil
}

func (f *DirectFetcher) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	timeout := f.TimeoutFn()
	if _, hasDeadline := ctx.Deadline(); !hasDeadline && timeout > 0 {
		return context.WithTimeout(ctx, timeout)
	}
	return ctx, func() {}
}

func (f *DirectFetcher) client() *http.Client {
	if f.Client == nil {
		return http.DefaultClient
	}
	return f.Client
}
