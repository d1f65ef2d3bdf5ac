package source

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/nao1215/htmlgrader/internal/config"
	"golang.org/x/net/proxy"
)

// Fetcher retrieves remote HTML documents with a single GET request.
type Fetcher struct {
	// client performs the request. Built by NewFetcher unless WithHTTPClient is used.
	client *http.Client

	// timeout bounds the whole request, including reading the body.
	timeout time.Duration

	// userAgent is sent as the User-Agent header.
	userAgent string

	// headers are extra request headers.
	headers map[string]string

	// maxBodySize is the maximum number of body bytes read.
	maxBodySize int64

	// proxyURL is an optional http(s) or socks5 proxy.
	proxyURL string

	logger *slog.Logger
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithTimeout sets the request timeout.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		if d > 0 {
			f.timeout = d
		}
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		if ua != "" {
			f.userAgent = ua
		}
	}
}

// WithHeaders adds extra request headers.
func WithHeaders(headers map[string]string) Option {
	return func(f *Fetcher) {
		for k, v := range headers {
			f.headers[k] = v
		}
	}
}

// WithMaxBodySize limits how many body bytes are read. Zero keeps the default.
func WithMaxBodySize(n int64) Option {
	return func(f *Fetcher) {
		if n > 0 {
			f.maxBodySize = n
		}
	}
}

// WithProxy routes requests through the given proxy URL.
// Supported schemes are http, https, socks5 and socks5h.
func WithProxy(rawURL string) Option {
	return func(f *Fetcher) {
		f.proxyURL = rawURL
	}
}

// WithHTTPClient replaces the HTTP client. The timeout and proxy options
// are ignored when a client is supplied.
func WithHTTPClient(c *http.Client) Option {
	return func(f *Fetcher) {
		f.client = c
	}
}

// WithLogger sets the logger used for request diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Fetcher) {
		f.logger = logger
	}
}

// NewFetcher creates a Fetcher. It fails only when the proxy URL is invalid.
func NewFetcher(opts ...Option) (*Fetcher, error) {
	f := &Fetcher{
		timeout:     config.DefaultTimeout,
		userAgent:   config.DefaultUserAgent,
		headers:     make(map[string]string),
		maxBodySize: config.DefaultMaxBodySize,
	}

	for _, opt := range opts {
		opt(f)
	}

	if f.logger == nil {
		f.logger = slog.Default()
	}

	if f.client == nil {
		transport, err := newTransport(f.proxyURL)
		if err != nil {
			return nil, err
		}
		f.client = &http.Client{
			Timeout:   f.timeout,
			Transport: transport,
		}
	}

	return f, nil
}

// NewFetcherFromConfig creates a Fetcher from the run configuration.
func NewFetcherFromConfig(cfg *config.Config, logger *slog.Logger) (*Fetcher, error) {
	return NewFetcher(
		WithTimeout(cfg.Timeout),
		WithUserAgent(cfg.UserAgent),
		WithHeaders(cfg.Headers),
		WithMaxBodySize(cfg.MaxBodySize),
		WithProxy(cfg.Proxy),
		WithLogger(logger),
	)
}

// Fetch performs one GET request for rawURL and returns the document.
// Network errors, timeouts, cancellation and non-2xx statuses all yield a
// *FetchError naming rawURL.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &FetchError{URL: rawURL, Err: err}
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")
	for k, v := range f.headers {
		req.Header.Set(k, v)
	}

	f.logger.Debug("fetching document", "url", rawURL, "proxy", f.proxyURL)
	if len(f.headers) > 0 {
		attrs := make([]any, 0, len(f.headers))
		for k, v := range f.headers {
			attrs = append(attrs, slog.String(k, v))
		}
		f.logger.Debug("request headers", slog.Group("headers", attrs...))
	}

	start := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &FetchError{URL: rawURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &FetchError{
			URL:        rawURL,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("%w: %s", ErrHTTPStatus, resp.Status),
		}
	}

	// Read one extra byte to detect truncation.
	raw, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodySize+1))
	if err != nil {
		return nil, &FetchError{URL: rawURL, StatusCode: resp.StatusCode, Err: err}
	}
	truncated := int64(len(raw)) > f.maxBodySize
	if truncated {
		raw = trimPartialRune(raw[:f.maxBodySize])
		f.logger.Warn("response body truncated", "url", rawURL, "limit", f.maxBodySize)
	}

	contentType := resp.Header.Get("Content-Type")
	body, err := decode(raw, contentType)
	if err != nil {
		return nil, &FetchError{URL: rawURL, StatusCode: resp.StatusCode, Err: err}
	}

	f.logger.Debug("fetched document",
		"url", rawURL,
		"status", resp.StatusCode,
		"bytes", len(body),
		"elapsed", time.Since(start).Round(time.Millisecond),
	)

	return &Document{
		Origin:      OriginURL,
		Location:    rawURL,
		FinalURL:    resp.Request.URL.String(),
		StatusCode:  resp.StatusCode,
		ContentType: contentType,
		Body:        body,
		Truncated:   truncated,
		Digest:      Digest(body),
	}, nil
}

// newTransport returns a transport that dials through proxyURL, or the
// environment proxy settings when proxyURL is empty.
func newTransport(proxyURL string) (*http.Transport, error) {
	transport := http.DefaultTransport.(*http.Transport).Clone() //nolint:forcetypeassert // DefaultTransport is always *http.Transport
	if proxyURL == "" {
		return transport, nil
	}

	u, err := url.Parse(proxyURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidProxy, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("%w: missing host in %q", ErrInvalidProxy, proxyURL)
	}

	switch u.Scheme {
	case "http", "https":
		transport.Proxy = http.ProxyURL(u)
	case "socks5", "socks5h":
		dialer, err := proxy.FromURL(u, proxy.Direct)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidProxy, err)
		}
		transport.Proxy = nil
		transport.DialContext = dialContext(dialer)
	default:
		return nil, fmt.Errorf("%w: unsupported scheme %q", ErrInvalidProxy, u.Scheme)
	}

	return transport, nil
}

// dialContext adapts a proxy.Dialer to http.Transport.DialContext.
func dialContext(d proxy.Dialer) func(ctx context.Context, network, addr string) (net.Conn, error) {
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		if cd, ok := d.(proxy.ContextDialer); ok {
			return cd.DialContext(ctx, network, addr)
		}
		return d.Dial(network, addr)
	}
}
