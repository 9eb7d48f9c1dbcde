// Package transport holds the HTTP session shared by every network call of
// one extraction run: a fixed browser-like header profile and a single
// cookie jar, so cookies set by the primary page apply to later probes.
package transport

import (
	"bytes"
	"compress/flate"
	"compress/gzip"
	"compress/zlib"
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/go-resty/resty/v2"
	"github.com/law-makers/iemrank/internal/engine"
	"github.com/rs/zerolog"
	"golang.org/x/net/publicsuffix"
)

// maxBodyBytes caps how much of a response body is read
const maxBodyBytes = 10 * 1024 * 1024

// Options configures a Client
type Options struct {
	// Headers are merged over DefaultProfile
	Headers map[string]string
	// UserAgent overrides the profile's User-Agent when set
	UserAgent string
	// Proxy is an optional HTTP/SOCKS5 proxy URL
	Proxy string
	// StealthTLS dials direct HTTPS connections with a Chrome TLS fingerprint
	StealthTLS bool
	// DefaultTimeout applies when Fetch is called with a zero timeout
	DefaultTimeout time.Duration
	Logger         zerolog.Logger
}

// Client issues GET requests with the session's headers and cookies.
// It does not retry.
type Client struct {
	http    *resty.Client
	jar     http.CookieJar
	headers map[string]string
	timeout time.Duration
	logger  zerolog.Logger
}

// New creates a Client with a tuned keep-alive transport and its own cookie jar
func New(opts Options) (*Client, error) {
	headers := DefaultProfile()
	for k, v := range opts.Headers {
		headers[http.CanonicalHeaderKey(k)] = v
	}
	if opts.UserAgent != "" {
		headers["User-Agent"] = opts.UserAgent
	}
	if opts.DefaultTimeout <= 0 {
		opts.DefaultTimeout = 30 * time.Second
	}

	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	// Configure HTTP client with Keep-Alive for connection reuse
	dialer := &net.Dialer{Timeout: 30 * time.Second, KeepAlive: 30 * time.Second}
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		DialContext:         dialer.DialContext,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		DisableCompression:  false,
	}
	if opts.StealthTLS {
		// used for direct HTTPS only; proxied tunnels keep crypto/tls
		transport.DialTLSContext = dialChromeTLS(dialer, nil)
	}
	httpClient := &http.Client{Jar: jar, Transport: transport}

	client := resty.NewWithClient(httpClient)
	client.SetLogger(restyLogger{opts.Logger})
	client.SetHeaders(headers)
	if opts.Proxy != "" {
		client.SetProxy(opts.Proxy)
	}

	return &Client{
		http:    client,
		jar:     jar,
		headers: headers,
		timeout: opts.DefaultTimeout,
		logger:  opts.Logger,
	}, nil
}

// Headers returns a copy of the header profile sent with every request
func (c *Client) Headers() map[string]string {
	out := make(map[string]string, len(c.headers))
	for k, v := range c.headers {
		out[k] = v
	}
	return out
}

// Cookies returns the session cookies that would be sent to rawURL
func (c *Client) Cookies(rawURL string) []*http.Cookie {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil
	}
	return c.jar.Cookies(u)
}

// Fetch performs a GET under timeout and returns the status and decoded body.
// Network failures, timeouts and non-2xx statuses are TRANSPORT errors.
func (c *Client) Fetch(ctx context.Context, rawURL string, timeout time.Duration) (int, []byte, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if timeout <= 0 {
		timeout = c.timeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	resp, err := c.http.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		Get(rawURL)
	if err != nil {
		return 0, nil, engine.NewEngineError(engine.ErrCodeTransport, "request failed", err).
			WithDetail("url", rawURL)
	}
	raw := resp.RawBody()
	defer raw.Close()

	status := resp.StatusCode()
	if !resp.IsSuccess() {
		// drain so the connection can be reused
		io.Copy(io.Discard, io.LimitReader(raw, maxBodyBytes))
		return status, nil, engine.NewEngineError(engine.ErrCodeTransport, fmt.Sprintf("unexpected status %d", status), nil).
			WithStatus(status).
			WithDetail("url", rawURL)
	}

	body, err := readBody(raw, resp.Header().Get("Content-Encoding"))
	if err != nil {
		return status, nil, engine.NewEngineError(engine.ErrCodeTransport, "failed to read body", err).
			WithStatus(status).
			WithDetail("url", rawURL)
	}

	c.logger.Debug().
		Str("url", rawURL).
		Int("status", status).
		Int("bytes", len(body)).
		Dur("elapsed", time.Since(start)).
		Msg("Fetch completed")

	return status, body, nil
}

// Close releases idle connections held by the session
func (c *Client) Close() {
	c.http.GetClient().CloseIdleConnections()
}

// readBody reads at most maxBodyBytes and undoes the Content-Encoding. The
// profile advertises gzip, deflate and br, so the body arrives encoded.
func readBody(r io.Reader, encoding string) ([]byte, error) {
	raw, err := io.ReadAll(io.LimitReader(r, maxBodyBytes))
	if err != nil {
		return nil, err
	}

	var decoded io.Reader
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "", "identity":
		return raw, nil
	case "gzip", "x-gzip":
		gz, err := gzip.NewReader(bytes.NewReader(raw))
		if err != nil {
			return nil, fmt.Errorf("gzip: %w", err)
		}
		defer gz.Close()
		decoded = gz
	case "deflate":
		// servers disagree on zlib-wrapped vs raw deflate
		if zr, err := zlib.NewReader(bytes.NewReader(raw)); err == nil {
			defer zr.Close()
			decoded = zr
		} else {
			fr := flate.NewReader(bytes.NewReader(raw))
			defer fr.Close()
			decoded = fr
		}
	case "br":
		decoded = brotli.NewReader(bytes.NewReader(raw))
	default:
		return raw, nil
	}
	return io.ReadAll(io.LimitReader(decoded, maxBodyBytes))
}

// restyLogger routes resty's internal messages into zerolog
type restyLogger struct {
	logger zerolog.Logger
}

func (l restyLogger) Errorf(format string, v ...interface{}) {
	l.logger.Error().Msgf(strings.TrimSpace(format), v...)
}

func (l restyLogger) Warnf(format string, v ...interface{}) {
	l.logger.Warn().Msgf(strings.TrimSpace(format), v...)
}

func (l restyLogger) Debugf(format string, v ...interface{}) {
	l.logger.Debug().Msgf(strings.TrimSpace(format), v...)
}
