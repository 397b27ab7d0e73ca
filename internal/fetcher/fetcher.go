package fetcher

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"resty.dev/v3"

	"metalrates/internal/metrics"
)

// Fetcher is the core interface for retrieving the rates document.
type Fetcher interface {
	// Fetch returns the raw document body.
	// Errors are *FetchError values.
	Fetch(ctx context.Context) (string, error)

	// Source returns the URL being polled.
	Source() string
}

// Guard is the trust check applied to the final URL after redirects.
type Guard struct {
	HostSuffix   string
	PathFragment string
}

// Allows reports whether u is on the expected host and path. The host must
// equal the suffix or end with "." plus the suffix, so lookalike domains
// such as "evilmaybank2u.com.my" are rejected.
func (g Guard) Allows(u *url.URL) bool {
	if u == nil {
		return false
	}
	host := strings.ToLower(u.Hostname())
	suffix := strings.ToLower(strings.TrimPrefix(g.HostSuffix, "."))
	if suffix != "" && host != suffix && !strings.HasSuffix(host, "."+suffix) {
		return false
	}
	return strings.Contains(u.Path, g.PathFragment)
}

// Options configures an HTTPFetcher.
type Options struct {
	URL     string
	Guard   Guard
	Timeout time.Duration
	Headers map[string]string

	// Transport and RelaxedTransport override the default transports.
	// When only Transport is set it is used for both attempts.
	Transport        http.RoundTripper
	RelaxedTransport http.RoundTripper

	Logger *slog.Logger
}

// HTTPFetcher fetches the rates page with a strict client and falls back to a
// relaxed one exactly once on transport failures.
type HTTPFetcher struct {
	url     string
	guard   Guard
	headers map[string]string
	strict  *resty.Client
	relaxed *resty.Client
	logger  *slog.Logger
}

// NewHTTPFetcher creates a fetcher for opts.URL
func NewHTTPFetcher(opts Options) *HTTPFetcher {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "fetcher")

	relaxedTransport := opts.RelaxedTransport
	if relaxedTransport == nil {
		relaxedTransport = opts.Transport
	}

	return &HTTPFetcher{
		url:     opts.URL,
		guard:   opts.Guard,
		headers: opts.Headers,
		strict:  NewHTTPClient(opts.Timeout, opts.Transport, false, logger),
		relaxed: NewHTTPClient(opts.Timeout, relaxedTransport, true, logger),
		logger:  logger,
	}
}

// Source returns the configured URL
func (f *HTTPFetcher) Source() string {
	return f.url
}

// Fetch retrieves the document. Only transport errors are retried, once,
// and only while ctx is still live; the retry's error is the one returned.
func (f *HTTPFetcher) Fetch(ctx context.Context) (string, error) {
	doc, err := f.attempt(ctx, f.strict, "strict")
	if err == nil {
		return doc, nil
	}
	if !err.Retryable || ctx.Err() != nil {
		return "", err
	}

	f.logger.Warn("retrying with relaxed transport",
		"url", f.url,
		"error", err.Error())

	doc, err = f.attempt(ctx, f.relaxed, "relaxed")
	if err != nil {
		return "", err
	}
	return doc, nil
}

func (f *HTTPFetcher) attempt(ctx context.Context, client *resty.Client, mode string) (string, *FetchError) {
	resp, err := client.R().
		SetContext(ctx).
		SetHeaders(f.headers).
		Get(f.url)

	if err != nil {
		metrics.ObserveFetchAttempt(mode, string(ErrorTypeTransport))
		f.logger.Debug("fetch attempt failed",
			"url", f.url,
			"mode", mode,
			"error", err.Error())
		return "", NewTransportError(f.url, err)
	}

	final := finalURL(resp, f.url)
	if !f.guard.Allows(final) {
		metrics.ObserveFetchAttempt(mode, string(ErrorTypeUnexpectedRedirect))
		f.logger.Warn("fetch landed off the rates page",
			"url", f.url,
			"final_url", final.String(),
			"mode", mode)
		return "", NewUnexpectedRedirectError(final.String())
	}

	if !resp.IsSuccess() {
		metrics.ObserveFetchAttempt(mode, string(ErrorTypeHTTPStatus))
		f.logger.Debug("fetch attempt returned error status",
			"url", final.String(),
			"mode", mode,
			"status_code", resp.StatusCode())
		return "", NewHTTPStatusError(final.String(), resp.StatusCode())
	}

	doc := resp.String()
	metrics.ObserveFetchAttempt(mode, "ok")
	f.logger.Debug("fetch attempt succeeded",
		"url", final.String(),
		"mode", mode,
		"status_code", resp.StatusCode(),
		"bytes", len(doc))

	return doc, nil
}

// finalURL is the URL of the request that produced resp, after redirects.
func finalURL(resp *resty.Response, requested string) *url.URL {
	if resp.RawResponse != nil && resp.RawResponse.Request != nil && resp.RawResponse.Request.URL != nil {
		return resp.RawResponse.Request.URL
	}
	u, err := url.Parse(requested)
	if err != nil {
		return &url.URL{}
	}
	return u
}
