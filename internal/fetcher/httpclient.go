package fetcher

import (
	"crypto/tls"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"resty.dev/v3"
)

const (
	// DefaultTimeout bounds a single attempt
	DefaultTimeout = 60 * time.Second

	maxRedirects = 10
)

// NewHTTPClient creates a resty client around transport. A nil transport
// gets a fresh one; relaxed disables certificate verification on it, for
// the retry after a transient failure.
func NewHTTPClient(timeout time.Duration, transport http.RoundTripper, relaxed bool, logger *slog.Logger) *resty.Client {
	if transport == nil {
		transport = newTransport(relaxed)
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	client := resty.NewWithClient(&http.Client{
		Timeout:   timeout,
		Transport: transport,
	}).
		SetRedirectPolicy(resty.FlexibleRedirectPolicy(maxRedirects)).
		SetLogger(restyLogger{logger: logger.With("relaxed", relaxed)})

	return client
}

func newTransport(relaxed bool) *http.Transport {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if relaxed {
		transport.TLSClientConfig = &tls.Config{
			InsecureSkipVerify: true,
		}
	}
	return transport
}

// restyLogger routes resty's own messages to slog
type restyLogger struct {
	logger *slog.Logger
}

func (l restyLogger) Errorf(format string, v ...any) {
	l.logger.Error(fmt.Sprintf(format, v...), "component", "resty")
}

func (l restyLogger) Warnf(format string, v ...any) {
	l.logger.Warn(fmt.Sprintf(format, v...), "component", "resty")
}

func (l restyLogger) Debugf(format string, v ...any) {
	l.logger.Debug(fmt.Sprintf(format, v...), "component", "resty")
}
