package testutil

import (
	"context"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
)

// StubFetcher is a hand-rolled source for coordinator and api tests.
type StubFetcher struct {
	FetchFunc func(ctx context.Context) (string, error)
	URL       string

	calls atomic.Int32
}

// Fetch implements the fetcher interface.
func (s *StubFetcher) Fetch(ctx context.Context) (string, error) {
	s.calls.Add(1)
	if s.FetchFunc != nil {
		return s.FetchFunc(ctx)
	}
	return "", nil
}

// Source implements the fetcher interface.
func (s *StubFetcher) Source() string {
	if s.URL != "" {
		return s.URL
	}
	return "https://stub.example/rates"
}

// Calls returns how many times Fetch ran.
func (s *StubFetcher) Calls() int {
	return int(s.calls.Load())
}

// NewStubFetcher returns a stub that always answers with doc and err.
func NewStubFetcher(doc string, err error) *StubFetcher {
	return &StubFetcher{
		FetchFunc: func(ctx context.Context) (string, error) {
			return doc, err
		},
	}
}

// RoundTripFunc adapts a function to http.RoundTripper.
type RoundTripFunc func(*http.Request) (*http.Response, error)

// RoundTrip implements http.RoundTripper.
func (f RoundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

// TimeoutError is a net.Error that reports a timeout.
type TimeoutError struct{ Msg string }

func (e TimeoutError) Error() string   { return e.Msg }
func (e TimeoutError) Timeout() bool   { return true }
func (e TimeoutError) Temporary() bool { return true }

// Response builds a response for req. Setting Request matters: the final URL
// of a fetch is read from it.
func Response(req *http.Request, status int, body string) *http.Response {
	return &http.Response{
		StatusCode:    status,
		Status:        http.StatusText(status),
		Header:        http.Header{"Content-Type": []string{"text/html; charset=UTF-8"}},
		Body:          io.NopCloser(strings.NewReader(body)),
		ContentLength: int64(len(body)),
		Request:       req,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
	}
}
