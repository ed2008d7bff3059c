// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Skywatch (https://www.skywatchhq.com/).
// Copyright 2023 Skywatch, Inc.

package tracer

import (
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/skywatchhq/sw-trace-go/internal/globalconfig"
	"github.com/skywatchhq/sw-trace-go/internal/version"
)

const (
	defaultHostname    = "localhost"
	defaultPort        = "9670"
	defaultAddress     = defaultHostname + ":" + defaultPort
	defaultURL         = "http://" + defaultAddress
	defaultHTTPTimeout = 10 * time.Second         // defines the current timeout before giving up with the send process
	traceCountHeader   = "X-Skywatch-Trace-Count" // header containing the number of traces in the payload
)

// defaultClient is the default HTTP client used by the transport when no
// custom client is provided.
var defaultClient = &http.Client{
	Transport: &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	},
	Timeout: defaultHTTPTimeout,
}

// transport is an interface for sending encoded payloads to the trace
// collector.
type transport interface {
	// send sends the payload p to the collector using the transport set up.
	// It returns a non-nil response body if the request was fully completed.
	send(p *payload) (body io.ReadCloser, err error)
	// endpoint returns the URL to which the transport will send traces.
	endpoint() string
}

type httpTransport struct {
	traceURL string            // the delivery URL for traces
	client   *http.Client      // the HTTP client used in the POST
	headers  map[string]string // the transport headers
}

// newHTTPTransport returns an httpTransport which will deliver traces for
// the given project to the collector reachable at url, using client.
func newHTTPTransport(url, projectID string, client *http.Client) *httpTransport {
	defaultHeaders := map[string]string{
		"Skywatch-Meta-Lang":             "go",
		"Skywatch-Meta-Lang-Version":     strings.TrimPrefix(runtime.Version(), "go"),
		"Skywatch-Meta-Lang-Interpreter": runtime.Compiler + "-" + runtime.GOARCH + "-" + runtime.GOOS,
		"Skywatch-Meta-Tracer-Version":   version.Tag,
		"X-Skywatch-Runtime-ID":          globalconfig.RuntimeID(),
		"Content-Type":                   "application/msgpack",
	}
	return &httpTransport{
		traceURL: fmt.Sprintf("%s/v1/projects/%s/traces", url, projectID),
		client:   client,
		headers:  defaultHeaders,
	}
}

func (t *httpTransport) send(p *payload) (body io.ReadCloser, err error) {
	req, err := http.NewRequest("POST", t.traceURL, p)
	if err != nil {
		return nil, fmt.Errorf("cannot create http request: %v", err)
	}
	req.ContentLength = int64(p.size())
	for header, value := range t.headers {
		req.Header.Set(header, value)
	}
	req.Header.Set(traceCountHeader, strconv.Itoa(p.itemCount()))
	response, err := t.client.Do(req)
	if err != nil {
		return nil, &sendError{err: err}
	}
	if code := response.StatusCode; code >= 400 {
		// error: we check the body for context information and
		// return a nice error.
		msg := make([]byte, 1000)
		n, _ := response.Body.Read(msg)
		response.Body.Close()
		txt := http.StatusText(code)
		if n > 0 {
			return nil, &sendError{status: code, err: fmt.Errorf("%s (Status: %s)", msg[:n], txt)}
		}
		return nil, &sendError{status: code, err: fmt.Errorf("%s", txt)}
	}
	return response.Body, nil
}

func (t *httpTransport) endpoint() string {
	return t.traceURL
}

// sendError describes a failed delivery attempt.
type sendError struct {
	status int // HTTP status code; 0 when the request never completed
	err    error
}

func (e *sendError) Error() string { return e.err.Error() }

func (e *sendError) Unwrap() error { return e.err }

// retriable reports whether a later attempt at delivering the same payload
// may succeed. Requests that never completed and requests the collector
// refused with 408, 429 or any 5xx status are worth retrying; any other
// client error is permanent.
func (e *sendError) retriable() bool {
	if e.status == 0 {
		// the request never completed
		return true
	}
	switch e.status {
	case http.StatusRequestTimeout, http.StatusTooManyRequests:
		return true
	}
	return e.status >= 500
}

// isRetriable reports whether err is worth a second delivery attempt.
func isRetriable(err error) bool {
	var e *sendError
	if errors.As(err, &e) {
		return e.retriable()
	}
	return false
}
