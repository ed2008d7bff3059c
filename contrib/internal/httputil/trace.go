// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Skywatch (https://www.skywatchhq.com/).
// Copyright 2023 Skywatch, Inc.

// Package httputil provides the shared request-tracing plumbing used by the
// HTTP framework integrations.
package httputil // import "github.com/skywatchhq/sw-trace-go/contrib/internal/httputil"

import (
	"bufio"
	"errors"
	"net"
	"net/http"
	"strconv"

	"github.com/skywatchhq/sw-trace-go/swtrace"
	"github.com/skywatchhq/sw-trace-go/swtrace/ext"
	"github.com/skywatchhq/sw-trace-go/swtrace/tracer"
)

// TraceAndServe serves h while recording the request as a trace. The inbound
// trace context, if any, is extracted from the request headers; resource
// names the root span. The request tracer is made available to the handler
// through the request context, so nested spans parent correctly. The root
// span is annotated with the request method, URL, host and user agent up
// front and with the response status code on completion.
func TraceAndServe(h http.Handler, w http.ResponseWriter, r *http.Request, resource string, labels ...swtrace.Label) {
	parent, err := tracer.Extract(tracer.HTTPHeadersCarrier(r.Header))
	if err != nil {
		parent = nil
	}
	rt := tracer.StartRequest(parent)
	r = r.WithContext(tracer.ContextWithRequestTracer(r.Context(), rt))
	if rt.TraceID().IsZero() {
		// not recording: skip the annotation plumbing entirely
		h.ServeHTTP(w, r)
		return
	}
	rt.StartSpan(resource)
	rt.Annotate(append([]swtrace.Label{
		{Key: ext.HTTPMethod, Value: r.Method},
		{Key: ext.HTTPURL, Value: r.URL.Path},
		{Key: ext.HTTPHost, Value: r.Host},
		{Key: ext.HTTPUserAgent, Value: r.UserAgent()},
	}, labels...)...)

	var rw *responseWriter
	if _, ok := w.(http.Hijacker); ok {
		hrw := newHijackableResponseWriter(w)
		rw, w = hrw.responseWriter, hrw
	} else {
		rw = newResponseWriter(w)
		w = rw
	}
	defer func() {
		status := rw.status
		if status == 0 {
			// the handler never wrote a header
			status = http.StatusOK
		}
		rt.Annotate(swtrace.Label{Key: ext.HTTPStatusCode, Value: strconv.Itoa(status)})
		if status >= 500 && status < 600 {
			rt.Annotate(
				swtrace.Label{Key: ext.ErrorName, Value: strconv.Itoa(status)},
				swtrace.Label{Key: ext.ErrorMessage, Value: http.StatusText(status)},
			)
		}
		rt.EndSpan()
	}()
	h.ServeHTTP(w, r)
}

// responseWriter is a small wrapper around an http response writer that will
// intercept and store the status of a request.
type responseWriter struct {
	http.ResponseWriter
	status int
}

var (
	_ http.ResponseWriter = (*responseWriter)(nil)
	_ http.ResponseWriter = (*hijackableResponseWriter)(nil)
	_ http.Hijacker       = (*hijackableResponseWriter)(nil)
)

func newResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{ResponseWriter: w}
}

// Write writes the data to the connection as part of an HTTP reply. A write
// before any header counts as an implicit 200.
func (w *responseWriter) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.WriteHeader(http.StatusOK)
	}
	return w.ResponseWriter.Write(b)
}

// WriteHeader sends an HTTP response header with the given status code, and
// remembers it for the span.
func (w *responseWriter) WriteHeader(status int) {
	w.ResponseWriter.WriteHeader(status)
	w.status = status
}

// hijackableResponseWriter forwards the Hijack capability of the underlying
// writer, which handlers for upgradable protocols depend on.
type hijackableResponseWriter struct{ *responseWriter }

func newHijackableResponseWriter(w http.ResponseWriter) *hijackableResponseWriter {
	return &hijackableResponseWriter{newResponseWriter(w)}
}

func (hrw *hijackableResponseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := hrw.responseWriter.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("underlying ResponseWriter does not implement http.Hijacker")
	}
	return h.Hijack()
}
