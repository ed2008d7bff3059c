// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Skywatch (https://www.skywatchhq.com/).
// Copyright 2023 Skywatch, Inc.

// Package http provides functions to trace the net/http package
// (https://golang.org/pkg/net/http).
package http // import "github.com/skywatchhq/sw-trace-go/contrib/net/http"

import (
	"net/http"

	"github.com/skywatchhq/sw-trace-go/contrib/internal/httputil"
	"github.com/skywatchhq/sw-trace-go/swtrace"
)

// ServeMux is an HTTP request multiplexer that traces all the incoming
// requests.
type ServeMux struct {
	*http.ServeMux
	cfg *muxConfig
}

// NewServeMux allocates and returns an http.ServeMux augmented with the
// global tracer.
func NewServeMux(opts ...MuxOption) *ServeMux {
	cfg := newMuxConfig(opts...)
	return &ServeMux{
		ServeMux: http.NewServeMux(),
		cfg:      cfg,
	}
}

// ServeHTTP dispatches the request to the handler whose pattern most closely
// matches the request URL. The matched pattern, not the raw URL, names the
// root span so that all requests hitting the same route aggregate.
func (mux *ServeMux) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	_, route := mux.Handler(r)
	resource := r.Method + " " + route
	httputil.TraceAndServe(mux.ServeMux, w, r, resource, mux.cfg.labels...)
}

// WrapHandler wraps an http.Handler with tracing using the given resource
// name to label the root span of every request it serves.
func WrapHandler(h http.Handler, resource string, labels ...swtrace.Label) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		httputil.TraceAndServe(h, w, req, resource, labels...)
	})
}
