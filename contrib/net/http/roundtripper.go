// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Skywatch (https://www.skywatchhq.com/).
// Copyright 2023 Skywatch, Inc.

package http

import (
	"net/http"

	"github.com/skywatchhq/sw-trace-go/internal/log"
	"github.com/skywatchhq/sw-trace-go/swtrace/tracer"
)

// roundTripper propagates the trace context of the active request tracer to
// outgoing requests, enabling cross-service trace continuity. It is a pure
// reader of the request tracer: no spans are started for the outbound call.
type roundTripper struct {
	base http.RoundTripper
}

func (rt *roundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	reqTracer, ok := tracer.RequestTracerFromContext(req.Context())
	if !ok || reqTracer.TraceID().IsZero() {
		return rt.base.RoundTrip(req)
	}
	// per RoundTripper contract the original request is not mutated
	r2 := req.Clone(req.Context())
	if err := tracer.Inject(reqTracer.Context(), tracer.HTTPHeadersCarrier(r2.Header)); err != nil {
		log.Debug("contrib/net/http: failed to inject trace headers: %v", err)
		return rt.base.RoundTrip(req)
	}
	return rt.base.RoundTrip(r2)
}

// Unwrap returns the original http.RoundTripper.
func (rt *roundTripper) Unwrap() http.RoundTripper {
	return rt.base
}

// WrapRoundTripper returns a new RoundTripper which propagates the trace
// context of the active request tracer on all requests sent through it.
func WrapRoundTripper(rt http.RoundTripper) http.RoundTripper {
	if rt == nil {
		rt = http.DefaultTransport
	}
	return &roundTripper{base: rt}
}

// WrapClient modifies the given client to propagate the trace context of the
// active request tracer on all requests it sends.
func WrapClient(c *http.Client) *http.Client {
	if c == nil {
		c = http.DefaultClient
	}
	copied := *c
	copied.Transport = WrapRoundTripper(c.Transport)
	return &copied
}
