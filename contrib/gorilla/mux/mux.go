// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Skywatch (https://www.skywatchhq.com/).
// Copyright 2023 Skywatch, Inc.

// Package mux provides tracing functions for the Gorilla Mux framework
// (https://github.com/gorilla/mux).
package mux // import "github.com/skywatchhq/sw-trace-go/contrib/gorilla/mux"

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/skywatchhq/sw-trace-go/contrib/internal/httputil"
)

// Router registers routes to be matched and dispatches a handler, tracing
// every request it serves.
type Router struct {
	*mux.Router
	cfg *routerConfig
}

// NewRouter returns a new router instance traced with the global tracer.
func NewRouter(opts ...RouterOption) *Router {
	return WrapRouter(mux.NewRouter(), opts...)
}

// WrapRouter returns the given router augmented with tracing.
func WrapRouter(router *mux.Router, opts ...RouterOption) *Router {
	cfg := newRouterConfig(opts...)
	return &Router{Router: router, cfg: cfg}
}

// ServeHTTP dispatches the request to the handler whose route most closely
// matches the request URL. The route template, not the raw URL, names the
// root span so that all requests hitting the same route aggregate.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	var route string
	var match mux.RouteMatch
	if r.Router.Match(req, &match) && match.Route != nil {
		route, _ = match.Route.GetPathTemplate()
	}
	resource := req.Method + " " + route
	httputil.TraceAndServe(r.Router, w, req, resource, r.cfg.labels...)
}
