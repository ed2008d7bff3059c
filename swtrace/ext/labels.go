// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Skywatch (https://www.skywatchhq.com/).
// Copyright 2023 Skywatch, Inc.

// Package ext contains the label keys recognized by the Skywatch trace
// backend. Labels using these keys are surfaced in the trace viewer;
// any other key is stored verbatim as a custom label.
package ext // import "github.com/skywatchhq/sw-trace-go/swtrace/ext"

const (
	// HTTPMethod is the HTTP method of the request.
	HTTPMethod = "/http/method"
	// HTTPURL is the full URL of the request, query string excluded.
	HTTPURL = "/http/url"
	// HTTPStatusCode is the numeric HTTP status code of the response.
	HTTPStatusCode = "/http/status_code"
	// HTTPUserAgent is the value of the User-Agent request header.
	HTTPUserAgent = "/http/user_agent"
	// HTTPHost is the value of the Host request header.
	HTTPHost = "/http/host"
	// HTTPRoute is the matched route pattern, e.g. "/users/{id}".
	HTTPRoute = "/http/route"
	// HTTPResponseSize is the size of the response body in bytes.
	HTTPResponseSize = "/http/response/size"
	// ErrorName is the short name of an error that occurred during the span.
	ErrorName = "/error/name"
	// ErrorMessage is the message of an error that occurred during the span.
	ErrorMessage = "/error/message"
	// Component is the name of the library or framework that produced the span.
	Component = "/component"
	// Agent identifies the client that recorded the trace.
	Agent = "/agent"
)
