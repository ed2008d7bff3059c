// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Skywatch (https://www.skywatchhq.com/).
// Copyright 2023 Skywatch, Inc.

package http

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/skywatchhq/sw-trace-go/swtrace"
	"github.com/skywatchhq/sw-trace-go/swtrace/ext"
	"github.com/skywatchhq/sw-trace-go/swtrace/tracer"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tinylib/msgp/msgp"
)

// fakeCollector decodes every batch posted to it into generic msgpack
// values, so tests can inspect exported traces without the wire types.
type fakeCollector struct {
	mu     sync.Mutex
	traces []map[string]interface{}
	srv    *httptest.Server
}

func newFakeCollector(t *testing.T) *fakeCollector {
	c := &fakeCollector{}
	c.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		v, err := msgp.NewReader(r.Body).ReadIntf()
		require.NoError(t, err)
		c.mu.Lock()
		for _, tr := range v.([]interface{}) {
			c.traces = append(c.traces, tr.(map[string]interface{}))
		}
		c.mu.Unlock()
	}))
	t.Cleanup(c.srv.Close)
	return c
}

func (c *fakeCollector) waitForTraces(t *testing.T, n int) []map[string]interface{} {
	tracer.Flush()
	require.Eventually(t, func() bool {
		c.mu.Lock()
		defer c.mu.Unlock()
		return len(c.traces) >= n
	}, 2*time.Second, 5*time.Millisecond)
	c.mu.Lock()
	defer c.mu.Unlock()
	require.Len(t, c.traces, n)
	return append([]map[string]interface{}(nil), c.traces...)
}

func rootSpan(t *testing.T, trace map[string]interface{}) map[string]interface{} {
	raw, ok := trace["spans"].([]interface{})
	require.True(t, ok)
	require.NotEmpty(t, raw)
	return raw[0].(map[string]interface{})
}

func labelValue(s map[string]interface{}, key string) string {
	raw, _ := s["labels"].([]interface{})
	for _, l := range raw {
		m := l.(map[string]interface{})
		if m["key"] == key {
			return m["value"].(string)
		}
	}
	return ""
}

func startTracer(t *testing.T, c *fakeCollector) {
	require.NoError(t, tracer.Start(
		tracer.WithProjectID("test-project"),
		tracer.WithCollectorAddr(strings.TrimPrefix(c.srv.URL, "http://")),
		tracer.WithLogStartup(false),
	))
	t.Cleanup(tracer.Stop)
}

func TestServeMux(t *testing.T) {
	c := newFakeCollector(t)
	startTracer(t, c)

	mux := NewServeMux(WithLabels(swtrace.Label{Key: "env", Value: "test"}))
	mux.HandleFunc("/200", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/200")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, 200, resp.StatusCode)

	traces := c.waitForTraces(t, 1)
	root := rootSpan(t, traces[0])
	assert.Equal(t, "GET /200", root["name"], "the matched pattern names the span")
	assert.Equal(t, "test", labelValue(root, "env"))
	assert.Equal(t, "200", labelValue(root, ext.HTTPStatusCode))
}

func TestServeMuxUnmatched(t *testing.T) {
	c := newFakeCollector(t)
	startTracer(t, c)

	mux := NewServeMux()
	srv := httptest.NewServer(mux)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/nowhere")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, 404, resp.StatusCode)

	traces := c.waitForTraces(t, 1)
	root := rootSpan(t, traces[0])
	assert.Equal(t, "GET ", root["name"])
	assert.Equal(t, "404", labelValue(root, ext.HTTPStatusCode))
}

func TestWrapHandler(t *testing.T) {
	c := newFakeCollector(t)
	startTracer(t, c)

	h := WrapHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rt, ok := tracer.RequestTracerFromContext(r.Context())
		assert.True(t, ok)
		assert.False(t, rt.TraceID().IsZero())
		w.WriteHeader(http.StatusAccepted)
	}), "my-resource", swtrace.Label{Key: "k", Value: "v"})

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/anything", nil))

	traces := c.waitForTraces(t, 1)
	root := rootSpan(t, traces[0])
	assert.Equal(t, "my-resource", root["name"])
	assert.Equal(t, "v", labelValue(root, "k"))
	assert.Equal(t, "202", labelValue(root, ext.HTTPStatusCode))
}
