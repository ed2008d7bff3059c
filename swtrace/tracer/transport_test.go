// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Skywatch (https://www.skywatchhq.com/).
// Copyright 2023 Skywatch, Inc.

package tracer

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tinylib/msgp/msgp"
)

func TestHTTPTransport(t *testing.T) {
	var (
		gotHeader http.Header
		gotTraces traceList
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHeader = r.Header.Clone()
		require.NoError(t, msgp.Decode(r.Body, &gotTraces))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	trans := newHTTPTransport(srv.URL, "my-project", defaultClient)
	assert.Equal(t, srv.URL+"/v1/projects/my-project/traces", trans.endpoint())

	p := newPayload()
	require.NoError(t, p.push(makeTrace(1)))
	require.NoError(t, p.push(makeTrace(2)))
	body, err := trans.send(p)
	require.NoError(t, err)
	body.Close()

	assert.Equal(t, "application/msgpack", gotHeader.Get("Content-Type"))
	assert.Equal(t, "2", gotHeader.Get("X-Skywatch-Trace-Count"))
	assert.Equal(t, "go", gotHeader.Get("Skywatch-Meta-Lang"))
	assert.NotEmpty(t, gotHeader.Get("Skywatch-Meta-Lang-Version"))
	assert.NotEmpty(t, gotHeader.Get("Skywatch-Meta-Tracer-Version"))
	assert.NotEmpty(t, gotHeader.Get("X-Skywatch-Runtime-ID"))
	assert.Len(t, gotTraces, 2)
}

func TestHTTPTransportStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unknown project", http.StatusNotFound)
	}))
	defer srv.Close()

	trans := newHTTPTransport(srv.URL, "nope", defaultClient)
	p := newPayload()
	require.NoError(t, p.push(makeTrace(1)))
	_, err := trans.send(p)
	require.Error(t, err)
	var se *sendError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusNotFound, se.status)
	assert.Contains(t, err.Error(), "unknown project")
	assert.False(t, isRetriable(err))
}

func TestHTTPTransportConnectionError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // nothing listens anymore

	trans := newHTTPTransport(srv.URL, "my-project", defaultClient)
	p := newPayload()
	require.NoError(t, p.push(makeTrace(1)))
	_, err := trans.send(p)
	require.Error(t, err)
	assert.True(t, isRetriable(err), "a request that never completed is worth retrying")
}

func TestSendErrorRetriable(t *testing.T) {
	for _, tt := range []struct {
		status    int
		retriable bool
	}{
		{0, true}, // request never completed
		{http.StatusRequestTimeout, true},
		{http.StatusTooManyRequests, true},
		{http.StatusInternalServerError, true},
		{http.StatusBadGateway, true},
		{http.StatusServiceUnavailable, true},
		{http.StatusBadRequest, false},
		{http.StatusUnauthorized, false},
		{http.StatusForbidden, false},
		{http.StatusNotFound, false},
	} {
		t.Run(fmt.Sprintf("%d", tt.status), func(t *testing.T) {
			err := &sendError{status: tt.status, err: errors.New("boom")}
			assert.Equal(t, tt.retriable, err.retriable())
			assert.Equal(t, tt.retriable, isRetriable(err))
		})
	}
	assert.False(t, isRetriable(errors.New("not a send error")))
}
