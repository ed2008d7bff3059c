// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Skywatch (https://www.skywatchhq.com/).
// Copyright 2023 Skywatch, Inc.

package logrus

import (
	"context"
	"io"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/skywatchhq/sw-trace-go/swtrace/tracer"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger(hook logrus.Hook) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	logger.AddHook(hook)
	return logger
}

func TestFire(t *testing.T) {
	require.NoError(t, tracer.Start(
		tracer.WithProjectID("test-project"),
		tracer.WithLogExporter(),
		tracer.WithLogStartup(false),
	))
	defer tracer.Stop()

	rt := tracer.StartRequest(nil)
	require.False(t, rt.TraceID().IsZero())
	rt.StartSpan("handler")
	defer rt.EndSpan()
	ctx := tracer.ContextWithRequestTracer(context.Background(), rt)

	e := logrus.NewEntry(newTestLogger(&ContextLogHook{}))
	e.Context = ctx
	hook := &ContextLogHook{}
	require.NoError(t, hook.Fire(e))

	assert.Equal(t, rt.TraceID().String(), e.Data["sw.trace_id"])
	assert.Equal(t, rt.Context().SpanID(), e.Data["sw.span_id"])
}

func TestFireNoContext(t *testing.T) {
	e := logrus.NewEntry(newTestLogger(&ContextLogHook{}))
	hook := &ContextLogHook{}
	require.NoError(t, hook.Fire(e))
	assert.NotContains(t, e.Data, "sw.trace_id")
}

func TestFireNoTracer(t *testing.T) {
	e := logrus.NewEntry(newTestLogger(&ContextLogHook{}))
	e.Context = context.Background()
	hook := &ContextLogHook{}
	require.NoError(t, hook.Fire(e))
	assert.NotContains(t, e.Data, "sw.trace_id")
	assert.NotContains(t, e.Data, "sw.span_id")
}

func TestLevels(t *testing.T) {
	hook := &ContextLogHook{}
	assert.Equal(t, logrus.AllLevels, hook.Levels())
}
