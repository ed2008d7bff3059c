// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Skywatch (https://www.skywatchhq.com/).
// Copyright 2023 Skywatch, Inc.

// Package logrus provides a log/trace correlation hook for the
// sirupsen/logrus package (https://github.com/sirupsen/logrus).
package logrus // import "github.com/skywatchhq/sw-trace-go/contrib/sirupsen/logrus"

import (
	"github.com/sirupsen/logrus"

	"github.com/skywatchhq/sw-trace-go/swtrace/tracer"
)

// ContextLogHook ensures that any request tracer in the log entry's context
// is correlated to the log output via the sw.trace_id and sw.span_id fields.
type ContextLogHook struct{}

var _ logrus.Hook = (*ContextLogHook)(nil)

// Levels implements logrus.Hook.
func (d *ContextLogHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

// Fire implements logrus.Hook. It attaches the trace and span identifiers
// found in the entry's context, if any.
func (d *ContextLogHook) Fire(e *logrus.Entry) error {
	if e.Context == nil {
		return nil
	}
	rt, ok := tracer.RequestTracerFromContext(e.Context)
	if !ok || rt.TraceID().IsZero() {
		return nil
	}
	e.Data["sw.trace_id"] = rt.TraceID().String()
	e.Data["sw.span_id"] = rt.Context().SpanID()
	return nil
}
