// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Skywatch (https://www.skywatchhq.com/).
// Copyright 2023 Skywatch, Inc.

package tracer

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/skywatchhq/sw-trace-go/swtrace"
)

// HTTPHeadersCarrier wraps an http.Header as a TextMapWriter and
// TextMapReader, allowing it to be used using the provided Propagator
// implementation.
type HTTPHeadersCarrier http.Header

var _ TextMapWriter = (*HTTPHeadersCarrier)(nil)
var _ TextMapReader = (*HTTPHeadersCarrier)(nil)

// Set implements TextMapWriter.
func (c HTTPHeadersCarrier) Set(key, val string) {
	http.Header(c).Set(key, val)
}

// ForeachKey implements TextMapReader.
func (c HTTPHeadersCarrier) ForeachKey(handler func(key, val string) error) error {
	for k, vals := range c {
		for _, v := range vals {
			if err := handler(k, v); err != nil {
				return err
			}
		}
	}
	return nil
}

// TextMapCarrier allows the use of a regular map[string]string as both
// TextMapWriter and TextMapReader, making it compatible with the provided
// Propagator.
type TextMapCarrier map[string]string

var _ TextMapWriter = (*TextMapCarrier)(nil)
var _ TextMapReader = (*TextMapCarrier)(nil)

// Set implements TextMapWriter.
func (c TextMapCarrier) Set(key, val string) {
	c[key] = val
}

// ForeachKey conforms to the TextMapReader interface.
func (c TextMapCarrier) ForeachKey(handler func(key, val string) error) error {
	for k, v := range c {
		if err := handler(k, v); err != nil {
			return err
		}
	}
	return nil
}

const (
	// DefaultBaggageHeaderPrefix specifies the prefix that will be used in
	// HTTP headers or text maps to prefix baggage keys.
	DefaultBaggageHeaderPrefix = "sw-baggage-"

	// DefaultTraceContextHeader specifies the key that will be used in HTTP
	// headers or text maps to store the trace context.
	DefaultTraceContextHeader = "x-skywatch-trace-context"
)

// PropagatorConfig defines the configuration for initializing a propagator.
type PropagatorConfig struct {
	// BaggagePrefix specifies the prefix that will be used to store baggage
	// items in a map. It defaults to DefaultBaggageHeaderPrefix.
	BaggagePrefix string

	// TraceContextHeader specifies the map key that will be used to store
	// the trace context. It defaults to DefaultTraceContextHeader.
	TraceContextHeader string
}

// NewPropagator returns a new propagator which uses TextMap to inject and
// extract values. It propagates the trace context and baggage. To use the
// defaults, nil may be provided in place of the config.
func NewPropagator(cfg *PropagatorConfig) Propagator {
	if cfg == nil {
		cfg = new(PropagatorConfig)
	}
	if cfg.BaggagePrefix == "" {
		cfg.BaggagePrefix = DefaultBaggageHeaderPrefix
	}
	if cfg.TraceContextHeader == "" {
		cfg.TraceContextHeader = DefaultTraceContextHeader
	}
	return &propagator{cfg}
}

// propagator implements Propagator and injects/extracts span contexts using
// Skywatch headers. Only TextMap carriers are supported.
type propagator struct {
	cfg *PropagatorConfig
}

func (p *propagator) Inject(spanCtx swtrace.SpanContext, carrier interface{}) error {
	switch c := carrier.(type) {
	case TextMapWriter:
		return p.injectTextMap(spanCtx, c)
	default:
		return ErrInvalidCarrier
	}
}

func (p *propagator) injectTextMap(spanCtx swtrace.SpanContext, writer TextMapWriter) error {
	ctx, ok := spanCtx.(*spanContext)
	if !ok || ctx.traceID.IsZero() || ctx.spanID == 0 {
		return ErrInvalidSpanContext
	}
	writer.Set(p.cfg.TraceContextHeader, formatTraceContext(ctx))
	// propagate baggage
	ctx.ForeachBaggageItem(func(k, v string) bool {
		writer.Set(p.cfg.BaggagePrefix+k, v)
		return true
	})
	return nil
}

func (p *propagator) Extract(carrier interface{}) (swtrace.SpanContext, error) {
	switch c := carrier.(type) {
	case TextMapReader:
		return p.extractTextMap(c)
	default:
		return nil, ErrInvalidCarrier
	}
}

func (p *propagator) extractTextMap(reader TextMapReader) (swtrace.SpanContext, error) {
	var ctx spanContext
	err := reader.ForeachKey(func(k, v string) error {
		key := strings.ToLower(k)
		switch key {
		case p.cfg.TraceContextHeader:
			if err := parseTraceContext(&ctx, v); err != nil {
				return err
			}
		default:
			if strings.HasPrefix(key, p.cfg.BaggagePrefix) {
				ctx.setBaggageItem(strings.TrimPrefix(key, p.cfg.BaggagePrefix), v)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if ctx.traceID.IsZero() {
		return nil, ErrSpanContextNotFound
	}
	return &ctx, nil
}

// formatTraceContext renders ctx in the TRACE_ID/SPAN_ID;o=OPTIONS wire
// form. The options part is left out when the context carries no sampling
// decision.
func formatTraceContext(ctx *spanContext) string {
	s := ctx.traceID.String() + "/" + strconv.FormatUint(ctx.spanID, 10)
	if sampled, ok := ctx.samplingDecision(); ok {
		if sampled {
			s += ";o=1"
		} else {
			s += ";o=0"
		}
	}
	return s
}

// parseTraceContext parses the TRACE_ID/SPAN_ID;o=OPTIONS wire form into
// ctx. Bit 0 of the options number carries the sampling decision.
func parseTraceContext(ctx *spanContext, v string) error {
	slash := strings.IndexByte(v, '/')
	if slash < 0 {
		return ErrSpanContextCorrupted
	}
	traceID, err := swtrace.ParseTraceID(v[:slash])
	if err != nil || traceID.IsZero() {
		return ErrSpanContextCorrupted
	}
	rest := v[slash+1:]
	if semi := strings.IndexByte(rest, ';'); semi >= 0 {
		opts := rest[semi+1:]
		rest = rest[:semi]
		if !strings.HasPrefix(opts, "o=") {
			return ErrSpanContextCorrupted
		}
		o, err := strconv.ParseUint(strings.TrimPrefix(opts, "o="), 10, 32)
		if err != nil {
			return ErrSpanContextCorrupted
		}
		ctx.setSamplingDecision(o&1 == 1)
	}
	spanID, err := strconv.ParseUint(rest, 10, 64)
	if err != nil || spanID == 0 {
		return ErrSpanContextCorrupted
	}
	ctx.traceID = traceID
	ctx.spanID = spanID
	return nil
}
