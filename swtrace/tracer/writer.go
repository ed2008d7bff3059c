// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Skywatch (https://www.skywatchhq.com/).
// Copyright 2023 Skywatch, Inc.

package tracer

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/skywatchhq/sw-trace-go/internal"
	"github.com/skywatchhq/sw-trace-go/internal/log"
)

// traceWriter buffers completed traces into batches and delivers them. It is
// only ever driven by the tracer's worker goroutine.
type traceWriter interface {
	// add adds a completed trace to the current batch.
	add(t *trace)

	// flush causes the writer to send any buffered traces.
	flush()

	// stop gracefully shuts down the writer.
	stop()
}

const (
	// payloadMaxLimit is the maximum payload size accepted by the collector
	// on a single request. A trace that would push the in-progress payload
	// past this limit causes the payload to be cut beforehand. A single
	// trace bigger than the limit ships as its own payload.
	payloadMaxLimit = 4 * 1024 * 1024

	// payloadSizeLimit specifies the payload size at which the writer cuts
	// a payload without waiting for the next flush interval.
	payloadSizeLimit = payloadMaxLimit / 2

	// concurrentConnectionLimit specifies the maximum number of concurrent
	// outgoing connections allowed.
	concurrentConnectionLimit = 100
)

// collectorTraceWriter batches traces into msgpack payloads and ships them
// to the trace collector.
type collectorTraceWriter struct {
	// config holds the tracer configuration
	config *config

	// payload encodes and buffers traces in msgpack format
	payload *payload

	// climit limits the number of concurrent outgoing connections
	climit chan struct{}

	// wg waits for all uploads to finish
	wg sync.WaitGroup

	// statsd is used to send health metrics
	statsd internal.StatsdClient
}

func newCollectorTraceWriter(c *config, statsdClient internal.StatsdClient) *collectorTraceWriter {
	return &collectorTraceWriter{
		config:  c,
		payload: newPayload(),
		climit:  make(chan struct{}, concurrentConnectionLimit),
		statsd:  statsdClient,
	}
}

func (h *collectorTraceWriter) add(t *trace) {
	sz := t.Msgsize()
	if sz > payloadMaxLimit {
		// The trace alone exceeds the payload cap. It still ships, as its
		// own oversized payload, rather than being dropped.
		log.Warn("trace %s exceeds the payload size limit (%d > %d bytes), sending it alone", t.traceID, sz, payloadMaxLimit)
	}
	if h.payload.itemCount() > 0 && h.payload.size()+sz > payloadMaxLimit {
		h.statsd.Incr("skywatch.tracer.flush_triggered", []string{"reason:size"}, 1)
		h.flush()
	}
	if err := h.payload.push(t); err != nil {
		h.statsd.Incr("skywatch.tracer.traces_dropped", []string{"reason:encoding_error"}, 1)
		log.Error("error encoding msgpack: %v", err)
		return
	}
	if h.payload.size() > payloadSizeLimit {
		h.statsd.Incr("skywatch.tracer.flush_triggered", []string{"reason:size"}, 1)
		h.flush()
	}
}

func (h *collectorTraceWriter) stop() {
	h.statsd.Incr("skywatch.tracer.flush_triggered", []string{"reason:shutdown"}, 1)
	h.flush()
	done := make(chan struct{})
	go func() {
		h.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(h.config.shutdownTimeout):
		log.Warn("timed out waiting for in-flight payloads after %s", h.config.shutdownTimeout)
	}
}

// flush sends the currently buffered payload. The payload is handed to a new
// goroutine so that the worker can keep draining; climit bounds how many of
// these may be in flight.
func (h *collectorTraceWriter) flush() {
	if h.payload.itemCount() == 0 {
		return
	}
	h.wg.Add(1)
	h.climit <- struct{}{}
	oldp := h.payload
	h.payload = newPayload()
	go func(p *payload) {
		defer func(start time.Time) {
			// Clear the buffer so the garbage collector can reclaim it even
			// when a transport implementation keeps a reference to the
			// payload after the send.
			p.clear()
			<-h.climit
			h.wg.Done()
			h.statsd.Timing("skywatch.tracer.flush_duration", time.Since(start), nil, 1)
		}(time.Now())
		size, count := p.size(), p.itemCount()
		var err error
		backoff := h.config.retryInterval
		for attempt := 0; attempt <= h.config.sendRetries; attempt++ {
			log.Debug("Sending payload: size: %d traces: %d\n", size, count)
			var rc io.ReadCloser
			rc, err = h.config.transport.send(p)
			if err == nil {
				log.Debug("sent traces after %d attempts", attempt+1)
				h.statsd.Count("skywatch.tracer.flush_bytes", int64(size), nil, 1)
				h.statsd.Count("skywatch.tracer.flush_traces", int64(count), nil, 1)
				rc.Close()
				return
			}
			if !isRetriable(err) {
				break
			}
			if attempt < h.config.sendRetries {
				log.Error("failure sending traces (attempt %d), will retry: %v", attempt+1, err)
				p.reset()
				time.Sleep(backoff)
				backoff *= 2
			}
		}
		h.statsd.Count("skywatch.tracer.traces_dropped", int64(count), []string{"reason:send_failed"}, 1)
		log.Error("lost %d traces: %v", count, err)
	}(oldp)
}

// logWriter specifies the output writer used by the log trace writer. It is
// a variable so that tests may redirect it.
var logWriter io.Writer = os.Stdout

// logTraceWriter encodes traces into JSON and writes them to a log stream,
// one object of the form {"traces": [...]} per line. It serves environments
// where no collector is reachable and traces are shipped by a log forwarder.
type logTraceWriter struct {
	config    *config
	buf       bytes.Buffer
	hasTraces bool
	w         io.Writer
	statsd    internal.StatsdClient
}

func newLogTraceWriter(c *config, statsdClient internal.StatsdClient) *logTraceWriter {
	w := &logTraceWriter{
		config: c,
		w:      logWriter,
		statsd: statsdClient,
	}
	if c.logExportWriter != nil {
		w.w = c.logExportWriter
	}
	w.resetBuffer()
	return w
}

const (
	// logBufferSuffix is the final string that the trace writer has to append
	// to a buffer to close the JSON.
	logBufferSuffix = "]}\n"

	// logBufferLimit is the maximum log line size accepted by common log
	// forwarders.
	logBufferLimit = 255 * 1024
)

func (h *logTraceWriter) resetBuffer() {
	h.buf.Reset()
	h.buf.WriteString(`{"traces": [`)
	h.hasTraces = false
}

// encodeString writes str as a JSON string, escaping characters where
// required.
func (h *logTraceWriter) encodeString(str string) {
	h.buf.WriteByte('"')
	for _, r := range str {
		switch r {
		case '"':
			h.buf.WriteString(`\"`)
		case '\\':
			h.buf.WriteString(`\\`)
		case '\n':
			h.buf.WriteString(`\n`)
		case '\r':
			h.buf.WriteString(`\r`)
		case '\t':
			h.buf.WriteString(`\t`)
		default:
			if r < 0x20 {
				fmt.Fprintf(&h.buf, `\u%04x`, r)
			} else {
				h.buf.WriteRune(r)
			}
		}
	}
	h.buf.WriteByte('"')
}

// encodeSpan encodes the span as JSON into the buffer. Span IDs are written
// as decimal strings so that consumers without 64-bit integers keep their
// precision.
func (h *logTraceWriter) encodeSpan(s *span) {
	var scratch [20]byte
	h.buf.WriteString(`{"span_id":"`)
	h.buf.Write(strconv.AppendUint(scratch[:0], s.spanID, 10))
	h.buf.WriteString(`","parent_span_id":"`)
	h.buf.Write(strconv.AppendUint(scratch[:0], s.parentID, 10))
	h.buf.WriteString(`","name":`)
	h.encodeString(s.name)
	h.buf.WriteString(`,"start":`)
	h.buf.Write(strconv.AppendInt(scratch[:0], s.start, 10))
	h.buf.WriteString(`,"end":`)
	h.buf.Write(strconv.AppendInt(scratch[:0], s.end, 10))
	h.buf.WriteString(`,"labels":[`)
	for i, l := range s.labels {
		if i > 0 {
			h.buf.WriteByte(',')
		}
		h.buf.WriteString(`{"key":`)
		h.encodeString(l.key)
		h.buf.WriteString(`,"value":`)
		h.encodeString(l.value)
		h.buf.WriteByte('}')
	}
	h.buf.WriteString(`]}`)
}

func (h *logTraceWriter) encodeTrace(t *trace) {
	h.buf.WriteString(`{"trace_id":"`)
	h.buf.WriteString(t.traceID)
	h.buf.WriteString(`","spans":[`)
	for i, s := range t.spans {
		if i > 0 {
			h.buf.WriteByte(',')
		}
		h.encodeSpan(s)
	}
	h.buf.WriteString(`]}`)
}

// add writes the trace into the buffer. When it doesn't fit next to the
// traces already buffered, the buffer is flushed first. A trace that can
// never fit a log line is dropped and counted.
func (h *logTraceWriter) add(t *trace) {
	marker := h.buf.Len()
	if h.hasTraces {
		h.buf.WriteByte(',')
	}
	h.encodeTrace(t)
	if h.buf.Len()+len(logBufferSuffix) <= logBufferLimit {
		h.hasTraces = true
		return
	}
	h.buf.Truncate(marker)
	if !h.hasTraces {
		h.statsd.Count("skywatch.tracer.traces_dropped", 1, []string{"reason:trace_too_large"}, 1)
		log.Error("trace %s too large to fit in a log line, dropping", t.traceID)
		return
	}
	h.flush()
	h.add(t)
}

func (h *logTraceWriter) stop() {
	h.flush()
}

// flush writes the buffer and resets it for the next batch.
func (h *logTraceWriter) flush() {
	if !h.hasTraces {
		return
	}
	h.buf.WriteString(logBufferSuffix)
	h.w.Write(h.buf.Bytes())
	h.resetBuffer()
}
