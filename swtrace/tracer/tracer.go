// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Skywatch (https://www.skywatchhq.com/).
// Copyright 2023 Skywatch, Inc.

package tracer

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/skywatchhq/sw-trace-go/internal/globalconfig"
	"github.com/skywatchhq/sw-trace-go/internal/log"
	"github.com/skywatchhq/sw-trace-go/swtrace"
	"github.com/skywatchhq/sw-trace-go/swtrace/internal"
)

var _ swtrace.Tracer = (*tracer)(nil)

// tracer creates request tracers, buffers the traces they complete and
// submits them to the collector. Completed traces accumulate in an internal
// payload which is flushed whenever its size exceeds a threshold or when a
// certain interval of time has passed, whichever happens first.
//
// tracer operates based on a worker loop which responds to various request
// channels. Request-serving goroutines only ever touch the producing end of
// the trace queue, so they never block on collector I/O.
type tracer struct {
	config *config

	// traceWriter is responsible for sending finished traces to their
	// destination, either the collector or the log.
	traceWriter traceWriter

	// out receives completed traces to be added to the payload.
	out chan *trace

	// queuedBytes tracks the total encoded size of the traces sitting in
	// out. Updated atomically.
	queuedBytes int64

	// flush receives a channel onto which it will confirm after a flush has
	// been triggered and completed.
	flush chan chan<- struct{}

	// stop causes the tracer to shut down when closed.
	stop chan struct{}

	// stopOnce ensures the tracer is stopped exactly once.
	stopOnce sync.Once

	// wg waits for all goroutines to exit when stopping.
	wg sync.WaitGroup

	// These integers track metrics about spans and traces as they are
	// started, finished, and dropped. They are read and reset by the
	// health metrics reporter.
	spansStarted, spansFinished, tracesDropped int64

	// samplerSeen counts the requests that reached the sampling decision;
	// samplerAllowed the ones that came out sampled.
	samplerSeen, samplerAllowed int64
}

// statsInterval is the interval at which health metrics will be sent with the
// statsd client; replaced in tests.
var statsInterval = 10 * time.Second

// Start starts the tracer with the given set of options. It will stop and
// replace any running tracer, meaning that calling it several times will
// result in a restart of the tracer by replacing the current instance with a
// new one. It fails when no project ID is configured and the collector
// writer is in use.
func Start(opts ...StartOption) error {
	t, err := newTracer(opts...)
	if err != nil {
		return err
	}
	internal.SetGlobalTracer(t)
	if t.config.logStartup {
		logStartup(t)
	}
	return nil
}

// Stop stops the started tracer. Subsequent calls are valid but become no-op.
func Stop() {
	internal.SetGlobalTracer(internal.NoopTracer{})
	log.Flush()
}

// StartRequest returns a request tracer for a request arriving with the
// given upstream span context, which may be nil when the request starts a
// new trace. If the tracer is not started or the request does not get
// sampled, the returned tracer is a no-op.
func StartRequest(parent swtrace.SpanContext) swtrace.RequestTracer {
	return internal.GetGlobalTracer().StartRequest(parent)
}

// Extract extracts a SpanContext from the carrier. The carrier is expected
// to implement TextMapReader, otherwise an error is returned.
// If the tracer is not started, calling this function is a no-op.
func Extract(carrier interface{}) (swtrace.SpanContext, error) {
	return internal.GetGlobalTracer().Extract(carrier)
}

// Inject injects the given SpanContext into the carrier. The carrier is
// expected to implement TextMapWriter, otherwise an error is returned.
// If the tracer is not started, calling this function is a no-op.
func Inject(ctx swtrace.SpanContext, carrier interface{}) error {
	return internal.GetGlobalTracer().Inject(ctx, carrier)
}

// Flush flushes any buffered traces. Flush is in effect only if a tracer is
// started. Users do not have to call Flush in order to ensure that traces
// reach the collector; it is a convenience method for environments such as
// serverless runtimes, where the process may be frozen right after serving a
// request.
func Flush() {
	if t, ok := internal.GetGlobalTracer().(*tracer); ok {
		t.flushSync()
	}
}

// flushSync triggers a flush and waits for it to complete.
func (t *tracer) flushSync() {
	done := make(chan struct{})
	select {
	case t.flush <- done:
		<-done
	case <-t.stop:
	}
}

func newUnstartedTracer(opts ...StartOption) (*tracer, error) {
	c := newConfig(opts...)
	if !c.logToStdout && c.projectID == "" {
		c.statsdClient.Close()
		return nil, fmt.Errorf("tracer: no project ID configured; set SW_PROJECT_ID or use WithProjectID")
	}
	globalconfig.SetServiceName(c.service)
	var writer traceWriter
	if c.logToStdout {
		writer = newLogTraceWriter(c, c.statsdClient)
	} else {
		if c.transport == nil {
			c.transport = newHTTPTransport(fmt.Sprintf("http://%s", c.collectorAddr), c.projectID, c.httpClient)
		}
		writer = newCollectorTraceWriter(c, c.statsdClient)
	}
	return &tracer{
		config:      c,
		traceWriter: writer,
		out:         make(chan *trace, c.bufferSize),
		stop:        make(chan struct{}),
		flush:       make(chan chan<- struct{}),
	}, nil
}

func newTracer(opts ...StartOption) (*tracer, error) {
	t, err := newUnstartedTracer(opts...)
	if err != nil {
		return nil, err
	}
	c := t.config
	if c.debug {
		log.SetLevel(log.LevelDebug)
	}
	c.statsdClient.Incr("skywatch.tracer.started", nil, 1)
	if c.runtimeMetrics {
		log.Debug("Runtime metrics enabled.")
		t.wg.Add(1)
		go func() {
			defer t.wg.Done()
			t.reportRuntimeMetrics(defaultMetricsReportInterval)
		}()
	}
	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		tick := c.tickChan
		if tick == nil {
			ticker := time.NewTicker(c.flushInterval)
			defer ticker.Stop()
			tick = ticker.C
		}
		t.worker(tick)
	}()
	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		t.reportHealthMetrics(statsInterval)
	}()
	return t, nil
}

// worker receives finished traces to be added into the payload, as well as
// periodically flushes traces to the transport.
func (t *tracer) worker(tick <-chan time.Time) {
	for {
		select {
		case tr := <-t.out:
			atomic.AddInt64(&t.queuedBytes, -int64(tr.Msgsize()))
			t.traceWriter.add(tr)

		case <-tick:
			t.config.statsdClient.Incr("skywatch.tracer.flush_triggered", []string{"reason:scheduled"}, 1)
			t.traceWriter.flush()

		case done := <-t.flush:
			t.config.statsdClient.Incr("skywatch.tracer.flush_triggered", []string{"reason:invoked"}, 1)
			t.traceWriter.flush()
			done <- struct{}{}

		case <-t.stop:
		loop:
			// the loop ensures that the trace queue is fully drained
			// before the final flush to ensure no traces are lost
			for {
				select {
				case tr := <-t.out:
					atomic.AddInt64(&t.queuedBytes, -int64(tr.Msgsize()))
					t.traceWriter.add(tr)
				default:
					break loop
				}
			}
			return
		}
	}
}

// pushTrace hands a completed trace to the worker. It never blocks: when the
// queue is over its size or byte bound, a trace is dropped according to the
// configured drop policy.
func (t *tracer) pushTrace(tr *trace) {
	select {
	case <-t.stop:
		return
	default:
	}
	if t.tryEnqueue(tr) {
		return
	}
	if t.config.dropPolicy == DropOldest {
		if old, ok := t.takeOldest(); ok {
			t.recordDroppedTrace(old)
			if t.tryEnqueue(tr) {
				return
			}
		}
	}
	t.recordDroppedTrace(tr)
}

// tryEnqueue reserves queue capacity for tr and hands it to the worker,
// reporting whether the trace was accepted.
func (t *tracer) tryEnqueue(tr *trace) bool {
	sz := int64(tr.Msgsize())
	if atomic.AddInt64(&t.queuedBytes, sz) > int64(t.config.bufferBytes) {
		atomic.AddInt64(&t.queuedBytes, -sz)
		return false
	}
	select {
	case t.out <- tr:
		return true
	default:
		atomic.AddInt64(&t.queuedBytes, -sz)
		return false
	}
}

// takeOldest evicts the head of the queue with a non-blocking receive. It
// reports false when the worker drained the queue in the meantime.
func (t *tracer) takeOldest() (*trace, bool) {
	select {
	case old := <-t.out:
		atomic.AddInt64(&t.queuedBytes, -int64(old.Msgsize()))
		return old, true
	default:
		return nil, false
	}
}

// recordDroppedTrace counts and logs a trace lost to a full queue.
func (t *tracer) recordDroppedTrace(tr *trace) {
	atomic.AddInt64(&t.tracesDropped, 1)
	log.Error("trace queue full, dropping trace with %d spans", len(tr.spans))
}

// StartRequest implements swtrace.Tracer. The sampling decision propagated
// by the upstream service wins when present; otherwise the configured
// sampler decides. Unsampled requests get a no-op tracer, making all
// span operations free.
func (t *tracer) StartRequest(parent swtrace.SpanContext) swtrace.RequestTracer {
	var (
		traceID  swtrace.TraceID
		parentID uint64
	)
	if parent != nil {
		traceID = parent.TraceID()
		parentID = parent.SpanID()
	}
	atomic.AddInt64(&t.samplerSeen, 1)
	sampled, ok := sampledFromContext(parent)
	if !ok {
		if traceID.IsZero() {
			traceID = random.TraceID()
		}
		sampled = t.config.sampler.Sample(traceID)
	}
	if !sampled {
		return internal.NoopRequestTracer{}
	}
	atomic.AddInt64(&t.samplerAllowed, 1)
	if traceID.IsZero() {
		traceID = random.TraceID()
	}
	rt := newRequestTracer(t, traceID, parentID)
	if parent != nil {
		parent.ForeachBaggageItem(func(k, v string) bool {
			rt.SetBaggageItem(k, v)
			return true
		})
	}
	log.Debug("Started request tracer: trace %s, parent span %d", traceID, parentID)
	return rt
}

// Stop implements swtrace.Tracer.
func (t *tracer) Stop() {
	t.stopOnce.Do(func() {
		close(t.stop)
		t.config.statsdClient.Incr("skywatch.tracer.stopped", nil, 1)
	})
	t.wg.Wait()
	t.traceWriter.stop()
	t.config.statsdClient.Close()
}

// Inject implements swtrace.Tracer using the configured or default
// propagator.
func (t *tracer) Inject(ctx swtrace.SpanContext, carrier interface{}) error {
	return t.config.propagator.Inject(ctx, carrier)
}

// Extract implements swtrace.Tracer using the configured or default
// propagator.
func (t *tracer) Extract(carrier interface{}) (swtrace.SpanContext, error) {
	return t.config.propagator.Extract(carrier)
}
