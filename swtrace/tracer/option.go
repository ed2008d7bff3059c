// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Skywatch (https://www.skywatchhq.com/).
// Copyright 2023 Skywatch, Inc.

package tracer

import (
	"io"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/skywatchhq/sw-trace-go/internal"
	"github.com/skywatchhq/sw-trace-go/internal/log"
	"github.com/skywatchhq/sw-trace-go/internal/version"
	"github.com/skywatchhq/sw-trace-go/swtrace"

	"github.com/DataDog/datadog-go/v5/statsd"
)

const (
	// defaultFlushInterval is how often the worker flushes queued traces
	// when no size threshold or explicit request triggers one first.
	defaultFlushInterval = 2 * time.Second

	// defaultBufferSize is the maximum number of traces queued between
	// request tracers and the worker.
	defaultBufferSize = 1000

	// defaultBufferBytes bounds the total encoded size of the queued
	// traces.
	defaultBufferBytes = 16 * 1024 * 1024 // 16 MB

	// defaultSendRetries is the number of extra attempts made when sending
	// a payload fails with a retryable error.
	defaultSendRetries = 3

	// defaultRetryInterval is the wait before the first retry of a failed
	// send. It doubles after every failed attempt.
	defaultRetryInterval = 100 * time.Millisecond

	// defaultShutdownTimeout bounds the final flush performed by Stop.
	defaultShutdownTimeout = 5 * time.Second

	// defaultStatsdAddr is the address health metrics are sent to unless
	// configured otherwise.
	defaultStatsdAddr = "localhost:8125"
)

// DropPolicy selects which trace is discarded when the queue between request
// tracers and the worker is full.
type DropPolicy int

const (
	// DropNewest discards the incoming trace, keeping the queued ones.
	DropNewest DropPolicy = iota

	// DropOldest evicts the oldest queued trace to make room for the
	// incoming one.
	DropOldest
)

// String implements fmt.Stringer.
func (p DropPolicy) String() string {
	if p == DropOldest {
		return "drop_oldest"
	}
	return "drop_newest"
}

// config holds the tracer configuration.
type config struct {
	// debug, when true, writes details to logs.
	debug bool

	// logStartup, when true, causes various startup info to be written
	// when the tracer starts.
	logStartup bool

	// service specifies the name of this application.
	service string

	// projectID specifies the project that exported traces are recorded
	// under. It is required unless the log exporter is used.
	projectID string

	// sampler specifies the sampler that will be used for sampling traces.
	sampler Sampler

	// collectorAddr specifies the hostname and port of the collector where
	// the traces are sent to.
	collectorAddr string

	// globalLabels holds a set of labels that will be automatically
	// applied to all spans.
	globalLabels []swtrace.Label

	// transport specifies the Transport interface which will be used to
	// send data to the collector.
	transport transport

	// propagator extracts and injects span contexts on text map carriers.
	propagator Propagator

	// httpClient specifies the HTTP client to be used by the transport.
	httpClient *http.Client

	// flushInterval is how often queued traces are flushed to the
	// collector when nothing else triggers a flush first.
	flushInterval time.Duration

	// bufferSize is the maximum number of traces queued between request
	// tracers and the worker.
	bufferSize int

	// bufferBytes bounds the total encoded size of the queued traces.
	bufferBytes int

	// dropPolicy selects the trace discarded when the queue is full.
	dropPolicy DropPolicy

	// sendRetries is the number of extra attempts made when a payload
	// send fails with a retryable error.
	sendRetries int

	// retryInterval is the wait before the first retry of a failed send.
	retryInterval time.Duration

	// shutdownTimeout bounds the final flush performed by Stop.
	shutdownTimeout time.Duration

	// logToStdout reports whether trace batches should be written to the
	// log instead of sent to a collector. This is used in serverless
	// environments where no collector is reachable.
	logToStdout bool

	// logExportWriter overrides the destination of the log exporter.
	// Used in tests.
	logExportWriter io.Writer

	// statsdAddr specifies the address to connect for sending health
	// metrics.
	statsdAddr string

	// statsdClient is used for tracking health metrics of the tracer
	// itself.
	statsdClient internal.StatsdClient

	// runtimeMetrics, when true, enables reporting of Go runtime metrics.
	runtimeMetrics bool

	// tickChan replaces the flush interval ticker. Used in tests.
	tickChan <-chan time.Time
}

// StartOption represents a function that can be provided as a parameter to Start.
type StartOption func(*config)

// newConfig renders the tracer configuration based on defaults, environment
// variables and passed user opts.
func newConfig(opts ...StartOption) *config {
	c := new(config)
	c.sampler = newDefaultSampler()
	c.collectorAddr = resolveCollectorAddr()
	c.httpClient = defaultClient
	c.flushInterval = defaultFlushInterval
	c.bufferSize = defaultBufferSize
	c.bufferBytes = defaultBufferBytes
	c.sendRetries = defaultSendRetries
	c.retryInterval = defaultRetryInterval
	c.shutdownTimeout = defaultShutdownTimeout
	c.logStartup = internal.BoolEnv("SW_TRACE_STARTUP_LOGS", true)
	c.debug = internal.BoolEnv("SW_TRACE_DEBUG", false)
	if v := os.Getenv("SW_SERVICE"); v != "" {
		c.service = v
	}
	if v := os.Getenv("SW_PROJECT_ID"); v != "" {
		c.projectID = v
	}
	for _, fn := range opts {
		fn(c)
	}
	if c.service == "" {
		c.service = filepath.Base(os.Args[0])
	}
	if c.propagator == nil {
		c.propagator = NewPropagator(nil)
	}
	if c.statsdClient == nil {
		c.statsdClient = newStatsdClient(c)
	}
	return c
}

// resolveCollectorAddr resolves the collector address, giving the environment
// precedence over the default.
func resolveCollectorAddr() string {
	addr := defaultAddress
	if v := os.Getenv("SW_COLLECTOR_ADDR"); v != "" {
		addr = v
	}
	return addr
}

// resolveStatsdAddr resolves the address used for sending health metrics.
func resolveStatsdAddr() string {
	addr := defaultStatsdAddr
	if v := os.Getenv("SW_STATSD_ADDR"); v != "" {
		addr = v
	}
	return addr
}

// newStatsdClient returns a client for reporting the tracer's health metrics,
// or a no-op implementation when the connection cannot be set up.
func newStatsdClient(c *config) internal.StatsdClient {
	addr := c.statsdAddr
	if addr == "" {
		addr = resolveStatsdAddr()
	}
	client, err := statsd.New(addr, statsd.WithMaxMessagesPerPayload(40), statsd.WithTags(statsTags(c)))
	if err != nil {
		log.Warn("Runtime and health metrics disabled: %v", err)
		return &statsd.NoOpClient{}
	}
	return client
}

// statsTags builds the constant set of tags attached to all health metrics.
func statsTags(c *config) []string {
	tags := []string{
		"lang:go",
		"lang_version:" + strings.TrimPrefix(runtime.Version(), "go"),
		"tracer_version:" + version.Tag,
	}
	if c.service != "" {
		tags = append(tags, "service:"+c.service)
	}
	if c.projectID != "" {
		tags = append(tags, "project_id:"+c.projectID)
	}
	return tags
}

// withTransport replaces the transport used to deliver payloads to the
// collector. Used in tests.
func withTransport(t transport) StartOption {
	return func(c *config) {
		c.transport = t
	}
}

// withLogExportWriter redirects the log exporter's output. Used in tests.
func withLogExportWriter(w io.Writer) StartOption {
	return func(c *config) {
		c.logExportWriter = w
	}
}

// withStatsdClient sets the statsd client the tracer reports health metrics
// with. Used in tests.
func withStatsdClient(s internal.StatsdClient) StartOption {
	return func(c *config) {
		c.statsdClient = s
	}
}

// WithService sets the default service name to be used with the tracer.
func WithService(name string) StartOption {
	return func(c *config) {
		c.service = name
	}
}

// WithProjectID sets the project that exported traces are recorded under.
func WithProjectID(id string) StartOption {
	return func(c *config) {
		c.projectID = id
	}
}

// WithCollectorAddr sets the address where the collector is located. The
// default is localhost:9670. It should contain both host and port.
func WithCollectorAddr(addr string) StartOption {
	return func(c *config) {
		c.collectorAddr = addr
	}
}

// WithSampler sets the given sampler to be used with the tracer. By default
// a rate-limited sampler is used.
func WithSampler(s Sampler) StartOption {
	return func(c *config) {
		c.sampler = s
	}
}

// WithPropagator sets a custom propagator to be used by the tracer when
// extracting and injecting trace context.
func WithPropagator(p Propagator) StartOption {
	return func(c *config) {
		c.propagator = p
	}
}

// WithGlobalLabel sets a key/value pair which will be set as a label on all
// spans recorded by the tracer.
func WithGlobalLabel(k, v string) StartOption {
	return func(c *config) {
		c.globalLabels = append(c.globalLabels, swtrace.Label{Key: k, Value: v})
	}
}

// WithFlushInterval sets how often queued traces are flushed to the
// collector when neither the size threshold nor an explicit Flush triggers
// one first.
func WithFlushInterval(d time.Duration) StartOption {
	return func(c *config) {
		c.flushInterval = d
	}
}

// WithBufferSize sets the maximum number of traces held in the queue between
// request tracers and the worker. When the queue is full incoming traces are
// dropped according to the configured drop policy.
func WithBufferSize(n int) StartOption {
	return func(c *config) {
		c.bufferSize = n
	}
}

// WithBufferBytes bounds the total encoded size of the traces held in the
// queue between request tracers and the worker.
func WithBufferBytes(n int) StartOption {
	return func(c *config) {
		c.bufferBytes = n
	}
}

// WithDropPolicy selects which trace is discarded when the queue between
// request tracers and the worker is full. The default is DropNewest.
func WithDropPolicy(p DropPolicy) StartOption {
	return func(c *config) {
		c.dropPolicy = p
	}
}

// WithSendRetries sets the number of extra attempts made when sending a
// payload fails with a retryable error.
func WithSendRetries(n int) StartOption {
	return func(c *config) {
		c.sendRetries = n
	}
}

// WithRetryInterval sets the wait before the first retry of a failed send.
// The wait doubles after every failed attempt.
func WithRetryInterval(d time.Duration) StartOption {
	return func(c *config) {
		c.retryInterval = d
	}
}

// WithShutdownTimeout bounds the time Stop spends waiting for the final
// flush and any in-flight sends.
func WithShutdownTimeout(d time.Duration) StartOption {
	return func(c *config) {
		c.shutdownTimeout = d
	}
}

// WithLogExporter makes the tracer write trace batches as JSON to the
// standard output instead of sending them to a collector. This is intended
// for serverless environments where log scraping replaces the collector.
func WithLogExporter() StartOption {
	return func(c *config) {
		c.logToStdout = true
	}
}

// WithHTTPClient specifies the HTTP client to use when emitting traces to
// the collector.
func WithHTTPClient(client *http.Client) StartOption {
	return func(c *config) {
		c.httpClient = client
	}
}

// WithStatsdAddress specifies the address to connect to for sending health
// metrics. If not set, it defaults to localhost:8125 or to the value of the
// SW_STATSD_ADDR environment variable.
func WithStatsdAddress(addr string) StartOption {
	return func(c *config) {
		c.statsdAddr = addr
	}
}

// WithRuntimeMetrics enables automatic collection of runtime metrics every
// 10 seconds.
func WithRuntimeMetrics() StartOption {
	return func(c *config) {
		c.runtimeMetrics = true
	}
}

// WithDebugMode enables debug mode on the tracer, making logging more
// verbose.
func WithDebugMode(enabled bool) StartOption {
	return func(c *config) {
		c.debug = enabled
	}
}

// WithLogStartup allows enabling or disabling the startup log.
func WithLogStartup(enabled bool) StartOption {
	return func(c *config) {
		c.logStartup = enabled
	}
}

// WithLogger sets logger as the tracer's error printer.
func WithLogger(logger swtrace.Logger) StartOption {
	return func(_ *config) {
		log.UseLogger(logger)
	}
}
