// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Skywatch (https://www.skywatchhq.com/).
// Copyright 2023 Skywatch, Inc.

// Package statsdtest provides a recording implementation of
// internal.StatsdClient for use in tests.
package statsdtest // import "github.com/skywatchhq/sw-trace-go/internal/statsdtest"

import (
	"sync"
	"time"

	"github.com/skywatchhq/sw-trace-go/internal"
)

var _ internal.StatsdClient = (*TestStatsdClient)(nil)

// TestStatsdClient records every metric submitted to it.
type TestStatsdClient struct {
	mu          sync.RWMutex
	gaugeCalls  []TestStatsdCall
	incrCalls   []TestStatsdCall
	countCalls  []TestStatsdCall
	timingCalls []TestStatsdCall
	counts      map[string]int64
	flushed     int
	closed      bool
}

// TestStatsdCall is a single recorded metric submission.
type TestStatsdCall struct {
	name     string
	floatVal float64
	intVal   int64
	timeVal  time.Duration
	tags     []string
	rate     float64
}

// Name returns the metric name of the call.
func (c TestStatsdCall) Name() string { return c.name }

// Tags returns the tags the call was made with.
func (c TestStatsdCall) Tags() []string { return c.tags }

// IntVal returns the integer value submitted by the call.
func (c TestStatsdCall) IntVal() int64 { return c.intVal }

// FloatVal returns the float value submitted by the call.
func (c TestStatsdCall) FloatVal() float64 { return c.floatVal }

func (tg *TestStatsdClient) addCount(name string, value int64) {
	tg.mu.Lock()
	defer tg.mu.Unlock()
	if tg.counts == nil {
		tg.counts = make(map[string]int64)
	}
	tg.counts[name] += value
}

// Gauge implements internal.StatsdClient.
func (tg *TestStatsdClient) Gauge(name string, value float64, tags []string, rate float64) error {
	tg.mu.Lock()
	defer tg.mu.Unlock()
	tg.gaugeCalls = append(tg.gaugeCalls, TestStatsdCall{name: name, floatVal: value, tags: copyTags(tags), rate: rate})
	return nil
}

// Incr implements internal.StatsdClient.
func (tg *TestStatsdClient) Incr(name string, tags []string, rate float64) error {
	tg.addCount(name, 1)
	tg.mu.Lock()
	defer tg.mu.Unlock()
	tg.incrCalls = append(tg.incrCalls, TestStatsdCall{name: name, tags: copyTags(tags), rate: rate})
	return nil
}

// Count implements internal.StatsdClient.
func (tg *TestStatsdClient) Count(name string, value int64, tags []string, rate float64) error {
	tg.addCount(name, value)
	tg.mu.Lock()
	defer tg.mu.Unlock()
	tg.countCalls = append(tg.countCalls, TestStatsdCall{name: name, intVal: value, tags: copyTags(tags), rate: rate})
	return nil
}

// Timing implements internal.StatsdClient.
func (tg *TestStatsdClient) Timing(name string, value time.Duration, tags []string, rate float64) error {
	tg.mu.Lock()
	defer tg.mu.Unlock()
	tg.timingCalls = append(tg.timingCalls, TestStatsdCall{name: name, timeVal: value, tags: copyTags(tags), rate: rate})
	return nil
}

// Flush implements internal.StatsdClient.
func (tg *TestStatsdClient) Flush() error {
	tg.mu.Lock()
	defer tg.mu.Unlock()
	tg.flushed++
	return nil
}

// Close implements internal.StatsdClient.
func (tg *TestStatsdClient) Close() error {
	tg.mu.Lock()
	defer tg.mu.Unlock()
	tg.closed = true
	return nil
}

// Closed reports whether Close has been called.
func (tg *TestStatsdClient) Closed() bool {
	tg.mu.RLock()
	defer tg.mu.RUnlock()
	return tg.closed
}

// CallNames returns the name of every Incr, Count, Gauge and Timing call
// made, in submission order per kind.
func (tg *TestStatsdClient) CallNames() []string {
	tg.mu.RLock()
	defer tg.mu.RUnlock()
	var names []string
	for _, calls := range [][]TestStatsdCall{tg.incrCalls, tg.countCalls, tg.gaugeCalls, tg.timingCalls} {
		for _, c := range calls {
			names = append(names, c.name)
		}
	}
	return names
}

// Counts returns the total submitted value per Incr/Count metric name.
func (tg *TestStatsdClient) Counts() map[string]int64 {
	tg.mu.RLock()
	defer tg.mu.RUnlock()
	m := make(map[string]int64, len(tg.counts))
	for k, v := range tg.counts {
		m[k] = v
	}
	return m
}

// CountCalls returns every Count call made.
func (tg *TestStatsdClient) CountCalls() []TestStatsdCall {
	tg.mu.RLock()
	defer tg.mu.RUnlock()
	return append([]TestStatsdCall(nil), tg.countCalls...)
}

// GaugeCalls returns every Gauge call made.
func (tg *TestStatsdClient) GaugeCalls() []TestStatsdCall {
	tg.mu.RLock()
	defer tg.mu.RUnlock()
	return append([]TestStatsdCall(nil), tg.gaugeCalls...)
}

func copyTags(tags []string) []string {
	return append([]string(nil), tags...)
}
