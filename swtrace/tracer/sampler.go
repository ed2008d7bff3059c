// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Skywatch (https://www.skywatchhq.com/).
// Copyright 2023 Skywatch, Inc.

package tracer

import (
	"encoding/binary"
	"math"
	"os"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/skywatchhq/sw-trace-go/internal/log"
	"github.com/skywatchhq/sw-trace-go/swtrace"
)

// Sampler is the generic interface of any sampler. It must be safe for
// concurrent use.
type Sampler interface {
	// Sample should return true if the request owning the given trace ID
	// should be recorded.
	Sample(id swtrace.TraceID) bool
}

// RateSampler is a sampler implementation which allows setting and getting a
// sample rate. A RateSampler implementation is expected to be safe for
// concurrent use.
type RateSampler interface {
	Sampler

	// Rate returns the current sample rate of the sampler.
	Rate() float64

	// SetRate sets a new sample rate for the sampler.
	SetRate(rate float64)
}

// rateSampler samples from a sample rate.
type rateSampler struct {
	sync.RWMutex
	rate float64
}

// NewAllSampler is simply a short-hand for NewRateSampler(1).
func NewAllSampler() RateSampler { return NewRateSampler(1) }

// NewRateSampler returns an initialized RateSampler with the given sample
// rate. Whether a given trace is recorded is a deterministic function of its
// trace ID, so all services applying the same rate keep or reject the same
// traces.
func NewRateSampler(rate float64) RateSampler {
	return &rateSampler{rate: rate}
}

// Rate returns the current rate of the sampler.
func (r *rateSampler) Rate() float64 {
	r.RLock()
	defer r.RUnlock()
	return r.rate
}

// SetRate sets a new sampling rate.
func (r *rateSampler) SetRate(rate float64) {
	r.Lock()
	r.rate = rate
	r.Unlock()
}

// constants used for the Knuth hashing, same as the collector.
const knuthFactor = uint64(1111111111111111111)

// Sample returns true if the trace with the given ID should be sampled.
func (r *rateSampler) Sample(id swtrace.TraceID) bool {
	r.RLock()
	defer r.RUnlock()
	if r.rate < 1 {
		return binary.BigEndian.Uint64(id[8:])*knuthFactor < uint64(r.rate*math.MaxUint64)
	}
	return true
}

// rateLimitedSampler admits a bounded number of requests per second through
// a token bucket: a steady refill of limit tokens per second with room for
// a burst of ceil(limit).
type rateLimitedSampler struct {
	limit   float64
	limiter *rateLimiter
}

// NewRateLimitedSampler returns a sampler which admits at most limit
// requests per second, with room for a burst of ceil(limit) at once. The
// sampling decision never blocks.
func NewRateLimitedSampler(limit float64) Sampler {
	return &rateLimitedSampler{limit: limit, limiter: newRateLimiter(limit)}
}

// Sample reports whether a new request may be recorded under the configured
// limit. The trace ID plays no part in the decision.
func (s *rateLimitedSampler) Sample(_ swtrace.TraceID) bool {
	ok, _ := s.limiter.allowOne(time.Now())
	return ok
}

// defaultRateLimit specifies the default maximum number of traces recorded
// per second when SW_TRACE_RATE_LIMIT is not set.
const defaultRateLimit = 100.0

// newDefaultSampler returns the sampler used when no WithSampler option is
// given: a token bucket restricted to defaultRateLimit traces per second.
// The SW_TRACE_RATE_LIMIT environment variable may override the default.
func newDefaultSampler() Sampler {
	limit := defaultRateLimit
	v := os.Getenv("SW_TRACE_RATE_LIMIT")
	if v != "" {
		l, err := strconv.ParseFloat(v, 64)
		if err != nil {
			log.Warn("using default rate limit because SW_TRACE_RATE_LIMIT is invalid: %v", err)
		} else if l < 0.0 {
			log.Warn("using default rate limit because SW_TRACE_RATE_LIMIT is negative: %f", l)
		} else {
			// override the default limit
			limit = l
		}
	}
	return NewRateLimitedSampler(limit)
}

// rateLimiter is a wrapper on top of golang.org/x/time/rate which implements
// a rate limiter and also keeps track of the effective rate of allowance.
type rateLimiter struct {
	limiter *rate.Limiter

	mu          sync.Mutex // guards below fields
	prevTime    time.Time  // time at which prevAllowed and prevSeen were set
	allowed     float64    // number of requests allowed in the current period
	seen        float64    // number of requests seen in the current period
	prevAllowed float64    // number of requests allowed in the previous period
	prevSeen    float64    // number of requests seen in the previous period
}

// newRateLimiter returns a rate limiter which restricts the number of
// requests recorded per second to limit, allowing bursts of up to
// ceil(limit).
func newRateLimiter(limit float64) *rateLimiter {
	return &rateLimiter{
		limiter:  rate.NewLimiter(rate.Limit(limit), int(math.Ceil(limit))),
		prevTime: time.Now(),
	}
}

// allowOne returns the rate limiter's decision to allow a new request to be
// recorded, and the effective rate at the time it is called. The effective
// rate is computed by averaging the rate for the previous second with the
// current rate. The decision is made without blocking.
func (r *rateLimiter) allowOne(now time.Time) (bool, float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if d := now.Sub(r.prevTime); d >= time.Second {
		// enough time has passed to reset the counters
		if d.Truncate(time.Second) == time.Second && r.seen > 0 {
			// exactly one second, so update prev
			r.prevAllowed = r.allowed
			r.prevSeen = r.seen
		} else {
			// more than one second, so reset previous rate
			r.prevAllowed = 0
			r.prevSeen = 0
		}
		r.prevTime = now
		r.allowed = 0
		r.seen = 0
	}
	r.seen++
	var sampled bool
	if r.limiter.AllowN(now, 1) {
		r.allowed++
		sampled = true
	}
	er := (r.prevAllowed + r.allowed) / (r.prevSeen + r.seen)
	return sampled, er
}

// effectiveRate returns the share of requests admitted over the previous and
// current second.
func (r *rateLimiter) effectiveRate() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.prevSeen+r.seen == 0 {
		return 1
	}
	return (r.prevAllowed + r.allowed) / (r.prevSeen + r.seen)
}
