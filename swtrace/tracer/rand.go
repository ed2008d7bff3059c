// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Skywatch (https://www.skywatchhq.com/).
// Copyright 2023 Skywatch, Inc.

package tracer

import (
	cryptorand "crypto/rand"
	"math"
	"math/big"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/skywatchhq/sw-trace-go/internal/log"
	"github.com/skywatchhq/sw-trace-go/swtrace"
)

var (
	random   randT
	warnOnce sync.Once
	seedSeq  int64
	randPool = sync.Pool{
		New: func() interface{} {
			var seed int64
			n, err := cryptorand.Int(cryptorand.Reader, big.NewInt(math.MaxInt64))
			if err == nil {
				seed = n.Int64()
			} else {
				warnOnce.Do(func() {
					log.Warn("cannot generate random seed: %v; using current time", err)
				})
				seed = time.Now().UnixNano()
			}
			// seedSeq makes sure we don't create two generators with the same seed
			// by accident.
			return rand.New(rand.NewSource(seed + atomic.AddInt64(&seedSeq, 1)))
		},
	}
)

type randT struct{}

// Uint64 returns a random span ID. It's optimized for concurrent access.
// The high bit is always unset so that the ID survives signed 64-bit
// storage, and zero is never returned because it stands for "no parent".
func (randT) Uint64() uint64 {
	r := randPool.Get().(*rand.Rand)
	v := uint64(r.Int63())
	for v == 0 {
		v = uint64(r.Int63())
	}
	randPool.Put(r)
	return v
}

// TraceID returns a random 128-bit trace ID. It is never zero.
func (randT) TraceID() swtrace.TraceID {
	var id swtrace.TraceID
	r := randPool.Get().(*rand.Rand)
	for {
		// Read on a math/rand source never fails.
		r.Read(id[:])
		if !id.IsZero() {
			break
		}
	}
	randPool.Put(r)
	return id
}
