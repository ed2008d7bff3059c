// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Skywatch (https://www.skywatchhq.com/).
// Copyright 2023 Skywatch, Inc.

package http

import (
	"github.com/skywatchhq/sw-trace-go/swtrace"
)

type muxConfig struct {
	labels []swtrace.Label
}

// MuxOption represents an option that can be passed to NewServeMux.
type MuxOption func(*muxConfig)

func newMuxConfig(opts ...MuxOption) *muxConfig {
	cfg := new(muxConfig)
	for _, fn := range opts {
		fn(cfg)
	}
	return cfg
}

// WithLabels adds the given labels to the root span of every request served
// through the mux.
func WithLabels(labels ...swtrace.Label) MuxOption {
	return func(cfg *muxConfig) {
		cfg.labels = append(cfg.labels, labels...)
	}
}
