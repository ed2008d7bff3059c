// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Skywatch (https://www.skywatchhq.com/).
// Copyright 2023 Skywatch, Inc.

package mux

import (
	"github.com/skywatchhq/sw-trace-go/swtrace"
)

type routerConfig struct {
	labels []swtrace.Label
}

// RouterOption represents an option that can be passed to NewRouter.
type RouterOption func(*routerConfig)

func newRouterConfig(opts ...RouterOption) *routerConfig {
	cfg := new(routerConfig)
	for _, fn := range opts {
		fn(cfg)
	}
	return cfg
}

// WithLabels adds the given labels to the root span of every request served
// through the router.
func WithLabels(labels ...swtrace.Label) RouterOption {
	return func(cfg *routerConfig) {
		cfg.labels = append(cfg.labels, labels...)
	}
}
