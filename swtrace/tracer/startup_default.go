// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Skywatch (https://www.skywatchhq.com/).
// Copyright 2023 Skywatch, Inc.

//go:build !linux

package tracer

import (
	"runtime"
)

func osName() string {
	return runtime.GOOS
}

func osVersion() string {
	return "(Unknown Version)"
}
