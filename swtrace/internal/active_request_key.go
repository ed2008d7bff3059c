// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Skywatch (https://www.skywatchhq.com/).
// Copyright 2023 Skywatch, Inc.

package internal

type contextKey struct{}

// ActiveRequestTracerKey is used to store the active request tracer on a
// context.Context object with a unique key.
var ActiveRequestTracerKey = contextKey{}
