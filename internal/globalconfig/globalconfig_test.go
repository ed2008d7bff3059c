// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Skywatch (https://www.skywatchhq.com/).
// Copyright 2023 Skywatch, Inc.

package globalconfig

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestServiceName(t *testing.T) {
	defer SetServiceName("")
	SetServiceName("api-intake")
	assert.Equal(t, "api-intake", ServiceName())
}

func TestRuntimeID(t *testing.T) {
	id := RuntimeID()
	_, err := uuid.Parse(id)
	assert.NoError(t, err)
	assert.Equal(t, id, RuntimeID())
}
