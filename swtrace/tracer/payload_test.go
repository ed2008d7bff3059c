// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Skywatch (https://www.skywatchhq.com/).
// Copyright 2023 Skywatch, Inc.

package tracer

import (
	"bytes"
	"io"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tinylib/msgp/msgp"
)

var fixedTime = now()

func newTestSpanList(n int) spanList {
	list := make(spanList, n)
	for i := 0; i < n; i++ {
		seq := strconv.Itoa(i%5 + 1)
		list[i] = &span{
			name:   "span.list." + seq,
			spanID: random.Uint64(),
			start:  fixedTime,
			end:    fixedTime + 2,
			labels: []label{{key: "seq", value: seq}},
		}
	}
	return list
}

// TestPayloadIntegrity tests that whatever we push into the payload
// allows us to read the same content as would have been encoded by
// the codec.
func TestPayloadIntegrity(t *testing.T) {
	want := new(bytes.Buffer)
	for _, n := range []int{10, 1 << 10, 1 << 12} {
		t.Run(strconv.Itoa(n), func(t *testing.T) {
			assert := assert.New(t)
			p := newPayload()
			var allTraces traceList
			for i := 0; i < n; i++ {
				tr := &trace{traceID: random.TraceID().String(), spans: newTestSpanList(i%5 + 1)}
				allTraces = append(allTraces, tr)
				assert.NoError(p.push(tr))
			}
			assert.Equal(n, p.itemCount())

			want.Reset()
			err := msgp.Encode(want, allTraces)
			assert.NoError(err)
			assert.Equal(want.Len(), p.size())

			got, err := io.ReadAll(p)
			assert.NoError(err)
			assert.Equal(want.Bytes(), got)
		})
	}
}

// TestPayloadDecode ensures that whatever we push into the payload can
// be decoded by the codec.
func TestPayloadDecode(t *testing.T) {
	for _, n := range []int{10, 1 << 10} {
		t.Run(strconv.Itoa(n), func(t *testing.T) {
			assert := assert.New(t)
			p := newPayload()
			for i := 0; i < n; i++ {
				assert.NoError(p.push(&trace{traceID: random.TraceID().String(), spans: newTestSpanList(i%5 + 1)}))
			}
			var got traceList
			err := msgp.Decode(p, &got)
			assert.NoError(err)
			assert.Len(got, n)
		})
	}
}

func TestPayloadReset(t *testing.T) {
	p := newPayload()
	require.NoError(t, p.push(&trace{traceID: random.TraceID().String(), spans: newTestSpanList(2)}))

	first, err := io.ReadAll(p)
	require.NoError(t, err)

	// reset rewinds the stream so a failed send can be retried with the
	// identical bytes
	p.reset()
	second, err := io.ReadAll(p)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestPayloadSize(t *testing.T) {
	p := newPayload()
	assert.Equal(t, 0, p.itemCount())
	sizeBefore := p.size()
	require.NoError(t, p.push(&trace{traceID: random.TraceID().String(), spans: newTestSpanList(1)}))
	assert.Equal(t, 1, p.itemCount())
	assert.Greater(t, p.size(), sizeBefore)
}
