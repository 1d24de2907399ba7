/*
 Licensed under the Apache License, Version 2.0 (the "License");
 you may not use this file except in compliance with the License.
 You may obtain a copy of the License at

     https://www.apache.org/licenses/LICENSE-2.0

 Unless required by applicable law or agreed to in writing, software
 distributed under the License is distributed on an "AS IS" BASIS,
 WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 See the License for the specific language governing permissions and
 limitations under the License.
*/

package layers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractStatusThenWireEvent(t *testing.T) {
	blob := []byte{
		// status record, sop taken from the sixth byte
		0x45, 0x01, 0x02, 0x03, 0x00, 0x11,
		// wire event header: size code 7 -> 2 wire bytes
		0x87, 0x10, 0x20, 0x30, 0x40, 0x02,
		0x61, 0xa1,
	}

	extraction := ExtractEvents(blob)
	assert.Equal(t, StopEnd, extraction.Stop)
	assert.False(t, extraction.Partial())
	require.Len(t, extraction.Events, 2)

	status, ok := extraction.Events[0].(*StatusEvent)
	require.True(t, ok)
	assert.Equal(t, uint8(0x11), status.Sop)
	assert.Equal(t, uint32(0x030201), status.Timestamp)

	wire, ok := extraction.Events[1].(*WireEvent)
	require.True(t, ok)
	assert.Equal(t, uint8(0x02), wire.Sop)
	assert.Equal(t, uint32(0x40302010), wire.Timestamp)
	assert.True(t, wire.SopValid())
	assert.Equal(t, []byte{0x61, 0xa1}, wire.Wire)
}

func TestExtractStopsOnOverlongWireLength(t *testing.T) {
	blob := []byte{
		0x87, 0x10, 0x20, 0x30, 0x40, 0x00,
		0x61, 0xa1,
		// claims 11 wire bytes, only 2 remain
		0x90, 0x00, 0x00, 0x00, 0x00, 0x00,
		0x01, 0x02,
	}

	extraction := ExtractEvents(blob)
	require.Len(t, extraction.Events, 1)
	assert.Equal(t, StopTruncated, extraction.Stop)
	assert.True(t, extraction.Partial())
	assert.Equal(t, 8, extraction.Offset)
}

func TestExtractStopsOnTruncatedStatusRecord(t *testing.T) {
	blob := []byte{0x45, 0x01, 0x02, 0x03}

	extraction := ExtractEvents(blob)
	assert.Empty(t, extraction.Events)
	assert.Equal(t, StopTruncated, extraction.Stop)
}

func TestExtractStopsOnZeroWireLength(t *testing.T) {
	// size code 1 yields max(0, 1-5) = 0
	blob := []byte{0x81, 0x00, 0x00, 0x00, 0x00, 0x00, 0xff, 0xff}

	extraction := ExtractEvents(blob)
	assert.Empty(t, extraction.Events)
	assert.Equal(t, StopZeroLength, extraction.Stop)
}

func TestExtractStopsOnUnknownMarker(t *testing.T) {
	blob := []byte{
		0x45, 0x00, 0x00, 0x00, 0x00, 0x22,
		// 0x13 is outside both marker ranges; no resync is attempted
		0x13, 0x45, 0x00, 0x00, 0x00, 0x00,
	}

	extraction := ExtractEvents(blob)
	require.Len(t, extraction.Events, 1)
	assert.Equal(t, StopUnknownMarker, extraction.Stop)
	assert.Equal(t, 6, extraction.Offset)
}

func TestExtractEmptyBlob(t *testing.T) {
	extraction := ExtractEvents(nil)
	assert.Empty(t, extraction.Events)
	assert.Equal(t, StopEnd, extraction.Stop)
}

func TestWireLen(t *testing.T) {
	assert.Equal(t, 0, WireLen(0x81)) // size code 1
	assert.Equal(t, 2, WireLen(0x87)) // size code 7
	assert.Equal(t, 58, WireLen(0xbf))
	assert.Equal(t, 0, WireLen(0x80))
}
