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

package capture

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const framesJSONL = `# exported from usbmon
{"frame_number":2,"timestamp":0.002,"urb_id":"0xa1","urb_type":"C","urb_status":"0","transfer_type":"0x02","endpoint_address":"0x80","data_length":18}

{"frame_number":1,"timestamp":0.001,"urb_id":"0xa1","urb_type":"S","urb_status":"0","transfer_type":"0x02","endpoint_address":"0x80","data_length":0}
not json at all
{"frame_number":3,"timestamp":0.003,"urb_id":"0xb1","urb_type":"S","urb_status":"0","transfer_type":"0x03","endpoint_address":"0x01","data_length":4,"payload_hex":"0c220200"}
`

func TestReadFrames(t *testing.T) {
	frames, err := ReadFrames(strings.NewReader(framesJSONL))
	require.NoError(t, err)
	require.Len(t, frames, 3)

	assert.Equal(t, uint64(2), frames[0].FrameNumber)
	assert.Equal(t, "0xa1", frames[0].UrbID)
	assert.True(t, frames[0].IsComplete())
	assert.True(t, frames[2].IsBulkCommand())
	assert.Equal(t, "0c220200", frames[2].PayloadHex)
}

func TestReadFramesEmpty(t *testing.T) {
	frames, err := ReadFrames(strings.NewReader("# nothing here\n"))
	require.NoError(t, err)
	assert.Empty(t, frames)
}

func TestSortFrames(t *testing.T) {
	frames, err := ReadFrames(strings.NewReader(framesJSONL))
	require.NoError(t, err)

	SortFrames(frames)
	assert.Equal(t, uint64(1), frames[0].FrameNumber)
	assert.Equal(t, uint64(2), frames[1].FrameNumber)
	assert.Equal(t, uint64(3), frames[2].FrameNumber)
}

func TestSortFramesTimestampTieBreaksOnFrameNumber(t *testing.T) {
	frames := []*CaptureFrame{
		{FrameNumber: 5, Timestamp: 0.001},
		{FrameNumber: 4, Timestamp: 0.001},
	}
	SortFrames(frames)
	assert.Equal(t, uint64(4), frames[0].FrameNumber)
}

func TestWriteFramesRoundTrip(t *testing.T) {
	frames, err := ReadFrames(strings.NewReader(framesJSONL))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteFrames(&buf, frames))

	again, err := ReadFrames(&buf)
	require.NoError(t, err)
	require.Len(t, again, len(frames))
	for i := range frames {
		assert.Equal(t, *frames[i], *again[i])
	}
}
