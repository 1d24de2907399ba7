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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var nextFrameNumber uint64

func frame(urbID, urbType, transferType, endpoint string, dataLength int) *CaptureFrame {
	nextFrameNumber++
	return &CaptureFrame{
		FrameNumber:     nextFrameNumber,
		Timestamp:       float64(nextFrameNumber) / 1000,
		UrbID:           urbID,
		UrbType:         urbType,
		UrbStatus:       "0",
		TransferType:    transferType,
		EndpointAddress: endpoint,
		DataLength:      dataLength,
	}
}

func controlS(urbID string) *CaptureFrame {
	return frame(urbID, UrbSubmit, TransferControl, "0x80", 0)
}

func controlC(urbID string) *CaptureFrame {
	return frame(urbID, UrbComplete, TransferControl, "0x80", 18)
}

func TestReconstructControlPairAndUnmatched(t *testing.T) {
	frames := []*CaptureFrame{controlS("0xa1"), controlC("0xa1"), controlS("0xa2")}

	transactions := Reconstruct(frames)
	require.Len(t, transactions, 2)

	assert.Equal(t, TransactionControl, transactions[0].Kind)
	assert.Equal(t, uint64(1), transactions[0].ID)
	require.Len(t, transactions[0].Frames, 2)
	assert.Same(t, frames[0], transactions[0].Frames[0])
	assert.Same(t, frames[1], transactions[0].Frames[1])

	assert.Equal(t, TransactionUnmatched, transactions[1].Kind)
	assert.Equal(t, uint64(2), transactions[1].ID)
	assert.Same(t, frames[2], transactions[1].Frames[0])
}

func TestReconstructControlPairNonAdjacent(t *testing.T) {
	// completions may interleave; pairing is by urb id, not adjacency
	frames := []*CaptureFrame{
		controlS("0xa1"),
		controlS("0xa2"),
		controlC("0xa1"),
		controlC("0xa2"),
	}

	transactions := Reconstruct(frames)
	require.Len(t, transactions, 2)
	assert.Equal(t, TransactionControl, transactions[0].Kind)
	assert.Equal(t, TransactionControl, transactions[1].Kind)
	assert.Equal(t, "0xa1", transactions[0].FirstFrame().UrbID)
	assert.Equal(t, "0xa2", transactions[1].FirstFrame().UrbID)
}

func bulkExchange(cmdUrb, dataUrb, reissueUrb string) []*CaptureFrame {
	return []*CaptureFrame{
		frame(cmdUrb, UrbSubmit, TransferBulk, EndpointCommand, 4),
		frame(cmdUrb, UrbComplete, TransferBulk, EndpointCommand, 4),
		frame(dataUrb, UrbComplete, TransferBulk, EndpointData, 52),
		frame(reissueUrb, UrbSubmit, TransferBulk, EndpointData, 0),
	}
}

func TestReconstructBulkFourTuple(t *testing.T) {
	frames := bulkExchange("0xb1", "0xb2", "0xb2")

	transactions := Reconstruct(frames)
	require.Len(t, transactions, 1)
	assert.Equal(t, TransactionBulk, transactions[0].Kind)
	assert.Len(t, transactions[0].Frames, 4)
}

func TestReconstructBulkSequence(t *testing.T) {
	var frames []*CaptureFrame
	frames = append(frames, bulkExchange("0xb1", "0xd1", "0xd2")...)
	frames = append(frames, bulkExchange("0xb1", "0xd2", "0xd3")...)

	transactions := Reconstruct(frames)
	require.Len(t, transactions, 2)
	for _, transaction := range transactions {
		assert.Equal(t, TransactionBulk, transaction.Kind)
		assert.Len(t, transaction.Frames, 4)
	}
	assert.Equal(t, uint64(1), transactions[0].ID)
	assert.Equal(t, uint64(2), transactions[1].ID)
}

func TestReconstructBulkPrefixDoesNotStall(t *testing.T) {
	// only command submit and ack present: still a Bulk transaction
	frames := []*CaptureFrame{
		frame("0xb1", UrbSubmit, TransferBulk, EndpointCommand, 4),
		frame("0xb1", UrbComplete, TransferBulk, EndpointCommand, 4),
	}

	transactions := Reconstruct(frames)
	require.Len(t, transactions, 1)
	assert.Equal(t, TransactionBulk, transactions[0].Kind)
	assert.Len(t, transactions[0].Frames, 2)
}

func TestReconstructBulkCancellation(t *testing.T) {
	cancelled := frame("0xd9", UrbComplete, TransferBulk, EndpointData, 0)
	cancelled.UrbStatus = StatusCancelled
	frames := []*CaptureFrame{cancelled}

	transactions := Reconstruct(frames)
	require.Len(t, transactions, 1)
	assert.Equal(t, TransactionUnmatched, transactions[0].Kind)
	assert.True(t, transactions[0].Cancelled)
}

func TestReconstructCancelledCompletionNotPulledIntoBulkPattern(t *testing.T) {
	frames := []*CaptureFrame{
		frame("0xb1", UrbSubmit, TransferBulk, EndpointCommand, 4),
		frame("0xb1", UrbComplete, TransferBulk, EndpointCommand, 4),
	}
	cancelled := frame("0xd9", UrbComplete, TransferBulk, EndpointData, 8)
	cancelled.UrbStatus = StatusCancelled
	frames = append(frames, cancelled)

	transactions := Reconstruct(frames)
	require.Len(t, transactions, 2)
	assert.Equal(t, TransactionBulk, transactions[0].Kind)
	assert.Len(t, transactions[0].Frames, 2)
	assert.Equal(t, TransactionUnmatched, transactions[1].Kind)
	assert.True(t, transactions[1].Cancelled)
}

func TestReconstructIdempotent(t *testing.T) {
	build := func() []*CaptureFrame {
		nextFrameNumber = 0
		var frames []*CaptureFrame
		frames = append(frames, controlS("0xa1"), controlC("0xa1"))
		frames = append(frames, bulkExchange("0xb1", "0xd1", "0xd2")...)
		frames = append(frames, controlS("0xa9"))
		return frames
	}

	first := Reconstruct(build())
	second := Reconstruct(build())
	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].ID, second[i].ID)
		assert.Equal(t, first[i].Kind, second[i].Kind)
		require.Equal(t, len(first[i].Frames), len(second[i].Frames))
		for j := range first[i].Frames {
			assert.Equal(t, first[i].Frames[j].FrameNumber, second[i].Frames[j].FrameNumber)
		}
	}
}

func TestReconstructCoversEveryFrameExactlyOnce(t *testing.T) {
	var frames []*CaptureFrame
	frames = append(frames, controlS("0xa1"), controlC("0xa1"))
	frames = append(frames, bulkExchange("0xb1", "0xd1", "0xd2")...)
	frames = append(frames, bulkExchange("0xb1", "0xd2", "0xd3")[0:3]...)
	frames = append(frames, controlS("0xa7"))
	cancelled := frame("0xd4", UrbComplete, TransferBulk, EndpointData, 0)
	cancelled.UrbStatus = StatusCancelled
	frames = append(frames, cancelled)

	transactions := Reconstruct(frames)

	seen := make(map[uint64]int)
	for _, transaction := range transactions {
		require.NotEmpty(t, transaction.Frames)
		for _, f := range transaction.Frames {
			seen[f.FrameNumber]++
		}
	}
	assert.Len(t, seen, len(frames))
	for _, f := range frames {
		assert.Equal(t, 1, seen[f.FrameNumber], "frame %d", f.FrameNumber)
	}
}

func TestReconstructOrderedByFirstFrame(t *testing.T) {
	var frames []*CaptureFrame
	frames = append(frames, controlS("0xa1"), controlS("0xa2"), controlC("0xa2"), controlC("0xa1"))

	transactions := Reconstruct(frames)
	require.Len(t, transactions, 2)
	assert.True(t, transactions[0].FirstFrame().FrameNumber < transactions[1].FirstFrame().FrameNumber)
	for i, transaction := range transactions {
		assert.Equal(t, uint64(i+1), transaction.ID)
	}
}

func TestTransactionDuration(t *testing.T) {
	nextFrameNumber = 0
	frames := bulkExchange("0xb1", "0xd1", "0xd2")
	transactions := Reconstruct(frames)
	require.Len(t, transactions, 1)
	assert.InDelta(t, 0.003, transactions[0].Duration(), 1e-9)
}
