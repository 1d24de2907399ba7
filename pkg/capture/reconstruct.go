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
	"github.com/pdlab/go-pdcap/pkg/log"
)

// reconstructor walks the frame slice once, marking consumed frames in a
// side table instead of mutating the input. The slice stays immutable and
// forward scans never observe removed elements.
type reconstructor struct {
	frames       []*CaptureFrame
	consumed     []bool
	transactions []*Transaction
	nextID       uint64
}

// Reconstruct groups a flat stream of URB frames into logical transactions.
//
// The input must already be sorted by timestamp/frame number (see
// SortFrames); it is not re-sorted here. Every input frame ends up in
// exactly one transaction: frames matching neither the control nor the bulk
// pattern close as Unmatched singletons rather than being dropped.
// Transaction IDs are sequential in chronological order of each
// transaction's first frame, so re-running on the same input is idempotent.
func Reconstruct(frames []*CaptureFrame) []*Transaction {
	r := &reconstructor{
		frames:   frames,
		consumed: make([]bool, len(frames)),
		nextID:   1,
	}

	for i := range frames {
		if r.consumed[i] {
			continue
		}
		f := frames[i]
		switch {
		case f.IsBulk() && f.IsComplete() && f.IsCancelled():
			// torn-down receive buffer, never part of a bulk pattern
			r.close(TransactionUnmatched, true, i)
		case f.IsControl() && f.IsSubmit():
			r.closeControl(i)
		case f.IsBulkCommand():
			r.closeBulk(i)
		default:
			r.close(TransactionUnmatched, false, i)
		}
	}
	return r.transactions
}

func (r *reconstructor) close(kind TransactionKind, cancelled bool, indices ...int) {
	t := &Transaction{
		ID:        r.nextID,
		Kind:      kind,
		Cancelled: cancelled,
	}
	for _, idx := range indices {
		r.consumed[idx] = true
		t.Frames = append(t.Frames, r.frames[idx])
	}
	r.nextID++
	r.transactions = append(r.transactions, t)
}

// closeControl pairs a control submit with its completion. The completion
// may sit anywhere later in the stream; the pair keeps its original
// relative order. A submit with no completion is retained as Unmatched
// rather than silently dropped.
func (r *reconstructor) closeControl(start int) {
	submit := r.frames[start]
	for j := start + 1; j < len(r.frames); j++ {
		if r.consumed[j] {
			continue
		}
		f := r.frames[j]
		if f.IsControl() && f.IsComplete() && f.UrbID == submit.UrbID {
			r.close(TransactionControl, false, start, j)
			return
		}
	}
	log.Debug("Reconstruct: control submit without completion: frame %d urb %s",
		submit.FrameNumber, submit.UrbID)
	r.close(TransactionUnmatched, false, start)
}

// closeBulk matches the 4-frame command/response pattern
//
//	S(OUT, len>0) -> C(OUT) -> C(IN, len>0) -> S(IN, len 0)
//
// strictly in adjacent order over the unconsumed stream. A prefix match
// still closes as a shorter Bulk transaction so one missing frame never
// stalls the scan.
func (r *reconstructor) closeBulk(start int) {
	command := r.frames[start]
	indices := []int{start}

	j := r.nextUnconsumed(start + 1)
	if j >= 0 {
		f := r.frames[j]
		if f.IsBulk() && f.IsComplete() && f.EndpointAddress == EndpointCommand &&
			f.UrbID == command.UrbID && !f.IsCancelled() {
			indices = append(indices, j)
			j = r.nextUnconsumed(j + 1)
		} else {
			j = -1
		}
	}
	if j >= 0 {
		f := r.frames[j]
		if f.IsBulk() && f.IsComplete() && f.EndpointAddress == EndpointData &&
			f.DataLength > 0 && !f.IsCancelled() {
			indices = append(indices, j)
			j = r.nextUnconsumed(j + 1)
		} else {
			j = -1
		}
	}
	if j >= 0 && r.frames[j].IsBulkReissue() {
		indices = append(indices, j)
	}

	r.close(TransactionBulk, false, indices...)
}

func (r *reconstructor) nextUnconsumed(from int) int {
	for j := from; j < len(r.frames); j++ {
		if !r.consumed[j] {
			return j
		}
	}
	return -1
}
