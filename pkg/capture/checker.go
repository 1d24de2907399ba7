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
	"fmt"
)

// ErrControlPhaseViolation returned when a control frame appears after the
// capture has switched to non-control traffic
type ErrControlPhaseViolation struct {
	FrameNumber uint64
}

func (e ErrControlPhaseViolation) Error() string {
	return fmt.Sprintf("Control frame %d seen after the control phase ended", e.FrameNumber)
}

// CheckControlPhase verifies the session-level property that control
// transfers all happen during device enumeration, before the first
// non-control frame. This holds for the captured sessions but is not
// enforced by Reconstruct; the first violating frame is reported so
// captures breaking the assumption are caught instead of silently
// misgrouped.
func CheckControlPhase(frames []*CaptureFrame) error {
	phaseEnded := false
	for _, f := range frames {
		switch {
		case !f.IsControl():
			phaseEnded = true
		case phaseEnded:
			return ErrControlPhaseViolation{FrameNumber: f.FrameNumber}
		}
	}
	return nil
}

// CheckTransactionsControlPhase runs CheckControlPhase over reconstructed
// transactions in output order
func CheckTransactionsControlPhase(transactions []*Transaction) error {
	var frames []*CaptureFrame
	for _, t := range transactions {
		frames = append(frames, t.Frames...)
	}
	SortFrames(frames)
	return CheckControlPhase(frames)
}
