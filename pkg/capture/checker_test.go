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

func TestCheckControlPhaseClean(t *testing.T) {
	frames := []*CaptureFrame{
		controlS("0xa1"),
		controlC("0xa1"),
		frame("0xb1", UrbSubmit, TransferBulk, EndpointCommand, 4),
		frame("0xb1", UrbComplete, TransferBulk, EndpointCommand, 4),
	}
	assert.NoError(t, CheckControlPhase(frames))
}

func TestCheckControlPhaseViolation(t *testing.T) {
	frames := []*CaptureFrame{
		controlS("0xa1"),
		frame("0xb1", UrbSubmit, TransferBulk, EndpointCommand, 4),
		controlC("0xa1"),
	}
	err := CheckControlPhase(frames)
	require.Error(t, err)
	violation, ok := err.(ErrControlPhaseViolation)
	require.True(t, ok)
	assert.Equal(t, frames[2].FrameNumber, violation.FrameNumber)
}

func TestCheckControlPhaseEmpty(t *testing.T) {
	assert.NoError(t, CheckControlPhase(nil))
}

func TestCheckTransactionsControlPhase(t *testing.T) {
	frames := []*CaptureFrame{
		controlS("0xa1"),
		controlC("0xa1"),
	}
	frames = append(frames, bulkExchange("0xb1", "0xd1", "0xd2")...)

	transactions := Reconstruct(frames)
	assert.NoError(t, CheckTransactionsControlPhase(transactions))

	frames = append(frames, controlS("0xa9"))
	transactions = Reconstruct(frames)
	err := CheckTransactionsControlPhase(transactions)
	require.Error(t, err)
	assert.IsType(t, ErrControlPhaseViolation{}, err)
}
