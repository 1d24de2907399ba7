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

// Field values as they appear in usbmon trace exports
const (
	UrbSubmit   = "S"
	UrbComplete = "C"

	TransferControl = "0x02"
	TransferBulk    = "0x03"

	// EndpointCommand is the device OUT endpoint carrying commands,
	// EndpointData the IN endpoint carrying responses
	EndpointCommand = "0x01"
	EndpointData    = "0x81"

	// StatusCancelled marks URBs torn down by the host (-ENOENT)
	StatusCancelled = "-2"
)

// CaptureFrame is one submit or completion record of a USB trace. Frames
// are immutable inputs: reconstruction only groups them, it never rewrites
// payload fields.
type CaptureFrame struct {
	FrameNumber     uint64  `json:"frame_number"`
	Timestamp       float64 `json:"timestamp"`
	UrbID           string  `json:"urb_id"`
	UrbType         string  `json:"urb_type"`
	UrbStatus       string  `json:"urb_status"`
	TransferType    string  `json:"transfer_type"`
	EndpointAddress string  `json:"endpoint_address"`
	DataLength      int     `json:"data_length"`
	PayloadHex      string  `json:"payload_hex,omitempty"`
}

func (f *CaptureFrame) IsSubmit() bool {
	return f.UrbType == UrbSubmit
}

func (f *CaptureFrame) IsComplete() bool {
	return f.UrbType == UrbComplete
}

func (f *CaptureFrame) IsControl() bool {
	return f.TransferType == TransferControl
}

func (f *CaptureFrame) IsBulk() bool {
	return f.TransferType == TransferBulk
}

func (f *CaptureFrame) IsCancelled() bool {
	return f.UrbStatus == StatusCancelled
}

// IsBulkCommand reports a bulk submit on the command endpoint with a
// payload, the frame opening a command/response exchange
func (f *CaptureFrame) IsBulkCommand() bool {
	return f.IsBulk() && f.IsSubmit() && f.EndpointAddress == EndpointCommand && f.DataLength > 0
}

// IsBulkReissue reports a bulk submit pre-positioning an empty receive
// buffer on the data endpoint
func (f *CaptureFrame) IsBulkReissue() bool {
	return f.IsBulk() && f.IsSubmit() && f.EndpointAddress == EndpointData && f.DataLength == 0
}

// TransactionKind tags a reconstructed transaction
type TransactionKind string

const (
	TransactionControl   TransactionKind = "Control"
	TransactionBulk      TransactionKind = "Bulk"
	TransactionUnmatched TransactionKind = "Unmatched"
)

// Transaction is an ordered, non-empty group of frames belonging to one
// request/response exchange. Once closed it is immutable; IDs are assigned
// sequentially in chronological order of each transaction's first frame.
type Transaction struct {
	ID        uint64          `json:"transaction_id"`
	Kind      TransactionKind `json:"kind"`
	Cancelled bool            `json:"cancelled,omitempty"`
	Frames    []*CaptureFrame `json:"frames"`
}

func (t *Transaction) FirstFrame() *CaptureFrame {
	return t.Frames[0]
}

func (t *Transaction) LastFrame() *CaptureFrame {
	return t.Frames[len(t.Frames)-1]
}

// Duration is the time span covered by the transaction's frames in seconds
func (t *Transaction) Duration() float64 {
	return t.LastFrame().Timestamp - t.FirstFrame().Timestamp
}
