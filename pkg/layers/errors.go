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
	"fmt"
)

// ErrTruncatedHeader returned when a buffer is too short to hold the 4-byte packet header
type ErrTruncatedHeader struct {
	Len int
}

func (e ErrTruncatedHeader) Error() string {
	return fmt.Sprintf("Packet too short: %d bytes, header is %d bytes", e.Len, PacketHeaderSize)
}

// ErrTruncatedPayload returned when a packet body ends before a declared structure is complete
type ErrTruncatedPayload struct {
	What string
}

func (e ErrTruncatedPayload) Error() string {
	return fmt.Sprintf("Truncated packet payload: %s", e.What)
}

// ErrInvalidChainLength returned when a logical packet declares a payload
// longer than the bytes remaining in the containing packet
type ErrInvalidChainLength struct {
	Declared  int
	Remaining int
}

func (e ErrInvalidChainLength) Error() string {
	return fmt.Sprintf("Invalid logical packet chain: declared payload %d bytes, %d remaining", e.Declared, e.Remaining)
}
