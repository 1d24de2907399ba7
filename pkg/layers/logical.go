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
	"encoding/binary"

	"github.com/google/gopacket"

	"github.com/pdlab/go-pdcap/pkg/log"
)

const (
	// ExtendedHeaderSize is the sub-header preceding each logical packet payload
	ExtendedHeaderSize = 4
	// logicalPacketAlign pads every logical packet payload on the wire
	logicalPacketAlign = 4
)

// LogicalPacket is one link of the chain inside a Data packet body.
//
// Extended sub-header, little-endian u32:
//
//	bits  0-14  Attribute
//	bit     15  Next, more logical packets follow
//	bits 16-25  Size, payload length in 16-bit words before padding
//	bits 26-31  Chunk
//
// The payload holds 2*Size bytes; wire padding up to the 4-byte boundary is
// skipped during decode and never part of Payload.
type LogicalPacket struct {
	Attribute uint16 `json:"attribute"` // 15 bits
	Next      bool   `json:"next"`
	Size      uint16 `json:"size"` // 10 bits
	Chunk     uint8  `json:"chunk"` // 6 bits
	Payload   []byte `json:"payload"`
}

// SizeBytes is the payload length in bytes before padding
func (lp *LogicalPacket) SizeBytes() int {
	return int(lp.Size) * 2
}

func paddedLen(n int) int {
	return (n + logicalPacketAlign - 1) &^ (logicalPacketAlign - 1)
}

// DecodeLogicalPacket reads one extended sub-header and its payload from
// body at offset and returns the logical packet together with the offset of
// the next chain link (payload padding skipped).
func DecodeLogicalPacket(body []byte, offset int) (*LogicalPacket, int, error) {
	if len(body)-offset < ExtendedHeaderSize {
		return nil, offset, ErrTruncatedPayload{What: "extended sub-header"}
	}
	ext := binary.LittleEndian.Uint32(body[offset : offset+ExtendedHeaderSize])
	lp := &LogicalPacket{
		Attribute: uint16(ext & attributeMask),
		Next:      ext&0x8000 != 0,
		Size:      uint16((ext >> 16) & 0x3ff),
		Chunk:     uint8(ext >> 26),
	}
	offset += ExtendedHeaderSize

	size := lp.SizeBytes()
	if size > len(body)-offset {
		return nil, offset, ErrInvalidChainLength{Declared: size, Remaining: len(body) - offset}
	}
	lp.Payload = body[offset : offset+size]

	offset += paddedLen(size)
	if offset > len(body) {
		offset = len(body)
	}
	return lp, offset, nil
}

// DecodeLogicalPackets parses the whole chain inside a Data packet body.
// The chain ends when a link's Next bit is false or the body is exhausted,
// whichever comes first. Order and chunk indices are preserved as given.
func DecodeLogicalPackets(body []byte) ([]*LogicalPacket, error) {
	var logicalPackets []*LogicalPacket
	offset := 0
	for {
		lp, newOffset, err := DecodeLogicalPacket(body, offset)
		if err != nil {
			return nil, err
		}
		log.Debug("DecodeLogicalPackets: attribute: %d chunk: %d size: %d next: %t",
			lp.Attribute, lp.Chunk, lp.Size, lp.Next)
		logicalPackets = append(logicalPackets, lp)
		offset = newOffset
		if !lp.Next || offset >= len(body) {
			break
		}
	}
	return logicalPackets, nil
}

// SerializeTo appends the extended sub-header, payload and alignment
// padding to the SerializeBuffer
func (lp *LogicalPacket) SerializeTo(b gopacket.SerializeBuffer) error {
	headerBytes, err := b.AppendBytes(ExtendedHeaderSize)
	if err != nil {
		return err
	}
	ext := uint32(lp.Attribute & attributeMask)
	if lp.Next {
		ext |= 0x8000
	}
	ext |= uint32(lp.Size&0x3ff) << 16
	ext |= uint32(lp.Chunk&0x3f) << 26
	binary.LittleEndian.PutUint32(headerBytes, ext)

	payloadBytes, err := b.AppendBytes(paddedLen(lp.SizeBytes()))
	if err != nil {
		return err
	}
	copy(payloadBytes, lp.Payload)
	for i := lp.SizeBytes(); i < len(payloadBytes); i++ {
		payloadBytes[i] = 0
	}
	return nil
}
