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
)

const (
	// StatusMarker starts a 6-byte connection/status record
	StatusMarker = 0x45
	// WireMarkerLo/WireMarkerHi bound the marker range of PD message events
	WireMarkerLo = 0x80
	WireMarkerHi = 0x9f
	// StatusEventSize is the full length of a status record
	StatusEventSize = 6
	// WireEventHeaderSize precedes the PD wire bytes of a wire event
	WireEventHeaderSize = 6
	// wireSizeOverhead is the framing overhead included in the 6-bit size code
	wireSizeOverhead = 5
	// wireSizeMask selects the 6-bit size code of the size flag
	wireSizeMask = 0x3f
	// sopValidMask is the top bit of the size flag
	sopValidMask = 0x80
)

// PdEvent is one decoded unit of a telemetry blob, either a StatusEvent or
// a WireEvent.
type PdEvent interface {
	pdEvent()
}

// StatusEvent is the fixed 6-byte connection/status marker record. It
// carries no PD wire payload.
type StatusEvent struct {
	Timestamp uint32 `json:"timestamp"` // 24 bits
	Reserved  uint8  `json:"reserved"`
	Sop       uint8  `json:"sop"`
}

func (*StatusEvent) pdEvent() {}

// WireEvent is one USB-PD message extracted from the blob. Wire holds the
// exact PD message bytes (header plus data objects); their semantics are
// left to PD-level tooling.
type WireEvent struct {
	SizeFlag  uint8  `json:"size_flag"`
	Timestamp uint32 `json:"timestamp"`
	Sop       uint8  `json:"sop"`
	Wire      []byte `json:"wire"`
}

func (*WireEvent) pdEvent() {}

// SopValid reports the top bit of the size flag
func (e *WireEvent) SopValid() bool {
	return e.SizeFlag&sopValidMask != 0
}

// WireLen is the PD message length derived from the 6-bit size code
func WireLen(sizeFlag uint8) int {
	n := int(sizeFlag&wireSizeMask) - wireSizeOverhead
	if n < 0 {
		return 0
	}
	return n
}

// StopReason tells why event extraction ended
type StopReason int

const (
	// StopEnd means the blob was consumed exactly
	StopEnd StopReason = iota
	// StopTruncated means a record header or payload ran past the blob end
	StopTruncated
	// StopZeroLength means a wire event declared an empty PD message
	StopZeroLength
	// StopUnknownMarker means an unrecognized marker byte was hit
	StopUnknownMarker
)

func (r StopReason) String() string {
	switch r {
	case StopEnd:
		return "end"
	case StopTruncated:
		return "truncated"
	case StopZeroLength:
		return "zero-length"
	default:
		return "unknown-marker"
	}
}

// Extraction carries the successfully parsed prefix of a blob together with
// an explicit stopped-early marker, so callers can tell full from partial
// extraction without an error value.
type Extraction struct {
	Events []PdEvent  `json:"events"`
	Offset int        `json:"offset"`
	Stop   StopReason `json:"stop"`
}

// Partial reports whether extraction stopped before the end of the blob
func (e *Extraction) Partial() bool {
	return e.Stop != StopEnd
}

// ExtractEvents parses a telemetry blob into PD events. It never fails:
// truncated records, empty wire lengths and unknown markers soft-stop the
// scan and everything parsed so far is returned in blob order. Capture
// blobs are known to be clipped by the recorder occasionally, so partial
// results are the expected degraded mode, not an error. No resync is
// attempted past an unknown marker because the format defines no
// resynchronization point.
func ExtractEvents(blob []byte) *Extraction {
	extraction := &Extraction{}
	i := 0
	for i < len(blob) {
		t0 := blob[i]
		switch {
		case t0 == StatusMarker:
			if i+StatusEventSize > len(blob) {
				extraction.Stop = StopTruncated
				extraction.Offset = i
				return extraction
			}
			tsBytes := make([]byte, 4)
			copy(tsBytes, blob[i+1:i+4])
			extraction.Events = append(extraction.Events, &StatusEvent{
				Timestamp: binary.LittleEndian.Uint32(tsBytes),
				Reserved:  blob[i+4],
				Sop:       blob[i+5],
			})
			i += StatusEventSize
		case t0 >= WireMarkerLo && t0 <= WireMarkerHi:
			if i+WireEventHeaderSize > len(blob) {
				extraction.Stop = StopTruncated
				extraction.Offset = i
				return extraction
			}
			wireLen := WireLen(t0)
			if wireLen == 0 {
				extraction.Stop = StopZeroLength
				extraction.Offset = i
				return extraction
			}
			if i+WireEventHeaderSize+wireLen > len(blob) {
				extraction.Stop = StopTruncated
				extraction.Offset = i
				return extraction
			}
			extraction.Events = append(extraction.Events, &WireEvent{
				SizeFlag:  t0,
				Timestamp: binary.LittleEndian.Uint32(blob[i+1 : i+5]),
				Sop:       blob[i+5],
				Wire:      blob[i+WireEventHeaderSize : i+WireEventHeaderSize+wireLen],
			})
			i += WireEventHeaderSize + wireLen
		default:
			extraction.Stop = StopUnknownMarker
			extraction.Offset = i
			return extraction
		}
	}
	extraction.Stop = StopEnd
	extraction.Offset = i
	return extraction
}
