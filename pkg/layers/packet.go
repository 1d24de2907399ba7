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
	"github.com/google/gopacket/layers"

	"github.com/pdlab/go-pdcap/pkg/log"
)

func init() {
	initUnknownPacketTypes()
	initActualPacketTypes()
}

const (
	// PacketLayerNum identifies the layer
	PacketLayerNum = 2999
	// PacketHeaderSize is the fixed prefix of every application packet
	PacketHeaderSize = 4
	// reservedFlagMask is the top bit of the first header byte. It is read
	// here with its historical "extended" meaning: when set, the packet body
	// carries a logical packet chain.
	reservedFlagMask = 0x80
	// packetTypeMask selects the 7-bit type code of the first header byte
	packetTypeMask = 0x7f
	// attributeMask selects the 15-bit attribute of the raw attribute word
	attributeMask = 0x7fff
)

// PacketType is the 7-bit type code of the first header byte
type PacketType uint8

const (
	PacketTypeSync       PacketType = 0x01
	PacketTypeConnect    PacketType = 0x02
	PacketTypeDisconnect PacketType = 0x03
	PacketTypeReset      PacketType = 0x04
	PacketTypeAccept     PacketType = 0x05
	PacketTypeRejected   PacketType = 0x06
	PacketTypeFinished   PacketType = 0x07
	PacketTypeJumpAprom  PacketType = 0x08
	PacketTypeJumpDfu    PacketType = 0x09
	PacketTypeGetStatus  PacketType = 0x0a
	PacketTypeError      PacketType = 0x0b
	PacketTypeGetData    PacketType = 0x0c
	PacketTypeGetFile    PacketType = 0x0d
	PacketTypeHead       PacketType = 0x40
	PacketTypePutData    PacketType = 0x41
)

// PacketClass selects which Packet variant a type code decodes into
type PacketClass int

const (
	PacketClassCtrl PacketClass = iota
	PacketClassSimpleData
	PacketClassData
)

func (c PacketClass) String() string {
	switch c {
	case PacketClassSimpleData:
		return "SimpleData"
	case PacketClassData:
		return "Data"
	default:
		return "Ctrl"
	}
}

type PacketTypeMetadata struct {
	Name  string
	Class PacketClass
}

// PacketTypeTable is the closed enumeration of known type codes. Unknown
// codes keep the fallback entry and decode as Ctrl with opaque payload.
var PacketTypeTable [packetTypeMask + 1]PacketTypeMetadata

func initUnknownPacketTypes() {
	for i := range PacketTypeTable {
		PacketTypeTable[i] = PacketTypeMetadata{Name: "UnknownPacketType", Class: PacketClassCtrl}
	}
}

func initActualPacketTypes() {
	PacketTypeTable[PacketTypeSync] = PacketTypeMetadata{Name: "Sync", Class: PacketClassCtrl}
	PacketTypeTable[PacketTypeConnect] = PacketTypeMetadata{Name: "Connect", Class: PacketClassCtrl}
	PacketTypeTable[PacketTypeDisconnect] = PacketTypeMetadata{Name: "Disconnect", Class: PacketClassCtrl}
	PacketTypeTable[PacketTypeReset] = PacketTypeMetadata{Name: "Reset", Class: PacketClassCtrl}
	PacketTypeTable[PacketTypeAccept] = PacketTypeMetadata{Name: "Accept", Class: PacketClassCtrl}
	PacketTypeTable[PacketTypeRejected] = PacketTypeMetadata{Name: "Rejected", Class: PacketClassCtrl}
	PacketTypeTable[PacketTypeFinished] = PacketTypeMetadata{Name: "Finished", Class: PacketClassCtrl}
	PacketTypeTable[PacketTypeJumpAprom] = PacketTypeMetadata{Name: "JumpAprom", Class: PacketClassCtrl}
	PacketTypeTable[PacketTypeJumpDfu] = PacketTypeMetadata{Name: "JumpDfu", Class: PacketClassCtrl}
	PacketTypeTable[PacketTypeGetStatus] = PacketTypeMetadata{Name: "GetStatus", Class: PacketClassCtrl}
	PacketTypeTable[PacketTypeError] = PacketTypeMetadata{Name: "Error", Class: PacketClassCtrl}
	PacketTypeTable[PacketTypeGetData] = PacketTypeMetadata{Name: "GetData", Class: PacketClassCtrl}
	PacketTypeTable[PacketTypeGetFile] = PacketTypeMetadata{Name: "GetFile", Class: PacketClassCtrl}
	PacketTypeTable[PacketTypeHead] = PacketTypeMetadata{Name: "Head", Class: PacketClassSimpleData}
	PacketTypeTable[PacketTypePutData] = PacketTypeMetadata{Name: "PutData", Class: PacketClassData}
}

// String returns PacketTypeTable.Name
func (t PacketType) String() string {
	return PacketTypeTable[t&packetTypeMask].Name
}

// Class returns PacketTypeTable.Class
func (t PacketType) Class() PacketClass {
	return PacketTypeTable[t&packetTypeMask].Class
}

// PacketHeader is the fixed 4-byte little-endian prefix of every
// application packet.
//
// Byte 0 carries the 7-bit type code plus the reserved top bit, byte 1 the
// sender-chosen transaction tag, bytes 2-3 the raw attribute word. The
// 15-bit attribute is meaningful for Data-class packets only.
type PacketHeader struct {
	Type         PacketType `json:"type"`
	ReservedFlag bool       `json:"reserved_flag"`
	ID           uint8      `json:"id"`
	RawAttribute uint16     `json:"raw_attribute"`
}

// Attribute is the 15-bit attribute field of the raw attribute word
func (h *PacketHeader) Attribute() uint16 {
	return h.RawAttribute & attributeMask
}

// Class resolves the packet variant. When the reserved flag is set the body
// carries a logical packet chain and the packet is Data-class regardless of
// the type code; otherwise the type table decides.
func (h *PacketHeader) Class() PacketClass {
	if h.ReservedFlag {
		return PacketClassData
	}
	return h.Type.Class()
}

// DecodeHeader reads the 4-byte packet header
func DecodeHeader(data []byte) (*PacketHeader, error) {
	if len(data) < PacketHeaderSize {
		return nil, ErrTruncatedHeader{Len: len(data)}
	}
	return &PacketHeader{
		Type:         PacketType(data[0] & packetTypeMask),
		ReservedFlag: data[0]&reservedFlagMask != 0,
		ID:           data[1],
		RawAttribute: binary.LittleEndian.Uint16(data[2:4]),
	}, nil
}

// SerializeHeader writes the 4-byte packet header to buf
func (h *PacketHeader) SerializeHeader(buf []byte) {
	buf[0] = uint8(h.Type) & packetTypeMask
	if h.ReservedFlag {
		buf[0] |= reservedFlagMask
	}
	buf[1] = h.ID
	binary.LittleEndian.PutUint16(buf[2:4], h.RawAttribute)
}

// CtrlPacket is a control packet with an opaque payload
type CtrlPacket struct {
	PacketHeader
	Payload []byte `json:"payload"`
}

// SimpleDataPacket carries a data payload that is not subdivided into
// logical packets
type SimpleDataPacket struct {
	PacketHeader
	Payload []byte `json:"payload"`
}

// DataPacket carries a chain of one or more logical packets
type DataPacket struct {
	PacketHeader
	LogicalPackets []*LogicalPacket `json:"logical_packets"`
}

// RawPacket is the diagnostic decode: header plus the whole remaining
// buffer, with no chain interpretation
type RawPacket struct {
	PacketHeader
	Payload []byte `json:"payload"`
}

// Packet is a tagged union over the three packet variants. Exactly one of
// Ctrl, SimpleData, Data is non-nil after a successful decode.
type Packet struct {
	Ctrl       *CtrlPacket       `json:"Ctrl,omitempty"`
	SimpleData *SimpleDataPacket `json:"SimpleData,omitempty"`
	Data       *DataPacket       `json:"Data,omitempty"`
}

// Header returns the header of whichever variant is populated
func (p *Packet) Header() *PacketHeader {
	switch {
	case p.Ctrl != nil:
		return &p.Ctrl.PacketHeader
	case p.SimpleData != nil:
		return &p.SimpleData.PacketHeader
	default:
		return &p.Data.PacketHeader
	}
}

// Class returns the class of the populated variant
func (p *Packet) Class() PacketClass {
	switch {
	case p.Ctrl != nil:
		return PacketClassCtrl
	case p.SimpleData != nil:
		return PacketClassSimpleData
	default:
		return PacketClassData
	}
}

// DecodePacket parses a single application packet. It is a pure function of
// the input bytes: no partial result is returned on error. Unknown type
// codes still decode, as Ctrl with opaque payload.
func DecodePacket(data []byte) (*Packet, error) {
	header, err := DecodeHeader(data)
	if err != nil {
		return nil, err
	}
	body := data[PacketHeaderSize:]

	switch header.Class() {
	case PacketClassData:
		logicalPackets, err := DecodeLogicalPackets(body)
		if err != nil {
			return nil, err
		}
		return &Packet{Data: &DataPacket{PacketHeader: *header, LogicalPackets: logicalPackets}}, nil
	case PacketClassSimpleData:
		return &Packet{SimpleData: &SimpleDataPacket{PacketHeader: *header, Payload: body}}, nil
	default:
		return &Packet{Ctrl: &CtrlPacket{PacketHeader: *header, Payload: body}}, nil
	}
}

// DecodeRawPacket parses only the header and hands back the rest of the
// buffer untouched. Useful for inspecting malformed or experimental
// payloads that would fail chain validation in DecodePacket.
func DecodeRawPacket(data []byte) (*RawPacket, error) {
	header, err := DecodeHeader(data)
	if err != nil {
		return nil, err
	}
	return &RawPacket{PacketHeader: *header, Payload: data[PacketHeaderSize:]}, nil
}

// PacketLayer ...
type PacketLayer struct {
	layers.BaseLayer
	PacketHeader
	Packet *Packet
}

var PacketLayerType = gopacket.RegisterLayerType(PacketLayerNum,
	gopacket.LayerTypeMetadata{Name: "PdMeterPacketLayerType", Decoder: gopacket.DecodeFunc(decodePacketLayer)})

// LayerType returns the type of the packet layer in the layer catalog
func (pl *PacketLayer) LayerType() gopacket.LayerType {
	return PacketLayerType
}

// DecodeFromBytes attempts to decode the byte slice as an application packet
func (pl *PacketLayer) DecodeFromBytes(data []byte, df gopacket.DecodeFeedback) error {
	packet, err := DecodePacket(data)
	if err != nil {
		if _, truncated := err.(ErrTruncatedHeader); truncated {
			df.SetTruncated()
		}
		return err
	}

	pl.BaseLayer = layers.BaseLayer{
		Contents: data[0:PacketHeaderSize],
		Payload:  data[PacketHeaderSize:],
	}
	pl.PacketHeader = *packet.Header()
	pl.Packet = packet
	return nil
}

// SerializeTo serializes the layer into bytes and writes the bytes to the SerializeBuffer
func (pl *PacketLayer) SerializeTo(b gopacket.SerializeBuffer, opts gopacket.SerializeOptions) error {
	if pl.Packet != nil && pl.Packet.Data != nil {
		for _, lp := range pl.Packet.Data.LogicalPackets {
			if err := lp.SerializeTo(b); err != nil {
				return err
			}
		}
	} else {
		var payload []byte
		switch {
		case pl.Packet != nil && pl.Packet.Ctrl != nil:
			payload = pl.Packet.Ctrl.Payload
		case pl.Packet != nil && pl.Packet.SimpleData != nil:
			payload = pl.Packet.SimpleData.Payload
		}
		payloadBytes, err := b.AppendBytes(len(payload))
		if err != nil {
			return err
		}
		copy(payloadBytes, payload)
	}

	headerBytes, err := b.PrependBytes(PacketHeaderSize)
	if err != nil {
		return err
	}
	pl.PacketHeader.SerializeHeader(headerBytes)
	return nil
}

func decodePacketLayer(data []byte, p gopacket.PacketBuilder) error {
	pl := &PacketLayer{}
	err := pl.DecodeFromBytes(data, p)
	if err != nil {
		log.Debug("Error while decoding packet layer: %s", err)
		return err
	}
	p.AddLayer(pl)
	return nil
}
