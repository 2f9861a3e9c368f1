/* ndnlp - NDN Link Protocol library for Go
 *
 * Copyright (C) 2020-2022 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package tlv

// MaxNDNPacketSize is the maximum allowed NDN packet size.
const MaxNDNPacketSize = 8800

// TLV types for the NDN packet format.
const (
	// Packet types
	Interest = 0x05
	Data     = 0x06

	// Name and components
	Name                            = 0x07
	ImplicitSha256DigestComponent   = 0x01
	ParametersSha256DigestComponent = 0x02
	GenericNameComponent            = 0x08
	KeywordNameComponent            = 0x20
	SegmentNameComponent            = 0x21
	ByteOffsetNameComponent         = 0x22
	VersionNameComponent            = 0x23
	TimestampNameComponent          = 0x24
	SequenceNumNameComponent        = 0x25
)

// IsCritical returns whether a network-layer TLV type is critical.
func IsCritical(tlvType uint32) bool {
	if tlvType < 0x20 {
		return true
	}
	return tlvType&0x1 == 1
}
