/* ndnlp - NDN Link Protocol library for Go
 *
 * Copyright (C) 2020-2022 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package tlv

import (
	"encoding/binary"
	"math"

	"github.com/named-data/ndnlp/ndn/util"
)

// EncodeVarNum encodes a TLV number in its shortest variable-width form.
func EncodeVarNum(in uint64) []byte {
	if in <= 0xFC {
		// This is just here to avoid having to write this condition in every other conditional.
		return []byte{byte(in)}
	} else if in <= 0xFFFF {
		bytes := make([]byte, 3)
		bytes[0] = 0xFD
		binary.BigEndian.PutUint16(bytes[1:], uint16(in))
		return bytes
	} else if in <= 0xFFFFFFFF {
		bytes := make([]byte, 5)
		bytes[0] = 0xFE
		binary.BigEndian.PutUint32(bytes[1:], uint32(in))
		return bytes
	} else {
		bytes := make([]byte, 9)
		bytes[0] = 0xFF
		binary.BigEndian.PutUint64(bytes[1:], in)
		return bytes
	}
}

// VarNumSize returns the encoded size of a TLV number without encoding it.
func VarNumSize(in uint64) uint64 {
	if in <= 0xFC {
		return 1
	} else if in <= 0xFFFF {
		return 3
	} else if in <= 0xFFFFFFFF {
		return 5
	}
	return 9
}

// DecodeVarNum decodes a TLV number from a wire value, returning the number and
// the count of bytes consumed. Only the shortest form of each number is accepted.
func DecodeVarNum(in []byte) (uint64, int, error) {
	if len(in) < 1 {
		return 0, 0, NewFormatError("TLV number", ErrBufferTooShort)
	}

	if in[0] <= 0xFC {
		return uint64(in[0]), 1, nil
	} else if in[0] == 0xFD {
		if len(in) < 3 {
			return 0, 0, NewFormatError("TLV number", ErrBufferTooShort)
		}
		v := uint64(binary.BigEndian.Uint16(in[1:3]))
		if v <= 0xFC {
			return 0, 0, NewFormatError("TLV number", ErrNonCanonical)
		}
		return v, 3, nil
	} else if in[0] == 0xFE {
		if len(in) < 5 {
			return 0, 0, NewFormatError("TLV number", ErrBufferTooShort)
		}
		v := uint64(binary.BigEndian.Uint32(in[1:5]))
		if v <= 0xFFFF {
			return 0, 0, NewFormatError("TLV number", ErrNonCanonical)
		}
		return v, 5, nil
	} else { // Must be 0xFF
		if len(in) < 9 {
			return 0, 0, NewFormatError("TLV number", ErrBufferTooShort)
		}
		v := binary.BigEndian.Uint64(in[1:9])
		if v <= 0xFFFFFFFF {
			return 0, 0, NewFormatError("TLV number", ErrNonCanonical)
		}
		return v, 9, nil
	}
}

// NNISize returns the width a non-negative integer value occupies when encoded,
// excluding its type and length.
func NNISize(v uint64) uint64 {
	if v <= math.MaxUint8 {
		return 1
	} else if v <= math.MaxUint16 {
		return 2
	} else if v <= math.MaxUint32 {
		return 4
	}
	return 8
}

// EncodeNNI encodes a non-negative integer value into a TLV value slice.
func EncodeNNI(v uint64) []byte {
	value := make([]byte, 8)
	binary.BigEndian.PutUint64(value, v)

	if v <= math.MaxUint8 {
		return value[7:]
	} else if v <= math.MaxUint16 {
		return value[6:]
	} else if v <= math.MaxUint32 {
		return value[4:]
	}
	return value
}

// DecodeNNI decodes a non-negative integer value from a TLV value slice. The
// value must occupy exactly 1, 2, 4, or 8 bytes and use the narrowest width
// that holds it.
func DecodeNNI(value []byte) (uint64, error) {
	switch len(value) {
	case 1:
		return uint64(value[0]), nil
	case 2:
		v := uint64(binary.BigEndian.Uint16(value))
		if v <= math.MaxUint8 {
			return 0, NewFormatError("non-negative integer", ErrNonCanonical)
		}
		return v, nil
	case 4:
		v := uint64(binary.BigEndian.Uint32(value))
		if v <= math.MaxUint16 {
			return 0, NewFormatError("non-negative integer", ErrNonCanonical)
		}
		return v, nil
	case 8:
		v := binary.BigEndian.Uint64(value)
		if v <= math.MaxUint32 {
			return 0, NewFormatError("non-negative integer", ErrNonCanonical)
		}
		return v, nil
	default:
		return 0, NewFormatError("non-negative integer", ErrInvalidNNIWidth)
	}
}

// EncodeNNIBlock encodes a non-negative integer value in a block of the specified type.
func EncodeNNIBlock(t uint32, v uint64) *Block {
	b := new(Block)
	b.SetType(t)
	b.SetValue(EncodeNNI(v))
	return b
}

// DecodeNNIBlock decodes a non-negative integer value from a block.
func DecodeNNIBlock(wire *Block) (uint64, error) {
	if wire == nil {
		return 0, util.ErrNonExistent
	}
	return DecodeNNI(wire.Value())
}

// DecodeTypeLength decodes the TLV type, TLV length, and total size of the block
// at the head of a byte slice.
func DecodeTypeLength(bytes []byte) (uint32, int, int, error) {
	tlvType, tlvTypeSize, err := DecodeVarNum(bytes)
	if err != nil {
		return 0, 0, 0, err
	} else if tlvType > math.MaxUint32 {
		return 0, 0, 0, NewFormatError("TLV type", util.ErrOutOfRange)
	}

	tlvLength, tlvLengthSize, err := DecodeVarNum(bytes[tlvTypeSize:])
	if err != nil {
		return 0, 0, 0, NewFormatError("TLV length", err)
	}

	return uint32(tlvType), int(tlvLength), tlvTypeSize + tlvLengthSize + int(tlvLength), nil
}
