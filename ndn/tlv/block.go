/* ndnlp - NDN Link Protocol library for Go
 *
 * Copyright (C) 2020-2022 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package tlv

import (
	"bytes"
	"math"

	"github.com/named-data/ndnlp/ndn/util"
)

// Block contains an encoded TLV element. Blocks produced by the decode path are
// views into the buffer they were decoded from; blocks produced by the encode
// path own their bytes.
type Block struct {
	// Contents
	tlvType     uint32
	value       []byte
	subelements []*Block
	parsed      bool

	// Encoding
	wire    []byte
	hasWire bool
}

///////////////
// Constructors
///////////////

// NewEmptyBlock creates an empty encoded block.
func NewEmptyBlock(tlvType uint32) *Block {
	var block Block
	block.tlvType = tlvType
	return &block
}

// NewBlock creates a block containing a copy of the specified value.
func NewBlock(tlvType uint32, value []byte) *Block {
	var block Block
	block.tlvType = tlvType
	block.value = make([]byte, len(value))
	copy(block.value, value)
	return &block
}

//////////
// Getters
//////////

// Type returns the type of the block.
func (b *Block) Type() uint32 {
	return b.tlvType
}

// Value returns the value contained in the block.
func (b *Block) Value() []byte {
	return b.value
}

// Subelements returns the sub-elements of the block.
func (b *Block) Subelements() []*Block {
	return b.subelements
}

//////////
// Setters
//////////

// SetType sets the TLV type of the block.
func (b *Block) SetType(tlvType uint32) {
	if b.tlvType != tlvType {
		b.tlvType = tlvType
		b.hasWire = false
	}
}

// SetValue sets the value of the block, dropping any parsed sub-elements.
func (b *Block) SetValue(value []byte) {
	if !bytes.Equal(b.value, value) {
		b.value = make([]byte, len(value))
		copy(b.value, value)
		b.subelements = nil
		b.parsed = false
		b.hasWire = false
	}
}

//////////////
// Subelements
//////////////

// Append appends a subelement onto the end of the block's value.
func (b *Block) Append(block *Block) {
	b.subelements = append(b.subelements, block.DeepCopy())
	b.hasWire = false
}

// Clear erases all subelements of the block.
func (b *Block) Clear() {
	if len(b.subelements) > 0 {
		b.subelements = nil
		b.parsed = false
		b.hasWire = false
	}
}

// Insert inserts a copy of the subelement in ascending order of TLV type, after
// any existing subelements of the same type.
func (b *Block) Insert(in *Block) {
	block := in.DeepCopy()
	at := len(b.subelements)
	for i, elem := range b.subelements {
		if elem.Type() > block.Type() {
			at = i
			break
		}
	}

	b.subelements = append(b.subelements, nil)
	copy(b.subelements[at+1:], b.subelements[at:])
	b.subelements[at] = block
	b.hasWire = false
}

// Erase erases the first subelement of the specified type and returns whether an
// element was removed.
func (b *Block) Erase(tlvType uint32) bool {
	indexToRemove := -1
	for i, elem := range b.subelements {
		if elem.Type() == tlvType {
			indexToRemove = i
			break
		}
	}

	if indexToRemove != -1 {
		copy(b.subelements[indexToRemove:], b.subelements[indexToRemove+1:])
		b.subelements = b.subelements[:len(b.subelements)-1]
		b.hasWire = false
	}

	return indexToRemove != -1
}

// EraseAll erases all subelements of the specified type and returns the count of
// elements removed.
func (b *Block) EraseAll(tlvType uint32) int {
	erased := 0
	for b.Erase(tlvType) {
		erased++
	}
	return erased
}

// Find returns the first subelement of the specified type, or nil if none exists.
func (b *Block) Find(tlvType uint32) *Block {
	for _, elem := range b.subelements {
		if elem.Type() == tlvType {
			return elem
		}
	}
	return nil
}

// DeepCopy creates a deep copy of the block. The copy owns its bytes even when
// the original was a view into a decoded buffer.
func (b *Block) DeepCopy() *Block {
	copyB := *b
	copyB.value = make([]byte, len(b.value))
	copy(copyB.value, b.value)
	copyB.subelements = make([]*Block, 0, len(b.subelements))
	for _, subelem := range b.subelements {
		copyB.subelements = append(copyB.subelements, subelem.DeepCopy())
	}
	copyB.wire = make([]byte, len(b.wire))
	copy(copyB.wire, b.wire)
	copyB.hasWire = b.hasWire
	return &copyB
}

// Parse splits the block's value into its immediate subelements. Subelements are
// views into the same backing buffer as the value. Parsing is memoized, so
// calling Parse again takes no action.
func (b *Block) Parse() error {
	if b.parsed || len(b.subelements) > 0 {
		b.parsed = true
		return nil
	}

	subelements := make([]*Block, 0)
	startPos := uint64(0)
	for startPos < uint64(len(b.value)) {
		block, blockLen, err := DecodeBlock(b.value[startPos:])
		if err != nil {
			return err
		}
		subelements = append(subelements, block)
		startPos += blockLen
	}

	b.subelements = subelements
	b.parsed = true
	return nil
}

// Encode encodes the block's subelements into its value. This is the inverse of
// Parse, and afterwards the subelements are no longer tracked individually.
func (b *Block) Encode() error {
	if len(b.subelements) == 0 {
		return nil
	}

	value := make([]byte, 0)
	for _, elem := range b.subelements {
		elemWire, err := elem.Wire()
		if err != nil {
			return err
		}
		value = append(value, elemWire...)
	}

	b.value = value
	b.subelements = nil
	b.parsed = false
	return nil
}

////////////////////
// Encoding/Decoding
////////////////////

func (b *Block) encode(e Encoder) error {
	start := e.Size()
	if len(b.subelements) > 0 {
		for i := len(b.subelements) - 1; i >= 0; i-- {
			if err := e.PrependBlock(b.subelements[i]); err != nil {
				return err
			}
		}
	} else {
		e.PrependBytes(b.value)
	}
	e.PrependVarNum(e.Size() - start)
	e.PrependVarNum(uint64(b.tlvType))
	return nil
}

// Wire returns the wire-encoded block. The encoding is cached until the block is
// mutated.
func (b *Block) Wire() ([]byte, error) {
	if b.hasWire {
		return b.wire, nil
	}

	var estimator Estimator
	if err := b.encode(&estimator); err != nil {
		return nil, err
	}
	buffer := NewEncodingBuffer(estimator.Size())
	if err := b.encode(buffer); err != nil {
		return nil, err
	}
	wire, err := buffer.Output()
	if err != nil {
		return nil, err
	}

	b.wire = wire
	b.hasWire = true
	return b.wire, nil
}

// HasWire returns whether the block has a valid wire encoding.
func (b *Block) HasWire() bool {
	return b.hasWire
}

// Size returns the size of the block's wire encoding without encoding it.
func (b *Block) Size() uint64 {
	if b.hasWire {
		return uint64(len(b.wire))
	}

	var estimator Estimator
	if err := b.encode(&estimator); err != nil {
		return 0
	}
	return estimator.Size()
}

// Reset clears the encoded wire buffer, value, and subelements of the block.
func (b *Block) Reset() {
	b.hasWire = false
	b.wire = nil
	b.value = nil
	b.subelements = nil
	b.parsed = false
}

// DecodeBlock decodes a block from the wire, returning the count of bytes
// consumed. The block and its value are views into the provided slice, not
// copies; they remain valid only as long as the slice does.
func DecodeBlock(wire []byte) (*Block, uint64, error) {
	b := new(Block)

	// Decode TLV type
	tlvType, tlvTypeLen, err := DecodeVarNum(wire)
	if err != nil {
		return nil, 0, err
	}
	if tlvType > math.MaxUint32 {
		return nil, 0, NewFormatError("TLV type", util.ErrOutOfRange)
	}
	b.tlvType = uint32(tlvType)

	// Decode TLV length (not stored because it's implicit from the value slice length)
	if tlvTypeLen == len(wire) {
		return nil, 0, NewFormatError("TLV length", ErrMissingLength)
	}
	tlvLength, tlvLengthLen, err := DecodeVarNum(wire[tlvTypeLen:])
	if err != nil {
		return nil, 0, NewFormatError("TLV length", err)
	}

	// Take TLV value as a view
	size := uint64(tlvTypeLen) + uint64(tlvLengthLen) + tlvLength
	if uint64(len(wire)) < size {
		return nil, 0, NewFormatError("TLV value", ErrBufferTooShort)
	}
	b.value = wire[uint64(tlvTypeLen)+uint64(tlvLengthLen) : size]
	b.wire = wire[:size]
	b.hasWire = true

	return b, size, nil
}
