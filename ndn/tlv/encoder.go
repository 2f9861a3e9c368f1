/* ndnlp - NDN Link Protocol library for Go
 *
 * Copyright (C) 2022 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package tlv

// Encoder is the shared sink of the two encoding passes: an Estimator counts the
// bytes an element will occupy and an EncodingBuffer writes them into a buffer
// allocated once at exactly that count. Elements prepend their fields back to
// front, so nested variable-length elements land in forward order without size
// back-patching.
type Encoder interface {
	// PrependBytes prepends raw bytes.
	PrependBytes(b []byte)
	// PrependVarNum prepends a TLV number in its shortest form.
	PrependVarNum(v uint64)
	// PrependNNI prepends a non-negative integer value without its type and length.
	PrependNNI(v uint64)
	// PrependBlock prepends the full wire encoding of a block.
	PrependBlock(b *Block) error
	// Size returns the count of bytes prepended so far.
	Size() uint64
}

// PrependNNIBlock prepends a whole non-negative integer element of the specified
// type to the encoder.
func PrependNNIBlock(e Encoder, t uint32, v uint64) {
	e.PrependNNI(v)
	e.PrependVarNum(NNISize(v))
	e.PrependVarNum(uint64(t))
}

///////////
// Estimator
///////////

// Estimator counts the bytes an encoding pass will write. The zero value is
// ready to use.
type Estimator struct {
	size uint64
}

// PrependBytes counts raw bytes.
func (e *Estimator) PrependBytes(b []byte) {
	e.size += uint64(len(b))
}

// PrependVarNum counts a TLV number.
func (e *Estimator) PrependVarNum(v uint64) {
	e.size += VarNumSize(v)
}

// PrependNNI counts a non-negative integer value.
func (e *Estimator) PrependNNI(v uint64) {
	e.size += NNISize(v)
}

// PrependBlock counts the full wire encoding of a block.
func (e *Estimator) PrependBlock(b *Block) error {
	wire, err := b.Wire()
	if err != nil {
		return err
	}
	e.size += uint64(len(wire))
	return nil
}

// Size returns the count of bytes prepended so far.
func (e *Estimator) Size() uint64 {
	return e.size
}

/////////////////
// EncodingBuffer
/////////////////

// EncodingBuffer writes an element back to front into a buffer allocated once at
// the size computed by the estimator pass. Writing past the front of the buffer
// panics with ErrEncodingInvariant, since the two passes must agree exactly.
type EncodingBuffer struct {
	buf []byte
	pos int
}

// NewEncodingBuffer creates an encoding buffer holding exactly size bytes.
func NewEncodingBuffer(size uint64) *EncodingBuffer {
	return &EncodingBuffer{
		buf: make([]byte, size),
		pos: int(size),
	}
}

// PrependBytes prepends raw bytes.
func (e *EncodingBuffer) PrependBytes(b []byte) {
	if e.pos < len(b) {
		panic(ErrEncodingInvariant)
	}
	e.pos -= len(b)
	copy(e.buf[e.pos:], b)
}

// PrependVarNum prepends a TLV number in its shortest form.
func (e *EncodingBuffer) PrependVarNum(v uint64) {
	e.PrependBytes(EncodeVarNum(v))
}

// PrependNNI prepends a non-negative integer value without its type and length.
func (e *EncodingBuffer) PrependNNI(v uint64) {
	e.PrependBytes(EncodeNNI(v))
}

// PrependBlock prepends the full wire encoding of a block.
func (e *EncodingBuffer) PrependBlock(b *Block) error {
	wire, err := b.Wire()
	if err != nil {
		return err
	}
	e.PrependBytes(wire)
	return nil
}

// Size returns the count of bytes prepended so far.
func (e *EncodingBuffer) Size() uint64 {
	return uint64(len(e.buf) - e.pos)
}

// Output returns the encoded bytes. It fails with ErrEncodingInvariant if fewer
// bytes were written than the buffer was allocated for.
func (e *EncodingBuffer) Output() ([]byte, error) {
	if e.pos != 0 {
		return nil, ErrEncodingInvariant
	}
	return e.buf, nil
}
