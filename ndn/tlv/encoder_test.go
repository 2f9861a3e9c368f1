/* ndnlp - NDN Link Protocol library for Go
 *
 * Copyright (C) 2022 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package tlv_test

import (
	"testing"

	"github.com/named-data/ndnlp/ndn/tlv"
	"github.com/stretchr/testify/assert"
)

func TestEstimator(t *testing.T) {
	var estimator tlv.Estimator
	assert.Equal(t, uint64(0), estimator.Size())

	estimator.PrependBytes([]byte{0x01, 0x02, 0x03})
	assert.Equal(t, uint64(3), estimator.Size())

	estimator.PrependVarNum(0x0321)
	assert.Equal(t, uint64(6), estimator.Size())

	estimator.PrependNNI(0x0102)
	assert.Equal(t, uint64(8), estimator.Size())

	assert.NoError(t, estimator.PrependBlock(tlv.NewBlock(0x28, []byte{0xAA})))
	assert.Equal(t, uint64(11), estimator.Size())
}

func TestEncodingBufferMatchesEstimator(t *testing.T) {
	// Both passes run the same walk, so the buffer comes out exactly full
	write := func(e tlv.Encoder) error {
		if err := e.PrependBlock(tlv.NewBlock(0x28, []byte{0xAA})); err != nil {
			return err
		}
		e.PrependNNI(0x0102)
		e.PrependVarNum(0x07)
		e.PrependBytes([]byte{0x09})
		return nil
	}

	var estimator tlv.Estimator
	assert.NoError(t, write(&estimator))
	assert.Equal(t, uint64(7), estimator.Size())

	buffer := tlv.NewEncodingBuffer(estimator.Size())
	assert.NoError(t, write(buffer))
	assert.Equal(t, estimator.Size(), buffer.Size())

	// Prepended back to front, so fields read in forward order
	wire, err := buffer.Output()
	assert.NoError(t, err)
	assert.Equal(t, []byte{0x09, 0x07, 0x01, 0x02, 0x28, 0x01, 0xAA}, wire)
}

func TestEncodingBufferOverrunPanics(t *testing.T) {
	buffer := tlv.NewEncodingBuffer(2)
	buffer.PrependBytes([]byte{0x01, 0x02})
	assert.PanicsWithValue(t, tlv.ErrEncodingInvariant, func() {
		buffer.PrependBytes([]byte{0x03})
	})
}

func TestEncodingBufferUnderrun(t *testing.T) {
	buffer := tlv.NewEncodingBuffer(4)
	buffer.PrependBytes([]byte{0x01, 0x02})
	wire, err := buffer.Output()
	assert.Nil(t, wire)
	assert.ErrorIs(t, err, tlv.ErrEncodingInvariant)
}

func TestPrependNNIBlock(t *testing.T) {
	var estimator tlv.Estimator
	tlv.PrependNNIBlock(&estimator, 0x0321, 0xFFFFFF9C)

	buffer := tlv.NewEncodingBuffer(estimator.Size())
	tlv.PrependNNIBlock(buffer, 0x0321, 0xFFFFFF9C)
	wire, err := buffer.Output()
	assert.NoError(t, err)
	assert.Equal(t, []byte{0xFD, 0x03, 0x21, 0x04, 0xFF, 0xFF, 0xFF, 0x9C}, wire)
}
