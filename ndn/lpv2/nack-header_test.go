/* ndnlp - NDN Link Protocol library for Go
 *
 * Copyright (C) 2022 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package lpv2_test

import (
	"testing"

	"github.com/named-data/ndnlp/ndn"
	"github.com/named-data/ndnlp/ndn/lpv2"
	"github.com/named-data/ndnlp/ndn/tlv"
	"github.com/named-data/ndnlp/ndn/util"
	"github.com/stretchr/testify/assert"
)

// nackWithNamesWire carries reason -100, ID 42, prefix length 1, and the fake
// interest names /go/fake1 and /go/fake2.
var nackWithNamesWire = []byte{
	0xFD, 0x03, 0x20, 0x30,
	0xFD, 0x03, 0x21, 0x04, 0xFF, 0xFF, 0xFF, 0x9C,
	0xFD, 0x03, 0x22, 0x01, 0x2A,
	0xFD, 0x03, 0x23, 0x01, 0x01,
	0xFD, 0x03, 0x24, 0x1A,
	0x07, 0x0B, 0x08, 0x02, 0x67, 0x6F, 0x08, 0x05, 0x66, 0x61, 0x6B, 0x65, 0x31,
	0x07, 0x0B, 0x08, 0x02, 0x67, 0x6F, 0x08, 0x05, 0x66, 0x61, 0x6B, 0x65, 0x32,
}

func TestNackHeaderEncode(t *testing.T) {
	// All fields are emitted even at their defaults, including the empty name list
	header := lpv2.NewNackHeader(lpv2.ReasonNone)
	assert.False(t, header.HasWire())
	block, err := header.Encode()
	assert.NoError(t, err)
	assert.True(t, header.HasWire())
	wire, err := block.Wire()
	assert.NoError(t, err)
	assert.Equal(t, []byte{
		0xFD, 0x03, 0x20, 0x13,
		0xFD, 0x03, 0x21, 0x01, 0x00,
		0xFD, 0x03, 0x22, 0x01, 0x00,
		0xFD, 0x03, 0x23, 0x01, 0x00,
		0xFD, 0x03, 0x24, 0x00,
	}, wire)

	// Encoding is cached until a field changes
	blockAgain, err := header.Encode()
	assert.NoError(t, err)
	assert.Same(t, block, blockAgain)
}

func TestNackHeaderEncodeWithNames(t *testing.T) {
	fake1, err := ndn.NameFromString("/go/fake1")
	assert.NoError(t, err)
	fake2, err := ndn.NameFromString("/go/fake2")
	assert.NoError(t, err)

	header := lpv2.NewNackHeader(lpv2.ReasonDDoSFakeInterest)
	header.SetID(42)
	header.SetPrefixLength(1)
	header.AppendName(fake1)
	header.AppendName(fake2)

	block, err := header.Encode()
	assert.NoError(t, err)
	wire, err := block.Wire()
	assert.NoError(t, err)
	assert.Equal(t, nackWithNamesWire, wire)
}

func TestNackHeaderDecode(t *testing.T) {
	block, blockLen, err := tlv.DecodeBlock(nackWithNamesWire)
	assert.NoError(t, err)
	assert.Equal(t, uint64(len(nackWithNamesWire)), blockLen)

	header, err := lpv2.DecodeNackHeader(block)
	assert.NotNil(t, header)
	assert.NoError(t, err)
	assert.True(t, header.HasWire())

	assert.Equal(t, lpv2.ReasonDDoSFakeInterest, header.RawReason())
	assert.Equal(t, lpv2.ReasonDDoSFakeInterest, header.Reason())
	assert.Equal(t, uint64(42), header.ID())
	assert.Equal(t, uint64(1), header.PrefixLength())

	names := header.Names()
	assert.Equal(t, 2, len(names))
	assert.Equal(t, "/go/fake1", names[0].String())
	assert.Equal(t, "/go/fake2", names[1].String())

	// Re-encoding an unmodified header reuses the decoded wire
	reencoded, err := header.Encode()
	assert.NoError(t, err)
	rewire, err := reencoded.Wire()
	assert.NoError(t, err)
	assert.Equal(t, nackWithNamesWire, rewire)
}

func TestNackHeaderDecodeEmpty(t *testing.T) {
	// A Nack with no fields is valid and yields defaults
	block, _, err := tlv.DecodeBlock([]byte{0xFD, 0x03, 0x20, 0x00})
	assert.NoError(t, err)

	header, err := lpv2.DecodeNackHeader(block)
	assert.NotNil(t, header)
	assert.NoError(t, err)
	assert.Equal(t, lpv2.ReasonNone, header.RawReason())
	assert.Equal(t, lpv2.ReasonNone, header.Reason())
	assert.Equal(t, uint64(0), header.ID())
	assert.Equal(t, uint64(0), header.PrefixLength())
	assert.Empty(t, header.Names())
}

func TestNackHeaderReasonRoundTrip(t *testing.T) {
	reasons := []lpv2.Reason{
		lpv2.ReasonDDoSHintChangeNotice,
		lpv2.ReasonDDoSFakeInterest,
		lpv2.ReasonDDoSValidInterestOverload,
		lpv2.ReasonDDoSResetRate,
		lpv2.ReasonDDoSReportValid,
		lpv2.ReasonNone,
		lpv2.ReasonCongestion,
		lpv2.ReasonDuplicate,
		lpv2.ReasonNoRoute,
	}

	for _, reason := range reasons {
		block, err := lpv2.NewNackHeader(reason).Encode()
		assert.NoError(t, err)

		// Decode from fresh bytes, not the cached block
		wire, err := block.Wire()
		assert.NoError(t, err)
		decodedBlock, _, err := tlv.DecodeBlock(wire)
		assert.NoError(t, err)
		header, err := lpv2.DecodeNackHeader(decodedBlock)
		assert.NoError(t, err)
		assert.Equal(t, reason, header.RawReason())
	}
}

func TestNackHeaderUnknownReason(t *testing.T) {
	// Tags outside the known set decode as ReasonNone
	wire := tlv.NewEmptyBlock(lpv2.Nack)
	wire.Append(tlv.EncodeNNIBlock(lpv2.NackReason, 77))
	wire.Append(tlv.EncodeNNIBlock(lpv2.NackId, 1))
	wire.Append(tlv.EncodeNNIBlock(lpv2.NackPrefixLength, 0))
	wire.Append(tlv.NewEmptyBlock(lpv2.NackFakeNameList))

	header, err := lpv2.DecodeNackHeader(wire)
	assert.NotNil(t, header)
	assert.NoError(t, err)
	assert.Equal(t, lpv2.ReasonNone, header.RawReason())
	assert.Equal(t, uint64(1), header.ID())

	wire = tlv.NewEmptyBlock(lpv2.Nack)
	wire.Append(tlv.EncodeNNIBlock(lpv2.NackReason, 0x7FFFFFFF))
	wire.Append(tlv.EncodeNNIBlock(lpv2.NackId, 2))
	wire.Append(tlv.EncodeNNIBlock(lpv2.NackPrefixLength, 0))
	wire.Append(tlv.NewEmptyBlock(lpv2.NackFakeNameList))

	header, err = lpv2.DecodeNackHeader(wire)
	assert.NotNil(t, header)
	assert.NoError(t, err)
	assert.Equal(t, lpv2.ReasonNone, header.RawReason())
}

func TestNackHeaderDecodeErrors(t *testing.T) {
	header, err := lpv2.DecodeNackHeader(nil)
	assert.Nil(t, header)
	assert.ErrorIs(t, err, util.ErrNonExistent)

	// Not a Nack element
	header, err = lpv2.DecodeNackHeader(tlv.NewEmptyBlock(lpv2.Fragment))
	assert.Nil(t, header)
	assert.EqualError(t, err, "unable to decode Nack: unexpected TLV type")

	// First field must be NackReason
	wire := tlv.NewEmptyBlock(lpv2.Nack)
	wire.Append(tlv.EncodeNNIBlock(lpv2.NackId, 1))
	header, err = lpv2.DecodeNackHeader(wire)
	assert.Nil(t, header)
	assert.EqualError(t, err, "unable to decode NackReason: unexpected TLV type")

	// Once NackReason is present, the remaining fields must follow
	wire = tlv.NewEmptyBlock(lpv2.Nack)
	wire.Append(tlv.EncodeNNIBlock(lpv2.NackReason, 50))
	header, err = lpv2.DecodeNackHeader(wire)
	assert.Nil(t, header)
	assert.EqualError(t, err, "unable to decode NackId: required value does not exist")

	wire.Append(tlv.EncodeNNIBlock(lpv2.NackId, 1))
	header, err = lpv2.DecodeNackHeader(wire)
	assert.Nil(t, header)
	assert.EqualError(t, err, "unable to decode NackPrefixLength: required value does not exist")

	wire.Append(tlv.EncodeNNIBlock(lpv2.NackPrefixLength, 0))
	header, err = lpv2.DecodeNackHeader(wire)
	assert.Nil(t, header)
	assert.EqualError(t, err, "unable to decode NackFakeNameList: required value does not exist")

	// Fields out of order
	wire = tlv.NewEmptyBlock(lpv2.Nack)
	wire.Append(tlv.EncodeNNIBlock(lpv2.NackReason, 50))
	wire.Append(tlv.EncodeNNIBlock(lpv2.NackPrefixLength, 0))
	wire.Append(tlv.EncodeNNIBlock(lpv2.NackId, 1))
	wire.Append(tlv.NewEmptyBlock(lpv2.NackFakeNameList))
	header, err = lpv2.DecodeNackHeader(wire)
	assert.Nil(t, header)
	assert.EqualError(t, err, "unable to decode NackId: unexpected TLV type")

	// Reason value of an invalid width
	wire = tlv.NewEmptyBlock(lpv2.Nack)
	wire.Append(tlv.NewBlock(lpv2.NackReason, []byte{0x01, 0x02, 0x03}))
	wire.Append(tlv.EncodeNNIBlock(lpv2.NackId, 1))
	wire.Append(tlv.EncodeNNIBlock(lpv2.NackPrefixLength, 0))
	wire.Append(tlv.NewEmptyBlock(lpv2.NackFakeNameList))
	header, err = lpv2.DecodeNackHeader(wire)
	assert.Nil(t, header)
	assert.ErrorIs(t, err, tlv.ErrInvalidNNIWidth)

	// Non-minimal ID value
	wire = tlv.NewEmptyBlock(lpv2.Nack)
	wire.Append(tlv.EncodeNNIBlock(lpv2.NackReason, 50))
	wire.Append(tlv.NewBlock(lpv2.NackId, []byte{0x00, 0x2A}))
	wire.Append(tlv.EncodeNNIBlock(lpv2.NackPrefixLength, 0))
	wire.Append(tlv.NewEmptyBlock(lpv2.NackFakeNameList))
	header, err = lpv2.DecodeNackHeader(wire)
	assert.Nil(t, header)
	assert.ErrorIs(t, err, tlv.ErrNonCanonical)
}

func TestNackHeaderNameListStopsAtNonName(t *testing.T) {
	fake1, err := ndn.NameFromString("/go/fake1")
	assert.NoError(t, err)
	fake2, err := ndn.NameFromString("/go/fake2")
	assert.NoError(t, err)

	nameList := tlv.NewEmptyBlock(lpv2.NackFakeNameList)
	nameList.Append(fake1.Encode())
	nameList.Append(tlv.NewEmptyBlock(0xF0))
	nameList.Append(fake2.Encode())

	wire := tlv.NewEmptyBlock(lpv2.Nack)
	wire.Append(tlv.EncodeNNIBlock(lpv2.NackReason, 0xFFFFFF9C))
	wire.Append(tlv.EncodeNNIBlock(lpv2.NackId, 1))
	wire.Append(tlv.EncodeNNIBlock(lpv2.NackPrefixLength, 1))
	wire.Append(nameList)

	header, err := lpv2.DecodeNackHeader(wire)
	assert.NotNil(t, header)
	assert.NoError(t, err)

	// Only the name before the foreign element is taken
	names := header.Names()
	assert.Equal(t, 1, len(names))
	assert.Equal(t, "/go/fake1", names[0].String())
}

func TestNackHeaderTrailingFieldsIgnored(t *testing.T) {
	wire := tlv.NewEmptyBlock(lpv2.Nack)
	wire.Append(tlv.EncodeNNIBlock(lpv2.NackReason, 50))
	wire.Append(tlv.EncodeNNIBlock(lpv2.NackId, 3))
	wire.Append(tlv.EncodeNNIBlock(lpv2.NackPrefixLength, 0))
	wire.Append(tlv.NewEmptyBlock(lpv2.NackFakeNameList))
	wire.Append(tlv.EncodeNNIBlock(0x0330, 9))

	header, err := lpv2.DecodeNackHeader(wire)
	assert.NotNil(t, header)
	assert.NoError(t, err)
	assert.Equal(t, lpv2.ReasonCongestion, header.RawReason())
	assert.Equal(t, uint64(3), header.ID())
}

func TestNackHeaderAccessors(t *testing.T) {
	// Mitigation signalling reasons are hidden by Reason but kept by RawReason
	header := lpv2.NewNackHeader(lpv2.ReasonDDoSHintChangeNotice)
	assert.Equal(t, lpv2.ReasonNone, header.Reason())
	assert.Equal(t, lpv2.ReasonDDoSHintChangeNotice, header.RawReason())

	header = lpv2.NewNackHeader(lpv2.ReasonDDoSResetRate)
	assert.Equal(t, lpv2.ReasonNone, header.Reason())
	assert.Equal(t, lpv2.ReasonDDoSResetRate, header.RawReason())

	// Reasons a forwarder actually sends pass through
	for _, reason := range []lpv2.Reason{
		lpv2.ReasonDDoSFakeInterest,
		lpv2.ReasonCongestion,
		lpv2.ReasonDuplicate,
		lpv2.ReasonNoRoute,
	} {
		header = lpv2.NewNackHeader(reason)
		assert.Equal(t, reason, header.Reason())
		assert.Equal(t, reason, header.RawReason())
	}

	// Setters invalidate the cached wire
	block, _, err := tlv.DecodeBlock(nackWithNamesWire)
	assert.NoError(t, err)
	header, err = lpv2.DecodeNackHeader(block)
	assert.NoError(t, err)
	assert.True(t, header.HasWire())

	header.SetID(43)
	assert.False(t, header.HasWire())
	reencoded, err := header.Encode()
	assert.NoError(t, err)
	rewire, err := reencoded.Wire()
	assert.NoError(t, err)
	redecodedBlock, _, err := tlv.DecodeBlock(rewire)
	assert.NoError(t, err)
	redecoded, err := lpv2.DecodeNackHeader(redecodedBlock)
	assert.NoError(t, err)
	assert.Equal(t, uint64(43), redecoded.ID())
	assert.Equal(t, lpv2.ReasonDDoSFakeInterest, redecoded.RawReason())
	assert.Equal(t, 2, len(redecoded.Names()))

	header.SetReason(lpv2.ReasonNoRoute)
	assert.False(t, header.HasWire())
	header.Encode()
	header.SetPrefixLength(2)
	assert.False(t, header.HasWire())

	// Names returns a copied slice
	names := header.Names()
	names[0] = nil
	assert.NotNil(t, header.Names()[0])

	other, err := ndn.NameFromString("/go/fake3")
	assert.NoError(t, err)
	header.Encode()
	header.AppendName(other)
	assert.False(t, header.HasWire())
	assert.Equal(t, 3, len(header.Names()))

	header.SetNames([]*ndn.Name{other})
	assert.Equal(t, 1, len(header.Names()))
	assert.Equal(t, "/go/fake3", header.Names()[0].String())
}

func TestNackHeaderPrefixLengthOpaque(t *testing.T) {
	// The prefix length is carried as-is, even when longer than the listed names
	fake1, err := ndn.NameFromString("/go/fake1")
	assert.NoError(t, err)

	header := lpv2.NewNackHeader(lpv2.ReasonDDoSFakeInterest)
	header.SetPrefixLength(200)
	header.AppendName(fake1)

	block, err := header.Encode()
	assert.NoError(t, err)
	wire, err := block.Wire()
	assert.NoError(t, err)
	decodedBlock, _, err := tlv.DecodeBlock(wire)
	assert.NoError(t, err)
	decoded, err := lpv2.DecodeNackHeader(decodedBlock)
	assert.NoError(t, err)
	assert.Equal(t, uint64(200), decoded.PrefixLength())
}

func TestNackReasonString(t *testing.T) {
	assert.Equal(t, "Fake-interest-ddos", lpv2.ReasonDDoSFakeInterest.String())
	assert.Equal(t, "Congestion", lpv2.ReasonCongestion.String())
	assert.Equal(t, "Duplicate", lpv2.ReasonDuplicate.String())
	assert.Equal(t, "NoRoute", lpv2.ReasonNoRoute.String())
	assert.Equal(t, "None", lpv2.ReasonNone.String())

	// Signalling reasons print as None
	assert.Equal(t, "None", lpv2.ReasonDDoSHintChangeNotice.String())
	assert.Equal(t, "None", lpv2.ReasonDDoSValidInterestOverload.String())
	assert.Equal(t, "None", lpv2.ReasonDDoSResetRate.String())
	assert.Equal(t, "None", lpv2.ReasonDDoSReportValid.String())
}

func TestNackReasonSeverity(t *testing.T) {
	// ReasonNone is the most severe
	assert.False(t, lpv2.IsLessSevere(lpv2.ReasonNone, lpv2.ReasonNoRoute))
	assert.False(t, lpv2.IsLessSevere(lpv2.ReasonNone, lpv2.ReasonDDoSHintChangeNotice))
	assert.False(t, lpv2.IsLessSevere(lpv2.ReasonNone, lpv2.ReasonNone))
	assert.True(t, lpv2.IsLessSevere(lpv2.ReasonNoRoute, lpv2.ReasonNone))
	assert.True(t, lpv2.IsLessSevere(lpv2.ReasonDDoSHintChangeNotice, lpv2.ReasonNone))

	// All other reasons order by tag
	assert.True(t, lpv2.IsLessSevere(lpv2.ReasonDDoSHintChangeNotice, lpv2.ReasonDDoSFakeInterest))
	assert.True(t, lpv2.IsLessSevere(lpv2.ReasonDDoSFakeInterest, lpv2.ReasonCongestion))
	assert.True(t, lpv2.IsLessSevere(lpv2.ReasonCongestion, lpv2.ReasonDuplicate))
	assert.True(t, lpv2.IsLessSevere(lpv2.ReasonDuplicate, lpv2.ReasonNoRoute))
	assert.False(t, lpv2.IsLessSevere(lpv2.ReasonNoRoute, lpv2.ReasonCongestion))
	assert.False(t, lpv2.IsLessSevere(lpv2.ReasonCongestion, lpv2.ReasonCongestion))
}
