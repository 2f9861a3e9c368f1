/* ndnlp - NDN Link Protocol library for Go
 *
 * Copyright (C) 2020-2022 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package lpv2

import (
	"github.com/named-data/ndnlp/ndn"
	"github.com/named-data/ndnlp/ndn/tlv"
	"github.com/named-data/ndnlp/ndn/util"
)

// Reason indicates why a network-layer NACK was sent. Reasons ride on the wire
// as the unsigned 32-bit representation of their tag, so negative tags encode as
// their two's complement.
type Reason int32

// NACK reasons.
const (
	ReasonDDoSHintChangeNotice      Reason = -150
	ReasonDDoSFakeInterest          Reason = -100
	ReasonDDoSValidInterestOverload Reason = -50
	ReasonDDoSResetRate             Reason = -30
	ReasonDDoSReportValid           Reason = -10
	ReasonNone                      Reason = 0
	ReasonCongestion                Reason = 50
	ReasonDuplicate                 Reason = 100
	ReasonNoRoute                   Reason = 150
)

func (r Reason) String() string {
	switch r {
	case ReasonDDoSFakeInterest:
		return "Fake-interest-ddos"
	case ReasonCongestion:
		return "Congestion"
	case ReasonDuplicate:
		return "Duplicate"
	case ReasonNoRoute:
		return "NoRoute"
	default:
		return "None"
	}
}

// isRecognized returns whether the reason is a member of the closed reason set.
func (r Reason) isRecognized() bool {
	switch r {
	case ReasonDDoSHintChangeNotice, ReasonDDoSFakeInterest, ReasonDDoSValidInterestOverload,
		ReasonDDoSResetRate, ReasonDDoSReportValid, ReasonNone, ReasonCongestion,
		ReasonDuplicate, ReasonNoRoute:
		return true
	default:
		return false
	}
}

// IsLessSevere returns whether NACK reason x is less severe than NACK reason y.
// ReasonNone is the most severe reason; all other reasons order by their tag.
func IsLessSevere(x Reason, y Reason) bool {
	if x == ReasonNone {
		return false
	}
	if y == ReasonNone {
		return true
	}
	return x < y
}

// NackHeader represents a network-layer NACK header, including the mitigation
// extensions: a correlation ID, the length of the prefix under attack, and the
// list of fake interest names observed.
type NackHeader struct {
	reason            Reason
	id                uint64
	prefixLen         uint64
	fakeInterestNames []*ndn.Name
	wire              *tlv.Block
}

// NewNackHeader creates a NACK header with the specified reason.
func NewNackHeader(reason Reason) *NackHeader {
	n := new(NackHeader)
	n.reason = reason
	return n
}

// DecodeNackHeader decodes a NACK header from the wire. A Nack element with no
// fields is accepted and yields a header with all fields at their defaults;
// otherwise NackReason, NackId, NackPrefixLength, and NackFakeNameList must all
// be present in that order. Reason tags outside the known set decode as
// ReasonNone. Within the name list, matching stops silently at the first
// element that is not a Name.
func DecodeNackHeader(wire *tlv.Block) (*NackHeader, error) {
	if wire == nil {
		return nil, util.ErrNonExistent
	}
	if wire.Type() != Nack {
		return nil, tlv.NewFormatError("Nack", tlv.ErrUnexpected)
	}
	if err := wire.Parse(); err != nil {
		return nil, tlv.NewFormatError("Nack", err)
	}

	n := new(NackHeader)
	n.wire = wire

	elems := wire.Subelements()
	if len(elems) == 0 {
		return n, nil
	}

	if elems[0].Type() != NackReason {
		return nil, tlv.NewFormatError("NackReason", tlv.ErrUnexpected)
	}
	rawReason, err := tlv.DecodeNNIBlock(elems[0])
	if err != nil {
		return nil, tlv.NewFormatError("NackReason", err)
	}
	if reason := Reason(int32(uint32(rawReason))); reason.isRecognized() {
		n.reason = reason
	} else {
		n.reason = ReasonNone
	}

	if len(elems) < 2 {
		return nil, tlv.NewFormatError("NackId", util.ErrNonExistent)
	}
	if elems[1].Type() != NackId {
		return nil, tlv.NewFormatError("NackId", tlv.ErrUnexpected)
	}
	n.id, err = tlv.DecodeNNIBlock(elems[1])
	if err != nil {
		return nil, tlv.NewFormatError("NackId", err)
	}

	if len(elems) < 3 {
		return nil, tlv.NewFormatError("NackPrefixLength", util.ErrNonExistent)
	}
	if elems[2].Type() != NackPrefixLength {
		return nil, tlv.NewFormatError("NackPrefixLength", tlv.ErrUnexpected)
	}
	n.prefixLen, err = tlv.DecodeNNIBlock(elems[2])
	if err != nil {
		return nil, tlv.NewFormatError("NackPrefixLength", err)
	}

	if len(elems) < 4 {
		return nil, tlv.NewFormatError("NackFakeNameList", util.ErrNonExistent)
	}
	if elems[3].Type() != NackFakeNameList {
		return nil, tlv.NewFormatError("NackFakeNameList", tlv.ErrUnexpected)
	}
	nameList := elems[3]
	if err := nameList.Parse(); err != nil {
		return nil, tlv.NewFormatError("NackFakeNameList", err)
	}
	for _, elem := range nameList.Subelements() {
		if elem.Type() != tlv.Name {
			break
		}
		name, err := ndn.DecodeName(elem)
		if err != nil {
			return nil, tlv.NewFormatError("NackFakeNameList", err)
		}
		n.fakeInterestNames = append(n.fakeInterestNames, name)
	}

	return n, nil
}

// Reason returns the reason for this NACK. Unless the stored reason is one of
// the reasons a forwarder actually sends, ReasonNone is returned.
func (n *NackHeader) Reason() Reason {
	switch n.reason {
	case ReasonDDoSFakeInterest, ReasonCongestion, ReasonDuplicate, ReasonNoRoute:
		return n.reason
	default:
		return ReasonNone
	}
}

// RawReason returns the reason for this NACK without normalization, including
// the mitigation signalling reasons that Reason hides.
func (n *NackHeader) RawReason() Reason {
	return n.reason
}

// SetReason sets the reason for this NACK.
func (n *NackHeader) SetReason(reason Reason) {
	n.reason = reason
	n.wire = nil
}

// ID returns the correlation ID of this NACK.
func (n *NackHeader) ID() uint64 {
	return n.id
}

// SetID sets the correlation ID of this NACK.
func (n *NackHeader) SetID(id uint64) {
	n.id = id
	n.wire = nil
}

// PrefixLength returns the count of name components identifying the prefix this
// NACK concerns. The value is carried opaquely and is not validated against the
// names in the fake name list.
func (n *NackHeader) PrefixLength() uint64 {
	return n.prefixLen
}

// SetPrefixLength sets the prefix length of this NACK.
func (n *NackHeader) SetPrefixLength(prefixLen uint64) {
	n.prefixLen = prefixLen
	n.wire = nil
}

// Names returns the fake interest names carried in this NACK in their wire
// order.
func (n *NackHeader) Names() []*ndn.Name {
	names := make([]*ndn.Name, len(n.fakeInterestNames))
	copy(names, n.fakeInterestNames)
	return names
}

// SetNames replaces the fake interest names carried in this NACK.
func (n *NackHeader) SetNames(names []*ndn.Name) {
	n.fakeInterestNames = make([]*ndn.Name, len(names))
	copy(n.fakeInterestNames, names)
	n.wire = nil
}

// AppendName adds a fake interest name to the end of the list carried in this
// NACK.
func (n *NackHeader) AppendName(name *ndn.Name) {
	n.fakeInterestNames = append(n.fakeInterestNames, name)
	n.wire = nil
}

// HasWire returns whether the NACK header has a cached wire encoding.
func (n *NackHeader) HasWire() bool {
	return n.wire != nil
}

// encode runs one encoding pass. Fields are prepended back to front, names in
// reverse so they land in wire order. The stored reason is emitted unnormalized
// as its unsigned 32-bit representation, and the name list envelope is emitted
// even when the list is empty.
func (n *NackHeader) encode(e tlv.Encoder) error {
	start := e.Size()
	for i := len(n.fakeInterestNames) - 1; i >= 0; i-- {
		if err := e.PrependBlock(n.fakeInterestNames[i].Encode()); err != nil {
			return err
		}
	}
	e.PrependVarNum(e.Size() - start)
	e.PrependVarNum(NackFakeNameList)
	tlv.PrependNNIBlock(e, NackPrefixLength, n.prefixLen)
	tlv.PrependNNIBlock(e, NackId, n.id)
	tlv.PrependNNIBlock(e, NackReason, uint64(uint32(n.reason)))
	e.PrependVarNum(e.Size() - start)
	e.PrependVarNum(Nack)
	return nil
}

// Encode encodes the NACK header into a block, reusing the cached encoding if
// no field has changed since it was produced.
func (n *NackHeader) Encode() (*tlv.Block, error) {
	if n.wire != nil {
		return n.wire, nil
	}

	var estimator tlv.Estimator
	if err := n.encode(&estimator); err != nil {
		return nil, err
	}

	buffer := tlv.NewEncodingBuffer(estimator.Size())
	if err := n.encode(buffer); err != nil {
		return nil, err
	}
	wire, err := buffer.Output()
	if err != nil {
		return nil, err
	}

	block, _, err := tlv.DecodeBlock(wire)
	if err != nil {
		return nil, err
	}
	n.wire = block
	return n.wire, nil
}
