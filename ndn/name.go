/* ndnlp - NDN Link Protocol library for Go
 *
 * Copyright (C) 2020-2022 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package ndn

import (
	"bytes"
	"encoding/hex"
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/named-data/ndnlp/ndn/tlv"
	"github.com/named-data/ndnlp/ndn/util"
)

/////////////
// Components
/////////////

// Component represents a single TLV-typed NDN name component.
type Component struct {
	tlvType uint32
	value   []byte
}

// NewComponent creates a name component of the specified type containing a copy
// of the specified value.
func NewComponent(tlvType uint32, value []byte) *Component {
	c := new(Component)
	c.tlvType = tlvType
	c.value = make([]byte, len(value))
	copy(c.value, value)
	return c
}

// NewGenericNameComponent creates a GenericNameComponent containing a copy of
// the specified value.
func NewGenericNameComponent(value []byte) *Component {
	return NewComponent(tlv.GenericNameComponent, value)
}

// DecodeNameComponent decodes a name component from the wire. The component
// value is a view into the block it was decoded from.
func DecodeNameComponent(wire *tlv.Block) (*Component, error) {
	if wire == nil {
		return nil, util.ErrNonExistent
	}
	if wire.Type() == 0 || wire.Type() > math.MaxUint16 {
		return nil, util.ErrDecodeNameComponent
	}

	c := new(Component)
	c.tlvType = wire.Type()
	c.value = wire.Value()
	return c, nil
}

// Type returns the TLV type of the name component.
func (c *Component) Type() uint32 {
	return c.tlvType
}

// Value returns the TLV value of the name component.
func (c *Component) Value() []byte {
	return c.value
}

// Equals returns whether the two name components match.
func (c *Component) Equals(other *Component) bool {
	return c.tlvType == other.tlvType && bytes.Equal(c.value, other.value)
}

// DeepCopy makes a deep copy of the name component.
func (c *Component) DeepCopy() *Component {
	return NewComponent(c.tlvType, c.value)
}

// Encode encodes the name component into a block.
func (c *Component) Encode() *tlv.Block {
	return tlv.NewBlock(c.tlvType, c.value)
}

func (c *Component) String() string {
	switch c.tlvType {
	case tlv.ImplicitSha256DigestComponent:
		return "sha256digest=" + hex.EncodeToString(c.value)
	case tlv.ParametersSha256DigestComponent:
		return "params-sha256=" + hex.EncodeToString(c.value)
	case tlv.GenericNameComponent:
		return escapeComponent(c.value)
	case tlv.KeywordNameComponent:
		return escapeComponent(c.value)
	case tlv.SegmentNameComponent:
		return c.nniString("seg")
	case tlv.ByteOffsetNameComponent:
		return c.nniString("off")
	case tlv.VersionNameComponent:
		return c.nniString("v")
	case tlv.TimestampNameComponent:
		return c.nniString("t")
	case tlv.SequenceNumNameComponent:
		return c.nniString("seq")
	default:
		return strconv.FormatUint(uint64(c.tlvType), 10) + "=" + escapeComponent(c.value)
	}
}

func (c *Component) nniString(marker string) string {
	v, err := tlv.DecodeNNI(c.value)
	if err != nil {
		return strconv.FormatUint(uint64(c.tlvType), 10) + "=" + escapeComponent(c.value)
	}
	return marker + "=" + strconv.FormatUint(v, 10)
}

func escapeComponent(in []byte) string {
	out := make([]byte, 0, 3*len(in)) // Capacity of 3 * len is worst case if every character has to be escaped
	nPeriods := 0
	for _, b := range in {
		switch {
		case b == '.':
			nPeriods++
			fallthrough
		case (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z') || (b >= '0' && b <= '9') || b == '-' || b == '_' || b == '~':
			out = append(out, b)
		default:
			out = append(out, '%', 0, 0)
			hex.Encode(out[len(out)-2:], []byte{b})
		}
	}
	if nPeriods == len(in) {
		out = append(out, '.', '.', '.')
	}
	return string(out)
}

func unescapeComponent(in string) (string, error) {
	out := make([]byte, 0, len(in)) // Capacity is worst case if nothing to be unescaped
	for i := 0; i < len(in); i++ {
		if in[i] == '%' {
			if len(in) <= i+2 {
				return "", errors.New("incomplete escape sequence")
			}
			unescaped, err := hex.DecodeString(in[i+1 : i+3])
			if err != nil {
				return "", errors.New("could not decode escape sequence")
			}
			out = append(out, unescaped...)
			i += 2
		} else {
			out = append(out, in[i])
		}
	}
	return string(out), nil
}

///////
// Name
///////

// Name represents an NDN name.
type Name struct {
	components   []*Component
	wire         *tlv.Block
	cachedString string
}

// NewName constructs an empty name.
func NewName() *Name {
	return new(Name)
}

// NameFromString decodes a name from its NDN URI form.
func NameFromString(str string) (*Name, error) {
	n := new(Name)

	if len(str) == 0 {
		// Empty name
		return n, nil
	}

	components := strings.Split(str, "/")[1:] // Skip first since empty
	if len(components) == 0 || len(components[0]) == 0 {
		// Empty name
		return n, nil
	}
	for _, component := range components {
		var c *Component
		if strings.Contains(component, "=") {
			componentSplit := strings.Split(component, "=")
			if len(componentSplit) != 2 {
				return nil, errors.New("name component has extraneous =")
			}

			unescapedValue, err := unescapeComponent(componentSplit[1])
			if err != nil {
				return nil, errors.New("error unescaping component value")
			}

			switch componentSplit[0] {
			case "sha256digest":
				digest, err := hex.DecodeString(unescapedValue)
				if err != nil {
					return nil, errors.New("sha256digest component is not a hex string")
				}
				c = NewComponent(tlv.ImplicitSha256DigestComponent, digest)
			case "params-sha256":
				digest, err := hex.DecodeString(unescapedValue)
				if err != nil {
					return nil, errors.New("params-sha256 component is not a hex string")
				}
				c = NewComponent(tlv.ParametersSha256DigestComponent, digest)
			case "seg":
				c, err = nniComponentFromString(tlv.SegmentNameComponent, unescapedValue)
				if err != nil {
					return nil, err
				}
			case "off":
				c, err = nniComponentFromString(tlv.ByteOffsetNameComponent, unescapedValue)
				if err != nil {
					return nil, err
				}
			case "v":
				c, err = nniComponentFromString(tlv.VersionNameComponent, unescapedValue)
				if err != nil {
					return nil, err
				}
			case "t":
				c, err = nniComponentFromString(tlv.TimestampNameComponent, unescapedValue)
				if err != nil {
					return nil, err
				}
			case "seq":
				c, err = nniComponentFromString(tlv.SequenceNumNameComponent, unescapedValue)
				if err != nil {
					return nil, err
				}
			default:
				t, err := strconv.ParseUint(componentSplit[0], 10, 16)
				if err != nil || t == 0 {
					return nil, errors.New("unable to decode component type \"" + componentSplit[0] + "\"")
				}
				c = NewComponent(uint32(t), []byte(unescapedValue))
			}
		} else {
			// Treat as GenericNameComponent
			unescaped, err := unescapeComponent(component)
			if err != nil {
				return nil, errors.New("error unescaping component value")
			}
			c = NewGenericNameComponent([]byte(unescaped))
		}
		n.Append(c)
	}

	return n, nil
}

func nniComponentFromString(tlvType uint32, value string) (*Component, error) {
	v, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return nil, errors.New("numeric name component is not a decimal string")
	}
	return NewComponent(tlvType, tlv.EncodeNNI(v)), nil
}

// DecodeName decodes a name from wire encoding. Components are views into the
// block the name was decoded from.
func DecodeName(b *tlv.Block) (*Name, error) {
	if b == nil {
		return nil, util.ErrNonExistent
	}
	if b.Type() != tlv.Name {
		return nil, tlv.NewFormatError("Name", tlv.ErrUnexpected)
	}
	if err := b.Parse(); err != nil {
		return nil, err
	}

	n := new(Name)
	n.components = make([]*Component, len(b.Subelements()))
	for i, elem := range b.Subelements() {
		component, err := DecodeNameComponent(elem)
		if err != nil {
			return nil, tlv.NewFormatError("NameComponent", err)
		}
		n.components[i] = component
		n.cachedString += "/" + component.String()
	}
	n.wire = b
	return n, nil
}

func (n *Name) String() string {
	if len(n.cachedString) > 0 {
		return n.cachedString
	}

	if n.Size() == 0 {
		return "/"
	}

	var out string
	for _, component := range n.components {
		out += "/" + component.String()
	}
	n.cachedString = out
	return out
}

// Append adds the specified name component to the end of the name.
func (n *Name) Append(component *Component) *Name {
	n.components = append(n.components, component)
	n.wire = nil
	n.cachedString += "/" + component.String()
	return n
}

// At returns the name component at the specified index. If out of range, nil is
// returned. Negative indices count from the end of the name.
func (n *Name) At(index int) *Component {
	if index < -len(n.components) || index >= len(n.components) {
		return nil
	}

	if index < 0 {
		return n.components[len(n.components)+index]
	}
	return n.components[index]
}

// Clear erases all components from the name.
func (n *Name) Clear() {
	if len(n.components) > 0 {
		n.components = nil
		n.wire = nil
		n.cachedString = ""
	}
}

// DeepCopy returns a deep copy of the name.
func (n *Name) DeepCopy() *Name {
	name := new(Name)
	name.components = make([]*Component, 0, len(n.components))
	for _, component := range n.components {
		name.components = append(name.components, component.DeepCopy())
	}
	return name
}

// Equals returns whether the specified name is equal to this name.
func (n *Name) Equals(other *Name) bool {
	if other == nil || n.Size() != other.Size() {
		return false
	}

	for i := 0; i < n.Size(); i++ {
		if !n.At(i).Equals(other.At(i)) {
			return false
		}
	}

	return true
}

// HasWire returns whether the name has a wire encoding.
func (n *Name) HasWire() bool {
	return n.wire != nil
}

// Prefix returns a name prefix containing the specified number of components. If
// greater than or equal to the size of the name, this returns a copy of the name.
func (n *Name) Prefix(size int) *Name {
	if size < 0 {
		size = 0
	}
	if size >= n.Size() {
		size = n.Size()
	}

	prefix := new(Name)
	prefix.components = make([]*Component, 0, size)
	for i := 0; i < size; i++ {
		prefix.components = append(prefix.components, n.components[i].DeepCopy())
	}
	return prefix
}

// PrefixOf returns whether this name is a prefix of the specified name.
func (n *Name) PrefixOf(other *Name) bool {
	if other == nil || n.Size() > other.Size() {
		return false
	}

	for i := 0; i < n.Size(); i++ {
		if !n.At(i).Equals(other.At(i)) {
			return false
		}
	}

	return true
}

// Size returns the number of components in the name.
func (n *Name) Size() int {
	return len(n.components)
}

// Encode encodes the name into a block.
func (n *Name) Encode() *tlv.Block {
	if n.wire == nil {
		n.wire = tlv.NewEmptyBlock(tlv.Name)
		for _, component := range n.components {
			n.wire.Append(component.Encode())
		}
		n.wire.Wire()
	}
	return n.wire
}
