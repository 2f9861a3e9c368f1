/* ndnlp - NDN Link Protocol library for Go
 *
 * Copyright (C) 2022 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package monitor

import (
	"time"

	"github.com/named-data/ndnlp/ndn/lpv2"
	"github.com/named-data/ndnlp/ndn/util"
)

// NackEvent describes one NACK observed on the wire. Events carry only value
// types, so they stay valid after the frame they were decoded from is recycled.
type NackEvent struct {
	Timestamp    string   `json:"timestamp"`
	Source       string   `json:"source,omitempty"`
	Reason       string   `json:"reason"`
	ReasonTag    int32    `json:"reasonTag"`
	ID           uint64   `json:"id"`
	PrefixLength uint64   `json:"prefixLength"`
	FakeNames    []string `json:"fakeNames,omitempty"`
}

// MakeNackEvent creates a NackEvent from a decoded NACK header.
func MakeNackEvent(header *lpv2.NackHeader, source string, when time.Time) *NackEvent {
	event := &NackEvent{
		Timestamp:    util.ToIsoString(when),
		Source:       source,
		Reason:       header.Reason().String(),
		ReasonTag:    int32(header.RawReason()),
		ID:           header.ID(),
		PrefixLength: header.PrefixLength(),
	}
	for _, name := range header.Names() {
		event.FakeNames = append(event.FakeNames, name.String())
	}
	return event
}
