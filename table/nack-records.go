/* ndnlp - NDN Link Protocol library for Go
 *
 * Copyright (C) 2020-2022 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package table

import (
	"time"

	"github.com/cespare/xxhash"
	"github.com/cornelk/hashmap"
	"github.com/named-data/ndnlp/ndn"
	"github.com/named-data/ndnlp/ndn/lpv2"
	"github.com/named-data/ndnlp/utils/priority_queue"
)

// NackRecord aggregates the NACKs recently observed for one name prefix.
// Records are replaced, not mutated, when their prefix is reinserted, so
// readers always see a consistent record.
type NackRecord struct {
	prefix    *ndn.Name
	reason    lpv2.Reason
	id        uint64
	prefixLen uint64
	expires   int64
	fakeNames *hashmap.HashMap
}

// NackRecordTable tracks the NACKs recently observed per name prefix. Insert
// and RemoveExpiredRecords must be called from a single goroutine; lookups are
// safe for concurrent use.
type NackRecordTable struct {
	records         *hashmap.HashMap
	expirationQueue priority_queue.Queue[uint64, int64]
	Ticker          *time.Ticker
}

// NewNackRecordTable creates a new NACK record table.
func NewNackRecordTable() *NackRecordTable {
	n := new(NackRecordTable)
	n.records = &hashmap.HashMap{}
	n.Ticker = time.NewTicker(100 * time.Millisecond)
	n.expirationQueue = priority_queue.New[uint64, int64]()
	return n
}

// nameDigest folds a name into a 64-bit digest.
func nameDigest(name *ndn.Name) uint64 {
	var hash uint64
	for i := 0; i < name.Size(); i++ {
		component := name.At(i)
		hash = hash ^ uint64(component.Type()) ^ xxhash.Sum64(component.Value())
	}
	return hash
}

// Insert records the specified NACK header against the specified prefix,
// refreshing the record's lifetime. The record keeps the most severe reason
// observed, the latest ID and prefix length, and the set of distinct fake
// interest names.
func (n *NackRecordTable) Insert(prefix *ndn.Name, header *lpv2.NackHeader) {
	digest := nameDigest(prefix)
	expires := time.Now().Add(nackRecordLifetime).UnixNano()

	record := new(NackRecord)
	if existing, ok := n.records.Get(digest); ok {
		old := existing.(*NackRecord)
		record.prefix = old.prefix
		record.fakeNames = old.fakeNames
		record.reason = old.reason
		if lpv2.IsLessSevere(old.reason, header.RawReason()) {
			record.reason = header.RawReason()
		}
	} else {
		record.prefix = prefix.DeepCopy()
		record.fakeNames = &hashmap.HashMap{}
		record.reason = header.RawReason()
	}
	record.id = header.ID()
	record.prefixLen = header.PrefixLength()
	record.expires = expires

	for _, name := range header.Names() {
		record.fakeNames.Set(nameDigest(name), true)
	}

	n.records.Set(digest, record)
	n.expirationQueue.Push(digest, expires)
}

// Dominant returns the most severe reason observed for the specified prefix,
// or ReasonNone if there is no record for it.
func (n *NackRecordTable) Dominant(prefix *ndn.Name) lpv2.Reason {
	value, ok := n.records.Get(nameDigest(prefix))
	if !ok {
		return lpv2.ReasonNone
	}
	return value.(*NackRecord).reason
}

// FakeNameCount returns the count of distinct fake interest names observed for
// the specified prefix.
func (n *NackRecordTable) FakeNameCount(prefix *ndn.Name) int {
	value, ok := n.records.Get(nameDigest(prefix))
	if !ok {
		return 0
	}
	return value.(*NackRecord).fakeNames.Len()
}

// Size returns the count of prefixes with a live record.
func (n *NackRecordTable) Size() int {
	return n.records.Len()
}

// RemoveExpiredRecords removes expired records from the table. A record
// reinserted since its queue entry was pushed is left alone; its fresher queue
// entry will expire it later.
func (n *NackRecordTable) RemoveExpiredRecords() {
	now := time.Now().UnixNano()
	evicted := 0
	for n.expirationQueue.Len() > 0 && n.expirationQueue.PeekPriority() < now {
		digest := n.expirationQueue.Pop()
		if value, ok := n.records.Get(digest); ok {
			record := value.(*NackRecord)
			if record.expires <= now {
				n.records.Del(digest)
			}
		}
		evicted += 1

		if evicted >= 100 {
			break
		}
	}
}
