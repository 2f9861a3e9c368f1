/* ndnlp - NDN Link Protocol library for Go
 *
 * Copyright (C) 2020-2022 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package monitor

import (
	"context"
	"net"
	"strconv"
	"time"

	"github.com/Link512/stealthpool"
	"github.com/named-data/ndnlp/core"
	"github.com/named-data/ndnlp/monitor/impl"
	"github.com/named-data/ndnlp/ndn/lpv2"
	"github.com/named-data/ndnlp/ndn/tlv"
	"github.com/named-data/ndnlp/table"
)

const maxPoolBlockCnt = 1000
const maxPoolBlockSize = 9000

// Ingest receives NDNLPv2 frames over UDP, decodes the NACK headers they
// carry, and publishes them as events. Frames are read into pooled blocks that
// are recycled once the event has been extracted, so nothing decoded from a
// frame may outlive one pass of the receive loop.
type Ingest struct {
	bind        string
	conn        net.PacketConn
	pool        *stealthpool.Pool
	events      chan<- *NackEvent
	recordTable *table.NackRecordTable
	nFrames     uint64
	nNacks      uint64
	nMalformed  uint64
	nDropped    uint64
	HasQuit     chan bool
}

// MakeIngest constructs an Ingest publishing to the specified event channel and
// record table, listening on the address configured under monitor.bind and
// monitor.port.
func MakeIngest(events chan<- *NackEvent, recordTable *table.NackRecordTable) *Ingest {
	i := new(Ingest)
	host := core.GetConfigStringDefault("monitor.bind", "0.0.0.0")
	port := core.GetConfigUint16Default("monitor.port", 6363)
	i.bind = net.JoinHostPort(host, strconv.FormatUint(uint64(port), 10))
	i.events = events
	i.recordTable = recordTable
	i.HasQuit = make(chan bool, 1)
	return i
}

func (i *Ingest) String() string {
	return "NackIngest, udp://" + i.bind
}

// Run starts the ingest loop. It returns when the socket is closed or the
// runtime is quitting.
func (i *Ingest) Run() {
	pool, err := stealthpool.New(maxPoolBlockCnt, stealthpool.WithBlockSize(maxPoolBlockSize))
	if err != nil {
		core.LogError(i, "Failed to allocate frame pool: ", err)
		i.HasQuit <- true
		return
	}
	defer pool.Close()
	i.pool = pool

	listenConfig := &net.ListenConfig{Control: impl.SyscallReuseAddr}
	i.conn, err = listenConfig.ListenPacket(context.Background(), "udp", i.bind)
	if err != nil {
		core.LogError(i, "Unable to start NACK ingest: ", err)
		i.HasQuit <- true
		return
	}

	core.LogInfo(i, "Listening")
	for !core.ShouldQuit {
		frame, err := i.pool.Get()
		if err != nil {
			frame = make([]byte, maxPoolBlockSize)
		}

		readSize, remoteAddr, err := i.conn.ReadFrom(frame)
		if err != nil {
			i.pool.Return(frame)
			core.LogWarn(i, "Unable to read from socket (", err, ") - exiting")
			break
		}

		if readSize > tlv.MaxNDNPacketSize {
			core.LogWarn(i, "Received too much data without valid TLV block - DROP")
		} else {
			i.processFrame(frame[:readSize], remoteAddr.String())
		}
		i.pool.Return(frame)

		select {
		case <-i.recordTable.Ticker.C:
			i.recordTable.RemoveExpiredRecords()
		default:
		}
	}

	i.conn.Close()
	i.HasQuit <- true
}

// Close stops the ingest loop.
func (i *Ingest) Close() {
	if i.conn != nil {
		i.conn.Close()
	}
}

// processFrame decodes one received frame. Whatever it extracts is copied out
// before returning, since the caller recycles the frame.
func (i *Ingest) processFrame(frame []byte, source string) {
	i.nFrames++

	block, _, err := tlv.DecodeBlock(frame)
	if err != nil {
		i.nMalformed++
		core.LogDebug(i, "Unable to decode received frame: ", err)
		return
	}

	packet, err := lpv2.DecodePacket(block)
	if err != nil {
		i.nMalformed++
		core.LogDebug(i, "Unable to decode LpPacket: ", err)
		return
	}

	nack := packet.Nack()
	if nack == nil {
		// Accept a bare Nack element outside an LpPacket too.
		fragment := packet.Fragment()
		if fragment == nil || fragment.Type() != lpv2.Nack {
			return
		}
		nack, err = lpv2.DecodeNackHeader(fragment)
		if err != nil {
			i.nMalformed++
			core.LogDebug(i, "Unable to decode Nack: ", err)
			return
		}
	}

	i.nNacks++
	event := MakeNackEvent(nack, source, time.Now())

	if names := nack.Names(); len(names) > 0 {
		i.recordTable.Insert(names[0].Prefix(int(nack.PrefixLength())), nack)
	}

	select {
	case i.events <- event:
	default:
		i.nDropped++
		core.LogDebug(i, "Event queue full - DROP")
	}
}
