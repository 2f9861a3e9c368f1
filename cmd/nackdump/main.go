/* ndnlp - NDN Link Protocol library for Go
 *
 * Copyright (C) 2020-2022 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package main

import (
	"encoding/hex"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"
	"github.com/named-data/ndnlp/core"
	"github.com/named-data/ndnlp/monitor"
	"github.com/named-data/ndnlp/ndn/lpv2"
	"github.com/named-data/ndnlp/ndn/tlv"
	"github.com/named-data/ndnlp/utils/comparison"
)

// ndnEtherType is the EtherType of NDN frames.
const ndnEtherType = 0x8624

// ndnUDPPort is the registered NDN UDP port.
const ndnUDPPort = 6363

// maxNamesShown is the count of fake interest names printed per NACK.
const maxNamesShown = 8

// Version of nackdump.
var Version string

// BuildTime contains the timestamp of when this version of nackdump was built.
var BuildTime string

func main() {
	core.Version = Version
	core.BuildTime = BuildTime
	core.StartTimestamp = time.Now()

	// Parse command line options
	var shouldPrintVersion bool
	flag.BoolVar(&shouldPrintVersion, "version", false, "Print version and exit")
	var configFileName string
	flag.StringVar(&configFileName, "config", "", "Configuration file location (optional)")
	var hexFrame string
	flag.StringVar(&hexFrame, "hex", "", "Decode a single hex-encoded frame instead of a capture file")
	flag.Parse()

	if shouldPrintVersion {
		fmt.Println("nackdump: NDN NACK dissector")
		fmt.Println("Version " + core.Version + " (Built " + core.BuildTime + ")")
		fmt.Println("Copyright (C) 2020-2022 Eric Newberry")
		fmt.Println("Released under the terms of the MIT License")
		return
	}

	if configFileName != "" {
		core.LoadConfig(configFileName)
	} else {
		core.LoadConfigString("")
	}
	core.InitializeLogger(core.GetConfigStringDefault("core.log_file", ""))
	defer core.ShutdownLogger()

	if hexFrame != "" {
		frame, err := hex.DecodeString(strings.Join(strings.Fields(hexFrame), ""))
		if err != nil {
			fmt.Fprintln(os.Stderr, "Invalid hex frame: "+err.Error())
			os.Exit(1)
		}
		if !dumpFrame(frame, "hex", time.Now()) {
			fmt.Fprintln(os.Stderr, "No NACK found in frame")
			os.Exit(1)
		}
		return
	}

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Usage: nackdump [options] <capture-file>")
		flag.PrintDefaults()
		os.Exit(1)
	}

	file, err := os.Open(flag.Arg(0))
	if err != nil {
		fmt.Fprintln(os.Stderr, "Unable to open capture file: "+err.Error())
		os.Exit(1)
	}
	defer file.Close()

	reader, err := pcapgo.NewReader(file)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Unable to read capture file: "+err.Error())
		os.Exit(1)
	}

	nFrames := 0
	nNacks := 0
	for {
		data, captureInfo, err := reader.ReadPacketData()
		if err == io.EOF {
			break
		}
		if err != nil {
			fmt.Fprintln(os.Stderr, "Unable to read packet: "+err.Error())
			break
		}
		nFrames++

		payload, source := extractPayload(data)
		if payload == nil {
			continue
		}
		if dumpFrame(payload, source, captureInfo.Timestamp) {
			nNacks++
		}
	}
	fmt.Printf("%d NACKs in %d frames\n", nNacks, nFrames)
}

// extractPayload returns the NDN payload of a captured frame, either an NDN
// Ethernet frame or a UDP datagram on the NDN port.
func extractPayload(data []byte) ([]byte, string) {
	packet := gopacket.NewPacket(data, layers.LayerTypeEthernet, gopacket.Default)

	if ethLayer := packet.Layer(layers.LayerTypeEthernet); ethLayer != nil {
		eth := ethLayer.(*layers.Ethernet)
		if eth.EthernetType == ndnEtherType {
			return eth.Payload, eth.SrcMAC.String()
		}
	}

	if udpLayer := packet.Layer(layers.LayerTypeUDP); udpLayer != nil {
		udp := udpLayer.(*layers.UDP)
		if udp.SrcPort == ndnUDPPort || udp.DstPort == ndnUDPPort {
			source := ""
			if netLayer := packet.NetworkLayer(); netLayer != nil {
				source = netLayer.NetworkFlow().Src().String()
			}
			return udp.Payload, source
		}
	}

	return nil, ""
}

// dumpFrame prints the NACK carried in the frame, if any. The frame may be an
// LpPacket or a bare Nack element.
func dumpFrame(frame []byte, source string, when time.Time) bool {
	block, _, err := tlv.DecodeBlock(frame)
	if err != nil {
		return false
	}

	var nack *lpv2.NackHeader
	if block.Type() == lpv2.Nack {
		nack, err = lpv2.DecodeNackHeader(block)
		if err != nil {
			return false
		}
	} else {
		packet, err := lpv2.DecodePacket(block)
		if err != nil {
			return false
		}
		nack = packet.Nack()
	}
	if nack == nil {
		return false
	}

	event := monitor.MakeNackEvent(nack, source, when)
	fmt.Printf("%s %s reason=%s(%d) id=%d prefixLen=%d",
		event.Timestamp, event.Source, event.Reason, event.ReasonTag, event.ID, event.PrefixLength)
	if len(event.FakeNames) > 0 {
		fmt.Printf(" names=%d", len(event.FakeNames))
		shown := comparison.Min(len(event.FakeNames), maxNamesShown)
		for _, name := range event.FakeNames[:shown] {
			fmt.Printf(" %s", name)
		}
		if shown < len(event.FakeNames) {
			fmt.Printf(" ...")
		}
	}
	fmt.Println()
	return true
}
