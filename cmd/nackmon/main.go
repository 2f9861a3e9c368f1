/* ndnlp - NDN Link Protocol library for Go
 *
 * Copyright (C) 2020-2022 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/named-data/ndnlp/core"
	"github.com/named-data/ndnlp/monitor"
	"github.com/named-data/ndnlp/table"
	"github.com/named-data/ndnlp/utils/comparison"
)

// Version of nackmon.
var Version string

// BuildTime contains the timestamp of when this version of nackmon was built.
var BuildTime string

func main() {
	// Provide metadata to other threads.
	core.Version = Version
	core.BuildTime = BuildTime
	core.StartTimestamp = time.Now()

	// Parse command line options
	var shouldPrintVersion bool
	flag.BoolVar(&shouldPrintVersion, "version", false, "Print version and exit")
	var configFileName string
	flag.StringVar(&configFileName, "config", "/usr/local/etc/ndn/nackmon.toml", "Configuration file location")
	flag.Parse()

	if shouldPrintVersion {
		fmt.Println("nackmon: NDN NACK monitor")
		fmt.Println("Version " + core.Version + " (Built " + core.BuildTime + ")")
		fmt.Println("Copyright (C) 2020-2022 Eric Newberry")
		fmt.Println("Released under the terms of the MIT License")
		return
	}

	// Initialize config file
	core.LoadConfig(configFileName)
	core.InitializeLogger(core.GetConfigStringDefault("core.log_file", ""))
	defer core.ShutdownLogger()
	table.Configure()

	core.LogInfo("Main", "Starting nackmon")

	profiler := core.StartProfiler()

	eventBufferSize := comparison.Clamp(core.GetConfigIntDefault("monitor.event_buffer", 1024), 1, 65536)
	events := make(chan *monitor.NackEvent, eventBufferSize)
	records := table.NewNackRecordTable()

	ingest := monitor.MakeIngest(events, records)
	go ingest.Run()

	feed := monitor.MakeFeed(events)
	go feed.Run()

	// Set up signal handler channel and wait for interrupt
	sigChannel := make(chan os.Signal, 1)
	signal.Notify(sigChannel, os.Interrupt, syscall.SIGTERM)
	receivedSig := <-sigChannel
	core.LogInfo("Main", "Received signal ", receivedSig, " - exiting")
	core.ShouldQuit = true

	// Stop the ingest loop, then close the event channel so the feed drains and quits
	ingest.Close()
	<-ingest.HasQuit

	close(events)
	<-feed.HasQuit

	profiler.Stop()
}
