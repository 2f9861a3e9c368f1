/* ndnlp - NDN Link Protocol library for Go
 *
 * Copyright (C) 2020-2022 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package core

import (
	"os"
	"runtime"
	"runtime/pprof"
)

// Profiler writes runtime profiles to the files configured under
// core.cpu_profile, core.mem_profile, and core.block_profile. A profile whose
// key is unset is disabled.
type Profiler struct {
	cpuFile      *os.File
	memProfile   string
	blockProfile string
	block        *pprof.Profile
}

// StartProfiler starts the profiles enabled in the configuration.
func StartProfiler() *Profiler {
	p := new(Profiler)

	if cpuProfile := GetConfigStringDefault("core.cpu_profile", ""); cpuProfile != "" {
		var err error
		p.cpuFile, err = os.Create(cpuProfile)
		if err != nil {
			LogFatal("Main", "Unable to open output file for CPU profile: ", err)
		}
		LogInfo("Main", "Profiling CPU - outputting to ", cpuProfile)
		pprof.StartCPUProfile(p.cpuFile)
	}

	p.memProfile = GetConfigStringDefault("core.mem_profile", "")

	if p.blockProfile = GetConfigStringDefault("core.block_profile", ""); p.blockProfile != "" {
		LogInfo("Main", "Profiling blocking operations - outputting to ", p.blockProfile)
		runtime.SetBlockProfileRate(1)
		p.block = pprof.Lookup("block")
	}

	return p
}

// Stop writes out the pending profiles and stops profiling.
func (p *Profiler) Stop() {
	if p.block != nil {
		blockProfileFile, err := os.Create(p.blockProfile)
		if err != nil {
			LogFatal("Main", "Unable to open output file for block profile: ", err)
		}
		if err := p.block.WriteTo(blockProfileFile, 0); err != nil {
			LogFatal("Main", "Unable to write block profile: ", err)
		}
		blockProfileFile.Close()
	}

	if p.memProfile != "" {
		memProfileFile, err := os.Create(p.memProfile)
		if err != nil {
			LogFatal("Main", "Unable to open output file for memory profile: ", err)
		}
		LogInfo("Main", "Profiling memory - outputting to ", p.memProfile)
		runtime.GC()
		if err := pprof.WriteHeapProfile(memProfileFile); err != nil {
			LogFatal("Main", "Unable to write memory profile: ", err)
		}
		memProfileFile.Close()
	}

	if p.cpuFile != nil {
		pprof.StopCPUProfile()
		p.cpuFile.Close()
	}
}
