/* ndnlp - NDN Link Protocol library for Go
 *
 * Copyright (C) 2020-2022 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package core

import "time"

// Version of the library and its tools.
var Version string

// BuildTime contains the timestamp of when this version was built.
var BuildTime string

// StartTimestamp is the time the tool was started.
var StartTimestamp time.Time

// ShouldQuit indicates whether all goroutines should quit.
var ShouldQuit bool
