/* ndnlp - NDN Link Protocol library for Go
 *
 * Copyright (C) 2020-2022 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package table

import (
	"time"

	"github.com/named-data/ndnlp/core"
)

// nackRecordLifetime is the lifetime of entries in the NACK record table.
var nackRecordLifetime time.Duration

// Configure configures the table system.
func Configure() {
	nackRecordLifetime = time.Duration(core.GetConfigIntDefault("tables.nack_records.lifetime", 60000)) * time.Millisecond
}
