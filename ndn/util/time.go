/* ndnlp - NDN Link Protocol library for Go
 *
 * Copyright (C) 2022 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package util

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const isoSecondsFormat = "20060102T150405"

// ToUnixTimestamp converts a time to the count of milliseconds since the Unix epoch.
func ToUnixTimestamp(t time.Time) int64 {
	return t.UnixNano() / int64(time.Millisecond)
}

// FromUnixTimestamp converts a count of milliseconds since the Unix epoch to a time.
func FromUnixTimestamp(milliseconds int64) time.Time {
	return time.Unix(milliseconds/1000, (milliseconds%1000)*int64(time.Millisecond)).UTC()
}

// ToIsoString converts a time to its compact ISO form (YYYYMMDDTHHMMSS,ffffff).
// The fractional part is omitted when the time has no sub-second component.
func ToIsoString(t time.Time) string {
	t = t.UTC()
	seconds := t.Format(isoSecondsFormat)
	micro := t.Nanosecond() / 1000
	if micro > 0 {
		return seconds + "," + fmt.Sprintf("%06d", micro)
	}
	return seconds
}

// FromIsoString converts a compact ISO time string (YYYYMMDDTHHMMSS,ffffff) to a
// time. Fractional parts of 3, 6, or 9 digits are accepted.
func FromIsoString(iso string) (time.Time, error) {
	secondsPart := iso
	fractionPart := ""
	if i := strings.IndexByte(iso, ','); i != -1 {
		secondsPart = iso[:i]
		fractionPart = iso[i+1:]
	}

	t, err := time.Parse(isoSecondsFormat, secondsPart)
	if err != nil {
		return time.Time{}, err
	}

	if len(fractionPart) > 0 {
		if len(fractionPart) > 9 {
			return time.Time{}, errors.New("fractional seconds too precise")
		}
		fraction, err := strconv.ParseUint(fractionPart, 10, 64)
		if err != nil {
			return time.Time{}, errors.New("invalid fractional seconds")
		}
		// Right-pad to nanoseconds
		for i := len(fractionPart); i < 9; i++ {
			fraction *= 10
		}
		t = t.Add(time.Duration(fraction) * time.Nanosecond)
	}

	return t, nil
}
