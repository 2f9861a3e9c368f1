/* ndnlp - NDN Link Protocol library for Go
 *
 * Copyright (C) 2020-2022 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package tlv

import "errors"

// TLV errors.
var (
	ErrBufferTooShort       = errors.New("TLV length exceeds buffer size")
	ErrMissingLength        = errors.New("missing TLV length")
	ErrNonCanonical         = errors.New("non-canonical TLV number encoding")
	ErrInvalidNNIWidth      = errors.New("invalid length for non-negative integer")
	ErrUnexpected           = errors.New("unexpected TLV type")
	ErrUnrecognizedCritical = errors.New("unrecognized critical TLV type")

	// ErrEncodingInvariant indicates that the size written by an encoding pass
	// disagrees with the size computed by the estimator pass. This is a
	// programming error, not a wire fault.
	ErrEncodingInvariant = errors.New("estimated size does not match written size")
)

// FormatError indicates malformed or out-of-order wire input. Element names the
// TLV element being decoded when the fault was encountered.
type FormatError struct {
	Element string
	Err     error
}

// NewFormatError creates a FormatError for the named element.
func NewFormatError(element string, err error) *FormatError {
	return &FormatError{Element: element, Err: err}
}

func (e *FormatError) Error() string {
	if e.Err == nil {
		return "unable to decode " + e.Element
	}
	return "unable to decode " + e.Element + ": " + e.Err.Error()
}

func (e *FormatError) Unwrap() error {
	return e.Err
}
