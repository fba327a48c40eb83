// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package zw101

import "errors"

var (
	ErrShortFrame       = errors.New("frame too short")
	ErrBadHeader        = errors.New("bad frame header")
	ErrBadLength        = errors.New("invalid length field")
	ErrBadIdentifier    = errors.New("invalid packet identifier")
	ErrChecksumMismatch = errors.New("checksum mismatch")
	ErrUnexpectedState  = errors.New("decoder in invalid state")
)
