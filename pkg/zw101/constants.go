// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package zw101 implements the packet codec for ZW101 optical fingerprint modules.
//
// The ZW101 speaks a framed binary protocol over UART: a two byte header, a
// four byte device address, a packet identifier, a big-endian length and a
// payload protected by a 16-bit additive checksum. This package builds command
// frames, decodes response frames, and interprets the fields the driver needs.
// It performs no I/O.
package zw101

// Frame header
const (
	HeaderHigh = 0xEF
	HeaderLow  = 0x01
)

// Frame layout
const (
	HeaderSize      = 9  // magic(2) + address(4) + identifier(1) + length(2)
	ChecksumSize    = 2
	ConfirmOffset   = 9  // confirmation code position in a response frame
	MinResponseSize = 12 // header + confirmation + checksum
	MaxPayloadSize  = 256
	MaxFrameSize    = HeaderSize + MaxPayloadSize + ChecksumSize
)

// AddressBroadcast is the default module address.
const AddressBroadcast uint32 = 0xFFFFFFFF

// Packet identifiers
const (
	PIDCommand   = 0x01
	PIDData      = 0x02
	PIDAck       = 0x07
	PIDEndOfData = 0x08
)

// Command opcodes
const (
	CmdGetImage       = 0x01
	CmdGenChar        = 0x02
	CmdMatch          = 0x03
	CmdSearch         = 0x04
	CmdRegModel       = 0x05
	CmdStoreChar      = 0x06
	CmdDeleteChar     = 0x0C
	CmdEmpty          = 0x0D
	CmdWriteSysPara   = 0x0E
	CmdReadSysPara    = 0x0F
	CmdValidTemplates = 0x1D
	CmdReadIndexTable = 0x1F
	CmdGetEnrollImage = 0x29
	CmdAutoCancel     = 0x30
	CmdAutoEnroll     = 0x31
	CmdAutoIdentify   = 0x32
	CmdSleep          = 0x33
	CmdHandshake      = 0x35
	CmdLEDControl     = 0x3C
)

// NoMatchPage is the page id a search reports when nothing matched.
const NoMatchPage = 0xFFFF

// IndexTableBits is the number of template slots described by one index table page.
const IndexTableBits = 256

// ConfirmCode is the first payload byte of every acknowledge packet.
type ConfirmCode uint8

const (
	ConfirmOK             ConfirmCode = 0x00
	ConfirmPacketError    ConfirmCode = 0x01
	ConfirmNoFinger       ConfirmCode = 0x02
	ConfirmImageFailed    ConfirmCode = 0x03
	ConfirmImageTooDry    ConfirmCode = 0x04
	ConfirmImageTooWet    ConfirmCode = 0x05
	ConfirmImageMessy     ConfirmCode = 0x06
	ConfirmFewFeatures    ConfirmCode = 0x07
	ConfirmNotMatched     ConfirmCode = 0x08
	ConfirmNotFound       ConfirmCode = 0x09
	ConfirmMergeFailed    ConfirmCode = 0x0A
	ConfirmPageOutOfRange ConfirmCode = 0x0B
	ConfirmReadTemplate   ConfirmCode = 0x0C
	ConfirmUploadFeature  ConfirmCode = 0x0D
	ConfirmDataReceive    ConfirmCode = 0x0E
	ConfirmUploadImage    ConfirmCode = 0x0F
	ConfirmDeleteFailed   ConfirmCode = 0x10
	ConfirmClearFailed    ConfirmCode = 0x11
	ConfirmBadPassword    ConfirmCode = 0x13
	ConfirmNoValidImage   ConfirmCode = 0x15
	ConfirmFlashError     ConfirmCode = 0x18
	ConfirmBadRegister    ConfirmCode = 0x1A
	ConfirmLibraryFull    ConfirmCode = 0x1F
	ConfirmAddressError   ConfirmCode = 0x20
	ConfirmVerifyPassword ConfirmCode = 0x21
	ConfirmTemplateInUse  ConfirmCode = 0x22
	ConfirmLibraryEmpty   ConfirmCode = 0x24
	ConfirmTimeout        ConfirmCode = 0x26
	ConfirmAlreadyExists  ConfirmCode = 0x27
)

var confirmNames = map[ConfirmCode]string{
	ConfirmOK:             "ok",
	ConfirmPacketError:    "packet receive error",
	ConfirmNoFinger:       "no finger on sensor",
	ConfirmImageFailed:    "image capture failed",
	ConfirmImageTooDry:    "image too dry",
	ConfirmImageTooWet:    "image too wet",
	ConfirmImageMessy:     "image too messy",
	ConfirmFewFeatures:    "too few feature points",
	ConfirmNotMatched:     "fingerprints do not match",
	ConfirmNotFound:       "no matching template",
	ConfirmMergeFailed:    "template merge failed",
	ConfirmPageOutOfRange: "page id out of range",
	ConfirmReadTemplate:   "template read error",
	ConfirmUploadFeature:  "feature upload failed",
	ConfirmDataReceive:    "cannot receive data packet",
	ConfirmUploadImage:    "image upload failed",
	ConfirmDeleteFailed:   "template delete failed",
	ConfirmClearFailed:    "library clear failed",
	ConfirmBadPassword:    "wrong password",
	ConfirmNoValidImage:   "no valid image in buffer",
	ConfirmFlashError:     "flash read/write error",
	ConfirmBadRegister:    "invalid register",
	ConfirmLibraryFull:    "fingerprint library full",
	ConfirmAddressError:   "address error",
	ConfirmVerifyPassword: "password must be verified",
	ConfirmTemplateInUse:  "template slot not empty",
	ConfirmLibraryEmpty:   "fingerprint library empty",
	ConfirmTimeout:        "operation timed out",
	ConfirmAlreadyExists:  "fingerprint already enrolled",
}

// String returns the human-readable meaning of the confirmation code
func (c ConfirmCode) String() string {
	if name, ok := confirmNames[c]; ok {
		return name
	}
	return "unknown"
}

// Known reports whether the code is a documented confirmation value
func (c ConfirmCode) Known() bool {
	_, ok := confirmNames[c]
	return ok
}

// LEDMode selects the ring light effect.
type LEDMode uint8

const (
	LEDBreathing LEDMode = 0x01
	LEDFlashing  LEDMode = 0x02
	LEDOn        LEDMode = 0x03
	LEDOff       LEDMode = 0x04
	LEDFadeIn    LEDMode = 0x05
	LEDFadeOut   LEDMode = 0x06
)

// LEDColor is a bit mask over the blue, green and red channels.
type LEDColor uint8

const (
	LEDBlue   LEDColor = 0x01
	LEDGreen  LEDColor = 0x02
	LEDCyan   LEDColor = 0x03
	LEDRed    LEDColor = 0x04
	LEDPurple LEDColor = 0x05
	LEDYellow LEDColor = 0x06
	LEDWhite  LEDColor = 0x07
)

// Ring light defaults
const (
	LEDDefaultLoops = 0x00
	LEDDefaultCycle = 0x0F
)

// Auto identify defaults
const (
	AutoMatchBuffer   = 0x02
	AutoMatchSecurity = 0x02
)

// Decoder states
const (
	stateHeader1 = iota
	stateHeader2
	stateAddress
	stateIdentifier
	stateLength1
	stateLength2
	statePayload
	stateChecksum1
	stateChecksum2
)
