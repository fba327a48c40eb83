// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package zw101

// Command builder functions create Packet structs ready for encoding.
// All commands are addressed to the broadcast address.

// NewCommand creates a command packet carrying opcode followed by params
func NewCommand(opcode uint8, params ...byte) *Packet {
	payload := make([]byte, 0, 1+len(params))
	payload = append(payload, opcode)
	payload = append(payload, params...)
	return NewPacket(AddressBroadcast, PIDCommand, payload)
}

// NewAck creates an acknowledge packet. Modules send these; the driver only
// builds them for simulators and tests.
func NewAck(confirm ConfirmCode, fields ...byte) *Packet {
	payload := make([]byte, 0, 1+len(fields))
	payload = append(payload, byte(confirm))
	payload = append(payload, fields...)
	return NewPacket(AddressBroadcast, PIDAck, payload)
}

// NewGetImage creates a GET_IMAGE packet (0x01) used while searching.
func NewGetImage() *Packet {
	return NewCommand(CmdGetImage)
}

// NewGetEnrollImage creates a GET_IMAGE_ENROLL packet (0x29) used while enrolling.
func NewGetEnrollImage() *Packet {
	return NewCommand(CmdGetEnrollImage)
}

// NewGenChar creates a GEN_CHAR packet (0x02).
// The feature set extracted from the last image is written to bufferID.
func NewGenChar(bufferID uint8) *Packet {
	return NewCommand(CmdGenChar, bufferID)
}

// NewSearch creates a SEARCH packet (0x04) over pageCount slots from startPage.
func NewSearch(bufferID uint8, startPage, pageCount uint16) *Packet {
	return NewCommand(CmdSearch, bufferID,
		byte(startPage>>8), byte(startPage),
		byte(pageCount>>8), byte(pageCount))
}

// NewRegModel creates a REG_MODEL packet (0x05) merging the sample buffers.
func NewRegModel() *Packet {
	return NewCommand(CmdRegModel)
}

// NewStoreChar creates a STORE_CHAR packet (0x06) writing bufferID to pageID.
func NewStoreChar(bufferID uint8, pageID uint16) *Packet {
	return NewCommand(CmdStoreChar, bufferID, byte(pageID>>8), byte(pageID))
}

// NewDeleteChar creates a DEL_CHAR packet (0x0C) removing count templates from pageID.
func NewDeleteChar(pageID, count uint16) *Packet {
	return NewCommand(CmdDeleteChar, byte(pageID>>8), byte(pageID), byte(count>>8), byte(count))
}

// NewEmpty creates a CLEAR_LIB packet (0x0D).
func NewEmpty() *Packet {
	return NewCommand(CmdEmpty)
}

// NewReadSysPara creates a READ_SYSPARA packet (0x0F).
func NewReadSysPara() *Packet {
	return NewCommand(CmdReadSysPara)
}

// NewValidTemplateNum creates a READ_VALID_NUMS packet (0x1D).
func NewValidTemplateNum() *Packet {
	return NewCommand(CmdValidTemplates)
}

// NewReadIndexTable creates a READ_INDEX_TABLE packet (0x1F).
// Each page describes IndexTableBits template slots.
func NewReadIndexTable(page uint8) *Packet {
	return NewCommand(CmdReadIndexTable, page)
}

// NewAutoCancel creates an AUTO_CANCEL packet (0x30).
func NewAutoCancel() *Packet {
	return NewCommand(CmdAutoCancel)
}

// NewAutoEnroll creates an AUTO_ENROLL packet (0x31).
// The module runs enrollment by itself for at most timeoutMs milliseconds.
func NewAutoEnroll(timeoutMs uint16) *Packet {
	return NewCommand(CmdAutoEnroll, byte(timeoutMs>>8), byte(timeoutMs), 0x00)
}

// NewAutoIdentify creates an AUTO_MATCH packet (0x32) searching pageCount slots
// from startPage at the given security level.
func NewAutoIdentify(bufferID uint8, startPage, pageCount uint16, security uint8) *Packet {
	return NewCommand(CmdAutoIdentify, bufferID,
		byte(startPage>>8), byte(startPage),
		byte(pageCount>>8), byte(pageCount),
		security)
}

// NewSleep creates an INTO_SLEEP packet (0x33).
func NewSleep() *Packet {
	return NewCommand(CmdSleep)
}

// NewHandshake creates a HANDSHAKE packet (0x35).
func NewHandshake() *Packet {
	return NewCommand(CmdHandshake)
}

// NewLEDControl creates an RGB_CTRL packet (0x3C).
// duty is the brightness for steady modes; loops and cycle shape breathing
// and flashing effects.
func NewLEDControl(mode LEDMode, color LEDColor, duty, loops, cycle uint8) *Packet {
	return NewCommand(CmdLEDControl, byte(mode), byte(color), duty, loops, cycle, 0x00)
}
