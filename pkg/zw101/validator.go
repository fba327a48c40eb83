// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package zw101

import "fmt"

// AnomalyType represents different types of packet anomalies
type AnomalyType int

const (
	AnomalyUnknownOpcode AnomalyType = iota
	AnomalyLengthMismatch
	AnomalyInvalidBuffer
	AnomalyUnknownConfirm
	AnomalyAddress
	AnomalyChecksumError
	AnomalyDecodeError
)

// ValidationError represents a packet validation failure
type ValidationError struct {
	Type    AnomalyType
	Message string
	Details map[string]interface{}
}

// Error implements the error interface
func (v *ValidationError) Error() string {
	return v.Message
}

// paramSizes lists the parameter byte count each command carries
var paramSizes = map[uint8]int{
	CmdGetImage:       0,
	CmdGenChar:        1,
	CmdMatch:          0,
	CmdSearch:         5,
	CmdRegModel:       0,
	CmdStoreChar:      3,
	CmdDeleteChar:     4,
	CmdEmpty:          0,
	CmdWriteSysPara:   2,
	CmdReadSysPara:    0,
	CmdValidTemplates: 0,
	CmdReadIndexTable: 1,
	CmdGetEnrollImage: 0,
	CmdAutoCancel:     0,
	CmdAutoEnroll:     3,
	CmdAutoIdentify:   6,
	CmdSleep:          0,
	CmdHandshake:      0,
	CmdLEDControl:     6,
}

// Feature buffers on the module are numbered from 1
const (
	minBufferID = 1
	maxBufferID = 6
)

// ValidatePacket validates packet structure and detects anomalies
// Returns a slice of validation errors (empty if packet is valid)
func ValidatePacket(p *Packet) []ValidationError {
	errors := []ValidationError{}

	if p.address != AddressBroadcast {
		errors = append(errors, ValidationError{
			Type:    AnomalyAddress,
			Message: fmt.Sprintf("Non-default address 0x%08X", p.address),
			Details: map[string]interface{}{"address": p.address},
		})
	}

	switch p.id {
	case PIDCommand:
		errors = append(errors, validateCommand(p)...)
	case PIDAck:
		errors = append(errors, validateAck(p)...)
	}

	return errors
}

func validateCommand(p *Packet) []ValidationError {
	opcode := p.Opcode()
	want, ok := paramSizes[opcode]
	if !ok {
		return []ValidationError{{
			Type:    AnomalyUnknownOpcode,
			Message: fmt.Sprintf("Unknown opcode 0x%02X", opcode),
			Details: map[string]interface{}{"opcode": opcode},
		}}
	}

	params := p.Params()
	if len(params) != want {
		return []ValidationError{{
			Type:    AnomalyLengthMismatch,
			Message: fmt.Sprintf("%s carries %d parameter bytes (expected %d)", OpcodeName(opcode), len(params), want),
			Details: map[string]interface{}{"length": len(params), "expected": want},
		}}
	}

	switch opcode {
	case CmdGenChar, CmdSearch, CmdStoreChar:
		if params[0] < minBufferID || params[0] > maxBufferID {
			return []ValidationError{{
				Type:    AnomalyInvalidBuffer,
				Message: fmt.Sprintf("%s buffer id %d out of range %d-%d", OpcodeName(opcode), params[0], minBufferID, maxBufferID),
				Details: map[string]interface{}{"buffer": params[0]},
			}}
		}
	}
	return nil
}

func validateAck(p *Packet) []ValidationError {
	if len(p.payload) == 0 {
		return []ValidationError{{
			Type:    AnomalyLengthMismatch,
			Message: "Acknowledge without confirmation code",
			Details: map[string]interface{}{"length": 0, "expected": 1},
		}}
	}
	if !p.Confirm().Known() {
		return []ValidationError{{
			Type:    AnomalyUnknownConfirm,
			Message: fmt.Sprintf("Unknown confirmation code 0x%02X", byte(p.Confirm())),
			Details: map[string]interface{}{"confirm": byte(p.Confirm())},
		}}
	}
	return nil
}
