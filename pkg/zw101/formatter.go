// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package zw101

import (
	"fmt"
	"strings"
)

// FormatPacket formats a packet into a human-readable string.
// Acknowledge fields are only decoded when the opcode they answer is known,
// see FormatAck.
func FormatPacket(p *Packet) string {
	if p.IsAck() {
		return FormatAck(p, 0)
	}

	timestamp := p.timestamp.Format("15:04:05.000")
	result := fmt.Sprintf("[%s] %s addr=%08X len=%d\n", timestamp, FormatIdentifier(p.id), p.address, p.length)

	if p.IsCommand() {
		result += fmt.Sprintf("  %s (0x%02X)\n", OpcodeName(p.Opcode()), p.Opcode())
		result += formatCommandParams(p.Opcode(), p.Params())
	} else if len(p.payload) > 0 {
		result += fmt.Sprintf("  Data: % X\n", p.payload)
	}
	return result
}

// FormatAck formats an acknowledge packet answering the given opcode.
// Pass 0 when the opcode is unknown.
func FormatAck(p *Packet, opcode uint8) string {
	timestamp := p.timestamp.Format("15:04:05.000")
	result := fmt.Sprintf("[%s] %s addr=%08X len=%d\n", timestamp, FormatIdentifier(p.id), p.address, p.length)

	confirm := p.Confirm()
	if opcode != 0 {
		result += fmt.Sprintf("  Reply to %s: %s (0x%02X)\n", OpcodeName(opcode), confirm, byte(confirm))
	} else {
		result += fmt.Sprintf("  Confirm: %s (0x%02X)\n", confirm, byte(confirm))
	}
	if confirm != ConfirmOK {
		return result
	}
	return result + formatAckFields(opcode, p.payload)
}

// FormatIdentifier returns the human-readable name for a packet identifier
func FormatIdentifier(id uint8) string {
	switch id {
	case PIDCommand:
		return "COMMAND"
	case PIDData:
		return "DATA"
	case PIDAck:
		return "ACK"
	case PIDEndOfData:
		return "END_DATA"
	default:
		return "UNKNOWN"
	}
}

// OpcodeName returns the human-readable name for a command opcode
func OpcodeName(opcode uint8) string {
	switch opcode {
	case CmdGetImage:
		return "GET_IMAGE"
	case CmdGenChar:
		return "GEN_CHAR"
	case CmdMatch:
		return "MATCH"
	case CmdSearch:
		return "SEARCH"
	case CmdRegModel:
		return "REG_MODEL"
	case CmdStoreChar:
		return "STORE_CHAR"
	case CmdDeleteChar:
		return "DEL_CHAR"
	case CmdEmpty:
		return "CLEAR_LIB"
	case CmdWriteSysPara:
		return "WRITE_SYSPARA"
	case CmdReadSysPara:
		return "READ_SYSPARA"
	case CmdValidTemplates:
		return "READ_VALID_NUMS"
	case CmdReadIndexTable:
		return "READ_INDEX_TABLE"
	case CmdGetEnrollImage:
		return "GET_IMAGE_ENROLL"
	case CmdAutoCancel:
		return "AUTO_CANCEL"
	case CmdAutoEnroll:
		return "AUTO_ENROLL"
	case CmdAutoIdentify:
		return "AUTO_MATCH"
	case CmdSleep:
		return "INTO_SLEEP"
	case CmdHandshake:
		return "HANDSHAKE"
	case CmdLEDControl:
		return "RGB_CTRL"
	default:
		return "UNKNOWN"
	}
}

func formatCommandParams(opcode uint8, params []byte) string {
	u16 := func(off int) uint16 {
		v, _ := field16(params, off)
		return v
	}

	switch opcode {
	case CmdGenChar:
		if len(params) < 1 {
			break
		}
		return fmt.Sprintf("  Buffer: %d\n", params[0])
	case CmdReadIndexTable:
		if len(params) < 1 {
			break
		}
		return fmt.Sprintf("  Index page: %d\n", params[0])
	case CmdSearch:
		if len(params) < 5 {
			break
		}
		return fmt.Sprintf("  Buffer: %d, Start: %d, Count: %d\n", params[0], u16(1), u16(3))
	case CmdStoreChar:
		if len(params) < 3 {
			break
		}
		return fmt.Sprintf("  Buffer: %d, Page: %d\n", params[0], u16(1))
	case CmdDeleteChar:
		if len(params) < 4 {
			break
		}
		return fmt.Sprintf("  Page: %d, Count: %d\n", u16(0), u16(2))
	case CmdAutoEnroll:
		if len(params) < 2 {
			break
		}
		return fmt.Sprintf("  Timeout: %d ms\n", u16(0))
	case CmdAutoIdentify:
		if len(params) < 6 {
			break
		}
		return fmt.Sprintf("  Buffer: %d, Start: %d, Count: %d, Security: %d\n", params[0], u16(1), u16(3), params[5])
	case CmdLEDControl:
		if len(params) < 5 {
			break
		}
		return fmt.Sprintf("  Mode: %s, Color: %s, Duty: %d, Loops: %d, Cycle: %d\n",
			FormatLEDMode(LEDMode(params[0])), FormatLEDColor(LEDColor(params[1])), params[2], params[3], params[4])
	}
	if len(params) == 0 {
		return "  (no parameters)\n"
	}
	return fmt.Sprintf("  Params: % X\n", params)
}

func formatAckFields(opcode uint8, payload []byte) string {
	switch opcode {
	case CmdSearch, CmdAutoIdentify:
		if r, ok := ParseSearchResult(payload); ok {
			if r.Page == NoMatchPage {
				return "  No match\n"
			}
			return fmt.Sprintf("  Page: %d, Score: %d\n", r.Page, r.Score)
		}
	case CmdReadSysPara:
		if s, ok := ParseSystemParameters(payload); ok {
			return FormatSystemParameters(s)
		}
	case CmdValidTemplates:
		if n, ok := ParseTemplateCount(payload); ok {
			return fmt.Sprintf("  Templates: %d\n", n)
		}
	case CmdReadIndexTable:
		if ids, ok := ParseIndexTable(payload, 0); ok {
			return fmt.Sprintf("  Occupied (page-relative): %s\n", FormatIDList(ids))
		}
	}
	if len(payload) > 1 {
		return fmt.Sprintf("  Fields: % X\n", payload[1:])
	}
	return ""
}

// FormatSystemParameters formats the module parameter table
func FormatSystemParameters(s SystemParameters) string {
	var b strings.Builder
	fmt.Fprintf(&b, "  Status Register: 0x%04X\n", s.StatusRegister)
	fmt.Fprintf(&b, "  System ID:       0x%04X\n", s.SystemID)
	fmt.Fprintf(&b, "  Library Size:    %d\n", s.LibrarySize)
	fmt.Fprintf(&b, "  Security Level:  %d\n", s.SecurityLevel)
	fmt.Fprintf(&b, "  Device Address:  0x%08X\n", s.DeviceAddress)
	fmt.Fprintf(&b, "  Packet Size:     %d bytes\n", s.PacketBytes())
	fmt.Fprintf(&b, "  Baud Rate:       %d\n", s.BaudRate())
	return b.String()
}

// FormatIDList formats template ids compactly, collapsing consecutive runs
func FormatIDList(ids []uint16) string {
	if len(ids) == 0 {
		return "none"
	}
	var parts []string
	start := ids[0]
	prev := ids[0]
	flush := func() {
		if start == prev {
			parts = append(parts, fmt.Sprintf("%d", start))
		} else {
			parts = append(parts, fmt.Sprintf("%d-%d", start, prev))
		}
	}
	for _, id := range ids[1:] {
		if id == prev+1 {
			prev = id
			continue
		}
		flush()
		start, prev = id, id
	}
	flush()
	return strings.Join(parts, ",")
}

// FormatLEDMode returns the human-readable name for a ring light mode
func FormatLEDMode(m LEDMode) string {
	switch m {
	case LEDBreathing:
		return "BREATHING"
	case LEDFlashing:
		return "FLASHING"
	case LEDOn:
		return "ON"
	case LEDOff:
		return "OFF"
	case LEDFadeIn:
		return "FADE_IN"
	case LEDFadeOut:
		return "FADE_OUT"
	default:
		return "UNKNOWN"
	}
}

// FormatLEDColor returns the human-readable name for a ring light color
func FormatLEDColor(c LEDColor) string {
	switch c {
	case LEDBlue:
		return "BLUE"
	case LEDGreen:
		return "GREEN"
	case LEDCyan:
		return "CYAN"
	case LEDRed:
		return "RED"
	case LEDPurple:
		return "PURPLE"
	case LEDYellow:
		return "YELLOW"
	case LEDWhite:
		return "WHITE"
	case 0:
		return "NONE"
	default:
		return "UNKNOWN"
	}
}

// ParseLEDMode parses a ring light mode name as printed by FormatLEDMode
func ParseLEDMode(s string) (LEDMode, bool) {
	for m := LEDBreathing; m <= LEDFadeOut; m++ {
		if strings.EqualFold(s, FormatLEDMode(m)) {
			return m, true
		}
	}
	return 0, false
}

// ParseLEDColor parses a ring light color name as printed by FormatLEDColor
func ParseLEDColor(s string) (LEDColor, bool) {
	for c := LEDColor(0); c <= LEDWhite; c++ {
		if strings.EqualFold(s, FormatLEDColor(c)) {
			return c, true
		}
	}
	return 0, false
}
