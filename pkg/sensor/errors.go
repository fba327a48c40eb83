// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package sensor

import (
	"errors"
	"fmt"

	"github.com/Thermoquad/dactyl/pkg/zw101"
)

var (
	ErrNoTransport      = errors.New("no transport configured")
	ErrNoResponse       = errors.New("no response from module")
	ErrEnrollInProgress = errors.New("enrollment already in progress")
	ErrAutoModeActive   = errors.New("auto mode already active")
	ErrInvalidTimeout   = errors.New("auto enroll timeout out of range")
)

// CommandError is returned when the module acknowledges a command with a
// non-zero confirmation code
type CommandError struct {
	Opcode uint8
	Code   zw101.ConfirmCode
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s failed: %s (0x%02X)", zw101.OpcodeName(e.Opcode), e.Code, byte(e.Code))
}

// ConfirmCode returns the confirmation code carried by err, if any
func ConfirmCode(err error) (zw101.ConfirmCode, bool) {
	var cmdErr *CommandError
	if errors.As(err, &cmdErr) {
		return cmdErr.Code, true
	}
	return 0, false
}
