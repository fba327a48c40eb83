// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package sensor

import (
	"errors"
	"fmt"

	"github.com/Thermoquad/dactyl/pkg/zw101"
)

// Capacity returns the number of template slots in the library
func (d *Device) Capacity() uint16 {
	return d.capacity
}

// NextID returns the slot the next enrollment will be stored in
func (d *Device) NextID() uint16 {
	return d.nextID
}

// loadLibraryInfo learns the capacity and seeds the allocator from the
// number of stored templates. Slots are allocated contiguously from 0.
func (d *Device) loadLibraryInfo() error {
	var errs []error
	d.hasStored = false

	params, err := d.ReadSystemParameters()
	switch {
	case err != nil:
		errs = append(errs, err)
		d.capacity = d.defaultCapacity
	case params.LibrarySize == 0:
		d.log.Warn().Msg("module reported an empty library size")
		d.capacity = d.defaultCapacity
	default:
		d.capacity = params.LibrarySize
	}

	count, err := d.readTemplateCount()
	if err != nil {
		d.log.Warn().Err(err).Msg("template count unavailable, allocating from 0")
		d.nextID = 0
		return errors.Join(append(errs, err)...)
	}
	d.nextID = count
	if d.nextID >= d.capacity {
		d.nextID = 0
	}

	d.log.Info().Uint16("capacity", d.capacity).Uint16("enrolled", count).Msg("library loaded")
	d.setStatus(fmt.Sprintf(statusReadyFmt, count, d.capacity))
	return errors.Join(errs...)
}

// ReadSystemParameters reads the module's basic parameter table
func (d *Device) ReadSystemParameters() (zw101.SystemParameters, error) {
	r, err := d.query(zw101.NewReadSysPara(), SysParaTimeout, minSysParaResponse)
	if err != nil {
		return zw101.SystemParameters{}, err
	}
	params, ok := zw101.ParseSystemParameters(r.payload())
	if !ok {
		return zw101.SystemParameters{}, fmt.Errorf("READ_SYSPARA: %w", ErrNoResponse)
	}
	return params, nil
}

func (d *Device) readTemplateCount() (uint16, error) {
	r, err := d.query(zw101.NewValidTemplateNum(), CountTimeout, minCountResponse)
	if err != nil {
		return 0, err
	}
	count, ok := zw101.ParseTemplateCount(r.payload())
	if !ok {
		return 0, fmt.Errorf("READ_VALID_NUMS: %w", ErrNoResponse)
	}
	return count, nil
}

// ReadValidTemplateCount returns the number of stored templates
func (d *Device) ReadValidTemplateCount() (uint16, error) {
	count, err := d.readTemplateCount()
	if err != nil {
		return 0, err
	}
	d.setStatus(fmt.Sprintf(statusTemplatesFmt, count))
	return count, nil
}

// ReadIndexTable returns the occupied template ids on one index page
func (d *Device) ReadIndexTable(page uint8) ([]uint16, error) {
	r, err := d.query(zw101.NewReadIndexTable(page), IndexTimeout, zw101.MinResponseSize)
	if err != nil {
		return nil, err
	}
	ids, ok := zw101.ParseIndexTable(r.payload(), page)
	if !ok {
		return nil, fmt.Errorf("READ_INDEX_TABLE: %w", ErrNoResponse)
	}
	return ids, nil
}

// Delete removes the template stored at id. The allocator is left alone
// unless ReclaimDeletedIDs is set and id is the slot this Device stored to
// most recently. A reclaimed slot cannot be reclaimed again until it is
// stored to again.
func (d *Device) Delete(id uint16) error {
	if _, err := d.query(zw101.NewDeleteChar(id, 1), DeleteTimeout, zw101.MinResponseSize); err != nil {
		d.log.Warn().Err(err).Uint16("id", id).Msg("delete failed")
		return err
	}

	if d.reclaimDeleted && d.hasStored && id == d.lastStored {
		d.nextID = id
		d.hasStored = false
	}
	d.log.Info().Uint16("id", id).Msg("template deleted")
	d.setStatus(fmt.Sprintf(statusDeletedFmt, id))
	return nil
}

// ClearLibrary removes every template and restarts allocation at 0
func (d *Device) ClearLibrary() error {
	d.setStatus(StatusClearing)
	if err := d.transact(zw101.NewEmpty()); err != nil {
		d.log.Warn().Err(err).Msg("library clear failed")
		d.setStatus(StatusClearFailed)
		return err
	}
	d.nextID = 0
	d.hasStored = false
	d.setStatus(StatusCleared)
	return nil
}

// recordStore notes a template stored at id and advances the allocator past it
func (d *Device) recordStore(id uint16) {
	d.lastStored = id
	d.hasStored = true
	d.nextID = id + 1
	if d.nextID >= d.capacity {
		d.nextID = 0
	}
}
