// SPDX-FileCopyrightText: 2023 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

package display

import (
	"fmt"
	"math"
	"sort"

	"golang.org/x/xerrors"
)

type Crtc uint32

// RotationNone has the same bit as randr Rotate_0. Outputs are never rotated.
const RotationNone uint16 = 1

const modeFlagDoubleScan = 1 << 5

type ModeInfo struct {
	ID       uint32
	Name     string
	Width    uint16
	Height   uint16
	DotClock uint32
	HTotal   uint16
	VTotal   uint16
	Flags    uint32
}

func (m *ModeInfo) Resolution() Resolution {
	return Resolution{Width: uint32(m.Width), Height: uint32(m.Height)}
}

func (m *ModeInfo) RefreshRate() uint32 {
	return RefreshRate(m.DotClock, m.HTotal, m.VTotal)
}

// Validate rejects timings whose refresh rate does not fit in millihertz.
func (m *ModeInfo) Validate() error {
	rate := refreshRate64(m.DotClock, m.HTotal, m.VTotal)
	if rate > math.MaxUint32 {
		return xerrors.Errorf("mode %d refresh rate %d mHz out of range: %w", m.ID, rate, ErrInconsistent)
	}
	return nil
}

func (m *ModeInfo) DoubleScan() bool {
	return m.Flags&modeFlagDoubleScan != 0
}

func (m *ModeInfo) String() string {
	return fmt.Sprintf("%d(%v@%d)", m.ID, m.Resolution(), m.RefreshRate())
}

type OutputResource struct {
	ID   uint32
	Name string
	// Crtc is the crtc currently driving the output, 0 if none.
	Crtc Crtc
	// Crtcs can drive the output, in the order the hardware reported.
	Crtcs []Crtc
	// Modes in hardware order, the first NumPreferred are preferred.
	Modes        []uint32
	NumPreferred int
	MmWidth      uint32
	MmHeight     uint32
}

// CrtcConfig is the state of one crtc. Mode is nil iff Outputs is empty.
type CrtcConfig struct {
	ID       Crtc
	X        int16
	Y        int16
	Mode     *ModeInfo
	Rotation uint16
	Outputs  []uint32
}

func (c *CrtcConfig) Idle() bool {
	return c.Mode == nil
}

func (c *CrtcConfig) hasOutput(output uint32) bool {
	for _, o := range c.Outputs {
		if o == output {
			return true
		}
	}
	return false
}

func (c *CrtcConfig) removeOutput(output uint32) {
	outputs := c.Outputs[:0]
	for _, o := range c.Outputs {
		if o != output {
			outputs = append(outputs, o)
		}
	}
	c.Outputs = outputs
}

func (c *CrtcConfig) clone() *CrtcConfig {
	cp := *c
	cp.Outputs = append([]uint32(nil), c.Outputs...)
	return &cp
}

// Equal reports whether applying other to the crtc would change nothing.
func (c *CrtcConfig) Equal(other *CrtcConfig) bool {
	if c.ID != other.ID || c.X != other.X || c.Y != other.Y || c.Rotation != other.Rotation {
		return false
	}
	if (c.Mode == nil) != (other.Mode == nil) {
		return false
	}
	if c.Mode != nil && c.Mode.ID != other.Mode.ID {
		return false
	}
	if len(c.Outputs) != len(other.Outputs) {
		return false
	}
	for _, o := range c.Outputs {
		if !other.hasOutput(o) {
			return false
		}
	}
	return true
}

func (c *CrtcConfig) String() string {
	if c.Mode == nil {
		return fmt.Sprintf("crtc %d: off", c.ID)
	}
	return fmt.Sprintf("crtc %d: %v+%d+%d rotation %d outputs %v", c.ID, c.Mode, c.X, c.Y, c.Rotation, c.Outputs)
}

// Resources is the crtc level part of a snapshot.
type Resources struct {
	ConfigTimestamp uint32
	Modes           map[uint32]*ModeInfo
	Outputs         map[uint32]*OutputResource
	Crtcs           map[Crtc]*CrtcConfig
}

func NewResources() *Resources {
	return &Resources{
		Modes:   make(map[uint32]*ModeInfo),
		Outputs: make(map[uint32]*OutputResource),
		Crtcs:   make(map[Crtc]*CrtcConfig),
	}
}

func (r *Resources) cloneCrtcs() map[Crtc]*CrtcConfig {
	result := make(map[Crtc]*CrtcConfig, len(r.Crtcs))
	for id, cfg := range r.Crtcs {
		result[id] = cfg.clone()
	}
	return result
}

// SortedCrtcs returns the crtc ids of configs in ascending order.
func SortedCrtcs(configs map[Crtc]*CrtcConfig) []Crtc {
	ids := make([]Crtc, 0, len(configs))
	for id := range configs {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		return ids[i] < ids[j]
	})
	return ids
}
