// SPDX-FileCopyrightText: 2023 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

package display

import (
	"math"

	"golang.org/x/xerrors"
)

// ScreenSize is the virtual screen declared to the X server.
type ScreenSize struct {
	Width    uint16
	Height   uint16
	MmWidth  uint32
	MmHeight uint32
}

const (
	referenceDPI = 96.0
	mmPerInch    = 25.4
)

// PxToMm estimates a physical length at 96 DPI.
func PxToMm(px uint16) uint32 {
	return uint32(math.Round(float64(px) * mmPerInch / referenceDPI))
}

type rect struct {
	left, top, right, bottom int
}

func (r *rect) union(other rect) {
	if other.left < r.left {
		r.left = other.left
	}
	if other.top < r.top {
		r.top = other.top
	}
	if other.right > r.right {
		r.right = other.right
	}
	if other.bottom > r.bottom {
		r.bottom = other.bottom
	}
}

func crtcRect(cfg *CrtcConfig) rect {
	return rect{
		left:   int(cfg.X),
		top:    int(cfg.Y),
		right:  int(cfg.X) + int(cfg.Mode.Width),
		bottom: int(cfg.Y) + int(cfg.Mode.Height),
	}
}

// ComputeScreenSize returns the screen covering every active crtc, or nil if
// no crtc is active. The physical size is taken from the biggest monitor that
// reports one, else estimated from the pixel size.
func ComputeScreenSize(configs map[Crtc]*CrtcConfig, outputs map[uint32]*OutputResource) (*ScreenSize, error) {
	var bbox rect
	active := false
	var mmWidth, mmHeight uint32

	for _, id := range SortedCrtcs(configs) {
		cfg := configs[id]
		if cfg.Idle() {
			continue
		}
		r := crtcRect(cfg)
		if !active {
			bbox = r
			active = true
		} else {
			bbox.union(r)
		}

		for _, o := range cfg.Outputs {
			output, ok := outputs[o]
			if !ok {
				return nil, xerrors.Errorf("crtc %d drives unknown output %d: %w", id, o, ErrInconsistent)
			}
			if output.MmWidth == 0 || output.MmHeight == 0 {
				continue
			}
			if uint64(output.MmWidth)*uint64(output.MmHeight) > uint64(mmWidth)*uint64(mmHeight) {
				mmWidth, mmHeight = output.MmWidth, output.MmHeight
			}
		}
	}

	if !active {
		return nil, nil
	}

	width := bbox.right - bbox.left
	height := bbox.bottom - bbox.top
	if width > math.MaxUint16 || height > math.MaxUint16 {
		return nil, xerrors.Errorf("%dx%d: %w", width, height, ErrScreenTooLarge)
	}

	size := &ScreenSize{
		Width:    uint16(width),
		Height:   uint16(height),
		MmWidth:  mmWidth,
		MmHeight: mmHeight,
	}
	if mmWidth == 0 {
		size.MmWidth = PxToMm(size.Width)
		size.MmHeight = PxToMm(size.Height)
	}
	return size, nil
}
