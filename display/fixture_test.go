// SPDX-FileCopyrightText: 2023 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

package display

import (
	"testing"
)

const (
	mode1080p60 uint32 = iota + 1
	mode720p60
	mode1080p50
	mode800x600DoubleScan
)

const (
	outputEDP  uint32 = 66
	outputHDMI uint32 = 67
)

// newTestResources returns a laptop with eDP-1 on crtc 1 and HDMI-1 plugged
// in but not driven.
func newTestResources() *Resources {
	res := NewResources()
	for _, m := range []*ModeInfo{
		{ID: mode1080p60, Name: "1920x1080", Width: 1920, Height: 1080, DotClock: 148500000, HTotal: 2200, VTotal: 1125},
		{ID: mode720p60, Name: "1280x720", Width: 1280, Height: 720, DotClock: 74250000, HTotal: 1650, VTotal: 750},
		{ID: mode1080p50, Name: "1920x1080", Width: 1920, Height: 1080, DotClock: 148500000, HTotal: 2640, VTotal: 1125},
		{ID: mode800x600DoubleScan, Name: "800x600", Width: 800, Height: 600, DotClock: 81000000, HTotal: 1800, VTotal: 750,
			Flags: modeFlagDoubleScan},
	} {
		res.Modes[m.ID] = m
	}

	res.Outputs[outputEDP] = &OutputResource{
		ID:           outputEDP,
		Name:         "eDP-1",
		Crtc:         1,
		Crtcs:        []Crtc{1, 2},
		Modes:        []uint32{mode1080p60, mode720p60},
		NumPreferred: 1,
		MmWidth:      344,
		MmHeight:     194,
	}
	res.Outputs[outputHDMI] = &OutputResource{
		ID:           outputHDMI,
		Name:         "HDMI-1",
		Crtcs:        []Crtc{1, 2},
		Modes:        []uint32{mode1080p50, mode1080p60, mode720p60},
		NumPreferred: 1,
		MmWidth:      598,
		MmHeight:     336,
	}

	res.Crtcs[1] = &CrtcConfig{ID: 1, Mode: res.Modes[mode1080p60], Rotation: RotationNone, Outputs: []uint32{outputEDP}}
	res.Crtcs[2] = &CrtcConfig{ID: 2, Rotation: RotationNone}
	return res
}

func newTestScreen(t *testing.T, res *Resources) *Screen {
	screen := &Screen{Resources: res}
	for _, id := range []uint32{outputEDP, outputHDMI} {
		or := res.Outputs[id]
		o := newTestOutput(t, or.Name, true, or.Crtc != 0)
		o.ID = id
		screen.Outputs = append(screen.Outputs, o)
	}
	return screen
}

func getByName(screen *Screen, name string) *Output {
	for _, o := range screen.Outputs {
		if o.Name == name {
			return o
		}
	}
	return nil
}
