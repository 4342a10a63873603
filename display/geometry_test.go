// SPDX-FileCopyrightText: 2023 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

package display

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/xerrors"
)

func TestPxToMm(t *testing.T) {
	assert.Equal(t, uint32(0), PxToMm(0))
	assert.Equal(t, uint32(508), PxToMm(1920))
	assert.Equal(t, uint32(286), PxToMm(1080))
	assert.Equal(t, uint32(17339), PxToMm(65535))
}

func TestComputeScreenSize_idle(t *testing.T) {
	res := newTestResources()
	res.Crtcs[1].Mode = nil
	res.Crtcs[1].Outputs = nil

	size, err := ComputeScreenSize(res.Crtcs, res.Outputs)
	assert.NoError(t, err)
	assert.Nil(t, size)
}

func TestComputeScreenSize(t *testing.T) {
	res := newTestResources()
	res.Crtcs[2].Mode = res.Modes[mode720p60]
	res.Crtcs[2].Outputs = []uint32{outputHDMI}

	size, err := ComputeScreenSize(res.Crtcs, res.Outputs)
	require.NoError(t, err)
	// HDMI-1 is the bigger monitor
	assert.Equal(t, &ScreenSize{Width: 1920, Height: 1080, MmWidth: 598, MmHeight: 336}, size)
}

func TestComputeScreenSize_boundingBox(t *testing.T) {
	res := newTestResources()
	res.Crtcs[2].Mode = res.Modes[mode720p60]
	res.Crtcs[2].Outputs = []uint32{outputHDMI}
	res.Crtcs[2].X = 1920
	res.Crtcs[2].Y = 600

	size, err := ComputeScreenSize(res.Crtcs, res.Outputs)
	require.NoError(t, err)
	assert.Equal(t, uint16(3200), size.Width)
	assert.Equal(t, uint16(1320), size.Height)
}

func TestComputeScreenSize_mmFallback(t *testing.T) {
	res := newTestResources()
	res.Outputs[outputEDP].MmWidth = 0
	res.Outputs[outputHDMI].MmHeight = 0
	res.Crtcs[1].Outputs = []uint32{outputEDP, outputHDMI}

	size, err := ComputeScreenSize(res.Crtcs, res.Outputs)
	require.NoError(t, err)
	assert.Equal(t, &ScreenSize{Width: 1920, Height: 1080, MmWidth: 508, MmHeight: 286}, size)
}

func TestComputeScreenSize_tooLarge(t *testing.T) {
	res := newTestResources()
	res.Crtcs[2].Mode = res.Modes[mode1080p60]
	res.Crtcs[2].Outputs = []uint32{outputHDMI}
	res.Crtcs[2].X = 32767
	res.Crtcs[1].X = -32768

	_, err := ComputeScreenSize(res.Crtcs, res.Outputs)
	assert.True(t, xerrors.Is(err, ErrScreenTooLarge), "%v", err)
}

func TestComputeScreenSize_unknownOutput(t *testing.T) {
	res := newTestResources()
	res.Crtcs[1].Outputs = []uint32{99}

	_, err := ComputeScreenSize(res.Crtcs, res.Outputs)
	assert.True(t, xerrors.Is(err, ErrInconsistent), "%v", err)
}
