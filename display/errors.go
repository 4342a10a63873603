// SPDX-FileCopyrightText: 2023 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

package display

import (
	"fmt"

	"golang.org/x/xerrors"
)

var (
	// ErrNoFreeCrtc is returned when an output must be enabled but none of
	// the crtcs able to drive it is idle.
	ErrNoFreeCrtc = xerrors.New("no free crtc available")
	// ErrNoUsableMode is returned when an output must be enabled but it has
	// no admissible mode.
	ErrNoUsableMode = xerrors.New("no usable mode")
	// ErrInconsistent marks a broken output/crtc binding. It is a logic
	// defect or a malformed backend reply, never a recoverable state.
	ErrInconsistent = xerrors.New("inconsistent output/crtc state")
	// ErrScreenTooLarge is returned when the bounding box of the active
	// crtcs does not fit the 16 bit screen size of the protocol.
	ErrScreenTooLarge = xerrors.New("screen too large")
)

// UnknownLocationError is returned for an output name whose connector prefix
// is not registered as either internal or external.
type UnknownLocationError struct {
	Name string
}

func (e *UnknownLocationError) Error() string {
	return fmt.Sprintf("output %q has unknown location, register its connector prefix", e.Name)
}
