// SPDX-FileCopyrightText: 2023 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

package display

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"golang.org/x/xerrors"
)

type Resolution struct {
	Width  uint32
	Height uint32
}

// Area is computed in 64 bit so bogus geometry reported by a monitor can not
// overflow.
func (r Resolution) Area() uint64 {
	return uint64(r.Width) * uint64(r.Height)
}

func (r Resolution) String() string {
	return fmt.Sprintf("%dx%d", r.Width, r.Height)
}

// ParseResolution parses the "WIDTHxHEIGHT" form of xrandr mode lines.
func ParseResolution(s string) (Resolution, error) {
	ws, hs, ok := strings.Cut(s, "x")
	if !ok {
		return Resolution{}, xerrors.Errorf("invalid resolution %q", s)
	}
	w, err := strconv.ParseUint(ws, 10, 32)
	if err != nil {
		return Resolution{}, xerrors.Errorf("invalid resolution width %q: %w", s, err)
	}
	h, err := strconv.ParseUint(hs, 10, 32)
	if err != nil {
		return Resolution{}, xerrors.Errorf("invalid resolution height %q: %w", s, err)
	}
	if w == 0 || h == 0 {
		return Resolution{}, xerrors.Errorf("invalid resolution %q", s)
	}
	return Resolution{Width: uint32(w), Height: uint32(h)}, nil
}

// Mode is a resolution at a refresh rate in millihertz.
type Mode struct {
	Resolution  Resolution
	RefreshRate uint32
}

func (m Mode) String() string {
	return fmt.Sprintf("%v@%d.%03d", m.Resolution, m.RefreshRate/1000, m.RefreshRate%1000)
}

func refreshRate64(dotClock uint32, hTotal, vTotal uint16) uint64 {
	if hTotal == 0 || vTotal == 0 {
		return 0
	}
	return uint64(dotClock) * 1000 / (uint64(hTotal) * uint64(vTotal))
}

// RefreshRate derives the refresh rate in millihertz from raw mode timings.
// Rates beyond uint32 saturate at math.MaxUint32.
func RefreshRate(dotClock uint32, hTotal, vTotal uint16) uint32 {
	rate := refreshRate64(dotClock, hTotal, vTotal)
	if rate > math.MaxUint32 {
		return math.MaxUint32
	}
	return uint32(rate)
}

type Output struct {
	// ID is the backend identifier, the randr output id for randr and 0
	// for backends addressing outputs by name.
	ID        uint32
	Name      string
	Connected bool
	Enabled   bool
	Location  Location
	// Modes keeps the order the backend reported.
	Modes []Mode
	// Identity describes the attached monitor, for logs only.
	Identity string
}

// NewOutput creates an output whose location is derived from its name.
func NewOutput(c *Classifier, name string, connected, enabled bool) (*Output, error) {
	location, err := c.Locate(name)
	if err != nil {
		return nil, err
	}
	return &Output{
		Name:      name,
		Connected: connected,
		Enabled:   enabled,
		Location:  location,
	}, nil
}

func (o *Output) String() string {
	return o.Name
}

func (o *Output) isInternal() bool {
	return o.Location == LocationInternal
}

func (o *Output) isExternal() bool {
	return o.Location == LocationExternal
}

// Screen is one snapshot of the display state.
type Screen struct {
	Outputs []*Output
	// Resources is nil for backends without direct crtc access.
	Resources *Resources
}
