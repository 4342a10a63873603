// SPDX-FileCopyrightText: 2023 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

package display

import (
	"strings"

	"golang.org/x/xerrors"
)

type Location uint8

const (
	LocationInternal Location = iota + 1
	LocationExternal
)

func (l Location) String() string {
	switch l {
	case LocationInternal:
		return "internal"
	case LocationExternal:
		return "external"
	default:
		return "unknown"
	}
}

type locationPrefix struct {
	prefix   string
	location Location
}

// Classifier maps connector names to a Location by prefix. Names matching no
// registered prefix are rejected.
type Classifier struct {
	prefixes []locationPrefix
}

// DefaultClassifier knows the connector names the kernel drm drivers and
// sway use for laptop panels and for the usual external connectors.
func DefaultClassifier() *Classifier {
	return &Classifier{
		prefixes: []locationPrefix{
			{"eDP-", LocationInternal},
			{"LVDS-", LocationInternal},
			{"HDMI-", LocationExternal},
			{"DP-", LocationExternal},
			{"DVI-", LocationExternal},
			{"VGA-", LocationExternal},
		},
	}
}

// Register adds a connector prefix. A prefix registered twice keeps its
// first location, conflicting registrations are an error.
func (c *Classifier) Register(prefix string, location Location) error {
	if prefix == "" {
		return xerrors.New("empty connector prefix")
	}
	if location != LocationInternal && location != LocationExternal {
		return xerrors.Errorf("invalid location %d for prefix %q", location, prefix)
	}
	for _, p := range c.prefixes {
		if p.prefix != prefix {
			continue
		}
		if p.location != location {
			return xerrors.Errorf("prefix %q already registered as %v", prefix, p.location)
		}
		return nil
	}
	c.prefixes = append(c.prefixes, locationPrefix{prefix, location})
	return nil
}

// Locate returns the location of the named output. The longest matching
// prefix wins so that a registered "DP-USB-" can override "DP-".
func (c *Classifier) Locate(name string) (Location, error) {
	var best locationPrefix
	for _, p := range c.prefixes {
		if strings.HasPrefix(name, p.prefix) && len(p.prefix) > len(best.prefix) {
			best = p
		}
	}
	if best.location == 0 {
		return 0, &UnknownLocationError{Name: name}
	}
	return best.location, nil
}
