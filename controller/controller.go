// SPDX-FileCopyrightText: 2023 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package controller reads and changes the display configuration of the
// running session through one of several backends.
package controller

import (
	"context"

	"github.com/linuxdeepin/go-lib/log"
	"github.com/linuxdeepin/switch-display/display"
	"golang.org/x/xerrors"
)

var logger = log.NewLogger("switch-display/controller")

func SetLogLevel(level log.Priority) {
	logger.SetLogLevel(level)
}

type Kind uint

const (
	KindRandr Kind = iota
	KindXrandr
	KindSway
)

var kindNames = map[Kind]string{
	KindRandr:  "randr",
	KindXrandr: "xrandr",
	KindSway:   "sway",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

func ParseKind(s string) (Kind, error) {
	for kind, name := range kindNames {
		if name == s {
			return kind, nil
		}
	}
	return 0, xerrors.Errorf("unknown controller %q, expect randr, xrandr or sway", s)
}

// Controller is a display backend.
type Controller interface {
	Name() string
	// GetOutputs snapshots the current outputs. Only backends with direct
	// crtc access fill in Screen.Resources.
	GetOutputs(ctx context.Context) (*display.Screen, error)
	// SwitchOutputs applies plan. screen must be the snapshot plan was built
	// from. A nil resolution lets every enabled output use its own best mode.
	SwitchOutputs(ctx context.Context, screen *display.Screen, plan *display.SwitchPlan,
		resolution *display.Resolution) error
	Close() error
}

func New(kind Kind, classifier *display.Classifier) (Controller, error) {
	logger.Debug("new controller", kind)
	var c Controller
	var err error
	switch kind {
	case KindRandr:
		c, err = newRandrController(classifier)
	case KindXrandr:
		c = newXrandrController(classifier, execRunner{})
	case KindSway:
		c, err = newSwayController(classifier)
	default:
		err = xerrors.Errorf("unknown controller kind %d", kind)
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}
