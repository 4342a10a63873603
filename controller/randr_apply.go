// SPDX-FileCopyrightText: 2023 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

package controller

import (
	"fmt"

	x "github.com/linuxdeepin/go-x11-client"
	"github.com/linuxdeepin/go-x11-client/ext/randr"
	"github.com/linuxdeepin/switch-display/display"
	"golang.org/x/xerrors"
)

type requestKind uint8

const (
	requestDisableCrtc requestKind = iota
	requestSetScreenSize
	requestSetCrtc
)

// request is one step of applying crtc configs.
type request struct {
	kind requestKind
	crtc *display.CrtcConfig
	size *display.ScreenSize
}

func (r request) String() string {
	switch r.kind {
	case requestDisableCrtc:
		return fmt.Sprintf("disable crtc %d", r.crtc.ID)
	case requestSetScreenSize:
		return fmt.Sprintf("set screen size %dx%d, mm: %dx%d",
			r.size.Width, r.size.Height, r.size.MmWidth, r.size.MmHeight)
	default:
		return fmt.Sprintf("set %v", r.crtc)
	}
}

func crtcFits(cfg *display.CrtcConfig, size *display.ScreenSize) bool {
	if size == nil {
		return false
	}
	return cfg.X >= 0 && cfg.Y >= 0 &&
		int(cfg.X)+int(cfg.Mode.Width) <= int(size.Width) &&
		int(cfg.Y)+int(cfg.Mode.Height) <= int(size.Height)
}

// buildRequests orders the changes from current to next. A crtc that goes
// idle, changes or would stick out of the new screen is disabled before the
// screen is resized; afterwards every active crtc that differs is set.
// Nothing is requested when no crtc changes.
func buildRequests(current, next map[display.Crtc]*display.CrtcConfig, size *display.ScreenSize) []request {
	var disables, sets []request
	disabled := make(map[display.Crtc]bool)

	for _, id := range display.SortedCrtcs(current) {
		cur := current[id]
		if cur.Idle() {
			continue
		}
		nxt, ok := next[id]
		if ok && !nxt.Idle() && cur.Equal(nxt) && crtcFits(cur, size) {
			continue
		}
		disables = append(disables, request{kind: requestDisableCrtc, crtc: cur})
		disabled[id] = true
	}

	for _, id := range display.SortedCrtcs(next) {
		nxt := next[id]
		if nxt.Idle() {
			continue
		}
		cur, ok := current[id]
		if ok && !disabled[id] && cur.Equal(nxt) {
			continue
		}
		sets = append(sets, request{kind: requestSetCrtc, crtc: nxt})
	}

	if len(disables) == 0 && len(sets) == 0 {
		return nil
	}
	requests := disables
	if size != nil {
		requests = append(requests, request{kind: requestSetScreenSize, size: size})
	}
	return append(requests, sets...)
}

func randrStatusString(status uint8) string {
	switch status {
	case randr.SetConfigSuccess:
		return "success"
	case randr.SetConfigFailed:
		return "failed"
	case randr.SetConfigInvalidConfigTime:
		return "invalid config time"
	case randr.SetConfigInvalidTime:
		return "invalid time"
	default:
		return fmt.Sprintf("unknown status %d", status)
	}
}

func (c *randrController) execute(requests []request, cfgTs x.Timestamp) (err error) {
	x.GrabServer(c.xConn)
	logger.Debug("grab server")
	defer func() {
		logger.Debug("ungrab server")
		ungrabErr := x.UngrabServerChecked(c.xConn).Check(c.xConn)
		if ungrabErr != nil {
			logger.Warning(ungrabErr)
		}
	}()

	for _, req := range requests {
		logger.Debug(req)
		switch req.kind {
		case requestDisableCrtc:
			err = c.setCrtcConfig(req.crtc.ID, cfgTs, 0, 0, 0, randr.RotationRotate0, nil)
		case requestSetScreenSize:
			err = c.setScreenSize(req.size)
		case requestSetCrtc:
			cfg := req.crtc
			outputs := make([]randr.Output, len(cfg.Outputs))
			for i, o := range cfg.Outputs {
				outputs[i] = randr.Output(o)
			}
			err = c.setCrtcConfig(cfg.ID, cfgTs, cfg.X, cfg.Y, randr.Mode(cfg.Mode.ID), cfg.Rotation, outputs)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (c *randrController) setScreenSize(size *display.ScreenSize) error {
	root := c.xConn.GetDefaultScreen().Root
	err := randr.SetScreenSizeChecked(c.xConn, root, size.Width, size.Height,
		size.MmWidth, size.MmHeight).Check(c.xConn)
	if err != nil {
		return xerrors.Errorf("set screen size %dx%d: %w", size.Width, size.Height, err)
	}
	return nil
}

func (c *randrController) setCrtcConfig(crtc display.Crtc, cfgTs x.Timestamp, posX, posY int16,
	mode randr.Mode, rotation uint16, outputs []randr.Output) error {
	setCfg, err := randr.SetCrtcConfig(c.xConn, randr.Crtc(crtc), 0, cfgTs,
		posX, posY, mode, rotation, outputs).Reply(c.xConn)
	if err != nil {
		return xerrors.Errorf("configure crtc %d: %w", crtc, err)
	}
	if setCfg.Status != randr.SetConfigSuccess {
		return xerrors.Errorf("failed to configure crtc %d: %v", crtc, randrStatusString(setCfg.Status))
	}
	return nil
}
