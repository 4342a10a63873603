// SPDX-FileCopyrightText: 2023 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

package controller

import (
	"context"

	"github.com/davecgh/go-spew/spew"
	x "github.com/linuxdeepin/go-x11-client"
	"github.com/linuxdeepin/go-x11-client/ext/randr"
	"github.com/linuxdeepin/go-lib/log"
	"github.com/linuxdeepin/switch-display/display"
	"golang.org/x/xerrors"
)

type randrController struct {
	xConn      *x.Conn
	classifier *display.Classifier
}

func newRandrController(classifier *display.Classifier) (*randrController, error) {
	xConn, err := x.NewConn()
	if err != nil {
		return nil, xerrors.Errorf("connect to X server: %w", err)
	}

	version, err := randr.QueryVersion(xConn, randr.MajorVersion, randr.MinorVersion).Reply(xConn)
	if err != nil {
		xConn.Close()
		return nil, xerrors.Errorf("query randr version: %w", err)
	}
	logger.Debugf("randr version %d.%d", version.ServerMajorVersion, version.ServerMinorVersion)
	if !hasRandr1d2(uint32(version.ServerMajorVersion), uint32(version.ServerMinorVersion)) {
		xConn.Close()
		return nil, xerrors.Errorf("randr %d.%d is too old, 1.2 is required",
			version.ServerMajorVersion, version.ServerMinorVersion)
	}

	return &randrController{
		xConn:      xConn,
		classifier: classifier,
	}, nil
}

func hasRandr1d2(major, minor uint32) bool {
	return major > 1 || (major == 1 && minor >= 2)
}

func (c *randrController) Name() string {
	return KindRandr.String()
}

func (c *randrController) Close() error {
	c.xConn.Close()
	return nil
}

// randrSnapshot holds the raw replies of one query.
type randrSnapshot struct {
	resources *randr.GetScreenResourcesReply
	outputs   map[randr.Output]*randr.GetOutputInfoReply
	crtcs     map[randr.Crtc]*randr.GetCrtcInfoReply
	edids     map[randr.Output][]byte
}

func (c *randrController) GetOutputs(ctx context.Context) (*display.Screen, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	snapshot, err := c.query()
	if err != nil {
		return nil, err
	}
	return snapshot.toScreen(c.classifier)
}

func (c *randrController) query() (*randrSnapshot, error) {
	root := c.xConn.GetDefaultScreen().Root
	resources, err := randr.GetScreenResources(c.xConn, root).Reply(c.xConn)
	if err != nil {
		return nil, xerrors.Errorf("get screen resources: %w", err)
	}
	cfgTs := resources.ConfigTimestamp

	snapshot := &randrSnapshot{
		resources: resources,
		outputs:   make(map[randr.Output]*randr.GetOutputInfoReply, len(resources.Outputs)),
		crtcs:     make(map[randr.Crtc]*randr.GetCrtcInfoReply, len(resources.Crtcs)),
		edids:     make(map[randr.Output][]byte),
	}

	for _, output := range resources.Outputs {
		outputInfo, err := randr.GetOutputInfo(c.xConn, output, cfgTs).Reply(c.xConn)
		if err != nil {
			return nil, xerrors.Errorf("get output %d info: %w", output, err)
		}
		if outputInfo.Status != randr.StatusSuccess {
			return nil, xerrors.Errorf("get output %d info: status is %v", output, outputInfo.Status)
		}
		snapshot.outputs[output] = outputInfo

		if outputInfo.Connection == randr.ConnectionConnected {
			edid, err := c.getOutputEDID(output)
			if err != nil {
				logger.Warningf("get output %s edid failed: %v", outputInfo.Name, err)
			} else {
				snapshot.edids[output] = edid
			}
		}
	}

	for _, crtc := range resources.Crtcs {
		crtcInfo, err := randr.GetCrtcInfo(c.xConn, crtc, cfgTs).Reply(c.xConn)
		if err != nil {
			return nil, xerrors.Errorf("get crtc %d info: %w", crtc, err)
		}
		if crtcInfo.Status != randr.StatusSuccess {
			return nil, xerrors.Errorf("get crtc %d info: status is %v", crtc, crtcInfo.Status)
		}
		snapshot.crtcs[crtc] = crtcInfo
	}
	return snapshot, nil
}

func (c *randrController) getOutputEDID(output randr.Output) ([]byte, error) {
	atomEDID, err := c.xConn.GetAtom("EDID")
	if err != nil {
		return nil, err
	}
	reply, err := randr.GetOutputProperty(c.xConn, output,
		atomEDID, x.AtomInteger,
		0, 32, false, false).Reply(c.xConn)
	if err != nil {
		return nil, err
	}
	return reply.Value, nil
}

func toModeInfo(info randr.ModeInfo) *display.ModeInfo {
	return &display.ModeInfo{
		ID:       info.Id,
		Name:     info.Name,
		Width:    info.Width,
		Height:   info.Height,
		DotClock: info.DotClock,
		HTotal:   info.HTotal,
		VTotal:   info.VTotal,
		Flags:    info.ModeFlags,
	}
}

func toOutputIDs(outputs []randr.Output) []uint32 {
	result := make([]uint32, len(outputs))
	for i, o := range outputs {
		result[i] = uint32(o)
	}
	return result
}

func toCrtcs(crtcs []randr.Crtc) []display.Crtc {
	result := make([]display.Crtc, len(crtcs))
	for i, c := range crtcs {
		result[i] = display.Crtc(c)
	}
	return result
}

// toScreen converts the replies, keeping the output order of the server.
func (s *randrSnapshot) toScreen(classifier *display.Classifier) (*display.Screen, error) {
	res := display.NewResources()
	res.ConfigTimestamp = uint32(s.resources.ConfigTimestamp)
	for _, info := range s.resources.Modes {
		mode := toModeInfo(info)
		if err := mode.Validate(); err != nil {
			return nil, err
		}
		res.Modes[info.Id] = mode
	}

	for _, crtc := range s.resources.Crtcs {
		crtcInfo, ok := s.crtcs[crtc]
		if !ok {
			return nil, xerrors.Errorf("no info for crtc %d: %w", crtc, display.ErrInconsistent)
		}
		cfg := &display.CrtcConfig{
			ID:       display.Crtc(crtc),
			X:        crtcInfo.X,
			Y:        crtcInfo.Y,
			Rotation: crtcInfo.Rotation,
			Outputs:  toOutputIDs(crtcInfo.Outputs),
		}
		if crtcInfo.Mode != 0 {
			mode, ok := res.Modes[uint32(crtcInfo.Mode)]
			if !ok {
				return nil, xerrors.Errorf("crtc %d uses unknown mode %d: %w", crtc, crtcInfo.Mode, display.ErrInconsistent)
			}
			cfg.Mode = mode
		}
		res.Crtcs[cfg.ID] = cfg
	}

	screen := &display.Screen{Resources: res}
	for _, output := range s.resources.Outputs {
		outputInfo, ok := s.outputs[output]
		if !ok {
			return nil, xerrors.Errorf("no info for output %d: %w", output, display.ErrInconsistent)
		}
		or := &display.OutputResource{
			ID:           uint32(output),
			Name:         outputInfo.Name,
			Crtc:         display.Crtc(outputInfo.Crtc),
			Crtcs:        toCrtcs(outputInfo.Crtcs),
			NumPreferred: int(outputInfo.NumPreferred),
			MmWidth:      outputInfo.MmWidth,
			MmHeight:     outputInfo.MmHeight,
		}
		for _, m := range outputInfo.Modes {
			or.Modes = append(or.Modes, uint32(m))
		}
		res.Outputs[or.ID] = or

		o, err := display.NewOutput(classifier, outputInfo.Name,
			outputInfo.Connection == randr.ConnectionConnected, outputInfo.Crtc != 0)
		if err != nil {
			return nil, err
		}
		o.ID = or.ID
		o.Identity = monitorIdentity(s.edids[output])
		for i, id := range or.Modes {
			mode, ok := res.Modes[id]
			if !ok {
				return nil, xerrors.Errorf("output %s references unknown mode %d: %w", o.Name, id, display.ErrInconsistent)
			}
			if !display.IsAdmissible(mode, i < or.NumPreferred) {
				continue
			}
			o.Modes = append(o.Modes, display.Mode{Resolution: mode.Resolution(), RefreshRate: mode.RefreshRate()})
		}
		screen.Outputs = append(screen.Outputs, o)
	}

	if err := display.VerifyCrtcConfigs(res.Crtcs, res.Outputs); err != nil {
		return nil, xerrors.Errorf("server reported: %w", err)
	}
	for _, o := range screen.Outputs {
		logger.Debugf("output %s connected: %v enabled: %v location: %v monitor: %q",
			o.Name, o.Connected, o.Enabled, o.Location, o.Identity)
	}
	if logger.GetLogLevel() == log.LevelDebug {
		logger.Debug("crtcs:", spew.Sdump(res.Crtcs))
	}
	return screen, nil
}

func (c *randrController) SwitchOutputs(ctx context.Context, screen *display.Screen, plan *display.SwitchPlan,
	resolution *display.Resolution) error {
	res := screen.Resources
	if res == nil {
		return xerrors.Errorf("screen has no crtc resources: %w", display.ErrInconsistent)
	}

	alloc, err := display.AllocateCrtcs(res, plan, resolution)
	if err != nil {
		return err
	}
	err = display.VerifyAllocation(res, plan, alloc)
	if err != nil {
		return err
	}
	size, err := display.ComputeScreenSize(alloc.Crtcs, alloc.Outputs)
	if err != nil {
		return err
	}

	requests := buildRequests(res.Crtcs, alloc.Crtcs, size)
	if len(requests) == 0 {
		logger.Info("crtcs already configured")
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return c.execute(requests, x.Timestamp(res.ConfigTimestamp))
}
