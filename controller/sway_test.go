// SPDX-FileCopyrightText: 2023 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

package controller

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/joshuarubin/go-sway"
	"github.com/linuxdeepin/switch-display/display"
	"github.com/stretchr/testify/suite"
)

type fakeSwayIPC struct {
	outputs  []sway.Output
	replies  []sway.RunCommandReply
	err      error
	commands []string
}

func (f *fakeSwayIPC) GetOutputs(ctx context.Context) ([]sway.Output, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.outputs, nil
}

func (f *fakeSwayIPC) RunCommand(ctx context.Context, command string) ([]sway.RunCommandReply, error) {
	f.commands = append(f.commands, command)
	if f.err != nil {
		return nil, f.err
	}
	return f.replies, nil
}

// get_outputs reply, refresh in millihertz as sway sends it
const testSwayOutputs = `[
	{
		"name": "HDMI-A-2",
		"make": "Shenzhen KTC Technology Group",
		"model": "49'TV",
		"active": true,
		"modes": [
			{"width": 4096, "height": 2160, "refresh": 30000},
			{"width": 1920, "height": 1080, "refresh": 60000},
			{"width": 1280, "height": 720, "refresh": 59940}
		]
	},
	{
		"name": "eDP-1",
		"make": "Lenovo Group Limited",
		"model": "0x40BA",
		"active": false,
		"modes": [
			{"width": 1920, "height": 1080, "refresh": 60020},
			{"width": 1920, "height": 1080, "refresh": 48016}
		]
	}
]`

type SwaySuite struct {
	suite.Suite
	ipc *fakeSwayIPC
	c   *swayController
}

func (s *SwaySuite) SetupTest() {
	var outputs []sway.Output
	err := json.Unmarshal([]byte(testSwayOutputs), &outputs)
	s.Require().NoError(err)
	s.ipc = &fakeSwayIPC{
		outputs: outputs,
		replies: []sway.RunCommandReply{{Success: true}},
	}
	s.c = &swayController{
		client:     s.ipc,
		classifier: display.DefaultClassifier(),
	}
}

func (s *SwaySuite) TestGetOutputs() {
	screen, err := s.c.GetOutputs(context.Background())
	s.Require().NoError(err)
	s.Require().Len(screen.Outputs, 2)
	s.Nil(screen.Resources)

	hdmi := screen.Outputs[0]
	s.Equal("HDMI-A-2", hdmi.Name)
	s.True(hdmi.Connected)
	s.True(hdmi.Enabled)
	s.Equal(display.LocationExternal, hdmi.Location)
	s.Equal("Shenzhen KTC Technology Group 49'TV", hdmi.Identity)
	s.Len(hdmi.Modes, 3)
	s.Equal(display.Mode{Resolution: display.Resolution{Width: 4096, Height: 2160}, RefreshRate: 30000}, hdmi.Modes[0])

	edp := screen.Outputs[1]
	s.True(edp.Connected)
	s.False(edp.Enabled)
	s.Equal(display.LocationInternal, edp.Location)
	s.Equal([]display.Mode{
		{Resolution: display.Resolution{Width: 1920, Height: 1080}, RefreshRate: 60020},
		{Resolution: display.Resolution{Width: 1920, Height: 1080}, RefreshRate: 48016},
	}, edp.Modes)
}

func (s *SwaySuite) TestGetOutputs_minRefreshRate() {
	screen, err := s.c.GetOutputs(context.Background())
	s.Require().NoError(err)
	r, ok := display.ChooseBestResolution(screen.Outputs[1:], 50000)
	s.Require().True(ok)
	s.Equal(display.Resolution{Width: 1920, Height: 1080}, r)

	_, ok = display.ChooseBestResolution(screen.Outputs[1:], 60021)
	s.False(ok)
}

func (s *SwaySuite) TestSwitchOutputs() {
	screen, err := s.c.GetOutputs(context.Background())
	s.Require().NoError(err)
	plan := display.BuildSwitchPlan(screen)
	resolution, ok := display.ChooseBestResolution(plan.ToEnable, 50000)
	s.Require().True(ok)

	err = s.c.SwitchOutputs(context.Background(), screen, plan, &resolution)
	s.Require().NoError(err)
	s.Equal([]string{`output "HDMI-A-2" enable mode 1920x1080 pos 0 0`}, s.ipc.commands)
}

func (s *SwaySuite) TestSwitchOutputs_commandFailed() {
	s.ipc.replies = []sway.RunCommandReply{{Success: true}, {Success: false, Error: "Unknown output"}}
	outputs := newTestOutputs(s.T(), "eDP-1", "HDMI-1")
	plan := &display.SwitchPlan{ToDisable: outputs[:1], ToEnable: outputs[1:]}

	err := s.c.SwitchOutputs(context.Background(), &display.Screen{Outputs: outputs}, plan, nil)
	s.Require().Error(err)
	s.Contains(err.Error(), "Unknown output")
	s.Equal([]string{`output "eDP-1" disable;output "HDMI-1" enable pos 0 0`}, s.ipc.commands)
}

func (s *SwaySuite) TestSwitchOutputs_emptyPlan() {
	err := s.c.SwitchOutputs(context.Background(), &display.Screen{}, &display.SwitchPlan{}, nil)
	s.NoError(err)
	s.Empty(s.ipc.commands)
}

func (s *SwaySuite) TestIPCError() {
	s.ipc.err = errors.New("broken pipe")
	_, err := s.c.GetOutputs(context.Background())
	s.Error(err)

	outputs := newTestOutputs(s.T(), "eDP-1")
	err = s.c.SwitchOutputs(context.Background(), &display.Screen{Outputs: outputs},
		&display.SwitchPlan{ToEnable: outputs}, nil)
	s.Error(err)
}

func (s *SwaySuite) TestClose() {
	s.NoError(s.c.Close())
}

func TestSwaySuite(t *testing.T) {
	suite.Run(t, new(SwaySuite))
}
