// SPDX-FileCopyrightText: 2023 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

package controller

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/joshuarubin/go-sway"
	"github.com/linuxdeepin/switch-display/display"
	"golang.org/x/xerrors"
)

// swayIPC is the part of sway.Client used here.
type swayIPC interface {
	GetOutputs(ctx context.Context) ([]sway.Output, error)
	RunCommand(ctx context.Context, command string) ([]sway.RunCommandReply, error)
}

type swayController struct {
	client     swayIPC
	classifier *display.Classifier
	cancel     context.CancelFunc
}

func newSwayController(classifier *display.Classifier) (*swayController, error) {
	ctx, cancel := context.WithCancel(context.Background())
	client, err := sway.New(ctx)
	if err != nil {
		cancel()
		return nil, xerrors.Errorf("connect to sway: %w", err)
	}
	return &swayController{
		client:     client,
		classifier: classifier,
		cancel:     cancel,
	}, nil
}

func (c *swayController) Name() string {
	return KindSway.String()
}

func (c *swayController) Close() error {
	if c.cancel != nil {
		c.cancel()
	}
	return nil
}

// GetOutputs lists the outputs known to sway. Sway drops disconnected
// outputs, so every output it reports is connected.
func (c *swayController) GetOutputs(ctx context.Context) (*display.Screen, error) {
	outputs, err := c.client.GetOutputs(ctx)
	if err != nil {
		return nil, xerrors.Errorf("get sway outputs: %w", err)
	}

	screen := &display.Screen{}
	for _, so := range outputs {
		o, err := display.NewOutput(c.classifier, so.Name, true, so.Active)
		if err != nil {
			return nil, err
		}
		o.Identity = strings.TrimSpace(so.Make + " " + so.Model)
		// go-sway converts refresh to Hz
		for _, m := range so.Modes {
			o.Modes = append(o.Modes, display.Mode{
				Resolution:  display.Resolution{Width: uint32(m.Width), Height: uint32(m.Height)},
				RefreshRate: uint32(math.Round(float64(m.Refresh) * 1000)),
			})
		}
		screen.Outputs = append(screen.Outputs, o)
	}
	return screen, nil
}

// swayCommand returns the sway command applying plan. Enabled outputs are
// all placed at the origin.
func swayCommand(plan *display.SwitchPlan, resolution *display.Resolution) string {
	var commands []string
	for _, o := range plan.ToDisable {
		commands = append(commands, fmt.Sprintf("output %q disable", o.Name))
	}
	for _, o := range plan.ToEnable {
		cmd := fmt.Sprintf("output %q enable", o.Name)
		if resolution != nil {
			cmd += " mode " + resolution.String()
		}
		commands = append(commands, cmd+" pos 0 0")
	}
	return strings.Join(commands, ";")
}

func (c *swayController) SwitchOutputs(ctx context.Context, screen *display.Screen, plan *display.SwitchPlan,
	resolution *display.Resolution) error {
	command := swayCommand(plan, resolution)
	if command == "" {
		return nil
	}
	logger.Debug("sway command:", command)
	replies, err := c.client.RunCommand(ctx, command)
	if err != nil {
		return xerrors.Errorf("run sway command %q: %w", command, err)
	}
	for _, reply := range replies {
		if !reply.Success {
			return xerrors.Errorf("sway command %q failed: %s", command, reply.Error)
		}
	}
	return nil
}
