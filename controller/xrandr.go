// SPDX-FileCopyrightText: 2023 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

package controller

import (
	"bytes"
	"context"
	"os/exec"
	"strings"
	"time"

	"github.com/linuxdeepin/switch-display/display"
	"golang.org/x/xerrors"
)

const (
	xrandrCmd     = "xrandr"
	xrandrTimeout = 5 * time.Second
)

type commandRunner interface {
	// Run returns the standard output of the command.
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	logger.Debug("Command:", name, strings.Join(args, " "))
	c := exec.CommandContext(ctx, name, args...)
	var outBuf, errBuf bytes.Buffer
	c.Stdout = &outBuf
	c.Stderr = &errBuf
	err := c.Run()
	if err != nil {
		return nil, xerrors.Errorf("%s: %w, stdErr: %s", name, err, bytes.TrimSpace(errBuf.Bytes()))
	}
	return outBuf.Bytes(), nil
}

type xrandrController struct {
	classifier *display.Classifier
	runner     commandRunner
}

func newXrandrController(classifier *display.Classifier, runner commandRunner) *xrandrController {
	return &xrandrController{
		classifier: classifier,
		runner:     runner,
	}
}

func (c *xrandrController) Name() string {
	return KindXrandr.String()
}

func (c *xrandrController) Close() error {
	return nil
}

func (c *xrandrController) run(ctx context.Context, args ...string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, xrandrTimeout)
	defer cancel()
	return c.runner.Run(ctx, xrandrCmd, args...)
}

func (c *xrandrController) GetOutputs(ctx context.Context) (*display.Screen, error) {
	data, err := c.run(ctx)
	if err != nil {
		return nil, err
	}
	return parseXrandrOutput(c.classifier, data)
}

func modeArgs(resolution *display.Resolution) []string {
	if resolution == nil {
		return []string{"--auto"}
	}
	return []string{"--mode", resolution.String()}
}

// xrandrCommands returns the argument lists to apply plan, one xrandr run
// each. Outputs are switched off first; the first output to enable is the
// reference the others clone.
func xrandrCommands(plan *display.SwitchPlan, resolution *display.Resolution) [][]string {
	var commands [][]string
	for _, o := range plan.ToDisable {
		commands = append(commands, []string{"--output", o.Name, "--off"})
	}
	if len(plan.ToEnable) == 0 {
		return commands
	}

	first := plan.ToEnable[0]
	commands = append(commands, append([]string{"--output", first.Name}, modeArgs(resolution)...))
	for _, o := range plan.ToEnable[1:] {
		args := append([]string{"--output", o.Name}, modeArgs(resolution)...)
		args = append(args, "--same-as", first.Name)
		commands = append(commands, args)
	}
	return commands
}

func (c *xrandrController) SwitchOutputs(ctx context.Context, screen *display.Screen, plan *display.SwitchPlan,
	resolution *display.Resolution) error {
	for _, args := range xrandrCommands(plan, resolution) {
		_, err := c.run(ctx, args...)
		if err != nil {
			return err
		}
	}
	return nil
}
