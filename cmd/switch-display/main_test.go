// SPDX-FileCopyrightText: 2023 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/linuxdeepin/go-lib/log"
	"github.com/linuxdeepin/switch-display/config"
	"github.com/linuxdeepin/switch-display/display"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_doSetLogLevel(t *testing.T) {
	doSetLogLevel(log.LevelDebug)
	assert.Equal(t, log.LevelDebug, logger.GetLogLevel())
	doSetLogLevel(log.LevelInfo)
	assert.Equal(t, log.LevelInfo, logger.GetLogLevel())
}

func parseFlags(t *testing.T, args ...string) (*flag.FlagSet, *options) {
	fs := flag.NewFlagSet("switch-display", flag.ContinueOnError)
	var opts options
	opts.register(fs)
	require.NoError(t, fs.Parse(args))
	return fs, &opts
}

func TestLoadConfig(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "switch-display.conf")
	err := os.WriteFile(filename, []byte("[General]\nController=xrandr\nMinRefreshRate=30000\nNotify=true\n"), 0644)
	require.NoError(t, err)
	env := map[string]string{}
	getenv := func(key string) string { return env[key] }

	fs, opts := parseFlags(t, "-config", filename)
	cfg, err := loadConfig(fs, opts, getenv)
	require.NoError(t, err)
	assert.Equal(t, "xrandr", cfg.Controller)
	assert.Equal(t, uint32(30000), cfg.MinRefreshRate)
	assert.True(t, cfg.Notify)

	env[config.EnvMinRefreshRate] = "40000"
	env[config.EnvController] = "sway"
	fs, opts = parseFlags(t, "-config", filename)
	cfg, err = loadConfig(fs, opts, getenv)
	require.NoError(t, err)
	assert.Equal(t, "sway", cfg.Controller)
	assert.Equal(t, uint32(40000), cfg.MinRefreshRate)

	// flags win, unset flags keep their defaults out of the way
	fs, opts = parseFlags(t, "-config", filename, "-min-refresh-rate", "50000", "-notify=false")
	cfg, err = loadConfig(fs, opts, getenv)
	require.NoError(t, err)
	assert.Equal(t, "sway", cfg.Controller)
	assert.Equal(t, uint32(50000), cfg.MinRefreshRate)
	assert.False(t, cfg.Notify)

	env[config.EnvNotify] = "perhaps"
	fs, opts = parseFlags(t, "-config", filename)
	_, err = loadConfig(fs, opts, getenv)
	assert.Error(t, err)
}

type fakeController struct {
	screen    *display.Screen
	getErr    error
	switchErr error

	switched   bool
	plan       *display.SwitchPlan
	resolution *display.Resolution
}

func (f *fakeController) Name() string { return "fake" }

func (f *fakeController) GetOutputs(ctx context.Context) (*display.Screen, error) {
	return f.screen, f.getErr
}

func (f *fakeController) SwitchOutputs(ctx context.Context, screen *display.Screen, plan *display.SwitchPlan,
	resolution *display.Resolution) error {
	f.switched = true
	f.plan = plan
	f.resolution = resolution
	return f.switchErr
}

func (f *fakeController) Close() error { return nil }

func newTestScreen(t *testing.T, hdmiConnected bool) *display.Screen {
	classifier := display.DefaultClassifier()
	edp, err := display.NewOutput(classifier, "eDP-1", true, true)
	require.NoError(t, err)
	edp.Modes = []display.Mode{
		{Resolution: display.Resolution{Width: 1920, Height: 1080}, RefreshRate: 60000},
		{Resolution: display.Resolution{Width: 1280, Height: 720}, RefreshRate: 60000},
	}
	hdmi, err := display.NewOutput(classifier, "HDMI-1", hdmiConnected, false)
	require.NoError(t, err)
	hdmi.Modes = []display.Mode{
		{Resolution: display.Resolution{Width: 1280, Height: 720}, RefreshRate: 50000},
	}
	return &display.Screen{Outputs: []*display.Output{edp, hdmi}}
}

func TestSwitchDisplay(t *testing.T) {
	c := &fakeController{screen: newTestScreen(t, true)}
	res, err := switchDisplay(context.Background(), c, config.Default(), false)
	require.NoError(t, err)
	assert.True(t, c.switched)
	assert.Equal(t, []string{"eDP-1", "HDMI-1"}, c.plan.EnableNames())
	require.NotNil(t, c.resolution)
	assert.Equal(t, display.Resolution{Width: 1280, Height: 720}, *c.resolution)
	assert.Equal(t, "eDP-1, HDMI-1 1280x720", notificationBody(res.plan, res.resolution))
}

func TestSwitchDisplay_noCommonResolution(t *testing.T) {
	c := &fakeController{screen: newTestScreen(t, true)}
	cfg := config.Default()
	cfg.MinRefreshRate = 55000
	res, err := switchDisplay(context.Background(), c, cfg, false)
	require.NoError(t, err)
	assert.True(t, c.switched)
	assert.Nil(t, c.resolution)
	assert.Equal(t, "eDP-1, HDMI-1", notificationBody(res.plan, res.resolution))
}

func TestSwitchDisplay_nothingToDo(t *testing.T) {
	c := &fakeController{screen: newTestScreen(t, false)}
	res, err := switchDisplay(context.Background(), c, config.Default(), false)
	require.NoError(t, err)
	// eDP-1 is already on, the plan only keeps it enabled
	assert.Equal(t, []string{"eDP-1"}, res.plan.EnableNames())

	c = &fakeController{screen: &display.Screen{}}
	res, err = switchDisplay(context.Background(), c, config.Default(), false)
	require.NoError(t, err)
	assert.True(t, res.plan.Empty())
	assert.False(t, c.switched)
}

func TestSwitchDisplay_dryRun(t *testing.T) {
	c := &fakeController{screen: newTestScreen(t, true)}
	res, err := switchDisplay(context.Background(), c, config.Default(), true)
	require.NoError(t, err)
	assert.False(t, c.switched)
	assert.False(t, res.plan.Empty())
}

func TestSwitchDisplay_errors(t *testing.T) {
	getErr := errors.New("cannot open display")
	c := &fakeController{getErr: getErr}
	_, err := switchDisplay(context.Background(), c, config.Default(), false)
	assert.ErrorIs(t, err, getErr)

	switchErr := errors.New("bad match")
	c = &fakeController{screen: newTestScreen(t, true), switchErr: switchErr}
	_, err = switchDisplay(context.Background(), c, config.Default(), false)
	assert.ErrorIs(t, err, switchErr)
}
