// SPDX-FileCopyrightText: 2023 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"context"
	"flag"
	"fmt"
	"math"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/davecgh/go-spew/spew"
	"github.com/linuxdeepin/go-lib/log"
	"github.com/linuxdeepin/switch-display/config"
	"github.com/linuxdeepin/switch-display/controller"
	"github.com/linuxdeepin/switch-display/display"
	"github.com/linuxdeepin/switch-display/notify"
	"golang.org/x/xerrors"
)

var logger = log.NewLogger("switch-display")

type options struct {
	controller     string
	minRefreshRate uint
	notify         bool
	dryRun         bool
	debug          bool
	config         string
}

func (o *options) register(fs *flag.FlagSet) {
	fs.StringVar(&o.controller, "controller", config.DefaultController, "display backend: randr, xrandr or sway")
	fs.UintVar(&o.minRefreshRate, "min-refresh-rate", 0, "lowest refresh rate in mHz a shared resolution must support")
	fs.BoolVar(&o.notify, "notify", false, "show a desktop notification after switching")
	fs.BoolVar(&o.dryRun, "dry-run", false, "compute and log the plan, change nothing")
	fs.BoolVar(&o.debug, "d", false, "debug")
	fs.StringVar(&o.config, "config", "", "config file")
}

func doSetLogLevel(level log.Priority) {
	logger.SetLogLevel(level)
	display.SetLogLevel(level)
	controller.SetLogLevel(level)
	config.SetLogLevel(level)
	notify.SetLogLevel(level)
}

// loadConfig merges the config file, the environment and the flags set on
// the command line, in increasing priority.
func loadConfig(fs *flag.FlagSet, opts *options, getenv func(string) string) (*config.Config, error) {
	cfg, err := config.Load(opts.config)
	if err != nil {
		return nil, err
	}
	err = cfg.ApplyEnv(getenv)
	if err != nil {
		return nil, err
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "controller":
			cfg.Controller = opts.controller
		case "min-refresh-rate":
			if uint64(opts.minRefreshRate) > math.MaxUint32 {
				err = xerrors.Errorf("invalid min-refresh-rate %d", opts.minRefreshRate)
				return
			}
			cfg.MinRefreshRate = uint32(opts.minRefreshRate)
		case "notify":
			cfg.Notify = opts.notify
		}
	})
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

func notificationBody(plan *display.SwitchPlan, resolution *display.Resolution) string {
	body := strings.Join(plan.EnableNames(), ", ")
	if resolution != nil {
		body += " " + resolution.String()
	}
	return body
}

type result struct {
	plan       *display.SwitchPlan
	resolution *display.Resolution
}

func switchDisplay(ctx context.Context, c controller.Controller, cfg *config.Config, dryRun bool) (*result, error) {
	screen, err := c.GetOutputs(ctx)
	if err != nil {
		return nil, xerrors.Errorf("failed to get outputs: %w", err)
	}
	if logger.GetLogLevel() == log.LevelDebug {
		logger.Debug("outputs:", spew.Sdump(screen.Outputs))
	}

	plan := display.BuildSwitchPlan(screen)
	if plan.Empty() {
		logger.Info("nothing to switch")
		return &result{plan: plan}, nil
	}
	logger.Infof("disable %v, enable %v", plan.DisableNames(), plan.EnableNames())

	var resolution *display.Resolution
	r, ok := display.ChooseBestResolution(plan.ToEnable, cfg.MinRefreshRate)
	if ok {
		resolution = &r
		logger.Info("common resolution", r)
	} else {
		logger.Info("no common resolution, every output uses its own best mode")
	}

	if dryRun {
		logger.Info("dry run, not applied")
		return &result{plan: plan, resolution: resolution}, nil
	}

	err = c.SwitchOutputs(ctx, screen, plan, resolution)
	if err != nil {
		return nil, xerrors.Errorf("failed to switch outputs with %s: %w", c.Name(), err)
	}
	return &result{plan: plan, resolution: resolution}, nil
}

func main() {
	var opts options
	opts.register(flag.CommandLine)
	flag.Parse()
	if opts.debug {
		doSetLogLevel(log.LevelDebug)
	}

	cfg, err := loadConfig(flag.CommandLine, &opts, os.Getenv)
	if err != nil {
		logger.Fatal("failed to load config:", err)
	}
	if opts.debug {
		logger.Debug("config:", spew.Sdump(cfg))
	}

	kind, err := controller.ParseKind(cfg.Controller)
	if err != nil {
		logger.Fatal(err)
	}
	classifier, err := cfg.Classifier()
	if err != nil {
		logger.Fatal("invalid location prefixes:", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c, err := controller.New(kind, classifier)
	if err != nil {
		logger.Fatalf("failed to init %v controller: %v", kind, err)
	}

	res, err := switchDisplay(ctx, c, cfg, opts.dryRun)
	closeErr := c.Close()
	if closeErr != nil {
		logger.Warning("failed to close controller:", closeErr)
	}
	if err != nil {
		logger.Fatal(err)
	}

	if res.plan.Empty() {
		return
	}
	if opts.dryRun {
		fmt.Println(notificationBody(res.plan, res.resolution))
		return
	}
	if cfg.Notify {
		_, err = notify.Send("Display switched", notificationBody(res.plan, res.resolution))
		if err != nil {
			logger.Warning(err)
		}
	}
}
