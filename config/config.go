// SPDX-FileCopyrightText: 2023 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package config loads the switch-display settings from the keyfile and
// the environment.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/linuxdeepin/go-lib/keyfile"
	"github.com/linuxdeepin/go-lib/log"
	"github.com/linuxdeepin/go-lib/strv"
	"github.com/linuxdeepin/go-lib/xdg/basedir"
	"github.com/linuxdeepin/switch-display/display"
	"golang.org/x/xerrors"
)

var logger = log.NewLogger("switch-display/config")

func SetLogLevel(level log.Priority) {
	logger.SetLogLevel(level)
}

const (
	SystemConfigFile = "/etc/deepin/switch-display.conf"

	sectionGeneral  = "General"
	sectionLocation = "Location"

	keyController     = "Controller"
	keyMinRefreshRate = "MinRefreshRate"
	keyNotify         = "Notify"
	keyInternal       = "Internal"
	keyExternal       = "External"

	EnvController     = "SWITCH_DISPLAY_CONTROLLER"
	EnvMinRefreshRate = "SWITCH_DISPLAY_MIN_REFRESH_RATE"
	EnvNotify         = "SWITCH_DISPLAY_NOTIFY"

	DefaultController = "randr"
)

type Config struct {
	Controller string
	// MinRefreshRate in millihertz, 0 for no limit.
	MinRefreshRate uint32
	Notify         bool
	// connector name prefixes added to the default classifier
	InternalPrefixes strv.Strv
	ExternalPrefixes strv.Strv
}

func Default() *Config {
	return &Config{
		Controller: DefaultController,
	}
}

func UserConfigFile() string {
	return filepath.Join(basedir.GetUserConfigDir(),
		"deepin", "switch-display", "switch-display.conf")
}

// Load returns the defaults overridden by the config file. An explicit
// filename must exist; otherwise the user file is tried, then the system
// file, and having neither is fine.
func Load(filename string) (*Config, error) {
	cfg := Default()
	if filename != "" {
		err := cfg.loadFile(filename)
		if err != nil {
			return nil, err
		}
		return cfg, nil
	}

	for _, f := range []string{UserConfigFile(), SystemConfigFile} {
		_, err := os.Stat(f)
		if os.IsNotExist(err) {
			continue
		}
		err = cfg.loadFile(f)
		if err != nil {
			return nil, err
		}
		return cfg, nil
	}
	logger.Debug("no config file, use defaults")
	return cfg, nil
}

func (c *Config) loadFile(filename string) error {
	kf := keyfile.NewKeyFile()
	err := kf.LoadFromFile(filename)
	if err != nil {
		return xerrors.Errorf("load config %s: %w", filename, err)
	}
	logger.Debug("load config", filename)

	general, err := kf.GetSection(sectionGeneral)
	if err == nil {
		err = c.set(general, keyController, keyMinRefreshRate, keyNotify)
		if err != nil {
			return xerrors.Errorf("%s: %w", filename, err)
		}
	}

	location, err := kf.GetSection(sectionLocation)
	if err != nil {
		return nil
	}
	for key, prefixes := range map[string]*strv.Strv{
		keyInternal: &c.InternalPrefixes,
		keyExternal: &c.ExternalPrefixes,
	} {
		if _, ok := location[key]; !ok {
			continue
		}
		list, err := kf.GetStringList(sectionLocation, key)
		if err != nil {
			return xerrors.Errorf("%s: invalid %s: %w", filename, key, err)
		}
		*prefixes = append(*prefixes, cleanList(list)...)
	}
	return nil
}

// ApplyEnv overrides settings from environment variables that are set.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	values := make(map[string]string)
	for env, key := range map[string]string{
		EnvController:     keyController,
		EnvMinRefreshRate: keyMinRefreshRate,
		EnvNotify:         keyNotify,
	} {
		if v := getenv(env); v != "" {
			values[key] = v
		}
	}
	return c.set(values, keyController, keyMinRefreshRate, keyNotify)
}

func (c *Config) set(values map[string]string, keys ...string) error {
	for _, key := range keys {
		v, ok := values[key]
		if !ok {
			continue
		}
		v = strings.TrimSpace(v)
		switch key {
		case keyController:
			if v == "" {
				return xerrors.Errorf("invalid %s %q", key, v)
			}
			c.Controller = v
		case keyMinRefreshRate:
			rate, err := strconv.ParseUint(v, 10, 32)
			if err != nil {
				return xerrors.Errorf("invalid %s %q: %w", key, v, err)
			}
			c.MinRefreshRate = uint32(rate)
		case keyNotify:
			notify, err := strconv.ParseBool(v)
			if err != nil {
				return xerrors.Errorf("invalid %s %q: %w", key, v, err)
			}
			c.Notify = notify
		}
	}
	return nil
}

func cleanList(list []string) strv.Strv {
	items := make(strv.Strv, len(list))
	for i, item := range list {
		items[i] = strings.TrimSpace(item)
	}
	return items.FilterEmpty()
}

// Classifier returns the default classifier extended with the configured
// prefixes.
func (c *Config) Classifier() (*display.Classifier, error) {
	classifier := display.DefaultClassifier()
	for _, prefix := range c.InternalPrefixes {
		err := classifier.Register(prefix, display.LocationInternal)
		if err != nil {
			return nil, err
		}
	}
	for _, prefix := range c.ExternalPrefixes {
		err := classifier.Register(prefix, display.LocationExternal)
		if err != nil {
			return nil, err
		}
	}
	return classifier, nil
}
