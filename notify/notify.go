// SPDX-FileCopyrightText: 2023 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package notify posts desktop notifications over the session bus.
package notify

import (
	"github.com/godbus/dbus/v5"
	"github.com/linuxdeepin/go-lib/log"
	"golang.org/x/xerrors"
)

var logger = log.NewLogger("switch-display/notify")

func SetLogLevel(level log.Priority) {
	logger.SetLogLevel(level)
}

const (
	dbusServiceName = "org.freedesktop.Notifications"
	dbusPath        = "/org/freedesktop/Notifications"
	dbusInterface   = dbusServiceName

	appName = "switch-display"
	appIcon = "preferences-display"
	// milliseconds, -1 lets the server decide
	expireTimeout int32 = -1
)

type caller interface {
	Call(method string, flags dbus.Flags, args ...interface{}) *dbus.Call
}

// Send shows a notification and returns its id.
func Send(summary, body string) (uint32, error) {
	conn, err := dbus.SessionBus()
	if err != nil {
		return 0, xerrors.Errorf("failed to get session bus: %w", err)
	}
	obj := conn.Object(dbusServiceName, dbusPath)
	return send(obj, summary, body)
}

func send(obj caller, summary, body string) (uint32, error) {
	var id uint32
	err := obj.Call(dbusInterface+".Notify", 0,
		appName, uint32(0), appIcon, summary, body,
		[]string{}, map[string]dbus.Variant{}, expireTimeout).Store(&id)
	if err != nil {
		return 0, xerrors.Errorf("failed to notify: %w", err)
	}
	logger.Debugf("notification %d: %s", id, summary)
	return id, nil
}
