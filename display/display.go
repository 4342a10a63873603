// SPDX-FileCopyrightText: 2023 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package display decides which outputs should be driven after a dock or
// undock, which resolution they share, and how they map onto crtcs.
package display

import (
	"github.com/linuxdeepin/go-lib/log"
)

var logger = log.NewLogger("switch-display/display")

func SetLogLevel(level log.Priority) {
	logger.SetLogLevel(level)
}
