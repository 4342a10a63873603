// SPDX-FileCopyrightText: 2023 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

package controller

import (
	"strings"
)

const (
	edidBlockSize       = 128
	edidDescriptorStart = 54
	edidDescriptorSize  = 18
	edidDescriptorCount = 4
	edidTagMonitorName  = 0xfc
)

// edidManufacturer decodes the three letter PNP id packed in bytes 8 and 9.
func edidManufacturer(edid []byte) string {
	if len(edid) < 16 {
		return ""
	}
	v := uint16(edid[8])<<8 | uint16(edid[9])
	var id [3]byte
	for i := range id {
		c := byte((v>>(10-5*uint(i)))&31) + 'A' - 1
		if c < 'A' || c > 'Z' {
			return ""
		}
		id[i] = c
	}
	return string(id[:])
}

// edidMonitorName returns the text of the monitor name descriptor.
func edidMonitorName(edid []byte) string {
	if len(edid) < edidBlockSize {
		return ""
	}
	for i := 0; i < edidDescriptorCount; i++ {
		d := edid[edidDescriptorStart+i*edidDescriptorSize : edidDescriptorStart+(i+1)*edidDescriptorSize]
		// display descriptors start with a zero pixel clock
		if d[0] != 0 || d[1] != 0 || d[3] != edidTagMonitorName {
			continue
		}
		text := d[5:]
		if end := strings.IndexByte(string(text), '\n'); end >= 0 {
			text = text[:end]
		}
		return strings.TrimSpace(string(text))
	}
	return ""
}

// monitorIdentity describes the monitor behind an output, "" if the EDID
// does not tell.
func monitorIdentity(edid []byte) string {
	manufacturer := edidManufacturer(edid)
	if manufacturer == "" {
		return ""
	}
	if name := edidMonitorName(edid); name != "" {
		return manufacturer + " " + name
	}
	return manufacturer
}
