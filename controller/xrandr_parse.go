// SPDX-FileCopyrightText: 2023 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

package controller

import (
	"bufio"
	"bytes"
	"regexp"
	"strconv"

	"github.com/linuxdeepin/switch-display/display"
	"golang.org/x/xerrors"
)

var (
	// eDP-1 connected primary 1920x1080+0+0 (normal left ...) 344mm x 194mm
	regOutputLine = regexp.MustCompile(`^(\S+) (connected|disconnected)(?: primary)?(?: (\d+x\d+\+\d+\+\d+))? `)
	// 1920x1080     60.02*+  60.01    59.97
	regModeLine = regexp.MustCompile(`^\s+(\d+x\d+)((?:\s+\d+\.\d{2}[ *][ +])+)$`)
	regFreq     = regexp.MustCompile(`(\d+)\.(\d{2})`)
)

func parseXrandrOutputLine(classifier *display.Classifier, line string) (*display.Output, error) {
	match := regOutputLine.FindStringSubmatch(line)
	if match == nil {
		return nil, nil
	}
	output, err := display.NewOutput(classifier, match[1], match[2] == "connected", match[3] != "")
	if err != nil {
		return nil, err
	}
	return output, nil
}

// parseXrandrModeLine returns one mode per refresh rate listed on line, nil
// for lines that are not plain mode lines.
func parseXrandrModeLine(line string) ([]display.Mode, error) {
	match := regModeLine.FindStringSubmatch(line)
	if match == nil {
		return nil, nil
	}
	resolution, err := display.ParseResolution(match[1])
	if err != nil {
		return nil, xerrors.Errorf("invalid mode line %q: %w", line, err)
	}

	var modes []display.Mode
	for _, freq := range regFreq.FindAllStringSubmatch(match[2], -1) {
		integer, err := strconv.ParseUint(freq[1], 10, 32)
		if err != nil {
			return nil, xerrors.Errorf("invalid refresh rate in %q: %w", line, err)
		}
		fraction, _ := strconv.ParseUint(freq[2], 10, 32)
		modes = append(modes, display.Mode{
			Resolution:  resolution,
			RefreshRate: uint32(integer*1000 + fraction*10),
		})
	}
	return modes, nil
}

// parseXrandrOutput parses the default output of xrandr. Lines that are
// neither output nor mode lines are skipped.
func parseXrandrOutput(classifier *display.Classifier, data []byte) (*display.Screen, error) {
	screen := &display.Screen{}
	var current *display.Output

	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := scanner.Text()
		output, err := parseXrandrOutputLine(classifier, line)
		if err != nil {
			return nil, err
		}
		if output != nil {
			current = output
			screen.Outputs = append(screen.Outputs, output)
			continue
		}
		if current == nil {
			continue
		}
		modes, err := parseXrandrModeLine(line)
		if err != nil {
			return nil, err
		}
		current.Modes = append(current.Modes, modes...)
	}
	if err := scanner.Err(); err != nil {
		return nil, xerrors.Errorf("read xrandr output: %w", err)
	}
	return screen, nil
}
