// SPDX-FileCopyrightText: 2023 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

package display

import (
	"golang.org/x/xerrors"
)

// IsAdmissible reports whether a mode may be used. Double scan modes are
// rejected unless the monitor itself prefers them.
func IsAdmissible(mode *ModeInfo, preferred bool) bool {
	return preferred || !mode.DoubleScan()
}

type modeCandidate struct {
	mode      *ModeInfo
	preferred bool
}

func boolRank(b bool) int {
	if b {
		return 1
	}
	return 0
}

// betterForResolution orders candidates of the same resolution by
// (preferred, refresh rate).
func betterForResolution(a, b modeCandidate) bool {
	if a.preferred != b.preferred {
		return boolRank(a.preferred) > boolRank(b.preferred)
	}
	return a.mode.RefreshRate() > b.mode.RefreshRate()
}

// betterOverall orders candidates by (preferred, area, refresh rate).
func betterOverall(a, b modeCandidate) bool {
	if a.preferred != b.preferred {
		return boolRank(a.preferred) > boolRank(b.preferred)
	}
	aArea, bArea := a.mode.Resolution().Area(), b.mode.Resolution().Area()
	if aArea != bArea {
		return aArea > bArea
	}
	return a.mode.RefreshRate() > b.mode.RefreshRate()
}

func pickCandidate(candidates []modeCandidate, match func(c modeCandidate) bool,
	better func(a, b modeCandidate) bool) *ModeInfo {
	var best *modeCandidate
	for i := range candidates {
		c := candidates[i]
		if !match(c) {
			continue
		}
		if best == nil || better(c, *best) {
			best = &candidates[i]
		}
	}
	if best == nil {
		return nil
	}
	return best.mode
}

// ChooseMode picks the mode to drive output with. If resolution is not nil
// and the output has an admissible mode of that size, the best of those is
// used; otherwise the best admissible mode overall.
func ChooseMode(output *OutputResource, modes map[uint32]*ModeInfo, resolution *Resolution) (*ModeInfo, error) {
	candidates := make([]modeCandidate, 0, len(output.Modes))
	for i, id := range output.Modes {
		mode, ok := modes[id]
		if !ok {
			return nil, xerrors.Errorf("output %s references unknown mode %d: %w", output.Name, id, ErrInconsistent)
		}
		preferred := i < output.NumPreferred
		if !IsAdmissible(mode, preferred) {
			continue
		}
		candidates = append(candidates, modeCandidate{mode: mode, preferred: preferred})
	}

	if resolution != nil {
		mode := pickCandidate(candidates, func(c modeCandidate) bool {
			return c.mode.Resolution() == *resolution
		}, betterForResolution)
		if mode != nil {
			return mode, nil
		}
		logger.Debugf("output %s has no admissible mode %v", output.Name, *resolution)
	}

	mode := pickCandidate(candidates, func(modeCandidate) bool {
		return true
	}, betterOverall)
	if mode == nil {
		return nil, xerrors.Errorf("output %s: %w", output.Name, ErrNoUsableMode)
	}
	return mode, nil
}
