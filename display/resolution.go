// SPDX-FileCopyrightText: 2023 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

package display

func getResolutionSet(modes []Mode, minRefreshRate uint32) map[Resolution]struct{} {
	result := make(map[Resolution]struct{}, len(modes))
	for _, mode := range modes {
		if mode.RefreshRate < minRefreshRate {
			continue
		}
		result[mode.Resolution] = struct{}{}
	}
	return result
}

// getMaxAreaResolution returns the resolution with the biggest area; among
// equal areas the wider one wins so the result does not depend on map order.
func getMaxAreaResolution(set map[Resolution]struct{}) Resolution {
	var best Resolution
	found := false
	for r := range set {
		if !found || r.Area() > best.Area() ||
			(r.Area() == best.Area() && r.Width > best.Width) {
			best = r
			found = true
		}
	}
	return best
}

// ChooseBestResolution returns the largest resolution every output supports
// with at least one mode of minRefreshRate millihertz or more. A zero
// minRefreshRate accepts every mode. ok is false if outputs is empty or the
// outputs share no resolution.
func ChooseBestResolution(outputs []*Output, minRefreshRate uint32) (r Resolution, ok bool) {
	if len(outputs) == 0 {
		return Resolution{}, false
	}

	common := getResolutionSet(outputs[0].Modes, minRefreshRate)
	for _, output := range outputs[1:] {
		set := getResolutionSet(output.Modes, minRefreshRate)
		for r := range common {
			if _, ok := set[r]; !ok {
				delete(common, r)
			}
		}
	}

	if len(common) == 0 {
		logger.Debugf("outputs %v share no resolution", outputNames(outputs))
		return Resolution{}, false
	}
	return getMaxAreaResolution(common), true
}
