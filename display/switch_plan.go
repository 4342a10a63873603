// SPDX-FileCopyrightText: 2023 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

package display

// SwitchPlan lists the outputs to turn off and the outputs to drive. Both
// hold pointers into the Screen the plan was built from.
type SwitchPlan struct {
	ToDisable []*Output
	ToEnable  []*Output
}

func (p *SwitchPlan) Empty() bool {
	return len(p.ToDisable) == 0 && len(p.ToEnable) == 0
}

func outputNames(outputs []*Output) []string {
	names := make([]string, 0, len(outputs))
	for _, o := range outputs {
		names = append(names, o.Name)
	}
	return names
}

func (p *SwitchPlan) DisableNames() []string {
	return outputNames(p.ToDisable)
}

func (p *SwitchPlan) EnableNames() []string {
	return outputNames(p.ToEnable)
}

func filterOutputs(outputs []*Output, fn func(o *Output) bool) []*Output {
	var result []*Output
	for _, o := range outputs {
		if fn(o) {
			result = append(result, o)
		}
	}
	return result
}

func anyOutput(outputs []*Output, fn func(o *Output) bool) bool {
	for _, o := range outputs {
		if fn(o) {
			return true
		}
	}
	return false
}

// BuildSwitchPlan applies the dock policy to a snapshot.
//
// With the internal panel on and an external monitor newly plugged in, both
// are driven (mirrored). Once an external monitor is on, it takes over and the
// internal panel is turned off. With nothing external connected the internal
// panel is driven. Disconnected outputs that are still enabled are always
// turned off.
func BuildSwitchPlan(screen *Screen) *SwitchPlan {
	outputs := screen.Outputs

	internalOn := anyOutput(outputs, func(o *Output) bool {
		return o.isInternal() && o.Connected && o.Enabled
	})
	externalOn := anyOutput(outputs, func(o *Output) bool {
		return o.isExternal() && o.Connected && o.Enabled
	})
	externalConnected := anyOutput(outputs, func(o *Output) bool {
		return o.isExternal() && o.Connected
	})

	staleOrInternal := func(o *Output) bool {
		return o.Enabled && (!o.Connected || o.isInternal())
	}
	stale := func(o *Output) bool {
		return o.Enabled && !o.Connected
	}
	connectedExternal := func(o *Output) bool {
		return o.Connected && o.isExternal()
	}

	var plan SwitchPlan
	switch {
	case internalOn && externalOn:
		logger.Debug("internal and external outputs on, external takes over")
		plan.ToDisable = filterOutputs(outputs, staleOrInternal)
		plan.ToEnable = filterOutputs(outputs, connectedExternal)

	case internalOn:
		logger.Debug("internal output on, drive every connected output")
		plan.ToDisable = filterOutputs(outputs, stale)
		plan.ToEnable = filterOutputs(outputs, func(o *Output) bool {
			return o.Connected
		})

	case externalConnected:
		logger.Debug("internal output off, external connected")
		plan.ToDisable = filterOutputs(outputs, staleOrInternal)
		plan.ToEnable = filterOutputs(outputs, connectedExternal)

	default:
		logger.Debug("no external output connected, fall back to internal")
		plan.ToDisable = filterOutputs(outputs, stale)
		plan.ToEnable = filterOutputs(outputs, func(o *Output) bool {
			return o.Connected && o.isInternal()
		})
	}
	return &plan
}
