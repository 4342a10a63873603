// SPDX-FileCopyrightText: 2023 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

package display

import (
	"sort"

	"golang.org/x/xerrors"
)

func findFreeCrtc(output *OutputResource, configs map[Crtc]*CrtcConfig) Crtc {
	for _, crtc := range output.Crtcs {
		cfg, ok := configs[crtc]
		if ok && len(cfg.Outputs) == 0 {
			return crtc
		}
	}
	return 0
}

// Allocation is the crtc state after a plan is applied. Outputs are copies
// of the snapshot outputs with Crtc rebound.
type Allocation struct {
	Crtcs   map[Crtc]*CrtcConfig
	Outputs map[uint32]*OutputResource
}

func (r *Resources) cloneOutputs() map[uint32]*OutputResource {
	result := make(map[uint32]*OutputResource, len(r.Outputs))
	for id, output := range r.Outputs {
		cp := *output
		result[id] = &cp
	}
	return result
}

// AllocateCrtcs computes the crtc configs after applying plan. Outputs to
// disable are unbound from their crtc first, so the crtcs they free can be
// reused by outputs to enable. Every enabled crtc is placed at the origin
// without rotation; outputs sharing a crtc are clones. res is not modified.
func AllocateCrtcs(res *Resources, plan *SwitchPlan, resolution *Resolution) (*Allocation, error) {
	alloc := &Allocation{
		Crtcs:   res.cloneCrtcs(),
		Outputs: res.cloneOutputs(),
	}
	configs := alloc.Crtcs

	for _, o := range plan.ToDisable {
		output, err := alloc.outputOf(o)
		if err != nil {
			return nil, err
		}
		if output.Crtc == 0 {
			return nil, xerrors.Errorf("output %s to disable has no crtc: %w", o.Name, ErrInconsistent)
		}
		cfg, ok := configs[output.Crtc]
		if !ok || !cfg.hasOutput(output.ID) {
			return nil, xerrors.Errorf("output %s not driven by its crtc %d: %w", o.Name, output.Crtc, ErrInconsistent)
		}
		cfg.removeOutput(output.ID)
		output.Crtc = 0
		if len(cfg.Outputs) == 0 {
			logger.Debugf("crtc %d released by %s", cfg.ID, o.Name)
			cfg.Mode = nil
			cfg.X, cfg.Y = 0, 0
			cfg.Rotation = RotationNone
		}
	}

	for _, o := range plan.ToEnable {
		output, err := alloc.outputOf(o)
		if err != nil {
			return nil, err
		}

		var cfg *CrtcConfig
		if output.Crtc != 0 {
			var ok bool
			cfg, ok = configs[output.Crtc]
			if !ok || !cfg.hasOutput(output.ID) {
				return nil, xerrors.Errorf("output %s not driven by its crtc %d: %w", o.Name, output.Crtc, ErrInconsistent)
			}
		} else {
			crtc := findFreeCrtc(output, configs)
			if crtc == 0 {
				return nil, xerrors.Errorf("output %s: %w", o.Name, ErrNoFreeCrtc)
			}
			logger.Debugf("crtc %d assigned to %s", crtc, o.Name)
			cfg = configs[crtc]
			cfg.Outputs = append(cfg.Outputs, output.ID)
			output.Crtc = crtc
		}

		mode, err := ChooseMode(output, res.Modes, resolution)
		if err != nil {
			return nil, err
		}
		cfg.X, cfg.Y = 0, 0
		cfg.Rotation = RotationNone
		cfg.Mode = mode
	}

	return alloc, nil
}

func (a *Allocation) outputOf(o *Output) (*OutputResource, error) {
	res, ok := a.Outputs[o.ID]
	if !ok {
		return nil, xerrors.Errorf("output %s (%d) missing from screen resources: %w", o.Name, o.ID, ErrInconsistent)
	}
	return res, nil
}

// VerifyCrtcConfigs checks that configs and the output bindings agree: a
// crtc has a mode iff it drives outputs, each output is driven by at most one
// crtc which it can use, and an output is bound to a crtc iff that crtc lists
// it.
func VerifyCrtcConfigs(configs map[Crtc]*CrtcConfig, outputs map[uint32]*OutputResource) error {
	drivenBy := make(map[uint32]Crtc)
	for _, id := range SortedCrtcs(configs) {
		cfg := configs[id]
		if cfg.Idle() != (len(cfg.Outputs) == 0) {
			return xerrors.Errorf("crtc %d has mode %v and outputs %v: %w", id, cfg.Mode, cfg.Outputs, ErrInconsistent)
		}
		for _, o := range cfg.Outputs {
			output, ok := outputs[o]
			if !ok {
				return xerrors.Errorf("crtc %d drives unknown output %d: %w", id, o, ErrInconsistent)
			}
			if prev, dup := drivenBy[o]; dup {
				return xerrors.Errorf("output %s driven by crtcs %d and %d: %w", output.Name, prev, id, ErrInconsistent)
			}
			if !crtcSliceContains(output.Crtcs, id) {
				return xerrors.Errorf("crtc %d can not drive output %s: %w", id, output.Name, ErrInconsistent)
			}
			drivenBy[o] = id
		}
	}
	for _, id := range sortedOutputs(outputs) {
		output := outputs[id]
		crtc := drivenBy[id]
		if output.Crtc != crtc {
			return xerrors.Errorf("output %s bound to crtc %d but driven by crtc %d: %w",
				output.Name, output.Crtc, crtc, ErrInconsistent)
		}
	}
	return nil
}

// VerifyAllocation checks alloc against the snapshot it was computed from:
// the bindings are consistent, outputs to enable are driven, outputs to
// disable are not, and no output moved to another crtc.
func VerifyAllocation(res *Resources, plan *SwitchPlan, alloc *Allocation) error {
	err := VerifyCrtcConfigs(alloc.Crtcs, alloc.Outputs)
	if err != nil {
		return err
	}
	for _, o := range plan.ToEnable {
		output, err := alloc.outputOf(o)
		if err != nil {
			return err
		}
		if output.Crtc == 0 {
			return xerrors.Errorf("output %s to enable is not driven: %w", o.Name, ErrInconsistent)
		}
	}
	for _, o := range plan.ToDisable {
		output, err := alloc.outputOf(o)
		if err != nil {
			return err
		}
		if output.Crtc != 0 {
			return xerrors.Errorf("output %s to disable still driven by crtc %d: %w", o.Name, output.Crtc, ErrInconsistent)
		}
	}
	for _, id := range sortedOutputs(res.Outputs) {
		before := res.Outputs[id]
		after, ok := alloc.Outputs[id]
		if !ok {
			return xerrors.Errorf("output %s lost: %w", before.Name, ErrInconsistent)
		}
		if before.Crtc != 0 && after.Crtc != 0 && before.Crtc != after.Crtc {
			return xerrors.Errorf("output %s moved from crtc %d to %d: %w", before.Name, before.Crtc, after.Crtc, ErrInconsistent)
		}
	}
	return nil
}

func sortedOutputs(outputs map[uint32]*OutputResource) []uint32 {
	ids := make([]uint32, 0, len(outputs))
	for id := range outputs {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		return ids[i] < ids[j]
	})
	return ids
}

func crtcSliceContains(crtcs []Crtc, crtc Crtc) bool {
	for _, c := range crtcs {
		if c == crtc {
			return true
		}
	}
	return false
}
