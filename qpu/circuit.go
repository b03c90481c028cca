package qpu

import (
	"fmt"

	"github.com/oqtopus-team/oqtopus-engine/progcheck/core"
	"go.uber.org/zap"
)

// validateProgram checks a program against what the device accepts.
func validateProgram(p *core.Program, shots int, ds *DeviceSetting) error {
	if p == nil {
		return fmt.Errorf("no input program")
	}
	if err := p.Validate(); err != nil {
		zap.L().Info(err.Error())
		return err
	}
	if shots <= 0 || shots > ds.MaxShots {
		return fmt.Errorf("shots(%d) must be in [1, %d]", shots, ds.MaxShots)
	}
	if err := checkResource(p, ds.MaxQubits); err != nil {
		zap.L().Info(err.Error())
		return err
	}
	if err := validateGates(p, ds.GateSupport); err != nil {
		zap.L().Info(err.Error())
		return err
	}
	return nil
}

func validateGates(p *core.Program, gs *GateSupport) error {
	if gs == nil {
		return nil
	}
	if gs.AllowList != nil && gs.AllowList.Enabled {
		if err := filterList(p, gs.AllowList.Gates, false); err != nil {
			zap.L().Info(fmt.Sprintf("[AllowList Error] %s", err.Error()))
			return err
		}
	}
	if gs.DenyList != nil && gs.DenyList.Enabled {
		if err := filterList(p, gs.DenyList.Gates, true); err != nil {
			zap.L().Info(fmt.Sprintf("[DenyList Error] %s", err.Error()))
			return err
		}
	}
	return nil
}

// filterList rejects a gate listed in a deny list, or missing from an allow list.
// Listed names may be aliases.
func filterList(p *core.Program, list []string, returnIfFiltered bool) error {
	listed := make(map[core.GateKind]struct{}, len(list))
	for _, name := range list {
		k, err := core.ParseGateKind(name)
		if err != nil {
			return err
		}
		listed[k] = struct{}{}
	}
	for _, op := range p.Operations {
		_, ok := listed[op.Kind]
		if ok == returnIfFiltered {
			return fmt.Errorf("gate:%s is not supported", op.Kind)
		}
	}
	return nil
}

func checkResource(p *core.Program, qubitNumber int) error {
	if p.QubitCount > qubitNumber {
		return fmt.Errorf("Too many qubits in the program. We only have %d qubits.", qubitNumber)
	}
	return nil
}
