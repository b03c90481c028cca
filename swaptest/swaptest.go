package swaptest

import (
	"fmt"

	"github.com/oqtopus-team/oqtopus-engine/progcheck/core"
	"go.uber.org/zap"
)

// Append adds a SWAP test over the paired qubits of array1 and array2, controlled
// by ctrl: H on ctrl, one controlled swap per pair, H on ctrl.
func Append(p *core.Program, ctrl int, array1, array2 []int) error {
	if len(array1) != len(array2) {
		return core.NewValidationError("swap test arrays have different lengths %d and %d", len(array1), len(array2))
	}
	scratch := core.NewProgram(p.QubitCount, p.CbitCount)
	if err := scratch.Gate(core.GateH, []int{ctrl}); err != nil {
		return err
	}
	for i := range array1 {
		if err := scratch.Gate(core.GateCSW, []int{ctrl, array1[i], array2[i]}); err != nil {
			return err
		}
	}
	if err := scratch.Gate(core.GateH, []int{ctrl}); err != nil {
		return err
	}
	_, err := core.Compose(p, scratch, core.NoRemap, core.NoRemap, false)
	return err
}

// Build returns a copy of gen extended by one control qubit and one cbit, with the
// SWAP test appended and the control measured into the new cbit.
func Build(gen *core.Program, array1, array2 []int) (*core.Program, error) {
	if gen == nil {
		return nil, core.NewValidationError("generator program is nil")
	}
	ctrl, cbit := gen.QubitCount, gen.CbitCount
	p := core.NewProgram(ctrl+1, cbit+1)
	if _, err := core.Compose(p, gen, core.NoRemap, core.NoRemap, false); err != nil {
		return nil, err
	}
	if err := Append(p, ctrl, array1, array2); err != nil {
		return nil, err
	}
	if err := p.Measure([]int{ctrl}, []int{cbit}); err != nil {
		return nil, err
	}
	return p, nil
}

// ones reads the number of shots that measured the control as 1. The control
// lands in the last cbit of a program made by Build.
func ones(counts core.Counts, reverse bool) (int, error) {
	last, err := counts.LastBits(1, reverse)
	if err != nil {
		return 0, err
	}
	return int(last.Get("1")), nil
}

// EstimateOverlapCount runs the SWAP test of gen for repeats shots and returns how
// many measured the control as 1. With states ρ1 and ρ2 on the two arrays the
// expected fraction is (1 - Tr(ρ1ρ2))/2.
func EstimateOverlapCount(exec core.Executor, gen *core.Program, array1, array2 []int, repeats int) (int, error) {
	p, err := Build(gen, array1, array2)
	if err != nil {
		return 0, err
	}
	counts := exec.Execute(p, repeats)
	n, err := ones(counts, exec.ReverseOutput())
	if err != nil {
		return 0, err
	}
	zap.L().Debug(fmt.Sprintf("swap test observed %d ones in %d shots", n, repeats))
	return n, nil
}

// CheckTraceEqualsOne runs the SWAP test of gen one shot at a time, up to repeats
// times, and returns false as soon as the control is measured as 1.
func CheckTraceEqualsOne(exec core.Executor, gen *core.Program, array1, array2 []int, repeats int) (bool, error) {
	p, err := Build(gen, array1, array2)
	if err != nil {
		return false, err
	}
	for i := 0; i < repeats; i++ {
		n, err := ones(exec.Execute(p, 1), exec.ReverseOutput())
		if err != nil {
			return false, err
		}
		if n > 0 {
			zap.L().Debug(fmt.Sprintf("swap test observed 1 at trial %d", i))
			return false, nil
		}
	}
	return true, nil
}
