package statepre

import (
	"github.com/oqtopus-team/oqtopus-engine/progcheck/core"
)

// Numbers wider than the qubit list lose their high bits.

// PrepareInt appends the gates creating the basis state |number> on qubits.
func PrepareInt(p *core.Program, number int, qubits []int, e Endian) error {
	return derive(p, qubits, e, false, intBuilder(number))
}

func UnprepareInt(p *core.Program, number int, qubits []int, e Endian) error {
	return derive(p, qubits, e, true, intBuilder(number))
}

// PreparePhasedComplement appends the gates creating |x> + e^{iφ}|~x>, where ~x is
// the bitwise negation of x over the qubit list.
func PreparePhasedComplement(p *core.Program, number int, phi float64, qubits []int, e Endian) error {
	return derive(p, qubits, e, false, phasedComplementBuilder(number, phi))
}

func UnpreparePhasedComplement(p *core.Program, number int, phi float64, qubits []int, e Endian) error {
	return derive(p, qubits, e, true, phasedComplementBuilder(number, phi))
}

// PreparePhasedPair appends the gates creating |x> + e^{iφ}|y>. Bits where x and y
// agree are set directly; the differing bits carry the superposition.
func PreparePhasedPair(p *core.Program, x, y int, phi float64, qubits []int, e Endian) error {
	return derive(p, qubits, e, false, phasedPairBuilder(x, y, phi))
}

func UnpreparePhasedPair(p *core.Program, x, y int, phi float64, qubits []int, e Endian) error {
	return derive(p, qubits, e, true, phasedPairBuilder(x, y, phi))
}

func checkIntTarget(qubits []int, numbers ...int) error {
	for _, n := range numbers {
		if n < 0 {
			return core.NewValidationError("number %d must be non-negative", n)
		}
	}
	if len(qubits) == 0 {
		return core.NewValidationError("qubit list must not be empty")
	}
	return nil
}

func intBuilder(number int) buildFunc {
	return func(scratch *core.Program, qubits []int) error {
		if err := checkIntTarget(qubits, number); err != nil {
			return err
		}
		for i, q := range qubits {
			if (number>>uint(i))&1 == 1 {
				if err := scratch.Gate(core.GateX, []int{q}); err != nil {
					return err
				}
			}
		}
		return nil
	}
}

func phasedComplementBuilder(number int, phi float64) buildFunc {
	return func(scratch *core.Program, qubits []int) error {
		if err := checkIntTarget(qubits, number); err != nil {
			return err
		}
		if err := scratch.Gate(core.GateH, []int{qubits[0]}); err != nil {
			return err
		}
		// with bit 0 set, the |1> branch of qubits[0] is x itself
		odd := number&1 == 1
		angle := phi
		if odd {
			angle = -phi
		}
		if err := scratch.Gate(core.GateU1, []int{qubits[0]}, angle); err != nil {
			return err
		}
		rest := number >> 1
		for _, q := range qubits[1:] {
			bit := rest&1 == 1
			rest >>= 1
			if bit != odd {
				if err := scratch.Gate(core.GateX, []int{q}); err != nil {
					return err
				}
			}
			if err := scratch.Gate(core.GateCX, []int{qubits[0], q}); err != nil {
				return err
			}
		}
		return nil
	}
}

func phasedPairBuilder(x, y int, phi float64) buildFunc {
	return func(scratch *core.Program, qubits []int) error {
		if err := checkIntTarget(qubits, x, y); err != nil {
			return err
		}
		diff := []int{}
		diffNumber := 0
		for i, q := range qubits {
			bx, by := (x>>uint(i))&1, (y>>uint(i))&1
			if bx == by {
				if bx == 1 {
					if err := scratch.Gate(core.GateX, []int{q}); err != nil {
						return err
					}
				}
				continue
			}
			diffNumber |= bx << uint(len(diff))
			diff = append(diff, q)
		}
		if len(diff) == 0 {
			return nil
		}
		return phasedComplementBuilder(diffNumber, phi)(scratch, diff)
	}
}
