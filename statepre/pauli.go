package statepre

import (
	"math/rand"

	"github.com/oqtopus-team/oqtopus-engine/progcheck/core"
)

// PauliCode selects one of the six single-qubit Pauli eigenstates.
type PauliCode int

const (
	PauliZPlus  PauliCode = iota // |0>
	PauliZMinus                  // |1>
	PauliXPlus                   // |0>+|1>
	PauliXMinus                  // |0>-|1>
	PauliYPlus                   // |0>+i|1>
	PauliYMinus                  // |0>-i|1>
)

const NumPauliCodes = 6

func (c PauliCode) IsValid() bool {
	return c >= PauliZPlus && c <= PauliYMinus
}

func (c PauliCode) String() string {
	switch c {
	case PauliZPlus:
		return "Z+"
	case PauliZMinus:
		return "Z-"
	case PauliXPlus:
		return "X+"
	case PauliXMinus:
		return "X-"
	case PauliYPlus:
		return "Y+"
	case PauliYMinus:
		return "Y-"
	default:
		return "invalid"
	}
}

func (c PauliCode) gates() []core.GateKind {
	switch c {
	case PauliZMinus:
		return []core.GateKind{core.GateX}
	case PauliXPlus:
		return []core.GateKind{core.GateH}
	case PauliXMinus:
		return []core.GateKind{core.GateX, core.GateH}
	case PauliYPlus:
		return []core.GateKind{core.GateH, core.GateS}
	case PauliYMinus:
		return []core.GateKind{core.GateH, core.GateSD}
	default:
		return nil
	}
}

// RandomPauliCodes draws n codes uniformly and independently.
func RandomPauliCodes(rng *rand.Rand, n int) []PauliCode {
	codes := make([]PauliCode, n)
	for i := range codes {
		codes[i] = PauliCode(rng.Intn(NumPauliCodes))
	}
	return codes
}

// Prepare appends the gates turning |0...0> on qubits into the product of the
// eigenstates selected by codes, qubit by qubit in list order.
func Prepare(p *core.Program, codes []PauliCode, qubits []int) error {
	return derive(p, qubits, LittleEndian, false, pauliBuilder(codes))
}

// Unprepare appends the exact inverse of Prepare with the same arguments.
func Unprepare(p *core.Program, codes []PauliCode, qubits []int) error {
	return derive(p, qubits, LittleEndian, true, pauliBuilder(codes))
}

func pauliBuilder(codes []PauliCode) buildFunc {
	return func(scratch *core.Program, qubits []int) error {
		if len(codes) != len(qubits) {
			return core.NewValidationError("%d pauli codes are given for %d qubits", len(codes), len(qubits))
		}
		for _, c := range codes {
			if !c.IsValid() {
				return core.NewValidationError("pauli code %d is out of [0, %d]", int(c), NumPauliCodes-1)
			}
		}
		for i, c := range codes {
			for _, g := range c.gates() {
				if err := scratch.Gate(g, []int{qubits[i]}); err != nil {
					return err
				}
			}
		}
		return nil
	}
}
