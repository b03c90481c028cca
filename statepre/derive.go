package statepre

import (
	"slices"

	"github.com/oqtopus-team/oqtopus-engine/progcheck/core"
)

type Endian int

const (
	// LittleEndian puts bit 0 of a number on the first qubit of the list.
	LittleEndian Endian = iota
	// BigEndian puts bit 0 of a number on the last qubit of the list.
	BigEndian
)

type buildFunc func(scratch *core.Program, qubits []int) error

// derive runs build on a scratch program of the same shape as p and composes the
// result into p, optionally inverted. p is untouched when build fails.
func derive(p *core.Program, qubits []int, e Endian, inverse bool, build buildFunc) error {
	if p == nil {
		return core.NewValidationError("program is nil")
	}
	q := qubits
	if e == BigEndian {
		q = slices.Clone(qubits)
		slices.Reverse(q)
	}
	scratch := core.NewProgram(p.QubitCount, p.CbitCount)
	if err := build(scratch, q); err != nil {
		return err
	}
	_, err := core.Compose(p, scratch, core.NoRemap, core.NoRemap, inverse)
	return err
}
