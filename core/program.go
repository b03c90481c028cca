package core

import (
	"fmt"
	"slices"

	"github.com/mohae/deepcopy"
	"go.uber.org/multierr"
)

// Operation is one gate application or measurement. Cbits is only meaningful for
// measurement, where it must have the same length as Qubits.
type Operation struct {
	Kind   GateKind
	Qubits []int
	Params []float64
	Cbits  []int
}

func (o Operation) IsMeasurement() bool {
	return o.Kind.IsMeasurement()
}

// Inverse returns the operation undoing o. Measurements are rejected.
func (o Operation) Inverse() (Operation, error) {
	k, params, err := o.Kind.inverse(o.Params)
	if err != nil {
		return Operation{}, err
	}
	return Operation{
		Kind:   k,
		Qubits: append([]int(nil), o.Qubits...),
		Params: params,
	}, nil
}

func (o Operation) String() string {
	s := o.Kind.String()
	if len(o.Params) > 0 {
		s += fmt.Sprintf("(%v)", o.Params)
	}
	s += fmt.Sprintf(" q%v", o.Qubits)
	if o.IsMeasurement() {
		s += fmt.Sprintf(" -> c%v", o.Cbits)
	}
	return s
}

func (o Operation) clone() Operation {
	return Operation{
		Kind:   o.Kind,
		Qubits: append([]int(nil), o.Qubits...),
		Params: append([]float64(nil), o.Params...),
		Cbits:  append([]int(nil), o.Cbits...),
	}
}

func (o Operation) validate(qubitCount, cbitCount int) error {
	if !o.Kind.IsValid() {
		return NewValidationError("unknown gate kind %d", int(o.Kind))
	}
	if o.IsMeasurement() {
		if len(o.Qubits) == 0 {
			return NewValidationError("measurement has no qubit")
		}
		if len(o.Qubits) != len(o.Cbits) {
			return NewValidationError("measurement has %d qubits and %d cbits", len(o.Qubits), len(o.Cbits))
		}
		if err := checkIndices("cbit", o.Cbits, cbitCount); err != nil {
			return err
		}
	} else {
		if len(o.Qubits) != o.Kind.NumQubits() {
			return NewValidationError("%s takes %d qubits, got %d", o.Kind, o.Kind.NumQubits(), len(o.Qubits))
		}
		if len(o.Params) != o.Kind.NumParams() {
			return NewValidationError("%s takes %d parameters, got %d", o.Kind, o.Kind.NumParams(), len(o.Params))
		}
		if len(o.Cbits) != 0 {
			return NewValidationError("%s does not write cbits", o.Kind)
		}
	}
	return checkIndices("qubit", o.Qubits, qubitCount)
}

func checkIndices(what string, indices []int, count int) error {
	seen := make(map[int]struct{}, len(indices))
	for _, i := range indices {
		if i < 0 || i >= count {
			return NewValidationError("%s index %d is out of range [0, %d)", what, i, count)
		}
		if _, ok := seen[i]; ok {
			return NewValidationError("%s index %d appears twice in one operation", what, i)
		}
		seen[i] = struct{}{}
	}
	return nil
}

// Program is an ordered list of operations over QubitCount qubits and CbitCount classical bits.
type Program struct {
	QubitCount int
	CbitCount  int
	Operations []Operation
}

func NewProgram(qubitCount, cbitCount int) *Program {
	return &Program{
		QubitCount: qubitCount,
		CbitCount:  cbitCount,
		Operations: []Operation{},
	}
}

// Append validates op against the program bounds and adds a copy of it.
func (p *Program) Append(op Operation) error {
	if err := op.validate(p.QubitCount, p.CbitCount); err != nil {
		return err
	}
	p.Operations = append(p.Operations, op.clone())
	return nil
}

func (p *Program) Gate(kind GateKind, qubits []int, params ...float64) error {
	if kind.IsMeasurement() {
		return NewValidationError("use Measure to add a measurement")
	}
	return p.Append(Operation{Kind: kind, Qubits: qubits, Params: params})
}

// ApplyGate adds a gate given by name; aliases are resolved to canonical kinds.
func (p *Program) ApplyGate(name string, qubits []int, params ...float64) error {
	k, err := ParseGateKind(name)
	if err != nil {
		return err
	}
	return p.Gate(k, qubits, params...)
}

func (p *Program) Measure(qubits, cbits []int) error {
	return p.Append(Operation{Kind: GateMeasure, Qubits: qubits, Cbits: cbits})
}

func (p *Program) Len() int {
	return len(p.Operations)
}

func (p *Program) QubitList() []int {
	return indexRange(p.QubitCount)
}

func (p *Program) CbitList() []int {
	return indexRange(p.CbitCount)
}

func indexRange(n int) []int {
	if n <= 0 {
		return []int{}
	}
	l := make([]int, n)
	for i := range l {
		l[i] = i
	}
	return l
}

func (p *Program) HasMeasurement() bool {
	return slices.ContainsFunc(p.Operations, Operation.IsMeasurement)
}

// Validate reports every operation that violates the program bounds.
func (p *Program) Validate() error {
	var err error
	if p.QubitCount < 0 {
		err = multierr.Append(err, NewValidationError("qubit count %d is negative", p.QubitCount))
	}
	if p.CbitCount < 0 {
		err = multierr.Append(err, NewValidationError("cbit count %d is negative", p.CbitCount))
	}
	for i, op := range p.Operations {
		if e := op.validate(p.QubitCount, p.CbitCount); e != nil {
			err = multierr.Append(err, fmt.Errorf("operation %d (%s): %w", i, op, e))
		}
	}
	return err
}

func (p *Program) Clone() *Program {
	c := deepcopy.Copy(p).(*Program)
	if c.Operations == nil {
		c.Operations = []Operation{}
	}
	return c
}

// Inverse returns a new program applying the inverse operations in reverse order.
func (p *Program) Inverse() (*Program, error) {
	return Compose(nil, p, NoRemap, NoRemap, true)
}

func (p *Program) String() string {
	s := fmt.Sprintf("program(qubits=%d, cbits=%d)", p.QubitCount, p.CbitCount)
	for _, op := range p.Operations {
		s += "\n  " + op.String()
	}
	return s
}

// Compose appends the operations of src to dest after remapping their qubit and cbit
// operands. With inverse set, the operations are appended in reverse order, each
// replaced by its inverse. A nil dest composes into a fresh program large enough to
// hold the remapped operands. dest is left unchanged when an error is returned.
func Compose(dest, src *Program, qubitRemap, cbitRemap Remap, inverse bool) (*Program, error) {
	if src == nil {
		return dest, NewValidationError("source program is nil")
	}
	if err := multierr.Combine(qubitRemap.check(), cbitRemap.check()); err != nil {
		return dest, err
	}

	ops := make([]Operation, 0, len(src.Operations))
	maxQubit, maxCbit := -1, -1
	for _, op := range src.Operations {
		c := op.clone()
		for i, q := range c.Qubits {
			r, err := qubitRemap.Apply(q)
			if err != nil {
				return dest, err
			}
			c.Qubits[i] = r
			maxQubit = max(maxQubit, r)
		}
		for i, b := range c.Cbits {
			r, err := cbitRemap.Apply(b)
			if err != nil {
				return dest, err
			}
			c.Cbits[i] = r
			maxCbit = max(maxCbit, r)
		}
		ops = append(ops, c)
	}

	if inverse {
		slices.Reverse(ops)
		for i, op := range ops {
			inv, err := op.Inverse()
			if err != nil {
				return dest, err
			}
			ops[i] = inv
		}
	}

	if dest == nil {
		dest = NewProgram(max(src.QubitCount, maxQubit+1), max(src.CbitCount, maxCbit+1))
	}
	for _, op := range ops {
		if err := op.validate(dest.QubitCount, dest.CbitCount); err != nil {
			return dest, err
		}
	}
	dest.Operations = append(dest.Operations, ops...)
	return dest, nil
}

// Juxtapose places programs side by side: each one acts on its own contiguous block
// of qubits and cbits, in argument order.
func Juxtapose(programs ...*Program) (*Program, error) {
	qubits, cbits := 0, 0
	for i, p := range programs {
		if p == nil {
			return nil, NewValidationError("program %d is nil", i)
		}
		qubits += p.QubitCount
		cbits += p.CbitCount
	}
	out := NewProgram(qubits, cbits)
	qOff, cOff := 0, 0
	for _, p := range programs {
		if _, err := Compose(out, p, OffsetRemap(qOff), OffsetRemap(cOff), false); err != nil {
			return nil, err
		}
		qOff += p.QubitCount
		cOff += p.CbitCount
	}
	return out, nil
}
