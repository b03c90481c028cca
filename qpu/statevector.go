package qpu

import (
	"math"
	"math/cmplx"
	"math/rand"

	"github.com/oqtopus-team/oqtopus-engine/progcheck/core"
)

type matrix2 [2][2]complex128
type matrix4 [4][4]complex128

var (
	matX  = matrix2{{0, 1}, {1, 0}}
	matY  = matrix2{{0, -1i}, {1i, 0}}
	matZ  = matrix2{{1, 0}, {0, -1}}
	matH  = matrix2{{complex(1/math.Sqrt2, 0), complex(1/math.Sqrt2, 0)}, {complex(1/math.Sqrt2, 0), complex(-1/math.Sqrt2, 0)}}
	matS  = matrix2{{1, 0}, {0, 1i}}
	matSD = matrix2{{1, 0}, {0, -1i}}
	matT  = matrix2{{1, 0}, {0, cmplx.Exp(complex(0, math.Pi/4))}}
	matTD = matrix2{{1, 0}, {0, cmplx.Exp(complex(0, -math.Pi/4))}}

	// basis order |q1 q2> = 00, 01, 10, 11
	matSW    = matrix4{{1, 0, 0, 0}, {0, 0, 1, 0}, {0, 1, 0, 0}, {0, 0, 0, 1}}
	matISW   = matrix4{{1, 0, 0, 0}, {0, 0, 1i, 0}, {0, 1i, 0, 0}, {0, 0, 0, 1}}
	matISWDG = matrix4{{1, 0, 0, 0}, {0, 0, -1i, 0}, {0, -1i, 0, 0}, {0, 0, 0, 1}}
)

func expi(x float64) complex128 {
	return cmplx.Exp(complex(0, x))
}

func matRX(theta float64) matrix2 {
	c, s := complex(math.Cos(theta/2), 0), complex(0, -math.Sin(theta/2))
	return matrix2{{c, s}, {s, c}}
}

func matRY(theta float64) matrix2 {
	c, s := complex(math.Cos(theta/2), 0), complex(math.Sin(theta/2), 0)
	return matrix2{{c, -s}, {s, c}}
}

func matRZ(theta float64) matrix2 {
	return matrix2{{expi(-theta / 2), 0}, {0, expi(theta / 2)}}
}

func matU1(lambda float64) matrix2 {
	return matrix2{{1, 0}, {0, expi(lambda)}}
}

func matU3(theta, phi, lambda float64) matrix2 {
	c, s := complex(math.Cos(theta/2), 0), complex(math.Sin(theta/2), 0)
	return matrix2{{c, -expi(lambda) * s}, {expi(phi) * s, expi(phi+lambda) * c}}
}

func matRXX(theta float64) matrix4 {
	c, s := complex(math.Cos(theta/2), 0), complex(0, -math.Sin(theta/2))
	return matrix4{{c, 0, 0, s}, {0, c, s, 0}, {0, s, c, 0}, {s, 0, 0, c}}
}

func matRYY(theta float64) matrix4 {
	c, s := complex(math.Cos(theta/2), 0), complex(0, math.Sin(theta/2))
	return matrix4{{c, 0, 0, s}, {0, c, -s, 0}, {0, -s, c, 0}, {s, 0, 0, c}}
}

func matRZZ(theta float64) matrix4 {
	e, o := expi(-theta/2), expi(theta/2)
	return matrix4{{e, 0, 0, 0}, {0, o, 0, 0}, {0, 0, o, 0}, {0, 0, 0, e}}
}

// stateVector stores 2^n amplitudes; qubit k is bit k of the amplitude index.
type stateVector struct {
	amps []complex128
	n    int
}

func newStateVector(n int) *stateVector {
	amps := make([]complex128, 1<<uint(n))
	amps[0] = 1
	return &stateVector{amps: amps, n: n}
}

func (s *stateVector) clone() *stateVector {
	amps := make([]complex128, len(s.amps))
	copy(amps, s.amps)
	return &stateVector{amps: amps, n: s.n}
}

func controlMask(controls []int) int {
	m := 0
	for _, c := range controls {
		m |= 1 << uint(c)
	}
	return m
}

// apply1 applies m to target on the basis states where every control is 1.
func (s *stateVector) apply1(m matrix2, target int, controls ...int) {
	cm := controlMask(controls)
	bit := 1 << uint(target)
	for i := range s.amps {
		if i&bit != 0 || i&cm != cm {
			continue
		}
		j := i | bit
		a0, a1 := s.amps[i], s.amps[j]
		s.amps[i] = m[0][0]*a0 + m[0][1]*a1
		s.amps[j] = m[1][0]*a0 + m[1][1]*a1
	}
}

// apply2 applies m to the pair (q1, q2) on the basis states where every control is 1.
func (s *stateVector) apply2(m matrix4, q1, q2 int, controls ...int) {
	cm := controlMask(controls)
	b1, b2 := 1<<uint(q1), 1<<uint(q2)
	for i := range s.amps {
		if i&(b1|b2) != 0 || i&cm != cm {
			continue
		}
		idx := [4]int{i, i | b2, i | b1, i | b1 | b2}
		var in, out [4]complex128
		for k, x := range idx {
			in[k] = s.amps[x]
		}
		for r := 0; r < 4; r++ {
			for c := 0; c < 4; c++ {
				out[r] += m[r][c] * in[c]
			}
		}
		for k, x := range idx {
			s.amps[x] = out[k]
		}
	}
}

func (s *stateVector) prob1(q int) float64 {
	bit := 1 << uint(q)
	p := 0.0
	for i, a := range s.amps {
		if i&bit != 0 {
			p += real(a)*real(a) + imag(a)*imag(a)
		}
	}
	return p
}

// measure samples qubit q and collapses the state onto the outcome.
func (s *stateVector) measure(q int, rng *rand.Rand) int {
	p1 := s.prob1(q)
	outcome := 0
	if rng.Float64() < p1 {
		outcome = 1
	}
	norm := p1
	if outcome == 0 {
		norm = 1 - p1
	}
	scale := complex(1/math.Sqrt(norm), 0)
	bit := 1 << uint(q)
	for i := range s.amps {
		if (i&bit != 0) == (outcome == 1) {
			s.amps[i] *= scale
		} else {
			s.amps[i] = 0
		}
	}
	return outcome
}

// sample draws a basis index from the Born distribution.
func (s *stateVector) sample(rng *rand.Rand) int {
	r := rng.Float64()
	acc := 0.0
	last := 0
	for i, a := range s.amps {
		p := real(a)*real(a) + imag(a)*imag(a)
		if p == 0 {
			continue
		}
		acc += p
		last = i
		if r < acc {
			return i
		}
	}
	return last
}

func (s *stateVector) applyGate(op core.Operation) {
	q := op.Qubits
	switch op.Kind {
	case core.GateI:
	case core.GateX:
		s.apply1(matX, q[0])
	case core.GateY:
		s.apply1(matY, q[0])
	case core.GateZ:
		s.apply1(matZ, q[0])
	case core.GateH:
		s.apply1(matH, q[0])
	case core.GateS:
		s.apply1(matS, q[0])
	case core.GateSD:
		s.apply1(matSD, q[0])
	case core.GateT:
		s.apply1(matT, q[0])
	case core.GateTD:
		s.apply1(matTD, q[0])
	case core.GateRX:
		s.apply1(matRX(op.Params[0]), q[0])
	case core.GateRY:
		s.apply1(matRY(op.Params[0]), q[0])
	case core.GateRZ:
		s.apply1(matRZ(op.Params[0]), q[0])
	case core.GateU1:
		s.apply1(matU1(op.Params[0]), q[0])
	case core.GateU3:
		s.apply1(matU3(op.Params[0], op.Params[1], op.Params[2]), q[0])
	case core.GateCX:
		s.apply1(matX, q[1], q[0])
	case core.GateCY:
		s.apply1(matY, q[1], q[0])
	case core.GateCZ:
		s.apply1(matZ, q[1], q[0])
	case core.GateCH:
		s.apply1(matH, q[1], q[0])
	case core.GateCRX:
		s.apply1(matRX(op.Params[0]), q[1], q[0])
	case core.GateCRY:
		s.apply1(matRY(op.Params[0]), q[1], q[0])
	case core.GateCRZ:
		s.apply1(matRZ(op.Params[0]), q[1], q[0])
	case core.GateCU1:
		s.apply1(matU1(op.Params[0]), q[1], q[0])
	case core.GateSW:
		s.apply2(matSW, q[0], q[1])
	case core.GateISW:
		s.apply2(matISW, q[0], q[1])
	case core.GateISWDG:
		s.apply2(matISWDG, q[0], q[1])
	case core.GateRXX:
		s.apply2(matRXX(op.Params[0]), q[0], q[1])
	case core.GateRYY:
		s.apply2(matRYY(op.Params[0]), q[0], q[1])
	case core.GateRZZ:
		s.apply2(matRZZ(op.Params[0]), q[0], q[1])
	case core.GateCSW:
		s.apply2(matSW, q[1], q[2], q[0])
	case core.GateCCX:
		s.apply1(matX, q[2], q[0], q[1])
	case core.GateCCZ:
		s.apply1(matZ, q[2], q[0], q[1])
	}
}
