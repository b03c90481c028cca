//go:build unit
// +build unit

package qpu

import (
	"math"
	"math/cmplx"
	"math/rand"
	"testing"

	"github.com/oqtopus-team/oqtopus-engine/progcheck/core"
	"github.com/stretchr/testify/assert"
)

const ampTolerance = 1e-9

func gate(kind core.GateKind, qubits []int, params ...float64) core.Operation {
	return core.Operation{Kind: kind, Qubits: qubits, Params: params}
}

func run(n int, ops ...core.Operation) *stateVector {
	s := newStateVector(n)
	for _, op := range ops {
		s.applyGate(op)
	}
	return s
}

func assertBasis(t *testing.T, s *stateVector, index int) {
	t.Helper()
	for i, a := range s.amps {
		want := 0.0
		if i == index {
			want = 1
		}
		assert.InDelta(t, want, cmplx.Abs(a), ampTolerance, "amplitude %d", i)
	}
}

func TestStateVectorGates(t *testing.T) {
	tests := []struct {
		name  string
		n     int
		ops   []core.Operation
		basis int
	}{
		{
			name:  "x flips qubit 1",
			n:     2,
			ops:   []core.Operation{gate(core.GateX, []int{1})},
			basis: 2,
		},
		{
			name:  "cx with control set",
			n:     2,
			ops:   []core.Operation{gate(core.GateX, []int{0}), gate(core.GateCX, []int{0, 1})},
			basis: 3,
		},
		{
			name:  "cx with control unset",
			n:     2,
			ops:   []core.Operation{gate(core.GateCX, []int{0, 1})},
			basis: 0,
		},
		{
			name: "cswap exchanges targets",
			n:    3,
			ops: []core.Operation{
				gate(core.GateX, []int{0}),
				gate(core.GateX, []int{1}),
				gate(core.GateCSW, []int{0, 1, 2}),
			},
			basis: 5,
		},
		{
			name: "ccx needs both controls",
			n:    3,
			ops: []core.Operation{
				gate(core.GateX, []int{0}),
				gate(core.GateX, []int{1}),
				gate(core.GateCCX, []int{0, 1, 2}),
			},
			basis: 7,
		},
		{
			name: "swap",
			n:    2,
			ops: []core.Operation{
				gate(core.GateX, []int{0}),
				gate(core.GateSW, []int{0, 1}),
			},
			basis: 2,
		},
		{
			name: "iswap then its inverse",
			n:    2,
			ops: []core.Operation{
				gate(core.GateX, []int{0}),
				gate(core.GateISW, []int{0, 1}),
				gate(core.GateISWDG, []int{0, 1}),
			},
			basis: 1,
		},
		{
			name: "h twice",
			n:    1,
			ops: []core.Operation{
				gate(core.GateH, []int{0}),
				gate(core.GateH, []int{0}),
			},
			basis: 0,
		},
		{
			name:  "rx pi",
			n:     1,
			ops:   []core.Operation{gate(core.GateRX, []int{0}, math.Pi)},
			basis: 1,
		},
		{
			name:  "u3 as x",
			n:     1,
			ops:   []core.Operation{gate(core.GateU3, []int{0}, math.Pi, 0, math.Pi)},
			basis: 1,
		},
		{
			name:  "rxx pi flips both",
			n:     2,
			ops:   []core.Operation{gate(core.GateRXX, []int{0, 1}, math.Pi)},
			basis: 3,
		},
		{
			name: "s t and their inverses",
			n:    1,
			ops: []core.Operation{
				gate(core.GateH, []int{0}),
				gate(core.GateS, []int{0}),
				gate(core.GateT, []int{0}),
				gate(core.GateTD, []int{0}),
				gate(core.GateSD, []int{0}),
				gate(core.GateH, []int{0}),
			},
			basis: 0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertBasis(t, run(tt.n, tt.ops...), tt.basis)
		})
	}
}

func TestStateVectorBellPair(t *testing.T) {
	s := run(2, gate(core.GateH, []int{0}), gate(core.GateCX, []int{0, 1}))
	assert.InDelta(t, 1/math.Sqrt2, real(s.amps[0]), ampTolerance)
	assert.InDelta(t, 1/math.Sqrt2, real(s.amps[3]), ampTolerance)
	assert.InDelta(t, 0, cmplx.Abs(s.amps[1]), ampTolerance)
	assert.InDelta(t, 0, cmplx.Abs(s.amps[2]), ampTolerance)
	assert.InDelta(t, 0.5, s.prob1(1), ampTolerance)
}

func TestStateVectorMeasureCollapses(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 20; i++ {
		s := run(2, gate(core.GateH, []int{0}), gate(core.GateCX, []int{0, 1}))
		m0 := s.measure(0, rng)
		assert.Equal(t, m0, s.measure(1, rng))
		assertBasis(t, s, m0*3)
	}
}

func TestStateVectorSample(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	s := run(1, gate(core.GateH, []int{0}))
	ones := 0
	for i := 0; i < 2000; i++ {
		ones += s.sample(rng)
	}
	assert.InDelta(t, 1000, ones, 200)

	x := run(3, gate(core.GateX, []int{2}))
	for i := 0; i < 10; i++ {
		assert.Equal(t, 4, x.sample(rng))
	}
}
