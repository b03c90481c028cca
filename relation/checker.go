package relation

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"strings"
	"sync"

	"github.com/oqtopus-team/oqtopus-engine/progcheck/common"
	"github.com/oqtopus-team/oqtopus-engine/progcheck/core"
	"github.com/oqtopus-team/oqtopus-engine/progcheck/statepre"
	"github.com/oqtopus-team/oqtopus-engine/progcheck/swaptest"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const tracerName = "github.com/oqtopus-team/oqtopus-engine/progcheck/relation"

// basis states are drawn as int64
const maxSampledQubits = 62

// Checker tests relations of programs by running them on an Executor. It is safe
// for concurrent use as long as the Executor is.
type Checker struct {
	exec    core.Executor
	setting Setting
	tracer  trace.Tracer

	mu  sync.Mutex
	rng *rand.Rand
}

func NewChecker(exec core.Executor, setting Setting, seed int64) *Checker {
	return &Checker{
		exec:    exec,
		setting: setting,
		tracer:  otel.Tracer(tracerName),
		rng:     rand.New(rand.NewSource(seed)),
	}
}

func (c *Checker) Setting() Setting {
	return c.setting
}

func (c *Checker) pauliCodes(n int) []statepre.PauliCode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return statepre.RandomPauliCodes(c.rng, n)
}

func (c *Checker) basisState(nQubits int) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return int(c.rng.Int63n(int64(1) << uint(nQubits)))
}

func (c *Checker) distinctBasisStates(nQubits int) (int, int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return common.RandDistinctPair(c.rng, 0, (1<<uint(nQubits))-1)
}

func (c *Checker) start(ctx context.Context, kind core.CheckKind, p Params) (context.Context, trace.Span) {
	return c.tracer.Start(ctx, string(kind), trace.WithAttributes(
		attribute.Int("npoints", p.NPoints),
		attribute.Int("nstrepeat", p.NSTRepeat),
		attribute.Int("ntrace", p.NTrace),
		attribute.Float64("epsilon", p.Epsilon),
		attribute.Int("nrepeat", p.NRepeat),
	))
}

func finish(span trace.Span, verdict bool, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetAttributes(attribute.Bool("verdict", verdict))
	}
	span.End()
}

func checkProgram(ps ...*core.Program) error {
	for i, p := range ps {
		if p == nil {
			return core.NewValidationError("program %d is nil", i)
		}
		if err := p.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// blocks returns the qubit lists [0, n) and [n, 2n).
func blocks(n int) ([]int, []int) {
	a, b := make([]int, n), make([]int, n)
	for i := 0; i < n; i++ {
		a[i], b[i] = i, i+n
	}
	return a, b
}

// pairedGenerator prepares the same Pauli eigenstate on both qubit blocks and runs
// left on the first block and right on the second.
func pairedGenerator(codes []statepre.PauliCode, left, right *core.Program) (*core.Program, error) {
	n := left.QubitCount
	a, b := blocks(n)
	gen := core.NewProgram(2*n, left.CbitCount+right.CbitCount)
	if err := statepre.Prepare(gen, codes, a); err != nil {
		return nil, err
	}
	if err := statepre.Prepare(gen, codes, b); err != nil {
		return nil, err
	}
	j, err := core.Juxtapose(left, right)
	if err != nil {
		return nil, err
	}
	if _, err := core.Compose(gen, j, core.NoRemap, core.NoRemap, false); err != nil {
		return nil, err
	}
	return gen, nil
}

// Equivalence tests whether p1 and p2 produce the same output state on random
// Pauli eigenstate inputs.
func (c *Checker) Equivalence(ctx context.Context, p1, p2 *core.Program, params Params) (verdict bool, err error) {
	_, span := c.start(ctx, core.EquivalenceCheck, params)
	defer func() { finish(span, verdict, err) }()
	if err = checkProgram(p1, p2); err != nil {
		return false, err
	}
	if err = params.validate(true); err != nil {
		return false, err
	}
	if p1.QubitCount != p2.QubitCount {
		zap.L().Debug(fmt.Sprintf("equivalence: qubit counts differ (%d, %d)", p1.QubitCount, p2.QubitCount))
		return false, nil
	}
	a, b := blocks(p1.QubitCount)

	for i := 0; i < params.NPoints; i++ {
		codes := c.pauliCodes(p1.QubitCount)
		genA, err := pairedGenerator(codes, p1, p1)
		if err != nil {
			return false, err
		}
		genB, err := pairedGenerator(codes, p2, p2)
		if err != nil {
			return false, err
		}
		genAB, err := pairedGenerator(codes, p1, p2)
		if err != nil {
			return false, err
		}

		pureA, err := swaptest.CheckTraceEqualsOne(c.exec, genA, a, b, params.NTrace)
		if err != nil {
			return false, err
		}
		pureB, err := swaptest.CheckTraceEqualsOne(c.exec, genB, a, b, params.NTrace)
		if err != nil {
			return false, err
		}
		if pureA != pureB {
			zap.L().Debug(fmt.Sprintf("equivalence: trial %d purity differs (%t, %t) for %v", i, pureA, pureB, codes))
			return false, nil
		}
		if pureA {
			pureAB, err := swaptest.CheckTraceEqualsOne(c.exec, genAB, a, b, params.NTrace)
			if err != nil {
				return false, err
			}
			if !pureAB {
				zap.L().Debug(fmt.Sprintf("equivalence: trial %d outputs differ for %v", i, codes))
				return false, nil
			}
			continue
		}

		na, err := swaptest.EstimateOverlapCount(c.exec, genA, a, b, params.NSTRepeat)
		if err != nil {
			return false, err
		}
		nb, err := swaptest.EstimateOverlapCount(c.exec, genB, a, b, params.NSTRepeat)
		if err != nil {
			return false, err
		}
		nab, err := swaptest.EstimateOverlapCount(c.exec, genAB, a, b, params.NSTRepeat)
		if err != nil {
			return false, err
		}
		r := float64(2*nab-na-nb) / float64(params.NSTRepeat)
		if math.Abs(r) > params.Epsilon {
			zap.L().Debug(fmt.Sprintf("equivalence: trial %d distance %.4f exceeds %.4f", i, r, params.Epsilon))
			return false, nil
		}
	}
	return true, nil
}

// Identity tests whether p leaves random Pauli eigenstate inputs unchanged.
func (c *Checker) Identity(ctx context.Context, p *core.Program, params Params) (verdict bool, err error) {
	_, span := c.start(ctx, core.IdentityCheck, params)
	defer func() { finish(span, verdict, err) }()
	if err = checkProgram(p); err != nil {
		return false, err
	}
	if err = params.validate(false); err != nil {
		return false, err
	}
	n, ncs := p.QubitCount, p.CbitCount
	qubits := p.QubitList()
	cbits := make([]int, n)
	for i := range cbits {
		cbits[i] = ncs + i
	}

	for i := 0; i < params.NPoints; i++ {
		codes := c.pauliCodes(n)
		test := core.NewProgram(n, ncs+n)
		if err = statepre.Prepare(test, codes, qubits); err != nil {
			return false, err
		}
		if _, err = core.Compose(test, p, core.NoRemap, core.NoRemap, false); err != nil {
			return false, err
		}
		if err = statepre.Unprepare(test, codes, qubits); err != nil {
			return false, err
		}
		if n > 0 {
			if err = test.Measure(qubits, cbits); err != nil {
				return false, err
			}
		}

		outcome, ok, err := c.singleOutcome(test, n)
		if err != nil {
			return false, err
		}
		if ok && strings.Contains(outcome, "1") {
			zap.L().Debug(fmt.Sprintf("identity: trial %d observed %s for %v", i, outcome, codes))
			return false, nil
		}
	}
	return true, nil
}

// singleOutcome runs p for one shot and reads its last n cbits. ok is false when
// the run produced no observation.
func (c *Checker) singleOutcome(p *core.Program, n int) (string, bool, error) {
	counts := c.exec.Execute(p, 1)
	last, err := counts.LastBits(n, c.exec.ReverseOutput())
	if err != nil {
		return "", false, err
	}
	outcomes := last.Outcomes()
	if len(outcomes) == 0 {
		return "", false, nil
	}
	return outcomes[0], true, nil
}

// KeepPurity tests whether p maps random pure product inputs to pure outputs.
func (c *Checker) KeepPurity(ctx context.Context, p *core.Program, params Params) (verdict bool, err error) {
	_, span := c.start(ctx, core.KeepPurityCheck, params)
	defer func() { finish(span, verdict, err) }()
	if err = checkProgram(p); err != nil {
		return false, err
	}
	if err = params.validate(false); err != nil {
		return false, err
	}
	return c.keepPurity(p, params)
}

func (c *Checker) keepPurity(p *core.Program, params Params) (bool, error) {
	a, b := blocks(p.QubitCount)
	for i := 0; i < params.NPoints; i++ {
		codes := c.pauliCodes(p.QubitCount)
		gen, err := pairedGenerator(codes, p, p)
		if err != nil {
			return false, err
		}
		pure, err := swaptest.CheckTraceEqualsOne(c.exec, gen, a, b, params.NTrace)
		if err != nil {
			return false, err
		}
		if !pure {
			zap.L().Debug(fmt.Sprintf("keep purity: trial %d output is mixed for %v", i, codes))
			return false, nil
		}
	}
	return true, nil
}

// Unitarity tests whether p keeps purity and preserves the orthogonality of
// orthogonal inputs. The first half of the trials uses |x>+|~x> against |x>-|~x>,
// the second half two different basis states.
func (c *Checker) Unitarity(ctx context.Context, p *core.Program, params Params) (verdict bool, err error) {
	_, span := c.start(ctx, core.UnitarityCheck, params)
	defer func() { finish(span, verdict, err) }()
	if err = checkProgram(p); err != nil {
		return false, err
	}
	if err = params.validate(true); err != nil {
		return false, err
	}
	n := p.QubitCount
	if n > maxSampledQubits {
		return false, core.NewValidationError("cannot sample basis states over %d qubits", n)
	}

	if verdict, err = c.keepPurity(p, params); err != nil || !verdict {
		return false, err
	}
	if n == 0 {
		return true, nil
	}
	a, b := blocks(n)

	for i := 0; i < params.NPoints; i++ {
		gen := core.NewProgram(2*n, 2*p.CbitCount)
		if float64(i) <= float64(params.NPoints-1)/2 {
			x := c.basisState(n)
			if err = statepre.PreparePhasedComplement(gen, x, 0, a, statepre.LittleEndian); err != nil {
				return false, err
			}
			if err = statepre.PreparePhasedComplement(gen, x, math.Pi, b, statepre.LittleEndian); err != nil {
				return false, err
			}
		} else {
			x, y, err := c.distinctBasisStates(n)
			if err != nil {
				return false, err
			}
			if err = statepre.PrepareInt(gen, x, a, statepre.LittleEndian); err != nil {
				return false, err
			}
			if err = statepre.PrepareInt(gen, y, b, statepre.LittleEndian); err != nil {
				return false, err
			}
		}
		j, err := core.Juxtapose(p, p)
		if err != nil {
			return false, err
		}
		if _, err = core.Compose(gen, j, core.NoRemap, core.NoRemap, false); err != nil {
			return false, err
		}

		ones, err := swaptest.EstimateOverlapCount(c.exec, gen, a, b, params.NSTRepeat)
		if err != nil {
			return false, err
		}
		// orthogonal outputs give ones/NSTRepeat close to 1/2
		r := 1 - 2*float64(ones)/float64(params.NSTRepeat)
		if math.Abs(r) > params.Epsilon {
			zap.L().Debug(fmt.Sprintf("unitarity: trial %d overlap %.4f exceeds %.4f", i, r, params.Epsilon))
			return false, nil
		}
	}
	return true, nil
}

// KeepBasis tests whether p maps each random basis input to one fixed outcome
// over NRepeat runs.
func (c *Checker) KeepBasis(ctx context.Context, p *core.Program, params Params) (verdict bool, err error) {
	_, span := c.start(ctx, core.KeepBasisCheck, params)
	defer func() { finish(span, verdict, err) }()
	if err = checkProgram(p); err != nil {
		return false, err
	}
	if err = params.validate(false); err != nil {
		return false, err
	}
	n, ncs := p.QubitCount, p.CbitCount
	if n == 0 {
		return true, nil
	}
	if n > maxSampledQubits {
		return false, core.NewValidationError("cannot sample basis states over %d qubits", n)
	}
	qubits := p.QubitList()
	cbits := make([]int, n)
	for i := range cbits {
		cbits[i] = ncs + i
	}

	for i := 0; i < params.NPoints; i++ {
		x := c.basisState(n)
		first := ""
		for j := 0; j < params.NRepeat; j++ {
			test := core.NewProgram(n, ncs+n)
			if err = statepre.PrepareInt(test, x, qubits, statepre.LittleEndian); err != nil {
				return false, err
			}
			if _, err = core.Compose(test, p, core.NoRemap, core.NoRemap, false); err != nil {
				return false, err
			}
			if err = test.Measure(qubits, cbits); err != nil {
				return false, err
			}
			outcome, ok, err := c.singleOutcome(test, n)
			if err != nil {
				return false, err
			}
			if !ok {
				continue
			}
			if first == "" {
				first = outcome
			} else if outcome != first {
				a, _ := common.IntFromBinStrLE(first)
				b, _ := common.IntFromBinStrLE(outcome)
				zap.L().Debug(fmt.Sprintf("keep basis: input %d gave %d then %d", x, a, b))
				return false, nil
			}
		}
	}
	return true, nil
}
