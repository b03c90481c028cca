package relation

import (
	"context"
	"fmt"

	"github.com/oqtopus-team/oqtopus-engine/progcheck/core"
)

// Run dispatches to the check named by kind, using the configured parameters of
// that check with overrides applied.
func (c *Checker) Run(ctx context.Context, kind core.CheckKind, programs []*core.Program, overrides map[string]float64) (bool, error) {
	if len(programs) != kind.Arity() {
		return false, core.NewValidationError("%s check takes %d programs, got %d", kind, kind.Arity(), len(programs))
	}
	base, err := c.setting.For(kind)
	if err != nil {
		return false, err
	}
	params, err := base.WithOverrides(overrides)
	if err != nil {
		return false, core.NewValidationError("%s", err)
	}

	switch kind {
	case core.EquivalenceCheck:
		return c.Equivalence(ctx, programs[0], programs[1], params)
	case core.IdentityCheck:
		return c.Identity(ctx, programs[0], params)
	case core.KeepPurityCheck:
		return c.KeepPurity(ctx, programs[0], params)
	case core.UnitarityCheck:
		return c.Unitarity(ctx, programs[0], params)
	case core.KeepBasisCheck:
		return c.KeepBasis(ctx, programs[0], params)
	default:
		return false, fmt.Errorf("unknown check kind: %s", kind)
	}
}

// RunJob runs j and records the verdict or the failure on it.
func (c *Checker) RunJob(ctx context.Context, j *core.CheckJob) {
	j.Status = core.RUNNING
	verdict, err := c.Run(ctx, j.Kind, j.Programs, j.Overrides)
	if err != nil {
		j.SetFailureWithError(err)
		return
	}
	j.SetVerdict(verdict)
}
