package relation

import (
	"fmt"
	"math"

	"github.com/oqtopus-team/oqtopus-engine/progcheck/core"
)

const SettingName = "relation"

// Params are the sampling parameters of one check. Each check reads only the
// fields it needs.
type Params struct {
	NPoints   int     `toml:"npoints"`
	NSTRepeat int     `toml:"nstrepeat"`
	NTrace    int     `toml:"ntrace"`
	Epsilon   float64 `toml:"epsilon"`
	NRepeat   int     `toml:"nrepeat"`
}

type Setting struct {
	Equivalence Params `toml:"equivalence"`
	Identity    Params `toml:"identity"`
	KeepPurity  Params `toml:"keep_purity"`
	Unitarity   Params `toml:"unitarity"`
	KeepBasis   Params `toml:"keep_basis"`
}

func NewSetting() Setting {
	return Setting{
		Equivalence: Params{NPoints: 4, NSTRepeat: 1545, NTrace: 20, Epsilon: 0.15},
		Identity:    Params{NPoints: 50},
		KeepPurity:  Params{NPoints: 10, NTrace: 20},
		Unitarity:   Params{NPoints: 4, NSTRepeat: 469, NTrace: 20, Epsilon: 0.15},
		KeepBasis:   Params{NPoints: 10, NRepeat: 20},
	}
}

// RegisterSetting registers the defaults under [com.relation] and returns the
// pointer that a later setting parse fills in.
func RegisterSetting() *Setting {
	s := NewSetting()
	core.RegisterSetting(SettingName, &s)
	return &s
}

func (s Setting) For(kind core.CheckKind) (Params, error) {
	switch kind {
	case core.EquivalenceCheck:
		return s.Equivalence, nil
	case core.IdentityCheck:
		return s.Identity, nil
	case core.KeepPurityCheck:
		return s.KeepPurity, nil
	case core.UnitarityCheck:
		return s.Unitarity, nil
	case core.KeepBasisCheck:
		return s.KeepBasis, nil
	default:
		return Params{}, fmt.Errorf("unknown check kind: %s", kind)
	}
}

// WithOverrides returns a copy of p with the named fields replaced.
func (p Params) WithOverrides(overrides map[string]float64) (Params, error) {
	asInt := func(name string, v float64) (int, error) {
		if v != math.Trunc(v) {
			return 0, fmt.Errorf("%s must be an integer, got %v", name, v)
		}
		return int(v), nil
	}
	var err error
	for name, v := range overrides {
		switch name {
		case "npoints":
			p.NPoints, err = asInt(name, v)
		case "nstrepeat":
			p.NSTRepeat, err = asInt(name, v)
		case "ntrace":
			p.NTrace, err = asInt(name, v)
		case "nrepeat":
			p.NRepeat, err = asInt(name, v)
		case "epsilon":
			p.Epsilon = v
		default:
			err = fmt.Errorf("unknown parameter: %s", name)
		}
		if err != nil {
			return Params{}, err
		}
	}
	return p, nil
}

func (p Params) validate(needSwapTest bool) error {
	if p.NPoints < 0 || p.NTrace < 0 || p.NRepeat < 0 {
		return core.NewValidationError("sample counts must be non-negative: %+v", p)
	}
	if p.Epsilon < 0 || math.IsNaN(p.Epsilon) {
		return core.NewValidationError("epsilon must be non-negative, got %v", p.Epsilon)
	}
	if needSwapTest && p.NSTRepeat <= 0 {
		return core.NewValidationError("nstrepeat must be positive, got %d", p.NSTRepeat)
	}
	return nil
}
