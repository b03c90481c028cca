package suite

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	jsoniter "github.com/json-iterator/go"
	"github.com/oqtopus-team/oqtopus-engine/progcheck/common"
	"github.com/oqtopus-team/oqtopus-engine/progcheck/core"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type OpSpec struct {
	Gate   string    `toml:"gate" json:"gate"`
	Qubits []int     `toml:"qubits" json:"qubits"`
	Params []float64 `toml:"params" json:"params,omitempty"`
	Cbits  []int     `toml:"cbits" json:"cbits,omitempty"`
}

type ProgramSpec struct {
	Name   string   `toml:"name" json:"name"`
	Qubits int      `toml:"qubits" json:"qubits"`
	Cbits  int      `toml:"cbits" json:"cbits"`
	Ops    []OpSpec `toml:"ops" json:"ops"`
}

type CheckSpec struct {
	Kind      string             `toml:"kind" json:"kind"`
	Programs  []string           `toml:"programs" json:"programs"`
	Overrides map[string]float64 `toml:"overrides" json:"overrides,omitempty"`
}

// Suite is a set of named programs and the checks to run over them.
type Suite struct {
	Programs []ProgramSpec `toml:"program" json:"program"`
	Checks   []CheckSpec   `toml:"check" json:"check"`
}

// Load reads a suite file; files ending in .json are read as JSON, anything else as TOML.
func Load(path string) (*Suite, error) {
	blob, err := common.ReadSettingsFile(path)
	if err != nil {
		return nil, err
	}
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return ParseJSON(blob)
	}
	return Parse(blob)
}

func Parse(tomlString string) (*Suite, error) {
	s := &Suite{}
	md, err := toml.Decode(tomlString, s)
	if err != nil {
		return nil, fmt.Errorf("failed to decode suite: %w", err)
	}
	for _, k := range md.Undecoded() {
		zap.L().Warn(fmt.Sprintf("unknown key in suite: %s", k.String()))
	}
	return s, nil
}

func ParseJSON(jsonString string) (*Suite, error) {
	s := &Suite{}
	if err := json.UnmarshalFromString(jsonString, s); err != nil {
		return nil, fmt.Errorf("failed to decode suite: %w", err)
	}
	return s, nil
}

func (s *Suite) JSON() (string, error) {
	return json.MarshalToString(s)
}

// Build turns a program description into a validated program.
func (ps ProgramSpec) Build() (*core.Program, error) {
	if ps.Qubits < 0 || ps.Cbits < 0 {
		return nil, core.NewValidationError("program %s has negative register sizes", ps.Name)
	}
	p := core.NewProgram(ps.Qubits, ps.Cbits)
	for i, op := range ps.Ops {
		kind, err := core.ParseGateKind(op.Gate)
		if err != nil {
			return nil, fmt.Errorf("program %s op %d: %w", ps.Name, i, err)
		}
		if err := p.Append(core.Operation{Kind: kind, Qubits: op.Qubits, Params: op.Params, Cbits: op.Cbits}); err != nil {
			return nil, fmt.Errorf("program %s op %d: %w", ps.Name, i, err)
		}
	}
	return p, nil
}

// FromProgram describes p under name.
func FromProgram(name string, p *core.Program) ProgramSpec {
	ps := ProgramSpec{Name: name, Qubits: p.QubitCount, Cbits: p.CbitCount, Ops: make([]OpSpec, 0, len(p.Operations))}
	for _, op := range p.Operations {
		ps.Ops = append(ps.Ops, OpSpec{
			Gate:   strings.ToLower(op.Kind.String()),
			Qubits: append([]int(nil), op.Qubits...),
			Params: append([]float64(nil), op.Params...),
			Cbits:  append([]int(nil), op.Cbits...),
		})
	}
	return ps
}

// BuildPrograms builds every program, reporting all invalid ones at once.
func (s *Suite) BuildPrograms() (map[string]*core.Program, error) {
	programs := make(map[string]*core.Program, len(s.Programs))
	var errs error
	for _, ps := range s.Programs {
		if ps.Name == "" {
			errs = multierr.Append(errs, fmt.Errorf("program without a name"))
			continue
		}
		if _, ok := programs[ps.Name]; ok {
			errs = multierr.Append(errs, fmt.Errorf("program %s is defined twice", ps.Name))
			continue
		}
		p, err := ps.Build()
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		programs[ps.Name] = p
	}
	if errs != nil {
		return nil, errs
	}
	return programs, nil
}

// BuildJobs builds one ready check job per [[check]], in file order. Programs
// are shared between jobs and must not be modified.
func (s *Suite) BuildJobs() ([]*core.CheckJob, error) {
	programs, err := s.BuildPrograms()
	if err != nil {
		return nil, err
	}
	jobs := make([]*core.CheckJob, 0, len(s.Checks))
	var errs error
	for i, cs := range s.Checks {
		kind, err := core.ToCheckKind(cs.Kind)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("check %d: %w", i, err))
			continue
		}
		ps := make([]*core.Program, 0, len(cs.Programs))
		missing := false
		for _, name := range cs.Programs {
			p, ok := programs[name]
			if !ok {
				errs = multierr.Append(errs, fmt.Errorf("check %d: unknown program %s", i, name))
				missing = true
				continue
			}
			ps = append(ps, p)
		}
		if missing {
			continue
		}
		j, err := core.NewCheckJob(kind, cs.Programs, ps)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("check %d: %w", i, err))
			continue
		}
		for k, v := range cs.Overrides {
			j.Overrides[k] = v
		}
		jobs = append(jobs, j)
	}
	if errs != nil {
		return nil, errs
	}
	return jobs, nil
}
