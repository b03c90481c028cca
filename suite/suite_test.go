//go:build unit
// +build unit

package suite

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/oqtopus-team/oqtopus-engine/progcheck/common"
	"github.com/oqtopus-team/oqtopus-engine/progcheck/core"
	"github.com/stretchr/testify/assert"
)

var testSuite = heredoc.Doc(`
	[[program]]
	name = "empty"
	qubits = 2

	[[program]]
	name = "rot"
	qubits = 1
	cbits = 1
	ops = [
	  { gate = "rx", qubits = [0], params = [0.5] },
	  { gate = "measure", qubits = [0], cbits = [0] },
	]

	[[check]]
	kind = "Keep-Purity"
	programs = ["rot"]
	overrides = { ntrace = 5 }

	[[check]]
	kind = "equivalence"
	programs = ["empty", "empty"]
`)

func TestParseAndBuild(t *testing.T) {
	s, err := Parse(testSuite)
	assert.Nil(t, err)
	assert.Len(t, s.Programs, 2)
	assert.Len(t, s.Checks, 2)

	programs, err := s.BuildPrograms()
	assert.Nil(t, err)
	assert.Equal(t, core.NewProgram(2, 0), programs["empty"])
	rot := programs["rot"]
	assert.Equal(t, 2, rot.Len())
	assert.Equal(t, core.GateRX, rot.Operations[0].Kind)
	assert.Equal(t, []float64{0.5}, rot.Operations[0].Params)
	assert.True(t, rot.HasMeasurement())

	jobs, err := s.BuildJobs()
	assert.Nil(t, err)
	assert.Len(t, jobs, 2)
	assert.Equal(t, core.KeepPurityCheck, jobs[0].Kind)
	assert.Equal(t, map[string]float64{"ntrace": 5}, jobs[0].Overrides)
	assert.Equal(t, []string{"rot"}, jobs[0].ProgramNames)
	assert.Equal(t, core.EquivalenceCheck, jobs[1].Kind)
	assert.Len(t, jobs[1].Programs, 2)
	assert.Equal(t, core.READY, jobs[1].Status)
	assert.NotEqual(t, jobs[0].ID, jobs[1].ID)
}

func TestBuildErrors(t *testing.T) {
	tests := []struct {
		name    string
		suite   string
		wantErr []string
	}{
		{
			name: "unknown gate and bad index",
			suite: heredoc.Doc(`
				[[program]]
				name = "a"
				qubits = 1
				ops = [{ gate = "warp", qubits = [0] }]

				[[program]]
				name = "b"
				qubits = 1
				ops = [{ gate = "x", qubits = [1] }]
			`),
			wantErr: []string{"program a op 0", "gate is not supported: warp", "program b op 0", "qubit index 1 is out of range"},
		},
		{
			name: "duplicate program",
			suite: heredoc.Doc(`
				[[program]]
				name = "a"
				qubits = 1

				[[program]]
				name = "a"
				qubits = 2
			`),
			wantErr: []string{"program a is defined twice"},
		},
		{
			name: "unknown program and kind",
			suite: heredoc.Doc(`
				[[program]]
				name = "a"
				qubits = 1

				[[check]]
				kind = "identity"
				programs = ["b"]

				[[check]]
				kind = "sameness"
				programs = ["a"]
			`),
			wantErr: []string{"check 0: unknown program b", "check 1: unknown check kind: sameness"},
		},
		{
			name: "wrong arity",
			suite: heredoc.Doc(`
				[[program]]
				name = "a"
				qubits = 1

				[[check]]
				kind = "equivalence"
				programs = ["a"]
			`),
			wantErr: []string{"check 0: equivalence check takes 2 programs, got 1"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Parse(tt.suite)
			assert.Nil(t, err)
			_, err = s.BuildJobs()
			if assert.NotNil(t, err) {
				for _, want := range tt.wantErr {
					assert.Contains(t, err.Error(), want)
				}
			}
		})
	}
}

func TestParseRejectsBrokenTOML(t *testing.T) {
	_, err := Parse("[[program]\nname=")
	assert.NotNil(t, err)
}

func TestJSONRoundTrip(t *testing.T) {
	p := core.NewProgram(2, 1)
	assert.Nil(t, p.Gate(core.GateCU1, []int{0, 1}, 0.25))
	assert.Nil(t, p.Measure([]int{1}, []int{0}))
	s := &Suite{
		Programs: []ProgramSpec{FromProgram("cp", p)},
		Checks:   []CheckSpec{{Kind: "unitarity", Programs: []string{"cp"}}},
	}

	blob, err := s.JSON()
	assert.Nil(t, err)
	path := filepath.Join(t.TempDir(), "suite.json")
	assert.Nil(t, os.WriteFile(path, []byte(blob), 0o600))

	loaded, err := Load(path)
	assert.Nil(t, err)
	programs, err := loaded.BuildPrograms()
	assert.Nil(t, err)
	assert.Equal(t, p, programs["cp"])
}

func TestLoadExampleSuite(t *testing.T) {
	path, err := common.GetAssetAbsPath("example_suite.toml")
	assert.Nil(t, err)
	s, err := Load(path)
	assert.Nil(t, err)
	jobs, err := s.BuildJobs()
	assert.Nil(t, err)
	assert.Len(t, jobs, 5)
	assert.Equal(t, map[string]float64{"npoints": 5}, jobs[4].Overrides)

	_, err = Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.NotNil(t, err)
}
