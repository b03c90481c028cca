//go:build unit
// +build unit

package qpu

import (
	"testing"

	"github.com/oqtopus-team/oqtopus-engine/progcheck/core"
	"github.com/stretchr/testify/assert"
)

func TestValidateGates(t *testing.T) {
	p := core.NewProgram(2, 2)
	assert.Nil(t, p.Gate(core.GateH, []int{0}))
	assert.Nil(t, p.Gate(core.GateCX, []int{0, 1}))
	assert.Nil(t, p.Measure([]int{0, 1}, []int{0, 1}))

	tests := []struct {
		name    string
		gs      *GateSupport
		wantErr string
	}{
		{name: "no support list", gs: nil},
		{name: "disabled lists", gs: NewGateSupport()},
		{
			name: "allowed by aliases",
			gs:   NewGateSupportWithAllowList(&GateFilter{Enabled: true, Gates: []string{"h", "cnot", "measure"}}),
		},
		{
			name:    "missing from allow list",
			gs:      NewGateSupportWithAllowList(&GateFilter{Enabled: true, Gates: []string{"h", "measure"}}),
			wantErr: "gate:CX is not supported",
		},
		{
			name:    "denied",
			gs:      NewGateSupportWithDenyList(&GateFilter{Enabled: true, Gates: []string{"cx"}}),
			wantErr: "gate:CX is not supported",
		},
		{
			name: "disabled deny list",
			gs:   NewGateSupportWithDenyList(&GateFilter{Enabled: false, Gates: []string{"cx"}}),
		},
		{
			name:    "unknown name in list",
			gs:      NewGateSupportWithDenyList(&GateFilter{Enabled: true, Gates: []string{"warp"}}),
			wantErr: "warp",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateGates(p, tt.gs)
			if tt.wantErr == "" {
				assert.Nil(t, err)
				return
			}
			if assert.NotNil(t, err) {
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestCheckResource(t *testing.T) {
	assert.Nil(t, checkResource(core.NewProgram(3, 0), 3))
	assert.EqualError(t, checkResource(core.NewProgram(4, 0), 3),
		"Too many qubits in the program. We only have 3 qubits.")
}
