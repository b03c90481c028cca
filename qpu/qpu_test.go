//go:build unit
// +build unit

package qpu

import (
	"path/filepath"
	"sync"
	"testing"

	"github.com/oqtopus-team/oqtopus-engine/progcheck/common"
	"github.com/oqtopus-team/oqtopus-engine/progcheck/core"
	"github.com/stretchr/testify/assert"
)

func seededSetting(reverse bool) *DeviceSetting {
	ds := NewDeviceSetting()
	ds.Seed = 42
	ds.ReverseOutput = reverse
	return ds
}

func xThenMeasureAll(t *testing.T) *core.Program {
	t.Helper()
	p := core.NewProgram(2, 2)
	assert.Nil(t, p.Gate(core.GateX, []int{0}))
	assert.Nil(t, p.Measure([]int{0, 1}, []int{0, 1}))
	return p
}

func TestStatevectorQPURunEndianness(t *testing.T) {
	tests := []struct {
		name    string
		reverse bool
		want    string
	}{
		{name: "cbit 0 last", reverse: true, want: "01"},
		{name: "cbit 0 first", reverse: false, want: "10"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := NewStatevectorQPU(seededSetting(tt.reverse))
			counts, err := q.Run(xThenMeasureAll(t), 10)
			assert.Nil(t, err)
			assert.Equal(t, core.Counts{tt.want: 10}, counts)
			assert.Equal(t, tt.reverse, q.ReverseOutput())
		})
	}
}

func TestStatevectorQPURunMidCircuitMeasurement(t *testing.T) {
	p := core.NewProgram(1, 2)
	assert.Nil(t, p.Gate(core.GateX, []int{0}))
	assert.Nil(t, p.Measure([]int{0}, []int{0}))
	assert.Nil(t, p.Gate(core.GateX, []int{0}))
	assert.Nil(t, p.Measure([]int{0}, []int{1}))

	q := NewStatevectorQPU(seededSetting(false))
	counts, err := q.Run(p, 5)
	assert.Nil(t, err)
	assert.Equal(t, core.Counts{"10": 5}, counts)
}

func TestStatevectorQPURunBellPair(t *testing.T) {
	p := core.NewProgram(2, 2)
	assert.Nil(t, p.Gate(core.GateH, []int{0}))
	assert.Nil(t, p.Gate(core.GateCX, []int{0, 1}))
	assert.Nil(t, p.Measure([]int{0, 1}, []int{0, 1}))

	q := NewStatevectorQPU(seededSetting(true))
	counts, err := q.Run(p, 1000)
	assert.Nil(t, err)
	assert.Equal(t, uint64(1000), counts.Total())
	assert.Equal(t, []string{"00", "11"}, counts.Outcomes())
	assert.InDelta(t, 500, counts.Get("00"), 100)
}

func TestStatevectorQPURunWithoutCbits(t *testing.T) {
	p := core.NewProgram(1, 0)
	assert.Nil(t, p.Gate(core.GateH, []int{0}))
	q := NewStatevectorQPU(seededSetting(true))
	counts, err := q.Run(p, 3)
	assert.Nil(t, err)
	assert.Equal(t, core.Counts{"": 3}, counts)
}

func TestStatevectorQPURunValidation(t *testing.T) {
	ds := seededSetting(true)
	ds.MaxQubits = 2
	ds.MaxShots = 100
	q := NewStatevectorQPU(ds)

	tooWide := core.NewProgram(3, 0)
	invalidOp := core.NewProgram(2, 0)
	invalidOp.Operations = append(invalidOp.Operations,
		core.Operation{Kind: core.GateCX, Qubits: []int{1, 1}})
	allowed := core.NewProgram(2, 0)
	assert.Nil(t, allowed.Gate(core.GateCX, []int{0, 1}))

	tests := []struct {
		name    string
		p       *core.Program
		shots   int
		wantErr string
	}{
		{name: "nil program", p: nil, shots: 1, wantErr: "no input program"},
		{name: "zero shots", p: allowed, shots: 0, wantErr: "shots(0) must be in [1, 100]"},
		{name: "too many shots", p: allowed, shots: 101, wantErr: "shots(101) must be in [1, 100]"},
		{name: "too many qubits", p: tooWide, shots: 1, wantErr: "Too many qubits in the program. We only have 2 qubits."},
		{name: "invalid operation", p: invalidOp, shots: 1, wantErr: "operation 0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := q.Run(tt.p, tt.shots)
			if assert.NotNil(t, err) {
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestStatevectorQPUSetup(t *testing.T) {
	path, err := common.GetAssetAbsPath("unit_test_device_setting.toml")
	assert.Nil(t, err)

	q := NewStatevectorQPU(nil)
	assert.Nil(t, q.Setup(&core.Conf{DeviceSettingPath: path}))
	info := q.GetDeviceInfo()
	assert.Equal(t, "unit_test", info.DeviceName)
	assert.Equal(t, 8, info.MaxQubits)
	assert.Equal(t, 2000, info.MaxShots)
	assert.False(t, info.ReverseOutput)
	assert.Equal(t, core.Available, info.Status)
	assert.Equal(t, StatevectorDeviceName, q.Name())

	// ccz is denied by the unit test device
	p := core.NewProgram(3, 0)
	assert.Nil(t, p.Gate(core.GateCCZ, []int{0, 1, 2}))
	_, err = q.Run(p, 1)
	assert.EqualError(t, err, "gate:CCZ is not supported")
}

func TestSetupWhileRunning(t *testing.T) {
	path, err := common.GetAssetAbsPath("unit_test_device_setting.toml")
	assert.Nil(t, err)
	conf := &core.Conf{DeviceSettingPath: path}
	p := xThenMeasureAll(t)

	tests := []struct {
		name string
		qpu  core.Backend
	}{
		{name: "statevector", qpu: NewStatevectorQPU(seededSetting(true))},
		{name: "dummy", qpu: NewDummyQPU(seededSetting(true))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var wg sync.WaitGroup
			wg.Add(2)
			go func() {
				defer wg.Done()
				for i := 0; i < 20; i++ {
					assert.Nil(t, tt.qpu.Setup(conf))
				}
			}()
			go func() {
				defer wg.Done()
				for i := 0; i < 20; i++ {
					_ = tt.qpu.ReverseOutput()
					assert.Contains(t, []int{2000, 100000}, tt.qpu.GetDeviceInfo().MaxShots)
					counts, err := tt.qpu.Run(p, 10)
					if err != nil {
						assert.EqualError(t, err, "dummy failure result")
						continue
					}
					assert.Equal(t, uint64(10), counts.Total())
				}
			}()
			wg.Wait()
			assert.False(t, tt.qpu.ReverseOutput())
			assert.Equal(t, 2000, tt.qpu.GetDeviceInfo().MaxShots)
		})
	}
}

func TestDummyQPU(t *testing.T) {
	p := xThenMeasureAll(t)

	ds := seededSetting(true)
	ds.SuccessProbability = 1
	d := NewDummyQPU(ds)
	counts, err := d.Run(p, 50)
	assert.Nil(t, err)
	assert.Equal(t, uint64(50), counts.Total())
	for _, o := range counts.Outcomes() {
		assert.Len(t, o, 2)
	}

	ds = seededSetting(true)
	ds.SuccessProbability = 0
	d = NewDummyQPU(ds)
	_, err = d.Run(p, 50)
	assert.EqualError(t, err, "dummy failure result")
	assert.Equal(t, DummyDeviceName, d.GetDeviceInfo().DeviceName)
}

func TestLoadDeviceSetting(t *testing.T) {
	ds, err := LoadDeviceSetting(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Nil(t, err)
	assert.Equal(t, NewDeviceSetting(), ds)

	path, err := common.GetAssetAbsPath("unit_test_device_setting.toml")
	assert.Nil(t, err)
	ds, err = LoadDeviceSetting(path)
	assert.Nil(t, err)
	assert.Equal(t, int64(42), ds.Seed)
	assert.False(t, ds.GateSupport.AllowList.Enabled)
	assert.True(t, ds.GateSupport.DenyList.Enabled)
	assert.Equal(t, []string{"ccz", "toffoli"}, ds.GateSupport.DenyList.Gates)
}
