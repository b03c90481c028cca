package qpu

import (
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/oqtopus-team/oqtopus-engine/progcheck/core"
	"go.uber.org/zap"
)

const StatevectorDeviceName = "statevector"
const DummyDeviceName = "DummyQPU"
const DefaultProviderName = "progcheck"

func newRandGenerator(seed int64) *rand.Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}

// StatevectorQPU simulates programs exactly. Measurements collapse the state, so
// programs measuring in the middle are simulated shot by shot from the first
// measurement on.
type StatevectorQPU struct {
	deviceSetting *DeviceSetting

	mu            sync.Mutex
	randGenerator *rand.Rand
}

func NewStatevectorQPU(ds *DeviceSetting) *StatevectorQPU {
	if ds == nil {
		ds = NewDeviceSetting()
	}
	return &StatevectorQPU{
		deviceSetting: ds,
		randGenerator: newRandGenerator(ds.Seed),
	}
}

func (q *StatevectorQPU) Name() string {
	return StatevectorDeviceName
}

func (q *StatevectorQPU) Setup(conf *core.Conf) error {
	zap.L().Debug("setting up statevector QPU")
	ds, err := LoadDeviceSetting(conf.DeviceSettingPath)
	if err != nil {
		zap.L().Error(fmt.Sprintf("Failed to load a device setting. Reason:%s", err))
		return err
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	q.deviceSetting = ds
	q.randGenerator = newRandGenerator(ds.Seed)
	return nil
}

// setting returns the device setting in effect. Setup may replace it.
func (q *StatevectorQPU) setting() *DeviceSetting {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.deviceSetting
}

func (q *StatevectorQPU) ReverseOutput() bool {
	return q.setting().ReverseOutput
}

func (q *StatevectorQPU) GetDeviceInfo() *core.DeviceInfo {
	ds := q.setting()
	return &core.DeviceInfo{
		DeviceName:    ds.DeviceName,
		ProviderName:  ds.ProviderName,
		Type:          ds.DeviceType,
		Status:        core.Available,
		MaxQubits:     ds.MaxQubits,
		MaxShots:      ds.MaxShots,
		ReverseOutput: ds.ReverseOutput,
	}
}

func (q *StatevectorQPU) Run(p *core.Program, shots int) (core.Counts, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	ds := q.deviceSetting
	if err := validateProgram(p, shots, ds); err != nil {
		return nil, err
	}

	first := len(p.Operations)
	terminal := true
	for i, op := range p.Operations {
		if op.IsMeasurement() {
			if first == len(p.Operations) {
				first = i
			}
		} else if first < i {
			terminal = false
			break
		}
	}

	prefix := newStateVector(p.QubitCount)
	for _, op := range p.Operations[:first] {
		prefix.applyGate(op)
	}

	counts := make(core.Counts)
	cbits := make([]byte, p.CbitCount)
	for shot := 0; shot < shots; shot++ {
		for i := range cbits {
			cbits[i] = '0'
		}
		if terminal {
			// the tail only measures, so one Born sample fixes every cbit
			idx := prefix.sample(q.randGenerator)
			for _, op := range p.Operations[first:] {
				for k, qb := range op.Qubits {
					cbits[op.Cbits[k]] = '0' + byte((idx>>uint(qb))&1)
				}
			}
		} else {
			s := prefix.clone()
			for _, op := range p.Operations[first:] {
				if !op.IsMeasurement() {
					s.applyGate(op)
					continue
				}
				for k, qb := range op.Qubits {
					cbits[op.Cbits[k]] = '0' + byte(s.measure(qb, q.randGenerator))
				}
			}
		}
		counts[outcome(cbits, ds.ReverseOutput)]++
	}
	return counts, nil
}

// outcome writes cbit 0 first, or last when reverse is set.
func outcome(cbits []byte, reverse bool) string {
	if !reverse {
		return string(cbits)
	}
	var b strings.Builder
	b.Grow(len(cbits))
	for i := len(cbits) - 1; i >= 0; i-- {
		b.WriteByte(cbits[i])
	}
	return b.String()
}

// DummyQPU answers with uniformly random outcomes and fails a run with
// probability 1 - SuccessProbability. It does not simulate anything.
type DummyQPU struct {
	deviceSetting *DeviceSetting

	mu            sync.Mutex
	randGenerator *rand.Rand
}

func NewDummyQPU(ds *DeviceSetting) *DummyQPU {
	if ds == nil {
		ds = NewDeviceSetting()
	}
	return &DummyQPU{
		deviceSetting: ds,
		randGenerator: newRandGenerator(ds.Seed),
	}
}

func (d *DummyQPU) Name() string {
	return DummyDeviceName
}

func (d *DummyQPU) Setup(conf *core.Conf) error {
	zap.L().Debug("setting up Dummy-QPU")
	ds, err := LoadDeviceSetting(conf.DeviceSettingPath)
	if err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.deviceSetting = ds
	d.randGenerator = newRandGenerator(ds.Seed)
	return nil
}

func (d *DummyQPU) setting() *DeviceSetting {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.deviceSetting
}

func (d *DummyQPU) ReverseOutput() bool {
	return d.setting().ReverseOutput
}

func (d *DummyQPU) GetDeviceInfo() *core.DeviceInfo {
	ds := d.setting()
	return &core.DeviceInfo{
		DeviceName:    DummyDeviceName,
		ProviderName:  ds.ProviderName,
		Type:          "DummyQPU",
		Status:        core.Available,
		MaxQubits:     ds.MaxQubits,
		MaxShots:      ds.MaxShots,
		ReverseOutput: ds.ReverseOutput,
	}
}

func (d *DummyQPU) Run(p *core.Program, shots int) (core.Counts, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := validateProgram(p, shots, d.deviceSetting); err != nil {
		return nil, err
	}
	if !d.successOrFailure() {
		return nil, fmt.Errorf("dummy failure result")
	}
	counts := make(core.Counts)
	b := make([]byte, p.CbitCount)
	for shot := 0; shot < shots; shot++ {
		for i := range b {
			b[i] = '0' + byte(d.randGenerator.Intn(2))
		}
		counts[string(b)]++
	}
	return counts, nil
}

// successOrFailure is called with d.mu held.
func (d *DummyQPU) successOrFailure() bool {
	return d.randGenerator.Float64() < d.deviceSetting.SuccessProbability
}
