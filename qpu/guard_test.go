//go:build unit
// +build unit

package qpu

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/oqtopus-team/oqtopus-engine/progcheck/core"
	"github.com/oqtopus-team/oqtopus-engine/progcheck/core/mock_core"
	"github.com/stretchr/testify/assert"
)

type slowBackend struct {
	core.UnimplementedBackend
	delay time.Duration
}

func (s *slowBackend) Run(_ *core.Program, shots int) (core.Counts, error) {
	time.Sleep(s.delay)
	return core.Counts{"0": uint32(shots)}, nil
}

// serialBackend runs one program at a time and is slow on its first run.
type serialBackend struct {
	core.UnimplementedBackend
	mu    sync.Mutex
	runs  int
	delay time.Duration
}

func (s *serialBackend) Run(_ *core.Program, shots int) (core.Counts, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs++
	if s.runs == 1 {
		time.Sleep(s.delay)
	}
	return core.Counts{"0": uint32(shots)}, nil
}

func TestGuardedQPUTimedOutRunKeepsBackendBusy(t *testing.T) {
	b := &serialBackend{delay: 300 * time.Millisecond}
	g := NewGuardedQPU(b)
	assert.Nil(t, g.Setup(&core.Conf{RunTimeout: 50}))
	p := core.NewProgram(1, 1)

	_, err := g.Run(p, 1)
	assert.EqualError(t, err, "run on unimplemented timed out after 50ms")
	// the abandoned run still holds the backend
	_, err = g.Run(p, 1)
	assert.EqualError(t, err, "run on unimplemented timed out after 50ms")

	time.Sleep(400 * time.Millisecond)
	counts, err := g.Run(p, 2)
	assert.Nil(t, err)
	assert.Equal(t, core.Counts{"0": 2}, counts)
	b.mu.Lock()
	assert.Equal(t, 3, b.runs)
	b.mu.Unlock()
}

func TestGuardedQPUPassesThrough(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	p := core.NewProgram(1, 1)
	b := mock_core.NewMockBackend(ctrl)
	b.EXPECT().Name().Return("mock").AnyTimes()
	b.EXPECT().Setup(gomock.Any()).Return(nil)
	b.EXPECT().Run(p, 10).Return(core.Counts{"1": 10}, nil)
	b.EXPECT().Run(p, 5).Return(nil, fmt.Errorf("device offline"))

	g := NewGuardedQPU(b)
	assert.Nil(t, g.Setup(&core.Conf{RateLimit: 1000}))
	assert.NotNil(t, g.limiter)

	counts, err := g.Run(p, 10)
	assert.Nil(t, err)
	assert.Equal(t, core.Counts{"1": 10}, counts)

	_, err = g.Run(p, 5)
	assert.EqualError(t, err, "device offline")
}

func TestGuardedQPUSetupFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	b := mock_core.NewMockBackend(ctrl)
	b.EXPECT().Setup(gomock.Any()).Return(fmt.Errorf("no device"))
	g := NewGuardedQPU(b)
	assert.EqualError(t, g.Setup(&core.Conf{}), "no device")
}

func TestGuardedQPUTimeout(t *testing.T) {
	tests := []struct {
		name      string
		delay     time.Duration
		timeoutMs int
		wantErr   bool
	}{
		{name: "finishes in time", delay: 0, timeoutMs: 1000, wantErr: false},
		{name: "no timeout", delay: 10 * time.Millisecond, timeoutMs: 0, wantErr: false},
		{name: "times out", delay: 500 * time.Millisecond, timeoutMs: 20, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewGuardedQPU(&slowBackend{delay: tt.delay})
			assert.Nil(t, g.Setup(&core.Conf{RunTimeout: tt.timeoutMs}))
			assert.Nil(t, g.limiter)
			counts, err := g.Run(core.NewProgram(1, 1), 3)
			if tt.wantErr {
				assert.EqualError(t, err, "run on unimplemented timed out after 20ms")
				return
			}
			assert.Nil(t, err)
			assert.Equal(t, core.Counts{"0": 3}, counts)
		})
	}
}

func TestGuardedQPUAsExecutor(t *testing.T) {
	s := core.SCWithBackend(NewGuardedQPU(NewStatevectorQPU(seededSetting(true))))
	defer s.TearDown()
	exec, err := s.Executor()
	assert.Nil(t, err)

	p := core.NewProgram(1, 1)
	assert.Nil(t, p.Gate(core.GateX, []int{0}))
	assert.Nil(t, p.Measure([]int{0}, []int{0}))
	assert.Equal(t, core.Counts{"1": 4}, exec.Execute(p, 4))
	assert.Equal(t, core.Counts{}, exec.Execute(p, 0))
}
