package core

import (
	"fmt"

	"go.uber.org/dig"
)

const MockMaxQubits int = 10
const MockMaxShots int = 10000

// UnimplementedBackend answers every run with an empty result.
type UnimplementedBackend struct{}

func (u *UnimplementedBackend) Name() string        { return "unimplemented" }
func (u *UnimplementedBackend) Setup(*Conf) error   { return nil }
func (u *UnimplementedBackend) ReverseOutput() bool { return true }
func (u *UnimplementedBackend) Run(*Program, int) (Counts, error) {
	return Counts{}, nil
}

func (u *UnimplementedBackend) GetDeviceInfo() *DeviceInfo {
	return &DeviceInfo{
		DeviceName:    "unimplementedBackend",
		MaxQubits:     MockMaxQubits,
		MaxShots:      MockMaxShots,
		ReverseOutput: true,
	}
}

// ConstantBackendForTest answers every run with all shots on one outcome.
type ConstantBackendForTest struct {
	UnimplementedBackend
	Outcome string
}

func (c *ConstantBackendForTest) Run(_ *Program, shots int) (Counts, error) {
	return Counts{c.Outcome: uint32(shots)}, nil
}

type failingBackendForTest struct {
	UnimplementedBackend
}

func (failingBackendForTest) Run(p *Program, _ int) (Counts, error) {
	return nil, fmt.Errorf("backend is down")
}

type failingSetupBackendForTest struct {
	UnimplementedBackend
}

func (failingSetupBackendForTest) Setup(*Conf) error {
	return fmt.Errorf("failed to set up")
}

func SCWithUnimplementedContainer() *SystemComponents {
	c := dig.New()
	c.Provide(func() Backend { return &UnimplementedBackend{} })
	c.Provide(func() DBManager { return NewMemoryDB() })
	s := NewSystemComponents(c)
	s.Setup(&Conf{})
	return s
}

func SCWithBackend(b Backend) *SystemComponents {
	c := dig.New()
	c.Provide(func() Backend { return b })
	c.Provide(func() DBManager { return NewMemoryDB() })
	s := NewSystemComponents(c)
	s.Setup(&Conf{})
	return s
}
