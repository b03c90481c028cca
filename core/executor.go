package core

import (
	"fmt"

	"go.uber.org/zap"
)

type DeviceInfo struct {
	DeviceName    string       `json:"device_name"`
	ProviderName  string       `json:"provider_name"`
	Type          string       `json:"type"`
	Status        DeviceStatus `json:"status"`
	MaxQubits     int          `json:"max_qubits"`
	MaxShots      int          `json:"max_shots"`
	ReverseOutput bool         `json:"reverse_output"`
}

type DeviceStatus int

const (
	Available DeviceStatus = iota
	Unavailable
)

func (ds DeviceStatus) String() string {
	switch ds {
	case Available:
		return "Available"
	case Unavailable:
		return "Unavailable"
	default:
		return "Unknown"
	}
}

// Backend executes programs. Implementations report failures as errors and
// declare whether their outcome strings put cbit 0 last.
type Backend interface {
	Name() string
	Setup(*Conf) error
	Run(p *Program, shots int) (Counts, error)
	ReverseOutput() bool
	GetDeviceInfo() *DeviceInfo
}

// Executor is the capability the relation checks depend on: run a program for a
// number of shots and get a result distribution back.
type Executor interface {
	Execute(p *Program, shots int) Counts
	ReverseOutput() bool
}

type lossyExecutor struct {
	backend Backend
}

// NewExecutor adapts a Backend to an Executor. A failed run is logged and reported
// as an empty result, which the checks treat as "no observation".
func NewExecutor(b Backend) Executor {
	return &lossyExecutor{backend: b}
}

func (e *lossyExecutor) Execute(p *Program, shots int) Counts {
	if shots <= 0 {
		zap.L().Warn(fmt.Sprintf("[%s] refused to run with %d shots", e.backend.Name(), shots))
		return Counts{}
	}
	counts, err := e.backend.Run(p, shots)
	if err != nil {
		zap.L().Warn(fmt.Sprintf("[%s] failed to run a program/reason:%s", e.backend.Name(), err))
		return Counts{}
	}
	if counts == nil {
		return Counts{}
	}
	return counts
}

func (e *lossyExecutor) ReverseOutput() bool {
	return e.backend.ReverseOutput()
}
