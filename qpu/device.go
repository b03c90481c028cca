package qpu

import (
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/oqtopus-team/oqtopus-engine/progcheck/common"
	"go.uber.org/zap"
)

type DeviceSetting struct {
	DeviceName    string `toml:"device_name"`
	DeviceType    string `toml:"device_type"`
	ProviderName  string `toml:"provider_name"`
	MaxQubits     int    `toml:"max_qubits"`
	MaxShots      int    `toml:"max_shots"`
	ReverseOutput bool   `toml:"reverse_output"`
	// 0 seeds from the clock
	Seed               int64        `toml:"seed"`
	SuccessProbability float64      `toml:"success_probability"`
	GateSupport        *GateSupport `toml:"gate_support"`
}

type GateSupport struct {
	AllowList *GateFilter `toml:"allow_list"`
	DenyList  *GateFilter `toml:"deny_list"`
}

type GateFilter struct {
	Enabled bool
	Gates   []string `toml:"gates"`
}

// LoadDeviceSetting reads path over the defaults. A missing file yields the defaults.
func LoadDeviceSetting(path string) (*DeviceSetting, error) {
	ds := NewDeviceSetting()
	blob, assetErr := common.ReadFile(path)
	if assetErr != nil {
		zap.L().Info(fmt.Sprintf("Failed to read file:%s Reason:%s", path, assetErr))
		return ds, nil
	}
	if _, err := toml.Decode(blob, ds); err != nil {
		zap.L().Error(fmt.Sprintf("failed to decode blob:%s", blob))
		return &DeviceSetting{}, err
	}
	if ds.GateSupport == nil {
		ds.GateSupport = NewGateSupport()
	}
	if ds.GateSupport.AllowList == nil {
		ds.GateSupport.AllowList = &GateFilter{}
	}
	if ds.GateSupport.DenyList == nil {
		ds.GateSupport.DenyList = &GateFilter{}
	}
	return ds, nil
}

func NewDeviceSetting() *DeviceSetting {
	return &DeviceSetting{
		DeviceName:         StatevectorDeviceName,
		DeviceType:         "simulator",
		ProviderName:       DefaultProviderName,
		MaxQubits:          20,
		MaxShots:           100000,
		ReverseOutput:      true,
		SuccessProbability: 0.9,
		GateSupport:        NewGateSupport(),
	}
}

func NewGateSupport() *GateSupport {
	return &GateSupport{
		AllowList: &GateFilter{},
		DenyList:  &GateFilter{},
	}
}

func NewGateSupportWithAllowList(f *GateFilter) *GateSupport {
	return &GateSupport{
		AllowList: f,
		DenyList:  &GateFilter{},
	}
}

func NewGateSupportWithDenyList(f *GateFilter) *GateSupport {
	return &GateSupport{
		AllowList: &GateFilter{},
		DenyList:  f,
	}
}
