package core

import (
	"fmt"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/oqtopus-team/oqtopus-engine/progcheck/common"
	"go.uber.org/zap"
)

var (
	globalSetting *Setting
	settingMu     sync.Mutex
)

// Setting holds the component sections of a setting file. Components register a
// pointer to their defaults; parsing overwrites the registered values in place.
type Setting struct {
	ComponentSetting map[string]toml.Primitive `toml:"com,omitempty"`

	registered map[string]interface{}
	md         toml.MetaData
}

func newSetting() *Setting {
	return &Setting{
		ComponentSetting: make(map[string]toml.Primitive),
		registered:       make(map[string]interface{}),
	}
}

func ResetSetting() {
	settingMu.Lock()
	defer settingMu.Unlock()
	globalSetting = newSetting()
}

// RegisterSetting registers settingPtr, a pointer to a struct holding defaults,
// under the section [com.<settingName>].
func RegisterSetting(settingName string, settingPtr interface{}) {
	settingMu.Lock()
	defer settingMu.Unlock()
	if globalSetting == nil {
		globalSetting = newSetting()
	}
	globalSetting.registered[settingName] = settingPtr
}

func ParseSettingFromPath(settingsPath string) error {
	tomlString, err := common.ReadSettingsFile(settingsPath)
	if err != nil {
		zap.L().Error(fmt.Sprintf("failed to read setting file/reason:%s", err))
		return err
	}
	return ParseSetting(tomlString)
}

func ParseSetting(tomlString string) error {
	settingMu.Lock()
	defer settingMu.Unlock()
	if globalSetting == nil {
		globalSetting = newSetting()
	}
	return globalSetting.parseSetting(tomlString)
}

func GetComponentSetting(name string) (interface{}, bool) {
	settingMu.Lock()
	defer settingMu.Unlock()
	if globalSetting == nil {
		zap.L().Error("Setting is not initialized")
		return nil, false
	}
	val, ok := globalSetting.registered[name]
	return val, ok
}

func (s *Setting) parseSetting(tomlString string) error {
	md, err := toml.Decode(tomlString, s)
	if err != nil {
		zap.L().Error(fmt.Sprintf("failed to parse setting/reason:%s", err))
		return err
	}
	s.md = md
	for name, prim := range s.ComponentSetting {
		ptr, ok := s.registered[name]
		if !ok {
			zap.L().Warn(fmt.Sprintf("setting section com.%s is not registered, ignored", name))
			continue
		}
		if err := md.PrimitiveDecode(prim, ptr); err != nil {
			zap.L().Error(fmt.Sprintf("failed to decode setting com.%s/reason:%s", name, err))
			return err
		}
		zap.L().Debug(fmt.Sprintf("Setting com.%s is %+v", name, ptr))
	}
	return nil
}
