package core

import (
	"fmt"

	"go.uber.org/dig"
	"go.uber.org/zap"
)

type DBManager interface {
	Setup(*Conf) error
	Insert(*CheckJob) error
	Get(string) (*CheckJob, error)
	Update(*CheckJob) error
	Delete(string) error
	List() []*CheckJob
}

type SystemComponents struct {
	*dig.Container
}

func NewSystemComponents(con *dig.Container) *SystemComponents {
	return &SystemComponents{con}
}

func (s *SystemComponents) Setup(conf *Conf) error {
	zap.L().Debug("Setting up DB")
	err := s.Invoke(
		func(d DBManager) error {
			return d.Setup(conf)
		})
	if err != nil {
		return err
	}

	zap.L().Debug("Setting up backend")
	err = s.Invoke(
		func(b Backend) error {
			return b.Setup(conf)
		})
	if err != nil {
		return err
	}
	return nil
}

func (s *SystemComponents) TearDown() {
	_ = s.Invoke(
		func(b Backend) {
			zap.L().Debug(fmt.Sprintf("tearing down backend %s", b.Name()))
		})
}

// Executor wraps the provided backend into the capability the checks run against.
func (s *SystemComponents) Executor() (Executor, error) {
	var e Executor
	err := s.Invoke(
		func(b Backend) {
			e = NewExecutor(b)
		})
	return e, err
}

func (s *SystemComponents) DB() (DBManager, error) {
	var db DBManager
	err := s.Invoke(
		func(d DBManager) {
			db = d
		})
	return db, err
}

func (s *SystemComponents) GetDeviceInfo() *DeviceInfo {
	var deviceInfo *DeviceInfo
	_ = s.Invoke(
		func(b Backend) {
			deviceInfo = b.GetDeviceInfo()
		})
	return deviceInfo
}
