//go:build unit
// +build unit

package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/dig"
)

func TestSystemComponents(t *testing.T) {
	s := SCWithUnimplementedContainer()
	defer s.TearDown()

	e, err := s.Executor()
	assert.Nil(t, err)
	assert.Equal(t, Counts{}, e.Execute(NewProgram(1, 1), 10))
	assert.True(t, e.ReverseOutput())

	db, err := s.DB()
	assert.Nil(t, err)
	assert.Empty(t, db.List())

	assert.Equal(t, MockMaxQubits, s.GetDeviceInfo().MaxQubits)
}

func TestSystemComponentsFailingBackend(t *testing.T) {
	s := SCWithBackend(&failingBackendForTest{})
	e, err := s.Executor()
	assert.Nil(t, err)
	assert.Equal(t, Counts{}, e.Execute(NewProgram(1, 1), 10))
}

func TestSystemComponentsSetupError(t *testing.T) {
	c := dig.New()
	assert.Nil(t, c.Provide(func() Backend { return &failingSetupBackendForTest{} }))
	assert.Nil(t, c.Provide(func() DBManager { return NewMemoryDB() }))
	s := NewSystemComponents(c)
	err := s.Setup(&Conf{})
	assert.NotNil(t, err)
	assert.Contains(t, err.Error(), "failed to set up")

	empty := NewSystemComponents(dig.New())
	assert.NotNil(t, empty.Setup(&Conf{}))
	_, err = empty.Executor()
	assert.NotNil(t, err)
	assert.Nil(t, empty.GetDeviceInfo())
}
