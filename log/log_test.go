//go:build unit
// +build unit

package log

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/oqtopus-team/oqtopus-engine/progcheck/core"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestZapLogger(t *testing.T) {
	tests := []struct {
		name      string
		conf      *core.Conf
		wantDebug bool
		wantErr   bool
	}{
		{name: "default level", conf: &core.Conf{LogLevel: "info"}, wantDebug: false},
		{name: "debug dev mode", conf: &core.Conf{LogLevel: "debug", DevMode: true}, wantDebug: true},
		{name: "error level", conf: &core.Conf{LogLevel: "error", DisableStdoutLog: true}, wantDebug: false},
		{
			name:    "missing log dir",
			conf:    &core.Conf{EnableFileLog: true, LogDir: filepath.Join(os.TempDir(), "no-such-progcheck-dir")},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := ZapLogger(tt.conf)
			if tt.wantErr {
				assert.NotNil(t, err)
				return
			}
			assert.Nil(t, err)
			assert.Equal(t, tt.wantDebug, logger.Core().Enabled(zap.DebugLevel))
		})
	}
}

func TestZapLoggerWritesFile(t *testing.T) {
	dir := t.TempDir()
	logger, err := ZapLogger(&core.Conf{EnableFileLog: true, DisableStdoutLog: true, LogDir: dir, LogRotationMaxDays: 1})
	assert.Nil(t, err)
	logger.Info("hello from the test")
	assert.Nil(t, logger.Sync())

	entries, err := os.ReadDir(dir)
	assert.Nil(t, err)
	found := false
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), "progcheck-") {
			b, err := os.ReadFile(filepath.Join(dir, e.Name()))
			assert.Nil(t, err)
			assert.Contains(t, string(b), "hello from the test")
			found = true
		}
	}
	assert.True(t, found)
}

func TestVerdictLogger(t *testing.T) {
	dir := t.TempDir()
	v, err := NewVerdictLogger(dir)
	assert.Nil(t, err)

	p := core.NewProgram(1, 0)
	j, err := core.NewCheckJob(core.IdentityCheck, []string{"p"}, []*core.Program{p})
	assert.Nil(t, err)
	j.SetVerdict(true)
	v.Log(j)

	failed, err := core.NewCheckJob(core.UnitarityCheck, []string{"q"}, []*core.Program{p})
	assert.Nil(t, err)
	failed.SetFailureWithError(fmt.Errorf("boom"))
	v.Log(failed)
	v.Close()

	b, err := os.ReadFile(filepath.Join(dir, dailyFileName(verdictFilePrefix, time.Now())))
	assert.Nil(t, err)
	lines := strings.Split(strings.TrimSpace(string(b)), "\n")
	assert.Len(t, lines, 2)

	var first map[string]interface{}
	assert.Nil(t, jsoniter.UnmarshalFromString(lines[0], &first))
	assert.Equal(t, "Verdict", first["msg"])
	assert.Equal(t, j.ID, first["id"])
	assert.Equal(t, "identity", first["check"])
	assert.Equal(t, true, first["verdict"])

	var second map[string]interface{}
	assert.Nil(t, jsoniter.UnmarshalFromString(lines[1], &second))
	assert.Equal(t, "failed", second["status"])
	assert.Equal(t, "boom", second["message"])
	_, hasVerdict := second["verdict"]
	assert.False(t, hasVerdict)
}

func TestNewVerdictLoggerNeedsWritableDir(t *testing.T) {
	_, err := NewVerdictLogger(filepath.Join(t.TempDir(), "nothing"))
	assert.NotNil(t, err)
}
