package log

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	rotate "github.com/lestrrat-go/file-rotatelogs"
	"github.com/oqtopus-team/oqtopus-engine/progcheck/core"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func ZapLogger(conf *core.Conf) (*zap.Logger, error) {
	var encoder zapcore.Encoder
	if conf.DevMode {
		encoder = zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	} else {
		c := zap.NewProductionEncoderConfig()
		c.EncodeTime = zapcore.ISO8601TimeEncoder //Not use UnixTime
		c.TimeKey = "timestamp"
		encoder = zapcore.NewJSONEncoder(c)
	}
	var level zap.AtomicLevel
	switch conf.LogLevel {
	case "debug":
		level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "warn":
		level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	default:
		level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}

	cores := []zapcore.Core{}
	if conf.EnableFileLog {
		rotater, err := makeRotator(conf.LogDir, conf.LogRotationMaxDays)
		if err != nil {
			return &zap.Logger{}, err
		}
		syncer := zapcore.AddSync(rotater)
		rotateCore := zapcore.NewCore(
			encoder,
			syncer,
			level)
		cores = append(cores, rotateCore)
	}
	if !conf.DisableStdoutLog {
		// stdout carries the report, so logs go to stderr
		debugCore := zapcore.NewCore(
			encoder,
			zapcore.Lock(os.Stderr),
			level)
		cores = append(cores, debugCore)
	}
	core := zapcore.NewTee(cores...)
	return zap.New(core, zap.AddCaller()), nil
}

func makeRotator(dirPath string, rotationMaxDays int) (*rotate.RotateLogs, error) {
	info, err := os.Stat(dirPath)
	if err != nil {
		return &rotate.RotateLogs{}, fmt.Errorf("directory:%s is not found", dirPath)
	}
	if info.Mode().Perm()&(1<<uint(7)) == 0 {
		return &rotate.RotateLogs{}, fmt.Errorf("%s is not a writable directory", dirPath)
	}
	rotator, err := rotate.New(
		filepath.Join(dirPath, "progcheck-%Y-%m-%d.log"),
		rotate.WithMaxAge(time.Duration(rotationMaxDays)*24*time.Hour),
		rotate.WithRotationTime(time.Hour))
	if err != nil {
		return &rotate.RotateLogs{}, err
	}
	return rotator, nil
}

// SetZap builds the logger for conf and installs it as the global zap logger.
func SetZap(conf *core.Conf) (*zap.Logger, error) {
	logger, err := ZapLogger(conf)
	if err != nil {
		return nil, fmt.Errorf("failed to setup logger: %w", err)
	}
	zap.ReplaceGlobals(logger)
	zap.L().Info("Starting logger")
	zap.L().Info(fmt.Sprintf("DevMode is %t", conf.DevMode))
	zap.L().Info(fmt.Sprintf("Log rotation max days is %d", conf.LogRotationMaxDays))
	return logger, nil
}

func LogVersion(version string) {
	zap.L().Info("progcheck version:" + version)
}
