package log

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/oqtopus-team/oqtopus-engine/progcheck/common"
	"github.com/oqtopus-team/oqtopus-engine/progcheck/core"
	"go.uber.org/zap"
)

const verdictFilePrefix = "verdicts"

// VerdictLogger appends one JSON line per finished check to a file per day.
type VerdictLogger struct {
	dl     *dailyLogger
	logger *slog.Logger
}

func NewVerdictLogger(fileDir string) (*VerdictLogger, error) {
	if err := common.IsDirWritable(fileDir); err != nil {
		return nil, fmt.Errorf("failed to write to %s: %w", fileDir, err)
	}
	dl := newDailyLogger(fileDir, verdictFilePrefix)
	return &VerdictLogger{
		dl:     dl,
		logger: slog.New(slog.NewJSONHandler(dl, nil)),
	}, nil
}

func (v *VerdictLogger) Log(j *core.CheckJob) {
	attrs := []any{
		slog.String("id", j.ID),
		slog.String("check", string(j.Kind)),
		slog.String("programs", strings.Join(j.ProgramNames, ",")),
		slog.String("status", j.Status.String()),
		slog.Duration("elapsed", j.Elapsed()),
	}
	if j.Status == core.SUCCEEDED {
		attrs = append(attrs, slog.Bool("verdict", j.Verdict))
	}
	if j.Message != "" {
		attrs = append(attrs, slog.String("message", j.Message))
	}
	v.logger.Info("Verdict", attrs...)
}

func (v *VerdictLogger) Close() {
	if err := v.dl.Close(); err != nil {
		zap.L().Warn(fmt.Sprintf("failed to close the verdict log/reason:%s", err))
	}
}

type dailyLogger struct {
	mu              sync.Mutex
	fileDir         string
	prefix          string
	currentFileName string
	file            *os.File
}

func newDailyLogger(fileDir, prefix string) *dailyLogger {
	return &dailyLogger{
		fileDir: fileDir,
		prefix:  prefix,
	}
}

func dailyFileName(prefix string, t time.Time) string {
	return fmt.Sprintf("%s-%s.log", prefix, t.Format("2006-01-02"))
}

func (dl *dailyLogger) Write(p []byte) (n int, err error) {
	dl.mu.Lock()
	defer dl.mu.Unlock()

	fileName := dailyFileName(dl.prefix, time.Now())
	if dl.file == nil || dl.currentFileName != fileName {
		if dl.file != nil {
			dl.file.Close()
		}
		var err error
		dl.file, err = os.OpenFile(filepath.Join(dl.fileDir, fileName), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return 0, err
		}
		dl.currentFileName = fileName
	}

	return dl.file.Write(p)
}

func (dl *dailyLogger) Close() error {
	dl.mu.Lock()
	defer dl.mu.Unlock()
	if dl.file != nil {
		err := dl.file.Close()
		dl.file = nil
		return err
	}
	return nil
}
