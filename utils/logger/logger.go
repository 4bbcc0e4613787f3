// Package logger sets up the process wide zap logger of the extractor.
package logger

import (
	"io"
	"os"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	Log   = zap.NewNop()
	Sugar = Log.Sugar()
)

// log file rotation
const (
	fileMaxSizeMB  = 20
	fileMaxBackups = 3
)

// New builds a logger that prints plain lines to console and, when file is
// not empty, JSON lines into a rotated file. An empty level means info.
func New(level string, console io.Writer, file string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, errors.Wrap(err, "Failed to parse log level")
	}

	consoleCfg := zap.NewDevelopmentEncoderConfig()
	consoleCfg.TimeKey = ""
	consoleCfg.CallerKey = ""
	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewConsoleEncoder(consoleCfg), zapcore.Lock(zapcore.AddSync(console)), lvl),
	}

	if file != "" {
		rotated := &lumberjack.Logger{
			Filename:   file,
			MaxSize:    fileMaxSizeMB,
			MaxBackups: fileMaxBackups,
			LocalTime:  true,
		}
		fileCfg := zap.NewProductionEncoderConfig()
		fileCfg.EncodeTime = zapcore.ISO8601TimeEncoder
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(fileCfg), zapcore.AddSync(rotated), lvl))
	}
	return zap.New(zapcore.NewTee(cores...)), nil
}

// Init replaces Log and Sugar with a logger writing to stderr and file.
func Init(level, file string) error {
	l, err := New(level, os.Stderr, file)
	if err != nil {
		return err
	}
	Log, Sugar = l, l.Sugar()
	return nil
}

func Sync() {
	_ = Log.Sync()
}
