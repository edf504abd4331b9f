// Package logging builds the process logger for the oasmeta command.
package logging

import (
	"io"
	"os"

	"github.com/natefinch/lumberjack"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/erraggy/oasmeta/internal/config"
	"github.com/erraggy/oasmeta/oaserrors"
)

// Rotation settings for file logs.
const (
	MaxSizeMB  = 50
	MaxBackups = 7
	MaxAgeDays = 14
)

func encoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		TimeKey:        "ts",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}
}

// New builds a logger from cfg. File output is JSON and rotated by
// lumberjack; console output goes to stdout. With neither configured the
// logger writes JSON to stderr.
//
// The returned closer flushes the logger and closes the file sink.
func New(cfg config.Log) (*zap.Logger, io.Closer, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, nil, &oaserrors.ConfigError{Option: "log.level", Value: cfg.Level, Cause: err}
	}
	return build(cfg, level, os.Stdout, os.Stderr)
}

func build(cfg config.Log, level zapcore.Level, stdout, stderr zapcore.WriteSyncer) (*zap.Logger, io.Closer, error) {
	var (
		cores  []zapcore.Core
		sink   *lumberjack.Logger
		errOut = stderr
	)

	if cfg.File != "" {
		sink = &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    MaxSizeMB,
			MaxBackups: MaxBackups,
			MaxAge:     MaxAgeDays,
			Compress:   true,
		}
		errOut = zapcore.AddSync(sink)
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig()), errOut, level))
	}
	if cfg.Console {
		cores = append(cores, zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig()), stdout, level))
	}
	if len(cores) == 0 {
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig()), stderr, level))
	}

	logger := zap.New(zapcore.NewTee(cores...), zap.AddCaller(), zap.ErrorOutput(errOut))
	return logger, closer{logger: logger, sink: sink}, nil
}

type closer struct {
	logger *zap.Logger
	sink   *lumberjack.Logger
}

func (c closer) Close() error {
	// Sync on stdout/stderr fails on some platforms; ignore it.
	_ = c.logger.Sync()
	if c.sink != nil {
		return c.sink.Close()
	}
	return nil
}
