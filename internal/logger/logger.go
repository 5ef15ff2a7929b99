// Package logger builds the zap logger shared by the CLI and the API server.
package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

type Options struct {
	Level string
	// Development switches stderr output to the console encoder.
	Development bool
	// File, when set, receives JSON logs through a rotating writer.
	File string
	// Quiet drops the stderr sink, leaving only File.
	Quiet bool
}

func New(opts Options) (*zap.Logger, error) {
	level := zap.NewAtomicLevel()
	if opts.Level != "" {
		if err := level.UnmarshalText([]byte(opts.Level)); err != nil {
			return nil, err
		}
	}

	var cores []zapcore.Core
	if !opts.Quiet {
		enc := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
		if opts.Development {
			ec := zap.NewDevelopmentEncoderConfig()
			ec.EncodeLevel = zapcore.CapitalColorLevelEncoder
			enc = zapcore.NewConsoleEncoder(ec)
		}
		cores = append(cores, zapcore.NewCore(enc, zapcore.Lock(os.Stderr), level))
	}
	if opts.File != "" {
		w := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    10, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
			Compress:   true,
		}
		cores = append(cores, zapcore.NewCore(
			zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
			zapcore.AddSync(w),
			level,
		))
	}
	if len(cores) == 0 {
		return zap.NewNop(), nil
	}

	l := zap.New(zapcore.NewTee(cores...), zap.AddCaller())
	if opts.Development {
		l = l.WithOptions(zap.Development())
	}
	return l, nil
}
