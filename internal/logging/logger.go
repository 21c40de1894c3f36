// Package logging builds the run logger: structured JSON into the export
// directory for after-the-fact debugging, readable console output on stderr.
package logging

import (
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options selects where and how loudly to log.
type Options struct {
	// Dir receives imsgx.log. Empty disables the file core (diagnostics
	// mode runs before an export directory exists).
	Dir   string
	RunID string
	// Quiet raises the console threshold to warnings; the file still gets
	// everything.
	Quiet bool
}

// New creates a zap logger per Options. The file core always records at
// debug level so per-item decode diagnostics survive even a quiet run.
func New(opts Options) (*zap.Logger, error) {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "ts"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	consoleLevel := zapcore.InfoLevel
	if opts.Quiet {
		consoleLevel = zapcore.WarnLevel
	}
	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewConsoleEncoder(encoderCfg), zapcore.AddSync(os.Stderr), consoleLevel),
	}

	if opts.Dir != "" {
		if err := os.MkdirAll(opts.Dir, 0755); err != nil {
			return nil, err
		}
		file, err := os.OpenFile(filepath.Join(opts.Dir, "imsgx.log"),
			os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
		if err != nil {
			return nil, err
		}
		cores = append(cores,
			zapcore.NewCore(zapcore.NewJSONEncoder(encoderCfg), zapcore.AddSync(file), zapcore.DebugLevel))
	}

	logger := zap.New(zapcore.NewTee(cores...),
		zap.Fields(
			zap.String("run", opts.RunID),
			zap.Int("pid", os.Getpid()),
		),
	)
	return logger, nil
}
