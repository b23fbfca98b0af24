package common

import (
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/berrythewa/clipstash/internal/config"
)

// NewLogger creates a new logger instance
func NewLogger(cfg *config.Config) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Log.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	encoding := encodingFor(cfg.Log.Format, os.Stderr)
	if encoding == "console" {
		encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		encoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05.000")
	}

	outputs := []string{"stderr"}
	if cfg.Log.EnableFileLogging && cfg.SystemPaths.LogDir != "" {
		if err := os.MkdirAll(cfg.SystemPaths.LogDir, 0700); err == nil {
			outputs = append(outputs, cfg.LogFile())
		}
	}

	zcfg := zap.Config{
		Level:       zap.NewAtomicLevelAt(level),
		Development: false,
		Sampling: &zap.SamplingConfig{
			Initial:    100,
			Thereafter: 100,
		},
		Encoding:         encoding,
		EncoderConfig:    encoderConfig,
		OutputPaths:      outputs,
		ErrorOutputPaths: []string{"stderr"},
	}

	return zcfg.Build()
}

// encodingFor resolves the "auto" format: console on a terminal, JSON otherwise
func encodingFor(format string, w io.Writer) string {
	switch format {
	case "json":
		return "json"
	case "console":
		return "console"
	}
	if IsTTY(w) {
		return "console"
	}
	return "json"
}

// IsTTY reports whether w is a terminal
func IsTTY(w io.Writer) bool {
	if f, ok := w.(*os.File); ok {
		return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return false
}
