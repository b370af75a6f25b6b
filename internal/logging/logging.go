package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Options struct {
	Level  string
	Output io.Writer
	Color  bool
}

// New builds a console logger. An empty level means info.
func New(opts Options) (*zap.Logger, error) {
	raw := strings.TrimSpace(opts.Level)
	if raw == "" {
		raw = "info"
	}
	level, err := zapcore.ParseLevel(raw)
	if err != nil {
		return nil, fmt.Errorf("parse log level: %w", err)
	}

	output := opts.Output
	if output == nil {
		output = os.Stderr
	}

	encoderConfig := zap.NewDevelopmentEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	if opts.Color {
		encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	return zap.New(zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig),
		zapcore.AddSync(output),
		level,
	)), nil
}

// Stderr logs to standard error, colored when it is a terminal.
func Stderr(level string) (*zap.Logger, error) {
	if isatty.IsTerminal(os.Stderr.Fd()) {
		return New(Options{Level: level, Output: colorable.NewColorableStderr(), Color: true})
	}
	return New(Options{Level: level, Output: os.Stderr})
}
