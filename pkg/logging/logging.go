// Package logging builds the process logger. Every line carries an ISO-8601
// timestamp. The logger is handed to the pipeline via its context.
package logging

import (
	"io"
	"os"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options configure the logger.
type Options struct {
	// Debug enables V(1) logs and a human readable console encoding.
	Debug bool

	// Output defaults to os.Stderr.
	Output io.Writer
}

// New creates a logr.Logger backed by zap.
func New(options Options) logr.Logger {
	output := options.Output
	if output == nil {
		output = os.Stderr
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	level := zap.NewAtomicLevelAt(zapcore.InfoLevel)

	var encoder zapcore.Encoder
	if options.Debug {
		level.SetLevel(zapcore.DebugLevel)
		encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	} else {
		encoder = zapcore.NewJSONEncoder(encoderConfig)
	}

	core := zapcore.NewCore(encoder, zapcore.AddSync(output), level)

	return zapr.NewLogger(zap.New(core))
}
