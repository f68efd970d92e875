// internal/logger/logger.go
package logger

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options controls how the root logger is assembled.
type Options struct {
	// Level is a zap level name: debug, info, warn, error.
	Level string
	// File, when set, adds a buffered JSON sink next to the console output.
	File string
}

// New builds the root logger: a colored console core for humans plus an
// optional JSON file core for later inspection. The returned close function
// flushes the file sink and must be called on shutdown.
func New(opts Options) (*zap.Logger, func(), error) {
	level := zap.NewAtomicLevel()
	if opts.Level != "" {
		if err := level.UnmarshalText([]byte(opts.Level)); err != nil {
			return nil, nil, fmt.Errorf("failed to parse log level %q: %w", opts.Level, err)
		}
	}

	cores := []zapcore.Core{consoleCore(level)}
	closeFn := func() {}

	if opts.File != "" {
		// The file writer buffers and flushes on an interval; zap's Sync
		// path goes through SafeFileWriter.Flush on close.
		fw, err := NewSafeFileWriter(opts.File, 2*time.Second, zap.NewNop())
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		jsonEncoder := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
		cores = append(cores, zapcore.NewCore(jsonEncoder, zapcore.AddSync(fw), level))
		closeFn = func() { _ = fw.Close() }
	}

	return zap.New(zapcore.NewTee(cores...)), closeFn, nil
}
