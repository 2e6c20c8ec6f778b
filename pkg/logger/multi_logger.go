package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogCategory represents different log categories
type LogCategory string

const (
	CategoryEngine  LogCategory = "engine"  // Status events pushed by the transfer engine (JSON)
	CategoryControl LogCategory = "control" // Pause/continue/locate commands (JSON)
	CategoryError   LogCategory = "error"   // Application errors (JSON)
)

// Categories lists every file-backed category
var Categories = []LogCategory{CategoryEngine, CategoryControl, CategoryError}

// MultiLogger provides categorized logging with separate output files.
// Every category is also mirrored to the general logger.
type MultiLogger struct {
	general *zap.Logger
	loggers map[LogCategory]*zap.Logger
	files   []*os.File
	config  MultiLoggerConfig
	mu      sync.RWMutex
}

// MultiLoggerConfig contains configuration for multi-output logging
type MultiLoggerConfig struct {
	Level   string // debug, info, warn, error
	LogsDir string // Directory for category files, empty keeps everything on General
	General Config // Console/general logger
}

// NewMultiLogger creates a new multi-output logger
func NewMultiLogger(config MultiLoggerConfig) (*MultiLogger, error) {
	general, err := New(config.General)
	if err != nil {
		return nil, fmt.Errorf("failed to create general logger: %w", err)
	}

	ml := &MultiLogger{
		general: general,
		loggers: make(map[LogCategory]*zap.Logger),
		config:  config,
	}

	if config.LogsDir == "" {
		for _, category := range Categories {
			ml.loggers[category] = general.Named(string(category))
		}
		return ml, nil
	}

	if err := os.MkdirAll(config.LogsDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create logs directory: %w", err)
	}

	level, err := zapcore.ParseLevel(config.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}

	for _, category := range Categories {
		categoryLevel := level
		if category == CategoryError {
			categoryLevel = zapcore.ErrorLevel
		}
		core, err := ml.createCategoryCore(category, categoryLevel)
		if err != nil {
			ml.Close()
			return nil, fmt.Errorf("failed to create %s logger: %w", category, err)
		}
		ml.loggers[category] = zap.New(zapcore.NewTee(general.Core(), core)).Named(string(category))
	}

	return ml, nil
}

// NewNopMultiLogger returns a MultiLogger that discards everything
func NewNopMultiLogger() *MultiLogger {
	ml := &MultiLogger{
		general: zap.NewNop(),
		loggers: make(map[LogCategory]*zap.Logger),
	}
	for _, category := range Categories {
		ml.loggers[category] = ml.general
	}
	return ml
}

// createCategoryCore creates a JSON core writing to the category's dated file
func (ml *MultiLogger) createCategoryCore(category LogCategory, level zapcore.Level) (zapcore.Core, error) {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "ts"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.CallerKey = ""

	file, err := os.OpenFile(ml.CategoryLogPath(category, time.Now()), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}
	ml.files = append(ml.files, file)

	return zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig), zapcore.AddSync(file), level), nil
}

// CategoryLogPath returns <logs_dir>/<category>-YYYYMMDD.log
func (ml *MultiLogger) CategoryLogPath(category LogCategory, date time.Time) string {
	filename := fmt.Sprintf("%s-%s.log", category, date.Format("20060102"))
	return filepath.Join(ml.config.LogsDir, filename)
}

// GetLogger returns the logger for a specific category
func (ml *MultiLogger) GetLogger(category LogCategory) *zap.Logger {
	ml.mu.RLock()
	defer ml.mu.RUnlock()

	if logger, ok := ml.loggers[category]; ok {
		return logger
	}
	return ml.general
}

// General returns the console logger
func (ml *MultiLogger) General() *zap.Logger {
	return ml.general
}

// Engine returns the status event logger
func (ml *MultiLogger) Engine() *zap.Logger {
	return ml.GetLogger(CategoryEngine)
}

// Control returns the command logger
func (ml *MultiLogger) Control() *zap.Logger {
	return ml.GetLogger(CategoryControl)
}

// Error returns the error logger
func (ml *MultiLogger) Error() *zap.Logger {
	return ml.GetLogger(CategoryError)
}

// LogAppError logs an application-level error
func (ml *MultiLogger) LogAppError(msg string, fields ...zap.Field) {
	ml.Error().Error(msg, fields...)
}

// Sync flushes all loggers
func (ml *MultiLogger) Sync() error {
	ml.mu.RLock()
	defer ml.mu.RUnlock()

	var lastErr error
	for _, logger := range ml.loggers {
		if err := logger.Sync(); err != nil {
			lastErr = err
		}
	}
	return lastErr
}

// Close flushes all loggers and closes the category files
func (ml *MultiLogger) Close() error {
	lastErr := ml.Sync()

	ml.mu.Lock()
	defer ml.mu.Unlock()

	for _, f := range ml.files {
		if err := f.Close(); err != nil {
			lastErr = err
		}
	}
	ml.files = nil
	return lastErr
}
