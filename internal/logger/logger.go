package logger

import (
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogLevel represents the different logging levels
type LogLevel int

const (
	DEBUG LogLevel = iota
	INFO
	WARNING
	ERROR
)

// String returns the string representation of the log level
func (l LogLevel) String() string {
	switch l {
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARNING:
		return "WARNING"
	case ERROR:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

func (l LogLevel) zapLevel() zapcore.Level {
	switch l {
	case DEBUG:
		return zapcore.DebugLevel
	case WARNING:
		return zapcore.WarnLevel
	case ERROR:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// Logger wraps a structured zap logger behind the printf-style helpers
type Logger struct {
	level  zap.AtomicLevel
	zap    *zap.Logger
	sugar  *zap.SugaredLogger
	output io.Writer
}

// Global logger instance
var globalLogger *Logger

// ServiceName is attached to every log entry
const ServiceName = "bookapp"

func newLogger(level LogLevel, output io.Writer) *Logger {
	if output == nil {
		output = os.Stdout
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.MessageKey = "message"
	encoderConfig.LevelKey = "level"
	encoderConfig.CallerKey = "caller"

	atomic := zap.NewAtomicLevelAt(level.zapLevel())
	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig),
		zapcore.AddSync(output),
		atomic,
	)

	base := zap.New(core,
		zap.AddCaller(),
		zap.AddCallerSkip(1),
		zap.AddStacktrace(zapcore.ErrorLevel),
	).With(zap.String("service", ServiceName))

	return &Logger{
		level:  atomic,
		zap:    base,
		sugar:  base.Sugar(),
		output: output,
	}
}

// Init initializes the global logger with the specified level and output
func Init(level LogLevel, output io.Writer) {
	globalLogger = newLogger(level, output)
}

// ParseLogLevel parses a string log level and returns the corresponding LogLevel
func ParseLogLevel(level string) LogLevel {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return DEBUG
	case "INFO":
		return INFO
	case "WARNING", "WARN":
		return WARNING
	case "ERROR":
		return ERROR
	default:
		return INFO // Default to INFO level
	}
}

// GetLogger returns the global logger instance
func GetLogger() *Logger {
	if globalLogger == nil {
		// Initialize with default INFO level if not initialized
		Init(INFO, os.Stdout)
	}
	return globalLogger
}

// L returns the structured logger for callers that attach fields.
// Its caller skip is reset so entries point at the call site.
func L() *zap.Logger {
	return GetLogger().zap.WithOptions(zap.AddCallerSkip(-1))
}

// SetLevel changes the log level of the global logger
func SetLevel(level LogLevel) {
	if globalLogger != nil {
		globalLogger.level.SetLevel(level.zapLevel())
	}
}

// Debug logs a debug message
func (l *Logger) Debug(format string, v ...interface{}) {
	l.sugar.Debugf(format, v...)
}

// Info logs an info message
func (l *Logger) Info(format string, v ...interface{}) {
	l.sugar.Infof(format, v...)
}

// Warning logs a warning message
func (l *Logger) Warning(format string, v ...interface{}) {
	l.sugar.Warnf(format, v...)
}

// Error logs an error message
func (l *Logger) Error(format string, v ...interface{}) {
	l.sugar.Errorf(format, v...)
}

// Fatal logs an error message and exits the program
func (l *Logger) Fatal(format string, v ...interface{}) {
	l.sugar.Fatalf(format, v...)
}

// Printf lets the logger serve as a writer for libraries that log with
// Printf, such as the gorm logger. Entries are written at warning level.
func (l *Logger) Printf(format string, v ...interface{}) {
	l.sugar.Warnf(format, v...)
}

// Sync flushes buffered entries
func (l *Logger) Sync() error {
	return l.zap.Sync()
}

// Global convenience functions.
// They go through one extra frame, hence the caller skip on the base logger.
func Debug(format string, v ...interface{}) {
	GetLogger().sugar.Debugf(format, v...)
}

func Info(format string, v ...interface{}) {
	GetLogger().sugar.Infof(format, v...)
}

func Warning(format string, v ...interface{}) {
	GetLogger().sugar.Warnf(format, v...)
}

func Error(format string, v ...interface{}) {
	GetLogger().sugar.Errorf(format, v...)
}

func Fatal(format string, v ...interface{}) {
	GetLogger().sugar.Fatalf(format, v...)
}

// GetLevel returns the current log level
func GetLevel() LogLevel {
	if globalLogger == nil {
		return INFO
	}
	switch globalLogger.level.Level() {
	case zapcore.DebugLevel:
		return DEBUG
	case zapcore.WarnLevel:
		return WARNING
	case zapcore.ErrorLevel:
		return ERROR
	default:
		return INFO
	}
}

// IsDebugEnabled returns true if debug logging is enabled
func IsDebugEnabled() bool {
	return GetLevel() <= DEBUG
}

// IsInfoEnabled returns true if info logging is enabled
func IsInfoEnabled() bool {
	return GetLevel() <= INFO
}
