package utils

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	unsupportedLogLevelTemplateConstant  = "unsupported log level %q"
	unsupportedLogFormatTemplateConstant = "unsupported log format %q"
	timestampFieldNameConstant           = "timestamp"
	levelFieldNameConstant               = "level"
	messageFieldNameConstant             = "message"
	callerFieldNameConstant              = "caller"
)

// LogLevel enumerates supported diagnostic levels.
type LogLevel string

// Supported log levels.
const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// LogFormat enumerates supported diagnostic encodings.
type LogFormat string

// Supported log formats.
const (
	LogFormatStructured LogFormat = "structured"
	LogFormatConsole    LogFormat = "console"
)

// LoggerOutputs groups the diagnostic logger with the logger used for human-facing messages.
type LoggerOutputs struct {
	DiagnosticLogger *zap.Logger
	ConsoleLogger    *zap.Logger
}

// LoggerFactory builds zap loggers writing to standard error.
type LoggerFactory struct{}

// NewLoggerFactory creates a LoggerFactory.
func NewLoggerFactory() LoggerFactory {
	return LoggerFactory{}
}

// CreateLoggerOutputs builds loggers for the level and format. The console logger only writes
// in console format; structured runs keep standard error machine readable.
func (factory LoggerFactory) CreateLoggerOutputs(logLevel LogLevel, logFormat LogFormat) (LoggerOutputs, error) {
	level, levelError := parseLogLevel(logLevel)
	if levelError != nil {
		return LoggerOutputs{}, levelError
	}

	standardError := zapcore.Lock(os.Stderr)
	switch LogFormat(strings.ToLower(strings.TrimSpace(string(logFormat)))) {
	case LogFormatStructured:
		encoderConfiguration := zap.NewProductionEncoderConfig()
		encoderConfiguration.TimeKey = timestampFieldNameConstant
		encoderConfiguration.LevelKey = levelFieldNameConstant
		encoderConfiguration.MessageKey = messageFieldNameConstant
		encoderConfiguration.CallerKey = callerFieldNameConstant
		encoderConfiguration.EncodeTime = zapcore.ISO8601TimeEncoder
		core := zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfiguration), standardError, level)
		return LoggerOutputs{DiagnosticLogger: zap.New(core, zap.AddCaller()), ConsoleLogger: zap.NewNop()}, nil
	case LogFormatConsole:
		diagnosticConfiguration := zap.NewDevelopmentEncoderConfig()
		diagnosticConfiguration.EncodeLevel = zapcore.CapitalLevelEncoder
		diagnosticConfiguration.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		diagnosticCore := zapcore.NewCore(zapcore.NewConsoleEncoder(diagnosticConfiguration), standardError, level)

		consoleConfiguration := zapcore.EncoderConfig{MessageKey: messageFieldNameConstant, LineEnding: zapcore.DefaultLineEnding}
		consoleCore := zapcore.NewCore(zapcore.NewConsoleEncoder(consoleConfiguration), standardError, level)
		return LoggerOutputs{DiagnosticLogger: zap.New(diagnosticCore), ConsoleLogger: zap.New(consoleCore)}, nil
	default:
		return LoggerOutputs{}, fmt.Errorf(unsupportedLogFormatTemplateConstant, logFormat)
	}
}

func parseLogLevel(logLevel LogLevel) (zapcore.Level, error) {
	switch LogLevel(strings.ToLower(strings.TrimSpace(string(logLevel)))) {
	case LogLevelDebug:
		return zapcore.DebugLevel, nil
	case LogLevelInfo:
		return zapcore.InfoLevel, nil
	case LogLevelWarn:
		return zapcore.WarnLevel, nil
	case LogLevelError:
		return zapcore.ErrorLevel, nil
	default:
		return zapcore.InfoLevel, fmt.Errorf(unsupportedLogLevelTemplateConstant, logLevel)
	}
}
