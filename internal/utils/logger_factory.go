package utils

import (
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	logLevelDebugStringConstant          = "debug"
	logLevelInfoStringConstant           = "info"
	logLevelWarnStringConstant           = "warn"
	logLevelErrorStringConstant          = "error"
	logFormatStructuredStringConstant    = "structured"
	logFormatConsoleStringConstant       = "console"
	jsonZapEncodingStringConstant        = "json"
	consoleZapEncodingStringConstant     = "console"
	unsupportedLogLevelTemplateConstant  = "unsupported log level: %s"
	unsupportedLogFormatTemplateConstant = "unsupported log format: %s"
	consoleMessageKeyConstant            = "message"
	consoleLevelKeyConstant              = "level"
)

// LogLevel enumerates supported logging granularities.
type LogLevel string

// Exported log level constants for reuse across packages.
const (
	LogLevelDebug LogLevel = LogLevel(logLevelDebugStringConstant)
	LogLevelInfo  LogLevel = LogLevel(logLevelInfoStringConstant)
	LogLevelWarn  LogLevel = LogLevel(logLevelWarnStringConstant)
	LogLevelError LogLevel = LogLevel(logLevelErrorStringConstant)
)

// LogFormat enumerates supported logger output encodings.
type LogFormat string

// Exported log format constants for reuse across packages.
const (
	LogFormatStructured LogFormat = LogFormat(logFormatStructuredStringConstant)
	LogFormatConsole    LogFormat = LogFormat(logFormatConsoleStringConstant)
)

// LoggerFactory builds zap.Logger instances with consistent configuration.
type LoggerFactory struct {
	consoleOutput io.Writer
}

// LoggerOutputs pairs the diagnostic logger with the console logger that prints bare messages for people.
type LoggerOutputs struct {
	DiagnosticLogger *zap.Logger
	ConsoleLogger    *zap.Logger
}

var logLevelMapping = map[LogLevel]zapcore.Level{
	LogLevelDebug: zapcore.DebugLevel,
	LogLevelInfo:  zapcore.InfoLevel,
	LogLevelWarn:  zapcore.WarnLevel,
	LogLevelError: zapcore.ErrorLevel,
}

var logFormatEncodingMapping = map[LogFormat]string{
	LogFormatStructured: jsonZapEncodingStringConstant,
	LogFormatConsole:    consoleZapEncodingStringConstant,
}

// NewLoggerFactory constructs a logger factory whose console logger writes to standard error.
func NewLoggerFactory() *LoggerFactory {
	return NewLoggerFactoryWithConsoleOutput(os.Stderr)
}

// NewLoggerFactoryWithConsoleOutput constructs a logger factory whose console logger writes to consoleOutput.
func NewLoggerFactoryWithConsoleOutput(consoleOutput io.Writer) *LoggerFactory {
	if consoleOutput == nil {
		consoleOutput = io.Discard
	}
	return &LoggerFactory{consoleOutput: NewFlushingWriter(consoleOutput)}
}

// CreateLogger produces a zap.Logger honoring the requested log level and format.
func (factory *LoggerFactory) CreateLogger(requestedLogLevel LogLevel, requestedLogFormat LogFormat) (*zap.Logger, error) {
	zapLogLevel, levelExists := logLevelMapping[requestedLogLevel]
	if !levelExists {
		return nil, fmt.Errorf(unsupportedLogLevelTemplateConstant, requestedLogLevel)
	}

	encoding, formatExists := logFormatEncodingMapping[requestedLogFormat]
	if !formatExists {
		return nil, fmt.Errorf(unsupportedLogFormatTemplateConstant, requestedLogFormat)
	}

	configuration := zap.NewProductionConfig()
	configuration.Level = zap.NewAtomicLevelAt(zapLogLevel)
	configuration.Encoding = encoding

	logger, buildError := configuration.Build()
	if buildError != nil {
		return nil, buildError
	}

	return logger, nil
}

// CreateLoggerOutputs builds the diagnostic logger and an info-level console logger.
// The console logger omits timestamps and fields and prefixes only warnings and errors.
func (factory *LoggerFactory) CreateLoggerOutputs(requestedLogLevel LogLevel, requestedLogFormat LogFormat) (LoggerOutputs, error) {
	diagnosticLogger, diagnosticError := factory.CreateLogger(requestedLogLevel, requestedLogFormat)
	if diagnosticError != nil {
		return LoggerOutputs{}, diagnosticError
	}

	encoderConfiguration := zapcore.EncoderConfig{
		MessageKey:     consoleMessageKeyConstant,
		LevelKey:       consoleLevelKeyConstant,
		EncodeLevel:    encodeConsoleLevel,
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeDuration: zapcore.StringDurationEncoder,
	}
	consoleCore := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfiguration),
		zapcore.AddSync(factory.consoleOutput),
		zap.NewAtomicLevelAt(zapcore.InfoLevel),
	)

	return LoggerOutputs{DiagnosticLogger: diagnosticLogger, ConsoleLogger: zap.New(consoleCore)}, nil
}

func encodeConsoleLevel(level zapcore.Level, encoder zapcore.PrimitiveArrayEncoder) {
	if level < zapcore.WarnLevel {
		return
	}
	zapcore.CapitalLevelEncoder(level, encoder)
}
