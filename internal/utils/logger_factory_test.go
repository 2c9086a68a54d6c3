package utils_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"os"
	"syscall"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/temirov/promptctl/internal/utils"
)

const testDiagnosticMessage = "catalog engine ready"

// captureStandardError swaps os.Stderr while build runs and returns what the built logger wrote.
func captureStandardError(testInstance *testing.T, build func() (*zap.Logger, error)) (string, error) {
	testInstance.Helper()
	pipeReader, pipeWriter, pipeError := os.Pipe()
	require.NoError(testInstance, pipeError)

	originalStandardError := os.Stderr
	os.Stderr = pipeWriter
	logger, buildError := build()
	os.Stderr = originalStandardError

	if buildError == nil {
		logger.Info(testDiagnosticMessage)
		if syncError := logger.Sync(); syncError != nil {
			require.True(testInstance, errors.Is(syncError, syscall.ENOTSUP) || errors.Is(syncError, syscall.EINVAL) || errors.Is(syncError, syscall.EBADF))
		}
	}
	require.NoError(testInstance, pipeWriter.Close())
	captured, readError := io.ReadAll(pipeReader)
	require.NoError(testInstance, readError)
	require.NoError(testInstance, pipeReader.Close())
	return string(bytes.TrimSpace(captured)), buildError
}

func TestLoggerFactoryCreateLogger(testInstance *testing.T) {
	testCases := []struct {
		name           string
		level          utils.LogLevel
		format         utils.LogFormat
		expectError    bool
		expectJSON     bool
		expectSilenced bool
	}{
		{name: "debug_structured", level: utils.LogLevelDebug, format: utils.LogFormatStructured, expectJSON: true},
		{name: "info_console", level: utils.LogLevelInfo, format: utils.LogFormatConsole},
		{name: "warn_hides_info", level: utils.LogLevelWarn, format: utils.LogFormatConsole, expectSilenced: true},
		{name: "unknown_level", level: utils.LogLevel("verbose"), format: utils.LogFormatStructured, expectError: true},
		{name: "unknown_format", level: utils.LogLevelInfo, format: utils.LogFormat("xml"), expectError: true},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			factory := utils.NewLoggerFactory()
			output, buildError := captureStandardError(testInstance, func() (*zap.Logger, error) {
				return factory.CreateLogger(testCase.level, testCase.format)
			})

			if testCase.expectError {
				require.Error(testInstance, buildError)
				return
			}
			require.NoError(testInstance, buildError)
			if testCase.expectSilenced {
				require.Empty(testInstance, output)
				return
			}
			require.Contains(testInstance, output, testDiagnosticMessage)
			require.Equal(testInstance, testCase.expectJSON, json.Valid([]byte(output)))
		})
	}
}

func TestLoggerFactoryCreateLoggerOutputsWritesBareConsoleMessages(testInstance *testing.T) {
	consoleOutput := &bytes.Buffer{}
	loggerFactory := utils.NewLoggerFactoryWithConsoleOutput(consoleOutput)

	loggerOutputs, creationError := loggerFactory.CreateLoggerOutputs(utils.LogLevelDebug, utils.LogFormatStructured)
	require.NoError(testInstance, creationError)
	require.NotNil(testInstance, loggerOutputs.DiagnosticLogger)

	loggerOutputs.ConsoleLogger.Debug("hidden detail")
	loggerOutputs.ConsoleLogger.Info("Pushed tags from /workspace/app")
	loggerOutputs.ConsoleLogger.Warn("Failed to push tags")

	require.Equal(testInstance, "Pushed tags from /workspace/app\nWARN\tFailed to push tags\n", consoleOutput.String())
}

func TestLoggerFactoryCreateLoggerOutputsRejectsUnknownLevel(testInstance *testing.T) {
	_, creationError := utils.NewLoggerFactoryWithConsoleOutput(io.Discard).CreateLoggerOutputs(utils.LogLevel("verbose"), utils.LogFormatConsole)
	require.Error(testInstance, creationError)
}
