package utils_test

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tyemirov/reactor/internal/utils"
)

const (
	testTaskStartedMessageConstant = "task started"
	testTaskFailedMessageConstant  = "task failed"
	testBuildBannerMessageConstant = "BUILD SUCCEEDED"
)

func captureLoggerOutputs(testInstance *testing.T, logLevel utils.LogLevel, logFormat utils.LogFormat, emit func(utils.LoggerOutputs)) string {
	testInstance.Helper()
	pipeReader, pipeWriter, pipeError := os.Pipe()
	require.NoError(testInstance, pipeError)

	originalStderr := os.Stderr
	os.Stderr = pipeWriter
	loggerOutputs, creationError := utils.NewLoggerFactory().CreateLoggerOutputs(logLevel, logFormat)
	os.Stderr = originalStderr
	require.NoError(testInstance, creationError)

	emit(loggerOutputs)
	_ = loggerOutputs.DiagnosticLogger.Sync()
	_ = loggerOutputs.ConsoleLogger.Sync()

	require.NoError(testInstance, pipeWriter.Close())
	capturedOutput, readError := io.ReadAll(pipeReader)
	require.NoError(testInstance, readError)
	require.NoError(testInstance, pipeReader.Close())
	return string(bytes.TrimSpace(capturedOutput))
}

func TestLoggerFactoryStructuredOutputIsJSON(testInstance *testing.T) {
	output := captureLoggerOutputs(testInstance, utils.LogLevelInfo, utils.LogFormatStructured, func(outputs utils.LoggerOutputs) {
		outputs.DiagnosticLogger.Info(testTaskStartedMessageConstant)
		outputs.ConsoleLogger.Info(testBuildBannerMessageConstant)
	})

	lines := bytes.Split([]byte(output), []byte("\n"))
	require.Len(testInstance, lines, 1)

	var entry map[string]any
	require.NoError(testInstance, json.Unmarshal(lines[0], &entry))
	require.Equal(testInstance, testTaskStartedMessageConstant, entry["message"])
	require.Equal(testInstance, "info", entry["level"])
	require.Contains(testInstance, entry, "timestamp")
	require.Contains(testInstance, entry, "caller")
}

func TestLoggerFactoryConsoleOutputCarriesBanners(testInstance *testing.T) {
	output := captureLoggerOutputs(testInstance, utils.LogLevel(" INFO "), utils.LogFormat("Console"), func(outputs utils.LoggerOutputs) {
		outputs.DiagnosticLogger.Info(testTaskStartedMessageConstant)
		outputs.ConsoleLogger.Info(testBuildBannerMessageConstant)
	})

	lines := bytes.Split([]byte(output), []byte("\n"))
	require.Len(testInstance, lines, 2)
	require.False(testInstance, json.Valid(lines[0]))
	require.Contains(testInstance, string(lines[0]), "INFO")
	require.Contains(testInstance, string(lines[0]), testTaskStartedMessageConstant)
	require.Equal(testInstance, testBuildBannerMessageConstant, string(lines[1]))
}

func TestLoggerFactoryFiltersBelowConfiguredLevel(testInstance *testing.T) {
	output := captureLoggerOutputs(testInstance, utils.LogLevelError, utils.LogFormatStructured, func(outputs utils.LoggerOutputs) {
		outputs.DiagnosticLogger.Debug(testTaskStartedMessageConstant)
		outputs.DiagnosticLogger.Warn(testTaskStartedMessageConstant)
		outputs.DiagnosticLogger.Error(testTaskFailedMessageConstant)
	})

	require.NotContains(testInstance, output, testTaskStartedMessageConstant)
	require.Contains(testInstance, output, testTaskFailedMessageConstant)
}

func TestLoggerFactoryRejectsUnsupportedSettings(testInstance *testing.T) {
	testCases := []struct {
		name          string
		logLevel      utils.LogLevel
		logFormat     utils.LogFormat
		expectedError string
	}{
		{
			name:          "level",
			logLevel:      utils.LogLevel("verbose"),
			logFormat:     utils.LogFormatStructured,
			expectedError: `unsupported log level "verbose"`,
		},
		{
			name:          "format",
			logLevel:      utils.LogLevelDebug,
			logFormat:     utils.LogFormat("xml"),
			expectedError: `unsupported log format "xml"`,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			loggerOutputs, creationError := utils.NewLoggerFactory().CreateLoggerOutputs(testCase.logLevel, testCase.logFormat)
			require.EqualError(testInstance, creationError, testCase.expectedError)
			require.Zero(testInstance, loggerOutputs)
		})
	}
}
