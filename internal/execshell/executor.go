package execshell

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

const (
	loggerNotConfiguredMessageConstant        = "shell executor logger not configured"
	commandRunnerNotConfiguredMessageConstant = "shell executor command runner not configured"
	commandFailedTemplateConstant             = "%s exited with code %d%s"
	commandExecutionTemplateConstant          = "%s could not be executed: %v"
	commandStartedLogMessageConstant          = "command started"
	commandFinishedLogMessageConstant         = "command finished"
	commandFailedLogMessageConstant           = "command failed"
	commandNameLogFieldConstant               = "command"
	commandArgumentsLogFieldConstant          = "arguments"
	workingDirectoryLogFieldConstant          = "working_directory"
	exitCodeLogFieldConstant                  = "exit_code"
	standardErrorLogFieldConstant             = "stderr"
	argumentsSeparatorConstant                = " "
)

// CommandName identifies an external executable.
type CommandName string

// Supported executables.
const (
	CommandGit CommandName = CommandName("git")
)

// CommandDetails describes a single invocation.
type CommandDetails struct {
	Arguments            []string
	WorkingDirectory     string
	EnvironmentVariables map[string]string
	StandardInput        []byte
}

// ShellCommand couples an executable with its invocation details.
type ShellCommand struct {
	Name    CommandName
	Details CommandDetails
}

// ExecutionResult captures the outcome of a finished process.
type ExecutionResult struct {
	StandardOutput string
	StandardError  string
	ExitCode       int
}

// CommandRunner runs a ShellCommand.
type CommandRunner interface {
	Run(executionContext context.Context, command ShellCommand) (ExecutionResult, error)
}

var (
	// ErrLoggerNotConfigured indicates construction without a logger.
	ErrLoggerNotConfigured = errors.New(loggerNotConfiguredMessageConstant)
	// ErrCommandRunnerNotConfigured indicates construction without a runner.
	ErrCommandRunnerNotConfigured = errors.New(commandRunnerNotConfiguredMessageConstant)
)

// CommandFailedError reports a process that exited with a non-zero code.
type CommandFailedError struct {
	Command ShellCommand
	Result  ExecutionResult
}

// Error describes the failed command.
func (failedError CommandFailedError) Error() string {
	standardError := strings.TrimSpace(failedError.Result.StandardError)
	if len(standardError) > 0 {
		standardError = ": " + standardError
	}
	return fmt.Sprintf(commandFailedTemplateConstant, describeCommand(failedError.Command), failedError.Result.ExitCode, standardError)
}

// CommandExecutionError reports a process that could not be started or awaited.
type CommandExecutionError struct {
	Command ShellCommand
	Cause   error
}

// Error describes the execution failure.
func (executionError CommandExecutionError) Error() string {
	return fmt.Sprintf(commandExecutionTemplateConstant, describeCommand(executionError.Command), executionError.Cause)
}

// Unwrap exposes the runner error.
func (executionError CommandExecutionError) Unwrap() error {
	return executionError.Cause
}

// ShellExecutor runs commands with structured logging and lifecycle notifications.
type ShellExecutor struct {
	logger   *zap.Logger
	runner   CommandRunner
	observer CommandEventObserver
}

// NewShellExecutor validates dependencies and constructs an executor. A nil observer discards events.
func NewShellExecutor(logger *zap.Logger, runner CommandRunner, observer CommandEventObserver) (*ShellExecutor, error) {
	if logger == nil {
		return nil, ErrLoggerNotConfigured
	}
	if runner == nil {
		return nil, ErrCommandRunnerNotConfigured
	}
	if observer == nil {
		observer = noopCommandEventObserver{}
	}
	return &ShellExecutor{logger: logger, runner: runner, observer: observer}, nil
}

// ExecuteGit runs git with the provided details.
func (executor *ShellExecutor) ExecuteGit(executionContext context.Context, details CommandDetails) (ExecutionResult, error) {
	return executor.Execute(executionContext, ShellCommand{Name: CommandGit, Details: details})
}

// Execute runs an arbitrary command. Non-zero exit codes surface as CommandFailedError.
func (executor *ShellExecutor) Execute(executionContext context.Context, command ShellCommand) (ExecutionResult, error) {
	commandFields := []zap.Field{
		zap.String(commandNameLogFieldConstant, string(command.Name)),
		zap.Strings(commandArgumentsLogFieldConstant, command.Details.Arguments),
		zap.String(workingDirectoryLogFieldConstant, command.Details.WorkingDirectory),
	}
	executor.logger.Debug(commandStartedLogMessageConstant, commandFields...)
	executor.observer.CommandStarted(command)

	result, runError := executor.runner.Run(executionContext, command)
	if runError != nil {
		executor.logger.Warn(commandFailedLogMessageConstant, append(commandFields, zap.Error(runError))...)
		executor.observer.CommandExecutionFailed(command, runError)
		return ExecutionResult{}, CommandExecutionError{Command: command, Cause: runError}
	}

	executor.observer.CommandCompleted(command, result)
	if result.ExitCode != 0 {
		executor.logger.Warn(commandFailedLogMessageConstant, append(commandFields, zap.Int(exitCodeLogFieldConstant, result.ExitCode), zap.String(standardErrorLogFieldConstant, strings.TrimSpace(result.StandardError)))...)
		return ExecutionResult{}, CommandFailedError{Command: command, Result: result}
	}

	executor.logger.Debug(commandFinishedLogMessageConstant, append(commandFields, zap.Int(exitCodeLogFieldConstant, result.ExitCode))...)
	return result, nil
}

func describeCommand(command ShellCommand) string {
	if len(command.Details.Arguments) == 0 {
		return string(command.Name)
	}
	return string(command.Name) + argumentsSeparatorConstant + strings.Join(command.Details.Arguments, argumentsSeparatorConstant)
}
