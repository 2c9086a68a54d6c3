package execshell

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"sort"
)

const environmentAssignmentSeparatorConstant = "="

// OSCommandRunner executes commands as child processes.
type OSCommandRunner struct{}

// NewOSCommandRunner constructs a runner backed by os/exec.
func NewOSCommandRunner() *OSCommandRunner {
	return &OSCommandRunner{}
}

// Run executes the command and returns its captured output. A non-zero exit is
// reported through ExecutionResult.ExitCode rather than as an error.
func (runner *OSCommandRunner) Run(executionContext context.Context, command ShellCommand) (ExecutionResult, error) {
	executable := exec.CommandContext(executionContext, string(command.Name), command.Details.Arguments...)
	executable.Dir = command.Details.WorkingDirectory
	if len(command.Details.EnvironmentVariables) > 0 {
		executable.Env = mergeEnvironment(os.Environ(), command.Details.EnvironmentVariables)
	}
	if len(command.Details.StandardInput) > 0 {
		executable.Stdin = bytes.NewReader(command.Details.StandardInput)
	}

	var standardOutput bytes.Buffer
	var standardError bytes.Buffer
	executable.Stdout = &standardOutput
	executable.Stderr = &standardError

	runError := executable.Run()
	result := ExecutionResult{StandardOutput: standardOutput.String(), StandardError: standardError.String()}
	if runError == nil {
		return result, nil
	}

	var exitError *exec.ExitError
	if errors.As(runError, &exitError) && executionContext.Err() == nil {
		result.ExitCode = exitError.ExitCode()
		return result, nil
	}
	if contextError := executionContext.Err(); contextError != nil {
		return ExecutionResult{}, contextError
	}
	return ExecutionResult{}, runError
}

func mergeEnvironment(base []string, overrides map[string]string) []string {
	keys := make([]string, 0, len(overrides))
	for key := range overrides {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	merged := append([]string{}, base...)
	for _, key := range keys {
		merged = append(merged, key+environmentAssignmentSeparatorConstant+overrides[key])
	}
	return merged
}
