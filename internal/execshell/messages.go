package execshell

import (
	"fmt"
	"strings"
)

type messageStage int

const (
	messageStageStart messageStage = iota
	messageStageSuccess
	messageStageFailure
	messageStageExecutionFailure
)

const (
	genericStartTemplateConstant            = "Running %s"
	genericSuccessTemplateConstant          = "Completed %s"
	genericFailureTemplateConstant          = "%s failed with exit code %d%s"
	genericExecutionFailureTemplateConstant = "%s failed: %s"
	workingDirectorySuffixTemplateConstant  = " (in %s)"
	standardErrorSuffixTemplateConstant     = ": %s"
	unknownFailureMessageConstant           = "unknown error"
	defaultWorkingDirectoryLabelConstant    = "current directory"
	fallbackUnknownValueLabelConstant       = "unknown"
	flagPrefixConstant                      = "-"
	gitMessageFlagConstant                  = "-m"
	gitTagsFlagConstant                     = "--tags"
	gitInitSubcommandNameConstant           = "init"
	gitPullSubcommandNameConstant           = "pull"
	gitFetchSubcommandNameConstant          = "fetch"
	gitResetSubcommandNameConstant          = "reset"
	gitAddSubcommandNameConstant            = "add"
	gitCommitSubcommandNameConstant         = "commit"
	gitTagSubcommandNameConstant            = "tag"
	gitPushSubcommandNameConstant           = "push"
	gitRemoteSubcommandNameConstant         = "remote"
)

// stageTemplates holds one template per lifecycle stage. Every template takes
// the subject first and the working directory second.
type stageTemplates struct {
	start            string
	success          string
	failure          string
	executionFailure string
}

var gitMessageTemplates = map[string]stageTemplates{
	gitInitSubcommandNameConstant: {
		start:            "Initializing repository%s in %s",
		success:          "Initialized repository%s in %s",
		failure:          "Failed to initialize repository%s in %s",
		executionFailure: "Unable to initialize repository%s in %s",
	},
	gitPullSubcommandNameConstant: {
		start:            "Pulling %s into %s",
		success:          "Pulled %s into %s",
		failure:          "Failed to pull %s into %s",
		executionFailure: "Unable to pull %s into %s",
	},
	gitFetchSubcommandNameConstant: {
		start:            "Fetching %s in %s",
		success:          "Fetched %s in %s",
		failure:          "Failed to fetch %s in %s",
		executionFailure: "Unable to fetch %s in %s",
	},
	gitResetSubcommandNameConstant: {
		start:            "Aligning with %s in %s",
		success:          "Aligned with %s in %s",
		failure:          "Failed to align with %s in %s",
		executionFailure: "Unable to align with %s in %s",
	},
	gitAddSubcommandNameConstant: {
		start:            "Staging %s in %s",
		success:          "Staged %s in %s",
		failure:          "Failed to stage %s in %s",
		executionFailure: "Unable to stage %s in %s",
	},
	gitCommitSubcommandNameConstant: {
		start:            "Committing %q in %s",
		success:          "Committed %q in %s",
		failure:          "Failed to commit %q in %s",
		executionFailure: "Unable to commit %q in %s",
	},
	gitTagSubcommandNameConstant: {
		start:            "Creating tag %s in %s",
		success:          "Created tag %s in %s",
		failure:          "Failed to create tag %s in %s",
		executionFailure: "Unable to create tag %s in %s",
	},
	gitPushSubcommandNameConstant: {
		start:            "Pushing %s from %s",
		success:          "Pushed %s from %s",
		failure:          "Failed to push %s from %s",
		executionFailure: "Unable to push %s from %s",
	},
	gitRemoteSubcommandNameConstant: {
		start:            "Configuring remote %s in %s",
		success:          "Configured remote %s in %s",
		failure:          "Failed to configure remote %s in %s",
		executionFailure: "Unable to configure remote %s in %s",
	},
}

// CommandMessageFormatter builds human-readable messages for command lifecycle events.
type CommandMessageFormatter struct{}

// BuildStartedMessage formats the message describing a command about to run.
func (formatter CommandMessageFormatter) BuildStartedMessage(command ShellCommand) string {
	return formatter.buildMessage(command, ExecutionResult{}, nil, messageStageStart)
}

// BuildSuccessMessage formats the message describing a completed command with a zero exit code.
func (formatter CommandMessageFormatter) BuildSuccessMessage(command ShellCommand) string {
	return formatter.buildMessage(command, ExecutionResult{}, nil, messageStageSuccess)
}

// BuildFailureMessage formats the message describing a command that returned a non-zero exit code.
func (formatter CommandMessageFormatter) BuildFailureMessage(command ShellCommand, result ExecutionResult) string {
	return formatter.buildMessage(command, result, nil, messageStageFailure)
}

// BuildExecutionFailureMessage formats the message describing an unexpected execution failure.
func (formatter CommandMessageFormatter) BuildExecutionFailureMessage(command ShellCommand, failure error) string {
	return formatter.buildMessage(command, ExecutionResult{}, failure, messageStageExecutionFailure)
}

// IsQuiet reports read-only lookups that do not merit a console line.
func (formatter CommandMessageFormatter) IsQuiet(command ShellCommand) bool {
	if command.Name != CommandGit || len(command.Details.Arguments) == 0 {
		return false
	}
	_, described := gitMessageTemplates[strings.TrimSpace(command.Details.Arguments[0])]
	return !described
}

func (formatter CommandMessageFormatter) buildMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	if command.Name != CommandGit || len(command.Details.Arguments) == 0 {
		return formatter.buildGenericMessage(command, result, failure, stage)
	}

	subcommand := strings.TrimSpace(command.Details.Arguments[0])
	templates, described := gitMessageTemplates[subcommand]
	if !described {
		return formatter.buildGenericMessage(command, result, failure, stage)
	}

	subject := formatter.describeSubject(subcommand, command.Details.Arguments[1:])
	workingDirectory := formatter.describeWorkingDirectory(command)
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(templates.start, subject, workingDirectory)
	case messageStageSuccess:
		return fmt.Sprintf(templates.success, subject, workingDirectory)
	case messageStageFailure:
		return fmt.Sprintf(templates.failure, subject, workingDirectory) + formatter.formatExitSuffix(result)
	default:
		return fmt.Sprintf(templates.executionFailure, subject, workingDirectory) + fmt.Sprintf(standardErrorSuffixTemplateConstant, formatter.describeFailure(failure))
	}
}

func (formatter CommandMessageFormatter) describeSubject(subcommand string, arguments []string) string {
	switch subcommand {
	case gitInitSubcommandNameConstant:
		return ""
	case gitCommitSubcommandNameConstant:
		return formatter.ensureValue(findFlagValue(arguments, gitMessageFlagConstant))
	case gitPushSubcommandNameConstant:
		if containsArgument(arguments, gitTagsFlagConstant) {
			return "tags"
		}
		return formatter.ensureValue(strings.Join(positionalArguments(arguments), " "))
	case gitTagSubcommandNameConstant, gitPullSubcommandNameConstant, gitFetchSubcommandNameConstant, gitResetSubcommandNameConstant:
		return formatter.ensureValue(strings.Join(positionalArguments(arguments), " "))
	case gitRemoteSubcommandNameConstant:
		positional := positionalArguments(arguments)
		if len(positional) > 1 {
			return formatter.ensureValue(positional[1])
		}
		return fallbackUnknownValueLabelConstant
	default:
		positional := positionalArguments(arguments)
		if len(positional) == 0 {
			return "all changes"
		}
		return strings.Join(positional, " ")
	}
}

func (formatter CommandMessageFormatter) buildGenericMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	commandLabel := describeCommand(command) + formatter.formatWorkingDirectorySuffix(command)
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(genericStartTemplateConstant, commandLabel)
	case messageStageSuccess:
		return fmt.Sprintf(genericSuccessTemplateConstant, commandLabel)
	case messageStageFailure:
		return fmt.Sprintf(genericFailureTemplateConstant, commandLabel, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	default:
		return fmt.Sprintf(genericExecutionFailureTemplateConstant, commandLabel, formatter.describeFailure(failure))
	}
}

func (formatter CommandMessageFormatter) formatExitSuffix(result ExecutionResult) string {
	return fmt.Sprintf(" (exit code %d%s)", result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
}

func (formatter CommandMessageFormatter) formatWorkingDirectorySuffix(command ShellCommand) string {
	trimmedWorkingDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(trimmedWorkingDirectory) == 0 {
		return ""
	}
	return fmt.Sprintf(workingDirectorySuffixTemplateConstant, trimmedWorkingDirectory)
}

func (formatter CommandMessageFormatter) formatStandardErrorSuffix(standardError string) string {
	trimmedStandardError := strings.TrimSpace(standardError)
	if len(trimmedStandardError) == 0 {
		return ""
	}
	return fmt.Sprintf(standardErrorSuffixTemplateConstant, trimmedStandardError)
}

func (formatter CommandMessageFormatter) describeWorkingDirectory(command ShellCommand) string {
	trimmedWorkingDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(trimmedWorkingDirectory) == 0 {
		return defaultWorkingDirectoryLabelConstant
	}
	return trimmedWorkingDirectory
}

func (formatter CommandMessageFormatter) describeFailure(failure error) string {
	if failure == nil {
		return unknownFailureMessageConstant
	}
	return failure.Error()
}

func (formatter CommandMessageFormatter) ensureValue(value string) string {
	trimmed := strings.TrimSpace(value)
	if len(trimmed) == 0 {
		return fallbackUnknownValueLabelConstant
	}
	return trimmed
}

func containsArgument(arguments []string, value string) bool {
	for _, argument := range arguments {
		if strings.TrimSpace(argument) == value {
			return true
		}
	}
	return false
}

func findFlagValue(arguments []string, flag string) string {
	for index := 0; index < len(arguments); index++ {
		if strings.TrimSpace(arguments[index]) == flag && index+1 < len(arguments) {
			return strings.TrimSpace(arguments[index+1])
		}
	}
	return ""
}

// positionalArguments drops flags together with the value of -m.
func positionalArguments(arguments []string) []string {
	positional := make([]string, 0, len(arguments))
	for index := 0; index < len(arguments); index++ {
		trimmed := strings.TrimSpace(arguments[index])
		if len(trimmed) == 0 {
			continue
		}
		if trimmed == gitMessageFlagConstant {
			index++
			continue
		}
		if strings.HasPrefix(trimmed, flagPrefixConstant) {
			continue
		}
		positional = append(positional, trimmed)
	}
	return positional
}
