package release

import (
	"errors"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/promptctl/internal/releases"
	"github.com/temirov/promptctl/internal/ui"
)

const serviceProviderMissingMessageConstant = "release service provider not configured"

var errServiceProviderMissing = errors.New(serviceProviderMissingMessageConstant)

// LoggerProvider yields a zap logger for command execution.
type LoggerProvider func() *zap.Logger

// ServiceProvider builds the release service for a command invocation.
type ServiceProvider func(command *cobra.Command) (*releases.Service, error)

// PrompterFactory creates confirmation prompters scoped to a Cobra command.
type PrompterFactory func(command *cobra.Command) ui.ConfirmationPrompter

func resolveLogger(provider LoggerProvider) *zap.Logger {
	if provider == nil {
		return zap.NewNop()
	}
	logger := provider()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

func resolveService(provider ServiceProvider, command *cobra.Command) (*releases.Service, error) {
	if provider == nil {
		return nil, errServiceProviderMissing
	}
	return provider(command)
}

func resolvePrompter(factory PrompterFactory, command *cobra.Command, assumeYes bool) ui.ConfirmationPrompter {
	if assumeYes {
		return ui.AssumeYesPrompter{}
	}
	if factory != nil {
		if prompter := factory(command); prompter != nil {
			return prompter
		}
	}
	return ui.NewIOConfirmationPrompter(command.InOrStdin(), command.OutOrStdout())
}
