package remote

import (
	"errors"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/promptctl/internal/reconcile"
	"github.com/temirov/promptctl/internal/ui"
)

const engineProviderMissingMessageConstant = "catalog engine provider not configured"

var errEngineProviderMissing = errors.New(engineProviderMissingMessageConstant)

// LoggerProvider yields a zap logger for command execution.
type LoggerProvider func() *zap.Logger

// EngineProvider builds the reconciliation engine for a command invocation.
type EngineProvider func(command *cobra.Command) (*reconcile.Engine, error)

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

func resolveEngine(provider EngineProvider, command *cobra.Command) (*reconcile.Engine, error) {
	if provider == nil {
		return nil, errEngineProviderMissing
	}
	return provider(command)
}

// resolveWritableEngine fails before any remote read or prompt when writes cannot succeed.
func resolveWritableEngine(provider EngineProvider, command *cobra.Command) (*reconcile.Engine, error) {
	engine, engineError := resolveEngine(provider, command)
	if engineError != nil {
		return nil, engineError
	}
	if remoteError := engine.RequireRemote(); remoteError != nil {
		return nil, remoteError
	}
	return engine, nil
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
