package remote

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/promptctl/internal/reconcile"
	flagutils "github.com/temirov/promptctl/internal/utils/flags"
)

const (
	renameUseConstant         = "rename <tab> <name>"
	renameShortDescription    = "Rename a remote tab"
	reorderUseConstant        = "reorder <position> [position ...]"
	reorderShortDescription   = "Reorder remote tabs"
	reorderLongDescription    = "reorder takes the current positions in their new order, for example `reorder 3 1 2` moves the third tab first."
	deleteUseConstant         = "delete <tab>"
	deleteShortDescription    = "Delete a remote tab"
	deletePromptTemplate      = "Delete remote tab %s (%s)? [y/N] "
	deleteDeclinedMessage     = "delete cancelled\n"
	deleteDeclinedLogMessage  = "remote deletion declined"
	outcomeTemplate           = "%s %s\n"
	manifestPendingTemplate   = "manifest not updated for %s\n"
	renamedVerbConstant       = "renamed"
	deletedVerbConstant       = "deleted"
	reorderedVerbConstant     = "reordered"
	argumentSeparatorConstant = " "
	tabIDLogFieldConstant     = "tab_id"
)

// RenameCommandBuilder assembles the remote rename command.
type RenameCommandBuilder struct {
	EngineProvider EngineProvider
}

// Build constructs the remote rename command.
func (builder *RenameCommandBuilder) Build() (*cobra.Command, error) {
	return &cobra.Command{
		Use:   renameUseConstant,
		Short: renameShortDescription,
		Args:  cobra.MinimumNArgs(2),
		RunE:  builder.run,
	}, nil
}

func (builder *RenameCommandBuilder) run(command *cobra.Command, arguments []string) error {
	engine, engineError := resolveWritableEngine(builder.EngineProvider, command)
	if engineError != nil {
		return engineError
	}
	snapshot := engine.FetchSnapshot(command.Context())
	orderedEntry, lookupError := resolveRemoteTab(snapshot, arguments[0])
	if lookupError != nil {
		return lookupError
	}
	outcome, renameError := engine.RenameRemote(command.Context(), snapshot, orderedEntry.ID, strings.Join(arguments[1:], argumentSeparatorConstant))
	return reportOutcome(command, renamedVerbConstant, outcome, renameError)
}

// DeleteCommandBuilder assembles the remote delete command.
type DeleteCommandBuilder struct {
	LoggerProvider  LoggerProvider
	EngineProvider  EngineProvider
	PrompterFactory PrompterFactory
}

// Build constructs the remote delete command.
func (builder *DeleteCommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   deleteUseConstant,
		Short: deleteShortDescription,
		Args:  cobra.ExactArgs(1),
		RunE:  builder.run,
	}
	flagutils.BindExecutionFlags(command, flagutils.ExecutionFlagSet{AssumeYes: true})
	return command, nil
}

func (builder *DeleteCommandBuilder) run(command *cobra.Command, arguments []string) error {
	engine, engineError := resolveWritableEngine(builder.EngineProvider, command)
	if engineError != nil {
		return engineError
	}
	snapshot := engine.FetchSnapshot(command.Context())
	orderedEntry, lookupError := resolveRemoteTab(snapshot, arguments[0])
	if lookupError != nil {
		return lookupError
	}

	executionOptions := flagutils.ReadExecutionOptions(command)
	prompter := resolvePrompter(builder.PrompterFactory, command, executionOptions.AssumeYes)
	confirmed, promptError := prompter.Confirm(fmt.Sprintf(deletePromptTemplate, orderedEntry.Entry.Name, orderedEntry.ID))
	if promptError != nil {
		return promptError
	}
	if !confirmed {
		resolveLogger(builder.LoggerProvider).Debug(deleteDeclinedLogMessage, zap.String(tabIDLogFieldConstant, orderedEntry.ID))
		_, writeError := fmt.Fprint(command.OutOrStdout(), deleteDeclinedMessage)
		return writeError
	}

	outcome, deleteError := engine.DeleteRemote(command.Context(), snapshot, orderedEntry.ID)
	return reportOutcome(command, deletedVerbConstant, outcome, deleteError)
}

// ReorderCommandBuilder assembles the remote reorder command.
type ReorderCommandBuilder struct {
	EngineProvider EngineProvider
}

// Build constructs the remote reorder command.
func (builder *ReorderCommandBuilder) Build() (*cobra.Command, error) {
	return &cobra.Command{
		Use:   reorderUseConstant,
		Short: reorderShortDescription,
		Long:  reorderLongDescription,
		Args:  cobra.MinimumNArgs(1),
		RunE:  builder.run,
	}, nil
}

func (builder *ReorderCommandBuilder) run(command *cobra.Command, arguments []string) error {
	engine, engineError := resolveWritableEngine(builder.EngineProvider, command)
	if engineError != nil {
		return engineError
	}
	positions, parseError := parsePositions(arguments)
	if parseError != nil {
		return parseError
	}
	snapshot := engine.FetchSnapshot(command.Context())
	outcome, reorderError := engine.ReorderRemote(command.Context(), snapshot, positions)
	return reportOutcome(command, reorderedVerbConstant, outcome, reorderError)
}

func reportOutcome(command *cobra.Command, verb string, outcome reconcile.RemoteOutcome, operationError error) error {
	output := command.OutOrStdout()
	for _, tabID := range outcome.TabIDs {
		if _, writeError := fmt.Fprintf(output, outcomeTemplate, verb, tabID); writeError != nil {
			return writeError
		}
	}
	if operationError != nil {
		if len(outcome.TabIDs) > 0 && !outcome.ManifestWritten {
			_, _ = fmt.Fprintf(output, manifestPendingTemplate, strings.Join(outcome.TabIDs, ", "))
		}
		return operationError
	}
	return nil
}
