package tabs

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	flagutils "github.com/temirov/promptctl/internal/utils/flags"
)

const (
	deleteUseConstant        = "delete <tab>"
	deleteShortDescription   = "Delete a local tab"
	deleteLongDescription    = "delete removes the tab file and its manifest entry after confirmation."
	deletePromptTemplate     = "Delete tab %s (%s)? [y/N] "
	deletedMessageTemplate   = "deleted %s\n"
	deleteDeclinedMessage    = "delete cancelled\n"
	deleteDeclinedLogMessage = "tab deletion declined"
)

// DeleteCommandBuilder assembles the tabs delete command.
type DeleteCommandBuilder struct {
	LoggerProvider  LoggerProvider
	EngineProvider  EngineProvider
	PrompterFactory PrompterFactory
}

// Build constructs the tabs delete command.
func (builder *DeleteCommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   deleteUseConstant,
		Short: deleteShortDescription,
		Long:  deleteLongDescription,
		Args:  cobra.ExactArgs(1),
		RunE:  builder.run,
	}
	flagutils.BindExecutionFlags(command, flagutils.ExecutionFlagSet{AssumeYes: true})
	return command, nil
}

func (builder *DeleteCommandBuilder) run(command *cobra.Command, arguments []string) error {
	engine, engineError := resolveEngine(builder.EngineProvider, command)
	if engineError != nil {
		return engineError
	}
	listing, lookupError := lookupTab(engine, arguments[0])
	if lookupError != nil {
		return lookupError
	}

	executionOptions := flagutils.ReadExecutionOptions(command)
	prompter := resolvePrompter(builder.PrompterFactory, command, executionOptions.AssumeYes)
	confirmed, promptError := prompter.Confirm(fmt.Sprintf(deletePromptTemplate, listing.Name, listing.ID))
	if promptError != nil {
		return promptError
	}
	if !confirmed {
		resolveLogger(builder.LoggerProvider).Debug(deleteDeclinedLogMessage, zap.String(tabIDLogFieldConstant, listing.ID))
		_, writeError := fmt.Fprint(command.OutOrStdout(), deleteDeclinedMessage)
		return writeError
	}

	if deleteError := engine.DeleteTab(listing.ID); deleteError != nil {
		return deleteError
	}
	_, writeError := fmt.Fprintf(command.OutOrStdout(), deletedMessageTemplate, listing.ID)
	return writeError
}
