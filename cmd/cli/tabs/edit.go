package tabs

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const (
	createUseConstant         = "create <name>"
	createShortDescription    = "Create a tab with a starter block"
	createLongDescription     = "create adds a tab after the last one with version 1.0.0. The identifier is derived from the name."
	createdMessageTemplate    = "created %s (%s) v%s\n"
	renameUseConstant         = "rename <tab> <name>"
	renameShortDescription    = "Rename a local tab"
	renameLongDescription     = "rename replaces the display name of a tab selected by identifier or position. The identifier never changes."
	renamedMessageTemplate    = "renamed %s to %s\n"
	tabIDLogFieldConstant     = "tab_id"
	commandFailedLogMessage   = "tabs command failed"
	argumentSeparatorConstant = " "
)

// CreateCommandBuilder assembles the tabs create command.
type CreateCommandBuilder struct {
	LoggerProvider LoggerProvider
	EngineProvider EngineProvider
}

// Build constructs the tabs create command.
func (builder *CreateCommandBuilder) Build() (*cobra.Command, error) {
	return &cobra.Command{
		Use:   createUseConstant,
		Short: createShortDescription,
		Long:  createLongDescription,
		Args:  cobra.MinimumNArgs(1),
		RunE:  builder.run,
	}, nil
}

func (builder *CreateCommandBuilder) run(command *cobra.Command, arguments []string) error {
	engine, engineError := resolveEngine(builder.EngineProvider, command)
	if engineError != nil {
		return engineError
	}
	tab, createError := engine.CreateTab(strings.Join(arguments, argumentSeparatorConstant))
	if createError != nil {
		resolveLogger(builder.LoggerProvider).Debug(commandFailedLogMessage, zap.Error(createError))
		return createError
	}
	_, writeError := fmt.Fprintf(command.OutOrStdout(), createdMessageTemplate, tab.Name, tab.ID, tab.Version)
	return writeError
}

// RenameCommandBuilder assembles the tabs rename command.
type RenameCommandBuilder struct {
	LoggerProvider LoggerProvider
	EngineProvider EngineProvider
}

// Build constructs the tabs rename command.
func (builder *RenameCommandBuilder) Build() (*cobra.Command, error) {
	return &cobra.Command{
		Use:   renameUseConstant,
		Short: renameShortDescription,
		Long:  renameLongDescription,
		Args:  cobra.MinimumNArgs(2),
		RunE:  builder.run,
	}, nil
}

func (builder *RenameCommandBuilder) run(command *cobra.Command, arguments []string) error {
	engine, engineError := resolveEngine(builder.EngineProvider, command)
	if engineError != nil {
		return engineError
	}
	listing, lookupError := lookupTab(engine, arguments[0])
	if lookupError != nil {
		return lookupError
	}
	entry, renameError := engine.RenameTab(listing.ID, strings.Join(arguments[1:], argumentSeparatorConstant))
	if renameError != nil {
		resolveLogger(builder.LoggerProvider).Debug(commandFailedLogMessage, zap.String(tabIDLogFieldConstant, listing.ID), zap.Error(renameError))
		return renameError
	}
	_, writeError := fmt.Fprintf(command.OutOrStdout(), renamedMessageTemplate, listing.ID, entry.Name)
	return writeError
}
