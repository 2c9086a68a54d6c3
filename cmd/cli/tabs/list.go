package tabs

import (
	"github.com/spf13/cobra"

	"github.com/temirov/promptctl/internal/ui"
)

const (
	listUseConstant      = "list"
	listShortDescription = "List local tabs in display order"
	listAliasConstant    = "ls"
)

// ListCommandBuilder assembles the tabs list command.
type ListCommandBuilder struct {
	EngineProvider EngineProvider
}

// Build constructs the tabs list command.
func (builder *ListCommandBuilder) Build() (*cobra.Command, error) {
	return &cobra.Command{
		Use:     listUseConstant,
		Aliases: []string{listAliasConstant},
		Short:   listShortDescription,
		Args:    cobra.NoArgs,
		RunE:    builder.run,
	}, nil
}

func (builder *ListCommandBuilder) run(command *cobra.Command, _ []string) error {
	engine, engineError := resolveEngine(builder.EngineProvider, command)
	if engineError != nil {
		return engineError
	}
	listings, listError := engine.ListTabs()
	if listError != nil {
		return listError
	}
	return ui.NewRenderer(command.OutOrStdout()).TabListing(listings)
}
