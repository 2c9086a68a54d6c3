package remote

import (
	"github.com/spf13/cobra"

	"github.com/temirov/promptctl/internal/ui"
)

const (
	listUseConstant      = "list"
	listAliasConstant    = "ls"
	listShortDescription = "Compare remote tabs with the local catalog"
)

// ListCommandBuilder assembles the remote list command.
type ListCommandBuilder struct {
	EngineProvider EngineProvider
}

// Build constructs the remote list command.
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
	snapshot := engine.FetchSnapshot(command.Context())
	comparisons, compareError := engine.CompareWithRemote(snapshot)
	if compareError != nil {
		return compareError
	}
	return ui.NewRenderer(command.OutOrStdout()).Comparison(comparisons, snapshot.Present)
}
