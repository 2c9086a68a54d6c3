package tabs

import (
	"github.com/spf13/cobra"

	"github.com/temirov/promptctl/internal/reconcile"
	"github.com/temirov/promptctl/internal/ui"
)

const (
	bumpUseConstant         = "bump <tab>"
	bumpShortDescription    = "Increment the patch version of one tab"
	bumpAllUseConstant      = "bump-all"
	bumpAllShortDescription = "Increment the patch version of every tab"
)

// BumpCommandBuilder assembles the tabs bump command.
type BumpCommandBuilder struct {
	EngineProvider EngineProvider
}

// Build constructs the tabs bump command.
func (builder *BumpCommandBuilder) Build() (*cobra.Command, error) {
	return &cobra.Command{
		Use:   bumpUseConstant,
		Short: bumpShortDescription,
		Args:  cobra.ExactArgs(1),
		RunE:  builder.run,
	}, nil
}

func (builder *BumpCommandBuilder) run(command *cobra.Command, arguments []string) error {
	engine, engineError := resolveEngine(builder.EngineProvider, command)
	if engineError != nil {
		return engineError
	}
	listing, lookupError := lookupTab(engine, arguments[0])
	if lookupError != nil {
		return lookupError
	}
	change, bumpError := engine.BumpTab(listing.ID)
	if bumpError != nil {
		return bumpError
	}
	return ui.NewRenderer(command.OutOrStdout()).VersionChanges([]reconcile.VersionChange{change})
}

// BumpAllCommandBuilder assembles the tabs bump-all command.
type BumpAllCommandBuilder struct {
	EngineProvider EngineProvider
}

// Build constructs the tabs bump-all command.
func (builder *BumpAllCommandBuilder) Build() (*cobra.Command, error) {
	return &cobra.Command{
		Use:   bumpAllUseConstant,
		Short: bumpAllShortDescription,
		Args:  cobra.NoArgs,
		RunE:  builder.run,
	}, nil
}

func (builder *BumpAllCommandBuilder) run(command *cobra.Command, _ []string) error {
	engine, engineError := resolveEngine(builder.EngineProvider, command)
	if engineError != nil {
		return engineError
	}
	changes, bumpError := engine.BumpAll()
	renderError := ui.NewRenderer(command.OutOrStdout()).VersionChanges(changes)
	if bumpError != nil {
		return bumpError
	}
	return renderError
}
