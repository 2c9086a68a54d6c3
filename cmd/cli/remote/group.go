package remote

import "github.com/spf13/cobra"

const (
	groupUseConstant      = "remote"
	groupShortDescription = "Synchronize the catalog with the GitHub repository"
	groupLongDescription  = "remote groups subcommands that compare, publish, rename, delete and reorder tabs stored in the remote repository."
)

// CommandGroupBuilder assembles the remote command group.
type CommandGroupBuilder struct {
	LoggerProvider  LoggerProvider
	EngineProvider  EngineProvider
	PrompterFactory PrompterFactory
}

// Build constructs the remote command hierarchy.
func (builder *CommandGroupBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   groupUseConstant,
		Short: groupShortDescription,
		Long:  groupLongDescription,
	}

	subcommandBuilders := []interface {
		Build() (*cobra.Command, error)
	}{
		&ListCommandBuilder{EngineProvider: builder.EngineProvider},
		&PushCommandBuilder{LoggerProvider: builder.LoggerProvider, EngineProvider: builder.EngineProvider, PrompterFactory: builder.PrompterFactory},
		&RenameCommandBuilder{EngineProvider: builder.EngineProvider},
		&DeleteCommandBuilder{LoggerProvider: builder.LoggerProvider, EngineProvider: builder.EngineProvider, PrompterFactory: builder.PrompterFactory},
		&ReorderCommandBuilder{EngineProvider: builder.EngineProvider},
	}
	for _, subcommandBuilder := range subcommandBuilders {
		subcommand, buildError := subcommandBuilder.Build()
		if buildError != nil {
			return nil, buildError
		}
		command.AddCommand(subcommand)
	}

	return command, nil
}
