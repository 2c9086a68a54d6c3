package tabs

import "github.com/spf13/cobra"

const (
	groupUseConstant      = "tabs"
	groupShortDescription = "Manage the local prompt catalog"
	groupLongDescription  = "tabs groups subcommands that list, create, rename, version, delete and import tabs of the local catalog."
)

// CommandGroupBuilder assembles the tabs command group.
type CommandGroupBuilder struct {
	LoggerProvider  LoggerProvider
	EngineProvider  EngineProvider
	PrompterFactory PrompterFactory
}

// Build constructs the tabs command hierarchy.
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
		&CreateCommandBuilder{LoggerProvider: builder.LoggerProvider, EngineProvider: builder.EngineProvider},
		&RenameCommandBuilder{LoggerProvider: builder.LoggerProvider, EngineProvider: builder.EngineProvider},
		&BumpCommandBuilder{EngineProvider: builder.EngineProvider},
		&BumpAllCommandBuilder{EngineProvider: builder.EngineProvider},
		&DeleteCommandBuilder{LoggerProvider: builder.LoggerProvider, EngineProvider: builder.EngineProvider, PrompterFactory: builder.PrompterFactory},
		&ImportCommandBuilder{LoggerProvider: builder.LoggerProvider, EngineProvider: builder.EngineProvider},
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
