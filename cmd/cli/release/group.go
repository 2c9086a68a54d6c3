package release

import "github.com/spf13/cobra"

const (
	groupUseConstant      = "release"
	groupShortDescription = "Version and publish the application"
	groupLongDescription  = "release groups subcommands that inspect and set the application version, prepare the repository and run the commit, tag and push sequence."
)

// CommandGroupBuilder assembles the release command group.
type CommandGroupBuilder struct {
	LoggerProvider  LoggerProvider
	ServiceProvider ServiceProvider
	PrompterFactory PrompterFactory
}

// Build constructs the release command hierarchy.
func (builder *CommandGroupBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   groupUseConstant,
		Short: groupShortDescription,
		Long:  groupLongDescription,
	}

	subcommandBuilders := []interface {
		Build() (*cobra.Command, error)
	}{
		&VersionCommandBuilder{ServiceProvider: builder.ServiceProvider},
		&SetVersionCommandBuilder{ServiceProvider: builder.ServiceProvider},
		&PrepareCommandBuilder{ServiceProvider: builder.ServiceProvider},
		&CreateCommandBuilder{LoggerProvider: builder.LoggerProvider, ServiceProvider: builder.ServiceProvider, PrompterFactory: builder.PrompterFactory},
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
