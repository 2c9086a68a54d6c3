package release

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/promptctl/internal/releases"
	"github.com/temirov/promptctl/internal/ui"
	flagutils "github.com/temirov/promptctl/internal/utils/flags"
)

const (
	createUseConstant        = "create [version]"
	createShortDescription   = "Commit, tag and push a release"
	createLongDescription    = "create writes the version into every artifact when one is given, then commits all changes, tags v<version> annotated with the release notes and pushes the branch and tags."
	createExampleConstant    = "promptctl release create 4.2.0 --notes \"Faster startup\""
	notesFlagName            = "notes"
	notesFlagUsage           = "Tag message (defaults to the release notes file)"
	createPromptTemplate     = "Create release v%s? [y/N] "
	createDeclinedMessage    = "release cancelled\n"
	createDeclinedLogMessage = "release declined"
	unknownVersionMessage    = "application version unknown; pass a version argument"
	versionLogFieldConstant  = "version"
)

var errUnknownVersion = errors.New(unknownVersionMessage)

// CreateCommandBuilder assembles the release create command.
type CreateCommandBuilder struct {
	LoggerProvider  LoggerProvider
	ServiceProvider ServiceProvider
	PrompterFactory PrompterFactory
}

// Build constructs the release create command.
func (builder *CreateCommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:     createUseConstant,
		Short:   createShortDescription,
		Long:    createLongDescription,
		Example: createExampleConstant,
		Args:    cobra.MaximumNArgs(1),
		RunE:    builder.run,
	}
	command.Flags().String(notesFlagName, "", notesFlagUsage)
	flagutils.BindExecutionFlags(command, flagutils.ExecutionFlagSet{DryRun: true, AssumeYes: true, Force: true})
	return command, nil
}

func (builder *CreateCommandBuilder) run(command *cobra.Command, arguments []string) error {
	service, serviceError := resolveService(builder.ServiceProvider, command)
	if serviceError != nil {
		return serviceError
	}
	executionOptions := flagutils.ReadExecutionOptions(command)
	notes, _ := command.Flags().GetString(notesFlagName)

	version := service.Propagator().CurrentVersion()
	if len(arguments) > 0 {
		validatedVersion, validationError := releases.ValidateVersion(arguments[0])
		if validationError != nil {
			return validationError
		}
		version = validatedVersion
	}
	if version == releases.UnknownVersion {
		return errUnknownVersion
	}

	if !executionOptions.DryRun {
		prompter := resolvePrompter(builder.PrompterFactory, command, executionOptions.AssumeYes)
		confirmed, promptError := prompter.Confirm(fmt.Sprintf(createPromptTemplate, version))
		if promptError != nil {
			return promptError
		}
		if !confirmed {
			resolveLogger(builder.LoggerProvider).Debug(createDeclinedLogMessage, zap.String(versionLogFieldConstant, version))
			_, writeError := fmt.Fprint(command.OutOrStdout(), createDeclinedMessage)
			return writeError
		}
		if len(arguments) > 0 {
			changed, applyError := service.Propagator().Apply(version)
			if applyError != nil {
				return applyError
			}
			if reportError := reportChangedArtifacts(command, changed); reportError != nil {
				return reportError
			}
		}
	}

	result, releaseError := service.Release(command.Context(), releases.Options{
		Version: version,
		Notes:   notes,
		DryRun:  executionOptions.DryRun,
		Force:   executionOptions.Force,
	})
	if renderError := ui.NewRenderer(command.OutOrStdout()).ReleaseResult(result); renderError != nil {
		return renderError
	}
	return releaseError
}
