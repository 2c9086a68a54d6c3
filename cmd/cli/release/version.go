package release

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/temirov/promptctl/internal/ui"
)

const (
	versionUseConstant         = "version"
	versionShortDescription    = "Show artifact versions, git state and the latest release"
	setVersionUseConstant      = "set-version <version>"
	setVersionShortDescription = "Write a version into every application artifact"
	setVersionLongDescription  = "set-version rewrites the descriptor, the build manifest and the document banner. Missing artifacts are skipped."
	updatedArtifactTemplate    = "updated %s\n"
	noArtifactChangedMessage   = "no artifact changed\n"
	prepareUseConstant         = "prepare"
	prepareShortDescription    = "Initialize or synchronize the repository with its remote"
	prepareInitializedMessage  = "initialized repository\n"
	prepareRemoteMessage       = "remote updated\n"
	preparePulledMessage       = "synchronized with remote\n"
)

// VersionCommandBuilder assembles the release version command.
type VersionCommandBuilder struct {
	ServiceProvider ServiceProvider
}

// Build constructs the release version command.
func (builder *VersionCommandBuilder) Build() (*cobra.Command, error) {
	return &cobra.Command{
		Use:   versionUseConstant,
		Short: versionShortDescription,
		Args:  cobra.NoArgs,
		RunE:  builder.run,
	}, nil
}

func (builder *VersionCommandBuilder) run(command *cobra.Command, _ []string) error {
	service, serviceError := resolveService(builder.ServiceProvider, command)
	if serviceError != nil {
		return serviceError
	}
	overview, overviewError := service.Overview(command.Context())
	if overviewError != nil {
		return overviewError
	}
	return ui.NewRenderer(command.OutOrStdout()).ReleaseOverview(overview)
}

// SetVersionCommandBuilder assembles the release set-version command.
type SetVersionCommandBuilder struct {
	ServiceProvider ServiceProvider
}

// Build constructs the release set-version command.
func (builder *SetVersionCommandBuilder) Build() (*cobra.Command, error) {
	return &cobra.Command{
		Use:   setVersionUseConstant,
		Short: setVersionShortDescription,
		Long:  setVersionLongDescription,
		Args:  cobra.ExactArgs(1),
		RunE:  builder.run,
	}, nil
}

func (builder *SetVersionCommandBuilder) run(command *cobra.Command, arguments []string) error {
	service, serviceError := resolveService(builder.ServiceProvider, command)
	if serviceError != nil {
		return serviceError
	}
	changed, applyError := service.Propagator().Apply(arguments[0])
	writeError := reportChangedArtifacts(command, changed)
	if applyError != nil {
		return applyError
	}
	return writeError
}

// PrepareCommandBuilder assembles the release prepare command.
type PrepareCommandBuilder struct {
	ServiceProvider ServiceProvider
}

// Build constructs the release prepare command.
func (builder *PrepareCommandBuilder) Build() (*cobra.Command, error) {
	return &cobra.Command{
		Use:   prepareUseConstant,
		Short: prepareShortDescription,
		Args:  cobra.NoArgs,
		RunE:  builder.run,
	}, nil
}

func (builder *PrepareCommandBuilder) run(command *cobra.Command, _ []string) error {
	service, serviceError := resolveService(builder.ServiceProvider, command)
	if serviceError != nil {
		return serviceError
	}
	result, prepareError := service.Prepare(command.Context())
	output := command.OutOrStdout()
	if result.Initialized {
		fmt.Fprint(output, prepareInitializedMessage)
	}
	if result.RemoteUpdated {
		fmt.Fprint(output, prepareRemoteMessage)
	}
	if result.Pulled {
		fmt.Fprint(output, preparePulledMessage)
	}
	return prepareError
}

func reportChangedArtifacts(command *cobra.Command, changed []string) error {
	output := command.OutOrStdout()
	if len(changed) == 0 {
		_, writeError := fmt.Fprint(output, noArtifactChangedMessage)
		return writeError
	}
	for _, artifactPath := range changed {
		if _, writeError := fmt.Fprintf(output, updatedArtifactTemplate, artifactPath); writeError != nil {
			return writeError
		}
	}
	return nil
}
