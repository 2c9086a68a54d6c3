package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

const (
	configurationGroupUseConstant        = "config"
	configurationGroupShortConstant      = "Inspect the effective configuration"
	configurationShowUseConstant         = "show"
	configurationShowShortConstant       = "Print the merged configuration as YAML"
	configurationShowLongConstant        = "show prints the configuration after defaults, the configuration file, PROMPTCTL_* environment variables and flags are applied."
	configurationFileCommentTemplate     = "# loaded from %s\n"
	configurationEmbeddedCommentConstant = "# no configuration file found, using defaults\n"
	configurationIndentConstant          = 2
	configurationProviderMissingConstant = "configuration provider not configured"
)

var errConfigurationProviderMissing = errors.New(configurationProviderMissingConstant)

type configurationCommandBuilder struct {
	ConfigurationProvider func() ApplicationConfiguration
	ConfigFileProvider    func(*cobra.Command) string
}

func (builder *configurationCommandBuilder) Build() (*cobra.Command, error) {
	groupCommand := &cobra.Command{
		Use:   configurationGroupUseConstant,
		Short: configurationGroupShortConstant,
	}
	showCommand := &cobra.Command{
		Use:   configurationShowUseConstant,
		Short: configurationShowShortConstant,
		Long:  configurationShowLongConstant,
		Args:  cobra.NoArgs,
		RunE:  builder.runShow,
	}
	groupCommand.AddCommand(showCommand)
	return groupCommand, nil
}

func (builder *configurationCommandBuilder) runShow(command *cobra.Command, arguments []string) error {
	if builder.ConfigurationProvider == nil {
		return errConfigurationProviderMissing
	}

	output := command.OutOrStdout()
	configFile := ""
	if builder.ConfigFileProvider != nil {
		configFile = builder.ConfigFileProvider(command)
	}
	if len(configFile) > 0 {
		fmt.Fprintf(output, configurationFileCommentTemplate, configFile)
	} else {
		fmt.Fprint(output, configurationEmbeddedCommentConstant)
	}

	encoder := yaml.NewEncoder(output)
	encoder.SetIndent(configurationIndentConstant)
	if encodeError := encoder.Encode(builder.ConfigurationProvider()); encodeError != nil {
		return encodeError
	}
	return encoder.Close()
}
