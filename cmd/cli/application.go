package cli

import (
	"context"
	"errors"
	"fmt"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/temirov/promptctl/cmd/cli/release"
	"github.com/temirov/promptctl/cmd/cli/remote"
	"github.com/temirov/promptctl/cmd/cli/tabs"
	"github.com/temirov/promptctl/internal/reconcile"
	"github.com/temirov/promptctl/internal/releases"
	"github.com/temirov/promptctl/internal/ui"
	"github.com/temirov/promptctl/internal/utils"
	flagutils "github.com/temirov/promptctl/internal/utils/flags"
)

const (
	applicationNameConstant                 = "promptctl"
	applicationShortDescriptionConstant     = "Manage the AI Prompts Manager catalog and releases"
	applicationLongDescriptionConstant      = "promptctl edits the local tab catalog, publishes it to the GitHub repository the application reads prompts from, and cuts application releases."
	configFileFlagNameConstant              = "config"
	configFileFlagUsageConstant             = "Optional path to a configuration file (YAML)."
	logLevelFlagNameConstant                = "log-level"
	logLevelFlagDescriptionConstant         = "Override the configured log level."
	logFormatFlagNameConstant               = "log-format"
	logFormatFlagDescriptionConstant        = "Override the configured log format."
	projectRootFlagNameConstant             = "project-root"
	projectRootFlagUsageConstant            = "Project directory that relative catalog and artifact paths resolve against."
	environmentPrefixConstant               = "PROMPTCTL"
	configurationNameConstant               = "config"
	configurationTypeConstant               = "yaml"
	configurationInitializedMessageConstant = "configuration initialized"
	configurationLogLevelFieldConstant      = "log_level"
	configurationLogFormatFieldConstant     = "log_format"
	configurationFileFieldConstant          = "config_file"
	configurationLoadErrorTemplateConstant  = "unable to load configuration: %w"
	loggerCreationErrorTemplateConstant     = "unable to create logger: %w"
	loggerSyncErrorTemplateConstant         = "unable to flush logger: %w"
)

var (
	logLevelChoices  = []string{string(utils.LogLevelDebug), string(utils.LogLevelInfo), string(utils.LogLevelWarn), string(utils.LogLevelError)}
	logFormatChoices = []string{string(utils.LogFormatConsole), string(utils.LogFormatStructured)}
)

// Application wires the Cobra root command, configuration loader, and structured logger.
type Application struct {
	rootCommand            *cobra.Command
	configurationLoader    *utils.ConfigurationLoader
	loggerFactory          *utils.LoggerFactory
	logger                 *zap.Logger
	consoleLogger          *zap.Logger
	configuration          ApplicationConfiguration
	configurationMetadata  utils.LoadedConfiguration
	configurationFilePath  string
	logLevelFlagValue      string
	logFormatFlagValue     string
	projectRootFlagValue   string
	commandContextAccessor utils.CommandContextAccessor
	dependencies           serviceDependencies
}

// NewApplication assembles a fully wired CLI application instance.
func NewApplication() *Application {
	return newApplication(defaultServiceDependencies(), utils.NewLoggerFactory())
}

func newApplication(dependencies serviceDependencies, loggerFactory *utils.LoggerFactory) *Application {
	configurationLoader := utils.NewConfigurationLoader(
		configurationNameConstant,
		configurationTypeConstant,
		environmentPrefixConstant,
		utils.DefaultSearchPaths(applicationNameConstant),
	)
	configurationLoader.SetEmbeddedConfiguration(DefaultConfigurationDocument())

	application := &Application{
		configurationLoader:    configurationLoader,
		loggerFactory:          loggerFactory,
		logger:                 zap.NewNop(),
		consoleLogger:          zap.NewNop(),
		commandContextAccessor: utils.NewCommandContextAccessor(),
		dependencies:           dependencies,
	}

	cobraCommand := &cobra.Command{
		Use:           applicationNameConstant,
		Short:         applicationShortDescriptionConstant,
		Long:          applicationLongDescriptionConstant,
		Version:       Version(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(command *cobra.Command, arguments []string) error {
			return application.initializeConfiguration(command)
		},
		RunE: func(command *cobra.Command, arguments []string) error {
			return command.Help()
		},
	}

	cobraCommand.SetContext(context.Background())
	persistentFlags := cobraCommand.PersistentFlags()
	persistentFlags.StringVar(&application.configurationFilePath, configFileFlagNameConstant, "", configFileFlagUsageConstant)
	persistentFlags.StringVar(&application.logLevelFlagValue, logLevelFlagNameConstant, "", flagutils.FormatChoiceUsage(string(utils.LogLevelWarn), logLevelChoices, logLevelFlagDescriptionConstant))
	persistentFlags.StringVar(&application.logFormatFlagValue, logFormatFlagNameConstant, "", flagutils.FormatChoiceUsage(string(utils.LogFormatConsole), logFormatChoices, logFormatFlagDescriptionConstant))
	persistentFlags.StringVar(&application.projectRootFlagValue, projectRootFlagNameConstant, "", projectRootFlagUsageConstant)

	loggerProvider := func() *zap.Logger {
		return application.logger
	}
	prompterFactory := func(command *cobra.Command) ui.ConfirmationPrompter {
		return ui.NewIOConfirmationPrompter(command.InOrStdin(), command.OutOrStdout())
	}

	tabsBuilder := tabs.CommandGroupBuilder{
		LoggerProvider: loggerProvider,
		EngineProvider: func(command *cobra.Command) (*reconcile.Engine, error) {
			return application.catalogEngine(command)
		},
		PrompterFactory: prompterFactory,
	}
	tabsCommand, tabsBuildError := tabsBuilder.Build()
	if tabsBuildError == nil {
		cobraCommand.AddCommand(tabsCommand)
	}

	remoteBuilder := remote.CommandGroupBuilder{
		LoggerProvider: loggerProvider,
		EngineProvider: func(command *cobra.Command) (*reconcile.Engine, error) {
			return application.catalogEngine(command)
		},
		PrompterFactory: prompterFactory,
	}
	remoteCommand, remoteBuildError := remoteBuilder.Build()
	if remoteBuildError == nil {
		cobraCommand.AddCommand(remoteCommand)
	}

	releaseBuilder := release.CommandGroupBuilder{
		LoggerProvider: loggerProvider,
		ServiceProvider: func(command *cobra.Command) (*releases.Service, error) {
			return application.releaseService(command)
		},
		PrompterFactory: prompterFactory,
	}
	releaseCommand, releaseBuildError := releaseBuilder.Build()
	if releaseBuildError == nil {
		cobraCommand.AddCommand(releaseCommand)
	}

	configurationBuilder := configurationCommandBuilder{
		ConfigurationProvider: func() ApplicationConfiguration {
			return application.configuration
		},
		ConfigFileProvider: func(command *cobra.Command) string {
			configurationFilePath, _ := application.commandContextAccessor.ConfigurationFilePath(command.Context())
			return configurationFilePath
		},
	}
	configurationCommand, configurationBuildError := configurationBuilder.Build()
	if configurationBuildError == nil {
		cobraCommand.AddCommand(configurationCommand)
	}

	application.rootCommand = cobraCommand

	return application
}

// Execute runs the configured Cobra command hierarchy and ensures logger flushing.
func (application *Application) Execute() error {
	executionError := application.rootCommand.Execute()
	if syncError := application.flushLogger(); syncError != nil {
		return fmt.Errorf(loggerSyncErrorTemplateConstant, syncError)
	}
	return executionError
}

// Execute builds a fresh application instance and executes the root command hierarchy.
func Execute() error {
	return NewApplication().Execute()
}

func (application *Application) initializeConfiguration(command *cobra.Command) error {
	var loadedConfiguration ApplicationConfiguration
	configurationMetadata, loadError := application.configurationLoader.LoadConfiguration(application.configurationFilePath, DefaultConfigurationValues(), &loadedConfiguration)
	if loadError != nil {
		return fmt.Errorf(configurationLoadErrorTemplateConstant, loadError)
	}
	application.configurationMetadata = configurationMetadata

	if application.persistentFlagChanged(command, logLevelFlagNameConstant) {
		loadedConfiguration.Common.LogLevel = application.logLevelFlagValue
	}
	if application.persistentFlagChanged(command, logFormatFlagNameConstant) {
		loadedConfiguration.Common.LogFormat = application.logFormatFlagValue
	}
	if application.persistentFlagChanged(command, projectRootFlagNameConstant) {
		loadedConfiguration.Common.ProjectRoot = application.projectRootFlagValue
	}
	application.configuration = loadedConfiguration.Sanitize()

	logLevel, logLevelError := flagutils.NormalizeChoice(logLevelFlagNameConstant, application.configuration.Common.LogLevel, logLevelChoices)
	if logLevelError != nil {
		return logLevelError
	}
	logFormat, logFormatError := flagutils.NormalizeChoice(logFormatFlagNameConstant, application.configuration.Common.LogFormat, logFormatChoices)
	if logFormatError != nil {
		return logFormatError
	}

	loggerOutputs, loggerCreationError := application.loggerFactory.CreateLoggerOutputs(utils.LogLevel(logLevel), utils.LogFormat(logFormat))
	if loggerCreationError != nil {
		return fmt.Errorf(loggerCreationErrorTemplateConstant, loggerCreationError)
	}
	application.logger = loggerOutputs.DiagnosticLogger
	application.consoleLogger = loggerOutputs.ConsoleLogger

	application.logger.Debug(
		configurationInitializedMessageConstant,
		zap.String(configurationLogLevelFieldConstant, logLevel),
		zap.String(configurationLogFormatFieldConstant, logFormat),
		zap.String(configurationFileFieldConstant, application.configurationMetadata.ConfigFileUsed),
	)

	if command != nil {
		updatedContext := application.commandContextAccessor.WithConfigurationFilePath(
			command.Context(),
			application.configurationMetadata.ConfigFileUsed,
		)
		updatedContext = application.commandContextAccessor.WithProjectRoot(updatedContext, application.pathResolver(nil).ProjectRoot())
		command.SetContext(updatedContext)
		if rootCommand := command.Root(); rootCommand != nil {
			rootCommand.SetContext(updatedContext)
		}
	}

	return nil
}

func (application *Application) flushLogger() error {
	for _, logger := range []*zap.Logger{application.logger, application.consoleLogger} {
		if syncError := application.syncLoggerInstance(logger); syncError != nil {
			return syncError
		}
	}
	return nil
}

func (application *Application) syncLoggerInstance(logger *zap.Logger) error {
	if logger == nil {
		return nil
	}

	syncError := logger.Sync()
	switch {
	case syncError == nil:
		return nil
	case errors.Is(syncError, syscall.ENOTSUP):
		return nil
	case errors.Is(syncError, syscall.EINVAL):
		return nil
	case errors.Is(syncError, syscall.EBADF):
		return nil
	default:
		return syncError
	}
}

func (application *Application) persistentFlagChanged(command *cobra.Command, flagName string) bool {
	if command == nil {
		return false
	}

	flagSetsToInspect := []*pflag.FlagSet{
		command.PersistentFlags(),
		command.InheritedFlags(),
	}

	rootCommand := command.Root()
	if rootCommand != nil {
		flagSetsToInspect = append(flagSetsToInspect, rootCommand.PersistentFlags())
	}

	for _, flagSet := range flagSetsToInspect {
		if flagSet == nil {
			continue
		}

		if flagSet.Changed(flagName) {
			return true
		}
	}

	return false
}
