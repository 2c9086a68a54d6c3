package cli

import (
	"os"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/promptctl/internal/catalog"
	"github.com/temirov/promptctl/internal/contentstore"
	"github.com/temirov/promptctl/internal/execshell"
	"github.com/temirov/promptctl/internal/githubauth"
	"github.com/temirov/promptctl/internal/localstore"
	"github.com/temirov/promptctl/internal/reconcile"
	"github.com/temirov/promptctl/internal/releases"
	"github.com/temirov/promptctl/internal/ui"
	pathutils "github.com/temirov/promptctl/internal/utils/path"
)

const (
	credentialResolvedLogMessage    = "github credential resolved"
	credentialUnavailableLogMessage = "github credential unavailable, remote writes disabled"
	credentialSourceLogField        = "source"
	projectRootLogField             = "project_root"
	servicesWiredLogMessage         = "services wired"
)

// serviceDependencies carries the process-level collaborators the services are built on.
type serviceDependencies struct {
	fileSystem        afero.Fs
	commandRunner     execshell.CommandRunner
	httpClient        contentstore.HTTPDoer
	environmentLookup githubauth.EnvironmentLookup
	workingDirectory  func() (string, error)
}

func defaultServiceDependencies() serviceDependencies {
	return serviceDependencies{
		fileSystem:        afero.NewOsFs(),
		commandRunner:     execshell.NewOSCommandRunner(),
		environmentLookup: os.LookupEnv,
		workingDirectory:  os.Getwd,
	}
}

// pathResolver anchors paths at the project root recorded on the command context, falling back to the configured root.
func (application *Application) pathResolver(command *cobra.Command) *pathutils.ProjectPathResolver {
	if command != nil && command.Context() != nil {
		if projectRoot, available := application.commandContextAccessor.ProjectRoot(command.Context()); available {
			return pathutils.NewProjectPathResolver(projectRoot)
		}
	}
	return pathutils.NewProjectPathResolver(application.configuredProjectRoot())
}

func (application *Application) configuredProjectRoot() string {
	projectRoot := application.configuration.Common.ProjectRoot
	if len(projectRoot) == 0 && application.dependencies.workingDirectory != nil {
		if workingDirectory, directoryError := application.dependencies.workingDirectory(); directoryError == nil {
			projectRoot = workingDirectory
		}
	}
	return projectRoot
}

func (application *Application) gitExecutor() (*execshell.ShellExecutor, error) {
	return execshell.NewShellExecutor(
		application.logger,
		application.dependencies.commandRunner,
		ui.NewConsoleCommandEventLogger(application.consoleLogger),
	)
}

// quietGitExecutor runs git without console reporting, for lookups such as the credential fallback.
func (application *Application) quietGitExecutor() (*execshell.ShellExecutor, error) {
	return execshell.NewShellExecutor(application.logger, application.dependencies.commandRunner, nil)
}

func (application *Application) resolveCredential(command *cobra.Command, resolver *pathutils.ProjectPathResolver) githubauth.Credential {
	remoteConfiguration := application.configuration.Remote
	chain := githubauth.Chain{
		githubauth.EnvironmentProvider{Keys: remoteConfiguration.TokenVariables, Lookup: application.dependencies.environmentLookup},
		githubauth.DotenvProvider{
			FileSystem: application.dependencies.fileSystem,
			Path:       resolver.Resolve(remoteConfiguration.DotenvFile),
			Keys:       remoteConfiguration.TokenVariables,
		},
	}
	if executor, executorError := application.quietGitExecutor(); executorError == nil {
		chain = append(chain, githubauth.GitConfigProvider{Executor: executor, Key: remoteConfiguration.GitConfigKey})
	}

	credential, resolveError := chain.Resolve(command.Context())
	if resolveError != nil {
		application.logger.Warn(credentialUnavailableLogMessage, zap.Error(resolveError))
		return githubauth.Credential{}
	}
	application.logger.Debug(credentialResolvedLogMessage, zap.String(credentialSourceLogField, credential.Source))
	return credential
}

func (application *Application) contentClient(command *cobra.Command, resolver *pathutils.ProjectPathResolver) *contentstore.Client {
	remoteConfiguration := application.configuration.Remote
	return contentstore.NewClient(contentstore.ClientConfiguration{
		Target: contentstore.Target{
			APIBaseURL: remoteConfiguration.APIBaseURL,
			Owner:      remoteConfiguration.Owner,
			Repository: remoteConfiguration.Repository,
			Branch:     remoteConfiguration.Branch,
		},
		CredentialSource: func() string {
			return application.resolveCredential(command, resolver).Token
		},
		ReadTimeout:  remoteConfiguration.ReadTimeout,
		WriteTimeout: remoteConfiguration.WriteTimeout,
		HTTPClient:   application.dependencies.httpClient,
		Logger:       application.logger,
	})
}

func (application *Application) catalogEngine(command *cobra.Command) (*reconcile.Engine, error) {
	resolver := application.pathResolver(command)
	catalogConfiguration := application.configuration.Catalog
	notesPath := resolver.Resolve(catalogConfiguration.ReleaseNotesFile)
	clock := catalog.SystemClock{}

	localStore, storeError := localstore.NewStore(
		localstore.Configuration{Directory: resolver.Resolve(catalogConfiguration.PromptsDirectory), ReleaseNotesPath: notesPath},
		localstore.Dependencies{FileSystem: application.dependencies.fileSystem, Clock: clock, Logger: application.logger},
	)
	if storeError != nil {
		return nil, storeError
	}

	application.logger.Debug(servicesWiredLogMessage, zap.String(projectRootLogField, resolver.ProjectRoot()))
	return reconcile.NewEngine(
		reconcile.Configuration{
			ExportsDirectory: resolver.Resolve(catalogConfiguration.ExportsDirectory),
			RemoteDirectory:  application.configuration.Remote.Directory,
			ReleaseNotesPath: notesPath,
			CleanupExports:   application.configuration.Remote.CleanupExports,
		},
		reconcile.Dependencies{
			LocalCatalog:        localStore,
			RemoteStore:         application.contentClient(command, resolver),
			FileSystem:          application.dependencies.fileSystem,
			Clock:               clock,
			IdentifierGenerator: catalog.NewItemIdentifierGenerator(clock, nil),
			Logger:              application.logger,
		},
	)
}

func (application *Application) releaseService(command *cobra.Command) (*releases.Service, error) {
	resolver := application.pathResolver(command)
	releaseConfiguration := application.configuration.Release

	gitExecutor, executorError := application.gitExecutor()
	if executorError != nil {
		return nil, executorError
	}
	propagator := releases.NewPropagator(
		resolver.ProjectRoot(),
		releaseConfiguration.Artifacts,
		releaseConfiguration.BannerPrefix,
		application.dependencies.fileSystem,
		application.logger,
	)
	return releases.NewService(
		releases.ServiceConfiguration{
			RepositoryPath:   resolver.ProjectRoot(),
			RemoteName:       releaseConfiguration.RemoteName,
			RemoteURL:        releaseConfiguration.RemoteURL,
			Branch:           releaseConfiguration.Branch,
			ReleaseNotesPath: releaseConfiguration.NotesFile,
		},
		releases.ServiceDependencies{
			GitExecutor:   gitExecutor,
			Propagator:    propagator,
			LatestRelease: application.contentClient(command, resolver),
			FileSystem:    application.dependencies.fileSystem,
			Logger:        application.logger,
		},
	)
}
