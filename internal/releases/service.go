package releases

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/temirov/promptctl/internal/gitrepo"
)

const (
	// DefaultReleaseNotesPath is the application release notes file.
	DefaultReleaseNotesPath = "RELEASE_NOTES.txt"

	tagPrefixConstant               = "v"
	releaseMessageTemplate          = "Release %s"
	stepFailureTemplateConstant     = "release step %s failed: %v"
	readNotesTemplateConstant       = "read release notes %s: %w"
	remoteURLMissingMessage         = "remote URL required to initialize the repository"
	repositoryManagerMissingMessage = "repository manager not configured"
	prepareInitializedLogMessage    = "repository initialized from remote"
	preparePulledLogMessage         = "repository synchronized with remote"
	remoteUpdatedLogMessage         = "remote URL updated"
	releaseStepLogMessage           = "release step finished"
	releaseDryRunLogMessage         = "release dry run"
	stepLogFieldConstant            = "step"
	tagLogFieldConstant             = "tag"
	remoteLogFieldConstant          = "remote"
	skippedLogFieldConstant         = "skipped"
)

var (
	// ErrRemoteURLMissing indicates Prepare on a directory that is not yet a repository without a remote URL.
	ErrRemoteURLMissing = errors.New(remoteURLMissingMessage)
	// ErrRepositoryManagerNotConfigured indicates a service built without git access.
	ErrRepositoryManagerNotConfigured = errors.New(repositoryManagerMissingMessage)
)

// StepName identifies a release step.
type StepName string

// Release steps in execution order.
const (
	StepCommit   StepName = StepName("commit")
	StepTag      StepName = StepName("tag")
	StepPush     StepName = StepName("push")
	StepPushTags StepName = StepName("push-tags")
)

// StepError names the release step that stopped the sequence.
type StepError struct {
	Step  StepName
	Cause error
}

// Error describes the failed step.
func (stepError StepError) Error() string {
	return fmt.Sprintf(stepFailureTemplateConstant, stepError.Step, stepError.Cause)
}

// Unwrap exposes the git failure.
func (stepError StepError) Unwrap() error {
	return stepError.Cause
}

// RepositoryOperations is the git surface the release service drives.
type RepositoryOperations interface {
	IsRepository(executionContext context.Context, repositoryPath string) (bool, error)
	Init(executionContext context.Context, repositoryPath string) error
	Status(executionContext context.Context, repositoryPath string) (gitrepo.Status, error)
	RemoteURL(executionContext context.Context, repositoryPath string, remoteName string) (string, bool, error)
	AddOrUpdateRemote(executionContext context.Context, repositoryPath string, remoteName string, remoteURL string) error
	Fetch(executionContext context.Context, repositoryPath string, remoteName string) error
	ResetToRemote(executionContext context.Context, repositoryPath string, remoteName string, branch string) error
	Pull(executionContext context.Context, repositoryPath string, remoteName string, branch string) error
	CommitAll(executionContext context.Context, repositoryPath string, message string) error
	CurrentBranch(executionContext context.Context, repositoryPath string) (string, error)
	Tag(executionContext context.Context, repositoryPath string, tagName string, message string) error
	Push(executionContext context.Context, repositoryPath string, remoteName string, branch string, force bool) error
	PushTags(executionContext context.Context, repositoryPath string, remoteName string) error
}

// LatestReleaseLookup reports the most recently published release version.
type LatestReleaseLookup interface {
	LatestReleaseTag(executionContext context.Context) (string, error)
}

// ServiceConfiguration describes the repository the service releases.
type ServiceConfiguration struct {
	RepositoryPath   string
	RemoteName       string
	RemoteURL        string
	Branch           string
	ReleaseNotesPath string
}

// Sanitize trims the configuration and applies defaults.
func (configuration ServiceConfiguration) Sanitize() ServiceConfiguration {
	sanitized := ServiceConfiguration{
		RepositoryPath:   strings.TrimSpace(configuration.RepositoryPath),
		RemoteName:       strings.TrimSpace(configuration.RemoteName),
		RemoteURL:        strings.TrimSpace(configuration.RemoteURL),
		Branch:           strings.TrimSpace(configuration.Branch),
		ReleaseNotesPath: strings.TrimSpace(configuration.ReleaseNotesPath),
	}
	if len(sanitized.RemoteName) == 0 {
		sanitized.RemoteName = gitrepo.DefaultRemoteName
	}
	if len(sanitized.Branch) == 0 {
		sanitized.Branch = gitrepo.DefaultBranch
	}
	if len(sanitized.ReleaseNotesPath) == 0 {
		sanitized.ReleaseNotesPath = DefaultReleaseNotesPath
	}
	return sanitized
}

// ServiceDependencies enumerates collaborators required by the service.
type ServiceDependencies struct {
	GitExecutor       gitrepo.GitExecutor
	RepositoryManager RepositoryOperations
	Propagator        *Propagator
	LatestRelease     LatestReleaseLookup
	FileSystem        afero.Fs
	Logger            *zap.Logger
}

// Options configure one release.
type Options struct {
	Version string
	Notes   string
	DryRun  bool
	Force   bool
}

// StepResult records the outcome of one release step.
type StepResult struct {
	Step           StepName
	Skipped        bool
	NothingChanged bool
	Error          error
}

// Result summarizes a release.
type Result struct {
	Version string
	TagName string
	Message string
	Branch  string
	DryRun  bool
	Steps   []StepResult
}

// PrepareResult reports what Prepare did to the working tree.
type PrepareResult struct {
	Initialized   bool
	RemoteUpdated bool
	Pulled        bool
}

// Overview describes the local release state.
type Overview struct {
	LocalVersion    string
	Inspection      Inspection
	IsRepository    bool
	Status          gitrepo.Status
	ReleaseNotes    string
	LatestPublished string
	LatestError     error
}

// Service runs the application release sequence.
type Service struct {
	configuration     ServiceConfiguration
	repositoryManager RepositoryOperations
	propagator        *Propagator
	latestRelease     LatestReleaseLookup
	fileSystem        afero.Fs
	logger            *zap.Logger
}

// NewService constructs a Service. A GitExecutor is wrapped in a gitrepo.RepositoryManager
// when no RepositoryManager is supplied.
func NewService(configuration ServiceConfiguration, dependencies ServiceDependencies) (*Service, error) {
	repositoryManager := dependencies.RepositoryManager
	if repositoryManager == nil {
		if dependencies.GitExecutor == nil {
			return nil, ErrRepositoryManagerNotConfigured
		}
		manager, managerError := gitrepo.NewRepositoryManager(dependencies.GitExecutor)
		if managerError != nil {
			return nil, managerError
		}
		repositoryManager = manager
	}
	sanitized := configuration.Sanitize()
	if len(sanitized.RepositoryPath) == 0 {
		return nil, gitrepo.ErrRepositoryPathMissing
	}
	fileSystem := dependencies.FileSystem
	if fileSystem == nil {
		fileSystem = afero.NewOsFs()
	}
	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	propagator := dependencies.Propagator
	if propagator == nil {
		propagator = NewPropagator(sanitized.RepositoryPath, ArtifactPaths{}, DefaultBannerPrefix, fileSystem, logger)
	}
	return &Service{
		configuration:     sanitized,
		repositoryManager: repositoryManager,
		propagator:        propagator,
		latestRelease:     dependencies.LatestRelease,
		fileSystem:        fileSystem,
		logger:            logger,
	}, nil
}

// Propagator exposes the artifact version propagator.
func (service *Service) Propagator() *Propagator {
	return service.propagator
}

// Prepare makes the project directory a repository tracking the configured
// remote. An existing repository is rebased onto the remote branch; a plain
// directory is initialized and pointed at the remote branch without touching
// working tree files.
func (service *Service) Prepare(executionContext context.Context) (PrepareResult, error) {
	repositoryPath := service.configuration.RepositoryPath
	remoteName := service.configuration.RemoteName
	branch := service.configuration.Branch
	result := PrepareResult{}

	isRepository, inspectError := service.repositoryManager.IsRepository(executionContext, repositoryPath)
	if inspectError != nil {
		return result, inspectError
	}

	if !isRepository {
		if len(service.configuration.RemoteURL) == 0 {
			return result, ErrRemoteURLMissing
		}
		if initError := service.repositoryManager.Init(executionContext, repositoryPath); initError != nil {
			return result, initError
		}
		result.Initialized = true
		if remoteError := service.repositoryManager.AddOrUpdateRemote(executionContext, repositoryPath, remoteName, service.configuration.RemoteURL); remoteError != nil {
			return result, remoteError
		}
		result.RemoteUpdated = true
		if fetchError := service.repositoryManager.Fetch(executionContext, repositoryPath, remoteName); fetchError != nil {
			return result, fetchError
		}
		if resetError := service.repositoryManager.ResetToRemote(executionContext, repositoryPath, remoteName, branch); resetError != nil {
			return result, resetError
		}
		service.logger.Info(prepareInitializedLogMessage, zap.String(remoteLogFieldConstant, remoteName))
		return result, nil
	}

	remoteUpdated, remoteError := service.ensureRemote(executionContext)
	if remoteError != nil {
		return result, remoteError
	}
	result.RemoteUpdated = remoteUpdated
	if pullError := service.repositoryManager.Pull(executionContext, repositoryPath, remoteName, branch); pullError != nil {
		return result, pullError
	}
	result.Pulled = true
	service.logger.Info(preparePulledLogMessage, zap.String(remoteLogFieldConstant, remoteName))
	return result, nil
}

// Release commits every change, tags v<version>, pushes and pushes tags. The
// first failing step stops the sequence; a clean tree does not.
func (service *Service) Release(executionContext context.Context, options Options) (Result, error) {
	version, validationError := ValidateVersion(options.Version)
	if validationError != nil {
		return Result{}, validationError
	}
	notes := strings.TrimSpace(options.Notes)
	if len(notes) == 0 {
		fileNotes, notesError := service.ReadReleaseNotes()
		if notesError != nil {
			return Result{}, notesError
		}
		notes = fileNotes
	}

	tagName := tagPrefixConstant + version
	message := fmt.Sprintf(releaseMessageTemplate, tagName)
	tagMessage := notes
	if len(tagMessage) == 0 {
		tagMessage = message
	}
	result := Result{Version: version, TagName: tagName, Message: message, DryRun: options.DryRun}

	if options.DryRun {
		for _, step := range []StepName{StepCommit, StepTag, StepPush, StepPushTags} {
			result.Steps = append(result.Steps, StepResult{Step: step, Skipped: true})
		}
		service.logger.Info(releaseDryRunLogMessage, zap.String(tagLogFieldConstant, tagName))
		return result, nil
	}

	repositoryPath := service.configuration.RepositoryPath
	remoteName := service.configuration.RemoteName

	commitError := service.repositoryManager.CommitAll(executionContext, repositoryPath, message)
	commitStep := StepResult{Step: StepCommit}
	switch {
	case errors.Is(commitError, gitrepo.ErrNothingToCommit):
		commitStep.NothingChanged = true
	case commitError != nil:
		return service.fail(result, commitStep, commitError)
	}
	result.Steps = append(result.Steps, service.logStep(commitStep))

	if tagError := service.repositoryManager.Tag(executionContext, repositoryPath, tagName, tagMessage); tagError != nil {
		return service.fail(result, StepResult{Step: StepTag}, tagError)
	}
	result.Steps = append(result.Steps, service.logStep(StepResult{Step: StepTag}))

	branch, branchError := service.repositoryManager.CurrentBranch(executionContext, repositoryPath)
	if branchError != nil {
		return service.fail(result, StepResult{Step: StepPush}, branchError)
	}
	result.Branch = branch
	if pushError := service.repositoryManager.Push(executionContext, repositoryPath, remoteName, branch, options.Force); pushError != nil {
		return service.fail(result, StepResult{Step: StepPush}, pushError)
	}
	result.Steps = append(result.Steps, service.logStep(StepResult{Step: StepPush}))

	if pushTagsError := service.repositoryManager.PushTags(executionContext, repositoryPath, remoteName); pushTagsError != nil {
		return service.fail(result, StepResult{Step: StepPushTags}, pushTagsError)
	}
	result.Steps = append(result.Steps, service.logStep(StepResult{Step: StepPushTags}))
	return result, nil
}

// Overview gathers the local version, artifact versions, git state and the latest published release.
func (service *Service) Overview(executionContext context.Context) (Overview, error) {
	inspection, inspectionError := service.propagator.Inspect()
	if inspectionError != nil {
		return Overview{}, inspectionError
	}
	overview := Overview{LocalVersion: service.propagator.CurrentVersion(), Inspection: inspection}

	isRepository, repositoryError := service.repositoryManager.IsRepository(executionContext, service.configuration.RepositoryPath)
	if repositoryError != nil {
		return Overview{}, repositoryError
	}
	overview.IsRepository = isRepository
	if isRepository {
		status, statusError := service.repositoryManager.Status(executionContext, service.configuration.RepositoryPath)
		if statusError != nil {
			return Overview{}, statusError
		}
		overview.Status = status
	}

	notes, notesError := service.ReadReleaseNotes()
	if notesError != nil {
		return Overview{}, notesError
	}
	overview.ReleaseNotes = notes

	if service.latestRelease != nil {
		overview.LatestPublished, overview.LatestError = service.latestRelease.LatestReleaseTag(executionContext)
	}
	return overview, nil
}

// ReadReleaseNotes returns the trimmed release notes, empty when the file is absent.
func (service *Service) ReadReleaseNotes() (string, error) {
	notesPath := service.propagator.resolve(service.configuration.ReleaseNotesPath)
	data, readError := afero.ReadFile(service.fileSystem, notesPath)
	if readError != nil {
		if errors.Is(readError, os.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf(readNotesTemplateConstant, notesPath, readError)
	}
	return strings.TrimSpace(string(data)), nil
}

func (service *Service) ensureRemote(executionContext context.Context) (bool, error) {
	desiredURL := service.configuration.RemoteURL
	if len(desiredURL) == 0 {
		return false, nil
	}
	repositoryPath := service.configuration.RepositoryPath
	remoteName := service.configuration.RemoteName
	currentURL, exists, lookupError := service.repositoryManager.RemoteURL(executionContext, repositoryPath, remoteName)
	if lookupError != nil {
		return false, lookupError
	}
	if exists && sameRemote(currentURL, desiredURL) {
		return false, nil
	}
	if updateError := service.repositoryManager.AddOrUpdateRemote(executionContext, repositoryPath, remoteName, desiredURL); updateError != nil {
		return false, updateError
	}
	service.logger.Info(remoteUpdatedLogMessage, zap.String(remoteLogFieldConstant, remoteName))
	return true, nil
}

func (service *Service) fail(result Result, step StepResult, cause error) (Result, error) {
	step.Error = cause
	result.Steps = append(result.Steps, service.logStep(step))
	return result, StepError{Step: step.Step, Cause: cause}
}

func (service *Service) logStep(step StepResult) StepResult {
	fields := []zap.Field{zap.String(stepLogFieldConstant, string(step.Step)), zap.Bool(skippedLogFieldConstant, step.NothingChanged)}
	if step.Error != nil {
		service.logger.Warn(releaseStepLogMessage, append(fields, zap.Error(step.Error))...)
		return step
	}
	service.logger.Info(releaseStepLogMessage, fields...)
	return step
}

func sameRemote(currentURL string, desiredURL string) bool {
	if currentURL == desiredURL {
		return true
	}
	current, currentError := gitrepo.ParseRemoteURL(currentURL)
	desired, desiredError := gitrepo.ParseRemoteURL(desiredURL)
	if currentError != nil || desiredError != nil {
		return false
	}
	return current.SameRepository(desired)
}
