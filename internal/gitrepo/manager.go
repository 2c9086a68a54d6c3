package gitrepo

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/temirov/promptctl/internal/execshell"
)

const (
	// DefaultBranch is used when HEAD is detached or has no commits yet.
	DefaultBranch = "main"
	// DefaultRemoteName is the remote releases are pushed to.
	DefaultRemoteName = "origin"

	gitRevParseSubcommandConstant    = "rev-parse"
	gitWorkTreeFlagConstant          = "--is-inside-work-tree"
	gitAbbrevRefFlagConstant         = "--abbrev-ref"
	gitHeadReferenceConstant         = "HEAD"
	gitInitSubcommandConstant        = "init"
	gitStatusSubcommandConstant      = "status"
	gitPorcelainFlagConstant         = "--porcelain"
	gitRevListSubcommandConstant     = "rev-list"
	gitCountFlagConstant             = "--count"
	gitUnpushedRangeConstant         = "@{u}..HEAD"
	gitRemoteSubcommandConstant      = "remote"
	gitRemoteAddConstant             = "add"
	gitRemoteSetURLConstant          = "set-url"
	gitRemoteGetURLConstant          = "get-url"
	gitAddSubcommandConstant         = "add"
	gitAllFlagConstant               = "-A"
	gitCommitSubcommandConstant      = "commit"
	gitMessageFlagConstant           = "-m"
	gitPushSubcommandConstant        = "push"
	gitForceFlagConstant             = "-f"
	gitUpstreamFlagConstant          = "-u"
	gitTagsFlagConstant              = "--tags"
	gitPullSubcommandConstant        = "pull"
	gitRebaseFlagConstant            = "--rebase"
	gitFetchSubcommandConstant       = "fetch"
	gitResetSubcommandConstant       = "reset"
	gitMixedFlagConstant             = "--mixed"
	gitTagSubcommandConstant         = "tag"
	gitAnnotateFlagConstant          = "-a"
	gitTrueOutputConstant            = "true"
	remoteBranchTemplateConstant     = "%s/%s"
	executorMissingMessageConstant   = "git executor not configured"
	nothingToCommitMessageConstant   = "nothing to commit"
	repositoryPathMissingMessage     = "repository path required"
	operationFailureTemplateConstant = "%s: %w"
	operationInitConstant            = "git init"
	operationStatusConstant          = "git status"
	operationRemoteConstant          = "git remote"
	operationStageConstant           = "git add"
	operationCommitConstant          = "git commit"
	operationPushConstant            = "git push"
	operationPullConstant            = "git pull"
	operationFetchConstant           = "git fetch"
	operationResetConstant           = "git reset"
	operationTagConstant             = "git tag"
	operationBranchConstant          = "git rev-parse"
)

var missingUpstreamMarkers = []string{
	"no tracking information",
	"no upstream",
	"couldn't find remote ref",
	"does not appear to be a git repository",
}

var (
	// ErrGitExecutorNotConfigured indicates construction without an executor.
	ErrGitExecutorNotConfigured = errors.New(executorMissingMessageConstant)
	// ErrNothingToCommit reports a clean working tree after staging.
	ErrNothingToCommit = errors.New(nothingToCommitMessageConstant)
	// ErrRepositoryPathMissing indicates an empty repository path.
	ErrRepositoryPathMissing = errors.New(repositoryPathMissingMessage)
)

// GitExecutor is the subset of execshell.ShellExecutor the manager needs.
type GitExecutor interface {
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// Status summarises the working tree relative to its upstream.
type Status struct {
	HasLocalChanges bool
	UnpushedCommits int
}

// Clean reports a tree with neither local changes nor unpushed commits.
func (status Status) Clean() bool {
	return !status.HasLocalChanges && status.UnpushedCommits == 0
}

// RepositoryManager runs git operations against a single working tree.
type RepositoryManager struct {
	executor GitExecutor
}

// NewRepositoryManager constructs a manager.
func NewRepositoryManager(executor GitExecutor) (*RepositoryManager, error) {
	if executor == nil {
		return nil, ErrGitExecutorNotConfigured
	}
	return &RepositoryManager{executor: executor}, nil
}

// IsRepository reports whether repositoryPath is inside a git work tree.
func (manager *RepositoryManager) IsRepository(executionContext context.Context, repositoryPath string) (bool, error) {
	result, executionError := manager.run(executionContext, repositoryPath, gitRevParseSubcommandConstant, gitWorkTreeFlagConstant)
	if executionError != nil {
		if isCommandFailure(executionError) {
			return false, nil
		}
		return false, executionError
	}
	return strings.TrimSpace(result.StandardOutput) == gitTrueOutputConstant, nil
}

// Init creates an empty repository.
func (manager *RepositoryManager) Init(executionContext context.Context, repositoryPath string) error {
	_, executionError := manager.run(executionContext, repositoryPath, gitInitSubcommandConstant)
	return wrapOperation(operationInitConstant, executionError)
}

// Status reports local changes and the number of commits ahead of upstream.
// A branch without upstream reports zero unpushed commits.
func (manager *RepositoryManager) Status(executionContext context.Context, repositoryPath string) (Status, error) {
	porcelain, statusError := manager.run(executionContext, repositoryPath, gitStatusSubcommandConstant, gitPorcelainFlagConstant)
	if statusError != nil {
		return Status{}, wrapOperation(operationStatusConstant, statusError)
	}
	status := Status{HasLocalChanges: len(strings.TrimSpace(porcelain.StandardOutput)) > 0}

	countResult, countError := manager.run(executionContext, repositoryPath, gitRevListSubcommandConstant, gitCountFlagConstant, gitUnpushedRangeConstant)
	if countError != nil {
		if isCommandFailure(countError) {
			return status, nil
		}
		return Status{}, wrapOperation(operationStatusConstant, countError)
	}
	if count, parseError := strconv.Atoi(strings.TrimSpace(countResult.StandardOutput)); parseError == nil {
		status.UnpushedCommits = count
	}
	return status, nil
}

// RemoteURL returns the configured URL of remoteName and whether it exists.
func (manager *RepositoryManager) RemoteURL(executionContext context.Context, repositoryPath string, remoteName string) (string, bool, error) {
	result, executionError := manager.run(executionContext, repositoryPath, gitRemoteSubcommandConstant, gitRemoteGetURLConstant, remoteName)
	if executionError != nil {
		if isCommandFailure(executionError) {
			return "", false, nil
		}
		return "", false, wrapOperation(operationRemoteConstant, executionError)
	}
	return strings.TrimSpace(result.StandardOutput), true, nil
}

// RemoteExists reports whether remoteName is configured.
func (manager *RepositoryManager) RemoteExists(executionContext context.Context, repositoryPath string, remoteName string) (bool, error) {
	_, exists, lookupError := manager.RemoteURL(executionContext, repositoryPath, remoteName)
	return exists, lookupError
}

// AddOrUpdateRemote adds remoteName, falling back to set-url when it already exists.
func (manager *RepositoryManager) AddOrUpdateRemote(executionContext context.Context, repositoryPath string, remoteName string, remoteURL string) error {
	_, addError := manager.run(executionContext, repositoryPath, gitRemoteSubcommandConstant, gitRemoteAddConstant, remoteName, remoteURL)
	if addError == nil {
		return nil
	}
	if !isCommandFailure(addError) {
		return wrapOperation(operationRemoteConstant, addError)
	}
	_, setError := manager.run(executionContext, repositoryPath, gitRemoteSubcommandConstant, gitRemoteSetURLConstant, remoteName, remoteURL)
	return wrapOperation(operationRemoteConstant, setError)
}

// CommitAll stages every change and commits it. ErrNothingToCommit is returned for a clean tree.
func (manager *RepositoryManager) CommitAll(executionContext context.Context, repositoryPath string, message string) error {
	if _, stageError := manager.run(executionContext, repositoryPath, gitAddSubcommandConstant, gitAllFlagConstant); stageError != nil {
		return wrapOperation(operationStageConstant, stageError)
	}
	porcelain, statusError := manager.run(executionContext, repositoryPath, gitStatusSubcommandConstant, gitPorcelainFlagConstant)
	if statusError != nil {
		return wrapOperation(operationStatusConstant, statusError)
	}
	if len(strings.TrimSpace(porcelain.StandardOutput)) == 0 {
		return ErrNothingToCommit
	}
	_, commitError := manager.run(executionContext, repositoryPath, gitCommitSubcommandConstant, gitMessageFlagConstant, message)
	return wrapOperation(operationCommitConstant, commitError)
}

// CurrentBranch returns the checked out branch, DefaultBranch when HEAD is detached or unborn.
func (manager *RepositoryManager) CurrentBranch(executionContext context.Context, repositoryPath string) (string, error) {
	result, executionError := manager.run(executionContext, repositoryPath, gitRevParseSubcommandConstant, gitAbbrevRefFlagConstant, gitHeadReferenceConstant)
	if executionError != nil {
		if isCommandFailure(executionError) {
			return DefaultBranch, nil
		}
		return "", wrapOperation(operationBranchConstant, executionError)
	}
	branch := strings.TrimSpace(result.StandardOutput)
	if len(branch) == 0 || branch == gitHeadReferenceConstant {
		return DefaultBranch, nil
	}
	return branch, nil
}

// Push publishes branch to remoteName and records it as upstream.
func (manager *RepositoryManager) Push(executionContext context.Context, repositoryPath string, remoteName string, branch string, force bool) error {
	arguments := []string{gitPushSubcommandConstant}
	if force {
		arguments = append(arguments, gitForceFlagConstant)
	}
	arguments = append(arguments, gitUpstreamFlagConstant, remoteName, branch)
	_, executionError := manager.run(executionContext, repositoryPath, arguments...)
	return wrapOperation(operationPushConstant, executionError)
}

// PushTags publishes every local tag to remoteName.
func (manager *RepositoryManager) PushTags(executionContext context.Context, repositoryPath string, remoteName string) error {
	_, executionError := manager.run(executionContext, repositoryPath, gitPushSubcommandConstant, remoteName, gitTagsFlagConstant)
	return wrapOperation(operationPushConstant, executionError)
}

// Pull rebases the working tree onto remoteName/branch. A missing upstream is not an error.
func (manager *RepositoryManager) Pull(executionContext context.Context, repositoryPath string, remoteName string, branch string) error {
	_, executionError := manager.run(executionContext, repositoryPath, gitPullSubcommandConstant, gitRebaseFlagConstant, remoteName, branch)
	if executionError == nil {
		return nil
	}
	var failure execshell.CommandFailedError
	if errors.As(executionError, &failure) && mentionsMissingUpstream(failure.Result.StandardError) {
		return nil
	}
	return wrapOperation(operationPullConstant, executionError)
}

// Fetch downloads objects and references from remoteName.
func (manager *RepositoryManager) Fetch(executionContext context.Context, repositoryPath string, remoteName string) error {
	_, executionError := manager.run(executionContext, repositoryPath, gitFetchSubcommandConstant, remoteName)
	return wrapOperation(operationFetchConstant, executionError)
}

// ResetToRemote points HEAD and the index at remoteName/branch, keeping working tree files.
func (manager *RepositoryManager) ResetToRemote(executionContext context.Context, repositoryPath string, remoteName string, branch string) error {
	_, executionError := manager.run(executionContext, repositoryPath, gitResetSubcommandConstant, gitMixedFlagConstant, fmt.Sprintf(remoteBranchTemplateConstant, remoteName, branch))
	return wrapOperation(operationResetConstant, executionError)
}

// Tag creates tagName, annotated when message is non-empty.
func (manager *RepositoryManager) Tag(executionContext context.Context, repositoryPath string, tagName string, message string) error {
	arguments := []string{gitTagSubcommandConstant}
	if len(strings.TrimSpace(message)) > 0 {
		arguments = append(arguments, gitAnnotateFlagConstant, tagName, gitMessageFlagConstant, message)
	} else {
		arguments = append(arguments, tagName)
	}
	_, executionError := manager.run(executionContext, repositoryPath, arguments...)
	return wrapOperation(operationTagConstant, executionError)
}

func (manager *RepositoryManager) run(executionContext context.Context, repositoryPath string, arguments ...string) (execshell.ExecutionResult, error) {
	if len(strings.TrimSpace(repositoryPath)) == 0 {
		return execshell.ExecutionResult{}, ErrRepositoryPathMissing
	}
	return manager.executor.ExecuteGit(executionContext, execshell.CommandDetails{Arguments: arguments, WorkingDirectory: repositoryPath})
}

func isCommandFailure(executionError error) bool {
	var failure execshell.CommandFailedError
	return errors.As(executionError, &failure)
}

func mentionsMissingUpstream(standardError string) bool {
	lowered := strings.ToLower(standardError)
	for _, marker := range missingUpstreamMarkers {
		if strings.Contains(lowered, marker) {
			return true
		}
	}
	return false
}

func wrapOperation(operation string, executionError error) error {
	if executionError == nil {
		return nil
	}
	return fmt.Errorf(operationFailureTemplateConstant, operation, executionError)
}
