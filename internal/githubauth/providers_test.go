package githubauth_test

import (
	"context"
	"errors"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/temirov/promptctl/internal/execshell"
	"github.com/temirov/promptctl/internal/githubauth"
)

type stubGitExecutor struct {
	output    string
	exitCode  int
	arguments []string
}

func (executor *stubGitExecutor) ExecuteGit(_ context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	executor.arguments = details.Arguments
	if executor.exitCode != 0 {
		return execshell.ExecutionResult{}, execshell.CommandFailedError{Result: execshell.ExecutionResult{ExitCode: executor.exitCode}}
	}
	return execshell.ExecutionResult{StandardOutput: executor.output}, nil
}

func environmentOf(values map[string]string) githubauth.EnvironmentLookup {
	return func(key string) (string, bool) {
		value, exists := values[key]
		return value, exists
	}
}

func TestChainResolvesInPreferenceOrder(testInstance *testing.T) {
	fileSystem := afero.NewMemMapFs()
	require.NoError(testInstance, afero.WriteFile(fileSystem, "/project/.env", []byte("GH_TOKEN=from-dotenv\n"), 0o600))

	testCases := []struct {
		name           string
		environment    map[string]string
		gitOutput      string
		gitExitCode    int
		dotenvPath     string
		expectedToken  string
		expectedSource string
		expectedError  error
	}{
		{
			name:           "environment_first",
			environment:    map[string]string{"GH_TOKEN": " env-cli ", "GITHUB_TOKEN": "env-primary"},
			dotenvPath:     "/project/.env",
			gitOutput:      "from-git\n",
			expectedToken:  "env-primary",
			expectedSource: "environment",
		},
		{
			name:           "dotenv_second",
			environment:    map[string]string{"GITHUB_TOKEN": "  "},
			dotenvPath:     "/project/.env",
			gitOutput:      "from-git\n",
			expectedToken:  "from-dotenv",
			expectedSource: "dotenv",
		},
		{
			name:           "git_config_last",
			dotenvPath:     "/project/missing.env",
			gitOutput:      "from-git\n",
			expectedToken:  "from-git",
			expectedSource: "git-config",
		},
		{
			name:          "nothing_configured",
			dotenvPath:    "/project/missing.env",
			gitExitCode:   1,
			expectedError: githubauth.ErrCredentialMissing,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			executor := &stubGitExecutor{output: testCase.gitOutput, exitCode: testCase.gitExitCode}
			chain := githubauth.Chain{
				githubauth.EnvironmentProvider{Lookup: environmentOf(testCase.environment)},
				githubauth.DotenvProvider{FileSystem: fileSystem, Path: testCase.dotenvPath},
				githubauth.GitConfigProvider{Executor: executor},
			}

			credential, resolveError := chain.Resolve(context.Background())
			if testCase.expectedError != nil {
				require.ErrorIs(testInstance, resolveError, testCase.expectedError)
				return
			}
			require.NoError(testInstance, resolveError)
			require.Equal(testInstance, testCase.expectedToken, credential.Token)
			require.Equal(testInstance, testCase.expectedSource, credential.Source)
		})
	}
}

func TestGitConfigProviderQueriesGlobalKey(testInstance *testing.T) {
	executor := &stubGitExecutor{output: "token\n"}
	token, tokenError := githubauth.GitConfigProvider{Executor: executor}.Token(context.Background())
	require.NoError(testInstance, tokenError)
	require.Equal(testInstance, "token", token)
	require.Equal(testInstance, []string{"config", "--global", "--get", "github.token"}, executor.arguments)
}

type failingProvider struct{}

func (failingProvider) Name() string { return "failing" }

func (failingProvider) Token(context.Context) (string, error) {
	return "", errors.New("keychain locked")
}

func TestChainStopsOnProviderError(testInstance *testing.T) {
	chain := githubauth.Chain{failingProvider{}, githubauth.EnvironmentProvider{Lookup: environmentOf(map[string]string{"GITHUB_TOKEN": "x"})}}
	_, resolveError := chain.Resolve(context.Background())
	require.ErrorContains(testInstance, resolveError, "keychain locked")
}
