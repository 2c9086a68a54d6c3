package githubauth

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/afero"

	"github.com/temirov/promptctl/internal/execshell"
)

// Environment variable names consulted for a token, in preference order.
const (
	EnvGitHubToken    = "GITHUB_TOKEN"
	EnvGitHubCLIToken = "GH_TOKEN"
	EnvGitHubAPIToken = "GITHUB_API_TOKEN"
)

const (
	// DefaultDotenvFileName is read from the project root.
	DefaultDotenvFileName = ".env"
	// DefaultGitConfigKey is the global git configuration entry holding a token.
	DefaultGitConfigKey = "github.token"

	environmentProviderNameConstant = "environment"
	dotenvProviderNameConstant      = "dotenv"
	gitConfigProviderNameConstant   = "git-config"
	credentialMissingMessage        = "github credential missing; set GITHUB_TOKEN or run 'git config --global github.token <token>'"
	dotenvReadTemplateConstant      = "read %s: %w"
	gitConfigSubcommandConstant     = "config"
	gitGlobalFlagConstant           = "--global"
	gitGetFlagConstant              = "--get"
)

// ErrCredentialMissing reports that no provider yielded a token.
var ErrCredentialMissing = errors.New(credentialMissingMessage)

// DefaultEnvironmentKeys lists the variables checked by the environment and dotenv providers.
func DefaultEnvironmentKeys() []string {
	return []string{EnvGitHubToken, EnvGitHubCLIToken, EnvGitHubAPIToken}
}

// Provider yields a token or an empty string when it has none.
type Provider interface {
	Name() string
	Token(resolutionContext context.Context) (string, error)
}

// Credential is a resolved token together with the provider that supplied it.
type Credential struct {
	Token  string
	Source string
}

// EnvironmentLookup obtains an environment variable value.
type EnvironmentLookup func(key string) (string, bool)

// EnvironmentProvider reads the token from process environment variables.
type EnvironmentProvider struct {
	Keys   []string
	Lookup EnvironmentLookup
}

// Name identifies the provider.
func (provider EnvironmentProvider) Name() string {
	return environmentProviderNameConstant
}

// Token returns the first non-empty variable.
func (provider EnvironmentProvider) Token(context.Context) (string, error) {
	lookup := provider.Lookup
	if lookup == nil {
		lookup = os.LookupEnv
	}
	for _, key := range keysOrDefault(provider.Keys) {
		if value, exists := lookup(key); exists && len(strings.TrimSpace(value)) > 0 {
			return strings.TrimSpace(value), nil
		}
	}
	return "", nil
}

// DotenvProvider reads the token from a dotenv file.
type DotenvProvider struct {
	FileSystem afero.Fs
	Path       string
	Keys       []string
}

// Name identifies the provider.
func (provider DotenvProvider) Name() string {
	return dotenvProviderNameConstant
}

// Token returns the first non-empty key from the file. A missing file yields no token.
func (provider DotenvProvider) Token(context.Context) (string, error) {
	fileSystem := provider.FileSystem
	if fileSystem == nil {
		fileSystem = afero.NewOsFs()
	}
	file, openError := fileSystem.Open(provider.Path)
	if openError != nil {
		if errors.Is(openError, os.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf(dotenvReadTemplateConstant, provider.Path, openError)
	}
	defer file.Close()

	values, parseError := godotenv.Parse(file)
	if parseError != nil {
		return "", fmt.Errorf(dotenvReadTemplateConstant, provider.Path, parseError)
	}
	for _, key := range keysOrDefault(provider.Keys) {
		if value := strings.TrimSpace(values[key]); len(value) > 0 {
			return value, nil
		}
	}
	return "", nil
}

// GitExecutor runs git commands.
type GitExecutor interface {
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// GitConfigProvider reads the token from the global git configuration.
type GitConfigProvider struct {
	Executor GitExecutor
	Key      string
}

// Name identifies the provider.
func (provider GitConfigProvider) Name() string {
	return gitConfigProviderNameConstant
}

// Token returns the configured value. An unset key yields no token.
func (provider GitConfigProvider) Token(resolutionContext context.Context) (string, error) {
	if provider.Executor == nil {
		return "", nil
	}
	key := provider.Key
	if len(strings.TrimSpace(key)) == 0 {
		key = DefaultGitConfigKey
	}
	result, executionError := provider.Executor.ExecuteGit(resolutionContext, execshell.CommandDetails{
		Arguments: []string{gitConfigSubcommandConstant, gitGlobalFlagConstant, gitGetFlagConstant, key},
	})
	if executionError != nil {
		var failure execshell.CommandFailedError
		if errors.As(executionError, &failure) {
			return "", nil
		}
		return "", executionError
	}
	return strings.TrimSpace(result.StandardOutput), nil
}

// Chain consults providers in order; the first non-empty token wins.
type Chain []Provider

// Resolve returns the first token found or ErrCredentialMissing.
func (chain Chain) Resolve(resolutionContext context.Context) (Credential, error) {
	for _, provider := range chain {
		if provider == nil {
			continue
		}
		token, tokenError := provider.Token(resolutionContext)
		if tokenError != nil {
			return Credential{}, tokenError
		}
		if len(token) > 0 {
			return Credential{Token: token, Source: provider.Name()}, nil
		}
	}
	return Credential{}, ErrCredentialMissing
}

func keysOrDefault(keys []string) []string {
	if len(keys) == 0 {
		return DefaultEnvironmentKeys()
	}
	return keys
}
