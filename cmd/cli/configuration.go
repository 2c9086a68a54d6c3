package cli

import (
	"strings"
	"time"

	"github.com/temirov/promptctl/internal/contentstore"
	"github.com/temirov/promptctl/internal/githubauth"
	"github.com/temirov/promptctl/internal/reconcile"
	"github.com/temirov/promptctl/internal/releases"
	"github.com/temirov/promptctl/internal/utils"
)

const (
	defaultPromptsDirectoryConstant   = "prompts"
	defaultExportsDirectoryConstant   = "exports"
	defaultPromptsNotesFileConstant   = "RELEASE_NOTES_PROMPTS.txt"
	defaultRemoteOwnerConstant        = "IllWicked"
	defaultRemoteRepositoryConstant   = "ai-prompts-manager"
	defaultReleaseRemoteNameConstant  = "origin"
	defaultReleaseRemoteURLConstant   = "https://github.com/IllWicked/ai-prompts-manager.git"
	commonConfigurationKeyConstant    = "common"
	catalogConfigurationKeyConstant   = "catalog"
	remoteConfigurationKeyConstant    = "remote"
	releaseConfigurationKeyConstant   = "release"
	configurationKeySeparatorConstant = "."
)

// ApplicationConfiguration describes the persisted configuration for the CLI entrypoint.
type ApplicationConfiguration struct {
	Common  CommonConfiguration  `mapstructure:"common" yaml:"common"`
	Catalog CatalogConfiguration `mapstructure:"catalog" yaml:"catalog"`
	Remote  RemoteConfiguration  `mapstructure:"remote" yaml:"remote"`
	Release ReleaseConfiguration `mapstructure:"release" yaml:"release"`
}

// CommonConfiguration stores logging and project settings shared across commands.
type CommonConfiguration struct {
	LogLevel    string `mapstructure:"log_level" yaml:"log_level"`
	LogFormat   string `mapstructure:"log_format" yaml:"log_format"`
	ProjectRoot string `mapstructure:"project_root" yaml:"project_root"`
}

// CatalogConfiguration locates the local catalog relative to the project root.
type CatalogConfiguration struct {
	PromptsDirectory string `mapstructure:"prompts_directory" yaml:"prompts_directory"`
	ExportsDirectory string `mapstructure:"exports_directory" yaml:"exports_directory"`
	ReleaseNotesFile string `mapstructure:"release_notes_file" yaml:"release_notes_file"`
}

// RemoteConfiguration describes the GitHub repository holding the published catalog.
type RemoteConfiguration struct {
	APIBaseURL     string        `mapstructure:"api_base_url" yaml:"api_base_url"`
	Owner          string        `mapstructure:"owner" yaml:"owner"`
	Repository     string        `mapstructure:"repository" yaml:"repository"`
	Branch         string        `mapstructure:"branch" yaml:"branch"`
	Directory      string        `mapstructure:"directory" yaml:"directory"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout" yaml:"-"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout" yaml:"-"`
	TokenVariables []string      `mapstructure:"token_variables" yaml:"token_variables"`
	DotenvFile     string        `mapstructure:"dotenv_file" yaml:"dotenv_file"`
	GitConfigKey   string        `mapstructure:"git_config_key" yaml:"git_config_key"`
	CleanupExports bool          `mapstructure:"cleanup_exports" yaml:"cleanup_exports"`
}

// ReleaseConfiguration describes the application repository and its versioned artifacts.
type ReleaseConfiguration struct {
	NotesFile    string                 `mapstructure:"notes_file" yaml:"notes_file"`
	RemoteName   string                 `mapstructure:"remote_name" yaml:"remote_name"`
	RemoteURL    string                 `mapstructure:"remote_url" yaml:"remote_url"`
	Branch       string                 `mapstructure:"branch" yaml:"branch"`
	BannerPrefix string                 `mapstructure:"banner_prefix" yaml:"banner_prefix"`
	Artifacts    releases.ArtifactPaths `mapstructure:"artifacts" yaml:"artifacts"`
}

type remoteConfigurationDocument struct {
	APIBaseURL     string   `yaml:"api_base_url"`
	Owner          string   `yaml:"owner"`
	Repository     string   `yaml:"repository"`
	Branch         string   `yaml:"branch"`
	Directory      string   `yaml:"directory"`
	ReadTimeout    string   `yaml:"read_timeout"`
	WriteTimeout   string   `yaml:"write_timeout"`
	TokenVariables []string `yaml:"token_variables"`
	DotenvFile     string   `yaml:"dotenv_file"`
	GitConfigKey   string   `yaml:"git_config_key"`
	CleanupExports bool     `yaml:"cleanup_exports"`
}

// MarshalYAML renders timeouts as duration strings so the dump reloads unchanged.
func (configuration RemoteConfiguration) MarshalYAML() (any, error) {
	return remoteConfigurationDocument{
		APIBaseURL:     configuration.APIBaseURL,
		Owner:          configuration.Owner,
		Repository:     configuration.Repository,
		Branch:         configuration.Branch,
		Directory:      configuration.Directory,
		ReadTimeout:    configuration.ReadTimeout.String(),
		WriteTimeout:   configuration.WriteTimeout.String(),
		TokenVariables: configuration.TokenVariables,
		DotenvFile:     configuration.DotenvFile,
		GitConfigKey:   configuration.GitConfigKey,
		CleanupExports: configuration.CleanupExports,
	}, nil
}

// Sanitize trims every section and applies defaults.
func (configuration ApplicationConfiguration) Sanitize() ApplicationConfiguration {
	return ApplicationConfiguration{
		Common:  configuration.Common.Sanitize(),
		Catalog: configuration.Catalog.Sanitize(),
		Remote:  configuration.Remote.Sanitize(),
		Release: configuration.Release.Sanitize(),
	}
}

// Sanitize trims the common settings and applies the default log level and format.
func (configuration CommonConfiguration) Sanitize() CommonConfiguration {
	sanitized := CommonConfiguration{
		LogLevel:    strings.ToLower(strings.TrimSpace(configuration.LogLevel)),
		LogFormat:   strings.ToLower(strings.TrimSpace(configuration.LogFormat)),
		ProjectRoot: strings.TrimSpace(configuration.ProjectRoot),
	}
	if len(sanitized.LogLevel) == 0 {
		sanitized.LogLevel = string(utils.LogLevelWarn)
	}
	if len(sanitized.LogFormat) == 0 {
		sanitized.LogFormat = string(utils.LogFormatConsole)
	}
	return sanitized
}

// Sanitize trims the catalog paths and applies defaults.
func (configuration CatalogConfiguration) Sanitize() CatalogConfiguration {
	return CatalogConfiguration{
		PromptsDirectory: valueOrDefault(configuration.PromptsDirectory, defaultPromptsDirectoryConstant),
		ExportsDirectory: valueOrDefault(configuration.ExportsDirectory, defaultExportsDirectoryConstant),
		ReleaseNotesFile: valueOrDefault(configuration.ReleaseNotesFile, defaultPromptsNotesFileConstant),
	}
}

// Sanitize trims the remote settings and applies defaults.
func (configuration RemoteConfiguration) Sanitize() RemoteConfiguration {
	target := contentstore.Target{
		APIBaseURL: configuration.APIBaseURL,
		Owner:      valueOrDefault(configuration.Owner, defaultRemoteOwnerConstant),
		Repository: valueOrDefault(configuration.Repository, defaultRemoteRepositoryConstant),
		Branch:     configuration.Branch,
	}.Sanitize()

	sanitized := RemoteConfiguration{
		APIBaseURL:     target.APIBaseURL,
		Owner:          target.Owner,
		Repository:     target.Repository,
		Branch:         target.Branch,
		Directory:      valueOrDefault(strings.Trim(strings.TrimSpace(configuration.Directory), "/"), reconcile.DefaultRemoteDirectory),
		ReadTimeout:    configuration.ReadTimeout,
		WriteTimeout:   configuration.WriteTimeout,
		DotenvFile:     valueOrDefault(configuration.DotenvFile, githubauth.DefaultDotenvFileName),
		GitConfigKey:   valueOrDefault(configuration.GitConfigKey, githubauth.DefaultGitConfigKey),
		CleanupExports: configuration.CleanupExports,
	}
	if sanitized.ReadTimeout <= 0 {
		sanitized.ReadTimeout = contentstore.DefaultReadTimeout
	}
	if sanitized.WriteTimeout <= 0 {
		sanitized.WriteTimeout = contentstore.DefaultWriteTimeout
	}
	for _, variable := range configuration.TokenVariables {
		if trimmedVariable := strings.TrimSpace(variable); len(trimmedVariable) > 0 {
			sanitized.TokenVariables = append(sanitized.TokenVariables, trimmedVariable)
		}
	}
	if len(sanitized.TokenVariables) == 0 {
		sanitized.TokenVariables = githubauth.DefaultEnvironmentKeys()
	}
	return sanitized
}

// Sanitize trims the release settings and applies defaults.
func (configuration ReleaseConfiguration) Sanitize() ReleaseConfiguration {
	return ReleaseConfiguration{
		NotesFile:    valueOrDefault(configuration.NotesFile, releases.DefaultReleaseNotesPath),
		RemoteName:   valueOrDefault(configuration.RemoteName, defaultReleaseRemoteNameConstant),
		RemoteURL:    strings.TrimSpace(configuration.RemoteURL),
		Branch:       valueOrDefault(configuration.Branch, contentstore.DefaultBranch),
		BannerPrefix: valueOrDefault(configuration.BannerPrefix, releases.DefaultBannerPrefix),
		Artifacts:    configuration.Artifacts.Sanitize(),
	}
}

// DefaultConfigurationValues seeds viper so every key can be overridden from the environment.
func DefaultConfigurationValues() map[string]any {
	return map[string]any{
		configurationKey(commonConfigurationKeyConstant, "log_level"):           string(utils.LogLevelWarn),
		configurationKey(commonConfigurationKeyConstant, "log_format"):          string(utils.LogFormatConsole),
		configurationKey(commonConfigurationKeyConstant, "project_root"):        "",
		configurationKey(catalogConfigurationKeyConstant, "prompts_directory"):  defaultPromptsDirectoryConstant,
		configurationKey(catalogConfigurationKeyConstant, "exports_directory"):  defaultExportsDirectoryConstant,
		configurationKey(catalogConfigurationKeyConstant, "release_notes_file"): defaultPromptsNotesFileConstant,
		configurationKey(remoteConfigurationKeyConstant, "api_base_url"):        contentstore.DefaultAPIBaseURL,
		configurationKey(remoteConfigurationKeyConstant, "owner"):               defaultRemoteOwnerConstant,
		configurationKey(remoteConfigurationKeyConstant, "repository"):          defaultRemoteRepositoryConstant,
		configurationKey(remoteConfigurationKeyConstant, "branch"):              contentstore.DefaultBranch,
		configurationKey(remoteConfigurationKeyConstant, "directory"):           reconcile.DefaultRemoteDirectory,
		configurationKey(remoteConfigurationKeyConstant, "read_timeout"):        contentstore.DefaultReadTimeout.String(),
		configurationKey(remoteConfigurationKeyConstant, "write_timeout"):       contentstore.DefaultWriteTimeout.String(),
		configurationKey(remoteConfigurationKeyConstant, "token_variables"):     githubauth.DefaultEnvironmentKeys(),
		configurationKey(remoteConfigurationKeyConstant, "dotenv_file"):         githubauth.DefaultDotenvFileName,
		configurationKey(remoteConfigurationKeyConstant, "git_config_key"):      githubauth.DefaultGitConfigKey,
		configurationKey(remoteConfigurationKeyConstant, "cleanup_exports"):     false,
		configurationKey(releaseConfigurationKeyConstant, "notes_file"):         releases.DefaultReleaseNotesPath,
		configurationKey(releaseConfigurationKeyConstant, "remote_name"):        defaultReleaseRemoteNameConstant,
		configurationKey(releaseConfigurationKeyConstant, "remote_url"):         defaultReleaseRemoteURLConstant,
		configurationKey(releaseConfigurationKeyConstant, "branch"):             contentstore.DefaultBranch,
		configurationKey(releaseConfigurationKeyConstant, "banner_prefix"):      releases.DefaultBannerPrefix,
	}
}

func configurationKey(section string, key string) string {
	return section + configurationKeySeparatorConstant + key
}

func valueOrDefault(value string, defaultValue string) string {
	trimmedValue := strings.TrimSpace(value)
	if len(trimmedValue) == 0 {
		return defaultValue
	}
	return trimmedValue
}
