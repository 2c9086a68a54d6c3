package releases

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/temirov/promptctl/internal/catalog"
)

const (
	// DefaultDescriptorPath is the application descriptor carrying the authoritative version.
	DefaultDescriptorPath = "src-tauri/tauri.conf.json"
	// DefaultBuildManifestPath is the native build manifest.
	DefaultBuildManifestPath = "src-tauri/Cargo.toml"
	// DefaultDocumentPath is the generated front-end document.
	DefaultDocumentPath = "dist/index.html"
	// DefaultBannerPrefix precedes the version in the document banner.
	DefaultBannerPrefix = "AI PROMPTS MANAGER v"
	// UnknownVersion is reported when the descriptor cannot be read.
	UnknownVersion = "0.0.0"

	descriptorArtifactName       = "descriptor"
	buildManifestArtifactName    = "build manifest"
	documentTagArtifactName      = "document version tag"
	documentBannerArtifactName   = "document banner"
	readArtifactTemplateConstant = "read %s: %w"
	writeArtifactTemplate        = "write %s: %w"
	invalidVersionTemplate       = "%w: %v"
	invalidVersionMessage        = "release version must be MAJOR.MINOR.PATCH"
	artifactUpdatedLogMessage    = "artifact version updated"
	artifactUnchangedLogMessage  = "artifact pattern not matched"
	artifactLogFieldConstant     = "artifact"
	versionLogFieldConstant      = "version"
	filePermissionsConstant      = 0o644
)

var (
	// ErrInvalidVersion is returned for a version that is not a MAJOR.MINOR.PATCH triplet.
	ErrInvalidVersion = errors.New(invalidVersionMessage)

	descriptorVersionPattern    = regexp.MustCompile(`"version":\s*"[^"]+"`)
	buildManifestVersionPattern = regexp.MustCompile(`(?m)^version\s*=\s*"[^"]+"`)
	documentTagPattern          = regexp.MustCompile(`(<span id="settings-version">)([^<]+)(</span>)`)
)

// ArtifactPaths locates the versioned artifacts relative to the project root.
type ArtifactPaths struct {
	Descriptor    string `mapstructure:"descriptor" yaml:"descriptor"`
	BuildManifest string `mapstructure:"build_manifest" yaml:"build_manifest"`
	Document      string `mapstructure:"document" yaml:"document"`
}

// Sanitize applies default artifact locations.
func (paths ArtifactPaths) Sanitize() ArtifactPaths {
	sanitized := ArtifactPaths{
		Descriptor:    strings.TrimSpace(paths.Descriptor),
		BuildManifest: strings.TrimSpace(paths.BuildManifest),
		Document:      strings.TrimSpace(paths.Document),
	}
	if len(sanitized.Descriptor) == 0 {
		sanitized.Descriptor = DefaultDescriptorPath
	}
	if len(sanitized.BuildManifest) == 0 {
		sanitized.BuildManifest = DefaultBuildManifestPath
	}
	if len(sanitized.Document) == 0 {
		sanitized.Document = DefaultDocumentPath
	}
	return sanitized
}

// ArtifactVersion is the version one artifact location currently carries.
type ArtifactVersion struct {
	Artifact string
	Path     string
	Version  string
	Present  bool
}

// Inspection lists the version of every artifact location.
type Inspection struct {
	Artifacts  []ArtifactVersion
	Consistent bool
}

// Propagator rewrites the release version in the application artifacts.
type Propagator struct {
	projectRoot   string
	paths         ArtifactPaths
	bannerPattern *regexp.Regexp
	fileSystem    afero.Fs
	logger        *zap.Logger
}

type buildManifestDocument struct {
	Package struct {
		Version string `toml:"version"`
	} `toml:"package"`
}

// NewPropagator constructs a Propagator rooted at projectRoot.
func NewPropagator(projectRoot string, paths ArtifactPaths, bannerPrefix string, fileSystem afero.Fs, logger *zap.Logger) *Propagator {
	if fileSystem == nil {
		fileSystem = afero.NewOsFs()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(strings.TrimSpace(bannerPrefix)) == 0 {
		bannerPrefix = DefaultBannerPrefix
	}
	return &Propagator{
		projectRoot:   projectRoot,
		paths:         paths.Sanitize(),
		bannerPattern: regexp.MustCompile(`(` + regexp.QuoteMeta(bannerPrefix) + `)([0-9]+\.[0-9]+\.[0-9]+)`),
		fileSystem:    fileSystem,
		logger:        logger,
	}
}

// ValidateVersion checks a release version and returns it trimmed.
func ValidateVersion(version string) (string, error) {
	parsed, parseError := catalog.ParseVersion(version)
	if parseError != nil {
		return "", fmt.Errorf(invalidVersionTemplate, ErrInvalidVersion, parseError)
	}
	return parsed.String(), nil
}

// Apply writes version into every artifact. Missing files and unmatched
// patterns are skipped. The returned list names the files that changed.
func (propagator *Propagator) Apply(version string) ([]string, error) {
	validatedVersion, validationError := ValidateVersion(version)
	if validationError != nil {
		return nil, validationError
	}

	rewrites := []struct {
		path    string
		rewrite func(content string) string
	}{
		{
			path: propagator.paths.Descriptor,
			rewrite: func(content string) string {
				location := descriptorVersionPattern.FindStringIndex(content)
				if location == nil {
					return content
				}
				return content[:location[0]] + fmt.Sprintf(`"version": "%s"`, validatedVersion) + content[location[1]:]
			},
		},
		{
			path: propagator.paths.BuildManifest,
			rewrite: func(content string) string {
				return buildManifestVersionPattern.ReplaceAllLiteralString(content, fmt.Sprintf(`version = "%s"`, validatedVersion))
			},
		},
		{
			path: propagator.paths.Document,
			rewrite: func(content string) string {
				content = documentTagPattern.ReplaceAllString(content, "${1}"+validatedVersion+"${3}")
				return propagator.bannerPattern.ReplaceAllString(content, "${1}"+validatedVersion)
			},
		},
	}

	var changed []string
	for _, artifact := range rewrites {
		content, exists, readError := propagator.read(artifact.path)
		if readError != nil {
			return changed, readError
		}
		if !exists {
			continue
		}
		updated := artifact.rewrite(content)
		if updated == content {
			propagator.logger.Debug(artifactUnchangedLogMessage, zap.String(artifactLogFieldConstant, artifact.path))
			continue
		}
		if writeError := afero.WriteFile(propagator.fileSystem, propagator.resolve(artifact.path), []byte(updated), filePermissionsConstant); writeError != nil {
			return changed, fmt.Errorf(writeArtifactTemplate, artifact.path, writeError)
		}
		propagator.logger.Info(artifactUpdatedLogMessage, zap.String(artifactLogFieldConstant, artifact.path), zap.String(versionLogFieldConstant, validatedVersion))
		changed = append(changed, artifact.path)
	}
	return changed, nil
}

// Inspect reports the version each artifact location carries.
func (propagator *Propagator) Inspect() (Inspection, error) {
	inspection := Inspection{}

	descriptorVersion := ArtifactVersion{Artifact: descriptorArtifactName, Path: propagator.paths.Descriptor}
	descriptorContent, descriptorExists, descriptorError := propagator.read(propagator.paths.Descriptor)
	if descriptorError != nil {
		return Inspection{}, descriptorError
	}
	if descriptorExists {
		descriptor := struct {
			Version string `json:"version"`
		}{}
		if json.Unmarshal([]byte(descriptorContent), &descriptor) == nil && len(descriptor.Version) > 0 {
			descriptorVersion.Version = descriptor.Version
			descriptorVersion.Present = true
		}
	}
	inspection.Artifacts = append(inspection.Artifacts, descriptorVersion)

	manifestVersion := ArtifactVersion{Artifact: buildManifestArtifactName, Path: propagator.paths.BuildManifest}
	manifestContent, manifestExists, manifestError := propagator.read(propagator.paths.BuildManifest)
	if manifestError != nil {
		return Inspection{}, manifestError
	}
	if manifestExists {
		document := buildManifestDocument{}
		if toml.Unmarshal([]byte(manifestContent), &document) == nil && len(document.Package.Version) > 0 {
			manifestVersion.Version = document.Package.Version
			manifestVersion.Present = true
		}
	}
	inspection.Artifacts = append(inspection.Artifacts, manifestVersion)

	tagVersion := ArtifactVersion{Artifact: documentTagArtifactName, Path: propagator.paths.Document}
	bannerVersion := ArtifactVersion{Artifact: documentBannerArtifactName, Path: propagator.paths.Document}
	documentContent, documentExists, documentError := propagator.read(propagator.paths.Document)
	if documentError != nil {
		return Inspection{}, documentError
	}
	if documentExists {
		if match := documentTagPattern.FindStringSubmatch(documentContent); match != nil {
			tagVersion.Version = strings.TrimSpace(match[2])
			tagVersion.Present = true
		}
		if match := propagator.bannerPattern.FindStringSubmatch(documentContent); match != nil {
			bannerVersion.Version = match[2]
			bannerVersion.Present = true
		}
	}
	inspection.Artifacts = append(inspection.Artifacts, tagVersion, bannerVersion)

	inspection.Consistent = true
	reference := ""
	for _, artifact := range inspection.Artifacts {
		if !artifact.Present {
			continue
		}
		if len(reference) == 0 {
			reference = artifact.Version
			continue
		}
		if artifact.Version != reference {
			inspection.Consistent = false
		}
	}
	return inspection, nil
}

// CurrentVersion returns the descriptor version, UnknownVersion when it cannot be read.
func (propagator *Propagator) CurrentVersion() string {
	inspection, inspectionError := propagator.Inspect()
	if inspectionError != nil || len(inspection.Artifacts) == 0 || !inspection.Artifacts[0].Present {
		return UnknownVersion
	}
	return inspection.Artifacts[0].Version
}

func (propagator *Propagator) read(relativePath string) (string, bool, error) {
	data, readError := afero.ReadFile(propagator.fileSystem, propagator.resolve(relativePath))
	if readError != nil {
		if errors.Is(readError, os.ErrNotExist) {
			return "", false, nil
		}
		return "", false, fmt.Errorf(readArtifactTemplateConstant, relativePath, readError)
	}
	return string(data), true, nil
}

func (propagator *Propagator) resolve(relativePath string) string {
	if filepath.IsAbs(relativePath) {
		return relativePath
	}
	return filepath.Join(propagator.projectRoot, relativePath)
}
