// Package pathutils resolves user supplied paths against the project root.
package pathutils

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
)

const (
	tildeSymbolConstant             = "~"
	tildeForwardSlashPrefixConstant = "~/"
)

// HomeDirectoryProvider resolves the current user's home directory path.
type HomeDirectoryProvider func() (string, error)

// ProjectPathResolver expands home shortcuts and anchors relative paths at a project root.
type ProjectPathResolver struct {
	projectRoot           string
	homeDirectoryProvider HomeDirectoryProvider
	homeDirectory         string
	homeDirectoryError    error
	initializationGuard   sync.Once
}

// NewProjectPathResolver constructs a resolver for projectRoot using the operating system home lookup.
func NewProjectPathResolver(projectRoot string) *ProjectPathResolver {
	return NewProjectPathResolverWithProvider(projectRoot, os.UserHomeDir)
}

// NewProjectPathResolverWithProvider constructs a resolver with a custom home directory provider.
func NewProjectPathResolverWithProvider(projectRoot string, provider HomeDirectoryProvider) *ProjectPathResolver {
	if provider == nil {
		provider = os.UserHomeDir
	}
	resolver := &ProjectPathResolver{homeDirectoryProvider: provider}
	resolver.projectRoot = resolver.ExpandHome(strings.TrimSpace(projectRoot))
	return resolver
}

// ProjectRoot returns the expanded project root.
func (resolver *ProjectPathResolver) ProjectRoot() string {
	return resolver.projectRoot
}

// Resolve returns candidatePath expanded and cleaned. Relative paths are joined to the project root.
// Blank input yields the project root.
func (resolver *ProjectPathResolver) Resolve(candidatePath string) string {
	trimmedPath := strings.TrimSpace(candidatePath)
	if len(trimmedPath) == 0 {
		return resolver.projectRoot
	}
	expandedPath := resolver.ExpandHome(trimmedPath)
	if filepath.IsAbs(expandedPath) || len(resolver.projectRoot) == 0 {
		return filepath.Clean(expandedPath)
	}
	return filepath.Join(resolver.projectRoot, expandedPath)
}

// ExpandHome resolves a leading ~ or ~/ to the user's home directory.
func (resolver *ProjectPathResolver) ExpandHome(candidatePath string) string {
	if candidatePath != tildeSymbolConstant && !strings.HasPrefix(candidatePath, tildeForwardSlashPrefixConstant) && !strings.HasPrefix(candidatePath, tildeSymbolConstant+string(os.PathSeparator)) {
		return candidatePath
	}

	resolver.initializationGuard.Do(func() {
		resolver.homeDirectory, resolver.homeDirectoryError = resolver.homeDirectoryProvider()
	})
	if resolver.homeDirectoryError != nil || len(resolver.homeDirectory) == 0 {
		return candidatePath
	}
	if candidatePath == tildeSymbolConstant {
		return resolver.homeDirectory
	}
	return filepath.Join(resolver.homeDirectory, candidatePath[len(tildeForwardSlashPrefixConstant):])
}
