package reconcile

import (
	"context"
	"fmt"
	"math/rand/v2"
	"path"
	"strings"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/temirov/promptctl/internal/catalog"
	"github.com/temirov/promptctl/internal/contentstore"
	"github.com/temirov/promptctl/internal/localstore"
)

const (
	// DefaultRemoteDirectory is the repository directory holding the remote catalog.
	DefaultRemoteDirectory = "prompts"

	snapshotFetchedLogMessage   = "remote manifest fetched"
	snapshotAbsentLogMessage    = "remote manifest unavailable, treating catalog as empty"
	snapshotUndecodedLogMessage = "remote manifest undecodable, treating catalog as empty"
	pathLogFieldConstant        = "path"
	tabIDLogFieldConstant       = "tab_id"
	versionLogFieldConstant     = "version"
	orderLogFieldConstant       = "order"
	fileLogFieldConstant        = "file"
	tabsCountLogFieldConstant   = "tabs"
	nameLogFieldConstant        = "name"
	tabFileTemplateConstant     = "%s.json"
)

// LocalCatalog is the local store contract consumed by the engine.
type LocalCatalog interface {
	LoadManifest() (catalog.Manifest, error)
	SaveManifest(manifest catalog.Manifest) error
	LoadTab(tabID string) (catalog.Tab, bool, error)
	SaveTab(tab catalog.Tab) error
	DeleteTab(tabID string) (bool, error)
	ScanTabFiles() ([]localstore.TabFile, error)
	RemoveTabFile(fileName string) error
}

// Configuration describes the directories and files the engine works with.
type Configuration struct {
	ExportsDirectory string
	RemoteDirectory  string
	ReleaseNotesPath string
	CleanupExports   bool
}

// Sanitize trims the configuration and applies defaults.
func (configuration Configuration) Sanitize() Configuration {
	sanitized := configuration
	sanitized.ExportsDirectory = strings.TrimSpace(configuration.ExportsDirectory)
	sanitized.ReleaseNotesPath = strings.TrimSpace(configuration.ReleaseNotesPath)
	sanitized.RemoteDirectory = strings.Trim(strings.TrimSpace(configuration.RemoteDirectory), "/")
	if len(sanitized.RemoteDirectory) == 0 {
		sanitized.RemoteDirectory = DefaultRemoteDirectory
	}
	return sanitized
}

// Dependencies are the collaborators of an Engine. RemoteStore may be nil for
// engines that only touch the local catalog.
type Dependencies struct {
	LocalCatalog        LocalCatalog
	RemoteStore         contentstore.Store
	FileSystem          afero.Fs
	Clock               catalog.Clock
	IdentifierGenerator *catalog.ItemIdentifierGenerator
	Logger              *zap.Logger
}

// Engine reconciles the local and remote catalogs.
type Engine struct {
	configuration       Configuration
	localCatalog        LocalCatalog
	remoteStore         contentstore.Store
	fileSystem          afero.Fs
	clock               catalog.Clock
	identifierGenerator *catalog.ItemIdentifierGenerator
	logger              *zap.Logger
}

// Snapshot is a best-effort view of the remote manifest.
type Snapshot struct {
	Manifest catalog.Manifest
	Token    string
	Present  bool
}

// NewEngine validates dependencies and constructs an Engine.
func NewEngine(configuration Configuration, dependencies Dependencies) (*Engine, error) {
	if dependencies.LocalCatalog == nil {
		return nil, ErrLocalCatalogNotConfigured
	}
	fileSystem := dependencies.FileSystem
	if fileSystem == nil {
		fileSystem = afero.NewOsFs()
	}
	clock := dependencies.Clock
	if clock == nil {
		clock = catalog.SystemClock{}
	}
	identifierGenerator := dependencies.IdentifierGenerator
	if identifierGenerator == nil {
		seed := uint64(clock.Now().UnixNano())
		identifierGenerator = catalog.NewItemIdentifierGenerator(clock, rand.New(rand.NewPCG(seed, seed>>1)))
	}
	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		configuration:       configuration.Sanitize(),
		localCatalog:        dependencies.LocalCatalog,
		remoteStore:         dependencies.RemoteStore,
		fileSystem:          fileSystem,
		clock:               clock,
		identifierGenerator: identifierGenerator,
		logger:              logger,
	}, nil
}

// FetchSnapshot downloads the remote manifest. Every failure yields an absent snapshot.
func (engine *Engine) FetchSnapshot(executionContext context.Context) Snapshot {
	absent := Snapshot{Manifest: catalog.NewManifest()}
	if engine.remoteStore == nil {
		return absent
	}
	manifestPath := engine.remoteManifestPath()
	object, getError := engine.remoteStore.Get(executionContext, manifestPath)
	if getError != nil {
		engine.logger.Warn(snapshotAbsentLogMessage, zap.String(pathLogFieldConstant, manifestPath), zap.Error(getError))
		return absent
	}
	manifest, decodeError := catalog.DecodeManifest(object.Content)
	if decodeError != nil {
		engine.logger.Warn(snapshotUndecodedLogMessage, zap.String(pathLogFieldConstant, manifestPath), zap.Error(decodeError))
		return absent
	}
	engine.logger.Debug(snapshotFetchedLogMessage, zap.String(pathLogFieldConstant, manifestPath), zap.Int(tabsCountLogFieldConstant, len(manifest.Tabs)))
	return Snapshot{Manifest: manifest, Token: object.Token, Present: true}
}

// RequireRemote reports whether remote writes can proceed: a store must be configured and hold a credential.
func (engine *Engine) RequireRemote() error {
	if engine.remoteStore == nil {
		return ErrRemoteStoreNotConfigured
	}
	return engine.remoteStore.RequireCredential()
}

func (engine *Engine) remoteTabPath(tabID string) string {
	return path.Join(engine.configuration.RemoteDirectory, fmt.Sprintf(tabFileTemplateConstant, tabID))
}

func (engine *Engine) remoteManifestPath() string {
	return path.Join(engine.configuration.RemoteDirectory, localstore.ManifestFileName)
}
