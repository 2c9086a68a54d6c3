package localstore

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/temirov/promptctl/internal/catalog"
)

const (
	// ManifestFileName is the catalog index stored beside the tab documents.
	ManifestFileName = "manifest.json"
	// TabFileExtension is the suffix of every tab document.
	TabFileExtension = ".json"

	directoryPermissions        = 0o755
	filePermissions             = 0o644
	directoryMissingMessage     = "catalog directory not configured"
	readFileTemplateConstant    = "read %s: %w"
	writeFileTemplateConstant   = "write %s: %w"
	removeFileTemplateConstant  = "remove %s: %w"
	decodeFileTemplateConstant  = "decode %s: %w"
	createDirectoryTemplate     = "create %s: %w"
	listDirectoryTemplate       = "list %s: %w"
	tabSavedLogMessage          = "tab saved"
	manifestSavedLogMessage     = "manifest saved"
	tabDeletedLogMessage        = "tab deleted"
	unreadableTabFileLogMessage = "skipping unreadable tab file"
	tabIDLogField               = "tab_id"
	pathLogField                = "path"
	versionLogField             = "version"
	tabsCountLogField           = "tabs"
)

// ErrDirectoryNotConfigured indicates a store constructed without a directory.
var ErrDirectoryNotConfigured = errors.New(directoryMissingMessage)

// Configuration describes where the catalog lives.
type Configuration struct {
	Directory        string
	ReleaseNotesPath string
}

// Dependencies are the collaborators a Store needs.
type Dependencies struct {
	FileSystem afero.Fs
	Clock      catalog.Clock
	Logger     *zap.Logger
}

// TabFile is a tab document found on disk.
type TabFile struct {
	FileName string
	ID       string
}

// Store reads and writes the local catalog.
type Store struct {
	configuration Configuration
	fileSystem    afero.Fs
	clock         catalog.Clock
	logger        *zap.Logger
}

// NewStore validates the configuration and constructs a Store.
func NewStore(configuration Configuration, dependencies Dependencies) (*Store, error) {
	if len(strings.TrimSpace(configuration.Directory)) == 0 {
		return nil, ErrDirectoryNotConfigured
	}
	fileSystem := dependencies.FileSystem
	if fileSystem == nil {
		fileSystem = afero.NewOsFs()
	}
	clock := dependencies.Clock
	if clock == nil {
		clock = catalog.SystemClock{}
	}
	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{configuration: configuration, fileSystem: fileSystem, clock: clock, logger: logger}, nil
}

// Directory returns the catalog directory.
func (store *Store) Directory() string {
	return store.configuration.Directory
}

// LoadManifest reads the manifest, returning the default manifest when none exists.
func (store *Store) LoadManifest() (catalog.Manifest, error) {
	manifestPath := store.manifestPath()
	data, readError := afero.ReadFile(store.fileSystem, manifestPath)
	if readError != nil {
		if errors.Is(readError, os.ErrNotExist) {
			return catalog.NewManifest(), nil
		}
		return catalog.Manifest{}, fmt.Errorf(readFileTemplateConstant, manifestPath, readError)
	}
	manifest, decodeError := catalog.DecodeManifest(data)
	if decodeError != nil {
		return catalog.Manifest{}, fmt.Errorf(decodeFileTemplateConstant, manifestPath, decodeError)
	}
	return manifest, nil
}

// SaveManifest stamps the manifest with today's date and the current release notes, then writes it.
func (store *Store) SaveManifest(manifest catalog.Manifest) error {
	releaseNotes, notesError := store.ReadReleaseNotes()
	if notesError != nil {
		return notesError
	}
	manifest.Stamp(store.clock.Now(), releaseNotes)

	encoded, encodeError := catalog.EncodeManifest(manifest)
	if encodeError != nil {
		return encodeError
	}
	if writeError := store.writeFile(store.manifestPath(), encoded); writeError != nil {
		return writeError
	}
	store.logger.Debug(manifestSavedLogMessage, zap.String(pathLogField, store.manifestPath()), zap.Int(tabsCountLogField, len(manifest.Tabs)))
	return nil
}

// ReadReleaseNotes returns the trimmed notes file content, empty when the file is absent.
func (store *Store) ReadReleaseNotes() (string, error) {
	notesPath := strings.TrimSpace(store.configuration.ReleaseNotesPath)
	if len(notesPath) == 0 {
		return "", nil
	}
	data, readError := afero.ReadFile(store.fileSystem, notesPath)
	if readError != nil {
		if errors.Is(readError, os.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf(readFileTemplateConstant, notesPath, readError)
	}
	return strings.TrimSpace(string(data)), nil
}

// LoadTab reads a tab document in either shape. The boolean reports whether the file exists.
func (store *Store) LoadTab(tabID string) (catalog.Tab, bool, error) {
	tabPath := store.TabPath(tabID)
	data, readError := afero.ReadFile(store.fileSystem, tabPath)
	if readError != nil {
		if errors.Is(readError, os.ErrNotExist) {
			return catalog.Tab{}, false, nil
		}
		return catalog.Tab{}, false, fmt.Errorf(readFileTemplateConstant, tabPath, readError)
	}
	document, decodeError := catalog.DecodeTabDocument(data, tabID)
	if decodeError != nil {
		return catalog.Tab{}, true, fmt.Errorf(decodeFileTemplateConstant, tabPath, decodeError)
	}
	return document.Tab, true, nil
}

// SaveTab writes the tab in the canonical nested shape.
func (store *Store) SaveTab(tab catalog.Tab) error {
	encoded, encodeError := catalog.EncodeTabDocument(tab)
	if encodeError != nil {
		return encodeError
	}
	tabPath := store.TabPath(tab.ID)
	if writeError := store.writeFile(tabPath, encoded); writeError != nil {
		return writeError
	}
	store.logger.Debug(tabSavedLogMessage, zap.String(tabIDLogField, tab.ID), zap.String(versionLogField, tab.Version))
	return nil
}

// DeleteTab removes the tab file and its manifest entry. Nothing is written when no file existed.
func (store *Store) DeleteTab(tabID string) (bool, error) {
	tabPath := store.TabPath(tabID)
	exists, existsError := afero.Exists(store.fileSystem, tabPath)
	if existsError != nil {
		return false, fmt.Errorf(readFileTemplateConstant, tabPath, existsError)
	}
	if !exists {
		return false, nil
	}
	if removeError := store.fileSystem.Remove(tabPath); removeError != nil {
		return false, fmt.Errorf(removeFileTemplateConstant, tabPath, removeError)
	}

	manifest, loadError := store.LoadManifest()
	if loadError != nil {
		return true, loadError
	}
	if manifest.Contains(tabID) {
		delete(manifest.Tabs, tabID)
		manifest.Renumber()
		if saveError := store.SaveManifest(manifest); saveError != nil {
			return true, saveError
		}
	}
	store.logger.Info(tabDeletedLogMessage, zap.String(tabIDLogField, tabID))
	return true, nil
}

// ScanTabFiles lists every tab document with the identifier it declares, falling
// back to the file name stem. Unreadable documents are reported by stem.
func (store *Store) ScanTabFiles() ([]TabFile, error) {
	directory := store.configuration.Directory
	exists, existsError := afero.DirExists(store.fileSystem, directory)
	if existsError != nil {
		return nil, fmt.Errorf(listDirectoryTemplate, directory, existsError)
	}
	if !exists {
		return nil, nil
	}
	entries, listError := afero.ReadDir(store.fileSystem, directory)
	if listError != nil {
		return nil, fmt.Errorf(listDirectoryTemplate, directory, listError)
	}

	tabFiles := make([]TabFile, 0, len(entries))
	for _, entry := range entries {
		fileName := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(fileName, TabFileExtension) || fileName == ManifestFileName {
			continue
		}
		stem := strings.TrimSuffix(fileName, TabFileExtension)
		tabFile := TabFile{FileName: fileName, ID: stem}
		data, readError := afero.ReadFile(store.fileSystem, filepath.Join(directory, fileName))
		if readError == nil {
			if document, decodeError := catalog.DecodeTabDocument(data, stem); decodeError == nil {
				tabFile.ID = document.Tab.ID
			} else {
				store.logger.Debug(unreadableTabFileLogMessage, zap.String(pathLogField, fileName), zap.Error(decodeError))
			}
		}
		tabFiles = append(tabFiles, tabFile)
	}
	sort.Slice(tabFiles, func(leftIndex int, rightIndex int) bool {
		return tabFiles[leftIndex].FileName < tabFiles[rightIndex].FileName
	})
	return tabFiles, nil
}

// RemoveTabFile deletes a document by file name without touching the manifest.
func (store *Store) RemoveTabFile(fileName string) error {
	filePath := filepath.Join(store.configuration.Directory, filepath.Base(fileName))
	if removeError := store.fileSystem.Remove(filePath); removeError != nil && !errors.Is(removeError, os.ErrNotExist) {
		return fmt.Errorf(removeFileTemplateConstant, filePath, removeError)
	}
	return nil
}

// TabPath returns the document path of tabID.
func (store *Store) TabPath(tabID string) string {
	return filepath.Join(store.configuration.Directory, tabID+TabFileExtension)
}

func (store *Store) manifestPath() string {
	return filepath.Join(store.configuration.Directory, ManifestFileName)
}

func (store *Store) writeFile(filePath string, data []byte) error {
	if mkdirError := store.fileSystem.MkdirAll(filepath.Dir(filePath), directoryPermissions); mkdirError != nil {
		return fmt.Errorf(createDirectoryTemplate, filepath.Dir(filePath), mkdirError)
	}
	if writeError := afero.WriteFile(store.fileSystem, filePath, data, filePermissions); writeError != nil {
		return fmt.Errorf(writeFileTemplateConstant, filePath, writeError)
	}
	return nil
}
