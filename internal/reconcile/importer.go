package reconcile

import (
	"context"
	"fmt"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/temirov/promptctl/internal/catalog"
)

const (
	readImportTemplateConstant = "read import %s: %w"
	staleFileRemovedLogMessage = "removed stale tab file"
	tabImportedLogMessage      = "tab imported"
	updatedLogFieldConstant    = "updated"
)

// ImportResult describes one imported tab.
type ImportResult struct {
	TabID        string
	Name         string
	Version      string
	Order        int
	Updated      bool
	RemovedFiles []string
}

// ImportFile imports a tab payload read from disk.
func (engine *Engine) ImportFile(executionContext context.Context, filePath string, snapshot Snapshot) (ImportResult, error) {
	payload, readError := afero.ReadFile(engine.fileSystem, filePath)
	if readError != nil {
		return ImportResult{}, fmt.Errorf(readImportTemplateConstant, filePath, readError)
	}
	return engine.ImportTab(executionContext, payload, "", snapshot)
}

// ImportTab writes a tab payload into the local catalog. The payload identifier
// wins, then fallbackID, then the identifier derived from the display name.
// Versions prefer the remote snapshot, then the local manifest, then 1.0.0.
func (engine *Engine) ImportTab(executionContext context.Context, payload []byte, fallbackID string, snapshot Snapshot) (ImportResult, error) {
	document, decodeError := catalog.DecodeTabDocument(payload, fallbackID)
	if decodeError != nil {
		return ImportResult{}, decodeError
	}
	if validationError := document.ValidateImport(); validationError != nil {
		return ImportResult{}, validationError
	}
	tab := document.Tab
	if len(tab.ID) == 0 {
		derivedID, identifierError := catalog.DeriveID(tab.Name)
		if identifierError != nil {
			return ImportResult{}, identifierError
		}
		tab.ID = derivedID
	}
	if contextError := executionContext.Err(); contextError != nil {
		return ImportResult{}, contextError
	}

	removedFiles, cleanupError := engine.removeStaleTabFiles(tab.ID)
	if cleanupError != nil {
		return ImportResult{}, cleanupError
	}

	manifest, loadError := engine.localCatalog.LoadManifest()
	if loadError != nil {
		return ImportResult{}, loadError
	}
	localEntry, knownLocally := manifest.Tabs[tab.ID]
	remoteEntry, knownRemotely := snapshot.Manifest.Tabs[tab.ID]

	tab.Name = catalog.CanonicalName(tab.Name)
	switch {
	case knownLocally:
		tab.Order = localEntry.Order
	default:
		tab.Order = manifest.MaxOrder() + 1
	}
	switch {
	case snapshot.Present && knownRemotely:
		tab.Version = catalog.NormalizeVersion(remoteEntry.Version)
	case knownLocally:
		tab.Version = catalog.NormalizeVersion(localEntry.Version)
	default:
		tab.Version = catalog.InitialVersion
	}

	if saveError := engine.localCatalog.SaveTab(tab); saveError != nil {
		return ImportResult{}, saveError
	}
	manifest.Tabs[tab.ID] = tab.Summary()
	if saveError := engine.localCatalog.SaveManifest(manifest); saveError != nil {
		return ImportResult{}, saveError
	}

	engine.logger.Info(tabImportedLogMessage,
		zap.String(tabIDLogFieldConstant, tab.ID),
		zap.String(versionLogFieldConstant, tab.Version),
		zap.Int(orderLogFieldConstant, tab.Order),
		zap.Bool(updatedLogFieldConstant, knownLocally),
	)
	return ImportResult{
		TabID:        tab.ID,
		Name:         tab.Name,
		Version:      tab.Version,
		Order:        tab.Order,
		Updated:      knownLocally,
		RemovedFiles: removedFiles,
	}, nil
}

// removeStaleTabFiles deletes documents declaring tabID under another file name.
func (engine *Engine) removeStaleTabFiles(tabID string) ([]string, error) {
	tabFiles, scanError := engine.localCatalog.ScanTabFiles()
	if scanError != nil {
		return nil, scanError
	}
	canonicalFileName := fmt.Sprintf(tabFileTemplateConstant, tabID)
	var removedFiles []string
	for _, tabFile := range tabFiles {
		if tabFile.ID != tabID || tabFile.FileName == canonicalFileName {
			continue
		}
		if removeError := engine.localCatalog.RemoveTabFile(tabFile.FileName); removeError != nil {
			return removedFiles, removeError
		}
		engine.logger.Info(staleFileRemovedLogMessage, zap.String(fileLogFieldConstant, tabFile.FileName), zap.String(tabIDLogFieldConstant, tabID))
		removedFiles = append(removedFiles, tabFile.FileName)
	}
	return removedFiles, nil
}
