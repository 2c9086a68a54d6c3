package reconcile

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/temirov/promptctl/internal/catalog"
	"github.com/temirov/promptctl/internal/contentstore"
)

const (
	renameMessageTemplate         = "Rename %s → %s"
	deleteMessageTemplate         = "Delete %s"
	deleteManifestMessageTemplate = "Update manifest after deleting %s"
	reorderMessageConstant        = "Reorder tabs"
	remoteTabMissingLogMessage    = "remote tab file missing, manifest order only"
	remoteTabDeletedLogMessage    = "remote tab deleted"
	remoteTabRenamedLogMessage    = "remote tab renamed"
	remoteReorderedLogMessage     = "remote tabs reordered"
)

// RemoteOutcome summarizes a remote single-item operation.
type RemoteOutcome struct {
	TabIDs          []string
	Manifest        catalog.Manifest
	ManifestWritten bool
}

// RenameRemote sets a new display name on a remote tab and its manifest entry.
func (engine *Engine) RenameRemote(executionContext context.Context, snapshot Snapshot, tabID string, displayName string) (RemoteOutcome, error) {
	entry, lookupError := engine.requireRemoteTab(snapshot, tabID)
	if lookupError != nil {
		return RemoteOutcome{}, lookupError
	}
	canonicalName := catalog.CanonicalName(displayName)
	if len(canonicalName) == 0 {
		return RemoteOutcome{}, catalog.FormatError{Field: nameFieldConstant, Message: nameRequiredMessageConstant}
	}
	message := fmt.Sprintf(renameMessageTemplate, entry.Name, canonicalName)

	tabPath := engine.remoteTabPath(tabID)
	tab, token, downloadError := engine.downloadTab(executionContext, tabPath, tabID)
	if downloadError != nil {
		if errors.Is(downloadError, contentstore.ErrNotFound) {
			return RemoteOutcome{}, fmt.Errorf("%w: %s", ErrTabNotFound, tabID)
		}
		return RemoteOutcome{}, BatchError{FailedPath: tabPath, FailedTabID: tabID, Cause: downloadError}
	}
	tab.Name = canonicalName
	if writeError := engine.putTab(executionContext, tabPath, tab, message, token); writeError != nil {
		return RemoteOutcome{}, BatchError{FailedPath: tabPath, FailedTabID: tabID, Cause: writeError}
	}

	manifest := snapshot.Manifest.Clone()
	entry.Name = canonicalName
	manifest.Tabs[tabID] = entry
	outcome := RemoteOutcome{TabIDs: []string{tabID}, Manifest: manifest}
	engine.logger.Info(remoteTabRenamedLogMessage, zap.String(tabIDLogFieldConstant, tabID), zap.String(nameLogFieldConstant, canonicalName))
	return engine.finishRemote(executionContext, outcome, snapshot, message)
}

// DeleteRemote removes a remote tab and then its manifest entry.
func (engine *Engine) DeleteRemote(executionContext context.Context, snapshot Snapshot, tabID string) (RemoteOutcome, error) {
	entry, lookupError := engine.requireRemoteTab(snapshot, tabID)
	if lookupError != nil {
		return RemoteOutcome{}, lookupError
	}
	tabPath := engine.remoteTabPath(tabID)
	object, getError := engine.remoteStore.Get(executionContext, tabPath)
	if getError != nil {
		if errors.Is(getError, contentstore.ErrNotFound) {
			return RemoteOutcome{}, fmt.Errorf("%w: %s", ErrTabNotFound, tabID)
		}
		return RemoteOutcome{}, BatchError{FailedPath: tabPath, FailedTabID: tabID, Cause: getError}
	}
	if deleteError := engine.remoteStore.Delete(executionContext, tabPath, fmt.Sprintf(deleteMessageTemplate, entry.Name), object.Token); deleteError != nil {
		return RemoteOutcome{}, BatchError{FailedPath: tabPath, FailedTabID: tabID, Cause: deleteError}
	}
	engine.logger.Info(remoteTabDeletedLogMessage, zap.String(tabIDLogFieldConstant, tabID))

	manifest := snapshot.Manifest.Clone()
	delete(manifest.Tabs, tabID)
	manifest.Renumber()
	outcome := RemoteOutcome{TabIDs: []string{tabID}, Manifest: manifest}
	return engine.finishRemote(executionContext, outcome, snapshot, fmt.Sprintf(deleteManifestMessageTemplate, entry.Name))
}

// ReorderRemote applies a permutation of the current display positions. Entry
// i of permutation names the current position of the tab that moves to i+1.
func (engine *Engine) ReorderRemote(executionContext context.Context, snapshot Snapshot, permutation []int) (RemoteOutcome, error) {
	if !snapshot.Present {
		return RemoteOutcome{}, ErrSnapshotAbsent
	}
	currentEntries := snapshot.Manifest.SortedEntries()
	if validationError := validatePermutation(permutation, len(currentEntries)); validationError != nil {
		return RemoteOutcome{}, validationError
	}
	if remoteError := engine.RequireRemote(); remoteError != nil {
		return RemoteOutcome{}, remoteError
	}

	manifest := snapshot.Manifest.Clone()
	outcome := RemoteOutcome{Manifest: manifest}
	for positionIndex, currentPosition := range permutation {
		orderedEntry := currentEntries[currentPosition-1]
		newOrder := positionIndex + 1
		entry := orderedEntry.Entry
		entry.Order = newOrder
		manifest.Tabs[orderedEntry.ID] = entry

		tabPath := engine.remoteTabPath(orderedEntry.ID)
		tab, token, downloadError := engine.downloadTab(executionContext, tabPath, orderedEntry.ID)
		if downloadError != nil {
			if errors.Is(downloadError, contentstore.ErrNotFound) {
				engine.logger.Warn(remoteTabMissingLogMessage, zap.String(tabIDLogFieldConstant, orderedEntry.ID))
				continue
			}
			return outcome, BatchError{FailedPath: tabPath, FailedTabID: orderedEntry.ID, Completed: outcome.TabIDs, Cause: downloadError}
		}
		tab.Order = newOrder
		if writeError := engine.putTab(executionContext, tabPath, tab, reorderMessageConstant, token); writeError != nil {
			return outcome, BatchError{FailedPath: tabPath, FailedTabID: orderedEntry.ID, Completed: outcome.TabIDs, Cause: writeError}
		}
		outcome.TabIDs = append(outcome.TabIDs, orderedEntry.ID)
	}
	engine.logger.Info(remoteReorderedLogMessage, zap.Int(tabsCountLogFieldConstant, len(outcome.TabIDs)))
	return engine.finishRemote(executionContext, outcome, snapshot, reorderMessageConstant)
}

func validatePermutation(permutation []int, expected int) error {
	rejection := PermutationError{Expected: expected, Received: append([]int(nil), permutation...)}
	if len(permutation) != expected {
		return rejection
	}
	seen := make(map[int]bool, expected)
	for _, position := range permutation {
		if position < 1 || position > expected || seen[position] {
			return rejection
		}
		seen[position] = true
	}
	return nil
}

func (engine *Engine) requireRemoteTab(snapshot Snapshot, tabID string) (catalog.ManifestEntry, error) {
	if remoteError := engine.RequireRemote(); remoteError != nil {
		return catalog.ManifestEntry{}, remoteError
	}
	if !snapshot.Present {
		return catalog.ManifestEntry{}, ErrSnapshotAbsent
	}
	entry, known := snapshot.Manifest.Tabs[tabID]
	if !known {
		return catalog.ManifestEntry{}, fmt.Errorf("%w: %s", ErrTabNotFound, tabID)
	}
	return entry, nil
}

func (engine *Engine) downloadTab(executionContext context.Context, tabPath string, tabID string) (catalog.Tab, string, error) {
	object, getError := engine.remoteStore.Get(executionContext, tabPath)
	if getError != nil {
		return catalog.Tab{}, "", getError
	}
	document, decodeError := catalog.DecodeTabDocument(object.Content, tabID)
	if decodeError != nil {
		return catalog.Tab{}, "", decodeError
	}
	return document.Tab, object.Token, nil
}

func (engine *Engine) putTab(executionContext context.Context, tabPath string, tab catalog.Tab, message string, token string) error {
	content, encodeError := catalog.EncodeTabDocument(tab)
	if encodeError != nil {
		return encodeError
	}
	return engine.remoteStore.Put(executionContext, tabPath, content, message, token)
}

// finishRemote writes the manifest conditionally on the snapshot token.
func (engine *Engine) finishRemote(executionContext context.Context, outcome RemoteOutcome, snapshot Snapshot, message string) (RemoteOutcome, error) {
	manifestPath := engine.remoteManifestPath()
	content, encodeError := catalog.EncodeManifest(outcome.Manifest)
	if encodeError != nil {
		return outcome, ManifestDesyncError{ManifestPath: manifestPath, Cause: encodeError}
	}
	if putError := engine.remoteStore.Put(executionContext, manifestPath, content, message, snapshot.Token); putError != nil {
		return outcome, ManifestDesyncError{ManifestPath: manifestPath, Cause: putError}
	}
	outcome.ManifestWritten = true
	engine.logger.Info(manifestWrittenLogMessage, zap.String(pathLogFieldConstant, manifestPath), zap.Int(tabsCountLogFieldConstant, len(outcome.Manifest.Tabs)))
	return outcome, nil
}
