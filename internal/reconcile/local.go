package reconcile

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/temirov/promptctl/internal/catalog"
)

const (
	starterBlockTitleConstant   = "First block"
	starterBlockContentConstant = "First block content.\n\nEdit this text."
	bumpTemplateConstant        = "bump %s: %w"
	tabCreatedLogMessage        = "tab created"
	tabRenamedLogMessage        = "tab renamed"
	tabBumpedLogMessage         = "tab version bumped"
	bumpAllEmptyLogMessage      = "no tabs to bump"
	nameFieldConstant           = "name"
	nameRequiredMessageConstant = "is required"
)

// TabListing is one row of the local catalog listing.
type TabListing struct {
	ID          string
	Name        string
	Version     string
	Order       int
	BlockCount  int
	FilePresent bool
}

// VersionChange records a version bump.
type VersionChange struct {
	TabID           string
	PreviousVersion string
	Version         string
}

// ListTabs returns the local manifest entries in display order with block counts.
func (engine *Engine) ListTabs() ([]TabListing, error) {
	manifest, loadError := engine.localCatalog.LoadManifest()
	if loadError != nil {
		return nil, loadError
	}
	listings := make([]TabListing, 0, len(manifest.Tabs))
	for _, orderedEntry := range manifest.SortedEntries() {
		listing := TabListing{
			ID:      orderedEntry.ID,
			Name:    orderedEntry.Entry.Name,
			Version: catalog.NormalizeVersion(orderedEntry.Entry.Version),
			Order:   orderedEntry.Entry.Order,
		}
		tab, exists, tabError := engine.localCatalog.LoadTab(orderedEntry.ID)
		if tabError != nil {
			return nil, tabError
		}
		if exists {
			listing.FilePresent = true
			listing.BlockCount = len(tab.Items)
		}
		listings = append(listings, listing)
	}
	return listings, nil
}

// CreateTab adds a tab after the last one with version 1.0.0 and a starter block.
func (engine *Engine) CreateTab(displayName string) (catalog.Tab, error) {
	tabID, identifierError := catalog.DeriveID(displayName)
	if identifierError != nil {
		return catalog.Tab{}, identifierError
	}
	manifest, loadError := engine.localCatalog.LoadManifest()
	if loadError != nil {
		return catalog.Tab{}, loadError
	}
	_, fileExists, tabError := engine.localCatalog.LoadTab(tabID)
	if tabError != nil {
		return catalog.Tab{}, tabError
	}
	if fileExists || manifest.Contains(tabID) {
		return catalog.Tab{}, fmt.Errorf("%w: %s", ErrTabExists, tabID)
	}

	tab := catalog.Tab{
		ID:       tabID,
		Name:     catalog.CanonicalName(displayName),
		Order:    manifest.MaxOrder() + 1,
		Version:  catalog.InitialVersion,
		Items:    []catalog.Item{catalog.NewBlock(engine.identifierGenerator.Next(), starterBlockTitleConstant, starterBlockContentConstant)},
		Workflow: catalog.DefaultWorkflow(),
	}
	if saveError := engine.localCatalog.SaveTab(tab); saveError != nil {
		return catalog.Tab{}, saveError
	}
	manifest.Tabs[tabID] = tab.Summary()
	if saveError := engine.localCatalog.SaveManifest(manifest); saveError != nil {
		return catalog.Tab{}, saveError
	}
	engine.logger.Info(tabCreatedLogMessage, zap.String(tabIDLogFieldConstant, tabID), zap.Int(orderLogFieldConstant, tab.Order))
	return tab, nil
}

// RenameTab replaces the display name of a local tab. The identifier never changes.
func (engine *Engine) RenameTab(tabID string, displayName string) (catalog.ManifestEntry, error) {
	canonicalName := catalog.CanonicalName(displayName)
	if len(canonicalName) == 0 {
		return catalog.ManifestEntry{}, catalog.FormatError{Field: nameFieldConstant, Message: nameRequiredMessageConstant}
	}
	manifest, loadError := engine.localCatalog.LoadManifest()
	if loadError != nil {
		return catalog.ManifestEntry{}, loadError
	}
	entry, known := manifest.Tabs[tabID]
	if !known {
		return catalog.ManifestEntry{}, fmt.Errorf("%w: %s", ErrTabNotFound, tabID)
	}

	tab, exists, tabError := engine.localCatalog.LoadTab(tabID)
	if tabError != nil {
		return catalog.ManifestEntry{}, tabError
	}
	if exists {
		tab.Name = canonicalName
		if saveError := engine.localCatalog.SaveTab(tab); saveError != nil {
			return catalog.ManifestEntry{}, saveError
		}
	}
	entry.Name = canonicalName
	manifest.Tabs[tabID] = entry
	if saveError := engine.localCatalog.SaveManifest(manifest); saveError != nil {
		return catalog.ManifestEntry{}, saveError
	}
	engine.logger.Info(tabRenamedLogMessage, zap.String(tabIDLogFieldConstant, tabID), zap.String(nameLogFieldConstant, canonicalName))
	return entry, nil
}

// BumpTab increments the PATCH component of one local tab.
func (engine *Engine) BumpTab(tabID string) (VersionChange, error) {
	manifest, loadError := engine.localCatalog.LoadManifest()
	if loadError != nil {
		return VersionChange{}, loadError
	}
	if !manifest.Contains(tabID) {
		return VersionChange{}, fmt.Errorf("%w: %s", ErrTabNotFound, tabID)
	}
	change, bumpError := engine.bumpEntry(&manifest, tabID)
	if bumpError != nil {
		return VersionChange{}, bumpError
	}
	if saveError := engine.localCatalog.SaveManifest(manifest); saveError != nil {
		return VersionChange{}, saveError
	}
	return change, nil
}

// BumpAll increments every local tab and writes the manifest once. A failure
// leaves the tab files written before it updated and the manifest unchanged.
func (engine *Engine) BumpAll() ([]VersionChange, error) {
	manifest, loadError := engine.localCatalog.LoadManifest()
	if loadError != nil {
		return nil, loadError
	}
	if len(manifest.Tabs) == 0 {
		engine.logger.Debug(bumpAllEmptyLogMessage)
		return nil, nil
	}
	changes := make([]VersionChange, 0, len(manifest.Tabs))
	for _, orderedEntry := range manifest.SortedEntries() {
		change, bumpError := engine.bumpEntry(&manifest, orderedEntry.ID)
		if bumpError != nil {
			return changes, bumpError
		}
		changes = append(changes, change)
	}
	if saveError := engine.localCatalog.SaveManifest(manifest); saveError != nil {
		return changes, saveError
	}
	return changes, nil
}

// DeleteTab removes a local tab file together with its manifest entry.
func (engine *Engine) DeleteTab(tabID string) error {
	removed, deleteError := engine.localCatalog.DeleteTab(tabID)
	if deleteError != nil {
		return deleteError
	}
	if !removed {
		return fmt.Errorf("%w: %s", ErrTabNotFound, tabID)
	}
	return nil
}

func (engine *Engine) bumpEntry(manifest *catalog.Manifest, tabID string) (VersionChange, error) {
	entry := manifest.Tabs[tabID]
	previousVersion := catalog.NormalizeVersion(entry.Version)
	bumpedVersion, bumpError := catalog.BumpPatchString(previousVersion)
	if bumpError != nil {
		return VersionChange{}, fmt.Errorf(bumpTemplateConstant, tabID, bumpError)
	}

	tab, exists, tabError := engine.localCatalog.LoadTab(tabID)
	if tabError != nil {
		return VersionChange{}, tabError
	}
	if exists {
		tab.Version = bumpedVersion
		if saveError := engine.localCatalog.SaveTab(tab); saveError != nil {
			return VersionChange{}, saveError
		}
	}
	entry.Version = bumpedVersion
	manifest.Tabs[tabID] = entry
	engine.logger.Info(tabBumpedLogMessage, zap.String(tabIDLogFieldConstant, tabID), zap.String(versionLogFieldConstant, bumpedVersion))
	return VersionChange{TabID: tabID, PreviousVersion: previousVersion, Version: bumpedVersion}, nil
}
