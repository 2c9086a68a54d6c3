package reconcile

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/temirov/promptctl/internal/catalog"
	"github.com/temirov/promptctl/internal/contentstore"
	"github.com/temirov/promptctl/internal/localstore"
)

const (
	defaultExportMessageTemplate    = "Prompts update %s"
	defaultExportMessageTimeLayout  = "2006-01-02 15:04"
	duplicateExportTemplateConstant = "duplicate tab id %q already provided by %s"
	remoteVersionTemplateConstant   = "remote version of %s: %w"
	readExportTemplateConstant      = "read export %s: %w"
	listExportsTemplateConstant     = "list exports in %s: %w"
	readNotesTemplateConstant       = "read release notes %s: %w"
	tabWriteStartedLogMessage       = "writing tab"
	tabWrittenLogMessage            = "tab written"
	manifestWrittenLogMessage       = "remote manifest written"
	exportRejectedLogMessage        = "export rejected"
	exportCleanupFailedLogMessage   = "export cleanup failed"
	exportCleanedLogMessage         = "export removed"
)

// ExportFile is a tab export read from the exports directory.
type ExportFile struct {
	FileName string
	Data     []byte
}

// PlannedWrite is one tab document scheduled for upload.
type PlannedWrite struct {
	TabID           string
	Name            string
	Path            string
	SourceFile      string
	PreviousVersion string
	Version         string
	Order           int
	Content         []byte
}

// Created reports whether the tab is unknown to the remote snapshot.
func (write PlannedWrite) Created() bool {
	return len(write.PreviousVersion) == 0
}

// RejectedExport is an export file that contributes nothing to the plan.
type RejectedExport struct {
	FileName string
	Cause    error
}

// ExportPlan is the full set of writes for one export batch.
type ExportPlan struct {
	Writes          []PlannedWrite
	Rejected        []RejectedExport
	Manifest        catalog.Manifest
	ManifestPath    string
	ManifestContent []byte
	ManifestToken   string
}

// WriteOutcome records one completed tab write.
type WriteOutcome struct {
	TabID   string
	Path    string
	Version string
	Created bool
}

// BatchResult summarizes a fully executed export batch.
type BatchResult struct {
	Written         []WriteOutcome
	ManifestWritten bool
	CleanedFiles    []string
}

// ScanExports reads every tab export from the exports directory in file name order.
func (engine *Engine) ScanExports() ([]ExportFile, error) {
	directory := engine.configuration.ExportsDirectory
	entries, listError := afero.ReadDir(engine.fileSystem, directory)
	if listError != nil {
		if errors.Is(listError, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf(listExportsTemplateConstant, directory, listError)
	}

	exports := make([]ExportFile, 0, len(entries))
	for _, entry := range entries {
		fileName := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(fileName, localstore.TabFileExtension) || fileName == localstore.ManifestFileName {
			continue
		}
		filePath := filepath.Join(directory, fileName)
		data, readError := afero.ReadFile(engine.fileSystem, filePath)
		if readError != nil {
			return nil, fmt.Errorf(readExportTemplateConstant, filePath, readError)
		}
		exports = append(exports, ExportFile{FileName: fileName, Data: data})
	}
	sort.Slice(exports, func(leftIndex int, rightIndex int) bool {
		return exports[leftIndex].FileName < exports[rightIndex].FileName
	})
	return exports, nil
}

// PlanExport resolves versions and orders for every export against the snapshot.
// Known tabs take the remote PATCH+1 and keep their remote order; new tabs start
// at 1.0.0 after the current maximum order.
func (engine *Engine) PlanExport(exports []ExportFile, snapshot Snapshot) (ExportPlan, error) {
	manifest := catalog.NewManifest()
	if snapshot.Present {
		manifest = snapshot.Manifest.Clone()
	}

	plan := ExportPlan{ManifestPath: engine.remoteManifestPath(), ManifestToken: snapshot.Token}
	planned := map[string]string{}
	tabs := make([]catalog.Tab, 0, len(exports))
	for _, export := range exports {
		stem := strings.TrimSuffix(export.FileName, localstore.TabFileExtension)
		document, decodeError := catalog.DecodeTabDocument(export.Data, stem)
		if decodeError != nil {
			plan.Rejected = append(plan.Rejected, engine.reject(export.FileName, decodeError))
			continue
		}
		tab := document.Tab
		if sourceFile, duplicate := planned[tab.ID]; duplicate {
			plan.Rejected = append(plan.Rejected, engine.reject(export.FileName, fmt.Errorf(duplicateExportTemplateConstant, tab.ID, sourceFile)))
			continue
		}

		write := PlannedWrite{TabID: tab.ID, SourceFile: export.FileName, Path: engine.remoteTabPath(tab.ID)}
		tab.Name = catalog.CanonicalName(tab.Name)
		if entry, known := manifest.Tabs[tab.ID]; known && snapshot.Present {
			bumpedVersion, bumpError := catalog.BumpPatchString(entry.Version)
			if bumpError != nil {
				plan.Rejected = append(plan.Rejected, engine.reject(export.FileName, fmt.Errorf(remoteVersionTemplateConstant, tab.ID, bumpError)))
				continue
			}
			write.PreviousVersion = catalog.NormalizeVersion(entry.Version)
			tab.Version = bumpedVersion
			tab.Order = entry.Order
		} else {
			tab.Version = catalog.InitialVersion
			tab.Order = manifest.MaxOrder() + 1
		}

		manifest.Tabs[tab.ID] = tab.Summary()
		planned[tab.ID] = export.FileName
		plan.Writes = append(plan.Writes, write)
		tabs = append(tabs, tab)
	}

	manifest.Renumber()
	for writeIndex := range plan.Writes {
		tab := tabs[writeIndex]
		entry := manifest.Tabs[tab.ID]
		tab.Order = entry.Order
		content, encodeError := catalog.EncodeTabDocument(tab)
		if encodeError != nil {
			return ExportPlan{}, encodeError
		}
		plan.Writes[writeIndex].Name = tab.Name
		plan.Writes[writeIndex].Version = tab.Version
		plan.Writes[writeIndex].Order = tab.Order
		plan.Writes[writeIndex].Content = content
	}

	releaseNotes, notesFound, notesError := engine.readReleaseNotes()
	if notesError != nil {
		return ExportPlan{}, notesError
	}
	if !notesFound {
		releaseNotes = manifest.ReleaseNotes
	}
	manifest.Stamp(engine.clock.Now(), releaseNotes)

	manifestContent, encodeError := catalog.EncodeManifest(manifest)
	if encodeError != nil {
		return ExportPlan{}, encodeError
	}
	plan.Manifest = manifest
	plan.ManifestContent = manifestContent
	return plan, nil
}

// ExecuteBatch uploads each planned tab and then the manifest. The first failed
// tab write stops the batch and the manifest is not written.
func (engine *Engine) ExecuteBatch(executionContext context.Context, plan ExportPlan, message string) (BatchResult, error) {
	if remoteError := engine.RequireRemote(); remoteError != nil {
		return BatchResult{}, remoteError
	}
	if len(plan.Writes) == 0 {
		return BatchResult{}, ErrNothingToExport
	}
	commitMessage := strings.TrimSpace(message)
	if len(commitMessage) == 0 {
		commitMessage = fmt.Sprintf(defaultExportMessageTemplate, engine.clock.Now().Format(defaultExportMessageTimeLayout))
	}

	result := BatchResult{}
	completedPaths := make([]string, 0, len(plan.Writes))
	for _, write := range plan.Writes {
		engine.logger.Debug(tabWriteStartedLogMessage, zap.String(pathLogFieldConstant, write.Path), zap.String(tabIDLogFieldConstant, write.TabID))
		token, tokenError := engine.currentToken(executionContext, write.Path)
		if tokenError == nil {
			tokenError = engine.remoteStore.Put(executionContext, write.Path, write.Content, commitMessage, token)
		}
		if tokenError != nil {
			return result, BatchError{FailedPath: write.Path, FailedTabID: write.TabID, Completed: completedPaths, Cause: tokenError}
		}
		completedPaths = append(completedPaths, write.Path)
		result.Written = append(result.Written, WriteOutcome{TabID: write.TabID, Path: write.Path, Version: write.Version, Created: write.Created()})
		engine.logger.Info(tabWrittenLogMessage, zap.String(tabIDLogFieldConstant, write.TabID), zap.String(versionLogFieldConstant, write.Version), zap.Int(orderLogFieldConstant, write.Order))
	}

	if putError := engine.remoteStore.Put(executionContext, plan.ManifestPath, plan.ManifestContent, commitMessage, plan.ManifestToken); putError != nil {
		return result, ManifestDesyncError{ManifestPath: plan.ManifestPath, Cause: putError}
	}
	result.ManifestWritten = true
	engine.logger.Info(manifestWrittenLogMessage, zap.String(pathLogFieldConstant, plan.ManifestPath), zap.Int(tabsCountLogFieldConstant, len(plan.Manifest.Tabs)))

	if engine.configuration.CleanupExports {
		result.CleanedFiles = engine.cleanupExports(plan.Writes)
	}
	return result, nil
}

// currentToken returns the token of the stored object, empty when the path is absent.
func (engine *Engine) currentToken(executionContext context.Context, remotePath string) (string, error) {
	object, getError := engine.remoteStore.Get(executionContext, remotePath)
	if getError != nil {
		if errors.Is(getError, contentstore.ErrNotFound) {
			return "", nil
		}
		return "", getError
	}
	return object.Token, nil
}

func (engine *Engine) cleanupExports(writes []PlannedWrite) []string {
	cleaned := make([]string, 0, len(writes))
	for _, write := range writes {
		filePath := filepath.Join(engine.configuration.ExportsDirectory, write.SourceFile)
		if removeError := engine.fileSystem.Remove(filePath); removeError != nil {
			engine.logger.Warn(exportCleanupFailedLogMessage, zap.String(fileLogFieldConstant, filePath), zap.Error(removeError))
			continue
		}
		engine.logger.Debug(exportCleanedLogMessage, zap.String(fileLogFieldConstant, filePath))
		cleaned = append(cleaned, write.SourceFile)
	}
	return cleaned
}

func (engine *Engine) reject(fileName string, cause error) RejectedExport {
	engine.logger.Warn(exportRejectedLogMessage, zap.String(fileLogFieldConstant, fileName), zap.Error(cause))
	return RejectedExport{FileName: fileName, Cause: cause}
}

func (engine *Engine) readReleaseNotes() (string, bool, error) {
	notesPath := engine.configuration.ReleaseNotesPath
	if len(notesPath) == 0 {
		return "", false, nil
	}
	data, readError := afero.ReadFile(engine.fileSystem, notesPath)
	if readError != nil {
		if errors.Is(readError, os.ErrNotExist) {
			return "", false, nil
		}
		return "", false, fmt.Errorf(readNotesTemplateConstant, notesPath, readError)
	}
	return strings.TrimSpace(string(data)), true, nil
}
