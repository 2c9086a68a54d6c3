package reconcile

import (
	"errors"
	"fmt"
)

const (
	remoteStoreMissingMessage         = "remote content store not configured"
	localCatalogMissingMessage        = "local catalog store not configured"
	tabNotFoundMessageConstant        = "tab not found"
	tabExistsMessageConstant          = "tab already exists"
	snapshotAbsentMessageConstant     = "remote catalog is not available"
	nothingToExportMessageConstant    = "no tab exports to push"
	invalidPermutationMessage         = "invalid tab permutation"
	permutationLengthTemplateConstant = "%s: expected %d positions, received %d"
	permutationValuesTemplateConstant = "%s: positions must cover 1..%d exactly once"
	batchFailureTemplateConstant      = "batch stopped at %s (tab %s): %v"
	manifestDesyncTemplateConstant    = "content updated but manifest %s not written: %v"
)

var (
	// ErrRemoteStoreNotConfigured indicates an engine built without a content store.
	ErrRemoteStoreNotConfigured = errors.New(remoteStoreMissingMessage)
	// ErrLocalCatalogNotConfigured indicates an engine built without a local catalog.
	ErrLocalCatalogNotConfigured = errors.New(localCatalogMissingMessage)
	// ErrTabNotFound reports an identifier unknown to the addressed catalog.
	ErrTabNotFound = errors.New(tabNotFoundMessageConstant)
	// ErrTabExists reports a create for an identifier already in use.
	ErrTabExists = errors.New(tabExistsMessageConstant)
	// ErrSnapshotAbsent reports a remote operation attempted without a fetched remote manifest.
	ErrSnapshotAbsent = errors.New(snapshotAbsentMessageConstant)
	// ErrNothingToExport reports an export plan without tab writes.
	ErrNothingToExport = errors.New(nothingToExportMessageConstant)
	// ErrInvalidPermutation is matched by PermutationError.
	ErrInvalidPermutation = errors.New(invalidPermutationMessage)
)

// PermutationError describes a rejected reorder request.
type PermutationError struct {
	Expected int
	Received []int
}

// Error describes the mismatch.
func (permutationError PermutationError) Error() string {
	if len(permutationError.Received) != permutationError.Expected {
		return fmt.Sprintf(permutationLengthTemplateConstant, invalidPermutationMessage, permutationError.Expected, len(permutationError.Received))
	}
	return fmt.Sprintf(permutationValuesTemplateConstant, invalidPermutationMessage, permutationError.Expected)
}

// Is matches ErrInvalidPermutation.
func (permutationError PermutationError) Is(target error) bool {
	return target == ErrInvalidPermutation
}

// BatchError names the write that stopped a batch. Writes listed in Completed
// reached the remote store before the failure.
type BatchError struct {
	FailedPath  string
	FailedTabID string
	Completed   []string
	Cause       error
}

// Error describes the failed write.
func (batchError BatchError) Error() string {
	return fmt.Sprintf(batchFailureTemplateConstant, batchError.FailedPath, batchError.FailedTabID, batchError.Cause)
}

// Unwrap exposes the store failure.
func (batchError BatchError) Unwrap() error {
	return batchError.Cause
}

// ManifestDesyncError reports content writes that succeeded while the manifest write failed.
type ManifestDesyncError struct {
	ManifestPath string
	Cause        error
}

// Error describes the stale index.
func (desyncError ManifestDesyncError) Error() string {
	return fmt.Sprintf(manifestDesyncTemplateConstant, desyncError.ManifestPath, desyncError.Cause)
}

// Unwrap exposes the store failure.
func (desyncError ManifestDesyncError) Unwrap() error {
	return desyncError.Cause
}
