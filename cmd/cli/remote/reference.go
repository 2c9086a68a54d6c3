package remote

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/temirov/promptctl/internal/catalog"
	"github.com/temirov/promptctl/internal/reconcile"
)

// resolveRemoteTab accepts a remote tab identifier or its 1-based display position.
func resolveRemoteTab(snapshot reconcile.Snapshot, reference string) (catalog.OrderedEntry, error) {
	if !snapshot.Present {
		return catalog.OrderedEntry{}, reconcile.ErrSnapshotAbsent
	}
	trimmedReference := strings.TrimSpace(reference)
	entries := snapshot.Manifest.SortedEntries()
	for _, orderedEntry := range entries {
		if orderedEntry.ID == trimmedReference {
			return orderedEntry, nil
		}
	}
	position, parseError := strconv.Atoi(trimmedReference)
	if parseError == nil && position >= 1 && position <= len(entries) {
		return entries[position-1], nil
	}
	return catalog.OrderedEntry{}, fmt.Errorf("%w: %s", reconcile.ErrTabNotFound, trimmedReference)
}

func parsePositions(arguments []string) ([]int, error) {
	positions := make([]int, 0, len(arguments))
	for _, argument := range arguments {
		for _, field := range strings.FieldsFunc(argument, isPositionSeparator) {
			position, parseError := strconv.Atoi(field)
			if parseError != nil {
				return nil, fmt.Errorf("%w: %q is not a position", reconcile.ErrInvalidPermutation, field)
			}
			positions = append(positions, position)
		}
	}
	return positions, nil
}

func isPositionSeparator(character rune) bool {
	return character == ',' || character == ' '
}
