package catalog

import (
	"sort"
	"strings"
	"time"
)

const (
	// DefaultManifestVersion is the catalog-wide version of a freshly created manifest.
	DefaultManifestVersion = "1.0.0"
	// UpdatedDateLayout formats the manifest "updated" field.
	UpdatedDateLayout = "2006-01-02"
)

// ManifestEntry is the summary projection of a tab stored in the manifest.
type ManifestEntry struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Order   int    `json:"order"`
}

// Manifest is the catalog root index.
type Manifest struct {
	Version      string                   `json:"version"`
	Updated      string                   `json:"updated"`
	ReleaseNotes string                   `json:"release_notes"`
	Tabs         map[string]ManifestEntry `json:"tabs"`
}

// OrderedEntry pairs a manifest entry with its tab identifier.
type OrderedEntry struct {
	ID    string
	Entry ManifestEntry
}

// NewManifest returns the default empty manifest.
func NewManifest() Manifest {
	return Manifest{Version: DefaultManifestVersion, Tabs: map[string]ManifestEntry{}}
}

// Clone returns a deep copy of the manifest.
func (manifest Manifest) Clone() Manifest {
	cloned := manifest
	cloned.Tabs = make(map[string]ManifestEntry, len(manifest.Tabs))
	for tabID, entry := range manifest.Tabs {
		cloned.Tabs[tabID] = entry
	}
	return cloned
}

// Contains reports whether the manifest knows tabID.
func (manifest Manifest) Contains(tabID string) bool {
	_, exists := manifest.Tabs[tabID]
	return exists
}

// MaxOrder returns the largest order value, or zero for an empty manifest.
func (manifest Manifest) MaxOrder() int {
	maximum := 0
	for _, entry := range manifest.Tabs {
		if entry.Order > maximum {
			maximum = entry.Order
		}
	}
	return maximum
}

// SortedEntries lists the entries by order. Equal orders fall back to the tab
// identifier, and entries without a positive order come last.
func (manifest Manifest) SortedEntries() []OrderedEntry {
	entries := make([]OrderedEntry, 0, len(manifest.Tabs))
	for tabID, entry := range manifest.Tabs {
		entries = append(entries, OrderedEntry{ID: tabID, Entry: entry})
	}
	sort.SliceStable(entries, func(leftIndex int, rightIndex int) bool {
		leftOrder := sortableOrder(entries[leftIndex].Entry.Order)
		rightOrder := sortableOrder(entries[rightIndex].Entry.Order)
		if leftOrder != rightOrder {
			return leftOrder < rightOrder
		}
		return entries[leftIndex].ID < entries[rightIndex].ID
	})
	return entries
}

// Renumber assigns the dense sequence 1..N following SortedEntries.
func (manifest *Manifest) Renumber() {
	if manifest.Tabs == nil {
		manifest.Tabs = map[string]ManifestEntry{}
	}
	for position, orderedEntry := range manifest.SortedEntries() {
		entry := orderedEntry.Entry
		entry.Order = position + 1
		manifest.Tabs[orderedEntry.ID] = entry
	}
}

// Stamp records the write date and replaces the cached release notes.
func (manifest *Manifest) Stamp(moment time.Time, releaseNotes string) {
	manifest.Updated = moment.Format(UpdatedDateLayout)
	manifest.ReleaseNotes = strings.TrimSpace(releaseNotes)
}

func sortableOrder(order int) int {
	if order <= 0 {
		return int(^uint(0) >> 1)
	}
	return order
}
